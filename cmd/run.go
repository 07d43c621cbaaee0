package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/minikern/minikern/sim"
)

var (
	procSpecs       []string // burst:priority per process
	maxTicks        int      // Upper bound on scheduler ticks
	randomProcs     int      // Synthetic processes appended to --proc
	maxBurst        int      // Upper bound on synthetic burst time
	accessesPerTick int      // Page references issued by the running process each tick
	seed            int64    // Seed for synthetic processes and page references
)

// batchOptions bounds a batch run and controls its synthetic memory traffic.
type batchOptions struct {
	MaxTicks        int
	AccessesPerTick int
	RNG             *sim.PartitionedRNG // required when AccessesPerTick > 0
}

// parseProcSpec parses "burst:priority".
func parseProcSpec(s string) (sim.ProcessSpec, error) {
	burstStr, prioStr, ok := strings.Cut(s, ":")
	if !ok {
		return sim.ProcessSpec{}, fmt.Errorf("process %q: want burst:priority: %w", s, sim.ErrInvalidParameter)
	}
	burst, err := strconv.Atoi(burstStr)
	if err != nil {
		return sim.ProcessSpec{}, fmt.Errorf("process %q: burst: %w", s, sim.ErrInvalidParameter)
	}
	priority, err := strconv.Atoi(prioStr)
	if err != nil {
		return sim.ProcessSpec{}, fmt.Errorf("process %q: priority: %w", s, sim.ErrInvalidParameter)
	}
	return sim.ProcessSpec{Burst: burst, Priority: priority}, nil
}

// runBatch creates every process at tick 0 and ticks until the CPU drains or
// opts.MaxTicks is reached. After each tick the running process, if any, issues
// opts.AccessesPerTick page references. It returns the number of ticks executed.
func runBatch(k *sim.Kernel, specs []sim.ProcessSpec, opts batchOptions, out io.Writer) (int, error) {
	for _, spec := range specs {
		pid, err := k.CreateProcess(spec.Burst, spec.Priority)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(out, "Created process PID=%d burst=%d priority=%d\n", pid, spec.Burst, spec.Priority)
	}

	ticks := 0
	for ticks < opts.MaxTicks && len(k.Processes()) > 0 {
		for _, report := range k.Tick() {
			fmt.Fprintf(out, "[tick %d] %s\n", k.CurrentTick(), report)
		}
		ticks++

		pid, running := k.Running()
		if !running {
			continue
		}
		for i := 0; i < opts.AccessesPerTick; i++ {
			report, err := k.AccessPage(pid, sim.NextPage(opts.RNG, k.Config.MaxPagesPerProcess))
			if err != nil {
				return ticks, err
			}
			fmt.Fprintf(out, "[tick %d] %s\n", k.CurrentTick(), report)
		}
	}
	if n := len(k.Processes()); n > 0 {
		logrus.Warnf("Stopped after %d ticks with %d process(es) unfinished", ticks, n)
	}
	return ticks, nil
}

// runCmd executes a batch of processes to completion
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a batch of processes to completion and print scheduler and memory metrics",
	Run: func(cmd *cobra.Command, args []string) {
		specs := make([]sim.ProcessSpec, 0, len(procSpecs)+randomProcs)
		for _, s := range procSpecs {
			spec, err := parseProcSpec(s)
			if err != nil {
				logrus.Fatalf("Invalid --proc: %v", err)
			}
			specs = append(specs, spec)
		}
		rng := sim.NewPartitionedRNG(sim.NewSimulationKey(seed))
		generated, err := sim.GenerateProcesses(rng, randomProcs, maxBurst)
		if err != nil {
			logrus.Fatalf("Invalid synthetic workload: %v", err)
		}
		specs = append(specs, generated...)
		if len(specs) == 0 {
			logrus.Fatalf("No processes given. Use --proc burst:priority (repeatable) or --random n.")
		}

		k, err := newKernel(cmd)
		if err != nil {
			logrus.Fatalf("Invalid kernel configuration: %v", err)
		}

		tel, err := newTelemetry(otelTrace)
		if err != nil {
			logrus.Fatalf("Unable to open span export %s: %v", otelTrace, err)
		}
		ctx := context.Background()
		_, span := tel.tracer.Start(ctx, "run.batch")

		logrus.Infof("Running %d process(es), seed=%d, %d access(es) per tick", len(specs), seed, accessesPerTick)
		out := cmd.OutOrStdout()
		opts := batchOptions{MaxTicks: maxTicks, AccessesPerTick: accessesPerTick, RNG: rng}
		_, err = runBatch(k, specs, opts, out)
		endCommand(span, k.CurrentTick(), k.Memory.Clock, err)
		if serr := tel.shutdown(ctx); serr != nil {
			logrus.Errorf("flushing spans: %v", serr)
		}
		if err != nil {
			logrus.Fatalf("Batch run failed: %v", err)
		}

		k.Metrics.Print(out, k.CurrentTick())
		if accessesPerTick > 0 {
			renderMemInfo(out, k.MemoryStats())
		}
		renderTraceSummary(out, k.Trace)
		logrus.Info("Batch run complete.")
	},
}

func init() {
	runCmd.Flags().StringArrayVar(&procSpecs, "proc", nil, "Process as burst:priority (repeatable)")
	runCmd.Flags().IntVar(&maxTicks, "max-ticks", 10000, "Maximum scheduler ticks before giving up")
	runCmd.Flags().IntVar(&randomProcs, "random", 0, "Number of synthetic processes to add")
	runCmd.Flags().IntVar(&maxBurst, "max-burst", 10, "Maximum burst time of synthetic processes")
	runCmd.Flags().IntVar(&accessesPerTick, "accesses-per-tick", 0, "Page references issued by the running process each tick")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for synthetic processes and page references")
}
