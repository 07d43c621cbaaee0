package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	sim "github.com/minikern/minikern/sim"
	"github.com/minikern/minikern/sim/trace"
)

var (
	// Kernel construction flags shared by every subcommand
	logLevel     string // Log verbosity level
	configPath   string // Optional YAML kernel config
	modeName     string // Initial scheduler mode (fcfs, rr, priority)
	quantum      int    // Initial RR time quantum
	frameCount   int    // Physical frames
	maxProcesses int    // Process table slots
	maxPages     int    // Page table entries per process
	traceLevel   string // Decision trace level (none, decisions)
	otelTrace    string // File receiving OpenTelemetry spans; empty disables export
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "minikern",
	Short: "Tick-driven CPU scheduler and demand-paging simulator",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// buildKernelConfig layers defaults, the YAML file and explicitly set flags, in that order.
func buildKernelConfig(cmd *cobra.Command) (sim.KernelConfig, trace.TraceLevel, error) {
	cfg := sim.DefaultKernelConfig()
	level := trace.TraceLevelNone

	if configPath != "" {
		bundle, err := sim.LoadKernelBundle(configPath)
		if err != nil {
			return cfg, level, err
		}
		if err := bundle.Validate(); err != nil {
			return cfg, level, fmt.Errorf("invalid kernel config %s: %w", configPath, err)
		}
		bundle.Apply(&cfg)
		if bundle.Trace != "" {
			level = trace.TraceLevel(bundle.Trace)
		}
		logrus.Infof("Loaded kernel config from %s", configPath)
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		m, err := sim.ParseMode(modeName)
		if err != nil {
			return cfg, level, err
		}
		cfg.Mode = m
	}
	if flags.Changed("quantum") {
		cfg.Quantum = quantum
	}
	if flags.Changed("frames") {
		cfg.FrameCount = frameCount
	}
	if flags.Changed("max-processes") {
		cfg.MaxProcesses = maxProcesses
	}
	if flags.Changed("max-pages") {
		cfg.MaxPagesPerProcess = maxPages
	}
	if flags.Changed("trace") {
		if !trace.IsValidTraceLevel(traceLevel) {
			return cfg, level, fmt.Errorf("unknown trace level %q: %w", traceLevel, sim.ErrInvalidParameter)
		}
		level = trace.TraceLevel(traceLevel)
	}
	return cfg, level, cfg.Validate()
}

// newKernel builds a kernel from the command's flags and config file.
func newKernel(cmd *cobra.Command) (*sim.Kernel, error) {
	cfg, level, err := buildKernelConfig(cmd)
	if err != nil {
		return nil, err
	}
	k, err := sim.NewKernel(cfg)
	if err != nil {
		return nil, err
	}
	k.EnableTrace(level)
	logrus.Infof("Kernel ready: mode=%s quantum=%d frames=%d slots=%d pages/process=%d",
		cfg.Mode, cfg.Quantum, cfg.FrameCount, cfg.MaxProcesses, cfg.MaxPagesPerProcess)
	return k, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addKernelFlags registers the kernel construction flags on fs.
func addKernelFlags(fs *pflag.FlagSet) {
	fs.StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	fs.StringVar(&configPath, "config", "", "YAML kernel config; explicit flags override it")
	fs.StringVar(&otelTrace, "otel-trace", "", "Write an OpenTelemetry span per command to this file")

	// Kernel sizing and policy
	fs.StringVar(&modeName, "mode", "fcfs", "Scheduler mode (fcfs, rr, priority)")
	fs.IntVar(&quantum, "quantum", sim.DefaultQuantum, "Round-Robin time quantum (ticks)")
	fs.IntVar(&frameCount, "frames", sim.DefaultFrameCount, "Number of physical frames")
	fs.IntVar(&maxProcesses, "max-processes", sim.DefaultMaxProcesses, "Process table slots")
	fs.IntVar(&maxPages, "max-pages", sim.DefaultMaxPagesPerProcess, "Page table entries per process")
	fs.StringVar(&traceLevel, "trace", "none", "Decision trace level (none, decisions); prints a summary at exit")
}

// init sets up CLI flags and subcommands
func init() {
	addKernelFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(runCmd)
}
