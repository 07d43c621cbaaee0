package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	sim "github.com/minikern/minikern/sim"
)

// errUsage marks a command rejected before it reached the kernel.
var errUsage = errors.New("usage")

// shellModeLabels are the names echoed by "scheduler mode".
var shellModeLabels = map[sim.Mode]string{
	sim.ModeFCFS:       "FCFS",
	sim.ModeRoundRobin: "Round Robin",
	sim.ModePriority:   "Priority",
}

// Shell interprets line commands against one kernel.
type Shell struct {
	kernel *sim.Kernel
	out    io.Writer
	tel    *telemetry
}

// NewShell returns a shell writing to out. A nil tel disables span export.
func NewShell(k *sim.Kernel, out io.Writer, tel *telemetry) *Shell {
	if tel == nil {
		tel, _ = newTelemetry("")
	}
	return &Shell{kernel: k, out: out, tel: tel}
}

// Run executes every line from r until EOF.
func (s *Shell) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Execute(ctx, scanner.Text())
	}
	return scanner.Err()
}

// Execute runs a single command line. Blank lines and # comments are ignored.
func (s *Shell) Execute(ctx context.Context, line string) {
	args := strings.Fields(line)
	if len(args) == 0 || strings.HasPrefix(args[0], "#") {
		return
	}
	_, span := s.tel.startCommand(ctx, args[0], line)
	err := s.dispatch(args)
	if err != nil {
		logrus.Debugf("command %q: %v", line, err)
	}
	endCommand(span, s.kernel.CurrentTick(), s.kernel.Memory.Clock, err)
}

func (s *Shell) dispatch(args []string) error {
	switch args[0] {
	case "help":
		fmt.Fprint(s.out, helpText)
	case "echo":
		fmt.Fprintln(s.out, strings.Join(args[1:], " "))
	case "ps":
		renderProcessTable(s.out, s.kernel)
	case "run":
		return s.cmdRun(args)
	case "kill":
		return s.cmdKill(args)
	case "scheduler":
		return s.cmdScheduler(args)
	case "meminfo":
		renderMemInfo(s.out, s.kernel.MemoryStats())
	case "frames":
		renderFrames(s.out, s.kernel.Frames())
	case "allocpages":
		return s.cmdAllocPages(args)
	case "access":
		return s.cmdAccess(args)
	case "reset":
		s.kernel.Init()
		fmt.Fprintln(s.out, "Kernel reset")
	case "stats":
		s.kernel.Metrics.Print(s.out, s.kernel.CurrentTick())
	default:
		fmt.Fprintf(s.out, "Unknown command: %s\n", args[0])
		fmt.Fprintln(s.out, "Type 'help' for available commands")
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
	return nil
}

// intArgs parses args as integers, printing usage on any failure.
func (s *Shell) intArgs(usage string, args []string, n int) ([]int, error) {
	if len(args) < n {
		fmt.Fprintln(s.out, usage)
		return nil, errUsage
	}
	vals := make([]int, n)
	for i := 0; i < n; i++ {
		v, err := strconv.Atoi(args[i])
		if err != nil {
			fmt.Fprintf(s.out, "Error: %q is not a number\n", args[i])
			return nil, fmt.Errorf("%s: %w", err, errUsage)
		}
		vals[i] = v
	}
	return vals, nil
}

func (s *Shell) cmdRun(args []string) error {
	v, err := s.intArgs("Usage: run <burst_time> <priority>", args[1:], 2)
	if err != nil {
		return err
	}
	burst, priority := v[0], v[1]
	pid, err := s.kernel.CreateProcess(burst, priority)
	switch {
	case errors.Is(err, sim.ErrInvalidParameter):
		fmt.Fprintln(s.out, "Error: Invalid parameters")
		fmt.Fprintln(s.out, "  burst_time must be > 0")
		fmt.Fprintln(s.out, "  priority must be 0-10")
	case errors.Is(err, sim.ErrCapacityExceeded):
		fmt.Fprintln(s.out, "Error: Maximum processes reached")
	case err == nil:
		fmt.Fprintf(s.out, "Created process PID=%d burst=%d priority=%d\n", pid, burst, priority)
	}
	return err
}

func (s *Shell) cmdKill(args []string) error {
	v, err := s.intArgs("Usage: kill <pid>", args[1:], 1)
	if err != nil {
		return err
	}
	pid := sim.PID(v[0])
	if err := s.kernel.KillProcess(pid); err != nil {
		fmt.Fprintln(s.out, "Error: Process not found")
		return err
	}
	fmt.Fprintf(s.out, "Process %d terminated\n", pid)
	return nil
}

func (s *Shell) cmdScheduler(args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: scheduler <mode|quantum|tick>")
		return errUsage
	}
	switch args[1] {
	case "mode":
		if len(args) < 3 {
			fmt.Fprintln(s.out, "Usage: scheduler mode <fcfs|rr|priority>")
			return errUsage
		}
		mode, err := sim.ParseMode(args[2])
		if err != nil {
			fmt.Fprintln(s.out, "Unknown mode. Use: fcfs, rr, or priority")
			return err
		}
		if err := s.kernel.SetMode(mode); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Scheduler mode: %s\n", shellModeLabels[mode])
	case "quantum":
		v, err := s.intArgs("Usage: scheduler quantum <value>", args[2:], 1)
		if err != nil {
			return err
		}
		if err := s.kernel.SetQuantum(v[0]); err != nil {
			fmt.Fprintln(s.out, "Error: Quantum must be > 0")
			return err
		}
		fmt.Fprintf(s.out, "Time quantum set to %d\n", v[0])
	case "tick":
		n := 1
		if len(args) > 2 {
			v, err := strconv.Atoi(args[2])
			if err != nil || v <= 0 {
				fmt.Fprintln(s.out, "Usage: scheduler tick [count > 0]")
				return errUsage
			}
			n = v
		}
		for i := 0; i < n; i++ {
			for _, report := range s.kernel.Tick() {
				fmt.Fprintln(s.out, report)
			}
			fmt.Fprintln(s.out, "Scheduler tick executed")
		}
	default:
		fmt.Fprintln(s.out, "Unknown scheduler command")
		return errUsage
	}
	return nil
}

func (s *Shell) cmdAllocPages(args []string) error {
	v, err := s.intArgs("Usage: allocpages <pid> <count>", args[1:], 2)
	if err != nil {
		return err
	}
	pid, count := sim.PID(v[0]), v[1]
	err = s.kernel.AllocatePages(pid, count)
	switch {
	case errors.Is(err, sim.ErrNotFound):
		fmt.Fprintln(s.out, "Error: Process not found")
	case errors.Is(err, sim.ErrCapacityExceeded):
		fmt.Fprintln(s.out, "Error: Too many pages requested")
	case err != nil:
		fmt.Fprintln(s.out, "Error: Could not allocate pages")
	default:
		fmt.Fprintf(s.out, "Allocated %d pages to PID %d\n", count, pid)
	}
	return err
}

func (s *Shell) cmdAccess(args []string) error {
	v, err := s.intArgs("Usage: access <pid> <page>", args[1:], 2)
	if err != nil {
		return err
	}
	pid, page := sim.PID(v[0]), v[1]
	report, err := s.kernel.AccessPage(pid, page)
	switch {
	case errors.Is(err, sim.ErrNotFound):
		fmt.Fprintf(s.out, "Error: Process %d not found\n", pid)
	case errors.Is(err, sim.ErrInvalidParameter):
		fmt.Fprintln(s.out, "Error: Invalid page number")
	case err == nil:
		fmt.Fprintln(s.out, report)
	}
	return err
}

const helpText = `
  ===============================================
             minikern Command Reference
  ===============================================

  >> SYSTEM COMMANDS:
     help                    - Show this help message
     echo <text>             - Print text
     reset                   - Clear all kernel state
     stats                   - Show scheduler metrics

  >> PROCESS COMMANDS:
     ps                      - List all processes
     run <burst> <prio>      - Create new process
     kill <pid>              - Terminate process

  >> SCHEDULER COMMANDS:
     scheduler mode <fcfs|rr|priority>
     scheduler quantum <n>   - Set time quantum
     scheduler tick [n]      - Simulate n clock ticks (default 1)

  >> MEMORY COMMANDS:
     meminfo                 - Show memory stats
     frames                  - Show frame table
     allocpages <pid> <n>    - Reset the first n page table entries
     access <pid> <page>     - Access a page

`
