// sim/kernel.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/minikern/minikern/sim/trace"
)

// Kernel is the one explicit instance holding all scheduler and paging state.
// It is owned by the caller and is not safe for concurrent use.
type Kernel struct {
	Config KernelConfig
	// Memory is the paging simulator; its access clock is independent of the scheduler tick.
	Memory  *Memory
	Metrics *Metrics
	// Trace is nil when decision tracing is disabled.
	Trace *trace.SimulationTrace

	procs   *ProcessTable
	mode    Mode
	policy  SelectionPolicy
	quantum int

	tick     int // scheduler clock, advanced once per Tick
	current  PID // running process, NoPID when the CPU is idle
	lastSlot int // slot of the most recently dispatched process, -1 if none
}

// NewKernel validates cfg, allocates every table and initialises them.
func NewKernel(cfg KernelConfig) (*Kernel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kernel config: %w", err)
	}
	k := &Kernel{
		Config:  cfg,
		Memory:  NewMemory(cfg.MemoryConfig, cfg.MaxProcesses),
		procs:   NewProcessTable(cfg.MaxProcesses),
		mode:    cfg.Mode,
		policy:  NewSelectionPolicy(cfg.Mode),
		quantum: cfg.Quantum,
	}
	k.Init()
	return k, nil
}

// EnableTrace starts recording dispatch and access decisions at level.
// TraceLevelNone (or empty) turns recording off.
func (k *Kernel) EnableTrace(level trace.TraceLevel) {
	if !level.Enabled() {
		k.Trace = nil
		return
	}
	k.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: level})
}

// Init clears the process table, scheduler clock, frames, page tables and counters.
// Mode, quantum and the PID counter survive re-initialisation.
func (k *Kernel) Init() {
	k.procs.Reset()
	k.Memory.Reset()
	k.Metrics = NewMetrics()
	k.tick = 0
	k.current = NoPID
	k.lastSlot = -1
	if k.Trace != nil {
		k.Trace = trace.NewSimulationTrace(k.Trace.Config)
	}
	logrus.Debugf("kernel initialised: %d slots, %d frames, mode=%s quantum=%d",
		k.procs.Capacity(), k.Memory.Frames.Len(), k.mode, k.quantum)
}

// Mode returns the active dispatch policy.
func (k *Kernel) Mode() Mode { return k.mode }

// Quantum returns the RR time slice given to newly dispatched processes.
func (k *Kernel) Quantum() int { return k.quantum }

// CurrentTick returns the scheduler clock.
func (k *Kernel) CurrentTick() int { return k.tick }

// Running returns the PID of the running process, if any.
func (k *Kernel) Running() (PID, bool) {
	return k.current, k.current != NoPID
}

// SetMode switches the dispatch policy. A running process keeps the CPU.
func (k *Kernel) SetMode(mode Mode) error {
	if !mode.IsValid() {
		return fmt.Errorf("scheduler mode %d: %w", int(mode), ErrInvalidParameter)
	}
	k.mode = mode
	k.policy = NewSelectionPolicy(mode)
	logrus.Debugf("[tick %d] scheduler mode set to %s", k.tick, mode)
	return nil
}

// SetQuantum sets the slice handed out on the next dispatch or preemption.
func (k *Kernel) SetQuantum(quantum int) error {
	if quantum <= 0 {
		return fmt.Errorf("quantum must be > 0, got %d: %w", quantum, ErrInvalidParameter)
	}
	k.quantum = quantum
	logrus.Debugf("[tick %d] quantum set to %d", k.tick, quantum)
	return nil
}

// CreateProcess registers a Ready process in the lowest free slot.
func (k *Kernel) CreateProcess(burst, priority int) (PID, error) {
	if burst <= 0 {
		return NoPID, fmt.Errorf("burst time must be > 0, got %d: %w", burst, ErrInvalidParameter)
	}
	if priority < MinPriority || priority > MaxPriority {
		return NoPID, fmt.Errorf("priority must be in [%d,%d], got %d: %w", MinPriority, MaxPriority, priority, ErrInvalidParameter)
	}
	p := k.procs.insert(burst, priority, k.tick, k.quantum)
	if p == nil {
		return NoPID, fmt.Errorf("process table full (%d slots): %w", k.procs.Capacity(), ErrCapacityExceeded)
	}
	logrus.Debugf("[tick %d] created PID %d in slot %d (burst=%d priority=%d)", k.tick, p.PID, p.Slot, burst, priority)
	return p.PID, nil
}

// KillProcess terminates pid from any state and frees its slot.
// Frames holding the process's pages stay valid until evicted.
func (k *Kernel) KillProcess(pid PID) error {
	p := k.procs.lookup(pid)
	if p == nil {
		return fmt.Errorf("kill PID %d: %w", pid, ErrNotFound)
	}
	slot := p.Slot
	p.State = StateTerminated
	k.procs.release(p)
	if k.current == pid {
		k.current = NoPID
	}
	k.Metrics.Kills++
	k.recordDispatch(pid, slot, trace.KindKilled)
	logrus.Debugf("[tick %d] killed PID %d (slot %d)", k.tick, pid, slot)
	return nil
}

// GetProcess returns the live PCB for pid. Completed processes stay visible until killed.
func (k *Kernel) GetProcess(pid PID) (*Process, error) {
	p := k.procs.lookup(pid)
	if p == nil {
		return nil, fmt.Errorf("PID %d: %w", pid, ErrNotFound)
	}
	return p, nil
}

// Processes returns copies of the non-terminated PCBs in slot order.
func (k *Kernel) Processes() []Process {
	return k.procs.Active()
}

// SchedulerMetrics returns the aggregate turnaround, waiting and dispatch counters.
func (k *Kernel) SchedulerMetrics() SchedulerSummary {
	return k.Metrics.Summary()
}

// Tick advances the scheduler by one time unit and returns the reports it produced, in order.
//
//  1. The running process consumes one tick of burst and quantum. It completes at
//     zero remaining time, or, in Round-Robin mode only, is preempted at zero slice.
//  2. If the CPU is idle the active policy selects the next Ready process.
//  3. Every process still Ready accrues one tick of waiting time.
func (k *Kernel) Tick() []string {
	k.tick++
	var reports []string

	if p := k.procs.lookup(k.current); p != nil && p.State == StateRunning {
		p.RemainingTime--
		p.TimeSlice--

		if p.RemainingTime <= 0 {
			p.State = StateTerminated
			p.TurnaroundTime = k.tick - p.ArrivalTime
			k.Metrics.recordCompletion(p)
			k.recordDispatch(p.PID, p.Slot, trace.KindCompleted)
			reports = append(reports, fmt.Sprintf("Process %d completed (turnaround=%d)", p.PID, p.TurnaroundTime))
			k.current = NoPID
		} else if k.mode == ModeRoundRobin && p.TimeSlice <= 0 {
			p.State = StateReady
			p.TimeSlice = k.quantum
			k.Metrics.Preemptions++
			k.recordDispatch(p.PID, p.Slot, trace.KindPreempted)
			reports = append(reports, fmt.Sprintf("Process %d preempted (quantum expired)", p.PID))
			k.current = NoPID
		}
	}

	if k.current == NoPID {
		if slot := k.policy.Select(k.procs, k.lastSlot); slot >= 0 {
			p := k.procs.at(slot)
			p.State = StateRunning
			p.TimeSlice = k.quantum
			k.current = p.PID
			k.lastSlot = slot
			k.Metrics.Dispatches++
			k.recordDispatch(p.PID, slot, trace.KindStarted)
			reports = append(reports, fmt.Sprintf("Process %d started", p.PID))
		}
	}

	for i := 0; i < k.procs.Capacity(); i++ {
		if k.procs.isReady(i) {
			k.procs.at(i).WaitingTime++
		}
	}

	for _, r := range reports {
		logrus.Debugf("[tick %d] %s", k.tick, r)
	}
	return reports
}

func (k *Kernel) recordDispatch(pid PID, slot int, kind trace.DispatchKind) {
	if k.Trace == nil {
		return
	}
	k.Trace.RecordDispatch(trace.DispatchRecord{
		Tick: k.tick,
		PID:  int(pid),
		Slot: slot,
		Kind: kind,
		Mode: k.mode.String(),
	})
}
