package sim

import (
	"fmt"
	"math"
)

// Mode selects the dispatch policy used when the CPU is idle.
type Mode int

const (
	ModeFCFS Mode = iota
	ModeRoundRobin
	ModePriority
)

var modeNames = map[string]Mode{"fcfs": ModeFCFS, "rr": ModeRoundRobin, "priority": ModePriority}

// ParseMode maps a CLI/YAML name ("fcfs", "rr", "priority") to a Mode.
func ParseMode(name string) (Mode, error) {
	m, ok := modeNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown scheduler mode %q: %w", name, ErrInvalidParameter)
	}
	return m, nil
}

// IsValid reports whether m is one of the three known modes.
func (m Mode) IsValid() bool {
	return m >= ModeFCFS && m <= ModePriority
}

// String returns the name shown in the process status table.
func (m Mode) String() string {
	switch m {
	case ModeFCFS:
		return "FCFS"
	case ModeRoundRobin:
		return "Round-Robin"
	case ModePriority:
		return "Priority"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// SelectionPolicy picks the next process to dispatch.
// Called only while no process is Running.
// Implementations scan slots in index order; that order is the tie-breaker.
type SelectionPolicy interface {
	// Select returns the slot index to dispatch, or -1 if nothing is Ready.
	// lastSlot is the slot of the previously running process, or -1 if none ever ran.
	Select(pt *ProcessTable, lastSlot int) int
}

// FCFSPolicy picks the Ready process with the smallest arrival tick.
// Equal arrivals resolve to the lowest slot.
type FCFSPolicy struct{}

func (FCFSPolicy) Select(pt *ProcessTable, _ int) int {
	selected := -1
	earliest := math.MaxInt
	for i := 0; i < pt.Capacity(); i++ {
		if pt.isReady(i) && pt.at(i).ArrivalTime < earliest {
			earliest = pt.at(i).ArrivalTime
			selected = i
		}
	}
	return selected
}

// RoundRobinPolicy scans cyclically starting one past lastSlot and picks the
// first Ready process. With no previous process the scan starts at slot 0.
type RoundRobinPolicy struct{}

func (RoundRobinPolicy) Select(pt *ProcessTable, lastSlot int) int {
	n := pt.Capacity()
	start := 0
	if lastSlot >= 0 {
		start = (lastSlot + 1) % n
	}
	for count := 0; count < n; count++ {
		i := (start + count) % n
		if pt.isReady(i) {
			return i
		}
	}
	return -1
}

// PriorityPolicy picks the Ready process with the highest priority.
// Equal priorities resolve to the lowest slot.
type PriorityPolicy struct{}

func (PriorityPolicy) Select(pt *ProcessTable, _ int) int {
	selected := -1
	highest := math.MinInt
	for i := 0; i < pt.Capacity(); i++ {
		if pt.isReady(i) && pt.at(i).Priority > highest {
			highest = pt.at(i).Priority
			selected = i
		}
	}
	return selected
}

// NewSelectionPolicy returns the policy for mode.
// Panics on an unknown mode; callers validate with Mode.IsValid first.
func NewSelectionPolicy(mode Mode) SelectionPolicy {
	switch mode {
	case ModeFCFS:
		return FCFSPolicy{}
	case ModeRoundRobin:
		return RoundRobinPolicy{}
	case ModePriority:
		return PriorityPolicy{}
	default:
		panic(fmt.Sprintf("unhandled scheduler mode %d", int(mode)))
	}
}
