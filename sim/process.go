// Defines the Process struct that models one process control block in the simulation.
// Tracks burst progress, arrival, waiting and turnaround times in scheduler ticks.

package sim

import (
	"fmt"
)

// PID identifies a process. Values start at 1 and are never reused.
type PID int

// NoPID marks an empty slot or an unowned frame.
const NoPID PID = -1

// ProcessState represents the lifecycle state of a process.
type ProcessState int

const (
	StateNew ProcessState = iota
	StateReady
	StateRunning
	StateWaiting // reserved; no operation enters it
	StateTerminated
)

var stateNames = [...]string{"NEW", "READY", "RUN", "WAIT", "DONE"}

func (s ProcessState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("ProcessState(%d)", int(s))
	}
	return stateNames[s]
}

// Process is the process control block.
type Process struct {
	PID   PID
	Slot  int // index in the process table; fixed for the lifetime of the entry
	State ProcessState

	Priority       int // 0..10, higher wins under Priority mode
	BurstTime      int // total ticks of CPU work requested
	RemainingTime  int // ticks of CPU work still owed; 0 <= RemainingTime <= BurstTime
	ArrivalTime    int // scheduler tick at creation
	WaitingTime    int // ticks spent Ready
	TurnaroundTime int // completion tick - ArrivalTime; set once on completion
	TimeSlice      int // remaining quantum while Running
}

// String returns a human-readable summary of the PCB.
func (p Process) String() string {
	return fmt.Sprintf("Process: (PID: %d, State: %s, Priority: %d, Remaining: %d/%d, Arrival: %d)",
		p.PID, p.State, p.Priority, p.RemainingTime, p.BurstTime, p.ArrivalTime)
}
