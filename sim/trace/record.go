// Package trace provides decision-trace recording for scheduler and paging analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// DispatchKind names a scheduler state change.
type DispatchKind string

const (
	KindStarted   DispatchKind = "started"
	KindPreempted DispatchKind = "preempted"
	KindCompleted DispatchKind = "completed"
	KindKilled    DispatchKind = "killed"
)

// DispatchRecord captures a single scheduler state change.
type DispatchRecord struct {
	Tick int
	PID  int
	Slot int
	Kind DispatchKind
	Mode string // scheduler mode in effect
}

// AccessRecord captures a single page access decision.
type AccessRecord struct {
	Clock       int // paging access clock, not the scheduler tick
	PID         int
	Page        int
	Frame       int
	Hit         bool
	Evicted     bool
	EvictedPID  int // valid only when Evicted
	EvictedPage int // valid only when Evicted
}
