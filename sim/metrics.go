// Tracks scheduler-wide performance metrics such as turnaround and waiting time.

package sim

import (
	"fmt"
	"io"
	"sort"
)

// Metrics aggregates statistics about completed processes and dispatch activity
// for final reporting. Reset by Kernel.Init.
type Metrics struct {
	CompletedProcesses int // processes that ran to completion (kills excluded)
	Dispatches         int // Ready -> Running transitions
	Preemptions        int // RR quantum expirations
	Kills              int // successful KillProcess calls

	Turnarounds  []int // turnaround of each completed process, in completion order
	WaitingTimes []int // waiting time of each completed process at completion
}

// NewMetrics returns an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Turnarounds:  make([]int, 0),
		WaitingTimes: make([]int, 0),
	}
}

// recordCompletion appends the final timings of p.
func (m *Metrics) recordCompletion(p *Process) {
	m.CompletedProcesses++
	m.Turnarounds = append(m.Turnarounds, p.TurnaroundTime)
	m.WaitingTimes = append(m.WaitingTimes, p.WaitingTime)
}

// Print writes the scheduler summary.
// Averages and percentiles are printed only when at least one process completed.
func (m *Metrics) Print(w io.Writer, tick int) {
	fmt.Fprintln(w, "=== Scheduler Metrics ===")
	fmt.Fprintf(w, "Elapsed Ticks        : %d\n", tick)
	fmt.Fprintf(w, "Completed Processes  : %d\n", m.CompletedProcesses)
	fmt.Fprintf(w, "Dispatches           : %d\n", m.Dispatches)
	fmt.Fprintf(w, "Preemptions          : %d\n", m.Preemptions)
	fmt.Fprintf(w, "Kills                : %d\n", m.Kills)
	if m.CompletedProcesses > 0 {
		turnarounds := sortedCopy(m.Turnarounds)
		waits := sortedCopy(m.WaitingTimes)
		fmt.Fprintf(w, "Average Turnaround   : %.2f ticks\n", CalculateMean(turnarounds))
		fmt.Fprintf(w, "P90 Turnaround       : %.2f ticks\n", CalculatePercentile(turnarounds, 90))
		fmt.Fprintf(w, "Average Waiting      : %.2f ticks\n", CalculateMean(waits))
		fmt.Fprintf(w, "P90 Waiting          : %.2f ticks\n", CalculatePercentile(waits, 90))
	}
}

// SchedulerSummary is a point-in-time aggregate of Metrics.
type SchedulerSummary struct {
	Completed   int
	Dispatches  int
	Preemptions int
	Kills       int

	TotalTurnaround int
	TotalWaiting    int
	AvgTurnaround   float64 // 0 when nothing completed
	AvgWaiting      float64
}

// Summary aggregates the recorded completions.
func (m *Metrics) Summary() SchedulerSummary {
	s := SchedulerSummary{
		Completed:     m.CompletedProcesses,
		Dispatches:    m.Dispatches,
		Preemptions:   m.Preemptions,
		Kills:         m.Kills,
		AvgTurnaround: CalculateMean(m.Turnarounds),
		AvgWaiting:    CalculateMean(m.WaitingTimes),
	}
	for _, v := range m.Turnarounds {
		s.TotalTurnaround += v
	}
	for _, v := range m.WaitingTimes {
		s.TotalWaiting += v
	}
	return s
}

func sortedCopy(xs []int) []int {
	out := append([]int(nil), xs...)
	sort.Ints(out)
	return out
}
