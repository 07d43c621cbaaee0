package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	RunID                string
	TotalDispatches      int
	KindCounts           map[DispatchKind]int
	Hits                 int
	Faults               int
	Evictions            int
	UniquePIDs           int
	DispatchDistribution map[int]int // PID → number of times started
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		KindCounts:           make(map[DispatchKind]int),
		DispatchDistribution: make(map[int]int),
	}
	if st == nil {
		return summary
	}
	summary.RunID = st.RunID

	summary.TotalDispatches = len(st.Dispatches)
	for _, d := range st.Dispatches {
		summary.KindCounts[d.Kind]++
		if d.Kind == KindStarted {
			summary.DispatchDistribution[d.PID]++
		}
	}

	for _, a := range st.Accesses {
		if a.Hit {
			summary.Hits++
			continue
		}
		summary.Faults++
		if a.Evicted {
			summary.Evictions++
		}
	}

	summary.UniquePIDs = len(summary.DispatchDistribution)

	return summary
}
