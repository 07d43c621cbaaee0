package cmd

import (
	"fmt"
	"io"
	"strings"

	sim "github.com/minikern/minikern/sim"
	"github.com/minikern/minikern/sim/trace"
)

const banner = "  ==============================================="

const processTableRule = "  +-----+----------+------+-------+--------+------+"

// renderProcessTable writes the ps report: every non-terminated process in slot order.
func renderProcessTable(w io.Writer, k *sim.Kernel) {
	fmt.Fprintf(w, "\n%s\n              Process Status Table\n%s\n", banner, banner)
	fmt.Fprintf(w, "  Scheduler Mode: %s", k.Mode())
	if k.Mode() == sim.ModeRoundRobin {
		fmt.Fprintf(w, " (quantum=%d)", k.Quantum())
	}
	fmt.Fprint(w, "\n\n")

	fmt.Fprintln(w, processTableRule)
	fmt.Fprintln(w, "  | PID |  State   | Prio | Burst | Remain | Wait |")
	fmt.Fprintln(w, processTableRule)
	procs := k.Processes()
	for _, p := range procs {
		fmt.Fprintf(w, "  | %2d  | %-8s |  %-2d  |   %2d  |    %2d  |  %2d  |\n",
			p.PID, p.State, p.Priority, p.BurstTime, p.RemainingTime, p.WaitingTime)
	}
	fmt.Fprintln(w, processTableRule)

	if len(procs) == 0 {
		fmt.Fprintln(w, "       No active processes")
	} else {
		fmt.Fprintf(w, "       Total: %d process(es)\n", len(procs))
	}
	fmt.Fprintln(w)
}

// renderMemInfo writes the meminfo report. The hit rate line appears only after the first access.
func renderMemInfo(w io.Writer, st sim.MemoryStats) {
	fmt.Fprintf(w, "\n%s\n              Memory Information\n%s\n\n", banner, banner)
	fmt.Fprintf(w, "  Page size: %d bytes\n", st.PageSize)
	fmt.Fprintf(w, "  Total frames: %d\n", st.TotalFrames)
	fmt.Fprintf(w, "  Used frames: %d [%s%s]\n", st.UsedFrames,
		strings.Repeat("#", st.UsedFrames), strings.Repeat("-", st.FreeFrames))
	fmt.Fprintf(w, "  Free frames: %d\n\n", st.FreeFrames)

	fmt.Fprintln(w, "  Statistics:")
	fmt.Fprintf(w, "    * Page faults: %d\n", st.Faults)
	fmt.Fprintf(w, "    * Page hits: %d\n", st.Hits)
	if st.Accesses > 0 {
		fmt.Fprintf(w, "    * Hit rate: %d%%\n", st.HitRate)
	}
	fmt.Fprintln(w)
}

// renderFrames writes the frame allocation table.
func renderFrames(w io.Writer, frames []sim.Frame) {
	fmt.Fprintln(w, "\n=== Frame Allocation Table ===")
	fmt.Fprintln(w, "Frame  PID  Page  Last Access")
	fmt.Fprintln(w, "-----  ---  ----  -----------")
	for _, f := range frames {
		if f.Valid {
			fmt.Fprintf(w, "%2d    %2d   %2d   %2d\n", f.ID, f.PID, f.Page, f.LastAccess)
		} else {
			fmt.Fprintf(w, "%2d    ---  ----  -----------\n", f.ID)
		}
	}
	fmt.Fprintln(w)
}

// renderTraceSummary writes the decision trace counts collected during the session.
func renderTraceSummary(w io.Writer, st *trace.SimulationTrace) {
	if st == nil {
		return
	}
	summary := trace.Summarize(st)
	fmt.Fprintln(w, "=== Decision Trace Summary ===")
	fmt.Fprintf(w, "Run ID               : %s\n", summary.RunID)
	fmt.Fprintf(w, "Dispatch Decisions   : %d\n", summary.TotalDispatches)
	for _, kind := range []trace.DispatchKind{trace.KindStarted, trace.KindPreempted, trace.KindCompleted, trace.KindKilled} {
		fmt.Fprintf(w, "  %-19s: %d\n", kind, summary.KindCounts[kind])
	}
	fmt.Fprintf(w, "Page Hits            : %d\n", summary.Hits)
	fmt.Fprintf(w, "Page Faults          : %d\n", summary.Faults)
	fmt.Fprintf(w, "Evictions            : %d\n", summary.Evictions)
	fmt.Fprintf(w, "Unique PIDs          : %d\n", summary.UniquePIDs)
}
