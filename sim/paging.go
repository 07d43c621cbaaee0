package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/minikern/minikern/sim/trace"
)

// Memory is the paging simulator state: frames, page tables, the access clock
// and hit/fault counters. The access clock is independent of the scheduler tick.
type Memory struct {
	Frames     *FramePool
	PageTables *PageTableStore
	PageSize   int
	Clock      int // advanced once per AccessPage call, including failed ones
	Hits       int
	Faults     int
}

// NewMemory allocates the frame pool and page tables described by cfg.
// rows is the number of page-table rows (the process table capacity).
func NewMemory(cfg MemoryConfig, rows int) *Memory {
	return &Memory{
		Frames:     NewFramePool(cfg.FrameCount),
		PageTables: NewPageTableStore(rows, cfg.MaxPagesPerProcess),
		PageSize:   cfg.PageSize,
	}
}

// Reset invalidates all frames and mappings and zeroes clock and counters.
func (m *Memory) Reset() {
	m.Frames.Reset()
	m.PageTables.Reset()
	m.Clock = 0
	m.Hits = 0
	m.Faults = 0
}

// AccessResult describes the outcome of one page access.
type AccessResult struct {
	PID         PID
	Page        int
	Frame       int
	Hit         bool
	Evicted     bool
	EvictedPID  PID
	EvictedPage int
}

// String renders the access report line.
func (r AccessResult) String() string {
	if r.Hit {
		return fmt.Sprintf("Page hit: PID=%d page=%d frame=%d", r.PID, r.Page, r.Frame)
	}
	if r.Evicted {
		return fmt.Sprintf("Page fault: PID=%d page=%d (evicting PID=%d page=%d) -> loaded to frame=%d",
			r.PID, r.Page, r.EvictedPID, r.EvictedPage, r.Frame)
	}
	return fmt.Sprintf("Page fault: PID=%d page=%d -> loaded to frame=%d", r.PID, r.Page, r.Frame)
}

// access resolves (pid, page) at the current clock. Arguments are already validated.
func (m *Memory) access(pid PID, page int) AccessResult {
	res := AccessResult{PID: pid, Page: page}
	pte := m.PageTables.entry(pid, page)

	if pte.Valid {
		m.Hits++
		m.Frames.touch(pte.Frame, m.Clock)
		res.Hit = true
		res.Frame = pte.Frame
		return res
	}

	m.Faults++
	frame, ok := m.Frames.FindFreeFrame()
	if !ok {
		frame = m.Frames.FindLRUFrame()
		victim := m.Frames.at(frame)
		res.Evicted = true
		res.EvictedPID = victim.PID
		res.EvictedPage = victim.Page
		// A stale frame left behind by AllocatePages may name a page that
		// has since been reloaded elsewhere; only unmap if it still points here.
		if vpte := m.PageTables.entry(victim.PID, victim.Page); vpte.Frame == frame {
			vpte.Valid = false
		}
	}

	m.Frames.bind(frame, pid, page, m.Clock)
	pte.Frame = frame
	pte.Valid = true
	res.Frame = frame
	return res
}

// MemoryStats is the snapshot reported by meminfo.
type MemoryStats struct {
	PageSize    int
	TotalFrames int
	UsedFrames  int
	FreeFrames  int
	Faults      int
	Hits        int
	HitRate     int // integer percent; valid only when Accesses > 0
	Accesses    int
}

// Stats returns the current frame usage and hit/fault counters.
func (m *Memory) Stats() MemoryStats {
	used := m.Frames.UsedFrames()
	st := MemoryStats{
		PageSize:    m.PageSize,
		TotalFrames: m.Frames.Len(),
		UsedFrames:  used,
		FreeFrames:  m.Frames.Len() - used,
		Faults:      m.Faults,
		Hits:        m.Hits,
		Accesses:    m.Faults + m.Hits,
	}
	if st.Accesses > 0 {
		st.HitRate = (m.Hits * 100) / st.Accesses
	}
	return st
}

// AllocatePages resets the first count page-table entries of pid's row to unmapped.
// No frames are reserved and frames still holding those pages are left as they are.
// On error nothing is modified.
func (k *Kernel) AllocatePages(pid PID, count int) error {
	if k.procs.lookup(pid) == nil {
		return fmt.Errorf("allocate pages for PID %d: %w", pid, ErrNotFound)
	}
	maxPages := k.Memory.PageTables.PagesPerRow()
	if count > maxPages {
		return fmt.Errorf("allocate %d pages (max %d): %w", count, maxPages, ErrCapacityExceeded)
	}
	if count < 0 {
		return fmt.Errorf("allocate %d pages: %w", count, ErrInvalidParameter)
	}
	k.Memory.PageTables.unmapFirst(pid, count)
	logrus.Debugf("[access %d] reset %d page table entries for PID %d (row %d)",
		k.Memory.Clock, count, pid, k.Memory.PageTables.RowIndex(pid))
	return nil
}

// AccessPage simulates one memory reference by pid to page and returns the report line.
// The access clock advances before validation, so a rejected access still consumes a clock value.
func (k *Kernel) AccessPage(pid PID, page int) (string, error) {
	k.Memory.Clock++

	if k.procs.lookup(pid) == nil {
		return "", fmt.Errorf("access by PID %d: %w", pid, ErrNotFound)
	}
	if page < 0 || page >= k.Memory.PageTables.PagesPerRow() {
		return "", fmt.Errorf("page %d out of range [0,%d): %w", page, k.Memory.PageTables.PagesPerRow(), ErrInvalidParameter)
	}

	res := k.Memory.access(pid, page)
	logrus.Debugf("[access %d] %s", k.Memory.Clock, res)

	if k.Trace != nil {
		k.Trace.RecordAccess(trace.AccessRecord{
			Clock:       k.Memory.Clock,
			PID:         int(res.PID),
			Page:        res.Page,
			Frame:       res.Frame,
			Hit:         res.Hit,
			Evicted:     res.Evicted,
			EvictedPID:  int(res.EvictedPID),
			EvictedPage: res.EvictedPage,
		})
	}
	return res.String(), nil
}

// Frames returns a snapshot of the frame pool for the frames report.
func (k *Kernel) Frames() []Frame {
	return k.Memory.Frames.Frames()
}

// MemoryStats returns the meminfo snapshot.
func (k *Kernel) MemoryStats() MemoryStats {
	return k.Memory.Stats()
}
