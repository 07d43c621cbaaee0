package sim

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minikern/minikern/sim/trace"
)

// fillFrames faults pages 0..FrameCount-1 of pid into frames 0..FrameCount-1.
func fillFrames(t *testing.T, k *Kernel, pid PID) {
	t.Helper()
	for p := 0; p < k.Memory.Frames.Len(); p++ {
		got := mustAccess(t, k, pid, p)
		want := fmt.Sprintf("Page fault: PID=%d page=%d -> loaded to frame=%d", pid, p, p)
		require.Equal(t, want, got)
	}
}

func TestAccessPage_FirstAccessFaultsIntoSequentialFrames(t *testing.T) {
	// GIVEN the default 16-frame machine and one process
	k := newTestKernel(t, nil)
	pid := mustCreate(t, k, 10, 5)

	// WHEN pages 0..15 are touched once each
	fillFrames(t, k, pid)

	// THEN every frame is valid with strictly increasing access times
	frames := k.Frames()
	for i, f := range frames {
		assert.True(t, f.Valid)
		assert.Equal(t, pid, f.PID)
		assert.Equal(t, i, f.Page)
		if i > 0 {
			assert.Greater(t, f.LastAccess, frames[i-1].LastAccess)
		}
	}
	st := k.MemoryStats()
	assert.Equal(t, 16, st.Faults)
	assert.Equal(t, 0, st.Hits)
	assert.Equal(t, 0, st.FreeFrames)
}

func TestAccessPage_FullPool_EvictsLeastRecentlyUsed(t *testing.T) {
	k := newTestKernel(t, nil)
	pid := mustCreate(t, k, 10, 5)
	fillFrames(t, k, pid)

	got := mustAccess(t, k, pid, 16)

	assert.Equal(t, "Page fault: PID=1 page=16 (evicting PID=1 page=0) -> loaded to frame=0", got)
	row := k.Memory.PageTables.Row(pid)
	assert.False(t, row[0].Valid, "evicted page must be unmapped")
	assert.True(t, row[16].Valid)
	assert.Equal(t, 0, row[16].Frame)

	// The evicted page now faults and displaces the next-oldest frame.
	assert.Equal(t, "Page fault: PID=1 page=0 (evicting PID=1 page=1) -> loaded to frame=1", mustAccess(t, k, pid, 0))
}

func TestAccessPage_HitRefreshesLastAccess(t *testing.T) {
	k := newTestKernel(t, nil)
	pid := mustCreate(t, k, 10, 5)
	fillFrames(t, k, pid)

	got := mustAccess(t, k, pid, 5)

	assert.Equal(t, "Page hit: PID=1 page=5 frame=5", got)
	assert.Equal(t, 17, k.Frames()[5].LastAccess)
	assert.Equal(t, 1, k.MemoryStats().Hits)
}

func TestAccessPage_HitProtectsFrameFromEviction(t *testing.T) {
	// GIVEN a full pool where page 0 was just re-used
	k := newTestKernel(t, nil)
	pid := mustCreate(t, k, 10, 5)
	fillFrames(t, k, pid)
	mustAccess(t, k, pid, 0)

	// WHEN a new page faults
	got := mustAccess(t, k, pid, 20)

	// THEN page 1 is the victim, not page 0
	assert.Equal(t, "Page fault: PID=1 page=20 (evicting PID=1 page=1) -> loaded to frame=1", got)
}

func TestAccessPage_EvictionOnlyWhenAllFramesValid(t *testing.T) {
	k := newTestKernel(t, func(c *KernelConfig) { c.FrameCount = 4 })
	pid := mustCreate(t, k, 10, 5)

	for p := 0; p < 4; p++ {
		assert.NotContains(t, mustAccess(t, k, pid, p), "evicting")
	}
	assert.Contains(t, mustAccess(t, k, pid, 4), "evicting")
}

func TestAccessPage_EvictsAcrossProcesses(t *testing.T) {
	k := newTestKernel(t, func(c *KernelConfig) { c.FrameCount = 2 })
	a := mustCreate(t, k, 10, 5)
	b := mustCreate(t, k, 10, 5)

	mustAccess(t, k, a, 3)
	mustAccess(t, k, b, 7)
	got := mustAccess(t, k, b, 8)

	assert.Equal(t, "Page fault: PID=2 page=8 (evicting PID=1 page=3) -> loaded to frame=0", got)
	assert.False(t, k.Memory.PageTables.Row(a)[3].Valid)
}

func TestAccessPage_UnknownPID_NotFoundButClockAdvances(t *testing.T) {
	k := newTestKernel(t, nil)
	pid := mustCreate(t, k, 10, 5)

	_, err := k.AccessPage(99, 0)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, k.Memory.Clock)

	mustAccess(t, k, pid, 0)
	assert.Equal(t, 2, k.Frames()[0].LastAccess)
}

func TestAccessPage_PageOutOfRange_InvalidParameter(t *testing.T) {
	k := newTestKernel(t, nil)
	pid := mustCreate(t, k, 10, 5)

	for _, page := range []int{32, 100, -1} {
		_, err := k.AccessPage(pid, page)
		assert.ErrorIs(t, err, ErrInvalidParameter, "page %d", page)
	}
	st := k.MemoryStats()
	assert.Equal(t, 0, st.Faults+st.Hits, "rejected accesses are not counted")
	assert.Equal(t, 3, k.Memory.Clock)
}

func TestAccessPage_IndependentOfSchedulerTick(t *testing.T) {
	k := newTestKernel(t, nil)
	pid := mustCreate(t, k, 10, 5)
	for i := 0; i < 5; i++ {
		k.Tick()
	}
	mustAccess(t, k, pid, 0)

	assert.Equal(t, 5, k.CurrentTick())
	assert.Equal(t, 1, k.Memory.Clock)
	assert.Equal(t, 1, k.Frames()[0].LastAccess)
}

func TestAllocatePages_TooMany_FailsWithoutMutation(t *testing.T) {
	// GIVEN a process with some mapped pages
	k := newTestKernel(t, nil)
	pid := mustCreate(t, k, 10, 5)
	mustAccess(t, k, pid, 0)
	mustAccess(t, k, pid, 1)
	before := k.Memory.PageTables.Row(pid)

	// WHEN more than MaxPagesPerProcess pages are requested
	err := k.AllocatePages(pid, 33)

	// THEN it fails and the row is unchanged
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, before, k.Memory.PageTables.Row(pid))
}

func TestAllocatePages_ExactlyMax_Succeeds(t *testing.T) {
	k := newTestKernel(t, nil)
	pid := mustCreate(t, k, 10, 5)
	assert.NoError(t, k.AllocatePages(pid, 32))
}

func TestAllocatePages_Errors(t *testing.T) {
	k := newTestKernel(t, nil)
	pid := mustCreate(t, k, 10, 5)
	assert.ErrorIs(t, k.AllocatePages(7, 4), ErrNotFound)
	assert.ErrorIs(t, k.AllocatePages(pid, -1), ErrInvalidParameter)
}

func TestAllocatePages_UnmapsLeadingEntriesButKeepsFrames(t *testing.T) {
	// GIVEN pages 0..15 resident in a full pool
	k := newTestKernel(t, nil)
	pid := mustCreate(t, k, 10, 5)
	fillFrames(t, k, pid)

	// WHEN the first 4 entries are reset
	require.NoError(t, k.AllocatePages(pid, 4))

	// THEN those entries are unmapped while the frames stay valid
	row := k.Memory.PageTables.Row(pid)
	for p := 0; p < 4; p++ {
		assert.False(t, row[p].Valid)
		assert.Equal(t, -1, row[p].Frame)
	}
	assert.True(t, row[4].Valid)
	assert.Equal(t, 16, k.MemoryStats().UsedFrames)

	// AND re-touching page 0 faults, evicting its own stale frame
	assert.Equal(t, "Page fault: PID=1 page=0 (evicting PID=1 page=0) -> loaded to frame=0", mustAccess(t, k, pid, 0))
	assert.True(t, k.Memory.PageTables.Row(pid)[0].Valid)
}

func TestKillProcess_LeavesFramesResident(t *testing.T) {
	k := newTestKernel(t, nil)
	pid := mustCreate(t, k, 10, 5)
	mustAccess(t, k, pid, 2)

	require.NoError(t, k.KillProcess(pid))

	f := k.Frames()[0]
	assert.True(t, f.Valid)
	assert.Equal(t, pid, f.PID)
	assert.Equal(t, 2, f.Page)
}

func TestPageTableRows_AliasByPIDModulo(t *testing.T) {
	// GIVEN two process slots, and live PIDs 2 and 4 which share row 0
	k := newTestKernel(t, func(c *KernelConfig) { c.MaxProcesses = 2 })
	p1 := mustCreate(t, k, 10, 0)
	p2 := mustCreate(t, k, 10, 0)
	require.NoError(t, k.KillProcess(p1))
	p3 := mustCreate(t, k, 10, 0)
	require.NoError(t, k.KillProcess(p3))
	p4 := mustCreate(t, k, 10, 0)
	require.Equal(t, PID(4), p4)

	// WHEN PID 2 loads page 0
	mustAccess(t, k, p2, 0)

	// THEN PID 4 sees the same mapping as a hit
	assert.Equal(t, "Page hit: PID=4 page=0 frame=0", mustAccess(t, k, p4, 0))
	assert.Equal(t, k.Memory.PageTables.RowIndex(p2), k.Memory.PageTables.RowIndex(p4))
}

func TestMemoryStats_HitRate(t *testing.T) {
	k := newTestKernel(t, nil)
	pid := mustCreate(t, k, 10, 5)

	st := k.MemoryStats()
	assert.Equal(t, 0, st.Accesses)
	assert.Equal(t, 0, st.HitRate)
	assert.Equal(t, 4096, st.PageSize)
	assert.Equal(t, 16, st.TotalFrames)

	mustAccess(t, k, pid, 0)
	mustAccess(t, k, pid, 0)
	mustAccess(t, k, pid, 0)

	st = k.MemoryStats()
	assert.Equal(t, 1, st.Faults)
	assert.Equal(t, 2, st.Hits)
	assert.Equal(t, 66, st.HitRate)
	assert.Equal(t, 1, st.UsedFrames)
	assert.Equal(t, 15, st.FreeFrames)
}

func TestAccessPage_TraceRecordsDecisions(t *testing.T) {
	k := newTestKernel(t, func(c *KernelConfig) { c.FrameCount = 1 })
	k.EnableTrace(trace.TraceLevelDecisions)
	pid := mustCreate(t, k, 10, 5)

	mustAccess(t, k, pid, 0)
	mustAccess(t, k, pid, 0)
	mustAccess(t, k, pid, 1)

	summary := trace.Summarize(k.Trace)
	assert.Equal(t, 1, summary.Hits)
	assert.Equal(t, 2, summary.Faults)
	assert.Equal(t, 1, summary.Evictions)
	last := k.Trace.Accesses[2]
	assert.Equal(t, 3, last.Clock)
	assert.Equal(t, int(pid), last.EvictedPID)
	assert.Equal(t, 0, last.EvictedPage)
}

func TestAccessResult_String(t *testing.T) {
	tests := []struct {
		res  AccessResult
		want string
	}{
		{AccessResult{PID: 3, Page: 4, Frame: 2, Hit: true}, "Page hit: PID=3 page=4 frame=2"},
		{AccessResult{PID: 3, Page: 4, Frame: 2}, "Page fault: PID=3 page=4 -> loaded to frame=2"},
		{AccessResult{PID: 3, Page: 4, Frame: 2, Evicted: true, EvictedPID: 1, EvictedPage: 9},
			"Page fault: PID=3 page=4 (evicting PID=1 page=9) -> loaded to frame=2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.res.String())
	}
}

func TestAccessPage_EvictingStaleFrameKeepsNewerMapping(t *testing.T) {
	// GIVEN page 0 reloaded into frame 1 after AllocatePages left frame 0 stale
	k := newTestKernel(t, func(c *KernelConfig) { c.FrameCount = 3 })
	pid := mustCreate(t, k, 10, 5)
	mustAccess(t, k, pid, 0)
	require.NoError(t, k.AllocatePages(pid, 1))
	require.Equal(t, "Page fault: PID=1 page=0 -> loaded to frame=1", mustAccess(t, k, pid, 0))
	mustAccess(t, k, pid, 1)

	// WHEN the stale frame 0 is chosen as the LRU victim
	require.Equal(t, "Page fault: PID=1 page=2 (evicting PID=1 page=0) -> loaded to frame=0", mustAccess(t, k, pid, 2))

	// THEN page 0 is still mapped to frame 1
	assert.Equal(t, "Page hit: PID=1 page=0 frame=1", mustAccess(t, k, pid, 0))
}
