// sim/frames.go
package sim

// Frame is one physical-memory slot. Its identity is its index in the pool.
type Frame struct {
	ID         int // slot index
	PID        PID // owning process, NoPID when invalid
	Page       int // owning virtual page, -1 when invalid
	LastAccess int // access-clock value of the last load or hit (for LRU)
	Valid      bool
}

// FramePool maintains the fixed set of physical frames and their LRU metadata.
// Victim selection is a linear scan in index order, so lower indices win ties.
type FramePool struct {
	frames []Frame
}

// NewFramePool allocates count frames, all invalid.
func NewFramePool(count int) *FramePool {
	fp := &FramePool{frames: make([]Frame, count)}
	fp.Reset()
	return fp
}

// Reset invalidates every frame and zeroes its access time.
func (fp *FramePool) Reset() {
	for i := range fp.frames {
		fp.frames[i] = Frame{ID: i, PID: NoPID, Page: -1}
	}
}

// Len returns the number of frames in the pool.
func (fp *FramePool) Len() int {
	return len(fp.frames)
}

// FindFreeFrame returns the lowest-index invalid frame.
func (fp *FramePool) FindFreeFrame() (int, bool) {
	for i := range fp.frames {
		if !fp.frames[i].Valid {
			return i, true
		}
	}
	return -1, false
}

// FindLRUFrame returns the frame with the smallest LastAccess.
// The scan starts at 0 and only replaces on strictly older, keeping the
// earliest index among equal timestamps.
func (fp *FramePool) FindLRUFrame() int {
	lru := 0
	oldest := fp.frames[0].LastAccess
	for i := 1; i < len(fp.frames); i++ {
		if fp.frames[i].LastAccess < oldest {
			oldest = fp.frames[i].LastAccess
			lru = i
		}
	}
	return lru
}

// UsedFrames returns the number of valid frames.
func (fp *FramePool) UsedFrames() int {
	used := 0
	for i := range fp.frames {
		if fp.frames[i].Valid {
			used++
		}
	}
	return used
}

// Frames returns a copy of every frame in index order.
func (fp *FramePool) Frames() []Frame {
	out := make([]Frame, len(fp.frames))
	copy(out, fp.frames)
	return out
}

// at returns the frame at index i.
func (fp *FramePool) at(i int) *Frame {
	return &fp.frames[i]
}

// bind loads (pid, page) into frame i and stamps it with clock.
func (fp *FramePool) bind(i int, pid PID, page int, clock int) {
	f := &fp.frames[i]
	f.PID = pid
	f.Page = page
	f.LastAccess = clock
	f.Valid = true
}

// touch refreshes the LRU timestamp of frame i.
func (fp *FramePool) touch(i int, clock int) {
	fp.frames[i].LastAccess = clock
}
