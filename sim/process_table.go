package sim

// ProcessTable is a fixed-capacity registry of PCB slots.
// A slot is free when its PID is NoPID. Slot index order is the scan order
// for every selection policy, so entries are never compacted or reordered.
type ProcessTable struct {
	slots   []Process
	nextPID PID
}

// NewProcessTable allocates capacity empty slots. PIDs start at 1.
func NewProcessTable(capacity int) *ProcessTable {
	pt := &ProcessTable{
		slots:   make([]Process, capacity),
		nextPID: 1,
	}
	pt.Reset()
	return pt
}

// Reset frees every slot. The PID counter is left alone so identities stay unique.
func (pt *ProcessTable) Reset() {
	for i := range pt.slots {
		pt.slots[i] = Process{PID: NoPID, Slot: i, State: StateTerminated}
	}
}

// Capacity returns the number of slots.
func (pt *ProcessTable) Capacity() int {
	return len(pt.slots)
}

// freeSlot returns the lowest free slot index, or -1 if the table is full.
func (pt *ProcessTable) freeSlot() int {
	for i := range pt.slots {
		if pt.slots[i].PID == NoPID {
			return i
		}
	}
	return -1
}

// insert claims the lowest free slot for a new Ready process.
// Returns nil when the table is full.
func (pt *ProcessTable) insert(burst, priority, arrival, timeSlice int) *Process {
	i := pt.freeSlot()
	if i < 0 {
		return nil
	}
	pt.slots[i] = Process{
		PID:           pt.nextPID,
		Slot:          i,
		State:         StateReady,
		Priority:      priority,
		BurstTime:     burst,
		RemainingTime: burst,
		ArrivalTime:   arrival,
		TimeSlice:     timeSlice,
	}
	pt.nextPID++
	return &pt.slots[i]
}

// lookup returns the occupied slot holding pid, or nil.
func (pt *ProcessTable) lookup(pid PID) *Process {
	if pid == NoPID {
		return nil
	}
	for i := range pt.slots {
		if pt.slots[i].PID == pid {
			return &pt.slots[i]
		}
	}
	return nil
}

// release frees the slot. The caller has already marked the PCB Terminated.
func (pt *ProcessTable) release(p *Process) {
	p.PID = NoPID
}

// at returns the slot at index i, occupied or not.
func (pt *ProcessTable) at(i int) *Process {
	return &pt.slots[i]
}

// isReady reports whether slot i holds a live Ready process.
func (pt *ProcessTable) isReady(i int) bool {
	return pt.slots[i].PID != NoPID && pt.slots[i].State == StateReady
}

// Active returns copies of the occupied, non-terminated slots in slot order.
func (pt *ProcessTable) Active() []Process {
	out := make([]Process, 0, len(pt.slots))
	for _, p := range pt.slots {
		if p.PID != NoPID && p.State != StateTerminated {
			out = append(out, p)
		}
	}
	return out
}
