package sim

// PageTableEntry maps one virtual page to a physical frame.
// Frame is meaningful only when Valid.
type PageTableEntry struct {
	Frame int
	Valid bool
}

// PageTableStore holds the per-process page tables, one row per process-table slot.
//
// Rows are selected by pid mod rows, not by the process's table slot. Once PIDs
// pass the row count, two live processes can share a row and see each other's
// mappings. Callers depend on this indexing; do not switch to slot indexing
// without updating the paging tests.
type PageTableStore struct {
	rows [][]PageTableEntry
}

// NewPageTableStore allocates rows x pagesPerRow unmapped entries.
func NewPageTableStore(rows, pagesPerRow int) *PageTableStore {
	ps := &PageTableStore{rows: make([][]PageTableEntry, rows)}
	for i := range ps.rows {
		ps.rows[i] = make([]PageTableEntry, pagesPerRow)
	}
	ps.Reset()
	return ps
}

// Reset unmaps every entry.
func (ps *PageTableStore) Reset() {
	for _, row := range ps.rows {
		for j := range row {
			row[j] = PageTableEntry{Frame: -1}
		}
	}
}

// PagesPerRow returns the number of entries in each row.
func (ps *PageTableStore) PagesPerRow() int {
	if len(ps.rows) == 0 {
		return 0
	}
	return len(ps.rows[0])
}

// RowIndex returns the row used for pid.
func (ps *PageTableStore) RowIndex(pid PID) int {
	return int(pid) % len(ps.rows)
}

// entry returns the mutable entry for (pid, page).
func (ps *PageTableStore) entry(pid PID, page int) *PageTableEntry {
	return &ps.rows[ps.RowIndex(pid)][page]
}

// unmapFirst resets the first count entries of pid's row.
func (ps *PageTableStore) unmapFirst(pid PID, count int) {
	row := ps.rows[ps.RowIndex(pid)]
	for i := 0; i < count; i++ {
		row[i] = PageTableEntry{Frame: -1}
	}
}

// Row returns a copy of pid's row.
func (ps *PageTableStore) Row(pid PID) []PageTableEntry {
	row := ps.rows[ps.RowIndex(pid)]
	out := make([]PageTableEntry, len(row))
	copy(out, row)
	return out
}
