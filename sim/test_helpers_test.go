package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestKernel builds a kernel from the default configuration after applying mutate.
func newTestKernel(t *testing.T, mutate func(*KernelConfig)) *Kernel {
	t.Helper()
	cfg := DefaultKernelConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	k, err := NewKernel(cfg)
	require.NoError(t, err)
	return k
}

// mustCreate creates a process and fails the test on error.
func mustCreate(t *testing.T, k *Kernel, burst, priority int) PID {
	t.Helper()
	pid, err := k.CreateProcess(burst, priority)
	require.NoError(t, err)
	return pid
}

// mustAccess performs a page access and fails the test on error.
func mustAccess(t *testing.T, k *Kernel, pid PID, page int) string {
	t.Helper()
	report, err := k.AccessPage(pid, page)
	require.NoError(t, err)
	return report
}

type slotSpec struct {
	arrival  int
	priority int
}

// tableWith builds a process table whose slots hold Ready processes with the
// given arrivals and priorities. A nil entry leaves the slot free.
func tableWith(specs ...*slotSpec) *ProcessTable {
	pt := NewProcessTable(len(specs))
	for _, s := range specs {
		if s == nil {
			pt.insert(1, 0, 0, 1) // placeholder, released below
			continue
		}
		pt.insert(1, s.priority, s.arrival, 1)
	}
	for i, s := range specs {
		if s == nil {
			pt.release(pt.at(i))
		}
	}
	return pt
}
