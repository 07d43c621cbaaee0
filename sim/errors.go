package sim

import "errors"

// Sentinel errors returned (wrapped) by Kernel operations.
// Callers test with errors.Is; the wrapped message carries the detail.
var (
	// ErrNotFound reports an unknown PID.
	ErrNotFound = errors.New("process not found")
	// ErrCapacityExceeded reports a full process table or a page count above MaxPagesPerProcess.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrInvalidParameter reports an out-of-range argument (quantum, priority, burst, page index).
	ErrInvalidParameter = errors.New("invalid parameter")
)
