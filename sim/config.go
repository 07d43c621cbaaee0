package sim

import "fmt"

// Defaults for a freshly constructed kernel.
const (
	DefaultMaxProcesses       = 64
	DefaultFrameCount         = 16
	DefaultMaxPagesPerProcess = 32
	DefaultPageSize           = 4096
	DefaultQuantum            = 4

	MinPriority = 0
	MaxPriority = 10
)

// ProcessConfig groups process table parameters.
type ProcessConfig struct {
	MaxProcesses int // process table slots (must be > 0)
}

// MemoryConfig groups paging parameters.
type MemoryConfig struct {
	FrameCount         int // physical frames (must be > 0)
	MaxPagesPerProcess int // page table entries per row (must be > 0)
	PageSize           int // bytes per page; informational, reported by meminfo
}

// SchedulerConfig groups the initial dispatch policy and RR quantum.
type SchedulerConfig struct {
	Mode    Mode // initial dispatch policy
	Quantum int  // initial RR time slice (must be > 0)
}

// KernelConfig groups all construction parameters for NewKernel.
type KernelConfig struct {
	ProcessConfig
	MemoryConfig
	SchedulerConfig
}

// NewProcessConfig creates a ProcessConfig with all fields explicitly set.
func NewProcessConfig(maxProcesses int) ProcessConfig {
	return ProcessConfig{MaxProcesses: maxProcesses}
}

// NewMemoryConfig creates a MemoryConfig with all fields explicitly set.
func NewMemoryConfig(frameCount, maxPagesPerProcess, pageSize int) MemoryConfig {
	return MemoryConfig{
		FrameCount:         frameCount,
		MaxPagesPerProcess: maxPagesPerProcess,
		PageSize:           pageSize,
	}
}

// NewSchedulerConfig creates a SchedulerConfig with all fields explicitly set.
func NewSchedulerConfig(mode Mode, quantum int) SchedulerConfig {
	return SchedulerConfig{Mode: mode, Quantum: quantum}
}

// DefaultKernelConfig returns the configuration of the reference machine:
// 64 process slots, 16 frames of 4 KiB, 32 pages per process, FCFS with quantum 4.
func DefaultKernelConfig() KernelConfig {
	return KernelConfig{
		ProcessConfig:   NewProcessConfig(DefaultMaxProcesses),
		MemoryConfig:    NewMemoryConfig(DefaultFrameCount, DefaultMaxPagesPerProcess, DefaultPageSize),
		SchedulerConfig: NewSchedulerConfig(ModeFCFS, DefaultQuantum),
	}
}

// Validate checks that every size in the configuration is usable.
func (c KernelConfig) Validate() error {
	if c.MaxProcesses <= 0 {
		return fmt.Errorf("max processes must be > 0, got %d: %w", c.MaxProcesses, ErrInvalidParameter)
	}
	if c.FrameCount <= 0 {
		return fmt.Errorf("frame count must be > 0, got %d: %w", c.FrameCount, ErrInvalidParameter)
	}
	if c.MaxPagesPerProcess <= 0 {
		return fmt.Errorf("max pages per process must be > 0, got %d: %w", c.MaxPagesPerProcess, ErrInvalidParameter)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be > 0, got %d: %w", c.PageSize, ErrInvalidParameter)
	}
	if !c.Mode.IsValid() {
		return fmt.Errorf("unknown scheduler mode %d: %w", c.Mode, ErrInvalidParameter)
	}
	if c.Quantum <= 0 {
		return fmt.Errorf("quantum must be > 0, got %d: %w", c.Quantum, ErrInvalidParameter)
	}
	return nil
}
