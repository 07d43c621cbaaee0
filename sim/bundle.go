package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/minikern/minikern/sim/trace"
)

// KernelBundle holds kernel configuration loadable from a YAML file.
// Nil pointer fields mean "not set in YAML" and do not override KernelConfig.
// String fields use empty string for "not set".
type KernelBundle struct {
	Scheduler SchedulerBundle `yaml:"scheduler"`
	Memory    MemoryBundle    `yaml:"memory"`
	Processes ProcessBundle   `yaml:"processes"`
	Trace     string          `yaml:"trace"`
}

// SchedulerBundle holds scheduler configuration.
type SchedulerBundle struct {
	Mode    string `yaml:"mode"`
	Quantum *int   `yaml:"quantum"`
}

// MemoryBundle holds paging configuration.
type MemoryBundle struct {
	Frames             *int `yaml:"frames"`
	MaxPagesPerProcess *int `yaml:"max_pages_per_process"`
	PageSize           *int `yaml:"page_size"`
}

// ProcessBundle holds process table configuration.
type ProcessBundle struct {
	Max *int `yaml:"max"`
}

// LoadKernelBundle reads and parses a YAML kernel configuration file.
// Unknown keys are rejected so typos surface as errors.
func LoadKernelBundle(path string) (*KernelBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading kernel config: %w", err)
	}
	var bundle KernelBundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("parsing kernel config: %w", err)
	}
	return &bundle, nil
}

// Validate checks that all names and parameter ranges in the bundle are valid.
func (b *KernelBundle) Validate() error {
	if b.Scheduler.Mode != "" {
		if _, err := ParseMode(b.Scheduler.Mode); err != nil {
			return err
		}
	}
	if b.Scheduler.Quantum != nil && *b.Scheduler.Quantum <= 0 {
		return fmt.Errorf("quantum must be positive, got %d", *b.Scheduler.Quantum)
	}
	if b.Memory.Frames != nil && *b.Memory.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", *b.Memory.Frames)
	}
	if b.Memory.MaxPagesPerProcess != nil && *b.Memory.MaxPagesPerProcess <= 0 {
		return fmt.Errorf("max_pages_per_process must be positive, got %d", *b.Memory.MaxPagesPerProcess)
	}
	if b.Memory.PageSize != nil && *b.Memory.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", *b.Memory.PageSize)
	}
	if b.Processes.Max != nil && *b.Processes.Max <= 0 {
		return fmt.Errorf("processes.max must be positive, got %d", *b.Processes.Max)
	}
	if !trace.IsValidTraceLevel(b.Trace) {
		return fmt.Errorf("unknown trace level %q", b.Trace)
	}
	return nil
}

// Apply overlays every field set in the bundle onto cfg.
// Call Validate first; an invalid mode name is ignored here.
func (b *KernelBundle) Apply(cfg *KernelConfig) {
	if b.Scheduler.Mode != "" {
		if m, err := ParseMode(b.Scheduler.Mode); err == nil {
			cfg.Mode = m
		}
	}
	if b.Scheduler.Quantum != nil {
		cfg.Quantum = *b.Scheduler.Quantum
	}
	if b.Memory.Frames != nil {
		cfg.FrameCount = *b.Memory.Frames
	}
	if b.Memory.MaxPagesPerProcess != nil {
		cfg.MaxPagesPerProcess = *b.Memory.MaxPagesPerProcess
	}
	if b.Memory.PageSize != nil {
		cfg.PageSize = *b.Memory.PageSize
	}
	if b.Processes.Max != nil {
		cfg.MaxProcesses = *b.Processes.Max
	}
}
