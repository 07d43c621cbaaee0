package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/minikern/minikern/sim"
	"github.com/minikern/minikern/sim/trace"
)

// parsedCommand returns a command carrying the kernel flags, parsed from args.
func parsedCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	addKernelFlags(c.Flags())
	require.NoError(t, c.ParseFlags(args))
	return c
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kernel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuildKernelConfig_Defaults(t *testing.T) {
	cfg, level, err := buildKernelConfig(parsedCommand(t))

	require.NoError(t, err)
	assert.Equal(t, sim.DefaultKernelConfig(), cfg)
	assert.Equal(t, trace.TraceLevelNone, level)
}

func TestBuildKernelConfig_FlagsOverrideYAML(t *testing.T) {
	// GIVEN a config file setting mode, quantum, frames and tracing
	path := writeConfig(t, "scheduler:\n  mode: rr\n  quantum: 2\nmemory:\n  frames: 8\ntrace: decisions\n")

	// WHEN --frames is also given on the command line
	cfg, level, err := buildKernelConfig(parsedCommand(t, "--config", path, "--frames", "4"))

	// THEN the flag wins and the other YAML values apply
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.FrameCount)
	assert.Equal(t, 2, cfg.Quantum)
	assert.Equal(t, sim.ModeRoundRobin, cfg.Mode)
	assert.Equal(t, sim.DefaultMaxProcesses, cfg.MaxProcesses)
	assert.Equal(t, trace.TraceLevelDecisions, level)
}

func TestBuildKernelConfig_UnchangedFlagsDoNotOverrideYAML(t *testing.T) {
	path := writeConfig(t, "processes:\n  max: 3\n")

	cfg, _, err := buildKernelConfig(parsedCommand(t, "--config", path))

	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxProcesses)
}

func TestBuildKernelConfig_Errors(t *testing.T) {
	badYAML := writeConfig(t, "memory:\n  framez: 8\n")
	badRange := writeConfig(t, "memory:\n  frames: 0\n")

	tests := []struct {
		name string
		args []string
	}{
		{"unknown mode flag", []string{"--mode", "sjf"}},
		{"unknown trace level", []string{"--trace", "verbose"}},
		{"zero quantum flag", []string{"--quantum", "0"}},
		{"unknown yaml key", []string{"--config", badYAML}},
		{"out of range yaml", []string{"--config", badRange}},
		{"missing config", []string{"--config", "/nonexistent/kernel.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := buildKernelConfig(parsedCommand(t, tt.args...))
			assert.Error(t, err)
		})
	}
}

func TestNewKernel_EnablesTraceFromFlag(t *testing.T) {
	k, err := newKernel(parsedCommand(t, "--trace", "decisions", "--max-pages", "8"))

	require.NoError(t, err)
	require.NotNil(t, k.Trace)
	assert.Equal(t, 8, k.Config.MaxPagesPerProcess)
}
