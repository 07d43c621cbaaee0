// Package testutil provides shared test infrastructure for the minikern packages:
// golden transcript files and tolerance-based float assertions.
package testutil

import (
	"flag"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var update = flag.Bool("update", false, "rewrite golden files with the current output")

// GoldenPath returns testdata/<name>.golden relative to the calling package.
func GoldenPath(name string) string {
	return filepath.Join("testdata", name+".golden")
}

// AssertGolden compares got with the named golden file.
// Run the package tests with -update to rewrite the file from got.
func AssertGolden(t *testing.T, name, got string) {
	t.Helper()
	path := GoldenPath(name)
	if *update {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(got), 0o644))
		return
	}
	want, err := os.ReadFile(path)
	require.NoError(t, err, "reading golden file %s", path)
	assert.Equal(t, string(want), got, "output differs from %s", path)
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
