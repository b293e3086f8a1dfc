package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, contents string, perm os.FileMode) string {
	pathname := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(pathname, []byte(contents), perm))
	return pathname
}

func TestLoadConfig(t *testing.T) {
	pathname := writeFile(t, "hyperfold.yaml", `
workspace:
  sequence: GGGAAACCC
  store:
    strategy: memory
    resolution: 0.5
  sweep:
    workers: 3
    skip_failures: true
oracle:
  path: /opt/vienna/bin/RNAfold
  args: ["--noLP"]
`, 0o644)

	cfg, err := LoadConfig(pathname)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "GGGAAACCC", cfg.Workspace.Sequence)
	assert.Equal(t, hyperfold.MemoryOptimized, cfg.Workspace.Store.Strategy)
	assert.Equal(t, hyperfold.Temp(0.5), cfg.Workspace.Store.Resolution)
	assert.Equal(t, 3, cfg.Workspace.Sweep.Workers)
	assert.True(t, cfg.Workspace.Sweep.SkipFailures)
	assert.Equal(t, "/opt/vienna/bin/RNAfold", cfg.Oracle.Path)
	assert.Equal(t, []string{"--noLP"}, cfg.Oracle.Args)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, hyperfold.SearchOptimized, cfg.Workspace.Store.Strategy)
	assert.Equal(t, hyperfold.Temp(1), cfg.Workspace.Store.Resolution)

	// no sequence
	assert.True(t, errors.Is(cfg.Validate(), hyperfold.ErrInvalidArgument))
}

func TestLoadConfigStoreWithoutStrategy(t *testing.T) {
	pathname := writeFile(t, "store.yaml", "workspace:\n  sequence: GAC\n  store:\n    resolution: 0.5\n", 0o644)
	cfg, err := LoadConfig(pathname)
	require.NoError(t, err)
	assert.Equal(t, hyperfold.SearchOptimized, cfg.Workspace.Store.Strategy)
	assert.Equal(t, hyperfold.Temp(0.5), cfg.Workspace.Store.Resolution)
}

func TestLoadConfigRejectsBadStrategy(t *testing.T) {
	pathname := writeFile(t, "bad.yaml", "workspace:\n  store:\n    strategy: sideways\n", 0o644)
	_, err := LoadConfig(pathname)
	assert.True(t, errors.Is(err, hyperfold.ErrInvalidArgument))
}

// fakeRNAfold echoes the sequence then a hairpin below 50 degrees and an open chain above.
const fakeRNAfold = `#!/bin/sh
read seq
T=$3
echo "$seq"
if [ "${T%%.*}" -lt 50 ]; then
  echo "(((...))) ( -1.20)"
else
  echo "......... (  0.00)"
fi
`

func TestSweepCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a posix shell")
	}
	oracle := writeFile(t, "RNAfold", fakeRNAfold, 0o755)
	cfgPath := writeFile(t, "hyperfold.yaml", "oracle:\n  path: "+oracle+"\n", 0o644)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"sweep", "--config", cfgPath, "--seq", "GGGAAACCC", "--workers", "2", "40..60"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "requested 21, computed 21, cached 0, failed 0")
	assert.Contains(t, out.String(), "[40, 49]")
	assert.Contains(t, out.String(), "[50, 60]")
}
