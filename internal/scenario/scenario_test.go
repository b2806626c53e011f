package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/dagbench/internal/strategy"
)

func writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSingleFile(t *testing.T) {
	path := writeScenario(t, "bench.hcl", `
workload "demo" {
  nodes            = 15
  edge_probability = 0.3
  seed             = 42
  strategy         = "delay"
  time_scale_ms    = 10
}

workload "sparse" {
  nodes            = 5
  edge_probability = 0
}
`)

	workloads, err := Load(context.Background(), path, nil)
	require.NoError(t, err)
	require.Len(t, workloads, 2)

	demo := workloads[0]
	assert.Equal(t, "demo", demo.Name)
	assert.Equal(t, 15, demo.Nodes)
	assert.InDelta(t, 0.3, demo.EdgeProbability, 1e-9)
	assert.Equal(t, int64(42), demo.Seed)

	cfg := demo.GeneratorConfig()
	assert.Equal(t, 15, cfg.Nodes)
	assert.Equal(t, int64(42), cfg.Seed)

	strat, err := demo.BuildStrategy()
	require.NoError(t, err)
	assert.Equal(t, strategy.Delay{Scale: 10 * time.Millisecond}, strat)

	// Optional fields default to the delay strategy with zero scale.
	sparse := workloads[1]
	assert.Equal(t, "", sparse.Strategy)
	strat, err = sparse.BuildStrategy()
	require.NoError(t, err)
	assert.Equal(t, strategy.Delay{}, strat)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte(`
workload "one" {
  nodes            = 3
  edge_probability = 0.5
}
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.hcl"), []byte(`
workload "two" {
  nodes            = 4
  edge_probability = 0.5
}
`), 0644))

	workloads, err := Load(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Len(t, workloads, 2)
}

func TestLoadVarInterpolation(t *testing.T) {
	path := writeScenario(t, "vars.hcl", `
workload "interp" {
  nodes            = 4
  edge_probability = 0.2
  strategy         = var.strategy
}
`)

	workloads, err := Load(context.Background(), path, map[string]string{"strategy": "delay"})
	require.NoError(t, err)
	require.Len(t, workloads, 1)
	assert.Equal(t, "delay", workloads[0].Strategy)
}

func TestLoadErrors(t *testing.T) {
	t.Run("malformed hcl", func(t *testing.T) {
		path := writeScenario(t, "bad.hcl", `workload "x" {`)
		_, err := Load(context.Background(), path, nil)
		assert.ErrorContains(t, err, "failed to parse")
	})

	t.Run("missing required attribute", func(t *testing.T) {
		path := writeScenario(t, "missing.hcl", `
workload "x" {
  nodes = 3
}
`)
		_, err := Load(context.Background(), path, nil)
		assert.ErrorContains(t, err, "failed to decode")
	})

	t.Run("unknown strategy", func(t *testing.T) {
		path := writeScenario(t, "strat.hcl", `
workload "x" {
  nodes            = 3
  edge_probability = 0.5
  strategy         = "quantum"
}
`)
		_, err := Load(context.Background(), path, nil)
		assert.ErrorContains(t, err, `unknown strategy "quantum"`)
	})

	t.Run("duplicate workload name", func(t *testing.T) {
		path := writeScenario(t, "dup.hcl", `
workload "x" {
  nodes            = 3
  edge_probability = 0.5
}
workload "x" {
  nodes            = 4
  edge_probability = 0.5
}
`)
		_, err := Load(context.Background(), path, nil)
		assert.ErrorContains(t, err, "duplicate workload name")
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"), nil)
		assert.Error(t, err)
	})
}
