package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse(nil, &out)
	require.NoError(t, err)
	assert.False(t, exit)

	assert.Equal(t, "", cfg.ScenarioPath)
	assert.Equal(t, 15, cfg.Nodes)
	assert.InDelta(t, 0.3, cfg.EdgeProbability, 1e-9)
	assert.Equal(t, int64(100), cfg.TimeScaleMS)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParseScenarioPath(t *testing.T) {
	var out bytes.Buffer

	cfg, _, err := Parse([]string{"-scenario", "bench.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "bench.hcl", cfg.ScenarioPath)

	cfg, _, err = Parse([]string{"-s", "short.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "short.hcl", cfg.ScenarioPath)

	cfg, _, err = Parse([]string{"positional.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "positional.hcl", cfg.ScenarioPath)
}

func TestParseVars(t *testing.T) {
	var out bytes.Buffer
	cfg, _, err := Parse([]string{"-var", "a=1", "-var", "b=two"}, &out)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "two"}, cfg.Vars)

	_, _, err = Parse([]string{"-var", "novalue"}, &out)
	require.Error(t, err)
}

func TestParseValidation(t *testing.T) {
	var out bytes.Buffer

	_, _, err := Parse([]string{"-log-format", "xml"}, &out)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)

	_, _, err = Parse([]string{"-log-level", "loud"}, &out)
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)

	_, _, err = Parse([]string{"-flat"}, &out)
	require.ErrorAs(t, err, &exitErr)
	assert.Contains(t, exitErr.Message, "requires an output path")
}

func TestParseHelp(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"-h"}, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}
