// File: cmd/schedbench/main_test.go
// Author: momentics <momentics@gmail.com>

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/momentics/schedbench/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_List(t *testing.T) {
	code, out, _ := runCLI(t, "-list")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "0: Experiment 1:")
	assert.Contains(t, out, "4: Experiment 5:")
}

func TestRun_ListWithPresetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	doc := "presets:\n  - id: 9\n    description: solo\n    workers:\n      - appId: 1\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	code, out, _ := runCLI(t, "-presets", path, "-list")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "9: solo")

	code, _, _ = runCLI(t, "-presets", filepath.Join(t.TempDir(), "none.yaml"), "-list")
	assert.Equal(t, exitUsage, code)
}

func TestRun_UnrecognizedExperiment(t *testing.T) {
	code, out, errOut := runCLI(t, "-no-mlock", "99")
	assert.Equal(t, exitUnrecognized, code)
	assert.Empty(t, out, "no report for an unknown preset")
	assert.Contains(t, errOut, "exp_id 99 not found")

	code, _, _ = runCLI(t, "abc")
	assert.Equal(t, exitUnrecognized, code)
}

func TestRun_Usage(t *testing.T) {
	cases := [][]string{
		{"-bogus"},
		{"1", "2"},
		{"-format", "xml", "1"},
		{"-join", "random", "-no-mlock", "1"},
		{"-workload", "video", "1"},
		{"-log-level", "loud", "1"},
		{"-cpu", "-3", "1"},
	}
	for _, args := range cases {
		code, _, _ := runCLI(t, args...)
		assert.Equal(t, exitUsage, code, "%v", args)
	}
	code, _, _ := runCLI(t, "-h")
	assert.Equal(t, exitOK, code)
}

func TestRun_Probe(t *testing.T) {
	code, out, _ := runCLI(t, "-probe", "-format", "json")
	require.Equal(t, exitOK, code)
	var state map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.EqualValues(t, runtime.NumCPU(), state["platform.cpus"])
}

func TestRun_ExperimentJSON(t *testing.T) {
	dir := t.TempDir()
	metrics := filepath.Join(dir, "run.prom")
	trace := filepath.Join(dir, "trace.json")
	code, out, errOut := runCLI(t,
		"-no-mlock", "-affinity=false", "-spin-iterations", "10000", "-join", "concurrent",
		"-format", "json", "-metrics-out", metrics, "-trace-out", trace, "1")
	require.Equal(t, exitOK, code, errOut)

	var res struct {
		RunID   string              `json:"runId"`
		Reports []api.RuntimeReport `json:"reports"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.NotEmpty(t, res.RunID)
	require.Len(t, res.Reports, 3)
	for i, rep := range res.Reports {
		assert.Equal(t, i+1, rep.AppID)
		assert.Nil(t, rep.PinnedCPU)
	}

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "schedbench_worker_elapsed_seconds")

	spans, err := os.ReadFile(trace)
	require.NoError(t, err)
	assert.Contains(t, string(spans), "experiment.run")
}

func TestRun_DefaultExperimentWarns(t *testing.T) {
	code, out, errOut := runCLI(t, "-no-mlock", "-affinity=false", "-spin-iterations", "1000")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, errOut, "no experiment id given")
	assert.Contains(t, out, "Experiment 5:")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitFatalSetup, exitCode(api.NewError(api.ErrCodeFatalSetup, "mlockall", nil)))
	assert.Equal(t, exitUnrecognized, exitCode(api.NewError(api.ErrCodeUnrecognizedExperiment, "lookup", nil)))
	assert.Equal(t, exitWorkerCreation, exitCode(api.NewError(api.ErrCodeWorkerCreation, "new", nil)))
	assert.Equal(t, exitWorkerCreation, exitCode(api.NewError(api.ErrCodeSchedulingAttribute, "sched_setattr", nil)))
	assert.Equal(t, exitOther, exitCode(api.NewError(api.ErrCodeWorkload, "run", nil)))
	assert.Equal(t, exitOther, exitCode(os.ErrClosed))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SCHEDBENCH_JOIN", "concurrent")
	t.Setenv("SCHEDBENCH_AFFINITY", "false")
	t.Setenv("SCHEDBENCH_SPIN_ITERATIONS", "77")
	t.Setenv("SCHEDBENCH_EXPERIMENT", "2")

	cfg, err := parseFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "concurrent", cfg.join)
	assert.False(t, cfg.affinity)
	assert.Equal(t, 77, cfg.spinIters)
	assert.Equal(t, 2, cfg.presetID)
	assert.True(t, cfg.idGiven)

	for _, v := range []string{"1", "yes", "TRUE", "on"} {
		t.Setenv("SCHEDBENCH_STRICT", v)
		cfg, err = parseFlags(nil, &bytes.Buffer{})
		require.NoError(t, err)
		assert.True(t, cfg.strict, v)
	}
	t.Setenv("SCHEDBENCH_STRICT", "0")
	cfg, err = parseFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, cfg.strict)

	cfg, err = parseFlags([]string{"-join", "sequential", "3"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "sequential", cfg.join)
	assert.Equal(t, 3, cfg.presetID)
}

func TestEnvExperimentMustBeInteger(t *testing.T) {
	t.Setenv("SCHEDBENCH_EXPERIMENT", "five")
	_, err := parseFlags(nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, api.ErrUnrecognizedExperiment)

	code, out, errOut := runCLI(t, "-no-mlock")
	assert.Equal(t, exitUnrecognized, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, `exp_id "five" not found`)
}
