//go:build linux
// +build linux

// File: experiment/scenario_linux_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Timing scenarios against the real kernel. They need CAP_SYS_NICE (or an RTPRIO
// rlimit of at least 80) and are skipped otherwise, and always under -short.

package experiment_test

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/momentics/schedbench/affinity"
	"github.com/momentics/schedbench/api"
	"github.com/momentics/schedbench/experiment"
	"github.com/momentics/schedbench/internal/concurrency"
	"github.com/momentics/schedbench/worker"
	"github.com/momentics/schedbench/workload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioIterations = 150_000_000

func requireRealTime(t *testing.T) []int {
	t.Helper()
	if testing.Short() {
		t.Skip("timing scenario")
	}
	granted := make(chan error, 1)
	go func() {
		concurrency.OwnThread()
		granted <- concurrency.ApplyPolicy(api.PolicyFIFO, 80)
	}()
	if err := <-granted; err != nil {
		t.Skipf("real-time scheduling not permitted: %v", err)
	}
	cpus, err := affinity.Allowed()
	require.NoError(t, err)
	return cpus
}

// soloRuntime measures one best-effort worker alone on cpu.
func soloRuntime(t *testing.T, cpu int) time.Duration {
	t.Helper()
	w, err := worker.New(api.WorkerIdentity{AppID: 1}, api.BestEffort().Pinned(cpu),
		workload.Spin(scenarioIterations))
	require.NoError(t, err)
	require.NoError(t, w.Start())
	rep, err := w.Join()
	require.NoError(t, err)
	return rep.Elapsed
}

func scenarioRun(t *testing.T, id int, mutate func(*experiment.Options)) *experiment.Result {
	t.Helper()
	opts := experiment.DefaultOptions()
	opts.LockMemory = false
	opts.Params.SpinIterations = scenarioIterations
	mutate(&opts)
	res, err := experiment.NewRunner(experiment.DefaultCatalog(), opts).Run(context.Background(), id)
	require.NoError(t, err)
	for _, rep := range res.Reports {
		require.Empty(t, rep.Warnings, "app %d", rep.AppID)
	}
	return res
}

func ratio(a, b time.Duration) float64 { return float64(a) / float64(b) }

func TestScenario_RealTimeDominatesSharedCPU(t *testing.T) {
	cpus := requireRealTime(t)
	cpu := cpus[len(cpus)-1]
	solo := soloRuntime(t, cpu)

	res := scenarioRun(t, 0, func(o *experiment.Options) { o.PinCPU = &cpu })
	rt, _ := res.Report(1)
	be2, _ := res.Report(2)
	be3, _ := res.Report(3)

	assert.Equal(t, 1, res.CompletionOrder[0], "the real-time worker finishes first")
	assert.Less(t, ratio(rt.Elapsed, solo), 1.5)
	assert.Greater(t, be2.Elapsed, rt.Elapsed)
	assert.Greater(t, be3.Elapsed, rt.Elapsed)
	assert.InDelta(t, 1.0, ratio(be2.Elapsed, be3.Elapsed), 0.5)
}

func TestScenario_FreePlacementConverges(t *testing.T) {
	cpus := requireRealTime(t)
	if len(cpus) < 4 || runtime.NumCPU() < 4 {
		t.Skip("needs four CPUs")
	}
	solo := soloRuntime(t, cpus[0])

	res := scenarioRun(t, 0, func(o *experiment.Options) { o.Affinity = false })
	for _, rep := range res.Reports {
		assert.Nil(t, rep.PinnedCPU)
		assert.Less(t, ratio(rep.Elapsed, solo), 2.0, "app %d", rep.AppID)
	}
}

func TestScenario_RoundRobinPeersShare(t *testing.T) {
	cpus := requireRealTime(t)
	cpu := cpus[len(cpus)-1]
	solo := soloRuntime(t, cpu)

	res := scenarioRun(t, 3, func(o *experiment.Options) { o.PinCPU = &cpu })
	rr1, _ := res.Report(1)
	rr2, _ := res.Report(2)

	assert.Equal(t, api.PolicyRR, rr1.EffectivePolicy)
	assert.Equal(t, api.PolicyRR, rr2.EffectivePolicy)
	assert.InDelta(t, 1.0, ratio(rr1.Elapsed, rr2.Elapsed), 0.35)
	assert.Greater(t, ratio(rr1.Elapsed, solo), 1.3)
	assert.Greater(t, ratio(rr2.Elapsed, solo), 1.3)
}
