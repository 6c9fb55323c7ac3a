//go:build linux
// +build linux

// File: internal/concurrency/concurrency_linux_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency_test

import (
	"testing"

	"github.com/momentics/schedbench/affinity"
	"github.com/momentics/schedbench/api"
	"github.com/momentics/schedbench/internal/concurrency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onOwnThread(fn func()) {
	done := make(chan struct{})
	go func() {
		concurrency.OwnThread()
		defer close(done)
		fn()
	}()
	<-done
}

func TestThreadIdentity(t *testing.T) {
	var a, b int
	onOwnThread(func() { a = concurrency.ThreadID() })
	onOwnThread(func() { b = concurrency.ThreadID() })
	assert.Positive(t, a)
	assert.Positive(t, b)
}

func TestThreadCPUTimeAdvances(t *testing.T) {
	onOwnThread(func() {
		before, err := concurrency.ThreadCPUTime()
		require.NoError(t, err)
		x := uint64(1)
		for i := 0; i < 20_000_000; i++ {
			x = x*6364136223846793005 + 1
		}
		after, err := concurrency.ThreadCPUTime()
		require.NoError(t, err)
		assert.Greater(t, after, before)
		_ = x
	})
}

func TestPinCurrentThread(t *testing.T) {
	cpus, err := affinity.Allowed()
	require.NoError(t, err)
	require.NotEmpty(t, cpus)
	target := cpus[len(cpus)-1]

	onOwnThread(func() {
		require.NoError(t, concurrency.PinCurrentThread(target))
		cur, err := affinity.CurrentCPU()
		require.NoError(t, err)
		assert.Equal(t, target, cur)
		allowed, err := affinity.Allowed()
		require.NoError(t, err)
		assert.Equal(t, []int{target}, allowed)
	})
	onOwnThread(func() {
		assert.ErrorIs(t, concurrency.PinCurrentThread(-1), api.ErrInvalidArgument)
	})
}

func TestCurrentPolicyDefault(t *testing.T) {
	onOwnThread(func() {
		p, prio, err := concurrency.CurrentPolicy()
		require.NoError(t, err)
		if p == api.PolicyOther {
			assert.Zero(t, prio)
		}
	})
}

func TestApplyPolicy_GrantedOrDenied(t *testing.T) {
	onOwnThread(func() {
		err := concurrency.ApplyPolicy(api.PolicyRR, 5)
		if err != nil {
			assert.ErrorIs(t, err, api.ErrSchedulingAttribute)
			assert.Contains(t, err.Error(), "sched_setattr")
			return
		}
		p, prio, err := concurrency.CurrentPolicy()
		require.NoError(t, err)
		assert.Equal(t, api.PolicyRR, p)
		assert.Equal(t, 5, prio)

		require.NoError(t, concurrency.ApplyPolicy(api.PolicyOther, 0))
		p, _, err = concurrency.CurrentPolicy()
		require.NoError(t, err)
		assert.Equal(t, api.PolicyOther, p)
	})
}

func TestPrefaultStack(t *testing.T) {
	onOwnThread(func() {
		concurrency.PrefaultStack(api.MinStackSize)
		concurrency.PrefaultStack(0)
	})
}

func TestLockProcessMemory_Idempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("locks the whole test binary into memory")
	}
	err := concurrency.LockProcessMemory()
	if err != nil {
		assert.ErrorIs(t, err, api.ErrFatalSetup)
		assert.False(t, concurrency.MemoryLocked())
		return
	}
	assert.True(t, concurrency.MemoryLocked())
	assert.NoError(t, concurrency.LockProcessMemory())
	assert.NoError(t, concurrency.ProcessMemory.LockProcessMemory())
}

func TestReadLimits(t *testing.T) {
	l := concurrency.ReadLimits()
	assert.GreaterOrEqual(t, l.RTPrioHard, l.RTPrioSoft)
	assert.GreaterOrEqual(t, l.MemlockHard, l.MemlockSoft)
}
