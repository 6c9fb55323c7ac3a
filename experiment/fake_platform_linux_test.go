//go:build linux
// +build linux

// File: experiment/fake_platform_linux_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package experiment_test

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/schedbench/api"
	"github.com/momentics/schedbench/internal/concurrency"
)

type threadState struct {
	policy   api.Policy
	priority int
	cpu      int
}

// fakePlatform grants every request and keeps per-thread state keyed by kernel tid,
// so concurrent workers never see each other's policy.
type fakePlatform struct {
	mu       sync.Mutex
	threads  map[int]*threadState
	deny     bool
	affinity int32
	// busyFor, when set, stalls every migration after the first, like moving onto a
	// CPU that a real-time thread is holding.
	busyFor time.Duration
	// migrated records the policy each thread carried when it asked to migrate.
	migrated []api.Policy
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{threads: make(map[int]*threadState)}
}

func (f *fakePlatform) state() *threadState {
	tid := concurrency.ThreadID()
	st, ok := f.threads[tid]
	if !ok {
		st = &threadState{cpu: 0}
		f.threads[tid] = st
	}
	return st
}

func (f *fakePlatform) ApplyPolicy(p api.Policy, prio int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deny {
		return api.NewError(api.ErrCodeSchedulingAttribute, "sched_setattr", errDenied)
	}
	st := f.state()
	st.policy, st.priority = p, prio
	return nil
}

func (f *fakePlatform) CurrentPolicy() (api.Policy, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := f.state()
	return st.policy, st.priority, nil
}

func (f *fakePlatform) SetAffinity(cpu int) error {
	n := atomic.AddInt32(&f.affinity, 1)
	f.mu.Lock()
	st := f.state()
	f.migrated = append(f.migrated, st.policy)
	f.mu.Unlock()
	if n > 1 && f.busyFor > 0 {
		time.Sleep(f.busyFor)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	st.cpu = cpu
	return nil
}

func (f *fakePlatform) migrations() []api.Policy {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.Policy(nil), f.migrated...)
}

func (f *fakePlatform) CurrentCPU() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state().cpu, nil
}

func (f *fakePlatform) ThreadID() int                         { return concurrency.ThreadID() }
func (f *fakePlatform) ThreadCPUTime() (time.Duration, error) { return concurrency.ThreadCPUTime() }

type deniedError struct{}

func (deniedError) Error() string { return "operation not permitted" }

var errDenied error = deniedError{}

// countingLocker counts lock requests and optionally fails them.
type countingLocker struct {
	calls int32
	err   error
}

func (l *countingLocker) LockProcessMemory() error {
	atomic.AddInt32(&l.calls, 1)
	return l.err
}
