//go:build linux
// +build linux

// File: internal/concurrency/sched_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Per-thread scheduling policy control via sched_setattr(2)/sched_getattr(2).

package concurrency

import (
	"time"

	"github.com/momentics/schedbench/api"
	"golang.org/x/sys/unix"
)

// Children of the thread fall back to SCHED_OTHER instead of inheriting its policy.
const schedFlagResetOnFork = 0x01

// ApplyPolicy sets the calling thread's policy and priority. For real-time policies
// the reset-on-fork flag is set.
func ApplyPolicy(policy api.Policy, priority int) error {
	attr := &unix.SchedAttr{
		Policy:   uint32(policy),
		Priority: uint32(priority),
	}
	if policy.RealTime() {
		attr.Flags = schedFlagResetOnFork
	} else {
		attr.Priority = 0
	}
	if err := unix.SchedSetAttr(0, attr, 0); err != nil {
		return api.NewError(api.ErrCodeSchedulingAttribute, "sched_setattr", err).
			WithContext("policy", policy.String()).
			WithContext("priority", priority)
	}
	return nil
}

// CurrentPolicy returns the calling thread's effective policy and priority.
func CurrentPolicy() (api.Policy, int, error) {
	attr, err := unix.SchedGetAttr(0, 0)
	if err != nil {
		return api.PolicyOther, 0, api.NewError(api.ErrCodeSchedulingAttribute, "sched_getattr", err)
	}
	return api.Policy(attr.Policy), int(attr.Priority), nil
}

// ThreadID returns the kernel id of the calling thread.
func ThreadID() int {
	return unix.Gettid()
}

// ThreadCPUTime returns the CPU time consumed so far by the calling thread.
func ThreadCPUTime() (time.Duration, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_THREAD_CPUTIME_ID, &ts); err != nil {
		return 0, api.NewError(api.ErrCodeNotSupported, "clock_gettime", err)
	}
	return time.Duration(ts.Nano()), nil
}
