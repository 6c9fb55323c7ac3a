//go:build !linux
// +build !linux

// File: internal/concurrency/sched_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stub implementation for unsupported platforms.

package concurrency

import (
	"time"

	"github.com/momentics/schedbench/api"
)

// ApplyPolicy is not supported.
func ApplyPolicy(policy api.Policy, priority int) error {
	return api.NewError(api.ErrCodeSchedulingAttribute, "set scheduling policy", api.ErrNotSupported)
}

// CurrentPolicy reports the default policy.
func CurrentPolicy() (api.Policy, int, error) {
	return api.PolicyOther, 0, nil
}

// ThreadID is unknown here.
func ThreadID() int { return -1 }

// ThreadCPUTime is not supported.
func ThreadCPUTime() (time.Duration, error) {
	return 0, api.NewError(api.ErrCodeNotSupported, "thread cpu time", nil)
}
