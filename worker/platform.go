// File: worker/platform.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package worker

import (
	"time"

	"github.com/momentics/schedbench/affinity"
	"github.com/momentics/schedbench/api"
	"github.com/momentics/schedbench/internal/concurrency"
)

// Platform is the set of per-thread kernel operations a worker performs on its own thread.
type Platform interface {
	ApplyPolicy(policy api.Policy, priority int) error
	CurrentPolicy() (api.Policy, int, error)
	SetAffinity(cpuID int) error
	CurrentCPU() (int, error)
	ThreadID() int
	ThreadCPUTime() (time.Duration, error)
}

// System is the Platform backed by the running kernel.
var System Platform = systemPlatform{}

type systemPlatform struct{}

func (systemPlatform) ApplyPolicy(p api.Policy, prio int) error {
	return concurrency.ApplyPolicy(p, prio)
}
func (systemPlatform) CurrentPolicy() (api.Policy, int, error) { return concurrency.CurrentPolicy() }
func (systemPlatform) SetAffinity(cpuID int) error             { return concurrency.PinCurrentThread(cpuID) }
func (systemPlatform) CurrentCPU() (int, error)                { return affinity.CurrentCPU() }
func (systemPlatform) ThreadID() int                           { return concurrency.ThreadID() }
func (systemPlatform) ThreadCPUTime() (time.Duration, error)   { return concurrency.ThreadCPUTime() }
