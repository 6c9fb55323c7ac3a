// Package api
// Author: momentics <momentics@gmail.com>
//
// Workload and process-level collaborator contracts.

package api

// Workload is the payload a worker executes synchronously on its own thread.
// Distinct instances must not share mutable state.
type Workload func()

// MemoryLocker pins the process memory footprint. Implementations must tolerate
// repeated calls.
type MemoryLocker interface {
	LockProcessMemory() error
}

// MemoryLockerFunc adapts a function to MemoryLocker.
type MemoryLockerFunc func() error

// LockProcessMemory calls f.
func (f MemoryLockerFunc) LockProcessMemory() error { return f() }
