// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity of the calling OS thread. Platform-specific
// implementations are located in separate files guarded by build tags.
//
// Every function acts on the calling thread, so callers must hold the goroutine on its
// thread with runtime.LockOSThread for the result to stick.

package affinity

import "github.com/momentics/schedbench/api"

// SetAffinity pins the calling OS thread to a given logical CPU.
// On unsupported platforms returns an error wrapping api.ErrNotSupported.
func SetAffinity(cpuID int) error {
	if cpuID < 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "set affinity", nil).WithContext("cpu", cpuID)
	}
	return setAffinityPlatform(cpuID)
}

// CurrentCPU returns the CPU the calling thread is executing on right now.
func CurrentCPU() (int, error) {
	return currentCPUPlatform()
}

// Allowed returns the CPUs the calling thread may currently run on, ascending.
func Allowed() ([]int, error) {
	return allowedPlatform()
}
