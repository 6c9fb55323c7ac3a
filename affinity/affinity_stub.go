//go:build !linux
// +build !linux

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.
// Returns errors wrapping api.ErrNotSupported.

package affinity

import "github.com/momentics/schedbench/api"

func setAffinityPlatform(cpuID int) error {
	return api.NewError(api.ErrCodeNotSupported, "set affinity", nil).WithContext("cpu", cpuID)
}

func currentCPUPlatform() (int, error) {
	return -1, api.NewError(api.ErrCodeNotSupported, "current cpu", nil)
}

func allowedPlatform() ([]int, error) {
	return nil, api.NewError(api.ErrCodeNotSupported, "allowed cpus", nil)
}
