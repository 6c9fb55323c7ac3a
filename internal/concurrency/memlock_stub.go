//go:build !linux
// +build !linux

// File: internal/concurrency/memlock_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import "github.com/momentics/schedbench/api"

func lockAllPlatform() error {
	return api.ErrNotSupported
}
