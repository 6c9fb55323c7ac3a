//go:build linux
// +build linux

// File: internal/concurrency/memlock_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import "golang.org/x/sys/unix"

func lockAllPlatform() error {
	return unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE)
}
