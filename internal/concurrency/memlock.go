// File: internal/concurrency/memlock.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Process-wide memory locking. Engaged once before any worker starts and never
// reversed during a run.

package concurrency

import (
	"sync"

	"github.com/momentics/schedbench/api"
)

var (
	memLockMu     sync.Mutex
	memLockActive bool
)

// LockProcessMemory locks all current and future pages of the process into RAM.
// Subsequent calls after a success return nil without touching the kernel again.
// A failure is reported as ErrCodeFatalSetup and may be retried.
func LockProcessMemory() error {
	memLockMu.Lock()
	defer memLockMu.Unlock()
	if memLockActive {
		return nil
	}
	if err := lockAllPlatform(); err != nil {
		return api.NewError(api.ErrCodeFatalSetup, "mlockall", err)
	}
	memLockActive = true
	return nil
}

// MemoryLocked reports whether LockProcessMemory has succeeded in this process.
func MemoryLocked() bool {
	memLockMu.Lock()
	defer memLockMu.Unlock()
	return memLockActive
}

// ProcessMemory is the api.MemoryLocker backed by LockProcessMemory.
var ProcessMemory api.MemoryLocker = api.MemoryLockerFunc(LockProcessMemory)
