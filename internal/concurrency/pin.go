// File: internal/concurrency/pin.go
// Author: momentics <momentics@gmail.com>
//
// Thread ownership and CPU pinning for worker goroutines.

package concurrency

import (
	"runtime"

	"github.com/momentics/schedbench/affinity"
)

// PinCurrentThread restricts the calling worker thread to cpuID. It locks the goroutine
// to its thread first; on a thread already owned via OwnThread the lock only nests.
// The goroutine stays locked even on error.
func PinCurrentThread(cpuID int) error {
	runtime.LockOSThread()
	return affinity.SetAffinity(cpuID)
}

// OwnThread locks the calling goroutine to its current OS thread for the rest of
// its life. A goroutine that exits while still locked takes the thread down with it,
// so scheduling attributes set afterwards never reach another goroutine.
func OwnThread() {
	runtime.LockOSThread()
}
