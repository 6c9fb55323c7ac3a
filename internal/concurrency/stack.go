// File: internal/concurrency/stack.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Goroutine stack reservation for worker threads.

package concurrency

const stackFrame = 64 << 10

// PrefaultStack grows the calling goroutine's stack to at least size bytes so the
// workload does not pay for stack copies inside the timed section. With memory locked,
// the new stack pages are resident as well.
func PrefaultStack(size int) {
	if size <= 0 {
		return
	}
	touchStack(size/stackFrame + 1)
}

//go:noinline
func touchStack(frames int) byte {
	var buf [stackFrame]byte
	buf[0] = byte(frames)
	buf[stackFrame-1] = buf[0]
	if frames <= 1 {
		return buf[stackFrame-1]
	}
	return touchStack(frames-1) ^ buf[stackFrame-1]
}
