// Package workload
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Payloads run by workers. Every constructor returns a fresh closure with its own
// state, so distinct instances can run concurrently.

package workload

import "github.com/momentics/schedbench/api"

// DefaultSpinIterations takes roughly a second on a current x86 core.
const DefaultSpinIterations = 1 << 30

// Spin returns a CPU-bound workload performing a fixed amount of work. Its runtime
// grows with contention instead of being bounded by a timer.
func Spin(iterations int) api.Workload {
	if iterations <= 0 {
		iterations = DefaultSpinIterations
	}
	var sink uint64
	return func() {
		sink = spin(iterations, sink)
	}
}

//go:noinline
func spin(n int, seed uint64) uint64 {
	x := seed | 1
	for i := 0; i < n; i++ {
		// 64-bit LCG (Knuth MMIX constants)
		x = x*6364136223846793005 + 1442695040888963407
	}
	return x
}
