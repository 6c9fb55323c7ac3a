// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Thread-level primitives for timed workers: thread ownership and pinning,
// per-thread scheduling policy, thread CPU clock, stack prefaulting, process
// memory locking, resource limits and NUMA topology.
//
// Everything that acts on "the calling thread" assumes the goroutine has been
// locked with OwnThread first.
package concurrency
