// Package worker
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Timed workers: one dedicated OS thread per worker, configured from inside that
// thread (policy and priority first, then affinity) before the workload runs, with
// start/join timing and a RuntimeReport produced on join. Start does not wait for the
// thread; Ready does.
//
// Real-time and best-effort workers share a single Worker type; the class-specific
// setup is a strategy selected from SchedulingConfig.Class.
package worker
