// Package control
// Author: momentics <momentics@gmail.com>
//
// Run-level observability for schedbench:
//   - MetricsRegistry records every worker report and exports Prometheus gauges
//     to a textfile after the run
//   - DebugProbes reports the host state that decides whether real-time
//     scheduling and memory locking can be granted
package control
