// Package pool
// Author: momentics <momentics@gmail.com>
//
// Reusable scratch memory for workloads. With the collector disabled for the
// length of a run, every allocation inside a workload stays on the heap until the
// run ends; pooling keeps repeated passes at a flat footprint.
package pool
