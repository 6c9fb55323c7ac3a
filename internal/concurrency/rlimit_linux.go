//go:build linux
// +build linux

// File: internal/concurrency/rlimit_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Resource limits that decide whether real-time scheduling and memory locking can be granted.

package concurrency

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Limits describes the privileges relevant to a run.
type Limits struct {
	RTPrioSoft    uint64 `json:"rtprioSoft" yaml:"rtprioSoft"`
	RTPrioHard    uint64 `json:"rtprioHard" yaml:"rtprioHard"`
	MemlockSoft   uint64 `json:"memlockSoft" yaml:"memlockSoft"`
	MemlockHard   uint64 `json:"memlockHard" yaml:"memlockHard"`
	RTRuntimeUs   int64  `json:"rtRuntimeUs" yaml:"rtRuntimeUs"`
	RTPeriodUs    int64  `json:"rtPeriodUs" yaml:"rtPeriodUs"`
	EffectiveRoot bool   `json:"effectiveRoot" yaml:"effectiveRoot"`
}

// ReadLimits collects RLIMIT_RTPRIO, RLIMIT_MEMLOCK and the RT throttling window.
// Values it cannot read are left zero; RTRuntimeUs is -1 when throttling is disabled.
func ReadLimits() Limits {
	var l Limits
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_RTPRIO, &rl); err == nil {
		l.RTPrioSoft, l.RTPrioHard = rl.Cur, rl.Max
	}
	if err := unix.Getrlimit(unix.RLIMIT_MEMLOCK, &rl); err == nil {
		l.MemlockSoft, l.MemlockHard = rl.Cur, rl.Max
	}
	l.RTRuntimeUs = readProcInt("/proc/sys/kernel/sched_rt_runtime_us")
	l.RTPeriodUs = readProcInt("/proc/sys/kernel/sched_rt_period_us")
	l.EffectiveRoot = unix.Geteuid() == 0
	return l
}

func readProcInt(path string) int64 {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
