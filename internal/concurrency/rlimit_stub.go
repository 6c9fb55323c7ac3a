//go:build !linux
// +build !linux

// File: internal/concurrency/rlimit_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

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

// ReadLimits returns zero limits.
func ReadLimits() Limits { return Limits{} }
