// Package api
// Author: momentics <momentics@gmail.com>
//
// Scheduling classes, policies and the per-worker scheduling configuration.

package api

import (
	"fmt"
	"strings"
)

// SchedulingClass selects between real-time fixed-priority and the platform default
// time-sharing discipline.
type SchedulingClass int

const (
	BestEffortFairShare SchedulingClass = iota
	RealTimeFixedPriority
)

func (c SchedulingClass) String() string {
	switch c {
	case RealTimeFixedPriority:
		return "realtime"
	case BestEffortFairShare:
		return "besteffort"
	}
	return fmt.Sprintf("SchedulingClass(%d)", int(c))
}

// ParseSchedulingClass accepts "realtime"/"rt" and "besteffort"/"be"/"nrt".
func ParseSchedulingClass(s string) (SchedulingClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "realtime", "rt":
		return RealTimeFixedPriority, nil
	case "besteffort", "be", "nrt", "":
		return BestEffortFairShare, nil
	}
	return 0, NewError(ErrCodeInvalidArgument, "parse scheduling class", nil).WithContext("class", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c SchedulingClass) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *SchedulingClass) UnmarshalText(b []byte) error {
	v, err := ParseSchedulingClass(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Policy is a kernel scheduling policy. Values match the Linux SCHED_* constants.
type Policy int

const (
	PolicyOther Policy = 0
	PolicyFIFO  Policy = 1
	PolicyRR    Policy = 2
	PolicyBatch Policy = 3
	PolicyIdle  Policy = 5
)

func (p Policy) String() string {
	switch p {
	case PolicyOther:
		return "SCHED_OTHER"
	case PolicyFIFO:
		return "SCHED_FIFO"
	case PolicyRR:
		return "SCHED_RR"
	case PolicyBatch:
		return "SCHED_BATCH"
	case PolicyIdle:
		return "SCHED_IDLE"
	}
	return fmt.Sprintf("SCHED(%d)", int(p))
}

// RealTime reports whether p is a fixed-priority preemptive policy.
func (p Policy) RealTime() bool { return p == PolicyFIFO || p == PolicyRR }

// ParsePolicy accepts names with or without the SCHED_ prefix, case-insensitive.
func ParsePolicy(s string) (Policy, error) {
	switch strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "SCHED_") {
	case "FIFO":
		return PolicyFIFO, nil
	case "RR":
		return PolicyRR, nil
	case "OTHER", "NORMAL", "":
		return PolicyOther, nil
	case "BATCH":
		return PolicyBatch, nil
	case "IDLE":
		return PolicyIdle, nil
	}
	return 0, NewError(ErrCodeInvalidArgument, "parse policy", nil).WithContext("policy", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(b []byte) error {
	v, err := ParsePolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

const (
	// MinRealTimePriority and MaxRealTimePriority bound SCHED_FIFO/SCHED_RR priorities on Linux.
	MinRealTimePriority = 1
	MaxRealTimePriority = 99
	// MinStackSize is the smallest worker stack reservation accepted.
	MinStackSize = 1 << 20
)

// SchedulingConfig is the scheduling request of a single worker.
type SchedulingConfig struct {
	Class    SchedulingClass `json:"class" yaml:"class"`
	Policy   Policy          `json:"policy,omitempty" yaml:"policy,omitempty"`
	Priority int             `json:"priority,omitempty" yaml:"priority,omitempty"`
	// PinnedCPU is nil when the worker may run on any allowed CPU.
	PinnedCPU *int `json:"pinnedCpu,omitempty" yaml:"pinnedCpu,omitempty"`
	// InheritScheduling must stay false for workers; Normalize enforces it.
	InheritScheduling bool `json:"inheritScheduling" yaml:"inheritScheduling"`
	StackSize         int  `json:"stackSize,omitempty" yaml:"stackSize,omitempty"`
}

// RealTime builds a real-time configuration.
func RealTime(policy Policy, priority int) SchedulingConfig {
	return SchedulingConfig{Class: RealTimeFixedPriority, Policy: policy, Priority: priority}
}

// BestEffort builds a best-effort configuration.
func BestEffort() SchedulingConfig {
	return SchedulingConfig{Class: BestEffortFairShare}
}

// Pinned returns a copy of c constrained to cpu.
func (c SchedulingConfig) Pinned(cpu int) SchedulingConfig {
	c.PinnedCPU = &cpu
	return c
}

// Unpinned returns a copy of c without an affinity constraint.
func (c SchedulingConfig) Unpinned() SchedulingConfig {
	c.PinnedCPU = nil
	return c
}

// Normalize returns the config with unset fields resolved: priority and policy are
// cleared for best-effort, real-time defaults to FIFO, inheritance is disabled and the
// stack reservation is raised to MinStackSize.
func (c SchedulingConfig) Normalize() SchedulingConfig {
	switch c.Class {
	case BestEffortFairShare:
		c.Policy = PolicyOther
		c.Priority = 0
	case RealTimeFixedPriority:
		if !c.Policy.RealTime() {
			c.Policy = PolicyFIFO
		}
	}
	c.InheritScheduling = false
	if c.StackSize < MinStackSize {
		c.StackSize = MinStackSize
	}
	if c.PinnedCPU != nil {
		cpu := *c.PinnedCPU
		c.PinnedCPU = &cpu
	}
	return c
}

// Validate checks c after normalization.
func (c SchedulingConfig) Validate() error {
	switch c.Class {
	case RealTimeFixedPriority:
		if c.Priority < MinRealTimePriority || c.Priority > MaxRealTimePriority {
			return NewError(ErrCodeInvalidArgument, "validate scheduling config", nil).
				WithMessage("real-time priority %d outside %d..%d", c.Priority, MinRealTimePriority, MaxRealTimePriority)
		}
	case BestEffortFairShare:
	default:
		return NewError(ErrCodeInvalidArgument, "validate scheduling config", nil).
			WithContext("class", int(c.Class))
	}
	if c.PinnedCPU != nil && *c.PinnedCPU < 0 {
		return NewError(ErrCodeInvalidArgument, "validate scheduling config", nil).
			WithMessage("negative cpu id %d", *c.PinnedCPU)
	}
	return nil
}

// String renders c compactly, e.g. "realtime/SCHED_FIFO:80@cpu1".
func (c SchedulingConfig) String() string {
	var b strings.Builder
	b.WriteString(c.Class.String())
	if c.Class == RealTimeFixedPriority {
		fmt.Fprintf(&b, "/%s:%d", c.Policy, c.Priority)
	}
	if c.PinnedCPU != nil {
		fmt.Fprintf(&b, "@cpu%d", *c.PinnedCPU)
	}
	return b.String()
}
