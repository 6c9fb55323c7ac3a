// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations: worker identity, runtime reports and run states.

package api

import (
	"errors"
	"fmt"
	"time"
)

// WorkerIdentity names a worker inside one experiment run. It is used for reporting only.
type WorkerIdentity struct {
	AppID int `json:"appId" yaml:"appId"`
}

func (w WorkerIdentity) String() string { return fmt.Sprintf("App #%d", w.AppID) }

// Warning is a recoverable condition attached to a report.
type Warning struct {
	Code    ErrorCode `json:"code" yaml:"code"`
	Op      string    `json:"op" yaml:"op"`
	Message string    `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.Code, w.Op, w.Message)
}

// WarningFrom converts err into a Warning, keeping its code when it is a structured *Error.
func WarningFrom(err error) Warning {
	w := Warning{Code: ErrCodeSchedulingAttribute, Message: err.Error()}
	var e *Error
	if errors.As(err, &e) {
		w.Code = e.Code
		w.Op = e.Op
		if e.Cause != nil {
			w.Message = e.Cause.Error()
		} else if e.Message != "" {
			w.Message = e.Message
		}
	}
	return w
}

// RuntimeReport is the terminal artifact of one worker. It is never mutated after Join
// returns it.
type RuntimeReport struct {
	RunID             string          `json:"runId,omitempty" yaml:"runId,omitempty"`
	AppID             int             `json:"appId" yaml:"appId"`
	Class             SchedulingClass `json:"class" yaml:"class"`
	RequestedPolicy   Policy          `json:"requestedPolicy" yaml:"requestedPolicy"`
	RequestedPriority int             `json:"requestedPriority" yaml:"requestedPriority"`
	EffectivePolicy   Policy          `json:"effectivePolicy" yaml:"effectivePolicy"`
	EffectivePriority int             `json:"effectivePriority" yaml:"effectivePriority"`
	PinnedCPU         *int            `json:"pinnedCpu,omitempty" yaml:"pinnedCpu,omitempty"`
	ObservedCPU       int             `json:"observedCpu" yaml:"observedCpu"`
	ThreadID          int             `json:"threadId" yaml:"threadId"`
	StartTime         time.Time       `json:"startTime" yaml:"startTime"`
	EndTime           time.Time       `json:"endTime" yaml:"endTime"`
	Elapsed           time.Duration   `json:"elapsedNs" yaml:"elapsedNs"`
	ThreadCPUTime     time.Duration   `json:"threadCpuNs" yaml:"threadCpuNs"`
	Warnings          []Warning       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// ElapsedSeconds returns the wall-clock runtime in seconds.
func (r RuntimeReport) ElapsedSeconds() float64 { return r.Elapsed.Seconds() }

// Degraded reports whether the worker ran without the scheduling it asked for.
func (r RuntimeReport) Degraded() bool {
	if r.Class == RealTimeFixedPriority {
		return r.EffectivePolicy != r.RequestedPolicy || r.EffectivePriority != r.RequestedPriority
	}
	return r.EffectivePolicy.RealTime()
}

// RunState enumerates the lifecycle of an experiment run.
type RunState int

const (
	RunIdle RunState = iota
	RunRunning
	RunCompleted
	RunFailed
)

func (s RunState) String() string {
	switch s {
	case RunIdle:
		return "idle"
	case RunRunning:
		return "running"
	case RunCompleted:
		return "completed"
	case RunFailed:
		return "failed"
	}
	return "unknown"
}
