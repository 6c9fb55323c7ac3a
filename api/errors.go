// Package api
// Author: momentics <momentics@gmail.com>
//
// Error taxonomy for schedbench: setup, worker creation, scheduling attribute,
// experiment selection and lifecycle misuse.

package api

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common errors used across the module. Structured *Error values match them via errors.Is.
var (
	ErrFatalSetup             = errors.New("fatal setup error")
	ErrWorkerCreation         = errors.New("worker creation error")
	ErrSchedulingAttribute    = errors.New("scheduling attribute error")
	ErrUnrecognizedExperiment = errors.New("unrecognized experiment")
	ErrInvalidState           = errors.New("invalid worker state")
	ErrWorkload               = errors.New("workload failed")
	ErrNotSupported           = errors.New("operation not supported")
	ErrInvalidArgument        = errors.New("invalid argument")
)

// ErrorCode represents specific error conditions in the module.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeFatalSetup
	ErrCodeWorkerCreation
	ErrCodeSchedulingAttribute
	ErrCodeUnrecognizedExperiment
	ErrCodeInvalidState
	ErrCodeWorkload
	ErrCodeNotSupported
	ErrCodeInvalidArgument
)

var codeSentinels = map[ErrorCode]error{
	ErrCodeFatalSetup:             ErrFatalSetup,
	ErrCodeWorkerCreation:         ErrWorkerCreation,
	ErrCodeSchedulingAttribute:    ErrSchedulingAttribute,
	ErrCodeUnrecognizedExperiment: ErrUnrecognizedExperiment,
	ErrCodeInvalidState:           ErrInvalidState,
	ErrCodeWorkload:               ErrWorkload,
	ErrCodeNotSupported:           ErrNotSupported,
	ErrCodeInvalidArgument:        ErrInvalidArgument,
}

// String returns the taxonomy name of the code.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "OK"
	case ErrCodeFatalSetup:
		return "FatalSetupError"
	case ErrCodeWorkerCreation:
		return "WorkerCreationError"
	case ErrCodeSchedulingAttribute:
		return "SchedulingAttributeError"
	case ErrCodeUnrecognizedExperiment:
		return "UnrecognizedExperimentError"
	case ErrCodeInvalidState:
		return "InvalidStateError"
	case ErrCodeWorkload:
		return "WorkloadError"
	case ErrCodeNotSupported:
		return "NotSupportedError"
	case ErrCodeInvalidArgument:
		return "InvalidArgumentError"
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// MarshalText renders the taxonomy name in reports.
func (c ErrorCode) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText accepts the names produced by MarshalText.
func (c *ErrorCode) UnmarshalText(b []byte) error {
	for code := ErrCodeOK; code <= ErrCodeInvalidArgument; code++ {
		if code.String() == string(b) {
			*c = code
			return nil
		}
	}
	return NewError(ErrCodeInvalidArgument, "parse error code", nil).WithContext("code", string(b))
}

// Error represents a structured error with code, failing operation, OS cause and context.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface. The text names the failing operation and
// carries the underlying cause string.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Code.String())
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
		}
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap exposes the OS-level cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches the sentinel error for the code.
func (e *Error) Is(target error) bool {
	if s, ok := codeSentinels[e.Code]; ok && s == target {
		return true
	}
	return false
}

// NewError creates a new structured error.
func NewError(code ErrorCode, op string, cause error) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// WithMessage sets a human-readable detail.
func (e *Error) WithMessage(format string, args ...any) *Error {
	e.Message = fmt.Sprintf(format, args...)
	return e
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// CodeOf extracts the ErrorCode from err, or ErrCodeOK when err is nil.
// Errors outside the taxonomy are reported by the sentinel they wrap, if any.
func CodeOf(err error) (ErrorCode, bool) {
	if err == nil {
		return ErrCodeOK, true
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	for code, s := range codeSentinels {
		if errors.Is(err, s) {
			return code, true
		}
	}
	return 0, false
}
