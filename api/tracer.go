// Package api
// Author: momentics <momentics@gmail.com>
//
// Tracing contract for runs and workers.

package api

import "context"

// Tracer opens spans for runs and workers.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

// Span represents a unit of work in tracing systems.
type Span interface {
	// SetTag attaches metadata to the span.
	SetTag(key string, value any)
	// End finishes the span, recording err when non-nil.
	End(err error)
}

// NopTracer discards every span.
type NopTracer struct{}

// StartSpan returns ctx unchanged and a span that does nothing.
func (NopTracer) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, nopSpan{}
}

type nopSpan struct{}

func (nopSpan) SetTag(string, any) {}
func (nopSpan) End(error)          {}
