// File: tracing/tracing.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/momentics/schedbench/api"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentation = "github.com/momentics/schedbench"

// Tracer implements api.Tracer on a private OpenTelemetry provider.
type Tracer struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer
	out    io.Closer
}

var _ api.Tracer = (*Tracer)(nil)

// New builds a tracer exporting every finished span to exporter.
func New(service, version string, exporter sdktrace.SpanExporter) (*Tracer, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", service),
			attribute.String("service.version", version),
		),
	)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)
	return &Tracer{tp: tp, tracer: tp.Tracer(instrumentation)}, nil
}

// NewFile builds a tracer writing JSON spans to path, or to stdout when path is "-".
func NewFile(service, version, path string) (*Tracer, error) {
	var w io.Writer = os.Stdout
	var closer io.Closer
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return nil, api.NewError(api.ErrCodeInvalidArgument, "create trace file", err).WithContext("path", path)
		}
		w, closer = f, f
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	t, err := New(service, version, exporter)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	t.out = closer
	return t, nil
}

// StartSpan starts a span as a child of any span already carried by ctx.
func (t *Tracer) StartSpan(ctx context.Context, name string) (context.Context, api.Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	return ctx, &Span{span: span}
}

// Shutdown flushes pending spans and closes the trace file.
func (t *Tracer) Shutdown(ctx context.Context) error {
	err := t.tp.Shutdown(ctx)
	if t.out != nil {
		if cerr := t.out.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Span wraps an OpenTelemetry span.
type Span struct {
	span trace.Span
}

// SetTag records value under key, keeping numeric and boolean types.
func (s *Span) SetTag(key string, value any) {
	s.span.SetAttributes(attributeOf(key, value))
}

// End records err, if any, as the span status and ends the span.
func (s *Span) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
		if code, ok := api.CodeOf(err); ok {
			s.span.SetAttributes(attribute.String("error.code", code.String()))
		}
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}

func attributeOf(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	}
	return attribute.String(key, fmt.Sprint(value))
}
