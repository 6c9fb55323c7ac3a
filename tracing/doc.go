// Package tracing adapts OpenTelemetry to api.Tracer. A run produces one
// "experiment.run" span with a child span per worker; spans are exported
// synchronously so a trace file is complete as soon as the run returns.
package tracing
