// Package api
// Author: momentics
//
// Platform introspection used to explain why a run did or did not get the
// scheduling it asked for.

package api

// Debug exposes runtime introspection.
type Debug interface {
	// DumpState emits a snapshot of platform state for diagnostics.
	DumpState() map[string]any

	// RegisterProbe dynamically registers new debug probes.
	RegisterProbe(name string, fn func() any)
}
