// File: workload/registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package workload

import (
	"sort"
	"strings"

	"github.com/momentics/schedbench/api"
)

// Params tunes the built-in workloads.
type Params struct {
	SpinIterations int
	CannySize      int
	CannyPasses    int
}

// Factory builds a fresh workload instance.
type Factory func(Params) api.Workload

var factories = map[string]Factory{
	"spin":  func(p Params) api.Workload { return Spin(p.SpinIterations) },
	"canny": func(p Params) api.Workload { return Canny(p.CannySize, p.CannyPasses) },
}

// New returns a fresh instance of the named workload.
func New(name string, p Params) (api.Workload, error) {
	f, ok := factories[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "new workload", nil).WithContext("workload", name)
	}
	return f(p), nil
}

// Names lists registered workloads, sorted.
func Names() []string {
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Known reports whether name is a registered workload.
func Known(name string) bool {
	_, ok := factories[strings.ToLower(strings.TrimSpace(name))]
	return ok
}
