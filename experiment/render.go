// File: experiment/render.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package experiment

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/momentics/schedbench/api"
	"gopkg.in/yaml.v3"
)

// Format selects the report rendering.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", api.NewError(api.ErrCodeInvalidArgument, "parse format", nil).WithContext("format", s)
}

// Render writes res to w in the requested format.
func Render(w io.Writer, res *Result, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	default:
		return renderText(w, res)
	}
}

func renderText(w io.Writer, res *Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", res.Preset.Description)
	fmt.Fprintf(&b, "run %s\n", res.RunID)
	for _, rep := range res.Reports {
		fmt.Fprintf(&b, "[App #%d] %s thread #%d on CPU #%d", rep.AppID, rep.Class, rep.ThreadID, rep.ObservedCPU)
		if rep.PinnedCPU != nil {
			fmt.Fprintf(&b, " (pinned %d)", *rep.PinnedCPU)
		}
		if rep.Class == api.RealTimeFixedPriority {
			fmt.Fprintf(&b, " requested %s:%d", rep.RequestedPolicy, rep.RequestedPriority)
		}
		fmt.Fprintf(&b, " effective %s:%d\n", rep.EffectivePolicy, rep.EffectivePriority)
		fmt.Fprintf(&b, "App #%d runtime: %f seconds (thread cpu %f seconds)\n",
			rep.AppID, rep.ElapsedSeconds(), rep.ThreadCPUTime.Seconds())
		for _, warn := range rep.Warnings {
			fmt.Fprintf(&b, "  WARNING: %s\n", warn)
		}
	}
	if len(res.CompletionOrder) > 0 {
		ids := make([]string, len(res.CompletionOrder))
		for i, id := range res.CompletionOrder {
			ids[i] = fmt.Sprintf("#%d", id)
		}
		fmt.Fprintf(&b, "completion order: %s\n", strings.Join(ids, " "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderCatalog lists presets one per line.
func RenderCatalog(w io.Writer, c *Catalog) error {
	for _, p := range c.Presets() {
		if _, err := fmt.Fprintln(w, p.String()); err != nil {
			return err
		}
	}
	return nil
}
