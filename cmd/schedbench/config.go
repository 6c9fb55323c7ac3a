// File: cmd/schedbench/config.go
// Author: momentics <momentics@gmail.com>

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/momentics/schedbench/api"
	"github.com/momentics/schedbench/experiment"
	"github.com/momentics/schedbench/workload"
)

type cliConfig struct {
	affinity   bool
	cpu        int
	workload   string
	spinIters  int
	cannySize  int
	join       string
	strict     bool
	noMlock    bool
	keepGC     bool
	format     string
	presets    string
	metricsOut string
	traceOut   string
	logLevel   string
	logFormat  string
	list       bool
	probe      bool

	// presetID is the positional experiment id; idGiven is false when it was omitted.
	presetID int
	idGiven  bool
}

func parseFlags(args []string, stderr io.Writer) (*cliConfig, error) {
	cfg := &cliConfig{}
	fs := flag.NewFlagSet("schedbench", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: schedbench [flags] [experiment-id]\n\n"+
			"Runs one scheduling experiment preset (default %d). Every flag can also be set\n"+
			"through %s<FLAG>, e.g. %s.\n\n", experiment.DefaultPresetID, envPrefix, envKey("log-level"))
		fs.PrintDefaults()
	}

	fs.BoolVar(&cfg.affinity, "affinity", envBool("affinity", true), "pin workers whose preset names a CPU")
	fs.IntVar(&cfg.cpu, "cpu", envInt("cpu", experiment.SharedCPU), "CPU used by pinned workers")
	fs.StringVar(&cfg.workload, "workload", envOr("workload", ""), "replace every preset workload: spin|canny")
	fs.IntVar(&cfg.spinIters, "spin-iterations", envInt("spin-iterations", workload.DefaultSpinIterations), "iterations of the spin workload")
	fs.IntVar(&cfg.cannySize, "canny-size", envInt("canny-size", workload.DefaultCannySize), "frame edge length of the canny workload")
	fs.StringVar(&cfg.join, "join", envOr("join", "sequential"), "join mode: sequential|concurrent")
	fs.BoolVar(&cfg.strict, "strict", envBool("strict", false), "fail the run when real-time scheduling or pinning is denied")
	fs.BoolVar(&cfg.noMlock, "no-mlock", envBool("no-mlock", false), "skip mlockall")
	fs.BoolVar(&cfg.keepGC, "gc", envBool("gc", false), "keep the garbage collector running during the run")
	fs.StringVar(&cfg.format, "format", envOr("format", "text"), "report format: text|json|yaml")
	fs.StringVar(&cfg.presets, "presets", envOr("presets", ""), "YAML file adding or replacing presets")
	fs.StringVar(&cfg.metricsOut, "metrics-out", envOr("metrics-out", ""), "write Prometheus textfile metrics to this path")
	fs.StringVar(&cfg.traceOut, "trace-out", envOr("trace-out", ""), "write OpenTelemetry spans to this path, - for stdout")
	fs.StringVar(&cfg.logLevel, "log-level", envOr("log-level", "info"), "log level")
	fs.StringVar(&cfg.logFormat, "log-format", envOr("log-format", "text"), "log format: text|json")
	fs.BoolVar(&cfg.list, "list", envBool("list", false), "list presets and exit")
	fs.BoolVar(&cfg.probe, "probe", envBool("probe", false), "dump platform limits and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch fs.NArg() {
	case 0:
		cfg.presetID = experiment.DefaultPresetID
		if v := os.Getenv(envKey("experiment")); v != "" {
			id, err := parseExperimentID(v)
			if err != nil {
				return nil, err
			}
			cfg.presetID, cfg.idGiven = id, true
		}
	case 1:
		id, err := parseExperimentID(fs.Arg(0))
		if err != nil {
			return nil, err
		}
		cfg.presetID, cfg.idGiven = id, true
	default:
		return nil, api.NewError(api.ErrCodeInvalidArgument, "parse arguments", nil).
			WithMessage("expected at most one experiment id, got %d arguments", fs.NArg())
	}
	if cfg.workload != "" && !workload.Known(cfg.workload) {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "parse flags", nil).
			WithMessage("unknown workload %q, known: %v", cfg.workload, workload.Names())
	}
	if cfg.cpu < 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "parse flags", nil).
			WithMessage("negative cpu %d", cfg.cpu)
	}
	return cfg, nil
}

// options converts the flags into runner options.
func (c *cliConfig) options() (experiment.Options, error) {
	join, err := experiment.ParseJoinMode(c.join)
	if err != nil {
		return experiment.Options{}, err
	}
	opts := experiment.DefaultOptions()
	cpu := c.cpu
	opts.Affinity = c.affinity
	opts.PinCPU = &cpu
	opts.Strict = c.strict
	opts.LockMemory = !c.noMlock
	opts.KeepGC = c.keepGC
	opts.Join = join
	opts.Workload = c.workload
	opts.Params.SpinIterations = c.spinIters
	opts.Params.CannySize = c.cannySize
	return opts, nil
}

// parseExperimentID reads a preset id; anything but an integer names no experiment.
func parseExperimentID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, api.NewError(api.ErrCodeUnrecognizedExperiment, "parse experiment id", err).
			WithMessage("exp_id %q not found", s)
	}
	return id, nil
}
