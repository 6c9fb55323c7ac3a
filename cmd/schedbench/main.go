// File: cmd/schedbench/main.go
// Author: momentics <momentics@gmail.com>
//
// schedbench runs one experiment preset: a handful of CPU-bound workers with
// different scheduling classes, optionally sharing one CPU, and prints how long
// each of them took.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/momentics/schedbench/api"
	"github.com/momentics/schedbench/control"
	"github.com/momentics/schedbench/experiment"
	"github.com/momentics/schedbench/internal/concurrency"
	"github.com/momentics/schedbench/internal/logging"
	"github.com/momentics/schedbench/tracing"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const version = "0.1.0"

// Exit codes.
const (
	exitOK = iota
	exitFatalSetup
	exitUnrecognized
	exitWorkerCreation
	exitUsage
	exitOther
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, "ERROR:", err)
		if errors.Is(err, api.ErrUnrecognizedExperiment) {
			return exitUnrecognized
		}
		return exitUsage
	}

	log, err := logging.New(cfg.logLevel, cfg.logFormat, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "ERROR:", err)
		return exitUsage
	}

	catalog := experiment.DefaultCatalog()
	if cfg.presets != "" {
		extra, err := experiment.LoadCatalog(cfg.presets)
		if err != nil {
			log.WithError(err).Error("cannot load presets")
			return exitCode(err)
		}
		catalog = catalog.Merge(extra)
		log.WithFields(logrus.Fields{"file": cfg.presets, "presets": extra.IDs()}).Info("presets loaded")
	}

	format, err := experiment.ParseFormat(cfg.format)
	if err != nil {
		log.WithError(err).Error("invalid report format")
		return exitUsage
	}

	if cfg.list {
		if err := experiment.RenderCatalog(stdout, catalog); err != nil {
			return exitOther
		}
		return exitOK
	}

	probes := control.NewDebugProbes()
	control.RegisterPlatformProbes(probes)
	if cfg.probe {
		if err := dumpProbes(stdout, probes, format); err != nil {
			log.WithError(err).Error("cannot write probe dump")
			return exitOther
		}
		return exitOK
	}
	logLimits(log, concurrency.ReadLimits())

	opts, err := cfg.options()
	if err != nil {
		log.WithError(err).Error("invalid options")
		return exitUsage
	}
	if !cfg.idGiven {
		log.Warnf("no experiment id given, running experiment %d", cfg.presetID)
	}

	metrics := control.NewMetricsRegistry()
	ropts := []experiment.RunnerOption{
		experiment.WithLogger(log),
		experiment.WithRecorder(metrics),
	}
	var tracer *tracing.Tracer
	if cfg.traceOut != "" {
		tracer, err = tracing.NewFile("schedbench", version, cfg.traceOut)
		if err != nil {
			log.WithError(err).Error("cannot open trace output")
			return exitUsage
		}
		ropts = append(ropts, experiment.WithTracer(tracer))
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracer.Shutdown(ctx); err != nil {
				log.WithError(err).Warn("trace flush failed")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := experiment.NewRunner(catalog, opts, ropts...)
	res, runErr := runner.Run(ctx, cfg.presetID)
	if runErr != nil {
		log.WithError(runErr).WithField("state", runner.State().String()).Error("experiment failed")
	}
	if res != nil {
		if err := experiment.Render(stdout, res, format); err != nil {
			log.WithError(err).Error("cannot render report")
			return exitOther
		}
	}
	if cfg.metricsOut != "" && res != nil {
		if err := metrics.WriteTextfile(cfg.metricsOut); err != nil {
			log.WithError(err).Error("cannot write metrics")
			if runErr == nil {
				return exitOther
			}
		}
	}
	return exitCode(runErr)
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	code, ok := api.CodeOf(err)
	if !ok {
		return exitOther
	}
	switch code {
	case api.ErrCodeFatalSetup:
		return exitFatalSetup
	case api.ErrCodeUnrecognizedExperiment:
		return exitUnrecognized
	case api.ErrCodeWorkerCreation, api.ErrCodeSchedulingAttribute:
		return exitWorkerCreation
	case api.ErrCodeInvalidArgument:
		return exitUsage
	}
	return exitOther
}

func dumpProbes(w io.Writer, probes *control.DebugProbes, format experiment.Format) error {
	state := probes.DumpState()
	if format == experiment.FormatJSON {
		return writeJSON(w, state)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(state); err != nil {
		return err
	}
	return enc.Close()
}

func logLimits(log logrus.FieldLogger, l concurrency.Limits) {
	log.WithFields(logrus.Fields{
		"rtprio":        l.RTPrioSoft,
		"memlock":       l.MemlockSoft,
		"rt_runtime_us": l.RTRuntimeUs,
		"rt_period_us":  l.RTPeriodUs,
		"root":          l.EffectiveRoot,
	}).Debug("platform limits")
	if !l.EffectiveRoot && l.RTPrioSoft == 0 {
		log.Warn("RLIMIT_RTPRIO is 0: real-time requests will likely be denied")
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
