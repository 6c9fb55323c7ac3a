// File: worker/worker.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package worker

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/momentics/schedbench/api"
	"github.com/momentics/schedbench/internal/concurrency"
	"github.com/momentics/schedbench/internal/logging"
	"github.com/sirupsen/logrus"
)

const (
	stateCreated int32 = iota
	stateStarted
	stateJoined
	stateFailed
)

// Option customizes a Worker at construction time.
type Option func(*Worker)

// WithLogger sets the logger; the default discards output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(w *Worker) { w.log = log }
}

// WithAffinity toggles CPU pinning. When false PinnedCPU is ignored.
func WithAffinity(enabled bool) Option {
	return func(w *Worker) { w.pinning = enabled }
}

// WithStrict makes scheduling attribute failures fail the thread setup, reported by
// Ready and Join, instead of being attached to the report as warnings.
func WithStrict(strict bool) Option {
	return func(w *Worker) { w.strict = strict }
}

// WithRunID stamps reports with the id of the enclosing run.
func WithRunID(id string) Option {
	return func(w *Worker) { w.runID = id }
}

// WithPlatform replaces the kernel operations, mainly for tests.
func WithPlatform(p Platform) Option {
	return func(w *Worker) { w.platform = p }
}

// Worker owns one OS thread that runs a single workload under a fixed scheduling config.
type Worker struct {
	id       api.WorkerIdentity
	cfg      api.SchedulingConfig
	workload api.Workload
	strategy strategy
	platform Platform
	log      logrus.FieldLogger
	pinning  bool
	strict   bool
	runID    string

	state   int32 // atomic
	started time.Time
	ready   chan struct{}
	done    chan struct{}

	// written by the worker thread before ready is closed
	setupErr error

	// written by the worker thread before done is closed
	report api.RuntimeReport
	ended  time.Time
	runErr error
}

// New builds a worker. cfg is normalized and validated; an invalid config or a nil
// workload yields ErrCodeWorkerCreation.
func New(id api.WorkerIdentity, cfg api.SchedulingConfig, workload api.Workload, opts ...Option) (*Worker, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, api.NewError(api.ErrCodeWorkerCreation, "new worker", err).WithContext("app", id.AppID)
	}
	if workload == nil {
		return nil, api.NewError(api.ErrCodeWorkerCreation, "new worker", api.ErrInvalidArgument).
			WithMessage("nil workload").WithContext("app", id.AppID)
	}
	w := &Worker{
		id:       id,
		cfg:      cfg,
		workload: workload,
		strategy: strategyFor(cfg.Class),
		platform: System,
		log:      logging.Discard(),
		pinning:  true,
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.WithFields(logrus.Fields{"app": id.AppID, "class": cfg.Class.String()})
	return w, nil
}

// Identity returns the worker identity.
func (w *Worker) Identity() api.WorkerIdentity { return w.id }

// Config returns the normalized scheduling config.
func (w *Worker) Config() api.SchedulingConfig { return w.cfg }

// Done is closed when the worker thread has finished. Before Start it never fires.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Start records the start timestamp and launches the worker thread. It returns without
// waiting for the thread: migrating onto a CPU held by a real-time thread can take as
// long as that thread runs.
func (w *Worker) Start() error {
	if !atomic.CompareAndSwapInt32(&w.state, stateCreated, stateStarted) {
		return api.NewError(api.ErrCodeInvalidState, "start", nil).
			WithMessage("worker already started").WithContext("app", w.id.AppID)
	}
	w.started = time.Now()
	go w.thread()
	return nil
}

// Ready blocks until the worker thread has finished its setup and returns the setup
// error, if any. With WithStrict a denied scheduling request is such an error and the
// workload never runs.
func (w *Worker) Ready() error {
	if atomic.LoadInt32(&w.state) == stateCreated {
		return api.NewError(api.ErrCodeInvalidState, "ready", nil).
			WithMessage("worker not started").WithContext("app", w.id.AppID)
	}
	<-w.ready
	return w.setupErr
}

// Join blocks until the worker thread terminates and returns its report. The report is
// returned even when the workload failed; err then carries ErrCodeWorkload. A failed
// setup is returned as err with the partial report.
func (w *Worker) Join() (api.RuntimeReport, error) {
	if !atomic.CompareAndSwapInt32(&w.state, stateStarted, stateJoined) {
		msg := "join before start"
		switch atomic.LoadInt32(&w.state) {
		case stateJoined:
			msg = "worker already joined"
		case stateFailed:
			msg = "worker setup failed"
		}
		return api.RuntimeReport{}, api.NewError(api.ErrCodeInvalidState, "join", nil).
			WithMessage(msg).WithContext("app", w.id.AppID)
	}
	<-w.done
	rep := w.report
	if w.setupErr != nil {
		atomic.StoreInt32(&w.state, stateFailed)
		return rep, w.setupErr
	}
	rep.StartTime = w.started
	rep.EndTime = w.ended
	rep.Elapsed = w.ended.Sub(w.started)
	if rep.Elapsed < 0 {
		rep.Elapsed = 0
	}
	w.log.WithField("elapsed_s", rep.ElapsedSeconds()).
		Infof("App #%d runtime: %f seconds", w.id.AppID, rep.ElapsedSeconds())
	return rep, w.runErr
}

// thread is the body of the worker's OS thread. The goroutine never unlocks its
// thread, so the kernel thread exits with it together with its scheduling attributes.
func (w *Worker) thread() {
	concurrency.OwnThread()
	defer close(w.done)

	rep, err := w.configure()
	w.setupErr = err
	close(w.ready)
	if err != nil {
		w.ended = time.Now()
		w.report = rep
		return
	}

	w.log.WithFields(logrus.Fields{
		"tid":      rep.ThreadID,
		"cpu":      rep.ObservedCPU,
		"policy":   rep.EffectivePolicy.String(),
		"priority": rep.EffectivePriority,
	}).Debugf("[thread #%d] running on CPU #%d with %s priority %d",
		rep.ThreadID, rep.ObservedCPU, rep.EffectivePolicy, rep.EffectivePriority)

	cpuStart, cpuErr := w.platform.ThreadCPUTime()
	w.log.Debugf("Running App #%d...", w.id.AppID)
	w.runErr = w.invoke()
	w.ended = time.Now()
	if cpuErr == nil {
		if cpuEnd, err := w.platform.ThreadCPUTime(); err == nil {
			rep.ThreadCPUTime = cpuEnd - cpuStart
		}
	}
	w.report = rep
	w.log.Debugf("[thread #%d] App #%d Ends", rep.ThreadID, w.id.AppID)
}

// configure applies scheduling then affinity on the calling thread and samples what
// the kernel actually granted. The policy goes first so that a real-time thread
// competes for its pinned CPU at its own priority from the moment it migrates.
func (w *Worker) configure() (rep api.RuntimeReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = api.NewError(api.ErrCodeWorkerCreation, "configure thread", fmt.Errorf("panic: %v", r)).
				WithContext("app", w.id.AppID)
		}
	}()
	concurrency.PrefaultStack(w.cfg.StackSize)

	rep = api.RuntimeReport{
		RunID:             w.runID,
		AppID:             w.id.AppID,
		Class:             w.cfg.Class,
		RequestedPolicy:   w.cfg.Policy,
		RequestedPriority: w.cfg.Priority,
		ObservedCPU:       -1,
		ThreadID:          w.platform.ThreadID(),
	}
	applied := true
	if err := w.strategy.apply(w.platform, w.cfg); err != nil {
		if w.strict {
			return rep, err
		}
		w.warn(&rep, err)
		applied = false
	}
	if w.pinning && w.cfg.PinnedCPU != nil {
		cpu := *w.cfg.PinnedCPU
		rep.PinnedCPU = &cpu
		if err := w.platform.SetAffinity(cpu); err != nil {
			if w.strict {
				return rep, err
			}
			w.warn(&rep, err)
		}
	}

	rep.EffectivePolicy, rep.EffectivePriority, err = w.platform.CurrentPolicy()
	if err != nil {
		w.warn(&rep, err)
		err = nil
	}
	if applied && w.cfg.Class == api.RealTimeFixedPriority &&
		(rep.EffectivePolicy != w.cfg.Policy || rep.EffectivePriority != w.cfg.Priority) {
		w.warn(&rep, api.NewError(api.ErrCodeSchedulingAttribute, "verify policy", nil).
			WithMessage("requested %s:%d, running %s:%d",
				w.cfg.Policy, w.cfg.Priority, rep.EffectivePolicy, rep.EffectivePriority))
	}
	if cpu, cerr := w.platform.CurrentCPU(); cerr == nil {
		rep.ObservedCPU = cpu
	}
	return rep, nil
}

func (w *Worker) warn(rep *api.RuntimeReport, err error) {
	rep.Warnings = append(rep.Warnings, api.WarningFrom(err))
	w.log.WithError(err).Warn("scheduling request not granted, continuing with the policy in effect")
}

// invoke runs the workload, converting a panic into ErrCodeWorkload.
func (w *Worker) invoke() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = api.NewError(api.ErrCodeWorkload, "run", fmt.Errorf("panic: %v", r)).
				WithContext("app", w.id.AppID)
		}
	}()
	w.workload()
	return nil
}
