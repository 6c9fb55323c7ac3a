// File: experiment/runner.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package experiment

import (
	"context"
	"runtime"
	"runtime/debug"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/momentics/schedbench/api"
	"github.com/momentics/schedbench/internal/concurrency"
	"github.com/momentics/schedbench/internal/logging"
	"github.com/momentics/schedbench/worker"
	"github.com/momentics/schedbench/workload"
	"github.com/sirupsen/logrus"
)

// JoinMode selects how the runner waits for its workers.
type JoinMode int

const (
	// JoinSequential joins workers in roster order.
	JoinSequential JoinMode = iota
	// JoinConcurrent waits on all workers at once and collects them as they finish.
	JoinConcurrent
)

func (m JoinMode) String() string {
	if m == JoinConcurrent {
		return "concurrent"
	}
	return "sequential"
}

// ParseJoinMode accepts "sequential" and "concurrent".
func ParseJoinMode(s string) (JoinMode, error) {
	switch s {
	case "sequential", "seq", "":
		return JoinSequential, nil
	case "concurrent", "all":
		return JoinConcurrent, nil
	}
	return 0, api.NewError(api.ErrCodeInvalidArgument, "parse join mode", nil).WithContext("join", s)
}

// Options is the typed run configuration.
type Options struct {
	// Affinity enables CPU pinning for every worker whose spec names a CPU.
	Affinity bool
	// PinCPU, when set, replaces the CPU of every pinned worker.
	PinCPU *int
	// Strict turns scheduling attribute failures into setup failures that abort the run.
	Strict bool
	// LockMemory engages mlockall before the first worker starts.
	LockMemory bool
	// KeepGC leaves the garbage collector running during the timed section.
	KeepGC bool
	Join   JoinMode
	// Workload, when set, replaces the workload of every roster entry.
	Workload string
	Params   workload.Params
}

// DefaultOptions pins workers and locks memory; scheduling failures are only warnings
// and workers are joined in roster order.
func DefaultOptions() Options {
	return Options{
		Affinity:   true,
		LockMemory: true,
		Join:       JoinSequential,
		Params: workload.Params{
			SpinIterations: workload.DefaultSpinIterations,
			CannySize:      workload.DefaultCannySize,
			CannyPasses:    1,
		},
	}
}

// Recorder receives every report once its worker has been joined.
type Recorder interface {
	Record(preset Preset, rep api.RuntimeReport)
}

// Result is the outcome of a completed run.
type Result struct {
	RunID    string              `json:"runId" yaml:"runId"`
	Preset   Preset              `json:"preset" yaml:"preset"`
	Reports  []api.RuntimeReport `json:"reports" yaml:"reports"`
	Started  time.Time           `json:"started" yaml:"started"`
	Finished time.Time           `json:"finished" yaml:"finished"`
	// CompletionOrder lists app ids in the order their threads finished.
	CompletionOrder []int `json:"completionOrder" yaml:"completionOrder"`
}

// Report returns the report of appID.
func (r *Result) Report(appID int) (api.RuntimeReport, bool) {
	for _, rep := range r.Reports {
		if rep.AppID == appID {
			return rep, true
		}
	}
	return api.RuntimeReport{}, false
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger; the default discards output.
func WithLogger(log logrus.FieldLogger) RunnerOption {
	return func(r *Runner) { r.log = log }
}

// WithMemoryLocker replaces the process memory locker.
func WithMemoryLocker(l api.MemoryLocker) RunnerOption {
	return func(r *Runner) { r.locker = l }
}

// WithTracer sets the tracer for run and worker spans.
func WithTracer(t api.Tracer) RunnerOption {
	return func(r *Runner) { r.tracer = t }
}

// WithRecorder adds a report recorder.
func WithRecorder(rec Recorder) RunnerOption {
	return func(r *Runner) { r.recorders = append(r.recorders, rec) }
}

// WithPlatform replaces the per-thread kernel operations of every worker.
func WithPlatform(p worker.Platform) RunnerOption {
	return func(r *Runner) { r.platform = p }
}

// Runner launches one preset. It moves Idle → Running → Completed exactly once;
// a failed launch ends in Failed.
type Runner struct {
	catalog   *Catalog
	opts      Options
	locker    api.MemoryLocker
	tracer    api.Tracer
	recorders []Recorder
	platform  worker.Platform
	log       logrus.FieldLogger

	mu    sync.Mutex
	state api.RunState
}

// NewRunner creates an idle runner over catalog.
func NewRunner(catalog *Catalog, opts Options, ropts ...RunnerOption) *Runner {
	r := &Runner{
		catalog: catalog,
		opts:    opts,
		locker:  concurrency.ProcessMemory,
		tracer:  api.NopTracer{},
		log:     logging.Discard(),
		state:   api.RunIdle,
	}
	for _, o := range ropts {
		o(r)
	}
	return r
}

// State returns the current lifecycle state.
func (r *Runner) State() api.RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) setState(s api.RunState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// Run executes preset id and returns its reports in roster order. When a workload
// fails the result is still returned alongside the first workload error.
//
// An unknown id leaves the runner Idle and returns ErrCodeUnrecognizedExperiment.
// Memory locking failure returns ErrCodeFatalSetup before any worker exists. A worker
// that cannot be launched aborts the run; workers already running are waited for and
// their reports discarded. ctx is only consulted before launch: workloads cannot be
// cancelled.
func (r *Runner) Run(ctx context.Context, id int) (*Result, error) {
	preset, err := r.catalog.Lookup(id)
	if err != nil {
		r.log.WithField("preset", id).Error("ERROR: exp_id NOT FOUND")
		return nil, err
	}

	r.mu.Lock()
	if r.state != api.RunIdle {
		state := r.state
		r.mu.Unlock()
		return nil, api.NewError(api.ErrCodeInvalidState, "run", nil).
			WithMessage("runner is %s", state)
	}
	r.state = api.RunRunning
	r.mu.Unlock()

	res, err := r.run(ctx, preset)
	if err != nil {
		r.setState(api.RunFailed)
		return res, err
	}
	r.setState(api.RunCompleted)
	return res, nil
}

func (r *Runner) run(ctx context.Context, preset Preset) (res *Result, err error) {
	runID := uuid.NewString()
	log := r.log.WithFields(logrus.Fields{"run": runID, "preset": preset.ID})
	ctx, span := r.tracer.StartSpan(ctx, "experiment.run")
	span.SetTag("run.id", runID)
	span.SetTag("preset.id", preset.ID)
	span.SetTag("preset.description", preset.Description)
	defer func() { span.End(err) }()

	log.Info(preset.Description)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.opts.LockMemory {
		if err := r.locker.LockProcessMemory(); err != nil {
			log.WithError(err).Error("memory locking failed, aborting before any worker starts")
			return nil, ensureCode(err, "lock process memory", api.ErrCodeFatalSetup)
		}
	}

	workers, err := r.roster(preset, runID, log)
	if err != nil {
		return nil, err
	}

	if !r.opts.KeepGC {
		runtime.GC()
		prev := debug.SetGCPercent(-1)
		defer debug.SetGCPercent(prev)
	}

	res = &Result{RunID: runID, Preset: preset, Started: time.Now()}
	spans := make([]api.Span, len(workers))
	for i, w := range workers {
		_, spans[i] = r.tracer.StartSpan(ctx, "worker.app-"+strconv.Itoa(w.Identity().AppID))
		spans[i].SetTag("worker.config", w.Config().String())
		if err := w.Start(); err != nil {
			spans[i].End(err)
			log.WithError(err).WithField("app", w.Identity().AppID).Error("worker launch failed, aborting run")
			r.drain(workers[:i])
			for _, s := range spans[:i] {
				s.End(err)
			}
			return nil, ensureCode(err, "start worker", api.ErrCodeWorkerCreation, api.ErrCodeSchedulingAttribute)
		}
	}
	if r.opts.Strict {
		if err := r.awaitReady(workers, log); err != nil {
			for _, s := range spans {
				s.End(err)
			}
			return nil, err
		}
	}

	var joinErr error
	reports, order := r.join(workers)
	for i, jr := range reports {
		rep := jr.report
		spans[i].SetTag("worker.observed_cpu", rep.ObservedCPU)
		spans[i].SetTag("worker.policy", rep.EffectivePolicy.String())
		spans[i].SetTag("worker.priority", rep.EffectivePriority)
		spans[i].SetTag("worker.elapsed_s", rep.ElapsedSeconds())
		spans[i].End(jr.err)
		if jr.err != nil && joinErr == nil {
			joinErr = jr.err
		}
		res.Reports = append(res.Reports, rep)
		for _, rec := range r.recorders {
			rec.Record(preset, rep)
		}
	}
	res.Finished = time.Now()
	res.CompletionOrder = order
	return res, joinErr
}

// roster materializes the preset into workers. Nothing is started here.
func (r *Runner) roster(preset Preset, runID string, log logrus.FieldLogger) ([]*worker.Worker, error) {
	workers := make([]*worker.Worker, 0, len(preset.Workers))
	for _, spec := range preset.Workers {
		cfg := spec.Scheduling
		if cfg.PinnedCPU != nil && r.opts.PinCPU != nil {
			cfg = cfg.Pinned(*r.opts.PinCPU)
		}
		name := spec.Workload
		if r.opts.Workload != "" {
			name = r.opts.Workload
		}
		if name == "" {
			name = "spin"
		}
		load, err := workload.New(name, r.opts.Params)
		if err != nil {
			return nil, ensureCode(err, "build workload", api.ErrCodeWorkerCreation)
		}
		opts := []worker.Option{
			worker.WithLogger(log),
			worker.WithAffinity(r.opts.Affinity),
			worker.WithStrict(r.opts.Strict),
			worker.WithRunID(runID),
		}
		if r.platform != nil {
			opts = append(opts, worker.WithPlatform(r.platform))
		}
		w, err := worker.New(api.WorkerIdentity{AppID: spec.AppID}, cfg, load, opts...)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, nil
}

type joinResult struct {
	report api.RuntimeReport
	err    error
}

// join waits for every worker and returns results in roster order together with the
// app ids in completion order.
func (r *Runner) join(workers []*worker.Worker) ([]joinResult, []int) {
	results := make([]joinResult, len(workers))
	completed := newCompletionLog()

	switch r.opts.Join {
	case JoinConcurrent:
		type indexed struct {
			idx int
			joinResult
		}
		ch := make(chan indexed, len(workers))
		for i, w := range workers {
			go func(i int, w *worker.Worker) {
				rep, err := w.Join()
				ch <- indexed{i, joinResult{rep, err}}
			}(i, w)
		}
		for range workers {
			jr := <-ch
			results[jr.idx] = jr.joinResult
			completed.push(jr.report)
		}
	default:
		for i, w := range workers {
			rep, err := w.Join()
			results[i] = joinResult{rep, err}
		}
		byEnd := make([]api.RuntimeReport, len(results))
		for i := range results {
			byEnd[i] = results[i].report
		}
		sort.SliceStable(byEnd, func(a, b int) bool { return byEnd[a].EndTime.Before(byEnd[b].EndTime) })
		for _, rep := range byEnd {
			completed.push(rep)
		}
	}
	return results, completed.drain()
}

// awaitReady waits for every worker's thread setup. All workers are launched before
// the first wait, so a thread stuck migrating onto a busy CPU never delays the others.
// On the first setup failure every worker is drained.
func (r *Runner) awaitReady(workers []*worker.Worker, log logrus.FieldLogger) error {
	for _, w := range workers {
		if err := w.Ready(); err != nil {
			log.WithError(err).WithField("app", w.Identity().AppID).Error("worker setup failed, aborting run")
			r.drain(workers)
			return ensureCode(err, "configure worker", api.ErrCodeWorkerCreation, api.ErrCodeSchedulingAttribute)
		}
	}
	return nil
}

// drain waits for workers that were started before a launch or setup failure.
func (r *Runner) drain(started []*worker.Worker) {
	for _, w := range started {
		if _, err := w.Join(); err != nil {
			r.log.WithError(err).WithField("app", w.Identity().AppID).Warn("discarded worker ended with error")
		}
	}
}

// ensureCode returns err unchanged when it already carries one of codes, otherwise
// wraps it under codes[0].
func ensureCode(err error, op string, codes ...api.ErrorCode) error {
	if code, ok := api.CodeOf(err); ok {
		for _, c := range codes {
			if c == code {
				return err
			}
		}
	}
	return api.NewError(codes[0], op, err)
}
