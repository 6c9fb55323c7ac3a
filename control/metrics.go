// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Per-worker run metrics. Reports are kept as a keyed snapshot for the debug dump
// and mirrored into a private Prometheus registry that can be written out as a
// node_exporter textfile once the run is over.

package control

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/momentics/schedbench/api"
	"github.com/momentics/schedbench/experiment"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "schedbench"

var workerLabels = []string{"run_id", "preset", "app", "class", "policy"}

// MetricsRegistry collects worker reports. It implements experiment.Recorder.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]any
	updated time.Time

	reg        *prometheus.Registry
	elapsed    *prometheus.GaugeVec
	cpuTime    *prometheus.GaugeVec
	observed   *prometheus.GaugeVec
	priority   *prometheus.GaugeVec
	warnings   *prometheus.CounterVec
	degraded   *prometheus.CounterVec
	runsByPres *prometheus.CounterVec
}

var _ experiment.Recorder = (*MetricsRegistry)(nil)

// NewMetricsRegistry creates an empty registry with its collectors registered.
func NewMetricsRegistry() *MetricsRegistry {
	mr := &MetricsRegistry{
		metrics: make(map[string]any),
		reg:     prometheus.NewRegistry(),
		elapsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "worker_elapsed_seconds",
			Help:      "Wall-clock runtime of a worker from Start to the end of its workload.",
		}, workerLabels),
		cpuTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "worker_thread_cpu_seconds",
			Help:      "CPU time consumed by the worker thread while running its workload.",
		}, workerLabels),
		observed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "worker_observed_cpu",
			Help:      "CPU the worker thread was sampled on after setup, -1 if unknown.",
		}, workerLabels),
		priority: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "worker_effective_priority",
			Help:      "Scheduling priority the kernel reported for the worker thread.",
		}, workerLabels),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_warnings_total",
			Help:      "Warnings attached to worker reports, by error code.",
		}, []string{"preset", "code"}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_degraded_total",
			Help:      "Workers that ran without the scheduling they requested.",
		}, []string{"preset", "class"}),
		runsByPres: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workers_reported_total",
			Help:      "Worker reports recorded, by preset.",
		}, []string{"preset"}),
	}
	mr.reg.MustRegister(mr.elapsed, mr.cpuTime, mr.observed, mr.priority,
		mr.warnings, mr.degraded, mr.runsByPres)
	return mr
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Record stores rep under "preset.<id>.app.<n>" and updates the Prometheus collectors.
func (mr *MetricsRegistry) Record(preset experiment.Preset, rep api.RuntimeReport) {
	pid := strconv.Itoa(preset.ID)
	labels := prometheus.Labels{
		"run_id": rep.RunID,
		"preset": pid,
		"app":    strconv.Itoa(rep.AppID),
		"class":  rep.Class.String(),
		"policy": rep.EffectivePolicy.String(),
	}
	mr.elapsed.With(labels).Set(rep.ElapsedSeconds())
	mr.cpuTime.With(labels).Set(rep.ThreadCPUTime.Seconds())
	mr.observed.With(labels).Set(float64(rep.ObservedCPU))
	mr.priority.With(labels).Set(float64(rep.EffectivePriority))
	mr.runsByPres.WithLabelValues(pid).Inc()
	for _, w := range rep.Warnings {
		mr.warnings.WithLabelValues(pid, w.Code.String()).Inc()
	}
	if rep.Degraded() {
		mr.degraded.WithLabelValues(pid, rep.Class.String()).Inc()
	}
	mr.Set(fmt.Sprintf("preset.%d.app.%d", preset.ID, rep.AppID), rep)
}

// GetSnapshot returns the latest metrics.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out
}

// Updated returns the time of the last write, zero if nothing was recorded.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}

// Gatherer exposes the Prometheus registry.
func (mr *MetricsRegistry) Gatherer() prometheus.Gatherer { return mr.reg }

// WriteTextfile writes the collected metrics in the text exposition format. The
// file is replaced atomically.
func (mr *MetricsRegistry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, mr.reg); err != nil {
		return api.NewError(api.ErrCodeInvalidArgument, "write metrics", err).WithContext("path", path)
	}
	return nil
}
