// Package experiment
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Experiment presets and the runner that launches a preset's roster of timed workers.

package experiment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/momentics/schedbench/api"
	"github.com/momentics/schedbench/workload"
)

// DefaultPresetID is used when no experiment id is given.
const DefaultPresetID = 4

// SharedCPU is the processor contended for by the pinned presets.
const SharedCPU = 1

// WorkerSpec describes one roster entry.
type WorkerSpec struct {
	AppID      int                  `json:"appId" yaml:"appId"`
	Workload   string               `json:"workload" yaml:"workload"`
	Scheduling api.SchedulingConfig `json:"scheduling" yaml:"scheduling"`
}

// Preset is an immutable, ordered roster plus a description.
type Preset struct {
	ID          int          `json:"id" yaml:"id"`
	Description string       `json:"description" yaml:"description"`
	Workers     []WorkerSpec `json:"workers" yaml:"workers"`
}

// clone deep-copies p so callers never alias catalog data.
func (p Preset) clone() Preset {
	out := p
	out.Workers = make([]WorkerSpec, len(p.Workers))
	for i, w := range p.Workers {
		if w.Scheduling.PinnedCPU != nil {
			cpu := *w.Scheduling.PinnedCPU
			w.Scheduling.PinnedCPU = &cpu
		}
		out.Workers[i] = w
	}
	return out
}

// Validate checks roster consistency: non-empty, unique app ids, valid configs.
func (p Preset) Validate() error {
	if len(p.Workers) == 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "validate preset", nil).
			WithMessage("empty roster").WithContext("preset", p.ID)
	}
	seen := make(map[int]bool, len(p.Workers))
	for _, w := range p.Workers {
		if seen[w.AppID] {
			return api.NewError(api.ErrCodeInvalidArgument, "validate preset", nil).
				WithMessage("duplicate app id %d", w.AppID).WithContext("preset", p.ID)
		}
		seen[w.AppID] = true
		if w.Workload != "" && !workload.Known(w.Workload) {
			return api.NewError(api.ErrCodeInvalidArgument, "validate preset", nil).
				WithMessage("unknown workload %q", w.Workload).WithContext("preset", p.ID)
		}
		if err := w.Scheduling.Normalize().Validate(); err != nil {
			return api.NewError(api.ErrCodeInvalidArgument, "validate preset", err).
				WithContext("preset", p.ID).WithContext("app", w.AppID)
		}
	}
	return nil
}

// String renders the roster on one line.
func (p Preset) String() string {
	parts := make([]string, len(p.Workers))
	for i, w := range p.Workers {
		parts[i] = fmt.Sprintf("#%d %s", w.AppID, w.Scheduling.Normalize())
	}
	return fmt.Sprintf("%d: %s [%s]", p.ID, p.Description, strings.Join(parts, ", "))
}

func rt(app int, policy api.Policy) WorkerSpec {
	return WorkerSpec{AppID: app, Workload: "spin", Scheduling: api.RealTime(policy, 80)}
}

func be(app int) WorkerSpec {
	return WorkerSpec{AppID: app, Workload: "spin", Scheduling: api.BestEffort()}
}

func pinAll(specs ...WorkerSpec) []WorkerSpec {
	for i := range specs {
		specs[i].Scheduling = specs[i].Scheduling.Pinned(SharedCPU)
	}
	return specs
}

// builtin is the reference catalogue. Pinned presets contend for SharedCPU; the
// others let the kernel place workers freely.
func builtin() []Preset {
	return []Preset{
		{
			ID:          0,
			Description: "Experiment 1: One RT app (SCHED_FIFO 80) and two NRT apps, all running on CPU 1",
			Workers:     pinAll(rt(1, api.PolicyFIFO), be(2), be(3)),
		},
		{
			ID:          1,
			Description: "Experiment 2: Same workload as 1, but freely run on available CPUs",
			Workers:     []WorkerSpec{rt(1, api.PolicyFIFO), be(2), be(3)},
		},
		{
			ID:          2,
			Description: "Experiment 3: Two RT apps (same priority, SCHED_FIFO) and one NRT app, all running on CPU 1",
			Workers:     pinAll(rt(1, api.PolicyFIFO), rt(2, api.PolicyFIFO), be(3)),
		},
		{
			ID:          3,
			Description: "Experiment 4: Two RT apps (same priority, SCHED_RR) and one NRT app, all running on CPU 1",
			Workers:     pinAll(rt(1, api.PolicyRR), rt(2, api.PolicyRR), be(3)),
		},
		{
			ID:          4,
			Description: "Experiment 5: Same workload as 3, but freely run on available CPUs",
			Workers:     []WorkerSpec{rt(1, api.PolicyFIFO), rt(2, api.PolicyFIFO), be(3)},
		},
	}
}

// Catalog is a read-only set of presets keyed by id.
type Catalog struct {
	presets map[int]Preset
}

// NewCatalog builds a catalog, rejecting invalid or duplicate presets.
func NewCatalog(presets ...Preset) (*Catalog, error) {
	c := &Catalog{presets: make(map[int]Preset, len(presets))}
	for _, p := range presets {
		if _, dup := c.presets[p.ID]; dup {
			return nil, api.NewError(api.ErrCodeInvalidArgument, "new catalog", nil).
				WithMessage("duplicate preset id %d", p.ID)
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		c.presets[p.ID] = p.clone()
	}
	return c, nil
}

// DefaultCatalog returns the five reference presets.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(builtin()...)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns a copy of the preset, or ErrCodeUnrecognizedExperiment.
func (c *Catalog) Lookup(id int) (Preset, error) {
	p, ok := c.presets[id]
	if !ok {
		return Preset{}, api.NewError(api.ErrCodeUnrecognizedExperiment, "lookup preset", nil).
			WithMessage("exp_id %d not found", id).WithContext("known", c.IDs())
	}
	return p.clone(), nil
}

// IDs lists preset ids ascending.
func (c *Catalog) IDs() []int {
	ids := make([]int, 0, len(c.presets))
	for id := range c.presets {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Presets returns copies of all presets ordered by id.
func (c *Catalog) Presets() []Preset {
	out := make([]Preset, 0, len(c.presets))
	for _, id := range c.IDs() {
		out = append(out, c.presets[id].clone())
	}
	return out
}

// Merge returns a new catalog where presets from other replace same-id entries of c.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	out := &Catalog{presets: make(map[int]Preset, len(c.presets)+len(other.presets))}
	for id, p := range c.presets {
		out.presets[id] = p
	}
	for id, p := range other.presets {
		out.presets[id] = p
	}
	return out
}
