// File: worker/strategy.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package worker

import "github.com/momentics/schedbench/api"

// strategy applies the class-specific scheduling setup on the worker's own thread.
type strategy interface {
	apply(p Platform, cfg api.SchedulingConfig) error
}

func strategyFor(class api.SchedulingClass) strategy {
	if class == api.RealTimeFixedPriority {
		return realTime{}
	}
	return bestEffort{}
}

// realTime requests the configured fixed-priority policy.
type realTime struct{}

func (realTime) apply(p Platform, cfg api.SchedulingConfig) error {
	return p.ApplyPolicy(cfg.Policy, cfg.Priority)
}

// bestEffort requests nothing. A thread that came up with a non-default policy
// was inherited from its creator and is reset to SCHED_OTHER.
type bestEffort struct{}

func (bestEffort) apply(p Platform, _ api.SchedulingConfig) error {
	policy, _, err := p.CurrentPolicy()
	if err != nil {
		return err
	}
	if policy == api.PolicyOther {
		return nil
	}
	return p.ApplyPolicy(api.PolicyOther, 0)
}
