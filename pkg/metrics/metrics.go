// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

// Package metrics instruments the scheduling core with a fixed set of
// Prometheus collectors. Unlike a general-purpose metrics provider, the
// scheduler has a small, known metric surface (§2 of SPEC_FULL.md), so
// Recorder registers each one by name at construction time rather than
// exposing a dynamic NewCounter/NewGauge registry.
package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

// Recorder is nil-safe: every method on a nil *Recorder is a no-op, so
// components can accept an optional *metrics.Recorder without a caller
// having to construct one for tests that don't care about metrics.
type Recorder struct {
	permutationsEnumerated prom.Histogram
	permutationLimitHit    prom.Counter
	setsCreated            prom.Counter
	setsRepaired           prom.Counter
	mockExposuresAdded     prom.Counter
	platesScheduled        prom.Counter
	nightsObserved         prom.Counter
	nightsWeatheredOut     prom.Counter
	unallocatedHours       prom.Gauge
}

// NewRecorder registers the scheduler's collectors against reg and returns
// a Recorder. Pass a fresh prometheus.NewRegistry() in production, or call
// with nil to fall back to prometheus.NewRegistry() internally.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	r := &Recorder{
		permutationsEnumerated: prom.NewHistogram(prom.HistogramOpts{
			Name:    "arrangement_permutations_enumerated",
			Help:    "Number of set-arrangement permutations enumerated per rearrange call.",
			Buckets: prom.ExponentialBuckets(1, 4, 10),
		}),
		permutationLimitHit: prom.NewCounter(prom.CounterOpts{
			Name: "arrangement_permutation_limit_exceeded_total",
			Help: "Times rearrange aborted because the permutation count exceeded the configured limit.",
		}),
		setsCreated: prom.NewCounter(prom.CounterOpts{
			Name: "arrangement_sets_created_total",
			Help: "Sets created by the arrangement engine.",
		}),
		setsRepaired: prom.NewCounter(prom.CounterOpts{
			Name: "arrangement_sets_repaired_total",
			Help: "Bad sets split by repairBadSet.",
		}),
		mockExposuresAdded: prom.NewCounter(prom.CounterOpts{
			Name: "simulate_mock_exposures_added_total",
			Help: "Mock exposures added by the plate simulator.",
		}),
		platesScheduled: prom.NewCounter(prom.CounterOpts{
			Name: "timeline_plates_scheduled_total",
			Help: "Plates selected by the timeline scheduler.",
		}),
		nightsObserved: prom.NewCounter(prom.CounterOpts{
			Name: "planner_nights_observed_total",
			Help: "Observing blocks the planner scheduled at least one plate for.",
		}),
		nightsWeatheredOut: prom.NewCounter(prom.CounterOpts{
			Name: "planner_nights_weathered_out_total",
			Help: "Observing blocks the weather model marked unobservable.",
		}),
		unallocatedHours: prom.NewGauge(prom.GaugeOpts{
			Name: "planner_unallocated_hours",
			Help: "Hours left unallocated by the most recent planner run.",
		}),
	}

	for _, c := range []prom.Collector{
		r.permutationsEnumerated, r.permutationLimitHit, r.setsCreated,
		r.setsRepaired, r.mockExposuresAdded, r.platesScheduled,
		r.nightsObserved, r.nightsWeatheredOut, r.unallocatedHours,
	} {
		_ = reg.Register(c) // AlreadyRegisteredError is fine on a shared registry
	}

	return r
}

func (r *Recorder) ObservePermutationsEnumerated(n int) {
	if r == nil {
		return
	}
	r.permutationsEnumerated.Observe(float64(n))
}

func (r *Recorder) IncPermutationLimitExceeded() {
	if r == nil {
		return
	}
	r.permutationLimitHit.Inc()
}

func (r *Recorder) IncSetsCreated(n int) {
	if r == nil {
		return
	}
	r.setsCreated.Add(float64(n))
}

func (r *Recorder) IncSetsRepaired(n int) {
	if r == nil {
		return
	}
	r.setsRepaired.Add(float64(n))
}

func (r *Recorder) IncMockExposuresAdded(n int) {
	if r == nil {
		return
	}
	r.mockExposuresAdded.Add(float64(n))
}

func (r *Recorder) IncPlatesScheduled() {
	if r == nil {
		return
	}
	r.platesScheduled.Inc()
}

func (r *Recorder) IncNightsObserved() {
	if r == nil {
		return
	}
	r.nightsObserved.Inc()
}

func (r *Recorder) IncNightsWeatheredOut() {
	if r == nil {
		return
	}
	r.nightsWeatheredOut.Inc()
}

func (r *Recorder) SetUnallocatedHours(h float64) {
	if r == nil {
		return
	}
	r.unallocatedHours.Set(h)
}
