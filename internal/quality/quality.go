// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

// Package quality implements the set-quality evaluator: a pure function
// from an exposure tuple to a 4-band SN² sum and a derived status label.
// It carries no state of its own and never touches persistence.
package quality

import (
	"math"

	"github.com/sdss-manga/scheduler/internal/model"
)

// SN2Thresholds mirrors the SN2thresholds.* config keys: the per-color
// thresholds plate completion and set status are measured against.
type SN2Thresholds struct {
	PlateBlue float64
	PlateRed  float64

	SetExcellentBlue float64
	SetExcellentRed  float64
	SetGoodBlue      float64
	SetGoodRed       float64
}

// AcceptanceWindow bounds the ensemble scalars (seeing, sky brightness,
// airmass) a set's exposures must fall within to avoid a Bad status. A
// zero value for a Max* field disables that bound (no exposure fails it).
type AcceptanceWindow struct {
	MaxSeeing        float64
	MaxSkyBrightness float64
	MaxAirmass       float64
}

func (w AcceptanceWindow) withinSeeing(v float64) bool {
	return w.MaxSeeing <= 0 || math.IsNaN(v) || v <= w.MaxSeeing
}

func (w AcceptanceWindow) withinSky(v float64) bool {
	return w.MaxSkyBrightness <= 0 || math.IsNaN(v) || v <= w.MaxSkyBrightness
}

func (w AcceptanceWindow) withinAirmass(v float64) bool {
	return w.MaxAirmass <= 0 || math.IsNaN(v) || v <= w.MaxAirmass
}

// Evaluator computes set status and SN² sums against a fixed set of
// thresholds. It holds no mutable state, so a single Evaluator is safe to
// share across goroutines and across the whole arrangement/simulation
// pipeline.
type Evaluator struct {
	Thresholds SN2Thresholds
	Acceptance AcceptanceWindow
}

// NewEvaluator builds an Evaluator from the given thresholds.
func NewEvaluator(thresholds SN2Thresholds, acceptance AcceptanceWindow) *Evaluator {
	return &Evaluator{Thresholds: thresholds, Acceptance: acceptance}
}

// Evaluate computes the status and SN² vector for a set, given whether its
// host plate is currently plugged. It never mutates s; callers decide
// whether and how to apply the result.
func (ev *Evaluator) Evaluate(s *model.Set, plugged bool) (model.SetStatus, model.SNVector) {
	sn := s.SN2Sum()

	if s.IsOverride() {
		if s.Status == model.StatusOverrideBad {
			return model.StatusOverrideBad, sn
		}
		return model.StatusOverrideGood, sn
	}

	if ev.isBad(s) {
		return model.StatusBad, sn
	}

	complete := len(s.Exposures) == 3 && !s.HasDuplicateDithers()
	if complete {
		if ev.exceeds(sn, ev.Thresholds.SetExcellentBlue, ev.Thresholds.SetExcellentRed) {
			return model.StatusExcellent, sn
		}
		if ev.exceeds(sn, ev.Thresholds.SetGoodBlue, ev.Thresholds.SetGoodRed) {
			return model.StatusGood, sn
		}
	}

	if !plugged {
		return model.StatusUnplugged, sn
	}
	return model.StatusIncomplete, sn
}

// isBad reports whether any invalidity rule from §4.2 fires: a failed
// exposure, a dither collision, or an ensemble scalar outside its
// acceptance window.
func (ev *Evaluator) isBad(s *model.Set) bool {
	if !s.AllValid() {
		return true
	}
	if s.HasDuplicateDithers() {
		return true
	}
	seeing := s.MeanEnsembleScalar(func(e *model.Exposure) float64 { return e.Seeing })
	sky := s.MeanEnsembleScalar(func(e *model.Exposure) float64 { return e.SkyBrightness })
	airmass := s.MeanEnsembleScalar(func(e *model.Exposure) float64 { return e.Airmass })
	if !ev.Acceptance.withinSeeing(seeing) {
		return true
	}
	if !ev.Acceptance.withinSky(sky) {
		return true
	}
	if !ev.Acceptance.withinAirmass(airmass) {
		return true
	}
	return false
}

// exceeds reports whether sn clears the given per-color thresholds on
// every one of its four bands: both blue bands against blueThreshold, both
// red bands against redThreshold.
func (ev *Evaluator) exceeds(sn model.SNVector, blueThreshold, redThreshold float64) bool {
	return sn[model.Blue1] > blueThreshold &&
		sn[model.Blue2] > blueThreshold &&
		sn[model.Red1] > redThreshold &&
		sn[model.Red2] > redThreshold
}

// Apply evaluates s and writes the resulting status onto it (unless s is
// override-labeled, in which case status is left untouched — override
// sets are a fixed point per SPEC_FULL.md §5).
func (ev *Evaluator) Apply(s *model.Set, plugged bool) model.SetStatus {
	status, _ := ev.Evaluate(s, plugged)
	if !s.IsOverride() {
		s.Status = status
	}
	return s.Status
}
