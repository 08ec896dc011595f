// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

// Package timeline implements the timeline scheduler: choosing, for a
// single observing block, which plates to observe and in what order by
// repeatedly simulating candidate plates and picking the one that best
// advances the night's completion (SPEC_FULL.md §4.5). It is the component
// that turns the plate simulator's hypothetical exposures into an actual
// observing plan.
package timeline

import (
	"github.com/sdss-manga/scheduler/internal/quality"
	"github.com/sdss-manga/scheduler/internal/simulate"
	"github.com/sdss-manga/scheduler/internal/siteclock"
	"github.com/sdss-manga/scheduler/pkg/metrics"
)

// The scheduling state for a single observing block lives in
// model.Timeline (JDStart/JDEnd, UnallocatedExposureIntervals,
// UnallocatedPlateWindow, Scheduled, Observed) rather than a parallel type
// here: the planner driver owns Timeline construction across a run of
// observing blocks, and this package only ever mutates the one it's handed.

// Config holds the narrow slice of the scheduler-wide configuration
// surface (SPEC_FULL.md §6) the timeline scheduler needs.
type Config struct {
	BlueThreshold float64
	RedThreshold  float64

	// Efficiency is the observing efficiency fraction fed to the plate
	// simulator's effective-exposure-time calculation.
	Efficiency float64
}

// Engine is the timeline scheduler. One Engine can drive many Timelines in
// sequence (the planner chains them across a run of observing blocks,
// propagating its surviving plate pool from one to the next).
type Engine struct {
	Simulator *simulate.Simulator
	Quality   *quality.Evaluator
	Clock     siteclock.SiteClock
	Config    Config
	Metrics   *metrics.Recorder
}

// NewEngine builds an Engine.
func NewEngine(sim *simulate.Simulator, qualityEval *quality.Evaluator, clock siteclock.SiteClock, cfg Config, rec *metrics.Recorder) *Engine {
	return &Engine{Simulator: sim, Quality: qualityEval, Clock: clock, Config: cfg, Metrics: rec}
}
