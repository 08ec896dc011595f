// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"fmt"

	"github.com/sdss-manga/scheduler/internal/interval"
	"github.com/sdss-manga/scheduler/internal/model"
	"github.com/sdss-manga/scheduler/internal/simulate"
	"github.com/sdss-manga/scheduler/internal/timeline"
	schedulererrors "github.com/sdss-manga/scheduler/pkg/errors"
	"github.com/sdss-manga/scheduler/pkg/metrics"
)

// Result is everything a Run call produces: one Timeline per observing
// block (in block order), the JD intervals left unused across all of
// them, and any non-fatal PlannerWarnings collected along the way.
type Result struct {
	Timelines      []*model.Timeline
	UnallocatedJDs []interval.Interval
	Warnings       []*schedulererrors.PlannerWarning
}

// Driver is the multi-night planner driver (C6). One Driver call builds a
// Timeline per observing block, injects weather, and schedules each block
// with internal/timeline.Engine, reusing the same plate/field pointers
// across blocks so a plate's partial completion on block N is visible to
// block N+1 without any explicit propagation step.
type Driver struct {
	Engine  *timeline.Engine
	Config  Config
	Metrics *metrics.Recorder
}

// NewDriver builds a Driver over engine.
func NewDriver(engine *timeline.Engine, cfg Config, rec *metrics.Recorder) *Driver {
	return &Driver{Engine: engine, Config: cfg, Metrics: rec}
}

// Run schedules every block in blocks order. plates and fieldsIn are the
// full candidate universe; Run narrows plates to a fresh planning run's
// default selection (unstarted, priority above the noPlugPriority floor —
// mirrors the reference planner's default getPlates/__init__ filter) and
// converts fieldsIn to mock plates with synthetic negative plate IDs so
// they flow through the same timeline-scheduling code path as a real,
// drilled plate. Returns a PreconditionError if blocks is empty: there is
// nothing to schedule and the caller almost certainly built the observing
// plan wrong.
func (d *Driver) Run(blocks []model.ObservingBlock, plates []*model.Plate, fieldsIn []*model.Field) (*Result, error) {
	if len(blocks) == 0 {
		return nil, schedulererrors.NewPreconditionError("planner.Run", "no observing blocks given")
	}

	var warnings []*schedulererrors.PlannerWarning

	pool := candidatePlates(plates, d.Config.NoPlugPriority)
	for i, f := range fieldsIn {
		pool = append(pool, f.ToPlate(-(i + 1)))
	}
	if len(pool) == 0 {
		warnings = append(warnings, schedulererrors.NewPlannerWarning(
			"plates", "no unstarted, sufficiently prioritised plates or fields available to schedule"))
	}

	timelines := make([]*model.Timeline, len(blocks))
	for i, b := range blocks {
		timelines[i] = model.NewTimeline(b.JD0, b.JD1)
	}

	good := goodWeatherIndices(len(timelines), d.Config.GoodWeatherFraction, d.Config.Seed)
	nCarts := len(d.Config.MangaCarts) - len(d.Config.OfflineCarts)

	var unallocated []interval.Interval
	for i, tl := range timelines {
		if !good[i] {
			tl.Observed = false
			d.Metrics.IncNightsWeatheredOut()
			continue
		}
		tl.Observed = true

		available := availableAt(pool, tl.JDStart)
		d.Engine.Schedule(tl, available, simulate.ModePlanner, false)
		d.Metrics.IncNightsObserved()

		if tl.RemainingTime() > 0 {
			unallocated = append(unallocated, tl.UnallocatedExposureIntervals...)
		}

		if nCarts >= 0 && len(tl.Scheduled) > nCarts {
			warnings = append(warnings, schedulererrors.NewPlannerWarning("mangaCarts",
				fmt.Sprintf("timeline %.3f-%.3f scheduled %d plates but only %d carts are available",
					tl.JDStart, tl.JDEnd, len(tl.Scheduled), nCarts)))
		}
	}

	totalHours := 0.0
	for _, iv := range unallocated {
		totalHours += iv.Len() * 24.0
	}
	d.Metrics.SetUnallocatedHours(totalHours)

	return &Result{Timelines: timelines, UnallocatedJDs: unallocated, Warnings: warnings}, nil
}

// candidatePlates narrows plates to a fresh run's default pool: entirely
// unstarted (no exposure yet grouped into a set or left unassigned) and
// above the plug-priority floor.
func candidatePlates(plates []*model.Plate, noPlugPriority int) []*model.Plate {
	var out []*model.Plate
	for _, p := range plates {
		if len(p.Exposures()) == 0 && p.Priority > noPlugPriority {
			out = append(out, p)
		}
	}
	return out
}

// availableAt narrows pool to plates/fields already at APO by jd: a plate
// with DateAtAPO <= 0 is always available, matching model.Plate's
// "0 = always" convention.
func availableAt(pool []*model.Plate, jd float64) []*model.Plate {
	var out []*model.Plate
	for _, p := range pool {
		if p.DateAtAPO <= 0 || p.DateAtAPO <= jd {
			out = append(out, p)
		}
	}
	return out
}
