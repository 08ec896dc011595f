// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"context"
	"os"

	"github.com/sdss-manga/scheduler/internal/arrangement"
	"github.com/sdss-manga/scheduler/internal/fields"
	"github.com/sdss-manga/scheduler/internal/model"
	"github.com/sdss-manga/scheduler/internal/persistence"
	"github.com/sdss-manga/scheduler/internal/planner"
	"github.com/sdss-manga/scheduler/internal/quality"
	"github.com/sdss-manga/scheduler/internal/simulate"
	"github.com/sdss-manga/scheduler/internal/timeline"
	ctxtimeout "github.com/sdss-manga/scheduler/pkg/context"
	schedulererrors "github.com/sdss-manga/scheduler/pkg/errors"
)

// This file is the bridge between the generic Registry and the scheduling
// core's domain engines: it translates Registry's Config/Port/Clock/Metrics
// into the narrow Config struct each engine actually wants, the way the
// library's original client bridge translated a version-agnostic factory
// client into resource-specific managers.

// QualityEvaluator builds the set-quality evaluator from Config.SN2Thresholds.
func (r *Registry) QualityEvaluator() *quality.Evaluator {
	t := r.Config.SN2Thresholds
	return quality.NewEvaluator(
		quality.SN2Thresholds{
			PlateBlue:        t.PlateBlue,
			PlateRed:         t.PlateRed,
			SetExcellentBlue: t.SetExcellentBlue,
			SetExcellentRed:  t.SetExcellentRed,
			SetGoodBlue:      t.SetGoodBlue,
			SetGoodRed:       t.SetGoodRed,
		},
		quality.AcceptanceWindow{
			MaxSeeing:        t.Acceptance.MaxSeeing,
			MaxSkyBrightness: t.Acceptance.MaxSkyBrightness,
			MaxAirmass:       t.Acceptance.MaxAirmass,
		},
	)
}

// simulator builds the plate simulator shared by Timeline's Engine.
func (r *Registry) simulator() *simulate.Simulator {
	return simulate.NewSimulator(r.QualityEvaluator(), r.Clock, simulate.Config{
		BaseExposureTime:   r.Config.Exposure.ExposureTime,
		PluggerMaxAltitude: r.Config.Plugger.MaxAltitude,
		PlannerMaxAltitude: r.Config.Planner.MaxAltitude,
		BlueThreshold:      r.Config.SN2Thresholds.PlateBlue,
		RedThreshold:       r.Config.SN2Thresholds.PlateRed,
	}, r.Metrics)
}

// Arrangement builds the set arrangement engine (C3), the only engine
// that writes through the Registry's PersistencePort.
func (r *Registry) Arrangement() *arrangement.Engine {
	return arrangement.NewEngine(r.Port, r.QualityEvaluator(), r.Clock, arrangement.Config{
		BlueThreshold:              r.Config.SN2Thresholds.PlateBlue,
		RedThreshold:               r.Config.SN2Thresholds.PlateRed,
		PermutationLimitAll:        r.Config.SetArrangement.PermutationLimitPlate,
		PermutationLimitIncomplete: r.Config.SetArrangement.PermutationLimitIncomplete,
		SetRearrangementFactor:     r.Config.Set.SetRearrangementFactor,
	}, r.Metrics)
}

// Timeline builds the timeline scheduler (C5) tuned for the given mode:
// the plugger and the planner each observe under a different efficiency
// and maximum-altitude regime even though they share one Engine shape.
func (r *Registry) Timeline(mode simulate.Mode) *timeline.Engine {
	efficiency := r.Config.Plugger.Efficiency
	if mode == simulate.ModePlanner {
		efficiency = r.Config.Planner.Efficiency
	}
	return timeline.NewEngine(r.simulator(), r.QualityEvaluator(), r.Clock, timeline.Config{
		BlueThreshold: r.Config.SN2Thresholds.PlateBlue,
		RedThreshold:  r.Config.SN2Thresholds.PlateRed,
		Efficiency:    efficiency,
	}, r.Metrics)
}

// Planner builds the multi-night planner driver (C6) over a planner-tuned
// Timeline.
func (r *Registry) Planner() *planner.Driver {
	return planner.NewDriver(r.Timeline(simulate.ModePlanner), planner.Config{
		GoodWeatherFraction: r.Config.Planner.GoodWeatherFraction,
		NoPlugPriority:      r.Config.Planner.NoPlugPriority,
		Seed:                r.Config.Planner.Seed,
		MangaCarts:          r.Config.MangaCarts,
		OfflineCarts:        r.Config.OfflineCarts,
	}, r.Metrics)
}

// Plates is a timeout-bounded convenience wrapper over Port.GetPlates.
func (r *Registry) Plates(ctx context.Context, options persistence.QueryOptions) ([]*model.Plate, error) {
	ctx, cancel := ctxtimeout.WithTimeout(ctx, ctxtimeout.OpPersistence, r.Timeouts)
	defer cancel()
	return r.Port.GetPlates(ctx, options)
}

// Fields is a timeout-bounded convenience wrapper over Port.GetFields.
func (r *Registry) Fields(ctx context.Context, rejectDrilled, acceptPriority1 bool) ([]*model.Field, error) {
	ctx, cancel := ctxtimeout.WithTimeout(ctx, ctxtimeout.OpPersistence, r.Timeouts)
	defer cancel()
	return r.Port.GetFields(ctx, rejectDrilled, acceptPriority1)
}

// Exposures is a timeout-bounded convenience wrapper over Port.GetExposures.
func (r *Registry) Exposures(ctx context.Context, plateID int) ([]*model.Exposure, error) {
	ctx, cancel := ctxtimeout.WithTimeout(ctx, ctxtimeout.OpPersistence, r.Timeouts)
	defer cancel()
	return r.Port.GetExposures(ctx, plateID)
}

// DateAtAPOIndex loads Config.DateAtAPO, the plate/tile availability table
// the planner driver gates scheduling against. A Config.DateAtAPO of "none"
// or "" returns a nil index and a PlannerWarning rather than an error: the
// planner treats a nil index the same as every plate already being at APO.
func (r *Registry) DateAtAPOIndex() (fields.DateAtAPOIndex, *schedulererrors.PlannerWarning) {
	if r.Config.DateAtAPO == "" || r.Config.DateAtAPO == "none" {
		return nil, schedulererrors.NewPlannerWarning("dateAtAPO", "not configured")
	}

	f, err := os.Open(r.Config.DateAtAPO)
	if err != nil {
		return nil, schedulererrors.NewPlannerWarning("dateAtAPO", err.Error())
	}
	defer f.Close()

	idx, err := fields.ParseDateAtAPO(f)
	if err != nil {
		return nil, schedulererrors.NewPlannerWarning("dateAtAPO", err.Error())
	}
	return idx, nil
}

// ApplyDateAtAPO loads Config.DateAtAPO and stamps each plate's DateAtAPO
// field from the table, leaving plates absent from the table at their
// existing value (normally 0, "always available"). Returns the same
// PlannerWarning DateAtAPOIndex would on a missing or unconfigured table;
// the caller decides whether to surface it alongside the planner's own
// warnings or to drop it when DateAtAPO gating doesn't matter for the
// call in question.
func (r *Registry) ApplyDateAtAPO(plates []*model.Plate) *schedulererrors.PlannerWarning {
	idx, warning := r.DateAtAPOIndex()
	if warning != nil {
		return warning
	}
	for _, p := range plates {
		if jd, ok := idx.DateAtAPO(p.PlateID); ok {
			p.DateAtAPO = jd
		}
	}
	return nil
}

// TileWeights loads Config.Fields.TileWeights, the ancillary-program weight
// table used to rank undrilled-field candidates. An unconfigured path
// returns a nil table and a PlannerWarning; a nil TileWeights still answers
// every Weight query with 0, so callers may use the result unconditionally.
func (r *Registry) TileWeights() (fields.TileWeights, *schedulererrors.PlannerWarning) {
	if r.Config.Fields.TileWeights == "" {
		return nil, schedulererrors.NewPlannerWarning("fields.tileWeights", "not configured")
	}

	f, err := os.Open(r.Config.Fields.TileWeights)
	if err != nil {
		return nil, schedulererrors.NewPlannerWarning("fields.tileWeights", err.Error())
	}
	defer f.Close()

	weights, err := fields.ParseTileWeights(f)
	if err != nil {
		return nil, schedulererrors.NewPlannerWarning("fields.tileWeights", err.Error())
	}
	return weights, nil
}
