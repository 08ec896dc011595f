// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package arrangement

import (
	"context"
	"math"
	"sort"

	"github.com/sdss-manga/scheduler/internal/model"
	"github.com/sdss-manga/scheduler/internal/persistence"
	schedulererrors "github.com/sdss-manga/scheduler/pkg/errors"
)

// UpdatePlate finds plate's unassigned, valid exposures and assigns each
// to its optimal set (§4.3.1), in ascending ExposureNo order. If
// rearrangeIncomplete, every assignment is followed by an Optimal/
// Incomplete-scope rearrange; if that rearrange ever returns false (the
// permutation limit was hit without force), UpdatePlate stops early,
// leaving the remaining exposures unassigned. lst is threaded through to the rearrange tie-break; pass
// nil if the caller has no current LST available.
//
// Returns true iff at least one exposure was newly assigned. Fails with a
// PreconditionError if ctx already carries an open caller-owned
// transaction — UpdatePlate manages its own transactions per assignment
// and must not be nested inside one (§5).
func (e *Engine) UpdatePlate(ctx context.Context, plate *model.Plate, rearrangeIncomplete bool, lst *float64) (bool, error) {
	if persistence.InTransaction(ctx) {
		return false, schedulererrors.NewPreconditionError("updatePlate", "an external transaction is already open")
	}

	unassigned := make([]*model.Exposure, 0, len(plate.Unassigned))
	for _, ex := range plate.Unassigned {
		if ex.Valid {
			unassigned = append(unassigned, ex)
		}
	}
	if len(unassigned) == 0 {
		return false, nil
	}
	sort.Slice(unassigned, func(i, j int) bool { return unassigned[i].ExposureNo < unassigned[j].ExposureNo })

	for _, ex := range unassigned {
		if err := e.AssignToOptimalSet(ctx, plate, ex); err != nil {
			return false, err
		}

		if rearrangeIncomplete {
			ok, err := e.Rearrange(ctx, plate, Optimal, ScopeIncomplete, false, lst)
			if err != nil {
				return false, err
			}
			if !ok {
				return true, nil
			}
		}
	}

	return true, nil
}

// AssignToOptimalSet assigns exposure to the best existing open set on
// plate, or creates a fresh singleton set for it if none qualifies
// (§4.3.2).
func (e *Engine) AssignToOptimalSet(ctx context.Context, plate *model.Plate, exposure *model.Exposure) error {
	target, imputedDither, found := e.findOptimalSet(plate, exposure)

	if found {
		if exposure.DitherPosition == model.DitherNone {
			exposure.DitherPosition = imputedDither
		}
		if err := e.persistAssignment(ctx, exposure, target.SetID); err != nil {
			return err
		}
		e.Quality.Apply(target, plate.Plugged)
		return nil
	}

	ids, err := e.Port.AllocateConsecutiveSetIDs(ctx, 1)
	if err != nil {
		return err
	}
	newSet := model.NewSet(ids[0])
	plate.Sets = append(plate.Sets, newSet)
	e.Metrics.IncSetsCreated(1)

	if err := e.persistAssignment(ctx, exposure, newSet.SetID); err != nil {
		return err
	}
	e.Quality.Apply(newSet, plate.Plugged)
	return nil
}

// persistAssignment durably records exposure's new set membership. The
// reference MemoryStore implementation reconciles plate.Sets/Unassigned
// on the shared Plate/Exposure objects as a side effect of this call (see
// internal/persistence.MemoryStore.UpdateExposureSetID) — a real
// ID-keyed backing store would instead require the caller to re-fetch via
// GetPlates/GetExposures, which this module's higher-level callers
// (UpdatePlate, the timeline scheduler) already do at the start of each
// scheduling pass.
func (e *Engine) persistAssignment(ctx context.Context, exposure *model.Exposure, setID int) error {
	return e.Port.WithTransaction(ctx, func(ctx context.Context) error {
		return e.Port.UpdateExposureSetID(ctx, exposure.ExposureNo, &setID)
	})
}

// findOptimalSet implements §4.3.2's candidate search: among plate's
// Incomplete/Unplugged sets, the one whose hypothetical per-band
// completion contribution (augmented by exposure) is greatest, with
// Good/Excellent hypotheticals getting a +100-per-band bonus so any
// set-completing assignment dominates any merely-progressing one. Ties
// are broken by ascending SetID (§9 Open Questions), which SortedSets
// already provides via iteration order. Returns the chosen dither to
// commit if exposure's own dither is DitherNone.
func (e *Engine) findOptimalSet(plate *model.Plate, exposure *model.Exposure) (*model.Set, model.DitherPosition, bool) {
	var best *model.Set
	var bestDither model.DitherPosition
	bestScore := math.Inf(-1)

	for _, s := range plate.SortedSets() {
		if !s.Status.IsOpenForAssignment() {
			continue
		}
		if s.HasDither(exposure.DitherPosition) {
			continue
		}

		dither := exposure.DitherPosition
		if dither == model.DitherNone {
			d, ok := s.UnusedDither()
			if !ok {
				continue
			}
			dither = d
		}

		hypothetical := hypotheticalSet(s, exposure, dither)
		status, sn := e.Quality.Evaluate(hypothetical, plate.Plugged)
		if !status.IsNonBad() {
			continue
		}

		if status.IsGoodOrExcellent() {
			sn[model.Blue1] += 100
			sn[model.Blue2] += 100
			sn[model.Red1] += 100
			sn[model.Red2] += 100
		}

		score := completionContribution(sn, e.Config.BlueThreshold, e.Config.RedThreshold)
		if score > bestScore {
			bestScore = score
			best = s
			bestDither = dither
		}
	}

	return best, bestDither, best != nil
}

// hypotheticalSet builds a scoring-only set: s's exposures plus a clone
// of exposure carrying dither, never mutating either input.
func hypotheticalSet(s *model.Set, exposure *model.Exposure, dither model.DitherPosition) *model.Set {
	clone := exposure.Clone()
	clone.DitherPosition = dither
	exposures := make([]*model.Exposure, len(s.Exposures), len(s.Exposures)+1)
	copy(exposures, s.Exposures)
	exposures = append(exposures, clone)
	return model.NewSet(s.SetID, exposures...)
}

// completionContribution scores an SN² vector the same way
// model.PlateCompletionOf scores a whole plate, but on a single candidate
// set's bonused/raw SN² directly rather than summing across many sets
// (§4.3.2: "defined as in §4.2 but computed on the hypothetical set
// alone").
func completionContribution(sn model.SNVector, blueThreshold, redThreshold float64) float64 {
	blue := nanmean2(sn[model.Blue1], sn[model.Blue2]) / blueThreshold
	red := nanmean2(sn[model.Red1], sn[model.Red2]) / redThreshold
	return math.Min(blue, red)
}

func nanmean2(a, b float64) float64 {
	sum, n := 0.0, 0
	if !math.IsNaN(a) {
		sum += a
		n++
	}
	if !math.IsNaN(b) {
		sum += b
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
