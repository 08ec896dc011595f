// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package arrangement

import (
	"context"
	"math"

	"github.com/sdss-manga/scheduler/internal/interval"
	"github.com/sdss-manga/scheduler/internal/model"
	"github.com/sdss-manga/scheduler/internal/persistence"
	schedulererrors "github.com/sdss-manga/scheduler/pkg/errors"
)

// Rearrange regroups plate's in-scope exposures into sets, per mode
// (§4.3.3). lst feeds the final tie-break in Optimal mode; pass nil to
// fall back to 0.0 (no current LST available to the caller — see
// SPEC_FULL.md §9 for why a pointer rather than a global clock lookup).
//
// Returns false (with no error) if Optimal mode's permutation count
// exceeds the configured limit and force is false — this is expected
// control flow, not a failure (§8 property 5), and callers are expected
// to fall back to Sequential mode or skip the rearrange. Fails with a
// PreconditionError if ctx already carries an open caller-owned
// transaction.
func (e *Engine) Rearrange(ctx context.Context, plate *model.Plate, mode Mode, scope Scope, force bool, lst *float64) (bool, error) {
	if persistence.InTransaction(ctx) {
		return false, schedulererrors.NewPreconditionError("rearrange", "an external transaction is already open")
	}

	candidates := e.scopeExposures(plate, scope)
	valid := filterValidNonOverride(plate, candidates)
	if len(valid) == 0 {
		return true, nil
	}

	if mode == Sequential {
		return e.rearrangeSequential(ctx, plate, valid, lst)
	}
	return e.rearrangeOptimal(ctx, plate, scope, valid, force, lst)
}

// scopeExposures selects the exposures a rearrange call considers: every
// exposure on the plate for ScopeAll, or only those currently sitting in
// an Incomplete/Unplugged set for ScopeIncomplete.
func (e *Engine) scopeExposures(plate *model.Plate, scope Scope) []*model.Exposure {
	if scope == ScopeAll {
		return plate.Exposures()
	}

	var out []*model.Exposure
	for _, s := range plate.SortedSets() {
		if !s.Status.IsOpenForAssignment() {
			continue
		}
		out = append(out, s.Exposures...)
	}
	return out
}

// filterValidNonOverride drops invalid exposures and exposures currently
// sitting in an override-labeled set.
func filterValidNonOverride(plate *model.Plate, exposures []*model.Exposure) []*model.Exposure {
	overridden := map[int]bool{}
	for _, s := range plate.Sets {
		if s.IsOverride() {
			for _, e := range s.Exposures {
				overridden[e.ExposureNo] = true
			}
		}
	}

	out := make([]*model.Exposure, 0, len(exposures))
	for _, ex := range exposures {
		if !ex.Valid || overridden[ex.ExposureNo] {
			continue
		}
		out = append(out, ex)
	}
	return out
}

// overriddenSets returns plate's override-labeled sets.
func overriddenSets(plate *model.Plate) []*model.Set {
	var out []*model.Set
	for _, s := range plate.Sets {
		if s.IsOverride() {
			out = append(out, s)
		}
	}
	return out
}

func (e *Engine) rearrangeSequential(ctx context.Context, plate *model.Plate, valid []*model.Exposure, lst *float64) (bool, error) {
	inScope := make(map[int]bool, len(valid))
	for _, ex := range valid {
		inScope[ex.ExposureNo] = true
	}
	err := e.Port.WithTransaction(ctx, func(ctx context.Context) error {
		// Sets holding in-scope exposures are deleted before those
		// exposures are nulled, for the reason given in applyArrangement.
		for _, s := range append([]*model.Set(nil), plate.Sets...) {
			held := false
			for _, ex := range s.Exposures {
				held = held || inScope[ex.ExposureNo]
			}
			if s.IsOverride() || !held {
				continue
			}
			if err := e.Port.DeleteSet(ctx, s.SetID); err != nil {
				return err
			}
		}
		for _, ex := range valid {
			if err := e.Port.UpdateExposureSetID(ctx, ex.ExposureNo, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if _, err := e.UpdatePlate(ctx, plate, false, lst); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) rearrangeOptimal(ctx context.Context, plate *model.Plate, scope Scope, valid []*model.Exposure, force bool, lst *float64) (bool, error) {
	dithers := make([]string, len(valid))
	for i, ex := range valid {
		dithers[i] = string(ex.DitherPosition)
	}
	groups := groupByDither(dithers)

	maxGroupLen := 0
	for _, g := range groups {
		if len(g) > maxGroupLen {
			maxGroupLen = len(g)
		}
	}
	nPermutations := permutationCount(maxGroupLen, len(groups))

	limit := e.Config.permutationLimit(scope)
	if nPermutations > limit && !force {
		e.Metrics.IncPermutationLimitExceeded()
		return false, nil
	}
	e.Metrics.ObservePermutationsEnumerated(nPermutations)

	overridden := overriddenSets(plate)

	statusCache := map[string]model.SetStatus{}
	sn2Cache := map[string]model.SNVector{}
	evalCached := func(s *model.Set) model.SNVector {
		key := s.IdentityKey()
		if sn, ok := sn2Cache[key]; ok {
			return sn
		}
		status, sn := e.Quality.Evaluate(s, plate.Plugged)
		statusCache[key] = status
		if !status.IsGoodOrExcellent() {
			sn = model.SNVector{}
		}
		sn2Cache[key] = sn
		return sn
	}
	for _, s := range overridden {
		evalCached(s)
	}

	var arrangements [][]*model.Set
	var completions []float64

	enumerateArrangements(groups, func(rows [][]int) {
		sets := make([]*model.Set, 0, len(rows))
		for _, row := range rows {
			var exps []*model.Exposure
			for _, idx := range row {
				if idx >= 0 {
					exps = append(exps, valid[idx])
				}
			}
			if len(exps) == 0 {
				continue
			}
			sets = append(sets, model.NewSet(0, exps...))
		}

		all := make([]*model.Set, 0, len(sets)+len(overridden))
		all = append(all, sets...)
		all = append(all, overridden...)

		var total model.SNVector
		for _, s := range all {
			sn := evalCached(s)
			for b := range total {
				total[b] += sn[b]
			}
		}
		completion := completionContribution(total, e.Config.BlueThreshold, e.Config.RedThreshold)

		if len(completions) == 0 || completion >= e.Config.SetRearrangementFactor*maxOf(completions) {
			completions = append(completions, completion)
			arrangements = append(arrangements, e.repairBadSets(all, plate.Plugged))
		}
	})

	if len(arrangements) == 0 {
		return true, nil
	}

	if scope == ScopeIncomplete {
		extra := goodSetsCompletion(plate.Sets, e.Config.BlueThreshold, e.Config.RedThreshold)
		for i := range completions {
			completions[i] += extra
		}
	}

	effectiveLST := 0.0
	if lst != nil {
		effectiveLST = *lst
	}
	chosen := selectOptimal(arrangements, completions, e.Config.SetRearrangementFactor, e.Clock, effectiveLST)

	if scope == ScopeIncomplete {
		for _, s := range plate.Sets {
			if s.Status == model.StatusGood || s.Status == model.StatusExcellent {
				chosen = append(chosen, s)
			}
		}
	}

	if err := e.applyArrangement(ctx, plate, chosen); err != nil {
		return false, err
	}
	return true, nil
}

// goodSetsCompletion sums the completion contribution of only the
// Good/Excellent/Override-Good sets in sets — the portion of a plate's
// completion that an incomplete-scope rearrange leaves untouched and must
// still add back in before comparing against 1.0 (§4.3.3).
func goodSetsCompletion(sets []*model.Set, blueThreshold, redThreshold float64) float64 {
	var total model.SNVector
	for _, s := range sets {
		if !s.Status.IsGoodOrExcellent() {
			continue
		}
		sn := s.SN2Sum()
		for b := range total {
			total[b] += sn[b]
		}
	}
	return completionContribution(total, blueThreshold, redThreshold)
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// selectOptimal picks the best of several candidate arrangements (§4.3.3,
// §9 Open Question 2). If any arrangement completes the plate
// (completion > 1), the one with the fewest sets among those tied at the
// maximum completion is chosen. Otherwise, completions are normalized by set count, the
// top tier within setRearrangementFactor of the best is kept, and ties
// within that tier are broken by the smallest cumulative LST distance
// from lst across the arrangement's sets. Remaining ties resolve to the
// first-encountered arrangement, matching the enumeration order produced
// by enumerateArrangements.
func selectOptimal(arrangements [][]*model.Set, completions []float64, factor float64, clock siteclockClock, lst float64) []*model.Set {
	if len(arrangements) == 1 {
		return arrangements[0]
	}

	maxCompletion := maxOf(completions)
	if maxCompletion > 1 {
		best := -1
		for i, c := range completions {
			if c != maxCompletion {
				continue
			}
			if best == -1 || len(arrangements[i]) < len(arrangements[best]) {
				best = i
			}
		}
		return arrangements[best]
	}

	normalized := make([]float64, len(completions))
	for i, c := range completions {
		normalized[i] = c / float64(len(arrangements[i]))
	}
	minKeep := maxOf(normalized) * factor

	var top []int
	for i, v := range normalized {
		if v >= minKeep {
			top = append(top, i)
		}
	}
	if len(top) == 1 {
		return arrangements[top[0]]
	}

	best := top[0]
	bestDiff := cumulatedLSTDiff(arrangements[top[0]], clock, lst)
	for _, i := range top[1:] {
		d := cumulatedLSTDiff(arrangements[i], clock, lst)
		if d < bestDiff {
			bestDiff, best = d, i
		}
	}
	return arrangements[best]
}

// siteclockClock is the narrow slice of siteclock.SiteClock selectOptimal
// needs; declared locally so this file doesn't import the siteclock
// package just for a type name already satisfied by arrangement.Engine's
// Clock field.
type siteclockClock interface {
	LSTAt(jd float64) float64
}

func cumulatedLSTDiff(sets []*model.Set, clock siteclockClock, lst float64) float64 {
	total := 0.0
	for _, s := range sets {
		total += mod24(setMeanLST(clock, s) - lst)
	}
	return total
}

// setMeanLST approximates the source's Set.getLST(): the mean LST across
// the span from the set's earliest exposure start to its latest exposure
// end. The original Set class computing this was not present among the
// retrieved sources, so this is a direct, documented reconstruction from
// the exposure timestamps already on hand (SPEC_FULL.md §9).
func setMeanLST(clock siteclockClock, s *model.Set) float64 {
	if clock == nil || len(s.Exposures) == 0 {
		return 0
	}
	minJD, maxJD := s.Exposures[0].JDStart, s.Exposures[0].JDEnd
	for _, ex := range s.Exposures[1:] {
		if ex.JDStart < minJD {
			minJD = ex.JDStart
		}
		if ex.JDEnd > maxJD {
			maxJD = ex.JDEnd
		}
	}
	iv := interval.Interval{Start: clock.LSTAt(minJD), End: clock.LSTAt(maxJD)}
	return interval.Mean(iv, interval.LST())
}

func mod24(x float64) float64 {
	r := math.Mod(x, 24)
	if r < 0 {
		r += 24
	}
	return r
}
