// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package arrangement

import "github.com/sdss-manga/scheduler/internal/model"

// repairBadSets scans sets for any with a plain Bad status (override sets
// are left untouched — their status is a fixed point) and splits each one
// per repairBadSet, returning the replacement list (§4.3.4).
func (e *Engine) repairBadSets(sets []*model.Set, plugged bool) []*model.Set {
	out := make([]*model.Set, 0, len(sets))
	for _, s := range sets {
		if s.IsOverride() {
			out = append(out, s)
			continue
		}
		status, _ := e.Quality.Evaluate(s, plugged)
		if status != model.StatusBad {
			out = append(out, s)
			continue
		}
		out = append(out, e.repairBadSet(s, plugged)...)
		e.Metrics.IncSetsRepaired(1)
	}
	return out
}

// repairBadSet splits a single Bad set into one or more non-Bad pieces
// (§4.3.4):
//   - 1 exposure: cannot be split further; returned unchanged (a Bad
//     singleton is itself a data anomaly upstream, not something this
//     function can repair).
//   - 2 exposures: split into two singletons.
//   - 3 exposures: try every 2-exposure sub-pairing; among the ones that
//     come out non-Bad, keep the one with the largest summed SN², paired
//     with a singleton for the leftover exposure. If no pairing is
//     non-Bad, split into three singletons.
func (e *Engine) repairBadSet(s *model.Set, plugged bool) []*model.Set {
	switch len(s.Exposures) {
	case 0, 1:
		return []*model.Set{s}

	case 2:
		return []*model.Set{
			model.NewSet(0, s.Exposures[0]),
			model.NewSet(0, s.Exposures[1]),
		}

	default:
		pairs := [][2]int{{0, 1}, {0, 2}, {1, 2}}
		var candidates []*model.Set
		var sums []float64
		for _, p := range pairs {
			cand := model.NewSet(0, s.Exposures[p[0]], s.Exposures[p[1]])
			status, sn := e.Quality.Evaluate(cand, plugged)
			if status == model.StatusBad {
				continue
			}
			candidates = append(candidates, cand)
			sums = append(sums, sn[model.Blue1]+sn[model.Blue2]+sn[model.Red1]+sn[model.Red2])
		}

		if len(candidates) == 0 {
			out := make([]*model.Set, len(s.Exposures))
			for i, ex := range s.Exposures {
				out[i] = model.NewSet(0, ex)
			}
			return out
		}

		best := 0
		for i, sum := range sums {
			if sum > sums[best] {
				best = i
			}
		}
		chosen := candidates[best]

		var missing *model.Exposure
		for _, ex := range s.Exposures {
			kept := false
			for _, ce := range chosen.Exposures {
				if ce.ExposureNo == ex.ExposureNo {
					kept = true
					break
				}
			}
			if !kept {
				missing = ex
				break
			}
		}
		return []*model.Set{chosen, model.NewSet(0, missing)}
	}
}
