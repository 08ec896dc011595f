// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"math"

	"github.com/sdss-manga/scheduler/internal/interval"
	"github.com/sdss-manga/scheduler/internal/model"
)

// selectOptimal picks a winner among plates that have just been simulated,
// per SPEC_FULL.md §4.5.1:
//  1. Restrict to plates whose LST window contains the sidereal time at the
//     earliest still-unallocated JD, if any plate qualifies.
//  2. Among those now reporting complete, prefer the one that got there
//     with the fewest exposures relative to its priority.
//  3. Otherwise, among those carrying the Accepted status, prefer the one
//     with the highest plate completion, ties broken the same way.
//  4. Otherwise apply rule 3 to the full candidate set.
func (e *Engine) selectOptimal(plates []*model.Plate, tl *model.Timeline) *model.Plate {
	if len(plates) == 0 {
		return nil
	}

	minLST := e.Clock.LSTAt(earliestStart(tl.UnallocatedExposureIntervals))
	candidates := plates
	if inWindow := filterPlates(plates, func(p *model.Plate) bool {
		return interval.Contains(minLST, p.LSTWindow, interval.LST())
	}); len(inWindow) > 0 {
		candidates = inWindow
	}

	if complete := filterPlates(candidates, func(p *model.Plate) bool {
		return p.IsComplete(e.Config.BlueThreshold, e.Config.RedThreshold)
	}); len(complete) > 0 {
		return minByExposureRatio(complete)
	}

	pool := candidates
	if accepted := filterPlates(candidates, func(p *model.Plate) bool {
		return p.HasStatus(model.PlateAccepted)
	}); len(accepted) > 0 {
		pool = accepted
	}
	return maxByCompletionThenMinRatio(pool, e.Config.BlueThreshold, e.Config.RedThreshold)
}

func earliestStart(ivs []interval.Interval) float64 {
	best := math.Inf(1)
	for _, iv := range ivs {
		if iv.Start < best {
			best = iv.Start
		}
	}
	return best
}

// priorityOf guards against a zero or negative priority collapsing the
// exposures-per-priority ratio to infinity or flipping its sign.
func priorityOf(p *model.Plate) float64 {
	if p.Priority <= 0 {
		return 1
	}
	return float64(p.Priority)
}

func exposureRatio(p *model.Plate) float64 {
	return float64(p.NumExposuresInSets()) / priorityOf(p)
}

func minByExposureRatio(plates []*model.Plate) *model.Plate {
	var best *model.Plate
	var bestRatio float64
	for _, p := range plates {
		r := exposureRatio(p)
		if best == nil || r < bestRatio {
			best, bestRatio = p, r
		}
	}
	return best
}

func maxByCompletionThenMinRatio(plates []*model.Plate, blueThreshold, redThreshold float64) *model.Plate {
	var best *model.Plate
	var bestCompletion, bestRatio float64
	for _, p := range plates {
		completion := p.PlateCompletion(blueThreshold, redThreshold)
		ratio := exposureRatio(p)
		if best == nil || completion > bestCompletion || (completion == bestCompletion && ratio < bestRatio) {
			best, bestCompletion, bestRatio = p, completion, ratio
		}
	}
	return best
}
