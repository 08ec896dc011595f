// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"github.com/sdss-manga/scheduler/internal/interval"
	"github.com/sdss-manga/scheduler/internal/model"
)

// allocateJDs subtracts each plate's exposures from tl's unallocated
// exposure time, and the plate's LST visibility window — converted to an
// absolute JD range anchored to the block's midpoint — from
// UnallocatedPlateWindow.
func (e *Engine) allocateJDs(tl *model.Timeline, plates []*model.Plate) {
	mid := (tl.JDStart + tl.JDEnd) / 2

	for _, plate := range plates {
		for _, exp := range plate.Exposures() {
			if !exp.Valid {
				continue
			}
			cutout := interval.Interval{Start: exp.JDStart, End: exp.JDEnd}
			tl.UnallocatedExposureIntervals = subtractAll(tl.UnallocatedExposureIntervals, cutout)
		}

		start := e.Clock.JDAt(plate.LSTWindow.Start, mid)
		end := e.Clock.JDAt(plate.LSTWindow.End, mid)
		if end < start {
			// The LST window wraps midnight; JDAt always resolves to the
			// occurrence nearest mid, so the end anchor can land a sidereal
			// day before the start anchor. Push it forward one day so the
			// cutout is a well-formed, non-wrapping JD range.
			end += 1
		}
		cutout := interval.Interval{Start: start, End: end}
		tl.UnallocatedPlateWindow = subtractAll(tl.UnallocatedPlateWindow, cutout)
	}
}

func subtractAll(ivs []interval.Interval, cutout interval.Interval) []interval.Interval {
	var next []interval.Interval
	for _, iv := range ivs {
		next = append(next, interval.Remove(iv, cutout, interval.Linear())...)
	}
	return next
}

// remainingTime returns the total exposure time still unallocated in tl, in
// hours.
func (e *Engine) remainingTime(tl *model.Timeline) float64 {
	return tl.RemainingTime()
}
