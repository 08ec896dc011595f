// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"github.com/sdss-manga/scheduler/internal/interval"
	"github.com/sdss-manga/scheduler/internal/model"
	"github.com/sdss-manga/scheduler/internal/simulate"
)

// Schedule fills tl with plates drawn from candidates, one at a time,
// until either no time remains, no candidate is left, or selectOptimalPlate
// can no longer find anything observable to simulate. When force is true
// and candidates remain once the loop exits, every one of them is
// scheduled anyway (the plugger's "the night is ending, use what's left"
// escape hatch). Returns the plates chosen by this call, in selection
// order.
func (e *Engine) Schedule(tl *model.Timeline, candidates []*model.Plate, mode simulate.Mode, force bool) []*model.Plate {
	remaining := append([]*model.Plate(nil), candidates...)
	var scheduled []*model.Plate

	for e.remainingTime(tl) > 0 && len(remaining) > 0 {
		optimal := e.selectOptimalPlate(tl, remaining, mode, mode == simulate.ModePlugger)
		if optimal == nil {
			break
		}

		scheduled = append(scheduled, optimal)
		e.allocateJDs(tl, []*model.Plate{optimal})
		remaining = removePlate(remaining, optimal)

		if e.Metrics != nil {
			e.Metrics.IncPlatesScheduled()
		}
	}

	if force && len(remaining) > 0 {
		scheduled = append(scheduled, remaining...)
		e.allocateJDs(tl, remaining)
		if e.Metrics != nil {
			for range remaining {
				e.Metrics.IncPlatesScheduled()
			}
		}
	}

	tl.Scheduled = append(tl.Scheduled, scheduled...)
	return scheduled
}

// selectOptimalPlate narrows candidates to those observable and incomplete,
// optionally restricts to plugged plates first (recursing with priority
// turned off so the plugged-only subset still falls through the same
// started-then-everyone logic), prefers plates already underway, and
// otherwise simulates the full candidate set. Returns nil if nothing
// observable remains or no simulation produced an exposure to choose among.
func (e *Engine) selectOptimalPlate(tl *model.Timeline, candidates []*model.Plate, mode simulate.Mode, prioritisePlugged bool) *model.Plate {
	observable := filterPlates(candidates, func(p *model.Plate) bool {
		return e.observable(p, tl.UnallocatedExposureIntervals) &&
			!p.IsComplete(e.Config.BlueThreshold, e.Config.RedThreshold)
	})
	if len(observable) == 0 {
		return nil
	}

	if prioritisePlugged {
		if plugged := filterPlates(observable, func(p *model.Plate) bool { return p.Plugged }); len(plugged) > 0 {
			return e.selectOptimalPlate(tl, plugged, mode, false)
		}
	}

	started := filterPlates(observable, func(p *model.Plate) bool { return p.Started() })
	if optimal := e.simulateAndSelect(tl, started, mode); optimal != nil {
		return optimal
	}
	return e.simulateAndSelect(tl, observable, mode)
}

// simulateAndSelect runs the plate simulator over plates and, if it placed
// at least one mock exposure, picks a winner and cleans up the losers'
// trial exposures. Returns nil without touching any plate if the
// simulation added nothing (the caller then falls back to a wider
// candidate set).
func (e *Engine) simulateAndSelect(tl *model.Timeline, plates []*model.Plate, mode simulate.Mode) *model.Plate {
	if len(plates) == 0 {
		return nil
	}
	if !e.Simulator.Simulate(plates, tl.UnallocatedExposureIntervals, e.Config.Efficiency, mode) {
		return nil
	}

	optimal := e.selectOptimal(plates, tl)
	e.cleanupPlates(plates, optimal)
	return optimal
}

// observable reports whether any of jdIntervals, converted to local
// sidereal time, overlaps the plate's LST visibility window.
func (e *Engine) observable(plate *model.Plate, jdIntervals []interval.Interval) bool {
	for _, jdi := range jdIntervals {
		lstRange := interval.Interval{
			Start: e.Clock.LSTAt(jdi.Start),
			End:   e.Clock.LSTAt(jdi.End),
		}
		if _, ok := interval.Intersection(plate.LSTWindow, lstRange, interval.LST()); ok {
			return true
		}
	}
	return false
}

func filterPlates(plates []*model.Plate, keep func(*model.Plate) bool) []*model.Plate {
	var out []*model.Plate
	for _, p := range plates {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func removePlate(plates []*model.Plate, target *model.Plate) []*model.Plate {
	out := make([]*model.Plate, 0, len(plates))
	for _, p := range plates {
		if p != target {
			out = append(out, p)
		}
	}
	return out
}
