// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package timeline

import "github.com/sdss-manga/scheduler/internal/model"

// cleanupPlates resolves a round of simulation: the winning plate's trial
// exposures are promoted to model.Mock (kept in memory, contributing to its
// completion for the rest of this run), while every losing plate's trial
// exposures are discarded outright, restoring it to the state it was in
// before simulation ran. optimal may be nil (no plate was chosen), in which
// case every plate in the round is discarded.
func (e *Engine) cleanupPlates(plates []*model.Plate, optimal *model.Plate) {
	for _, p := range plates {
		if p == optimal {
			promoteTrialMocks(p)
			continue
		}
		e.discardTrialMocks(p)
	}
}

func promoteTrialMocks(p *model.Plate) {
	for _, s := range p.Sets {
		for _, exp := range s.Exposures {
			if exp.Origin == model.TrialMock {
				exp.Origin = model.Mock
			}
		}
	}
}

// discardTrialMocks strips every TrialMock exposure from p's sets,
// re-evaluates any set that lost an exposure, and drops any set left
// empty (a set that existed solely to hold a now-discarded mock).
func (e *Engine) discardTrialMocks(p *model.Plate) {
	kept := make([]*model.Set, 0, len(p.Sets))
	for _, s := range p.Sets {
		real := make([]*model.Exposure, 0, len(s.Exposures))
		for _, exp := range s.Exposures {
			if exp.Origin != model.TrialMock {
				real = append(real, exp)
			}
		}
		if len(real) == 0 {
			continue
		}
		if len(real) != len(s.Exposures) {
			s.Exposures = real
			e.Quality.Apply(s, p.Plugged)
		}
		kept = append(kept, s)
	}
	p.Sets = kept
}
