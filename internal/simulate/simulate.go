// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

// Package simulate implements the plate simulator: walking a set of plates
// across candidate JD intervals and tentatively filling their open dither
// slots with mock exposures, so the timeline scheduler can compare "what if
// we observed this plate tonight" outcomes without touching persistence.
// Every exposure it creates is tagged model.TrialMock; promoting or
// discarding that tag is the timeline scheduler's job (SPEC_FULL.md §4.5).
package simulate

import (
	"sort"

	"github.com/sdss-manga/scheduler/internal/interval"
	"github.com/sdss-manga/scheduler/internal/model"
	"github.com/sdss-manga/scheduler/internal/quality"
	"github.com/sdss-manga/scheduler/internal/siteclock"
	"github.com/sdss-manga/scheduler/pkg/metrics"
)

// Mode selects which efficiency/altitude regime a Simulate call explores:
// the plugger evaluates plates for immediate, real-time observation, while
// the planner explores a more permissive nightly-forecast regime.
type Mode int

const (
	ModePlugger Mode = iota
	ModePlanner
)

// Config holds the narrow slice of the scheduler-wide config surface
// (SPEC_FULL.md §6) the simulator needs.
type Config struct {
	// BaseExposureTime is exposure.exposureTime, in seconds.
	BaseExposureTime float64

	PluggerMaxAltitude float64 // degrees
	PlannerMaxAltitude float64 // degrees

	// BlueThreshold/RedThreshold gate plate.IsComplete — the walk over a
	// plate stops early once it reports complete.
	BlueThreshold float64
	RedThreshold  float64
}

func (c Config) maxAltitude(mode Mode) float64 {
	if mode == ModePlanner {
		return c.PlannerMaxAltitude
	}
	return c.PluggerMaxAltitude
}

// Simulator is the plate simulator. It never touches persistence.Port: the
// mock exposures and synthetic sets it creates live only on the in-memory
// Plate objects it's given, consistent with applyArrangement's mock-only
// branch (SPEC_FULL.md §4.3.5) for exposures that are never written through.
type Simulator struct {
	Quality *quality.Evaluator
	Clock   siteclock.SiteClock
	Config  Config
	Metrics *metrics.Recorder

	// nextTempExposureNo/nextTempSetID hand out strictly-decreasing
	// negative identifiers for mock-only exposures and sets, so they can
	// never collide with a real, persisted ExposureNo/SetID (both always
	// positive in this schema).
	nextTempExposureNo int
	nextTempSetID      int
}

// NewSimulator builds a Simulator.
func NewSimulator(qualityEval *quality.Evaluator, clock siteclock.SiteClock, cfg Config, rec *metrics.Recorder) *Simulator {
	return &Simulator{Quality: qualityEval, Clock: clock, Config: cfg, Metrics: rec}
}

// Simulate walks every plate across jdIntervals in effective-exposure-time
// steps (SPEC_FULL.md §4.4), adding a TrialMock exposure wherever the plate
// is currently observable (its LST window contains the step's LST) and
// below the mode's altitude ceiling at mid-exposure. A plate's walk stops
// early once it reports complete or once its altitude ceiling is crossed.
// Reports true iff at least one exposure was added across every plate.
func (s *Simulator) Simulate(plates []*model.Plate, jdIntervals []interval.Interval, efficiency float64, mode Mode) bool {
	if efficiency <= 0 {
		efficiency = 1
	}
	effExpTime := (s.Config.BaseExposureTime / efficiency) / 86400.0
	maxAlt := s.Config.maxAltitude(mode)

	added := false
	for _, plate := range plates {
		plateLSTMid := interval.Mean(plate.LSTWindow, interval.LST())
		stopPlate := false

		for _, jdInterval := range jdIntervals {
			jd := jdInterval.Start

			for jd < jdInterval.End {
				if plate.IsComplete(s.Config.BlueThreshold, s.Config.RedThreshold) {
					stopPlate = true
					break
				}

				lst := s.Clock.LSTAt(jd)
				lstMid := s.Clock.LSTAt(jd + effExpTime/2)

				switch {
				case !interval.Contains(lst, plate.LSTWindow, interval.LST()):
					// Not observable at this step; just advance.
				case s.Clock.AltitudeAt(lstMid, plateLSTMid) > maxAlt:
					stopPlate = true
				default:
					s.addMockExposure(plate, jd, effExpTime)
					added = true
					if s.Metrics != nil {
						s.Metrics.IncMockExposuresAdded(1)
					}
				}

				if stopPlate {
					break
				}
				jd += effExpTime
			}

			if stopPlate {
				break
			}
		}
	}

	return added
}

// addMockExposure joins a TrialMock exposure to the first (lowest SetID)
// open set with an unused dither slot, or creates a new singleton set if
// none qualifies. The mock exposure carries a zero SN2Vector: it is a
// structural placeholder for "a dither slot would be filled here", not a
// prediction of signal — any existing real exposures already on the set
// carry the SN2 that actually drives completion (see DESIGN.md).
func (s *Simulator) addMockExposure(plate *model.Plate, jd, effExpTime float64) *model.Exposure {
	for _, set := range plate.SortedSets() {
		if !set.Status.IsOpenForAssignment() {
			continue
		}
		dither, ok := set.UnusedDither()
		if !ok {
			continue
		}
		exp := s.newMockExposure(dither, jd, effExpTime)
		set.Exposures = append(set.Exposures, exp)
		sort.Slice(set.Exposures, func(i, j int) bool {
			return set.Exposures[i].ExposureNo < set.Exposures[j].ExposureNo
		})
		s.Quality.Apply(set, plate.Plugged)
		return exp
	}

	exp := s.newMockExposure(model.AllDitherPositions[0], jd, effExpTime)
	s.nextTempSetID--
	newSet := model.NewSet(s.nextTempSetID, exp)
	plate.Sets = append(plate.Sets, newSet)
	s.Quality.Apply(newSet, plate.Plugged)
	return exp
}

func (s *Simulator) newMockExposure(dither model.DitherPosition, jd, effExpTime float64) *model.Exposure {
	s.nextTempExposureNo--
	return &model.Exposure{
		ExposureNo:     s.nextTempExposureNo,
		DitherPosition: dither,
		JDStart:        jd,
		JDEnd:          jd + effExpTime,
		Valid:          true,
		Origin:         model.TrialMock,
	}
}
