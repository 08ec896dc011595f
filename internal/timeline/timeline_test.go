// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sdss-manga/scheduler/internal/interval"
	"github.com/sdss-manga/scheduler/internal/model"
	"github.com/sdss-manga/scheduler/internal/quality"
	"github.com/sdss-manga/scheduler/internal/siteclock"
	"github.com/sdss-manga/scheduler/internal/simulate"
)

func testQuality() *quality.Evaluator {
	return quality.NewEvaluator(
		quality.SN2Thresholds{
			PlateBlue: 100, PlateRed: 100,
			SetExcellentBlue: 30, SetExcellentRed: 30,
			SetGoodBlue: 15, SetGoodRed: 15,
		},
		quality.AcceptanceWindow{MaxSeeing: 2.0, MaxSkyBrightness: 19.5, MaxAirmass: 1.5},
	)
}

// testClock runs LST at a clean 1:1 rate from LST0==0 at JD0==0, so
// LSTAt(jd) == wrapHours(jd*24) — easy to hand-compute in test assertions.
func testClock() *siteclock.FakeClock {
	c := siteclock.NewFakeClock()
	c.JD0, c.LST0, c.HoursPerDay = 0, 0, 24
	c.ZenithAltitude = 90
	c.DegreesPerHour = 7.5
	return c
}

func testSimConfig() simulate.Config {
	return simulate.Config{
		BaseExposureTime:   900,
		PluggerMaxAltitude: 90,
		PlannerMaxAltitude: 90,
		BlueThreshold:      100,
		RedThreshold:       100,
	}
}

func testEngine() *Engine {
	clock := testClock()
	sim := simulate.NewSimulator(testQuality(), clock, testSimConfig(), nil)
	return NewEngine(sim, testQuality(), clock, Config{BlueThreshold: 100, RedThreshold: 100, Efficiency: 1}, nil)
}

func TestAllocateJDsSubtractsExposureInterval(t *testing.T) {
	e := testEngine()
	tl := model.NewTimeline(0, 1)

	plate := model.NewPlate(1)
	plate.LSTWindow = interval.Interval{Start: 6, End: 18}
	exp := &model.Exposure{ExposureNo: 1, DitherPosition: model.DitherN, Valid: true, JDStart: 0.1, JDEnd: 0.2}
	plate.Sets = []*model.Set{model.NewSet(1, exp)}

	e.allocateJDs(tl, []*model.Plate{plate})

	require := assert.New(t)
	require.Len(tl.UnallocatedExposureIntervals, 2)
	require.InDelta(0.0, tl.UnallocatedExposureIntervals[0].Start, 1e-9)
	require.InDelta(0.1, tl.UnallocatedExposureIntervals[0].End, 1e-9)
	require.InDelta(0.2, tl.UnallocatedExposureIntervals[1].Start, 1e-9)
	require.InDelta(1.0, tl.UnallocatedExposureIntervals[1].End, 1e-9)
}

func TestAllocateJDsSubtractsPlateUTWindow(t *testing.T) {
	e := testEngine()
	tl := model.NewTimeline(0, 1)

	plate := model.NewPlate(1)
	plate.LSTWindow = interval.Interval{Start: 6, End: 18}

	e.allocateJDs(tl, []*model.Plate{plate})

	require := assert.New(t)
	require.Len(tl.UnallocatedPlateWindow, 2, "the plate's UT window should split the block into a before and after piece")

	total := 0.0
	for _, iv := range tl.UnallocatedPlateWindow {
		total += iv.Len()
	}
	require.InDelta(0.5, total, 1e-9)
}

func TestRemainingTimeSumsIntervalsInHours(t *testing.T) {
	e := testEngine()
	tl := model.NewTimeline(0, 1)
	tl.UnallocatedExposureIntervals = []interval.Interval{{Start: 0, End: 0.5}, {Start: 0.6, End: 0.7}}

	assert.InDelta(t, 14.4, e.remainingTime(tl), 1e-9)
}
