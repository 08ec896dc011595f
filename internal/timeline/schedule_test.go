// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdss-manga/scheduler/internal/interval"
	"github.com/sdss-manga/scheduler/internal/model"
	"github.com/sdss-manga/scheduler/internal/simulate"
)

// twoStepSpan is exactly two effective-exposure-time steps (900s each, at
// efficiency 1) wide, so a single always-observable plate consumes the
// entire block in one Schedule call.
const twoStepSpan = 2 * 900.0 / 86400.0

func TestScheduleSelectsSinglePlateAndConsumesAllTime(t *testing.T) {
	e := testEngine()
	tl := model.NewTimeline(0, twoStepSpan)

	plate := model.NewPlate(1)
	plate.Plugged = true
	plate.LSTWindow = interval.Interval{Start: 0, End: 24}

	scheduled := e.Schedule(tl, []*model.Plate{plate}, simulate.ModePlugger, false)

	require.Len(t, scheduled, 1)
	assert.Same(t, plate, scheduled[0])
	assert.Same(t, plate, tl.Scheduled[0])
	assert.InDelta(t, 0.0, e.remainingTime(tl), 1e-6)
}

func TestScheduleReturnsEmptyWhenNoTimeRemains(t *testing.T) {
	e := testEngine()
	tl := model.NewTimeline(5, 5)

	plate := model.NewPlate(1)
	plate.Plugged = true
	plate.LSTWindow = interval.Interval{Start: 0, End: 24}

	scheduled := e.Schedule(tl, []*model.Plate{plate}, simulate.ModePlugger, false)
	assert.Empty(t, scheduled)
}

func TestScheduleLeavesUnobservablePlateUnscheduledWithoutForce(t *testing.T) {
	e := testEngine()
	tl := model.NewTimeline(0, twoStepSpan)

	plate := model.NewPlate(1)
	plate.Plugged = true
	plate.LSTWindow = interval.Interval{Start: 18, End: 20} // LST never reaches here in this span

	scheduled := e.Schedule(tl, []*model.Plate{plate}, simulate.ModePlugger, false)
	assert.Empty(t, scheduled)
}

func TestScheduleForceSchedulesUnobservablePlate(t *testing.T) {
	e := testEngine()
	tl := model.NewTimeline(0, twoStepSpan)

	plate := model.NewPlate(1)
	plate.Plugged = true
	plate.LSTWindow = interval.Interval{Start: 18, End: 20}

	scheduled := e.Schedule(tl, []*model.Plate{plate}, simulate.ModePlugger, true)

	require.Len(t, scheduled, 1)
	assert.Same(t, plate, scheduled[0])
}

func TestScheduleRecursesToPluggedOnlyWhenPrioritising(t *testing.T) {
	e := testEngine()
	tl := model.NewTimeline(0, twoStepSpan)

	unplugged := model.NewPlate(1)
	unplugged.LSTWindow = interval.Interval{Start: 0, End: 24}

	plugged := model.NewPlate(2)
	plugged.Plugged = true
	plugged.LSTWindow = interval.Interval{Start: 0, End: 24}

	scheduled := e.Schedule(tl, []*model.Plate{unplugged, plugged}, simulate.ModePlugger, false)

	require.Len(t, scheduled, 1)
	assert.Same(t, plugged, scheduled[0], "plugger mode should prefer the plugged plate over the unplugged one")
}
