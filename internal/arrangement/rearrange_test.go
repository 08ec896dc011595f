// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package arrangement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdss-manga/scheduler/internal/model"
	"github.com/sdss-manga/scheduler/internal/persistence"
	"github.com/sdss-manga/scheduler/internal/siteclock"
)

func TestRearrangeNoValidExposuresIsNoOp(t *testing.T) {
	store := persistence.NewMemoryStore()
	plate := model.NewPlate(1)
	store.SeedPlate(plate)

	e := newTestEngine(store)
	ok, err := e.Rearrange(context.Background(), plate, Optimal, ScopeAll, false, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, plate.Sets)
}

func TestRearrangeFailsPreconditionInsideTransaction(t *testing.T) {
	store := persistence.NewMemoryStore()
	plate := model.NewPlate(1)
	store.SeedPlate(plate)
	e := newTestEngine(store)

	err := store.WithTransaction(context.Background(), func(ctx context.Context) error {
		_, err := e.Rearrange(ctx, plate, Optimal, ScopeAll, false, nil)
		return err
	})
	assert.Error(t, err)
}

func TestRearrangeSequentialClearsAndReassigns(t *testing.T) {
	store := persistence.NewMemoryStore()
	plate := model.NewPlate(1)
	plate.Plugged = true

	e1 := goodExposure(1, model.DitherN, model.SNVector{40, 40, 40, 40})
	e2 := goodExposure(2, model.DitherS, model.SNVector{40, 40, 40, 40})
	s := model.NewSet(10, e1, e2)
	s.Status = model.StatusIncomplete
	e1.SetID, e2.SetID = ptr(10), ptr(10)
	plate.Sets = []*model.Set{s}
	store.SeedPlate(plate)

	e := newTestEngine(store)
	ok, err := e.Rearrange(context.Background(), plate, Sequential, ScopeAll, false, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	// Sequential clears and re-runs UpdatePlate, which reassigns both
	// exposures into a single fresh set.
	require.Len(t, plate.Sets, 1)
	assert.Equal(t, []int{1, 2}, plate.Sets[0].ExposureNos())
}

func TestRearrangeOptimalCompletesPlateWithThreeDithers(t *testing.T) {
	store := persistence.NewMemoryStore()
	plate := model.NewPlate(1)
	plate.Plugged = true

	e1 := goodExposure(1, model.DitherN, model.SNVector{40, 40, 40, 40})
	e2 := goodExposure(2, model.DitherS, model.SNVector{40, 40, 40, 40})
	e3 := goodExposure(3, model.DitherE, model.SNVector{40, 40, 40, 40})
	s1 := model.NewSet(10, e1)
	s1.Status = model.StatusIncomplete
	s2 := model.NewSet(11, e2)
	s2.Status = model.StatusIncomplete
	s3 := model.NewSet(12, e3)
	s3.Status = model.StatusIncomplete
	e1.SetID, e2.SetID, e3.SetID = ptr(10), ptr(11), ptr(12)
	plate.Sets = []*model.Set{s1, s2, s3}
	store.SeedPlate(plate)

	e := newTestEngine(store)
	ok, err := e.Rearrange(context.Background(), plate, Optimal, ScopeIncomplete, false, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, plate.Sets, 1)
	assert.Equal(t, []int{1, 2, 3}, plate.Sets[0].ExposureNos())
	assert.Equal(t, model.StatusExcellent, plate.Sets[0].Status)
}

func TestRearrangeOptimalReturnsFalseWhenPermutationLimitExceeded(t *testing.T) {
	store := persistence.NewMemoryStore()
	plate := model.NewPlate(1)
	plate.Plugged = true

	// Four exposures on dither N plus one on dither S: groupByDither
	// produces a size-4 group and a size-1 group, so permutationCount is
	// 4!^(2-1) = 24 — comfortably over a limit of 1.
	for i := 1; i <= 4; i++ {
		ex := goodExposure(i, model.DitherN, model.SNVector{1, 1, 1, 1})
		s := model.NewSet(i, ex)
		s.Status = model.StatusIncomplete
		ex.SetID = ptr(i)
		plate.Sets = append(plate.Sets, s)
	}
	ex5 := goodExposure(5, model.DitherS, model.SNVector{1, 1, 1, 1})
	s5 := model.NewSet(5, ex5)
	s5.Status = model.StatusIncomplete
	ex5.SetID = ptr(5)
	plate.Sets = append(plate.Sets, s5)
	store.SeedPlate(plate)

	e := newTestEngine(store)
	e.Config.PermutationLimitIncomplete = 1

	ok, err := e.Rearrange(context.Background(), plate, Optimal, ScopeIncomplete, false, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSelectOptimalPrefersCompletingArrangementWithFewestSets(t *testing.T) {
	small := []*model.Set{model.NewSet(1, goodExposure(1, model.DitherN, model.SNVector{1, 1, 1, 1}))}
	large := []*model.Set{
		model.NewSet(2, goodExposure(2, model.DitherN, model.SNVector{1, 1, 1, 1})),
		model.NewSet(3, goodExposure(3, model.DitherS, model.SNVector{1, 1, 1, 1})),
	}

	chosen := selectOptimal([][]*model.Set{small, large}, []float64{1.5, 1.5}, 0.9, nil, 0)
	assert.Equal(t, small, chosen)
}

func TestSelectOptimalSingleArrangementShortCircuits(t *testing.T) {
	only := []*model.Set{model.NewSet(1)}
	chosen := selectOptimal([][]*model.Set{only}, []float64{0.3}, 0.9, nil, 0)
	assert.Equal(t, only, chosen)
}

func TestSelectOptimalTieBreaksByLSTDistance(t *testing.T) {
	clock := siteclock.NewFakeClock()

	near := goodExposure(1, model.DitherN, model.SNVector{10, 10, 10, 10})
	near.JDStart, near.JDEnd = 1.0/24, 1.0/24 // LSTAt == 1.0
	far := goodExposure(2, model.DitherN, model.SNVector{10, 10, 10, 10})
	far.JDStart, far.JDEnd = 13.0/24, 13.0/24 // LSTAt == 13.0

	arrNear := []*model.Set{model.NewSet(1, near)}
	arrFar := []*model.Set{model.NewSet(2, far)}

	chosen := selectOptimal([][]*model.Set{arrFar, arrNear}, []float64{0.5, 0.5}, 0.9, clock, 1.0)
	assert.Equal(t, arrNear, chosen)
}
