// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdss-manga/scheduler/internal/model"
)

func TestCleanupPlatesPromotesWinnerTrialMocks(t *testing.T) {
	e := testEngine()

	winner := model.NewPlate(1)
	trial := &model.Exposure{ExposureNo: -1, DitherPosition: model.DitherS, Valid: true, Origin: model.TrialMock}
	real := &model.Exposure{ExposureNo: 1, DitherPosition: model.DitherN, Valid: true, SN2: model.SNVector{5, 5, 5, 5}}
	winner.Sets = []*model.Set{model.NewSet(1, real, trial)}

	e.cleanupPlates([]*model.Plate{winner}, winner)

	assert.Equal(t, model.Mock, trial.Origin)
	assert.Equal(t, model.Persisted, real.Origin)
}

func TestCleanupPlatesDiscardsLoserTrialMocksAndDropsEmptySets(t *testing.T) {
	e := testEngine()

	loser := model.NewPlate(2)
	onlyMock := &model.Exposure{ExposureNo: -1, DitherPosition: model.DitherN, Valid: true, Origin: model.TrialMock}
	mixedReal := &model.Exposure{ExposureNo: 2, DitherPosition: model.DitherN, Valid: true}
	mixedMock := &model.Exposure{ExposureNo: -2, DitherPosition: model.DitherS, Valid: true, Origin: model.TrialMock}

	setWithOnlyMock := model.NewSet(1, onlyMock)
	setMixed := model.NewSet(2, mixedReal, mixedMock)
	loser.Sets = []*model.Set{setWithOnlyMock, setMixed}

	e.cleanupPlates([]*model.Plate{loser}, nil)

	require.Len(t, loser.Sets, 1, "the set that held only a trial mock should be dropped entirely")
	assert.Equal(t, 2, loser.Sets[0].SetID)
	require.Len(t, loser.Sets[0].Exposures, 1)
	assert.Same(t, mixedReal, loser.Sets[0].Exposures[0])
}

func TestCleanupPlatesLeavesNonTrialExposuresAlone(t *testing.T) {
	e := testEngine()

	plate := model.NewPlate(3)
	persisted := &model.Exposure{ExposureNo: 1, DitherPosition: model.DitherN, Valid: true, Origin: model.Persisted}
	plate.Sets = []*model.Set{model.NewSet(1, persisted)}

	e.cleanupPlates([]*model.Plate{plate}, nil)

	require.Len(t, plate.Sets, 1)
	assert.Equal(t, model.Persisted, persisted.Origin)
}
