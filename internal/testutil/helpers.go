// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds shared test fixtures and assertion helpers for
// exposures, plates, and sets, so individual package tests don't each
// hand-roll the same handful of "a plate visible all night" builders.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sdss-manga/scheduler/internal/interval"
	"github.com/sdss-manga/scheduler/internal/model"
)

// TestContext creates a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// RequireErrorContains asserts that an error occurred and its message
// contains the given substring.
func RequireErrorContains(t *testing.T, err error, contains string) {
	require.Error(t, err)
	require.Contains(t, err.Error(), contains)
}

// AssertNoError asserts that no error occurred, with an optional message.
func AssertNoError(t *testing.T, err error, msgAndArgs ...interface{}) {
	if err != nil {
		if len(msgAndArgs) > 0 {
			require.NoError(t, err, msgAndArgs...)
		} else {
			require.NoError(t, err, "unexpected error")
		}
	}
}

// NewPlate builds a plate visible across the full 24h LST range at the
// given priority, with no sets or exposures — the default shape a fresh
// candidate-pool/observability test starts from.
func NewPlate(plateID, priority int) *model.Plate {
	p := model.NewPlate(plateID)
	p.Priority = priority
	p.LSTWindow = interval.Interval{Start: 0, End: 24}
	return p
}

// NewField builds an undrilled field visible across the full 24h LST
// range, the field-side equivalent of NewPlate.
func NewField(mangaTileID, priority int) *model.Field {
	return &model.Field{
		MangaTileID: mangaTileID,
		Priority:    priority,
		LSTWindow:   interval.Interval{Start: 0, End: 24},
	}
}

// NewExposure builds a valid science exposure with the given SN² vector,
// unassigned to any set.
func NewExposure(exposureNo int, dither model.DitherPosition, sn model.SNVector) *model.Exposure {
	return &model.Exposure{
		ExposureNo:     exposureNo,
		DitherPosition: dither,
		SN2:            sn,
		Valid:          true,
	}
}

// NewSet builds a set from exposures, wiring each exposure's SetID back to
// it the way PersistencePort.UpdateExposureSetID would.
func NewSet(setID int, exposures ...*model.Exposure) *model.Set {
	s := model.NewSet(setID, exposures...)
	for _, e := range exposures {
		e.SetID = IntPtr(setID)
	}
	return s
}

// IntPtr returns a pointer to the given int value.
func IntPtr(i int) *int { return &i }
