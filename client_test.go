// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdss-manga/scheduler/internal/persistence"
	"github.com/sdss-manga/scheduler/internal/siteclock"
	"github.com/sdss-manga/scheduler/pkg/config"
	schedulererrors "github.com/sdss-manga/scheduler/pkg/errors"
)

func TestNewRegistryDefaults(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	require.NotNil(t, reg)

	assert.NotNil(t, reg.Port)
	assert.NotNil(t, reg.Clock)
	assert.NotNil(t, reg.Config)
	assert.NotNil(t, reg.Logger)
	assert.NotNil(t, reg.Metrics)
	assert.NotNil(t, reg.Timeouts)

	_, ok := reg.Clock.(*siteclock.FakeClock)
	assert.True(t, ok, "default clock should be the deterministic fake")
}

func TestNewRegistryRejectsInvalidConfig(t *testing.T) {
	bad := config.NewDefault()
	bad.Exposure.ExposureTime = 0

	_, err := NewRegistry(WithConfig(bad))
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestWithConfigRejectsNil(t *testing.T) {
	_, err := NewRegistry(WithConfig(nil))
	require.Error(t, err)
}

func TestWithPersistenceOverridesDefault(t *testing.T) {
	store := persistence.NewMemoryStore()
	store.SeedPlate(&Plate{PlateID: 7})

	reg, err := NewRegistry(WithPersistence(store))
	require.NoError(t, err)
	assert.Same(t, store, reg.Port)
}

func TestWithPersistenceRejectsNil(t *testing.T) {
	_, err := NewRegistry(WithPersistence(nil))
	require.Error(t, err)
}

func TestWithSiteClockOverridesDefault(t *testing.T) {
	clock := siteclock.NewFakeClock()
	clock.LST0 = 12

	reg, err := NewRegistry(WithSiteClock(clock))
	require.NoError(t, err)
	assert.Same(t, clock, reg.Clock)
}

func TestOptionErrorsAbortConstruction(t *testing.T) {
	failing := Option(func(r *Registry) error {
		return schedulererrors.NewConfigError("boom", "intentional failure")
	})
	_, err := NewRegistry(failing)
	require.Error(t, err)
}
