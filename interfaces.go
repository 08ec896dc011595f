// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

// This file re-exports the domain types a Registry caller needs at the
// root package, so importers don't have to reach into internal/model or
// internal/persistence directly.

package scheduler

import (
	"github.com/sdss-manga/scheduler/internal/model"
	"github.com/sdss-manga/scheduler/internal/persistence"
	"github.com/sdss-manga/scheduler/internal/planner"
	"github.com/sdss-manga/scheduler/internal/siteclock"
	schedulererrors "github.com/sdss-manga/scheduler/pkg/errors"
)

// ============================================================================
// Data model
// ============================================================================

// Plate is a MaNGA plate: its sets, its unassigned exposures, and the
// visibility/status fields the scheduling core reasons about.
type Plate = model.Plate

// Exposure is a single science or mock exposure, assigned to a Set or not.
type Exposure = model.Exposure

// Set is a dither-complete (or in-progress) group of exposures.
type Set = model.Set

// Field is an undrilled manga_tileid the plugger/planner can observe in
// place of a real, drilled Plate.
type Field = model.Field

// Timeline is one observing block's scheduling state.
type Timeline = model.Timeline

// ObservingBlock is a [JD0, JD1] span the planner schedules independently.
type ObservingBlock = model.ObservingBlock

// SNVector is the four-band (Blue1, Blue2, Red1, Red2) signal-to-noise-squared sum.
type SNVector = model.SNVector

// DitherPosition is a fiber dither slot (N, S, E).
type DitherPosition = model.DitherPosition

// SetStatus is a set's quality classification.
type SetStatus = model.SetStatus

// PlateStatusLabel is a named boolean flag on a plate's Statuses map.
type PlateStatusLabel = model.PlateStatusLabel

// ============================================================================
// Persistence
// ============================================================================

// Port is the transactional boundary to an external relational store (C7).
type Port = persistence.Port

// QueryOptions bounds a Plates call.
type QueryOptions = persistence.QueryOptions

// PlugFilter restricts a Plates call to plugged/unplugged plates.
type PlugFilter = persistence.PlugFilter

// ============================================================================
// Site clock
// ============================================================================

// SiteClock answers ephemeris questions about a fixed observing site.
type SiteClock = siteclock.SiteClock

// ============================================================================
// Planner
// ============================================================================

// PlanResult is everything a Planner.Run call produces.
type PlanResult = planner.Result

// ============================================================================
// Errors
// ============================================================================

// ConfigError reports a structurally invalid configuration value.
type ConfigError = schedulererrors.ConfigError

// PlannerWarning reports a non-fatal, degraded-input condition the planner
// continues past rather than failing on.
type PlannerWarning = schedulererrors.PlannerWarning

// NotFoundError reports a missing plate, field, set, or exposure.
type NotFoundError = schedulererrors.NotFoundError

// PermutationLimitExceededError reports a rearrangement search that hit
// its configured permutation cap.
type PermutationLimitExceededError = schedulererrors.PermutationLimitExceededError

// TransientPersistenceError reports a retryable PersistencePort failure.
type TransientPersistenceError = schedulererrors.TransientPersistenceError
