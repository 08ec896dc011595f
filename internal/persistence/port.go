// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

// Package persistence defines the transactional boundary between the
// scheduling core and an external relational store (C7 PersistencePort),
// plus an in-memory reference implementation used by tests and by callers
// that don't need a real database.
package persistence

import (
	"context"

	"github.com/sdss-manga/scheduler/internal/model"
)

// QueryOptions bounds a getPlates call — e.g. restricting to plates at
// APO, plugged plates only, or a priority floor. Fields are additive
// filters; a zero value disables that filter.
type QueryOptions struct {
	PlugStatus      PlugFilter
	MinPriority     int
	OnlyMangaTileID int
}

// PlugFilter restricts getPlates to plugged/unplugged plates.
type PlugFilter int

const (
	PlugAny PlugFilter = iota
	PlugOnlyPlugged
	PlugOnlyUnplugged
)

// Port is the transactional interface to the external store. Every method
// may block; none is cancellable mid-call (SPEC_FULL.md §5) but ctx still
// bounds the enclosing call and surfaces as a TransientPersistenceError on
// cancellation.
type Port interface {
	GetPlates(ctx context.Context, options QueryOptions) ([]*model.Plate, error)
	GetFields(ctx context.Context, rejectDrilled, acceptPriority1 bool) ([]*model.Field, error)
	GetExposures(ctx context.Context, plateID int) ([]*model.Exposure, error)

	// AllocateConsecutiveSetIDs returns n contiguous unused set identifiers:
	// the first gap of size n among existing IDs, or IDs starting at
	// maxExistingID+1 if no such gap exists.
	AllocateConsecutiveSetIDs(ctx context.Context, n int) ([]int, error)

	// WithTransaction runs fn atomically. Nested calls are allowed; only
	// the outermost call commits (or rolls back) the underlying session.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	DeleteSet(ctx context.Context, setID int) error
	UpdateExposureSetID(ctx context.Context, exposureNo int, setID *int) error

	// RemoveOrphanSets deletes every set with zero exposures and returns
	// the count removed.
	RemoveOrphanSets(ctx context.Context) (int, error)
}
