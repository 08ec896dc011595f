// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package persistence

import (
	"context"
	"fmt"

	schedulererrors "github.com/sdss-manga/scheduler/pkg/errors"
)

// ValidatePositiveID rejects a zero or negative identifier, since the
// domain reserves 0 as "no identifier yet". MemoryStore's Port methods do
// not call it.
func ValidatePositiveID(id int, fieldName string) error {
	if id <= 0 {
		return schedulererrors.NewPreconditionError(fieldName,
			fmt.Sprintf("%s must be a positive identifier, got %d", fieldName, id))
	}
	return nil
}

// BatchDeleteSets deletes every id in ids via store, collecting (not
// short-circuiting on) individual failures so a single pinned override set
// among a larger arrangement doesn't abort the whole batch.
// applyArrangement does not use it; it calls Port.DeleteSet per set.
func BatchDeleteSets(ctx context.Context, store Port, ids []int) error {
	var failures []error
	for _, id := range ids {
		if err := store.DeleteSet(ctx, id); err != nil {
			failures = append(failures, fmt.Errorf("set %d: %w", id, err))
		}
	}
	if len(failures) == 0 {
		return nil
	}
	msg := fmt.Sprintf("%d/%d set deletions failed", len(failures), len(ids))
	for _, f := range failures {
		msg += "; " + f.Error()
	}
	return schedulererrors.NewTransientPersistenceError(fmt.Errorf("%s", msg))
}
