// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package arrangement

import (
	"context"

	"github.com/sdss-manga/scheduler/internal/model"
)

// applyArrangement commits arrangement as plate's new set layout (§4.3.5).
// Override-labeled sets are left exactly as they are — they were only
// included in arrangement for scoring purposes and are filtered back out
// here. If any exposure among the remaining sets is a mock (simulator)
// exposure, nothing is persisted: the plate's in-memory Sets are updated
// directly and the trial/candidate exposures never reach the store.
// Otherwise every non-override set is deleted and recreated with freshly
// allocated, consecutive set IDs inside a single transaction — this
// mirrors the source's delete-then-recreate approach (rather than
// diffing old vs. new membership) and incidentally fixes a bug present
// there: the source nulls `exp.mangadbExposure.set_pk` (missing the
// `[0]` index onto the exposure's single mangaDB record) instead of
// `exp.mangadbExposure[0].set_pk`, which is a no-op against the list
// object rather than the record. Here that step is simply
// Port.UpdateExposureSetID(ctx, exposureNo, nil), which always targets
// the right record.
func (e *Engine) applyArrangement(ctx context.Context, plate *model.Plate, arrangement []*model.Set) error {
	keep := make([]*model.Set, 0, len(arrangement))
	for _, s := range arrangement {
		if !s.IsOverride() {
			keep = append(keep, s)
		}
	}

	mock := false
	for _, s := range keep {
		for _, ex := range s.Exposures {
			if ex.IsMock() {
				mock = true
			}
		}
	}

	if mock {
		var preserved []*model.Set
		for _, s := range plate.Sets {
			if s.IsOverride() {
				preserved = append(preserved, s)
			}
		}
		plate.Sets = append(preserved, keep...)
		return nil
	}

	err := e.Port.WithTransaction(ctx, func(ctx context.Context) error {
		// Ranged over a copy: DeleteSet shrinks plate.Sets in place.
		for _, s := range append([]*model.Set(nil), plate.Sets...) {
			if s.IsOverride() {
				continue
			}
			// DeleteSet must run while s.Exposures is still populated — it
			// locates the owning plate via each exposure's current set
			// membership, so nulling the exposures first would leave it
			// nothing to look up and the stale set would linger in
			// plate.Sets.
			exposureNos := make([]int, len(s.Exposures))
			for i, ex := range s.Exposures {
				exposureNos[i] = ex.ExposureNo
			}
			if err := e.Port.DeleteSet(ctx, s.SetID); err != nil {
				return err
			}
			for _, no := range exposureNos {
				if err := e.Port.UpdateExposureSetID(ctx, no, nil); err != nil {
					return err
				}
			}
		}

		ids, err := e.Port.AllocateConsecutiveSetIDs(ctx, len(keep))
		if err != nil {
			return err
		}

		for i, s := range keep {
			s.SetID = ids[i]
			plate.Sets = append(plate.Sets, s)
			for _, ex := range s.Exposures {
				setID := ids[i]
				if err := e.Port.UpdateExposureSetID(ctx, ex.ExposureNo, &setID); err != nil {
					return err
				}
			}
			e.Quality.Apply(s, plate.Plugged)
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.Metrics.IncSetsCreated(len(keep))
	return nil
}
