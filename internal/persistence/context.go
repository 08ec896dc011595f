// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package persistence

import "context"

type transactionMarkerKey struct{}

// withTransactionMarker tags ctx as running inside a Port.WithTransaction
// call, so ArrangementEngine's public entry points (UpdatePlate, Rearrange)
// can detect a caller-owned transaction and fail fast with a
// PreconditionError per SPEC_FULL.md §5 rather than attempting to open
// their own nested one silently.
func withTransactionMarker(ctx context.Context) context.Context {
	return context.WithValue(ctx, transactionMarkerKey{}, true)
}

// InTransaction reports whether ctx was produced inside a
// Port.WithTransaction call.
func InTransaction(ctx context.Context) bool {
	v, _ := ctx.Value(transactionMarkerKey{}).(bool)
	return v
}
