// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"context"
	stderrors "errors"
)

// WrapError converts a generic error returned by a PersistencePort call
// into a TransientPersistenceError, unless it is already one of this
// package's typed errors. A context cancellation or deadline surfacing
// from inside a transaction is treated as transient per SPEC_FULL.md §7.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	var sched *SchedulerError
	if stderrors.As(err, &sched) {
		return err
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return NewTransientPersistenceError(err)
	}
	return NewTransientPersistenceError(err)
}

// IsRetryableError reports whether err (or something it wraps) is marked
// retryable — the signal pkg/retry uses to decide whether to back off and
// try a persistence call again.
func IsRetryableError(err error) bool {
	var sched *SchedulerError
	if stderrors.As(err, &sched) {
		return sched.Retryable
	}
	return false
}

// GetCode extracts the Code from any wrapped SchedulerError, or
// CodeUnknown if err doesn't carry one.
func GetCode(err error) Code {
	var sched *SchedulerError
	if stderrors.As(err, &sched) {
		return sched.Code
	}
	return CodeUnknown
}

// GetCategory extracts the Category from any wrapped SchedulerError, or
// CategoryUnknown if err doesn't carry one.
func GetCategory(err error) Category {
	var sched *SchedulerError
	if stderrors.As(err, &sched) {
		return sched.Category
	}
	return CategoryUnknown
}
