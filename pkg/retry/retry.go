// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

// Package retry implements backoff policies for retrying
// TransientPersistenceError failures from a PersistencePort call. There is
// no HTTP surface in this module, so policies key off error classification
// (pkg/errors.IsRetryableError) rather than a response status code.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	schedulererrors "github.com/sdss-manga/scheduler/pkg/errors"
)

// Policy decides whether and how long to wait before retrying a failed
// persistence call.
type Policy interface {
	// ShouldRetry reports whether attempt (0-indexed) should be retried
	// given err, the failure from the last attempt.
	ShouldRetry(ctx context.Context, err error, attempt int) bool

	// WaitTime returns how long to wait before the given attempt.
	WaitTime(attempt int) time.Duration

	MaxRetries() int
}

// PersistenceBackoff retries only errors pkg/errors.IsRetryableError
// marks retryable, waiting minWaitTime for attempts 0 and 1 and
// minWaitTime*backoffFactor^(attempt-1) after that, capped at maxWaitTime,
// with optional jitter.
type PersistenceBackoff struct {
	maxRetries    int
	minWaitTime   time.Duration
	maxWaitTime   time.Duration
	backoffFactor float64
	jitter        bool
}

// NewPersistenceBackoff returns a policy with sensible defaults (3
// retries, 1s-30s, factor 2, jitter on) — override with the With* methods.
func NewPersistenceBackoff() *PersistenceBackoff {
	return &PersistenceBackoff{
		maxRetries:    3,
		minWaitTime:   1 * time.Second,
		maxWaitTime:   30 * time.Second,
		backoffFactor: 2.0,
		jitter:        true,
	}
}

func (e *PersistenceBackoff) WithMaxRetries(n int) *PersistenceBackoff {
	e.maxRetries = n
	return e
}

func (e *PersistenceBackoff) WithMinWaitTime(d time.Duration) *PersistenceBackoff {
	e.minWaitTime = d
	return e
}

func (e *PersistenceBackoff) WithMaxWaitTime(d time.Duration) *PersistenceBackoff {
	e.maxWaitTime = d
	return e
}

func (e *PersistenceBackoff) WithBackoffFactor(f float64) *PersistenceBackoff {
	e.backoffFactor = f
	return e
}

func (e *PersistenceBackoff) WithJitter(on bool) *PersistenceBackoff {
	e.jitter = on
	return e
}

func (e *PersistenceBackoff) ShouldRetry(ctx context.Context, err error, attempt int) bool {
	if attempt >= e.maxRetries {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	default:
	}
	if err == nil {
		return false
	}
	return schedulererrors.IsRetryableError(err)
}

func (e *PersistenceBackoff) WaitTime(attempt int) time.Duration {
	if attempt <= 0 {
		return e.minWaitTime
	}
	wait := time.Duration(float64(e.minWaitTime) * math.Pow(e.backoffFactor, float64(attempt-1)))
	if wait > e.maxWaitTime {
		wait = e.maxWaitTime
	}
	if e.jitter {
		wait += time.Duration(rand.Float64() * float64(wait) * 0.1)
	}
	return wait
}

func (e *PersistenceBackoff) MaxRetries() int { return e.maxRetries }

// FixedDelay retries up to maxRetries times, waiting a constant delay
// between attempts.
type FixedDelay struct {
	maxRetries int
	delay      time.Duration
}

func NewFixedDelay(maxRetries int, delay time.Duration) *FixedDelay {
	return &FixedDelay{maxRetries: maxRetries, delay: delay}
}

func (f *FixedDelay) ShouldRetry(ctx context.Context, err error, attempt int) bool {
	if attempt >= f.maxRetries {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	default:
	}
	return err != nil && schedulererrors.IsRetryableError(err)
}

func (f *FixedDelay) WaitTime(int) time.Duration { return f.delay }
func (f *FixedDelay) MaxRetries() int            { return f.maxRetries }

// NoRetry never retries — used when a caller wants persistence failures
// to surface immediately (e.g. inside an already-retrying outer loop).
type NoRetry struct{}

func NewNoRetry() *NoRetry                                      { return &NoRetry{} }
func (n *NoRetry) ShouldRetry(context.Context, error, int) bool { return false }
func (n *NoRetry) WaitTime(int) time.Duration                   { return 0 }
func (n *NoRetry) MaxRetries() int                              { return 0 }
