// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"github.com/sdss-manga/scheduler/internal/persistence"
	"github.com/sdss-manga/scheduler/internal/siteclock"
	"github.com/sdss-manga/scheduler/pkg/config"
	ctxtimeout "github.com/sdss-manga/scheduler/pkg/context"
	schedulererrors "github.com/sdss-manga/scheduler/pkg/errors"
	"github.com/sdss-manga/scheduler/pkg/logging"
	"github.com/sdss-manga/scheduler/pkg/metrics"
)

// Option configures a Registry under construction, following the same
// functional-options shape as the rest of the scheduling core's Config
// structs.
type Option func(*Registry) error

// WithConfig sets the full configuration surface directly, bypassing
// WithConfigFile's YAML load.
func WithConfig(cfg *config.Config) Option {
	return func(r *Registry) error {
		if cfg == nil {
			return schedulererrors.NewConfigError("config", "must not be nil")
		}
		r.Config = cfg
		return nil
	}
}

// WithConfigFile loads path as a YAML override of the default Config.
func WithConfigFile(path string) Option {
	return func(r *Registry) error {
		cfg := config.NewDefault()
		if err := cfg.Load(path); err != nil {
			return err
		}
		r.Config = cfg
		return nil
	}
}

// WithPersistence sets the PersistencePort implementation. Omitting this
// option falls back to an in-memory store, suitable for tests and for
// callers that seed their own plates/fields.
func WithPersistence(port persistence.Port) Option {
	return func(r *Registry) error {
		if port == nil {
			return schedulererrors.NewConfigError("persistence", "must not be nil")
		}
		r.Port = port
		return nil
	}
}

// WithSiteClock sets the SiteClock implementation. Omitting this option
// falls back to a deterministic fake clock unsuitable for a real observing
// run. This repository ships no other SiteClock implementation.
func WithSiteClock(clock siteclock.SiteClock) Option {
	return func(r *Registry) error {
		if clock == nil {
			return schedulererrors.NewConfigError("siteClock", "must not be nil")
		}
		r.Clock = clock
		return nil
	}
}

// WithLogger sets the structured logger every engine logs through.
func WithLogger(logger logging.Logger) Option {
	return func(r *Registry) error {
		if logger == nil {
			return schedulererrors.NewConfigError("logger", "must not be nil")
		}
		r.Logger = logger
		return nil
	}
}

// WithMetrics sets the Prometheus recorder every engine instruments
// through. Pass nil explicitly to disable metrics (every Recorder method
// is nil-safe).
func WithMetrics(rec *metrics.Recorder) Option {
	return func(r *Registry) error {
		r.Metrics = rec
		return nil
	}
}

// WithTimeouts sets the per-suspension-point timeout configuration used by
// the Registry's persistence convenience methods (Plates, Fields,
// Exposures).
func WithTimeouts(cfg *ctxtimeout.TimeoutConfig) Option {
	return func(r *Registry) error {
		if cfg == nil {
			return schedulererrors.NewConfigError("timeouts", "must not be nil")
		}
		r.Timeouts = cfg
		return nil
	}
}
