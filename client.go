// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"github.com/sdss-manga/scheduler/internal/persistence"
	"github.com/sdss-manga/scheduler/internal/siteclock"
	"github.com/sdss-manga/scheduler/pkg/config"
	ctxtimeout "github.com/sdss-manga/scheduler/pkg/context"
	"github.com/sdss-manga/scheduler/pkg/logging"
	"github.com/sdss-manga/scheduler/pkg/metrics"
)

// Registry is the single explicit value a caller constructs and threads
// through every engine in the scheduling core: ArrangementEngine,
// TimelineScheduler, and PlannerDriver each take their PersistencePort,
// SiteClock, Config slice, and *metrics.Recorder from one Registry rather
// than looking them up by name. This replaces a class-level mutable
// connection registry with one explicit, constructor-built value.
type Registry struct {
	Port     persistence.Port
	Clock    siteclock.SiteClock
	Config   *config.Config
	Logger   logging.Logger
	Metrics  *metrics.Recorder
	Timeouts *ctxtimeout.TimeoutConfig
}

// NewRegistry builds a Registry from the given options, falling back to
// an in-memory Port, a deterministic fake SiteClock, default Config,
// a text logger, and an unregistered metrics Recorder for anything the
// caller didn't supply. Returns a ConfigError if the resulting Config
// fails Validate.
func NewRegistry(options ...Option) (*Registry, error) {
	r := &Registry{
		Config:   config.NewDefault(),
		Clock:    siteclock.NewFakeClock(),
		Logger:   logging.NewLogger(logging.DefaultConfig()),
		Metrics:  metrics.NewRecorder(nil),
		Timeouts: ctxtimeout.DefaultTimeoutConfig(),
	}

	for _, option := range options {
		if err := option(r); err != nil {
			return nil, err
		}
	}

	if r.Port == nil {
		r.Port = persistence.NewMemoryStore()
	}

	if err := r.Config.Validate(); err != nil {
		return nil, err
	}

	return r, nil
}
