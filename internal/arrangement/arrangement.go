// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

// Package arrangement implements the set arrangement engine: grouping a
// plate's exposures into dither-complete sets and repairing or
// rearranging them to maximize plate completion. It is the largest and
// most stateful component of the scheduling core, and the only one that
// writes through a persistence.Port.
package arrangement

import (
	"github.com/sdss-manga/scheduler/internal/persistence"
	"github.com/sdss-manga/scheduler/internal/quality"
	"github.com/sdss-manga/scheduler/internal/siteclock"
	"github.com/sdss-manga/scheduler/pkg/metrics"
)

// Mode selects how rearrange explores the space of set assignments.
type Mode int

const (
	// Sequential clears in-scope set assignments and re-runs UpdatePlate,
	// the cheap fallback when a full permutation search is undesirable.
	Sequential Mode = iota
	// Optimal brute-force enumerates candidate arrangements and picks the
	// best by completion.
	Optimal
)

func (m Mode) String() string {
	if m == Sequential {
		return "sequential"
	}
	return "optimal"
}

// Scope limits which exposures a rearrange call considers.
type Scope int

const (
	// ScopeAll considers every valid science exposure on the plate.
	ScopeAll Scope = iota
	// ScopeIncomplete considers only exposures currently in Incomplete or
	// Unplugged sets.
	ScopeIncomplete
)

func (s Scope) String() string {
	if s == ScopeAll {
		return "all"
	}
	return "incomplete"
}

// Config holds the numeric thresholds and limits the engine needs; it is
// a narrow slice of the scheduler-wide configuration surface (SPEC_FULL.md
// §6), threaded in by whatever wires pkg/config to this package.
type Config struct {
	BlueThreshold float64
	RedThreshold  float64

	// PermutationLimitAll and PermutationLimitIncomplete bound brute-force
	// enumeration for ScopeAll and ScopeIncomplete respectively — the
	// source uses a tighter limit for the (more frequent) incomplete-scope
	// rearrangement than for a full-plate rearrangement.
	PermutationLimitAll        int
	PermutationLimitIncomplete int

	// SetRearrangementFactor is the trailing-window keep/tie-break factor
	// in (0, 1], applied both when filtering candidate arrangements and
	// when selecting among near-optimal ones.
	SetRearrangementFactor float64
}

func (c Config) permutationLimit(scope Scope) int {
	if scope == ScopeIncomplete {
		return c.PermutationLimitIncomplete
	}
	return c.PermutationLimitAll
}

// Engine is the set arrangement engine. It is safe to reuse across plates
// but not across goroutines concurrently operating on the same plate (the
// scheduling core is single-threaded cooperative, per SPEC_FULL.md §5).
type Engine struct {
	Port    persistence.Port
	Quality *quality.Evaluator
	Clock   siteclock.SiteClock
	Config  Config
	Metrics *metrics.Recorder
}

// NewEngine builds an Engine. clock may be nil: only its LSTAt is used,
// for the selectOptimal LST tie-break, and with a nil clock every set's
// mean LST is taken as 0.
func NewEngine(port persistence.Port, qualityEval *quality.Evaluator, clock siteclock.SiteClock, cfg Config, rec *metrics.Recorder) *Engine {
	return &Engine{Port: port, Quality: qualityEval, Clock: clock, Config: cfg, Metrics: rec}
}
