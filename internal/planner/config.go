// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

// Package planner implements the multi-night planner driver (C6
// PlannerDriver): building a Timeline per observing block, drawing a
// seeded good/bad weather call for each, and chaining the surviving plate
// pool from one Timeline to the next so a plate's partial completion on
// one night carries into the next (SPEC_FULL.md §4.6). It drives
// internal/timeline but never touches persistence itself — a caller
// assembles the candidate plates/fields (and, after a Run, writes the
// resulting Timelines back through a PersistencePort) around it.
package planner

// Config holds the narrow slice of the scheduler-wide configuration
// surface (SPEC_FULL.md §6) the planner driver needs.
type Config struct {
	// GoodWeatherFraction is the fraction of observing blocks the weather
	// model marks observable.
	GoodWeatherFraction float64

	// NoPlugPriority is the priority floor: a plate at or below this
	// priority is excluded from a fresh planning run's candidate pool.
	NoPlugPriority int

	// Seed drives the weather model's RNG. The same seed always yields the
	// same good-weather index set (SPEC_FULL.md §8 property 9).
	Seed int64

	// MangaCarts/OfflineCarts size the cart-count warning: a timeline that
	// schedules more plates than len(MangaCarts)-len(OfflineCarts) cannot
	// actually be plugged the following day.
	MangaCarts   []string
	OfflineCarts []string
}
