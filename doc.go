// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

/*
Package scheduler implements the scheduling core for a MaNGA/SDSS-style
fiber-spectroscopy survey: deciding which plates or undrilled fields to
observe on a given night (the plugger), planning a multi-night observing
run under a weather model (the planner), and arranging a plate's exposures
into dither-complete sets as they come in.

# Overview

A Registry is the one value a caller builds and threads through every
engine:

	reg, err := scheduler.NewRegistry(
	    scheduler.WithConfigFile("scheduler.yaml"),
	    scheduler.WithPersistence(myPort),
	    scheduler.WithSiteClock(myEphemerisClock),
	)
	if err != nil {
	    log.Fatal(err)
	}

	plates, err := reg.Plates(ctx, scheduler.QueryOptions{PlugStatus: scheduler.PlugOnlyPlugged})

	arranged := reg.Arrangement()
	assigned, err := arranged.UpdatePlate(ctx, plates[0], false, nil)

	night := reg.Timeline(simulate.ModePlugger)
	night.Schedule(timeline, candidates, simulate.ModePlugger, true)

	plan := reg.Planner()
	result, err := plan.Run(blocks, plates, fields)

# Configuration

Registry reads its configuration from pkg/config.Config: exposure timing,
planner/plugger tuning, SN² thresholds, set-arrangement permutation
limits, and the optional dateAtAPO/tile-weight lookup tables. WithConfig
sets a Config directly; WithConfigFile loads a YAML override of the
defaults. Optional inputs (the dateAtAPO table, the science catalogue)
are never required at config-validation time — their absence at use time
is reported as a PlannerWarning, not a startup failure.

# Error Handling

Every fallible operation in the scheduling core returns one of the typed
errors in pkg/errors (re-exported here as ConfigError, NotFoundError,
PlannerWarning, PermutationLimitExceededError, TransientPersistenceError).
Check for a specific kind with errors.As; TransientPersistenceError.Retryable
is true where pkg/retry's backoff policies apply.

# Concurrency

The scheduling core is single-threaded cooperative: a Registry and the
engines it builds are not safe for concurrent use against the same Plate,
though independent Plates may be processed concurrently by independent
engine instances. The only suspension points are a PersistencePort call
and a SiteClock computation. Registry.Timeouts bounds the Registry's own
Plates, Fields and Exposures calls; the engines do not apply it to their
PersistencePort or SiteClock calls.

# License

This library is licensed under the Apache License 2.0. See LICENSE for
details.
*/
package scheduler
