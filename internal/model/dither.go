// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

// Package model holds the fiber-scheduler's data model: exposures, sets,
// plates, fields and the timeline scheduling state. Ownership follows a
// single tree (plate owns sets owns exposure references); exposures carry
// their set assignment as an identifier (SetID), never a back-pointer.
package model

// DitherPosition is a telescope dither offset used to fill fiber gaps.
type DitherPosition string

const (
	DitherN    DitherPosition = "N"
	DitherS    DitherPosition = "S"
	DitherE    DitherPosition = "E"
	DitherNone DitherPosition = ""
)

// AllDitherPositions is the canonical set of real (non-"none") dither
// positions a set can hold, ordered for deterministic imputation.
var AllDitherPositions = []DitherPosition{DitherN, DitherS, DitherE}

// SetStatus is the derived quality label of a Set.
type SetStatus string

const (
	StatusExcellent    SetStatus = "Excellent"
	StatusGood         SetStatus = "Good"
	StatusIncomplete   SetStatus = "Incomplete"
	StatusBad          SetStatus = "Bad"
	StatusOverrideGood SetStatus = "Override-Good"
	StatusOverrideBad  SetStatus = "Override-Bad"
	StatusUnplugged    SetStatus = "Unplugged"
)

// IsOverride reports whether a status is a human-applied override label.
func (s SetStatus) IsOverride() bool {
	return s == StatusOverrideGood || s == StatusOverrideBad
}

// IsGoodOrExcellent reports whether a status counts toward the arrangement
// engine's candidate-scoring completion (§4.3.1 item 4): only sets that are
// actually finished contribute, so a candidate arrangement is scored on
// sets it would actually keep.
func (s SetStatus) IsGoodOrExcellent() bool {
	return s == StatusExcellent || s == StatusGood || s == StatusOverrideGood
}

// IsNonBad reports whether a status counts toward a plate's general
// completion figure (§4.2): every set contributes its SN² except ones
// flagged Bad or Override-Bad.
func (s SetStatus) IsNonBad() bool {
	return s != StatusBad && s != StatusOverrideBad
}

// IsOpenForAssignment reports whether a set of this status may still
// receive a new exposure assignment.
func (s SetStatus) IsOpenForAssignment() bool {
	return s == StatusIncomplete || s == StatusUnplugged
}

// PlateStatusLabel is one of the labels a Plate carries in its status set.
type PlateStatusLabel string

const (
	PlateRejected     PlateStatusLabel = "Rejected"
	PlateUnobservable PlateStatusLabel = "Unobservable"
	PlateAccepted     PlateStatusLabel = "Accepted"
	PlateStarted      PlateStatusLabel = "Started"
)

// Band indexes the four SN2 wavelength bands.
type Band int

const (
	Blue1 Band = iota
	Blue2
	Red1
	Red2
	numBands
)

// SNVector is a 4-band SN2 measurement, one entry per Band.
type SNVector [int(numBands)]float64

// Origin distinguishes persisted exposures from simulator-created mocks.
// It replaces the source's mutable "_tmp" runtime attribute (see design
// note in SPEC_FULL.md §4.4/§9): TrialMock exposures belong to a losing
// simulated plate and are discarded by cleanup; Mock exposures belong to
// the winning plate and are kept (in memory only, never persisted).
type Origin int

const (
	Persisted Origin = iota
	Mock
	TrialMock
)
