// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package model

import "math"

// Exposure is a single timed integration on a plate. Exposures are immutable
// metadata except for SetID, which the arrangement engine mutates as it
// assigns exposures to sets.
type Exposure struct {
	ExposureNo     int
	DitherPosition DitherPosition
	SN2            SNVector
	JDStart        float64
	JDEnd          float64
	Valid          bool
	Origin         Origin
	SetID          *int

	// Ensemble scalars, pre-computed by the upstream pipeline; the quality
	// evaluator only compares them against configured acceptance windows.
	Seeing        float64
	SkyBrightness float64
	Airmass       float64

	// These are checked against the caller-supplied quality.AcceptanceWindow
	// (MaxSeeing, MaxSkyBrightness, MaxAirmass); Exposure just carries the
	// raw scalars.
}

// IsMock reports whether this exposure was created by the plate simulator.
func (e *Exposure) IsMock() bool {
	return e.Origin == Mock || e.Origin == TrialMock
}

// Clone returns a deep copy; Exposure values are small and frequently
// cloned by the simulator and arrangement engine to avoid aliasing mutable
// SetID pointers across hypothetical arrangements.
func (e *Exposure) Clone() *Exposure {
	c := *e
	if e.SetID != nil {
		id := *e.SetID
		c.SetID = &id
	}
	return &c
}

// SN2Band returns the band value treating NaN as present-but-unmeasured;
// callers performing nansum/nanmean do the NaN filtering themselves via
// the SNVector directly. This accessor exists for readability at call
// sites that want a single band by name.
func (e *Exposure) SN2Band(b Band) float64 {
	return e.SN2[b]
}

// nanOrZero returns 0 for NaN, the value otherwise — the "nansum" rule
// from SPEC_FULL.md §9: NaN is treated as missing, not as a penalty.
func nanOrZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
