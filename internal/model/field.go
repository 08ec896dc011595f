// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package model

import "github.com/sdss-manga/scheduler/internal/interval"

// Field is an undrilled tile: a fallback candidate for the timeline
// scheduler when no drilled Plate can fill the remaining time. It shares
// Plate's visibility shape but never carries real exposures.
type Field struct {
	MangaTileID     int
	RA              float64
	Dec             float64
	Priority        int
	LSTWindow       interval.Interval
	AncillaryWeight float64

	// AsPlate is a mock Plate used by the simulator/scheduler so Field can
	// flow through the same selection code paths as a real Plate (the
	// source represents a field as a "mock plate" created on demand;
	// SPEC_FULL.md keeps that as an explicit, owned value instead of a
	// dynamically constructed one).
	AsPlate *Plate
}

// ToPlate materializes the field as a fresh, unstarted mock Plate.
func (f *Field) ToPlate(plateID int) *Plate {
	if f.AsPlate != nil {
		return f.AsPlate
	}
	p := NewPlate(plateID)
	p.RA = f.RA
	p.Dec = f.Dec
	p.Priority = f.Priority
	p.LSTWindow = f.LSTWindow
	p.Drilled = false
	p.MangaTileID = f.MangaTileID
	f.AsPlate = p
	return p
}
