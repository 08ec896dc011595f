// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"math"
	"sort"

	"github.com/sdss-manga/scheduler/internal/interval"
)

// Plate is a drilled aluminum disk mapping fibers to sky targets — the
// unit of observation. A Plate exclusively owns its Sets.
type Plate struct {
	PlateID  int
	RA       float64
	Dec      float64
	Priority int

	Statuses map[PlateStatusLabel]bool
	Sets     []*Set

	// LSTWindow is the plate's visibility window in local sidereal time,
	// wrapping at 24h.
	LSTWindow interval.Interval

	Plugged     bool
	MangaTileID int
	Drilled     bool
	DateAtAPO   float64 // JD the plate becomes available at APO; 0 = always

	// Unassigned holds exposures fetched from persistence that have not
	// yet been grouped into a Set (SetID == nil). ArrangementEngine scans
	// this pool in ascending ExposureNo order (§4.3.1); once assigned, an
	// exposure moves into the owning Set and is removed from here.
	Unassigned []*Exposure
}

// NewPlate constructs a Plate with an initialized status set.
func NewPlate(plateID int) *Plate {
	return &Plate{PlateID: plateID, Statuses: make(map[PlateStatusLabel]bool)}
}

// HasStatus reports whether the plate carries the given status label.
func (p *Plate) HasStatus(label PlateStatusLabel) bool {
	return p.Statuses[label]
}

// SortedSets returns the plate's sets ordered by SetID ascending (§5
// ordering guarantee).
func (p *Plate) SortedSets() []*Set {
	out := make([]*Set, len(p.Sets))
	copy(out, p.Sets)
	sort.Slice(out, func(i, j int) bool { return out[i].SetID < out[j].SetID })
	return out
}

// Exposures returns every exposure belonging to the plate — assigned
// (via Sets) and unassigned — in ExposureNo order.
func (p *Plate) Exposures() []*Exposure {
	var all []*Exposure
	for _, s := range p.Sets {
		all = append(all, s.Exposures...)
	}
	all = append(all, p.Unassigned...)
	sort.Slice(all, func(i, j int) bool { return all[i].ExposureNo < all[j].ExposureNo })
	return all
}

// PlateCompletion computes the plate's overall completion fraction per
// SPEC_FULL.md §4.2: the sum runs over every non-Bad set (Incomplete and
// Unplugged sets contribute their partial SN² too). The arrangement
// engine's candidate scoring uses a narrower sum restricted to
// Excellent/Good/Override-Good sets; see PlateCompletionOf's counterpart
// in package arrangement for that.
func (p *Plate) PlateCompletion(blueThreshold, redThreshold float64) float64 {
	return PlateCompletionOf(p.Sets, blueThreshold, redThreshold)
}

// PlateCompletionOf computes completion for an arbitrary list of sets
// (typically p.Sets, but any candidate list works), summing SN² over every
// set whose status is not Bad/Override-Bad.
func PlateCompletionOf(sets []*Set, blueThreshold, redThreshold float64) float64 {
	var total SNVector
	for _, s := range sets {
		if !s.Status.IsNonBad() {
			continue
		}
		sn := s.SN2Sum()
		for b := 0; b < int(numBands); b++ {
			total[b] += sn[b]
		}
	}
	blueCompletion := nanmean(total[Blue1], total[Blue2]) / blueThreshold
	redCompletion := nanmean(total[Red1], total[Red2]) / redThreshold
	return math.Min(blueCompletion, redCompletion)
}

func nanmean(a, b float64) float64 {
	sum, n := 0.0, 0
	if !math.IsNaN(a) {
		sum += a
		n++
	}
	if !math.IsNaN(b) {
		sum += b
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// IsComplete reports whether the plate's overall completion meets 1.0.
func (p *Plate) IsComplete(blueThreshold, redThreshold float64) bool {
	return p.PlateCompletion(blueThreshold, redThreshold) >= 1.0
}

// NumExposuresInSets counts exposures that belong to a set (mirrors the
// source's "getTotoroExposures(onlySets=True)").
func (p *Plate) NumExposuresInSets() int {
	n := 0
	for _, s := range p.Sets {
		n += len(s.Exposures)
	}
	return n
}

// Started reports whether the plate has at least one exposure already
// grouped into a set (used by the timeline scheduler to prefer plates that
// are already in progress).
func (p *Plate) Started() bool {
	return p.NumExposuresInSets() > 0
}
