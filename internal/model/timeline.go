// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package model

import "github.com/sdss-manga/scheduler/internal/interval"

// ObservingBlock is a contiguous JD interval consumed to create a Timeline.
type ObservingBlock struct {
	JD0 float64
	JD1 float64
}

// Timeline holds the scheduling state for one observing block. It lives
// only during one scheduling run.
type Timeline struct {
	JDStart float64
	JDEnd   float64

	// UnallocatedExposureIntervals are the JD slots in which a new
	// exposure may still be inserted.
	UnallocatedExposureIntervals []interval.Interval

	// UnallocatedPlateWindow is the JD window still available for any
	// plate: a plate consumes its whole visibility range once scheduled,
	// even if only partly used.
	UnallocatedPlateWindow []interval.Interval

	Scheduled []*Plate
	Observed  bool
}

// NewTimeline builds a Timeline for [jdStart, jdEnd] with both allocation
// states initialized to the full range.
func NewTimeline(jdStart, jdEnd float64) *Timeline {
	return &Timeline{
		JDStart:                      jdStart,
		JDEnd:                        jdEnd,
		UnallocatedExposureIntervals: []interval.Interval{{Start: jdStart, End: jdEnd}},
		UnallocatedPlateWindow:       []interval.Interval{{Start: jdStart, End: jdEnd}},
	}
}

// RemainingTime returns the sum of interval lengths in
// UnallocatedExposureIntervals, in hours (the unallocated slots are JD
// intervals, i.e. days; this converts to hours as the source does).
func (t *Timeline) RemainingTime() float64 {
	total := 0.0
	for _, iv := range t.UnallocatedExposureIntervals {
		total += iv.Len()
	}
	return total * 24.0
}
