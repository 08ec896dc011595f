// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package siteclock

import "math"

// FakeClock is a deterministic SiteClock for tests: LST advances linearly
// with JD (sidereal time runs slightly fast relative to solar time, but a
// test fixture doesn't need the real ratio — it needs a predictable one),
// and altitude falls linearly with |hourAngle| from a configurable zenith
// altitude.
type FakeClock struct {
	// JD0/LST0 anchor the affine LST model: LSTAt(JD0) == LST0.
	JD0, LST0 float64

	// HoursPerDay is how many LST hours elapse per JD day (default 24.0);
	// set to the sidereal rate (24.0657...) to mimic real drift in tests
	// that care about it, or leave at 24.0 for a clean 1:1 model.
	HoursPerDay float64

	// ZenithAltitude is the altitude in degrees at transit (hourAngle==0).
	ZenithAltitude float64

	// DegreesPerHour is how fast altitude falls off per hour of |hourAngle|
	// away from transit.
	DegreesPerHour float64

	// MJDOffset is JD - MJD (conventionally 2400000.5).
	MJDOffset float64
}

// NewFakeClock returns a FakeClock with conventional defaults: a clean
// 24h/day LST rate, 90 degree zenith, 7.5 deg/hour falloff (altitude
// reaches 0 only at |hourAngle| == 12, so a plate never drops below the
// horizon), and the standard MJD offset.
func NewFakeClock() *FakeClock {
	return &FakeClock{
		JD0:            0,
		LST0:           0,
		HoursPerDay:    24.0,
		ZenithAltitude: 90.0,
		DegreesPerHour: 7.5,
		MJDOffset:      2400000.5,
	}
}

func (c *FakeClock) LSTAt(jd float64) float64 {
	days := jd - c.JD0
	return wrapHours(c.LST0 + days*c.HoursPerDay)
}

// AltitudeAt mirrors a symmetric transit curve: the hour angle is the
// signed, wrapped difference between lst and plateLSTMid (shortest path
// around the 24h circle), and altitude falls linearly with |hourAngle|.
func (c *FakeClock) AltitudeAt(lst, plateLSTMid float64) float64 {
	ha := wrapHours(lst - plateLSTMid)
	if ha > 12 {
		ha -= 24
	}
	alt := c.ZenithAltitude - math.Abs(ha)*c.DegreesPerHour
	if alt < -90 {
		alt = -90
	}
	return alt
}

func (c *FakeClock) MJD(jd float64) float64 {
	return jd - c.MJDOffset
}

// JDAt inverts the affine LST model: since LSTAt is linear in jd with
// slope HoursPerDay, the JD nearest anchorJD at which LST equals lst is a
// direct closed-form solve, no iteration needed. A zero HoursPerDay (a
// clock with no drift, used by tests that only care about a fixed LST) has
// no inverse, so it degenerates to returning anchorJD unchanged.
func (c *FakeClock) JDAt(lst, anchorJD float64) float64 {
	if c.HoursPerDay == 0 {
		return anchorJD
	}
	anchorLST := c.LSTAt(anchorJD)
	delta := wrapSigned(lst - anchorLST)
	return anchorJD + delta/c.HoursPerDay
}
