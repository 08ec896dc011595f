// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

// Package interval implements arithmetic on 1-D and circular (mod 24h, for
// local sidereal time) intervals: intersection, subtraction, membership and
// mean. Every operation respects wrap: an interval [a, b] with a > b is
// interpreted as [a, wrapAt] ∪ [0, b] when wrapAt is non-nil.
package interval

import "sort"

// Interval is a closed range [Start, End]. Zero-length intervals are valid.
type Interval struct {
	Start float64
	End   float64
}

// Len returns End - Start, not accounting for wrap (callers needing wrapped
// length should normalize first).
func (iv Interval) Len() float64 {
	return iv.End - iv.Start
}

// WrapAt carries the modulus for circular arithmetic (24 for LST); a nil
// value (represented here as a pointer) means ordinary, non-wrapping math.
// Callers typically use the package-level helpers LST() / Linear() to build
// one instead of taking the address of a literal.
type WrapAt = *float64

// LST is the canonical wrap modulus for local sidereal time arithmetic.
func LST() WrapAt {
	v := 24.0
	return &v
}

// Linear denotes ordinary (non-wrapping) arithmetic.
func Linear() WrapAt {
	return nil
}

// normalize splits a possibly-wrapped interval [a,b] with a > b into the
// equivalent set of at most two non-wrapped sub-intervals, per SPEC_FULL.md
// §4.1: "any interval [a,b] with a > b is interpreted as [a, wrapAt] ∪
// [0, b]".
func normalize(iv Interval, wrapAt WrapAt) []Interval {
	if wrapAt == nil || iv.Start <= iv.End {
		return []Interval{iv}
	}
	w := *wrapAt
	return []Interval{{iv.Start, w}, {0, iv.End}}
}

// Contains reports whether point lies within interval, respecting wrap.
func Contains(point float64, iv Interval, wrapAt WrapAt) bool {
	if wrapAt != nil {
		point = mod(point, *wrapAt)
	}
	for _, part := range normalize(iv, wrapAt) {
		if point >= part.Start && point <= part.End {
			return true
		}
	}
	return false
}

// Intersection returns the intersection of a and b, or (zero, false) if
// they do not overlap.
func Intersection(a, b Interval, wrapAt WrapAt) (Interval, bool) {
	partsA := normalize(a, wrapAt)
	partsB := normalize(b, wrapAt)

	var best Interval
	found := false
	for _, pa := range partsA {
		for _, pb := range partsB {
			start := max(pa.Start, pb.Start)
			end := min(pa.End, pb.End)
			if start > end {
				continue
			}
			cand := Interval{start, end}
			if !found || cand.Len() > best.Len() {
				best = cand
				found = true
			}
		}
	}
	return best, found
}

// Remove subtracts cutout from base, returning up to two sub-intervals.
// remove(I, I) returns empty; remove(I, ∅-outside-I) returns I unchanged.
func Remove(base, cutout Interval, wrapAt WrapAt) []Interval {
	var out []Interval
	for _, part := range normalize(base, wrapAt) {
		out = append(out, removeLinear(part, normalize(cutout, wrapAt))...)
	}
	return mergeAdjacent(out)
}

func removeLinear(base Interval, cutouts []Interval) []Interval {
	remaining := []Interval{base}
	for _, c := range cutouts {
		var next []Interval
		for _, r := range remaining {
			start := max(r.Start, c.Start)
			end := min(r.End, c.End)
			if start > end {
				// no overlap
				next = append(next, r)
				continue
			}
			if r.Start < start {
				next = append(next, Interval{r.Start, start})
			}
			if end < r.End {
				next = append(next, Interval{end, r.End})
			}
		}
		remaining = next
	}
	return remaining
}

// mergeAdjacent sorts and fuses touching/overlapping intervals so Remove's
// output is in a canonical, minimal form (used by the round-trip property:
// remove(I,J) ∪ (I∩J) == I).
func mergeAdjacent(ivs []Interval) []Interval {
	if len(ivs) == 0 {
		return nil
	}
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].Start < ivs[j].Start })
	out := []Interval{ivs[0]}
	for _, iv := range ivs[1:] {
		last := &out[len(out)-1]
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// Mean returns the midpoint of interval, respecting wrap: the mean of
// [23, 1] mod 24 is 0, not 12.
func Mean(iv Interval, wrapAt WrapAt) float64 {
	if wrapAt == nil || iv.Start <= iv.End {
		return (iv.Start + iv.End) / 2
	}
	w := *wrapAt
	wrappedLen := iv.End - iv.Start + w
	return mod(iv.Start+wrappedLen/2, w)
}

// Length returns the total wrapped length of an interval.
func Length(iv Interval, wrapAt WrapAt) float64 {
	total := 0.0
	for _, part := range normalize(iv, wrapAt) {
		total += part.Len()
	}
	return total
}

func mod(x, m float64) float64 {
	r := x - m*float64(int(x/m))
	if r < 0 {
		r += m
	}
	return r
}
