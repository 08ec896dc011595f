// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package arrangement

import "sort"

// groupByDither partitions indices into valid (by position in the input
// slice) by their dither position, sorts the groups by descending size
// (ties broken by ascending dither string, for a deterministic but
// otherwise arbitrary "first group"), and pads every group with -1
// placeholders up to the longest group's length so every group has the
// same length for the later column-wise zip (§4.3.3: "grouped by dither
// position").
func groupByDither(dithers []string) [][]int {
	byDither := map[string][]int{}
	for i, d := range dithers {
		byDither[d] = append(byDither[d], i)
	}

	keys := make([]string, 0, len(byDither))
	for k := range byDither {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([][]int, len(keys))
	for i, k := range keys {
		groups[i] = byDither[k]
	}
	sort.SliceStable(groups, func(i, j int) bool { return len(groups[i]) > len(groups[j]) })

	maxLen := 0
	for _, g := range groups {
		if len(g) > maxLen {
			maxLen = len(g)
		}
	}
	for i, g := range groups {
		padded := make([]int, maxLen)
		copy(padded, g)
		for j := len(g); j < maxLen; j++ {
			padded[j] = -1
		}
		groups[i] = padded
	}
	return groups
}

// factorial returns n! for small non-negative n.
func factorial(n int) int {
	if n <= 1 {
		return 1
	}
	return n * factorial(n-1)
}

// permutationCount estimates the number of arrangements groupByDither's
// output will produce: the largest group's factorial, raised to the power
// of one less than the number of distinct dither groups (§4.3.3: "m!^(k-1)
// where m is the most populous dither group and k is the number of
// distinct dither positions present").
func permutationCount(maxGroupLen, numGroups int) int {
	if numGroups == 0 {
		return 0
	}
	count := 1
	for i := 0; i < numGroups-1; i++ {
		count *= factorial(maxGroupLen)
	}
	return count
}

// permsOf returns every permutation of s (including placeholder -1
// entries, which permute like any other element since their identity
// doesn't matter post-zip).
func permsOf(s []int) [][]int {
	if len(s) <= 1 {
		out := make([]int, len(s))
		copy(out, s)
		return [][]int{out}
	}
	var out [][]int
	for i := range s {
		rest := make([]int, 0, len(s)-1)
		rest = append(rest, s[:i]...)
		rest = append(rest, s[i+1:]...)
		for _, p := range permsOf(rest) {
			row := make([]int, 0, len(s))
			row = append(row, s[i])
			row = append(row, p...)
			out = append(out, row)
		}
	}
	return out
}

// enumerateArrangements calls visit once per candidate arrangement: a
// slice of "rows", one per eventual set, each row holding one index (or
// -1 for no exposure at that dither slot) from every dither group. The
// first group's order is held fixed — only its siblings are permuted —
// since cycling the first group against itself would just relabel the
// same set of arrangements (§4.3.3, grounded on the source's
// calculatePermutations).
func enumerateArrangements(groups [][]int, visit func(rows [][]int)) {
	if len(groups) == 0 {
		return
	}
	rowCount := len(groups[0])
	first := groups[0]
	rest := groups[1:]

	permLists := make([][][]int, len(rest))
	total := 1
	for i, g := range rest {
		permLists[i] = permsOf(g)
		total *= len(permLists[i])
	}

	for c := 0; c < total; c++ {
		rem := c
		chosen := make([][]int, len(permLists))
		for i, pl := range permLists {
			choice := rem % len(pl)
			rem /= len(pl)
			chosen[i] = pl[choice]
		}

		rows := make([][]int, rowCount)
		for k := 0; k < rowCount; k++ {
			row := make([]int, 0, len(groups))
			row = append(row, first[k])
			for _, ch := range chosen {
				row = append(row, ch[k])
			}
			rows[k] = row
		}
		visit(rows)
	}
}
