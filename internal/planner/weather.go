// SPDX-FileCopyrightText: 2025 SDSS-V/MaNGA Scheduler Contributors
// SPDX-License-Identifier: Apache-2.0

package planner

import "math/rand"

// goodWeatherIndices returns a boolean mask of length n: true at exactly
// floor(n*fraction) positions, chosen uniformly without replacement by a
// seeded RNG (SPEC_FULL.md §4.6). Grounded on the reference planner's
// getGoodWeatherIndices (np.random.seed(seed); np.random.choice(..,
// replace=False)); math/rand's Perm gives the same without-replacement
// sampling shape with a single seeded source.
func goodWeatherIndices(n int, fraction float64, seed int64) []bool {
	mask := make([]bool, n)
	if n == 0 {
		return mask
	}

	nGood := int(float64(n) * fraction)
	if nGood <= 0 {
		return mask
	}
	if nGood > n {
		nGood = n
	}

	rng := rand.New(rand.NewSource(seed))
	for _, idx := range rng.Perm(n)[:nGood] {
		mask[idx] = true
	}
	return mask
}
