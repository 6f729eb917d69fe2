package libgql

import (
	"math"
)

// Combinations calls onCombo with every k-subset of items, each in input order, lexicographic by index.
// k == 0 emits one empty subset.  The slice passed to onCombo is reused; copy it to retain it.
// Returns false if onCombo stopped the enumeration by returning false.
func Combinations[T any](items []T, k int, onCombo func(combo []T) bool) bool {
	if k < 0 || k > len(items) {
		return true
	}
	combo := make([]T, 0, k)

	var choose func(start int) bool
	choose = func(start int) bool {
		if len(combo) == k {
			return onCombo(combo)
		}

		// leave enough items to complete the subset
		last := len(items) - (k - len(combo))
		for i := start; i <= last; i++ {
			combo = append(combo, items[i])
			if !choose(i + 1) {
				return false
			}
			combo = combo[:len(combo)-1]
		}
		return true
	}

	return choose(0)
}

// AllCombinations calls Combinations for k = 1..len(items), emitting every non-empty subset exactly once.
func AllCombinations[T any](items []T, onCombo func(combo []T) bool) bool {
	for k := 1; k <= len(items); k++ {
		if !Combinations(items, k, onCombo) {
			return false
		}
	}
	return true
}

// CollectCombinations returns copies of every k-subset of items.
func CollectCombinations[T any](items []T, k int) [][]T {
	var combos [][]T
	Combinations(items, k, func(combo []T) bool {
		combos = append(combos, append(combo[:0:0], combo...))
		return true
	})
	return combos
}

// Binomial returns C(m, k), saturating at math.MaxInt64.
func Binomial(m, k int) int64 {
	if k < 0 || k > m {
		return 0
	}
	if k > m-k {
		k = m - k
	}
	c := int64(1)
	for i := 1; i <= k; i++ {
		// c * (m-k+i) / i is exact at each step
		n := int64(m - k + i)
		if c > math.MaxInt64/n {
			return math.MaxInt64
		}
		c = c * n / int64(i)
	}
	return c
}

// CountSubsets returns 2^m - 1, the number of non-empty subsets of m items, saturating at math.MaxInt64.
func CountSubsets(m int) int64 {
	if m <= 0 {
		return 0
	}
	if m >= 63 {
		return math.MaxInt64
	}
	return int64(1)<<m - 1
}
