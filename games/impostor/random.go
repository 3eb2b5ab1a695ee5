/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	"math/rand/v2"
	"slices"
)

// Source supplies uniform integers in [0, n). *rand.Rand satisfies it, so
// tests can pass a seeded generator.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n)
}

// DefaultSource draws from the shared math/rand/v2 generator.
var DefaultSource Source = globalSource{}

// SampleDistinct draws k distinct indices from [0, n) by reject-and-retry.
// The result is sorted.
//
// Retrying is fine for at most MaxPlayers indices; a partial Fisher-Yates
// shuffle would be needed to bound the draws for larger domains.
func SampleDistinct(src Source, n, k int) []int {
	k = max(0, min(k, n))

	seen := make(map[int]bool, k)
	out := make([]int, 0, k)

	for len(out) < k {
		i := src.IntN(n)
		if seen[i] {
			continue
		}

		seen[i] = true
		out = append(out, i)
	}

	slices.Sort(out)

	return out
}
