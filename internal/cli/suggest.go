// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// suggest.go - Typo correction for tool names and config keys.
package cli

import (
	"strings"
)

// SuggestClosest returns the candidate closest to input if it is within
// an edit-distance threshold, or empty string when nothing is close.
func SuggestClosest(input string, candidates []string) string {
	input = strings.ToLower(input)

	// Don't suggest for very short inputs (likely intentional)
	if len(input) < 2 {
		return ""
	}

	// Threshold scales with input length: short names tolerate one edit,
	// longer ones up to three
	maxDistance := 1
	if len(input) >= 4 {
		maxDistance = 2
	}
	if len(input) > 8 {
		maxDistance = 3
	}

	bestMatch := ""
	bestDistance := -1

	for _, candidate := range candidates {
		distance := levenshteinDistance(input, strings.ToLower(candidate))
		if distance == 0 {
			return ""
		}
		if distance <= maxDistance && (bestDistance == -1 || distance < bestDistance) {
			bestDistance = distance
			bestMatch = candidate
		}
	}

	return bestMatch
}

// levenshteinDistance calculates the edit distance between two strings.
// This is the minimum number of single-character edits (insertions, deletions,
// or substitutions) required to change one string into the other.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	cols := len(s2) + 1

	// Use two rows instead of the full matrix
	prev := make([]int, cols)
	curr := make([]int, cols)

	for j := 0; j < cols; j++ {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i

		for j := 1; j < cols; j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}

			// Minimum of: delete, insert, substitute
			curr[j] = min3(
				prev[j]+1,
				curr[j-1]+1,
				prev[j-1]+cost,
			)
		}

		prev, curr = curr, prev
	}

	return prev[cols-1]
}

// min3 returns the minimum of three integers.
func min3(a, b, c int) int {
	if a <= b && a <= c {
		return a
	}
	if b <= c {
		return b
	}
	return c
}
