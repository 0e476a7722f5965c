// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package lexical

// =============================================================================
// Levenshtein Distance
// =============================================================================

// typoVariantMinLen is the minimum length of both strings for typo-variant
// detection. Below this, a single edit changes too much of the word to call
// it a typo ("ver" vs "ser" are different words, not misspellings).
const typoVariantMinLen = 3

// Levenshtein computes the classic edit distance between two strings.
//
// # Description
//
// Single-row dynamic programming over runes: O(len(a)·len(b)) time,
// O(min(len(a), len(b))) space. Distance is the minimum number of
// single-rune insertions, deletions, and substitutions to turn a into b.
//
// # Thread Safety
//
// Stateless. Safe for concurrent use.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	// Keep the row as short as possible.
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		prev := row[0] // row[i-1][j-1] before overwrite
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			sub := prev + cost
			ins := row[j-1] + 1
			del := row[j] + 1

			prev = row[j]
			row[j] = min3(sub, ins, del)
		}
	}

	return row[len(rb)]
}

// IsTypoVariant reports whether two words are close enough in edit distance
// to be treated as misspellings of each other.
//
// # Description
//
// Both words must be at least 3 runes long. The tolerated distance scales
// with word length: 1 edit for words up to 5 runes, 2 edits beyond that.
// This mirrors how users actually mistype short Spanish domain words
// ("sucursal" vs "sucrusal") without conflating distinct short words.
func IsTypoVariant(a, b string) bool {
	la := len([]rune(a))
	lb := len([]rune(b))
	if la < typoVariantMinLen || lb < typoVariantMinLen {
		return false
	}

	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	tolerance := 1
	if maxLen > 5 {
		tolerance = 2
	}

	return Levenshtein(a, b) <= tolerance
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
