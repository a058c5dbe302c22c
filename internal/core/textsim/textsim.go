// Package textsim provides the string-similarity primitives shared by the
// duplicate detector and the conflict tiers. Everything in here is pure and
// deterministic.
package textsim

import (
	"strings"
	"unicode"
)

// Similarity returns the normalized edit-distance similarity of two
// strings: (maxLen - levenshtein(a, b)) / maxLen, in [0, 1]. Two empty
// strings are identical, so the result is 1.0. Symmetric by construction.
func Similarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)

	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1.0
	}

	return float64(maxLen-levenshtein(ra, rb)) / float64(maxLen)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
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

// TrigramSimilarity scores two labels by padded-trigram overlap, the way
// fuzzy text operators in relational stores do. The intersection is
// normalized by the smaller trigram set, so a label that extends another
// ("Acme Corp" vs "Acme Corporation") still scores high. Identical labels
// score 1.0; a label with no trigrams in common with the other scores 0.
func TrigramSimilarity(a, b string) float64 {
	ta := trigrams(a)
	tb := trigrams(b)

	if len(ta) == 0 && len(tb) == 0 {
		return 1.0
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}

	shared := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			shared++
		}
	}

	smaller := len(ta)
	if len(tb) < smaller {
		smaller = len(tb)
	}

	return float64(shared) / float64(smaller)
}

// trigrams lowercases, splits on non-alphanumerics and pads each word with
// two leading and one trailing space before slicing, mirroring pg_trgm.
func trigrams(s string) map[string]struct{} {
	set := make(map[string]struct{})

	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, w := range words {
		padded := "  " + w + " "
		runes := []rune(padded)
		for i := 0; i+3 <= len(runes); i++ {
			set[string(runes[i:i+3])] = struct{}{}
		}
	}

	return set
}

// ContainsNumber reports whether the text carries at least one numeric
// token. Used by the conflict classifier: numeric disagreements need
// semantic judgment, not recency rules.
func ContainsNumber(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
