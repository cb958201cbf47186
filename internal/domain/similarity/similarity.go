// Package similarity computes text similarity ratios between answers.
package similarity

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Normalize trims surrounding whitespace and lower-cases s.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Ratio returns the longest-matching-blocks ratio 2*M/T of a and b, where M
// is the number of runes in matching blocks and T the total rune count.
// Two empty strings are identical and yield 1.0. The order of arguments is
// significant for the junk heuristic on long inputs, so callers keep it
// fixed as (expected, actual).
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

// runes splits s into one element per code point.
func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
