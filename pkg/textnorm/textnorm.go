// Package textnorm canonicalizes free text into comparison keys.
package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize folds s to NFKC, lower-cases it, and collapses whitespace runs
// to a single space. The result is used as the comparison key for ranking
// and deduplication.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(norm.NFKC.String(s))
	return strings.Join(strings.Fields(s), " ")
}

// Words returns the whitespace-separated fields of the normalized text.
func Words(s string) []string {
	return strings.Fields(Normalize(s))
}

// Significant returns the normalized words longer than minLen runes.
func Significant(s string, minLen int) []string {
	var out []string
	for _, w := range Words(s) {
		if len([]rune(w)) > minLen {
			out = append(out, w)
		}
	}
	return out
}

// FirstWords returns the first n words of s joined by a single space.
func FirstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
