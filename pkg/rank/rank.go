// Package rank orders merged local and web results by relevance to a query.
package rank

import (
	"slices"
	"strings"

	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
	"github.com/codeGROOVE-dev/sleuth/pkg/textnorm"
)

// Score weights.
const (
	containsBonus = 5
	prefixBonus   = 3
	tierBase      = 4
	tierWeight    = 10
	internetBonus = 5
)

// Score returns the relevance of one item to an already normalized query.
func Score(item profile.Item, normQuery string) int {
	score := 0
	if normQuery != "" {
		text := textnorm.Normalize(item.Text)
		if strings.Contains(text, normQuery) {
			score += containsBonus
		}
		if strings.HasPrefix(text, normQuery) {
			score += prefixBonus
		}
		score += strings.Count(text, normQuery)
	}
	score += (tierBase - item.Priority) * tierWeight
	if item.Source == profile.SourceInternet {
		score += internetBonus
	}
	return score
}

// Rank scores items against query and returns them sorted by descending
// score. Items with equal scores keep their input order. The input slice is
// not modified.
func Rank(items []profile.Item, query string) []profile.Item {
	q := textnorm.Normalize(query)
	out := make([]profile.Item, len(items))
	for i, it := range items {
		it.Score = Score(it, q)
		out[i] = it
	}
	slices.SortStableFunc(out, func(a, b profile.Item) int { return b.Score - a.Score })
	return out
}
