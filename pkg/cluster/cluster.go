// Package cluster merges raw candidate identities from local stores, web
// hits and enrichment into a de-duplicated persona list.
package cluster

import (
	"github.com/codeGROOVE-dev/sleuth/pkg/contact"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
	"github.com/codeGROOVE-dev/sleuth/pkg/textnorm"
)

// Key returns the dedup key of a candidate: normalized name and URL joined
// by "||", or the normalized name alone when there is no URL.
func Key(c profile.Candidate) string {
	name := textnorm.Normalize(c.Name)
	if u := textnorm.Normalize(c.URL); u != "" {
		return name + "||" + u
	}
	return name
}

// Cluster de-duplicates cands by Key. The first candidate for a key wins
// unless it came from the internet and a later one is local, in which case
// the local one takes its place. Local candidates are returned before
// internet candidates; each group keeps its original relative order.
func Cluster(cands []profile.Candidate) []profile.Candidate {
	index := make(map[string]int, len(cands))
	merged := make([]profile.Candidate, 0, len(cands))
	for _, c := range cands {
		k := Key(c)
		i, ok := index[k]
		if !ok {
			index[k] = len(merged)
			merged = append(merged, c)
			continue
		}
		if merged[i].Source == profile.SourceExternal && c.Source == profile.SourceLocal {
			merged[i] = c
		}
	}

	out := make([]profile.Candidate, 0, len(merged))
	for _, c := range merged {
		if c.Source == profile.SourceLocal {
			out = append(out, c)
		}
	}
	for _, c := range merged {
		if c.Source != profile.SourceLocal {
			out = append(out, c)
		}
	}
	return out
}

// DirectResolve returns the single local candidate when the query was a
// phone number and exactly one local candidate matched.
func DirectResolve(inputType contact.InputType, cands []profile.Candidate) (profile.Candidate, bool) {
	if inputType != contact.Phone {
		return profile.Candidate{}, false
	}
	var found []profile.Candidate
	for _, c := range cands {
		if c.Source == profile.SourceLocal {
			found = append(found, c)
		}
	}
	if len(found) != 1 {
		return profile.Candidate{}, false
	}
	return found[0], true
}
