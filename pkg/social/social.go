// Package social finds the target's social media profiles among web search
// hits and scores how likely each one is to belong to the target.
package social

import (
	"slices"
	"strings"

	"github.com/codeGROOVE-dev/sleuth/pkg/htmlutil"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"

	// Platform packages register themselves via init().
	_ "github.com/codeGROOVE-dev/sleuth/pkg/facebook"
	_ "github.com/codeGROOVE-dev/sleuth/pkg/github"
	_ "github.com/codeGROOVE-dev/sleuth/pkg/instagram"
	_ "github.com/codeGROOVE-dev/sleuth/pkg/linkedin"
	_ "github.com/codeGROOVE-dev/sleuth/pkg/twitter"
)

// Score thresholds.
const (
	MinScore         = 30
	HighConfidence   = 65
	MediumConfidence = 45
)

// disqualifiers mark posts, photos, search pages and other non-profile
// pages. Matched against the lower-cased title, snippet and link.
var disqualifiers = []string{
	"posted", "shared", "mentioned", "tagged", "commented", "liked",
	"reposted", "retweeted", "photo by", "video by", "post by", "see photos",
	"view profile of people named", "search results",
	"/p/", "/posts/", "/status/", "/photos/", "/videos/", "/reel/",
	"/stories/", "/groups/", "/marketplace/", "/watch/", "/search/",
	"?ref=", "/events/",
}

// Target describes the person whose accounts are being looked for.
type Target struct {
	Name     string
	Location string
	Keywords []string
	Emails   []string
	Phones   []string
}

// Extract returns the social accounts among hits that belong to a
// registered platform, have a profile-shaped URL, are not disqualified, and
// score at least MinScore. Accounts are de-duplicated by canonical URL and
// sorted by descending score, then platform priority.
func Extract(hits []profile.Hit, t Target) []profile.SocialAccount {
	seen := make(map[string]bool)
	var accounts []profile.SocialAccount

	for _, h := range hits {
		p := profile.MatchURL(h.URL)
		if p == nil || !p.IsProfile(h.URL) || disqualified(h) {
			continue
		}
		score := IdentityScore(h, t)
		if score < MinScore {
			continue
		}
		canonical := CanonicalURL(h.URL)
		if seen[canonical] {
			continue
		}
		seen[canonical] = true

		acct := profile.SocialAccount{
			Platform:      p.Name(),
			Username:      p.Username(htmlutil.CleanURL(h.URL)),
			URL:           canonical,
			Title:         h.Title,
			IdentityScore: score,
			Confidence:    Confidence(score),
			Priority:      p.Priority(),
		}
		if a, ok := p.(profile.Annotator); ok {
			a.Annotate(&acct, h.Title, h.Text)
		}
		accounts = append(accounts, acct)
	}

	slices.SortStableFunc(accounts, func(a, b profile.SocialAccount) int {
		if a.IdentityScore != b.IdentityScore {
			return b.IdentityScore - a.IdentityScore
		}
		return a.Priority - b.Priority
	})
	return accounts
}

// CanonicalURL returns the dedup key of a profile link, deferring to the
// platform when it has its own canonical form.
func CanonicalURL(link string) string {
	if c, ok := profile.MatchURL(link).(profile.Canonicalizer); ok {
		return c.CanonicalURL(link)
	}
	return htmlutil.CanonicalURL(link)
}

// IsSocialURL reports whether link is a profile URL on a registered platform.
func IsSocialURL(link string) bool {
	p := profile.MatchURL(link)
	return p != nil && p.IsProfile(link)
}

// Confidence maps an identity score to high, medium or low.
func Confidence(score int) string {
	switch {
	case score >= HighConfidence:
		return "high"
	case score >= MediumConfidence:
		return "medium"
	default:
		return "low"
	}
}

func disqualified(h profile.Hit) bool {
	s := strings.ToLower(h.Title + " " + h.Text + " " + h.URL)
	for _, d := range disqualifiers {
		if strings.Contains(s, d) {
			return true
		}
	}
	return false
}
