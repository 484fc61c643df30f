// Package github recognizes GitHub user profile URLs in search results.
package github

import (
	"regexp"
	"strings"

	"github.com/codeGROOVE-dev/sleuth/pkg/htmlutil"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
)

const (
	platform = "GitHub"
	priority = 2
)

// platformInfo implements profile.Platform for GitHub.
type platformInfo struct{}

func (platformInfo) Name() string               { return platform }
func (platformInfo) Priority() int              { return priority }
func (platformInfo) Match(url string) bool      { return Match(url) }
func (platformInfo) IsProfile(url string) bool  { return IsProfile(url) }
func (platformInfo) Username(url string) string { return Username(url) }

func init() { profile.Register(platformInfo{}) }

var profilePattern = regexp.MustCompile(`(?i)^https?://(?:www\.)?github\.com/([a-z0-9](?:[a-z0-9-]{0,38}))/?(?:\?.*)?$`)

// reserved are top-level GitHub paths that are not user accounts.
var reserved = map[string]bool{
	"about": true, "features": true, "pricing": true, "enterprise": true,
	"topics": true, "trending": true, "explore": true, "marketplace": true,
	"login": true, "join": true, "settings": true, "notifications": true,
	"sponsors": true, "search": true, "collections": true, "events": true,
	"security": true, "readme": true, "site": true, "contact": true,
	"team": true, "orgs": true, "apps": true, "codespaces": true,
}

// Match returns true if the URL is on github.com.
func Match(urlStr string) bool {
	return htmlutil.HostMatches(urlStr, "github.com")
}

// IsProfile returns true for github.com/<user> roots.
func IsProfile(urlStr string) bool {
	m := profilePattern.FindStringSubmatch(strings.TrimSpace(urlStr))
	return len(m) > 1 && !reserved[strings.ToLower(m[1])]
}

// Username returns the account name from a profile URL.
func Username(urlStr string) string {
	segs := htmlutil.PathSegments(urlStr)
	if len(segs) == 0 {
		return ""
	}
	return segs[0]
}
