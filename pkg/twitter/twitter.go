// Package twitter recognizes Twitter and X profile URLs in search results.
package twitter

import (
	"regexp"
	"strings"

	"github.com/codeGROOVE-dev/sleuth/pkg/htmlutil"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
)

const (
	platform = "Twitter/X"
	priority = 3
)

// platformInfo implements profile.Platform for Twitter/X.
type platformInfo struct{}

func (platformInfo) Name() string               { return platform }
func (platformInfo) Priority() int              { return priority }
func (platformInfo) Match(url string) bool      { return Match(url) }
func (platformInfo) IsProfile(url string) bool  { return IsProfile(url) }
func (platformInfo) Username(url string) string { return Username(url) }

func init() { profile.Register(platformInfo{}) }

var profilePattern = regexp.MustCompile(`(?i)^https?://(?:www\.|mobile\.)?(?:twitter|x)\.com/([a-z0-9_]{1,15})/?(?:\?.*)?$`)

var reserved = map[string]bool{
	"home": true, "explore": true, "search": true, "settings": true,
	"i": true, "intent": true, "share": true, "hashtag": true,
	"login": true, "signup": true, "notifications": true, "messages": true,
	"tos": true, "privacy": true,
}

// Match returns true if the URL is on twitter.com or x.com.
func Match(urlStr string) bool {
	return htmlutil.HostMatches(urlStr, "twitter.com", "x.com")
}

// IsProfile returns true for /<handle> roots.
func IsProfile(urlStr string) bool {
	m := profilePattern.FindStringSubmatch(strings.TrimSpace(urlStr))
	return len(m) > 1 && !reserved[strings.ToLower(m[1])]
}

// Username returns the handle without the @ prefix.
func Username(urlStr string) string {
	segs := htmlutil.PathSegments(urlStr)
	if len(segs) == 0 {
		return ""
	}
	return strings.TrimPrefix(segs[len(segs)-1], "@")
}
