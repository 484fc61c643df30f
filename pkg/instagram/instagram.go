// Package instagram recognizes Instagram profile URLs and follower counts
// in search results.
package instagram

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/codeGROOVE-dev/sleuth/pkg/htmlutil"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
)

const (
	platform = "Instagram"
	priority = 4
)

// platformInfo implements profile.Platform for Instagram.
type platformInfo struct{}

func (platformInfo) Name() string               { return platform }
func (platformInfo) Priority() int              { return priority }
func (platformInfo) Match(url string) bool      { return Match(url) }
func (platformInfo) IsProfile(url string) bool  { return IsProfile(url) }
func (platformInfo) Username(url string) string { return Username(url) }

func (platformInfo) Annotate(a *profile.SocialAccount, title, snippet string) {
	if n := Followers(title + " " + snippet); n > 0 {
		a.Followers = n
	}
}

func init() { profile.Register(platformInfo{}) }

var (
	profilePattern   = regexp.MustCompile(`(?i)^https?://(?:www\.)?instagram\.com/([a-z0-9_.]{1,30})/?(?:\?.*)?$`)
	followersPattern = regexp.MustCompile(`(?i)([\d][\d,.]*)\s*([km]?)\s+followers`)
)

var reserved = map[string]bool{
	"p": true, "reel": true, "reels": true, "stories": true,
	"explore": true, "direct": true, "accounts": true, "tv": true,
	"about": true, "legal": true, "privacy": true, "directory": true,
	"terms": true, "api": true, "developer": true,
}

// Match returns true if the URL is on instagram.com.
func Match(urlStr string) bool {
	return htmlutil.HostMatches(urlStr, "instagram.com")
}

// IsProfile returns true for instagram.com/<user> roots.
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
	return segs[len(segs)-1]
}

// Followers parses counts like "1,234 followers" or "1.2M Followers".
// Returns 0 when no count is present.
func Followers(text string) int {
	m := followersPattern.FindStringSubmatch(text)
	if len(m) < 3 {
		return 0
	}
	mult := 1.0
	switch strings.ToLower(m[2]) {
	case "k":
		mult = 1e3
	case "m":
		mult = 1e6
	}
	num := strings.ReplaceAll(m[1], ",", "")
	if mult == 1 {
		num = strings.ReplaceAll(num, ".", "")
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	return int(f * mult)
}
