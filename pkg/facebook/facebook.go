// Package facebook recognizes Facebook profile and page URLs in search results.
package facebook

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/codeGROOVE-dev/sleuth/pkg/htmlutil"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
)

const (
	platform = "Facebook"
	priority = 5
)

// platformInfo implements profile.Platform for Facebook.
type platformInfo struct{}

func (platformInfo) Name() string               { return platform }
func (platformInfo) Priority() int              { return priority }
func (platformInfo) Match(url string) bool      { return Match(url) }
func (platformInfo) IsProfile(url string) bool  { return IsProfile(url) }
func (platformInfo) Username(url string) string { return Username(url) }

func (platformInfo) CanonicalURL(url string) string { return CanonicalURL(url) }

func init() { profile.Register(platformInfo{}) }

var (
	profilePattern   = regexp.MustCompile(`(?i)^https?://(?:www\.|m\.|[a-z]{2}-[a-z]{2}\.)?facebook\.com/([a-z0-9.]{2,})/?(?:\?.*)?$`)
	numericIDPattern = regexp.MustCompile(`(?i)^https?://(?:www\.|m\.)?facebook\.com/profile\.php\?id=\d+`)
)

var reserved = map[string]bool{
	"sharer": true, "share": true, "dialog": true, "login": true,
	"help": true, "policies": true, "events": true, "groups": true,
	"pages": true, "watch": true, "marketplace": true, "gaming": true,
	"business": true, "ads": true, "privacy": true, "legal": true,
	"about": true, "settings": true, "messenger": true, "notes": true,
	"hashtag": true, "public": true, "people": true, "search": true,
	"photo.php": true, "story.php": true, "home.php": true,
}

// Match returns true if the URL is on facebook.com.
func Match(urlStr string) bool {
	return htmlutil.HostMatches(urlStr, "facebook.com")
}

// IsProfile returns true for facebook.com/<name> and profile.php?id= URLs.
func IsProfile(urlStr string) bool {
	urlStr = strings.TrimSpace(urlStr)
	if numericIDPattern.MatchString(urlStr) {
		return true
	}
	m := profilePattern.FindStringSubmatch(urlStr)
	return len(m) > 1 && !reserved[strings.ToLower(m[1])]
}

// Username returns the vanity name, or the numeric id for profile.php URLs.
func Username(urlStr string) string {
	if u, err := url.Parse(htmlutil.CleanURL(urlStr)); err == nil && strings.HasSuffix(u.Path, "profile.php") {
		return u.Query().Get("id")
	}
	segs := htmlutil.PathSegments(urlStr)
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

// CanonicalURL is htmlutil.CanonicalURL except that profile.php URLs keep
// their id, which is the only thing telling two such profiles apart.
func CanonicalURL(urlStr string) string {
	c := htmlutil.CanonicalURL(urlStr)
	if !strings.HasSuffix(c, "/profile.php") {
		return c
	}
	if id := Username(urlStr); id != "" {
		return c + "?id=" + id
	}
	return c
}
