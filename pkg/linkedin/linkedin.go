// Package linkedin recognizes LinkedIn profile URLs in search results and
// parses the headline and employer out of LinkedIn result titles.
package linkedin

import (
	"regexp"
	"strings"

	"github.com/codeGROOVE-dev/sleuth/pkg/htmlutil"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
)

const (
	platform = "LinkedIn"
	priority = 1
)

// platformInfo implements profile.Platform for LinkedIn.
type platformInfo struct{}

func (platformInfo) Name() string               { return platform }
func (platformInfo) Priority() int              { return priority }
func (platformInfo) Match(url string) bool      { return Match(url) }
func (platformInfo) IsProfile(url string) bool  { return IsProfile(url) }
func (platformInfo) Username(url string) string { return Username(url) }

func (platformInfo) Annotate(a *profile.SocialAccount, title, _ string) { annotate(a, title) }

func init() { profile.Register(platformInfo{}) }

// profilePattern accepts /in/<handle> on linkedin.com, optionally under a
// two or three letter regional subdomain (in.linkedin.com, uk.linkedin.com).
var profilePattern = regexp.MustCompile(`(?i)^https?://(?:www\.|[a-z]{2,3}\.)?linkedin\.com/in/[a-z0-9_%\-]+/?(?:\?.*)?$`)

// Match returns true if the URL is on linkedin.com.
func Match(urlStr string) bool {
	return htmlutil.HostMatches(urlStr, "linkedin.com")
}

// IsProfile returns true for member profile roots only.
func IsProfile(urlStr string) bool {
	return profilePattern.MatchString(strings.TrimSpace(urlStr))
}

// Username returns the member handle from /in/<handle> or /pub/<handle>.
func Username(urlStr string) string {
	segs := htmlutil.PathSegments(urlStr)
	for i, s := range segs {
		if (s == "in" || s == "pub") && i+1 < len(segs) {
			return segs[i+1]
		}
	}
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

// annotate fills headline and company from titles shaped like
// "Name - Headline - Company | LinkedIn" or "Name - Role at Company | LinkedIn".
func annotate(a *profile.SocialAccount, title string) {
	if i := strings.LastIndex(strings.ToLower(title), "| linkedin"); i >= 0 {
		title = title[:i]
	}
	var parts []string
	for _, p := range strings.Split(title, " - ") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 1 {
		a.Headline = parts[1]
	}
	if len(parts) > 2 {
		a.Company = parts[2]
	}
	if role, org, ok := strings.Cut(a.Headline, " at "); ok && a.Company == "" {
		a.Headline = strings.TrimSpace(role)
		a.Company = strings.TrimSpace(org)
	}
}
