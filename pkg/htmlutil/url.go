package htmlutil

import (
	"net/url"
	"strings"
)

// Host returns the lower-cased host of rawURL without a leading "www.".
// Returns "" if the URL cannot be parsed.
func Host(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// HostMatches reports whether the host of rawURL equals one of domains or
// is a subdomain of one.
func HostMatches(rawURL string, domains ...string) bool {
	h := Host(rawURL)
	if h == "" {
		return false
	}
	for _, d := range domains {
		if h == d || strings.HasSuffix(h, "."+d) {
			return true
		}
	}
	return false
}

// CanonicalURL strips the query string, fragment and trailing slash and
// lower-cases the scheme and host. Used as a dedup key for profile URLs.
func CanonicalURL(rawURL string) string {
	s := CleanURL(rawURL)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		u.Scheme = strings.ToLower(u.Scheme)
		u.Host = strings.ToLower(u.Host)
		return u.String()
	}
	return s
}

// PathSegments returns the non-empty path segments of rawURL.
func PathSegments(rawURL string) []string {
	u, err := url.Parse(CleanURL(rawURL))
	if err != nil {
		return nil
	}
	var segs []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// CleanURL removes surrounding whitespace and trailing quote, bracket and
// backslash characters picked up from snippets.
func CleanURL(s string) string {
	s = strings.TrimSpace(s)
	for s != "" {
		last := s[len(s)-1]
		if last != '"' && last != '\'' && last != '>' && last != ')' && last != ']' && last != '\\' {
			break
		}
		s = s[:len(s)-1]
	}
	return strings.TrimSpace(s)
}
