// Package htmlutil holds small text and URL helpers shared by the search
// providers and the scorers: tag stripping for provider snippets, email
// hygiene, and host matching.
package htmlutil

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// StripTags removes HTML tags and entities and returns plain text.
// Brave wraps query terms in <strong>, Serper sometimes returns &amp;.
func StripTags(htmlContent string) string {
	if htmlContent == "" {
		return ""
	}
	content := tagPattern.ReplaceAllString(htmlContent, "")
	content = html.UnescapeString(content)
	content = multiSpacePattern.ReplaceAllString(content, " ")
	return strings.TrimSpace(content)
}

// SplitTitle splits a result title on '-' and '|' separators and returns
// the trimmed, non-empty segments.
func SplitTitle(title string) []string {
	parts := strings.FieldsFunc(title, func(r rune) bool { return r == '-' || r == '|' })
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
