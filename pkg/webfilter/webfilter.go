// Package webfilter decides whether a web search hit plausibly refers to the
// person being searched for. The checks are driven by the rule tables in
// rules.go and run in a fixed short-circuit order.
package webfilter

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/codeGROOVE-dev/sleuth/pkg/htmlutil"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
	"github.com/codeGROOVE-dev/sleuth/pkg/textnorm"
)

// Mode selects how aggressively hits are filtered.
type Mode string

// Filter modes. Simple mode labels providers, checks that the name is
// present and drops directory listings. Strict mode also applies the name
// boundary, article and noise checks.
const (
	Simple Mode = "simple"
	Strict Mode = "strict"
)

// Reason explains why a hit was rejected.
type Reason string

// Rejection reasons.
const (
	Kept         Reason = ""
	NameMissing  Reason = "name missing"
	NameBoundary Reason = "name embedded in longer phrase"
	Directory    Reason = "directory page"
	ArticleLike  Reason = "article or listicle"
	NoiseLike    Reason = "event or photo credit"
)

const (
	untitled      = "Untitled Result"
	noDescription = "No description available"
)

// Provider returns the platform label for a result link.
func Provider(link string) string {
	for _, p := range providers {
		if htmlutil.HostMatches(link, p.domains...) {
			return p.label
		}
	}
	return defaultProvider
}

// Evaluate runs the active checks for mode and returns the labeled hit and
// whether it should be kept.
func Evaluate(hit profile.Hit, targetName string, mode Mode) (profile.Hit, bool) {
	out, reason := Check(hit, targetName, mode)
	return out, reason == Kept
}

// Check is Evaluate with the rejection reason.
func Check(hit profile.Hit, targetName string, mode Mode) (profile.Hit, Reason) {
	hit.Provider = Provider(hit.URL)
	title := strings.ToLower(hit.Title)
	snippet := strings.ToLower(hit.Text)
	link := strings.ToLower(hit.URL)
	name := cleanName(targetName)

	if !namePresent(name, title, snippet) {
		return hit, NameMissing
	}
	if isDirectory(title, link, snippet) {
		return hit, Directory
	}
	if mode == Strict {
		if hit.Provider == defaultProvider && !nameBounded(name, textnorm.Normalize(hit.Title)) {
			return hit, NameBoundary
		}
		if containsAny(title+" "+snippet, articlePhrases) {
			return hit, ArticleLike
		}
		if containsAny(title+" "+snippet, noisePhrases) {
			return hit, NoiseLike
		}
	}

	if hit.Title == "" {
		hit.Title = untitled
	}
	if hit.Text == "" {
		hit.Text = noDescription
	}
	hit.Source = profile.SourceInternet
	hit.Type = profile.TypeAux
	hit.Priority = profile.PriorityExternal
	return hit, Kept
}

// Apply returns the hits that pass Evaluate, in input order.
func Apply(hits []profile.Hit, targetName string, mode Mode) []profile.Hit {
	out := make([]profile.Hit, 0, len(hits))
	for _, h := range hits {
		if kept, ok := Evaluate(h, targetName, mode); ok {
			out = append(out, kept)
		}
	}
	return out
}

// cleanName lower-cases the target name, drops quotes and collapses spaces.
func cleanName(s string) string {
	return textnorm.Normalize(strings.NewReplacer(`"`, "", "'", "").Replace(s))
}

func namePresent(name, title, snippet string) bool {
	var first string
	for _, p := range strings.Fields(name) {
		if len([]rune(p)) > 1 {
			first = p
			break
		}
	}
	if first == "" {
		return true
	}
	return strings.Contains(title, first) || strings.Contains(snippet, first)
}

// nameBounded reports whether the first occurrence of name in title is
// flanked by separators, whitelisted words, numbers or the title edge.
// A title that does not contain the full name passes.
func nameBounded(name, title string) bool {
	if name == "" {
		return true
	}
	idx := strings.Index(title, name)
	if idx < 0 {
		return true
	}
	before := strings.TrimSpace(title[:idx])
	after := strings.TrimSpace(title[idx+len(name):])

	if before != "" && !boundaryOK(lastWord(before), before, allowedPrefixes, suffixEdge) {
		return false
	}
	if after != "" && !boundaryOK(firstWord(after), after, allowedSuffixes, prefixEdge) {
		return false
	}
	return true
}

type edge int

const (
	suffixEdge edge = iota // text ends where the name starts
	prefixEdge             // text starts where the name ends
)

func boundaryOK(word, text string, allowed map[string]bool, e edge) bool {
	for _, sep := range separators {
		if e == suffixEdge && strings.HasSuffix(text, sep) {
			return true
		}
		if e == prefixEdge && strings.HasPrefix(text, sep) {
			return true
		}
	}
	if joinWords[word] {
		return true
	}
	if isNumeric(word) {
		return true
	}
	if e == prefixEdge && len([]rune(word)) <= 1 {
		return true
	}
	return allowed[word]
}

func lastWord(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[len(f)-1]
}

func firstWord(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

func isNumeric(s string) bool {
	s = strings.TrimRight(s, "+")
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isDirectory(title, link, snippet string) bool {
	if directoryTitlePattern.MatchString(title) {
		return true
	}
	return containsSubstr(title, directoryTitles) ||
		containsSubstr(link, directoryLinks) ||
		containsSubstr(snippet, directorySnippets)
}

func containsSubstr(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// wordPatterns caches whole-word matchers for single-word phrases.
var wordPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp)
	for _, list := range [][]string{articlePhrases, noisePhrases} {
		for _, p := range list {
			if isSingleWord(p) {
				m[p] = regexp.MustCompile(`\b` + regexp.QuoteMeta(p) + `\b`)
			}
		}
	}
	return m
}()

func isSingleWord(p string) bool {
	for _, r := range p {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if re, ok := wordPatterns[p]; ok {
			if re.MatchString(s) {
				return true
			}
			continue
		}
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
