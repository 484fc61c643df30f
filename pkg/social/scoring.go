package social

import (
	"math"
	"regexp"
	"strings"

	"github.com/codeGROOVE-dev/sleuth/pkg/contact"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
)

// Identity score weights.
const (
	anchorScore       = 100
	nameWeight        = 45
	keywordPoints     = 15
	keywordCap        = 30
	locationPoints    = 15
	professionalBonus = 10
	minAnchorDigits   = 6
)

var professionalTerm = regexp.MustCompile(`\b(?:engineer|developer|ceo|founder|co-founder|manager|director|analyst|designer)\b`)

// IdentityScore rates from 0 to 100 how likely hit is to describe t. A known
// email or phone number found in the hit short-circuits to 100.
func IdentityScore(h profile.Hit, t Target) int {
	text := strings.ToLower(h.Title + " " + h.Text)
	combined := text + " " + strings.ToLower(h.URL)

	if hasAnchor(combined, t) {
		return anchorScore
	}

	score := int(math.Round(scoreName(t.Name, text) * nameWeight))
	score += min(scoreKeywords(t.Keywords, text), keywordCap)
	if matchesLocation(t.Location, text) {
		score += locationPoints
	}
	if professionalTerm.MatchString(text) {
		score += professionalBonus
	}
	return min(score, anchorScore)
}

func hasAnchor(combined string, t Target) bool {
	for _, e := range t.Emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" && strings.Contains(combined, e) {
			return true
		}
	}
	var found []string
	for _, p := range t.Phones {
		d := contact.NormalizePhone(p)
		if len(d) < minAnchorDigits {
			continue
		}
		if strings.Contains(combined, d) {
			return true
		}
		if found == nil {
			for _, f := range contact.Extract(combined).Phones {
				found = append(found, contact.NormalizePhone(f))
			}
		}
		for _, f := range found {
			if strings.HasSuffix(f, d) || strings.HasSuffix(d, f) {
				return true
			}
		}
	}
	return false
}

// scoreName returns the fraction of the name's significant parts that
// appear in text.
func scoreName(name, text string) float64 {
	var parts []string
	for _, p := range strings.Fields(strings.ToLower(name)) {
		if len([]rune(p)) > 1 {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return 0
	}
	matched := 0
	for _, p := range parts {
		if strings.Contains(text, p) {
			matched++
		}
	}
	return float64(matched) / float64(len(parts))
}

func scoreKeywords(keywords []string, text string) int {
	score := 0
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if len(k) > 1 && strings.Contains(text, k) {
			score += keywordPoints
		}
	}
	return score
}

// matchesLocation accepts the full location or any comma-separated part of
// it ("Austin, Texas" matches "based in Austin").
func matchesLocation(location, text string) bool {
	location = strings.ToLower(strings.TrimSpace(location))
	if location == "" {
		return false
	}
	if strings.Contains(text, location) {
		return true
	}
	for _, part := range strings.Split(location, ",") {
		if part = strings.TrimSpace(part); len(part) > 2 && strings.Contains(text, part) {
			return true
		}
	}
	return false
}
