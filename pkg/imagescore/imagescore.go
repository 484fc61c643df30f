// Package imagescore ranks image search results by how likely they are to
// show the target person.
package imagescore

import (
	"slices"
	"strings"

	"github.com/codeGROOVE-dev/sleuth/pkg/htmlutil"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
)

// Selection thresholds.
const (
	MinScore      = 10
	FallbackCount = 5
)

const (
	nameWeight    = 50
	keywordBonus  = 25
	bannerPenalty = -60
	tallPenalty   = -40
	portraitBonus = 25
	junkPenalty   = -50
)

// trust awards a bonus to images hosted on, or linked from, these sites.
var trust = []struct {
	domains []string
	bonus   int
}{
	{[]string{"linkedin.com", "licdn.com"}, 30},
	{[]string{"crunchbase.com", "forbes.com", "bloomberg.com"}, 20},
	{[]string{"twitter.com", "x.com", "twimg.com", "facebook.com", "fbcdn.net"}, 15},
}

// junk marks logos, banners, group shots and stock art.
var junk = []string{
	"logo", "banner", "avatar", "placeholder", "screenshot", "conference",
	"class of", "icon", "vector", "clipart", "stock", "group photo", "team photo",
}

// Score rates one image hit for targetName. The score can be negative.
func Score(img profile.ImageHit, targetName string, keywords []string) int {
	title := strings.ToLower(img.Title)
	link := strings.ToLower(img.SourceURL)
	hay := title + " " + link

	score := 0
	var parts []string
	for _, p := range strings.Fields(strings.ToLower(targetName)) {
		if len([]rune(p)) > 2 {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		matched := 0
		for _, p := range parts {
			if strings.Contains(hay, p) {
				matched++
			}
		}
		score += matched * nameWeight / len(parts)
	}

	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" && strings.Contains(hay, k) {
			score += keywordBonus
			break
		}
	}

	score += trustBonus(img)
	score += aspectAdjustment(img.Width, img.Height)

	everything := hay + " " + strings.ToLower(img.ImageURL)
	for _, j := range junk {
		if strings.Contains(everything, j) {
			score += junkPenalty
			break
		}
	}
	return score
}

func trustBonus(img profile.ImageHit) int {
	for _, t := range trust {
		if htmlutil.HostMatches(img.SourceURL, t.domains...) ||
			htmlutil.HostMatches(img.ImageURL, t.domains...) ||
			htmlutil.HostMatches(img.Domain, t.domains...) {
			return t.bonus
		}
	}
	return 0
}

func aspectAdjustment(width, height int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	ratio := float64(width) / float64(height)
	switch {
	case ratio > 1.4:
		return bannerPenalty
	case ratio < 0.5:
		return tallPenalty
	case ratio >= 0.7 && ratio <= 1.2:
		return portraitBonus
	}
	return 0
}

// Select scores imgs, keeps those scoring at least MinScore, and sorts them
// by descending score. If nothing survives, the first FallbackCount inputs
// are returned unscored.
func Select(imgs []profile.ImageHit, targetName string, keywords []string) []profile.ImageCandidate {
	var out []profile.ImageCandidate
	for _, img := range imgs {
		if img.ImageURL == "" {
			continue
		}
		if s := Score(img, targetName, keywords); s >= MinScore {
			out = append(out, candidate(img, s))
		}
	}
	if len(out) == 0 {
		for _, img := range imgs[:min(len(imgs), FallbackCount)] {
			out = append(out, candidate(img, 0))
		}
		return out
	}
	slices.SortStableFunc(out, func(a, b profile.ImageCandidate) int { return b.Score - a.Score })
	return out
}

func candidate(img profile.ImageHit, score int) profile.ImageCandidate {
	return profile.ImageCandidate{
		ImageURL:     img.ImageURL,
		ThumbnailURL: img.ThumbnailURL,
		Title:        img.Title,
		SourceURL:    img.SourceURL,
		Score:        score,
	}
}
