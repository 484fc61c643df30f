package sleuth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/codeGROOVE-dev/sleuth/pkg/contact"
	"github.com/codeGROOVE-dev/sleuth/pkg/imagescore"
	"github.com/codeGROOVE-dev/sleuth/pkg/localsearch"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
	"github.com/codeGROOVE-dev/sleuth/pkg/social"
	"github.com/codeGROOVE-dev/sleuth/pkg/textnorm"
	"github.com/codeGROOVE-dev/sleuth/pkg/webfilter"
)

// Deep search limits.
const (
	maxImages     = 20
	maxArticles   = 15
	maxProfession = 50
)

const socialSites = "(site:linkedin.com/in/ OR site:github.com OR site:twitter.com OR site:instagram.com OR site:facebook.com)"

// junkDescriptions mark placeholder descriptions and locations that would
// only pollute a query.
var junkDescriptions = []string{
	"local profile found", "local records", "verified", "high accuracy",
	"no description", "none", "database", "datastore",
}

// DeepSearch builds the consolidated profile of one persona: its local
// records, social accounts, contacts, images and related articles.
func (s *Sleuth) DeepSearch(ctx context.Context, req profile.DeepSearchRequest) (*profile.DeepSearchResult, error) {
	p := req.Person
	name, keyword := splitPersona(p.Name, p.KeywordMatched)
	if name == "" {
		return nil, ErrPersonRequired
	}
	location := scrub(p.Location)
	profession := truncate(scrub(p.Description), maxProfession)
	s.logger.InfoContext(ctx, "deep search", "name", name, "keyword", keyword, "location", location)

	fuzzy := textnorm.FirstWords(name, 2)
	term := keyword
	if keyword != "" && strings.Contains(strings.ToLower(name), strings.ToLower(keyword)) {
		term = ""
	}
	socialQuery := join(fmt.Sprintf("%q", name), term, socialSites)
	contextQuery := join(fmt.Sprintf("%q", name), location, firstNonEmpty(keyword, profession, "profile OR bio OR contact"))
	imageQuery := join(fmt.Sprintf("%q", name), profession, `"profile picture" OR "portrait"`)
	fallbackImageQuery := join(fmt.Sprintf("%q", name), profession, "headshot")

	var (
		exact, loose        []profile.Record
		socialHits, ctxHits []profile.Hit
		imageHits           []profile.ImageHit
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		exact = s.searchLocal(gctx, name, contact.Name)
		return nil
	})
	if fuzzy != name {
		g.Go(func() error {
			loose = s.searchLocal(gctx, fuzzy, contact.Name)
			return nil
		})
	}
	g.Go(func() error {
		socialHits = s.searchWeb(gctx, socialQuery, s.webCount, webfilter.Strict)
		return nil
	})
	g.Go(func() error {
		ctxHits = s.searchWeb(gctx, contextQuery, s.webCount, webfilter.Strict)
		return nil
	})
	g.Go(func() error {
		imageHits = s.searchImages(gctx, imageQuery)
		if len(imageHits) == 0 {
			imageHits = s.searchImages(gctx, fallbackImageQuery)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("deep search: %w", err)
	}

	records := localsearch.Dedup(append(exact, loose...))
	hits := mergeHits(socialHits, ctxHits)

	var phones, emails []string
	for _, r := range records {
		phones, emails = contact.Merge(phones, emails, contact.Contacts{
			Phones: r.PhoneNumbers,
			Emails: nonEmpty(r.Email),
		})
	}
	phones, emails = contact.Merge(phones, emails, contact.Contacts{Phones: p.PhoneNumbers, Emails: nonEmpty(p.Email)})

	socials := social.Extract(hits, social.Target{
		Name:     name,
		Location: location,
		Keywords: strings.Fields(keyword),
		Emails:   emails,
		Phones:   phones,
	})
	s.logger.DebugContext(ctx, "social profiles", "count", len(socials))

	for _, h := range hits {
		phones, emails = contact.Merge(phones, emails, contact.Extract(h.Text))
	}

	primary := p.Image
	if primary == "" {
		primary = linkedInThumbnail(socials, socialHits)
	}
	candidates := imagescore.Select(imageHits, name, strings.Fields(join(keyword, profession)))
	images := s.collectImages(ctx, primary, candidates, hits)
	if primary == "" && len(images) > 0 {
		primary = images[0]
	}

	person := profile.Person{
		Name:         name,
		Description:  p.Description,
		Location:     p.Location,
		Keyword:      keyword,
		Confidence:   p.Confidence,
		Source:       p.Source,
		URL:          p.URL,
		PrimaryImage: primary,
		PhoneNumbers: phones,
		Emails:       emails,
	}
	if s.enricher != nil && len(hits) > 0 {
		summary, err := s.enricher.Summarize(ctx, person, hits)
		if err != nil {
			s.logger.WarnContext(ctx, "summary failed", "error", err)
		}
		person.Summary = summary
	}

	return &profile.DeepSearchResult{
		Person:          person,
		Socials:         orEmpty(socials),
		Images:          orEmpty(images),
		ImageCandidates: candidates,
		Articles:        orEmpty(articles(hits, socials)),
		LocalData:       orEmpty(records),
	}, nil
}

func (s *Sleuth) searchImages(ctx context.Context, query string) []profile.ImageHit {
	if s.images == nil {
		return nil
	}
	imgs, err := s.images.Images(ctx, query, s.imageCount)
	if err != nil {
		s.logger.WarnContext(ctx, "image search failed", "query", query, "error", err)
		return nil
	}
	return imgs
}

// collectImages lists the primary image, the selected image results and
// the hit thumbnails, without repeats and capped at maxImages.
func (s *Sleuth) collectImages(ctx context.Context, primary string, cands []profile.ImageCandidate, hits []profile.Hit) []string {
	all := []string{primary}
	for _, c := range cands {
		all = append(all, c.ImageURL)
	}
	for _, h := range hits {
		all = append(all, h.Images...)
	}

	seen := make(map[string]bool, len(all))
	var out []string
	for _, u := range all {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
		if len(out) == maxImages {
			break
		}
	}
	if s.hasher != nil && len(out) > 1 {
		out = s.hasher.Dedupe(ctx, out)
	}
	return out
}

// linkedInThumbnail returns the thumbnail of the hit behind the first
// LinkedIn account, if any.
func linkedInThumbnail(socials []profile.SocialAccount, hits []profile.Hit) string {
	for _, a := range socials {
		if a.Platform != "LinkedIn" {
			continue
		}
		want := strings.ToLower(a.URL)
		for _, h := range hits {
			if strings.Contains(strings.ToLower(social.CanonicalURL(h.URL)), want) && len(h.Images) > 0 {
				return h.Images[0]
			}
		}
		return ""
	}
	return ""
}

// articles returns the hits that are not one of the social accounts.
func articles(hits []profile.Hit, socials []profile.SocialAccount) []profile.Article {
	taken := make(map[string]bool, len(socials))
	for _, a := range socials {
		taken[strings.ToLower(a.URL)] = true
	}
	var out []profile.Article
	for _, h := range hits {
		if taken[strings.ToLower(social.CanonicalURL(h.URL))] {
			continue
		}
		out = append(out, profile.Article{Title: h.Title, Snippet: h.Text, URL: h.URL, Provider: h.Provider})
		if len(out) == maxArticles {
			break
		}
	}
	return out
}

// splitPersona separates a "Name - Keyword" or "Name | Keyword" label and
// removes a keyword the name repeats.
func splitPersona(label, keyword string) (name, kw string) {
	name = strings.TrimSpace(label)
	kw = strings.TrimSpace(keyword)
	for _, sep := range []string{" - ", " | "} {
		if before, after, ok := strings.Cut(name, sep); ok {
			name = strings.TrimSpace(before)
			if kw == "" {
				rest, _, _ := strings.Cut(after, sep)
				kw = strings.TrimSpace(rest)
			}
			break
		}
	}

	lowerName, lowerKw := strings.ToLower(name), strings.ToLower(kw)
	switch {
	case kw == "":
	case strings.HasSuffix(lowerName, " "+lowerKw):
		name = strings.TrimSpace(name[:len(name)-len(kw)-1])
	case strings.Contains(lowerName, lowerKw):
		if len(strings.Fields(name)) > 2 {
			name = textnorm.FirstWords(name, 2)
		}
	}
	return name, kw
}

// scrub blanks placeholder text.
func scrub(s string) string {
	lower := strings.ToLower(s)
	for _, j := range junkDescriptions {
		if strings.Contains(lower, j) {
			return ""
		}
	}
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

// orEmpty keeps JSON output as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
