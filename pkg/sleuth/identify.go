package sleuth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/codeGROOVE-dev/sleuth/pkg/cluster"
	"github.com/codeGROOVE-dev/sleuth/pkg/contact"
	"github.com/codeGROOVE-dev/sleuth/pkg/enrich"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
	"github.com/codeGROOVE-dev/sleuth/pkg/webfilter"
	"github.com/codeGROOVE-dev/sleuth/pkg/websearch"
)

// Defaults for local candidates whose record lacks the field.
const (
	csvDescription = "Identified in CSV Archive"
	csvLocation    = "Archives"
	sqlDescription = "Identity SQL Record"
	sqlLocation    = "Identity SQL"
	docLocation    = "Cluster DB Archives"
	phoneLead      = "Potential Lead"
	docSnippet     = 150
)

// Identify finds the candidate identities behind a name or phone number.
// Local matches come first and are Verified. When a number was given and
// exactly one local record matches it, that record is resolved directly.
func (s *Sleuth) Identify(ctx context.Context, req profile.IdentifyRequest) (*profile.IdentifyResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, ErrQueryRequired
	}
	req.Number = strings.TrimSpace(req.Number)
	req.Keywords = strings.TrimSpace(req.Keywords)
	req.Location = strings.TrimSpace(req.Location)

	inputType := contact.DetectInputType(req.Name)
	searchQuery, searchType := req.Name, inputType
	if req.Number != "" {
		searchQuery, searchType = req.Number, contact.Phone
	}
	s.logger.InfoContext(ctx, "identify", "query", searchQuery, "type", searchType, "keywords", req.Keywords)

	var (
		records []profile.Record
		hits    []profile.Hit
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records = s.searchLocal(gctx, searchQuery, searchType)
		return nil
	})
	g.Go(func() error {
		hits = s.identifyHits(gctx, req, inputType)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("identify: %w", err)
	}

	local := localCandidates(records, req, inputType)
	internet := s.internetCandidates(ctx, req, inputType, hits)

	res := &profile.IdentifyResult{
		Candidates: cluster.Cluster(append(local, internet...)),
	}
	resolveType := contact.Name
	if inputType == contact.Phone || req.Number != "" {
		resolveType = contact.Phone
	}
	if c, ok := cluster.DirectResolve(resolveType, local); ok {
		s.logger.InfoContext(ctx, "direct resolve", "name", c.Name)
		res.DirectResolve = true
		res.ResolvedPersona = &c
		res.PersonaName = c.Name
	}

	s.remember(ctx, req, len(res.Candidates))
	return res, nil
}

// identifyHits runs the site-scoped web query for the request, falling back
// to the unscoped query when a name search comes back empty.
func (s *Sleuth) identifyHits(ctx context.Context, req profile.IdentifyRequest, inputType contact.InputType) []profile.Hit {
	if inputType == contact.Phone {
		q := fmt.Sprintf("%q OR %q", req.Name, contact.NormalizePhone(req.Name))
		return s.searchWeb(ctx, q, s.webCount, webfilter.Strict)
	}

	simple := join(req.Name, req.Location, req.Keywords)
	hits := s.searchWeb(ctx, websearch.Scoped(simple), s.webCount, webfilter.Strict)
	if len(hits) == 0 {
		s.logger.DebugContext(ctx, "scoped search empty, retrying unscoped", "query", simple)
		hits = s.searchWeb(ctx, simple, s.webCount, webfilter.Strict)
	}
	return hits
}

// localCandidates turns local records into Verified candidates, filling
// the gaps each store leaves with its own defaults.
func localCandidates(records []profile.Record, req profile.IdentifyRequest, inputType contact.InputType) []profile.Candidate {
	out := make([]profile.Candidate, 0, len(records))
	for _, r := range records {
		c := profile.Candidate{
			Name:           r.Name,
			Description:    r.Description,
			Location:       r.Location,
			Confidence:     profile.ConfidenceVerified,
			Source:         profile.SourceLocal,
			Image:          r.Image,
			PhoneNumbers:   r.PhoneNumbers,
			Email:          r.Email,
			KeywordMatched: req.Keywords,
		}
		switch {
		case r.Type == profile.TypeRecord:
			c.Name = req.Name
			if inputType == contact.Phone {
				c.Name = phoneLead
			}
			c.Description = snippet(r.Text, docSnippet)
			c.Location = docLocation
		case strings.HasPrefix(r.Source, "CSV"):
			c.Description = orDefault(c.Description, csvDescription)
			c.Location = orDefault(c.Location, csvLocation)
		default:
			c.Description = orDefault(c.Description, sqlDescription)
			c.Location = orDefault(c.Location, sqlLocation)
		}
		c.Name = join(c.Name, req.Keywords)
		out = append(out, c)
	}
	return out
}

// internetCandidates asks the enricher to group hits into people. A failed
// call falls back to High confidence title candidates; an empty answer to
// Medium ones.
func (s *Sleuth) internetCandidates(ctx context.Context, req profile.IdentifyRequest, inputType contact.InputType, hits []profile.Hit) []profile.Candidate {
	if len(hits) == 0 {
		return nil
	}
	if s.enricher == nil {
		return enrich.FromHits(hits, req.Keywords, profile.ConfidenceMedium)
	}

	cands, err := s.enricher.Candidates(ctx, enrich.Criteria{
		Name:      req.Name,
		Location:  req.Location,
		Keywords:  req.Keywords,
		InputType: inputType,
	}, hits)
	if err != nil {
		s.logger.WarnContext(ctx, "enrichment failed, using raw titles", "error", err)
		return enrich.FromHits(hits, req.Keywords, profile.ConfidenceHigh)
	}
	if len(cands) == 0 {
		return enrich.FromHits(hits, req.Keywords, profile.ConfidenceMedium)
	}
	for i := range cands {
		cands[i].Source = profile.SourceExternal
		cands[i].Name = enrich.WithKeyword(cands[i].Name, req.Keywords, " - ")
		cands[i].KeywordMatched = req.Keywords
	}
	return cands
}

func (s *Sleuth) remember(ctx context.Context, req profile.IdentifyRequest, n int) {
	if s.history == nil {
		return
	}
	_, err := s.history.RecordSearch(ctx, profile.HistoryEntry{
		Name:        req.Name,
		Keyword:     req.Keywords,
		Location:    req.Location,
		Number:      req.Number,
		ResultCount: n,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "record search history", "error", err)
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// snippet cuts s to n runes and marks the cut.
func snippet(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
