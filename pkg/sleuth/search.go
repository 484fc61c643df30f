package sleuth

import (
	"context"
	"strings"

	"github.com/codeGROOVE-dev/sleuth/pkg/contact"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
	"github.com/codeGROOVE-dev/sleuth/pkg/rank"
	"github.com/codeGROOVE-dev/sleuth/pkg/webfilter"
	"github.com/codeGROOVE-dev/sleuth/pkg/websearch"
)

// Search returns local records and web hits for query as one ranked list.
// When a local profile row matches, the web is searched for that row's
// name and title instead of the raw query. Strict mode scopes the web query
// to profile sites and applies every filter.
func (s *Sleuth) Search(ctx context.Context, query string, mode webfilter.Mode) ([]profile.Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	if mode != webfilter.Strict {
		mode = webfilter.Simple
	}

	records := s.searchLocal(ctx, bareQuery(query), contact.DetectInputType(query))

	webQuery, count := query, websearch.SimpleCount
	for _, r := range records {
		if r.Type == profile.TypeProfile {
			if q := join(r.Name, r.Description); q != "" && r.Name != "" {
				webQuery = q
			}
			break
		}
	}
	if mode == webfilter.Strict {
		webQuery, count = websearch.Scoped(webQuery), websearch.StrictCount
	}
	// The web query may have been rewritten, but hits are still judged
	// against the name the caller asked about.
	hits := s.filteredHits(ctx, webQuery, targetName(query), count, mode)
	s.logger.InfoContext(ctx, "search", "query", query, "mode", mode, "local", len(records), "web", len(hits))

	items := make([]profile.Item, 0, len(records)+len(hits))
	for _, r := range records {
		items = append(items, r.Item())
	}
	for _, h := range hits {
		items = append(items, h.Item())
	}
	return rank.Rank(items, query), nil
}
