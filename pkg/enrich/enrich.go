// Package enrich asks a language model to group web hits into candidate
// people and to summarize a selected person.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/sleuth/pkg/contact"
	"github.com/codeGROOVE-dev/sleuth/pkg/htmlutil"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
)

// DefaultTimeout bounds one enrichment call.
const DefaultTimeout = 25 * time.Second

// noCandidates is the model's answer when nothing matches.
const noCandidates = "No confident candidates found"

// maxCandidates caps how many candidates the model is asked for.
const maxCandidates = 20

// Criteria describes who is being identified.
type Criteria struct {
	Name      string
	Location  string
	Keywords  string
	InputType contact.InputType
}

// Enricher turns raw hits into candidates and writes person summaries.
type Enricher interface {
	Candidates(ctx context.Context, c Criteria, hits []profile.Hit) ([]profile.Candidate, error)
	Summarize(ctx context.Context, p profile.Person, hits []profile.Hit) (string, error)
}

// completer sends one system+user exchange to a model.
type completer interface {
	complete(ctx context.Context, system, user string, temperature float64) (string, error)
}

// model implements Enricher over any completer.
type model struct {
	c      completer
	logger *slog.Logger
}

const identifyPrompt = `You are an entity resolution system. Identify unique individuals in a list of search results.

1. Group results that refer to the same person.
2. For a NAME search, resolve the specific individual. For a PHONE search, find the person most strongly tied to that number (directory listings, bios, contact pages).
3. The "name" field must read "Full Name - Keyword" (e.g. "Pankaj Shah - CEO").
4. Include the primary "url" (LinkedIn or personal site) of each person.
5. Return at most %d candidates.
6. If nothing matches the criteria, answer exactly "%s".

Answer with a JSON array only, no markdown:
[{"name": "Name - Keyword", "description": "who they are, max 15 words", "location": "City/Region or Unknown", "confidence": "high", "url": "https://..."}]`

const summaryPrompt = "You are a research analyst. Write a concise, factual summary of the person from the data provided. " +
	"Focus on role, affiliations and notable facts. No filler. Plain text, at most 120 words."

// hitView is what the model sees of a hit.
type hitView struct {
	Title    string `json:"title"`
	Text     string `json:"text,omitempty"`
	URL      string `json:"url"`
	Provider string `json:"provider,omitempty"`
}

func views(hits []profile.Hit) []hitView {
	out := make([]hitView, len(hits))
	for i, h := range hits {
		out[i] = hitView{Title: h.Title, Text: h.Text, URL: h.URL, Provider: h.Provider}
	}
	return out
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func (m *model) Candidates(ctx context.Context, c Criteria, hits []profile.Hit) ([]profile.Candidate, error) {
	data, err := json.MarshalIndent(views(hits), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode hits: %w", err)
	}
	typ := c.InputType
	if typ == "" {
		typ = contact.Name
	}
	user := fmt.Sprintf("Criteria:\n- %s: %s\n- Location: %s\n- Keywords: %s\n\nSearch Results:\n%s\n",
		typ, c.Name, orDefault(c.Location, "Not specified"), orDefault(c.Keywords, "Not specified"), data)

	text, err := m.c.complete(ctx, fmt.Sprintf(identifyPrompt, maxCandidates, noCandidates), user, 0.3)
	if err != nil {
		return nil, err
	}
	cands, err := ParseCandidates(text)
	if err != nil {
		m.logger.WarnContext(ctx, "unparseable model answer", "error", err, "answer", truncate(text, 200))
		return nil, nil
	}
	return cands, nil
}

func (m *model) Summarize(ctx context.Context, p profile.Person, hits []profile.Hit) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Person: %s\n", p.Name)
	if p.Keyword != "" {
		fmt.Fprintf(&b, "Keyword: %s\n", p.Keyword)
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", p.Description)
	}
	if p.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", p.Location)
	}
	b.WriteString("\nSources:\n")
	for i, h := range hits {
		if i == 15 {
			break
		}
		fmt.Fprintf(&b, "- %s: %s (%s)\n", h.Title, h.Text, h.URL)
	}
	text, err := m.c.complete(ctx, summaryPrompt, b.String(), 0.5)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

type modelCandidate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Confidence  string `json:"confidence"`
	URL         string `json:"url"`
}

// ParseCandidates decodes a model answer. Markdown fences are stripped and
// the "no candidates" sentence yields an empty result.
func ParseCandidates(text string) ([]profile.Candidate, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.ReplaceAll(text, "```", "")
		text = strings.TrimSpace(text)
	}
	if strings.Contains(text, noCandidates) {
		return nil, nil
	}
	var raw []modelCandidate
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}
	out := make([]profile.Candidate, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		out = append(out, profile.Candidate{
			Name:        strings.TrimSpace(r.Name),
			Description: r.Description,
			Location:    r.Location,
			Confidence:  r.Confidence,
			URL:         r.URL,
			Source:      profile.SourceExternal,
		})
	}
	return out, nil
}

// FromHits builds candidates straight from hit titles: the first title
// segment is the name, suffixed with keywords unless already present.
func FromHits(hits []profile.Hit, keywords, confidence string) []profile.Candidate {
	var out []profile.Candidate
	for _, h := range hits {
		parts := htmlutil.SplitTitle(h.Title)
		if len(parts) == 0 {
			continue
		}
		out = append(out, profile.Candidate{
			Name:           WithKeyword(parts[0], keywords, " "),
			Description:    orDefault(h.Text, "Web result"),
			Location:       orDefault(h.Provider, profile.SourceInternet),
			Confidence:     confidence,
			Source:         profile.SourceExternal,
			URL:            h.URL,
			KeywordMatched: keywords,
		})
	}
	return out
}

// WithKeyword appends keywords to name with sep unless the name already
// mentions them.
func WithKeyword(name, keywords, sep string) string {
	keywords = strings.TrimSpace(keywords)
	if keywords == "" || strings.Contains(strings.ToLower(name), strings.ToLower(keywords)) {
		return name
	}
	return name + sep + keywords
}

// WithTimeout bounds every call of e by d. A call that runs out of time
// fails with profile.ErrEnrichTimeout.
func WithTimeout(e Enricher, d time.Duration) Enricher {
	if d <= 0 {
		d = DefaultTimeout
	}
	return &timeoutEnricher{next: e, d: d}
}

type timeoutEnricher struct {
	next Enricher
	d    time.Duration
}

func (t *timeoutEnricher) Candidates(ctx context.Context, c Criteria, hits []profile.Hit) ([]profile.Candidate, error) {
	return race(ctx, t.d, func(ctx context.Context) ([]profile.Candidate, error) {
		return t.next.Candidates(ctx, c, hits)
	})
}

func (t *timeoutEnricher) Summarize(ctx context.Context, p profile.Person, hits []profile.Hit) (string, error) {
	return race(ctx, t.d, func(ctx context.Context) (string, error) {
		return t.next.Summarize(ctx, p, hits)
	})
}

type outcome[T any] struct {
	val T
	err error
}

// race returns fn's result if it arrives within d. Otherwise it returns
// profile.ErrEnrichTimeout without waiting for fn, whose late result is
// discarded.
func race[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan outcome[T], 1)
	go func() {
		v, err := fn(ctx)
		done <- outcome[T]{val: v, err: err}
	}()

	var zero T
	select {
	case o := <-done:
		if o.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, fmt.Errorf("%w: %w", profile.ErrEnrichTimeout, o.err)
		}
		return o.val, o.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, profile.ErrEnrichTimeout
		}
		return zero, ctx.Err()
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
