// Package profile defines the records, hits, candidates and accounts that
// flow through the identification pipeline, plus the shared errors.
package profile

import (
	"errors"
	"time"
)

// Errors returned to callers. Only input validation errors leave the
// pipeline; collaborator failures are logged and swallowed.
var (
	ErrQueryRequired    = errors.New("search query is required")
	ErrPersonRequired   = errors.New("person data required")
	ErrFormInfoRequired = errors.New("name and keyword are required")
	ErrNotFound         = errors.New("not found")
	ErrRateLimited      = errors.New("rate limited")
	ErrEnrichTimeout    = errors.New("enrichment timed out")
)

// RecordType tags the tier a result came from.
type RecordType string

// Record types.
const (
	TypeProfile RecordType = "PROFILE"
	TypeRecord  RecordType = "RECORD"
	TypeAux     RecordType = "AUX"
)

// Priority tiers. Lower is more authoritative.
const (
	PriorityProfile  = 1
	PriorityDocument = 2
	PriorityExternal = 3
)

// SourceInternet is the Source of every web hit.
const SourceInternet = "Internet"

// Record is a hit from a local store.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Record struct {
	ID           string     `json:"id,omitempty"`
	Text         string     `json:"text"`
	Name         string     `json:"name,omitempty"`
	Description  string     `json:"description,omitempty"`
	Location     string     `json:"location,omitempty"`
	Company      string     `json:"company,omitempty"`
	Email        string     `json:"email,omitempty"`
	Image        string     `json:"image,omitempty"`
	PhoneNumbers []string   `json:"phoneNumbers,omitempty"`
	Source       string     `json:"source"`
	Priority     int        `json:"priority"`
	Type         RecordType `json:"type"`
}

// Item projects the record onto a rankable item.
func (r Record) Item() Item {
	return Item{
		ID:           r.ID,
		Title:        r.Name,
		Text:         r.Text,
		Source:       r.Source,
		Type:         r.Type,
		Priority:     r.Priority,
		Images:       nonEmpty(r.Image),
		PhoneNumbers: r.PhoneNumbers,
		Email:        r.Email,
	}
}

// Hit is a web search result.
type Hit struct {
	Title    string     `json:"title"`
	Text     string     `json:"text"`
	URL      string     `json:"url"`
	Provider string     `json:"provider,omitempty"`
	Images   []string   `json:"images,omitempty"`
	Source   string     `json:"source,omitempty"`
	Type     RecordType `json:"type,omitempty"`
	Priority int        `json:"priority,omitempty"`
}

// Item projects the hit onto a rankable item.
func (h Hit) Item() Item {
	return Item{
		Title:    h.Title,
		Text:     h.Text,
		URL:      h.URL,
		Source:   h.Source,
		Provider: h.Provider,
		Type:     h.Type,
		Priority: h.Priority,
		Images:   h.Images,
	}
}

// ImageHit is an image search result.
type ImageHit struct {
	Title        string `json:"title"`
	ImageURL     string `json:"imageUrl"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	SourceURL    string `json:"sourceUrl,omitempty"`
	Domain       string `json:"domain,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
}

// Item is a local record or web hit with a relevance score.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Item struct {
	ID           string     `json:"id,omitempty"`
	Title        string     `json:"title,omitempty"`
	Text         string     `json:"text"`
	URL          string     `json:"url,omitempty"`
	Source       string     `json:"source"`
	Provider     string     `json:"provider,omitempty"`
	Type         RecordType `json:"type"`
	Priority     int        `json:"priority"`
	Images       []string   `json:"images,omitempty"`
	PhoneNumbers []string   `json:"phoneNumbers,omitempty"`
	Email        string     `json:"email,omitempty"`
	Score        int        `json:"score"`
}

// Confidence levels for candidates.
const (
	ConfidenceVerified = "Verified"
	ConfidenceHigh     = "High"
	ConfidenceMedium   = "Medium"
	ConfidenceNeutral  = "neutral"
)

// Candidate sources.
const (
	SourceLocal    = "local"
	SourceExternal = "internet"
)

// Candidate is one possible identity for the searched person.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Candidate struct {
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Location       string   `json:"location,omitempty"`
	Confidence     string   `json:"confidence,omitempty"`
	Source         string   `json:"source,omitempty"`
	URL            string   `json:"url,omitempty"`
	Image          string   `json:"image,omitempty"`
	PhoneNumbers   []string `json:"phoneNumbers,omitempty"`
	Email          string   `json:"email,omitempty"`
	KeywordMatched string   `json:"keywordMatched,omitempty"`
}

// SocialAccount is a social profile judged to belong to the target.
//
//nolint:govet // fieldalignment: intentional layout for readability
type SocialAccount struct {
	Platform      string `json:"platform"`
	Username      string `json:"username"`
	URL           string `json:"url"`
	Title         string `json:"title,omitempty"`
	IdentityScore int    `json:"identityScore"`
	Confidence    string `json:"confidence"`
	Priority      int    `json:"priority"`

	// Parsed from the search title/snippet when the platform supports it.
	Headline  string `json:"headline,omitempty"`
	Company   string `json:"company,omitempty"`
	Followers int    `json:"followers,omitempty"`
}

// ImageCandidate is a scored image search result.
type ImageCandidate struct {
	ImageURL     string `json:"imageUrl"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Title        string `json:"title,omitempty"`
	SourceURL    string `json:"sourceUrl,omitempty"`
	Score        int    `json:"score"`
}

// Person is the consolidated deep-search profile.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Person struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Location     string   `json:"location,omitempty"`
	Keyword      string   `json:"keyword,omitempty"`
	Confidence   string   `json:"confidence,omitempty"`
	Source       string   `json:"source,omitempty"`
	URL          string   `json:"url,omitempty"`
	PrimaryImage string   `json:"primaryImage,omitempty"`
	PhoneNumbers []string `json:"phoneNumbers,omitempty"`
	Emails       []string `json:"emails,omitempty"`
	Summary      string   `json:"summary,omitempty"`
}

// Article is a leftover web hit that is not a social profile.
type Article struct {
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	URL      string `json:"url"`
	Provider string `json:"provider,omitempty"`
}

// IdentifyRequest asks for the candidate identities behind a name or number.
type IdentifyRequest struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Keywords string `json:"keywords,omitempty"`
	Number   string `json:"number,omitempty"`
}

// IdentifyResult lists candidate identities. When DirectResolve is set the
// single local match is returned in ResolvedPersona.
type IdentifyResult struct {
	Candidates      []Candidate `json:"candidates"`
	DirectResolve   bool        `json:"directResolve"`
	ResolvedPersona *Candidate  `json:"resolvedPersona,omitempty"`
	PersonaName     string      `json:"personaName,omitempty"`
}

// DeepSearchRequest selects the persona to enrich.
type DeepSearchRequest struct {
	Person Candidate `json:"person"`
}

// DeepSearchResult is the enriched profile of one persona.
//
//nolint:govet // fieldalignment: intentional layout for readability
type DeepSearchResult struct {
	Person          Person           `json:"person"`
	Socials         []SocialAccount  `json:"socials"`
	Images          []string         `json:"images"`
	ImageCandidates []ImageCandidate `json:"imageCandidates,omitempty"`
	Articles        []Article        `json:"articles"`
	LocalData       []Record         `json:"localData"`
}

// HistoryEntry is one remembered identify query.
type HistoryEntry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Keyword     string    `json:"keyword,omitempty"`
	Location    string    `json:"location,omitempty"`
	Number      string    `json:"number,omitempty"`
	ResultCount int       `json:"resultCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FormInfo is a stored name/keyword/location submission.
type FormInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Keyword   string    `json:"keyword"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
