package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/codeGROOVE-dev/sleuth/pkg/httpcache"
)

// ErrNoAPIKey is returned when Groq is configured without a key.
var ErrNoAPIKey = errors.New("GROQ_API_KEY not configured")

// Groq defaults.
const (
	GroqBaseURL      = "https://api.groq.com/openai/v1"
	GroqDefaultModel = "llama3-8b-8192"
)

// Groq talks to Groq's OpenAI-compatible chat completions API.
type Groq struct {
	model
	client  *httpcache.Client
	apiKey  string
	modelID string
	baseURL string
}

// GroqOption configures a Groq client.
type GroqOption func(*Groq)

// WithGroqModel sets the model name.
func WithGroqModel(name string) GroqOption {
	return func(g *Groq) {
		if name != "" {
			g.modelID = name
		}
	}
}

// WithGroqBaseURL overrides the API root.
func WithGroqBaseURL(u string) GroqOption {
	return func(g *Groq) { g.baseURL = strings.TrimRight(u, "/") }
}

// WithGroqClient sets the fetch client.
func WithGroqClient(c *httpcache.Client) GroqOption {
	return func(g *Groq) { g.client = c }
}

// WithGroqLogger sets the logger.
func WithGroqLogger(logger *slog.Logger) GroqOption {
	return func(g *Groq) { g.logger = logger }
}

// NewGroq creates a Groq enricher.
func NewGroq(apiKey string, opts ...GroqOption) *Groq {
	g := &Groq{apiKey: strings.TrimSpace(apiKey), modelID: GroqDefaultModel, baseURL: GroqBaseURL}
	g.logger = slog.Default()
	for _, opt := range opts {
		opt(g)
	}
	if g.client == nil {
		g.client = httpcache.NewClient(httpcache.WithLogger(g.logger), httpcache.WithMinDelay(0))
	}
	g.c = g
	return g
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *Groq) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	if g.apiKey == "" {
		return "", ErrNoAPIKey
	}
	body, err := json.Marshal(chatRequest{
		Model:       g.modelID,
		Messages:    []chatMessage{{Role: "system", Content: system}, {Role: "user", Content: user}},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}
	data, err := g.client.Fetch(ctx, "groq", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("calling Groq: %w", err)
	}
	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
