package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/sleuth/pkg/httpcache"
)

// Ollama defaults.
const (
	OllamaBaseURL      = "http://localhost:11434"
	OllamaDefaultModel = "llama3.2"
)

// Ollama talks to a local Ollama server.
type Ollama struct {
	model
	client  *httpcache.Client
	baseURL string
	modelID string
}

// NewOllama creates an Ollama enricher.
func NewOllama(baseURL, modelName string, logger *slog.Logger) *Ollama {
	if baseURL == "" {
		baseURL = OllamaBaseURL
	}
	if modelName == "" {
		modelName = OllamaDefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		modelID: modelName,
		client: httpcache.NewClient(
			httpcache.WithHTTPClient(&http.Client{Timeout: 300 * time.Second}),
			httpcache.WithLogger(logger),
			httpcache.WithMinDelay(0),
			httpcache.WithRetry(1, 300*time.Second),
		),
	}
	o.logger = logger
	o.c = o
	return o
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system,omitempty"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (o *Ollama) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:   o.modelID,
		System:  system,
		Prompt:  user,
		Stream:  false,
		Options: map[string]any{"temperature": temperature},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}
	data, err := o.client.Fetch(ctx, "ollama", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("calling Ollama: %w", err)
	}
	var resp ollamaGenerateResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return strings.TrimSpace(resp.Response), nil
}
