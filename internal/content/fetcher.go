// Package content generates the personalized news snippet shown on first
// visit.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/metrics"
)

const Fallback = "Stay ahead with personalized AI news headlines curated for your interests."

const (
	SourceGLM      = "glm"
	SourceDeepSeek = "deepseek"
	SourceFallback = "fallback"
)

type Request struct {
	Interests string
	Location  string
}

type Result struct {
	Snippet  string
	Fallback bool
	Source   string
}

// Provider is one OpenAI-compatible chat completions endpoint.
type Provider struct {
	Name   string
	URL    string
	APIKey string
	Model  string
}

type Fetcher struct {
	provider *Provider
	client   *http.Client
	metrics  *metrics.Metrics
}

// NewFetcher picks the first provider that has an API key and URL. Later
// providers are not fallbacks: a page load makes at most one request.
func NewFetcher(providers []Provider, timeout time.Duration, m *metrics.Metrics) *Fetcher {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	f := &Fetcher{
		client:  &http.Client{Timeout: timeout},
		metrics: m,
	}
	for i := range providers {
		if providers[i].APIKey != "" && providers[i].URL != "" {
			p := providers[i]
			f.provider = &p
			break
		}
	}
	return f
}

// Fetch makes a single request and falls back to the static snippet on any
// failure. It never returns an error and never retries.
func (f *Fetcher) Fetch(ctx context.Context, req Request) Result {
	if f.provider != nil && ctx.Err() == nil {
		snippet, err := f.callProvider(ctx, *f.provider, req)
		if err == nil {
			f.metrics.ContentFetch(f.provider.Name)
			return Result{Snippet: snippet, Source: f.provider.Name}
		}
		if !errors.Is(err, context.Canceled) {
			slog.Warn("content provider failed", "provider", f.provider.Name, "error", err)
		}
	}

	f.metrics.ContentFetch(SourceFallback)
	return Result{Snippet: Fallback, Fallback: true, Source: SourceFallback}
}

type llmMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type llmRequest struct {
	Model       string       `json:"model"`
	Messages    []llmMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
}

type llmResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func prompt(req Request) string {
	return fmt.Sprintf(`As a personalized news curator, generate a short snippet of trending news headlines or suggested topics tailored to a new user based on their interests and location.

User Interests: %s
User Location: %s

Personalized Content Snippet:`, req.Interests, req.Location)
}

func (f *Fetcher) callProvider(ctx context.Context, p Provider, req Request) (string, error) {
	reqBody, err := json.Marshal(llmRequest{
		Model: p.Model,
		Messages: []llmMessage{
			{Role: "system", Content: "You write concise, engaging news briefs. Reply with the snippet only, no markdown."},
			{Role: "user", Content: prompt(req)},
		},
		Temperature: 0.7,
		MaxTokens:   512,
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned %d: %s", resp.StatusCode, string(body))
	}

	var llmResp llmResponse
	if err := json.Unmarshal(body, &llmResp); err != nil {
		return "", err
	}
	if len(llmResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	snippet := strings.TrimSpace(llmResp.Choices[0].Message.Content)
	snippet = strings.TrimPrefix(snippet, "```")
	snippet = strings.TrimSuffix(snippet, "```")
	snippet = strings.TrimSpace(snippet)
	if snippet == "" {
		return "", fmt.Errorf("empty snippet from API")
	}
	return snippet, nil
}
