// Package critique asks an AI provider to score a CV against a job post and
// suggest rewrites of specific passages.
package critique

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Provider names an AI backend.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGoogle    Provider = "google"
)

// DefaultModels holds the model used when Options.Model is empty.
var DefaultModels = map[Provider]string{
	ProviderAnthropic: "claude-sonnet-4-5-20250929",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderGoogle:    "gemini-2.0-flash",
}

// ParseProvider normalizes a provider name.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderAnthropic, ProviderOpenAI, ProviderGoogle:
		return p, nil
	case "claude":
		return ProviderAnthropic, nil
	case "gemini":
		return ProviderGoogle, nil
	}
	return "", fmt.Errorf("unknown provider %q", s)
}

// Improvement is one suggested rewrite. OriginalText is verbatim CV text;
// Suggestion may carry emphasis markup.
type Improvement struct {
	ID           int    `json:"id"`
	OriginalText string `json:"originalText"`
	Suggestion   string `json:"suggestion"`
}

// Analysis is the provider's verdict on a CV.
type Analysis struct {
	OverallScore int           `json:"overallScore"`
	Strengths    []string      `json:"strengths,omitempty"`
	Improvements []Improvement `json:"improvements"`
	NewScore     int           `json:"newScore"`
}

// Analyzer critiques a CV (as HTML) against a job post.
type Analyzer interface {
	Analyze(ctx context.Context, cvHTML, jobPost string) (*Analysis, error)
}

// Options configures a Client. APIKey is required; everything else has a default.
type Options struct {
	Provider        Provider
	Model           string
	APIKey          string
	BaseURL         string
	Timeout         time.Duration
	MaxTokens       int
	MaxPromptTokens int
	Stats           *LLMStats
	Logger          *slog.Logger
}

// backend sends one prompt and returns the model's raw text answer.
type backend interface {
	complete(ctx context.Context, prompt string) (string, error)
}

// Client is an Analyzer backed by one provider.
type Client struct {
	provider        Provider
	model           string
	maxPromptTokens int
	httpClient      *http.Client
	backend         backend
	log             *slog.Logger

	Stats *LLMStats
}

// New builds a client for opts.Provider.
func New(opts Options) (*Client, error) {
	if opts.Provider == "" {
		opts.Provider = ProviderAnthropic
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%s: api key is required", opts.Provider)
	}
	if opts.Model == "" {
		opts.Model = DefaultModels[opts.Provider]
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}
	if opts.Stats == nil {
		opts.Stats = NewLLMStats(time.Hour)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	c := &Client{
		provider:        opts.Provider,
		model:           opts.Model,
		maxPromptTokens: opts.MaxPromptTokens,
		httpClient:      &http.Client{Timeout: opts.Timeout},
		log:             opts.Logger.With("provider", string(opts.Provider), "model", opts.Model),
		Stats:           opts.Stats,
	}

	switch opts.Provider {
	case ProviderAnthropic:
		c.backend = &anthropicBackend{
			baseURL:   baseOr(opts.BaseURL, "https://api.anthropic.com"),
			apiKey:    opts.APIKey,
			model:     opts.Model,
			maxTokens: opts.MaxTokens,
			http:      c.httpClient,
		}
	case ProviderOpenAI:
		c.backend = &openAIBackend{
			baseURL:   baseOr(opts.BaseURL, "https://api.openai.com/v1"),
			apiKey:    opts.APIKey,
			model:     opts.Model,
			maxTokens: opts.MaxTokens,
			http:      c.httpClient,
		}
	case ProviderGoogle:
		c.backend = &googleBackend{
			baseURL:   baseOr(opts.BaseURL, "https://generativelanguage.googleapis.com/v1beta"),
			apiKey:    opts.APIKey,
			model:     opts.Model,
			maxTokens: opts.MaxTokens,
			http:      c.httpClient,
		}
	default:
		return nil, fmt.Errorf("unknown provider %q", opts.Provider)
	}
	return c, nil
}

func baseOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return strings.TrimRight(s, "/")
}

// Provider returns the backend's name.
func (c *Client) Provider() Provider { return c.provider }

// Model returns the model the client asks.
func (c *Client) Model() string { return c.model }

// Analyze builds the prompt, sends it and validates the answer.
func (c *Client) Analyze(ctx context.Context, cvHTML, jobPost string) (*Analysis, error) {
	prompt := FitPrompt(cvHTML, jobPost, c.maxPromptTokens)

	start := time.Now()
	text, err := c.backend.complete(ctx, prompt)
	elapsed := time.Since(start)
	c.Stats.Record(string(c.provider), elapsed, err)
	if err != nil {
		c.log.Warn("llm call failed", "error", err, "duration_ms", elapsed.Milliseconds())
		return nil, err
	}
	c.log.Debug("llm call complete", "duration_ms", elapsed.Milliseconds(), "response_len", len(text))

	a, err := ParseAnalysis(text)
	if err != nil {
		var ce *CollaboratorError
		if errors.As(err, &ce) {
			ce.Provider = string(c.provider)
		}
		return nil, err
	}
	return a, nil
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
