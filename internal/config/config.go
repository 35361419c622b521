package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/cvforge/internal/critique"
)

type Config struct {
	Port string

	// Auth
	CvforgeAPIKey string

	// AI providers
	DefaultProvider critique.Provider
	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIAPIKey    string
	OpenAIModel     string
	GeminiAPIKey    string
	GeminiModel     string
	LLMTimeout      time.Duration
	MaxPromptTokens int

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Per-client requests per second on the AI-backed routes.
	RateLimitRPS float64

	// Font applied to suggestions when a request names none.
	DefaultFontFamily string
	DefaultFontSize   int

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		CvforgeAPIKey: os.Getenv("CVFORGE_API_KEY"),

		DefaultProvider: critique.Provider(envOr("DEFAULT_PROVIDER", string(critique.ProviderAnthropic))),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", critique.DefaultModels[critique.ProviderAnthropic]),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     envOr("OPENAI_MODEL", critique.DefaultModels[critique.ProviderOpenAI]),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     envOr("GEMINI_MODEL", critique.DefaultModels[critique.ProviderGoogle]),
		LLMTimeout:      envDuration("LLM_TIMEOUT", 120*time.Second),
		MaxPromptTokens: envInt("MAX_PROMPT_TOKENS", 30000),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB

		RateLimitRPS: envFloat("RATE_LIMIT_RPS", 1),

		DefaultFontFamily: os.Getenv("DEFAULT_FONT_FAMILY"),
		DefaultFontSize:   envInt("DEFAULT_FONT_SIZE", 0),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if p, err := critique.ParseProvider(string(cfg.DefaultProvider)); err == nil {
		cfg.DefaultProvider = p
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 120 * time.Second
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.DefaultFontSize < 0 {
		cfg.DefaultFontSize = 0
	}

	return cfg
}

func (c Config) Validate() error {
	if c.CvforgeAPIKey == "" {
		return fmt.Errorf("CVFORGE_API_KEY is required")
	}
	if _, err := critique.ParseProvider(string(c.DefaultProvider)); err != nil {
		return fmt.Errorf("DEFAULT_PROVIDER: %w", err)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative")
	}
	if c.DefaultFontSize > 400 {
		return fmt.Errorf("DEFAULT_FONT_SIZE must be at most 400")
	}
	return nil
}

// APIKey returns the server-side key configured for a provider.
func (c Config) APIKey(p critique.Provider) string {
	switch p {
	case critique.ProviderAnthropic:
		return c.AnthropicAPIKey
	case critique.ProviderOpenAI:
		return c.OpenAIAPIKey
	case critique.ProviderGoogle:
		return c.GeminiAPIKey
	}
	return ""
}

// Model returns the configured model for a provider.
func (c Config) Model(p critique.Provider) string {
	switch p {
	case critique.ProviderAnthropic:
		return c.AnthropicModel
	case critique.ProviderOpenAI:
		return c.OpenAIModel
	case critique.ProviderGoogle:
		return c.GeminiModel
	}
	return ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
