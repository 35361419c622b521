package config

import (
	"testing"
	"time"

	"github.com/dgallion1/cvforge/internal/critique"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DEFAULT_PROVIDER", "WORKER_COUNT", "MAX_UPLOAD_BYTES", "RATE_LIMIT_RPS", "JOB_TTL", "ANTHROPIC_MODEL"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.DefaultProvider != critique.ProviderAnthropic {
		t.Errorf("expected anthropic, got %q", cfg.DefaultProvider)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.WorkerCount)
	}
	if cfg.MaxUploadBytes != 20971520 {
		t.Errorf("expected 20MB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.RateLimitRPS != 1 {
		t.Errorf("expected 1 rps, got %v", cfg.RateLimitRPS)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected 1h TTL, got %v", cfg.JobTTL)
	}
	if cfg.AnthropicModel != critique.DefaultModels[critique.ProviderAnthropic] {
		t.Errorf("expected default anthropic model, got %q", cfg.AnthropicModel)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DEFAULT_PROVIDER", "Gemini")
	t.Setenv("WORKER_COUNT", "-2")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("JOB_TTL", "10m")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DEFAULT_FONT_SIZE", "-4")

	cfg := Load()
	if cfg.DefaultProvider != critique.ProviderGoogle {
		t.Errorf("expected alias to resolve to google, got %q", cfg.DefaultProvider)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected non-positive worker count to fall back to 4, got %d", cfg.WorkerCount)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Errorf("expected 2.5 rps, got %v", cfg.RateLimitRPS)
	}
	if cfg.JobTTL != 10*time.Minute {
		t.Errorf("expected 10m TTL, got %v", cfg.JobTTL)
	}
	if cfg.DefaultFontSize != 0 {
		t.Errorf("expected negative font size to clamp to 0, got %d", cfg.DefaultFontSize)
	}
	if got := cfg.APIKey(critique.ProviderOpenAI); got != "sk-test" {
		t.Errorf("expected openai key, got %q", got)
	}
	if got := cfg.APIKey("unknown"); got != "" {
		t.Errorf("expected no key for unknown provider, got %q", got)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{CvforgeAPIKey: "secret", DefaultProvider: critique.ProviderOpenAI, RateLimitRPS: 1}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing api key", func(c *Config) { c.CvforgeAPIKey = "" }},
		{"unknown provider", func(c *Config) { c.DefaultProvider = "mistral" }},
		{"negative rate", func(c *Config) { c.RateLimitRPS = -1 }},
		{"font too large", func(c *Config) { c.DefaultFontSize = 401 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
