package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERPAPI_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.FetchTimeout != 10*time.Second || cfg.SerpAPIEndpoint != "https://serpapi.com/search.json" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.LLMBaseURL != "https://openrouter.ai/api/v1" || cfg.ProfileModel != "anthropic/claude-3-sonnet" || cfg.FastModel != "anthropic/claude-3-haiku" {
		t.Errorf("unexpected llm defaults %+v", cfg)
	}
	if cfg.HasSearch() || cfg.HasLLM() {
		t.Errorf("no credentials expected")
	}
}

func TestLoad_UnprefixedCredentials(t *testing.T) {
	t.Setenv("SERPAPI_API_KEY", "serp-123")
	t.Setenv("OPENROUTER_API_KEY", "YOUR_OPENROUTER_API_KEY")
	t.Setenv("LEADSCOUT_FETCH_TIMEOUT", "3s")
	t.Setenv("LEADSCOUT_USER_AGENTS", "A/1,B/2")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SerpAPIKey != "serp-123" || !cfg.HasSearch() {
		t.Errorf("serpapi key not resolved: %q", cfg.SerpAPIKey)
	}
	if cfg.HasLLM() {
		t.Errorf("placeholder key must not count as a credential")
	}
	if cfg.FetchTimeout != 3*time.Second || len(cfg.UserAgents) != 2 {
		t.Errorf("prefixed values not applied: %+v", cfg)
	}
}

func TestLoad_PrefixedWins(t *testing.T) {
	t.Setenv("SERPAPI_API_KEY", "plain")
	t.Setenv("LEADSCOUT_SERPAPI_API_KEY", "prefixed")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SerpAPIKey != "prefixed" {
		t.Errorf("expected prefixed key, got %q", cfg.SerpAPIKey)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	os.Unsetenv("OPENROUTER_API_KEY")
	t.Setenv("LEADSCOUT_LOG_LEVEL", "debug")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("OPENROUTER_API_KEY=or-456\nLEADSCOUT_LOG_LEVEL=error\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("OPENROUTER_API_KEY") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OpenRouterAPIKey != "or-456" {
		t.Errorf("expected key from .env, got %q", cfg.OpenRouterAPIKey)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("environment should win over .env, got %q", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	base := Config{LogLevel: "info", LogFormat: "text"}
	for name, mutate := range map[string]func(*Config){
		"bad level":  func(c *Config) { c.LogLevel = "loud" },
		"bad format": func(c *Config) { c.LogFormat = "xml" },
		"bad rps":    func(c *Config) { c.FetchRPS = -1 },
		"bad port":   func(c *Config) { c.MetricsPort = 70000 },
	} {
		c := base
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	if err := base.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("WARN")
	if err != nil || l != slog.LevelWarn {
		t.Errorf("ParseLevel(WARN) = %v, %v", l, err)
	}
}
