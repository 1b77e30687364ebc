package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/FranksOps/leadscout/internal/llm"
	"github.com/FranksOps/leadscout/internal/serp"
)

// Prefix namespaces every environment variable, e.g. LEADSCOUT_FETCH_TIMEOUT.
const Prefix = "LEADSCOUT"

// Config is the process configuration. Each variable is read as LEADSCOUT_<NAME>
// and then as the bare <NAME>, so SERPAPI_API_KEY and OPENROUTER_API_KEY work as is.
type Config struct {
	SerpAPIKey      string        `envconfig:"SERPAPI_API_KEY"`
	SerpAPIEndpoint string        `envconfig:"SERPAPI_ENDPOINT" default:"https://serpapi.com/search.json"`
	SearchTimeout   time.Duration `envconfig:"SEARCH_TIMEOUT" default:"30s"`

	OpenRouterAPIKey string        `envconfig:"OPENROUTER_API_KEY"`
	LLMBaseURL       string        `envconfig:"LLM_BASE_URL" default:"https://openrouter.ai/api/v1"`
	LLMTimeout       time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`
	ProfileModel     string        `envconfig:"PROFILE_MODEL" default:"anthropic/claude-3-sonnet"`
	FastModel        string        `envconfig:"FAST_MODEL" default:"anthropic/claude-3-haiku"`

	FetchTimeout  time.Duration `envconfig:"FETCH_TIMEOUT" default:"10s"`
	FetchRPS      float64       `envconfig:"FETCH_RPS" default:"0"`
	TLSProfile    string        `envconfig:"TLS_PROFILE" default:"chrome"`
	ProxyFile     string        `envconfig:"PROXY_FILE"`
	RespectRobots bool          `envconfig:"RESPECT_ROBOTS" default:"false"`
	UserAgents    []string      `envconfig:"USER_AGENTS"`

	ProfilesFile string `envconfig:"PROFILES_FILE"`
	StoreBackend string `envconfig:"STORE"`
	StoreDSN     string `envconfig:"STORE_DSN"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"text"`
	MetricsPort int    `envconfig:"METRICS_PORT" default:"0"`
}

// Load reads .env files (missing files are ignored) and then the environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", c.LogFormat)
	}
	if c.FetchRPS < 0 {
		return fmt.Errorf("fetch rps must not be negative")
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port %d", c.MetricsPort)
	}
	return nil
}

// HasSearch reports whether a real search provider key is configured.
func (c *Config) HasSearch() bool {
	k := strings.TrimSpace(c.SerpAPIKey)
	return k != "" && k != serp.PlaceholderKey
}

// HasLLM reports whether a real language model key is configured.
func (c *Config) HasLLM() bool {
	k := strings.TrimSpace(c.OpenRouterAPIKey)
	return k != "" && k != llm.PlaceholderKey
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}
