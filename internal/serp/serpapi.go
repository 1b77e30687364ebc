package serp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/FranksOps/leadscout/pkg/httpclient"
)

// DefaultEndpoint is the SerpAPI JSON search endpoint.
const DefaultEndpoint = "https://serpapi.com/search.json"

// PlaceholderKey is the value shipped in sample configuration files.
const PlaceholderKey = "YOUR_SERPAPI_API_KEY"

// SerpAPIConfig configures the SerpAPI provider.
type SerpAPIConfig struct {
	APIKey   string
	Endpoint string
	// Engine defaults to "google".
	Engine string
	Client *httpclient.Client
}

// SerpAPI queries serpapi.com for organic Google results.
type SerpAPI struct {
	key      string
	endpoint string
	engine   string
	client   *httpclient.Client
}

type serpAPIResponse struct {
	OrganicResults []Result `json:"organic_results"`
	Error          string   `json:"error"`
}

// NewSerpAPI builds the provider. A missing client gets a default one with a 10s timeout.
func NewSerpAPI(cfg SerpAPIConfig) (*SerpAPI, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Engine == "" {
		cfg.Engine = "google"
	}
	if cfg.Client == nil {
		c, err := httpclient.New(httpclient.Config{})
		if err != nil {
			return nil, fmt.Errorf("serpapi client: %w", err)
		}
		cfg.Client = c
	}
	if _, err := url.Parse(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("serpapi endpoint: %w", err)
	}
	return &SerpAPI{
		key:      strings.TrimSpace(cfg.APIKey),
		endpoint: cfg.Endpoint,
		engine:   cfg.Engine,
		client:   cfg.Client,
	}, nil
}

// HasCredential reports whether a real API key is configured.
func (s *SerpAPI) HasCredential() bool {
	return s.key != "" && s.key != PlaceholderKey
}

// Search issues one GET and returns the organic results in provider order.
func (s *SerpAPI) Search(ctx context.Context, query string, num int) ([]Result, error) {
	if !s.HasCredential() {
		return nil, ErrNoCredential
	}

	u, _ := url.Parse(s.endpoint)
	q := u.Query()
	q.Set("engine", s.engine)
	q.Set("q", query)
	q.Set("api_key", s.key)
	if num > 0 {
		q.Set("num", strconv.Itoa(num))
	}
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Accept", "application/json")
	resp, err := s.client.Get(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("serpapi request: %w", redact(err, s.key))
	}
	body, err := s.client.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("serpapi response: %w", err)
	}

	var out serpAPIResponse
	if err := json.Unmarshal(body, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("serpapi: status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("serpapi decode: %w", err)
	}
	if out.Error != "" {
		return nil, &ProviderError{Message: out.Error}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi: status %d", resp.StatusCode)
	}
	return out.OrganicResults, nil
}

// redactedError hides the API key that transport errors echo back through the request URL.
type redactedError struct {
	err error
	key string
}

func (e *redactedError) Error() string {
	return strings.ReplaceAll(e.err.Error(), url.QueryEscape(e.key), "REDACTED")
}

func (e *redactedError) Unwrap() error { return e.err }

func redact(err error, key string) error {
	if key == "" {
		return err
	}
	return &redactedError{err: err, key: key}
}
