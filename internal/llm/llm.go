package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/FranksOps/leadscout/internal/metrics"
	"github.com/FranksOps/leadscout/pkg/httpclient"
)

const (
	// DefaultBaseURL points the OpenAI-compatible client at OpenRouter.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// PlaceholderKey is the value shipped in sample configuration files.
	PlaceholderKey = "YOUR_OPENROUTER_API_KEY"

	DefaultAnalysisModel = "anthropic/claude-3-sonnet"
	DefaultFastModel     = "anthropic/claude-3-haiku"

	defaultTimeout = 60 * time.Second
)

var (
	// ErrNoCredential is returned without a network call when no real API key is configured.
	ErrNoCredential = errors.New("language model credential missing or placeholder")
	// ErrEmptyCompletion is returned when the endpoint answers without any choices.
	ErrEmptyCompletion = errors.New("language model returned no choices")
)

// Request is one single-message chat completion.
type Request struct {
	// Purpose labels the call in metrics and logs, e.g. "profile".
	Purpose string
	Model   string
	Prompt  string
	// JSON asks the endpoint for a JSON object response.
	JSON bool
}

// Completer produces chat completions.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config configures Client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client is a Completer backed by an OpenAI-compatible endpoint.
type Client struct {
	api *openai.Client
	key string
}

// New builds a Client. It does not contact the endpoint.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	hc, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("llm http client: %w", err)
	}

	key := strings.TrimSpace(cfg.APIKey)
	oc := openai.DefaultConfig(key)
	oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	oc.HTTPClient = hc.Client

	return &Client{api: openai.NewClientWithConfig(oc), key: key}, nil
}

// HasCredential reports whether a real API key is configured.
func (c *Client) HasCredential() bool {
	return c.key != "" && c.key != PlaceholderKey
}

// Complete sends req as a single user message and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if !c.HasCredential() {
		return "", ErrNoCredential
	}
	out, err := c.complete(ctx, req)
	metrics.RecordCompletion(req.Purpose, err)
	return out, err
}

func (c *Client) complete(ctx context.Context, req Request) (string, error) {
	creq := openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	}
	if req.JSON {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := c.api.CreateChatCompletion(ctx, creq)
	if err != nil {
		return "", fmt.Errorf("chat completion (%s): %w", req.Model, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
