package serp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/FranksOps/leadscout/internal/metrics"
)

// ErrNoCredential reports that the provider has no usable API key.
var ErrNoCredential = errors.New("search provider credential missing or placeholder")

// Result is one organic search hit. Any field may be empty.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Provider runs web searches.
type Provider interface {
	Search(ctx context.Context, query string, num int) ([]Result, error)
}

// ProviderError is an error message returned by the search provider in an otherwise valid response.
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("search provider error: %s", e.Message)
}

// Collect runs query against p and never fails: every error is logged and turns
// into an empty result list.
func Collect(ctx context.Context, p Provider, logger *slog.Logger, query string, num int) []Result {
	if logger == nil {
		logger = slog.Default()
	}
	results, err := p.Search(ctx, query, num)
	if err != nil {
		var perr *ProviderError
		switch {
		case errors.Is(err, ErrNoCredential):
			logger.Warn("search skipped", "query", query, "err", err)
			metrics.RecordSearch("skipped")
		case errors.As(err, &perr):
			logger.Warn("search provider reported an error", "query", query, "message", perr.Message)
			metrics.RecordSearch("error")
		default:
			logger.Error("search failed", "query", query, "err", err)
			metrics.RecordSearch("error")
		}
		return []Result{}
	}
	metrics.RecordSearch("ok")
	if results == nil {
		results = []Result{}
	}
	return results
}

// Disabled is a Provider with no credential configured.
type Disabled struct{}

// HasCredential is always false.
func (Disabled) HasCredential() bool { return false }

// Search always returns ErrNoCredential.
func (Disabled) Search(context.Context, string, int) ([]Result, error) {
	return nil, ErrNoCredential
}
