package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsAuditor caches robots.txt per origin and answers allow/deny questions.
type RobotsAuditor struct {
	fetcher *Fetcher
	logger  *slog.Logger
	mu      sync.Mutex
	cache   map[string]*robotstxt.RobotsData
}

// NewRobotsAuditor creates an auditor that fetches robots.txt through fetcher.
func NewRobotsAuditor(fetcher *Fetcher, logger *slog.Logger) *RobotsAuditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RobotsAuditor{
		fetcher: fetcher,
		logger:  logger,
		cache:   make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether userAgent may fetch targetURL. Missing, unreadable or
// unparsable robots.txt files allow everything.
func (r *RobotsAuditor) Allowed(ctx context.Context, targetURL, userAgent string) (bool, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false, fmt.Errorf("invalid url: %w", err)
	}
	if u.Host == "" {
		return false, fmt.Errorf("invalid url: missing host in %q", targetURL)
	}

	data := r.lookup(ctx, u.Scheme+"://"+u.Host)
	if data == nil {
		return true, nil
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.FindGroup(userAgent).Test(path), nil
}

func (r *RobotsAuditor) lookup(ctx context.Context, origin string) *robotstxt.RobotsData {
	r.mu.Lock()
	defer r.mu.Unlock()

	if data, ok := r.cache[origin]; ok {
		return data
	}

	data, err := r.load(ctx, origin)
	if err != nil {
		r.logger.Debug("robots.txt unavailable, allowing", "origin", origin, "err", err)
	}
	r.cache[origin] = data
	return data
}

func (r *RobotsAuditor) load(ctx context.Context, origin string) (*robotstxt.RobotsData, error) {
	resp, err := r.fetcher.Fetch(ctx, origin+"/robots.txt")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, nil
	}
	data, err := robotstxt.FromBytes(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	return data, nil
}
