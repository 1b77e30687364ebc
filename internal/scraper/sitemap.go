package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/oxffaa/gopher-parse-sitemap"
)

// maxSitemapDepth bounds sitemap index recursion.
const maxSitemapDepth = 2

// ContactPathHints are URL fragments that usually mark a page listing people or addresses.
var ContactPathHints = []string{"contact", "team", "about", "people", "partners", "portfolio"}

// SitemapReader locates contact-like pages of a site through its sitemap.
type SitemapReader struct {
	fetcher *Fetcher
	logger  *slog.Logger
}

// NewSitemapReader creates a reader that fetches sitemaps through fetcher.
func NewSitemapReader(fetcher *Fetcher, logger *slog.Logger) *SitemapReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &SitemapReader{fetcher: fetcher, logger: logger}
}

// ContactPages returns up to limit same-host URLs from the site's /sitemap.xml whose
// path contains one of ContactPathHints, in sitemap order. A missing or broken sitemap
// yields no pages and no error.
func (s *SitemapReader) ContactPages(ctx context.Context, siteURL string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	base, err := url.Parse(siteURL)
	if err != nil || base.Host == "" {
		return nil
	}

	locs, err := s.URLs(ctx, base.Scheme+"://"+base.Host+"/sitemap.xml")
	if err != nil {
		s.logger.Debug("sitemap unavailable", "site", siteURL, "err", err)
		return nil
	}

	var pages []string
	for _, loc := range locs {
		u, err := url.Parse(loc)
		if err != nil || !strings.EqualFold(u.Hostname(), base.Hostname()) {
			continue
		}
		if !hasContactHint(u.Path) {
			continue
		}
		pages = append(pages, loc)
		if len(pages) == limit {
			break
		}
	}
	return pages
}

// URLs fetches a sitemap or sitemap index and returns every page location it lists.
func (s *SitemapReader) URLs(ctx context.Context, sitemapURL string) ([]string, error) {
	return s.urls(ctx, sitemapURL, 0)
}

func (s *SitemapReader) urls(ctx context.Context, sitemapURL string, depth int) ([]string, error) {
	resp, err := s.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sitemap %s: status %d", sitemapURL, resp.StatusCode)
	}

	var urls []string
	err = sitemap.Parse(bytes.NewReader(resp.Body), func(e sitemap.Entry) error {
		urls = append(urls, e.GetLocation())
		return nil
	})
	if err == nil && len(urls) > 0 {
		return urls, nil
	}

	var nested []string
	indexErr := sitemap.ParseIndex(bytes.NewReader(resp.Body), func(e sitemap.IndexEntry) error {
		nested = append(nested, e.GetLocation())
		return nil
	})
	if indexErr != nil || len(nested) == 0 {
		return nil, fmt.Errorf("sitemap %s: not a sitemap or index", sitemapURL)
	}
	if depth >= maxSitemapDepth {
		return nil, fmt.Errorf("sitemap %s: index nesting too deep", sitemapURL)
	}

	for _, n := range nested {
		more, err := s.urls(ctx, n, depth+1)
		if err != nil {
			s.logger.Warn("nested sitemap failed", "url", n, "err", err)
			continue
		}
		urls = append(urls, more...)
	}
	return urls, nil
}

func hasContactHint(path string) bool {
	p := strings.ToLower(path)
	for _, hint := range ContactPathHints {
		if strings.Contains(p, hint) {
			return true
		}
	}
	return false
}
