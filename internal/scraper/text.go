package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/FranksOps/leadscout/internal/metrics"
)

// DefaultMaxChars caps Text output when the caller passes a non-positive limit.
const DefaultMaxChars = 8000

// TruncationMarker is appended to text cut at the character limit.
const TruncationMarker = "... [content truncated]"

// Text fetches pageURL and returns its visible text, whitespace-collapsed and
// cut to maxChars characters. A non-200 response yields a one-line diagnostic.
// Transport errors, bot walls and robots.txt denials yield "". Text never fails.
func (f *Fetcher) Text(ctx context.Context, pageURL string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	// One agent per page: robots.txt is read and checked as the agent that fetches.
	ua := f.config.UAPool.Next()
	ctx = context.WithValue(ctx, userAgentKey, ua)

	if f.robots != nil {
		allowed, err := f.robots.Allowed(ctx, pageURL, ua)
		if err != nil {
			f.logger.Debug("robots check failed", "url", pageURL, "err", err)
			return ""
		}
		if !allowed {
			f.logger.Info("skipping page disallowed by robots.txt", "url", pageURL)
			metrics.RecordFetch(hostOf(pageURL), 0, "robots", 0)
			return ""
		}
	}

	resp, err := f.Fetch(ctx, pageURL)
	if err != nil {
		f.logger.Warn("page fetch failed", "url", pageURL, "err", err)
		return ""
	}
	if resp.Blocked() {
		f.logger.Warn("page blocked by bot protection", "url", pageURL, "vendor", resp.BlockedBy)
		return ""
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Failed to retrieve content (Status code: %d)", resp.StatusCode)
	}

	text, err := VisibleText(resp.Body)
	if err != nil {
		f.logger.Warn("page parse failed", "url", pageURL, "err", err)
		return ""
	}
	return Truncate(text, maxChars)
}

// VisibleText parses an HTML document and returns its text nodes joined by
// single spaces, without script, style or noscript content.
func VisibleText(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, template").Remove()

	var b strings.Builder
	collectText(doc.Selection, &b)
	return strings.Join(strings.Fields(b.String()), " "), nil
}

func collectText(s *goquery.Selection, b *strings.Builder) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "#text":
			b.WriteString(c.Text())
			b.WriteByte(' ')
		case "#comment":
		default:
			collectText(c, b)
		}
	})
}

// Truncate cuts s to maxChars runes and appends TruncationMarker when anything was cut.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i] + TruncationMarker
		}
		n++
	}
	return s
}
