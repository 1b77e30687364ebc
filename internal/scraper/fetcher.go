package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/FranksOps/leadscout/internal/bypass"
	"github.com/FranksOps/leadscout/internal/fingerprint"
	"github.com/FranksOps/leadscout/internal/metrics"
	"github.com/FranksOps/leadscout/pkg/httpclient"
	"github.com/FranksOps/leadscout/pkg/proxy"
	"github.com/FranksOps/leadscout/pkg/ratelimit"
	"github.com/FranksOps/leadscout/pkg/useragent"
)

type contextKey string

const (
	proxyKey     contextKey = "proxy_url"
	userAgentKey contextKey = "user_agent"
)

// DefaultTimeout bounds every page fetch.
const DefaultTimeout = 10 * time.Second

// FetchConfig configures page fetching.
type FetchConfig struct {
	Timeout      time.Duration
	MaxRedirects int
	UseCookieJar bool
	ProxyPool    *proxy.Pool
	UAPool       *useragent.Pool
	Fingerprint  fingerprint.Profile
	Limiter      *ratelimit.Limiter
	// RespectRobots skips pages disallowed by the host's robots.txt.
	RespectRobots bool
	Logger        *slog.Logger
}

// Response is the raw outcome of one GET.
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
	FetchedAt  time.Time
	// BlockedBy names the bot-protection vendor whose challenge page was served, if any.
	BlockedBy string
}

// Blocked reports whether the response is a bot-protection wall.
func (r *Response) Blocked() bool { return r.BlockedBy != "" }

// Fetcher performs single, unretried page fetches.
type Fetcher struct {
	config FetchConfig
	client *httpclient.Client
	logger *slog.Logger
	robots *RobotsAuditor
}

// NewFetcher initializes a Fetcher. The transport is built once so connections
// and cookies are reused for the lifetime of the Fetcher.
func NewFetcher(cfg FetchConfig) (*Fetcher, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	// The proxy for a request travels in its context so one transport can rotate proxies.
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if u, ok := req.Context().Value(proxyKey).(*url.URL); ok && u != nil {
			return u, nil
		}
		return http.ProxyFromEnvironment(req)
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint, proxyFunc)
	if err != nil {
		return nil, fmt.Errorf("setup transport: %w", err)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		UseCookieJar: cfg.UseCookieJar,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	f := &Fetcher{
		config: cfg,
		client: client,
		logger: cfg.Logger,
	}
	if cfg.RespectRobots {
		f.robots = NewRobotsAuditor(f, cfg.Logger)
	}
	return f, nil
}

// Fetch executes a GET against targetURL with a browser User-Agent, the one
// pinned in ctx by Text when present. Transport
// failures are returned as errors; any HTTP response, including non-2xx, is a Response.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*Response, error) {
	domain := hostOf(targetURL)

	if err := f.config.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var activeProxy *url.URL
	if f.config.ProxyPool != nil {
		activeProxy = f.config.ProxyPool.Next()
	}
	if activeProxy != nil {
		ctx = context.WithValue(ctx, proxyKey, activeProxy)
	}

	header := http.Header{}
	ua, _ := ctx.Value(userAgentKey).(string)
	if ua == "" {
		ua = f.config.UAPool.Next()
	}
	header.Set("User-Agent", ua)
	header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	header.Set("Accept-Language", "en-US,en;q=0.5")

	start := time.Now()
	f.logger.Debug("fetching", "url", targetURL)

	resp, err := f.client.Get(ctx, targetURL, header)
	if err != nil {
		if activeProxy != nil {
			_ = f.config.ProxyPool.Report(activeProxy, false)
		}
		metrics.RecordFetch(domain, 0, "error", time.Since(start))
		return nil, fmt.Errorf("fetch %s: %w", targetURL, err)
	}
	if activeProxy != nil {
		_ = f.config.ProxyPool.Report(activeProxy, true)
	}

	body, err := f.client.ReadBody(resp)
	out := &Response{
		URL:        targetURL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Duration:   time.Since(start),
		FetchedAt:  start.UTC(),
	}
	if err != nil {
		metrics.RecordFetch(domain, resp.StatusCode, "error", out.Duration)
		return out, fmt.Errorf("fetch %s: %w", targetURL, err)
	}

	failure := ""
	if vendor, blocked := bypass.Detect(resp.StatusCode, resp.Header, body); blocked {
		out.BlockedBy = vendor
		failure = "blocked"
	}
	metrics.RecordFetch(domain, resp.StatusCode, failure, out.Duration)

	return out, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
