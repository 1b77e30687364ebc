package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FranksOps/leadscout/internal/contact"
	"github.com/FranksOps/leadscout/internal/extract"
	"github.com/FranksOps/leadscout/internal/metrics"
	"github.com/FranksOps/leadscout/internal/query"
	"github.com/FranksOps/leadscout/internal/serp"
	"github.com/FranksOps/leadscout/pkg/ratelimit"
)

// LinkedPageContext is the context of emails found by fetching a search result's page.
const LinkedPageContext = "Found on linked page"

// TextSource returns cleaned page text. It never fails; errors become "" or a diagnostic.
type TextSource interface {
	Text(ctx context.Context, url string, maxChars int) string
}

// PageLister proposes extra pages of a seed site worth scanning.
type PageLister interface {
	ContactPages(ctx context.Context, siteURL string, limit int) []string
}

// credentialed is implemented by providers that can tell whether they are configured.
type credentialed interface {
	HasCredential() bool
}

// Config wires an Orchestrator.
type Config struct {
	Profile Profile
	// Search defaults to serp.Disabled.
	Search serp.Provider
	Pages  TextSource
	// Sitemaps is required only when Profile.SitemapPages > 0.
	Sitemaps PageLister
	Logger   *slog.Logger
}

// Orchestrator runs the seed, search and fallback phases for a topic.
type Orchestrator struct {
	profile  Profile
	catalog  []contact.Record
	search   serp.Provider
	pages    TextSource
	sitemaps PageLister
	logger   *slog.Logger
	sleep    func(context.Context, time.Duration) error
}

// New validates cfg and builds an Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Pages == nil {
		return nil, errors.New("discovery: text source is required")
	}
	p := cfg.Profile.WithDefaults()
	if p.Name == "" {
		p.Name = ProfileStandard
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}
	if p.SitemapPages > 0 && cfg.Sitemaps == nil {
		return nil, fmt.Errorf("discovery: profile %s wants sitemap pages but no sitemap reader is configured", p.Name)
	}
	catalog, err := Catalog(p.Catalog)
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}
	if cfg.Search == nil {
		cfg.Search = serp.Disabled{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Orchestrator{
		profile:  p,
		catalog:  catalog,
		search:   cfg.Search,
		pages:    cfg.Pages,
		sitemaps: cfg.Sitemaps,
		logger:   cfg.Logger.With("profile", p.Name),
		sleep:    ratelimit.Sleep,
	}, nil
}

// Profile returns the effective profile, defaults applied.
func (o *Orchestrator) Profile() Profile { return o.profile }

// Discover runs all phases for topic. It never fails: transport problems reduce
// the live yield and the fallback catalog tops the run up to MinEmails.
// Cancelling ctx stops live discovery but still applies the fallback.
func (o *Orchestrator) Discover(ctx context.Context, topic string) *Run {
	run := newRun(topic, o.profile)
	logger := o.logger.With("run_id", run.ID, "topic", topic)
	logger.Info("discovery started", "min_emails", run.MinEmails, "max_results", run.MaxResults)

	o.seedPhase(ctx, run, logger)

	if run.short() && ctx.Err() == nil {
		o.searchPhase(ctx, run, logger)
	}

	if run.short() {
		o.fallbackPhase(run, logger)
	}

	run.FinishedAt = time.Now().UTC()
	logger.Info("discovery finished",
		"emails", run.Len(),
		"synthetic", run.Synthetic(),
		"queries", run.Queries,
		"fetches", run.Fetches,
		"total_hits", run.TotalHits,
		"duration", run.Duration(),
	)
	return run
}

func (o *Orchestrator) seedPhase(ctx context.Context, run *Run, logger *slog.Logger) {
	sites := o.profile.SeedSites
	if len(sites) == 0 {
		return
	}

	prefetched := o.prefetchSeeds(ctx, run, sites)

	for i, site := range sites {
		if !run.short() || ctx.Err() != nil {
			return
		}
		logger.Debug("checking seed site", "site", site)

		var text string
		if prefetched != nil {
			text = prefetched[i]
		} else {
			text = o.fetch(ctx, run, site, o.profile.SeedMaxChars)
		}
		o.scanSeed(run, site, text, logger)

		if o.profile.SitemapPages <= 0 || !run.short() {
			continue
		}
		for _, page := range o.sitemaps.ContactPages(ctx, site, o.profile.SitemapPages) {
			if !run.short() || ctx.Err() != nil {
				break
			}
			o.scanSeed(run, page, o.fetch(ctx, run, page, o.profile.SeedMaxChars), logger)
		}
	}
}

// prefetchSeeds fetches every seed page up front when SeedConcurrency > 1.
// Results are indexed by seed position so attribution stays in seed order.
func (o *Orchestrator) prefetchSeeds(ctx context.Context, run *Run, sites []string) []string {
	if o.profile.SeedConcurrency <= 1 || len(sites) < 2 {
		return nil
	}
	texts := make([]string, len(sites))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.profile.SeedConcurrency)
	for i, site := range sites {
		g.Go(func() error {
			texts[i] = o.pages.Text(gctx, site, o.profile.SeedMaxChars)
			return nil
		})
	}
	_ = g.Wait()
	run.Fetches += len(sites)
	return texts
}

func (o *Orchestrator) scanSeed(run *Run, link, text string, logger *slog.Logger) {
	title := fmt.Sprintf(o.profile.SeedTitleFormat, contact.Hostname(link))
	for _, email := range extract.Emails(text) {
		snippet, ok := extract.Context(text, email, o.profile.ContextWindow)
		if !ok {
			snippet = o.profile.SeedContextFallback
		}
		o.record(run, contact.Record{
			Email:       email,
			SourceTitle: title,
			SourceLink:  link,
			Context:     snippet,
			Origin:      contact.OriginSeed,
		}, logger)
	}
}

func (o *Orchestrator) searchPhase(ctx context.Context, run *Run, logger *slog.Logger) {
	if c, ok := o.search.(credentialed); ok && !c.HasCredential() {
		logger.Warn("search phase skipped", "err", serp.ErrNoCredential)
		return
	}

	for i, q := range query.Plan(run.Topic, o.profile.Phrases) {
		if !o.wantsSearch(run) || ctx.Err() != nil {
			return
		}
		if i > 0 && o.profile.Pause > 0 {
			if err := o.sleep(ctx, o.profile.Pause); err != nil {
				return
			}
		}

		logger.Debug("searching", "query", q)
		results := serp.Collect(ctx, o.search, logger, q, o.profile.ResultsPerQuery)
		run.Queries++

		for _, res := range results {
			o.scanResult(ctx, run, res, logger)
			if !o.wantsSearch(run) {
				return
			}
		}
	}
}

// wantsSearch is the search phase's stopping rule, checked before every query
// and after every result.
func (o *Orchestrator) wantsSearch(run *Run) bool {
	return run.short() && run.TotalHits < run.MaxResults
}

func (o *Orchestrator) scanResult(ctx context.Context, run *Run, res serp.Result, logger *slog.Logger) {
	for _, email := range extract.Emails(res.Snippet) {
		run.TotalHits++
		o.record(run, contact.Record{
			Email:       email,
			SourceTitle: res.Title,
			SourceLink:  res.Link,
			Context:     res.Snippet,
			Origin:      contact.OriginSnippet,
		}, logger)
	}

	if !o.profile.ScanPages || !run.short() || res.Link == "" || ctx.Err() != nil {
		return
	}

	text := o.fetch(ctx, run, res.Link, o.profile.PageMaxChars)
	for _, email := range extract.Emails(text) {
		run.TotalHits++
		o.record(run, contact.Record{
			Email:       email,
			SourceTitle: res.Title,
			SourceLink:  res.Link,
			Context:     LinkedPageContext,
			Origin:      contact.OriginPage,
		}, logger)
	}
}

func (o *Orchestrator) fallbackPhase(run *Run, logger *slog.Logger) {
	added := 0
	for _, rec := range o.catalog {
		if !run.short() {
			break
		}
		if o.record(run, rec, logger) {
			added++
		}
	}
	if added > 0 {
		logger.Info("added fallback contacts", "count", added, "catalog", o.profile.Catalog)
	}
	if run.short() {
		logger.Warn("fallback catalog exhausted below target", "emails", run.Len(), "min_emails", run.MinEmails)
	}
}

func (o *Orchestrator) fetch(ctx context.Context, run *Run, url string, maxChars int) string {
	run.Fetches++
	return o.pages.Text(ctx, url, maxChars)
}

func (o *Orchestrator) record(run *Run, rec contact.Record, logger *slog.Logger) bool {
	if !run.add(rec) {
		return false
	}
	metrics.RecordContact(string(rec.Origin))
	logger.Debug("contact recorded", "email", rec.Email, "origin", rec.Origin, "source", rec.SourceLink)
	return true
}
