// Package pipeline builds the discovery, research and outreach components from
// configuration and runs them for the command line.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/FranksOps/leadscout/internal/config"
	"github.com/FranksOps/leadscout/internal/discovery"
	"github.com/FranksOps/leadscout/internal/extract"
	"github.com/FranksOps/leadscout/internal/fingerprint"
	"github.com/FranksOps/leadscout/internal/llm"
	"github.com/FranksOps/leadscout/internal/outreach"
	"github.com/FranksOps/leadscout/internal/research"
	"github.com/FranksOps/leadscout/internal/scraper"
	"github.com/FranksOps/leadscout/internal/serp"
	"github.com/FranksOps/leadscout/internal/storage"
	"github.com/FranksOps/leadscout/pkg/httpclient"
	"github.com/FranksOps/leadscout/pkg/proxy"
	"github.com/FranksOps/leadscout/pkg/ratelimit"
	"github.com/FranksOps/leadscout/pkg/useragent"
)

// SearchLimit caps the addresses returned by Search.
const SearchLimit = 10

// Pipeline holds the long-lived clients shared by every command.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	fetcher  *scraper.Fetcher
	sitemaps *scraper.SitemapReader
	search   serp.Provider
	llm      *llm.Client
	synth    *research.Synthesizer
	drafter  *outreach.Drafter
	profiles discovery.Profiles
	store    storage.Backend
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithStore exports every discovery run to b. The Pipeline closes b.
func WithStore(b storage.Backend) Option {
	return func(p *Pipeline) { p.store = b }
}

// WithProfiles replaces the built-in profile registry.
func WithProfiles(ps discovery.Profiles) Option {
	return func(p *Pipeline) { p.profiles = ps }
}

// New builds every client from cfg. No network calls are made.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return nil, err
	}

	searchClient, err := httpclient.New(httpclient.Config{Timeout: cfg.SearchTimeout})
	if err != nil {
		return nil, fmt.Errorf("search client: %w", err)
	}
	provider, err := serp.NewSerpAPI(serp.SerpAPIConfig{
		APIKey:   cfg.SerpAPIKey,
		Endpoint: cfg.SerpAPIEndpoint,
		Client:   searchClient,
	})
	if err != nil {
		return nil, err
	}

	completer, err := llm.New(llm.Config{
		APIKey:  cfg.OpenRouterAPIKey,
		BaseURL: cfg.LLMBaseURL,
		Timeout: cfg.LLMTimeout,
	})
	if err != nil {
		return nil, err
	}

	profiles := discovery.Builtins()
	if cfg.ProfilesFile != "" {
		if profiles, err = discovery.LoadProfiles(cfg.ProfilesFile); err != nil {
			return nil, err
		}
	}

	p := &Pipeline{
		cfg:      cfg,
		logger:   logger,
		fetcher:  fetcher,
		sitemaps: scraper.NewSitemapReader(fetcher, logger),
		search:   provider,
		llm:      completer,
		synth: research.NewSynthesizer(completer, research.SynthesizerConfig{
			ProfileModel: cfg.ProfileModel,
			ExtractModel: cfg.FastModel,
			Logger:       logger,
		}),
		drafter:  outreach.NewDrafter(completer, cfg.FastModel, logger),
		profiles: profiles,
	}
	for _, opt := range opts {
		opt(p)
	}

	if !provider.HasCredential() {
		logger.Warn("search provider not configured, live search disabled", "err", serp.ErrNoCredential)
	}
	if !completer.HasCredential() {
		logger.Warn("language model not configured, drafts and profiles degrade", "err", llm.ErrNoCredential)
	}
	return p, nil
}

func newFetcher(cfg *config.Config, logger *slog.Logger) (*scraper.Fetcher, error) {
	fp, err := fingerprint.Parse(cfg.TLSProfile)
	if err != nil {
		return nil, err
	}

	var proxies *proxy.Pool
	if cfg.ProxyFile != "" {
		proxies = proxy.NewPool(proxy.Config{})
		if err := proxies.LoadFile(cfg.ProxyFile); err != nil {
			return nil, fmt.Errorf("load proxies: %w", err)
		}
	}

	return scraper.NewFetcher(scraper.FetchConfig{
		Timeout:       cfg.FetchTimeout,
		UseCookieJar:  true,
		ProxyPool:     proxies,
		UAPool:        useragent.NewPool(cfg.UserAgents),
		Fingerprint:   fp,
		Limiter:       ratelimit.NewLimiter(cfg.FetchRPS),
		RespectRobots: cfg.RespectRobots,
		Logger:        logger,
	})
}

// Profiles returns the registry used to resolve profile names.
func (p *Pipeline) Profiles() discovery.Profiles { return p.profiles }

// EmailOptions overrides the selected profile for one run. Zero values keep the profile's.
type EmailOptions struct {
	Profile    string
	MinEmails  int
	MaxResults int
}

// Emails runs discovery for topic and exports the run when a store is configured.
// Export failures are logged; the run is still returned.
func (p *Pipeline) Emails(ctx context.Context, topic string, opts EmailOptions) (*discovery.Run, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, errors.New("query is missing")
	}

	prof, err := p.profiles.Get(opts.Profile)
	if err != nil {
		return nil, err
	}
	if opts.MinEmails > 0 {
		prof.MinEmails = opts.MinEmails
	}
	if opts.MaxResults > 0 {
		prof.MaxResults = opts.MaxResults
	}

	o, err := discovery.New(discovery.Config{
		Profile:  prof,
		Search:   p.search,
		Pages:    p.fetcher,
		Sitemaps: p.sitemaps,
		Logger:   p.logger,
	})
	if err != nil {
		return nil, err
	}

	run := o.Discover(ctx, topic)
	p.export(ctx, run)
	return run, nil
}

// Search is the quick lookup: snippet-only discovery returning at most SearchLimit addresses.
func (p *Pipeline) Search(ctx context.Context, topic string) ([]string, error) {
	run, err := p.Emails(ctx, topic, EmailOptions{Profile: discovery.ProfileQuick, MinEmails: SearchLimit})
	if err != nil {
		return nil, err
	}
	emails := run.Emails()
	if len(emails) > SearchLimit {
		emails = emails[:SearchLimit]
	}
	return emails, nil
}

// Draft writes an outreach email. It only fails on missing input.
func (p *Pipeline) Draft(ctx context.Context, topic, summary string) (string, error) {
	topic, summary = strings.TrimSpace(topic), strings.TrimSpace(summary)
	if topic == "" || summary == "" {
		return "", errors.New("missing required data")
	}
	return p.drafter.Draft(ctx, topic, summary), nil
}

// Research profiles up to companies companies of industry. Zero selects the default.
func (p *Pipeline) Research(ctx context.Context, industry string, companies int) (*research.Report, error) {
	r, err := research.NewResearcher(research.ResearcherConfig{
		Search:    p.search,
		Pages:     p.fetcher,
		Synth:     p.synth,
		Companies: companies,
		Logger:    p.logger,
	})
	if err != nil {
		return nil, err
	}
	return r.Research(ctx, industry)
}

// ContactEmails collects the addresses named in the profiles of report, in order.
func ContactEmails(report *research.Report) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range report.Companies {
		if c.Profile == nil {
			continue
		}
		for _, e := range extract.Emails(c.Profile.ContactInformation) {
			if key := strings.ToLower(e); !seen[key] {
				seen[key] = true
				out = append(out, e)
			}
		}
	}
	return out
}

func (p *Pipeline) export(ctx context.Context, run *discovery.Run) {
	if p.store == nil {
		return
	}
	entries := storage.NewEntries(run.ID, run.Topic, run.Records(), run.FinishedAt)
	if err := storage.SaveAll(ctx, p.store, entries); err != nil {
		p.logger.Error("export failed", "run_id", run.ID, "err", err)
		return
	}
	p.logger.Info("run exported", "run_id", run.ID, "entries", len(entries))
}

// Store returns the configured export backend, or nil.
func (p *Pipeline) Store() storage.Backend { return p.store }

// Close releases the export backend.
func (p *Pipeline) Close() error {
	if p.store == nil {
		return nil
	}
	return p.store.Close()
}
