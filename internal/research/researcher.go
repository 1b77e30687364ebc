package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/FranksOps/leadscout/internal/analyzer"
	"github.com/FranksOps/leadscout/internal/serp"
	"github.com/FranksOps/leadscout/pkg/ratelimit"
)

// Research defaults.
const (
	DefaultCompanies      = 5
	DefaultSourcesPerName = 2
	DefaultPause          = time.Second
	DefaultPageMaxChars   = 8000
	DefaultSourceMaxChars = 3000
)

// ErrNoCompanyList is returned when the list search yields nothing to read.
var ErrNoCompanyList = errors.New("no company list found")

// dossierTerms mark the sentences kept when a source page is condensed.
var dossierTerms = []string{"founder", "founded", "ceo", "funding", "raised", "series", "seed", "investor", "contact", "email", "headquarter", "website"}

// TextSource returns cleaned page text and never fails.
type TextSource interface {
	Text(ctx context.Context, url string, maxChars int) string
}

// ResearcherConfig configures a Researcher.
type ResearcherConfig struct {
	Search serp.Provider
	Pages  TextSource
	Synth  *Synthesizer
	// Companies caps how many listed companies are profiled.
	Companies      int
	SourcesPerName int
	// Pause separates consecutive companies. Negative disables it.
	Pause          time.Duration
	PageMaxChars   int
	SourceMaxChars int
	Logger         *slog.Logger
}

// Researcher profiles the top companies of an industry.
type Researcher struct {
	cfg    ResearcherConfig
	logger *slog.Logger
	sleep  func(context.Context, time.Duration) error
}

// CompanyReport is the outcome for one company. Exactly one of Profile and Error is set.
type CompanyReport struct {
	Name     string          `json:"name"`
	Sources  []string        `json:"sources"`
	Profile  *CompanyProfile `json:"profile,omitempty"`
	Markdown string          `json:"markdown"`
	Error    string          `json:"error,omitempty"`
	// Signals counts the dossier terms found in the condensed sources.
	Signals []analyzer.TermMatch `json:"signals,omitempty"`
}

// Report is the outcome of one Research call.
type Report struct {
	Industry  string          `json:"industry"`
	ListURL   string          `json:"list_url"`
	Companies []CompanyReport `json:"companies"`
}

// NewResearcher validates cfg.
func NewResearcher(cfg ResearcherConfig) (*Researcher, error) {
	if cfg.Pages == nil || cfg.Synth == nil {
		return nil, errors.New("research: text source and synthesizer are required")
	}
	if cfg.Search == nil {
		cfg.Search = serp.Disabled{}
	}
	if cfg.Companies <= 0 {
		cfg.Companies = DefaultCompanies
	}
	if cfg.SourcesPerName <= 0 {
		cfg.SourcesPerName = DefaultSourcesPerName
	}
	if cfg.Pause == 0 {
		cfg.Pause = DefaultPause
	}
	if cfg.PageMaxChars <= 0 {
		cfg.PageMaxChars = DefaultPageMaxChars
	}
	if cfg.SourceMaxChars <= 0 {
		cfg.SourceMaxChars = DefaultSourceMaxChars
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Researcher{cfg: cfg, logger: cfg.Logger, sleep: ratelimit.Sleep}, nil
}

// Research finds a "top companies" list for industry, extracts the company names and
// profiles the first few. Only a missing list or an empty name extraction is an error;
// per-company failures are reported inline.
func (r *Researcher) Research(ctx context.Context, industry string) (*Report, error) {
	industry = strings.TrimSpace(industry)
	if industry == "" {
		return nil, errors.New("research: industry is required")
	}
	logger := r.logger.With("industry", industry)

	lists := serp.Collect(ctx, r.cfg.Search, logger, fmt.Sprintf("top %s companies list", industry), 10)
	if len(lists) == 0 || lists[0].Link == "" {
		return nil, ErrNoCompanyList
	}
	report := &Report{Industry: industry, ListURL: lists[0].Link}

	names, err := r.cfg.Synth.ExtractCompanies(ctx, r.cfg.Pages.Text(ctx, report.ListURL, r.cfg.PageMaxChars))
	if err != nil {
		return nil, err
	}
	if len(names) > r.cfg.Companies {
		names = names[:r.cfg.Companies]
	}
	logger.Info("profiling companies", "count", len(names), "list", report.ListURL)

	for i, name := range names {
		if i > 0 && r.cfg.Pause > 0 {
			if err := r.sleep(ctx, r.cfg.Pause); err != nil {
				break
			}
		}
		report.Companies = append(report.Companies, r.profile(ctx, industry, name))
	}
	return report, nil
}

func (r *Researcher) profile(ctx context.Context, industry, name string) CompanyReport {
	results := serp.Collect(ctx, r.cfg.Search, r.logger, fmt.Sprintf("%q %s", name, industry), r.cfg.SourcesPerName)
	if len(results) > r.cfg.SourcesPerName {
		results = results[:r.cfg.SourcesPerName]
	}

	out := CompanyReport{Name: name}
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n\n", name)
	terms := append([]string{name}, dossierTerms...)
	var condensed []string
	for _, res := range results {
		if res.Link == "" {
			continue
		}
		out.Sources = append(out.Sources, res.Link)
		text := analyzer.Condense(r.cfg.Pages.Text(ctx, res.Link, r.cfg.PageMaxChars), terms, r.cfg.SourceMaxChars)
		fmt.Fprintf(&b, "--- Source: %s ---\n%s\n---\n\n", res.Link, text)
		condensed = append(condensed, text)
	}
	out.Signals = analyzer.FindTermMatches(strings.Join(condensed, "\n"), dossierTerms)

	p, err := r.cfg.Synth.Synthesize(ctx, name, b.String())
	if err != nil {
		r.logger.Warn("profile synthesis failed", "company", name, "err", err)
		out.Error = err.Error()
		out.Markdown = Diagnostic(err)
		return out
	}
	out.Profile = &p
	out.Markdown = p.Markdown()
	return out
}
