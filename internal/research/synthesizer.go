package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/FranksOps/leadscout/internal/llm"
)

const profilePrompt = `You are an expert market research analyst. Analyze the provided text dossier, which has been scraped from multiple web pages about '%s', and create a structured company profile.

Respond with a single JSON object with exactly these string keys:
- "company_name": the company's name
- "one_line_pitch": a single sentence describing what they do
- "key_people": founders and CEO, with names and titles if available
- "website": the official company website
- "funding_status": recent funding rounds, investors or funding stage
- "contact_information": any email, LinkedIn URL or physical address

If a specific piece of information is not found in the provided text, use the value "Information not found."
Base your entire answer ONLY on the text provided below.

--- TEXT DOSSIER ---
%s
---`

const companiesPrompt = `Analyze the following text from an article listing top companies.
Extract just the company names.
Respond with a single JSON object of the form {"companies": ["Company A", "Startup B", "Innovate C"]}.

--- TEXT ---
%s
---`

// DefaultMaxDossierChars caps the dossier sent to the model.
const DefaultMaxDossierChars = 24000

// SynthesizerConfig configures a Synthesizer.
type SynthesizerConfig struct {
	// ProfileModel writes company profiles.
	ProfileModel string
	// ExtractModel pulls company names out of list articles.
	ExtractModel    string
	MaxDossierChars int
	Logger          *slog.Logger
}

// Synthesizer turns text dossiers into structured company profiles.
type Synthesizer struct {
	llm             llm.Completer
	profileModel    string
	extractModel    string
	maxDossierChars int
	logger          *slog.Logger
}

// NewSynthesizer wraps c.
func NewSynthesizer(c llm.Completer, cfg SynthesizerConfig) *Synthesizer {
	if cfg.ProfileModel == "" {
		cfg.ProfileModel = llm.DefaultAnalysisModel
	}
	if cfg.ExtractModel == "" {
		cfg.ExtractModel = llm.DefaultFastModel
	}
	if cfg.MaxDossierChars <= 0 {
		cfg.MaxDossierChars = DefaultMaxDossierChars
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Synthesizer{
		llm:             c,
		profileModel:    cfg.ProfileModel,
		extractModel:    cfg.ExtractModel,
		maxDossierChars: cfg.MaxDossierChars,
		logger:          cfg.Logger,
	}
}

// Synthesize asks the model for a profile of company based only on dossier.
func (s *Synthesizer) Synthesize(ctx context.Context, company, dossier string) (CompanyProfile, error) {
	s.logger.Info("building company profile", "company", company, "dossier_chars", utf8.RuneCountInString(dossier))

	answer, err := s.llm.Complete(ctx, llm.Request{
		Purpose: "profile",
		Model:   s.profileModel,
		Prompt:  fmt.Sprintf(profilePrompt, company, clip(dossier, s.maxDossierChars)),
		JSON:    true,
	})
	if err != nil {
		return CompanyProfile{}, fmt.Errorf("profile %s: %w", company, err)
	}
	p, err := ParseProfile(answer)
	if err != nil {
		return CompanyProfile{}, fmt.Errorf("profile %s: %w", company, err)
	}
	return p, nil
}

// Render returns the markdown profile, or a one-line "AI profiling error" diagnostic.
func (s *Synthesizer) Render(ctx context.Context, company, dossier string) string {
	p, err := s.Synthesize(ctx, company, dossier)
	if err != nil {
		s.logger.Warn("profile synthesis failed", "company", company, "err", err)
		return Diagnostic(err)
	}
	return p.Markdown()
}

// Diagnostic formats a synthesis failure for display in place of a profile.
func Diagnostic(err error) string {
	return "AI profiling error: " + err.Error()
}

type companyList struct {
	Companies []string `json:"companies"`
}

// ExtractCompanies asks the model for the company names listed in text. Names are
// trimmed and deduplicated case-insensitively, keeping the model's order.
func (s *Synthesizer) ExtractCompanies(ctx context.Context, text string) ([]string, error) {
	answer, err := s.llm.Complete(ctx, llm.Request{
		Purpose: "companies",
		Model:   s.extractModel,
		Prompt:  fmt.Sprintf(companiesPrompt, clip(text, s.maxDossierChars)),
		JSON:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("extract companies: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(stripFence(answer))))
	dec.DisallowUnknownFields()
	var list companyList
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("extract companies: %w: %v", ErrNoCompanies, err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, n := range list.Companies {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, n)
	}
	if len(names) == 0 {
		return nil, ErrNoCompanies
	}
	return names, nil
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
