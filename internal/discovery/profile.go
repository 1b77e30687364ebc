package discovery

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/FranksOps/leadscout/internal/query"
)

// Defaults applied to zero-valued Profile fields.
const (
	DefaultMinEmails     = 10
	DefaultMaxResults    = 50
	DefaultPause         = time.Second
	DefaultMaxChars      = 8000
	DefaultContextWindow = 200
)

// Profile parameterizes one discovery strategy.
type Profile struct {
	Name      string          `yaml:"name"`
	SeedSites []string        `yaml:"seed_sites"`
	Phrases   query.PhraseSet `yaml:"phrases"`
	// MinEmails is the yield target; reaching it ends every phase early.
	MinEmails int `yaml:"min_emails"`
	// MaxResults caps email hits counted during the search phase.
	MaxResults int `yaml:"max_results"`
	// ResultsPerQuery is the num hint passed to the search provider; 0 leaves it to the provider.
	ResultsPerQuery int `yaml:"results_per_query"`
	// SeedTitleFormat receives the seed site's host.
	SeedTitleFormat     string `yaml:"seed_title_format"`
	SeedContextFallback string `yaml:"seed_context_fallback"`
	SeedMaxChars        int    `yaml:"seed_max_chars"`
	PageMaxChars        int    `yaml:"page_max_chars"`
	ContextWindow       int    `yaml:"context_window"`
	// ScanPages fetches result pages when snippets alone fall short.
	ScanPages bool `yaml:"scan_pages"`
	// Pause separates consecutive search queries. Negative disables it.
	Pause   time.Duration `yaml:"pause"`
	Catalog string        `yaml:"catalog"`
	// SitemapPages adds up to this many contact-like pages per seed site from its sitemap.
	SitemapPages int `yaml:"sitemap_pages"`
	// SeedConcurrency > 1 prefetches seed pages in parallel.
	SeedConcurrency int `yaml:"seed_concurrency"`
}

// Built-in profile names.
const (
	ProfileStandard = "standard"
	ProfileInvestor = "investor"
	ProfileQuick    = "quick"
)

var investorDatabases = []string{
	"https://investorhunt.co/markets/email",
	"https://ramp.com/vc-database/fintech-vc-angel-list",
	"https://www.failory.com/fintech-investors",
}

// Standard scrapes investor databases and directories, then runs general contact searches.
var Standard = Profile{
	Name:                ProfileStandard,
	SeedSites:           append(append([]string{}, investorDatabases...), "https://www.crunchbase.com", "https://www.linkedin.com"),
	Phrases:             query.Standard,
	ResultsPerQuery:     10,
	SeedTitleFormat:     "From %s",
	SeedContextFallback: "Found on website",
	ScanPages:           true,
	Catalog:             CatalogGeneric,
}

// Investor targets investors and leadership with the deep phrase set.
var Investor = Profile{
	Name:                ProfileInvestor,
	SeedSites:           append([]string{}, investorDatabases...),
	Phrases:             query.Deep,
	ResultsPerQuery:     100,
	SeedTitleFormat:     "Investor from %s",
	SeedContextFallback: "Found on investor database",
	ScanPages:           true,
	Catalog:             CatalogNamed,
}

// Quick reads search snippets only.
var Quick = Profile{
	Name:    ProfileQuick,
	Phrases: query.Quick,
	Catalog: CatalogQuick,
}

// Profiles is a registry of named profiles.
type Profiles map[string]Profile

// Builtins returns a fresh registry holding the built-in profiles.
func Builtins() Profiles {
	return Profiles{
		ProfileStandard: Standard,
		ProfileInvestor: Investor,
		ProfileQuick:    Quick,
	}
}

// Get returns the named profile with defaults applied. Empty means standard.
func (ps Profiles) Get(name string) (Profile, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = ProfileStandard
	}
	p, ok := ps[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown discovery profile %q (have %s)", name, strings.Join(ps.Names(), ", "))
	}
	return p.WithDefaults(), nil
}

// Names lists the registered profile names in sorted order.
func (ps Profiles) Names() []string {
	names := make([]string, 0, len(ps))
	for n := range ps {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WithDefaults fills zero-valued fields.
func (p Profile) WithDefaults() Profile {
	if p.MinEmails <= 0 {
		p.MinEmails = DefaultMinEmails
	}
	if p.MaxResults <= 0 {
		p.MaxResults = DefaultMaxResults
	}
	if p.Pause == 0 {
		p.Pause = DefaultPause
	}
	if p.SeedMaxChars <= 0 {
		p.SeedMaxChars = DefaultMaxChars
	}
	if p.PageMaxChars <= 0 {
		p.PageMaxChars = DefaultMaxChars
	}
	if p.ContextWindow <= 0 {
		p.ContextWindow = DefaultContextWindow
	}
	if p.SeedTitleFormat == "" {
		p.SeedTitleFormat = "From %s"
	}
	if p.SeedContextFallback == "" {
		p.SeedContextFallback = "Found on website"
	}
	if p.Catalog == "" {
		p.Catalog = CatalogGeneric
	}
	return p
}

// Validate reports configuration mistakes that would otherwise surface mid-run.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile name is required")
	}
	if strings.Count(p.SeedTitleFormat, "%s") != 1 {
		return fmt.Errorf("profile %s: seed_title_format must contain exactly one %%s", p.Name)
	}
	if _, err := Catalog(p.Catalog); err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}
	return nil
}

type profileFile struct {
	Profiles []yaml.Node `yaml:"profiles"`
}

type profileHeader struct {
	Name      string `yaml:"name"`
	Base      string `yaml:"base"`
	PhraseSet string `yaml:"phrase_set"`
}

// LoadProfiles reads a YAML file of profiles and returns them merged over the
// built-ins. An entry may name a "base" profile whose fields it inherits and a
// built-in "phrase_set" in place of an inline phrases block.
func LoadProfiles(path string) (Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	return ParseProfiles(data)
}

// ParseProfiles is LoadProfiles for an in-memory document.
func ParseProfiles(data []byte) (Profiles, error) {
	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}

	registry := Builtins()
	for i := range file.Profiles {
		node := &file.Profiles[i]

		var hdr profileHeader
		if err := node.Decode(&hdr); err != nil {
			return nil, fmt.Errorf("profile %d: %w", i, err)
		}
		name := strings.ToLower(strings.TrimSpace(hdr.Name))
		if name == "" {
			return nil, fmt.Errorf("profile %d: name is required", i)
		}

		var p Profile
		if hdr.Base != "" {
			base, ok := registry[strings.ToLower(hdr.Base)]
			if !ok {
				return nil, fmt.Errorf("profile %s: unknown base %q", name, hdr.Base)
			}
			p = base
			p.SeedSites = append([]string(nil), base.SeedSites...)
		} else if existing, ok := registry[name]; ok {
			p = existing
		}
		if hdr.PhraseSet != "" {
			set, err := query.Builtin(hdr.PhraseSet)
			if err != nil {
				return nil, fmt.Errorf("profile %s: %w", name, err)
			}
			p.Phrases = set
		}
		if err := node.Decode(&p); err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
		p.Name = name

		if err := p.WithDefaults().Validate(); err != nil {
			return nil, err
		}
		registry[name] = p
	}
	return registry, nil
}
