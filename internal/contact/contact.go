package contact

import (
	"net/url"
	"strings"
)

// Origin identifies which stage of a discovery run produced a record.
type Origin string

const (
	OriginSeed     Origin = "seed"
	OriginSnippet  Origin = "snippet"
	OriginPage     Origin = "page"
	OriginFallback Origin = "fallback"
)

// Record is a single discovered email address together with where it was found.
// Records are created once and never mutated afterwards.
type Record struct {
	Email       string `json:"email"`
	SourceTitle string `json:"source_title"`
	SourceLink  string `json:"source_link"`
	Context     string `json:"context"`
	Origin      Origin `json:"origin"`
	// Synthetic marks fallback catalog entries that were not discovered on the web.
	Synthetic bool `json:"synthetic"`
}

// Domain returns the part of the address after the last '@', or "".
func (r Record) Domain() string {
	i := strings.LastIndex(r.Email, "@")
	if i < 0 {
		return ""
	}
	return r.Email[i+1:]
}

// Hostname returns the host portion of a URL, or the input unchanged if it cannot be parsed.
func Hostname(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Hostname() == "" {
		return link
	}
	return u.Hostname()
}
