package report

import (
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"io"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"

	"github.com/FranksOps/leadscout/internal/contact"
	"github.com/FranksOps/leadscout/internal/discovery"
	"github.com/FranksOps/leadscout/internal/storage"
)

// MaxContextChars bounds the context shown per bullet.
const MaxContextChars = 100

// Summary contains aggregated figures about one discovery run, or about a set of
// stored entries.
type Summary struct {
	RunID     string                 `json:"run_id,omitempty"`
	Topic     string                 `json:"topic,omitempty"`
	Profile   string                 `json:"profile,omitempty"`
	Total     int                    `json:"total"`
	Real      int                    `json:"real"`
	Synthetic int                    `json:"synthetic"`
	ByOrigin  map[contact.Origin]int `json:"by_origin"`
	Domains   int                    `json:"distinct_domains"`
	TotalHits int                    `json:"total_hits"`
	Queries   int                    `json:"queries"`
	Fetches   int                    `json:"fetches"`
	StartTime time.Time              `json:"start_time"`
	EndTime   time.Time              `json:"end_time"`
	Duration  time.Duration          `json:"duration_ns"`
	Contacts  []contact.Record       `json:"contacts"`
}

// GenerateSummary aggregates a finished run.
func GenerateSummary(run *discovery.Run) Summary {
	s := tally(run.Records())
	s.RunID = run.ID
	s.Topic = run.Topic
	s.Profile = run.Profile
	s.TotalHits = run.TotalHits
	s.Queries = run.Queries
	s.Fetches = run.Fetches
	s.StartTime = run.StartedAt
	s.EndTime = run.FinishedAt
	s.Duration = run.Duration()
	return s
}

// SummarizeEntries aggregates stored entries. Start and end are the oldest and
// newest export times.
func SummarizeEntries(entries []*storage.Entry) Summary {
	records := make([]contact.Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, e.Record)
	}
	s := tally(records)
	if len(entries) == 0 {
		return s
	}

	s.StartTime = entries[0].CreatedAt
	s.EndTime = entries[0].CreatedAt
	runs := make(map[string]bool)
	topics := make(map[string]bool)
	for _, e := range entries {
		runs[e.RunID] = true
		topics[e.Topic] = true
		if e.CreatedAt.Before(s.StartTime) {
			s.StartTime = e.CreatedAt
		}
		if e.CreatedAt.After(s.EndTime) {
			s.EndTime = e.CreatedAt
		}
	}
	if len(runs) == 1 {
		s.RunID = entries[0].RunID
	}
	if len(topics) == 1 {
		s.Topic = entries[0].Topic
	}
	s.Duration = s.EndTime.Sub(s.StartTime)
	return s
}

func tally(records []contact.Record) Summary {
	s := Summary{ByOrigin: make(map[contact.Origin]int), Contacts: records}
	domains := make(map[string]bool)
	for _, r := range records {
		s.Total++
		if r.Synthetic {
			s.Synthetic++
		} else {
			s.Real++
		}
		s.ByOrigin[r.Origin]++
		if d := strings.ToLower(r.Domain()); d != "" {
			domains[d] = true
		}
	}
	s.Domains = len(domains)
	return s
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

// BulletContext returns the context line shown for r, or "" when there is none
// worth showing.
func BulletContext(r contact.Record) string {
	c := r.Context
	if c == "" || c == discovery.LinkedPageContext {
		return ""
	}
	if utf8.RuneCountInString(c) > MaxContextChars {
		c = string([]rune(c)[:MaxContextChars-3]) + "..."
	}
	return c
}

var funcs = template.FuncMap{"context": BulletContext}

const textTmpl = `Leadscout Run Summary
---------------------
{{- if .Topic}}
Topic:         {{.Topic}}{{if .Profile}} ({{.Profile}}){{end}}
{{- end}}
{{- if .RunID}}
Run:           {{.RunID}}
{{- end}}
Time:          {{.StartTime.Format "2006-01-02 15:04:05"}} - {{.EndTime.Format "2006-01-02 15:04:05"}}
Duration:      {{.Duration}}
Contacts:      {{.Total}} ({{.Real}} real, {{.Synthetic}} sample)
Domains:       {{.Domains}}
Queries:       {{.Queries}} ({{.TotalHits}} hits, {{.Fetches}} fetches)

By Origin:
{{- range $origin, $count := .ByOrigin}}
  {{$origin}}: {{$count}}
{{- else}}
  None
{{- end}}
`

const bulletsTmpl = `
FOUND EMAILS:
=========================================
{{- range .}}

- {{.Email}}
  Source: {{.SourceTitle}}
  Link: {{.SourceLink}}
{{- with context .}}
  Context: "{{.}}"
{{- end}}
{{- else}}
No emails found. Try a different search term.
{{- end}}
`

// WriteText writes a human-readable summary followed by the contact bullets.
func WriteText(w io.Writer, summary Summary) error {
	t, err := template.New("textReport").Funcs(funcs).Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("parse text report: %w", err)
	}
	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("render text report: %w", err)
	}
	return WriteBullets(w, summary.Contacts)
}

// WriteBullets lists contacts one bullet each with source, link and context.
func WriteBullets(w io.Writer, records []contact.Record) error {
	t, err := template.New("bullets").Funcs(funcs).Parse(bulletsTmpl)
	if err != nil {
		return fmt.Errorf("parse bullets: %w", err)
	}
	if err := t.Execute(w, records); err != nil {
		return fmt.Errorf("render bullets: %w", err)
	}
	return nil
}

// WriteHTML writes a basic HTML report to the provided writer.
func WriteHTML(w io.Writer, summary Summary) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>Leadscout Report{{if .Topic}}: {{.Topic}}{{end}}</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
  tr.sample td { color: #888; font-style: italic; }
</style>
</head>
<body>
  <h1>Leadscout Report{{if .Topic}}: {{.Topic}}{{end}}</h1>
  <p><strong>Time:</strong> {{.StartTime.Format "2006-01-02 15:04:05"}} to {{.EndTime.Format "2006-01-02 15:04:05"}} ({{.Duration}})</p>

  <div class="stat-card">
    <div>Contacts</div>
    <div class="stat-val">{{.Total}}</div>
  </div>
  <div class="stat-card">
    <div>Real</div>
    <div class="stat-val" style="color: {{if gt .Real 0}}green{{else}}red{{end}};">{{.Real}}</div>
  </div>
  <div class="stat-card">
    <div>Sample</div>
    <div class="stat-val">{{.Synthetic}}</div>
  </div>
  <div class="stat-card">
    <div>Domains</div>
    <div class="stat-val">{{.Domains}}</div>
  </div>

  <h3>By Origin</h3>
  <table>
    <tr><th>Origin</th><th>Count</th></tr>
    {{- range $origin, $count := .ByOrigin}}
    <tr><td>{{$origin}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>

  <h3>Contacts</h3>
  <table>
    <tr><th>Email</th><th>Source</th><th>Context</th></tr>
    {{- range .Contacts}}
    <tr{{if .Synthetic}} class="sample"{{end}}><td>{{.Email}}</td><td><a href="{{.SourceLink}}">{{.SourceTitle}}</a></td><td>{{context .}}</td></tr>
    {{- else}}
    <tr><td colspan="3">None</td></tr>
    {{- end}}
  </table>
</body>
</html>
`
	t, err := htmltemplate.New("htmlReport").Funcs(htmltemplate.FuncMap{"context": BulletContext}).Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("parse html report: %w", err)
	}
	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}
