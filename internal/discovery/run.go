package discovery

import (
	"time"

	"github.com/google/uuid"

	"github.com/FranksOps/leadscout/internal/contact"
)

// Run is the state and result of one discovery run. The attribution map and
// the insertion order always hold the same set of emails.
type Run struct {
	ID         string
	Topic      string
	Profile    string
	MinEmails  int
	MaxResults int
	// TotalHits counts emails extracted during the search phase, repeats included.
	TotalHits  int
	Queries    int
	Fetches    int
	StartedAt  time.Time
	FinishedAt time.Time

	sources map[string]contact.Record
	order   []string
}

func newRun(topic string, p Profile) *Run {
	return &Run{
		ID:         uuid.NewString(),
		Topic:      topic,
		Profile:    p.Name,
		MinEmails:  p.MinEmails,
		MaxResults: p.MaxResults,
		StartedAt:  time.Now().UTC(),
		sources:    make(map[string]contact.Record),
	}
}

// add records rec unless its email is already attributed. The first writer wins.
func (r *Run) add(rec contact.Record) bool {
	if _, ok := r.sources[rec.Email]; ok {
		return false
	}
	r.sources[rec.Email] = rec
	r.order = append(r.order, rec.Email)
	return true
}

// short reports whether the run is still below its yield target.
func (r *Run) short() bool { return len(r.order) < r.MinEmails }

// Len returns the number of distinct emails recorded.
func (r *Run) Len() int { return len(r.order) }

// Has reports whether email has been recorded.
func (r *Run) Has(email string) bool {
	_, ok := r.sources[email]
	return ok
}

// Record returns the attribution for email.
func (r *Run) Record(email string) (contact.Record, bool) {
	rec, ok := r.sources[email]
	return rec, ok
}

// Records returns every record in the order it was discovered.
func (r *Run) Records() []contact.Record {
	out := make([]contact.Record, 0, len(r.order))
	for _, email := range r.order {
		out = append(out, r.sources[email])
	}
	return out
}

// Emails returns the discovered addresses in discovery order.
func (r *Run) Emails() []string {
	return append([]string(nil), r.order...)
}

// Synthetic counts fallback records.
func (r *Run) Synthetic() int {
	n := 0
	for _, rec := range r.sources {
		if rec.Synthetic {
			n++
		}
	}
	return n
}

// Duration is the wall time of the run, or zero while it is in progress.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
