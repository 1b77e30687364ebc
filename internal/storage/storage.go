package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FranksOps/leadscout/internal/contact"
)

// Entry is one exported contact from a discovery run.
type Entry struct {
	ID    string `json:"id"`
	RunID string `json:"run_id"`
	Topic string `json:"topic"`
	// Position is the record's index within its run.
	Position  int            `json:"position"`
	Record    contact.Record `json:"record"`
	CreatedAt time.Time      `json:"created_at"`
}

// Filter allows querying for specific entries.
type Filter struct {
	RunID     string
	Topic     string
	Synthetic *bool
	Since     *time.Time
	Limit     int
	Offset    int
}

// Match reports whether e passes every set field of f except Limit and Offset.
func (f Filter) Match(e *Entry) bool {
	if f.RunID != "" && e.RunID != f.RunID {
		return false
	}
	if f.Topic != "" && e.Topic != f.Topic {
		return false
	}
	if f.Synthetic != nil && e.Record.Synthetic != *f.Synthetic {
		return false
	}
	if f.Since != nil && e.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}

// Backend defines the interface for storing and querying exported contacts.
// Query returns the newest runs first and keeps run order within a run.
type Backend interface {
	Save(ctx context.Context, entry *Entry) error
	Query(ctx context.Context, filter Filter) ([]*Entry, error)
	Close() error
}

// BatchSaver is implemented by backends that can store many entries atomically.
type BatchSaver interface {
	SaveBatch(ctx context.Context, entries []*Entry) error
}

// NewEntries stamps records from one run with fresh IDs, their positions and createdAt.
func NewEntries(runID, topic string, records []contact.Record, createdAt time.Time) []*Entry {
	out := make([]*Entry, 0, len(records))
	for i, rec := range records {
		out = append(out, &Entry{
			ID:        uuid.NewString(),
			RunID:     runID,
			Topic:     topic,
			Position:  i,
			Record:    rec,
			CreatedAt: createdAt,
		})
	}
	return out
}

// SaveAll stores entries, in one batch when the backend supports it.
func SaveAll(ctx context.Context, b Backend, entries []*Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if bs, ok := b.(BatchSaver); ok {
		if err := bs.SaveBatch(ctx, entries); err != nil {
			return fmt.Errorf("save batch: %w", err)
		}
		return nil
	}
	for _, e := range entries {
		if err := b.Save(ctx, e); err != nil {
			return fmt.Errorf("save %s: %w", e.Record.Email, err)
		}
	}
	return nil
}

// Page sorts entries newest run first, by position within a run, then applies
// Offset and Limit. File backends use it in place of a query engine.
func Page(entries []*Entry, f Filter) []*Entry {
	sortEntries(entries)
	if f.Offset > 0 {
		if f.Offset >= len(entries) {
			return []*Entry{}
		}
		entries = entries[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(entries) {
		entries = entries[:f.Limit]
	}
	return entries
}
