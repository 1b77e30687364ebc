// Package storagetest holds the conformance checks shared by every storage backend.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/FranksOps/leadscout/internal/contact"
	"github.com/FranksOps/leadscout/internal/storage"
)

// Run saves two runs into b and checks filtering, ordering and paging.
// b must start empty.
func Run(t *testing.T, b storage.Backend) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	older := storage.NewEntries("run-old", "fintech investors", []contact.Record{
		{Email: "jane@firm.io", SourceTitle: "From firm.io", SourceLink: "https://firm.io", Context: "write to jane", Origin: contact.OriginSeed},
		{Email: "contact@example.com", SourceTitle: "Contact at example.com", SourceLink: "https://example.com", Context: "Sample contact", Origin: contact.OriginFallback, Synthetic: true},
	}, now.Add(-2*time.Hour))
	newer := storage.NewEntries("run-new", "robotics", []contact.Record{
		{Email: "a@robots.io", SourceTitle: "Robots, Inc", SourceLink: "https://robots.io/team", Context: "a, \"quoted\"\nline", Origin: contact.OriginPage},
		{Email: "b@robots.io", SourceTitle: "Robots", SourceLink: "https://robots.io", Context: "b", Origin: contact.OriginSnippet},
	}, now.Add(-time.Hour))

	if err := b.Save(ctx, older[0]); err != nil {
		t.Fatalf("Failed to save entry: %v", err)
	}
	if err := storage.SaveAll(ctx, b, older[1:]); err != nil {
		t.Fatalf("Failed to save entries: %v", err)
	}
	if err := storage.SaveAll(ctx, b, newer); err != nil {
		t.Fatalf("Failed to save entries: %v", err)
	}

	all, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("Failed to query all: %v", err)
	}
	want := []string{"a@robots.io", "b@robots.io", "jane@firm.io", "contact@example.com"}
	if len(all) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(all))
	}
	for i, w := range want {
		if all[i].Record.Email != w {
			t.Errorf("position %d: expected %s, got %s", i, w, all[i].Record.Email)
		}
	}

	got := all[0]
	if got.Record != newer[0].Record {
		t.Errorf("record did not survive storage: %+v", got.Record)
	}
	if got.ID != newer[0].ID || got.RunID != "run-new" || got.Topic != "robotics" || got.Position != 0 {
		t.Errorf("unexpected entry metadata %+v", got)
	}
	if got.CreatedAt.Unix() != newer[0].CreatedAt.Unix() {
		t.Errorf("Expected CreatedAt %v, got %v", newer[0].CreatedAt, got.CreatedAt)
	}

	byRun, err := b.Query(ctx, storage.Filter{RunID: "run-old"})
	if err != nil {
		t.Fatalf("Failed to query by run: %v", err)
	}
	if len(byRun) != 2 || byRun[0].Record.Email != "jane@firm.io" {
		t.Errorf("unexpected run-old entries %v", emails(byRun))
	}

	byTopic, err := b.Query(ctx, storage.Filter{Topic: "robotics"})
	if err != nil {
		t.Fatalf("Failed to query by topic: %v", err)
	}
	if len(byTopic) != 2 {
		t.Errorf("Expected 2 robotics entries, got %d", len(byTopic))
	}

	yes := true
	synthetic, err := b.Query(ctx, storage.Filter{Synthetic: &yes})
	if err != nil {
		t.Fatalf("Failed to query synthetic: %v", err)
	}
	if len(synthetic) != 1 || synthetic[0].Record.Email != "contact@example.com" {
		t.Errorf("unexpected synthetic entries %v", emails(synthetic))
	}

	since := now.Add(-90 * time.Minute)
	recent, err := b.Query(ctx, storage.Filter{Since: &since})
	if err != nil {
		t.Fatalf("Failed to query by Since: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("Expected 2 recent entries, got %d", len(recent))
	}

	page, err := b.Query(ctx, storage.Filter{Offset: 1, Limit: 2})
	if err != nil {
		t.Fatalf("Failed to query page: %v", err)
	}
	if got := emails(page); len(got) != 2 || got[0] != "b@robots.io" || got[1] != "jane@firm.io" {
		t.Errorf("unexpected page %v", got)
	}

	tail, err := b.Query(ctx, storage.Filter{Offset: 3})
	if err != nil {
		t.Fatalf("Failed to query offset: %v", err)
	}
	if len(tail) != 1 || tail[0].Record.Email != "contact@example.com" {
		t.Errorf("unexpected tail %v", emails(tail))
	}
}

func emails(entries []*storage.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Record.Email)
	}
	return out
}
