package scraper

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRobotsAuditor_Allowed(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(`
User-agent: *
Disallow: /admin/
Allow: /admin/public/

User-agent: BadBot
Disallow: /
		`))
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	auditor := NewRobotsAuditor(newTestFetcher(t, FetchConfig{Timeout: 5 * time.Second}), slog.Default())
	ctx := context.Background()

	cases := []struct {
		path  string
		agent string
		want  bool
	}{
		{"/public-page", "GoodBot", true},
		{"/admin/secret", "GoodBot", false},
		{"/admin/public/index.html", "GoodBot", true},
		{"/public-page", "BadBot", false},
	}
	for _, tc := range cases {
		allowed, err := auditor.Allowed(ctx, ts.URL+tc.path, tc.agent)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if allowed != tc.want {
			t.Errorf("Allowed(%s, %s) = %v, want %v", tc.path, tc.agent, allowed, tc.want)
		}
	}

	if n := hits.Load(); n != 1 {
		t.Errorf("expected robots.txt to be fetched once, got %d", n)
	}
}

func TestRobotsAuditor_MissingRobots(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	auditor := NewRobotsAuditor(newTestFetcher(t, FetchConfig{}), nil)

	allowed, err := auditor.Allowed(context.Background(), ts.URL+"/anything", "Bot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Errorf("expected missing robots.txt to default to allowed")
	}
}

func TestRobotsAuditor_InvalidURL(t *testing.T) {
	auditor := NewRobotsAuditor(newTestFetcher(t, FetchConfig{}), nil)
	if _, err := auditor.Allowed(context.Background(), "not a url", "Bot"); err == nil {
		t.Errorf("expected error for url without host")
	}
}
