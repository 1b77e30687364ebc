package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestMetricsServer(t *testing.T) {
	srv := Start(18931, nil)
	time.Sleep(100 * time.Millisecond)
	defer srv.Stop(context.Background())

	RecordFetch("example.com", 200, "", time.Second)
	RecordFetch("example.com", 0, "error", 10*time.Millisecond)
	RecordSearch("ok")
	RecordContact("seed")
	RecordCompletion("profile", errors.New("boom"))

	resp, err := http.Get("http://localhost:18931/metrics")
	if err != nil {
		t.Fatalf("failed to fetch metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	output := string(body)

	for _, want := range []string{
		`leadscout_page_fetches_total{domain="example.com",status="200"}`,
		`leadscout_page_fetches_total{domain="example.com",status="error"}`,
		`leadscout_page_fetch_duration_seconds_bucket`,
		`leadscout_search_queries_total{outcome="ok"}`,
		`leadscout_contacts_total{origin="seed"}`,
		`leadscout_llm_completions_total{outcome="error",purpose="profile"}`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in metrics output", want)
		}
	}
}

func TestStopNil(t *testing.T) {
	var s *Server
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
