package serp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/FranksOps/leadscout/pkg/httpclient"
)

func newTestSerpAPI(t *testing.T, key, endpoint string) *SerpAPI {
	t.Helper()
	s, err := NewSerpAPI(SerpAPIConfig{APIKey: key, Endpoint: endpoint})
	if err != nil {
		t.Fatalf("NewSerpAPI: %v", err)
	}
	return s
}

func TestSerpAPI_Search(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("engine") != "google" || q.Get("q") != "fintech investor email" || q.Get("api_key") != "k123" || q.Get("num") != "10" {
			t.Errorf("unexpected query %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"search_metadata":{"id":"x"},"organic_results":[
			{"position":1,"title":"Fund A","link":"https://a.example","snippet":"mail partners@a.example"},
			{"position":2,"title":"Fund B","link":"https://b.example"}]}`))
	}))
	defer ts.Close()

	results, err := newTestSerpAPI(t, "k123", ts.URL).Search(context.Background(), "fintech investor email", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Title != "Fund A" || results[0].Snippet != "mail partners@a.example" {
		t.Errorf("unexpected first result %+v", results[0])
	}
	if results[1].Snippet != "" {
		t.Errorf("missing snippet should decode empty, got %q", results[1].Snippet)
	}
}

func TestSerpAPI_ProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid API key."}`))
	}))
	defer ts.Close()

	_, err := newTestSerpAPI(t, "bad", ts.URL).Search(context.Background(), "q", 10)
	var perr *ProviderError
	if !errors.As(err, &perr) || perr.Message != "Invalid API key." {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}

func TestSerpAPI_NoCredential(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider must not be called without a credential")
	}))
	defer ts.Close()

	for _, key := range []string{"", "  ", PlaceholderKey} {
		_, err := newTestSerpAPI(t, key, ts.URL).Search(context.Background(), "q", 10)
		if !errors.Is(err, ErrNoCredential) {
			t.Errorf("key %q: expected ErrNoCredential, got %v", key, err)
		}
	}
}

func TestSerpAPI_TransportErrorHidesKey(t *testing.T) {
	client, _ := httpclient.New(httpclient.Config{Timeout: 20 * time.Millisecond})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	s, err := NewSerpAPI(SerpAPIConfig{APIKey: "supersecret", Endpoint: ts.URL, Client: client})
	if err != nil {
		t.Fatalf("NewSerpAPI: %v", err)
	}
	_, err = s.Search(context.Background(), "q", 5)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if strings.Contains(err.Error(), "supersecret") {
		t.Errorf("error leaks api key: %v", err)
	}
}

type stubProvider struct {
	results []Result
	err     error
}

func (s stubProvider) Search(context.Context, string, int) ([]Result, error) {
	return s.results, s.err
}

func TestCollect(t *testing.T) {
	cases := []struct {
		name string
		p    Provider
		want int
	}{
		{"ok", stubProvider{results: []Result{{Title: "a"}}}, 1},
		{"nil results", stubProvider{}, 0},
		{"transport error", stubProvider{err: fmt.Errorf("dial: %w", errors.New("refused"))}, 0},
		{"provider error", stubProvider{err: &ProviderError{Message: "quota"}}, 0},
		{"no credential", Disabled{}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Collect(context.Background(), tc.p, nil, "q", 10)
			if got == nil {
				t.Fatal("Collect must return a non-nil slice")
			}
			if len(got) != tc.want {
				t.Errorf("expected %d results, got %d", tc.want, len(got))
			}
		})
	}
}
