package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FranksOps/leadscout/internal/outreach"
)

const fastProfiles = `
profiles:
  - name: quick
    pause: -1s
  - name: standard
    pause: -1s
`

// setupEnv points every client at a fake search provider and web server.
func setupEnv(t *testing.T) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"organic_results": []map[string]string{{
			"title":   "Fintech Co",
			"link":    "http://" + r.Host + "/page",
			"snippet": "Write to a@fintech.io or b@fintech.io.",
		}}})
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>nothing here</body></html>")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	profiles := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(profiles, []byte(fastProfiles), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("LEADSCOUT_SERPAPI_API_KEY", "serp-key")
	t.Setenv("LEADSCOUT_SERPAPI_ENDPOINT", srv.URL+"/search.json")
	t.Setenv("LEADSCOUT_OPENROUTER_API_KEY", "")
	t.Setenv("LEADSCOUT_TLS_PROFILE", "go")
	t.Setenv("LEADSCOUT_FETCH_TIMEOUT", "2s")
	t.Setenv("LEADSCOUT_PROFILES_FILE", profiles)
	t.Setenv("LEADSCOUT_STORE", "")
	t.Setenv("LEADSCOUT_STORE_DSN", "")
	t.Setenv("LEADSCOUT_METRICS_PORT", "0")
}

func run(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, &stdout, &stderr, "test")
	return code, stdout.String()
}

func TestSearch(t *testing.T) {
	setupEnv(t)
	code, out := run(t, "search", "fintech")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, out)
	}

	var got struct {
		Emails []string `json:"emails"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(got.Emails) < 2 || len(got.Emails) > 10 || got.Emails[0] != "a@fintech.io" {
		t.Errorf("unexpected emails %v", got.Emails)
	}
}

func TestEmails_JSON(t *testing.T) {
	setupEnv(t)
	code, out := run(t, "emails", "fintech", "investors", "--profile", "quick", "--min-emails", "3")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, out)
	}

	var got struct {
		Emails []struct {
			Email     string `json:"email"`
			Origin    string `json:"origin"`
			Synthetic bool   `json:"synthetic"`
		} `json:"emails"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(got.Emails) != 3 || got.Emails[0].Origin != "snippet" || !got.Emails[2].Synthetic {
		t.Errorf("unexpected records %+v", got.Emails)
	}
}

func TestEmails_TextAndHistory(t *testing.T) {
	setupEnv(t)
	path := filepath.Join(t.TempDir(), "runs.csv")

	code, out := run(t, "emails", "fintech", "--profile", "quick", "--min-emails", "3",
		"--format", "text", "--store", "csv", "--dsn", path)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, out)
	}
	if !strings.Contains(out, "FOUND EMAILS:") || !strings.Contains(out, "- a@fintech.io") {
		t.Errorf("unexpected text output:\n%s", out)
	}

	code, out = run(t, "history", "--store", "csv", "--dsn", path, "--synthetic", "false")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, out)
	}
	var summary struct {
		Total int    `json:"total"`
		Real  int    `json:"real"`
		Topic string `json:"topic"`
	}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if summary.Total != 2 || summary.Real != 2 || summary.Topic != "fintech" {
		t.Errorf("unexpected history %+v", summary)
	}
}

func TestDraft_Template(t *testing.T) {
	setupEnv(t)
	code, out := run(t, "draft", "fintech", "We build payment rails.")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, out)
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got["email_body"] != outreach.Template("fintech", "We build payment rails.") {
		t.Errorf("unexpected body %q", got["email_body"])
	}
}

func TestErrors(t *testing.T) {
	setupEnv(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"draft missing summary", []string{"draft", "fintech"}, "missing required data"},
		{"emails missing topic", []string{"emails"}, "query is missing"},
		{"bad format", []string{"emails", "x", "--format", "xml"}, "invalid format"},
		{"unknown profile", []string{"emails", "x", "--profile", "nope"}, "unknown discovery profile"},
		{"history without store", []string{"history"}, "--store"},
		{"bad log level", []string{"search", "x", "--log-level", "loud"}, "invalid log level"},
	}
	for _, tt := range tests {
		code, out := run(t, tt.args...)
		if code != 1 {
			t.Errorf("%s: expected exit 1, got %d", tt.name, code)
		}
		var got map[string]string
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Errorf("%s: invalid JSON %q", tt.name, out)
			continue
		}
		if !strings.Contains(got["error"], tt.want) {
			t.Errorf("%s: error %q does not mention %q", tt.name, got["error"], tt.want)
		}
	}
}

func TestProfiles(t *testing.T) {
	setupEnv(t)
	code, out := run(t, "profiles")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, out)
	}
	for _, name := range []string{`"investor"`, `"quick"`, `"standard"`} {
		if !strings.Contains(out, name) {
			t.Errorf("profiles output missing %s: %s", name, out)
		}
	}
}
