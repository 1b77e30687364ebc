//go:build integration

package test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/FranksOps/leadscout/internal/contact"
	"github.com/FranksOps/leadscout/internal/discovery"
	"github.com/FranksOps/leadscout/internal/extract"
	"github.com/FranksOps/leadscout/internal/fingerprint"
	"github.com/FranksOps/leadscout/internal/scraper"
	"github.com/FranksOps/leadscout/internal/storage"
	"github.com/FranksOps/leadscout/internal/storage/sqlite"
	"github.com/FranksOps/leadscout/pkg/proxy"
	"github.com/FranksOps/leadscout/pkg/ratelimit"
	"github.com/FranksOps/leadscout/pkg/useragent"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newSeedSite serves two seed pages, a sitemap with a team page and a bot wall.
func newSeedSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><script>var x = "hidden@script.io";</script></head>
			<body><p>Partnerships: jane (at) firm (dot) io</p></body></html>`)
	})
	mux.HandleFunc("/directory", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><p>Deals desk: bob@firm.io</p></body></html>`)
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>%[1]s/blog/post-1</loc></url>
  <url><loc>%[1]s/team</loc></url>
  <url><loc>%[1]s/contact</loc></url>
</urlset>`, srv.URL)
	})
	mux.HandleFunc("/team", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>Our partner Carol: carol@firm.io</body></html>`)
	})
	mux.HandleFunc("/contact", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "cloudflare")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `<html><body>cf-browser-verification walled@firm.io</body></html>`)
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestIntegration_SeedDiscovery(t *testing.T) {
	site := newSeedSite(t)

	fetcher, err := scraper.NewFetcher(scraper.FetchConfig{
		Timeout:     5 * time.Second,
		Fingerprint: fingerprint.ProfileGo,
		Limiter:     ratelimit.NewLimiter(0),
		Logger:      quietLogger(),
	})
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}

	o, err := discovery.New(discovery.Config{
		Profile: discovery.Profile{
			Name:            "integration",
			SeedSites:       []string{site.URL + "/", site.URL + "/directory"},
			MinEmails:       5,
			SitemapPages:    3,
			SeedConcurrency: 2,
			Pause:           -1,
			Catalog:         discovery.CatalogGeneric,
		},
		Pages:    fetcher,
		Sitemaps: scraper.NewSitemapReader(fetcher, quietLogger()),
		Logger:   quietLogger(),
	})
	if err != nil {
		t.Fatalf("failed to create orchestrator: %v", err)
	}

	run := o.Discover(context.Background(), "fintech investors")
	records := run.Records()
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d: %v", len(records), run.Emails())
	}

	want := []string{"jane@firm.io", "carol@firm.io", "bob@firm.io"}
	for i, email := range want {
		if records[i].Email != email || records[i].Origin != contact.OriginSeed || records[i].Synthetic {
			t.Errorf("record %d: expected seed %s, got %+v", i, email, records[i])
		}
	}
	if records[1].SourceLink != site.URL+"/team" {
		t.Errorf("expected carol attributed to the team page, got %s", records[1].SourceLink)
	}
	if !strings.HasPrefix(records[0].SourceTitle, "From ") {
		t.Errorf("unexpected seed title %q", records[0].SourceTitle)
	}
	for _, rec := range records {
		if rec.Email == "walled@firm.io" || rec.Email == "hidden@script.io" {
			t.Errorf("unexpected email %s", rec.Email)
		}
	}
	if run.Synthetic() != 2 {
		t.Errorf("expected 2 sample contacts, got %d", run.Synthetic())
	}
}

func TestIntegration_ExportSQLite(t *testing.T) {
	site := newSeedSite(t)
	fetcher, err := scraper.NewFetcher(scraper.FetchConfig{Fingerprint: fingerprint.ProfileGo, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}
	o, err := discovery.New(discovery.Config{
		Profile: discovery.Profile{Name: "export", SeedSites: []string{site.URL + "/directory"}, MinEmails: 3, Pause: -1},
		Pages:   fetcher,
		Logger:  quietLogger(),
	})
	if err != nil {
		t.Fatalf("failed to create orchestrator: %v", err)
	}
	run := o.Discover(context.Background(), "fintech")

	b, err := sqlite.New(filepath.Join(t.TempDir(), "leadscout.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	if err := storage.SaveAll(ctx, b, storage.NewEntries(run.ID, run.Topic, run.Records(), run.FinishedAt)); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	no := false
	found, err := b.Query(ctx, storage.Filter{RunID: run.ID, Synthetic: &no})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(found) != 1 || found[0].Record.Email != "bob@firm.io" {
		t.Errorf("unexpected real entries %+v", found)
	}
}

func TestIntegration_ProxyRotation(t *testing.T) {
	var proxyHits int32
	proxySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&proxyHits, 1)
		if r.Header.Get("User-Agent") != "IntegrationTest-UA" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, "<html><body>proxied content: desk@proxied.io</body></html>")
	}))
	defer proxySrv.Close()

	pPool := proxy.NewPool(proxy.Config{})
	if err := pPool.Add(proxySrv.URL); err != nil {
		t.Fatal(err)
	}

	fetcher, err := scraper.NewFetcher(scraper.FetchConfig{
		Timeout:     5 * time.Second,
		Fingerprint: fingerprint.ProfileGo,
		ProxyPool:   pPool,
		UAPool:      useragent.NewPool([]string{"IntegrationTest-UA"}),
		Logger:      quietLogger(),
	})
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}

	// A remote URL forces the request through the proxy.
	text := fetcher.Text(context.Background(), "http://example.com/testproxy", scraper.DefaultMaxChars)
	if atomic.LoadInt32(&proxyHits) == 0 {
		t.Errorf("expected proxy server to be hit, got 0")
	}
	if emails := extract.Emails(text); len(emails) != 1 || emails[0] != "desk@proxied.io" {
		t.Errorf("expected the proxied email, got %v from %q", emails, text)
	}
}

func TestIntegration_CookieJarPersistence(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session_id", Value: "123456", Path: "/"})
		fmt.Fprint(w, `<html><body>welcome</body></html>`)
	})
	mux.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session_id")
		if err != nil || cookie.Value != "123456" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `<html><body>members: vip@club.io</body></html>`)
	})
	targetServer := httptest.NewServer(mux)
	defer targetServer.Close()

	fetcher, err := scraper.NewFetcher(scraper.FetchConfig{
		Timeout:      5 * time.Second,
		Fingerprint:  fingerprint.ProfileGo,
		UseCookieJar: true,
		Logger:       quietLogger(),
	})
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}

	ctx := context.Background()
	_ = fetcher.Text(ctx, targetServer.URL+"/login", scraper.DefaultMaxChars)
	text := fetcher.Text(ctx, targetServer.URL+"/protected", scraper.DefaultMaxChars)
	if !strings.Contains(text, "vip@club.io") {
		t.Errorf("expected protected content via cookie jar, got %q", text)
	}
}
