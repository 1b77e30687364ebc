package scraper

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSitemapReader_ContactPages(t *testing.T) {
	var ts *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
   <sitemap><loc>` + ts.URL + `/pages.xml</loc></sitemap>
</sitemapindex>`))
	})
	mux.HandleFunc("/pages.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
   <url><loc>` + ts.URL + `/</loc></url>
   <url><loc>` + ts.URL + `/about-us</loc></url>
   <url><loc>http://elsewhere.example/contact</loc></url>
   <url><loc>` + ts.URL + `/blog/post-1</loc></url>
   <url><loc>` + ts.URL + `/Contact</loc></url>
   <url><loc>` + ts.URL + `/team</loc></url>
</urlset>`))
	})
	ts = httptest.NewServer(mux)
	defer ts.Close()

	reader := NewSitemapReader(newTestFetcher(t, FetchConfig{}), slog.Default())

	pages := reader.ContactPages(context.Background(), ts.URL+"/some/page", 2)
	want := []string{ts.URL + "/about-us", ts.URL + "/Contact"}
	if len(pages) != len(want) {
		t.Fatalf("expected %v, got %v", want, pages)
	}
	for i := range want {
		if pages[i] != want[i] {
			t.Errorf("page %d = %s, want %s", i, pages[i], want[i])
		}
	}
}

func TestSitemapReader_Missing(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	reader := NewSitemapReader(newTestFetcher(t, FetchConfig{}), nil)
	if pages := reader.ContactPages(context.Background(), ts.URL, 5); pages != nil {
		t.Errorf("expected no pages, got %v", pages)
	}
	if _, err := reader.URLs(context.Background(), ts.URL+"/sitemap.xml"); err == nil {
		t.Errorf("expected error for missing sitemap")
	}
}

func TestSitemapReader_InvalidXML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not xml"))
	}))
	defer ts.Close()

	reader := NewSitemapReader(newTestFetcher(t, FetchConfig{}), nil)
	if _, err := reader.URLs(context.Background(), ts.URL+"/sitemap.xml"); err == nil {
		t.Errorf("expected error for invalid sitemap")
	}
}
