package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PageFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_page_fetches_total",
			Help: "Page fetches by domain and outcome (HTTP status, error, blocked)",
		},
		[]string{"domain", "status"},
	)

	PageFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leadscout_page_fetch_duration_seconds",
			Help:    "Duration of page fetches in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"domain"},
	)

	SearchQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_search_queries_total",
			Help: "Search provider calls by outcome",
		},
		[]string{"outcome"},
	)

	ContactsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_contacts_total",
			Help: "Contacts recorded by discovery origin (seed, snippet, page, fallback)",
		},
		[]string{"origin"},
	)

	CompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_llm_completions_total",
			Help: "Language model completions by purpose and outcome",
		},
		[]string{"purpose", "outcome"},
	)
)

// RecordFetch updates the fetch metrics. A non-empty failure ("error",
// "blocked", "robots") takes precedence over the status code as the label.
func RecordFetch(domain string, status int, failure string, d time.Duration) {
	label := strconv.Itoa(status)
	if failure != "" {
		label = failure
	}
	PageFetchesTotal.WithLabelValues(domain, label).Inc()
	PageFetchDuration.WithLabelValues(domain).Observe(d.Seconds())
}

// RecordSearch counts one provider call; outcome is "ok", "error" or "skipped".
func RecordSearch(outcome string) {
	SearchQueriesTotal.WithLabelValues(outcome).Inc()
}

// RecordContact counts one recorded contact.
func RecordContact(origin string) {
	ContactsTotal.WithLabelValues(origin).Inc()
}

// RecordCompletion counts one LLM call.
func RecordCompletion(purpose string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	CompletionsTotal.WithLabelValues(purpose, outcome).Inc()
}

// Server exposes /metrics over HTTP.
type Server struct {
	srv *http.Server
}

// Start begins listening on port in the background.
func Start(port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "err", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
