// Package cli implements the leadscout command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FranksOps/leadscout/internal/config"
	"github.com/FranksOps/leadscout/internal/metrics"
	"github.com/FranksOps/leadscout/internal/pipeline"
	"github.com/FranksOps/leadscout/internal/storage"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
	FormatHTML = "html"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	envFile     string
	logLevel    string
	logFormat   string
	metricsPort int

	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Server
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "leadscout",
		Short: "Leadscout - contact and company discovery for outreach",
		Long: `Leadscout finds contact emails for a topic, profiles companies of an industry
and drafts outreach emails. Results are printed as JSON on stdout.

Environment variables (also read from .env):
  SERPAPI_API_KEY      search provider key (live search is skipped without it)
  OPENROUTER_API_KEY   language model key (drafts and profiles degrade without it)
  LEADSCOUT_*          every other setting, e.g. LEADSCOUT_FETCH_TIMEOUT=5s`,
		Version:           version,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.metrics.Stop(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "Load environment from this file instead of .env")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "Log format on stderr: text or json")
	root.PersistentFlags().IntVar(&a.metricsPort, "metrics-port", 0, "Serve Prometheus metrics on this port (0 disables)")

	root.AddCommand(a.emailsCmd())
	root.AddCommand(a.searchCmd())
	root.AddCommand(a.draftCmd())
	root.AddCommand(a.researchCmd())
	root.AddCommand(a.historyCmd())
	root.AddCommand(a.profilesCmd())

	return root
}

// Execute runs the command line. Any failure is printed as {"error": ...} on
// stdout and yields exit status 1.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer, version string) int {
	root := NewRootCmd(version)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		_ = writeJSON(stdout, map[string]string{"error": err.Error()})
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	var files []string
	if a.envFile != "" {
		files = append(files, a.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if flags.Changed("metrics-port") {
		cfg.MetricsPort = a.metricsPort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(cmd.ErrOrStderr(), opts)
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	}

	a.cfg = cfg
	a.logger = slog.New(handler)
	if cfg.MetricsPort > 0 {
		a.metrics = metrics.Start(cfg.MetricsPort, a.logger)
		a.logger.Info("metrics server started", "port", cfg.MetricsPort)
	}
	return nil
}

// pipeline builds the application components, opening the export store when
// one is configured.
func (a *app) pipeline(ctx context.Context) (*pipeline.Pipeline, error) {
	var (
		store storage.Backend
		opts  []pipeline.Option
		err   error
	)
	if a.cfg.StoreBackend != "" {
		if store, err = pipeline.OpenStore(ctx, a.cfg.StoreBackend, a.cfg.StoreDSN); err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithStore(store))
	}
	p, err := pipeline.New(a.cfg, a.logger, opts...)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}
	return p, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func checkFormat(format string, allowed ...string) error {
	for _, f := range allowed {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q (want %s)", format, strings.Join(allowed, " or "))
}
