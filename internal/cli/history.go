package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/FranksOps/leadscout/internal/pipeline"
	"github.com/FranksOps/leadscout/internal/report"
	"github.com/FranksOps/leadscout/internal/storage"
)

func (a *app) historyCmd() *cobra.Command {
	var (
		filter    storage.Filter
		synthetic string
		since     time.Duration
		format    string
		store     storeFlags
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Summarise exported discovery runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, FormatJSON, FormatText, FormatHTML); err != nil {
				return err
			}
			store.apply(cmd, a)
			if a.cfg.StoreBackend == "" {
				return errors.New("history needs --store and --dsn")
			}
			if synthetic != "" {
				v, err := strconv.ParseBool(synthetic)
				if err != nil {
					return fmt.Errorf("invalid --synthetic %q: %w", synthetic, err)
				}
				filter.Synthetic = &v
			}
			if since > 0 {
				t := time.Now().UTC().Add(-since)
				filter.Since = &t
			}

			b, err := pipeline.OpenStore(cmd.Context(), a.cfg.StoreBackend, a.cfg.StoreDSN)
			if err != nil {
				return err
			}
			defer b.Close()

			entries, err := b.Query(cmd.Context(), filter)
			if err != nil {
				return err
			}
			summary := report.SummarizeEntries(entries)

			out := cmd.OutOrStdout()
			switch format {
			case FormatText:
				return report.WriteText(out, summary)
			case FormatHTML:
				return report.WriteHTML(out, summary)
			}
			return report.WriteJSON(out, summary)
		},
	}

	cmd.Flags().StringVar(&filter.RunID, "run-id", "", "Only entries of this run")
	cmd.Flags().StringVar(&filter.Topic, "topic", "", "Only entries for this topic")
	cmd.Flags().StringVar(&synthetic, "synthetic", "", "true for sample contacts only, false for real ones only")
	cmd.Flags().DurationVar(&since, "since", 0, "Only entries exported within this duration")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Maximum entries (0 for all)")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "Entries to skip")
	cmd.Flags().StringVar(&format, "format", FormatJSON, "Output format: json, text or html")
	store.register(cmd)

	return cmd
}
