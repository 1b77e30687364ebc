package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FranksOps/leadscout/internal/contact"
	"github.com/FranksOps/leadscout/internal/pipeline"
	"github.com/FranksOps/leadscout/internal/report"
)

type storeFlags struct {
	kind string
	dsn  string
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "store", "", "Export store: json, csv, sqlite or postgres")
	cmd.Flags().StringVar(&f.dsn, "dsn", "", "Store file path or Postgres connection string")
}

func (f *storeFlags) apply(cmd *cobra.Command, a *app) {
	if cmd.Flags().Changed("store") {
		a.cfg.StoreBackend = f.kind
	}
	if cmd.Flags().Changed("dsn") {
		a.cfg.StoreDSN = f.dsn
	}
}

func (a *app) emailsCmd() *cobra.Command {
	var (
		opts         pipeline.EmailOptions
		profilesFile string
		format       string
		store        storeFlags
	)

	cmd := &cobra.Command{
		Use:   "emails <topic...>",
		Short: "Discover contact emails for a topic",
		Long: `Runs seed sites, search queries and page scans for the topic until the
minimum yield is met, then tops up with clearly marked sample contacts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, FormatJSON, FormatText, FormatHTML); err != nil {
				return err
			}
			if cmd.Flags().Changed("profiles") {
				a.cfg.ProfilesFile = profilesFile
			}
			store.apply(cmd, a)

			p, err := a.pipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer p.Close()

			run, err := p.Emails(cmd.Context(), strings.Join(args, " "), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case FormatText:
				return report.WriteText(out, report.GenerateSummary(run))
			case FormatHTML:
				return report.WriteHTML(out, report.GenerateSummary(run))
			}
			records := run.Records()
			if records == nil {
				records = []contact.Record{}
			}
			return writeJSON(out, map[string]any{"emails": records})
		},
	}

	cmd.Flags().IntVar(&opts.MinEmails, "min-emails", 0, "Minimum number of emails to return (0 keeps the profile's, 10 by default)")
	cmd.Flags().IntVar(&opts.MaxResults, "max-results", 0, "Stop searching after this many email hits (0 keeps the profile's, 50 by default)")
	cmd.Flags().StringVar(&opts.Profile, "profile", "standard", "Discovery profile (see the profiles command)")
	cmd.Flags().StringVar(&profilesFile, "profiles", "", "YAML file with extra or overriding profiles")
	cmd.Flags().StringVar(&format, "format", FormatJSON, "Output format: json, text or html")
	store.register(cmd)

	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	var text bool

	cmd := &cobra.Command{
		Use:   "search <topic...>",
		Short: "Quick email lookup from search snippets",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.pipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer p.Close()

			emails, err := p.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if text {
				for _, e := range emails {
					fmt.Fprintln(cmd.OutOrStdout(), e)
				}
				return nil
			}
			if emails == nil {
				emails = []string{}
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"emails": emails})
		},
	}

	cmd.Flags().BoolVar(&text, "text", false, "Print one address per line instead of JSON")
	return cmd
}

func (a *app) profilesCmd() *cobra.Command {
	var profilesFile string

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List discovery profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("profiles") {
				a.cfg.ProfilesFile = profilesFile
			}
			p, err := a.pipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer p.Close()

			type entry struct {
				Name      string `json:"name"`
				Seeds     int    `json:"seed_sites"`
				Phrases   string `json:"phrases"`
				MinEmails int    `json:"min_emails"`
				ScanPages bool   `json:"scan_pages"`
				Catalog   string `json:"catalog"`
			}
			var out []entry
			for _, name := range p.Profiles().Names() {
				prof, err := p.Profiles().Get(name)
				if err != nil {
					return err
				}
				out = append(out, entry{
					Name:      prof.Name,
					Seeds:     len(prof.SeedSites),
					Phrases:   prof.Phrases.Name,
					MinEmails: prof.MinEmails,
					ScanPages: prof.ScanPages,
					Catalog:   prof.Catalog,
				})
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"profiles": out})
		},
	}

	cmd.Flags().StringVar(&profilesFile, "profiles", "", "YAML file with extra or overriding profiles")
	return cmd
}
