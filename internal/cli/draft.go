package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FranksOps/leadscout/internal/pipeline"
	"github.com/FranksOps/leadscout/internal/research"
)

func (a *app) draftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "draft <topic> <summary>",
		Short: "Draft a cold outreach email",
		Long:  "Drafts a short outreach email for the topic and project summary. Falls back to a template when the language model is unavailable.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("missing required data")
			}
			p, err := a.pipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer p.Close()

			body, err := p.Draft(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]string{"email_body": body})
		},
	}
}

func (a *app) researchCmd() *cobra.Command {
	var (
		companies int
		format    string
	)

	cmd := &cobra.Command{
		Use:   "research <industry...>",
		Short: "Profile the top companies of an industry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, FormatJSON, FormatText); err != nil {
				return err
			}
			p, err := a.pipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer p.Close()

			rep, err := p.Research(cmd.Context(), strings.Join(args, " "), companies)
			if err != nil {
				return err
			}

			if format == FormatText {
				return writeResearchText(cmd, rep)
			}
			emails := pipeline.ContactEmails(rep)
			if emails == nil {
				emails = []string{}
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"industry": rep.Industry,
				"list_url": rep.ListURL,
				"emails":   emails,
				"profiles": rep.Companies,
			})
		},
	}

	cmd.Flags().IntVar(&companies, "companies", research.DefaultCompanies, "Number of listed companies to profile")
	cmd.Flags().StringVar(&format, "format", FormatJSON, "Output format: json or text")
	return cmd
}

func writeResearchText(cmd *cobra.Command, rep *research.Report) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "# Top %s companies\n\nSource list: %s\n", rep.Industry, rep.ListURL)
	for _, c := range rep.Companies {
		fmt.Fprintf(w, "\n## %s\n\n%s", c.Name, c.Markdown)
		if !strings.HasSuffix(c.Markdown, "\n") {
			fmt.Fprintln(w)
		}
		for _, s := range c.Sources {
			fmt.Fprintf(w, "  source: %s\n", s)
		}
	}
	return nil
}
