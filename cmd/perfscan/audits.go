package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/perfscan/internal/database"
	"github.com/nao1215/perfscan/internal/pipeline"
	"github.com/nao1215/perfscan/internal/report"
)

// NewAuditsCmd creates the audits command and its subcommands.
func NewAuditsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audits",
		Short: "Inspect archived audit reports",
		Long: `Audits lists the audit reports archived by detect, preview and fix.

Every archived report can be processed again by passing its source,
archive:<id>, in place of a file.

Examples:
  perfscan audits list --website 7
  perfscan audits show 12
  perfscan preview archive:12`,
	}

	cmd.AddCommand(newAuditsListCmd())
	cmd.AddCommand(newAuditsShowCmd())

	return cmd
}

func newAuditsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the archived audit reports of a website",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			websiteID, err := cmd.Flags().GetInt64("website")
			if err != nil {
				return err
			}

			return withTaskDB(cmd, func(ctx context.Context, db *database.TaskDB, _ *slog.Logger) error {
				audits, err := db.ListAuditReports(ctx, websiteID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(audits) == 0 {
					fmt.Fprintf(out, "No archived audit reports for website %d.\n", websiteID)
					return nil
				}
				for _, a := range audits {
					fmt.Fprintf(out, "%-12s %s  %s  %s\n",
						pipeline.ArchiveSource(a.ID),
						a.ArchivedAt.Format("2006-01-02 15:04:05"),
						shortDigest(a.Digest),
						a.URL,
					)
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64("website", 0, "Website ID whose archived reports are listed")
	_ = cmd.MarkFlagRequired("website") //nolint:errcheck // flag is defined above

	return cmd
}

func newAuditsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <audit-id>",
		Short: "Print an archived audit report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withTaskDB(cmd, func(ctx context.Context, db *database.TaskDB, _ *slog.Logger) error {
				audit, err := db.GetAuditReport(ctx, id)
				if err != nil {
					return err
				}
				_, err = report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint()).WriteValue(audit)
				return err
			})
		},
	}
}

// shortDigest abbreviates a content digest for display.
func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
