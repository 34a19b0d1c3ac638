package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for perfscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "perfscan",
		Short: "Detect and fix performance issues found in page audits",
		Long: `perfscan turns automated page-audit reports into prioritized performance
issues and remediation tasks.

Each audit report is a JSON file such as
  {"id": 1, "website_id": 7, "url": "https://shop.example.com/", "raw_results": {...}}
where raw_results holds the auditing tool's "opportunities" and "audits".

Detected issues are ranked by severity. Auto-fixable issues can be
previewed, or recorded as optimization tasks in a local SQLite database
that workers advance and that can be rolled back.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .perfscan in current or home directory)")
	cmd.PersistentFlags().String("db-dir", "",
		"Directory holding the task database (default: XDG data directory)")

	cmd.AddCommand(NewDetectCmd())
	cmd.AddCommand(NewPreviewCmd())
	cmd.AddCommand(NewFixCmd())
	cmd.AddCommand(NewTasksCmd())
	cmd.AddCommand(NewAuditsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
