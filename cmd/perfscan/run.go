package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/perfscan/internal/config"
	"github.com/nao1215/perfscan/internal/database"
	"github.com/nao1215/perfscan/internal/log"
	"github.com/nao1215/perfscan/internal/model"
	"github.com/nao1215/perfscan/internal/pipeline"
	"github.com/nao1215/perfscan/internal/report"
)

// NewDetectCmd creates the detect command.
func NewDetectCmd() *cobra.Command {
	return newRunCmd(pipeline.ModeDetect, runCmdInfo{
		use:   "detect [audit-report...]",
		short: "Detect performance issues in audit reports",
		long: `Detect reads one or more audit reports and lists the performance issues
they reveal, ranked by severity.

An argument is either a JSON file or an archived report written as
archive:<id> (see "perfscan audits list").

Examples:
  # Detect issues in one report
  perfscan detect audit.json

  # Detect issues in an archived report as Markdown
  perfscan detect --markdown archive:12

  # Process many reports, eight at a time, as one JSON document
  perfscan detect --json --batch 8 reports/*.json`,
	})
}

// NewPreviewCmd creates the preview command.
func NewPreviewCmd() *cobra.Command {
	return newRunCmd(pipeline.ModePreview, runCmdInfo{
		use:   "preview [audit-report...]",
		short: "Preview the fixes for detected issues without recording tasks",
		long: `Preview detects issues like "detect" and shows, for every auto-fixable
issue, the planned changes with their estimated impact, risk level and
size before and after the fix. Nothing is written to the task database.

Examples:
  perfscan preview audit.json
  perfscan preview --markdown -o previews/shop.md audit.json`,
	})
}

// NewFixCmd creates the fix command.
func NewFixCmd() *cobra.Command {
	return newRunCmd(pipeline.ModeFix, runCmdInfo{
		use:   "fix [audit-report...]",
		short: "Record optimization tasks for auto-fixable issues",
		long: `Fix detects issues and records one optimization task per auto-fixable
issue in the task database. Tasks start as pending and are advanced by
workers with "perfscan tasks advance" or undone with "perfscan tasks rollback".

The report ends with the batch outcome and an estimated performance
improvement.

Examples:
  # Record tasks for every auto-fixable issue
  perfscan fix audit.json

  # Show what would be recorded
  perfscan fix --dry-run audit.json`,
		dryRun: true,
	})
}

// runCmdInfo describes one of the run commands.
type runCmdInfo struct {
	use    string
	short  string
	long   string
	dryRun bool
}

// newRunCmd builds a command that runs the default pipeline in the given mode.
func newRunCmd(mode pipeline.Mode, info runCmdInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:   info.use,
		Short: info.short,
		Long:  info.long,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipelineCmd(cmd, args, mode)
		},
	}

	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of audit reports processed concurrently")
	cmd.Flags().Bool("no-archive", false,
		"Do not store loaded audit reports in the database")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	if info.dryRun {
		cmd.Flags().Bool("dry-run", false,
			"Preview fixes instead of recording tasks")
	}

	return cmd
}

// runPipelineCmd executes a run command.
func runPipelineCmd(cmd *cobra.Command, args []string, mode pipeline.Mode) error {
	cfg, err := buildRunConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := cfg.ValidateTargets(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runPipelines(ctx, cmd, cfg, mode, logger)
}

// loadConfig creates a Config from defaults, the configuration file and the
// persistent flags of the root command.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.Verbose, err = boolFlag(cmd, "verbose")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = stringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}

	// An explicitly named config file must exist; a missing default one is
	// not an error.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	dbDir, err := stringFlag(cmd, "db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	return cfg, nil
}

// buildRunConfig extends loadConfig with the flags of a run command.
func buildRunConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	// The flag default must not hide a batch_size from the config file.
	if cmd.Flags().Changed("batch") {
		cfg.BatchSize, err = cmd.Flags().GetInt("batch")
		if err != nil {
			return nil, err
		}
	}

	noArchive, err := cmd.Flags().GetBool("no-archive")
	if err != nil {
		return nil, err
	}
	cfg.Archive = !noArchive

	if cmd.Flags().Lookup("dry-run") != nil {
		cfg.DryRun, err = cmd.Flags().GetBool("dry-run")
		if err != nil {
			return nil, err
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Targets = args

	return cfg, nil
}

// boolFlag retrieves a flag from the command or, failing that, from the
// persistent flags of the root command.
func boolFlag(cmd *cobra.Command, name string) (bool, error) {
	if v, err := cmd.Flags().GetBool(name); err == nil {
		return v, nil
	}
	return cmd.Root().PersistentFlags().GetBool(name)
}

// stringFlag is the string counterpart of boolFlag.
func stringFlag(cmd *cobra.Command, name string) (string, error) {
	if v, err := cmd.Flags().GetString(name); err == nil {
		return v, nil
	}
	return cmd.Root().PersistentFlags().GetString(name)
}

// setupLogger creates a structured logger that masks secrets.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	return log.NewSecureLogger(w, verbose)
}

// openDatabase opens the task database in cfg.DBDir.
func openDatabase(cfg *config.Config, logger *slog.Logger) (*database.TaskDB, error) {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("database opened", "path", db.Path())
	return db, nil
}

// runPipelines processes every target and writes the reports.
func runPipelines(ctx context.Context, cmd *cobra.Command, cfg *config.Config, mode pipeline.Mode, logger *slog.Logger) error {
	logger.Info("starting run",
		"targets", len(cfg.Targets),
		"batchSize", cfg.BatchSize,
		"dryRun", cfg.DryRun,
		"archive", cfg.Archive,
	)

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if len(cfg.Targets) > 1 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Processing %d audit reports (concurrency: %d)...\n",
			len(cfg.Targets), cfg.BatchSize)
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(cfg, db, mode,
				pipeline.WithLogger(logger),
				pipeline.WithContinueOnError(false),
			)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	startTime := time.Now()
	reports, batchErr := bp.ProcessBatch(ctx, cfg.Targets)
	logger.Info("run finished", "elapsed", time.Since(startTime).Round(time.Millisecond))

	if err := outputReports(cmd.OutOrStdout(), cfg, reports); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if batchErr != nil {
		return batchErr
	}
	return failedRuns(reports)
}

// failedRuns returns an error naming how many runs ended with an error.
func failedRuns(reports []*model.RunReport) error {
	failed := 0
	var first error
	for _, r := range reports {
		if r.Error == nil {
			continue
		}
		failed++
		if first == nil {
			first = fmt.Errorf("%s: %w", r.Source, r.Error)
		}
	}
	if failed == 0 {
		return nil
	}
	if failed == 1 {
		return first
	}
	return fmt.Errorf("%d of %d audit reports failed: %w", failed, len(reports), first)
}

// outputReports writes the reports in the requested format to stdout or
// cfg.ReportFile.
func outputReports(stdout io.Writer, cfg *config.Config, reports []*model.RunReport) (err error) {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports name resources of audited sites; keep them owner-readable.
		var f *os.File
		f, err = os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		output = f
	}

	if cfg.JSONReport {
		_, err := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint()).WriteAll(reports)
		return err
	}

	var writer report.Writer
	if cfg.MarkdownReport {
		writer = report.NewMarkdownWriter(output)
	} else {
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	var errs []error
	for _, r := range reports {
		if _, err := writer.Write(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
