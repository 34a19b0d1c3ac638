package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nao1215/perfscan/internal/database"
	"github.com/nao1215/perfscan/internal/fixer"
	"github.com/nao1215/perfscan/internal/model"
	"github.com/nao1215/perfscan/internal/report"
)

// defaultTaskLimit is the number of tasks listed when no filter is given.
const defaultTaskLimit = 20

// taskStatuses is the display order of task statuses.
var taskStatuses = []model.TaskStatus{
	model.TaskPending,
	model.TaskInProgress,
	model.TaskCompleted,
	model.TaskFailed,
	model.TaskRolledBack,
}

// NewTasksCmd creates the tasks command and its subcommands.
func NewTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect and manage recorded optimization tasks",
		Long: `Tasks lists the optimization tasks recorded by "perfscan fix", reports
worker progress on them, and rolls completed ones back.

A task moves pending -> in_progress -> completed or failed. Only a
completed task can be rolled back.

Examples:
  perfscan tasks list --website 7
  perfscan tasks show 3
  perfscan tasks advance 3 --outcome succeeded
  perfscan tasks rollback 3`,
	}

	cmd.AddCommand(newTasksListCmd())
	cmd.AddCommand(newTasksShowCmd())
	cmd.AddCommand(newTasksAdvanceCmd())
	cmd.AddCommand(newTasksRollbackCmd())
	cmd.AddCommand(newTasksStatsCmd())

	return cmd
}

func newTasksListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List optimization tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withTaskDB(cmd, func(ctx context.Context, db *database.TaskDB, logger *slog.Logger) error {
				tasks, err := listTasks(ctx, cmd, db, logger)
				if err != nil {
					return err
				}

				asJSON, err := cmd.Flags().GetBool("json")
				if err != nil {
					return err
				}
				if asJSON {
					if tasks == nil {
						tasks = []*model.OptimizationTask{}
					}
					_, err = report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint()).WriteValue(tasks)
					return err
				}

				_, err = report.NewTaskWriter(cmd.OutOrStdout()).WriteList(tasks)
				return err
			})
		},
	}

	cmd.Flags().Int64("website", 0, "Only list tasks of this website ID")
	cmd.Flags().String("status", "", "Only list tasks in this status (pending, in_progress, completed, failed, rolled_back)")
	cmd.Flags().Int("limit", defaultTaskLimit, "Maximum number of recent tasks to list when no filter is given")
	cmd.Flags().BoolP("json", "j", false, "Output tasks as JSON")

	return cmd
}

// listTasks selects tasks according to the list flags. A website filter
// takes precedence; a status filter is then applied on top of it.
func listTasks(ctx context.Context, cmd *cobra.Command, db *database.TaskDB, logger *slog.Logger) ([]*model.OptimizationTask, error) {
	websiteID, err := cmd.Flags().GetInt64("website")
	if err != nil {
		return nil, err
	}
	statusName, err := cmd.Flags().GetString("status")
	if err != nil {
		return nil, err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return nil, err
	}

	var status model.TaskStatus
	if statusName != "" {
		status, err = model.ParseTaskStatus(statusName)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case websiteID != 0:
		engine, err := newTaskEngine(db, websiteID, logger)
		if err != nil {
			return nil, err
		}
		tasks, err := engine.Tasks(ctx)
		if err != nil {
			return nil, err
		}
		if status == "" {
			return tasks, nil
		}
		filtered := make([]*model.OptimizationTask, 0, len(tasks))
		for _, task := range tasks {
			if task.Status == status {
				filtered = append(filtered, task)
			}
		}
		return filtered, nil
	case status != "":
		return db.ListByStatus(ctx, status)
	default:
		return db.ListRecent(ctx, limit)
	}
}

func newTasksShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one optimization task with its details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withTaskDB(cmd, func(ctx context.Context, db *database.TaskDB, _ *slog.Logger) error {
				task, err := db.Get(ctx, id)
				if err != nil {
					return err
				}
				_, err = report.NewTaskWriter(cmd.OutOrStdout()).WriteDetail(task)
				return err
			})
		},
	}
}

func newTasksAdvanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advance <task-id>",
		Short: "Record worker progress on an optimization task",
		Long: `Advance applies a worker outcome to a task:

  started    pending -> in_progress
  succeeded  pending or in_progress -> completed
  failed     pending or in_progress -> failed (with --message)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			outcomeName, err := cmd.Flags().GetString("outcome")
			if err != nil {
				return err
			}
			outcome, err := fixer.ParseOutcome(outcomeName)
			if err != nil {
				return err
			}
			message, err := cmd.Flags().GetString("message")
			if err != nil {
				return err
			}

			return withTaskDB(cmd, func(ctx context.Context, db *database.TaskDB, logger *slog.Logger) error {
				engine, err := newTaskEngine(db, 0, logger)
				if err != nil {
					return err
				}
				task, err := engine.AdvanceTask(ctx, id, outcome, message)
				if err != nil {
					return err
				}
				_, err = report.NewTaskWriter(cmd.OutOrStdout()).WriteDetail(task)
				return err
			})
		},
	}

	cmd.Flags().String("outcome", "", "Worker outcome: started, succeeded or failed")
	cmd.Flags().String("message", "", "Failure message recorded with a failed outcome")
	_ = cmd.MarkFlagRequired("outcome") //nolint:errcheck // flag is defined above

	return cmd
}

func newTasksRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <task-id>",
		Short: "Roll back a completed optimization task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withTaskDB(cmd, func(ctx context.Context, db *database.TaskDB, logger *slog.Logger) error {
				engine, err := newTaskEngine(db, 0, logger)
				if err != nil {
					return err
				}
				result := engine.RollbackTask(ctx, id)
				if _, err := report.NewTaskWriter(cmd.OutOrStdout()).WriteRollback(result); err != nil {
					return err
				}
				if !result.Success {
					return errors.New("rollback failed")
				}
				return nil
			})
		},
	}
}

func newTasksStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the number of tasks per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withTaskDB(cmd, func(ctx context.Context, db *database.TaskDB, _ *slog.Logger) error {
				counts, err := db.CountByStatus(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				total := 0
				for _, status := range taskStatuses {
					fmt.Fprintf(out, "%-12s %d\n", status, counts[status])
					total += counts[status]
				}
				fmt.Fprintf(out, "%-12s %d\n", "total", total)
				return nil
			})
		},
	}
}

// withTaskDB loads the configuration, opens the task database and runs fn.
func withTaskDB(cmd *cobra.Command, fn func(ctx context.Context, db *database.TaskDB, logger *slog.Logger) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(cmd.Context(), db, logger)
}

// newTaskEngine creates an engine for task lifecycle operations. Lifecycle
// operations do not read the audit report, so an empty one for the website
// is enough.
func newTaskEngine(db *database.TaskDB, websiteID int64, logger *slog.Logger) (*fixer.Engine, error) {
	return fixer.New(&model.AuditReport{WebsiteID: websiteID}, db, fixer.WithLogger(logger))
}

// parseID parses a positive numeric identifier.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q: must be a positive integer", s)
	}
	return id, nil
}
