package report

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/nao1215/perfscan/internal/model"
)

// TaskWriter renders optimization tasks for the terminal.
type TaskWriter struct {
	baseWriter

	renderer *lipgloss.Renderer

	// now is the reference time for relative timestamps.
	now func() time.Time
}

// TaskWriterOption configures a TaskWriter.
type TaskWriterOption func(*TaskWriter)

// WithTaskClock sets the reference time used for "3 hours ago" timestamps.
func WithTaskClock(now func() time.Time) TaskWriterOption {
	return func(w *TaskWriter) {
		w.now = now
	}
}

// NewTaskWriter creates a TaskWriter that outputs to the given writer.
func NewTaskWriter(output io.Writer, opts ...TaskWriterOption) *TaskWriter {
	w := &TaskWriter{
		baseWriter: newBaseWriter(output),
		renderer:   lipgloss.NewRenderer(output),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteList writes tasks as a table, one row per task.
func (w *TaskWriter) WriteList(tasks []*model.OptimizationTask) (int, error) {
	if len(tasks) == 0 {
		return io.WriteString(w.output, "No optimization tasks.\n")
	}

	now := w.now()
	cell := w.renderer.NewStyle().Padding(0, 1)
	header := cell.Bold(true)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "WEBSITE", "FIX", "STATUS", "CREATED", "UPDATED").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	for _, task := range tasks {
		t.Row(
			strconv.FormatInt(task.ID, 10),
			strconv.FormatInt(task.WebsiteID, 10),
			task.FixType.Label(),
			w.status(task.Status),
			relativeTime(task.CreatedAt, now),
			relativeTime(task.UpdatedAt, now),
		)
	}

	return io.WriteString(w.output, t.Render()+"\n")
}

// WriteDetail writes a single task with all of its details.
func (w *TaskWriter) WriteDetail(task *model.OptimizationTask) (int, error) {
	now := w.now()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Task #%d\n", task.ID)
	fmt.Fprintf(&sb, "  Website:  %d\n", task.WebsiteID)
	fmt.Fprintf(&sb, "  Fix:      %s\n", task.FixType.Label())
	fmt.Fprintf(&sb, "  Status:   %s\n", w.status(task.Status))
	fmt.Fprintf(&sb, "  Created:  %s (%s)\n", task.CreatedAt.Format(time.RFC3339), relativeTime(task.CreatedAt, now))
	fmt.Fprintf(&sb, "  Updated:  %s (%s)\n", task.UpdatedAt.Format(time.RFC3339), relativeTime(task.UpdatedAt, now))
	if task.ErrorMessage != "" {
		fmt.Fprintf(&sb, "  Error:    %s\n", task.ErrorMessage)
	}

	if len(task.Details) > 0 {
		sb.WriteString("  Details:\n")
		for _, key := range slices.Sorted(maps.Keys(task.Details)) {
			fmt.Fprintf(&sb, "    %s: %s\n", key, detailValue(task.Details[key]))
		}
	}

	return io.WriteString(w.output, sb.String())
}

// WriteRollback writes the outcome of a rollback attempt.
func (w *TaskWriter) WriteRollback(result model.RollbackResult) (int, error) {
	if !result.Success {
		return fmt.Fprintf(w.output, "Rollback failed: %s\n", result.Error)
	}
	return fmt.Fprintf(w.output, "Task #%d is now %s\n", result.TaskID, w.status(result.Status))
}

// status renders a task status in its color.
func (w *TaskWriter) status(s model.TaskStatus) string {
	color := lowColor
	switch s {
	case model.TaskCompleted:
		color = okColor
	case model.TaskFailed:
		color = highColor
	case model.TaskInProgress, model.TaskRolledBack:
		color = mediumColor
	}
	return w.renderer.NewStyle().Foreground(color).Render(string(s))
}

func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// detailValue formats a task detail for display. Byte counts are shown
// with thousands separators.
func detailValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int64:
		return humanize.Comma(val)
	case int:
		return humanize.Comma(int64(val))
	case float64:
		if val == float64(int64(val)) {
			return humanize.Comma(int64(val))
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []string:
		return strings.Join(val, ", ")
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}
