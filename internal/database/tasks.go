package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/perfscan/internal/model"
)

const taskColumns = `id, website_id, fix_type, status, details, error_message, created_at, updated_at`

// Create inserts a new optimization task and sets its ID.
// Zero timestamps are stamped with the current time.
func (tdb *TaskDB) Create(ctx context.Context, task *model.OptimizationTask) error {
	if task == nil {
		return errors.New("task is nil")
	}
	if !task.Status.IsValid() {
		return fmt.Errorf("invalid task status %q", task.Status)
	}

	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = task.CreatedAt
	}

	details, err := marshalDetails(task.Details)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO optimization_tasks (website_id, fix_type, status, details, error_message, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tdb.db.ExecContext(ctx, query,
		task.WebsiteID,
		string(task.FixType),
		string(task.Status),
		details,
		task.ErrorMessage,
		formatTimestamp(task.CreatedAt),
		formatTimestamp(task.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert optimization task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read task id: %w", err)
	}
	task.ID = id
	return nil
}

// Get retrieves a task by ID. It returns ErrTaskNotFound for unknown IDs.
func (tdb *TaskDB) Get(ctx context.Context, id int64) (*model.OptimizationTask, error) {
	query := `SELECT ` + taskColumns + ` FROM optimization_tasks WHERE id = ?`

	task, err := scanTask(tdb.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get optimization task: %w", err)
	}
	return task, nil
}

// Update stores the status, details, error message and update time of an
// existing task. It returns ErrTaskNotFound when the task does not exist.
func (tdb *TaskDB) Update(ctx context.Context, task *model.OptimizationTask) error {
	if task == nil {
		return errors.New("task is nil")
	}
	if !task.Status.IsValid() {
		return fmt.Errorf("invalid task status %q", task.Status)
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = time.Now().UTC()
	}

	details, err := marshalDetails(task.Details)
	if err != nil {
		return err
	}

	query := `
	UPDATE optimization_tasks
	SET status = ?, details = ?, error_message = ?, updated_at = ?
	WHERE id = ?
	`

	result, err := tdb.db.ExecContext(ctx, query,
		string(task.Status),
		details,
		task.ErrorMessage,
		formatTimestamp(task.UpdatedAt),
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update optimization task: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", ErrTaskNotFound, task.ID)
	}
	return nil
}

// ListByWebsite returns the tasks of a website, oldest first.
func (tdb *TaskDB) ListByWebsite(ctx context.Context, websiteID int64) ([]*model.OptimizationTask, error) {
	query := `SELECT ` + taskColumns + ` FROM optimization_tasks WHERE website_id = ? ORDER BY id`
	return tdb.queryTasks(ctx, query, websiteID)
}

// ListByStatus returns the tasks in the given status, oldest first.
func (tdb *TaskDB) ListByStatus(ctx context.Context, status model.TaskStatus) ([]*model.OptimizationTask, error) {
	query := `SELECT ` + taskColumns + ` FROM optimization_tasks WHERE status = ? ORDER BY id`
	return tdb.queryTasks(ctx, query, string(status))
}

// ListRecent returns up to limit tasks, newest first.
func (tdb *TaskDB) ListRecent(ctx context.Context, limit int) ([]*model.OptimizationTask, error) {
	query := `SELECT ` + taskColumns + ` FROM optimization_tasks ORDER BY id DESC LIMIT ?`
	return tdb.queryTasks(ctx, query, limit)
}

// CountByStatus returns the number of tasks per status.
func (tdb *TaskDB) CountByStatus(ctx context.Context) (map[model.TaskStatus]int, error) {
	rows, err := tdb.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM optimization_tasks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.TaskStatus]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan task count: %w", err)
		}
		counts[model.TaskStatus(status)] = count
	}
	return counts, rows.Err()
}

func (tdb *TaskDB) queryTasks(ctx context.Context, query string, args ...any) ([]*model.OptimizationTask, error) {
	rows, err := tdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query optimization tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*model.OptimizationTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan optimization task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*model.OptimizationTask, error) {
	var (
		task      model.OptimizationTask
		fixType   string
		status    string
		details   sql.NullString
		createdAt string
		updatedAt string
	)

	if err := row.Scan(
		&task.ID,
		&task.WebsiteID,
		&fixType,
		&status,
		&details,
		&task.ErrorMessage,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := model.ParseTaskStatus(status)
	if err != nil {
		return nil, err
	}
	task.Status = parsed
	task.FixType = model.IssueType(fixType)
	task.CreatedAt = parseTimestamp(createdAt)
	task.UpdatedAt = parseTimestamp(updatedAt)

	if details.Valid && details.String != "" {
		if err := json.Unmarshal([]byte(details.String), &task.Details); err != nil {
			return nil, fmt.Errorf("failed to parse task details: %w", err)
		}
	}
	return &task, nil
}

func marshalDetails(details map[string]any) (any, error) {
	if len(details) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize task details: %w", err)
	}
	return string(b), nil
}
