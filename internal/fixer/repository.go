package fixer

import (
	"context"

	"github.com/nao1215/perfscan/internal/model"
)

// TaskRepository persists optimization tasks.
type TaskRepository interface {
	// Create stores a new task and sets its ID.
	Create(ctx context.Context, task *model.OptimizationTask) error

	// Get returns the task with the given ID.
	Get(ctx context.Context, id int64) (*model.OptimizationTask, error)

	// Update stores the status, details and error message of an existing task.
	Update(ctx context.Context, task *model.OptimizationTask) error

	// ListByWebsite returns the tasks of a website, oldest first.
	ListByWebsite(ctx context.Context, websiteID int64) ([]*model.OptimizationTask, error)
}
