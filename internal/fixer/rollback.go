package fixer

import (
	"context"
	"fmt"

	"github.com/nao1215/perfscan/internal/model"
)

// RollbackFix moves a completed task to rolled_back and persists it.
// Any other status is rejected and left untouched. When persisting fails
// the task's in-memory state is restored.
func (e *Engine) RollbackFix(ctx context.Context, task *model.OptimizationTask) model.RollbackResult {
	if task == nil {
		return model.RollbackResult{Success: false, Error: ErrNilTask.Error()}
	}

	if task.Status != model.TaskCompleted {
		err := &RollbackStateError{TaskID: task.ID, Status: task.Status}
		return model.RollbackResult{Success: false, TaskID: task.ID, Status: task.Status, Error: err.Error()}
	}

	prevStatus, prevUpdated := task.Status, task.UpdatedAt
	if err := task.Transition(model.TaskRolledBack, e.now()); err != nil {
		return model.RollbackResult{Success: false, TaskID: task.ID, Status: task.Status, Error: err.Error()}
	}

	if err := e.repo.Update(ctx, task); err != nil {
		task.Status, task.UpdatedAt = prevStatus, prevUpdated
		return model.RollbackResult{
			Success: false,
			TaskID:  task.ID,
			Status:  task.Status,
			Error:   fmt.Sprintf("failed to persist rollback of task %d: %v", task.ID, err),
		}
	}

	e.logger.Info("optimization task rolled back", "task_id", task.ID, "fix_type", string(task.FixType))
	return model.RollbackResult{Success: true, TaskID: task.ID, Status: task.Status}
}

// RollbackTask loads a task by ID and rolls it back.
func (e *Engine) RollbackTask(ctx context.Context, id int64) model.RollbackResult {
	task, err := e.repo.Get(ctx, id)
	if err != nil {
		return model.RollbackResult{Success: false, TaskID: id, Error: err.Error()}
	}
	return e.RollbackFix(ctx, task)
}
