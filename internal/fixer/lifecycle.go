package fixer

import (
	"context"
	"fmt"
	"strings"

	"github.com/nao1215/perfscan/internal/model"
)

// Outcome is a progress report from the worker executing a task.
type Outcome string

const (
	// OutcomeStarted means the worker picked the task up.
	OutcomeStarted Outcome = "started"

	// OutcomeSucceeded means the remediation finished.
	OutcomeSucceeded Outcome = "succeeded"

	// OutcomeFailed means the remediation gave up.
	OutcomeFailed Outcome = "failed"
)

// defaultFailureMessage is recorded when a failure is reported without one.
const defaultFailureMessage = "remediation failed"

// ParseOutcome converts a name such as "succeeded" into an Outcome.
func ParseOutcome(name string) (Outcome, error) {
	switch o := Outcome(strings.ToLower(strings.TrimSpace(name))); o {
	case OutcomeStarted, OutcomeSucceeded, OutcomeFailed:
		return o, nil
	default:
		return "", fmt.Errorf("unknown outcome %q (want started, succeeded or failed)", name)
	}
}

// status returns the task status an outcome leads to.
func (o Outcome) status() model.TaskStatus {
	switch o {
	case OutcomeStarted:
		return model.TaskInProgress
	case OutcomeSucceeded:
		return model.TaskCompleted
	case OutcomeFailed:
		return model.TaskFailed
	default:
		return ""
	}
}

// AdvanceTask applies a worker's outcome to the task with the given ID and
// persists it. message is recorded as the error message of a failed task.
// Transitions the task lifecycle does not allow return
// model.ErrInvalidTransition.
func (e *Engine) AdvanceTask(ctx context.Context, id int64, outcome Outcome, message string) (*model.OptimizationTask, error) {
	next := outcome.status()
	if next == "" {
		return nil, fmt.Errorf("unknown outcome %q", outcome)
	}

	task, err := e.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load task %d: %w", id, err)
	}

	if err := task.Transition(next, e.now()); err != nil {
		return nil, fmt.Errorf("task %d: %w", id, err)
	}
	if next == model.TaskFailed {
		if message == "" {
			message = defaultFailureMessage
		}
		task.ErrorMessage = message
	}

	if err := e.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task %d: %w", id, err)
	}

	e.logger.Info("optimization task advanced",
		"task_id", task.ID,
		"status", string(task.Status))
	return task, nil
}

// Tasks returns the tasks recorded for the engine's website.
func (e *Engine) Tasks(ctx context.Context) ([]*model.OptimizationTask, error) {
	return e.repo.ListByWebsite(ctx, e.report.WebsiteID)
}
