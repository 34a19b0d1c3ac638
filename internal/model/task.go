package model

import (
	"errors"
	"fmt"
	"time"
)

// TaskStatus is the lifecycle state of an OptimizationTask.
type TaskStatus string

const (
	// TaskPending is the state of a freshly created task.
	TaskPending TaskStatus = "pending"

	// TaskInProgress means the remediation has been picked up.
	TaskInProgress TaskStatus = "in_progress"

	// TaskCompleted means the remediation reported success.
	TaskCompleted TaskStatus = "completed"

	// TaskFailed means the remediation reported failure.
	TaskFailed TaskStatus = "failed"

	// TaskRolledBack means a completed remediation was reverted.
	TaskRolledBack TaskStatus = "rolled_back"
)

// ErrInvalidTransition is returned when a task is moved to a status that
// is not reachable from its current one.
var ErrInvalidTransition = errors.New("invalid task status transition")

// taskTransitions lists the statuses reachable from each status.
// Failed and rolled back tasks are terminal.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskPending:    {TaskInProgress, TaskCompleted, TaskFailed},
	TaskInProgress: {TaskCompleted, TaskFailed},
	TaskCompleted:  {TaskRolledBack},
	TaskFailed:     nil,
	TaskRolledBack: nil,
}

// IsValid reports whether s is a known status.
func (s TaskStatus) IsValid() bool {
	_, ok := taskTransitions[s]
	return ok
}

// CanTransitionTo reports whether a task in status s may move to next.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range taskTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s TaskStatus) IsTerminal() bool {
	return s.IsValid() && len(taskTransitions[s]) == 0
}

// ParseTaskStatus converts a stored status name into a TaskStatus.
func ParseTaskStatus(name string) (TaskStatus, error) {
	s := TaskStatus(name)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown task status %q", name)
	}
	return s, nil
}

// OptimizationTask is the persisted record of a scheduled remediation.
type OptimizationTask struct {
	ID           int64          `json:"id"`
	WebsiteID    int64          `json:"website_id"`
	FixType      IssueType      `json:"fix_type"`
	Status       TaskStatus     `json:"status"`
	Details      map[string]any `json:"details,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Transition moves the task to next and stamps UpdatedAt.
// The task is left untouched when the move is not allowed.
func (t *OptimizationTask) Transition(next TaskStatus, now time.Time) error {
	if !t.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, next)
	}
	t.Status = next
	t.UpdatedAt = now
	return nil
}
