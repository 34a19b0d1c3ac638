package fixer

import (
	"errors"
	"fmt"

	"github.com/nao1215/perfscan/internal/model"
)

var (
	// ErrNoAuditReport is returned by New when no audit report is given.
	ErrNoAuditReport = errors.New("audit report is required")

	// ErrNoTaskRepository is returned by New when no task repository is given.
	ErrNoTaskRepository = errors.New("task repository is required")

	// ErrUnsupportedIssue means there is no remediation for the issue.
	ErrUnsupportedIssue = errors.New("unsupported issue")

	// ErrMissingIssueData means the issue payload is absent, of the wrong
	// type or lacks the fields the remediation needs.
	ErrMissingIssueData = errors.New("missing issue data")

	// ErrCannotRollback means the task is not in a state that can be rolled back.
	ErrCannotRollback = errors.New("cannot rollback task")

	// ErrNilTask is returned when a task operation receives no task.
	ErrNilTask = errors.New("task is required")
)

// RollbackStateError reports a rollback attempted from a status other than
// completed. It matches ErrCannotRollback with errors.Is.
type RollbackStateError struct {
	TaskID int64
	Status model.TaskStatus
}

func (e *RollbackStateError) Error() string {
	return fmt.Sprintf("Cannot rollback task %d: status is %s", e.TaskID, e.Status)
}

func (e *RollbackStateError) Unwrap() error {
	return ErrCannotRollback
}
