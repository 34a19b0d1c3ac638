package database

import "errors"

var (
	// ErrTaskNotFound is returned when no task has the requested ID.
	ErrTaskNotFound = errors.New("task not found")

	// ErrAuditReportNotFound is returned when no archived audit report has
	// the requested ID.
	ErrAuditReportNotFound = errors.New("audit report not found")
)
