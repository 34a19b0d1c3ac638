package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when no audit-report file is specified.
	ErrNoTarget = errors.New("no target specified: provide at least one audit report file")

	// ErrInvalidThresholds is returned when the severity thresholds are
	// outside [0,1] or the high threshold exceeds the medium threshold.
	ErrInvalidThresholds = errors.New("invalid severity thresholds: need 0 <= high <= medium <= 1")

	// ErrInvalidPassingScore is returned when a passing score is outside [0,1].
	ErrInvalidPassingScore = errors.New("invalid passing score: must be between 0 and 1")

	// ErrInvalidReductionRatio is returned when the reduction ratio is not in (0,1].
	ErrInvalidReductionRatio = errors.New("invalid reduction ratio: must be greater than 0 and at most 1")

	// ErrInvalidWastedFraction is returned when the wasted fraction is not in (0,1].
	ErrInvalidWastedFraction = errors.New("invalid wasted fraction: must be greater than 0 and at most 1")

	// ErrInvalidTTL is returned when the recommended cache TTL is not positive.
	ErrInvalidTTL = errors.New("invalid recommended TTL: must be positive")

	// ErrInvalidResourceSize is returned when the average resource size is not positive.
	ErrInvalidResourceSize = errors.New("invalid average resource size: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
