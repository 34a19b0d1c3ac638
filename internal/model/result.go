package model

// FixResult is the outcome of applying a fix to one issue.
// Only the fields relevant to the issue type are set.
type FixResult struct {
	Success bool      `json:"success"`
	Type    IssueType `json:"type,omitempty"`
	Message string    `json:"message,omitempty"`

	// EstimatedImprovement is the expected byte saving of an image fix.
	EstimatedImprovement string `json:"estimated_improvement,omitempty"`

	// Config is the server directive produced by a caching fix.
	Config string `json:"config,omitempty"`

	// FilesToProcess and EstimatedReduction describe CSS and JavaScript fixes.
	FilesToProcess     int    `json:"files_to_process,omitempty"`
	EstimatedReduction string `json:"estimated_reduction,omitempty"`

	// TaskID is the OptimizationTask created for a successful fix.
	TaskID int64 `json:"task_id,omitempty"`

	Error string `json:"error,omitempty"`
}

// RiskLevel grades how likely a fix is to change page behaviour.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// SizeSnapshot is the payload size on one side of a preview.
type SizeSnapshot struct {
	TotalSize int64 `json:"total_size"`
}

// FixPreview describes what a fix would change without applying it.
// For a successful preview After.TotalSize is always below Before.TotalSize.
type FixPreview struct {
	Success         bool         `json:"success"`
	Type            IssueType    `json:"type,omitempty"`
	Changes         []string     `json:"changes,omitempty"`
	EstimatedImpact string       `json:"estimated_impact,omitempty"`
	RiskLevel       RiskLevel    `json:"risk_level,omitempty"`
	Before          SizeSnapshot `json:"before"`
	After           SizeSnapshot `json:"after"`
	Error           string       `json:"error,omitempty"`
}

// ImprovementEstimate is the aggregate gain expected from a batch of fixes.
type ImprovementEstimate struct {
	PerformanceScore    int    `json:"performance_score"`
	LoadTimeReduction   string `json:"load_time_reduction"`
	LoadTimeReductionMs int64  `json:"load_time_reduction_ms"`
}

// BatchResult is the outcome of applying every auto-fixable issue of a report.
// TotalFixes always equals SuccessfulFixes + FailedFixes.
type BatchResult struct {
	TotalFixes           int                 `json:"total_fixes"`
	SuccessfulFixes      int                 `json:"successful_fixes"`
	FailedFixes          int                 `json:"failed_fixes"`
	Errors               []string            `json:"errors"`
	Fixes                []FixResult         `json:"fixes,omitempty"`
	EstimatedImprovement ImprovementEstimate `json:"estimated_improvement"`
}

// RollbackResult is the outcome of a rollback attempt.
type RollbackResult struct {
	Success bool       `json:"success"`
	TaskID  int64      `json:"task_id,omitempty"`
	Status  TaskStatus `json:"status,omitempty"`
	Error   string     `json:"error,omitempty"`
}
