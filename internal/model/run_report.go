package model

import "time"

// RunReport is the record of one run of the engine over an audit-report
// source. Pipeline steps fill it in order; report writers render it.
type RunReport struct {
	// Source is where the audit report came from (file path or "archive:<id>").
	Source string `json:"source"`

	// DateProcessed is when the run started.
	DateProcessed time.Time `json:"date_processed"`

	// DryRun is true when fixes were previewed instead of applied.
	DryRun bool `json:"dry_run"`

	// Audit is the loaded audit report.
	Audit *AuditReport `json:"-"`

	// AuditReportID identifies Audit: its archive identifier once archived,
	// otherwise the identifier carried by the report file.
	AuditReportID int64 `json:"audit_report_id,omitempty"`

	// WebsiteID and URL are copied from Audit for output.
	WebsiteID int64  `json:"website_id"`
	URL       string `json:"url,omitempty"`

	// Issues are the detected issues in severity order.
	Issues []Issue `json:"issues"`

	// Previews holds one preview per auto-fixable issue in a dry run.
	Previews []FixPreview `json:"previews,omitempty"`

	// Batch is the outcome of applying fixes. Nil in a dry run.
	Batch *BatchResult `json:"batch,omitempty"`

	// PerformedSteps lists the names of the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error is the last step error. ErrorMessage is its serialized form.
	Error        error  `json:"-"`
	ErrorMessage string `json:"error,omitempty"`

	// Cancelled is true when the run stopped because its context ended.
	Cancelled bool `json:"cancelled,omitempty"`

	// Summary is the condensed view used by report writers.
	Summary *RunSummary `json:"summary,omitempty"`
}

// NewRunReport creates an empty report for the given source.
func NewRunReport(source string) *RunReport {
	return &RunReport{
		Source:        source,
		DateProcessed: time.Now(),
		Issues:        make([]Issue, 0),
	}
}

// SetAudit attaches the loaded audit report and copies its identifiers.
func (r *RunReport) SetAudit(audit *AuditReport) {
	r.Audit = audit
	if audit == nil {
		return
	}
	r.AuditReportID = audit.ID
	r.WebsiteID = audit.WebsiteID
	r.URL = audit.URL
}
