package model

import "time"

// RunSummary is a condensed, human-oriented view of a RunReport.
type RunSummary struct {
	Source        string    `json:"source"`
	URL           string    `json:"url,omitempty"`
	WebsiteID     int64     `json:"website_id"`
	DateProcessed time.Time `json:"date_processed"`
	DryRun        bool      `json:"dry_run"`

	HighCount   int `json:"high_count"`
	MediumCount int `json:"medium_count"`
	LowCount    int `json:"low_count"`

	// FixableCount is the number of issues the engine can fix automatically.
	FixableCount int `json:"fixable_count"`

	// TotalSavings is the sum of byte savings over all issues.
	TotalSavings int64 `json:"total_savings"`

	Entries []IssueEntry `json:"entries,omitempty"`

	// Batch mirrors RunReport.Batch.
	Batch *BatchResult `json:"batch,omitempty"`

	Error string `json:"error,omitempty"`
}

// IssueEntry is one issue as shown in a summary.
type IssueEntry struct {
	Type           IssueType `json:"type"`
	Title          string    `json:"title"`
	Severity       Severity  `json:"severity"`
	Impact         string    `json:"impact"`
	Recommendation string    `json:"recommendation,omitempty"`
	AutoFixable    bool      `json:"auto_fixable"`
	Savings        int64     `json:"savings,omitempty"`
}

// NewRunSummary condenses a RunReport.
func NewRunSummary(report *RunReport) *RunSummary {
	summary := &RunSummary{
		Source:        report.Source,
		URL:           report.URL,
		WebsiteID:     report.WebsiteID,
		DateProcessed: report.DateProcessed,
		DryRun:        report.DryRun,
		Batch:         report.Batch,
		Entries:       make([]IssueEntry, 0, len(report.Issues)),
	}

	if report.Error != nil {
		summary.Error = report.Error.Error()
	} else if report.ErrorMessage != "" {
		summary.Error = report.ErrorMessage
	}

	for _, issue := range report.Issues {
		info := GetIssueTypeInfo(issue.Type)
		fixable := info.AutoFixable
		if issue.AutoFixable != nil {
			fixable = *issue.AutoFixable
		}

		entry := IssueEntry{
			Type:           issue.Type,
			Title:          issue.Type.Label(),
			Severity:       issue.Severity,
			Impact:         issue.Impact,
			Recommendation: info.Recommendation,
			AutoFixable:    fixable,
			Savings:        IssueSavings(issue),
		}
		summary.Entries = append(summary.Entries, entry)
		summary.TotalSavings += entry.Savings

		if fixable {
			summary.FixableCount++
		}
		switch issue.Severity {
		case SeverityHigh:
			summary.HighCount++
		case SeverityMedium:
			summary.MediumCount++
		default:
			summary.LowCount++
		}
	}

	return summary
}

// TotalIssues returns the number of issues in the summary.
func (s *RunSummary) TotalIssues() int {
	return s.HighCount + s.MediumCount + s.LowCount
}

// HasIssues reports whether any issue was detected.
func (s *RunSummary) HasIssues() bool {
	return s.TotalIssues() > 0
}

// GetIssuesBySeverity returns the entries with the given severity.
func (s *RunSummary) GetIssuesBySeverity(severity Severity) []IssueEntry {
	var result []IssueEntry
	for _, e := range s.Entries {
		if e.Severity == severity {
			result = append(result, e)
		}
	}
	return result
}

// IssueSavings returns the byte savings recorded in an issue's payload.
// Issues without a byte measure report zero.
func IssueSavings(issue Issue) int64 {
	switch d := issue.Data.(type) {
	case *ImageOptimizationData:
		return d.TotalSavings
	case *CSSOptimizationData:
		return d.PotentialSavings
	case *JavaScriptOptimizationData:
		return d.TotalSavings
	default:
		return 0
	}
}

// IssueSavingsMs returns the load-time savings recorded in an issue's payload.
func IssueSavingsMs(issue Issue) int64 {
	switch d := issue.Data.(type) {
	case *ImageOptimizationData:
		return d.WastedMs
	case *CSSOptimizationData:
		return d.RenderBlockingMs
	case *JavaScriptOptimizationData:
		return d.WastedMs
	default:
		return 0
	}
}
