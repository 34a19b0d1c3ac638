package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nao1215/perfscan/internal/model"
)

func TestThresholds_Severity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  model.Severity
	}{
		{score: 0, want: model.SeverityHigh},
		{score: 0.1, want: model.SeverityHigh},
		{score: 0.29, want: model.SeverityHigh},
		{score: 0.3, want: model.SeverityMedium},
		{score: 0.5, want: model.SeverityMedium},
		{score: 0.6, want: model.SeverityMedium},
		{score: 0.61, want: model.SeverityLow},
		{score: 1, want: model.SeverityLow},
	}

	th := DefaultThresholds()
	for _, tt := range tests {
		assert.Equal(t, tt.want, th.Severity(tt.score), "score %v", tt.score)
	}
}

func TestThresholds_SeverityOfUsesLowestScore(t *testing.T) {
	t.Parallel()

	th := DefaultThresholds()
	entries := []auditEntry{
		{key: "a", score: 0.8, hasScore: true},
		{key: "b"},
		{key: "c", score: 0.25, hasScore: true},
	}
	assert.Equal(t, model.SeverityHigh, th.severityOf(entries...))
	assert.Equal(t, model.SeverityMedium, th.severityOf(auditEntry{key: "none"}))
}

func TestSortBySeverity_Stable(t *testing.T) {
	t.Parallel()

	issues := []model.Issue{
		{Type: "low-1", Severity: model.SeverityLow},
		{Type: "high-1", Severity: model.SeverityHigh},
		{Type: "medium-1", Severity: model.SeverityMedium},
		{Type: "high-2", Severity: model.SeverityHigh},
		{Type: "low-2", Severity: model.SeverityLow},
	}

	SortBySeverity(issues)

	got := make([]model.IssueType, 0, len(issues))
	for _, issue := range issues {
		got = append(got, issue.Type)
	}
	assert.Equal(t, []model.IssueType{"high-1", "high-2", "medium-1", "low-1", "low-2"}, got)
}
