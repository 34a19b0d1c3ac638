package audit

import (
	"slices"

	"github.com/nao1215/perfscan/internal/model"
)

// Default severity thresholds.
const (
	DefaultHighThreshold   = 0.3
	DefaultMediumThreshold = 0.6
)

// Thresholds maps a score in [0,1] to a severity.
// A score below High is high severity, a score up to and including Medium
// is medium severity and anything above is low.
type Thresholds struct {
	High   float64
	Medium float64
}

// DefaultThresholds returns the standard thresholds (0.3, 0.6).
func DefaultThresholds() Thresholds {
	return Thresholds{High: DefaultHighThreshold, Medium: DefaultMediumThreshold}
}

// Severity classifies a single score.
func (t Thresholds) Severity(score float64) model.Severity {
	switch {
	case score < t.High:
		return model.SeverityHigh
	case score <= t.Medium:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

// severityOf classifies the lowest score among entries that carry one.
// Without any score the issue defaults to medium.
func (t Thresholds) severityOf(entries ...auditEntry) model.Severity {
	lowest, ok := lowestScore(entries)
	if !ok {
		return model.SeverityMedium
	}
	return t.Severity(lowest)
}

func lowestScore(entries []auditEntry) (float64, bool) {
	var (
		lowest float64
		found  bool
	)
	for _, e := range entries {
		if !e.hasScore {
			continue
		}
		if !found || e.score < lowest {
			lowest = e.score
			found = true
		}
	}
	return lowest, found
}

// SortBySeverity orders issues from high to low severity in place.
// Issues of equal severity keep their relative order.
func SortBySeverity(issues []model.Issue) {
	slices.SortStableFunc(issues, func(a, b model.Issue) int {
		return b.Severity.Rank() - a.Severity.Rank()
	})
}
