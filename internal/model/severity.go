package model

import (
	"fmt"
	"strings"
)

// Severity represents how strongly an issue degrades page performance.
// The zero value is SeverityLow so that a missing severity never outranks
// a real one.
type Severity int

const (
	// SeverityLow indicates an issue with a small measured impact.
	// The triggering audit scored above the medium threshold.
	SeverityLow Severity = iota

	// SeverityMedium indicates an issue worth scheduling.
	// The triggering audit scored between the high and medium thresholds,
	// or the issue carries evidence that is always worth fixing
	// (e.g. resources served without any cache lifetime).
	SeverityMedium

	// SeverityHigh indicates an issue that dominates page load.
	// The triggering audit scored below the high threshold.
	SeverityHigh
)

// String returns the lowercase name used in JSON output and the task store.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Label returns the uppercase name used in human-readable reports.
func (s Severity) Label() string {
	return strings.ToUpper(s.String())
}

// Rank returns the sort rank of the severity. Higher ranks come first.
func (s Severity) Rank() int {
	return int(s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity converts a severity name into a Severity.
// Matching is case-insensitive.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	default:
		return SeverityLow, fmt.Errorf("unknown severity %q", name)
	}
}

// AllSeverities lists the severities from most to least severe.
// Report writers iterate over it to group issues.
var AllSeverities = []Severity{SeverityHigh, SeverityMedium, SeverityLow}
