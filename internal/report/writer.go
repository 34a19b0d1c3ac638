package report

import (
	"io"

	"github.com/nao1215/perfscan/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the run report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.RunReport) (int, error)

	// WriteSummary outputs only the condensed summary of a run.
	WriteSummary(summary *model.RunSummary) (int, error)
}

// MultiWriter writes to multiple Writers in turn.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.RunReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSummary outputs the summary to all configured Writers.
func (m *MultiWriter) WriteSummary(summary *model.RunSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSummary(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// summaryOf returns the report's summary, building it when missing.
func summaryOf(report *model.RunReport) *model.RunSummary {
	if report.Summary == nil {
		report.Summary = model.NewRunSummary(report)
	}
	return report.Summary
}

// statusText describes how a run ended.
func statusText(summary *model.RunSummary, cancelled bool) string {
	switch {
	case cancelled:
		return "Cancelled (partial results)"
	case summary.Error != "":
		return "Error - " + summary.Error
	default:
		return "Complete"
	}
}

// modeText describes what a run did with the detected issues.
func modeText(summary *model.RunSummary) string {
	switch {
	case summary.DryRun:
		return "Dry run (fixes previewed)"
	case summary.Batch != nil:
		return "Fixes applied"
	default:
		return "Detection only"
	}
}
