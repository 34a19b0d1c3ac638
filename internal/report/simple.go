package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nao1215/perfscan/internal/model"
)

const ruleWidth = 70

var (
	highColor   = lipgloss.Color("#EF4444") // red
	mediumColor = lipgloss.Color("#F59E0B") // amber-yellow
	lowColor    = lipgloss.Color("#8B949E") // soft blue-gray
	okColor     = lipgloss.Color("#22C55E") // green
)

// SimpleWriter outputs human-readable text reports.
// Severity labels are colored with lipgloss when the output is a terminal
// that supports it, and plain otherwise.
type SimpleWriter struct {
	baseWriter

	renderer *lipgloss.Renderer

	// showEmpty controls whether severities with no issues are shown.
	showEmpty bool

	// verbose adds recommendations and preview changes.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		renderer:   lipgloss.NewRenderer(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	return w.write(summaryOf(report), report.Previews, report.Cancelled)
}

// WriteSummary outputs the summary in human-readable format.
func (w *SimpleWriter) WriteSummary(summary *model.RunSummary) (int, error) {
	return w.write(summary, nil, false)
}

func (w *SimpleWriter) write(summary *model.RunSummary, previews []model.FixPreview, cancelled bool) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary, cancelled)
	w.writeSummary(&sb, summary)
	w.writeIssues(&sb, summary)
	w.writePreviews(&sb, previews)
	w.writeBatch(&sb, summary.Batch)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.RunSummary, cancelled bool) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                          PERFSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Source:     %s\n", summary.Source)
	fmt.Fprintf(sb, "Website:    %d\n", summary.WebsiteID)
	if summary.URL != "" {
		fmt.Fprintf(sb, "URL:        %s\n", summary.URL)
	}
	fmt.Fprintf(sb, "Processed:  %s\n", summary.DateProcessed.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Mode:       %s\n", modeText(summary))
	fmt.Fprintf(sb, "Status:     %s\n", statusText(summary, cancelled))
	sb.WriteString("\n")
}

// writeSummary writes the severity summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, summary *model.RunSummary) {
	w.section(sb, "SEVERITY SUMMARY")

	fmt.Fprintf(sb, "  %s %d\n", w.label(model.SeverityHigh, "HIGH:  "), summary.HighCount)
	fmt.Fprintf(sb, "  %s %d\n", w.label(model.SeverityMedium, "MEDIUM:"), summary.MediumCount)
	fmt.Fprintf(sb, "  %s %d\n", w.label(model.SeverityLow, "LOW:   "), summary.LowCount)
	sb.WriteString("\n")

	fmt.Fprintf(sb, "  TOTAL:   %d issues (%d auto-fixable)\n", summary.TotalIssues(), summary.FixableCount)
	if summary.TotalSavings > 0 {
		fmt.Fprintf(sb, "  SAVINGS: %s (%s bytes)\n",
			model.FormatBytes(summary.TotalSavings), humanize.Comma(summary.TotalSavings))
	}
	sb.WriteString("\n")
}

// writeIssues writes all issues grouped by severity.
func (w *SimpleWriter) writeIssues(sb *strings.Builder, summary *model.RunSummary) {
	if !summary.HasIssues() && !w.showEmpty {
		return
	}

	w.section(sb, "ISSUES")

	for _, severity := range []model.Severity{model.SeverityHigh, model.SeverityMedium, model.SeverityLow} {
		entries := summary.GetIssuesBySeverity(severity)
		if len(entries) == 0 && !w.showEmpty {
			continue
		}

		fmt.Fprintf(sb, "[%s] %s\n", w.indicator(severity), w.label(severity, severity.Label()))
		if len(entries) == 0 {
			sb.WriteString("  No issues\n\n")
			continue
		}

		for _, e := range entries {
			fixable := ""
			if e.AutoFixable {
				fixable = " (auto-fixable)"
			}
			fmt.Fprintf(sb, "  * %s%s\n", e.Title, fixable)
			if e.Impact != "" {
				fmt.Fprintf(sb, "    Impact: %s\n", e.Impact)
			}
			if w.verbose && e.Recommendation != "" {
				fmt.Fprintf(sb, "    Recommendation: %s\n", e.Recommendation)
			}
		}
		sb.WriteString("\n")
	}
}

// writePreviews writes the fix previews of a dry run.
func (w *SimpleWriter) writePreviews(sb *strings.Builder, previews []model.FixPreview) {
	if len(previews) == 0 {
		return
	}

	w.section(sb, "FIX PREVIEWS")

	for _, p := range previews {
		if !p.Success {
			fmt.Fprintf(sb, "  x %s: %s\n", p.Type.Label(), p.Error)
			continue
		}
		fmt.Fprintf(sb, "  > %s [risk: %s]\n", p.Type.Label(), p.RiskLevel)
		fmt.Fprintf(sb, "    %s -> %s bytes. %s\n",
			humanize.Comma(p.Before.TotalSize), humanize.Comma(p.After.TotalSize), p.EstimatedImpact)
		if w.verbose {
			for _, c := range p.Changes {
				fmt.Fprintf(sb, "    - %s\n", c)
			}
		}
	}
	sb.WriteString("\n")
}

// writeBatch writes the outcome of applied fixes.
func (w *SimpleWriter) writeBatch(sb *strings.Builder, batch *model.BatchResult) {
	if batch == nil {
		return
	}

	w.section(sb, "APPLIED FIXES")

	for _, f := range batch.Fixes {
		if f.Success {
			fmt.Fprintf(sb, "  %s %s: %s (task #%d)\n",
				w.renderer.NewStyle().Foreground(okColor).Render("ok"), f.Type.Label(), f.Message, f.TaskID)
			continue
		}
		fmt.Fprintf(sb, "  %s %s: %s\n",
			w.renderer.NewStyle().Foreground(highColor).Render("failed"), f.Type.Label(), f.Error)
	}
	if len(batch.Fixes) > 0 {
		sb.WriteString("\n")
	}

	fmt.Fprintf(sb, "  %d/%d fixes succeeded\n", batch.SuccessfulFixes, batch.TotalFixes)
	fmt.Fprintf(sb, "  Estimated improvement: +%d performance score, %s faster load\n",
		batch.EstimatedImprovement.PerformanceScore, batch.EstimatedImprovement.LoadTimeReduction)
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by perfscan\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}

// label renders text in the color of severity.
func (w *SimpleWriter) label(severity model.Severity, text string) string {
	color := lowColor
	switch severity {
	case model.SeverityHigh:
		color = highColor
	case model.SeverityMedium:
		color = mediumColor
	}
	return w.renderer.NewStyle().Bold(true).Foreground(color).Render(text)
}

// indicator returns a visual indicator for the severity level.
func (w *SimpleWriter) indicator(severity model.Severity) string {
	switch severity {
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	default:
		return "-"
	}
}
