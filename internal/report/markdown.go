package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/perfscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// Tables, alerts and the severity pie chart are built with nao1215/markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format, including fix previews.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	return w.write(summaryOf(report), report.Previews, report.Cancelled)
}

// WriteSummary outputs the summary in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.RunSummary) (int, error) {
	return w.write(summary, nil, false)
}

func (w *MarkdownWriter) write(summary *model.RunSummary, previews []model.FixPreview, cancelled bool) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary, cancelled)
	w.writeSummary(md, summary)
	w.writeIssues(md, summary)
	w.writePreviews(md, previews)
	w.writeBatch(md, summary.Batch)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.RunSummary, cancelled bool) {
	md.H1("perfscan Report")
	md.PlainText("")

	url := summary.URL
	if url == "" {
		url = "-"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", "`" + summary.Source + "`"},
			{"Website", strconv.FormatInt(summary.WebsiteID, 10)},
			{"URL", url},
			{"Processed", summary.DateProcessed.Format("2006-01-02 15:04:05 MST")},
			{"Mode", modeText(summary)},
			{"Status", w.statusBadge(summary, cancelled)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) statusBadge(summary *model.RunSummary, cancelled bool) string {
	text := statusText(summary, cancelled)
	switch {
	case cancelled:
		return "⚠️ " + text
	case summary.Error != "":
		return "❌ " + text
	default:
		return "✅ " + text
	}
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 High", strconv.Itoa(summary.HighCount)},
			{"🟡 Medium", strconv.Itoa(summary.MediumCount)},
			{"🔵 Low", strconv.Itoa(summary.LowCount)},
			{"**Total**", "**" + strconv.Itoa(summary.TotalIssues()) + "**"},
			{"Auto-fixable", strconv.Itoa(summary.FixableCount)},
			{"Potential savings", model.FormatBytes(summary.TotalSavings)},
		},
	})
	md.PlainText("")

	if summary.HasIssues() {
		w.writePieChart(md, summary)
	}

	w.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.RunSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Severity Distribution"),
		piechart.WithShowData(true),
	)

	if summary.HighCount > 0 {
		chart.LabelAndIntValue("High", uint64(summary.HighCount))
	}
	if summary.MediumCount > 0 {
		chart.LabelAndIntValue("Medium", uint64(summary.MediumCount))
	}
	if summary.LowCount > 0 {
		chart.LabelAndIntValue("Low", uint64(summary.LowCount))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.RunSummary) {
	switch {
	case summary.HighCount > 0:
		md.Warningf(
			"%d high severity issue(s) dominate page load and should be fixed first.",
			summary.HighCount,
		)
	case summary.MediumCount > 0:
		md.Importantf(
			"%d medium severity issue(s) are worth scheduling.",
			summary.MediumCount,
		)
	case summary.HasIssues():
		md.Note("Only low severity issues detected.")
	default:
		md.Tip("No performance issues detected.")
	}
	md.PlainText("")
}

// writeIssues writes all issues grouped by severity.
func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("Issues")
	md.PlainText("")

	if !summary.HasIssues() {
		md.PlainText("No performance issues detected.")
		md.PlainText("")
		return
	}

	severities := []struct {
		level  model.Severity
		header string
	}{
		{model.SeverityHigh, "🔴 High"},
		{model.SeverityMedium, "🟡 Medium"},
		{model.SeverityLow, "🔵 Low"},
	}

	for _, sev := range severities {
		entries := summary.GetIssuesBySeverity(sev.level)
		if len(entries) == 0 {
			continue
		}

		md.H3(sev.header)
		md.PlainText("")

		rows := make([][]string, len(entries))
		for i, e := range entries {
			rows[i] = []string{
				e.Title,
				e.Impact,
				savingsText(e.Savings),
				yesNo(e.AutoFixable),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Issue", "Impact", "Savings", "Auto-fix"},
			Rows:   rows,
		})
		md.PlainText("")

		for _, e := range entries {
			if e.Recommendation != "" {
				md.Details(e.Title, e.Recommendation)
			}
		}
		md.PlainText("")
	}
}

// writePreviews writes the fix previews of a dry run.
func (w *MarkdownWriter) writePreviews(md *markdown.Markdown, previews []model.FixPreview) {
	if len(previews) == 0 {
		return
	}

	md.H2("Fix Previews")
	md.PlainText("")

	rows := make([][]string, len(previews))
	for i, p := range previews {
		if !p.Success {
			rows[i] = []string{p.Type.Label(), "-", "-", "-", "❌ " + p.Error}
			continue
		}
		rows[i] = []string{
			p.Type.Label(),
			string(p.RiskLevel),
			humanize.Comma(p.Before.TotalSize) + " B",
			humanize.Comma(p.After.TotalSize) + " B",
			p.EstimatedImpact,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Fix", "Risk", "Before", "After", "Impact"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, p := range previews {
		if len(p.Changes) > 0 {
			md.H4(p.Type.Label())
			md.BulletList(p.Changes...)
			md.PlainText("")
		}
	}
}

// writeBatch writes the outcome of applied fixes.
func (w *MarkdownWriter) writeBatch(md *markdown.Markdown, batch *model.BatchResult) {
	if batch == nil {
		return
	}

	md.H2("Applied Fixes")
	md.PlainText("")

	if batch.TotalFixes == 0 {
		md.PlainText("No auto-fixable issues.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(batch.Fixes))
	for i, f := range batch.Fixes {
		result := "✅ " + f.Message
		task := "#" + strconv.FormatInt(f.TaskID, 10)
		if !f.Success {
			result = "❌ " + f.Error
			task = "-"
		}
		rows[i] = []string{f.Type.Label(), result, task}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Fix", "Result", "Task"},
		Rows:   rows,
	})
	md.PlainText("")

	md.PlainTextf("**%d of %d fixes succeeded.** Estimated improvement: +%d performance score, %s faster load.",
		batch.SuccessfulFixes,
		batch.TotalFixes,
		batch.EstimatedImprovement.PerformanceScore,
		batch.EstimatedImprovement.LoadTimeReduction,
	)
	md.PlainText("")

	if len(batch.Errors) > 0 {
		md.Cautionf("%d fix(es) failed.", batch.FailedFixes)
		md.PlainText("")
		md.BulletList(batch.Errors...)
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [perfscan](https://github.com/nao1215/perfscan)*")
}

func savingsText(n int64) string {
	if n <= 0 {
		return "-"
	}
	return fmt.Sprintf("%s (%s bytes)", model.FormatBytes(n), humanize.Comma(n))
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
