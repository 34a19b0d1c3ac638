package audit

import (
	"fmt"

	"github.com/nao1215/perfscan/internal/model"
)

const (
	keyRenderBlocking = "render-blocking-resources"
	keyUnminifiedCSS  = "unminified-css"
)

// detectCSS merges render-blocking and unminified stylesheet evidence into
// one issue. The severity follows the worse of the two audits.
func (d *Detector) detectCSS(r *rawResults) (model.Issue, bool) {
	passing := d.passingScore(model.IssueCSSOptimization)

	var (
		data    = &model.CSSOptimizationData{}
		entries []auditEntry
		impact  []string
	)

	if e, ok := r.entry(keyRenderBlocking); ok && e.failing(passing) {
		entries = append(entries, e)
		data.RenderBlockingCount = len(e.items)
		data.RenderBlockingMs = e.wastedMs()
		impact = append(impact, fmt.Sprintf("%s delaying first paint by %s",
			plural(data.RenderBlockingCount, "render-blocking resource", "render-blocking resources"),
			model.FormatDuration(data.RenderBlockingMs)))
	}

	if e, ok := r.entry(keyUnminifiedCSS); ok && e.failing(passing) {
		entries = append(entries, e)
		data.UnminifiedFiles = e.urls()
		data.UnminifiedCount = len(e.items)
		data.PotentialSavings = e.wastedBytes()
		impact = append(impact, fmt.Sprintf("%s could save %s",
			plural(data.UnminifiedCount, "unminified stylesheet", "unminified stylesheets"),
			model.FormatBytes(data.PotentialSavings)))
	}

	if len(entries) == 0 {
		return model.Issue{}, false
	}

	return model.Issue{
		Type:     model.IssueCSSOptimization,
		Severity: d.thresholds.severityOf(entries...),
		Impact:   joinImpact(impact),
		Data:     data,
	}, true
}
