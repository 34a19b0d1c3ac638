package audit

import (
	"fmt"

	"github.com/nao1215/perfscan/internal/model"
)

const (
	keyUnminifiedJS = "unminified-javascript"
	keyBootupTime   = "bootup-time"
)

// detectJavaScript reports unminified scripts and, as supporting evidence,
// scripts with long evaluation time.
func (d *Detector) detectJavaScript(r *rawResults) (model.Issue, bool) {
	passing := d.passingScore(model.IssueJavaScriptOptimization)

	var (
		data    = &model.JavaScriptOptimizationData{Files: []string{}}
		entries []auditEntry
		impact  []string
	)

	if e, ok := r.entry(keyUnminifiedJS); ok && e.failing(passing) {
		entries = append(entries, e)
		data.Files = e.urls()
		data.TotalSavings = e.wastedBytes()
		data.WastedMs = e.wastedMs()
		impact = append(impact, fmt.Sprintf("Could save %s by minifying %s",
			model.FormatBytes(data.TotalSavings),
			plural(len(data.Files), "script", "scripts")))
	}

	if e, ok := r.entry(keyBootupTime); ok && e.failing(passing) {
		entries = append(entries, e)
		var scripting float64
		for _, item := range e.items {
			ms, ok := item.number("scripting")
			if !ok || ms <= 0 {
				continue
			}
			scripting += ms
			if ms >= d.slowScriptMs {
				if u := item.url(); u != "" {
					data.SlowScripts = append(data.SlowScripts, u)
				}
			}
		}
		data.BootupTimeMs = int64(scripting)
		impact = append(impact, fmt.Sprintf("Scripts spend %s evaluating",
			model.FormatDuration(data.BootupTimeMs)))
	}

	if len(entries) == 0 {
		return model.Issue{}, false
	}

	return model.Issue{
		Type:     model.IssueJavaScriptOptimization,
		Severity: d.thresholds.severityOf(entries...),
		Impact:   joinImpact(impact),
		Data:     data,
	}, true
}
