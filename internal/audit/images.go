package audit

import (
	"fmt"

	"github.com/nao1215/perfscan/internal/model"
)

// Audit keys contributing to image_optimization.
const (
	keyWebPImages      = "uses-webp-images"
	keyOptimizedImages = "uses-optimized-images"
)

// detectImages merges the modern-format and recompression audits.
// Every item counts, so an image reported by both audits appears twice.
func (d *Detector) detectImages(r *rawResults) (model.Issue, bool) {
	entries := d.failingEntries(r, model.IssueImageOptimization, keyWebPImages, keyOptimizedImages)
	if len(entries) == 0 {
		return model.Issue{}, false
	}

	data := &model.ImageOptimizationData{AffectedImages: []string{}}
	for _, e := range entries {
		data.AffectedImages = append(data.AffectedImages, e.urls()...)
		data.TotalSavings += e.wastedBytes()
		data.WastedMs += e.wastedMs()
	}

	impact := fmt.Sprintf("Could save %s by optimizing %s",
		model.FormatBytes(data.TotalSavings),
		plural(len(data.AffectedImages), "image", "images"))
	if len(data.AffectedImages) == 0 {
		impact = "Image audits scored below the passing score without naming any image"
	}

	return model.Issue{
		Type:     model.IssueImageOptimization,
		Severity: d.thresholds.severityOf(entries...),
		Impact:   impact,
		Data:     data,
	}, true
}
