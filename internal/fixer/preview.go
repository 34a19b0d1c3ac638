package fixer

import (
	"fmt"

	"github.com/nao1215/perfscan/internal/model"
)

// PreviewFix describes the remediation for the issue and its expected
// effect on payload size. It never records a task.
func (e *Engine) PreviewFix(issue *model.Issue) model.FixPreview {
	p, err := e.planFix(issue)
	if err != nil {
		return failedPreview(issue, err)
	}

	var preview model.FixPreview
	switch d := issue.Data.(type) {
	case *model.ImageOptimizationData:
		preview, err = e.previewSavings(issue.Type, d.TotalSavings, len(d.AffectedImages), model.RiskLow)
		for _, img := range d.AffectedImages {
			preview.Changes = append(preview.Changes, "Convert "+img+" to WebP and recompress")
		}
	case *model.CachingHeadersData:
		preview, err = e.previewCaching(d)
	case *model.CSSOptimizationData:
		preview, err = e.previewSavings(issue.Type, d.PotentialSavings,
			len(d.UnminifiedFiles)+d.RenderBlockingCount, model.RiskMedium)
		for _, f := range d.UnminifiedFiles {
			preview.Changes = append(preview.Changes, "Minify "+f)
		}
		if d.RenderBlockingCount > 0 {
			preview.Changes = append(preview.Changes,
				fmt.Sprintf("Inline critical CSS and defer %d render-blocking resources", d.RenderBlockingCount))
		}
	case *model.JavaScriptOptimizationData:
		risk := model.RiskMedium
		if d.BootupTimeMs > 0 && len(d.SlowScripts) > 0 {
			risk = model.RiskHigh
		}
		preview, err = e.previewSavings(issue.Type, d.TotalSavings, len(d.Files)+len(d.SlowScripts), risk)
		for _, f := range d.Files {
			preview.Changes = append(preview.Changes, "Minify "+f)
		}
		for _, s := range d.SlowScripts {
			preview.Changes = append(preview.Changes, "Add defer to "+s)
		}
	}
	if err != nil {
		return failedPreview(issue, err)
	}

	if len(preview.Changes) == 0 {
		preview.Changes = []string{p.result.Message}
	}
	return preview
}

// previewSavings derives before/after sizes from a byte saving, assuming
// the saving is the wasted share of the payload. Without a byte saving the
// payload is estimated from the number of resources involved.
func (e *Engine) previewSavings(t model.IssueType, savings int64, resources int, risk model.RiskLevel) (model.FixPreview, error) {
	if e.wastedFraction <= 0 {
		return model.FixPreview{}, fmt.Errorf("%w: %s has no measurable size", ErrUnsupportedIssue, t)
	}

	if savings > 0 {
		before := int64(float64(savings) / e.wastedFraction)
		return e.sizedPreview(t, before, e.scaled(savings), risk), nil
	}

	if resources <= 0 || e.averageResourceBytes <= 0 {
		return model.FixPreview{}, fmt.Errorf("%w: %s has no measurable size", ErrUnsupportedIssue, t)
	}
	before := int64(resources) * e.averageResourceBytes
	wasted := int64(float64(before) * e.wastedFraction)
	return e.sizedPreview(t, before, e.scaled(wasted), risk), nil
}

// previewCaching estimates repeat-visit transfer: every uncached resource
// is downloaded again on each visit.
func (e *Engine) previewCaching(d *model.CachingHeadersData) (model.FixPreview, error) {
	if d.ResourceCount <= 0 || e.averageResourceBytes <= 0 {
		return model.FixPreview{}, fmt.Errorf("%w: %s has no measurable size", ErrUnsupportedIssue, model.IssueCachingHeaders)
	}

	affected := len(d.MissingCacheResources)
	if affected == 0 {
		affected = d.ResourceCount
	}

	before := int64(d.ResourceCount) * e.averageResourceBytes
	preview := e.sizedPreview(model.IssueCachingHeaders, before,
		e.scaled(int64(affected)*e.averageResourceBytes), model.RiskLow)

	preview.Changes = append(preview.Changes, "Set "+cacheControl(d.RecommendedTTL))
	for _, u := range d.MissingCacheResources {
		preview.Changes = append(preview.Changes, "Cache "+u)
	}
	return preview, nil
}

func (e *Engine) sizedPreview(t model.IssueType, before, reduction int64, risk model.RiskLevel) model.FixPreview {
	if reduction < 1 {
		reduction = 1
	}
	if before < reduction {
		before = reduction
	}

	return model.FixPreview{
		Success:         true,
		Type:            t,
		EstimatedImpact: "Reduce transfer size by " + model.FormatBytes(reduction),
		RiskLevel:       risk,
		Before:          model.SizeSnapshot{TotalSize: before},
		After:           model.SizeSnapshot{TotalSize: before - reduction},
	}
}

func failedPreview(issue *model.Issue, err error) model.FixPreview {
	preview := model.FixPreview{Success: false, Error: err.Error()}
	if issue != nil {
		preview.Type = issue.Type
	}
	return preview
}
