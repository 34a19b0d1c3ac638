package fixer

import (
	"fmt"
	"strings"

	"github.com/nao1215/perfscan/internal/model"
)

// plan is a remediation that has been validated but not yet recorded.
type plan struct {
	result  model.FixResult
	details map[string]any
}

// cacheControl renders the header directive for a TTL in seconds.
func cacheControl(ttl int64) string {
	return fmt.Sprintf("Cache-Control: public, max-age=%d", ttl)
}

// planFix validates the issue and builds the remediation for it.
func (e *Engine) planFix(issue *model.Issue) (plan, error) {
	if issue == nil {
		return plan{}, fmt.Errorf("%w: issue is nil", ErrMissingIssueData)
	}

	switch issue.Type {
	case model.IssueImageOptimization,
		model.IssueCachingHeaders,
		model.IssueCSSOptimization,
		model.IssueJavaScriptOptimization:
	default:
		return plan{}, fmt.Errorf("%w: no automated fix for %q", ErrUnsupportedIssue, issue.Type)
	}

	if issue.Data == nil {
		return plan{}, fmt.Errorf("%w: %s issue has no data", ErrMissingIssueData, issue.Type)
	}
	if issue.Data.IssueType() != issue.Type {
		return plan{}, fmt.Errorf("%w: %s issue carries %s data",
			ErrMissingIssueData, issue.Type, issue.Data.IssueType())
	}

	switch d := issue.Data.(type) {
	case *model.ImageOptimizationData:
		return e.planImages(d)
	case *model.CachingHeadersData:
		return e.planCaching(d)
	case *model.CSSOptimizationData:
		return e.planCSS(d)
	case *model.JavaScriptOptimizationData:
		return e.planJavaScript(d)
	default:
		return plan{}, fmt.Errorf("%w: unexpected data %T", ErrUnsupportedIssue, issue.Data)
	}
}

func (e *Engine) planImages(d *model.ImageOptimizationData) (plan, error) {
	if len(d.AffectedImages) == 0 {
		return plan{}, fmt.Errorf("%w: no affected images", ErrMissingIssueData)
	}

	return plan{
		result: model.FixResult{
			Type:                 model.IssueImageOptimization,
			Message:              fmt.Sprintf("Optimized %d images", len(d.AffectedImages)),
			EstimatedImprovement: model.FormatBytes(e.scaled(d.TotalSavings)),
		},
		details: map[string]any{
			"affected_images": d.AffectedImages,
			"total_savings":   d.TotalSavings,
		},
	}, nil
}

func (e *Engine) planCaching(d *model.CachingHeadersData) (plan, error) {
	if d.RecommendedTTL <= 0 {
		return plan{}, fmt.Errorf("%w: no recommended cache TTL", ErrMissingIssueData)
	}

	affected := len(d.MissingCacheResources)
	if affected == 0 {
		affected = d.ResourceCount
	}
	config := cacheControl(d.RecommendedTTL)

	return plan{
		result: model.FixResult{
			Type:    model.IssueCachingHeaders,
			Message: fmt.Sprintf("Configured caching headers for %d resources", affected),
			Config:  config,
		},
		details: map[string]any{
			"config":                  config,
			"recommended_ttl":         d.RecommendedTTL,
			"missing_cache_resources": d.MissingCacheResources,
			"resource_count":          d.ResourceCount,
		},
	}, nil
}

func (e *Engine) planCSS(d *model.CSSOptimizationData) (plan, error) {
	if len(d.UnminifiedFiles) == 0 && d.RenderBlockingCount == 0 {
		return plan{}, fmt.Errorf("%w: no stylesheets to process", ErrMissingIssueData)
	}

	var parts []string
	if n := len(d.UnminifiedFiles); n > 0 {
		parts = append(parts, fmt.Sprintf("minification of %d stylesheets", n))
	}
	if d.RenderBlockingCount > 0 {
		parts = append(parts, fmt.Sprintf("deferral of %d render-blocking resources", d.RenderBlockingCount))
	}

	return plan{
		result: model.FixResult{
			Type:               model.IssueCSSOptimization,
			Message:            "Scheduled " + strings.Join(parts, " and "),
			FilesToProcess:     len(d.UnminifiedFiles),
			EstimatedReduction: model.FormatBytes(e.scaled(d.PotentialSavings)),
		},
		details: map[string]any{
			"unminified_files":      d.UnminifiedFiles,
			"render_blocking_count": d.RenderBlockingCount,
			"potential_savings":     d.PotentialSavings,
		},
	}, nil
}

func (e *Engine) planJavaScript(d *model.JavaScriptOptimizationData) (plan, error) {
	if len(d.Files) == 0 && len(d.SlowScripts) == 0 {
		return plan{}, fmt.Errorf("%w: no scripts to process", ErrMissingIssueData)
	}

	var parts []string
	if n := len(d.Files); n > 0 {
		parts = append(parts, fmt.Sprintf("minification of %d scripts", n))
	}
	if n := len(d.SlowScripts); n > 0 {
		parts = append(parts, fmt.Sprintf("deferral of %d slow scripts", n))
	}

	details := map[string]any{
		"files":         d.Files,
		"total_savings": d.TotalSavings,
	}
	if len(d.SlowScripts) > 0 {
		details["defer_scripts"] = d.SlowScripts
	}

	return plan{
		result: model.FixResult{
			Type:               model.IssueJavaScriptOptimization,
			Message:            "Scheduled " + strings.Join(parts, " and "),
			FilesToProcess:     len(d.Files),
			EstimatedReduction: model.FormatBytes(e.scaled(d.TotalSavings)),
		},
		details: details,
	}, nil
}
