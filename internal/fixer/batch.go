package fixer

import (
	"context"
	"fmt"

	"github.com/nao1215/perfscan/internal/model"
)

// ApplyAllFixes detects the report's issues and applies every auto-fixable
// one in severity order. A failing fix, including one that panics, is
// counted and reported without stopping the batch.
//
// The returned error is non-nil only when the report cannot be analysed.
func (e *Engine) ApplyAllFixes(ctx context.Context) (model.BatchResult, error) {
	issues, err := e.DetectIssues()
	if err != nil {
		return model.BatchResult{Errors: []string{}}, err
	}
	return e.ApplyFixes(ctx, issues), nil
}

// ApplyFixes applies every auto-fixable issue of issues in order.
func (e *Engine) ApplyFixes(ctx context.Context, issues []model.Issue) model.BatchResult {
	result := model.BatchResult{
		Errors: []string{},
		Fixes:  []model.FixResult{},
	}

	var savingsMs int64
	for i := range issues {
		issue := &issues[i]
		if !CanAutoFix(issue) {
			continue
		}

		fix := e.safeApplyFix(ctx, issue)
		result.Fixes = append(result.Fixes, fix)

		if !fix.Success {
			result.FailedFixes++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", issue.Type, fix.Error))
			e.logger.Warn("fix failed", "fix_type", string(issue.Type), "error", fix.Error)
			continue
		}

		result.SuccessfulFixes++
		result.EstimatedImprovement.PerformanceScore += e.scoreWeights[issue.Type]
		savingsMs += model.IssueSavingsMs(*issue)
	}

	result.TotalFixes = result.SuccessfulFixes + result.FailedFixes
	result.EstimatedImprovement.PerformanceScore = min(
		result.EstimatedImprovement.PerformanceScore, e.maxPerformanceScore)
	result.EstimatedImprovement.LoadTimeReductionMs = savingsMs
	result.EstimatedImprovement.LoadTimeReduction = model.FormatDuration(savingsMs)

	e.logger.Debug("batch applied",
		"total", result.TotalFixes,
		"successful", result.SuccessfulFixes,
		"failed", result.FailedFixes)

	return result
}

// safeApplyFix applies one fix and converts a panic into a failed result.
func (e *Engine) safeApplyFix(ctx context.Context, issue *model.Issue) (result model.FixResult) {
	defer func() {
		if r := recover(); r != nil {
			result = failedFix(issue, fmt.Errorf("panic while applying fix: %v", r))
		}
	}()
	return e.ApplyFix(ctx, issue)
}

// PreviewAll previews every auto-fixable issue of issues in order.
func (e *Engine) PreviewAll(issues []model.Issue) []model.FixPreview {
	previews := make([]model.FixPreview, 0, len(issues))
	for i := range issues {
		if !CanAutoFix(&issues[i]) {
			continue
		}
		previews = append(previews, e.PreviewFix(&issues[i]))
	}
	return previews
}
