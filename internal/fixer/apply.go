package fixer

import (
	"context"
	"fmt"

	"github.com/nao1215/perfscan/internal/model"
)

// ApplyFix records a remediation task for the issue.
// On success the result carries the new task's ID. On failure no task
// exists and Error explains why.
func (e *Engine) ApplyFix(ctx context.Context, issue *model.Issue) model.FixResult {
	p, err := e.planFix(issue)
	if err != nil {
		return failedFix(issue, err)
	}

	websiteID := issue.WebsiteID
	if websiteID == 0 {
		websiteID = e.report.WebsiteID
	}

	now := e.now()
	task := &model.OptimizationTask{
		WebsiteID: websiteID,
		FixType:   issue.Type,
		Status:    model.TaskPending,
		Details:   p.details,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.repo.Create(ctx, task); err != nil {
		return failedFix(issue, fmt.Errorf("failed to create optimization task: %w", err))
	}

	e.logger.Info("optimization task created",
		"task_id", task.ID,
		"website_id", websiteID,
		"fix_type", string(issue.Type))

	result := p.result
	result.Success = true
	result.TaskID = task.ID
	return result
}

func failedFix(issue *model.Issue, err error) model.FixResult {
	result := model.FixResult{Success: false, Error: err.Error()}
	if issue != nil {
		result.Type = issue.Type
	}
	return result
}
