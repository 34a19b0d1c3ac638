package fixer

import "github.com/nao1215/perfscan/internal/model"

// CanAutoFix reports whether the engine can remediate the issue.
// An explicit AutoFixable flag is authoritative; otherwise the issue type's
// capability decides. A nil issue is never fixable.
func CanAutoFix(issue *model.Issue) bool {
	if issue == nil {
		return false
	}
	if issue.AutoFixable != nil {
		return *issue.AutoFixable
	}
	return model.GetIssueTypeInfo(issue.Type).AutoFixable
}

// CanAutoFix is the Engine form of the package-level CanAutoFix.
func (e *Engine) CanAutoFix(issue *model.Issue) bool {
	return CanAutoFix(issue)
}
