// Package fixer plans, previews, applies and rolls back remediations for
// detected performance issues.
//
// An Engine is bound to one audit report and one TaskRepository. Applying
// a fix never touches the website; it records an OptimizationTask that an
// external worker picks up. The task is the only side effect, and it is
// created if and only if the returned FixResult reports success.
//
//	engine, err := fixer.New(report, repo)
//	if err != nil {
//		return err
//	}
//	batch, err := engine.ApplyAllFixes(ctx)
//
// Failures of individual fixes are reported in the result values rather
// than as Go errors, so a batch always runs to the end.
package fixer
