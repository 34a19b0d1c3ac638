// Package model defines the core data structures shared by the audit
// detector, the fix engine, the task store and the report writers.
//
// It contains:
//   - AuditReport: a single audit run with the auditing tool's raw results
//   - Issue: a typed performance problem derived from raw results
//   - OptimizationTask: a persisted remediation record and its lifecycle
//   - FixResult, FixPreview, BatchResult, RollbackResult: engine outputs
//   - RunReport and RunSummary: the record of one CLI run over a report
//
// All output types carry JSON tags so that a calling layer can serialize
// them directly.
package model
