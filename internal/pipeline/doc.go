// Package pipeline runs the engine over audit-report sources.
//
// A source is either the path of an audit report file or a reference to an
// archived report ("archive:<id>"). Each source is processed by a Pipeline
// of steps that share one model.RunReport: the report is loaded, optionally
// archived, analysed for issues, and its fixes are either applied or
// previewed. BatchProcessor runs pipelines for several sources concurrently
// with errgroup while keeping results in input order.
package pipeline
