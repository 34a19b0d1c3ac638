package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/perfscan/internal/model"
)

// DefaultConcurrency is the number of sources processed at once when no
// concurrency is configured.
const DefaultConcurrency = 4

// BatchProcessor handles concurrent processing of multiple audit-report
// sources. It uses errgroup to manage goroutines and respect concurrency
// limits. Every source gets a fresh pipeline from the factory, so engines
// and step state never leak between sources.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each source.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent pipelines.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed run reports in input order.
	results []*model.RunReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent pipelines.
// Values below one are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
		results:         make([]*model.RunReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch runs a pipeline for every source.
//
// Returns one report per source, in input order, even for sources that
// failed. A source skipped because the batch was cancelled gets a report
// marked as cancelled. The error is non-nil only when the context ended.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sources []string) ([]*model.RunReport, error) {
	bp.logger.Info("starting batch processing",
		"total_sources", len(sources),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	bp.results = make([]*model.RunReport, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			report := model.NewRunReport(source)

			select {
			case <-gctx.Done():
				markCancelled(report, gctx.Err())
				bp.store(i, report)
				return gctx.Err()
			default:
			}

			bp.logger.Info("processing source",
				"source", source,
				"index", i+1,
				"total", len(sources),
			)

			err := bp.pipelineFactory().Execute(gctx, report)
			finish(report)
			bp.store(i, report)

			if err != nil {
				bp.logger.Warn("source failed",
					"source", source,
					"error", err,
				)
				// The error is recorded in the report; other sources continue.
				return nil
			}

			bp.logger.Info("source completed",
				"source", source,
			)

			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	bp.logger.Info("batch processing complete",
		"total_sources", len(sources),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}

// ProcessBatchWithCallback runs a pipeline for every source and calls
// callback for each completed report. The callback receives the report and
// the index of its source, and is called from worker goroutines, so it must
// be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	sources []string,
	callback func(report *model.RunReport, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_sources", len(sources),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			report := model.NewRunReport(source)
			_ = bp.pipelineFactory().Execute(ctx, report) //nolint:errcheck // Error is stored in report
			finish(report)

			callback(report, i)

			return nil
		})
	}

	return g.Wait()
}

func (bp *BatchProcessor) store(i int, report *model.RunReport) {
	bp.mu.Lock()
	bp.results[i] = report
	bp.mu.Unlock()
}

// finish fills in the summary of a report whose pipeline stopped before
// its summary step.
func finish(report *model.RunReport) {
	if report.Summary == nil {
		report.Summary = model.NewRunSummary(report)
	}
}

func markCancelled(report *model.RunReport, err error) {
	report.Cancelled = true
	report.Error = err
	report.ErrorMessage = err.Error()
	finish(report)
}
