package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/perfscan/internal/model"
)

// Step is one stage of a run over an audit-report source: load, archive,
// detect, preview or fix. Each stage reads what earlier stages left in the
// RunReport and adds its own part.
type Step interface {
	// Do runs the stage. A returned error ends the run unless the pipeline
	// continues on error; per-issue failures belong in report.Batch instead.
	Do(ctx context.Context, report *model.RunReport) error

	// Name is the value recorded in RunReport.PerformedSteps.
	Name() string
}

// Pipeline runs the stages for a single audit-report source in order.
// A Pipeline is not safe for concurrent use; BatchProcessor builds one per source.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError keeps later stages running after one fails.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for stage progress.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps running the remaining stages after a failure.
// The last failure stays in RunReport.Error.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New returns an empty Pipeline. DefaultPipeline is the usual constructor;
// New is for callers that assemble their own stages.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a stage.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends stages in the given order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every stage against report. The context is checked before
// each stage; once it is done the report is marked cancelled and the
// context error is returned without running the remaining stages.
func (p *Pipeline) Execute(ctx context.Context, report *model.RunReport) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("run cancelled before stage",
				"source", report.Source,
				"step", step.Name(),
				"reason", err,
			)
			report.Cancelled = true
			report.Error = err
			report.ErrorMessage = err.Error()
			return err
		}

		p.logger.Info("running stage", "source", report.Source, "step", step.Name())

		if err := step.Do(ctx, report); err != nil {
			p.logger.Error("stage failed",
				"source", report.Source,
				"step", step.Name(),
				"website_id", report.WebsiteID,
				"error", err,
			)
			report.Error = err
			report.ErrorMessage = err.Error()
			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("stage done",
				"source", report.Source,
				"step", step.Name(),
				"website_id", report.WebsiteID,
				"issues", len(report.Issues),
			)
		}

		report.PerformedSteps = append(report.PerformedSteps, step.Name())
	}
	return nil
}

// StepCount reports how many stages are configured.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames lists stage names in run order, e.g. load, archive, detect, fix.
func (p *Pipeline) StepNames() []string {
	names := make([]string, 0, len(p.steps))
	for _, step := range p.steps {
		names = append(names, step.Name())
	}
	return names
}
