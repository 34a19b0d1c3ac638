package fixer

import (
	"log/slog"
	"time"

	"github.com/nao1215/perfscan/internal/audit"
	"github.com/nao1215/perfscan/internal/model"
)

// Default estimation constants.
const (
	// DefaultReductionRatio is the share of reported waste a fix is expected
	// to remove.
	DefaultReductionRatio = 1.0

	// DefaultWastedFraction is the share of a resource's payload assumed to
	// be waste when only the waste is known.
	DefaultWastedFraction = 0.5

	// DefaultAverageResourceBytes is the assumed size of one static resource.
	DefaultAverageResourceBytes int64 = 50 * 1024

	// DefaultMaxPerformanceScore caps the aggregate score of a batch.
	DefaultMaxPerformanceScore = 100
)

// DefaultScoreWeights returns the performance score credited per successful
// fix type.
func DefaultScoreWeights() map[model.IssueType]int {
	return map[model.IssueType]int{
		model.IssueImageOptimization:      15,
		model.IssueCSSOptimization:        10,
		model.IssueJavaScriptOptimization: 10,
		model.IssueCachingHeaders:         5,
	}
}

// Engine detects, previews, applies and rolls back fixes for one audit report.
type Engine struct {
	report   *model.AuditReport
	repo     TaskRepository
	detector *audit.Detector
	logger   *slog.Logger
	now      func() time.Time

	reductionRatio       float64
	wastedFraction       float64
	averageResourceBytes int64
	scoreWeights         map[model.IssueType]int
	maxPerformanceScore  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDetector replaces the default issue detector.
func WithDetector(d *audit.Detector) Option {
	return func(e *Engine) {
		if d != nil {
			e.detector = d
		}
	}
}

// WithClock sets the time source used to stamp tasks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithReductionRatio sets the share of waste a fix is expected to remove.
func WithReductionRatio(ratio float64) Option {
	return func(e *Engine) {
		e.reductionRatio = ratio
	}
}

// WithWastedFraction sets the assumed waste share of a payload, used to
// derive preview sizes.
func WithWastedFraction(fraction float64) Option {
	return func(e *Engine) {
		e.wastedFraction = fraction
	}
}

// WithAverageResourceBytes sets the assumed size of one static resource.
func WithAverageResourceBytes(n int64) Option {
	return func(e *Engine) {
		e.averageResourceBytes = n
	}
}

// WithScoreWeight sets the performance score credited for a successful fix
// of the given type.
func WithScoreWeight(t model.IssueType, weight int) Option {
	return func(e *Engine) {
		e.scoreWeights[t] = weight
	}
}

// WithMaxPerformanceScore caps the aggregate batch score.
func WithMaxPerformanceScore(limit int) Option {
	return func(e *Engine) {
		e.maxPerformanceScore = limit
	}
}

// New creates an Engine for report that records tasks in repo.
func New(report *model.AuditReport, repo TaskRepository, opts ...Option) (*Engine, error) {
	if report == nil {
		return nil, ErrNoAuditReport
	}
	if repo == nil {
		return nil, ErrNoTaskRepository
	}

	e := &Engine{
		report:               report,
		repo:                 repo,
		logger:               slog.Default(),
		now:                  time.Now,
		reductionRatio:       DefaultReductionRatio,
		wastedFraction:       DefaultWastedFraction,
		averageResourceBytes: DefaultAverageResourceBytes,
		scoreWeights:         DefaultScoreWeights(),
		maxPerformanceScore:  DefaultMaxPerformanceScore,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.detector == nil {
		e.detector = audit.NewDetector(audit.WithLogger(e.logger))
	}
	return e, nil
}

// Report returns the audit report the engine is bound to.
func (e *Engine) Report() *model.AuditReport {
	return e.report
}

// DetectIssues returns the issues of the engine's report, most severe first.
func (e *Engine) DetectIssues() ([]model.Issue, error) {
	return e.detector.Detect(e.report)
}

// scaled returns n multiplied by the reduction ratio.
func (e *Engine) scaled(n int64) int64 {
	return int64(float64(n) * e.reductionRatio)
}
