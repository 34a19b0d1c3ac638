package pipeline

import (
	"log/slog"

	"github.com/nao1215/perfscan/internal/audit"
	"github.com/nao1215/perfscan/internal/config"
	"github.com/nao1215/perfscan/internal/fixer"
	"github.com/nao1215/perfscan/internal/model"
)

// EngineFactory creates an engine bound to one audit report.
type EngineFactory func(report *model.AuditReport) (*fixer.Engine, error)

// Store is the persistence a default pipeline needs: a task repository and
// an audit archive. *database.TaskDB implements it.
type Store interface {
	fixer.TaskRepository
	AuditArchive
}

// NewEngineFactory returns a factory that configures every engine from cfg,
// with the overrides of the audited website applied.
func NewEngineFactory(cfg *config.Config, repo fixer.TaskRepository, logger *slog.Logger) EngineFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return func(report *model.AuditReport) (*fixer.Engine, error) {
		if report == nil {
			return nil, fixer.ErrNoAuditReport
		}
		site := cfg.ForWebsite(report.WebsiteID)

		detectorOpts := []audit.Option{
			audit.WithThresholds(audit.Thresholds{
				High:   site.HighThreshold,
				Medium: site.MediumThreshold,
			}),
			audit.WithRecommendedTTL(site.RecommendedTTL),
			audit.WithSlowScriptThreshold(site.SlowScriptMs),
			audit.WithLogger(logger),
		}
		for issueType, score := range site.PassingScores {
			detectorOpts = append(detectorOpts, audit.WithPassingScore(issueType, score))
		}

		engineOpts := []fixer.Option{
			fixer.WithLogger(logger),
			fixer.WithDetector(audit.NewDetector(detectorOpts...)),
			fixer.WithReductionRatio(site.ReductionRatio),
			fixer.WithWastedFraction(site.WastedFraction),
			fixer.WithAverageResourceBytes(site.AverageResourceBytes),
			fixer.WithMaxPerformanceScore(site.MaxPerformanceScore),
		}
		for issueType, weight := range site.ScoreWeights {
			engineOpts = append(engineOpts, fixer.WithScoreWeight(issueType, weight))
		}

		return fixer.New(report, repo, engineOpts...)
	}
}

// Mode selects how far a default pipeline goes.
type Mode int

const (
	// ModeDetect only reports issues.
	ModeDetect Mode = iota
	// ModePreview reports issues and previews their fixes.
	ModePreview
	// ModeFix reports issues and applies their fixes.
	ModeFix
)

// DefaultPipeline creates the standard pipeline for one audit-report source:
// load, archive (when cfg.Archive is set), detect, then preview or fix
// depending on mode and cfg.DryRun, and finally summarize.
func DefaultPipeline(cfg *config.Config, store Store, mode Mode, opts ...Option) *Pipeline {
	p := New(opts...)
	logger := p.logger

	factory := NewEngineFactory(cfg, store, logger)

	p.AddStep(NewLoadStep(
		WithLoadArchive(store),
		WithLoadLogger(logger),
	))
	if cfg.Archive {
		p.AddStep(NewArchiveStep(store, logger))
	}
	p.AddStep(NewDetectStep(factory))

	switch {
	case mode == ModePreview, mode == ModeFix && cfg.DryRun:
		p.AddStep(NewFixStep(factory, WithDryRun(true), WithFixLogger(logger)))
	case mode == ModeFix:
		p.AddStep(NewFixStep(factory, WithFixLogger(logger)))
	}

	p.AddStep(NewSummaryStep())
	return p
}
