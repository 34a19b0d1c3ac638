package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/nao1215/perfscan/internal/model"
)

// AuditArchive stores and retrieves audit reports.
// *database.TaskDB implements it.
type AuditArchive interface {
	SaveAuditReport(ctx context.Context, report *model.AuditReport) (id int64, created bool, err error)
	GetAuditReport(ctx context.Context, id int64) (*model.AuditReport, error)
}

// LoadStep loads the audit report named by the run's source.
// File sources are decoded from JSON; archive sources are read from the
// audit archive.
type LoadStep struct {
	archive AuditArchive
	logger  *slog.Logger
}

// LoadStepOption configures a LoadStep.
type LoadStepOption func(*LoadStep)

// WithLoadArchive sets the archive used for "archive:<id>" sources.
func WithLoadArchive(archive AuditArchive) LoadStepOption {
	return func(s *LoadStep) {
		s.archive = archive
	}
}

// WithLoadLogger sets a custom logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadStepOption {
	return func(s *LoadStep) {
		s.logger = logger
	}
}

// NewLoadStep creates a new load step.
func NewLoadStep(opts ...LoadStepOption) *LoadStep {
	s := &LoadStep{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do executes the load step.
func (s *LoadStep) Do(ctx context.Context, report *model.RunReport) error {
	id, archived, err := ParseArchiveSource(report.Source)
	if err != nil {
		return err
	}

	var audit *model.AuditReport
	if archived {
		if s.archive == nil {
			return ErrNoArchive
		}
		audit, err = s.archive.GetAuditReport(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load archived audit report: %w", err)
		}
	} else {
		audit, err = readAuditReport(report.Source)
		if err != nil {
			return err
		}
	}

	report.SetAudit(audit)
	s.logger.Debug("audit report loaded",
		"source", report.Source,
		"website_id", audit.WebsiteID,
		"url", audit.URL,
	)
	return nil
}

// readAuditReport decodes an audit report file.
func readAuditReport(path string) (*model.AuditReport, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is given by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read audit report: %w", err)
	}

	var audit model.AuditReport
	if err := json.Unmarshal(data, &audit); err != nil {
		return nil, fmt.Errorf("failed to parse audit report %s: %w", path, err)
	}
	return &audit, nil
}

// ArchiveStep stores the loaded audit report in the archive.
// Reports that came from the archive are not stored again.
type ArchiveStep struct {
	archive AuditArchive
	logger  *slog.Logger
}

// NewArchiveStep creates a new archive step. A nil logger means slog.Default().
func NewArchiveStep(archive AuditArchive, logger *slog.Logger) *ArchiveStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveStep{
		archive: archive,
		logger:  logger,
	}
}

// Name returns the step name.
func (s *ArchiveStep) Name() string {
	return "archive"
}

// Do executes the archive step.
func (s *ArchiveStep) Do(ctx context.Context, report *model.RunReport) error {
	if report.Audit == nil {
		return ErrNoAudit
	}
	if s.archive == nil {
		return ErrNoArchive
	}
	if _, archived, _ := ParseArchiveSource(report.Source); archived {
		return nil
	}

	id, created, err := s.archive.SaveAuditReport(ctx, report.Audit)
	if err != nil {
		return fmt.Errorf("failed to archive audit report: %w", err)
	}
	report.AuditReportID = id

	if created {
		s.logger.Info("audit report archived", "source", report.Source, "archive_id", id)
	} else {
		s.logger.Info("audit report already archived", "source", report.Source, "archive_id", id)
	}
	return nil
}

// DetectStep detects the issues of the loaded audit report.
type DetectStep struct {
	factory EngineFactory
}

// NewDetectStep creates a new detect step.
func NewDetectStep(factory EngineFactory) *DetectStep {
	return &DetectStep{factory: factory}
}

// Name returns the step name.
func (s *DetectStep) Name() string {
	return "detect"
}

// Do executes the detect step.
func (s *DetectStep) Do(_ context.Context, report *model.RunReport) error {
	if report.Audit == nil {
		return ErrNoAudit
	}

	engine, err := s.factory(report.Audit)
	if err != nil {
		return err
	}

	issues, err := engine.DetectIssues()
	if err != nil {
		return fmt.Errorf("failed to detect issues: %w", err)
	}
	report.Issues = issues
	return nil
}

// FixStep applies or previews the fixes of the detected issues.
type FixStep struct {
	factory EngineFactory
	dryRun  bool
	logger  *slog.Logger
}

// FixStepOption configures a FixStep.
type FixStepOption func(*FixStep)

// WithDryRun makes the step preview fixes instead of recording tasks.
func WithDryRun(dryRun bool) FixStepOption {
	return func(s *FixStep) {
		s.dryRun = dryRun
	}
}

// WithFixLogger sets a custom logger for the fix step.
func WithFixLogger(logger *slog.Logger) FixStepOption {
	return func(s *FixStep) {
		s.logger = logger
	}
}

// NewFixStep creates a new fix step.
func NewFixStep(factory EngineFactory, opts ...FixStepOption) *FixStep {
	s := &FixStep{
		factory: factory,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *FixStep) Name() string {
	if s.dryRun {
		return "preview"
	}
	return "fix"
}

// Do executes the fix step. It works on the issues found by the detect
// step, so the report is not analysed twice.
func (s *FixStep) Do(ctx context.Context, report *model.RunReport) error {
	if report.Audit == nil {
		return ErrNoAudit
	}

	engine, err := s.factory(report.Audit)
	if err != nil {
		return err
	}

	report.DryRun = s.dryRun
	if s.dryRun {
		report.Previews = engine.PreviewAll(report.Issues)
		s.logger.Debug("fixes previewed", "source", report.Source, "count", len(report.Previews))
		return nil
	}

	batch := engine.ApplyFixes(ctx, report.Issues)
	report.Batch = &batch
	s.logger.Info("fixes applied",
		"source", report.Source,
		"successful", batch.SuccessfulFixes,
		"failed", batch.FailedFixes,
	)
	return nil
}

// SummaryStep condenses the run into its summary.
type SummaryStep struct{}

// NewSummaryStep creates a new summary step.
func NewSummaryStep() *SummaryStep {
	return &SummaryStep{}
}

// Name returns the step name.
func (s *SummaryStep) Name() string {
	return "summary"
}

// Do executes the summary step.
func (s *SummaryStep) Do(_ context.Context, report *model.RunReport) error {
	report.Summary = model.NewRunSummary(report)
	return nil
}

// compile-time interface checks
var (
	_ Step = (*LoadStep)(nil)
	_ Step = (*ArchiveStep)(nil)
	_ Step = (*DetectStep)(nil)
	_ Step = (*FixStep)(nil)
	_ Step = (*SummaryStep)(nil)
)
