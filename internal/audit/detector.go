package audit

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/perfscan/internal/model"
)

const (
	// DefaultPassingScore is the score at or above which an audit passes.
	DefaultPassingScore = 0.9

	// DefaultRecommendedTTL is one year, in seconds.
	DefaultRecommendedTTL int64 = 31536000

	// DefaultSlowScriptMs is the scripting time above which a script is
	// reported as slow by the bootup-time audit.
	DefaultSlowScriptMs = 500.0
)

// Detector extracts issues from audit reports.
// A Detector is immutable after construction and safe for concurrent use.
type Detector struct {
	thresholds     Thresholds
	passingScores  map[model.IssueType]float64
	recommendedTTL int64
	slowScriptMs   float64
	logger         *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithThresholds sets the severity thresholds.
func WithThresholds(t Thresholds) Option {
	return func(d *Detector) {
		d.thresholds = t
	}
}

// WithPassingScore sets the acceptable score for one issue type.
func WithPassingScore(issueType model.IssueType, score float64) Option {
	return func(d *Detector) {
		d.passingScores[issueType] = score
	}
}

// WithRecommendedTTL sets the cache lifetime, in seconds, recommended for
// caching issues.
func WithRecommendedTTL(seconds int64) Option {
	return func(d *Detector) {
		d.recommendedTTL = seconds
	}
}

// WithSlowScriptThreshold sets the scripting time, in milliseconds, above
// which a script counts as slow.
func WithSlowScriptThreshold(ms float64) Option {
	return func(d *Detector) {
		d.slowScriptMs = ms
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDetector creates a Detector with default thresholds.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		thresholds:     DefaultThresholds(),
		passingScores:  make(map[model.IssueType]float64),
		recommendedTTL: DefaultRecommendedTTL,
		slowScriptMs:   DefaultSlowScriptMs,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Detector) passingScore(t model.IssueType) float64 {
	if score, ok := d.passingScores[t]; ok {
		return score
	}
	return DefaultPassingScore
}

// extractor turns the raw results into at most one issue of its domain.
type extractor func(d *Detector, r *rawResults) (model.Issue, bool)

// extractors run in this order; it is the tie-break order for equal severities.
var extractors = []extractor{
	(*Detector).detectImages,
	(*Detector).detectCaching,
	(*Detector).detectCSS,
	(*Detector).detectJavaScript,
}

// Detect returns the issues found in the report, most severe first.
// It returns ErrMalformedResults when the raw results are not a JSON object.
func (d *Detector) Detect(report *model.AuditReport) ([]model.Issue, error) {
	if report == nil {
		return nil, ErrNilReport
	}

	raw, err := parseRawResults(report.RawResults)
	if err != nil {
		return nil, fmt.Errorf("audit report %d: %w", report.ID, err)
	}

	issues := make([]model.Issue, 0, len(extractors))
	for _, extract := range extractors {
		issue, ok := extract(d, raw)
		if !ok {
			continue
		}
		issue.WebsiteID = report.WebsiteID
		issue.AutoFixable = model.Bool(model.GetIssueTypeInfo(issue.Type).AutoFixable && model.HasTargets(issue.Data))
		issues = append(issues, issue)
	}

	SortBySeverity(issues)

	d.logger.Debug("detected issues",
		"audit_report_id", report.ID,
		"url", report.URL,
		"count", len(issues))

	return issues, nil
}

// failingEntries looks up keys and keeps the entries that fail for issueType.
func (d *Detector) failingEntries(r *rawResults, issueType model.IssueType, keys ...string) []auditEntry {
	passing := d.passingScore(issueType)
	var failing []auditEntry
	for _, key := range keys {
		e, ok := r.entry(key)
		if !ok {
			continue
		}
		if e.failing(passing) {
			failing = append(failing, e)
		}
	}
	return failing
}

// plural renders "1 image" or "3 images".
func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, pluralForm)
}

func joinImpact(parts []string) string {
	return strings.Join(parts, "; ")
}
