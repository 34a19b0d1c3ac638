package config

import (
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/nao1215/perfscan/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "perfscan"

	// DefaultHighThreshold is the score below which an issue is high severity.
	DefaultHighThreshold = 0.3

	// DefaultMediumThreshold is the score up to which an issue is medium severity.
	DefaultMediumThreshold = 0.6

	// DefaultPassingScore is the audit score at or above which a domain passes.
	DefaultPassingScore = 0.9

	// DefaultReductionRatio is the share of reported waste a fix removes.
	// With 1.0, 500000 wasted bytes are reported as "488KB".
	DefaultReductionRatio = 1.0

	// DefaultWastedFraction is the share of a payload assumed to be waste.
	DefaultWastedFraction = 0.5

	// DefaultRecommendedTTL is one year, in seconds.
	DefaultRecommendedTTL int64 = 31536000

	// DefaultAverageResourceBytes is the assumed size of one static resource.
	DefaultAverageResourceBytes int64 = 50 * 1024

	// DefaultSlowScriptMs is the scripting time above which a script is slow.
	DefaultSlowScriptMs = 500.0

	// DefaultMaxPerformanceScore caps the aggregate score of a batch.
	DefaultMaxPerformanceScore = 100

	// DefaultBatchSize is the number of audit reports processed concurrently.
	DefaultBatchSize = 4
)

// DefaultScoreWeights returns the performance score credited per fix type.
func DefaultScoreWeights() map[model.IssueType]int {
	return map[model.IssueType]int{
		model.IssueImageOptimization:      15,
		model.IssueCSSOptimization:        10,
		model.IssueJavaScriptOptimization: 10,
		model.IssueCachingHeaders:         5,
	}
}

// Config holds all configuration options for perfscan.
// It is populated from defaults, the config file and CLI flags, in that
// order, and passed down explicitly.
type Config struct {
	// HighThreshold and MediumThreshold map audit scores to severities.
	HighThreshold   float64
	MediumThreshold float64

	// PassingScores holds per-issue-type acceptable scores. Types without an
	// entry use DefaultPassingScore.
	PassingScores map[model.IssueType]float64

	// ReductionRatio is the share of reported waste a fix is expected to remove.
	ReductionRatio float64

	// WastedFraction is the share of a payload assumed to be waste when
	// previewing size changes.
	WastedFraction float64

	// RecommendedTTL is the Cache-Control max-age, in seconds, proposed by
	// caching fixes.
	RecommendedTTL int64

	// AverageResourceBytes is the assumed size of a static resource when
	// previewing caching fixes.
	AverageResourceBytes int64

	// SlowScriptMs is the scripting time above which a script is deferred.
	SlowScriptMs float64

	// ScoreWeights and MaxPerformanceScore drive the batch improvement estimate.
	ScoreWeights        map[model.IssueType]int
	MaxPerformanceScore int

	// Verbose enables debug logging.
	Verbose bool

	// BatchSize is the number of audit reports processed concurrently.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches the current directory, the home directory
	// and the XDG config directory.
	ConfigFilePath string

	// Websites holds per-website overrides loaded from the config file.
	Websites *File

	// JSONReport and MarkdownReport select the report format. They are
	// mutually exclusive; the default is the human-readable text report.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is the output file path for the report. Empty means stdout.
	ReportFile string

	// DryRun previews fixes instead of recording tasks.
	DryRun bool

	// Archive stores each loaded audit report in the database.
	Archive bool

	// Targets is the list of audit report files to process.
	Targets []string

	// DBDir is the directory holding the SQLite database.
	// Defaults to the XDG data directory (~/.local/share/perfscan on Linux).
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		HighThreshold:        DefaultHighThreshold,
		MediumThreshold:      DefaultMediumThreshold,
		PassingScores:        make(map[model.IssueType]float64),
		ReductionRatio:       DefaultReductionRatio,
		WastedFraction:       DefaultWastedFraction,
		RecommendedTTL:       DefaultRecommendedTTL,
		AverageResourceBytes: DefaultAverageResourceBytes,
		SlowScriptMs:         DefaultSlowScriptMs,
		ScoreWeights:         DefaultScoreWeights(),
		MaxPerformanceScore:  DefaultMaxPerformanceScore,
		BatchSize:            DefaultBatchSize,
		Archive:              true,
		DBDir:                XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for perfscan.
// On Linux: ~/.local/share/perfscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for perfscan.
// On Linux: ~/.config/perfscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// PassingScore returns the acceptable score for an issue type.
func (c *Config) PassingScore(t model.IssueType) float64 {
	if score, ok := c.PassingScores[t]; ok {
		return score
	}
	return DefaultPassingScore
}

// ForWebsite returns a copy of the configuration with the overrides of the
// given website applied. Maps are copied, so the result may be modified.
func (c *Config) ForWebsite(websiteID int64) *Config {
	out := *c
	out.PassingScores = make(map[model.IssueType]float64, len(c.PassingScores))
	for k, v := range c.PassingScores {
		out.PassingScores[k] = v
	}
	out.ScoreWeights = make(map[model.IssueType]int, len(c.ScoreWeights))
	for k, v := range c.ScoreWeights {
		out.ScoreWeights[k] = v
	}

	if c.Websites == nil {
		return &out
	}
	site := c.Websites.GetWebsiteConfig(websiteID)
	if site.RecommendedTTL > 0 {
		out.RecommendedTTL = site.RecommendedTTL
	}
	if site.ReductionRatio > 0 {
		out.ReductionRatio = site.ReductionRatio
	}
	for name, score := range site.PassingScores {
		out.PassingScores[model.IssueType(name)] = score
	}
	return &out
}

// Validate checks if the configuration is valid and returns the first
// problem found. Targets are checked separately by ValidateTargets because
// task commands run without them.
func (c *Config) Validate() error {
	if c.HighThreshold < 0 || c.MediumThreshold > 1 || c.HighThreshold > c.MediumThreshold {
		return ErrInvalidThresholds
	}

	for _, score := range c.PassingScores {
		if score < 0 || score > 1 {
			return ErrInvalidPassingScore
		}
	}

	if c.ReductionRatio <= 0 || c.ReductionRatio > 1 {
		return ErrInvalidReductionRatio
	}

	if c.WastedFraction <= 0 || c.WastedFraction > 1 {
		return ErrInvalidWastedFraction
	}

	if c.RecommendedTTL <= 0 {
		return ErrInvalidTTL
	}

	if c.AverageResourceBytes <= 0 {
		return ErrInvalidResourceSize
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

// ValidateTargets checks that at least one audit report was given.
func (c *Config) ValidateTargets() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	return nil
}
