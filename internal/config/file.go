package config

import "github.com/nao1215/perfscan/internal/model"

// WebsiteConfig holds settings that can differ per website.
type WebsiteConfig struct {
	// RecommendedTTL overrides the proposed Cache-Control max-age, in seconds.
	RecommendedTTL int64 `yaml:"recommended_ttl,omitempty"`

	// ReductionRatio overrides the expected share of waste removed by a fix.
	ReductionRatio float64 `yaml:"reduction_ratio,omitempty"`

	// PassingScores overrides acceptable scores, keyed by issue type
	// (e.g. "css_optimization").
	PassingScores map[string]float64 `yaml:"passing_scores,omitempty"`
}

// SeverityConfig is the severity section of the config file.
type SeverityConfig struct {
	HighThreshold   *float64 `yaml:"high_threshold,omitempty"`
	MediumThreshold *float64 `yaml:"medium_threshold,omitempty"`
}

// EstimatesConfig is the estimates section of the config file.
type EstimatesConfig struct {
	WastedFraction       float64        `yaml:"wasted_fraction,omitempty"`
	AverageResourceBytes int64          `yaml:"average_resource_bytes,omitempty"`
	SlowScriptMs         float64        `yaml:"slow_script_ms,omitempty"`
	ScoreWeights         map[string]int `yaml:"score_weights,omitempty"`
	MaxPerformanceScore  int            `yaml:"max_performance_score,omitempty"`
}

// File represents the structure of the .perfscan configuration file.
type File struct {
	// DBDir overrides the database directory.
	DBDir string `yaml:"db_dir,omitempty"`

	// BatchSize overrides the number of reports processed concurrently.
	BatchSize int `yaml:"batch_size,omitempty"`

	Severity  SeverityConfig  `yaml:"severity,omitempty"`
	Estimates EstimatesConfig `yaml:"estimates,omitempty"`

	// Defaults applies to every website unless overridden in Websites.
	Defaults WebsiteConfig `yaml:"defaults,omitempty"`

	// Websites maps website IDs to their specific settings.
	Websites map[int64]WebsiteConfig `yaml:"websites,omitempty"`
}

// GetWebsiteConfig returns the configuration for a website, merged over
// the defaults.
func (f *File) GetWebsiteConfig(websiteID int64) WebsiteConfig {
	result := WebsiteConfig{
		RecommendedTTL: f.Defaults.RecommendedTTL,
		ReductionRatio: f.Defaults.ReductionRatio,
		PassingScores:  make(map[string]float64, len(f.Defaults.PassingScores)),
	}
	for k, v := range f.Defaults.PassingScores {
		result.PassingScores[k] = v
	}

	site, ok := f.Websites[websiteID]
	if !ok {
		return result
	}
	if site.RecommendedTTL != 0 {
		result.RecommendedTTL = site.RecommendedTTL
	}
	if site.ReductionRatio != 0 {
		result.ReductionRatio = site.ReductionRatio
	}
	for k, v := range site.PassingScores {
		result.PassingScores[k] = v
	}
	return result
}

// Apply copies the global settings of the file into c. Per-website settings
// are kept in c.Websites and resolved by Config.ForWebsite.
func (f *File) Apply(c *Config) {
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
	if f.BatchSize != 0 {
		c.BatchSize = f.BatchSize
	}
	if f.Severity.HighThreshold != nil {
		c.HighThreshold = *f.Severity.HighThreshold
	}
	if f.Severity.MediumThreshold != nil {
		c.MediumThreshold = *f.Severity.MediumThreshold
	}
	if f.Estimates.WastedFraction != 0 {
		c.WastedFraction = f.Estimates.WastedFraction
	}
	if f.Estimates.AverageResourceBytes != 0 {
		c.AverageResourceBytes = f.Estimates.AverageResourceBytes
	}
	if f.Estimates.SlowScriptMs != 0 {
		c.SlowScriptMs = f.Estimates.SlowScriptMs
	}
	if f.Estimates.MaxPerformanceScore != 0 {
		c.MaxPerformanceScore = f.Estimates.MaxPerformanceScore
	}
	for name, weight := range f.Estimates.ScoreWeights {
		c.ScoreWeights[model.IssueType(name)] = weight
	}
	if f.Defaults.RecommendedTTL != 0 {
		c.RecommendedTTL = f.Defaults.RecommendedTTL
	}
	if f.Defaults.ReductionRatio != 0 {
		c.ReductionRatio = f.Defaults.ReductionRatio
	}
	for name, score := range f.Defaults.PassingScores {
		c.PassingScores[model.IssueType(name)] = score
	}
	c.Websites = f
}
