package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/perfscan/internal/model"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default thresholds are 0.3 and 0.6", func(t *testing.T) {
		t.Parallel()
		if cfg.HighThreshold != 0.3 || cfg.MediumThreshold != 0.6 {
			t.Errorf("expected thresholds 0.3/0.6, got %v/%v", cfg.HighThreshold, cfg.MediumThreshold)
		}
	})

	t.Run("default reduction ratio is 1.0", func(t *testing.T) {
		t.Parallel()
		if cfg.ReductionRatio != 1.0 {
			t.Errorf("expected ReductionRatio to be 1.0, got %v", cfg.ReductionRatio)
		}
	})

	t.Run("default RecommendedTTL is one year", func(t *testing.T) {
		t.Parallel()
		if cfg.RecommendedTTL != 31536000 {
			t.Errorf("expected RecommendedTTL to be 31536000, got %d", cfg.RecommendedTTL)
		}
	})

	t.Run("default BatchSize is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 4 {
			t.Errorf("expected BatchSize to be 4, got %d", cfg.BatchSize)
		}
	})

	t.Run("default score weights", func(t *testing.T) {
		t.Parallel()
		if cfg.ScoreWeights[model.IssueImageOptimization] != 15 || cfg.ScoreWeights[model.IssueCachingHeaders] != 5 {
			t.Errorf("unexpected score weights: %v", cfg.ScoreWeights)
		}
	})

	t.Run("database lives in the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
		if !cfg.Archive {
			t.Error("expected Archive to default to true")
		}
	})

	t.Run("passing score falls back to the default", func(t *testing.T) {
		t.Parallel()
		if got := cfg.PassingScore(model.IssueCSSOptimization); got != DefaultPassingScore {
			t.Errorf("expected %v, got %v", DefaultPassingScore, got)
		}
	})
}

// TestConfigValidate tests the Validate method with one rule per case.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "defaults are valid", modify: func(*Config) {}},
		{name: "high above medium", modify: func(c *Config) { c.HighThreshold = 0.7 }, wantErr: ErrInvalidThresholds},
		{name: "negative high", modify: func(c *Config) { c.HighThreshold = -0.1 }, wantErr: ErrInvalidThresholds},
		{name: "medium above one", modify: func(c *Config) { c.MediumThreshold = 1.5 }, wantErr: ErrInvalidThresholds},
		{name: "passing score above one", modify: func(c *Config) { c.PassingScores[model.IssueCSSOptimization] = 2 }, wantErr: ErrInvalidPassingScore},
		{name: "zero reduction ratio", modify: func(c *Config) { c.ReductionRatio = 0 }, wantErr: ErrInvalidReductionRatio},
		{name: "reduction ratio above one", modify: func(c *Config) { c.ReductionRatio = 1.2 }, wantErr: ErrInvalidReductionRatio},
		{name: "zero wasted fraction", modify: func(c *Config) { c.WastedFraction = 0 }, wantErr: ErrInvalidWastedFraction},
		{name: "zero ttl", modify: func(c *Config) { c.RecommendedTTL = 0 }, wantErr: ErrInvalidTTL},
		{name: "zero resource size", modify: func(c *Config) { c.AverageResourceBytes = 0 }, wantErr: ErrInvalidResourceSize},
		{name: "zero batch size", modify: func(c *Config) { c.BatchSize = 0 }, wantErr: ErrInvalidBatchSize},
		{name: "json and markdown", modify: func(c *Config) { c.JSONReport, c.MarkdownReport = true, true }, wantErr: ErrConflictingReportFormats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigValidateTargets(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if err := cfg.ValidateTargets(); !errors.Is(err, ErrNoTarget) {
		t.Errorf("expected ErrNoTarget, got %v", err)
	}
	cfg.Targets = []string{"report.json"}
	if err := cfg.ValidateTargets(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

const sampleConfig = `db_dir: /var/lib/perfscan
batch_size: 8
severity:
  high_threshold: 0.25
  medium_threshold: 0.5
estimates:
  wasted_fraction: 0.4
  average_resource_bytes: 20480
  score_weights:
    caching_headers: 8
defaults:
  recommended_ttl: 86400
  passing_scores:
    css_optimization: 0.95
websites:
  7:
    recommended_ttl: 604800
    reduction_ratio: 0.8
    passing_scores:
      image_optimization: 0.8
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.perfscan")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		cf, err := LoadConfigFile(writeConfig(t, sampleConfig))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cf.DBDir != "/var/lib/perfscan" || cf.BatchSize != 8 {
			t.Errorf("unexpected globals: %+v", cf)
		}
		if cf.Severity.HighThreshold == nil || *cf.Severity.HighThreshold != 0.25 {
			t.Error("expected high_threshold 0.25")
		}
		if cf.Defaults.RecommendedTTL != 86400 {
			t.Errorf("expected default TTL 86400, got %d", cf.Defaults.RecommendedTTL)
		}
		site, ok := cf.Websites[7]
		if !ok {
			t.Fatal("expected website 7")
		}
		if site.ReductionRatio != 0.8 {
			t.Errorf("expected reduction ratio 0.8, got %v", site.ReductionRatio)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadConfigFile(writeConfig(t, `invalid: yaml: content: [}`)); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Websites map", func(t *testing.T) {
		t.Parallel()

		cf, err := LoadConfigFile(writeConfig(t, "batch_size: 2\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Websites == nil {
			t.Error("expected Websites map to be initialized")
		}
	})
}

func TestFileApply(t *testing.T) {
	t.Parallel()

	cf, err := LoadConfigFile(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := NewConfig()
	cf.Apply(cfg)

	if cfg.DBDir != "/var/lib/perfscan" {
		t.Errorf("DBDir = %q", cfg.DBDir)
	}
	if cfg.BatchSize != 8 {
		t.Errorf("BatchSize = %d", cfg.BatchSize)
	}
	if cfg.HighThreshold != 0.25 || cfg.MediumThreshold != 0.5 {
		t.Errorf("thresholds = %v/%v", cfg.HighThreshold, cfg.MediumThreshold)
	}
	if cfg.WastedFraction != 0.4 || cfg.AverageResourceBytes != 20480 {
		t.Errorf("estimates = %v/%v", cfg.WastedFraction, cfg.AverageResourceBytes)
	}
	if cfg.ScoreWeights[model.IssueCachingHeaders] != 8 || cfg.ScoreWeights[model.IssueImageOptimization] != 15 {
		t.Errorf("ScoreWeights = %v", cfg.ScoreWeights)
	}
	if cfg.RecommendedTTL != 86400 {
		t.Errorf("RecommendedTTL = %d", cfg.RecommendedTTL)
	}
	if cfg.PassingScore(model.IssueCSSOptimization) != 0.95 {
		t.Errorf("css passing score = %v", cfg.PassingScore(model.IssueCSSOptimization))
	}
	if cfg.ReductionRatio != DefaultReductionRatio {
		t.Errorf("ReductionRatio should keep its default, got %v", cfg.ReductionRatio)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("applied config should be valid: %v", err)
	}
}

func TestConfigForWebsite(t *testing.T) {
	t.Parallel()

	cf, err := LoadConfigFile(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := NewConfig()
	cf.Apply(cfg)

	t.Run("website overrides", func(t *testing.T) {
		t.Parallel()

		site := cfg.ForWebsite(7)
		if site.RecommendedTTL != 604800 {
			t.Errorf("RecommendedTTL = %d", site.RecommendedTTL)
		}
		if site.ReductionRatio != 0.8 {
			t.Errorf("ReductionRatio = %v", site.ReductionRatio)
		}
		if site.PassingScore(model.IssueImageOptimization) != 0.8 {
			t.Errorf("image passing score = %v", site.PassingScore(model.IssueImageOptimization))
		}
		if site.PassingScore(model.IssueCSSOptimization) != 0.95 {
			t.Error("defaults should still apply to other types")
		}
	})

	t.Run("unknown website gets defaults", func(t *testing.T) {
		t.Parallel()

		site := cfg.ForWebsite(99)
		if site.RecommendedTTL != 86400 || site.ReductionRatio != DefaultReductionRatio {
			t.Errorf("unexpected overrides: %d %v", site.RecommendedTTL, site.ReductionRatio)
		}
	})

	t.Run("copy does not alias maps", func(t *testing.T) {
		t.Parallel()

		site := cfg.ForWebsite(1)
		site.PassingScores["custom"] = 0.1
		if _, ok := cfg.PassingScores["custom"]; ok {
			t.Error("ForWebsite must copy PassingScores")
		}
	})

	t.Run("no config file", func(t *testing.T) {
		t.Parallel()

		plain := NewConfig().ForWebsite(7)
		if plain.RecommendedTTL != DefaultRecommendedTTL {
			t.Errorf("RecommendedTTL = %d", plain.RecommendedTTL)
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := writeConfig(t, "batch_size: 1\n")
		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("search does not panic", func(t *testing.T) {
		t.Parallel()

		// The result depends on the machine running the test.
		_ = FindConfigFile("")
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{"data": XDGDataDir(), "config": XDGConfigDir()} {
		if dir == "" || !strings.HasSuffix(dir, AppName) {
			t.Errorf("unexpected XDG %s dir %q", name, dir)
		}
	}
}
