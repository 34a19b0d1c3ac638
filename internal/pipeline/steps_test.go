package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/perfscan/internal/config"
	"github.com/nao1215/perfscan/internal/database"
	"github.com/nao1215/perfscan/internal/model"
)

const imageAuditReport = `{
  "id": 3,
  "website_id": 7,
  "url": "https://shop.example.com/",
  "raw_results": {
    "opportunities": {
      "uses-webp-images": {
        "score": 0.4,
        "details": {
          "items": [
            {"url": "https://shop.example.com/a.jpg", "wastedBytes": 150000, "wastedMs": 120},
            {"url": "https://shop.example.com/b.jpg", "wastedBytes": 200000, "wastedMs": 80},
            {"url": "https://shop.example.com/c.png", "wastedBytes": 500000, "wastedMs": 300}
          ]
        }
      }
    }
  }
}`

func setupStore(t *testing.T) *database.TaskDB {
	t.Helper()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return db
}

func writeAuditFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "audit.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write audit report: %v", err)
	}
	return path
}

func TestParseArchiveSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		source   string
		wantID   int64
		archived bool
		wantErr  bool
	}{
		{source: "audit.json"},
		{source: "archive:12", wantID: 12, archived: true},
		{source: ArchiveSource(5), wantID: 5, archived: true},
		{source: "archive:abc", archived: true, wantErr: true},
		{source: "archive:0", archived: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			id, archived, err := ParseArchiveSource(tt.source)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidArchiveRef) {
				t.Errorf("expected ErrInvalidArchiveRef, got %v", err)
			}
			if id != tt.wantID || archived != tt.archived {
				t.Errorf("ParseArchiveSource(%q) = %d, %v", tt.source, id, archived)
			}
		})
	}
}

func TestLoadStep(t *testing.T) {
	t.Parallel()

	t.Run("loads a report file", func(t *testing.T) {
		t.Parallel()

		report := model.NewRunReport(writeAuditFile(t, imageAuditReport))
		if err := NewLoadStep().Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if report.Audit == nil {
			t.Fatal("expected audit report to be loaded")
		}
		if report.WebsiteID != 7 || report.URL != "https://shop.example.com/" {
			t.Errorf("unexpected identifiers: website=%d url=%q", report.WebsiteID, report.URL)
		}
		if report.AuditReportID != 3 {
			t.Errorf("expected file id 3, got %d", report.AuditReportID)
		}
	})

	t.Run("fails on a missing file", func(t *testing.T) {
		t.Parallel()

		report := model.NewRunReport(filepath.Join(t.TempDir(), "missing.json"))
		if err := NewLoadStep().Do(context.Background(), report); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("fails on malformed JSON", func(t *testing.T) {
		t.Parallel()

		report := model.NewRunReport(writeAuditFile(t, `{"website_id":`))
		if err := NewLoadStep().Do(context.Background(), report); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("archive source needs an archive", func(t *testing.T) {
		t.Parallel()

		report := model.NewRunReport("archive:1")
		if err := NewLoadStep().Do(context.Background(), report); !errors.Is(err, ErrNoArchive) {
			t.Errorf("expected ErrNoArchive, got %v", err)
		}
	})

	t.Run("unknown archive id", func(t *testing.T) {
		t.Parallel()

		store := setupStore(t)
		report := model.NewRunReport("archive:99")
		err := NewLoadStep(WithLoadArchive(store)).Do(context.Background(), report)
		if !errors.Is(err, database.ErrAuditReportNotFound) {
			t.Errorf("expected ErrAuditReportNotFound, got %v", err)
		}
	})
}

func TestArchiveStep(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := setupStore(t)
	path := writeAuditFile(t, imageAuditReport)

	first := model.NewRunReport(path)
	if err := NewLoadStep().Do(ctx, first); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	step := NewArchiveStep(store, nil)
	if err := step.Do(ctx, first); err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	if first.AuditReportID <= 0 {
		t.Fatalf("expected an archive id, got %d", first.AuditReportID)
	}

	second := model.NewRunReport(path)
	if err := NewLoadStep().Do(ctx, second); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := step.Do(ctx, second); err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	if second.AuditReportID != first.AuditReportID {
		t.Errorf("expected the same report to keep id %d, got %d", first.AuditReportID, second.AuditReportID)
	}

	if err := step.Do(ctx, model.NewRunReport(path)); !errors.Is(err, ErrNoAudit) {
		t.Errorf("expected ErrNoAudit, got %v", err)
	}
}

func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("step names per mode", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		store := setupStore(t)

		tests := []struct {
			mode   Mode
			dryRun bool
			want   []string
		}{
			{mode: ModeDetect, want: []string{"load", "archive", "detect", "summary"}},
			{mode: ModePreview, want: []string{"load", "archive", "detect", "preview", "summary"}},
			{mode: ModeFix, want: []string{"load", "archive", "detect", "fix", "summary"}},
			{mode: ModeFix, dryRun: true, want: []string{"load", "archive", "detect", "preview", "summary"}},
		}
		for _, tt := range tests {
			c := *cfg
			c.DryRun = tt.dryRun
			got := DefaultPipeline(&c, store, tt.mode).StepNames()
			if len(got) != len(tt.want) {
				t.Errorf("mode %d dryRun %v: got %v, want %v", tt.mode, tt.dryRun, got, tt.want)
				continue
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("mode %d dryRun %v: got %v, want %v", tt.mode, tt.dryRun, got, tt.want)
					break
				}
			}
		}

		cfg.Archive = false
		if got := DefaultPipeline(cfg, store, ModeDetect).StepCount(); got != 3 {
			t.Errorf("expected 3 steps without archiving, got %d", got)
		}
	})

	t.Run("fix records tasks", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := setupStore(t)
		report := model.NewRunReport(writeAuditFile(t, imageAuditReport))

		if err := DefaultPipeline(config.NewConfig(), store, ModeFix).Execute(ctx, report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.Issues) != 1 {
			t.Fatalf("expected 1 issue, got %d", len(report.Issues))
		}
		if report.Batch == nil {
			t.Fatal("expected a batch result")
		}
		if report.Batch.SuccessfulFixes != 1 || report.Batch.TotalFixes != 1 {
			t.Errorf("unexpected batch: %+v", report.Batch)
		}
		if report.Batch.Fixes[0].EstimatedImprovement != "830KB" {
			t.Errorf("expected 830KB, got %q", report.Batch.Fixes[0].EstimatedImprovement)
		}
		if report.Batch.EstimatedImprovement.LoadTimeReductionMs != 500 {
			t.Errorf("expected 500ms reduction, got %d", report.Batch.EstimatedImprovement.LoadTimeReductionMs)
		}
		if report.Summary == nil || report.Summary.MediumCount != 1 {
			t.Errorf("unexpected summary: %+v", report.Summary)
		}

		tasks, err := store.ListByWebsite(ctx, 7)
		if err != nil {
			t.Fatalf("failed to list tasks: %v", err)
		}
		if len(tasks) != 1 || tasks[0].Status != model.TaskPending {
			t.Errorf("expected one pending task, got %+v", tasks)
		}
	})

	t.Run("preview records nothing", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := setupStore(t)
		report := model.NewRunReport(writeAuditFile(t, imageAuditReport))

		if err := DefaultPipeline(config.NewConfig(), store, ModePreview).Execute(ctx, report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !report.DryRun || report.Batch != nil {
			t.Error("expected a dry run without batch result")
		}
		if len(report.Previews) != 1 || !report.Previews[0].Success {
			t.Fatalf("unexpected previews: %+v", report.Previews)
		}
		if report.Previews[0].After.TotalSize >= report.Previews[0].Before.TotalSize {
			t.Error("expected the preview to shrink the payload")
		}

		tasks, err := store.ListByWebsite(ctx, 7)
		if err != nil {
			t.Fatalf("failed to list tasks: %v", err)
		}
		if len(tasks) != 0 {
			t.Errorf("expected no tasks, got %d", len(tasks))
		}
	})

	t.Run("website overrides apply", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Websites = &config.File{
			Websites: map[int64]config.WebsiteConfig{
				7: {ReductionRatio: 0.5},
			},
		}

		report := model.NewRunReport(writeAuditFile(t, imageAuditReport))
		if err := DefaultPipeline(cfg, setupStore(t), ModeFix).Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := report.Batch.Fixes[0].EstimatedImprovement; got != "415KB" {
			t.Errorf("expected 415KB with ratio 0.5, got %q", got)
		}
	})

	t.Run("archived report can be processed again", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := setupStore(t)
		cfg := config.NewConfig()

		first := model.NewRunReport(writeAuditFile(t, imageAuditReport))
		if err := DefaultPipeline(cfg, store, ModeDetect).Execute(ctx, first); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		again := model.NewRunReport(ArchiveSource(first.AuditReportID))
		if err := DefaultPipeline(cfg, store, ModeDetect).Execute(ctx, again); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.AuditReportID != first.AuditReportID {
			t.Errorf("expected archive id %d, got %d", first.AuditReportID, again.AuditReportID)
		}
		if len(again.Issues) != 1 {
			t.Errorf("expected 1 issue from the archived report, got %d", len(again.Issues))
		}
	})
}
