package database

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/perfscan/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *TaskDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("Path() = %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "nonexistent-db")
		_, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err == nil {
			t.Fatal("expected error when CreateIfNotExists=false and database does not exist")
		}
		if !strings.Contains(err.Error(), "database not found") {
			t.Errorf("unexpected error: %v", err)
		}
		if _, statErr := os.Stat(dbDir); !os.IsNotExist(statErr) {
			t.Error("database directory should not have been created")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "existing-db")
		db1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		task := &model.OptimizationTask{WebsiteID: 1, FixType: model.IssueCachingHeaders, Status: model.TaskPending}
		if err := db1.Create(context.Background(), task); err != nil {
			t.Fatalf("failed to create task: %v", err)
		}
		_ = db1.Close()

		db2, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to open existing database: %v", err)
		}
		defer db2.Close()

		got, err := db2.Get(context.Background(), task.ID)
		if err != nil {
			t.Fatalf("task should persist across connections: %v", err)
		}
		if got.FixType != model.IssueCachingHeaders {
			t.Errorf("FixType = %q", got.FixType)
		}
	})

	t.Run("without WAL", func(t *testing.T) {
		t.Parallel()

		db, err := Open(t.TempDir(), Options{CreateIfNotExists: true})
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		_ = db.Close()
	})
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if !opts.CreateIfNotExists {
		t.Error("expected CreateIfNotExists to be true")
	}
	if !opts.EnableWAL {
		t.Error("expected EnableWAL to be true")
	}
}

func TestTaskCRUD(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	task := &model.OptimizationTask{
		WebsiteID: 7,
		FixType:   model.IssueImageOptimization,
		Status:    model.TaskPending,
		Details: map[string]any{
			"affected_images": []string{"a.jpg", "b.jpg"},
			"total_savings":   int64(850000),
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
	if err := db.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if task.ID == 0 {
		t.Fatal("Create() should set the task ID")
	}

	got, err := db.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != model.TaskPending || got.WebsiteID != 7 {
		t.Errorf("unexpected task: %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
	if got.Details["total_savings"] != float64(850000) {
		t.Errorf("total_savings = %v", got.Details["total_savings"])
	}
	images, ok := got.Details["affected_images"].([]any)
	if !ok || len(images) != 2 {
		t.Errorf("affected_images = %v", got.Details["affected_images"])
	}

	updated := created.Add(time.Hour)
	got.Status = model.TaskFailed
	got.ErrorMessage = "upload rejected"
	got.UpdatedAt = updated
	if err := db.Update(ctx, got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	reloaded, err := db.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if reloaded.Status != model.TaskFailed {
		t.Errorf("Status = %q, want failed", reloaded.Status)
	}
	if reloaded.ErrorMessage != "upload rejected" {
		t.Errorf("ErrorMessage = %q", reloaded.ErrorMessage)
	}
	if !reloaded.UpdatedAt.Equal(updated) {
		t.Errorf("UpdatedAt = %v, want %v", reloaded.UpdatedAt, updated)
	}
	if !reloaded.CreatedAt.Equal(created) {
		t.Error("Update() must not change CreatedAt")
	}
}

func TestTaskCreateStampsTimes(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	task := &model.OptimizationTask{WebsiteID: 1, FixType: model.IssueCSSOptimization, Status: model.TaskPending}
	if err := db.Create(context.Background(), task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if task.CreatedAt.IsZero() || !task.UpdatedAt.Equal(task.CreatedAt) {
		t.Errorf("timestamps not stamped: %v %v", task.CreatedAt, task.UpdatedAt)
	}
	got, err := db.Get(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Details != nil {
		t.Errorf("empty details should load as nil, got %v", got.Details)
	}
}

func TestTaskErrors(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.Get(ctx, 404); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Get() error = %v, want ErrTaskNotFound", err)
	}

	missing := &model.OptimizationTask{ID: 404, Status: model.TaskCompleted}
	if err := db.Update(ctx, missing); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Update() error = %v, want ErrTaskNotFound", err)
	}

	bad := &model.OptimizationTask{WebsiteID: 1, FixType: model.IssueCSSOptimization, Status: "done"}
	if err := db.Create(ctx, bad); err == nil {
		t.Error("Create() should reject an unknown status")
	}
	if err := db.Create(ctx, nil); err == nil {
		t.Error("Create() should reject a nil task")
	}
}

func TestTaskListing(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	seed := []model.OptimizationTask{
		{WebsiteID: 1, FixType: model.IssueImageOptimization, Status: model.TaskPending},
		{WebsiteID: 2, FixType: model.IssueCachingHeaders, Status: model.TaskCompleted},
		{WebsiteID: 1, FixType: model.IssueCSSOptimization, Status: model.TaskCompleted},
		{WebsiteID: 1, FixType: model.IssueJavaScriptOptimization, Status: model.TaskFailed},
	}
	for i := range seed {
		if err := db.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	byWebsite, err := db.ListByWebsite(ctx, 1)
	if err != nil {
		t.Fatalf("ListByWebsite() error = %v", err)
	}
	if len(byWebsite) != 3 {
		t.Fatalf("ListByWebsite() returned %d tasks, want 3", len(byWebsite))
	}
	if byWebsite[0].FixType != model.IssueImageOptimization {
		t.Errorf("tasks should be oldest first, got %q", byWebsite[0].FixType)
	}

	completed, err := db.ListByStatus(ctx, model.TaskCompleted)
	if err != nil {
		t.Fatalf("ListByStatus() error = %v", err)
	}
	if len(completed) != 2 {
		t.Errorf("ListByStatus() returned %d tasks, want 2", len(completed))
	}

	recent, err := db.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(recent) != 2 || recent[0].FixType != model.IssueJavaScriptOptimization {
		t.Errorf("ListRecent() should return the newest tasks first")
	}

	counts, err := db.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if counts[model.TaskCompleted] != 2 || counts[model.TaskPending] != 1 || counts[model.TaskFailed] != 1 {
		t.Errorf("CountByStatus() = %v", counts)
	}

	none, err := db.ListByWebsite(ctx, 99)
	if err != nil {
		t.Fatalf("ListByWebsite() error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no tasks, got %d", len(none))
	}
}

func TestAuditReportArchive(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	report := &model.AuditReport{
		ID:         1,
		WebsiteID:  7,
		URL:        "https://example.com/",
		AuditedAt:  time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
		RawResults: json.RawMessage(`{"audits": {"uses-webp-images": {"score": 0.4}}}`),
	}

	id, created, err := db.SaveAuditReport(ctx, report)
	if err != nil {
		t.Fatalf("SaveAuditReport() error = %v", err)
	}
	if !created || id == 0 {
		t.Fatalf("first save should create a row, got id=%d created=%v", id, created)
	}

	// Same content with different whitespace is the same report.
	again := *report
	again.RawResults = json.RawMessage(`{"audits":{"uses-webp-images":{"score":0.4}}}`)
	id2, created2, err := db.SaveAuditReport(ctx, &again)
	if err != nil {
		t.Fatalf("SaveAuditReport() error = %v", err)
	}
	if created2 || id2 != id {
		t.Errorf("duplicate save should return existing id %d, got id=%d created=%v", id, id2, created2)
	}

	// Same content for another website is archived separately.
	other := *report
	other.WebsiteID = 8
	id3, created3, err := db.SaveAuditReport(ctx, &other)
	if err != nil {
		t.Fatalf("SaveAuditReport() error = %v", err)
	}
	if !created3 || id3 == id {
		t.Errorf("report of another website should be a new row")
	}

	loaded, err := db.GetAuditReport(ctx, id)
	if err != nil {
		t.Fatalf("GetAuditReport() error = %v", err)
	}
	if loaded.ID != id || loaded.WebsiteID != 7 || loaded.URL != report.URL {
		t.Errorf("unexpected report: %+v", loaded)
	}
	if loaded.Digest() != report.Digest() {
		t.Error("raw results should round-trip through the archive")
	}
	if !loaded.AuditedAt.Equal(report.AuditedAt) {
		t.Errorf("AuditedAt = %v, want %v", loaded.AuditedAt, report.AuditedAt)
	}

	list, err := db.ListAuditReports(ctx, 7)
	if err != nil {
		t.Fatalf("ListAuditReports() error = %v", err)
	}
	if len(list) != 1 || list[0].Digest != report.Digest() {
		t.Errorf("ListAuditReports() = %+v", list)
	}
	if list[0].ArchivedAt.IsZero() {
		t.Error("ArchivedAt should be set")
	}

	if _, err := db.GetAuditReport(ctx, 999); !errors.Is(err, ErrAuditReportNotFound) {
		t.Errorf("GetAuditReport() error = %v, want ErrAuditReportNotFound", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{name: "sqlite default", input: "2026-05-01 12:00:00"},
		{name: "iso with Z", input: "2026-05-01T12:00:00Z"},
		{name: "rfc3339 offset", input: "2026-05-01T12:00:00+09:00"},
		{name: "rfc3339 nano", input: "2026-05-01T12:00:00.123456789Z"},
		{name: "garbage", input: "yesterday", zero: true},
		{name: "empty", input: "", zero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := parseTimestamp(tt.input)
			if got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q) = %v", tt.input, got)
			}
		})
	}
}
