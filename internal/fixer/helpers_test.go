package fixer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nao1215/perfscan/internal/model"
)

var errTaskNotFound = errors.New("task not found")

// memoryRepository is an in-memory TaskRepository.
type memoryRepository struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*model.OptimizationTask

	// failCreate makes Create fail for the given fix type.
	failCreate map[model.IssueType]error
	// failUpdate makes every Update fail.
	failUpdate error
	// panicCreate makes Create panic for the given fix type.
	panicCreate model.IssueType
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		tasks:      make(map[int64]*model.OptimizationTask),
		failCreate: make(map[model.IssueType]error),
	}
}

func (r *memoryRepository) Create(_ context.Context, task *model.OptimizationTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.FixType == r.panicCreate {
		panic("storage exploded")
	}
	if err := r.failCreate[task.FixType]; err != nil {
		return err
	}
	r.nextID++
	task.ID = r.nextID
	stored := *task
	r.tasks[task.ID] = &stored
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id int64) (*model.OptimizationTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", errTaskNotFound, id)
	}
	copied := *task
	return &copied, nil
}

func (r *memoryRepository) Update(_ context.Context, task *model.OptimizationTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failUpdate != nil {
		return r.failUpdate
	}
	if _, ok := r.tasks[task.ID]; !ok {
		return fmt.Errorf("%w: %d", errTaskNotFound, task.ID)
	}
	stored := *task
	r.tasks[task.ID] = &stored
	return nil
}

func (r *memoryRepository) ListByWebsite(_ context.Context, websiteID int64) ([]*model.OptimizationTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.OptimizationTask
	for id := int64(1); id <= r.nextID; id++ {
		if task, ok := r.tasks[id]; ok && task.WebsiteID == websiteID {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// put stores a task directly, bypassing the engine.
func (r *memoryRepository) put(task model.OptimizationTask) *model.OptimizationTask {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	task.ID = r.nextID
	r.tasks[task.ID] = &task
	copied := task
	return &copied
}

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestEngine(t *testing.T, raw string, repo TaskRepository, opts ...Option) *Engine {
	t.Helper()

	report := &model.AuditReport{
		ID:         10,
		WebsiteID:  7,
		URL:        "https://shop.example.com/",
		RawResults: json.RawMessage(raw),
	}
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	engine, err := New(report, repo, opts...)
	require.NoError(t, err)
	return engine
}

func imageIssue() *model.Issue {
	return &model.Issue{
		Type:      model.IssueImageOptimization,
		Severity:  model.SeverityHigh,
		WebsiteID: 7,
		Data: &model.ImageOptimizationData{
			AffectedImages: []string{"https://shop.example.com/hero.jpg"},
			TotalSavings:   500000,
			WastedMs:       400,
		},
	}
}

const mixedResults = `{
  "opportunities": {
    "uses-webp-images": {"score": 0.2, "details": {"items": [
      {"url": "https://shop.example.com/a.jpg", "wastedBytes": 150000, "wastedMs": 300},
      {"url": "https://shop.example.com/b.jpg", "wastedBytes": 200000, "wastedMs": 200}
    ]}},
    "unminified-css": {"score": 0.5, "details": {"items": [
      {"url": "https://shop.example.com/site.css", "wastedBytes": 12000, "wastedMs": 50}
    ]}}
  }
}`
