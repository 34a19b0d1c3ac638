package fixer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/perfscan/internal/model"
)

func storedTask(repo *memoryRepository, status model.TaskStatus) *model.OptimizationTask {
	created := fixedNow.Add(-time.Hour)
	return repo.put(model.OptimizationTask{
		WebsiteID: 7,
		FixType:   model.IssueImageOptimization,
		Status:    status,
		CreatedAt: created,
		UpdatedAt: created,
	})
}

func TestEngine_RollbackFix_Completed(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepository()
	engine := newTestEngine(t, `{}`, repo)
	task := storedTask(repo, model.TaskCompleted)

	result := engine.RollbackFix(context.Background(), task)
	require.True(t, result.Success, result.Error)
	assert.Equal(t, model.TaskRolledBack, result.Status)
	assert.Equal(t, model.TaskRolledBack, task.Status)
	assert.Equal(t, fixedNow, task.UpdatedAt)

	stored, err := repo.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskRolledBack, stored.Status)
}

func TestEngine_RollbackFix_RejectsOtherStatuses(t *testing.T) {
	t.Parallel()

	for _, status := range []model.TaskStatus{
		model.TaskPending, model.TaskInProgress, model.TaskFailed, model.TaskRolledBack,
	} {
		t.Run(string(status), func(t *testing.T) {
			t.Parallel()

			repo := newMemoryRepository()
			engine := newTestEngine(t, `{}`, repo)
			task := storedTask(repo, status)

			result := engine.RollbackFix(context.Background(), task)
			assert.False(t, result.Success)
			assert.Contains(t, result.Error, "Cannot rollback")
			assert.Equal(t, "Cannot rollback task 1: status is "+string(status), result.Error)
			assert.Equal(t, status, task.Status)

			stored, err := repo.Get(context.Background(), task.ID)
			require.NoError(t, err)
			assert.Equal(t, status, stored.Status)
		})
	}
}

func TestEngine_RollbackFix_PersistFailureRestoresStatus(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepository()
	engine := newTestEngine(t, `{}`, repo)
	task := storedTask(repo, model.TaskCompleted)
	updatedAt := task.UpdatedAt
	repo.failUpdate = errors.New("database is locked")

	result := engine.RollbackFix(context.Background(), task)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "database is locked")
	assert.Equal(t, model.TaskCompleted, task.Status)
	assert.Equal(t, updatedAt, task.UpdatedAt)
}

func TestEngine_RollbackFix_NilTask(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, `{}`, newMemoryRepository())
	result := engine.RollbackFix(context.Background(), nil)
	assert.False(t, result.Success)
	assert.Equal(t, ErrNilTask.Error(), result.Error)
}

func TestEngine_RollbackTask(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepository()
	engine := newTestEngine(t, `{}`, repo)
	task := storedTask(repo, model.TaskCompleted)

	result := engine.RollbackTask(context.Background(), task.ID)
	require.True(t, result.Success, result.Error)

	missing := engine.RollbackTask(context.Background(), 999)
	assert.False(t, missing.Success)
	assert.Contains(t, missing.Error, "task not found")
}

func TestRollbackStateError(t *testing.T) {
	t.Parallel()

	err := &RollbackStateError{TaskID: 3, Status: model.TaskPending}
	assert.ErrorIs(t, err, ErrCannotRollback)
	assert.Equal(t, "Cannot rollback task 3: status is pending", err.Error())
}
