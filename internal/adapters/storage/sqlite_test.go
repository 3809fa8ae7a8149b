package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/trainer-cli/internal/domain"
	"github.com/xvierd/trainer-cli/internal/ports"
)

var t0 = time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)

func newTestStorage(t *testing.T) ports.Storage {
	t.Helper()
	store, err := NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func record(id, programID string, finished time.Time, results ...domain.StepResult) *domain.WorkoutRecord {
	var elapsed time.Duration
	for _, r := range results {
		elapsed += time.Duration(r.ActualElapsedSec) * time.Second
	}
	return &domain.WorkoutRecord{
		ID:           id,
		ProgramID:    programID,
		ProgramTitle: "Title " + programID,
		StartedAt:    finished.Add(-elapsed),
		FinishedAt:   finished,
		TotalElapsed: elapsed,
		Summary:      domain.Summarize(results, elapsed),
		Results:      results,
	}
}

func exerciseResult(index, sec int) domain.StepResult {
	return domain.StepResult{
		StepID:             "ex",
		StepIndex:          index,
		Type:               domain.StepTypeExercise,
		PlannedDurationSec: sec,
		ActualElapsedSec:   sec,
	}
}

func restResult(index, planned, actual int, skipped bool, ext int) domain.StepResult {
	return domain.StepResult{
		StepID:             "rest",
		StepIndex:          index,
		Type:               domain.StepTypeRest,
		PlannedDurationSec: planned,
		ActualElapsedSec:   actual,
		WasSkipped:         skipped,
		WasExtended:        ext > 0,
		ExtensionSec:       ext,
	}
}

func TestNewMemory(t *testing.T) {
	store := newTestStorage(t)
	assert.NotNil(t, store.Workouts())
	assert.NotNil(t, store.Preferences())
}

func TestMigrate_Idempotent(t *testing.T) {
	store := newTestStorage(t)
	require.NoError(t, store.Migrate())
	require.NoError(t, store.Migrate())
}

func TestNew_FileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trainer.db")
	ctx := context.Background()

	store, err := New(path)
	require.NoError(t, err)
	require.NoError(t, store.Workouts().Save(ctx, record("w1", "p1", t0, exerciseResult(0, 30))))
	require.NoError(t, store.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Workouts().FindByID(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ProgramID)
}

func TestWorkoutRepository_SaveAndFind(t *testing.T) {
	store := newTestStorage(t)
	repo := store.Workouts()
	ctx := context.Background()

	want := record("w1", "core", t0,
		exerciseResult(0, 30),
		restResult(1, 15, 25, false, 10),
		restResult(2, 15, 4, true, 0),
	)
	require.NoError(t, repo.Save(ctx, want))

	t.Run("find by id", func(t *testing.T) {
		got, err := repo.FindByID(ctx, "w1")
		require.NoError(t, err)
		assert.Equal(t, want.ProgramTitle, got.ProgramTitle)
		assert.True(t, want.StartedAt.Equal(got.StartedAt))
		assert.True(t, want.FinishedAt.Equal(got.FinishedAt))
		assert.Equal(t, want.TotalElapsed, got.TotalElapsed)
		assert.Equal(t, want.Results, got.Results)
		assert.Equal(t, want.Summary, got.Summary)
	})

	t.Run("find non-existent", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrWorkoutNotFound)
	})

	t.Run("duplicate id", func(t *testing.T) {
		err := repo.Save(ctx, record("w1", "core", t0, exerciseResult(0, 5)))
		require.Error(t, err)

		got, err := repo.FindByID(ctx, "w1")
		require.NoError(t, err)
		assert.Len(t, got.Results, 3, "failed save must not touch the stored log")
	})
}

func TestWorkoutRepository_FindRecentAndByProgram(t *testing.T) {
	store := newTestStorage(t)
	repo := store.Workouts()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, record("a", "core", t0, exerciseResult(0, 10))))
	require.NoError(t, repo.Save(ctx, record("b", "legs", t0.Add(time.Hour), exerciseResult(0, 20))))
	require.NoError(t, repo.Save(ctx, record("c", "core", t0.Add(2*time.Hour), exerciseResult(0, 30))))

	recent, err := repo.FindRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "b", recent[1].ID)
	require.Len(t, recent[0].Results, 1)
	assert.Equal(t, 30, recent[0].Results[0].ActualElapsedSec)

	all, err := repo.FindRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	core, err := repo.FindByProgram(ctx, "core")
	require.NoError(t, err)
	require.Len(t, core, 2)
	assert.Equal(t, "c", core[0].ID)
	assert.Equal(t, "a", core[1].ID)

	none, err := repo.FindByProgram(ctx, "arms")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestWorkoutRepository_GetStats(t *testing.T) {
	store := newTestStorage(t)
	repo := store.Workouts()
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		stats, err := repo.GetStats(ctx, time.Time{})
		require.NoError(t, err)
		assert.Zero(t, stats.Workouts)
		assert.Nil(t, stats.LastWorkoutAt)
	})

	require.NoError(t, repo.Save(ctx, record("old", "core", t0.Add(-48*time.Hour), exerciseResult(0, 100))))
	require.NoError(t, repo.Save(ctx, record("a", "core", t0,
		exerciseResult(0, 30), restResult(1, 15, 25, false, 10))))
	require.NoError(t, repo.Save(ctx, record("b", "core", t0.Add(time.Hour),
		exerciseResult(0, 30), restResult(1, 15, 3, true, 0))))

	stats, err := repo.GetStats(ctx, t0.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Workouts)
	assert.Equal(t, 88*time.Second, stats.TotalElapsed)
	assert.Equal(t, 60, stats.TotalActiveSec)
	assert.Equal(t, 28, stats.TotalRestSec)
	assert.Equal(t, 1, stats.SkippedSteps)
	assert.Equal(t, 1, stats.ExtendedSteps)
	assert.InDelta(t, 75.0, stats.AverageCompletionRate, 0.001)
	require.NotNil(t, stats.LastWorkoutAt)
	assert.True(t, stats.LastWorkoutAt.Equal(t0.Add(time.Hour)))

	lifetime, err := repo.GetStats(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 3, lifetime.Workouts)
}

func TestPreferenceRepository(t *testing.T) {
	store := newTestStorage(t)
	prefs := store.Preferences()
	ctx := context.Background()

	_, ok, err := prefs.Get(ctx, "last_program_id")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, prefs.Set(ctx, "last_program_id", "core"))
	require.NoError(t, prefs.Set(ctx, "last_program_id", "legs"))

	value, ok, err := prefs.Get(ctx, "last_program_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "legs", value)
}
