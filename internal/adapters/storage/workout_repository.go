package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xvierd/trainer-cli/internal/domain"
	"github.com/xvierd/trainer-cli/internal/ports"
)

const workoutColumns = `
	id, program_id, program_title, started_at, finished_at, total_elapsed_ms,
	steps_logged, total_active_sec, total_rest_sec, planned_sec,
	skipped_count, extended_count, total_extension_sec, completion_rate
`

// workoutRepository implements ports.WorkoutRepository using SQLite.
type workoutRepository struct {
	db *sql.DB
}

// newWorkoutRepository creates a new workout repository.
func newWorkoutRepository(db *sql.DB) ports.WorkoutRepository {
	return &workoutRepository{db: db}
}

// Save persists a finished workout and its step log in one transaction.
func (r *workoutRepository) Save(ctx context.Context, record *domain.WorkoutRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sum := record.Summary
	_, err = tx.ExecContext(ctx, `
		INSERT INTO workouts (`+workoutColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.ProgramID,
		record.ProgramTitle,
		toMillis(record.StartedAt),
		toMillis(record.FinishedAt),
		record.TotalElapsed.Milliseconds(),
		sum.StepsLogged,
		sum.TotalActiveSec,
		sum.TotalRestSec,
		sum.PlannedSec,
		sum.SkippedCount,
		sum.ExtendedCount,
		sum.TotalExtensionSec,
		sum.CompletionRate,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("workout %s already saved: %w", record.ID, err)
		}
		return fmt.Errorf("failed to save workout: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO step_results (
			workout_id, position, step_id, step_index, type, planned_duration_sec,
			actual_elapsed_sec, was_skipped, was_extended, extension_sec
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare step results: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, res := range record.Results {
		if _, err := stmt.ExecContext(ctx,
			record.ID,
			i,
			res.StepID,
			res.StepIndex,
			string(res.Type),
			res.PlannedDurationSec,
			res.ActualElapsedSec,
			res.WasSkipped,
			res.WasExtended,
			res.ExtensionSec,
		); err != nil {
			return fmt.Errorf("failed to save step result %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit workout: %w", err)
	}
	return nil
}

// FindByID retrieves a workout by its unique identifier.
func (r *workoutRepository) FindByID(ctx context.Context, id string) (*domain.WorkoutRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id)

	record, err := scanWorkout(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrWorkoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan workout: %w", err)
	}

	if err := r.loadResults(ctx, []*domain.WorkoutRecord{record}); err != nil {
		return nil, err
	}
	return record, nil
}

// FindRecent returns the most recent workouts, newest first.
func (r *workoutRepository) FindRecent(ctx context.Context, limit int) ([]*domain.WorkoutRecord, error) {
	if limit <= 0 {
		limit = -1 // no limit
	}
	return r.query(ctx, `
		SELECT `+workoutColumns+`
		FROM workouts
		ORDER BY finished_at DESC, id
		LIMIT ?
	`, limit)
}

// FindByProgram returns every workout of one program, newest first.
func (r *workoutRepository) FindByProgram(ctx context.Context, programID string) ([]*domain.WorkoutRecord, error) {
	return r.query(ctx, `
		SELECT `+workoutColumns+`
		FROM workouts
		WHERE program_id = ?
		ORDER BY finished_at DESC, id
	`, programID)
}

// GetStats aggregates workouts finished at or after since.
func (r *workoutRepository) GetStats(ctx context.Context, since time.Time) (*domain.HistoryStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(total_elapsed_ms), 0),
			COALESCE(SUM(total_active_sec), 0),
			COALESCE(SUM(total_rest_sec), 0),
			COALESCE(SUM(skipped_count), 0),
			COALESCE(SUM(extended_count), 0),
			COALESCE(AVG(completion_rate), 0),
			MAX(finished_at)
		FROM workouts
		WHERE finished_at >= ?
	`

	stats := &domain.HistoryStats{Since: since}
	var elapsedMs int64
	var last sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, toMillis(since)).Scan(
		&stats.Workouts,
		&elapsedMs,
		&stats.TotalActiveSec,
		&stats.TotalRestSec,
		&stats.SkippedSteps,
		&stats.ExtendedSteps,
		&stats.AverageCompletionRate,
		&last,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get workout stats: %w", err)
	}

	stats.TotalElapsed = time.Duration(elapsedMs) * time.Millisecond
	if last.Valid {
		t := fromMillis(last.Int64)
		stats.LastWorkoutAt = &t
	}
	return stats, nil
}

func (r *workoutRepository) query(ctx context.Context, query string, args ...any) ([]*domain.WorkoutRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workouts: %w", err)
	}

	var records []*domain.WorkoutRecord
	for rows.Next() {
		record, err := scanWorkout(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan workout: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	// The pool holds one connection, so rows must be released before
	// the step results are read.
	_ = rows.Close()

	if err := r.loadResults(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *workoutRepository) loadResults(ctx context.Context, records []*domain.WorkoutRecord) error {
	for _, record := range records {
		rows, err := r.db.QueryContext(ctx, `
			SELECT step_id, step_index, type, planned_duration_sec,
			       actual_elapsed_sec, was_skipped, was_extended, extension_sec
			FROM step_results
			WHERE workout_id = ?
			ORDER BY position
		`, record.ID)
		if err != nil {
			return fmt.Errorf("failed to query step results: %w", err)
		}

		var results []domain.StepResult
		for rows.Next() {
			var res domain.StepResult
			var stepType string
			if err := rows.Scan(
				&res.StepID,
				&res.StepIndex,
				&stepType,
				&res.PlannedDurationSec,
				&res.ActualElapsedSec,
				&res.WasSkipped,
				&res.WasExtended,
				&res.ExtensionSec,
			); err != nil {
				_ = rows.Close()
				return fmt.Errorf("failed to scan step result: %w", err)
			}
			res.Type = domain.StepType(stepType)
			results = append(results, res)
		}
		err = rows.Err()
		_ = rows.Close()
		if err != nil {
			return err
		}
		record.Results = results
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanWorkout(row scanner) (*domain.WorkoutRecord, error) {
	var (
		record              domain.WorkoutRecord
		startedMs, finished int64
		elapsedMs           int64
	)
	sum := &record.Summary
	if err := row.Scan(
		&record.ID,
		&record.ProgramID,
		&record.ProgramTitle,
		&startedMs,
		&finished,
		&elapsedMs,
		&sum.StepsLogged,
		&sum.TotalActiveSec,
		&sum.TotalRestSec,
		&sum.PlannedSec,
		&sum.SkippedCount,
		&sum.ExtendedCount,
		&sum.TotalExtensionSec,
		&sum.CompletionRate,
	); err != nil {
		return nil, err
	}

	record.StartedAt = fromMillis(startedMs)
	record.FinishedAt = fromMillis(finished)
	record.TotalElapsed = time.Duration(elapsedMs) * time.Millisecond
	sum.TotalElapsed = record.TotalElapsed
	if sum.StepsLogged > 0 {
		sum.AverageStepSec = float64(sum.TotalActiveSec+sum.TotalRestSec) / float64(sum.StepsLogged)
	}
	return &record, nil
}
