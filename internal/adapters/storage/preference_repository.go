package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xvierd/trainer-cli/internal/ports"
)

// preferenceRepository implements ports.PreferenceRepository using SQLite.
type preferenceRepository struct {
	db  *sql.DB
	now func() time.Time
}

// newPreferenceRepository creates a new preference repository.
func newPreferenceRepository(db *sql.DB, now func() time.Time) ports.PreferenceRepository {
	return &preferenceRepository{db: db, now: now}
}

// Get returns the value stored under key.
func (r *preferenceRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get preference %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key.
func (r *preferenceRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, toMillis(r.now()))
	if err != nil {
		return fmt.Errorf("failed to set preference %q: %w", key, err)
	}
	return nil
}
