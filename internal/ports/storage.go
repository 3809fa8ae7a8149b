// Package ports defines the interfaces (driven and driving ports)
// for the Trainer application following hexagonal architecture principles.
// These interfaces define the contracts between the domain layer and
// external infrastructure.
package ports

import (
	"context"
	"time"

	"github.com/xvierd/trainer-cli/internal/domain"
)

// WorkoutRepository defines the interface for finished-workout persistence.
// This is a driven port (implemented by adapters).
type WorkoutRepository interface {
	// Save persists a finished session with its step log.
	Save(ctx context.Context, record *domain.WorkoutRecord) error

	// FindByID retrieves a workout by its unique identifier.
	FindByID(ctx context.Context, id string) (*domain.WorkoutRecord, error)

	// FindRecent returns the most recent workouts, newest first.
	FindRecent(ctx context.Context, limit int) ([]*domain.WorkoutRecord, error)

	// FindByProgram returns all workouts of one program, newest first.
	FindByProgram(ctx context.Context, programID string) ([]*domain.WorkoutRecord, error)

	// GetStats aggregates workouts finished at or after since.
	GetStats(ctx context.Context, since time.Time) (*domain.HistoryStats, error)
}

// PreferenceRepository is the key/value contract for user preferences.
// This is a driven port (implemented by adapters).
type PreferenceRepository interface {
	// Get returns the value for key and whether it was set.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// Storage is the combined repository interface.
// This is a driven port (implemented by adapters).
type Storage interface {
	// Workouts provides access to workout history.
	Workouts() WorkoutRepository

	// Preferences provides access to stored preferences.
	Preferences() PreferenceRepository

	// Close closes the storage connection.
	Close() error

	// Migrate runs database migrations.
	Migrate() error
}
