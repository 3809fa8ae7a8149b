package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xvierd/trainer-cli/internal/domain"
	"github.com/xvierd/trainer-cli/internal/ports"
)

// HistoryService handles workout history use cases.
type HistoryService struct {
	storage ports.Storage
}

// NewHistoryService creates a new history service.
func NewHistoryService(storage ports.Storage) *HistoryService {
	return &HistoryService{storage: storage}
}

// Recent returns the last limit workouts, newest first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]*domain.WorkoutRecord, error) {
	records, err := s.storage.Workouts().FindRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return records, nil
}

// Get returns one workout by ID or by a unique ID prefix, as printed by
// the history list.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.WorkoutRecord, error) {
	record, err := s.storage.Workouts().FindByID(ctx, id)
	if !errors.Is(err, domain.ErrWorkoutNotFound) || id == "" {
		return record, err
	}

	all, err := s.storage.Workouts().FindRecent(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	var match *domain.WorkoutRecord
	for _, r := range all {
		if !strings.HasPrefix(r.ID, id) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("workout ID prefix %q is ambiguous", id)
		}
		match = r
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrWorkoutNotFound, id)
	}
	return match, nil
}

// ForProgram returns every workout of one program, newest first.
func (s *HistoryService) ForProgram(ctx context.Context, programID string) ([]*domain.WorkoutRecord, error) {
	records, err := s.storage.Workouts().FindByProgram(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to load program history: %w", err)
	}
	return records, nil
}

// Stats aggregates the workouts finished since the given time. A zero
// since covers the whole history.
func (s *HistoryService) Stats(ctx context.Context, since time.Time) (*domain.HistoryStats, error) {
	stats, err := s.storage.Workouts().GetStats(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return stats, nil
}

// WeekStats aggregates the seven days ending at now.
func (s *HistoryService) WeekStats(ctx context.Context, now time.Time) (*domain.HistoryStats, error) {
	return s.Stats(ctx, now.AddDate(0, 0, -7))
}
