package domain

import "time"

// WorkoutRecord is a finished session as kept in history.
type WorkoutRecord struct {
	ID           string
	ProgramID    string
	ProgramTitle string
	StartedAt    time.Time
	FinishedAt   time.Time
	TotalElapsed time.Duration
	Summary      Summary
	Results      []StepResult
}

// HistoryStats aggregates workout history over a period.
type HistoryStats struct {
	Since                 time.Time
	Workouts              int
	TotalElapsed          time.Duration
	TotalActiveSec        int
	TotalRestSec          int
	SkippedSteps          int
	ExtendedSteps         int
	AverageCompletionRate float64
	LastWorkoutAt         *time.Time
}

// NewWorkoutRecord flattens a completion into a history record.
func NewWorkoutRecord(c *Completion) *WorkoutRecord {
	rec := &WorkoutRecord{
		ID:           c.ID,
		StartedAt:    c.StartedAt,
		FinishedAt:   c.FinishedAt,
		TotalElapsed: c.TotalElapsed,
		Summary:      c.Summary,
		Results:      append([]StepResult(nil), c.Results...),
	}
	if c.Program != nil {
		rec.ProgramID = c.Program.ID
		rec.ProgramTitle = c.Program.Title
	}
	return rec
}
