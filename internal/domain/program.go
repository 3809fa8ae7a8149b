package domain

import (
	"errors"
	"fmt"
)

// Common domain errors.
var (
	ErrEmptyProgram        = errors.New("program has no steps")
	ErrInvalidStepDuration = errors.New("step duration must be a positive number of seconds")
	ErrEmptyStepID         = errors.New("step ID cannot be empty")
	ErrDuplicateStepID     = errors.New("duplicate step ID")
	ErrInvalidTargetReps   = errors.New("target reps must be positive")
	ErrInvalidDifficulty   = errors.New("difficulty must be between 1 and 5")
	ErrUnknownStepType     = errors.New("unknown or malformed step type")
	ErrProgramNotFound     = errors.New("program not found")
	ErrWorkoutNotFound     = errors.New("workout not found")
	ErrSessionNotIdle      = errors.New("session already started")
)

const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Program is an ordered sequence of steps plus authored aggregate metadata.
// A program is never mutated once a session has started with it.
type Program struct {
	ID             string
	Title          string
	Description    string
	Difficulty     int
	Tags           []string
	TotalActiveSec int
	TotalRestSec   int
	StepsCount     int
	Steps          []Step
}

// Aggregates are the totals derived from a program's steps.
type Aggregates struct {
	TotalActiveSec int
	TotalRestSec   int
	StepsCount     int
}

// ComputeAggregates walks the steps and sums them by type.
func ComputeAggregates(steps []Step) Aggregates {
	agg := Aggregates{StepsCount: len(steps)}
	for _, s := range steps {
		switch s.Type {
		case StepTypeExercise:
			agg.TotalActiveSec += s.DurationSec
		case StepTypeRest:
			agg.TotalRestSec += s.DurationSec
		}
	}
	return agg
}

// AggregateMismatch is the ProgramAggregateMismatchWarning: a declared total
// that disagrees with the steps. It is an authoring problem, never fatal.
type AggregateMismatch struct {
	ProgramID string
	Field     string
	Declared  int
	Computed  int
}

// Error implements error so a warning can be logged or wrapped like one.
func (w AggregateMismatch) Error() string {
	return fmt.Sprintf("program %q: declared %s=%d but steps sum to %d",
		w.ProgramID, w.Field, w.Declared, w.Computed)
}

// ValidateProgram checks a program before it may be started. The returned
// error is fatal; the warnings are not.
func ValidateProgram(p *Program) ([]AggregateMismatch, error) {
	if p == nil || len(p.Steps) == 0 {
		return nil, ErrEmptyProgram
	}
	if p.Difficulty < MinDifficulty || p.Difficulty > MaxDifficulty {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDifficulty, p.Difficulty)
	}

	seen := make(map[string]int, len(p.Steps))
	for i, s := range p.Steps {
		if s.ID == "" {
			return nil, fmt.Errorf("step %d: %w", i, ErrEmptyStepID)
		}
		if first, ok := seen[s.ID]; ok {
			return nil, fmt.Errorf("step %d: %w %q (first used at step %d)", i, ErrDuplicateStepID, s.ID, first)
		}
		seen[s.ID] = i
		if !s.wellFormed() {
			return nil, fmt.Errorf("step %d (%s): %w", i, s.ID, ErrUnknownStepType)
		}
		if s.DurationSec <= 0 {
			return nil, fmt.Errorf("step %d (%s): %w: got %d", i, s.ID, ErrInvalidStepDuration, s.DurationSec)
		}
		if s.Exercise != nil && s.Exercise.TargetReps < 0 {
			return nil, fmt.Errorf("step %d (%s): %w: got %d", i, s.ID, ErrInvalidTargetReps, s.Exercise.TargetReps)
		}
	}

	return checkAggregates(p), nil
}

func checkAggregates(p *Program) []AggregateMismatch {
	computed := ComputeAggregates(p.Steps)
	var warnings []AggregateMismatch
	check := func(field string, declared, actual int) {
		if declared != actual {
			warnings = append(warnings, AggregateMismatch{
				ProgramID: p.ID,
				Field:     field,
				Declared:  declared,
				Computed:  actual,
			})
		}
	}
	check("total_active_sec", p.TotalActiveSec, computed.TotalActiveSec)
	check("total_rest_sec", p.TotalRestSec, computed.TotalRestSec)
	check("steps_count", p.StepsCount, computed.StepsCount)
	return warnings
}

// PlannedDurationSec returns the sum of all step durations.
func (p *Program) PlannedDurationSec() int {
	agg := ComputeAggregates(p.Steps)
	return agg.TotalActiveSec + agg.TotalRestSec
}
