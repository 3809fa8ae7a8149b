// Package domain contains the core training entities for Trainer: steps,
// programs, the session state machine and the result log it produces.
// Nothing in this package reads the clock or performs I/O.
package domain

import "time"

// StepType discriminates the Step variants.
type StepType string

const (
	StepTypeExercise StepType = "exercise"
	StepTypeRest     StepType = "rest"
)

// ExerciseDetails holds the fields only an exercise step carries.
type ExerciseDetails struct {
	Description string
	IconRef     string
	TargetReps  int // 0 means no target
	Equipment   []string
}

// RestDetails holds the fields only a rest step carries.
type RestDetails struct {
	Tip string
}

// Step is one timed interval of a program. Exactly one of Exercise or Rest
// is set, matching Type.
type Step struct {
	ID          string
	Title       string
	DurationSec int
	Type        StepType
	Exercise    *ExerciseDetails
	Rest        *RestDetails
}

// NewExercise builds an exercise step.
func NewExercise(id, title string, durationSec int, details ExerciseDetails) Step {
	return Step{
		ID:          id,
		Title:       title,
		DurationSec: durationSec,
		Type:        StepTypeExercise,
		Exercise:    &details,
	}
}

// NewRest builds a rest step.
func NewRest(id, title string, durationSec int, tip string) Step {
	return Step{
		ID:          id,
		Title:       title,
		DurationSec: durationSec,
		Type:        StepTypeRest,
		Rest:        &RestDetails{Tip: tip},
	}
}

// Duration returns the planned length of the step.
func (s Step) Duration() time.Duration {
	return time.Duration(s.DurationSec) * time.Second
}

// IsRest returns true if this is a rest step.
func (s Step) IsRest() bool {
	return s.Type == StepTypeRest
}

// IsExercise returns true if this is an exercise step.
func (s Step) IsExercise() bool {
	return s.Type == StepTypeExercise
}

// wellFormed reports whether the payload matches the tag.
func (s Step) wellFormed() bool {
	switch s.Type {
	case StepTypeExercise:
		return s.Exercise != nil && s.Rest == nil
	case StepTypeRest:
		return s.Rest != nil && s.Exercise == nil
	default:
		return false
	}
}

// GetStepTypeLabel returns a human-readable label for the step type.
func GetStepTypeLabel(t StepType) string {
	switch t {
	case StepTypeExercise:
		return "Exercise"
	case StepTypeRest:
		return "Rest"
	default:
		return "Unknown"
	}
}
