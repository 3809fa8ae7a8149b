package domain

import (
	"errors"
	"time"
)

// ErrSessionNotFinished is returned when a completion is requested early.
var ErrSessionNotFinished = errors.New("session is not finished")

// Completion is the immutable payload handed to the summary screen and
// stored in workout history.
type Completion struct {
	ID           string
	Program      *Program
	Results      []StepResult
	TotalElapsed time.Duration
	StartedAt    time.Time
	FinishedAt   time.Time
	Summary      Summary
}

// NewCompletion builds the payload from a finished session.
func NewCompletion(s SessionState) (*Completion, error) {
	if s.Phase != PhaseFinished {
		return nil, ErrSessionNotFinished
	}

	results := make([]StepResult, len(s.Results))
	copy(results, s.Results)

	finished := s.StartedAt.Add(s.TotalElapsed)
	if s.EndedAt != nil {
		finished = *s.EndedAt
	}

	return &Completion{
		ID:           generateID(),
		Program:      s.Program,
		Results:      results,
		TotalElapsed: s.TotalElapsed,
		StartedAt:    s.StartedAt,
		FinishedAt:   finished,
		Summary:      Summarize(results, s.TotalElapsed),
	}, nil
}
