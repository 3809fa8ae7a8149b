package domain

import "time"

// Phase is the discrete state of a training session.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseRunning  Phase = "running"
	PhasePaused   Phase = "paused"
	PhaseFinished Phase = "finished"
	PhaseExited   Phase = "exited"
)

// StepResult is the log entry written when a step is left, naturally or by skip.
type StepResult struct {
	StepID             string
	StepIndex          int
	Type               StepType
	PlannedDurationSec int
	// ActualElapsedSec is this step's share of the rounded running total,
	// not the step's own time rounded. It can differ from that by one
	// second, and the results always sum to the rounded session total.
	ActualElapsedSec   int
	WasSkipped         bool
	WasExtended        bool
	ExtensionSec       int
}

// SessionState is the value owned by the reducer. Copies are cheap; the
// results slice is never appended in place, so an older snapshot keeps
// seeing the log it was taken with.
type SessionState struct {
	Phase            Phase
	Program          *Program
	CurrentStepIndex int
	Remaining        time.Duration
	TotalElapsed     time.Duration
	StepStartedAt    time.Time
	PausedAccum      time.Duration
	PausedAt         *time.Time
	Results          []StepResult

	// ExtensionSec is the time added to the current step so far.
	ExtensionSec int
	// ElapsedBeforeStep is the measured time of every logged step.
	ElapsedBeforeStep time.Duration

	StartedAt time.Time
	EndedAt   *time.Time
}

// NewSessionState returns a fresh idle session.
func NewSessionState() SessionState {
	return SessionState{Phase: PhaseIdle}
}

// IsTerminal returns true once the session has finished or been exited.
func (s SessionState) IsTerminal() bool {
	return s.Phase == PhaseFinished || s.Phase == PhaseExited
}

// IsActive returns true if the session is running or paused.
func (s SessionState) IsActive() bool {
	return s.Phase == PhaseRunning || s.Phase == PhasePaused
}

// CurrentStep returns the step the pointer is on.
func (s SessionState) CurrentStep() (Step, bool) {
	if s.Program == nil || s.CurrentStepIndex < 0 || s.CurrentStepIndex >= len(s.Program.Steps) {
		return Step{}, false
	}
	return s.Program.Steps[s.CurrentStepIndex], true
}

// NextUp returns the step that follows the current one, if any.
func (s SessionState) NextUp() (Step, bool) {
	if s.Program == nil || s.Phase == PhaseFinished {
		return Step{}, false
	}
	next := s.CurrentStepIndex + 1
	if next >= len(s.Program.Steps) {
		return Step{}, false
	}
	return s.Program.Steps[next], true
}

// IsLastStep returns true if no step follows the current one.
func (s SessionState) IsLastStep() bool {
	if s.Program == nil {
		return false
	}
	return s.CurrentStepIndex == len(s.Program.Steps)-1
}

// StepDuration returns the current step's planned length plus any extension.
func (s SessionState) StepDuration() time.Duration {
	step, ok := s.CurrentStep()
	if !ok {
		return 0
	}
	return time.Duration(step.DurationSec+s.ExtensionSec) * time.Second
}

// StepElapsedAt returns the active (unpaused) time spent in the current step
// as of now. While paused the clock stops at the pause instant.
func (s SessionState) StepElapsedAt(now time.Time) time.Duration {
	if s.StepStartedAt.IsZero() {
		return 0
	}
	end := now
	if s.PausedAt != nil {
		end = *s.PausedAt
	}
	elapsed := end.Sub(s.StepStartedAt) - s.PausedAccum
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// RemainingAt computes the time left in the current step from absolute
// timestamps, so a late sample never accumulates drift.
func (s SessionState) RemainingAt(now time.Time) time.Duration {
	remaining := s.StepDuration() - s.StepElapsedAt(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Progress returns the fraction of the current step already done.
func (s SessionState) Progress() float64 {
	return ProgressFraction(s.Remaining, s.StepDuration())
}

// GetPhaseLabel returns a human-readable label for the phase.
func GetPhaseLabel(p Phase) string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseRunning:
		return "Running"
	case PhasePaused:
		return "Paused"
	case PhaseFinished:
		return "Finished"
	case PhaseExited:
		return "Exited"
	default:
		return "Unknown"
	}
}
