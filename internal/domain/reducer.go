package domain

import "time"

// ExtensionStepSec is how much ADD_TEN_SECONDS adds to a rest step.
const ExtensionStepSec = 10

// Reduce applies ev to s and returns the next state. It is pure: the input
// state is never modified. Events that make no sense in the current phase
// return s unchanged. The only error is ErrEmptyProgram from START, in which
// case s is returned as it was.
func Reduce(s SessionState, ev Event) (SessionState, error) {
	if s.IsTerminal() {
		if ev.Type == EventReset {
			return NewSessionState(), nil
		}
		return s, nil
	}

	switch ev.Type {
	case EventStart:
		return start(s, ev)
	case EventTick:
		return tick(s, ev), nil
	case EventPause:
		return pause(s, ev), nil
	case EventResume:
		return resume(s, ev), nil
	case EventNextStep:
		if s.Phase != PhaseRunning {
			return s, nil
		}
		return advance(s, ev.At, true), nil
	case EventSkipRest:
		if s.Phase != PhaseRunning || !currentIsRest(s) {
			return s, nil
		}
		return advance(s, ev.At, true), nil
	case EventAddTenSeconds:
		return addTenSeconds(s), nil
	case EventExit:
		return exit(s, ev), nil
	}
	return s, nil
}

func start(s SessionState, ev Event) (SessionState, error) {
	if s.Phase != PhaseIdle {
		return s, nil
	}
	if ev.Program == nil || len(ev.Program.Steps) == 0 {
		return s, ErrEmptyProgram
	}

	first := ev.Program.Steps[0]
	return SessionState{
		Phase:            PhaseRunning,
		Program:          ev.Program,
		CurrentStepIndex: 0,
		Remaining:        first.Duration(),
		StepStartedAt:    ev.At,
		StartedAt:        ev.At,
	}, nil
}

func tick(s SessionState, ev Event) SessionState {
	if s.Phase != PhaseRunning {
		return s
	}
	if g := ev.Guard; g != nil && (g.StepIndex != s.CurrentStepIndex || g.StepDuration != s.StepDuration()) {
		// Sampled against a step that has since been left or extended.
		return s
	}

	remaining := ev.Remaining
	if remaining < 0 {
		remaining = 0
	}
	if remaining == 0 {
		return advance(s, ev.At, false)
	}

	s.Remaining = remaining
	s.TotalElapsed = maxDuration(s.TotalElapsed, s.ElapsedBeforeStep+s.StepElapsedAt(ev.At))
	return s
}

func pause(s SessionState, ev Event) SessionState {
	if s.Phase != PhaseRunning {
		return s
	}
	at := ev.At
	s.Phase = PhasePaused
	s.PausedAt = &at
	return s
}

func resume(s SessionState, ev Event) SessionState {
	if s.Phase != PhasePaused || s.PausedAt == nil {
		return s
	}
	if paused := ev.At.Sub(*s.PausedAt); paused > 0 {
		s.PausedAccum += paused
	}
	s.PausedAt = nil
	s.Phase = PhaseRunning
	return s
}

func addTenSeconds(s SessionState) SessionState {
	if s.Phase != PhaseRunning || !currentIsRest(s) {
		return s
	}
	s.Remaining += ExtensionStepSec * time.Second
	s.ExtensionSec += ExtensionStepSec
	return s
}

func exit(s SessionState, ev Event) SessionState {
	if !s.IsActive() {
		return s
	}
	at := ev.At
	s.TotalElapsed = maxDuration(s.TotalElapsed, s.ElapsedBeforeStep+s.StepElapsedAt(at))
	s.Phase = PhaseExited
	s.PausedAt = nil
	s.EndedAt = &at
	return s
}

// advance logs the current step and moves the pointer on, finishing the
// session after the last step.
func advance(s SessionState, at time.Time, skipped bool) SessionState {
	step, ok := s.CurrentStep()
	if !ok {
		return s
	}

	elapsed := s.StepElapsedAt(at)
	s.Results = appendResult(s.Results, StepResult{
		StepID:             step.ID,
		StepIndex:          s.CurrentStepIndex,
		Type:               step.Type,
		PlannedDurationSec: step.DurationSec,
		ActualElapsedSec:   roundedShare(s.ElapsedBeforeStep, elapsed),
		WasSkipped:         skipped,
		WasExtended:        s.ExtensionSec > 0,
		ExtensionSec:       s.ExtensionSec,
	})
	s.ElapsedBeforeStep += elapsed
	s.TotalElapsed = maxDuration(s.TotalElapsed, s.ElapsedBeforeStep)
	s.PausedAccum = 0
	s.PausedAt = nil
	s.ExtensionSec = 0

	if s.IsLastStep() {
		s.Phase = PhaseFinished
		s.Remaining = 0
		s.StepStartedAt = time.Time{}
		s.EndedAt = &at
		return s
	}

	s.CurrentStepIndex++
	s.Remaining = s.Program.Steps[s.CurrentStepIndex].Duration()
	s.StepStartedAt = at
	return s
}

func currentIsRest(s SessionState) bool {
	step, ok := s.CurrentStep()
	return ok && step.IsRest()
}

// appendResult copies instead of appending in place so earlier snapshots
// sharing the backing array are unaffected.
func appendResult(results []StepResult, r StepResult) []StepResult {
	out := make([]StepResult, len(results), len(results)+1)
	copy(out, results)
	return append(out, r)
}

// roundedShare rounds a step's elapsed time against the running total, so
// the logged seconds always add up to the rounded session total.
func roundedShare(before, elapsed time.Duration) int {
	return wholeSeconds(before+elapsed) - wholeSeconds(before)
}

func wholeSeconds(d time.Duration) int {
	return int(d.Round(time.Second) / time.Second)
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
