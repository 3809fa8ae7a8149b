package domain

import "time"

// CountdownSeconds is how many final whole seconds of a step get a cue.
const CountdownSeconds = 3

// CueKind names a sound/haptic signal.
type CueKind string

const (
	CueCountdown       CueKind = "countdown"
	CueStepComplete    CueKind = "step_complete"
	CueSessionFinished CueKind = "session_finished"
)

// Cue is a discrete signal for the sound and haptics layer.
type Cue struct {
	Kind      CueKind
	Seconds   int // countdown only: 3, 2 or 1
	StepIndex int
	StepID    string
}

// CuesBetween derives the cues produced by a transition from prev to next.
func CuesBetween(prev, next SessionState) []Cue {
	var cues []Cue

	if len(next.Results) > len(prev.Results) {
		for _, r := range next.Results[len(prev.Results):] {
			if !r.WasSkipped {
				cues = append(cues, Cue{Kind: CueStepComplete, StepIndex: r.StepIndex, StepID: r.StepID})
			}
		}
		if next.Phase == PhaseFinished && prev.Phase != PhaseFinished {
			cues = append(cues, Cue{Kind: CueSessionFinished, StepIndex: next.CurrentStepIndex})
		}
		return cues
	}

	if prev.Phase != PhaseRunning || next.Phase != PhaseRunning || prev.CurrentStepIndex != next.CurrentStepIndex {
		return nil
	}
	step, _ := next.CurrentStep()
	for k := CountdownSeconds; k >= 1; k-- {
		mark := time.Duration(k) * time.Second
		if prev.Remaining > mark && next.Remaining <= mark {
			cues = append(cues, Cue{Kind: CueCountdown, Seconds: k, StepIndex: next.CurrentStepIndex, StepID: step.ID})
		}
	}
	return cues
}
