package domain

// Presentation is what a renderer needs for one frame of the session screen.
type Presentation struct {
	Phase         Phase
	StepNumber    int // 1-based
	StepCount     int
	StepTitle     string
	StepType      StepType
	Tip           string
	Progress      float64
	RemainingText string
	NextUpTitle   string
	IsPaused      bool
	IsLastStep    bool
	CanSkipRest   bool
	CanExtend     bool
}

// Present projects a session state onto a Presentation.
func Present(s SessionState) Presentation {
	p := Presentation{
		Phase:         s.Phase,
		RemainingText: FormatRemaining(s.Remaining),
		IsPaused:      s.Phase == PhasePaused,
	}
	if s.Program == nil {
		return p
	}

	p.StepCount = len(s.Program.Steps)
	if step, ok := s.CurrentStep(); ok {
		p.StepNumber = s.CurrentStepIndex + 1
		p.StepTitle = step.Title
		p.StepType = step.Type
		if step.Rest != nil {
			p.Tip = step.Rest.Tip
		}
		p.CanSkipRest = s.Phase == PhaseRunning && step.IsRest()
		p.CanExtend = p.CanSkipRest
	}
	if s.Phase == PhaseFinished {
		p.Progress = 1
	} else {
		p.Progress = s.Progress()
	}
	p.IsLastStep = s.IsLastStep()
	if next, ok := s.NextUp(); ok {
		p.NextUpTitle = next.Title
	}
	return p
}
