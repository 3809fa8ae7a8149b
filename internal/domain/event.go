package domain

import "time"

// EventType identifies a reducer input.
type EventType string

const (
	EventStart         EventType = "START"
	EventTick          EventType = "TICK"
	EventPause         EventType = "PAUSE"
	EventResume        EventType = "RESUME"
	EventNextStep      EventType = "NEXT_STEP"
	EventSkipRest      EventType = "SKIP_REST"
	EventAddTenSeconds EventType = "ADD_TEN_SECONDS"
	EventExit          EventType = "EXIT"
	EventReset         EventType = "RESET"
)

// EventSource records who produced an event. It never changes how the
// reducer treats the event.
type EventSource string

const (
	SourceUser       EventSource = "user"
	SourceDriver     EventSource = "driver"
	SourceBackground EventSource = "background"
)

// TickGuard pins a tick to the step it was computed for.
type TickGuard struct {
	StepIndex    int
	StepDuration time.Duration
}

// Event is a single input to Reduce. At is the wall-clock instant the event
// happened; the reducer never reads the clock itself.
type Event struct {
	Type      EventType
	At        time.Time
	Source    EventSource
	Program   *Program
	Remaining time.Duration
	Guard     *TickGuard
}

// Start begins a session with the given program.
func Start(p *Program, at time.Time) Event {
	return Event{Type: EventStart, At: at, Source: SourceUser, Program: p}
}

// Tick reports the time left in the current step.
func Tick(remaining time.Duration, at time.Time) Event {
	return Event{Type: EventTick, At: at, Source: SourceDriver, Remaining: remaining}
}

// TickFor samples s at now and returns a tick guarded against the step
// changing before the tick is applied.
func TickFor(s SessionState, now time.Time) Event {
	ev := Tick(s.RemainingAt(now), now)
	ev.Guard = &TickGuard{StepIndex: s.CurrentStepIndex, StepDuration: s.StepDuration()}
	return ev
}

// Pause stops the clock for the current step.
func Pause(at time.Time) Event {
	return Event{Type: EventPause, At: at, Source: SourceUser}
}

// BackgroundPause is the pause forced by the app leaving the foreground.
func BackgroundPause(at time.Time) Event {
	return Event{Type: EventPause, At: at, Source: SourceBackground}
}

// Resume restarts the clock after a pause.
func Resume(at time.Time) Event {
	return Event{Type: EventResume, At: at, Source: SourceUser}
}

// NextStep leaves the current step early.
func NextStep(at time.Time) Event {
	return Event{Type: EventNextStep, At: at, Source: SourceUser}
}

// SkipRest leaves the current step early if it is a rest.
func SkipRest(at time.Time) Event {
	return Event{Type: EventSkipRest, At: at, Source: SourceUser}
}

// AddTenSeconds extends the current rest step.
func AddTenSeconds(at time.Time) Event {
	return Event{Type: EventAddTenSeconds, At: at, Source: SourceUser}
}

// Exit aborts the session.
func Exit(at time.Time) Event {
	return Event{Type: EventExit, At: at, Source: SourceUser}
}

// Reset discards a finished or exited session.
func Reset(at time.Time) Event {
	return Event{Type: EventReset, At: at, Source: SourceUser}
}
