package ports

import (
	"context"
	"time"

	"github.com/xvierd/trainer-cli/internal/domain"
)

// Clock is the source of wall-clock time.
type Clock interface {
	Now() time.Time
}

// CuePlayer plays sound and haptic signals.
// This is a driven port (implemented by adapters).
type CuePlayer interface {
	Play(cue domain.Cue)
}

// SessionObserver receives session output. Calls arrive in dispatch order
// from the dispatch loop and must not block or dispatch synchronously.
// This is a driven port (implemented by adapters).
type SessionObserver interface {
	// OnSnapshot is called after every state change.
	OnSnapshot(state domain.SessionState)

	// OnFinished hands over the completion payload once every step is done.
	OnFinished(completion *domain.Completion)

	// OnExited signals that the user aborted the session.
	OnExited()
}

// SessionController is what a session screen drives.
// This is a driving port (implemented by the services layer).
type SessionController interface {
	// Snapshot returns the current session state.
	Snapshot() domain.SessionState

	// TogglePause pauses a running session or resumes a paused one.
	TogglePause(ctx context.Context) error

	// NextStep leaves the current step early.
	NextStep(ctx context.Context) error

	// SkipRest leaves the current rest step early.
	SkipRest(ctx context.Context) error

	// AddTenSeconds extends the current rest step.
	AddTenSeconds(ctx context.Context) error

	// Exit aborts the session.
	Exit(ctx context.Context) error

	// EnterBackground is called when the screen loses focus.
	EnterBackground(ctx context.Context) error

	// EnterForeground is called when the screen regains focus.
	EnterForeground(ctx context.Context) error
}
