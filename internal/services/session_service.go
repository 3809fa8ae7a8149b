// Package services implements the application use cases on top of the
// domain and the ports.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/xvierd/trainer-cli/internal/domain"
	"github.com/xvierd/trainer-cli/internal/ports"
	"github.com/xvierd/trainer-cli/internal/timing"
)

// PrefLastProgram is the preference key holding the last finished program.
const PrefLastProgram = "last_program_id"

// cueBuffer is how many cues may wait for the player before new ones are
// dropped.
const cueBuffer = 8

// ErrServiceStopped is returned by Dispatch once Run has returned.
var ErrServiceStopped = errors.New("session service stopped")

// SessionConfig tunes the session service.
type SessionConfig struct {
	TickInterval time.Duration
	// ResumeOnForeground resumes a session that was paused only because the
	// app went to the background. Off by default: coming back leaves the
	// session paused until the user resumes it.
	ResumeOnForeground bool
}

type dispatchResult struct {
	state domain.SessionState
	err   error
}

type dispatchRequest struct {
	event domain.Event
	reply chan dispatchResult
}

// SessionService owns the single session state. Every event, whether from
// the user, the driver or the lifecycle hooks, goes through one queue and is
// applied by one goroutine in arrival order.
type SessionService struct {
	storage ports.Storage
	clock   ports.Clock
	config  SessionConfig
	logger  *slog.Logger
	driver  *timing.Driver

	requests chan dispatchRequest
	stopped  chan struct{}
	cueQueue chan domain.Cue
	runOnce  sync.Once

	mu        sync.RWMutex
	state     domain.SessionState
	cues      ports.CuePlayer
	observers []ports.SessionObserver
}

// NewSessionService creates a session service. storage may be nil, in which
// case finished sessions are not persisted. Call Run before dispatching.
func NewSessionService(storage ports.Storage, clock ports.Clock, config SessionConfig, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &SessionService{
		storage:  storage,
		clock:    clock,
		config:   config,
		logger:   logger,
		requests: make(chan dispatchRequest),
		stopped:  make(chan struct{}),
		cueQueue: make(chan domain.Cue, cueBuffer),
		state:    domain.NewSessionState(),
	}
	s.driver = timing.New(s, clock,
		timing.WithInterval(config.TickInterval),
		timing.WithLogger(logger.With("component", "driver")),
	)
	return s
}

// SetCuePlayer sets the sound/haptics sink.
func (s *SessionService) SetCuePlayer(player ports.CuePlayer) {
	s.mu.Lock()
	s.cues = player
	s.mu.Unlock()
}

// Subscribe adds an observer. Observers are called from the dispatch loop.
func (s *SessionService) Subscribe(observer ports.SessionObserver) {
	s.mu.Lock()
	s.observers = append(s.observers, observer)
	s.mu.Unlock()
}

// Driver exposes the timing driver.
func (s *SessionService) Driver() *timing.Driver {
	return s.driver
}

// Run consumes the dispatch queue until ctx is done. It may be called once.
// Cues are played on a separate goroutine; Run plays the ones still queued
// before it returns.
func (s *SessionService) Run(ctx context.Context) error {
	started := false
	s.runOnce.Do(func() { started = true })
	if !started {
		return errors.New("session service already running")
	}

	played := make(chan struct{})
	go s.playCues(played)

	defer func() {
		close(s.cueQueue)
		<-played
	}()
	defer close(s.stopped)
	defer s.driver.Reset()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-s.requests:
			s.apply(ctx, req)
		}
	}
}

// Snapshot returns the current state.
func (s *SessionService) Snapshot() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch queues ev and waits for the resulting state.
func (s *SessionService) Dispatch(ctx context.Context, ev domain.Event) (domain.SessionState, error) {
	req := dispatchRequest{event: ev, reply: make(chan dispatchResult, 1)}

	select {
	case s.requests <- req:
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	case <-s.stopped:
		return s.Snapshot(), ErrServiceStopped
	}

	select {
	case res := <-req.reply:
		return res.state, res.err
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
}

// Start validates program and begins a session with it.
func (s *SessionService) Start(ctx context.Context, program *domain.Program) error {
	warnings, err := domain.ValidateProgram(program)
	if err != nil {
		return fmt.Errorf("invalid program: %w", err)
	}
	for _, w := range warnings {
		s.logger.Warn("program aggregate mismatch",
			"program", w.ProgramID, "field", w.Field, "declared", w.Declared, "computed", w.Computed)
	}

	if phase := s.Snapshot().Phase; phase != domain.PhaseIdle {
		return fmt.Errorf("%w: phase is %s", domain.ErrSessionNotIdle, phase)
	}

	next, err := s.Dispatch(ctx, domain.Start(program, s.clock.Now()))
	if err != nil {
		return err
	}
	if next.Program != program {
		return domain.ErrSessionNotIdle
	}
	return nil
}

// Reset discards a finished or exited session so a new one can start.
func (s *SessionService) Reset(ctx context.Context) error {
	_, err := s.Dispatch(ctx, domain.Reset(s.clock.Now()))
	return err
}

// TogglePause implements ports.SessionController.
func (s *SessionService) TogglePause(ctx context.Context) error {
	now := s.clock.Now()
	switch s.Snapshot().Phase {
	case domain.PhaseRunning:
		_, err := s.Dispatch(ctx, domain.Pause(now))
		return err
	case domain.PhasePaused:
		_, err := s.Dispatch(ctx, domain.Resume(now))
		return err
	}
	return nil
}

// NextStep implements ports.SessionController.
func (s *SessionService) NextStep(ctx context.Context) error {
	_, err := s.Dispatch(ctx, domain.NextStep(s.clock.Now()))
	return err
}

// SkipRest implements ports.SessionController.
func (s *SessionService) SkipRest(ctx context.Context) error {
	_, err := s.Dispatch(ctx, domain.SkipRest(s.clock.Now()))
	return err
}

// AddTenSeconds implements ports.SessionController.
func (s *SessionService) AddTenSeconds(ctx context.Context) error {
	_, err := s.Dispatch(ctx, domain.AddTenSeconds(s.clock.Now()))
	return err
}

// Exit implements ports.SessionController.
func (s *SessionService) Exit(ctx context.Context) error {
	_, err := s.Dispatch(ctx, domain.Exit(s.clock.Now()))
	return err
}

// EnterBackground implements ports.SessionController.
func (s *SessionService) EnterBackground(ctx context.Context) error {
	return s.driver.EnterBackground(ctx)
}

// EnterForeground implements ports.SessionController.
func (s *SessionService) EnterForeground(ctx context.Context) error {
	autoPaused := s.driver.EnterForeground()
	if !autoPaused || !s.config.ResumeOnForeground {
		return nil
	}
	_, err := s.Dispatch(ctx, domain.Resume(s.clock.Now()))
	return err
}

// apply runs on the dispatch goroutine only.
func (s *SessionService) apply(ctx context.Context, req dispatchRequest) {
	s.mu.Lock()
	prev := s.state
	next, err := domain.Reduce(prev, req.event)
	s.state = next
	observers := append([]ports.SessionObserver(nil), s.observers...)
	s.mu.Unlock()

	req.reply <- dispatchResult{state: next, err: err}
	if err != nil {
		s.logger.Debug("event rejected", "event", req.event.Type, "error", err)
		return
	}
	if req.event.Type != domain.EventTick {
		s.logger.Debug("event applied",
			"event", req.event.Type, "source", req.event.Source, "phase", next.Phase, "step", next.CurrentStepIndex)
	}

	if prev.Phase != next.Phase {
		s.syncDriver(ctx, next.Phase)
	}

	for _, cue := range domain.CuesBetween(prev, next) {
		s.queueCue(cue)
	}

	for _, o := range observers {
		o.OnSnapshot(next)
	}

	if prev.Phase == next.Phase {
		return
	}
	switch next.Phase {
	case domain.PhaseFinished:
		completion, err := domain.NewCompletion(next)
		if err != nil {
			s.logger.Error("build completion", "error", err)
			return
		}
		s.persist(ctx, completion)
		for _, o := range observers {
			o.OnFinished(completion)
		}
	case domain.PhaseExited:
		s.logger.Info("session exited",
			"program", next.Program.ID, "step", next.CurrentStepIndex, "elapsed", next.TotalElapsed)
		for _, o := range observers {
			o.OnExited()
		}
	}
}

// queueCue hands cue to the player without waiting on the playback device.
func (s *SessionService) queueCue(cue domain.Cue) {
	select {
	case s.cueQueue <- cue:
	default:
		s.logger.Debug("cue dropped", "kind", cue.Kind)
	}
}

func (s *SessionService) playCues(done chan<- struct{}) {
	defer close(done)
	for cue := range s.cueQueue {
		s.mu.RLock()
		player := s.cues
		s.mu.RUnlock()
		if player != nil {
			player.Play(cue)
		}
	}
}

func (s *SessionService) syncDriver(ctx context.Context, phase domain.Phase) {
	switch phase {
	case domain.PhaseRunning:
		if !s.driver.InBackground() {
			s.driver.Start(ctx)
		}
	case domain.PhasePaused:
		s.driver.Pause()
	default:
		s.driver.Reset()
	}
}

func (s *SessionService) persist(ctx context.Context, c *domain.Completion) {
	s.logger.Info("session finished",
		"program", c.Program.ID, "steps", len(c.Results), "elapsed", c.TotalElapsed)
	if s.storage == nil {
		return
	}
	if err := s.storage.Workouts().Save(ctx, domain.NewWorkoutRecord(c)); err != nil {
		s.logger.Error("save workout", "id", c.ID, "error", err)
		return
	}
	if err := s.storage.Preferences().Set(ctx, PrefLastProgram, c.Program.ID); err != nil {
		s.logger.Warn("save last program", "error", err)
	}
}

var _ ports.SessionController = (*SessionService)(nil)
