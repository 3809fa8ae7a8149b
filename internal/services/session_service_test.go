package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/trainer-cli/internal/adapters/clock"
	"github.com/xvierd/trainer-cli/internal/adapters/storage"
	"github.com/xvierd/trainer-cli/internal/domain"
	"github.com/xvierd/trainer-cli/internal/ports"
)

var t0 = time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

const waitFor = 2 * time.Second

// recorder is a thread-safe observer and cue player.
type recorder struct {
	mu        sync.Mutex
	snapshots int
	cues      []domain.Cue
	finished  chan *domain.Completion
	exited    chan struct{}
}

func newRecorder() *recorder {
	return &recorder{
		finished: make(chan *domain.Completion, 1),
		exited:   make(chan struct{}, 1),
	}
}

func (r *recorder) OnSnapshot(domain.SessionState) {
	r.mu.Lock()
	r.snapshots++
	r.mu.Unlock()
}

func (r *recorder) OnFinished(c *domain.Completion) { r.finished <- c }

func (r *recorder) OnExited() { r.exited <- struct{}{} }

func (r *recorder) Play(cue domain.Cue) {
	r.mu.Lock()
	r.cues = append(r.cues, cue)
	r.mu.Unlock()
}

func (r *recorder) cueKinds() []domain.CueKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]domain.CueKind, len(r.cues))
	for i, c := range r.cues {
		kinds[i] = c.Kind
	}
	return kinds
}

func (r *recorder) snapshotCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshots
}

type harness struct {
	svc   *SessionService
	clock *clock.Manual
	store ports.Storage
	rec   *recorder
	stop  func()
}

func newHarness(t *testing.T, cfg SessionConfig) *harness {
	t.Helper()
	store, err := storage.NewMemory()
	require.NoError(t, err)

	if cfg.TickInterval == 0 {
		cfg.TickInterval = time.Millisecond
	}
	clk := clock.NewManual(t0)
	svc := NewSessionService(store, clk, cfg, nil)
	rec := newRecorder()
	svc.Subscribe(rec)
	svc.SetCuePlayer(rec)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- svc.Run(ctx) }()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			<-errc
		})
	}
	t.Cleanup(func() {
		stop()
		_ = store.Close()
	})
	return &harness{svc: svc, clock: clk, store: store, rec: rec, stop: stop}
}

func (h *harness) waitStep(t *testing.T, index int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return h.svc.Snapshot().CurrentStepIndex == index
	}, waitFor, time.Millisecond)
}

func (h *harness) waitPhase(t *testing.T, phase domain.Phase) {
	t.Helper()
	require.Eventually(t, func() bool {
		return h.svc.Snapshot().Phase == phase
	}, waitFor, time.Millisecond)
}

func (h *harness) waitDriver(t *testing.T, running bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		return h.svc.Driver().Running() == running
	}, waitFor, time.Millisecond)
}

func exerciseThenRest() *domain.Program {
	return &domain.Program{
		ID:             "ex-rest",
		Title:          "Exercise then rest",
		Difficulty:     2,
		TotalActiveSec: 5,
		TotalRestSec:   5,
		StepsCount:     2,
		Steps: []domain.Step{
			domain.NewExercise("pushup", "Push-ups", 5, domain.ExerciseDetails{}),
			domain.NewRest("rest", "Rest", 5, "breathe"),
		},
	}
}

func TestSessionService_RunsToFinishAndPersists(t *testing.T) {
	h := newHarness(t, SessionConfig{})
	ctx := context.Background()
	program := exerciseThenRest()

	require.NoError(t, h.svc.Start(ctx, program))
	h.waitDriver(t, true)

	h.clock.Advance(2500 * time.Millisecond)
	require.Eventually(t, func() bool {
		return h.svc.Snapshot().Remaining <= 3*time.Second
	}, waitFor, time.Millisecond)

	h.clock.Advance(2500 * time.Millisecond)
	h.waitStep(t, 1)

	h.clock.Advance(5 * time.Second)

	var completion *domain.Completion
	select {
	case completion = <-h.rec.finished:
	case <-time.After(waitFor):
		t.Fatal("session did not finish")
	}

	assert.Equal(t, domain.PhaseFinished, h.svc.Snapshot().Phase)
	require.Len(t, completion.Results, 2)
	assert.Equal(t, 10*time.Second, completion.TotalElapsed)
	assert.Equal(t, 100.0, completion.Summary.CompletionRate)
	h.waitDriver(t, false)

	records, err := h.store.Workouts().FindRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, completion.ID, records[0].ID)
	assert.Equal(t, "ex-rest", records[0].ProgramID)
	assert.Equal(t, completion.Results, records[0].Results)

	last, ok, err := h.store.Preferences().Get(ctx, PrefLastProgram)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ex-rest", last)

	want := []domain.CueKind{domain.CueStepComplete, domain.CueStepComplete, domain.CueSessionFinished}
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual(want, withoutCountdown(h.rec.cueKinds()))
	}, waitFor, time.Millisecond)
	assert.Contains(t, h.rec.cueKinds(), domain.CueCountdown)
	assert.Greater(t, h.rec.snapshotCount(), 3)
}

func withoutCountdown(kinds []domain.CueKind) []domain.CueKind {
	var out []domain.CueKind
	for _, k := range kinds {
		if k != domain.CueCountdown {
			out = append(out, k)
		}
	}
	return out
}

func TestSessionService_StartErrors(t *testing.T) {
	h := newHarness(t, SessionConfig{})
	ctx := context.Background()

	t.Run("empty program", func(t *testing.T) {
		err := h.svc.Start(ctx, &domain.Program{ID: "empty", Difficulty: 1})
		assert.ErrorIs(t, err, domain.ErrEmptyProgram)
		assert.Equal(t, domain.PhaseIdle, h.svc.Snapshot().Phase)
	})

	t.Run("invalid step", func(t *testing.T) {
		p := exerciseThenRest()
		p.Steps[1].DurationSec = 0
		err := h.svc.Start(ctx, p)
		assert.ErrorIs(t, err, domain.ErrInvalidStepDuration)
	})

	t.Run("aggregate mismatch still starts", func(t *testing.T) {
		p := exerciseThenRest()
		p.TotalRestSec = 99
		require.NoError(t, h.svc.Start(ctx, p))
		assert.Equal(t, domain.PhaseRunning, h.svc.Snapshot().Phase)
	})

	t.Run("already started", func(t *testing.T) {
		err := h.svc.Start(ctx, exerciseThenRest())
		assert.ErrorIs(t, err, domain.ErrSessionNotIdle)
	})
}

func TestSessionService_TogglePauseExcludesPausedTime(t *testing.T) {
	h := newHarness(t, SessionConfig{})
	ctx := context.Background()

	require.NoError(t, h.svc.Start(ctx, exerciseThenRest()))
	h.clock.Advance(time.Second)

	require.NoError(t, h.svc.TogglePause(ctx))
	assert.Equal(t, domain.PhasePaused, h.svc.Snapshot().Phase)
	h.waitDriver(t, false)

	h.clock.Advance(30 * time.Second)
	require.NoError(t, h.svc.TogglePause(ctx))
	assert.Equal(t, domain.PhaseRunning, h.svc.Snapshot().Phase)
	h.waitDriver(t, true)

	h.clock.Advance(4 * time.Second)
	h.waitStep(t, 1)

	s := h.svc.Snapshot()
	require.Len(t, s.Results, 1)
	assert.Equal(t, 5, s.Results[0].ActualElapsedSec)
	assert.False(t, s.Results[0].WasSkipped)
}

func TestSessionService_RestControls(t *testing.T) {
	h := newHarness(t, SessionConfig{})
	ctx := context.Background()

	require.NoError(t, h.svc.Start(ctx, exerciseThenRest()))

	require.NoError(t, h.svc.SkipRest(ctx))
	assert.Equal(t, 0, h.svc.Snapshot().CurrentStepIndex, "skip rest is a no-op on an exercise")

	h.clock.Advance(2 * time.Second)
	require.NoError(t, h.svc.NextStep(ctx))
	s := h.svc.Snapshot()
	assert.Equal(t, 1, s.CurrentStepIndex)
	assert.True(t, s.Results[0].WasSkipped)
	assert.Equal(t, 2, s.Results[0].ActualElapsedSec)

	require.NoError(t, h.svc.AddTenSeconds(ctx))
	assert.Equal(t, 15*time.Second, h.svc.Snapshot().StepDuration())

	h.clock.Advance(3 * time.Second)
	require.NoError(t, h.svc.SkipRest(ctx))

	select {
	case c := <-h.rec.finished:
		require.Len(t, c.Results, 2)
		assert.True(t, c.Results[1].WasSkipped)
		assert.True(t, c.Results[1].WasExtended)
		assert.Equal(t, 10, c.Results[1].ExtensionSec)
		assert.Equal(t, 3, c.Results[1].ActualElapsedSec)
	case <-time.After(waitFor):
		t.Fatal("session did not finish")
	}
}

func TestSessionService_ExitDoesNotPersist(t *testing.T) {
	h := newHarness(t, SessionConfig{})
	ctx := context.Background()

	require.NoError(t, h.svc.Start(ctx, exerciseThenRest()))
	h.clock.Advance(2 * time.Second)
	require.NoError(t, h.svc.Exit(ctx))

	select {
	case <-h.rec.exited:
	case <-time.After(waitFor):
		t.Fatal("exit not observed")
	}

	s := h.svc.Snapshot()
	assert.Equal(t, domain.PhaseExited, s.Phase)
	assert.Empty(t, s.Results)
	assert.Equal(t, 2*time.Second, s.TotalElapsed)
	h.waitDriver(t, false)

	records, err := h.store.Workouts().FindRecent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, h.svc.Reset(ctx))
	assert.Equal(t, domain.PhaseIdle, h.svc.Snapshot().Phase)
	require.NoError(t, h.svc.Start(ctx, exerciseThenRest()))
}

func TestSessionService_BackgroundStaysPausedByDefault(t *testing.T) {
	h := newHarness(t, SessionConfig{})
	ctx := context.Background()

	require.NoError(t, h.svc.Start(ctx, exerciseThenRest()))
	h.waitDriver(t, true)

	require.NoError(t, h.svc.EnterBackground(ctx))
	assert.Equal(t, domain.PhasePaused, h.svc.Snapshot().Phase)
	assert.False(t, h.svc.Driver().Running())

	h.clock.Advance(time.Minute)
	require.NoError(t, h.svc.EnterForeground(ctx))
	assert.Equal(t, domain.PhasePaused, h.svc.Snapshot().Phase)
	assert.False(t, h.svc.Driver().Running(), "sampler stays parked until resume")

	require.NoError(t, h.svc.TogglePause(ctx))
	h.waitDriver(t, true)
	h.clock.Advance(5 * time.Second)
	h.waitStep(t, 1)
	assert.Equal(t, 5, h.svc.Snapshot().Results[0].ActualElapsedSec)
}

func TestSessionService_ResumeOnForeground(t *testing.T) {
	h := newHarness(t, SessionConfig{ResumeOnForeground: true})
	ctx := context.Background()

	require.NoError(t, h.svc.Start(ctx, exerciseThenRest()))
	require.NoError(t, h.svc.EnterBackground(ctx))
	h.clock.Advance(time.Minute)
	require.NoError(t, h.svc.EnterForeground(ctx))
	assert.Equal(t, domain.PhaseRunning, h.svc.Snapshot().Phase)
	h.waitDriver(t, true)

	t.Run("user pause is not undone", func(t *testing.T) {
		require.NoError(t, h.svc.TogglePause(ctx))
		require.NoError(t, h.svc.EnterBackground(ctx))
		require.NoError(t, h.svc.EnterForeground(ctx))
		assert.Equal(t, domain.PhasePaused, h.svc.Snapshot().Phase)
	})
}

func TestSessionService_DispatchAfterStop(t *testing.T) {
	h := newHarness(t, SessionConfig{})
	h.stop()

	_, err := h.svc.Dispatch(context.Background(), domain.Start(exerciseThenRest(), t0))
	assert.ErrorIs(t, err, ErrServiceStopped)

	err = h.svc.Run(context.Background())
	assert.Error(t, err, "Run may only be called once")
}

func TestSessionService_DispatchHonoursContext(t *testing.T) {
	store, err := storage.NewMemory()
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	// Run is never started, so nothing drains the queue.
	svc := NewSessionService(store, clock.NewManual(t0), SessionConfig{}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = svc.Dispatch(ctx, domain.Start(exerciseThenRest(), t0))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// slowPlayer blocks on every cue the way a real playback device can.
type slowPlayer struct {
	delay  time.Duration
	mu     sync.Mutex
	played int
}

func (p *slowPlayer) Play(domain.Cue) {
	time.Sleep(p.delay)
	p.mu.Lock()
	p.played++
	p.mu.Unlock()
}

func (p *slowPlayer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played
}

func TestSessionService_SlowCuesDoNotDelayEvents(t *testing.T) {
	h := newHarness(t, SessionConfig{})
	player := &slowPlayer{delay: 500 * time.Millisecond}
	h.svc.SetCuePlayer(player)
	ctx := context.Background()

	require.NoError(t, h.svc.Start(ctx, exerciseThenRest()))
	h.waitDriver(t, true)

	h.clock.Advance(5 * time.Second)
	h.waitStep(t, 1)

	begin := time.Now()
	require.NoError(t, h.svc.Exit(ctx))
	assert.Less(t, time.Since(begin), 100*time.Millisecond, "exit waited on cue playback")
	assert.Equal(t, domain.PhaseExited, h.svc.Snapshot().Phase)

	// Queued cues are still played before Run returns.
	h.stop()
	assert.Positive(t, player.count())
}

// stuckPlayer blocks every cue until release is closed.
type stuckPlayer struct {
	release chan struct{}
}

func (p *stuckPlayer) Play(domain.Cue) { <-p.release }

func TestSessionService_CuesDroppedWhenQueueFull(t *testing.T) {
	h := newHarness(t, SessionConfig{})
	player := &stuckPlayer{release: make(chan struct{})}
	h.svc.SetCuePlayer(player)
	defer close(player.release)

	begin := time.Now()
	for i := 0; i < cueBuffer*2; i++ {
		h.svc.queueCue(domain.Cue{Kind: domain.CueCountdown})
	}
	assert.Less(t, time.Since(begin), 100*time.Millisecond)
	assert.LessOrEqual(t, len(h.svc.cueQueue), cueBuffer)
}
