// Package timing samples the wall clock at a fixed cadence and turns it into
// TICK events for the session reducer.
//
// Remaining time is recomputed from absolute timestamps on every sample
// instead of decrementing a counter, so a missed or late sample (device
// sleep, a busy loop) corrects itself on the next one.
package timing

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/xvierd/trainer-cli/internal/domain"
	"github.com/xvierd/trainer-cli/internal/ports"
)

// DefaultInterval is the target sample period.
const DefaultInterval = 100 * time.Millisecond

// Dispatcher is the serialized entry point into the reducer.
type Dispatcher interface {
	Snapshot() domain.SessionState
	Dispatch(ctx context.Context, ev domain.Event) (domain.SessionState, error)
}

// Option configures a Driver.
type Option func(*Driver)

// WithInterval sets the sample period.
func WithInterval(interval time.Duration) Option {
	return func(d *Driver) {
		if interval > 0 {
			d.interval = interval
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Driver feeds clock samples into a Dispatcher. At most one sampler
// goroutine exists at a time and its timer is re-armed only after the
// previous sample has been fully dispatched.
type Driver struct {
	dispatcher Dispatcher
	clock      ports.Clock
	interval   time.Duration
	logger     *slog.Logger

	mu           sync.Mutex
	base         context.Context
	cancel       context.CancelFunc
	done         chan struct{}
	lastSample   time.Time
	inBackground bool
	autoPaused   bool
}

// New creates a driver. It does not start sampling.
func New(dispatcher Dispatcher, clock ports.Clock, opts ...Option) *Driver {
	d := &Driver{
		dispatcher: dispatcher,
		clock:      clock,
		interval:   DefaultInterval,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Interval returns the sample period.
func (d *Driver) Interval() time.Duration {
	return d.interval
}

// Start begins sampling. It is a no-op if the sampler is already running.
func (d *Driver) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.base = ctx
	if d.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	d.cancel = cancel
	d.done = done
	go d.loop(loopCtx, done)
}

// Pause halts sampling. Safe to call when not running.
func (d *Driver) Pause() {
	d.stop()
}

// Reset halts sampling and forgets all timestamps. Call it on every exit path.
func (d *Driver) Reset() {
	d.stop()
	d.mu.Lock()
	d.lastSample = time.Time{}
	d.inBackground = false
	d.autoPaused = false
	d.mu.Unlock()
}

// Running reports whether the sampler goroutine is active.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}

// InBackground reports whether the app is currently backgrounded.
func (d *Driver) InBackground() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inBackground
}

// EnterBackground treats backgrounding as an implicit pause: sampling stops
// and a running session is paused so background time is never counted.
func (d *Driver) EnterBackground(ctx context.Context) error {
	d.stop()

	d.mu.Lock()
	d.inBackground = true
	d.mu.Unlock()

	if d.dispatcher.Snapshot().Phase != domain.PhaseRunning {
		return nil
	}
	next, err := d.dispatcher.Dispatch(ctx, domain.BackgroundPause(d.clock.Now()))
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.autoPaused = next.Phase == domain.PhasePaused
	d.mu.Unlock()
	d.logger.Debug("paused on background", "step", next.CurrentStepIndex)
	return nil
}

// EnterForeground restarts sampling if the session is running. It never
// resumes a paused session; RESUME restarts the sampler instead. The
// return value tells the caller whether the session was paused by
// EnterBackground so it can decide.
func (d *Driver) EnterForeground() (autoPaused bool) {
	d.mu.Lock()
	wasBackground := d.inBackground
	autoPaused = d.autoPaused
	base := d.base
	d.inBackground = false
	d.autoPaused = false
	d.mu.Unlock()

	if !wasBackground {
		return false
	}
	if base == nil {
		base = context.Background()
	}
	if d.dispatcher.Snapshot().Phase == domain.PhaseRunning {
		d.Start(base)
	}
	return autoPaused
}

// Sample takes one clock reading and dispatches the matching tick. It
// returns false when sampling should stop: the session is paused, idle or
// over, or the dispatch failed.
func (d *Driver) Sample(ctx context.Context) bool {
	now := d.clock.Now()
	d.noteSample(now)

	state := d.dispatcher.Snapshot()
	if state.Phase != domain.PhaseRunning {
		return false
	}

	next, err := d.dispatcher.Dispatch(ctx, domain.TickFor(state, now))
	if err != nil {
		if ctx.Err() == nil {
			d.logger.Warn("tick dispatch failed", "error", err)
		}
		return false
	}
	return next.IsActive()
}

func (d *Driver) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer d.release(done)

	timer := time.NewTimer(d.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if !d.Sample(ctx) {
			return
		}
		timer.Reset(d.interval)
	}
}

// stop cancels the sampler and waits for it to exit.
func (d *Driver) stop() {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.cancel, d.done = nil, nil
	d.lastSample = time.Time{}
	d.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// release clears the handle when the loop halts on its own.
func (d *Driver) release(done chan struct{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done == done {
		d.cancel()
		d.cancel, d.done = nil, nil
	}
}

func (d *Driver) noteSample(now time.Time) {
	d.mu.Lock()
	last := d.lastSample
	d.lastSample = now
	d.mu.Unlock()

	if !last.IsZero() {
		if gap := now.Sub(last); gap > 2*d.interval {
			d.logger.Debug("sampler gap", "gap", gap, "interval", d.interval)
		}
	}
}
