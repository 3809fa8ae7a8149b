package tui

import (
	"context"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xvierd/trainer-cli/internal/config"
	"github.com/xvierd/trainer-cli/internal/domain"
	"github.com/xvierd/trainer-cli/internal/ports"
)

// Sender is the part of *tea.Program the observer needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Observer forwards session output to a running program as messages.
type Observer struct {
	program Sender
	closed  atomic.Bool
}

// NewObserver creates an observer that sends to program.
func NewObserver(program Sender) *Observer {
	return &Observer{program: program}
}

// OnSnapshot implements ports.SessionObserver.
func (o *Observer) OnSnapshot(state domain.SessionState) {
	o.send(snapshotMsg{state: state})
}

// OnFinished implements ports.SessionObserver.
func (o *Observer) OnFinished(completion *domain.Completion) {
	o.send(finishedMsg{completion: completion})
}

// OnExited implements ports.SessionObserver.
func (o *Observer) OnExited() {
	o.send(exitedMsg{})
}

// Close drops every later message.
func (o *Observer) Close() {
	o.closed.Store(true)
}

func (o *Observer) send(msg tea.Msg) {
	if o.closed.Load() {
		return
	}
	o.program.Send(msg)
}

var _ ports.SessionObserver = (*Observer)(nil)

// Session is what Run needs from the session service.
type Session interface {
	ports.SessionController
	Start(ctx context.Context, program *domain.Program) error
	Subscribe(observer ports.SessionObserver)
}

// Result is the outcome of a session screen.
type Result struct {
	Completion *domain.Completion
	Exited     bool
}

// Run starts program on session and shows the session screen until the
// user closes the summary or exits.
func Run(ctx context.Context, session Session, program *domain.Program, theme *config.ThemeConfig) (*Result, error) {
	m := NewModel(ctx, session, theme)
	m.start = func(ctx context.Context) error {
		return session.Start(ctx, program)
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))
	observer := NewObserver(p)
	session.Subscribe(observer)
	defer observer.Close()

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run session screen: %w", err)
	}

	fm, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	if fm.startErr != nil {
		return nil, fm.startErr
	}
	return &Result{Completion: fm.completion, Exited: fm.exited}, nil
}
