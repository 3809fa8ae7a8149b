package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xvierd/trainer-cli/internal/config"
	"github.com/xvierd/trainer-cli/internal/domain"
	"github.com/xvierd/trainer-cli/internal/ports"
)

// snapshotMsg carries a new session state from the dispatch loop.
type snapshotMsg struct {
	state domain.SessionState
}

// finishedMsg carries the completion payload once every step is done.
type finishedMsg struct {
	completion *domain.Completion
}

// exitedMsg signals the user aborted the session.
type exitedMsg struct{}

// controlErrMsg reports a failed control call.
type controlErrMsg struct {
	err error
}

// startErrMsg reports that the session could not begin.
type startErrMsg struct {
	err error
}

// Model is the live session screen followed by the summary screen.
type Model struct {
	ctx        context.Context
	controller ports.SessionController
	state      domain.SessionState
	completion *domain.Completion
	exited     bool
	background bool
	progress   progress.Model
	width      int
	height     int
	theme      config.ThemeConfig
	barStyle   string
	lastErr    error
	start      func(context.Context) error
	startErr   error
}

// NewModel creates a session screen driven by controller.
func NewModel(ctx context.Context, controller ports.SessionController, theme *config.ThemeConfig) Model {
	m := Model{
		ctx:        ctx,
		controller: controller,
		state:      controller.Snapshot(),
		width:      getTerminalWidth(),
		theme:      resolveTheme(theme),
	}
	m.progress.Width = m.width - 16
	p := domain.Present(m.state)
	m.barStyle = barStyleOf(p)
	m.progress = m.barFor(p)
	return m
}

// Init kicks off the session if the model was built with one to start.
// Redraws after that are driven by snapshots.
func (m Model) Init() tea.Cmd {
	if m.start == nil {
		return nil
	}
	start, ctx := m.start, m.ctx
	return func() tea.Msg {
		if err := start(ctx); err != nil {
			return startErrMsg{err: err}
		}
		return nil
	}
}

// StartErr returns the error that prevented the session from starting.
func (m Model) StartErr() error {
	return m.startErr
}

// Completion returns the summary payload, or nil if the session did not finish.
func (m Model) Completion() *domain.Completion {
	return m.completion
}

// Exited reports whether the user aborted the session.
func (m Model) Exited() bool {
	return m.exited
}

// control wraps a controller call in a tea.Cmd so Update never waits on the
// dispatch queue.
func (m Model) control(fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			return controlErrMsg{err: err}
		}
		return nil
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 16

	case tea.BlurMsg:
		if m.completion == nil && !m.background {
			m.background = true
			return m, m.control(m.controller.EnterBackground)
		}

	case tea.FocusMsg:
		if m.background {
			m.background = false
			return m, m.control(m.controller.EnterForeground)
		}

	case snapshotMsg:
		m.state = msg.state
		m.lastErr = nil
		if p := domain.Present(m.state); barStyleOf(p) != m.barStyle {
			m.barStyle = barStyleOf(p)
			m.progress = m.barFor(p)
		}

	case finishedMsg:
		m.completion = msg.completion
		m.state.Phase = domain.PhaseFinished

	case exitedMsg:
		m.exited = true
		return m, tea.Quit

	case controlErrMsg:
		m.lastErr = msg.err

	case startErrMsg:
		m.startErr = msg.err
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.completion != nil {
		switch msg.String() {
		case "q", "esc", "enter", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	if !m.state.IsActive() {
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Sequence(m.control(m.controller.Exit), tea.Quit)
	case "q", "esc":
		return m, m.control(m.controller.Exit)
	case " ", "p":
		return m, m.control(m.controller.TogglePause)
	case "n":
		return m, m.control(m.controller.NextStep)
	case "s":
		if domain.Present(m.state).CanSkipRest {
			return m, m.control(m.controller.SkipRest)
		}
	case "+", "=":
		if domain.Present(m.state).CanExtend {
			return m, m.control(m.controller.AddTenSeconds)
		}
	}
	return m, nil
}

func barStyleOf(p domain.Presentation) string {
	if p.IsPaused {
		return "paused"
	}
	return string(p.StepType)
}

// barFor recolors the progress bar for the current step type.
func (m Model) barFor(p domain.Presentation) progress.Model {
	start, end := m.theme.ExerciseGradientStart, m.theme.ExerciseGradientEnd
	switch {
	case p.IsPaused:
		start, end = m.theme.ColorPaused, m.theme.ColorPaused
	case p.StepType == domain.StepTypeRest:
		start, end = m.theme.RestGradientStart, m.theme.RestGradientEnd
	}
	bar := progress.New(progress.WithGradient(start, end))
	bar.Width = m.progress.Width
	bar.ShowPercentage = false
	return bar
}
