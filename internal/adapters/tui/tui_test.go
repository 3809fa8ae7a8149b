package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xvierd/trainer-cli/internal/domain"
	"github.com/xvierd/trainer-cli/internal/ports"
)

var t0 = time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)

func key(s string) tea.Msg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func testProgram() *domain.Program {
	return &domain.Program{
		ID:         "ex-rest",
		Title:      "Exercise then rest",
		Difficulty: 2,
		Steps: []domain.Step{
			domain.NewExercise("pushup", "Push-ups", 30, domain.ExerciseDetails{TargetReps: 12}),
			domain.NewRest("rest-1", "Rest", 20, "Breathe slowly"),
		},
	}
}

func runningState(t *testing.T) domain.SessionState {
	t.Helper()
	s, err := domain.Reduce(domain.NewSessionState(), domain.Start(testProgram(), t0))
	if err != nil {
		t.Fatalf("Reduce(Start) error = %v", err)
	}
	return s
}

func restState(t *testing.T) domain.SessionState {
	t.Helper()
	s, err := domain.Reduce(runningState(t), domain.NextStep(t0.Add(5*time.Second)))
	if err != nil {
		t.Fatalf("Reduce(NextStep) error = %v", err)
	}
	return s
}

// fakeController records which controls were called.
type fakeController struct {
	mu    sync.Mutex
	state domain.SessionState
	calls []string
	err   error
}

func (f *fakeController) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeController) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeController) Snapshot() domain.SessionState { return f.state }
func (f *fakeController) TogglePause(context.Context) error {
	return f.record("toggle")
}
func (f *fakeController) NextStep(context.Context) error      { return f.record("next") }
func (f *fakeController) SkipRest(context.Context) error      { return f.record("skip") }
func (f *fakeController) AddTenSeconds(context.Context) error { return f.record("extend") }
func (f *fakeController) Exit(context.Context) error          { return f.record("exit") }
func (f *fakeController) EnterBackground(context.Context) error {
	return f.record("background")
}
func (f *fakeController) EnterForeground(context.Context) error {
	return f.record("foreground")
}

var _ ports.SessionController = (*fakeController)(nil)

func newTestModel(state domain.SessionState) (Model, *fakeController) {
	fc := &fakeController{state: state}
	m := NewModel(context.Background(), fc, nil)
	m.width = 80
	m.height = 24
	return m, fc
}

// press sends a key and runs the returned command, if any.
func press(t *testing.T, m Model, k string) (Model, tea.Msg) {
	t.Helper()
	result, cmd := m.Update(key(k))
	var msg tea.Msg
	if cmd != nil {
		msg = cmd()
	}
	return result.(Model), msg
}

func TestModel_KeysDispatchControls(t *testing.T) {
	tests := []struct {
		name  string
		state func(t *testing.T) domain.SessionState
		key   string
		want  []string
	}{
		{"space toggles pause", runningState, " ", []string{"toggle"}},
		{"p toggles pause", runningState, "p", []string{"toggle"}},
		{"n advances", runningState, "n", []string{"next"}},
		{"q exits", runningState, "q", []string{"exit"}},
		{"esc exits", runningState, "esc", []string{"exit"}},
		{"s skips rest", restState, "s", []string{"skip"}},
		{"+ extends rest", restState, "+", []string{"extend"}},
		{"= extends rest", restState, "=", []string{"extend"}},
		{"s ignored during exercise", runningState, "s", nil},
		{"+ ignored during exercise", runningState, "+", nil},
		{"unknown key ignored", runningState, "x", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, fc := newTestModel(tt.state(t))
			press(t, m, tt.key)
			got := fc.Calls()
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("calls = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestModel_ControlErrorShown(t *testing.T) {
	m, fc := newTestModel(runningState(t))
	fc.err = errors.New("queue closed")

	m, msg := press(t, m, "n")
	if _, ok := msg.(controlErrMsg); !ok {
		t.Fatalf("msg = %T, want controlErrMsg", msg)
	}
	result, _ := m.Update(msg)
	m = result.(Model)

	if !strings.Contains(m.View(), "queue closed") {
		t.Error("View() should show the control error")
	}
}

func TestModel_CtrlCExitsAndQuits(t *testing.T) {
	m, _ := newTestModel(runningState(t))
	_, cmd := m.Update(key("ctrl+c"))
	if cmd == nil {
		t.Fatal("ctrl+c should return a command")
	}
}

func TestModel_IdleQuitsWithoutExit(t *testing.T) {
	m, fc := newTestModel(domain.NewSessionState())
	_, msg := press(t, m, "q")

	if _, ok := msg.(tea.QuitMsg); !ok {
		t.Errorf("msg = %T, want tea.QuitMsg", msg)
	}
	if len(fc.Calls()) != 0 {
		t.Errorf("calls = %v, want none", fc.Calls())
	}
}

func TestModel_FocusChanges(t *testing.T) {
	m, fc := newTestModel(runningState(t))

	result, cmd := m.Update(tea.BlurMsg{})
	m = result.(Model)
	if cmd == nil {
		t.Fatal("blur should return a command")
	}
	cmd()
	if !m.background {
		t.Error("blur should mark the model as backgrounded")
	}

	// A second blur is not forwarded.
	result, cmd = m.Update(tea.BlurMsg{})
	m = result.(Model)
	if cmd != nil {
		t.Error("repeated blur should not return a command")
	}

	result, cmd = m.Update(tea.FocusMsg{})
	m = result.(Model)
	if cmd == nil {
		t.Fatal("focus should return a command")
	}
	cmd()

	got := strings.Join(fc.Calls(), ",")
	if got != "background,foreground" {
		t.Errorf("calls = %s, want background,foreground", got)
	}
	if m.background {
		t.Error("focus should clear the backgrounded flag")
	}
}

func TestModel_FocusWithoutBlurIsIgnored(t *testing.T) {
	m, fc := newTestModel(runningState(t))
	_, cmd := m.Update(tea.FocusMsg{})
	if cmd != nil {
		t.Error("focus without a prior blur should not return a command")
	}
	if len(fc.Calls()) != 0 {
		t.Errorf("calls = %v, want none", fc.Calls())
	}
}

func TestModel_SnapshotUpdatesView(t *testing.T) {
	m, _ := newTestModel(runningState(t))

	view := m.View()
	for _, want := range []string{"Exercise then rest", "Step 1 of 2", "Push-ups", "Target: 12 reps", "Next: Rest"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if strings.Contains(view, "[s]kip rest") {
		t.Error("exercise step should not offer skip rest")
	}

	result, _ := m.Update(snapshotMsg{state: restState(t)})
	m = result.(Model)
	view = m.View()
	for _, want := range []string{"Step 2 of 2", "Breathe slowly", "[s]kip rest", "[+]10s", "Last step!"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestModel_PausedView(t *testing.T) {
	paused, err := domain.Reduce(runningState(t), domain.Pause(t0.Add(time.Second)))
	if err != nil {
		t.Fatalf("Reduce(Pause) error = %v", err)
	}
	m, _ := newTestModel(paused)

	view := m.View()
	if !strings.Contains(view, "Paused") {
		t.Error("View() should show the paused marker")
	}
	if !strings.Contains(view, "[space] resume") {
		t.Error("help line should offer resume while paused")
	}
	if m.barStyle != "paused" {
		t.Errorf("barStyle = %q, want paused", m.barStyle)
	}
}

func finishedCompletion(t *testing.T) *domain.Completion {
	t.Helper()
	s, err := domain.Reduce(restState(t), domain.NextStep(t0.Add(10*time.Second)))
	if err != nil {
		t.Fatalf("Reduce(NextStep) error = %v", err)
	}
	c, err := domain.NewCompletion(s)
	if err != nil {
		t.Fatalf("NewCompletion() error = %v", err)
	}
	return c
}

func TestModel_FinishedShowsSummary(t *testing.T) {
	m, fc := newTestModel(runningState(t))
	result, _ := m.Update(finishedMsg{completion: finishedCompletion(t)})
	m = result.(Model)

	if m.Completion() == nil {
		t.Fatal("Completion() should be set after finishedMsg")
	}
	view := m.View()
	for _, want := range []string{"Exercise then rest complete!", "Push-ups", "(skipped)", "[q] close"} {
		if !strings.Contains(view, want) {
			t.Errorf("summary missing %q", want)
		}
	}

	// Keys on the summary only close it.
	m, msg := press(t, m, "n")
	if msg != nil {
		t.Errorf("n on summary returned %T, want nil", msg)
	}
	_, msg = press(t, m, "q")
	if _, ok := msg.(tea.QuitMsg); !ok {
		t.Errorf("q on summary returned %T, want tea.QuitMsg", msg)
	}
	if len(fc.Calls()) != 0 {
		t.Errorf("calls = %v, want none", fc.Calls())
	}
}

func TestModel_ExitedQuits(t *testing.T) {
	m, _ := newTestModel(runningState(t))
	result, cmd := m.Update(exitedMsg{})
	m = result.(Model)

	if !m.Exited() {
		t.Error("Exited() should be true after exitedMsg")
	}
	if cmd == nil {
		t.Fatal("exitedMsg should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("exitedMsg should return tea.Quit")
	}
}

func TestModel_InitStartsSession(t *testing.T) {
	m, _ := newTestModel(domain.NewSessionState())
	if m.Init() != nil {
		t.Error("Init() without a start func should return nil")
	}

	m.start = func(context.Context) error { return errors.New("invalid program") }
	msg := m.Init()()
	result, cmd := m.Update(msg)
	m = result.(Model)

	if m.StartErr() == nil || m.StartErr().Error() != "invalid program" {
		t.Errorf("StartErr() = %v, want invalid program", m.StartErr())
	}
	if cmd == nil {
		t.Error("a failed start should quit")
	}
}

type fakeSender struct {
	msgs []tea.Msg
}

func (f *fakeSender) Send(msg tea.Msg) {
	f.msgs = append(f.msgs, msg)
}

func TestObserver_ForwardsUntilClosed(t *testing.T) {
	sender := &fakeSender{}
	o := NewObserver(sender)

	o.OnSnapshot(domain.NewSessionState())
	o.OnFinished(&domain.Completion{})
	o.OnExited()
	o.Close()
	o.OnSnapshot(domain.NewSessionState())

	if len(sender.msgs) != 3 {
		t.Fatalf("sent %d messages, want 3", len(sender.msgs))
	}
	if _, ok := sender.msgs[0].(snapshotMsg); !ok {
		t.Errorf("msgs[0] = %T, want snapshotMsg", sender.msgs[0])
	}
	if _, ok := sender.msgs[1].(finishedMsg); !ok {
		t.Errorf("msgs[1] = %T, want finishedMsg", sender.msgs[1])
	}
	if _, ok := sender.msgs[2].(exitedMsg); !ok {
		t.Errorf("msgs[2] = %T, want exitedMsg", sender.msgs[2])
	}
}

func TestRenderBigTime(t *testing.T) {
	out := renderBigTime("01:30", "#10B981", 80)
	if lines := strings.Split(out, "\n"); len(lines) < 3 {
		t.Errorf("renderBigTime() produced %d lines, want at least 3", len(lines))
	}
}
