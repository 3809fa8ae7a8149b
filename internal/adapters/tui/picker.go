package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xvierd/trainer-cli/internal/config"
	"github.com/xvierd/trainer-cli/internal/domain"
	"github.com/xvierd/trainer-cli/internal/ports"
)

const pickerPageSize = 10

// ProgramSource is what the picker browses.
type ProgramSource interface {
	List(ctx context.Context, cursor string, limit int) (*ports.ProgramPage, error)
	Search(ctx context.Context, query string) ([]*domain.Program, error)
}

type pageMsg struct {
	page  *ports.ProgramPage
	reset bool
}

type searchMsg struct {
	programs []*domain.Program
}

type pickerErrMsg struct {
	err error
}

type pickerModel struct {
	ctx       context.Context
	source    ProgramSource
	programs  []*domain.Program
	next      string
	cursor    int
	loading   bool
	searching bool
	query     string
	input     textinput.Model
	chosen    *domain.Program
	aborted   bool
	err       error
	theme     config.ThemeConfig
}

func newPickerModel(ctx context.Context, source ProgramSource, theme *config.ThemeConfig) pickerModel {
	ti := textinput.New()
	ti.Placeholder = "title or tag"
	ti.CharLimit = 60
	ti.Width = 30

	return pickerModel{
		ctx:     ctx,
		source:  source,
		input:   ti,
		loading: true,
		theme:   resolveTheme(theme),
	}
}

func (m pickerModel) Init() tea.Cmd {
	return m.load("", true)
}

func (m pickerModel) load(cursor string, reset bool) tea.Cmd {
	ctx, source := m.ctx, m.source
	return func() tea.Msg {
		page, err := source.List(ctx, cursor, pickerPageSize)
		if err != nil {
			return pickerErrMsg{err: err}
		}
		return pageMsg{page: page, reset: reset}
	}
}

func (m pickerModel) search(query string) tea.Cmd {
	ctx, source := m.ctx, m.source
	return func() tea.Msg {
		programs, err := source.Search(ctx, query)
		if err != nil {
			return pickerErrMsg{err: err}
		}
		return searchMsg{programs: programs}
	}
}

// itemCount includes the "load more" row when another page exists.
func (m pickerModel) itemCount() int {
	if m.next != "" {
		return len(m.programs) + 1
	}
	return len(m.programs)
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pageMsg:
		m.loading = false
		m.err = nil
		if msg.reset {
			m.programs = nil
			m.cursor = 0
		}
		m.programs = append(m.programs, msg.page.Programs...)
		m.next = msg.page.NextCursor
		return m, nil

	case searchMsg:
		m.loading = false
		m.err = nil
		m.programs = msg.programs
		m.next = ""
		m.cursor = 0
		return m, nil

	case pickerErrMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m pickerModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.itemCount()-1 {
			m.cursor++
		}
	case "/":
		m.searching = true
		m.input.SetValue(m.query)
		return m, m.input.Focus()
	case "enter":
		if m.loading {
			return m, nil
		}
		if m.cursor == len(m.programs) && m.next != "" {
			m.loading = true
			return m, m.load(m.next, false)
		}
		if m.cursor < len(m.programs) {
			m.chosen = m.programs[m.cursor]
			return m, tea.Quit
		}
	case "esc":
		if m.query != "" {
			m.query = ""
			m.loading = true
			return m, m.load("", true)
		}
		m.aborted = true
		return m, tea.Quit
	case "ctrl+c", "q":
		m.aborted = true
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.input.Blur()
		m.query = strings.TrimSpace(m.input.Value())
		m.loading = true
		if m.query == "" {
			return m, m.load("", true)
		}
		return m, m.search(m.query)
	case "esc":
		m.searching = false
		m.input.Blur()
		return m, nil
	case "ctrl+c":
		m.aborted = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTitle))
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorExercise)).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))

	b.WriteString("\n")
	title := "Pick a workout:"
	if m.query != "" {
		title = fmt.Sprintf("Workouts matching %q:", m.query)
	}
	b.WriteString(titleStyle.Render("  "+title) + "\n\n")

	if len(m.programs) == 0 && !m.loading {
		b.WriteString(dimStyle.Render("    No workouts found") + "\n")
	}

	for i, p := range m.programs {
		desc := fmt.Sprintf("%s · %d steps", domain.FormatDuration(secs(p.PlannedDurationSec())), len(p.Steps))
		if len(p.Tags) > 0 {
			desc += " · " + strings.Join(p.Tags, ", ")
		}
		if i == m.cursor {
			b.WriteString(activeStyle.Render(fmt.Sprintf("  ▸ %-24s %s", p.Title, desc)) + "\n")
		} else {
			b.WriteString(dimStyle.Render(fmt.Sprintf("    %-24s %s", p.Title, desc)) + "\n")
		}
	}

	if m.next != "" {
		label := "Load more..."
		if m.loading {
			label = "Loading..."
		}
		if m.cursor == len(m.programs) {
			b.WriteString(activeStyle.Render("  ▸ "+label) + "\n")
		} else {
			b.WriteString(dimStyle.Render("    "+label) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Render("  Error: "+m.err.Error()) + "\n")
	}

	b.WriteString("\n")
	if m.searching {
		b.WriteString(titleStyle.Render("  Search:") + " " + m.input.View() + "\n")
		b.WriteString(dimStyle.Render("  enter search · esc cancel") + "\n")
	} else {
		b.WriteString(dimStyle.Render("  ↑/↓ navigate · enter select · / search · esc back") + "\n")
	}

	return b.String()
}

// RunPicker lets the user choose a program from source. It returns nil if
// the user backed out.
func RunPicker(ctx context.Context, source ProgramSource, theme *config.ThemeConfig) (*domain.Program, error) {
	p := tea.NewProgram(newPickerModel(ctx, source, theme), tea.WithContext(ctx))
	result, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run picker: %w", err)
	}

	final := result.(pickerModel)
	if final.aborted {
		return nil, nil
	}
	return final.chosen, nil
}
