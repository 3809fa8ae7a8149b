package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/xvierd/trainer-cli/internal/domain"
)

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string
	if m.completion != nil {
		sections = m.viewSummary()
	} else {
		sections = m.viewSession()
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	if m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) viewSession() []string {
	p := domain.Present(m.state)
	accent := stepColor(m.theme, p)

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTitle)).MarginBottom(1)
	stepStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))

	var sections []string
	if m.state.Program != nil {
		sections = append(sections, titleStyle.Render(m.state.Program.Title))
	}

	if p.StepCount == 0 {
		sections = append(sections, helpStyle.Render("No active session"))
		return sections
	}

	label := fmt.Sprintf("Step %d of %d · %s", p.StepNumber, p.StepCount, domain.GetStepTypeLabel(p.StepType))
	sections = append(sections, helpStyle.Render(label))
	sections = append(sections, stepStyle.Render(p.StepTitle))
	sections = append(sections, "")
	sections = append(sections, renderBigTime(p.RemainingText, accent, m.width))
	sections = append(sections, "")
	sections = append(sections, m.progress.ViewAs(p.Progress))

	if target := m.targetReps(); target > 0 {
		sections = append(sections, helpStyle.Render(fmt.Sprintf("Target: %d reps", target)))
	}
	if p.Tip != "" {
		sections = append(sections, lipgloss.NewStyle().Italic(true).Faint(true).Render(p.Tip))
	}

	sections = append(sections, "")
	switch {
	case p.IsPaused:
		sections = append(sections, stepStyle.Render("⏸ Paused"))
	case p.NextUpTitle != "":
		sections = append(sections, helpStyle.Render("Next: "+p.NextUpTitle))
	case p.IsLastStep:
		sections = append(sections, helpStyle.Render("Last step!"))
	}

	if m.lastErr != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
		sections = append(sections, errStyle.Render("Error: "+m.lastErr.Error()))
	}

	sections = append(sections, "")
	sections = append(sections, helpStyle.Render(m.helpLine(p)))
	return sections
}

func (m Model) targetReps() int {
	step, ok := m.state.CurrentStep()
	if !ok || step.Exercise == nil {
		return 0
	}
	return step.Exercise.TargetReps
}

func (m Model) helpLine(p domain.Presentation) string {
	keys := []string{"[space] resume"}
	if !p.IsPaused {
		keys[0] = "[space] pause"
	}
	keys = append(keys, "[n]ext")
	if p.CanSkipRest {
		keys = append(keys, "[s]kip rest")
	}
	if p.CanExtend {
		keys = append(keys, "[+]10s")
	}
	keys = append(keys, "[q]uit")
	return strings.Join(keys, "  ")
}

func (m Model) viewSummary() []string {
	c := m.completion
	sum := c.Summary

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorExercise)).MarginBottom(1)
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorRest))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))

	var sections []string
	title := "Workout complete!"
	if c.Program != nil && c.Program.Title != "" {
		title = c.Program.Title + " complete!"
	}
	sections = append(sections, titleStyle.Render(title))

	sections = append(sections, statusStyle.Render(fmt.Sprintf("%s total · %s active · %s rest",
		domain.FormatDuration(c.TotalElapsed),
		domain.FormatDuration(secs(sum.TotalActiveSec)),
		domain.FormatDuration(secs(sum.TotalRestSec)))))
	sections = append(sections, helpStyle.Render(fmt.Sprintf("%d steps · %.0f%% completed · %d skipped · %d extended",
		sum.StepsLogged, sum.CompletionRate, sum.SkippedCount, sum.ExtendedCount)))
	sections = append(sections, m.progress.ViewAs(sum.CompletionRate/100))

	sections = append(sections, "")
	sections = append(sections, m.viewResults()...)

	sections = append(sections, "")
	sections = append(sections, helpStyle.Render("[q] close"))
	return sections
}

func (m Model) viewResults() []string {
	c := m.completion
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))

	lines := make([]string, 0, len(c.Results))
	for _, r := range c.Results {
		title := r.StepID
		if c.Program != nil && r.StepIndex < len(c.Program.Steps) {
			title = c.Program.Steps[r.StepIndex].Title
		}

		note := ""
		if r.WasSkipped {
			note = " (skipped)"
		}
		if r.WasExtended {
			note += fmt.Sprintf(" (+%ds)", r.ExtensionSec)
		}
		lines = append(lines, helpStyle.Render(fmt.Sprintf("%-24s %6s / %-6s%s",
			title,
			domain.FormatDuration(secs(r.ActualElapsedSec)),
			domain.FormatDuration(secs(r.PlannedDurationSec)),
			note)))
	}
	return lines
}

func secs(n int) time.Duration {
	return time.Duration(n) * time.Second
}
