// Package tui provides the terminal user interface implementation
// using the Bubbletea framework.
package tui

import (
	"os"
	"reflect"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	"github.com/xvierd/trainer-cli/internal/config"
	"github.com/xvierd/trainer-cli/internal/domain"
)

// resolveTheme fills any empty string fields in the given ThemeConfig with defaults.
// If theme is nil, returns the full default theme.
func resolveTheme(theme *config.ThemeConfig) config.ThemeConfig {
	defaults := config.DefaultThemeConfig()
	if theme == nil {
		return defaults
	}
	resolved := *theme
	rv := reflect.ValueOf(&resolved).Elem()
	dv := reflect.ValueOf(defaults)
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.String() == "" {
			f.SetString(dv.Field(i).String())
		}
	}
	return resolved
}

// stepColor returns the accent color for a step, dimmed while paused.
func stepColor(theme config.ThemeConfig, p domain.Presentation) lipgloss.Color {
	switch {
	case p.IsPaused:
		return lipgloss.Color(theme.ColorPaused)
	case p.StepType == domain.StepTypeRest:
		return lipgloss.Color(theme.ColorRest)
	default:
		return lipgloss.Color(theme.ColorExercise)
	}
}

// getTerminalWidth returns the current terminal width, defaulting to 80.
func getTerminalWidth() int {
	w, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w < 40 {
		return 80
	}
	return w
}
