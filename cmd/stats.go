package cmd

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/xvierd/trainer-cli/internal/domain"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a dashboard of workout statistics",
	Long:  `Display this week's and all-time totals: workouts, active and rest time, skipped steps and completion rate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		now := time.Now()

		week, err := app.history.WeekStats(ctx, now)
		if err != nil {
			return err
		}
		lifetime, err := app.history.Stats(ctx, time.Time{})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]any{
				"week":     toStatsJSON(week),
				"lifetime": toStatsJSON(lifetime),
			})
		}

		fmt.Fprintln(out)
		renderStats(out, "Last 7 days", week)
		renderStats(out, "All time", lifetime)
		return nil
	},
}

func toStatsJSON(s *domain.HistoryStats) map[string]any {
	out := map[string]any{
		"workouts":                s.Workouts,
		"total_elapsed_sec":       int(s.TotalElapsed.Round(time.Second) / time.Second),
		"total_active_sec":        s.TotalActiveSec,
		"total_rest_sec":          s.TotalRestSec,
		"skipped_steps":           s.SkippedSteps,
		"extended_steps":          s.ExtendedSteps,
		"average_completion_rate": s.AverageCompletionRate,
	}
	if s.LastWorkoutAt != nil {
		out["last_workout_at"] = s.LastWorkoutAt.Format(time.RFC3339)
	}
	return out
}

func renderStats(w io.Writer, label string, stats *domain.HistoryStats) {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#34D399"))
	restStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))

	fmt.Fprintf(w, "  %s\n", titleStyle.Render(label))
	fmt.Fprintf(w, "  %s\n\n", dimStyle.Render(strings.Repeat("─", 40)))

	fmt.Fprintf(w, "  Total: %s workouts, %s\n\n",
		valueStyle.Render(fmt.Sprintf("%d", stats.Workouts)),
		valueStyle.Render(domain.FormatDuration(stats.TotalElapsed)),
	)

	if stats.Workouts == 0 {
		fmt.Fprintf(w, "  %s\n\n", dimStyle.Render("No finished workouts in this period."))
		return
	}

	// Active against rest time, scaled to the larger of the two.
	maxBarWidth := 30
	larger := max(stats.TotalActiveSec, stats.TotalRestSec)
	active := scaledWidth(stats.TotalActiveSec, larger, maxBarWidth)
	rest := scaledWidth(stats.TotalRestSec, larger, maxBarWidth)
	fmt.Fprintf(w, "  %s %s %s\n", dimStyle.Render(fmt.Sprintf("%-8s", "Active")),
		valueStyle.Render(buildBar(active)), domain.FormatDuration(seconds(stats.TotalActiveSec)))
	fmt.Fprintf(w, "  %s %s %s\n\n", dimStyle.Render(fmt.Sprintf("%-8s", "Rest")),
		restStyle.Render(buildBar(rest)), domain.FormatDuration(seconds(stats.TotalRestSec)))

	fmt.Fprintf(w, "  %s %s\n", dimStyle.Render("Avg completion"),
		valueStyle.Render(fmt.Sprintf("%.0f%%", stats.AverageCompletionRate)))
	fmt.Fprintf(w, "  %s %d skipped · %d extended\n", dimStyle.Render("Steps         "),
		stats.SkippedSteps, stats.ExtendedSteps)
	if stats.LastWorkoutAt != nil {
		fmt.Fprintf(w, "  %s %s\n", dimStyle.Render("Last workout  "), stats.LastWorkoutAt.Local().Format("Mon Jan 2 15:04"))
	}
	fmt.Fprintln(w)
}

func scaledWidth(value, largest, width int) int {
	if largest <= 0 || value <= 0 {
		return 0
	}
	n := int(math.Round(float64(value) / float64(largest) * float64(width)))
	if n < 1 {
		n = 1
	}
	return n
}

// buildBar creates a bar string of the given width using block characters.
func buildBar(width int) string {
	if width <= 0 {
		return ""
	}
	return strings.Repeat("█", width)
}
