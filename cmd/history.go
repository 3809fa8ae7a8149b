package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xvierd/trainer-cli/internal/domain"
)

var (
	historyLimit   int
	historyProgram string
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [workout-id]",
	Short: "Show finished workouts",
	Long: `List finished workouts, newest first. Pass a workout ID to see its
step log.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			record, err := app.history.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(out, toWorkoutJSON(record, true))
			}
			printWorkout(out, record)
			return nil
		}

		var records []*domain.WorkoutRecord
		var err error
		if historyProgram != "" {
			records, err = app.history.ForProgram(ctx, historyProgram)
			if err == nil && historyLimit > 0 && len(records) > historyLimit {
				records = records[:historyLimit]
			}
		} else {
			records, err = app.history.Recent(ctx, historyLimit)
		}
		if err != nil {
			return err
		}

		if jsonOutput {
			list := make([]workoutJSON, 0, len(records))
			for _, r := range records {
				list = append(list, toWorkoutJSON(r, false))
			}
			return printJSON(out, map[string]any{
				"workouts": list,
				"count":    len(list),
			})
		}

		if len(records) == 0 {
			fmt.Fprintln(out, "No workouts yet. Run \"trainer start\" to begin.")
			return nil
		}

		fmt.Fprintf(out, "📆 Workouts (%d):\n\n", len(records))
		for _, r := range records {
			fmt.Fprintf(out, "%s  %-24s %7s  %3.0f%%  (ID: %s)\n",
				r.FinishedAt.Local().Format("Jan 02 15:04"),
				r.ProgramTitle,
				domain.FormatDuration(r.TotalElapsed),
				r.Summary.CompletionRate,
				shortID(r.ID))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 10, "Maximum number of workouts to show (0 for all)")
	historyCmd.Flags().StringVarP(&historyProgram, "program", "p", "", "Only show workouts of this program ID")
}
