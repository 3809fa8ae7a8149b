package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xvierd/trainer-cli/internal/domain"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <program>",
	Short: "Show a program and its steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := app.library.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if jsonOutput {
			return printJSON(out, toProgramJSON(p, true))
		}

		fmt.Fprintf(out, "%s %s (ID: %s)\n", difficultyStars(p.Difficulty), p.Title, p.ID)
		if p.Description != "" {
			fmt.Fprintf(out, "   %s\n", p.Description)
		}
		fmt.Fprintf(out, "   %s active · %s rest · %d steps\n\n",
			domain.FormatDuration(seconds(p.TotalActiveSec)),
			domain.FormatDuration(seconds(p.TotalRestSec)),
			len(p.Steps))

		for i, s := range p.Steps {
			fmt.Fprintf(out, "%3d. %-8s %-24s %s\n", i+1, domain.GetStepTypeLabel(s.Type), s.Title, domain.FormatDuration(s.Duration()))
			switch {
			case s.Exercise != nil && s.Exercise.TargetReps > 0:
				fmt.Fprintf(out, "     Target: %d reps\n", s.Exercise.TargetReps)
			case s.Rest != nil && s.Rest.Tip != "":
				fmt.Fprintf(out, "     Tip: %s\n", s.Rest.Tip)
			}
		}
		return nil
	},
}
