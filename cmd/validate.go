package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xvierd/trainer-cli/internal/adapters/library"
	"github.com/xvierd/trainer-cli/internal/domain"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a program file before adding it to the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		p, err := library.LoadFile(args[0])
		if err != nil {
			return err
		}
		warnings, verr := domain.ValidateProgram(p)

		if jsonOutput {
			msgs := make([]string, 0, len(warnings))
			for _, w := range warnings {
				msgs = append(msgs, w.Error())
			}
			result := map[string]any{
				"id":       p.ID,
				"valid":    verr == nil,
				"warnings": msgs,
			}
			if verr != nil {
				result["error"] = verr.Error()
			}
			if err := printJSON(out, result); err != nil {
				return err
			}
			if verr != nil {
				return fmt.Errorf("invalid program: %w", verr)
			}
			return nil
		}

		if verr != nil {
			return fmt.Errorf("invalid program: %w", verr)
		}
		for _, w := range warnings {
			fmt.Fprintf(out, "⚠️  %s\n", w.Error())
		}
		fmt.Fprintf(out, "✅ %s (ID: %s) is valid: %d steps, %s\n",
			p.Title, p.ID, len(p.Steps), domain.FormatDuration(seconds(p.PlannedDurationSec())))
		return nil
	},
}
