package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xvierd/trainer-cli/internal/adapters/library"
	"github.com/xvierd/trainer-cli/internal/domain"
)

var (
	listCursor string
	listLimit  int
	listSearch string
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List workout programs",
	Long: `List the programs in the library one page at a time. Pass the printed
cursor back with --cursor to load the next page, or --search to match
titles and tags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		var programs []*domain.Program
		var next string
		if listSearch != "" {
			found, err := app.library.Search(ctx, listSearch)
			if err != nil {
				return err
			}
			programs = found
		} else {
			page, err := app.library.List(ctx, listCursor, listLimit)
			if err != nil {
				return err
			}
			programs, next = page.Programs, page.NextCursor
		}

		if jsonOutput {
			list := make([]programJSON, 0, len(programs))
			for _, p := range programs {
				list = append(list, toProgramJSON(p, false))
			}
			return printJSON(out, map[string]any{
				"programs":    list,
				"count":       len(list),
				"next_cursor": next,
			})
		}

		if len(programs) == 0 {
			fmt.Fprintln(out, "No programs found.")
			return nil
		}

		fmt.Fprintf(out, "🏋️ Programs (%d):\n\n", len(programs))
		for _, p := range programs {
			fmt.Fprintf(out, "%s %s (ID: %s)\n", difficultyStars(p.Difficulty), p.Title, p.ID)
			fmt.Fprintf(out, "   %s · %d steps\n", domain.FormatDuration(seconds(p.PlannedDurationSec())), len(p.Steps))
			if len(p.Tags) > 0 {
				fmt.Fprintf(out, "   Tags: %v\n", p.Tags)
			}
		}

		if next != "" {
			fmt.Fprintf(out, "\nMore programs: trainer list --cursor %s\n", next)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listCursor, "cursor", "", "Cursor returned by a previous page")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", library.DefaultPageSize, "Programs per page")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Fuzzy search over titles and tags")
}
