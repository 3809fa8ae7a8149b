package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xvierd/trainer-cli/internal/adapters/library"
	"github.com/xvierd/trainer-cli/internal/adapters/tui"
	"github.com/xvierd/trainer-cli/internal/domain"
)

var startFile string

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start [program]",
	Short: "Start a workout",
	Long: `Start a workout session. The program can be given by ID or by a
search term; without one, pick it from the library. --file runs a program
file that is not in the library.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var program *domain.Program
		var err error
		switch {
		case startFile != "":
			program, err = library.LoadFile(startFile)
		case len(args) > 0:
			program, err = app.library.Resolve(ctx, args[0])
		default:
			program, err = tui.RunPicker(ctx, app.library, &app.config.Theme)
		}
		if err != nil {
			return err
		}
		if program == nil {
			return nil
		}

		return runSession(cmd, program)
	},
}

func init() {
	startCmd.Flags().StringVarP(&startFile, "file", "f", "", "Run a program from a YAML file")
}

// runSession runs program on the session screen and prints the outcome.
func runSession(cmd *cobra.Command, program *domain.Program) error {
	ctx, cancel := setupSignalHandler(cmd.Context())
	defer cancel()

	svc := newSessionService()
	app.notifier.SetProgram(program)

	done := make(chan error, 1)
	go func() {
		done <- svc.Run(ctx)
	}()

	result, err := tui.Run(ctx, svc, program, &app.config.Theme)
	cancel()
	if runErr := <-done; runErr != nil && !errors.Is(runErr, ctx.Err()) {
		app.logger.Debug("session loop stopped", "error", runErr)
	}
	if err != nil {
		return fmt.Errorf("can't start this workout: %w", err)
	}

	out := cmd.OutOrStdout()
	switch {
	case result.Completion != nil:
		record := domain.NewWorkoutRecord(result.Completion)
		if jsonOutput {
			return printJSON(out, toWorkoutJSON(record, true))
		}
		printWorkout(out, record)
	case result.Exited:
		if jsonOutput {
			return printJSON(out, map[string]any{"program_id": program.ID, "exited": true})
		}
		fmt.Fprintln(out, "Workout ended early. Nothing was saved.")
	}
	return nil
}
