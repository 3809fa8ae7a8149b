package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/xvierd/trainer-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and edit settings",
	Long: `Print the current settings. Use "trainer config set <key> <value>" to
change one, for example: trainer config set session.resume_on_foreground true`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		settings := app.config.Settings()

		if jsonOutput {
			return printJSON(out, settings)
		}

		path, err := config.GetConfigPath()
		if err == nil {
			fmt.Fprintf(out, "  Config file: %s\n\n", path)
		}
		for _, key := range sortedKeys(settings) {
			fmt.Fprintf(out, "  %-32s %v\n", key, settings[key])
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := app.config.Set(key, value); err != nil {
			return err
		}
		if err := config.Save(app.config); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  Saved: %s = %v\n", key, app.config.Settings()[key])
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
