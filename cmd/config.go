package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ytget/ytdl-helper/internal/app"
)

//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or reset the configuration.",
	Long: `With --show (or no flags), print the effective configuration after
defaults, the config file, and environment variables have been folded in.

With --reset, rewrite the config file with the built-in defaults.`,
	Args: cobra.NoArgs,
	// Reset is the recovery path for a corrupted config file, so it must
	// not depend on loading the current one.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if reset, _ := cmd.Flags().GetBool("reset"); reset {
			return nil
		}

		return initConfig(cmd, args)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		reset, _ := cmd.Flags().GetBool("reset")
		if reset {
			return app.ExecuteConfigResetCommand(cmd.Context(), configFilenameFromFlag)
		}

		return app.ExecuteConfigShowCommand(cmd.Context(), appConfig)
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	configCmd.Flags().BoolP(
		"show",
		"s",
		false,
		"print the effective configuration (default action).")
	configCmd.Flags().BoolP(
		"reset",
		"r",
		false,
		"rewrite the config file with the built-in defaults.")

	rootCmd.AddCommand(configCmd)
}
