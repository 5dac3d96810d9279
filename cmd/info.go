package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ytget/ytdl-helper/internal/app"
)

//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
var infoCmd = &cobra.Command{
	Use:   "info {url}",
	Short: "Show information about a URL without downloading anything.",
	Long: `Probe a URL and print its title, uploader, duration, playlist size,
and the formats the source offers. Nothing is downloaded and the rights
gate is not consulted.`,
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: initConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		showFormats, _ := cmd.Flags().GetBool("formats")

		return app.ExecuteInfoCommand(cmd.Context(), appConfig, args[0], showFormats)
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	infoCmd.Flags().BoolP(
		"formats",
		"f",
		false,
		"also list the formats the source offers.")

	rootCmd.AddCommand(infoCmd)
}
