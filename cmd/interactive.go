package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ytget/ytdl-helper/internal/app"
)

//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Download URLs one by one in an interactive session.",
	Long: `Start an interactive session. Each entered URL is downloaded with the
current settings, 'info <url>' inspects a URL without downloading, and
'quit' exits. A session summary is printed on exit.`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: initConfig,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return app.ExecuteInteractiveCommand(cmd.Context(), appConfig)
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	rootCmd.AddCommand(interactiveCmd)
}
