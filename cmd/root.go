package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ytget/ytdl-helper/internal/config"
	"github.com/ytget/ytdl-helper/internal/logger"
	"github.com/ytget/ytdl-helper/internal/request"
	"github.com/ytget/ytdl-helper/internal/rights"
)

// Process exit codes. Scripts key on these, so they are part of the contract.
const (
	// exitCodeDownloadFailure covers engine failures, full or partial.
	exitCodeDownloadFailure = 1
	// exitCodeConfiguration covers settings resolution and validation failures.
	exitCodeConfiguration = 2
	// exitCodeConstruction covers request construction failures (bad URLs).
	exitCodeConstruction = 3
	// exitCodeRightsDenied means the rights gate did not allow the download.
	exitCodeRightsDenied = 4
	// exitCodeCanceled is the conventional code for SIGINT termination.
	exitCodeCanceled = 130
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals // It is required for log level adjustment before the application starts.
	verboseFromFlag bool

	//nolint:gochecknoglobals // It is required for log level adjustment before the application starts.
	quietFromFlag bool

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "ytdl-helper",
		Short: "A convenience wrapper around yt-dlp for downloading media you have rights to.",
		Long: `ytdl-helper wraps the yt-dlp download engine with resolved settings,
an explicit rights confirmation gate, and a truthful download summary.

Settings are resolved from built-in defaults, the optional YAML config file,
YTDL_-prefixed environment variables, and command-line flags, in that
precedence order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command and terminates the process with the
// exit code mapped from the failure category.
func Execute() {
	if exitCode := execute(); exitCode != 0 {
		os.Exit(exitCode)
	}
}

func execute() int {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer stop()

	defer func() {
		_ = logger.Logger().Sync()
	}()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	logger.Errorf(ctx, "%v", err)

	return exitCodeForError(err)
}

// exitCodeForError maps a failure onto the process exit code contract.
// Cancellation wins over everything: an interrupted download is reported
// as interrupted, not as failed.
func exitCodeForError(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return exitCodeCanceled
	case errors.Is(err, rights.ErrRightsDenied):
		return exitCodeRightsDenied
	case errors.Is(err, request.ErrConstruction):
		return exitCodeConstruction
	case errors.Is(err, config.ErrConfiguration):
		return exitCodeConfiguration
	default:
		return exitCodeDownloadFailure
	}
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	persistentFlags := rootCmd.PersistentFlags()

	persistentFlags.StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigPath()))

	persistentFlags.BoolVarP(
		&verboseFromFlag,
		"verbose",
		"v",
		false,
		"enable debug logging.")

	persistentFlags.BoolVarP(
		&quietFromFlag,
		"quiet",
		"q",
		false,
		"only log errors; verbose wins when both are set.")
}

// initConfig resolves the effective settings for the invoked command.
// Flags the user actually set are applied on top by the command itself.
func initConfig(_ *cobra.Command, _ []string) error {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		return err
	}

	if err = config.ValidateConfig(appConfig); err != nil {
		return err
	}

	applyVerbosity(appConfig)

	return nil
}

// applyVerbosity folds the verbose/quiet flags into the effective log level.
func applyVerbosity(cfg *config.Config) {
	config.ApplyVerbosity(cfg, verboseFromFlag, quietFromFlag)
	logger.SetLevel(cfg.ParsedLogLevel)
}
