package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ytget/ytdl-helper/internal/app"
	"github.com/ytget/ytdl-helper/internal/config"
)

//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
var downloadCmd = &cobra.Command{
	Use:   "download [flags] {urls}",
	Short: "Download media from the given URLs.",
	Long: `Download media from the given URLs with the resolved settings.

Arguments ending in .txt are treated as URL list files: each non-empty
line is downloaded. Playlist URLs are truncated to a single item unless
playlist downloads are enabled (--playlist).

Before anything is downloaded, you are asked to confirm that you have
the rights to the content. The confirmation can be pre-granted in the
config file or bypassed with --skip-rights-check.`,
	Args:              cobra.MinimumNArgs(1),
	PersistentPreRunE: initConfig,
	RunE: func(cmd *cobra.Command, urls []string) error {
		if err := bindDownloadFlags(cmd.Flags(), appConfig); err != nil {
			return err
		}

		return app.ExecuteDownloadCommand(cmd.Context(), appConfig, urls)
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	downloadCmdFlags := downloadCmd.Flags()

	downloadCmdFlags.StringP(
		"output-dir",
		"o",
		"",
		"directory to save downloaded files (the path will be created if it doesn't exist).")

	downloadCmdFlags.StringP(
		"format",
		"f",
		"",
		"format selector passed to the engine, for example: best, mp4, worst.")

	downloadCmdFlags.BoolP(
		"audio-only",
		"a",
		false,
		"extract the audio stream only; overrides --format.")

	downloadCmdFlags.String(
		"audio-format",
		"",
		"audio container used with --audio-only, for example: mp3, flac, wav.")

	downloadCmdFlags.BoolP(
		"playlist",
		"p",
		false,
		"allow playlist expansion; without it playlist URLs are truncated to one item.")

	downloadCmdFlags.Int64P(
		"max-items",
		"n",
		0,
		"hard cap on downloaded playlist items.")

	downloadCmdFlags.BoolP(
		"metadata",
		"m",
		false,
		"save metadata next to the media: info JSON, thumbnail, and description.")

	downloadCmdFlags.String(
		"max-filesize",
		"",
		"skip files larger than this size, for example: 500MB, 1.5GB.")

	downloadCmdFlags.Bool(
		"skip-rights-check",
		false,
		"bypass the rights confirmation prompt.")

	rootCmd.AddCommand(downloadCmd)
}

// bindDownloadFlags applies the flags the user actually set on top of the
// resolved configuration, then re-validates the result. Unset flags never
// override file or environment values.
func bindDownloadFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("output-dir"); flag != nil && flag.Changed {
		cfg.Download.OutputDir, _ = flags.GetString("output-dir")
	}

	if flag := flags.Lookup("format"); flag != nil && flag.Changed {
		cfg.Download.Format, _ = flags.GetString("format")
	}

	if flag := flags.Lookup("audio-only"); flag != nil && flag.Changed {
		cfg.Download.ExtractAudio, _ = flags.GetBool("audio-only")
	}

	if flag := flags.Lookup("audio-format"); flag != nil && flag.Changed {
		cfg.Download.AudioFormat, _ = flags.GetString("audio-format")
	}

	if flag := flags.Lookup("playlist"); flag != nil && flag.Changed {
		cfg.User.AllowPlaylistDownload, _ = flags.GetBool("playlist")
	}

	if flag := flags.Lookup("max-items"); flag != nil && flag.Changed {
		cfg.User.MaxPlaylistItems, _ = flags.GetInt64("max-items")
	}

	if flag := flags.Lookup("metadata"); flag != nil && flag.Changed {
		saveMetadata, _ := flags.GetBool("metadata")
		cfg.Metadata.WriteInfoJSON = saveMetadata
		cfg.Metadata.WriteThumbnail = saveMetadata
		cfg.Metadata.WriteDescription = saveMetadata
	}

	if flag := flags.Lookup("max-filesize"); flag != nil && flag.Changed {
		cfg.Download.MaxFilesize, _ = flags.GetString("max-filesize")
	}

	if flag := flags.Lookup("skip-rights-check"); flag != nil && flag.Changed {
		cfg.User.SkipRightsCheck, _ = flags.GetBool("skip-rights-check")
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	applyVerbosity(cfg)

	return nil
}
