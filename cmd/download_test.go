package cmd

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/ytdl-helper/internal/config"
	"github.com/ytget/ytdl-helper/internal/constants"
)

const testBaseConfigContent = `
download:
  format: "mp4"
  output_dir: "/config/output"
  output_template: "%(title)s.%(ext)s"
  extract_audio: false
  audio_format: "mp3"
  audio_quality: "192K"
metadata:
  write_info_json: false
  write_thumbnail: false
  write_description: false
user:
  confirm_rights: true
  skip_rights_check: false
  allow_playlist_download: false
  max_playlist_items: 5
log_level: "info"
`

// TestBindDownloadFlags tests that command-line flags correctly override configuration file values.
//
//nolint:funlen,nolintlint,tparallel // It's a comprehensive integration test. Cannot run in parallel due to Viper global state.
func TestBindDownloadFlags(t *testing.T) {
	tests := []struct {
		name           string
		flags          map[string]any
		expectedConfig func(*testing.T, *config.Config)
	}{
		{
			name:  "no flags - use config values",
			flags: map[string]any{},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "mp4", cfg.Download.Format)
				assert.Equal(t, "/config/output", cfg.Download.OutputDir)
				assert.False(t, cfg.Download.ExtractAudio)
				assert.False(t, cfg.User.AllowPlaylistDownload)
				assert.Equal(t, int64(5), cfg.User.MaxPlaylistItems)
			},
		},
		{
			name: "output-dir flag only - override output directory",
			flags: map[string]any{
				"output-dir": "/flag/output",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "/flag/output", cfg.Download.OutputDir)
				assert.Equal(t, "mp4", cfg.Download.Format)
			},
		},
		{
			name: "format flag only - override format",
			flags: map[string]any{
				"format": "worst",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "worst", cfg.Download.Format)
				assert.Equal(t, "/config/output", cfg.Download.OutputDir)
			},
		},
		{
			name: "audio flags - enable extraction and set container",
			flags: map[string]any{
				"audio-only":   true,
				"audio-format": "flac",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.True(t, cfg.Download.ExtractAudio)
				assert.Equal(t, "flac", cfg.Download.AudioFormat)
			},
		},
		{
			name: "playlist flags - enable expansion with cap",
			flags: map[string]any{
				"playlist":  true,
				"max-items": 3,
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.True(t, cfg.User.AllowPlaylistDownload)
				assert.Equal(t, int64(3), cfg.User.MaxPlaylistItems)
			},
		},
		{
			name: "metadata flag - enables the whole bundle",
			flags: map[string]any{
				"metadata": true,
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.True(t, cfg.Metadata.WriteInfoJSON)
				assert.True(t, cfg.Metadata.WriteThumbnail)
				assert.True(t, cfg.Metadata.WriteDescription)
			},
		},
		{
			name: "skip-rights-check flag - bypass the gate",
			flags: map[string]any{
				"skip-rights-check": true,
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.True(t, cfg.User.SkipRightsCheck)
				assert.True(t, cfg.User.ConfirmRights, "confirm_rights stays untouched")
			},
		},
		{
			name: "max-filesize flag - parsed into bytes",
			flags: map[string]any{
				"max-filesize": "500MB",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "500MB", cfg.Download.MaxFilesize)
				assert.Equal(t, uint64(500*1000*1000), cfg.ParsedMaxFilesize)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create temporary directory and config file.
			tempDir := t.TempDir()
			configPath := filepath.Join(tempDir, "test-config.yaml")

			err := os.WriteFile(
				configPath,
				[]byte(testBaseConfigContent),
				constants.DefaultFilePermissions,
			) //nolint:gosec // It's a test file.
			require.NoError(t, err)

			// Load configuration.
			cfg, err := config.LoadConfig(configPath)
			require.NoError(t, err)

			// Create a test command with the same flags as the download command.
			testCmd := &cobra.Command{
				Use: "test",
			}

			testCmd.Flags().StringP("output-dir", "o", "", "output directory")
			testCmd.Flags().StringP("format", "f", "", "format selector")
			testCmd.Flags().BoolP("audio-only", "a", false, "extract audio")
			testCmd.Flags().String("audio-format", "", "audio container")
			testCmd.Flags().BoolP("playlist", "p", false, "allow playlists")
			testCmd.Flags().Int64P("max-items", "n", 0, "playlist item cap")
			testCmd.Flags().BoolP("metadata", "m", false, "save metadata")
			testCmd.Flags().String("max-filesize", "", "file size cap")
			testCmd.Flags().Bool("skip-rights-check", false, "bypass the rights prompt")

			// Set flag values.
			for flagName, flagValue := range tt.flags {
				var setErr error

				switch v := flagValue.(type) {
				case int:
					setErr = testCmd.Flags().Set(flagName, strconv.Itoa(v))
				case string:
					setErr = testCmd.Flags().Set(flagName, v)
				case bool:
					setErr = testCmd.Flags().Set(flagName, strconv.FormatBool(v))
				}

				require.NoError(t, setErr, "failed to set flag %s", flagName)
			}

			// Bind flags to config.
			err = bindDownloadFlags(testCmd.Flags(), cfg)
			require.NoError(t, err)

			// Verify expectations.
			tt.expectedConfig(t, cfg)
		})
	}
}

// TestBindDownloadFlags_InvalidValues tests that flag values failing validation surface as errors.
//
//nolint:nolintlint,tparallel // Cannot run in parallel due to Viper global state.
func TestBindDownloadFlags_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		flags map[string]string
	}{
		{
			name:  "empty format",
			flags: map[string]string{"format": "   "},
		},
		{
			name:  "empty audio format",
			flags: map[string]string{"audio-format": " "},
		},
		{
			name:  "unparseable max filesize",
			flags: map[string]string{"max-filesize": "lots"},
		},
		{
			name:  "non-positive max items",
			flags: map[string]string{"max-items": "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			configPath := filepath.Join(tempDir, "test-config.yaml")

			err := os.WriteFile(
				configPath,
				[]byte(testBaseConfigContent),
				constants.DefaultFilePermissions,
			) //nolint:gosec // It's a test file.
			require.NoError(t, err)

			cfg, err := config.LoadConfig(configPath)
			require.NoError(t, err)

			testCmd := &cobra.Command{
				Use: "test",
			}

			testCmd.Flags().StringP("format", "f", "", "format selector")
			testCmd.Flags().String("audio-format", "", "audio container")
			testCmd.Flags().String("max-filesize", "", "file size cap")
			testCmd.Flags().Int64P("max-items", "n", 0, "playlist item cap")

			for flagName, flagValue := range tt.flags {
				require.NoError(t, testCmd.Flags().Set(flagName, flagValue))
			}

			err = bindDownloadFlags(testCmd.Flags(), cfg)
			require.Error(t, err)
			require.ErrorIs(t, err, config.ErrConfiguration)
		})
	}
}
