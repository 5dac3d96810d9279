package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ytget/ytdl-helper/internal/constants"
	"github.com/ytget/ytdl-helper/internal/logger"
)

// DownloadConfig holds the download-related settings.
type DownloadConfig struct {
	// Format is the format selector handed to the download engine (e.g. "best", "mp4").
	Format string `mapstructure:"format" yaml:"format"`
	// OutputDir is the directory where downloaded files are saved.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	// OutputTemplate is the engine-side filename template.
	OutputTemplate string `mapstructure:"output_template" yaml:"output_template"`
	// ExtractAudio indicates whether only the audio stream should be kept.
	ExtractAudio bool `mapstructure:"extract_audio" yaml:"extract_audio"`
	// AudioFormat is the audio container used when extracting audio (e.g. "mp3", "flac", "wav").
	AudioFormat string `mapstructure:"audio_format" yaml:"audio_format"`
	// AudioQuality is the audio quality passed to the extraction postprocessor (e.g. "192K").
	AudioQuality string `mapstructure:"audio_quality" yaml:"audio_quality"`
	// MaxFilesize caps the size of a single downloaded file (e.g. "500MB"). Empty disables the cap.
	MaxFilesize string `mapstructure:"max_filesize" yaml:"max_filesize"`
}

// MetadataConfig holds the metadata-saving toggles.
type MetadataConfig struct {
	// WriteInfoJSON indicates whether to save media metadata to a JSON sidecar file.
	WriteInfoJSON bool `mapstructure:"write_info_json" yaml:"write_info_json"`
	// WriteThumbnail indicates whether to save the thumbnail image.
	WriteThumbnail bool `mapstructure:"write_thumbnail" yaml:"write_thumbnail"`
	// WriteDescription indicates whether to save the media description to a text file.
	WriteDescription bool `mapstructure:"write_description" yaml:"write_description"`
}

// UserConfig holds rights-confirmation and playlist policy settings.
type UserConfig struct {
	// ConfirmRights requires an interactive rights confirmation before downloading.
	ConfirmRights bool `mapstructure:"confirm_rights" yaml:"confirm_rights"`
	// SkipRightsCheck bypasses the rights confirmation entirely. Discouraged but supported.
	SkipRightsCheck bool `mapstructure:"skip_rights_check" yaml:"skip_rights_check"`
	// AllowPlaylistDownload enables playlist expansion. Off by default:
	// a playlist URL without it is truncated to a single item.
	AllowPlaylistDownload bool `mapstructure:"allow_playlist_download" yaml:"allow_playlist_download"`
	// MaxPlaylistItems is the hard cap on downloaded playlist items.
	MaxPlaylistItems int64 `mapstructure:"max_playlist_items" yaml:"max_playlist_items"`
}

// Config holds all configuration settings.
type Config struct {
	// Download groups the download-related settings.
	Download DownloadConfig `mapstructure:"download" yaml:"download"`
	// Metadata groups the metadata-saving toggles.
	Metadata MetadataConfig `mapstructure:"metadata" yaml:"metadata"`
	// User groups rights-confirmation and playlist policy settings.
	User UserConfig `mapstructure:"user" yaml:"user"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level `mapstructure:"-" yaml:"-"`
	// ParsedMaxFilesize is the parsed file size cap in bytes (0 = no cap).
	ParsedMaxFilesize uint64 `mapstructure:"-" yaml:"-"`
}

const (
	// DefaultConfigDirName is the per-user directory (under the OS config dir) holding the config file.
	DefaultConfigDirName = "ytdl-helper"

	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = "config.yaml"

	// EnvPrefix is the prefix of environment variables mapped onto settings
	// (e.g. YTDL_DOWNLOAD_OUTPUT_DIR -> download.output_dir).
	EnvPrefix = "YTDL"

	// DefaultMaxLogLength is the default maximum size (in bytes) for logged HTTP dumps.
	DefaultMaxLogLength = 1 * 1024 * 1024 // 1 MB
)

// Static error definitions for better error handling.
var (
	// ErrConfiguration is the base error all configuration failures wrap.
	// It lets callers map any settings problem to a single exit code.
	ErrConfiguration = errors.New("configuration error")
	// ErrEmptyFormat indicates that the format selector is empty.
	ErrEmptyFormat = fmt.Errorf("%w: format cannot be empty", ErrConfiguration)
	// ErrEmptyOutputTemplate indicates that the output template is empty.
	ErrEmptyOutputTemplate = fmt.Errorf("%w: output template cannot be empty", ErrConfiguration)
	// ErrEmptyAudioFormat indicates that the audio format is empty.
	ErrEmptyAudioFormat = fmt.Errorf("%w: audio format cannot be empty", ErrConfiguration)
	// ErrInvalidMaxPlaylistItems indicates that the playlist item cap is not positive.
	ErrInvalidMaxPlaylistItems = fmt.Errorf("%w: max playlist items must be a positive integer", ErrConfiguration)
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = fmt.Errorf("%w: unknown log level", ErrConfiguration)
)

// Default returns the built-in defaults. Every setting has one;
// lower-precedence sources never leave a field undefined.
func Default() *Config {
	return &Config{
		Download: DownloadConfig{
			Format:         "best",
			OutputDir:      ".",
			OutputTemplate: "%(title)s.%(ext)s",
			ExtractAudio:   false,
			AudioFormat:    "mp3",
			AudioQuality:   "192K",
			MaxFilesize:    "",
		},
		Metadata: MetadataConfig{
			WriteInfoJSON:    false,
			WriteThumbnail:   false,
			WriteDescription: false,
		},
		User: UserConfig{
			ConfirmRights:         true,
			SkipRightsCheck:       false,
			AllowPlaylistDownload: false,
			MaxPlaylistItems:      10,
		},
		LogLevel:       "info",
		ParsedLogLevel: zapcore.InfoLevel,
	}
}

// DefaultConfigPath returns the conventional per-user config file path,
// falling back to the current directory when the OS config dir is unknown.
func DefaultConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFilename
	}

	return filepath.Join(configDir, DefaultConfigDirName, DefaultConfigFilename)
}

// LoadConfig resolves the effective configuration by folding the sources in
// precedence order: built-in defaults, the optional YAML config file, then
// environment variables with the YTDL_ prefix. CLI flags are applied on top
// by the cmd package for flags the user actually set.
// A missing config file is not an error; a malformed one, or an environment
// value that cannot be coerced to the declared type, is.
func LoadConfig(configFilename string) (*Config, error) {
	viper.Reset()
	registerDefaults(Default())

	if configFilename == "" {
		configFilename = DefaultConfigPath()
	}

	viper.SetConfigFile(configFilename)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Unknown keys in the file are ignored by design; a missing file means
		// defaults plus environment. Anything else is a real failure.
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundErr) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: failed to read config file: %w", ErrConfiguration, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal config: %w", ErrConfiguration, err)
	}

	return &cfg, nil
}

// registerDefaults seeds viper with the built-in defaults so that every
// known key exists regardless of what the file or environment provide.
func registerDefaults(defaults *Config) {
	viper.SetDefault("download.format", defaults.Download.Format)
	viper.SetDefault("download.output_dir", defaults.Download.OutputDir)
	viper.SetDefault("download.output_template", defaults.Download.OutputTemplate)
	viper.SetDefault("download.extract_audio", defaults.Download.ExtractAudio)
	viper.SetDefault("download.audio_format", defaults.Download.AudioFormat)
	viper.SetDefault("download.audio_quality", defaults.Download.AudioQuality)
	viper.SetDefault("download.max_filesize", defaults.Download.MaxFilesize)
	viper.SetDefault("metadata.write_info_json", defaults.Metadata.WriteInfoJSON)
	viper.SetDefault("metadata.write_thumbnail", defaults.Metadata.WriteThumbnail)
	viper.SetDefault("metadata.write_description", defaults.Metadata.WriteDescription)
	viper.SetDefault("user.confirm_rights", defaults.User.ConfirmRights)
	viper.SetDefault("user.skip_rights_check", defaults.User.SkipRightsCheck)
	viper.SetDefault("user.allow_playlist_download", defaults.User.AllowPlaylistDownload)
	viper.SetDefault("user.max_playlist_items", defaults.User.MaxPlaylistItems)
	viper.SetDefault("log_level", defaults.LogLevel)
}

// ValidateConfig checks the configuration for validity and sets derived fields.
func ValidateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Download.Format) == "" {
		return ErrEmptyFormat
	}

	if strings.TrimSpace(cfg.Download.OutputTemplate) == "" {
		return ErrEmptyOutputTemplate
	}

	if strings.TrimSpace(cfg.Download.AudioFormat) == "" {
		return ErrEmptyAudioFormat
	}

	if cfg.User.MaxPlaylistItems <= 0 {
		return ErrInvalidMaxPlaylistItems
	}

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !isLogLevelCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	maxFilesize := strings.TrimSpace(cfg.Download.MaxFilesize)
	if maxFilesize != "" && maxFilesize != "0" {
		parsedMaxFilesize, err := humanize.ParseBytes(maxFilesize)
		if err != nil {
			return fmt.Errorf("%w: failed to parse max filesize: %w", ErrConfiguration, err)
		}

		cfg.ParsedMaxFilesize = parsedMaxFilesize
	}

	return nil
}

// ResetConfig rewrites the config file at path with the built-in defaults,
// in full and with group order preserved. An empty path targets the
// conventional per-user location. It returns the path written.
func ResetConfig(path string) (string, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	content, err := Render(Default())
	if err != nil {
		return "", err
	}

	if err = os.MkdirAll(filepath.Dir(path), constants.DefaultFolderPermissions); err != nil {
		return "", fmt.Errorf("%w: failed to create config directory: %w", ErrConfiguration, err)
	}

	if err = os.WriteFile(path, content, constants.DefaultFilePermissions); err != nil {
		return "", fmt.Errorf("%w: failed to write config file: %w", ErrConfiguration, err)
	}

	return path, nil
}

// Render serializes the configuration as YAML. Struct field order is
// preserved, so the output keeps the conventional group layout.
func Render(cfg *Config) ([]byte, error) {
	var node yaml.Node
	if err := node.Encode(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to encode config: %w", ErrConfiguration, err)
	}

	content, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal config: %w", ErrConfiguration, err)
	}

	return content, nil
}

// ApplyVerbosity maps the verbose/quiet flags onto the parsed log level.
// Verbose wins over quiet when both are set.
func ApplyVerbosity(cfg *Config, verbose, quiet bool) {
	switch {
	case verbose:
		cfg.ParsedLogLevel = zapcore.DebugLevel
	case quiet:
		cfg.ParsedLogLevel = zapcore.ErrorLevel
	}
}

// EnsureOutputDir creates the output directory if it does not exist yet.
func EnsureOutputDir(cfg *Config) error {
	if err := os.MkdirAll(cfg.Download.OutputDir, constants.DefaultFolderPermissions); err != nil {
		return fmt.Errorf("%w: failed to create output directory: %w", ErrConfiguration, err)
	}

	return nil
}
