// Package request translates the resolved configuration plus invocation
// arguments into a normalized download request for the engine.
package request

//go:generate $MOCKGEN -source=builder.go -destination=mocks/builder_mock.go

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/ytget/ytdl-helper/internal/config"
	"github.com/ytget/ytdl-helper/internal/utils"
)

// AudioFormatSelector is the engine format selector used whenever audio
// extraction is requested, regardless of any explicit format value.
const AudioFormatSelector = "bestaudio/best"

// Static error definitions for better error handling.
var (
	// ErrConstruction is the base error all request construction failures wrap.
	ErrConstruction = errors.New("invalid download request")
	// ErrEmptyURL indicates that no URL was provided.
	ErrEmptyURL = fmt.Errorf("%w: URL cannot be empty", ErrConstruction)
	// ErrMalformedURL indicates that the URL cannot be parsed.
	ErrMalformedURL = fmt.Errorf("%w: URL is malformed", ErrConstruction)
	// ErrUnsupportedScheme indicates that the URL scheme is not http or https.
	ErrUnsupportedScheme = fmt.Errorf("%w: URL scheme must be http or https", ErrConstruction)
)

// DownloadRequest is the normalized, immutable description of one download.
type DownloadRequest struct {
	// ID correlates log lines belonging to this request.
	ID string
	// URL is the target media or playlist URL.
	URL string
	// FormatSelector is the engine format selector.
	FormatSelector string
	// OutputDir is the directory downloaded files are written to.
	OutputDir string
	// OutputTemplate is the engine-side filename template.
	OutputTemplate string
	// AudioOnly indicates that only the audio stream is kept.
	AudioOnly bool
	// AudioFormat is the audio container when AudioOnly is set.
	AudioFormat string
	// AudioQuality is the audio quality when AudioOnly is set.
	AudioQuality string
	// IsPlaylistReference marks URLs that syntactically look like a
	// playlist, channel, or another multi-item reference.
	IsPlaylistReference bool
	// AllowPlaylist enables playlist expansion.
	AllowPlaylist bool
	// MaxItems is the hard cap on downloaded items. It is 1 whenever
	// playlist expansion is off, including for playlist-looking URLs.
	MaxItems int64
	// MaxFilesize caps a single file's size (engine syntax, e.g. "500M"). Empty disables.
	MaxFilesize string
	// WriteInfoJSON saves media metadata to a JSON sidecar file.
	WriteInfoJSON bool
	// WriteThumbnail saves the thumbnail image.
	WriteThumbnail bool
	// WriteDescription saves the media description to a text file.
	WriteDescription bool
}

// IsPlaylist reports whether the request expands more than one item.
func (r *DownloadRequest) IsPlaylist() bool {
	return r.AllowPlaylist && r.MaxItems > 1
}

// Builder constructs download requests from settings and a target URL.
type Builder interface {
	// Build validates the URL and derives a normalized request from the
	// resolved settings. It performs no I/O.
	Build(rawURL string) (*DownloadRequest, error)
}

// BuilderImpl implements Builder on top of the resolved configuration.
type BuilderImpl struct {
	cfg *config.Config
}

// NewBuilder creates a request builder for the given configuration.
func NewBuilder(cfg *config.Config) Builder {
	return &BuilderImpl{cfg: cfg}
}

// Build validates the URL and derives a normalized request.
func (b *BuilderImpl) Build(rawURL string) (*DownloadRequest, error) {
	targetURL := strings.TrimSpace(rawURL)
	if targetURL == "" {
		return nil, ErrEmptyURL
	}

	parsed, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedURL, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: got '%s'", ErrUnsupportedScheme, parsed.Scheme)
	}

	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrMalformedURL)
	}

	req := &DownloadRequest{
		ID:                  uuid.NewString(),
		URL:                 targetURL,
		IsPlaylistReference: utils.IsPlaylistURL(targetURL),
		FormatSelector:      b.cfg.Download.Format,
		OutputDir:           b.cfg.Download.OutputDir,
		OutputTemplate:      b.cfg.Download.OutputTemplate,
		MaxFilesize:         b.cfg.Download.MaxFilesize,
		WriteInfoJSON:       b.cfg.Metadata.WriteInfoJSON,
		WriteThumbnail:      b.cfg.Metadata.WriteThumbnail,
		WriteDescription:    b.cfg.Metadata.WriteDescription,
	}

	// Audio extraction overrides any explicit format selector;
	// the audio parameters always win.
	if b.cfg.Download.ExtractAudio {
		req.AudioOnly = true
		req.FormatSelector = AudioFormatSelector
		req.AudioFormat = b.cfg.Download.AudioFormat
		req.AudioQuality = b.cfg.Download.AudioQuality
	}

	b.applyPlaylistPolicy(req)

	return req, nil
}

// applyPlaylistPolicy enforces the explicit opt-in rule: a playlist-looking
// URL without playlist permission is truncated to a single-item request
// rather than rejected.
func (b *BuilderImpl) applyPlaylistPolicy(req *DownloadRequest) {
	if b.cfg.User.AllowPlaylistDownload {
		req.AllowPlaylist = true
		req.MaxItems = b.cfg.User.MaxPlaylistItems

		return
	}

	// Without the opt-in, playlist-looking URLs are truncated to a
	// single-item request. Deliberate safety default, not an error.
	req.AllowPlaylist = false
	req.MaxItems = 1
}
