// Package engine is the seam to the external media-download engine.
// The rest of the application never drives the engine directly, only
// through the Engine interface, so tests can substitute a fake.
package engine

//go:generate $MOCKGEN -source=engine.go -destination=mocks/engine_mock.go

import (
	"context"
	"time"

	"github.com/ytget/ytdl-helper/internal/request"
	"github.com/ytget/ytdl-helper/internal/utils"
)

// OutcomeStatus classifies the result of executing a download request.
type OutcomeStatus uint8

const (
	// OutcomeStatusFatal means nothing was downloaded.
	OutcomeStatusFatal OutcomeStatus = iota
	// OutcomeStatusSuccess means every requested item was downloaded.
	OutcomeStatusSuccess
	// OutcomeStatusPartialFailure means some items succeeded and some failed.
	// Only meaningful for playlist requests.
	OutcomeStatusPartialFailure
)

// String returns a human-readable status name.
func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeStatusSuccess:
		return "success"
	case OutcomeStatusPartialFailure:
		return "partial failure"
	case OutcomeStatusFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// ItemResult describes one downloaded (or failed) item of a request.
type ItemResult struct {
	// Index is the position of the item within the request, starting at 1.
	Index int
	// Title is the media title when known.
	Title string
	// Path is the produced file path. Empty when the item failed.
	Path string
	// Err is the failure reason. Nil means the item succeeded.
	Err error
}

// Outcome is the truthful result of executing one download request.
// Under cancellation it reports whatever subset was already determined,
// never a claimed success.
type Outcome struct {
	// Status classifies the overall result.
	Status OutcomeStatus
	// Items holds per-item results, completed items included even when
	// later items failed.
	Items []ItemResult
	// BytesDownloaded is the total size of the produced files.
	BytesDownloaded int64
	// Err carries the fatal or aggregate failure reason, nil on success.
	Err error
}

// Files returns the paths of all successfully produced files.
func (o *Outcome) Files() []string {
	return utils.Map(o.Succeeded(), func(item ItemResult) string {
		return item.Path
	})
}

// Succeeded returns the items that completed.
func (o *Outcome) Succeeded() []ItemResult {
	result := make([]ItemResult, 0, len(o.Items))

	for _, item := range o.Items {
		if item.Err == nil {
			result = append(result, item)
		}
	}

	return result
}

// Failed returns the items that did not complete, with reasons.
func (o *Outcome) Failed() []ItemResult {
	var result []ItemResult

	for _, item := range o.Items {
		if item.Err != nil {
			result = append(result, item)
		}
	}

	return result
}

// FormatInfo describes one media format offered by the source.
type FormatInfo struct {
	// ID is the engine-side format identifier.
	ID string
	// Extension is the container extension (e.g. "mp4", "webm").
	Extension string
	// Resolution is the video resolution when applicable.
	Resolution string
	// Filesize is the size in bytes, 0 when unknown.
	Filesize int64
}

// MediaInfo describes a media page or playlist without downloading it.
type MediaInfo struct {
	// URL is the probed URL.
	URL string
	// Title is the media or playlist title.
	Title string
	// Uploader is the channel or uploader name.
	Uploader string
	// Description is the media description.
	Description string
	// ThumbnailURL points at the thumbnail image.
	ThumbnailURL string
	// Duration is the media duration, zero for playlists or live content.
	Duration time.Duration
	// IsPlaylist reports whether the URL expands to multiple items.
	IsPlaylist bool
	// EntryCount is the number of playlist entries when IsPlaylist is set.
	EntryCount int
	// Formats lists the formats offered by the source.
	Formats []FormatInfo
}

// Engine executes normalized download requests against the external
// media-download engine. It owns no retry or backoff logic of its own;
// whatever the wrapped engine does internally is opaque here.
type Engine interface {
	// Execute runs the request and reports a truthful outcome.
	// The returned error is reserved for invocation-level failures;
	// engine failures are folded into the outcome.
	Execute(ctx context.Context, req *request.DownloadRequest) (*Outcome, error)
	// Probe fetches information about a URL without downloading media.
	Probe(ctx context.Context, url string) (*MediaInfo, error)
}
