package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lrstanley/go-ytdlp"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap/zapcore"

	"github.com/ytget/ytdl-helper/internal/config"
	"github.com/ytget/ytdl-helper/internal/logger"
	"github.com/ytget/ytdl-helper/internal/request"
)

const (
	// probeCacheSize bounds the probe result cache. Interactive sessions
	// tend to probe the same URL a handful of times.
	probeCacheSize = 64

	// progressUpdateInterval is how often the engine reports progress.
	progressUpdateInterval = 500 * time.Millisecond
)

// Static error definitions for better error handling.
var (
	// ErrNoMediaInfo indicates the engine returned no information for the URL.
	ErrNoMediaInfo = errors.New("engine returned no media information")
)

// YTDLPEngine is the production Engine implementation backed by yt-dlp
// driven through the go-ytdlp bindings.
type YTDLPEngine struct {
	cfg        *config.Config
	probeCache *lru.Cache[string, *MediaInfo]
}

// NewYTDLPEngine creates the production engine.
func NewYTDLPEngine(cfg *config.Config) (Engine, error) {
	probeCache, err := lru.New[string, *MediaInfo](probeCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create probe cache: %w", err)
	}

	return &YTDLPEngine{
		cfg:        cfg,
		probeCache: probeCache,
	}, nil
}

// Execute runs the request against yt-dlp and reports a truthful outcome.
// Retries, format negotiation, and site extraction are the engine's business.
func (e *YTDLPEngine) Execute(ctx context.Context, req *request.DownloadRequest) (*Outcome, error) {
	logger.DebugKV(ctx, "Executing download request",
		"request_id", req.ID,
		"url", req.URL,
		"format", req.FormatSelector,
		"audio_only", req.AudioOnly,
		"max_items", req.MaxItems)

	dl := e.buildCommand(req)

	result, runErr := dl.Run(ctx, req.URL)

	// A cancellation that raced a clean engine exit must still be
	// reported as a cancellation, never as a claimed success.
	if runErr == nil && ctx.Err() != nil {
		runErr = ctx.Err()
	}

	return e.buildOutcome(e.collectItems(ctx, req, result), runErr), nil
}

// buildCommand translates the normalized request into engine options.
func (e *YTDLPEngine) buildCommand(req *request.DownloadRequest) *ytdlp.Command {
	dl := ytdlp.New().
		Output(filepath.Join(req.OutputDir, req.OutputTemplate)).
		RestrictFilenames()

	dl = dl.Format(req.FormatSelector)

	if req.AudioOnly {
		dl = dl.ExtractAudio().
			AudioFormat(req.AudioFormat).
			AudioQuality(req.AudioQuality)
	}

	if req.AllowPlaylist {
		// IgnoreErrors keeps the engine going past failed playlist items
		// so completed items are never discarded.
		dl = dl.YesPlaylist().
			PlaylistEnd(int(req.MaxItems)).
			IgnoreErrors()
	} else {
		dl = dl.NoPlaylist()
	}

	if req.MaxFilesize != "" {
		dl = dl.MaxFileSize(req.MaxFilesize)
	}

	if req.WriteInfoJSON {
		dl = dl.WriteInfoJSON()
	}

	if req.WriteThumbnail {
		dl = dl.WriteThumbnail()
	}

	if req.WriteDescription {
		dl = dl.WriteDescription()
	}

	if e.isProgressEnabled() {
		e.attachProgressBar(dl)
	}

	return dl
}

// isProgressEnabled reports whether a progress bar should be rendered.
// Quiet mode (error level) suppresses it.
func (e *YTDLPEngine) isProgressEnabled() bool {
	return e.cfg.ParsedLogLevel <= zapcore.InfoLevel
}

// attachProgressBar renders byte-level progress for the current item.
func (e *YTDLPEngine) attachProgressBar(dl *ytdlp.Command) {
	var (
		bar      *progressbar.ProgressBar
		barTotal int64
	)

	dl.ProgressFunc(progressUpdateInterval, func(update ytdlp.ProgressUpdate) {
		total := int64(update.TotalBytes)
		if total <= 0 {
			return
		}

		// A new total means a new playlist item started.
		if bar == nil || total != barTotal {
			barTotal = total
			bar = progressbar.DefaultBytes(total, "Downloading")
		}

		_ = bar.Set64(int64(update.DownloadedBytes))
	})
}

// buildOutcome maps the per-item results onto the Outcome taxonomy.
// Policy: no completed items and a failure is Fatal; completed items next
// to a failure is PartialFailure; otherwise Success. Item-level failures
// count even when the engine itself exited cleanly.
func (e *YTDLPEngine) buildOutcome(items []ItemResult, runErr error) *Outcome {
	var (
		bytesDownloaded int64
		failedItems     int
		firstItemErr    error
	)

	for _, item := range items {
		if item.Err != nil {
			failedItems++

			if firstItemErr == nil {
				firstItemErr = item.Err
			}

			continue
		}

		if item.Path == "" {
			continue
		}

		if stat, err := os.Stat(item.Path); err == nil {
			bytesDownloaded += stat.Size()
		}
	}

	switch {
	case runErr == nil && failedItems == 0:
		return &Outcome{
			Status:          OutcomeStatusSuccess,
			Items:           items,
			BytesDownloaded: bytesDownloaded,
		}
	case runErr == nil && failedItems < len(items):
		// The engine exited cleanly but some entries produced no file.
		return &Outcome{
			Status:          OutcomeStatusPartialFailure,
			Items:           items,
			BytesDownloaded: bytesDownloaded,
			Err:             firstItemErr,
		}
	case runErr == nil:
		return &Outcome{
			Status: OutcomeStatusFatal,
			Items:  items,
			Err:    firstItemErr,
		}
	case len(items) == 0:
		return &Outcome{
			Status: OutcomeStatusFatal,
			Err:    runErr,
		}
	default:
		// Completed items stay reported; the failure is appended as its
		// own item so per-item accounting remains truthful.
		items = append(items, ItemResult{
			Index: len(items) + 1,
			Err:   runErr,
		})

		return &Outcome{
			Status:          OutcomeStatusPartialFailure,
			Items:           items,
			BytesDownloaded: bytesDownloaded,
			Err:             runErr,
		}
	}
}

// collectItems extracts per-item results from the engine output,
// truncated to the request's hard item cap.
func (e *YTDLPEngine) collectItems(
	ctx context.Context,
	req *request.DownloadRequest,
	result *ytdlp.Result,
) []ItemResult {
	if result == nil {
		return nil
	}

	extractedInfo, err := result.GetExtractedInfo()
	if err != nil {
		logger.Debugf(ctx, "Failed to read extracted info: %v", err)

		return nil
	}

	items := make([]ItemResult, 0, len(extractedInfo))

	for index, info := range extractedInfo {
		if int64(index) >= req.MaxItems {
			break
		}

		item := ItemResult{
			Index: index + 1,
			Title: strValue(info.Title),
			Path:  strValue(info.Filename),
		}

		if item.Path == "" {
			item.Err = ErrNoMediaInfo
		}

		items = append(items, item)
	}

	return items
}

// Probe fetches information about a URL without downloading media.
// Results are cached so interactive sessions don't refetch the same URL.
func (e *YTDLPEngine) Probe(ctx context.Context, rawURL string) (*MediaInfo, error) {
	if info, ok := e.probeCache.Get(rawURL); ok {
		logger.Debugf(ctx, "Probe cache hit: %s", rawURL)

		return info, nil
	}

	dl := ytdlp.New().
		SkipDownload().
		FlatPlaylist()

	result, err := dl.Run(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to probe media: %w", err)
	}

	extractedInfo, err := result.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted info: %w", err)
	}

	if len(extractedInfo) == 0 {
		return nil, ErrNoMediaInfo
	}

	mediaInfo := mapMediaInfo(rawURL, extractedInfo)
	e.probeCache.Add(rawURL, mediaInfo)

	return mediaInfo, nil
}

// mapMediaInfo folds the engine's extracted entries into a MediaInfo.
func mapMediaInfo(rawURL string, extractedInfo []*ytdlp.ExtractedInfo) *MediaInfo {
	first := extractedInfo[0]

	mediaInfo := &MediaInfo{
		URL:          rawURL,
		Title:        strValue(first.Title),
		Uploader:     strValue(first.Uploader),
		Description:  strValue(first.Description),
		ThumbnailURL: strValue(first.Thumbnail),
	}

	if first.Duration != nil {
		mediaInfo.Duration = time.Duration(*first.Duration * float64(time.Second))
	}

	if first.Type == "playlist" || len(extractedInfo) > 1 {
		mediaInfo.IsPlaylist = true
		mediaInfo.EntryCount = len(extractedInfo)
	}

	for _, format := range first.Formats {
		if format == nil {
			continue
		}

		formatInfo := FormatInfo{
			ID:         strValue(format.FormatID),
			Extension:  strValue(format.Extension),
			Resolution: strValue(format.Resolution),
		}

		if format.FileSize != nil {
			formatInfo.Filesize = int64(*format.FileSize)
		}

		mediaInfo.Formats = append(mediaInfo.Formats, formatInfo)
	}

	return mediaInfo
}

// strValue dereferences optional engine strings.
func strValue(v *string) string {
	if v == nil {
		return ""
	}

	return *v
}
