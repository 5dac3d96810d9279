package download

//go:generate $MOCKGEN -source=service.go -destination=mocks/service_mock.go

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ytget/ytdl-helper/internal/config"
	"github.com/ytget/ytdl-helper/internal/constants"
	"github.com/ytget/ytdl-helper/internal/engine"
	"github.com/ytget/ytdl-helper/internal/logger"
	"github.com/ytget/ytdl-helper/internal/request"
	"github.com/ytget/ytdl-helper/internal/rights"
	"github.com/ytget/ytdl-helper/internal/service/tag"
	"github.com/ytget/ytdl-helper/internal/utils"
)

// Static error definitions for better error handling.
var (
	// ErrDownloadFailed indicates that at least one download did not complete.
	ErrDownloadFailed = errors.New("download failed")
)

// Service provides methods for downloading media content from URLs.
type Service interface {
	// DownloadURLs runs the full download pipeline for the given URLs.
	// Arguments ending in .txt are expanded into the URLs they list.
	DownloadURLs(ctx context.Context, urls []string) error
	// PrintDownloadSummary prints a formatted summary of download statistics.
	PrintDownloadSummary(ctx context.Context)
}

// ServiceImpl implements the download pipeline with dependency-injected components.
type ServiceImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// gate decides whether the invocation may proceed at all.
	gate rights.Gate
	// builder normalizes URLs into download requests.
	builder request.Builder
	// eng executes requests against the external download engine.
	eng engine.Engine
	// tagProcessor writes metadata tags to extracted audio files.
	tagProcessor tag.Processor
	// stats tracks download statistics for the current session.
	stats *Statistics
	// statsMutex protects concurrent access to statistics.
	statsMutex *sync.Mutex
}

// NewService creates a download service instance.
func NewService(
	cfg *config.Config,
	gate rights.Gate,
	builder request.Builder,
	eng engine.Engine,
	tagProcessor tag.Processor,
) Service {
	return &ServiceImpl{
		cfg:          cfg,
		gate:         gate,
		builder:      builder,
		eng:          eng,
		tagProcessor: tagProcessor,
		stats:        new(Statistics),
		statsMutex:   new(sync.Mutex),
	}
}

// DownloadURLs runs the full download pipeline for the given URLs.
// The rights gate is consulted exactly once, before any network or
// filesystem action, and all requests are constructed up front so that a
// bad URL is rejected before anything is downloaded.
func (s *ServiceImpl) DownloadURLs(ctx context.Context, urls []string) error {
	s.statsMutex.Lock()
	s.stats.StartTime = time.Now()
	s.statsMutex.Unlock()

	defer func() {
		s.statsMutex.Lock()
		s.stats.EndTime = time.Now()
		s.statsMutex.Unlock()
	}()

	targets, err := s.expandURLs(ctx, urls)
	if err != nil {
		return err
	}

	decision, err := s.gate.Confirm(ctx)
	if err != nil {
		return err
	}

	if decision != rights.DecisionAllowed {
		return rights.ErrRightsDenied
	}

	requests, err := s.buildRequests(targets)
	if err != nil {
		return err
	}

	if err = config.EnsureOutputDir(s.cfg); err != nil {
		return err
	}

	logger.Info(ctx, "Starting download process")

	for _, req := range requests {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.executeRequest(ctx, req)
	}

	logger.Info(ctx, "Download process completed")

	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.statsMutex.Lock()
	failedCount := s.stats.ItemsFailed
	s.statsMutex.Unlock()

	if failedCount > 0 {
		return fmt.Errorf("%w: %d item(s) failed", ErrDownloadFailed, failedCount)
	}

	return nil
}

// expandURLs replaces .txt arguments with the unique non-empty lines they
// contain and deduplicates the final list while preserving order.
func (s *ServiceImpl) expandURLs(ctx context.Context, urls []string) ([]string, error) {
	var (
		seen    = make(map[string]struct{})
		targets []string
	)

	appendTarget := func(target string) {
		target = strings.TrimSpace(target)
		if target == "" {
			return
		}

		if _, exists := seen[target]; exists {
			return
		}

		seen[target] = struct{}{}

		targets = append(targets, target)
	}

	for _, rawURL := range urls {
		if !strings.EqualFold(filepath.Ext(rawURL), constants.ExtensionTxt) {
			appendTarget(rawURL)

			continue
		}

		exists, err := utils.IsFileExist(rawURL)
		if err != nil {
			return nil, fmt.Errorf("failed to check URL list '%s': %w", rawURL, err)
		}

		if !exists {
			return nil, fmt.Errorf("URL list '%s' does not exist", rawURL)
		}

		lines, err := utils.ReadUniqueLinesFromFile(rawURL)
		if err != nil {
			return nil, fmt.Errorf("failed to read URL list '%s': %w", rawURL, err)
		}

		logger.Debugf(ctx, "Expanded URL list '%s' into %d entries", rawURL, len(lines))

		for _, line := range lines {
			appendTarget(line)
		}
	}

	return targets, nil
}

// buildRequests constructs all requests before any of them runs.
func (s *ServiceImpl) buildRequests(targets []string) ([]*request.DownloadRequest, error) {
	requests := make([]*request.DownloadRequest, 0, len(targets))

	for _, target := range targets {
		req, err := s.builder.Build(target)
		if err != nil {
			return nil, err
		}

		requests = append(requests, req)
	}

	return requests, nil
}

// executeRequest runs a single request and folds its outcome into statistics.
// Engine failures are recorded, never propagated: later requests still run.
func (s *ServiceImpl) executeRequest(ctx context.Context, req *request.DownloadRequest) {
	logger.Infof(ctx, "Downloading: %s", req.URL)

	if req.IsPlaylistReference && !req.AllowPlaylist {
		logger.Warnf(ctx,
			"URL looks like a playlist; downloading only the first item (pass --playlist to expand): %s",
			req.URL)
	}

	outcome, err := s.eng.Execute(ctx, req)
	if err != nil {
		s.recordFailure(req.URL, "", err)
		logger.Errorf(ctx, "Failed to execute download: %v", err)

		return
	}

	s.recordOutcome(req, outcome)

	if outcome.Status == engine.OutcomeStatusFatal {
		logger.Errorf(ctx, "Download failed: %v", outcome.Err)

		return
	}

	for _, path := range outcome.Files() {
		logger.Infof(ctx, "Saved: %s", path)
	}

	if req.AudioOnly {
		s.tagDownloadedItems(ctx, req, outcome)
	}
}

// recordOutcome folds the engine outcome into session statistics.
func (s *ServiceImpl) recordOutcome(req *request.DownloadRequest, outcome *engine.Outcome) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.RequestsProcessed++
	s.stats.TotalBytesDownloaded += outcome.BytesDownloaded

	for _, item := range outcome.Items {
		if item.Err != nil {
			s.stats.ItemsFailed++
			s.stats.Errors = append(s.stats.Errors, DownloadError{
				URL:          req.URL,
				ItemTitle:    item.Title,
				ErrorMessage: item.Err.Error(),
			})

			continue
		}

		s.stats.ItemsDownloaded++
	}

	// A fatal outcome that carries item details is already accounted for
	// above; only a bare fatal failure needs its own entry.
	if outcome.Status == engine.OutcomeStatusFatal && len(outcome.Items) == 0 {
		s.stats.ItemsFailed++
		s.stats.Errors = append(s.stats.Errors, DownloadError{
			URL:          req.URL,
			ErrorMessage: outcome.Err.Error(),
		})
	}
}

// recordFailure records an invocation-level failure for a whole request.
func (s *ServiceImpl) recordFailure(url, title string, err error) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.RequestsProcessed++
	s.stats.ItemsFailed++
	s.stats.Errors = append(s.stats.Errors, DownloadError{
		URL:          url,
		ItemTitle:    title,
		ErrorMessage: err.Error(),
	})
}

// tagDownloadedItems writes metadata tags to the audio files the request
// produced. Tagging failures are warnings: the download already succeeded.
func (s *ServiceImpl) tagDownloadedItems(ctx context.Context, req *request.DownloadRequest, outcome *engine.Outcome) {
	if s.tagProcessor == nil {
		return
	}

	succeeded := outcome.Succeeded()
	if len(succeeded) == 0 {
		return
	}

	// A single probe per request covers uploader and cover art for all items.
	info, err := s.eng.Probe(ctx, req.URL)
	if err != nil {
		logger.Debugf(ctx, "Probe for tagging failed: %v", err)

		info = &engine.MediaInfo{URL: req.URL}
	}

	for _, item := range succeeded {
		if item.Path == "" {
			continue
		}

		title := item.Title
		if title == "" {
			title = info.Title
		}

		err = s.tagProcessor.WriteTags(ctx, &tag.WriteTagsRequest{
			TrackPath:    item.Path,
			Title:        title,
			Artist:       info.Uploader,
			Comment:      req.URL,
			ThumbnailURL: info.ThumbnailURL,
		})
		if err != nil {
			s.statsMutex.Lock()
			s.stats.TagsFailed++
			s.statsMutex.Unlock()

			logger.Warnf(ctx, "Failed to tag '%s': %v", item.Path, err)

			continue
		}

		s.statsMutex.Lock()
		s.stats.TagsWritten++
		s.statsMutex.Unlock()
	}
}
