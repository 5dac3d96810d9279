package download

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ytget/ytdl-helper/internal/logger"
)

// summarySeparator frames the summary block.
const summarySeparator = "═══════════════════════════════════════════════════════════════"

// Statistics accumulates per-session download counters.
type Statistics struct {
	// StartTime is when the download process started.
	StartTime time.Time
	// EndTime is when the download process finished or was interrupted.
	EndTime time.Time
	// RequestsProcessed counts executed download requests.
	RequestsProcessed int64
	// ItemsDownloaded counts successfully downloaded items.
	ItemsDownloaded int64
	// ItemsFailed counts items that did not complete.
	ItemsFailed int64
	// TagsWritten counts audio files successfully tagged.
	TagsWritten int64
	// TagsFailed counts audio files whose tagging failed.
	TagsFailed int64
	// TotalBytesDownloaded is the total size of the produced files.
	TotalBytesDownloaded int64
	// Errors holds per-item failure details for the summary.
	Errors []DownloadError
}

// DownloadError captures one failure for the error section of the summary.
type DownloadError struct {
	// URL is the request URL the failure belongs to.
	URL string
	// ItemTitle is the failed item's title when known.
	ItemTitle string
	// ErrorMessage is the failure reason.
	ErrorMessage string
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}

// PrintDownloadSummary prints a formatted summary of download statistics.
// Under interruption it reports the subset that actually completed.
func (s *ServiceImpl) PrintDownloadSummary(ctx context.Context) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	stats := s.stats

	// If nothing was processed, don't print summary.
	if stats.RequestsProcessed == 0 {
		return
	}

	// Check if the context was canceled (CTRL+C or timeout).
	wasInterrupted := ctx.Err() != nil

	s.printSummaryHeader(ctx, wasInterrupted)
	s.printItemStatistics(ctx, stats)
	s.printDataTransferStatistics(ctx, stats)
	s.printTagStatistics(ctx, stats)
	logger.Info(ctx, summarySeparator)
	s.printErrorDetails(ctx, stats)
	s.printFinalMessage(ctx, wasInterrupted, stats)
}

// printSummaryHeader prints the summary header.
func (s *ServiceImpl) printSummaryHeader(ctx context.Context, wasInterrupted bool) {
	logger.Info(ctx, "")
	logger.Info(ctx, summarySeparator)

	if wasInterrupted {
		logger.Info(ctx, "           DOWNLOAD SUMMARY (Interrupted)")
	} else {
		logger.Info(ctx, "                     DOWNLOAD SUMMARY")
	}

	logger.Info(ctx, summarySeparator)
}

// printItemStatistics prints per-item download counters.
func (s *ServiceImpl) printItemStatistics(ctx context.Context, stats *Statistics) {
	totalItems := stats.ItemsDownloaded + stats.ItemsFailed

	logger.Infof(ctx, "Items:            %d total processed", totalItems)

	if stats.ItemsDownloaded > 0 {
		logger.Infof(ctx, "  Downloaded:     %d", stats.ItemsDownloaded)
	}

	if stats.ItemsFailed > 0 {
		logger.Infof(ctx, "  Failed:         %d", stats.ItemsFailed)
	}

	// Success rate.
	if totalItems > 0 {
		successRate := float64(stats.ItemsDownloaded) / float64(totalItems) * 100
		logger.Infof(ctx, "  Success Rate:   %.1f%%", successRate)
	}
}

// printDataTransferStatistics prints data transfer statistics.
func (s *ServiceImpl) printDataTransferStatistics(ctx context.Context, stats *Statistics) {
	if stats.TotalBytesDownloaded > 0 {
		logger.Info(ctx, "")
		//nolint:gosec // TotalBytesDownloaded is always positive, no overflow risk.
		logger.Infof(ctx, "Data Downloaded:  %s", humanize.Bytes(uint64(stats.TotalBytesDownloaded)))
	}

	// Print duration if we have both start and end times.
	if !stats.StartTime.IsZero() && !stats.EndTime.IsZero() {
		duration := stats.EndTime.Sub(stats.StartTime)

		// Only show if duration is meaningful (> 100ms).
		if duration > 100*time.Millisecond {
			logger.Infof(ctx, "Duration:         %s", formatDuration(duration))

			// Calculate and show average speed if we downloaded anything.
			if stats.TotalBytesDownloaded > 0 {
				bytesPerSecond := float64(stats.TotalBytesDownloaded) / duration.Seconds()
				logger.Infof(ctx, "Average Speed:    %s/s", humanize.Bytes(uint64(bytesPerSecond)))
			}
		}
	}
}

// printTagStatistics prints audio tagging statistics.
func (s *ServiceImpl) printTagStatistics(ctx context.Context, stats *Statistics) {
	totalTags := stats.TagsWritten + stats.TagsFailed
	if totalTags == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Infof(ctx, "Audio Tags:       %d total", totalTags)

	if stats.TagsWritten > 0 {
		logger.Infof(ctx, "  Written:        %d", stats.TagsWritten)
	}

	if stats.TagsFailed > 0 {
		logger.Infof(ctx, "  Failed:         %d", stats.TagsFailed)
	}
}

// printErrorDetails prints detailed error information if any errors occurred.
func (s *ServiceImpl) printErrorDetails(ctx context.Context, stats *Statistics) {
	if len(stats.Errors) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Errorf(ctx, "ERRORS ENCOUNTERED: %d", len(stats.Errors))

	for i := range stats.Errors {
		logger.Info(ctx, "")
		logger.Errorf(ctx, "  [%d] %s", i+1, stats.Errors[i].URL)

		if stats.Errors[i].ItemTitle != "" {
			logger.Errorf(ctx, "      Title: %s", stats.Errors[i].ItemTitle)
		}

		logger.Errorf(ctx, "      Error: %s", stats.Errors[i].ErrorMessage)
	}

	logger.Info(ctx, "")
	logger.Info(ctx, summarySeparator)

	s.printRetryCommand(ctx, stats.Errors)
}

// printRetryCommand generates and prints a command to retry failed downloads.
func (s *ServiceImpl) printRetryCommand(ctx context.Context, downloadErrors []DownloadError) {
	var (
		urlsMap = make(map[string]bool)
		urls    []string
	)

	for i := range downloadErrors {
		failedURL := downloadErrors[i].URL
		if failedURL == "" || urlsMap[failedURL] {
			continue
		}

		urlsMap[failedURL] = true

		urls = append(urls, failedURL)
	}

	if len(urls) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Info(ctx, "To retry only failed downloads, run:")
	logger.Info(ctx, "")

	command := "ytdl-helper download"
	for _, failedURL := range urls {
		command += " " + failedURL
	}

	logger.Infof(ctx, "  %s", command)
}

// printFinalMessage prints a helpful message based on download results.
func (s *ServiceImpl) printFinalMessage(ctx context.Context, wasInterrupted bool, stats *Statistics) {
	switch {
	case wasInterrupted:
		logger.Info(ctx, "")
		logger.Warn(ctx, "Download interrupted by user (CTRL+C).")

		if stats.ItemsDownloaded > 0 {
			logger.Infof(ctx, "Successfully downloaded %d item(s) before interruption.", stats.ItemsDownloaded)
		}
	case len(stats.Errors) > 0:
		logger.Info(ctx, "")
		logger.Warnf(ctx, "%d error(s) occurred during download. See detailed error log above.", len(stats.Errors))
	case stats.ItemsDownloaded > 0:
		logger.Info(ctx, "")
		logger.Info(ctx, "All downloads completed successfully!")
	}
}
