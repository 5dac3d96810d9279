package app

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ytget/ytdl-helper/internal/config"
	"github.com/ytget/ytdl-helper/internal/engine"
	"github.com/ytget/ytdl-helper/internal/logger"
)

// maxListedFormats caps how many formats the info command prints.
const maxListedFormats = 15

// ExecuteInfoCommand probes a URL and prints what was found without
// downloading anything.
func ExecuteInfoCommand(ctx context.Context, cfg *config.Config, url string, showFormats bool) error {
	eng, err := engine.NewYTDLPEngine(cfg)
	if err != nil {
		return err
	}

	info, err := eng.Probe(ctx, url)
	if err != nil {
		return err
	}

	printMediaInfo(ctx, info, showFormats)

	return nil
}

// printMediaInfo prints the probe result in a compact, readable layout.
func printMediaInfo(ctx context.Context, info *engine.MediaInfo, showFormats bool) {
	logger.Infof(ctx, "URL:       %s", info.URL)

	if info.Title != "" {
		logger.Infof(ctx, "Title:     %s", info.Title)
	}

	if info.Uploader != "" {
		logger.Infof(ctx, "Uploader:  %s", info.Uploader)
	}

	if info.Duration > 0 {
		logger.Infof(ctx, "Duration:  %s", info.Duration.Round(time.Second))
	}

	if info.IsPlaylist {
		logger.Infof(ctx, "Playlist:  yes (%d entries)", info.EntryCount)
	}

	if showFormats {
		printFormats(ctx, info.Formats)
	}
}

// printFormats lists the offered formats, newest-quality last, capped so a
// site offering dozens of renditions doesn't flood the terminal.
func printFormats(ctx context.Context, formats []engine.FormatInfo) {
	if len(formats) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Infof(ctx, "Formats:   %d available", len(formats))

	listed := formats
	if len(listed) > maxListedFormats {
		listed = listed[len(listed)-maxListedFormats:]
	}

	for _, format := range listed {
		size := "unknown size"
		if format.Filesize > 0 {
			//nolint:gosec // Filesize is always positive, no overflow risk.
			size = humanize.Bytes(uint64(format.Filesize))
		}

		resolution := format.Resolution
		if resolution == "" {
			resolution = "audio"
		}

		logger.Infof(ctx, "  %-12s %-12s %s", format.ID, resolution, size)
	}

	if len(formats) > maxListedFormats {
		logger.Infof(ctx, "  ... and %d more", len(formats)-maxListedFormats)
	}
}
