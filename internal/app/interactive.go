package app

import (
	"context"
	"errors"
	"strings"

	"github.com/ytget/ytdl-helper/internal/config"
	"github.com/ytget/ytdl-helper/internal/engine"
	"github.com/ytget/ytdl-helper/internal/logger"
	"github.com/ytget/ytdl-helper/internal/prompt"
	"github.com/ytget/ytdl-helper/internal/rights"
	"github.com/ytget/ytdl-helper/internal/service/download"
	"github.com/ytget/ytdl-helper/internal/utils"
)

// infoCommandPrefix triggers a probe instead of a download in interactive mode.
const infoCommandPrefix = "info "

// ExecuteInteractiveCommand runs a read-eval loop: each entered URL is
// downloaded with the current settings, "info <url>" probes without
// downloading, and "quit" exits. The session summary is printed on exit.
func ExecuteInteractiveCommand(ctx context.Context, cfg *config.Config) (err error) {
	s, eng, err := newDownloadService(cfg)
	if err != nil {
		return err
	}

	prompter := prompt.NewTerminalPrompter()

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(ctx, "Panic recovered: %v", r)
		}

		s.PrintDownloadSummary(ctx)
	}()

	logger.Info(ctx, "Interactive mode. Enter a URL to download, 'info <url>' to inspect, 'quit' to exit.")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// EOF, a closed terminal, and cancellation all end the session.
		answer, askErr := prompter.Ask(ctx, ">")
		if askErr != nil {
			return askErr
		}

		if done := handleInteractiveInput(ctx, cfg, prompter, s, eng, answer); done {
			return nil
		}
	}
}

// handleInteractiveInput dispatches one line of interactive input.
// It reports true when the session should end.
func handleInteractiveInput(
	ctx context.Context,
	cfg *config.Config,
	prompter prompt.Prompter,
	s download.Service,
	eng engine.Engine,
	input string,
) bool {
	input = strings.TrimSpace(input)

	switch strings.ToLower(input) {
	case "":
		return false
	case "q", "quit", "exit":
		return true
	}

	if strings.HasPrefix(strings.ToLower(input), infoCommandPrefix) {
		probeURL := strings.TrimSpace(input[len(infoCommandPrefix):])

		info, err := eng.Probe(ctx, probeURL)
		if err != nil {
			logger.Errorf(ctx, "Failed to probe URL: %v", err)

			return false
		}

		printMediaInfo(ctx, info, true)

		return false
	}

	if !utils.IsSupportedURL(input) {
		logger.Warnf(ctx, "Not a valid http(s) URL: %s", input)

		return false
	}

	restore, err := confirmDownloadOptions(ctx, cfg, prompter)
	if err != nil {
		// A failed prompt means the terminal is gone or the user interrupted.
		return true
	}

	defer restore()

	if err = s.DownloadURLs(ctx, []string{input}); err != nil {
		// A denied rights gate or a cancellation ends the session.
		if errors.Is(err, rights.ErrRightsDenied) || errors.Is(err, context.Canceled) {
			return true
		}

		logger.Errorf(ctx, "Download failed: %v", err)
	}

	return false
}

// confirmDownloadOptions asks for the per-download choices the download
// command takes as flags. The returned function restores the session
// configuration once the download finished.
func confirmDownloadOptions(
	ctx context.Context,
	cfg *config.Config,
	prompter prompt.Prompter,
) (restore func(), err error) {
	previousDownload := cfg.Download
	previousMetadata := cfg.Metadata

	restore = func() {
		cfg.Download = previousDownload
		cfg.Metadata = previousMetadata
	}

	audioOnly, err := prompter.Confirm(ctx, "Extract audio only?")
	if err != nil {
		return nil, err
	}

	writeMetadata, err := prompter.Confirm(ctx, "Save metadata files (info JSON, thumbnail, description)?")
	if err != nil {
		return nil, err
	}

	cfg.Download.ExtractAudio = audioOnly
	cfg.Metadata.WriteInfoJSON = writeMetadata
	cfg.Metadata.WriteThumbnail = writeMetadata
	cfg.Metadata.WriteDescription = writeMetadata

	return restore, nil
}
