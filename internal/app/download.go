package app

import (
	"context"

	"github.com/ytget/ytdl-helper/internal/config"
	"github.com/ytget/ytdl-helper/internal/engine"
	"github.com/ytget/ytdl-helper/internal/logger"
	"github.com/ytget/ytdl-helper/internal/prompt"
	"github.com/ytget/ytdl-helper/internal/request"
	"github.com/ytget/ytdl-helper/internal/rights"
	"github.com/ytget/ytdl-helper/internal/service/download"
	"github.com/ytget/ytdl-helper/internal/service/tag"
	http_transport "github.com/ytget/ytdl-helper/internal/transport/http"
)

// newDownloadService wires the download pipeline together. The engine is
// returned alongside the service for callers that also probe directly.
func newDownloadService(cfg *config.Config) (download.Service, engine.Engine, error) {
	eng, err := engine.NewYTDLPEngine(cfg)
	if err != nil {
		return nil, nil, err
	}

	prompter := prompt.NewTerminalPrompter()
	gate := rights.NewGate(cfg, prompter)
	builder := request.NewBuilder(cfg)
	tagProcessor := tag.NewProcessor(http_transport.NewClient(nil))

	return download.NewService(cfg, gate, builder, eng, tagProcessor), eng, nil
}

// ExecuteDownloadCommand is the entry point for the download command.
// It wires the pipeline together and runs it for the provided URLs.
func ExecuteDownloadCommand(ctx context.Context, cfg *config.Config, urls []string) (err error) {
	s, _, err := newDownloadService(cfg)
	if err != nil {
		return err
	}

	// Ensure the summary is ALWAYS printed, even on panic.
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(ctx, "Panic recovered: %v", r)
		}

		s.PrintDownloadSummary(ctx)
	}()

	return s.DownloadURLs(ctx, urls)
}
