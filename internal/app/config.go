package app

import (
	"context"
	"fmt"
	"os"

	"github.com/ytget/ytdl-helper/internal/config"
	"github.com/ytget/ytdl-helper/internal/logger"
)

// ExecuteConfigShowCommand prints the effective configuration, after all
// sources (defaults, file, environment, flags) have been folded in.
func ExecuteConfigShowCommand(_ context.Context, cfg *config.Config) error {
	content, err := config.Render(cfg)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(os.Stdout, string(content))

	return err
}

// ExecuteConfigResetCommand rewrites the config file with the built-in
// defaults. An empty path targets the conventional per-user location.
func ExecuteConfigResetCommand(ctx context.Context, path string) error {
	writtenPath, err := config.ResetConfig(path)
	if err != nil {
		return err
	}

	logger.Infof(ctx, "Configuration reset to defaults: %s", writtenPath)

	return nil
}
