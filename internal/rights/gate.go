// Package rights implements the confirmation gate ensuring the user attests
// to having permission to download the requested content.
package rights

//go:generate $MOCKGEN -source=gate.go -destination=mocks/gate_mock.go

import (
	"context"
	"errors"
	"fmt"

	"github.com/ytget/ytdl-helper/internal/config"
	"github.com/ytget/ytdl-helper/internal/logger"
	"github.com/ytget/ytdl-helper/internal/prompt"
)

// Decision is the outcome of the rights gate.
type Decision uint8

const (
	// DecisionDenied means the download must not proceed.
	DecisionDenied Decision = iota
	// DecisionAllowed means the download may proceed.
	DecisionAllowed
)

// Static error definitions for better error handling.
var (
	// ErrRightsDenied indicates the user did not confirm having rights to the content.
	ErrRightsDenied = errors.New("rights confirmation denied")
)

const confirmationQuestion = "Do you confirm you have the rights to download this content?"

// Gate decides whether a download invocation may proceed.
// It must be consulted exactly once per invocation, before any network
// or filesystem action, and never per playlist item.
type Gate interface {
	// Confirm returns the decision for the current invocation.
	// The error is non-nil only for prompt failures, never for a plain "no".
	Confirm(ctx context.Context) (Decision, error)
}

// GateImpl implements Gate on top of the resolved configuration
// and an injectable prompter.
type GateImpl struct {
	cfg      *config.Config
	prompter prompt.Prompter
}

// NewGate creates a rights gate for the given configuration.
func NewGate(cfg *config.Config, prompter prompt.Prompter) Gate {
	return &GateImpl{
		cfg:      cfg,
		prompter: prompter,
	}
}

// Confirm applies the decision ladder: explicit skip flag, then
// configuration-level affirmation, then a single interactive prompt.
// Any answer other than an explicit affirmative denies.
func (g *GateImpl) Confirm(ctx context.Context) (Decision, error) {
	if g.cfg.User.SkipRightsCheck {
		logger.Debug(ctx, "Rights check skipped by explicit flag")

		return DecisionAllowed, nil
	}

	if !g.cfg.User.ConfirmRights {
		logger.Debug(ctx, "Rights pre-confirmed by configuration")

		return DecisionAllowed, nil
	}

	logger.Info(ctx, "Only download content you own or have explicit permission to download.")

	confirmed, err := g.prompter.Confirm(ctx, confirmationQuestion)
	if err != nil {
		return DecisionDenied, fmt.Errorf("rights confirmation failed: %w", err)
	}

	if !confirmed {
		return DecisionDenied, nil
	}

	return DecisionAllowed, nil
}
