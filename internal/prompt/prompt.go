// Package prompt abstracts interactive terminal input so that components
// needing user confirmation can be tested without a terminal.
package prompt

//go:generate $MOCKGEN -source=prompt.go -destination=mocks/prompt_mock.go

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Prompter defines the interface for blocking interactive questions.
type Prompter interface {
	// Ask prints the question and returns the trimmed answer line.
	Ask(ctx context.Context, question string) (string, error)
	// Confirm asks a yes/no question. Only an explicit affirmative
	// ("y" or "yes", case-insensitive) returns true.
	Confirm(ctx context.Context, question string) (bool, error)
}

// Static error definitions for better error handling.
var (
	// ErrNonInteractive indicates that a prompt was required but stdin is not a terminal.
	ErrNonInteractive = errors.New("input required but stdin is not a terminal")
)

// TerminalPrompter reads answers from a terminal. There is deliberately no
// timeout: prompts block until answered or the context is canceled upstream.
type TerminalPrompter struct {
	in            io.Reader
	out           io.Writer
	isInteractive bool
}

// NewTerminalPrompter creates a prompter bound to stdin/stderr.
// When stdin is not a TTY, every prompt fails with ErrNonInteractive
// instead of hanging a non-interactive invocation.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{
		in:  os.Stdin,
		out: os.Stderr,
		isInteractive: isatty.IsTerminal(os.Stdin.Fd()) ||
			isatty.IsCygwinTerminal(os.Stdin.Fd()),
	}
}

// Ask prints the question and returns the trimmed answer line.
func (p *TerminalPrompter) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if !p.isInteractive {
		return "", ErrNonInteractive
	}

	fmt.Fprintf(p.out, "%s ", question)

	reader := bufio.NewReader(p.in)

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. Only an explicit affirmative returns true.
func (p *TerminalPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	answer, err := p.Ask(ctx, question+" [y/N]:")
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
