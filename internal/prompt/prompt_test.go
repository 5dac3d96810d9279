package prompt

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPrompter builds a prompter backed by in-memory buffers.
func newTestPrompter(input string, interactive bool) (*TerminalPrompter, *bytes.Buffer) {
	out := new(bytes.Buffer)

	return &TerminalPrompter{
		in:            strings.NewReader(input),
		out:           out,
		isInteractive: interactive,
	}, out
}

// TestAsk tests question printing and answer trimming.
func TestAsk(t *testing.T) {
	t.Parallel()

	prompter, out := newTestPrompter("  some answer  \n", true)

	answer, err := prompter.Ask(context.Background(), "What?")
	require.NoError(t, err)

	assert.Equal(t, "some answer", answer)
	assert.Contains(t, out.String(), "What?")
}

// TestAsk_NonInteractive tests that prompts fail fast without a terminal.
func TestAsk_NonInteractive(t *testing.T) {
	t.Parallel()

	prompter, _ := newTestPrompter("y\n", false)

	_, err := prompter.Ask(context.Background(), "What?")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNonInteractive)
}

// TestAsk_CanceledContext tests that a canceled context short-circuits the prompt.
func TestAsk_CanceledContext(t *testing.T) {
	t.Parallel()

	prompter, out := newTestPrompter("y\n", true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := prompter.Ask(ctx, "What?")
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String(), "nothing should be printed after cancellation")
}

// TestAsk_AnswerWithoutTrailingNewline tests that EOF-terminated answers still count.
func TestAsk_AnswerWithoutTrailingNewline(t *testing.T) {
	t.Parallel()

	prompter, _ := newTestPrompter("yes", true)

	answer, err := prompter.Ask(context.Background(), "What?")
	require.NoError(t, err)
	assert.Equal(t, "yes", answer)
}

// TestConfirm tests that only explicit affirmatives confirm.
func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{
			name:     "lowercase y",
			input:    "y\n",
			expected: true,
		},
		{
			name:     "uppercase yes",
			input:    "YES\n",
			expected: true,
		},
		{
			name:     "mixed case yes",
			input:    "Yes\n",
			expected: true,
		},
		{
			name:     "explicit no",
			input:    "n\n",
			expected: false,
		},
		{
			name:     "empty answer defaults to no",
			input:    "\n",
			expected: false,
		},
		{
			name:     "garbage defaults to no",
			input:    "sure, whatever\n",
			expected: false,
		},
		{
			name:     "affirmative with surrounding whitespace",
			input:    "  y  \n",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			prompter, out := newTestPrompter(tt.input, true)

			confirmed, err := prompter.Confirm(context.Background(), "Proceed?")
			require.NoError(t, err)

			assert.Equal(t, tt.expected, confirmed)
			assert.Contains(t, out.String(), "[y/N]", "the default answer must be visible")
		})
	}
}
