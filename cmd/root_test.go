package cmd

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ytget/ytdl-helper/internal/config"
	"github.com/ytget/ytdl-helper/internal/request"
	"github.com/ytget/ytdl-helper/internal/rights"
	"github.com/ytget/ytdl-helper/internal/service/download"
)

// TestExitCodeForError tests the error-to-exit-code mapping, including
// wrapped errors, since callers add context while propagating.
func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "cancellation",
			err:      context.Canceled,
			expected: exitCodeCanceled,
		},
		{
			name:     "rights denied",
			err:      rights.ErrRightsDenied,
			expected: exitCodeRightsDenied,
		},
		{
			name:     "construction error",
			err:      request.ErrEmptyURL,
			expected: exitCodeConstruction,
		},
		{
			name:     "wrapped construction error",
			err:      fmt.Errorf("building request: %w", request.ErrUnsupportedScheme),
			expected: exitCodeConstruction,
		},
		{
			name:     "configuration error",
			err:      config.ErrEmptyFormat,
			expected: exitCodeConfiguration,
		},
		{
			name:     "download failure",
			err:      fmt.Errorf("%w: 2 item(s) failed", download.ErrDownloadFailed),
			expected: exitCodeDownloadFailure,
		},
		{
			name:     "generic error maps to download failure",
			err:      assert.AnError,
			expected: exitCodeDownloadFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, exitCodeForError(tt.err))
		})
	}
}
