package engine

import (
	"testing"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ytget/ytdl-helper/internal/config"
)

func newTestEngine(t *testing.T, configOverrides ...func(*config.Config)) *YTDLPEngine {
	t.Helper()

	cfg := config.Default()
	for _, override := range configOverrides {
		override(cfg)
	}

	eng, err := NewYTDLPEngine(cfg)
	require.NoError(t, err)

	impl, ok := eng.(*YTDLPEngine)
	require.True(t, ok)

	return impl
}

// TestBuildOutcome_Policy tests the outcome classification policy:
// no completed items next to a failure is fatal, a failure next to
// completed items is partial, no failures at all is success. Item-level
// failures count even when the engine exited cleanly.
func TestBuildOutcome_Policy(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t)

	t.Run("no items and no error is a success with no items", func(t *testing.T) {
		t.Parallel()

		outcome := eng.buildOutcome(nil, nil)
		assert.Equal(t, OutcomeStatusSuccess, outcome.Status)
		assert.Empty(t, outcome.Items)
		require.NoError(t, outcome.Err)
	})

	t.Run("no items and an error is fatal", func(t *testing.T) {
		t.Parallel()

		outcome := eng.buildOutcome(nil, assert.AnError)
		assert.Equal(t, OutcomeStatusFatal, outcome.Status)
		assert.Empty(t, outcome.Items)
		require.ErrorIs(t, outcome.Err, assert.AnError)
	})

	t.Run("clean exit with only failed items is fatal", func(t *testing.T) {
		t.Parallel()

		items := []ItemResult{
			{Index: 1, Title: "first", Err: ErrNoMediaInfo},
			{Index: 2, Title: "second", Err: ErrNoMediaInfo},
		}

		outcome := eng.buildOutcome(items, nil)
		assert.Equal(t, OutcomeStatusFatal, outcome.Status)
		assert.Len(t, outcome.Items, 2)
		require.ErrorIs(t, outcome.Err, ErrNoMediaInfo)
	})

	t.Run("clean exit with mixed items is a partial failure", func(t *testing.T) {
		t.Parallel()

		items := []ItemResult{
			{Index: 1, Title: "kept", Path: "/tmp/kept.mp4"},
			{Index: 2, Title: "lost", Err: ErrNoMediaInfo},
		}

		outcome := eng.buildOutcome(items, nil)
		assert.Equal(t, OutcomeStatusPartialFailure, outcome.Status)
		assert.Len(t, outcome.Items, 2)
		require.ErrorIs(t, outcome.Err, ErrNoMediaInfo)
	})

	t.Run("engine error with completed items appends the failure", func(t *testing.T) {
		t.Parallel()

		items := []ItemResult{
			{Index: 1, Title: "kept", Path: "/tmp/kept.mp4"},
		}

		outcome := eng.buildOutcome(items, assert.AnError)
		assert.Equal(t, OutcomeStatusPartialFailure, outcome.Status)
		assert.Len(t, outcome.Items, 2)
		require.ErrorIs(t, outcome.Items[1].Err, assert.AnError)
		require.ErrorIs(t, outcome.Err, assert.AnError)
	})
}

// TestMapMediaInfo tests the extracted-info mapping, including the
// playlist detection and the per-format fields.
func TestMapMediaInfo(t *testing.T) {
	t.Parallel()

	title := "some video"
	uploader := "someone"
	thumbnail := "https://example.com/cover.jpg"
	duration := 90.0
	formatID := "22"
	extension := "mp4"
	resolution := "1280x720"

	t.Run("single media entry", func(t *testing.T) {
		t.Parallel()

		extracted := []*ytdlp.ExtractedInfo{{
			Title:     &title,
			Uploader:  &uploader,
			Thumbnail: &thumbnail,
			Duration:  &duration,
			Formats: []*ytdlp.ExtractedFormat{
				nil,
				{FormatID: &formatID, Extension: &extension, Resolution: &resolution},
			},
		}}

		info := mapMediaInfo("https://example.com/watch?v=abc", extracted)

		assert.Equal(t, "https://example.com/watch?v=abc", info.URL)
		assert.Equal(t, "some video", info.Title)
		assert.Equal(t, "someone", info.Uploader)
		assert.Equal(t, "https://example.com/cover.jpg", info.ThumbnailURL)
		assert.Equal(t, 90*time.Second, info.Duration)
		assert.False(t, info.IsPlaylist)

		require.Len(t, info.Formats, 1)
		assert.Equal(t, "22", info.Formats[0].ID)
		assert.Equal(t, "mp4", info.Formats[0].Extension)
		assert.Equal(t, "1280x720", info.Formats[0].Resolution)
	})

	t.Run("playlist type marks a playlist", func(t *testing.T) {
		t.Parallel()

		extracted := []*ytdlp.ExtractedInfo{{Type: "playlist"}}

		info := mapMediaInfo("https://example.com/playlist?list=PL1", extracted)
		assert.True(t, info.IsPlaylist)
		assert.Equal(t, 1, info.EntryCount)
	})

	t.Run("multiple entries mark a playlist", func(t *testing.T) {
		t.Parallel()

		extracted := []*ytdlp.ExtractedInfo{{Title: &title}, {Title: &title}}

		info := mapMediaInfo("https://example.com/playlist?list=PL1", extracted)
		assert.True(t, info.IsPlaylist)
		assert.Equal(t, 2, info.EntryCount)
	})
}

// TestIsProgressEnabled tests that quiet mode suppresses the progress bar.
func TestIsProgressEnabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		level    zapcore.Level
		expected bool
	}{
		{
			name:     "debug level shows progress",
			level:    zapcore.DebugLevel,
			expected: true,
		},
		{
			name:     "info level shows progress",
			level:    zapcore.InfoLevel,
			expected: true,
		},
		{
			name:     "error level hides progress",
			level:    zapcore.ErrorLevel,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			eng := newTestEngine(t, func(cfg *config.Config) {
				cfg.ParsedLogLevel = tt.level
			})

			assert.Equal(t, tt.expected, eng.isProgressEnabled())
		})
	}
}

// TestStrValue tests optional string dereferencing.
func TestStrValue(t *testing.T) {
	t.Parallel()

	value := "hello"

	assert.Equal(t, "hello", strValue(&value))
	assert.Empty(t, strValue(nil))
}
