package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ytget/ytdl-helper/internal/request"
)

// TestOutcomeStatus_String tests the status names.
func TestOutcomeStatus_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   OutcomeStatus
		expected string
	}{
		{
			name:     "success",
			status:   OutcomeStatusSuccess,
			expected: "success",
		},
		{
			name:     "partial failure",
			status:   OutcomeStatusPartialFailure,
			expected: "partial failure",
		},
		{
			name:     "fatal",
			status:   OutcomeStatusFatal,
			expected: "fatal",
		},
		{
			name:     "unknown",
			status:   OutcomeStatus(42),
			expected: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.status.String())
		})
	}
}

// TestOutcome_ItemAccessors tests Files, Succeeded, and Failed.
func TestOutcome_ItemAccessors(t *testing.T) {
	t.Parallel()

	outcome := &Outcome{
		Status: OutcomeStatusPartialFailure,
		Items: []ItemResult{
			{Index: 1, Title: "first", Path: "/tmp/first.mp4"},
			{Index: 2, Title: "second", Err: assert.AnError},
			{Index: 3, Title: "third", Path: "/tmp/third.mp4"},
		},
	}

	assert.Equal(t, []string{"/tmp/first.mp4", "/tmp/third.mp4"}, outcome.Files())
	assert.Len(t, outcome.Succeeded(), 2)
	assert.Len(t, outcome.Failed(), 1)
	assert.Equal(t, "second", outcome.Failed()[0].Title)
}

// TestOutcome_EmptyAccessors tests the accessors on an empty outcome.
func TestOutcome_EmptyAccessors(t *testing.T) {
	t.Parallel()

	outcome := &Outcome{Status: OutcomeStatusFatal, Err: assert.AnError}

	assert.Empty(t, outcome.Files())
	assert.Empty(t, outcome.Succeeded())
	assert.Empty(t, outcome.Failed())
}

// TestDownloadRequest_IsPlaylist tests the playlist predicate on requests.
func TestDownloadRequest_IsPlaylist(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		req      request.DownloadRequest
		expected bool
	}{
		{
			name:     "expansion allowed with multi-item cap",
			req:      request.DownloadRequest{AllowPlaylist: true, MaxItems: 5},
			expected: true,
		},
		{
			name:     "expansion allowed but capped to one",
			req:      request.DownloadRequest{AllowPlaylist: true, MaxItems: 1},
			expected: false,
		},
		{
			name:     "expansion disallowed",
			req:      request.DownloadRequest{AllowPlaylist: false, MaxItems: 10},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.req.IsPlaylist())
		})
	}
}
