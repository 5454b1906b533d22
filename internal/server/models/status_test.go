package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessingStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    ProcessingStatus
		to      ProcessingStatus
		allowed bool
	}{
		{"pending to processing", StatusPending(), StatusProcessing(), true},
		{"pending straight to complete", StatusPending(), StatusComplete(), true},
		{"pending straight to failed", StatusPending(), StatusFailed("x"), true},
		{"processing to complete", StatusProcessing(), StatusComplete(), true},
		{"processing to failed", StatusProcessing(), StatusFailed("x"), true},
		{"processing back to pending", StatusProcessing(), StatusPending(), false},
		{"complete is terminal", StatusComplete(), StatusProcessing(), false},
		{"complete to failed", StatusComplete(), StatusFailed("x"), false},
		{"failed is terminal", StatusFailed("x"), StatusPending(), false},
		{"failed to complete", StatusFailed("x"), StatusComplete(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestProcessingStatus_StringRoundTrip(t *testing.T) {
	statuses := []ProcessingStatus{
		StatusPending(),
		StatusProcessing(),
		StatusComplete(),
		StatusFailed("thumbnailer crashed"),
	}

	for _, s := range statuses {
		parsed, err := ParseProcessingStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
}

func TestParseProcessingStatus_Unknown(t *testing.T) {
	_, err := ParseProcessingStatus("uploaded")
	assert.Error(t, err)
}

func TestProcessingStatus_ErrorMessage(t *testing.T) {
	msg, ok := StatusFailed("disk full").ErrorMessage()
	assert.True(t, ok)
	assert.Equal(t, "disk full", msg)

	_, ok = StatusComplete().ErrorMessage()
	assert.False(t, ok)
}
