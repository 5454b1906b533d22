package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/mediakeeper/internal/common"
)

func newTestMedia(t *testing.T) *Media {
	t.Helper()
	d, err := NewContentDigest(testDigestHex)
	require.NoError(t, err)
	return NewMedia(d, "photo.jpg", "image/jpeg", d.StoragePath(), 1024, uuid.NewString())
}

func TestNewMedia_StartsPendingAndUnassigned(t *testing.T) {
	m := newTestMedia(t)

	assert.Equal(t, int64(0), m.ID)
	assert.True(t, m.ProcessingStatus.IsPending())
	assert.False(t, m.IsReady())
	assert.WithinDuration(t, time.Now().UTC(), m.CreatedAt, time.Second)
	assert.Equal(t, m.CreatedAt, m.UpdatedAt)
}

func TestMedia_SetProcessingStatus_LegalPath(t *testing.T) {
	m := newTestMedia(t)

	require.NoError(t, m.SetProcessingStatus(StatusProcessing()))
	require.NoError(t, m.SetProcessingStatus(StatusComplete()))
	assert.True(t, m.IsReady())
}

func TestMedia_SetProcessingStatus_PendingStraightToComplete(t *testing.T) {
	m := newTestMedia(t)

	require.NoError(t, m.SetProcessingStatus(StatusComplete()))
	assert.True(t, m.IsReady())
}

func TestMedia_SetProcessingStatus_RejectsIllegalTransition(t *testing.T) {
	m := newTestMedia(t)

	require.NoError(t, m.SetProcessingStatus(StatusComplete()))

	err := m.SetProcessingStatus(StatusProcessing())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
	assert.True(t, m.IsReady(), "status must be unchanged after a rejected transition")
}

func TestMedia_SetProcessingStatus_TouchesUpdatedAt(t *testing.T) {
	m := newTestMedia(t)
	created := m.UpdatedAt

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, m.SetProcessingStatus(StatusFailed("broken pipe")))

	assert.True(t, m.UpdatedAt.After(created))
	assert.False(t, m.IsReady())
}
