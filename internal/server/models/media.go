package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/mediakeeper/internal/common"
)

// Media is the durable unit of the service: one uploaded file and its
// metadata. ID is server-assigned (monotonically increasing, 0 means
// unassigned). Writes replace the whole record; the processing status is
// mutated only through SetProcessingStatus.
type Media struct {
	ID               int64
	ContentDigest    ContentDigest
	OriginalFilename string
	MediaType        string
	StoragePath      string
	FileSize         int64
	ProcessingStatus ProcessingStatus
	OwnerID          string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewMedia creates an unsaved record in the Pending state.
func NewMedia(digest ContentDigest, filename, mediaType, storagePath string, fileSize int64, ownerID string) *Media {
	now := time.Now().UTC()
	return &Media{
		ContentDigest:    digest,
		OriginalFilename: filename,
		MediaType:        mediaType,
		StoragePath:      storagePath,
		FileSize:         fileSize,
		ProcessingStatus: StatusPending(),
		OwnerID:          ownerID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// SetProcessingStatus applies a status transition, rejecting moves the state
// machine does not permit, and refreshes UpdatedAt.
func (m *Media) SetProcessingStatus(next ProcessingStatus) error {
	if !m.ProcessingStatus.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, m.ProcessingStatus, next)
	}
	m.ProcessingStatus = next
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// IsReady reports whether the content may be served. Only Complete records
// are servable.
func (m *Media) IsReady() bool {
	return m.ProcessingStatus.IsComplete()
}
