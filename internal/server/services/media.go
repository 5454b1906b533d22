package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/mediakeeper/internal/common"
	"github.com/dmitrijs2005/mediakeeper/internal/logging"
	"github.com/dmitrijs2005/mediakeeper/internal/server/models"
	"github.com/dmitrijs2005/mediakeeper/internal/server/presign"
	"github.com/dmitrijs2005/mediakeeper/internal/server/repositories/media"
	"github.com/dmitrijs2005/mediakeeper/internal/server/storage"
)

// placeholderStoragePath marks records created by InitiateUpload whose
// content has not arrived yet.
const placeholderStoragePath = "pending"

// deniedExtensions are never accepted regardless of declared content type.
var deniedExtensions = map[string]struct{}{
	".exe": {}, ".bat": {}, ".cmd": {}, ".com": {}, ".sh": {},
	".php": {}, ".js": {}, ".jar": {}, ".msi": {}, ".scr": {},
}

// UploadRequest describes a direct or initiated upload.
type UploadRequest struct {
	OwnerID     string
	Filename    string
	ContentType string
	Size        int64

	// DeclaredDigest, when non-empty, must match the hashed content.
	DeclaredDigest string
}

// Download bundles a blob stream with its record.
type Download struct {
	Media   *models.Media
	Content io.ReadCloser
}

// HealthReport is the aggregated component status.
type HealthReport struct {
	Database bool
	Storage  bool
	Detail   string
}

func (h HealthReport) Healthy() bool { return h.Database && h.Storage }

// MediaService implements the upload, download and listing use cases over
// the repository, the blob store and the presigner.
type MediaService struct {
	repo    media.Repository
	store   storage.FileStorage
	presign *presign.Service
	logger  logging.Logger
}

func NewMediaService(repo media.Repository, store storage.FileStorage, presigner *presign.Service, logger logging.Logger) *MediaService {
	return &MediaService{
		repo:    repo,
		store:   store,
		presign: presigner,
		logger:  logger,
	}
}

// validateRequest enforces the request-level rules shared by initiated and
// direct uploads.
func (s *MediaService) validateRequest(req UploadRequest) error {
	if req.OwnerID == "" {
		return fmt.Errorf("%w: missing owner id", common.ErrBadRequest)
	}
	if strings.TrimSpace(req.Filename) == "" {
		return fmt.Errorf("%w: filename is required", common.ErrBadRequest)
	}
	if _, denied := deniedExtensions[strings.ToLower(filepath.Ext(req.Filename))]; denied {
		return fmt.Errorf("%w: file extension not allowed", common.ErrBadRequest)
	}
	if req.ContentType == "" || !strings.Contains(req.ContentType, "/") {
		return fmt.Errorf("%w: invalid content type %q", common.ErrBadRequest, req.ContentType)
	}
	if req.Size <= 0 {
		return fmt.Errorf("%w: size must be positive", common.ErrBadRequest)
	}
	if max := s.presign.MaxFileSize(); req.Size > max {
		return &presign.FileTooLargeError{Size: req.Size, Max: max}
	}
	return nil
}

// InitiateUpload validates the request, saves a pending placeholder record
// to obtain its id, and issues a signed upload capability for it.
func (s *MediaService) InitiateUpload(ctx context.Context, req UploadRequest) (*models.UploadSession, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	m := models.NewMedia(models.ZeroContentDigest(), req.Filename, req.ContentType,
		placeholderStoragePath, req.Size, req.OwnerID)
	id, err := s.repo.Save(ctx, m)
	if err != nil {
		return nil, err
	}

	session, err := s.presign.CreateUploadSession(id, req.Filename, req.ContentType, req.Size)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "upload initiated", "media_id", id, "owner", req.OwnerID,
		"filename", req.Filename, "expires_at", session.ExpiresAt)
	return session, nil
}

// CompleteUploadRequest carries the capability parameters of a presigned
// PUT together with the request body.
type CompleteUploadRequest struct {
	Token       string
	Signature   string
	ExpiresUnix int64
	Size        int64
	ContentType string
	MediaID     int64
	Content     io.Reader
}

// CompleteUpload finishes an initiated upload: the capability is validated
// against the placeholder record, the content is hashed, sniffed and
// stored, and the record is promoted to Complete.
func (s *MediaService) CompleteUpload(ctx context.Context, req CompleteUploadRequest) (*models.Media, error) {
	m, err := s.repo.FindByID(ctx, req.MediaID)
	if err != nil {
		return nil, err
	}
	if !m.ProcessingStatus.IsPending() {
		return nil, fmt.Errorf("%w: upload already completed", common.ErrBadRequest)
	}

	if err := s.presign.ValidateUploadURL(req.Token, req.Signature, req.ExpiresUnix,
		m.ID, m.OriginalFilename, m.MediaType, req.Size); err != nil {
		return nil, err
	}

	digest, data, err := storage.DigestAndBuffer(req.Content)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) != req.Size {
		return nil, fmt.Errorf("%w: body is %d bytes, signed size is %d",
			common.ErrBadRequest, len(data), req.Size)
	}
	if err := storage.ValidateContentType(data, m.OriginalFilename, req.ContentType); err != nil {
		return nil, err
	}

	path, err := s.store.Store(ctx, digest, bytes.NewReader(data))
	if err != nil {
		s.failUpload(ctx, m, err)
		return nil, err
	}

	m.ContentDigest = digest
	m.StoragePath = path
	m.FileSize = int64(len(data))
	if err := m.SetProcessingStatus(models.StatusComplete()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		s.rollbackBlob(ctx, digest)
		return nil, err
	}

	s.logger.Info(ctx, "upload completed", "media_id", m.ID, "digest", digest.String(),
		"size", m.FileSize)
	return m, nil
}

// rollbackBlob removes a just-stored blob after a failed record write.
// Storage deduplicates by digest, so the blob may predate this upload and
// back another record; it is removed only when no record references the
// digest. An orphaned blob is left behind when the reference check fails.
func (s *MediaService) rollbackBlob(ctx context.Context, digest models.ContentDigest) {
	shared, err := s.repo.ExistsByContentDigest(ctx, digest)
	if err != nil {
		s.logger.Warn(ctx, "could not check digest references, keeping blob",
			"digest", digest.String(), "error", err)
		return
	}
	if shared {
		return
	}
	if _, err := s.store.Delete(ctx, digest); err != nil {
		s.logger.Error(ctx, "orphaned blob after failed record write",
			"digest", digest.String(), "error", err)
	}
}

// failUpload marks the record Failed, best effort.
func (s *MediaService) failUpload(ctx context.Context, m *models.Media, cause error) {
	if err := m.SetProcessingStatus(models.StatusFailed(cause.Error())); err != nil {
		return
	}
	if err := s.repo.Update(ctx, m); err != nil {
		s.logger.Error(ctx, "could not record upload failure", "media_id", m.ID, "error", err)
	}
}

// Upload stores content synchronously in a single call. Identical content
// already owned by anyone is deduplicated at the storage layer; an
// identical record for this digest is returned as-is.
func (s *MediaService) Upload(ctx context.Context, req UploadRequest, content io.Reader) (*models.Media, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	digest, data, err := storage.DigestAndBuffer(content)
	if err != nil {
		return nil, err
	}
	if req.DeclaredDigest != "" && !strings.EqualFold(req.DeclaredDigest, digest.String()) {
		return nil, fmt.Errorf("%w: declared %s, computed %s",
			storage.ErrDigestMismatch, req.DeclaredDigest, digest.String())
	}
	if err := storage.ValidateContentType(data, req.Filename, req.ContentType); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByContentDigest(ctx, digest)
	if err == nil {
		s.logger.Debug(ctx, "duplicate content, returning existing record",
			"media_id", existing.ID, "digest", digest.String())
		return existing, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	path, err := s.store.Store(ctx, digest, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	m := models.NewMedia(digest, req.Filename, req.ContentType, path, int64(len(data)), req.OwnerID)
	if err := m.SetProcessingStatus(models.StatusComplete()); err != nil {
		return nil, err
	}
	if _, err := s.repo.Save(ctx, m); err != nil {
		s.rollbackBlob(ctx, digest)
		return nil, err
	}

	s.logger.Info(ctx, "media uploaded", "media_id", m.ID, "digest", digest.String(),
		"size", m.FileSize)
	return m, nil
}

// Download streams a completed media record's content.
func (s *MediaService) Download(ctx context.Context, id int64) (*Download, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.IsReady() {
		return nil, fmt.Errorf("%w: media %d is not ready", common.ErrNotReady, id)
	}

	rc, err := s.store.Retrieve(ctx, m.ContentDigest)
	if err != nil {
		return nil, err
	}
	return &Download{Media: m, Content: rc}, nil
}

// Get returns the record without its content.
func (s *MediaService) Get(ctx context.Context, id int64) (*models.Media, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns every record owned by ownerID.
func (s *MediaService) List(ctx context.Context, ownerID string) ([]*models.Media, error) {
	return s.repo.FindByUser(ctx, ownerID)
}

// ListPaginated returns one page of the owner's records.
func (s *MediaService) ListPaginated(ctx context.Context, ownerID string, opts media.ListOptions) (*media.Page, error) {
	return s.repo.FindByUserPaginated(ctx, ownerID, opts)
}

// Delete removes the record and, when no other record references the same
// content, the blob. A blob already gone is not an error.
func (s *MediaService) Delete(ctx context.Context, id int64) error {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return common.ErrNotFound
	}

	if m.ContentDigest.IsZero() {
		return nil
	}
	shared, err := s.repo.ExistsByContentDigest(ctx, m.ContentDigest)
	if err != nil {
		s.logger.Warn(ctx, "could not check digest references, keeping blob",
			"digest", m.ContentDigest.String(), "error", err)
		return nil
	}
	if shared {
		return nil
	}
	if _, err := s.store.Delete(ctx, m.ContentDigest); err != nil {
		s.logger.Warn(ctx, "record deleted but blob removal failed",
			"digest", m.ContentDigest.String(), "error", err)
	}
	return nil
}

// AttachMedia links an existing media record to a cookbook entity.
func (s *MediaService) AttachMedia(ctx context.Context, mediaID int64, kind media.LinkKind, targetID string) error {
	if targetID == "" {
		return fmt.Errorf("%w: missing target id", common.ErrBadRequest)
	}
	if _, err := s.repo.FindByID(ctx, mediaID); err != nil {
		return err
	}
	return s.repo.Attach(ctx, mediaID, kind, targetID)
}

// MediaByRecipe returns ids of media attached to a recipe.
func (s *MediaService) MediaByRecipe(ctx context.Context, recipeID string) ([]int64, error) {
	return s.repo.FindIDsByRecipe(ctx, recipeID)
}

// MediaByIngredient returns ids of media attached to a recipe ingredient.
func (s *MediaService) MediaByIngredient(ctx context.Context, ingredientID string) ([]int64, error) {
	return s.repo.FindIDsByRecipeIngredient(ctx, ingredientID)
}

// MediaByStep returns ids of media attached to a recipe step.
func (s *MediaService) MediaByStep(ctx context.Context, stepID string) ([]int64, error) {
	return s.repo.FindIDsByRecipeStep(ctx, stepID)
}

// HealthCheck probes the repository and the blob store with a shared
// deadline.
func (s *MediaService) HealthCheck(ctx context.Context) HealthReport {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	report := HealthReport{Database: true, Storage: true}
	if err := s.repo.HealthCheck(ctx); err != nil {
		report.Database = false
		report.Detail = err.Error()
	}
	if err := s.store.HealthCheck(ctx); err != nil {
		report.Storage = false
		if report.Detail != "" {
			report.Detail += "; "
		}
		report.Detail += err.Error()
	}
	return report
}
