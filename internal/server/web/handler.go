package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/mediakeeper/internal/common"
	"github.com/dmitrijs2005/mediakeeper/internal/server/models"
	"github.com/dmitrijs2005/mediakeeper/internal/server/presign"
	"github.com/dmitrijs2005/mediakeeper/internal/server/repositories/media"
	"github.com/dmitrijs2005/mediakeeper/internal/server/services"
	"github.com/dmitrijs2005/mediakeeper/internal/server/storage"
)

// MediaUseCases is the service surface the handler depends on.
type MediaUseCases interface {
	InitiateUpload(ctx context.Context, req services.UploadRequest) (*models.UploadSession, error)
	CompleteUpload(ctx context.Context, req services.CompleteUploadRequest) (*models.Media, error)
	Upload(ctx context.Context, req services.UploadRequest, content io.Reader) (*models.Media, error)
	Download(ctx context.Context, id int64) (*services.Download, error)
	Get(ctx context.Context, id int64) (*models.Media, error)
	ListPaginated(ctx context.Context, ownerID string, opts media.ListOptions) (*media.Page, error)
	Delete(ctx context.Context, id int64) error
	AttachMedia(ctx context.Context, mediaID int64, kind media.LinkKind, targetID string) error
	MediaByRecipe(ctx context.Context, recipeID string) ([]int64, error)
	MediaByIngredient(ctx context.Context, ingredientID string) ([]int64, error)
	MediaByStep(ctx context.Context, stepID string) ([]int64, error)
	HealthCheck(ctx context.Context) services.HealthReport
}

// MediaHandler exposes the media use cases over HTTP. Authentication is
// handled upstream; the owner id arrives in a trusted header.
type MediaHandler struct {
	svc MediaUseCases
}

func NewMediaHandler(svc MediaUseCases) *MediaHandler {
	return &MediaHandler{svc: svc}
}

func (h *MediaHandler) Register(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.POST("/media", h.initiateUpload)
	g.PUT("/media/upload/:token", h.completeUpload)
	g.POST("/media/direct", h.directUpload)
	g.GET("/media", h.listMedia)
	g.GET("/media/:id", h.getMedia)
	g.GET("/media/:id/download", h.downloadMedia)
	g.DELETE("/media/:id", h.deleteMedia)
	g.GET("/recipes/:id/media", h.mediaByRecipe)
	g.POST("/recipes/:id/media/:mediaID", h.attachMedia(media.LinkRecipe))
	g.GET("/ingredients/:id/media", h.mediaByIngredient)
	g.POST("/ingredients/:id/media/:mediaID", h.attachMedia(media.LinkIngredient))
	g.GET("/steps/:id/media", h.mediaByStep)
	g.POST("/steps/:id/media/:mediaID", h.attachMedia(media.LinkStep))

	e.GET("/health", h.health)
}

type initiateUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type uploadSessionResponse struct {
	MediaID     int64     `json:"media_id"`
	UploadURL   string    `json:"upload_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	MaxFileSize int64     `json:"max_file_size"`
}

type mediaResponse struct {
	ID          int64     `json:"id"`
	Digest      string    `json:"content_digest"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type mediaListResponse struct {
	Items      []mediaResponse `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
	HasMore    bool            `json:"has_more"`
}

type mediaIDsResponse struct {
	MediaIDs []int64 `json:"media_ids"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Database bool   `json:"database"`
	Storage  bool   `json:"storage"`
	Detail   string `json:"detail,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toMediaResponse(m *models.Media) mediaResponse {
	return mediaResponse{
		ID:          m.ID,
		Digest:      m.ContentDigest.String(),
		Filename:    m.OriginalFilename,
		ContentType: m.MediaType,
		Size:        m.FileSize,
		Status:      m.ProcessingStatus.String(),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ownerID(c echo.Context) (string, error) {
	id := c.Request().Header.Get(common.OwnerIDHeaderName)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing owner header")
	}
	return id, nil
}

// writeError maps domain errors onto HTTP status codes.
func writeError(c echo.Context, err error) error {
	var tooLarge *presign.FileTooLargeError

	switch {
	case errors.As(err, &tooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrNotFound) || errors.Is(err, storage.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrBadRequest):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, presign.ErrExpired), errors.Is(err, presign.ErrInvalidSignature):
		return c.JSON(http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, storage.ErrContentTypeMismatch), errors.Is(err, storage.ErrDigestMismatch):
		return c.JSON(http.StatusUnsupportedMediaType, errorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrNotReady):
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrDatabaseUnavailable):
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: common.ErrInternal.Error()})
	}
}

func (h *MediaHandler) initiateUpload(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	var req initiateUploadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}

	session, err := h.svc.InitiateUpload(c.Request().Context(), services.UploadRequest{
		OwnerID:     owner,
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, uploadSessionResponse{
		MediaID:     session.MediaID,
		UploadURL:   session.UploadURL,
		ExpiresAt:   session.ExpiresAt,
		MaxFileSize: session.MaxFileSize,
	})
}

func (h *MediaHandler) completeUpload(c echo.Context) error {
	expires, err := strconv.ParseInt(c.QueryParam("expires"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed expires parameter"})
	}
	size, err := strconv.ParseInt(c.QueryParam("size"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed size parameter"})
	}
	mediaID, err := strconv.ParseInt(c.QueryParam("media_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed media_id parameter"})
	}

	m, err := h.svc.CompleteUpload(c.Request().Context(), services.CompleteUploadRequest{
		Token:       c.Param("token"),
		Signature:   c.QueryParam("signature"),
		ExpiresUnix: expires,
		Size:        size,
		ContentType: c.QueryParam("type"),
		MediaID:     mediaID,
		// one extra byte so an oversized body surfaces as a size mismatch
		Content:     io.LimitReader(c.Request().Body, size+1),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, toMediaResponse(m))
}

func (h *MediaHandler) directUpload(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	size := c.Request().ContentLength
	m, err := h.svc.Upload(c.Request().Context(), services.UploadRequest{
		OwnerID:        owner,
		Filename:       c.QueryParam("filename"),
		ContentType:    c.Request().Header.Get(echo.HeaderContentType),
		Size:           size,
		DeclaredDigest: c.QueryParam("digest"),
	}, c.Request().Body)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, toMediaResponse(m))
}

func (h *MediaHandler) listMedia(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed limit parameter"})
		}
	}

	page, err := h.svc.ListPaginated(c.Request().Context(), owner, media.ListOptions{
		Limit:  limit,
		Cursor: c.QueryParam("cursor"),
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return writeError(c, err)
	}

	resp := mediaListResponse{
		Items:      make([]mediaResponse, 0, len(page.Records)),
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}
	for _, m := range page.Records {
		resp.Items = append(resp.Items, toMediaResponse(m))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *MediaHandler) getMedia(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toMediaResponse(m))
}

func (h *MediaHandler) downloadMedia(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	dl, err := h.svc.Download(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	defer dl.Content.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+dl.Media.OriginalFilename+`"`)
	return c.Stream(http.StatusOK, dl.Media.MediaType, dl.Content)
}

func (h *MediaHandler) deleteMedia(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *MediaHandler) attachMedia(kind media.LinkKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		mediaID, err := strconv.ParseInt(c.Param("mediaID"), 10, 64)
		if err != nil || mediaID <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "malformed media id")
		}

		if err := h.svc.AttachMedia(c.Request().Context(), mediaID, kind, c.Param("id")); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func (h *MediaHandler) mediaByRecipe(c echo.Context) error {
	ids, err := h.svc.MediaByRecipe(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, mediaIDsResponse{MediaIDs: ids})
}

func (h *MediaHandler) mediaByIngredient(c echo.Context) error {
	ids, err := h.svc.MediaByIngredient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, mediaIDsResponse{MediaIDs: ids})
}

func (h *MediaHandler) mediaByStep(c echo.Context) error {
	ids, err := h.svc.MediaByStep(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, mediaIDsResponse{MediaIDs: ids})
}

func (h *MediaHandler) health(c echo.Context) error {
	report := h.svc.HealthCheck(c.Request().Context())

	resp := healthResponse{
		Status:   "ok",
		Database: report.Database,
		Storage:  report.Storage,
		Detail:   report.Detail,
	}
	status := http.StatusOK
	if !report.Healthy() {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, resp)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "malformed media id")
	}
	return id, nil
}
