// Package presign issues and validates self-contained upload capability
// URLs. A URL carries everything needed to verify it (token, expiry and an
// HMAC signature over the upload parameters), so validation never touches
// the database.
package presign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/mediakeeper/internal/common"
	"github.com/dmitrijs2005/mediakeeper/internal/server/models"
)

const (
	tokenPrefix      = "upload_"
	tokenRandomChars = 32

	// DefaultExpiration is the upload URL lifetime when none is configured.
	DefaultExpiration = 15 * time.Minute
)

var (
	// ErrExpired is returned when the URL's expiry timestamp has passed.
	ErrExpired = errors.New("upload url expired")

	// ErrInvalidSignature is returned when the signature does not match
	// the recomputed HMAC, including when it is absent.
	ErrInvalidSignature = errors.New("invalid signature")
)

// FileTooLargeError reports a requested upload exceeding the configured
// limit.
type FileTooLargeError struct {
	Size int64
	Max  int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file too large: %d bytes exceeds maximum %d", e.Size, e.Max)
}

// Service signs and validates upload sessions. Safe for concurrent use; it
// holds no mutable state.
type Service struct {
	secret      []byte
	baseURL     string
	expiration  time.Duration
	maxFileSize int64
}

// NewService creates a presigner. baseURL is the externally visible origin
// the upload URL is built on, without a trailing slash.
func NewService(secret string, baseURL string, expiration time.Duration, maxFileSize int64) *Service {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	return &Service{
		secret:      []byte(secret),
		baseURL:     strings.TrimRight(baseURL, "/"),
		expiration:  expiration,
		maxFileSize: maxFileSize,
	}
}

// MaxFileSize returns the configured upload size limit.
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

// CreateUploadSession issues a signed single-use upload capability for the
// given media record.
func (s *Service) CreateUploadSession(mediaID int64, filename, contentType string, size int64) (*models.UploadSession, error) {
	if size > s.maxFileSize {
		return nil, &FileTooLargeError{Size: size, Max: s.maxFileSize}
	}

	token, err := s.generateToken()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.expiration)
	signature := s.signPayload(token, mediaID, filename, contentType, size, expiresAt.Unix())

	uploadURL := fmt.Sprintf("%s/api/v1/media/upload/%s?signature=%s&expires=%d&size=%d&type=%s&media_id=%d",
		s.baseURL, token, signature, expiresAt.Unix(), size, url.QueryEscape(contentType), mediaID)

	return &models.UploadSession{
		MediaID:             mediaID,
		UploadToken:         token,
		Signature:           signature,
		UploadURL:           uploadURL,
		ExpiresAt:           expiresAt,
		MaxFileSize:         s.maxFileSize,
		ExpectedContentType: contentType,
	}, nil
}

// ValidateUploadURL checks an incoming upload request against its
// capability parameters. Expiry is checked before the signature so expired
// URLs are rejected as such even when tampered with.
func (s *Service) ValidateUploadURL(token, signature string, expiresUnix int64, mediaID int64, filename, contentType string, size int64) error {
	if time.Now().Unix() > expiresUnix {
		return ErrExpired
	}

	expected := s.signPayload(token, mediaID, filename, contentType, size, expiresUnix)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return ErrInvalidSignature
	}

	return nil
}

func (s *Service) generateToken() (string, error) {
	random, err := common.MakeRandAlphanumericString(tokenRandomChars)
	if err != nil {
		return "", fmt.Errorf("generating upload token: %w", err)
	}
	return tokenPrefix + random, nil
}

// signPayload computes the hex HMAC-SHA256 over the canonical pipe-joined
// upload parameters.
func (s *Service) signPayload(token string, mediaID int64, filename, contentType string, size, expiresUnix int64) string {
	payload := fmt.Sprintf("%s|%d|%s|%s|%d|%d", token, mediaID, filename, contentType, size, expiresUnix)
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
