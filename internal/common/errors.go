// Package common defines shared constants and sentinel errors used across
// the media service layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound            = errors.New("not found")
	ErrDatabaseUnavailable = errors.New("database unavailable")

	// Service-level errors (generic/internal flow control).
	ErrInternal   = errors.New("internal error")
	ErrBadRequest = errors.New("bad request")

	// Media lifecycle errors.
	ErrNotReady          = errors.New("media is not ready for serving")
	ErrInvalidTransition = errors.New("invalid processing status transition")
)
