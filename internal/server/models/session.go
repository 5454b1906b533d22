package models

import "time"

// UploadSession is an ephemeral, signed upload capability. It is handed to
// the client inside the upload URL and never persisted; validity is
// re-derived from its parameters on every check.
type UploadSession struct {
	MediaID             int64
	UploadToken         string
	Signature           string
	UploadURL           string
	ExpiresAt           time.Time
	MaxFileSize         int64
	ExpectedContentType string
}
