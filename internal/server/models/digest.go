// Package models contains the domain types shared by the media server:
// content digests, processing statuses, media records and upload sessions.
package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// DigestHexLength is the length of a SHA-256 digest in hex form.
const DigestHexLength = 64

var (
	ErrInvalidDigestLength     = errors.New("invalid digest length")
	ErrInvalidDigestCharacters = errors.New("digest must contain only hexadecimal characters")
)

// ContentDigest is a validated, lowercase 64-character hex SHA-256 digest.
// It identifies file content and seeds the storage path.
type ContentDigest struct {
	value string
}

// NewContentDigest validates hex and normalizes case. Any other length or
// character set is rejected.
func NewContentDigest(hex string) (ContentDigest, error) {
	if len(hex) != DigestHexLength {
		return ContentDigest{}, fmt.Errorf("%w: expected %d characters, got %d",
			ErrInvalidDigestLength, DigestHexLength, len(hex))
	}

	lower := strings.ToLower(hex)
	for _, c := range lower {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return ContentDigest{}, ErrInvalidDigestCharacters
		}
	}

	return ContentDigest{value: lower}, nil
}

// ZeroContentDigest returns the all-zero digest used as a placeholder for
// records created before their content arrives.
func ZeroContentDigest() ContentDigest {
	return ContentDigest{value: strings.Repeat("0", DigestHexLength)}
}

func (d ContentDigest) String() string {
	return d.value
}

// IsZero reports whether the digest is unset or the all-zero placeholder.
func (d ContentDigest) IsZero() bool {
	return d.value == "" || d.value == strings.Repeat("0", DigestHexLength)
}

// Prefix returns the first six characters used for directory sharding.
func (d ContentDigest) Prefix() string {
	return d.value[:6]
}

// PathComponents returns the three 2-character shard segments (aa, bb, cc).
func (d ContentDigest) PathComponents() (string, string, string) {
	return d.value[0:2], d.value[2:4], d.value[4:6]
}

// StoragePath derives the sharded relative path for this digest:
// aa/bb/cc/<full digest>. Pure function of the digest.
func (d ContentDigest) StoragePath() string {
	p1, p2, p3 := d.PathComponents()
	return filepath.Join(p1, p2, p3, d.value)
}
