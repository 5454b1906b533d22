package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/dmitrijs2005/mediakeeper/internal/server/models"
)

// DigestAndBuffer streams r through SHA-256 while buffering the bytes for a
// subsequent write, so content is read exactly once.
func DigestAndBuffer(r io.Reader) (models.ContentDigest, []byte, error) {
	h := sha256.New()
	var buf bytes.Buffer

	if _, err := buf.ReadFrom(io.TeeReader(r, h)); err != nil {
		return models.ContentDigest{}, nil, fmt.Errorf("%w: reading content: %v", ErrIoFailure, err)
	}

	digest, err := models.NewContentDigest(hex.EncodeToString(h.Sum(nil)))
	if err != nil {
		// sha256 hex output always satisfies the digest invariant
		return models.ContentDigest{}, nil, err
	}

	return digest, buf.Bytes(), nil
}

// DigestBytes hashes an in-memory byte slice.
func DigestBytes(data []byte) models.ContentDigest {
	sum := sha256.Sum256(data)
	digest, _ := models.NewContentDigest(hex.EncodeToString(sum[:]))
	return digest
}
