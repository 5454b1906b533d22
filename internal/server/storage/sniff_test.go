package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
	pngHeader  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00}
)

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		filename string
		want     string
	}{
		{"jpeg magic", jpegHeader, "photo.bin", "image/jpeg"},
		{"png magic", pngHeader, "whatever", "image/png"},
		{"gif87a", []byte("GIF87a...."), "x", "image/gif"},
		{"gif89a", []byte("GIF89a...."), "x", "image/gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "x", "image/webp"},
		{"mp4 ftyp", []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm'}, "x", "video/mp4"},
		{"avif ftyp", []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'a', 'v', 'i', 'f'}, "x", "image/avif"},
		{"quicktime ftyp", []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'q', 't', ' ', ' '}, "x", "video/quicktime"},
		{"extension fallback", []byte{0x01, 0x02, 0x03}, "clip.webm", "video/webm"},
		{"unknown", []byte{0x01, 0x02, 0x03}, "blob.xyz", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectContentType(tt.data, tt.filename))
		})
	}
}

func TestValidateContentType(t *testing.T) {
	t.Run("matching declaration", func(t *testing.T) {
		assert.NoError(t, ValidateContentType(pngHeader, "a.png", "image/png"))
	})

	t.Run("mismatch", func(t *testing.T) {
		err := ValidateContentType(jpegHeader, "a.png", "image/png")
		assert.ErrorIs(t, err, ErrContentTypeMismatch)
	})

	t.Run("octet-stream declaration accepted", func(t *testing.T) {
		assert.NoError(t, ValidateContentType(jpegHeader, "a", "application/octet-stream"))
	})

	t.Run("empty declaration accepted", func(t *testing.T) {
		assert.NoError(t, ValidateContentType(jpegHeader, "a", ""))
	})

	t.Run("unsniffable content accepted", func(t *testing.T) {
		assert.NoError(t, ValidateContentType([]byte{0x00, 0x01}, "a.xyz", "image/png"))
	})
}
