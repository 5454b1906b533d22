package storage

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

// extensionTypes maps filename extensions used as a fallback when magic
// bytes are inconclusive.
var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".avif": "image/avif",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
}

// DetectContentType sniffs the media type from leading magic bytes, falling
// back to the filename extension and finally application/octet-stream.
func DetectContentType(data []byte, filename string) string {
	switch {
	case len(data) >= 3 && bytes.Equal(data[:3], []byte{0xFF, 0xD8, 0xFF}):
		return "image/jpeg"
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return "image/png"
	case len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))):
		return "image/gif"
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "image/webp"
	case len(data) >= 12 && bytes.Equal(data[4:8], []byte("ftyp")):
		brand := string(data[8:12])
		switch {
		case strings.HasPrefix(brand, "avif"):
			return "image/avif"
		case strings.HasPrefix(brand, "qt"):
			return "video/quicktime"
		default:
			return "video/mp4"
		}
	}

	if mt, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return mt
	}

	if mt := http.DetectContentType(data); mt != "application/octet-stream" {
		return strings.Split(mt, ";")[0]
	}

	return "application/octet-stream"
}

// ValidateContentType checks that sniffed content agrees with the type the
// client declared. Octet-stream declarations are accepted as-is.
func ValidateContentType(data []byte, filename string, declared string) error {
	if declared == "" || declared == "application/octet-stream" {
		return nil
	}
	detected := DetectContentType(data, filename)
	if detected == "application/octet-stream" {
		return nil
	}
	if detected != declared {
		return fmt.Errorf("%w: declared %s, detected %s", ErrContentTypeMismatch, declared, detected)
	}
	return nil
}
