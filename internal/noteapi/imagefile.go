package noteapi

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

// Image constraints enforced before any network call.
const (
	// MaxImageBytes is the platform's per-file upload limit.
	MaxImageBytes = 10 << 20
)

// Image validation errors.
var (
	ErrImageTooLarge = errors.New("image exceeds maximum upload size")
	ErrImageType     = errors.New("image MIME type not allowed")
	ErrImageEmpty    = errors.New("image content is empty")
)

// allowedImageMIME is the platform's accepted upload type set.
var allowedImageMIME = map[string]bool{
	"image/png":     true,
	"image/jpeg":    true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// DetectImageMIME resolves the MIME type of image content. Content
// sniffing decides; the file extension only settles SVG, which sniffing
// reports as plain XML or text.
func DetectImageMIME(name string, data []byte) string {
	if strings.EqualFold(filepath.Ext(name), ".svg") {
		return "image/svg+xml"
	}
	sniffLen := len(data)
	if sniffLen > 512 {
		sniffLen = 512
	}
	mime := http.DetectContentType(data[:sniffLen])
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return mime
}

// ValidateImage checks the platform's upload constraints: size cap and
// accepted MIME types. It runs before the first network round trip so an
// invalid file never costs an API call.
func ValidateImage(name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: %s", ErrImageEmpty, name)
	}
	if len(data) > MaxImageBytes {
		return "", fmt.Errorf("%w: %s is %d bytes (max %d)", ErrImageTooLarge, name, len(data), MaxImageBytes)
	}
	mime := DetectImageMIME(name, data)
	if !allowedImageMIME[mime] {
		return "", fmt.Errorf("%w: %s detected as %s", ErrImageType, name, mime)
	}
	return mime, nil
}
