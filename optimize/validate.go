package optimize

import (
	"errors"
	"fmt"

	"github.com/veligo/galleria/internal/mimex"
)

// MaxFileSize is the maximum accepted size of a single image file.
const MaxFileSize = 10 << 20 // 10 MiB

var (
	// ErrNotImage is returned by [Validate] for files that are not images.
	ErrNotImage = errors.New("file is not an image")

	// ErrTooLarge is returned by [Validate] for files above [MaxFileSize].
	ErrTooLarge = errors.New("file exceeds maximum size")

	// ErrUnsupportedFormat is returned by [Validate] for image formats outside
	// the accepted set (jpeg, png, webp, gif).
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// acceptedTypes are the image content-types that pass [Validate].
var acceptedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Validate checks whether the given file may enter the optimization pipeline:
// the sniffed content-type must be an image type, the file must not exceed
// [MaxFileSize], and the format must be jpeg, png, webp, or gif. The returned
// error names the file.
func Validate(filename string, data []byte) error {
	ct := mimex.Detect(data)

	if !mimex.IsImage(data) {
		return fmt.Errorf("%q: %w (detected %q)", filename, ErrNotImage, ct)
	}

	if len(data) > MaxFileSize {
		return fmt.Errorf("%q: %w (%d bytes > %d)", filename, ErrTooLarge, len(data), MaxFileSize)
	}

	if !acceptedTypes[ct] {
		return fmt.Errorf("%q: %w (%s)", filename, ErrUnsupportedFormat, ct)
	}

	return nil
}
