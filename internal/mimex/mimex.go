package mimex

import (
	"net/http"
	"strings"
)

// Detect sniffs the content-type of the given data and returns it without any
// parameters ("image/jpeg", not "image/jpeg; charset=...").
func Detect(data []byte) string {
	const max = 512
	if len(data) > max {
		data = data[:max]
	}

	raw := http.DetectContentType(data)
	ct, _, found := strings.Cut(raw, ";")
	if !found {
		return raw
	}
	return strings.TrimSpace(ct)
}

// IsImage reports whether the sniffed content-type of data is an image type.
func IsImage(data []byte) bool {
	return strings.HasPrefix(Detect(data), "image/")
}
