// Package storage provides durable stores for gallery images.
package storage

import (
	"context"
	"encoding/base64"
	"io"

	"github.com/veligo/galleria/gallery"
)

// Storage is a durable store for gallery images.
type Storage interface {
	// Put writes the contents of the image in r to the storage at the given
	// path and returns the durable locator of the stored image.
	Put(ctx context.Context, path string, contents io.Reader) (gallery.Locator, error)

	// Get returns the contents of the image at the given storage path.
	Get(ctx context.Context, path string) (io.Reader, error)
}

// DataURI encodes the given data as a self-contained inline locator. It is
// the durable representation for images whose gallery is not yet bound to a
// persistent owning record, where no storage path exists to upload to.
func DataURI(mime string, data []byte) gallery.Locator {
	return gallery.Locator("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data))
}
