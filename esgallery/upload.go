package esgallery

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/modernice/goes/helper/pick"
	"github.com/veligo/galleria/gallery"
	"github.com/veligo/galleria/storage"
)

// UploadableGallery is the type constraint for gallery aggregates that can be
// handled by [*Uploader]s and [*Processor]s.
type UploadableGallery[EntryID ID] interface {
	pick.AggregateProvider

	// Entry returns the given [gallery.Entry].
	Entry(EntryID) (gallery.Entry[EntryID], bool)

	// MarkReady transitions an entry to the ready state.
	MarkReady(EntryID, UploadSucceededData[EntryID]) (gallery.Entry[EntryID], error)

	// SetRenditions replaces the renditions of an entry.
	SetRenditions(EntryID, map[string]gallery.Locator) (gallery.Entry[EntryID], error)
}

// Uploader uploads gallery images to a [storage.Storage].
type Uploader[EntryID ID] struct {
	store storage.Storage
}

// NewUploader returns an [*Uploader] that uploads images to the provided
// [storage.Storage].
func NewUploader[EntryID ID](store storage.Storage) *Uploader[EntryID] {
	return &Uploader[EntryID]{store: store}
}

// Upload uploads the contents of an entry's image to storage under the
// gallery's identity and raises the [UploadSucceeded] event on the gallery,
// transitioning the entry to the ready state with its durable locator.
// The updated entry is returned.
func (u *Uploader[EntryID]) Upload(
	ctx context.Context,
	g UploadableGallery[EntryID],
	entryID EntryID,
	contents io.Reader,
) (gallery.Entry[EntryID], error) {
	e, ok := g.Entry(entryID)
	if !ok {
		return gallery.ZeroEntry[EntryID](), gallery.ErrEntryNotFound
	}

	filename := strings.TrimSpace(e.Filename)
	if filename == "" {
		filename = entryID.String()
	}

	galleryID := pick.AggregateID(g)
	path := entryPath(galleryID, entryID, filename)

	var size filesize
	contents = io.TeeReader(contents, &size)

	locator, err := u.store.Put(ctx, path, contents)
	if err != nil {
		return e, fmt.Errorf("storage: %w", err)
	}

	uploaded, err := g.MarkReady(entryID, UploadSucceededData[EntryID]{
		Locator:  locator,
		Filesize: int(size),
		MIME:     e.MIME,
	})
	if err != nil {
		return e, fmt.Errorf("mark ready: %w", err)
	}

	return uploaded, nil
}

type filesize int

func (f *filesize) Write(p []byte) (int, error) {
	l := len(p)
	s := int(*f)
	*f = filesize(s + l)
	return l, nil
}
