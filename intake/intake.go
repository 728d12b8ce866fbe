// Package intake admits batches of user-provided files into a gallery.
package intake

import (
	"errors"
	"fmt"

	"github.com/veligo/galleria/gallery"
	"github.com/veligo/galleria/image"
	"github.com/veligo/galleria/internal/mimex"
	"github.com/veligo/galleria/internal/slicex"
	"github.com/veligo/galleria/preview"
)

// DefaultMaxImages is the default maximum number of entries a gallery accepts.
const DefaultMaxImages = 10

var (
	// ErrNoImages is returned when a batch contains no image files at all
	// (e.g. a drop of only PDFs). No intake happens in that case.
	ErrNoImages = errors.New("no image files in batch")

	// ErrTooManyImages is returned when admitting a batch would exceed the
	// configured maximum. Use [CapacityError] to get the remaining capacity.
	ErrTooManyImages = errors.New("too many images")
)

// CapacityError is returned when a batch would exceed the gallery's maximum
// image count. The batch is rejected in whole; no file of it is admitted.
type CapacityError struct {
	Max       int // configured maximum
	Remaining int // how many more images could still be added
}

// Error implements error.
func (err *CapacityError) Error() string {
	return fmt.Sprintf("too many images: only %d more can be added (max %d)", err.Remaining, err.Max)
}

// Unwrap makes errors.Is(err, ErrTooManyImages) work.
func (err *CapacityError) Unwrap() error {
	return ErrTooManyImages
}

// A File is a user-selected or dropped file that should be admitted.
type File struct {
	Name string
	Data []byte
}

// Admit filters, checks, and adds a batch of files to a gallery.
//
// Non-image files are filtered out before any other check; if filtering leaves
// the batch empty, an error that satisfies errors.Is(err, ErrNoImages) is
// returned and nothing is admitted. If the remaining batch would push the
// gallery above max, a [*CapacityError] is returned and nothing is admitted:
// a batch is admitted in whole or not at all.
//
// Admitted files become [gallery.StatusPending] entries of g, in batch order,
// each with a transient preview allocated in reg so the image can be displayed
// immediately. The entries still carry their raw payload; processing them is
// the job of the upload coordinator. If any entry cannot be added, the whole
// batch is rolled back and its previews are released.
func Admit[ID comparable](
	reg *preview.Registry,
	g *gallery.Base[ID],
	max int,
	newID func() ID,
	files ...File,
) ([]gallery.Entry[ID], error) {
	if max <= 0 {
		max = DefaultMaxImages
	}

	images := slicex.Filter(files, func(f File) bool {
		return mimex.IsImage(f.Data)
	})

	if len(images) == 0 {
		return nil, ErrNoImages
	}

	if g.Count()+len(images) > max {
		remaining := max - g.Count()
		if remaining < 0 {
			remaining = 0
		}
		return nil, &CapacityError{Max: max, Remaining: remaining}
	}

	entries := make([]gallery.Entry[ID], len(images))
	for i, f := range images {
		entries[i] = gallery.Entry[ID]{
			ID:      newID(),
			Locator: reg.Alloc(f.Data),
			Source:  f.Data,
			Status:  gallery.StatusPending,
			Image: image.Image{
				Filename: f.Name,
				Filesize: len(f.Data),
				MIME:     mimex.Detect(f.Data),
			},
		}
	}

	if err := g.DryRun(func(b *gallery.Base[ID]) error {
		for _, e := range entries {
			if _, err := b.Add(e); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		for _, e := range entries {
			reg.Release(e.Locator)
		}
		return nil, fmt.Errorf("admit batch: %w", err)
	}

	for i, e := range entries {
		added, _ := g.Add(e)
		entries[i] = added
	}

	return entries, nil
}
