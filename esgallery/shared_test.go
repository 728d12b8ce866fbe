package esgallery_test

import (
	"bytes"
	"io"

	"github.com/google/uuid"
	"github.com/modernice/goes/aggregate"
	"github.com/veligo/galleria/esgallery"
	"github.com/veligo/galleria/gallery"
	"github.com/veligo/galleria/internal/galleryx"
)

var example = galleryx.JPEG(1600, 1200)

func newExample() io.Reader {
	return bytes.NewReader(example)
}

type TestGallery struct {
	*aggregate.Base
	*esgallery.Gallery[uuid.UUID, *TestGallery]
}

func NewTestGallery(id uuid.UUID) *TestGallery {
	g := &TestGallery{Base: aggregate.New("test.esgallery", id)}
	g.Gallery = esgallery.New[uuid.UUID](g)
	return g
}

func newPendingEntry(id uuid.UUID) gallery.Entry[uuid.UUID] {
	e := galleryx.NewEntry(id)
	e.Status = gallery.StatusPending
	e.Locator = ""
	return e
}
