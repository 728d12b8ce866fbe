package gallery_test

import (
	"github.com/google/uuid"
	"github.com/veligo/galleria/gallery"
	"github.com/veligo/galleria/internal/galleryx"
)

func newEntry() gallery.Entry[uuid.UUID] {
	return galleryx.NewEntry(uuid.New())
}
