package galleryx

import (
	"bytes"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/veligo/galleria/gallery"
	"github.com/veligo/galleria/image"
	"github.com/veligo/galleria/internal/imagex"
)

// NewEntry returns a new stub gallery entry with the given id.
func NewEntry[ID comparable](id ID) gallery.Entry[ID] {
	return gallery.Entry[ID]{
		ID:      id,
		Locator: "file:///foo/bar/baz.jpg",
		Status:  gallery.StatusReady,
		Image: image.Image{
			Filename:   "baz.jpg",
			Filesize:   12345,
			MIME:       "image/jpeg",
			Dimensions: image.Dimensions{1920, 1080},
			Captions: map[string]string{
				"en": "Foo image",
				"de": "Foo Bild",
			},
		},
	}
}

// NewPendingEntry returns a new stub entry that still awaits upload, carrying
// a real JPEG payload of the given size.
func NewPendingEntry[ID comparable](id ID, w, h int) gallery.Entry[ID] {
	return gallery.Entry[ID]{
		ID:     id,
		Status: gallery.StatusPending,
		Source: JPEG(w, h),
		Image: image.Image{
			Filename:   "pending.jpg",
			MIME:       "image/jpeg",
			Dimensions: image.Dimensions{w, h},
			Captions:   map[string]string{},
		},
	}
}

// JPEG returns an encoded JPEG image with the given size.
func JPEG(w, h int) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, imagex.Rect(w, h, color.RGBA{R: 200, A: 255}), nil); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// PNG returns an encoded PNG image with the given size.
func PNG(w, h int) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, imagex.Rect(w, h, color.RGBA{B: 200, A: 255})); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
