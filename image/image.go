package image

import (
	"github.com/modernice/media-tools/image"
	"github.com/veligo/galleria/internal/mapx"
)

// Image holds the metadata of a single image file.
type Image struct {
	Filename   string            `json:"filename"`
	Filesize   int               `json:"filesize"`
	MIME       string            `json:"mime"`
	Dimensions Dimensions        `json:"dimensions"`
	Captions   map[string]string `json:"captions"`
}

// Dimensions are the width and height of an image, in pixels.
type Dimensions = image.Dimensions

// Tags are free-form labels of an image.
type Tags = image.Tags

// NewTags returns new [Tags] with the given tags. Duplicates are removed.
func NewTags(tags ...string) Tags {
	return image.NewTags(tags...)
}

// Normalize initializes the "Captions" field of the [Image] if it is nil.
func (img Image) Normalize() Image {
	img.Captions = mapx.Ensure(img.Captions)
	return img
}

// Clone returns a deep copy of the image.
func (img Image) Clone() Image {
	img.Captions = mapx.Clone(img.Captions)
	return img
}
