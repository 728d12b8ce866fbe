package esgallery

import (
	"github.com/modernice/goes/codec"
	"github.com/veligo/galleria/gallery"
	"github.com/veligo/galleria/image"
)

// Gallery events
const (
	ImageAdded      = "galleria.image_added"
	ImageRemoved    = "galleria.image_removed"
	Reordered       = "galleria.reordered"
	UploadStarted   = "galleria.upload_started"
	UploadSucceeded = "galleria.upload_succeeded"
	UploadFailed    = "galleria.upload_failed"
	RenditionsSet   = "galleria.renditions_set"
)

// ProcessorTriggerEvents are the events that can trigger a [*Processor].
var ProcessorTriggerEvents = []string{
	UploadSucceeded,
}

// UploadSucceededData is the event data of [UploadSucceeded].
type UploadSucceededData[EntryID ID] struct {
	EntryID    EntryID
	Locator    gallery.Locator
	Filesize   int
	MIME       string
	Dimensions image.Dimensions
}

// UploadFailedData is the event data of [UploadFailed].
type UploadFailedData[EntryID ID] struct {
	EntryID EntryID
	Reason  string
}

// RenditionsSetData is the event data of [RenditionsSet].
type RenditionsSetData[EntryID ID] struct {
	EntryID    EntryID
	Renditions map[string]gallery.Locator
}

// RegisterEvents registers the [*Gallery] events into an event registry.
func RegisterEvents[EntryID ID](r codec.Registerer) {
	codec.Register[gallery.Entry[EntryID]](r, ImageAdded)
	codec.Register[EntryID](r, ImageRemoved)
	codec.Register[[]EntryID](r, Reordered)
	codec.Register[EntryID](r, UploadStarted)
	codec.Register[UploadSucceededData[EntryID]](r, UploadSucceeded)
	codec.Register[UploadFailedData[EntryID]](r, UploadFailed)
	codec.Register[RenditionsSetData[EntryID]](r, RenditionsSet)
}
