package esgallery

import (
	"errors"

	"github.com/modernice/goes/aggregate"
	"github.com/modernice/goes/command"
	"github.com/modernice/goes/event"
	"github.com/veligo/galleria/gallery"
	"github.com/veligo/galleria/image"
	"github.com/veligo/galleria/internal/slicex"
)

// ErrUploadNotPending is returned when trying to start an upload for an entry
// that is not in the pending state.
var ErrUploadNotPending = errors.New("entry upload is not pending")

// Target is an event-sourced aggregate that acts as a gallery. An aggregate
// must implement [event.Registerer] and [command.Registerer] to be used as a
// Target.
type Target interface {
	aggregate.Aggregate
	event.Registerer
	command.Registerer
}

// Gallery provides the event-sourced implementation for image galleries. An
// aggregate that embeds *Gallery implements a ready-to-use gallery whose
// entry lifecycle is recorded as events.
//
//	type ProductImages struct {
//		*aggregate.Base
//		*esgallery.Gallery[uuid.UUID, *ProductImages]
//	}
//
//	func NewProductImages(id uuid.UUID) *ProductImages {
//		g := &ProductImages{Base: aggregate.New("shop.product_images", id)}
//		g.Gallery = esgallery.New[uuid.UUID](g)
//		return g
//	}
type Gallery[EntryID ID, Aggregate Target] struct {
	*gallery.Base[EntryID]

	target Aggregate
}

// New returns a new [*Gallery] that applies events and commands to the
// provided target aggregate. Typically, the target aggregate should embed
// [*Gallery] and initialize it within its constructor.
func New[EntryID ID, Aggregate Target](target Aggregate) *Gallery[EntryID, Aggregate] {
	g := &Gallery[EntryID, Aggregate]{
		Base:   gallery.New[EntryID](),
		target: target,
	}

	event.ApplyWith(target, g.addImage, ImageAdded)
	event.ApplyWith(target, g.removeImage, ImageRemoved)
	event.ApplyWith(target, g.reorder, Reordered)
	event.ApplyWith(target, g.uploadStarted, UploadStarted)
	event.ApplyWith(target, g.uploadSucceeded, UploadSucceeded)
	event.ApplyWith(target, g.uploadFailed, UploadFailed)
	event.ApplyWith(target, g.renditionsSet, RenditionsSet)

	command.ApplyWith(target, func(load addImage[EntryID]) error {
		_, err := g.AddImage(load.Entry)
		return err
	}, AddImageCmd)

	command.ApplyWith(target, func(load removeImage[EntryID]) error {
		_, err := g.RemoveImage(load.EntryID)
		return err
	}, RemoveImageCmd)

	command.ApplyWith(target, func(ordering []EntryID) error {
		g.Sort(ordering)
		return nil
	}, SortCmd)

	command.ApplyWith(target, func(load setRenditions[EntryID]) error {
		_, err := g.SetRenditions(load.EntryID, load.Renditions)
		return err
	}, SetRenditionsCmd)

	return g
}

// Target returns the actual aggregate that embeds this Gallery.
func (g *Gallery[EntryID, Aggregate]) Target() Aggregate {
	return g.target
}

// AddImage is the event-sourced variant of [*gallery.Base.Add]. The entry's
// transient fields are not recorded: events must replay identically from any
// process, so the raw payload and preview handle stay out of the event store.
func (g *Gallery[EntryID, Aggregate]) AddImage(e gallery.Entry[EntryID]) (gallery.Entry[EntryID], error) {
	recorded := e.Clone()
	recorded.Source = nil
	if recorded.Locator.Transient() {
		recorded.Locator = ""
	}

	if err := g.DryRun(func(b *gallery.Base[EntryID]) error {
		_, err := b.Add(recorded)
		return err
	}); err != nil {
		return gallery.ZeroEntry[EntryID](), err
	}

	aggregate.Next(g.target, ImageAdded, recorded)

	added, _ := g.Entry(recorded.ID)

	return added, nil
}

func (g *Gallery[EntryID, Aggregate]) addImage(evt event.Of[gallery.Entry[EntryID]]) {
	g.Base.Add(evt.Data())
}

// RemoveImage is the event-sourced variant of [*gallery.Base.Remove].
func (g *Gallery[EntryID, Aggregate]) RemoveImage(id EntryID) (gallery.Entry[EntryID], error) {
	e, ok := g.Entry(id)
	if !ok {
		return gallery.ZeroEntry[EntryID](), gallery.ErrEntryNotFound
	}

	aggregate.Next(g.target, ImageRemoved, id)

	return e, nil
}

func (g *Gallery[EntryID, Aggregate]) removeImage(evt event.Of[EntryID]) {
	g.Base.Remove(evt.Data())
}

// Sort is the event-sourced variant of [*gallery.Base.Sort]. Unknown ids are
// filtered out before the event is recorded.
func (g *Gallery[EntryID, Aggregate]) Sort(ordering []EntryID) {
	ordering = slicex.Filter(ordering, func(id EntryID) bool {
		return slicex.ContainsFunc(g.Entries, func(e gallery.Entry[EntryID]) bool {
			return e.ID == id
		})
	})

	if len(ordering) == 0 {
		return
	}

	aggregate.Next(g.target, Reordered, ordering)
}

func (g *Gallery[EntryID, Aggregate]) reorder(evt event.Of[[]EntryID]) {
	g.Base.Sort(evt.Data())
}

// MarkUploading transitions a pending entry to the uploading state.
func (g *Gallery[EntryID, Aggregate]) MarkUploading(id EntryID) (gallery.Entry[EntryID], error) {
	e, ok := g.Entry(id)
	if !ok {
		return gallery.ZeroEntry[EntryID](), gallery.ErrEntryNotFound
	}

	if e.Status != gallery.StatusPending {
		return gallery.ZeroEntry[EntryID](), ErrUploadNotPending
	}

	aggregate.Next(g.target, UploadStarted, id)

	updated, _ := g.Entry(id)

	return updated, nil
}

func (g *Gallery[EntryID, Aggregate]) uploadStarted(evt event.Of[EntryID]) {
	g.Base.Update(evt.Data(), gallery.Entry[EntryID].MarkUploading)
}

// MarkReady transitions an entry to the ready state, assigning its durable
// locator and the metadata of the stored image.
func (g *Gallery[EntryID, Aggregate]) MarkReady(id EntryID, data UploadSucceededData[EntryID]) (gallery.Entry[EntryID], error) {
	if _, ok := g.Entry(id); !ok {
		return gallery.ZeroEntry[EntryID](), gallery.ErrEntryNotFound
	}

	data.EntryID = id

	aggregate.Next(g.target, UploadSucceeded, data)

	updated, _ := g.Entry(id)

	return updated, nil
}

func (g *Gallery[EntryID, Aggregate]) uploadSucceeded(evt event.Of[UploadSucceededData[EntryID]]) {
	data := evt.Data()
	g.Base.Update(data.EntryID, func(e gallery.Entry[EntryID]) gallery.Entry[EntryID] {
		e = e.MarkReady(data.Locator)
		e.Filesize = data.Filesize
		if data.MIME != "" {
			e.MIME = data.MIME
		}
		if data.Dimensions != (image.Dimensions{}) {
			e.Dimensions = data.Dimensions
		}
		return e
	})
}

// MarkFailed transitions an entry to the failed state, retaining the reason.
func (g *Gallery[EntryID, Aggregate]) MarkFailed(id EntryID, reason string) (gallery.Entry[EntryID], error) {
	if _, ok := g.Entry(id); !ok {
		return gallery.ZeroEntry[EntryID](), gallery.ErrEntryNotFound
	}

	aggregate.Next(g.target, UploadFailed, UploadFailedData[EntryID]{EntryID: id, Reason: reason})

	updated, _ := g.Entry(id)

	return updated, nil
}

func (g *Gallery[EntryID, Aggregate]) uploadFailed(evt event.Of[UploadFailedData[EntryID]]) {
	data := evt.Data()
	g.Base.Update(data.EntryID, func(e gallery.Entry[EntryID]) gallery.Entry[EntryID] {
		return e.MarkFailed(errors.New(data.Reason))
	})
}

// SetRenditions replaces the stored renditions of an entry.
func (g *Gallery[EntryID, Aggregate]) SetRenditions(id EntryID, renditions map[string]gallery.Locator) (gallery.Entry[EntryID], error) {
	if _, ok := g.Entry(id); !ok {
		return gallery.ZeroEntry[EntryID](), gallery.ErrEntryNotFound
	}

	aggregate.Next(g.target, RenditionsSet, RenditionsSetData[EntryID]{
		EntryID:    id,
		Renditions: renditions,
	})

	updated, _ := g.Entry(id)

	return updated, nil
}

func (g *Gallery[EntryID, Aggregate]) renditionsSet(evt event.Of[RenditionsSetData[EntryID]]) {
	data := evt.Data()
	g.Base.Update(data.EntryID, func(e gallery.Entry[EntryID]) gallery.Entry[EntryID] {
		e.Renditions = data.Renditions
		return e
	})
}
