package esgallery

import (
	"context"

	"github.com/google/uuid"
	"github.com/modernice/goes/aggregate"
	"github.com/modernice/goes/codec"
	"github.com/modernice/goes/command"
	"github.com/modernice/goes/command/handler"
	"github.com/veligo/galleria/gallery"
)

// Gallery commands
const (
	AddImageCmd      = "galleria.add_image"
	RemoveImageCmd   = "galleria.remove_image"
	SortCmd          = "galleria.sort"
	SetRenditionsCmd = "galleria.set_renditions"
)

// Commands is a factory for [Gallery] commands.
type Commands[EntryID ID] struct {
	aggregateName string
}

// NewCommands returns a factory for creating commands and command handlers.
func NewCommands[EntryID ID](aggregateName string) *Commands[EntryID] {
	return &Commands[EntryID]{aggregateName}
}

// AddImage returns the command to add an [gallery.Entry] to a [*Gallery].
func (c *Commands[EntryID]) AddImage(galleryID uuid.UUID, e gallery.Entry[EntryID]) command.Cmd[addImage[EntryID]] {
	return command.New(AddImageCmd, addImage[EntryID]{e}, command.Aggregate(c.aggregateName, galleryID))
}

type addImage[EntryID ID] struct {
	Entry gallery.Entry[EntryID]
}

// RemoveImage returns the command to remove an [gallery.Entry] from a [*Gallery].
func (c *Commands[EntryID]) RemoveImage(galleryID uuid.UUID, entryID EntryID) command.Cmd[removeImage[EntryID]] {
	return command.New(RemoveImageCmd, removeImage[EntryID]{entryID}, command.Aggregate(c.aggregateName, galleryID))
}

type removeImage[EntryID ID] struct {
	EntryID EntryID
}

// Sort returns the command to sort the entries of a [*Gallery].
func (c *Commands[EntryID]) Sort(galleryID uuid.UUID, ordering []EntryID) command.Cmd[[]EntryID] {
	return command.New(SortCmd, ordering, command.Aggregate(c.aggregateName, galleryID))
}

// SetRenditions returns the command to replace the renditions of an entry.
func (c *Commands[EntryID]) SetRenditions(galleryID uuid.UUID, entryID EntryID, renditions map[string]gallery.Locator) command.Cmd[setRenditions[EntryID]] {
	return command.New(SetRenditionsCmd, setRenditions[EntryID]{entryID, renditions}, command.Aggregate(c.aggregateName, galleryID))
}

type setRenditions[EntryID ID] struct {
	EntryID    EntryID
	Renditions map[string]gallery.Locator
}

// Register calls RegisterCommands(r).
func (c *Commands[EntryID]) Register(r codec.Registerer) {
	RegisterCommands[EntryID](r)
}

// Handle subscribes to gallery commands and executes them on the actual
// gallery aggregate that is returned by calling newFunc with the id of the
// gallery.
func (c *Commands[EntryID]) Handle(
	ctx context.Context,
	newFunc func(uuid.UUID) handler.Aggregate,
	bus command.Bus,
	repo aggregate.Repository,
) (<-chan error, error) {
	return handler.New(newFunc, repo, bus).Handle(ctx)
}

// RegisterCommands registers [Gallery] commands into a command registry.
func RegisterCommands[EntryID ID](r codec.Registerer) {
	codec.Register[addImage[EntryID]](r, AddImageCmd)
	codec.Register[removeImage[EntryID]](r, RemoveImageCmd)
	codec.Register[[]EntryID](r, SortCmd)
	codec.Register[setRenditions[EntryID]](r, SetRenditionsCmd)
}
