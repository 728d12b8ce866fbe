package gallery

import (
	"errors"
	"fmt"
	"slices"

	"github.com/veligo/galleria/internal"
	"github.com/veligo/galleria/internal/slicex"
)

var (
	// ErrEmptyID is returned when trying to add an [Entry] with an empty id.
	ErrEmptyID = errors.New("empty id")

	// ErrDuplicateID is returned when trying to add an [Entry] with an id that
	// already exists in the gallery.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrEntryNotFound is returned when an [Entry] cannot be found in a gallery.
	ErrEntryNotFound = errors.New("entry not found in gallery")
)

// Base provides the core implementation for ordered image galleries. The first
// entry of the sequence is the gallery's primary image; primary-ness is
// positional, not a stored flag.
//
// All mutations replace the entry sequence copy-on-write, so a slice returned
// by an accessor never observes a partially applied mutation.
type Base[ID comparable] struct {
	DTO[ID]
}

// DTO provides the fields for [*Base].
type DTO[ID comparable] struct {
	Entries []Entry[ID] `json:"entries"`
}

// New returns a new gallery [*Base] that can be embedded into structs that
// build galleries. The id type of the gallery's entries is specified by the
// ID type parameter.
//
//	type ProductImages struct {
//		*gallery.Base[uuid.UUID]
//	}
func New[ID comparable]() *Base[ID] {
	return &Base[ID]{}
}

// Entry returns the [Entry] with the given id, or false if the gallery does
// not contain an [Entry] with the id.
func (g *Base[ID]) Entry(id ID) (Entry[ID], bool) {
	for _, e := range g.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return ZeroEntry[ID](), false
}

// Count returns the number of entries in the gallery.
func (g *Base[ID]) Count() int {
	return len(g.Entries)
}

// Add appends an [Entry] to the gallery. If the provided id is empty (zero
// value), an error that satisfies errors.Is(err, ErrEmptyID) is returned. If
// the gallery already contains an [Entry] with the same id, an error that
// satisfies errors.Is(err, ErrDuplicateID) is returned.
func (g *Base[ID]) Add(e Entry[ID]) (Entry[ID], error) {
	if e.ID == internal.Zero[ID]() {
		return ZeroEntry[ID](), fmt.Errorf("entry id: %w", ErrEmptyID)
	}

	if _, ok := g.Entry(e.ID); ok {
		return ZeroEntry[ID](), fmt.Errorf("entry id: %w", ErrDuplicateID)
	}

	// Force initialize the "Captions" field of the entry.
	e.Image = e.Normalize()

	entries := make([]Entry[ID], len(g.Entries), len(g.Entries)+1)
	copy(entries, g.Entries)
	g.Entries = append(entries, e)

	return e, nil
}

// Remove removes the [Entry] with the given id from the gallery and returns
// it. If the gallery does not contain an [Entry] with the given id, an error
// that satisfies errors.Is(err, ErrEntryNotFound) is returned.
func (g *Base[ID]) Remove(id ID) (Entry[ID], error) {
	e, ok := g.Entry(id)
	if !ok {
		return ZeroEntry[ID](), ErrEntryNotFound
	}

	g.Entries = slicex.Filter(g.Entries, func(other Entry[ID]) bool {
		return other.ID != id
	})

	return e, nil
}

// Update applies fn to the [Entry] with the given id and replaces the entry
// with the result. Lookup is by identity, never by position, so an update
// racing a removal of the same entry is a safe no-op: if the gallery does not
// contain an [Entry] with the given id, fn is not called and ok is false.
func (g *Base[ID]) Update(id ID, fn func(Entry[ID]) Entry[ID]) (updated Entry[ID], ok bool) {
	for i, e := range g.Entries {
		if e.ID != id {
			continue
		}

		updated = fn(e)
		updated.ID = id

		entries := make([]Entry[ID], len(g.Entries))
		copy(entries, g.Entries)
		entries[i] = updated
		g.Entries = entries

		return updated, true
	}
	return ZeroEntry[ID](), false
}

// Reorder removes the [Entry] at `from` and reinserts it at `to`, and reports
// whether the order changed. Equal or out-of-range indices are a no-op.
// Entries that are mid-upload cannot be moved.
func (g *Base[ID]) Reorder(from, to int) bool {
	if from == to || from < 0 || from >= len(g.Entries) || to < 0 || to >= len(g.Entries) {
		return false
	}

	if g.Entries[from].Status == StatusUploading {
		return false
	}

	g.Entries = slicex.Move(g.Entries, from, to)

	return true
}

// Sort sorts the gallery's entries by the given id order. Unknown ids are
// ignored; entries missing from the ordering keep their relative position.
func (g *Base[ID]) Sort(ordering []ID) {
	ordering = slicex.Filter(ordering, func(id ID) bool {
		return slicex.ContainsFunc(g.Entries, func(e Entry[ID]) bool {
			return e.ID == id
		})
	})

	if len(ordering) == 0 {
		return
	}

	previous := slicex.Map(g.Entries, func(e Entry[ID]) ID { return e.ID })

	entries := make([]Entry[ID], len(g.Entries))
	copy(entries, g.Entries)

	slices.SortFunc(entries, func(a, b Entry[ID]) int {
		idxA := slices.Index(ordering, a.ID)
		idxB := slices.Index(ordering, b.ID)

		if idxA == -1 && idxB == -1 {
			idxA = slices.Index(previous, a.ID)
			idxB = slices.Index(previous, b.ID)
		}

		if idxB < 0 {
			return -1
		}

		if idxA < 0 {
			return 1
		}

		return idxA - idxB
	})

	g.Entries = entries
}

// Primary returns the primary image of the gallery, which is always the entry
// at position 0. ok is false if the gallery is empty.
func (g *Base[ID]) Primary() (Entry[ID], bool) {
	if len(g.Entries) == 0 {
		return ZeroEntry[ID](), false
	}
	return g.Entries[0], true
}

// Committed returns the ordered durable locators of all [StatusReady] entries.
// Failed entries and transient preview handles are never part of the result.
func (g *Base[ID]) Committed() []Locator {
	out := make([]Locator, 0, len(g.Entries))
	for _, e := range g.Entries {
		if e.Status == StatusReady && e.Locator.Durable() {
			out = append(out, e.Locator)
		}
	}
	return out
}

// Clone returns a deep copy of the gallery.
func (g *Base[ID]) Clone() *Base[ID] {
	entries := make([]Entry[ID], len(g.Entries))
	for i, e := range g.Entries {
		entries[i] = e.Clone()
	}
	return &Base[ID]{DTO[ID]{Entries: entries}}
}

// DryRun calls fn with a copy of the gallery and returns the error of fn.
// State changes made by fn are discarded, so DryRun can be used to validate
// an operation before actually applying it.
func (g *Base[ID]) DryRun(fn func(*Base[ID]) error) error {
	return fn(g.Clone())
}
