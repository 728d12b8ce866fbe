// Package esgallery provides an event-sourced image gallery on top of
// github.com/modernice/goes. An aggregate that embeds [*Gallery] records every
// intake, reorder, removal, and upload transition as events.
package esgallery

import (
	"fmt"
	"path"
)

// ID is the type constraint for entry ids of event-sourced galleries.
type ID interface {
	comparable
	fmt.Stringer
}

func entryPath[EntryID ID](galleryID fmt.Stringer, entryID EntryID, filename string) string {
	return path.Join(galleryID.String(), entryID.String(), filename)
}

func renditionPath[EntryID ID](galleryID fmt.Stringer, entryID EntryID, size, filename string) string {
	return path.Join(galleryID.String(), entryID.String(), "renditions", size, filename)
}
