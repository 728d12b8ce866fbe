package gallery

import (
	"strings"

	"github.com/veligo/galleria/image"
	"github.com/veligo/galleria/internal/mapx"
)

// Transient and inline locator schemes.
const (
	TransientScheme = "mem://"
	InlineScheme    = "data:"
)

// A Locator references the contents of an image. A Locator is either durable
// (a persisted URL, storage path, or self-contained data URI) or transient
// (a revocable in-memory preview handle that must not outlive the session).
type Locator string

// Transient reports whether the locator is a revocable preview handle.
func (l Locator) Transient() bool {
	return strings.HasPrefix(string(l), TransientScheme)
}

// Inline reports whether the locator is a self-contained data URI.
func (l Locator) Inline() bool {
	return strings.HasPrefix(string(l), InlineScheme)
}

// Durable reports whether the locator is usable after the owning session ends.
func (l Locator) Durable() bool {
	return l != "" && !l.Transient()
}

// Status is the upload state of an [Entry].
type Status int

// Entry statuses.
const (
	StatusPending Status = iota
	StatusUploading
	StatusReady
	StatusFailed
)

// String returns the status as a human-readable string.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusUploading:
		return "uploading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// An Entry is one image slot of a gallery. While an upload is in flight, the
// Entry carries the raw payload in Source and a transient preview handle in
// Locator. Once the Entry is [StatusReady], Locator is durable and Source is
// dropped.
type Entry[ID comparable] struct {
	image.Image

	ID         ID                 `json:"id"`
	Locator    Locator            `json:"locator"`
	Source     []byte             `json:"-"`
	Status     Status             `json:"status"`
	Error      string             `json:"error,omitempty"`
	Renditions map[string]Locator `json:"renditions,omitempty"`
}

// Clone returns a deep copy of the Entry.
func (e Entry[ID]) Clone() Entry[ID] {
	e.Image = e.Image.Clone()
	e.Renditions = mapx.Clone(e.Renditions)
	if e.Source != nil {
		src := make([]byte, len(e.Source))
		copy(src, e.Source)
		e.Source = src
	}
	return e
}

// MarkUploading returns a copy of the Entry with its status set to
// [StatusUploading].
func (e Entry[ID]) MarkUploading() Entry[ID] {
	e.Status = StatusUploading
	e.Error = ""
	return e
}

// MarkReady returns a copy of the Entry with the durable locator assigned.
// The raw payload is dropped; a ready Entry never retains its Source.
func (e Entry[ID]) MarkReady(locator Locator) Entry[ID] {
	e.Locator = locator
	e.Status = StatusReady
	e.Source = nil
	e.Error = ""
	return e
}

// MarkFailed returns a copy of the Entry with the error detail retained. Any
// transient locator stays in place so the preview remains inspectable.
func (e Entry[ID]) MarkFailed(err error) Entry[ID] {
	e.Status = StatusFailed
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// ZeroEntry returns the zero-value [Entry].
func ZeroEntry[ID comparable]() (zero Entry[ID]) {
	return zero
}
