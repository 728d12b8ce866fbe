// Package upload persists admitted gallery images to durable storage.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/veligo/galleria/gallery"
	"github.com/veligo/galleria/optimize"
	"github.com/veligo/galleria/preview"
	"github.com/veligo/galleria/storage"
)

// DefaultSettleDelay is the delay between the last processed file and the
// aggregate report to the owning collection. It gives in-flight entry updates
// time to land before the committed set is read.
const DefaultSettleDelay = 100 * time.Millisecond

// A Notifier surfaces per-file failures to the user.
type Notifier interface {
	Notify(filename string, err error)
}

// NotifierFunc allows ordinary functions to be used as [Notifier].
type NotifierFunc func(filename string, err error)

// Notify implements [Notifier].
func (notify NotifierFunc) Notify(filename string, err error) {
	notify(filename, err)
}

// Option is an option for [New].
type Option[ID comparable] func(*Coordinator[ID])

// WithOwner binds the coordinator to the persistent record that owns the
// gallery. Bound coordinators upload images to storage under the owner's
// identity; unbound coordinators inline images as data URIs instead.
func WithOwner[ID comparable](ownerID string) Option[ID] {
	return func(c *Coordinator[ID]) {
		c.owner = ownerID
	}
}

// WithSettleDelay overrides [DefaultSettleDelay].
func WithSettleDelay[ID comparable](d time.Duration) Option[ID] {
	return func(c *Coordinator[ID]) {
		c.settle = d
	}
}

// WithNotifier overrides the slog-backed default [Notifier].
func WithNotifier[ID comparable](n Notifier) Option[ID] {
	return func(c *Coordinator[ID]) {
		c.notifier = n
	}
}

// WithOnChange registers the owning collection's callback. It receives the
// ordered durable locators of the gallery whenever the committed image set
// changes; it never receives a transient preview handle.
func WithOnChange[ID comparable](fn func([]gallery.Locator)) Option[ID] {
	return func(c *Coordinator[ID]) {
		c.onChange = fn
	}
}

// Coordinator owns a gallery's entry sequence and persists admitted images.
// Files are processed strictly one at a time, in intake order, to bound the
// load put on the backing store. All entry updates are keyed by entry
// identity, so a completion racing a removal of the same entry is a safe
// no-op.
type Coordinator[ID comparable] struct {
	gallery   *gallery.Base[ID]
	previews  *preview.Registry
	optimizer *optimize.Optimizer
	store     storage.Storage

	owner    string
	settle   time.Duration
	notifier Notifier
	onChange func([]gallery.Locator)
}

// New returns a [*Coordinator] that admits images into g, optimizes them with
// opt, and persists them to store.
func New[ID comparable](
	g *gallery.Base[ID],
	previews *preview.Registry,
	opt *optimize.Optimizer,
	store storage.Storage,
	opts ...Option[ID],
) *Coordinator[ID] {
	c := &Coordinator[ID]{
		gallery:   g,
		previews:  previews,
		optimizer: opt,
		store:     store,
		settle:    DefaultSettleDelay,
		notifier: NotifierFunc(func(filename string, err error) {
			slog.Error("image upload failed", "file", filename, "err", err)
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Gallery returns the coordinated gallery.
func (c *Coordinator[ID]) Gallery() *gallery.Base[ID] {
	return c.gallery
}

// Bound reports whether the coordinator is bound to a persistent owner.
func (c *Coordinator[ID]) Bound() bool {
	return c.owner != ""
}

// Process persists the admitted entries one at a time, in the given order.
// The entries must already be part of the gallery (intake puts them there);
// entries removed before their turn are skipped. The next file is not touched
// before the current one settles (success or failure).
//
// Per-file failures (validation, encoding, storage) mark that entry failed,
// surface a notification naming the file, and never abort the remaining
// batch. After the whole batch settled, the committed locator set is reported
// to the owning collection exactly once.
func (c *Coordinator[ID]) Process(ctx context.Context, entries ...gallery.Entry[ID]) error {
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.processEntry(ctx, e.ID)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.settle):
	}

	c.report()

	return nil
}

// Remove revokes the entry's transient preview (if any), removes the entry
// from the gallery, and reports the updated committed set immediately. An
// upload already in flight for the entry is not aborted; its completion will
// find the entry gone and do nothing.
func (c *Coordinator[ID]) Remove(id ID) error {
	e, err := c.gallery.Remove(id)
	if err != nil {
		return err
	}

	if e.Locator.Transient() {
		c.previews.Release(e.Locator)
	}

	c.report()

	return nil
}

// Reorder moves the entry at `from` to `to` and reports the updated committed
// set if the order changed. Entries that are mid-upload cannot be moved.
func (c *Coordinator[ID]) Reorder(from, to int) bool {
	if !c.gallery.Reorder(from, to) {
		return false
	}
	c.report()
	return true
}

func (c *Coordinator[ID]) processEntry(ctx context.Context, id ID) {
	e, ok := c.gallery.Update(id, gallery.Entry[ID].MarkUploading)
	if !ok {
		// Removed before processing started.
		return
	}

	locator, result, err := c.persist(ctx, e)
	if err != nil {
		c.notifier.Notify(e.Filename, err)
		c.gallery.Update(id, func(e gallery.Entry[ID]) gallery.Entry[ID] {
			return e.MarkFailed(err)
		})
		return
	}

	previous := e.Locator

	if _, ok := c.gallery.Update(id, func(e gallery.Entry[ID]) gallery.Entry[ID] {
		e = e.MarkReady(locator)
		e.Filesize = len(result.Data)
		e.MIME = result.MIME
		e.Dimensions = result.Dimensions
		return e
	}); !ok {
		// Removed mid-flight; Remove already revoked the preview.
		return
	}

	if previous.Transient() {
		c.previews.Release(previous)
	}
}

// persist produces the durable locator for a single entry: optimized and
// uploaded under the owner's identity when bound, optimized and inlined as a
// data URI when the owning record does not exist yet.
func (c *Coordinator[ID]) persist(ctx context.Context, e gallery.Entry[ID]) (gallery.Locator, optimize.Result, error) {
	if err := optimize.Validate(e.Filename, e.Source); err != nil {
		return "", optimize.Result{}, err
	}

	result, err := c.optimizer.Optimize(ctx, e.Source)
	if err != nil {
		return "", result, fmt.Errorf("optimize %q: %w", e.Filename, err)
	}

	if !c.Bound() {
		return storage.DataURI(result.MIME, result.Data), result, nil
	}

	p := path.Join(c.owner, fmt.Sprint(e.ID), e.Filename)

	locator, err := c.store.Put(ctx, p, bytes.NewReader(result.Data))
	if err != nil {
		return "", result, fmt.Errorf("storage: %w", err)
	}

	return locator, result, nil
}

func (c *Coordinator[ID]) report() {
	if c.onChange != nil {
		c.onChange(c.gallery.Committed())
	}
}
