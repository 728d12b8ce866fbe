// Package preview manages transient, revocable in-memory previews of
// not-yet-persisted images.
package preview

import (
	"sync"

	"github.com/google/uuid"
	"github.com/veligo/galleria/gallery"
)

// Registry is a thread-safe registry of transient preview blobs. Allocating a
// preview returns a revocable locator with the "mem://" scheme that can be
// displayed immediately, before the image has a durable home.
//
// The zero-value Registry is ready-to-use.
type Registry struct {
	mux   sync.RWMutex
	once  sync.Once
	blobs map[gallery.Locator][]byte
}

// Alloc stores the given data and returns a fresh transient locator for it.
func (r *Registry) Alloc(data []byte) gallery.Locator {
	r.init()

	l := gallery.Locator(gallery.TransientScheme + uuid.NewString())

	r.mux.Lock()
	defer r.mux.Unlock()
	r.blobs[l] = data

	return l
}

// Release revokes the preview behind the given locator and reports whether it
// was still allocated. Releasing an unknown, already released, or non-transient
// locator is a no-op, so revocation decisions keyed off entry identity remain
// safe under interleaved remove/complete races: every handle is freed at most
// once.
func (r *Registry) Release(l gallery.Locator) bool {
	if !l.Transient() {
		return false
	}

	r.init()

	r.mux.Lock()
	defer r.mux.Unlock()

	if _, ok := r.blobs[l]; !ok {
		return false
	}

	delete(r.blobs, l)

	return true
}

// Get returns the data behind the given locator, or false if the locator is
// not allocated (anymore).
func (r *Registry) Get(l gallery.Locator) ([]byte, bool) {
	r.init()

	r.mux.RLock()
	defer r.mux.RUnlock()

	data, ok := r.blobs[l]

	return data, ok
}

// Len returns the number of currently allocated previews.
func (r *Registry) Len() int {
	r.init()

	r.mux.RLock()
	defer r.mux.RUnlock()

	return len(r.blobs)
}

func (r *Registry) init() {
	r.once.Do(func() { r.blobs = make(map[gallery.Locator][]byte) })
}
