package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sync"

	"github.com/veligo/galleria/gallery"
)

var _ Storage = (*MemoryStorage)(nil)

// MemoryStorage is a thread-safe [Storage] that stores images in memory.
// The zero-value MemoryStorage is ready-to-use.
type MemoryStorage struct {
	mux   sync.RWMutex
	once  sync.Once
	files map[string][]byte
	root  string
}

// SetRoot sets the root path of the MemoryStorage. The root path is prepended
// to all paths passed to Put and Get.
func (s *MemoryStorage) SetRoot(root string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.root = root
}

// Files returns all stored files as a mapping from paths to contents.
func (s *MemoryStorage) Files() map[string][]byte {
	s.mux.RLock()
	defer s.mux.RUnlock()
	out := make(map[string][]byte, len(s.files))
	for k, v := range s.files {
		out[k] = v
	}
	return out
}

// Put implements [Storage].
func (s *MemoryStorage) Put(_ context.Context, p string, contents io.Reader) (gallery.Locator, error) {
	b, err := io.ReadAll(contents)
	if err != nil {
		return "", err
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	joined := path.Join(s.root, p)

	s.once.Do(func() { s.files = make(map[string][]byte) })
	s.files[joined] = b

	return gallery.Locator("memory://" + joined), nil
}

// Get implements [Storage].
func (s *MemoryStorage) Get(_ context.Context, p string) (io.Reader, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	joined := path.Join(s.root, p)

	contents, ok := s.files[joined]
	if !ok {
		return nil, fmt.Errorf("image %q not found in memory storage", joined)
	}

	return bytes.NewReader(contents), nil
}
