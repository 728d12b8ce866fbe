// Package watch feeds images dropped into a local folder to the intake
// pipeline.
package watch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/veligo/galleria/intake"
)

// DefaultDebounce is the default per-file debounce interval. Editors and file
// browsers often write a dropped file in multiple chunks; the debounce makes
// sure a file is picked up once, after its last write.
const DefaultDebounce = 500 * time.Millisecond

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// A Watcher monitors a drop folder and emits every settled image file.
type Watcher struct {
	dir      string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	files    chan intake.File
	done     chan struct{}
	stop     sync.Once

	mux    sync.Mutex
	closed bool
}

// New returns a [*Watcher] for the given drop folder. If debounce is zero,
// [DefaultDebounce] is used.
func New(dir string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		dir:      dir,
		debounce: debounce,
		watcher:  fsWatcher,
		files:    make(chan intake.File, 100),
		done:     make(chan struct{}),
	}, nil
}

// Files returns the channel of settled image files. The channel is closed
// when the Watcher is stopped.
func (w *Watcher) Files() <-chan intake.File {
	return w.files
}

// Start begins monitoring the drop folder.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch folder %s: %w", w.dir, err)
	}

	slog.Info("watching drop folder", "dir", w.dir)

	go w.processEvents()

	return nil
}

// Stop stops the watcher and closes the file channel.
func (w *Watcher) Stop() error {
	var err error
	w.stop.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) processEvents() {
	defer w.closeFiles()

	// Debounce timers, one per path.
	debounce := make(map[string]*time.Timer)

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}

			if !imageExts[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}

			// Skip temp/hidden files.
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}

			if timer, exists := debounce[event.Name]; exists {
				timer.Stop()
			}

			name := event.Name
			debounce[name] = time.AfterFunc(w.debounce, func() {
				w.emit(name)
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("watch error", "err", err)
		}
	}
}

func (w *Watcher) closeFiles() {
	w.mux.Lock()
	defer w.mux.Unlock()
	w.closed = true
	close(w.files)
}

func (w *Watcher) emit(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("read dropped file", "path", path, "err", err)
		return
	}

	// A debounce timer can still fire after Stop; the file channel must not
	// be written to once it is closed.
	w.mux.Lock()
	defer w.mux.Unlock()
	if w.closed {
		return
	}

	select {
	case <-w.done:
	case w.files <- intake.File{Name: filepath.Base(path), Data: data}:
		slog.Info("picked up dropped image", "path", path, "size", len(data))
	}
}
