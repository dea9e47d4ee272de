// Package watch reports when an archive file is rewritten.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a single file for rewrites using fsnotify. The parent
// directory is watched because atomic saves replace the file with a rename.
type Watcher struct {
	Path     string
	Debounce time.Duration
	// Changes receives one value per settled burst of writes.
	Changes <-chan time.Time
	// Errors receives non-fatal watcher errors.
	Errors <-chan error

	changes  chan time.Time
	errors   chan error
	done     chan struct{}
	watcher  *fsnotify.Watcher
	started  bool
	stopOnce sync.Once
}

// NewWatcher creates a watcher for path. A non-positive debounce emits on the
// first quiet tick.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 10 * time.Millisecond
	}

	changes := make(chan time.Time, 1)
	errs := make(chan error, 4)
	return &Watcher{
		Path:     abs,
		Debounce: debounce,
		Changes:  changes,
		Errors:   errs,
		changes:  changes,
		errors:   errs,
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

// Start begins watching. When the directory cannot be watched the underlying
// fsnotify watcher is released and Stop need not be called.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.Path)); err != nil {
		w.Stop()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.Path), err)
	}
	w.started = true
	go w.loop()
	return nil
}

// Stop closes the watcher and waits for the event loop to exit. Changes and
// Errors are closed afterwards. Stop is safe to call more than once and
// without a successful Start.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.watcher.Close()
		if w.started {
			<-w.done
		}
		close(w.changes)
		close(w.errors)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	var pending time.Time
	ticker := time.NewTicker(w.Debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = time.Now()
			}

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < w.Debounce {
				continue
			}
			w.emit(pending)
			pending = time.Time{}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

// emit coalesces with an undelivered change so a slow consumer sees at most
// one pending notification.
func (w *Watcher) emit(at time.Time) {
	select {
	case w.changes <- at:
	default:
		select {
		case <-w.changes:
		default:
		}
		select {
		case w.changes <- at:
		default:
		}
	}
}
