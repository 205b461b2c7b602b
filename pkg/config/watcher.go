package config

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher fires a set of callbacks whenever a watched file changes,
// grounded on the teacher's pkg/config Watcher (an fsnotify.Watcher wrapped
// with a callback registry instead of a single channel consumer).
type Watcher struct {
	fs *fsnotify.Watcher

	mu        sync.Mutex
	callbacks []func()
	closed    bool
}

// NewWatcher builds an idle Watcher; call Watch to start watching a path.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{fs: fw}, nil
}

// OnChange registers fn to run on every subsequent change event. Multiple
// registrations all fire, in registration order.
func (w *Watcher) OnChange(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Watch starts watching path, invoking every registered callback on a write
// or create event (fsnotify can emit more than one event per save; callers
// should treat a burst of calls as "reload", not count them). The watch
// loop exits when ctx is canceled or Close is called.
func (w *Watcher) Watch(ctx context.Context, path string) error {
	if err := w.fs.Add(path); err != nil {
		return err
	}
	go w.run(ctx, path)
	return nil
}

func (w *Watcher) run(ctx context.Context, path string) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Name != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.notify()
			}
		case _, ok := <-w.fs.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) notify() {
	w.mu.Lock()
	callbacks := make([]func(), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()
	for _, fn := range callbacks {
		fn()
	}
}

// Close stops the underlying fsnotify watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fs.Close()
}
