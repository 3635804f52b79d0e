// Package filewatcher reports transcript files dropped into a directory.
package filewatcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/castquery/internal/core/ports/driven"
	"github.com/custodia-labs/castquery/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.FileWatcher = (*Watcher)(nil)

// DefaultDebounce is how long a file must stay quiet before its event is
// emitted. Writers often produce several write events per file.
const DefaultDebounce = 200 * time.Millisecond

// Watcher implements driven.FileWatcher using fsnotify.
type Watcher struct {
	watcher    *fsnotify.Watcher
	extensions []string
	debounce   time.Duration

	closeOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithExtensions restricts events to files with the given extensions,
// compared case-insensitively.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		w.extensions = exts
	}
}

// WithDebounce sets the quiet period. Zero emits every event immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher for .json files.
func New(opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:    fw,
		extensions: []string{".json"},
		debounce:   DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch starts monitoring dir. The returned channel closes when ctx ends or
// the watcher is closed.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan driven.FileEvent, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	events := make(chan driven.FileEvent, 100)
	go w.loop(ctx, events)
	return events, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.watcher.Close()
	})
	return err
}

type pendingEvent struct {
	op   driven.FileOperation
	last time.Time
}

func (w *Watcher) loop(ctx context.Context, events chan<- driven.FileEvent) {
	defer close(events)

	pending := make(map[string]*pendingEvent)

	var tick <-chan time.Time
	if w.debounce > 0 {
		ticker := time.NewTicker(w.debounce / 2)
		defer ticker.Stop()
		tick = ticker.C
	}

	emit := func(ev driven.FileEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.isWatched(event.Name) {
				continue
			}
			op, ok := operation(event.Op)
			if !ok {
				continue
			}
			if w.debounce == 0 {
				if !emit(driven.FileEvent{Path: event.Name, Operation: op}) {
					return
				}
				continue
			}
			p, exists := pending[event.Name]
			if !exists {
				pending[event.Name] = &pendingEvent{op: op, last: time.Now()}
				continue
			}
			// A create followed by writes is still a create.
			if op == driven.FileDeleted || p.op == driven.FileDeleted {
				p.op = op
			}
			p.last = time.Now()

		case now := <-tick:
			for path, p := range pending {
				if now.Sub(p.last) < w.debounce {
					continue
				}
				delete(pending, path)
				if !emit(driven.FileEvent{Path: path, Operation: p.op}) {
					return
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("File watcher error: %v", err)
		}
	}
}

func operation(op fsnotify.Op) (driven.FileOperation, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return driven.FileCreated, true
	case op.Has(fsnotify.Write):
		return driven.FileModified, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return driven.FileDeleted, true
	default:
		return 0, false
	}
}

func (w *Watcher) isWatched(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range w.extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
