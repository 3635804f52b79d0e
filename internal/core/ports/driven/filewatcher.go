package driven

import "context"

// FileOperation describes a change to a watched file.
type FileOperation int

// Watched operations.
const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)

// FileEvent is a change notification for one file.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileWatcher reports changes to files in a directory.
type FileWatcher interface {
	// Watch starts watching dir. The channel closes when ctx ends.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Close stops the watcher.
	Close() error
}
