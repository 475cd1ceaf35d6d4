package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/plantarium-platform/compose-datasources/internal/scan"
	"go.uber.org/zap"
)

const defaultBufferSize = 64

// Watcher turns fsnotify events below a project root into scan.FileEvent values.
//
// Only the root and non-hidden directories whose files fall inside the depth
// bound are watched. Directories created while watching are added when they
// are inside the bound, and compose files already present in them are reported
// as created.
type Watcher struct {
	root     string
	maxDepth int
	watcher  *fsnotify.Watcher
	events   chan scan.FileEvent
	logger   *zap.Logger

	done     chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	watching bool
}

// New creates a Watcher for root. Call Start to begin watching.
func New(root string, maxDepth int, logger *zap.Logger) (*Watcher, error) {
	if maxDepth <= 0 {
		maxDepth = scan.DefaultMaxDepth
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		root:     filepath.Clean(root),
		maxDepth: maxDepth,
		watcher:  watcher,
		events:   make(chan scan.FileEvent, defaultBufferSize),
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Events returns the channel of file events. It is closed once the watcher stops.
func (w *Watcher) Events() <-chan scan.FileEvent {
	return w.events
}

// Start adds the directory watches and begins forwarding events until ctx is
// done or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.root, err)
	}
	w.addTree(w.root)

	go w.processEvents(ctx)
	return nil
}

// Close stops watching and releases the fsnotify watcher.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
	return err
}

// addTree adds watches for dir and its non-hidden sub-directories inside the bound.
func (w *Watcher) addTree(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("Skipping unreadable directory", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.IsDir() || path == w.root {
			return nil
		}
		if !w.watchable(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", zap.String("path", path), zap.Error(err))
			return filepath.SkipDir
		}
		w.logger.Debug("Watching directory", zap.String("path", path))
		return nil
	})
}

// watchable reports whether files directly inside dir can be within the bound.
func (w *Watcher) watchable(dir string) bool {
	if scan.IsHidden(filepath.Base(dir)) {
		return false
	}
	return scan.Depth(w.root, dir) < w.maxDepth
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.handle(ctx, event) {
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

// handle forwards one fsnotify event. It returns false once the watcher is stopping.
func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) && isDir(event.Name) {
		if !w.watchable(event.Name) {
			return true
		}
		w.addTree(event.Name)
		// Files may land before the watch on the new directory exists.
		for _, path := range scan.Discover(event.Name, w.maxDepth-scan.Depth(w.root, event.Name)-1, w.logger) {
			if !w.emit(ctx, scan.FileEvent{Path: path, Op: scan.FileOpCreate}) {
				return false
			}
		}
		return true
	}

	op, ok := convertOp(event.Op)
	if !ok || !scan.WithinBound(w.root, event.Name, w.maxDepth) {
		return true
	}
	return w.emit(ctx, scan.FileEvent{Path: event.Name, Op: op})
}

func (w *Watcher) emit(ctx context.Context, event scan.FileEvent) bool {
	select {
	case w.events <- event:
		w.logger.Debug("Compose file event", zap.String("path", event.Path), zap.Stringer("op", event.Op))
		return true
	case <-ctx.Done():
		return false
	case <-w.done:
		return false
	}
}

// convertOp maps fsnotify operations to scan operations. Chmod is dropped.
func convertOp(op fsnotify.Op) (scan.FileOp, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return scan.FileOpCreate, true
	case op.Has(fsnotify.Write):
		return scan.FileOpWrite, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return scan.FileOpRemove, true
	default:
		return 0, false
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
