package config

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce batches bursts of writes from editors.
const DefaultWatchDebounce = 150 * time.Millisecond

// Watcher signals when one config file is written or created.
type Watcher struct {
	watcher   *fsnotify.Watcher
	path      string
	debounce  time.Duration
	logger    *log.Logger
	changes   chan struct{}
	closeCh   chan struct{}
	closeOnce sync.Once
}

// NewWatcher watches the parent directory of path so atomic renames are seen.
// The file itself does not need to exist yet.
func NewWatcher(path string, debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	resolved := resolvePath(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}
	dir := filepath.Dir(resolved)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch config dir %s: %w", dir, err)
	}
	return &Watcher{
		watcher:  w,
		path:     resolved,
		debounce: debounce,
		logger:   logger,
		changes:  make(chan struct{}, 1),
		closeCh:  make(chan struct{}),
	}, nil
}

// Path returns the resolved file path being watched.
func (cw *Watcher) Path() string {
	return cw.path
}

// Start runs the event loop in a goroutine.
func (cw *Watcher) Start() {
	go cw.loop()
}

// Changes delivers one signal per debounced burst of writes.
func (cw *Watcher) Changes() <-chan struct{} {
	return cw.changes
}

// Close stops the loop and releases the watcher.
func (cw *Watcher) Close() error {
	cw.closeOnce.Do(func() {
		close(cw.closeCh)
	})
	return cw.watcher.Close()
}

func (cw *Watcher) loop() {
	debounce := time.NewTimer(0)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-cw.closeCh:
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if resolvePath(event.Name) != cw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(cw.debounce)

		case <-debounce.C:
			select {
			case cw.changes <- struct{}{}:
			default:
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Warn("config watcher error", "path", cw.path, "err", err)
		}
	}
}

// resolvePath makes paths comparable across symlinked temp dirs.
func resolvePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	// the file may not exist yet; resolve the directory instead.
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(dir, filepath.Base(abs))
	}
	return abs
}
