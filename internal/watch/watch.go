// Package watch reports changes under a set of directory trees, coalescing
// bursts of events into a single callback.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Bitlatte/portfolio/internal/logger"
)

// DefaultDebounce is how long the tree must stay quiet before onChange runs.
const DefaultDebounce = 500 * time.Millisecond

type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onChange func()
}

// New watches every directory under roots. Roots that do not exist are
// skipped.
func New(onChange func(), debounce time.Duration, roots ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{fsw: fsw, debounce: debounce, onChange: onChange}

	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			logger.Warn("directory not found, not watching", "dir", root)
			continue
		}
		logger.Debug("watching directory tree", "dir", root)
		w.addTree(root)
	}
	return w, nil
}

func (w *Watcher) addTree(root string) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("error walking directory", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if err := w.fsw.Add(path); err != nil {
				logger.Warn("failed to watch directory", "path", path, "error", err)
			}
		}
		return nil
	})
	if err != nil {
		logger.Warn("error during initial directory walk", "dir", root, "error", err)
	}
}

// Run delivers debounced change notifications until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("change detected", "path", event.Name, "op", event.Op.String())

			// new subdirectories are not watched automatically
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				w.addTree(event.Name)
			}

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.onChange)
			mu.Unlock()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
