// Package watch feeds change signals into the content service: filesystem
// events, an optional periodic rebuild, and an optional remote trigger.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// Watcher monitors the content root recursively and calls invalidate for
// every relevant change. Bursts are expected; debouncing is the cache's job.
type Watcher struct {
	root       string
	invalidate func()
	watcher    *fsnotify.Watcher
	stopChan   chan struct{}
	log        *slog.Logger
}

// NewWatcher creates a watcher over root. invalidate must be safe to call
// from the watch goroutine.
func NewWatcher(root string, invalidate func(), log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("resolve content root: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		root:       absRoot,
		invalidate: invalidate,
		watcher:    fsw,
		stopChan:   make(chan struct{}),
		log:        log,
	}, nil
}

// Start registers the root and all current subdirectories, then begins the
// watch loop.
func (w *Watcher) Start(ctx context.Context) error {
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != w.root {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watch content tree %s: %w", w.root, err)
	}

	w.log.Info("watching content tree", logfields.Path(w.root))
	go w.watchLoop(ctx)
	return nil
}

// Close stops the watch loop and releases the filesystem watcher.
func (w *Watcher) Close() error {
	close(w.stopChan)
	return w.watcher.Close()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("content watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return
	}

	// New directories join the watch set so files created inside them are
	// seen too.
	if event.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				w.log.Warn("cannot watch new directory", logfields.Path(event.Name), logfields.Error(err))
			}
			w.invalidate()
			return
		}
	}

	if !isContentFile(event.Name) {
		return
	}
	if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		w.log.Debug("content change detected", logfields.File(event.Name), slog.String("op", event.Op.String()))
		w.invalidate()
	}
}

func isContentFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
