// Package watcher reports new contents of a schema file as it is edited.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"dbizzy/internal/logger"
)

// TextFn receives the file contents after a burst of changes settles.
type TextFn func(ctx context.Context, text string) error

// Watcher watches one file and calls TextFn with debouncing. The parent
// directory is watched so that editors which save by renaming a temporary
// file over the original are still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	fn       TextFn
	fw       *fsnotify.Watcher
}

// New creates a new Watcher for the file at path.
func New(path string, debounce time.Duration, fn TextFn) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		fn:       fn,
		fw:       fw,
	}, nil
}

// Load reads the file and calls TextFn once, without waiting for a change.
func (w *Watcher) Load(ctx context.Context) error {
	text, err := os.ReadFile(w.path)
	if err != nil {
		return err
	}
	return w.fn(ctx, string(text))
}

// Start begins watching and blocks until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	defer w.fw.Close()

	// Use a stopped timer so we can reset it on events.
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if pending {
				timer.Stop()
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			pending = false
			if err := w.Load(ctx); err != nil {
				logger.Error("watcher: reload %s: %v", w.path, err)
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: fsnotify error: %v", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fw.Close()
}
