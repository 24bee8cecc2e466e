package file

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-chat/internal/logger"
)

var log = logger.Named("config")

// Watcher reloads a ConfigStore when its file changes on disk.
type Watcher struct {
	store *ConfigStore
}

// NewWatcher creates a watcher for the store's file.
func NewWatcher(store *ConfigStore) *Watcher {
	return &Watcher{store: store}
}

// Watch starts watching and returns a channel that receives a value after
// each successful reload. Bursts of events coalesce into one notification.
// The channel is closed when ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	// Watch the directory: editors replace the file rather than write it.
	if err := fsw.Add(filepath.Dir(w.store.Path())); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching config directory: %w", err)
	}

	changes := make(chan struct{}, 1)

	go func() {
		defer close(changes)
		defer fsw.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if !w.shouldReload(event) {
					continue
				}
				if err := w.store.Load(); err != nil {
					log.Warn("reloading %s: %v", w.store.Path(), err)
					continue
				}
				log.Debug("reloaded %s", w.store.Path())
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				log.Warn("watch error: %v", err)
			}
		}
	}()

	return changes, nil
}

// shouldReload reports whether event created or rewrote the config file.
func (w *Watcher) shouldReload(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.store.Path()) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
