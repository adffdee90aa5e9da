package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches a params file for changes and delivers reloaded
// parameter sets to a callback.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onReload func(*Params, string)
	log      *zap.Logger
}

// NewWatcher creates a file watcher for the given params path. The
// callback receives the freshly loaded parameters and their hash.
func NewWatcher(path string, onReload func(*Params, string), log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if _, err := os.Stat(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("cannot watch %q: %w", path, err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", path, err)
	}

	return &Watcher{
		watcher:  watcher,
		path:     path,
		onReload: onReload,
		log:      log,
	}, nil
}

// Run watches for file changes and reloads params. Blocks until ctx is
// cancelled. A broken params file keeps the previous set active.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	// Debounce: wait 500ms after last write before reloading
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(500*time.Millisecond, func() {
					p, hash, err := LoadWithHash(w.path)
					if err != nil {
						w.log.Warn("params hot-reload failed", zap.Error(err))
						return
					}
					w.log.Info("params reloaded", zap.String("hash", hash))
					w.onReload(p, hash)
				})
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("params watcher error", zap.Error(err))
		}
	}
}
