package manifest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/omni-glass/host/pkg/pluginsdk"
)

// Watcher observes a set of plugin directories and calls OnChange
// (debounced) whenever a manifest file is created, written, or removed.
// Manifest edits take effect without an app restart: re-discovery
// recomputes the permissions hash and may move a plugin in or out of
// the pending-approval queue.
type Watcher struct {
	dirs     []string
	logger   *slog.Logger
	debounce time.Duration
}

// NewWatcher builds a Watcher over the given plugin directories.
func NewWatcher(dirs []string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{dirs: dirs, logger: logger.With("component", "manifest.watcher"), debounce: 200 * time.Millisecond}
}

// Run watches until ctx is canceled, calling onChange at most once per
// debounce window after one or more filesystem events fire.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, dir := range w.dirs {
		if err := watcher.Add(dir); err != nil {
			w.logger.Warn("failed to watch plugin directory", "dir", dir, "error", err)
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			if err := watcher.Add(filepath.Join(dir, entry.Name())); err != nil {
				w.logger.Warn("failed to watch plugin subdirectory", "dir", entry.Name(), "error", err)
			}
		}
	}

	var mu sync.Mutex
	var timer *time.Timer
	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, onChange)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isManifestEvent(evt) {
				continue
			}
			schedule()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("manifest watch error", "error", err)
		}
	}
}

func isManifestEvent(evt fsnotify.Event) bool {
	if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Base(evt.Name) == pluginsdk.ManifestFilename
}
