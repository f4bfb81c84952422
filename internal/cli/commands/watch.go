package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce groups the burst of events an editor save produces.
const watchDebounce = 100 * time.Millisecond

// fileWatcher calls onChange after a file is written. It watches the
// parent directory so editors that replace the file on save are seen too.
type fileWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func()
	logger   *slog.Logger
	mu       sync.Mutex
}

func newFileWatcher(path string, onChange func(), logger *slog.Logger) (*fileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	return &fileWatcher{path: abs, watcher: w, onChange: onChange, logger: logger}, nil
}

// run handles events until ctx is done, then closes the watcher.
func (fw *fileWatcher) run(ctx context.Context) {
	defer func() { _ = fw.watcher.Close() }()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				fw.mu.Lock()
				defer fw.mu.Unlock()
				if ctx.Err() != nil {
					return
				}
				fw.logger.Debug("change detected", "path", fw.path)
				fw.onChange()
			})

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watcher error", "error", err)
		}
	}
}
