package engine

// watch.go - Re-running the comparison when either database changes.

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceInterval coalesces bursts of file events into one re-run.
const debounceInterval = 100 * time.Millisecond

// WatchFunc receives the report of each comparison made while watching.
type WatchFunc func(*Report, error)

// Watch runs an initial comparison and re-runs it whenever either
// database file changes on disk. It blocks until ctx is canceled.
func (e *Engine) Watch(ctx context.Context, sourceA, sourceB string, opts RunOptions, fn WatchFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the parent directories rather than the files themselves:
	// tools often replace a database file instead of modifying it, which
	// silently drops an inode-level watch.
	for _, dir := range watchDirs(sourceA, sourceB) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	targets := watchTargets(sourceA, sourceB)

	// Callbacks stay serialized even when a debounced run overlaps the
	// event loop.
	var fnMu sync.Mutex
	emit := func(report *Report, runErr error) {
		fnMu.Lock()
		defer fnMu.Unlock()
		fn(report, runErr)
	}

	report, runErr := e.Run(ctx, sourceA, sourceB, opts)
	emit(report, runErr)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if _, relevant := targets[filepath.Clean(event.Name)]; !relevant {
				continue
			}

			e.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceInterval, func() {
				report, runErr := e.Run(ctx, sourceA, sourceB, opts)
				if ctx.Err() != nil {
					return
				}
				emit(report, runErr)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Warn("watch error", "error", err)
		}
	}
}

// watchDirs returns the unique parent directories of the sources.
func watchDirs(sources ...string) []string {
	seen := make(map[string]struct{}, len(sources))
	var dirs []string
	for _, src := range sources {
		dir := filepath.Dir(src)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	return dirs
}

// watchTargets maps the paths whose events trigger a re-run, including
// the WAL sidecars SQLite writes ahead of the main file.
func watchTargets(sources ...string) map[string]struct{} {
	targets := make(map[string]struct{}, len(sources)*2)
	for _, src := range sources {
		clean := filepath.Clean(src)
		targets[clean] = struct{}{}
		targets[clean+"-wal"] = struct{}{}
	}
	return targets
}
