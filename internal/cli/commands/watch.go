package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchFiles calls onChange with the files that changed, once per burst of
// events, until ctx is cancelled. Parent directories are watched rather than
// the files so that editors which replace files on save are still seen.
func watchFiles(ctx context.Context, files []string, debounce time.Duration, logger *slog.Logger, onChange func(changed []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// absolute path -> path as given, so reports use the caller's spelling
	tracked := make(map[string]string, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		tracked[abs] = f
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
		logger.Debug("watching directory", slog.String("dir", dir))
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name, ok := tracked[filepath.Clean(event.Name)]
			if !ok {
				continue
			}
			logger.Debug("change detected", slog.String("path", name), slog.String("op", event.Op.String()))
			pending[name] = true
			timer.Reset(debounce)

		case <-timer.C:
			// keep argument order
			var changed []string
			for _, f := range files {
				if pending[f] {
					changed = append(changed, f)
					delete(pending, f)
				}
			}
			if len(changed) > 0 {
				onChange(changed)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", slog.Any("error", err))
		}
	}
}
