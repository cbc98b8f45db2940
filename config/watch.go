package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce lets a burst of editor writes settle before reloading
const DefaultWatchDebounce = 250 * time.Millisecond

// Watch reloads the configuration at path whenever it changes and hands each
// valid result to fn. Invalid files are logged and skipped. It blocks until
// ctx is done.
//
// The parent directory is watched rather than the file, so editors that save
// by renaming a temporary file are still seen.
func Watch(ctx context.Context, path string, fn func(*Config)) error {
	return watch(ctx, path, DefaultWatchDebounce, fn)
}

func watch(ctx context.Context, path string, debounce time.Duration, fn func(*Config)) error {
	resolved, err := expandPath(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(resolved)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(resolved), err)
	}
	log.Debug("Watching config", "path", resolved)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != resolved {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("Config watcher error", "error", err)

		case <-timer.C:
			cfg, _, exists, err := Load(resolved)
			if err != nil {
				log.Warn("Ignoring invalid config change", "path", resolved, "error", err)
				continue
			}
			if !exists {
				continue
			}
			log.Info("Config reloaded", "path", resolved)
			fn(cfg)
		}
	}
}
