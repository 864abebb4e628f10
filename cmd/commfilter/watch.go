package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const watchDebounce = 500 * time.Millisecond

// watchInputs calls fn after any of paths is written, created or renamed
// into place, coalescing bursts of events. It returns when ctx is done.
// Parent directories are watched so editors that replace files are seen.
func watchInputs(ctx context.Context, paths []string, logger zerolog.Logger, fn func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	wanted := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		wanted[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	logger.Info().Strs("files", paths).Msg("Watching inputs")

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Stopping watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, _ := filepath.Abs(event.Name)
			if !wanted[abs] || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("Input changed")
			debounce = time.After(watchDebounce)

		case <-debounce:
			debounce = nil
			if err := fn(); err != nil {
				logger.Error().Err(err).Msg("Run failed, waiting for input changes")
				continue
			}
			logger.Info().Msg("Output refreshed")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("File watcher error")
		}
	}
}
