// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDebounce coalesces editor write bursts into one reload.
const watchDebounce = 250 * time.Millisecond

// Watcher reloads the config file when it changes on disk, so a key or
// model edited externally takes effect without restarting.
type Watcher struct {
	path    string
	logger  *zap.Logger
	reloads chan *Config
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path string, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:    path,
		logger:  logger,
		reloads: make(chan *Config, 1),
	}
}

// Reloads returns the channel receiving reloaded configs. A reload that
// fails validation is logged and dropped; the previous config stays live.
func (w *Watcher) Reloads() <-chan *Config {
	return w.reloads
}

// Start watches until ctx is cancelled. Watches the parent directory, not
// the file: editors replace files by rename, which drops a direct watch.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()

		var timer *time.Timer
		var timerC <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(w.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(watchDebounce)
					timerC = timer.C
				} else {
					timer.Reset(watchDebounce)
				}

			case <-timerC:
				timer = nil
				timerC = nil
				cfg, err := LoadFrom(w.path)
				if err != nil {
					w.logger.Warn("config reload failed", zap.Error(err))
					continue
				}
				// Drop a stale pending reload; only the latest matters.
				select {
				case <-w.reloads:
				default:
				}
				w.reloads <- cfg
				w.logger.Info("config reloaded")

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("config watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}
