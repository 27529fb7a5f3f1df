package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/correlate-dev/zennpub/internal/logfields"
)

// ConfigWatcher calls a reload function after the config file changes.
// Bursts of events are debounced into one call.
type ConfigWatcher struct {
	configPath string
	watcher    *fsnotify.Watcher
	reload     func(ctx context.Context) error
	debounce   time.Duration
	logger     *slog.Logger
	done       chan struct{}
}

// NewConfigWatcher watches configPath. reload runs on the watcher goroutine.
func NewConfigWatcher(configPath string, debounce time.Duration, reload func(ctx context.Context) error, logger *slog.Logger) (*ConfigWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// watch the directory; editors replace the file on save
	if err := w.Add(filepath.Dir(absPath)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}
	return &ConfigWatcher{
		configPath: absPath,
		watcher:    w,
		reload:     reload,
		debounce:   debounce,
		logger:     logger,
		done:       make(chan struct{}),
	}, nil
}

// Run processes events until ctx is done, then closes the watcher.
func (cw *ConfigWatcher) Run(ctx context.Context) {
	defer close(cw.done)
	defer func() { _ = cw.watcher.Close() }()

	cw.logger.Info("Starting configuration watcher", logfields.Path(cw.configPath))
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != cw.configPath {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				if ev.Op&fsnotify.Remove != 0 {
					cw.logger.Warn("Config file removed", logfields.Path(ev.Name))
				}
				continue
			}
			if timer == nil {
				timer = time.NewTimer(cw.debounce)
			} else {
				timer.Reset(cw.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			cw.logger.Info("Reloading configuration", logfields.Path(cw.configPath))
			if err := cw.reload(ctx); err != nil {
				cw.logger.Error("Failed to reload configuration", logfields.Error(err))
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Error("Config watcher error", logfields.Error(err))
		}
	}
}

// Done is closed when Run returns.
func (cw *ConfigWatcher) Done() <-chan struct{} { return cw.done }
