package script

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/arcty/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the burst of events editors emit on save.
const DefaultDebounce = 100 * time.Millisecond

type watchConfig struct {
	debounce time.Duration
	logger   *slog.Logger
}

// WatchOption configures Watch.
type WatchOption func(*watchConfig)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatchOption {
	return func(c *watchConfig) {
		c.debounce = d
	}
}

// WithWatchLogger sets the logger for watcher errors.
func WithWatchLogger(logger *slog.Logger) WatchOption {
	return func(c *watchConfig) {
		c.logger = logger
	}
}

// Watch signals on the returned channel whenever the script file changes.
// The parent directory is watched so that editors replacing the file through
// a rename are noticed too. The channel is closed when ctx is done.
func Watch(ctx context.Context, path string, opts ...WatchOption) (<-chan string, error) {
	cfg := watchConfig{
		debounce: DefaultDebounce,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	out := make(chan string, 1)
	go func() {
		defer close(out)
		defer w.Close()

		timer := time.NewTimer(cfg.debounce)
		if !timer.Stop() {
			<-timer.C
		}
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				timer.Reset(cfg.debounce)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				cfg.logger.Warn("script watcher error", "path", abs, "err", err)
			case <-timer.C:
				select {
				case out <- abs:
				default:
					// a reload is already pending
				}
			}
		}
	}()

	return out, nil
}
