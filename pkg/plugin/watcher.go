package plugin

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for the directory to settle
// before reloading.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a registry when files in its directory change.
type Watcher struct {
	registry *Registry
	debounce time.Duration
	onReload func(count int)
	log      *zap.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// OnReload registers a callback invoked after each reload with the new plugin count.
func OnReload(fn func(count int)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// WithWatcherLogger sets the watcher logger.
func WithWatcherLogger(log *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if log != nil {
			w.log = log
		}
	}
}

// NewWatcher creates a watcher for reg's directory.
func NewWatcher(reg *Registry, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		registry: reg,
		debounce: DefaultDebounce,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the plugin directory until ctx is done. Bursts of events are
// collapsed into a single reload.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating plugin watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.registry.Dir()); err != nil {
		return fmt.Errorf("watching plugin dir: %w", err)
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Debug("plugin directory changed", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			timer.Reset(w.debounce)

		case <-timer.C:
			w.registry.Reload()
			count := w.registry.Count()
			w.log.Debug("plugins reloaded", zap.Int("count", count))
			if w.onReload != nil {
				w.onReload(count)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Debug("plugin watcher error", zap.Error(err))
		}
	}
}
