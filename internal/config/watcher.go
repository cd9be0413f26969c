package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/moolen/upgradelens/internal/logging"
	"github.com/moolen/upgradelens/internal/patterns"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc receives every successfully compiled registry. An error is
// logged and the watcher keeps running.
type ReloadFunc func(registry *patterns.Registry) error

// PatternsWatcher reloads a patterns file whenever it changes. A file that
// fails to load or compile is logged and skipped, so the last good registry
// stays in use.
type PatternsWatcher struct {
	path     string
	debounce time.Duration
	onReload ReloadFunc
	logger   *logging.Logger

	mu      sync.Mutex
	timer   *time.Timer
	cancel  context.CancelFunc
	ready   chan struct{}
	stopped chan struct{}
}

// NewPatternsWatcher creates a watcher for path. A zero debounce selects
// DefaultDebounce.
func NewPatternsWatcher(path string, debounce time.Duration, onReload ReloadFunc) (*PatternsWatcher, error) {
	if path == "" {
		return nil, fmt.Errorf("patterns file path cannot be empty")
	}
	if onReload == nil {
		return nil, fmt.Errorf("reload callback cannot be nil")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &PatternsWatcher{
		path:     path,
		debounce: debounce,
		onReload: onReload,
		logger:   logging.GetLogger("config.watcher").WithField("path", path),
		ready:    make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

func (w *PatternsWatcher) Name() string { return "patterns-watcher" }

// Start loads the file once, hands the registry to the callback and begins
// watching. Errors during this first load are returned.
func (w *PatternsWatcher) Start(ctx context.Context) error {
	registry, err := LoadRegistry(w.path)
	if err != nil {
		return fmt.Errorf("failed to load initial patterns: %w", err)
	}
	if err := w.onReload(registry); err != nil {
		return fmt.Errorf("initial reload callback failed: %w", err)
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()

	go w.watchLoop(watchCtx)

	select {
	case <-w.ready:
		return nil
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	case <-time.After(5 * time.Second):
		cancel()
		return fmt.Errorf("timeout waiting for file watcher to initialize")
	}
}

// Stop ends the watch loop and waits for it to exit.
func (w *PatternsWatcher) Stop(ctx context.Context) error {
	w.mu.Lock()
	cancel := w.cancel
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-w.stopped:
		w.logger.Debug("Patterns watcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *PatternsWatcher) markReady() {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.ready:
	default:
		close(w.ready)
	}
}

func (w *PatternsWatcher) watchLoop(ctx context.Context) {
	defer close(w.stopped)
	defer w.markReady()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.ErrorWithErr("Failed to create file watcher", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(w.path); err != nil {
		w.logger.ErrorWithErr("Failed to watch patterns file", err)
		return
	}
	w.logger.InfoWithFields("Watching patterns file", logging.Field("debounce", w.debounce.String()))
	w.markReady()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			// An atomic replace unlinks the watched inode; watch the new file.
			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				time.Sleep(50 * time.Millisecond)
				if err := watcher.Add(w.path); err != nil {
					w.logger.Warn("Failed to re-add watch after %s: %v", event.Op, err)
				}
			}
			w.schedule(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.ErrorWithErr("File watcher error", err)
		}
	}
}

func (w *PatternsWatcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.reload(ctx) })
}

func (w *PatternsWatcher) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	registry, err := LoadRegistry(w.path)
	if err != nil {
		w.logger.WarnWithFields("Rejected patterns file, keeping previous registry", logging.Field("error", err))
		return
	}
	if err := w.onReload(registry); err != nil {
		w.logger.ErrorWithErr("Patterns reload callback failed", err)
		return
	}
	w.logger.Info("Patterns file reloaded")
}
