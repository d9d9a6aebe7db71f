package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/moolen/casa/internal/logging"
)

// ReloadCallback is called when the settings file is successfully reloaded.
// If the callback returns an error, it is logged but the watcher continues watching.
type ReloadCallback func(settings *Settings) error

// WatcherConfig holds configuration for the Watcher.
type WatcherConfig struct {
	// FilePath is the path to the settings YAML file to watch
	FilePath string

	// DebounceMillis is the debounce period in milliseconds
	// Multiple file change events within this period will be coalesced into a single reload
	// Default: 500ms
	DebounceMillis int
}

// Watcher watches a settings file for changes and triggers reload callbacks with
// debouncing to prevent reload storms from editor save sequences.
//
// Invalid settings during reload are logged but do not stop the watcher; the previous
// valid settings stay in effect.
type Watcher struct {
	config   WatcherConfig
	callback ReloadCallback
	logger   *logging.Logger
	cancel   context.CancelFunc
	stopped  chan struct{}
	ready    chan struct{} // signals when fsnotify watcher is fully initialized
	mu       sync.Mutex

	// debounceTimer is used to coalesce multiple file change events
	debounceTimer *time.Timer
}

// NewWatcher creates a new watcher for the given settings file.
// Returns an error if FilePath is empty or callback is nil.
func NewWatcher(config WatcherConfig, callback ReloadCallback) (*Watcher, error) {
	if config.FilePath == "" {
		return nil, fmt.Errorf("FilePath cannot be empty")
	}

	if callback == nil {
		return nil, fmt.Errorf("callback cannot be nil")
	}

	if config.DebounceMillis == 0 {
		config.DebounceMillis = 500
	}

	return &Watcher{
		config:   config,
		callback: callback,
		logger:   logging.GetLogger("config.watcher"),
		stopped:  make(chan struct{}),
		ready:    make(chan struct{}),
	}, nil
}

// Name implements lifecycle.Component
func (w *Watcher) Name() string {
	return "config-watcher"
}

// Start loads the initial settings, calls the callback, and then watches for changes
// in the background. It returns once the file watch is in place.
func (w *Watcher) Start(ctx context.Context) error {
	initial, err := LoadSettingsFile(w.config.FilePath)
	if err != nil {
		return fmt.Errorf("failed to load initial settings: %w", err)
	}

	// Fail fast if the initial callback errors
	if err := w.callback(initial); err != nil {
		return fmt.Errorf("initial callback failed: %w", err)
	}

	w.logger.Info("Loaded initial settings from %s", w.config.FilePath)

	// The watch loop outlives the start context, so it gets its own
	watchCtx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	go w.watchLoop(watchCtx)

	// Wait for the watcher to be fully initialized before returning
	// This ensures file changes won't be missed due to race conditions
	select {
	case <-w.ready:
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	case <-time.After(5 * time.Second):
		cancel()
		return fmt.Errorf("timeout waiting for file watcher to initialize")
	}

	return nil
}

// signalReady safely closes the ready channel exactly once
func (w *Watcher) signalReady() {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.ready:
	default:
		close(w.ready)
	}
}

// watchLoop is the main file watching loop
func (w *Watcher) watchLoop(ctx context.Context) {
	defer close(w.stopped)
	defer w.signalReady() // Ensure ready is signaled even on error paths

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Error("Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(w.config.FilePath); err != nil {
		w.logger.Error("Failed to watch file %s: %v", w.config.FilePath, err)
		return
	}

	w.logger.Debug("Watching %s for changes (debounce: %dms)", w.config.FilePath, w.config.DebounceMillis)
	w.signalReady()

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// Remove is needed for atomic writes where the old file is unlinked before
			// the new file is renamed into place - we must re-add the watch
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if event.Op&(fsnotify.Rename|fsnotify.Remove) != 0 {
				// Small delay to let the rename/recreate complete
				time.Sleep(50 * time.Millisecond)
				if err := watcher.Add(w.config.FilePath); err != nil {
					w.logger.Warn("Failed to re-add watch after %s: %v", event.Op, err)
				}
			}
			w.handleFileChange(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error: %v", err)
		}
	}
}

// handleFileChange resets the debounce timer on each event.
func (w *Watcher) handleFileChange(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(
		time.Duration(w.config.DebounceMillis)*time.Millisecond,
		func() {
			w.reload(ctx)
		},
	)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
}

// reload loads the settings file and calls the callback if it is valid.
func (w *Watcher) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	settings, err := LoadSettingsFile(w.config.FilePath)
	if err != nil {
		w.logger.Warn("Failed to reload settings (keeping previous): %v", err)
		return
	}

	if err := w.callback(settings); err != nil {
		w.logger.Warn("Settings reload callback failed: %v", err)
		return
	}

	w.logger.Info("Settings reloaded from %s", w.config.FilePath)
}

// Stop gracefully stops the file watcher.
// Waits for the watch loop to exit with a timeout of 5 seconds.
func (w *Watcher) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	} else {
		return nil
	}

	select {
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout waiting for watcher to stop")
	}
}
