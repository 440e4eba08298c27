package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a configuration file and rebuilds limiter sets when it
// changes on disk.
//
// A rebuild is a fresh Load plus Build; live limiters are never mutated.
// The callback receives the newly built set and decides how to swap it in.
// A file that fails to load or validate is logged and skipped, keeping the
// previous set in effect.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
	opts     []BuildOption

	mu      sync.Mutex
	running bool
}

// WatcherConfig contains configuration for the watcher.
type WatcherConfig struct {
	// Path is the configuration file to watch.
	Path string

	// DebounceInterval is how long to wait after a change before
	// rebuilding, coalescing editor write bursts.
	// Default: 100ms
	DebounceInterval time.Duration

	// Logger receives watcher events. Defaults to slog.Default().
	Logger *slog.Logger

	// BuildOptions are forwarded to every Build call.
	BuildOptions []BuildOption
}

// NewWatcher creates a configuration file watcher.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("watcher path cannot be empty")
	}
	if cfg.DebounceInterval == 0 {
		cfg.DebounceInterval = 100 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		path:     cfg.Path,
		debounce: cfg.DebounceInterval,
		logger:   logger.With("component", "config.watcher"),
		opts:     cfg.BuildOptions,
	}, nil
}

// Watch blocks, delivering freshly built limiter sets to onRebuild until
// the context is canceled. The initial build is performed immediately; a
// failing initial build is returned as an error, while later failures only
// log and keep the previous set.
func (w *Watcher) Watch(ctx context.Context, onRebuild func(*Built)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	built, err := w.rebuild()
	if err != nil {
		return fmt.Errorf("initial configuration build: %w", err)
	}
	onRebuild(built)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory rather than the file: editors and config
	// management tools typically replace the file (rename+create), which
	// drops a watch registered on the file itself.
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %q: %w", w.path, err)
	}

	w.logger.Info("configuration watcher started",
		"path", w.path,
		"debounce_ms", w.debounce.Milliseconds(),
	)

	var pending *time.Timer
	var pendingCh <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("configuration watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("configuration change detected",
				"path", event.Name,
				"op", event.Op.String(),
			)
			if pending == nil {
				pending = time.NewTimer(w.debounce)
				pendingCh = pending.C
			} else {
				pending.Reset(w.debounce)
			}

		case <-pendingCh:
			pending = nil
			pendingCh = nil
			built, err := w.rebuild()
			if err != nil {
				w.logger.Error("configuration rebuild failed, keeping previous set",
					"error", err,
				)
				continue
			}
			w.logger.Info("configuration rebuilt",
				"limiters", len(built.Limiters),
				"bundles", len(built.Bundles),
			)
			onRebuild(built)

		case err, ok := <-fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("configuration watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return false
	}
	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename)
}

func (w *Watcher) rebuild() (*Built, error) {
	cfg, err := Load(w.path)
	if err != nil {
		return nil, err
	}
	return Build(cfg, w.opts...)
}
