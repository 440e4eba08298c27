package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func startWatcher(t *testing.T, path string) (rebuilds chan *Built, stop func()) {
	t.Helper()
	w, err := NewWatcher(WatcherConfig{
		Path:             path,
		DebounceInterval: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	rebuilds = make(chan *Built, 8)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(b *Built) { rebuilds <- b })
	}()

	stop = func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("watch returned error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("watcher did not stop after cancellation")
		}
	}
	return rebuilds, stop
}

func awaitRebuild(t *testing.T, rebuilds chan *Built) *Built {
	t.Helper()
	select {
	case b := <-rebuilds:
		return b
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a rebuild")
		return nil
	}
}

func TestWatcher_InitialBuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quell.yaml")
	writeConfig(t, path, sampleYAML)

	rebuilds, stop := startWatcher(t, path)
	defer stop()

	built := awaitRebuild(t, rebuilds)
	if len(built.Limiters) != 2 {
		t.Errorf("initial build has %d limiters, want 2", len(built.Limiters))
	}
}

func TestWatcher_RebuildsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quell.yaml")
	writeConfig(t, path, `
limiters:
  api:
    rates:
      - calls: 1
`)

	rebuilds, stop := startWatcher(t, path)
	defer stop()
	awaitRebuild(t, rebuilds) // initial set

	writeConfig(t, path, `
limiters:
  api:
    rates:
      - calls: 1
  extra:
    limits:
      - calls: 5
        window: 10s
`)

	built := awaitRebuild(t, rebuilds)
	if _, ok := built.Limiters["extra"]; !ok {
		t.Error("rebuilt set is missing the newly added limiter")
	}
}

func TestWatcher_KeepsPreviousSetOnBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quell.yaml")
	writeConfig(t, path, `
limiters:
  api:
    rates:
      - calls: 1
`)

	rebuilds, stop := startWatcher(t, path)
	defer stop()
	awaitRebuild(t, rebuilds)

	// An invalid rewrite must not be delivered.
	writeConfig(t, path, "limiters: [")

	select {
	case b := <-rebuilds:
		t.Errorf("invalid configuration was delivered: %+v", b)
	case <-time.After(300 * time.Millisecond):
	}

	// Fixing the file resumes deliveries.
	writeConfig(t, path, `
limiters:
  fixed:
    rates:
      - calls: 2
`)
	built := awaitRebuild(t, rebuilds)
	if _, ok := built.Limiters["fixed"]; !ok {
		t.Error("recovery rebuild is missing the fixed limiter")
	}
}

func TestWatcher_InitialBuildFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quell.yaml")
	writeConfig(t, path, "limiters: [")

	w, err := NewWatcher(WatcherConfig{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(context.Background(), func(*Built) {}); err == nil {
		t.Fatal("expected initial build to fail")
	}
}

func TestNewWatcher_RequiresPath(t *testing.T) {
	if _, err := NewWatcher(WatcherConfig{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}
