package reposcan

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// TestWatcherStopLeavesNoGoroutines mirrors the teacher's leak-test style:
// Start then Stop should leave the event-processing goroutine and every
// pending debounce timer cleaned up.
func TestWatcherStopLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "seed.c"), []byte("int seed;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	g := New(dir, Options{})
	if _, err := g.FullScan(context.Background(), 1); err != nil {
		t.Fatalf("FullScan: %v", err)
	}

	w, err := NewWatcher(g, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Start(dir); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestWatcherDebouncesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hot.c")
	if err := os.WriteFile(path, []byte("int v;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	g := New(dir, Options{})
	if _, err := g.FullScan(context.Background(), 1); err != nil {
		t.Fatalf("FullScan: %v", err)
	}

	w, err := NewWatcher(g, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Start(dir); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("int v2;\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	w.mu.Lock()
	pending := len(w.pending)
	w.mu.Unlock()
	if pending != 0 {
		t.Errorf("expected debounce timers to have fired and cleared, got %d pending", pending)
	}
}
