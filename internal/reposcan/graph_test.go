package reposcan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/snipe-lang/snipe/internal/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestFullScanPicksLexicographicFirstCanonical(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.c", "int shared;\n")
	writeFile(t, dir, "a.c", "int shared;\n")

	g := New(dir, Options{})
	n, err := g.FullScan(context.Background(), 2)
	if err != nil {
		t.Fatalf("FullScan: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 symbols, got %d", n)
	}

	snap := g.Snapshot()
	sym, ok := snap.Canonical(types.LangC, "shared")
	if !ok {
		t.Fatal("expected canonical symbol for 'shared'")
	}
	if sym.File != filepath.Join(dir, "a.c") {
		t.Errorf("canonical symbol file = %s, want a.c (lexicographically first)", sym.File)
	}
}

func TestFullScanSkipsFixedIgnoreDirs(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "node_modules"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "node_modules/skip.c", "int skip_me;\n")
	writeFile(t, dir, "keep.c", "int keep_me;\n")

	g := New(dir, Options{})
	if _, err := g.FullScan(context.Background(), 2); err != nil {
		t.Fatalf("FullScan: %v", err)
	}

	snap := g.Snapshot()
	if _, ok := snap.Canonical(types.LangC, "skip_me"); ok {
		t.Error("expected node_modules to be skipped")
	}
	if _, ok := snap.Canonical(types.LangC, "keep_me"); !ok {
		t.Error("expected keep.c to be scanned")
	}
}

func TestRefreshFileReplacesOnlyThatFilesBucket(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.c", "int x;\n")

	g := New(dir, Options{})
	if _, err := g.FullScan(context.Background(), 2); err != nil {
		t.Fatalf("FullScan: %v", err)
	}

	if err := g.RefreshFile(path, []byte("int y;\n")); err != nil {
		t.Fatalf("RefreshFile: %v", err)
	}

	snap := g.Snapshot()
	if _, ok := snap.Canonical(types.LangC, "x"); ok {
		t.Error("stale symbol 'x' should have been replaced")
	}
	if _, ok := snap.Canonical(types.LangC, "y"); !ok {
		t.Error("expected refreshed symbol 'y'")
	}
}

func TestRemoveFileDropsItsBucket(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "gone.c", "int ghost;\n")

	g := New(dir, Options{})
	if _, err := g.FullScan(context.Background(), 2); err != nil {
		t.Fatalf("FullScan: %v", err)
	}
	g.RemoveFile(path)

	snap := g.Snapshot()
	if _, ok := snap.Canonical(types.LangC, "ghost"); ok {
		t.Error("expected removed file's symbols to disappear")
	}
}

func TestSnapshotIsStableAcrossConcurrentScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.c", "int a;\n")

	g := New(dir, Options{})
	if _, err := g.FullScan(context.Background(), 2); err != nil {
		t.Fatalf("FullScan: %v", err)
	}
	held := g.Snapshot()

	writeFile(t, dir, "b.c", "int b;\n")
	if _, err := g.FullScan(context.Background(), 2); err != nil {
		t.Fatalf("second FullScan: %v", err)
	}

	if _, ok := held.Canonical(types.LangC, "b"); ok {
		t.Error("a snapshot obtained before a rescan must not observe the rescan's results")
	}
}
