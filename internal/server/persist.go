package server

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/snipe-lang/snipe/internal/snipeerr"
	"github.com/snipe-lang/snipe/internal/types"
)

// persistDiagnostics writes the union of current diagnostics for root to
// <repo>/.snipe/diagnostics.json. Both the directory and the file are
// opaque and rebuildable from source (spec.md §6) — a write failure is
// logged by the caller and never blocks the in-memory state, which
// remains authoritative regardless.
func persistDiagnostics(root string, diags []types.Diagnostic) error {
	dir := filepath.Join(root, ".snipe")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return snipeerr.NewPersistError(dir, err)
	}

	path := filepath.Join(dir, "diagnostics.json")
	data, err := json.MarshalIndent(diags, "", "  ")
	if err != nil {
		return snipeerr.NewPersistError(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return snipeerr.NewPersistError(path, err)
	}
	return nil
}

// loadDiagnostics reads back a previously persisted diagnostics.json, if
// one exists. A missing or corrupt file is not an error — it simply means
// the graph view starts with no known errors until the next save.
func loadDiagnostics(root string) []types.Diagnostic {
	path := filepath.Join(root, ".snipe", "diagnostics.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var diags []types.Diagnostic
	if err := json.Unmarshal(data, &diags); err != nil {
		return nil
	}
	return diags
}

// fileCacheEntry records one file's mtime + size at the time it was last
// scanned, so a subsequent process start can skip re-parsing files that
// have not changed.
type fileCacheEntry struct {
	ModTime int64 `json:"mod_time"`
	Size    int64 `json:"size"`
}

// symbolCache is the opaque, best-effort cache written after a full
// refresh (<repo>/.snipe/symbols.json). A mismatch between the recorded
// entry and a file's current stat forces that file to be re-parsed; the
// cache itself is never treated as a source of truth for symbols.
type symbolCache struct {
	Files   map[string]fileCacheEntry `json:"files"`
	Symbols map[string][]types.Symbol `json:"symbols"`
}

func persistSymbolCache(root string, byFile map[string][]types.Symbol) error {
	dir := filepath.Join(root, ".snipe")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return snipeerr.NewPersistError(dir, err)
	}

	cache := symbolCache{
		Files:   make(map[string]fileCacheEntry, len(byFile)),
		Symbols: byFile,
	}
	for file := range byFile {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		cache.Files[file] = fileCacheEntry{ModTime: info.ModTime().UnixNano(), Size: info.Size()}
	}

	path := filepath.Join(dir, "symbols.json")
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return snipeerr.NewPersistError(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return snipeerr.NewPersistError(path, err)
	}
	return nil
}

// loadSymbolCache reads a previously persisted symbol cache, returning
// only the entries whose recorded mtime+size still match the file on
// disk. A missing or corrupt cache yields an empty map, forcing a cold
// re-parse of every file.
func loadSymbolCache(root string) map[string][]types.Symbol {
	path := filepath.Join(root, ".snipe", "symbols.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var cache symbolCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil
	}

	fresh := make(map[string][]types.Symbol, len(cache.Files))
	for file, entry := range cache.Files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().UnixNano() != entry.ModTime || info.Size() != entry.Size {
			continue
		}
		if syms, ok := cache.Symbols[file]; ok {
			fresh[file] = syms
		}
	}
	return fresh
}
