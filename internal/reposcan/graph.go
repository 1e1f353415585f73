// Package reposcan builds and maintains the repo-wide symbol graph: the
// authoritative, cross-file view the analysis engine joins buffer
// references against. It owns exactly one mutable structure, protected by
// a single-writer/many-readers discipline — every write replaces the
// snapshot wholesale rather than mutating it in place, so a reader that
// already holds a pointer to a snapshot never observes a partial update.
package reposcan

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/snipe-lang/snipe/internal/snipeparse"
	"github.com/snipe-lang/snipe/internal/snipeerr"
	"github.com/snipe-lang/snipe/internal/snipelog"
	"github.com/snipe-lang/snipe/internal/types"
)

type nameKey struct {
	Lang types.Language
	Name string
}

// Snapshot is an immutable view of the repo graph at one point in time.
// Readers that obtained a *Snapshot via Graph.Snapshot keep seeing this
// exact state even if a concurrent refresh replaces the graph's current
// pointer — spec invariant: diagnostics depend only on the snapshot at
// the start of an analysis.
type Snapshot struct {
	ByFile    map[string][]types.Symbol
	ByName    map[nameKey][]types.Symbol
	Functions map[nameKey]types.Symbol
}

// SymbolsNamed returns every symbol with the given language/name, in the
// order files were scanned (first-seen file first).
func (s *Snapshot) SymbolsNamed(lang types.Language, name string) []types.Symbol {
	return s.ByName[nameKey{lang, name}]
}

// Canonical returns the canonical (first-seen) definition for a name, if
// one was recorded (functions, variables, arrays, structs and externs of
// any scope participate in canonical selection; imports do not — see
// BuildSnapshot).
func (s *Snapshot) Canonical(lang types.Language, name string) (types.Symbol, bool) {
	sym, ok := s.Functions[nameKey{lang, name}]
	return sym, ok
}

// Graph is the mutable, thread-safe holder of the current Snapshot.
type Graph struct {
	root string

	mu       sync.RWMutex
	current  *Snapshot
	excludes []string
	useGitignore bool
	ignore   *ignoreMatcher
	warm     map[string][]types.Symbol
}

// SeedCache primes the Graph with previously persisted per-file symbols
// (e.g. from a symbol cache written after an earlier refresh). The next
// FullScan reuses an entry verbatim instead of re-parsing that file;
// callers are responsible for having already validated freshness (mtime
// and size) before seeding, since Graph itself has no notion of a cache's
// staleness policy.
func (g *Graph) SeedCache(cached map[string][]types.Symbol) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.warm = cached
}

// Options configures a Graph's scan exclusions.
type Options struct {
	RespectGitignore bool
	Exclude          []string // glob patterns, relative to root
}

// New creates an empty Graph rooted at root. Call FullScan before relying
// on it for analysis; an empty Graph is a valid, if useless, starting
// point (every lookup simply misses).
func New(root string, opts Options) *Graph {
	g := &Graph{
		root:         root,
		excludes:     opts.Exclude,
		useGitignore: opts.RespectGitignore,
		current: &Snapshot{
			ByFile:    map[string][]types.Symbol{},
			ByName:    map[nameKey][]types.Symbol{},
			Functions: map[nameKey]types.Symbol{},
		},
	}
	if opts.RespectGitignore {
		g.ignore = loadIgnore(root)
	}
	return g
}

// Snapshot returns the current snapshot by reference. Callers must never
// mutate the returned value.
func (g *Graph) Snapshot() *Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current
}

// FullScan walks the repo tree honoring the fixed ignore list plus
// .gitignore and configured excludes, parses and extracts every supported
// file, and replaces the graph's snapshot atomically. Parse failures on
// individual files are logged and contribute zero symbols — they never
// abort the scan (spec.md §5 failure isolation).
func (g *Graph) FullScan(ctx context.Context, workers int) (int, error) {
	files, err := discoverFiles(g.root, g.excludes, g.ignore)
	if err != nil {
		return 0, snipeerr.NewScanError(g.root, "walk", err)
	}
	sort.Strings(files)

	type fileResult struct {
		path      string
		symbols   []types.Symbol
		refs      []types.Reference
		fromCache bool
	}
	results := make([]fileResult, len(files))

	if workers < 1 {
		workers = 1
	}
	g.mu.Lock()
	warm := g.warm
	g.warm = nil
	g.mu.Unlock()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, path := range files {
		i, path := i, path
		eg.Go(func() error {
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			default:
			}
			if cached, ok := warm[path]; ok {
				results[i] = fileResult{path: path, symbols: cached, fromCache: true}
				return nil
			}
			adapter := snipeparse.ForExtension(filepath.Ext(path))
			if adapter == nil {
				return nil
			}
			content, readErr := readFile(path)
			if readErr != nil {
				snipelog.Debugf("reposcan: skip %s: %v", path, readErr)
				return nil
			}
			extracted, extractErr := adapter.Extract(path, content)
			if extractErr != nil {
				snipelog.Debugf("reposcan: parse failed for %s: %v", path, extractErr)
				return nil
			}
			results[i] = fileResult{path: path, symbols: extracted.Symbols, refs: extracted.References}
			return nil
		})
	}
	if err := eg.Wait(); err != nil && ctx.Err() != nil {
		return 0, ctx.Err()
	}

	byFile := make(map[string][]types.Symbol, len(files))
	for _, r := range results {
		if r.path == "" {
			continue
		}
		if r.fromCache {
			byFile[r.path] = r.symbols
			continue
		}
		byFile[r.path] = attachReferenceCounts(r.symbols, r.refs)
	}

	snapshot := BuildSnapshot(byFile)

	g.mu.Lock()
	g.current = snapshot
	g.mu.Unlock()

	count := 0
	for _, syms := range byFile {
		count += len(syms)
	}
	return count, nil
}

// RefreshFile re-parses a single file and replaces its bucket in the
// graph, rebuilding both derived indexes from scratch — cheap at this
// scale and simpler than a per-symbol diff (spec.md §4.3).
func (g *Graph) RefreshFile(path string, content []byte) error {
	adapter := snipeparse.ForExtension(filepath.Ext(path))
	if adapter == nil {
		return nil
	}
	extracted, err := adapter.Extract(path, content)
	if err != nil {
		return snipeerr.NewParseError(path, 0, "", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	byFile := make(map[string][]types.Symbol, len(g.current.ByFile))
	for k, v := range g.current.ByFile {
		byFile[k] = v
	}
	byFile[path] = attachReferenceCounts(extracted.Symbols, extracted.References)
	g.current = BuildSnapshot(byFile)
	return nil
}

// RemoveFile drops a file's bucket (it no longer exists in the repo) and
// rebuilds the indexes.
func (g *Graph) RemoveFile(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.current.ByFile[path]; !ok {
		return
	}
	byFile := make(map[string][]types.Symbol, len(g.current.ByFile))
	for k, v := range g.current.ByFile {
		if k != path {
			byFile[k] = v
		}
	}
	g.current = BuildSnapshot(byFile)
}

// Stats summarizes the current snapshot, mirroring the
// files/symbols/... shape of the teacher's linker engine Stats().
func (g *Graph) Stats() map[string]int {
	snap := g.Snapshot()
	symbolCount := 0
	for _, syms := range snap.ByFile {
		symbolCount += len(syms)
	}
	return map[string]int{
		"files":   len(snap.ByFile),
		"symbols": symbolCount,
		"names":   len(snap.ByName),
	}
}

// BuildSnapshot rebuilds both derived indexes from a byFile map. Files are
// visited in lexicographic order so the first symbol recorded for a name
// is always the canonical one, per spec.md §4.3's ordering policy.
// Exported so a server request can build a throwaway, buffer-overlaid
// snapshot without mutating a Graph's persisted state.
func BuildSnapshot(byFile map[string][]types.Symbol) *Snapshot {
	paths := make([]string, 0, len(byFile))
	for p := range byFile {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	byName := make(map[nameKey][]types.Symbol)
	functions := make(map[nameKey]types.Symbol)

	for _, p := range paths {
		for _, sym := range byFile[p] {
			key := nameKey{sym.Language, sym.Name}
			byName[key] = append(byName[key], sym)
			if sym.Kind == types.KindFunction || sym.Kind == types.KindVariable || sym.Kind == types.KindArray || sym.Kind == types.KindStruct || sym.Kind == types.KindExtern {
				if _, exists := functions[key]; !exists {
					functions[key] = sym
				}
			}
		}
	}

	return &Snapshot{ByFile: byFile, ByName: byName, Functions: functions}
}

// attachReferenceCounts fills Symbol.ReferencesInFile by counting
// reference occurrences of each symbol's name within the same file.
func attachReferenceCounts(symbols []types.Symbol, refs []types.Reference) []types.Symbol {
	counts := make(map[string]int, len(refs))
	for _, r := range refs {
		counts[r.Name]++
	}
	out := make([]types.Symbol, len(symbols))
	for i, s := range symbols {
		s.ReferencesInFile = counts[s.Name]
		out[i] = s
	}
	return out
}
