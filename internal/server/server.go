// Package server exposes the analysis engine over a thin per-project RPC
// transport: a net/http server bound to a Unix domain socket, one handler
// per operation, JSON request/response bodies. Every handler does nothing
// but decode, call into internal/engine or internal/graphview, and
// encode — grounded on the teacher's IndexServer
// (internal/server/server.go) and its per-project socket derivation.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/snipe-lang/snipe/internal/engine"
	"github.com/snipe-lang/snipe/internal/graphview"
	"github.com/snipe-lang/snipe/internal/reposcan"
	"github.com/snipe-lang/snipe/internal/snipeconfig"
	"github.com/snipe-lang/snipe/internal/snipelog"
	"github.com/snipe-lang/snipe/internal/snipeparse"
	"github.com/snipe-lang/snipe/internal/types"
	"github.com/snipe-lang/snipe/internal/version"
)

// Server holds one repo graph per project root it has been asked to serve,
// plus the most recently saved diagnostics for each, so /graph requests
// can flag error nodes without re-running analysis.
type Server struct {
	cfg       *snipeconfig.Config
	listener  net.Listener
	http      *http.Server
	startTime time.Time

	mu          sync.RWMutex
	graphs      map[string]*reposcan.Graph
	diagnostics map[string][]types.Diagnostic

	watcher *reposcan.Watcher

	shutdownChan chan struct{}
	wg           sync.WaitGroup
	running      bool
}

// New creates a server that defaults to cfg.Project.Root when a request
// omits repo_path.
func New(cfg *snipeconfig.Config) *Server {
	return &Server{
		cfg:          cfg,
		startTime:    time.Now(),
		graphs:       make(map[string]*reposcan.Graph),
		diagnostics:  make(map[string][]types.Diagnostic),
		shutdownChan: make(chan struct{}),
	}
}

// SocketPathForRoot derives a per-project Unix socket path from a hash of
// the absolute repo path, so multiple repos can run independent server
// instances without colliding. Ported from the teacher's
// GetSocketPathForRoot.
func SocketPathForRoot(root string) string {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}
	hash := uint32(2166136261)
	for _, c := range absRoot {
		hash = hash*31 + uint32(c)
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("snipe-%08x.sock", hash))
}

// Start begins listening on the configured Unix socket.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.mu.Unlock()

	socketPath := s.cfg.Server.SocketPath
	if socketPath == "" {
		socketPath = SocketPathForRoot(s.cfg.Project.Root)
	}
	os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("create socket: %w", err)
	}
	s.listener = listener
	os.Chmod(socketPath, 0600)

	mux := http.NewServeMux()
	s.registerHandlers(mux)
	s.http = &http.Server{Handler: mux}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.http.Serve(listener); err != nil && err != http.ErrServerClosed {
			snipelog.Debugf("server: serve error: %v", err)
		}
	}()

	if s.cfg.Index.WatchMode {
		if err := s.startWatcher(); err != nil {
			snipelog.Debugf("server: watcher not started: %v", err)
		}
	}

	snipelog.Debugf("server: listening on %s (pid %d)", socketPath, os.Getpid())
	return nil
}

// startWatcher attaches a file watcher to the same *reposcan.Graph the
// HTTP handlers read through — graphFor both creates and caches it in
// s.graphs, so the watcher's refreshes are visible to every subsequent
// /analyze, /symbols, and /graph request against this root, not to a
// second, unread graph.
func (s *Server) startWatcher() error {
	root := s.cfg.Project.Root
	g := s.graphFor(root)

	debounce := time.Duration(s.cfg.Index.WatchDebounceMs) * time.Millisecond
	watcher, err := reposcan.NewWatcher(g, debounce)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Start(root); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	s.watcher = watcher
	return nil
}

func (s *Server) registerHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/refresh", s.handleRefresh)
	mux.HandleFunc("/symbols", s.handleSymbols)
	mux.HandleFunc("/graph", s.handleGraph)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/save_diagnostics", s.handleSaveDiagnostics)
}

// graphFor returns the Graph for root, creating and fully scanning one on
// first use. Never returns an error — a scan failure leaves an empty
// Graph, which simply makes every subsequent lookup miss (spec.md §7).
func (s *Server) graphFor(root string) *reposcan.Graph {
	if root == "" {
		root = s.cfg.Project.Root
	}

	s.mu.RLock()
	g, ok := s.graphs[root]
	s.mu.RUnlock()
	if ok {
		return g
	}

	g = reposcan.New(root, reposcan.Options{
		RespectGitignore: s.cfg.Index.RespectGitignore,
		Exclude:          s.cfg.Index.Exclude,
	})
	if cached := loadSymbolCache(root); len(cached) > 0 {
		g.SeedCache(cached)
	}
	if _, err := g.FullScan(context.Background(), 4); err != nil {
		snipelog.Debugf("server: initial scan of %s failed: %v", root, err)
	} else if err := persistSymbolCache(root, g.Snapshot().ByFile); err != nil {
		snipelog.Debugf("server: persist symbol cache for %s: %v", root, err)
	}

	s.mu.Lock()
	s.graphs[root] = g
	if _, seeded := s.diagnostics[root]; !seeded {
		s.diagnostics[root] = loadDiagnostics(root)
	}
	s.mu.Unlock()
	return g
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.NewString()

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, AnalyzeResponse{Diagnostics: []types.Diagnostic{}})
		return
	}
	snipelog.Debugf("server: analyze[%s] %s (repo %s)", traceID, req.FilePath, req.RepoPath)

	adapter := snipeparse.ForExtension(filepath.Ext(req.FilePath))
	if adapter == nil {
		writeJSON(w, AnalyzeResponse{Diagnostics: []types.Diagnostic{}})
		return
	}
	extracted, err := adapter.Extract(req.FilePath, []byte(req.Content))
	if err != nil {
		snipelog.Debugf("server: analyze[%s] parse failed for %s: %v", traceID, req.FilePath, err)
		writeJSON(w, AnalyzeResponse{Diagnostics: []types.Diagnostic{}})
		return
	}

	g := s.graphFor(req.RepoPath)
	snap := overlayBuffers(g.Snapshot(), req.OpenBuffers)

	diags := engine.Analyze(req.FilePath, extracted.References, extracted.Symbols, snap)
	snipelog.Debugf("server: analyze[%s] produced %d diagnostics", traceID, len(diags))
	writeJSON(w, AnalyzeResponse{Diagnostics: diags})
}

// overlayBuffers builds a request-scoped snapshot with each open buffer's
// file bucket replaced by its freshly parsed content, without touching
// the Graph's persisted snapshot — spec.md §6's "overlays ... for this
// request only (not persisted)".
func overlayBuffers(snap *reposcan.Snapshot, buffers []BufferOverlay) *reposcan.Snapshot {
	if len(buffers) == 0 {
		return snap
	}
	byFile := make(map[string][]types.Symbol, len(snap.ByFile)+len(buffers))
	for k, v := range snap.ByFile {
		byFile[k] = v
	}
	for _, b := range buffers {
		adapter := snipeparse.ForExtension(filepath.Ext(b.FilePath))
		if adapter == nil {
			continue
		}
		extracted, err := adapter.Extract(b.FilePath, []byte(b.Content))
		if err != nil {
			continue
		}
		byFile[b.FilePath] = extracted.Symbols
	}
	return reposcan.BuildSnapshot(byFile)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	root := req.RepoPath
	if root == "" {
		root = s.cfg.Project.Root
	}

	g := s.graphFor(root)
	count, err := g.FullScan(r.Context(), 4)
	if err != nil {
		snipelog.Debugf("server: refresh of %s failed: %v", root, err)
	} else if err := persistSymbolCache(root, g.Snapshot().ByFile); err != nil {
		snipelog.Debugf("server: persist symbol cache for %s: %v", root, err)
	}
	writeJSON(w, RefreshResponse{SymbolCount: count})
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	var req SymbolsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap := s.graphFor(req.RepoPath).Snapshot()
	var symbols []types.Symbol
	if req.FilePath != "" {
		symbols = snap.ByFile[req.FilePath]
	} else {
		for _, syms := range snap.ByFile {
			symbols = append(symbols, syms...)
		}
	}
	if symbols == nil {
		symbols = []types.Symbol{}
	}
	writeJSON(w, SymbolsResponse{Symbols: symbols})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var req GraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	root := req.RepoPath
	if root == "" {
		root = s.cfg.Project.Root
	}
	snap := s.graphFor(root).Snapshot()

	s.mu.RLock()
	diags := s.diagnostics[root]
	s.mu.RUnlock()

	view := graphview.Build(snap, diags)
	writeJSON(w, GraphResponse{Nodes: view.Nodes, Edges: view.Edges})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{
		UptimeSeconds: time.Since(s.startTime).Seconds(),
		Version:       version.Version,
	})
}

func (s *Server) handleSaveDiagnostics(w http.ResponseWriter, r *http.Request) {
	var req SaveDiagnosticsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	root := req.RepoPath
	if root == "" {
		root = s.cfg.Project.Root
	}

	s.mu.Lock()
	s.diagnostics[root] = types.DedupDiagnostics(req.Diagnostics)
	s.mu.Unlock()

	if err := persistDiagnostics(root, req.Diagnostics); err != nil {
		snipelog.Debugf("server: persist diagnostics for %s: %v", root, err)
	}

	writeJSON(w, SaveDiagnosticsResponse{Success: true})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// Wait blocks until Shutdown closes the server's shutdown channel.
func (s *Server) Wait() {
	<-s.shutdownChan
}

// Shutdown stops accepting connections and releases the socket file.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			snipelog.Debugf("server: watcher stop: %v", err)
		}
	}

	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	s.wg.Wait()
	if s.listener != nil {
		s.listener.Close()
	}

	socketPath := s.cfg.Server.SocketPath
	if socketPath == "" {
		socketPath = SocketPathForRoot(s.cfg.Project.Root)
	}
	os.Remove(socketPath)

	close(s.shutdownChan)
	snipelog.Debugf("server: shut down cleanly")
	return nil
}
