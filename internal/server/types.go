package server

import (
	"github.com/snipe-lang/snipe/internal/graphview"
	"github.com/snipe-lang/snipe/internal/types"
)

// BufferOverlay is one unsaved (content, path) pair an analyze request
// wants joined against the repo graph for that request only.
type BufferOverlay struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

// AnalyzeRequest mirrors spec.md §6's analyze(content, file_path,
// repo_path, open_buffers?[]) operation.
type AnalyzeRequest struct {
	Content     string          `json:"content"`
	FilePath    string          `json:"file_path"`
	RepoPath    string          `json:"repo_path"`
	OpenBuffers []BufferOverlay `json:"open_buffers,omitempty"`
}

// AnalyzeResponse is always well-formed, even when parsing the buffer
// failed — an empty diagnostics list, never a transport error, per
// spec.md §7.
type AnalyzeResponse struct {
	Diagnostics []types.Diagnostic `json:"diagnostics"`
}

// RefreshRequest triggers a full rescan of a repo.
type RefreshRequest struct {
	RepoPath string `json:"repo_path"`
}

type RefreshResponse struct {
	SymbolCount int `json:"symbol_count"`
}

// SymbolsRequest lists the symbols known for a repo, optionally narrowed
// to one file.
type SymbolsRequest struct {
	RepoPath string `json:"repo_path"`
	FilePath string `json:"file_path,omitempty"`
}

type SymbolsResponse struct {
	Symbols []types.Symbol `json:"symbols"`
}

// GraphRequest asks for the current node/edge view of a repo.
type GraphRequest struct {
	RepoPath string `json:"repo_path"`
}

type GraphResponse struct {
	Nodes []graphview.Node `json:"nodes"`
	Edges []graphview.Edge `json:"edges"`
}

// HealthResponse reports liveness and version, mirroring the teacher's
// PingResponse shape.
type HealthResponse struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version"`
}

// SaveDiagnosticsRequest persists the union of current diagnostics for a
// repo so the graph view can flag error nodes across requests.
type SaveDiagnosticsRequest struct {
	RepoPath    string              `json:"repo_path"`
	Diagnostics []types.Diagnostic `json:"diagnostics"`
}

type SaveDiagnosticsResponse struct {
	Success bool `json:"success"`
}
