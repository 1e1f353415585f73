package server

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipe-lang/snipe/internal/snipeconfig"
	"github.com/snipe-lang/snipe/internal/types"
)

// testSocketPath mirrors the teacher's getTestSocketPath.
func testSocketPath(t *testing.T) string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("snipe-test-%s.sock", t.Name()))
}

func startTestServer(t *testing.T, root string) (*Server, *Client) {
	socketPath := testSocketPath(t)
	t.Cleanup(func() { os.Remove(socketPath) })

	cfg, err := snipeconfig.Load(root)
	require.NoError(t, err)
	cfg.Server.SocketPath = socketPath

	srv := New(cfg)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	client := NewClientWithSocket(socketPath)
	require.Eventually(t, client.IsServerRunning, 2*time.Second, 10*time.Millisecond)
	return srv, client
}

func TestServerLifecycle_RefreshAnalyzeGraphHealth(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.c"), []byte("int counter;\n"), 0o644))

	_, client := startTestServer(t, dir)

	health, err := client.Health()
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", health.Version)
	assert.GreaterOrEqual(t, health.UptimeSeconds, 0.0)

	refresh, err := client.Refresh(dir)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, refresh.SymbolCount, 1)

	graph, err := client.Graph(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, graph.Nodes)

	analyze, err := client.Analyze(AnalyzeRequest{
		Content:  "int counter;\nint x = counter;\n",
		FilePath: filepath.Join(dir, "main.c"),
		RepoPath: dir,
	})
	require.NoError(t, err)
	assert.NotNil(t, analyze.Diagnostics)
}

func TestServerAnalyzeNeverErrorsOnUnparseableInput(t *testing.T) {
	dir := t.TempDir()
	_, client := startTestServer(t, dir)

	resp, err := client.Analyze(AnalyzeRequest{
		Content:  "not even close to valid",
		FilePath: filepath.Join(dir, "weird.unknown"),
		RepoPath: dir,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Diagnostics)
}

func TestServerOverlayBuffersDoesNotMutatePersistedGraph(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.c")
	require.NoError(t, os.WriteFile(file, []byte("int original;\n"), 0o644))

	_, client := startTestServer(t, dir)
	_, err := client.Refresh(dir)
	require.NoError(t, err)

	_, err = client.Analyze(AnalyzeRequest{
		Content:  "int original;\nint overlaid;\n",
		FilePath: file,
		RepoPath: dir,
		OpenBuffers: []BufferOverlay{
			{FilePath: file, Content: "int original;\nint overlaid;\n"},
		},
	})
	require.NoError(t, err)

	symbols, err := client.Symbols(SymbolsRequest{RepoPath: dir, FilePath: file})
	require.NoError(t, err)
	for _, sym := range symbols.Symbols {
		assert.NotEqual(t, "overlaid", sym.Name, "buffer overlay must not leak into the persisted graph")
	}
}

func TestServerSaveAndGraphRoundTripsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.c")
	require.NoError(t, os.WriteFile(file, []byte("int counter;\n"), 0o644))

	_, client := startTestServer(t, dir)
	_, err := client.Refresh(dir)
	require.NoError(t, err)

	save, err := client.SaveDiagnostics(SaveDiagnosticsRequest{
		RepoPath: dir,
		Diagnostics: []types.Diagnostic{
			{File: file, Line: 1, Severity: types.SeverityError, Code: types.CodeUnusedExtern, Message: "unused"},
		},
	})
	require.NoError(t, err)
	assert.True(t, save.Success)

	data, err := os.ReadFile(filepath.Join(dir, ".snipe", "diagnostics.json"))
	require.NoError(t, err)
	var persisted []types.Diagnostic
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Len(t, persisted, 1)

	graph, err := client.Graph(dir)
	require.NoError(t, err)
	found := false
	for _, n := range graph.Nodes {
		if n.HasErrors {
			found = true
		}
	}
	assert.True(t, found, "graph should flag the file node carrying the saved diagnostic")
}

func TestServerPersistsSymbolCacheToDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.c"), []byte("int counter;\n"), 0o644))

	_, client := startTestServer(t, dir)
	_, err := client.Refresh(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".snipe", "symbols.json"))
	require.NoError(t, err)

	var cache symbolCache
	require.NoError(t, json.Unmarshal(data, &cache))
	assert.Contains(t, cache.Files, filepath.Join(dir, "main.c"))
}

func TestSocketPathForRootIsStableAndDistinct(t *testing.T) {
	a := SocketPathForRoot("/tmp/repo-a")
	b := SocketPathForRoot("/tmp/repo-a")
	c := SocketPathForRoot("/tmp/repo-b")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
