package graphview

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/snipe-lang/snipe/internal/reposcan"
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

func findNode(v View, id string) (Node, bool) {
	for _, n := range v.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

func TestBuildEmitsFileAndSymbolNodesWithBelongsTo(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.c", "int counter;\n")

	g := reposcan.New(dir, reposcan.Options{})
	if _, err := g.FullScan(context.Background(), 1); err != nil {
		t.Fatalf("FullScan: %v", err)
	}

	v := Build(g.Snapshot(), nil)

	fileID := "file:" + path
	if _, ok := findNode(v, fileID); !ok {
		t.Fatalf("expected file node %s", fileID)
	}

	symID := path + ":1:counter"
	symNode, ok := findNode(v, symID)
	if !ok {
		t.Fatalf("expected symbol node %s", symID)
	}
	if symNode.Kind != NodeVariable {
		t.Errorf("kind = %s, want variable", symNode.Kind)
	}

	var gotEdge bool
	for _, e := range v.Edges {
		if e.Source == symID && e.Target == fileID && e.Relationship == RelBelongsTo {
			gotEdge = true
		}
	}
	if !gotEdge {
		t.Error("expected BELONGS_TO edge from symbol to file")
	}
}

func TestBuildEmitsReferencesAcrossFilesOnly(t *testing.T) {
	dir := t.TempDir()
	pathA := writeFile(t, dir, "a.c", "int shared;\n")
	pathB := writeFile(t, dir, "b.c", "int shared;\nint shared_again;\n")

	g := reposcan.New(dir, reposcan.Options{})
	if _, err := g.FullScan(context.Background(), 1); err != nil {
		t.Fatalf("FullScan: %v", err)
	}

	v := Build(g.Snapshot(), nil)

	idA := pathA + ":1:shared"
	idB := pathB + ":1:shared"

	var found bool
	for _, e := range v.Edges {
		if e.Relationship != RelReferences {
			continue
		}
		if (e.Source == idA && e.Target == idB) || (e.Source == idB && e.Target == idA) {
			found = true
		}
	}
	if !found {
		t.Error("expected a REFERENCES edge between same-named symbols in different files")
	}

	for _, e := range v.Edges {
		if e.Relationship == RelReferences && e.Source == e.Target {
			t.Error("must not emit a self-referencing edge")
		}
	}
}

func TestBuildMarksFileAndSymbolErrorsByBasename(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.py", "total = 0\n")

	g := reposcan.New(dir, reposcan.Options{})
	if _, err := g.FullScan(context.Background(), 1); err != nil {
		t.Fatalf("FullScan: %v", err)
	}

	diags := []types.Diagnostic{
		{File: "/abs/project/" + filepath.Base(path), Line: 1, Code: types.CodeTypeMismatch, Message: "mismatch"},
	}
	v := Build(g.Snapshot(), diags)

	fileNode, ok := findNode(v, "file:"+path)
	if !ok {
		t.Fatal("expected file node")
	}
	if !fileNode.HasErrors {
		t.Error("expected file node hasErrors = true when a diagnostic matches its basename")
	}

	symNode, ok := findNode(v, path+":1:total")
	if !ok {
		t.Fatal("expected symbol node")
	}
	if !symNode.HasErrors {
		t.Error("expected symbol node hasErrors = true when line matches")
	}
}

func TestBuildOnNilSnapshotReturnsEmptyView(t *testing.T) {
	v := Build(nil, nil)
	if len(v.Nodes) != 0 || len(v.Edges) != 0 {
		t.Errorf("expected empty view, got %d nodes / %d edges", len(v.Nodes), len(v.Edges))
	}
}
