// Package graphview projects the repo symbol graph and the most recent
// diagnostics set into a node/edge view for visualization: one node per
// file, one node per function, variable or array symbol (other kinds are
// left out), BELONGS_TO edges from symbol to
// owning file, and REFERENCES edges between symbols sharing a name across
// different files. It never mutates the snapshot it is given and holds no
// state of its own, mirroring the teacher's SymbolLinkerEngine.Stats in
// that it derives everything from maps already built elsewhere.
package graphview

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/snipe-lang/snipe/internal/reposcan"
	"github.com/snipe-lang/snipe/internal/types"
)

// NodeKind distinguishes a file node from the symbol kinds it can wrap.
type NodeKind string

const (
	NodeFile     NodeKind = "file"
	NodeFunction NodeKind = "function"
	NodeVariable NodeKind = "variable"
	NodeArray    NodeKind = "array"
)

// Node is one entry of the graph view's "nodes" array.
type Node struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Kind        NodeKind `json:"kind"`
	File        string   `json:"file"`
	Line        int      `json:"line,omitempty"`
	HasErrors   bool     `json:"hasErrors"`
	SymbolCount int      `json:"symbolCount,omitempty"`
}

// EdgeRelationship is one of the two relationship kinds spec.md §4.5 names.
type EdgeRelationship string

const (
	RelBelongsTo  EdgeRelationship = "BELONGS_TO"
	RelReferences EdgeRelationship = "REFERENCES"
)

// Edge is one entry of the graph view's "edges" array.
type Edge struct {
	Source       string           `json:"source"`
	Target       string           `json:"target"`
	Relationship EdgeRelationship `json:"relationship"`
}

// View is the full node/edge projection returned by Build.
type View struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// symbolNodeKind maps a Symbol's Kind to the subset of node kinds the
// view recognizes; every other kind (extern, import, parameter, struct,
// unknown) is excluded from the view per spec.md §4.5 ("kind ∈
// {function, variable, array}").
func symbolNodeKind(k types.SymbolKind) (NodeKind, bool) {
	switch k {
	case types.KindFunction:
		return NodeFunction, true
	case types.KindVariable:
		return NodeVariable, true
	case types.KindArray:
		return NodeArray, true
	default:
		return "", false
	}
}

func fileNodeID(file string) string {
	return "file:" + file
}

func symbolNodeID(file string, line int, name string) string {
	return fmt.Sprintf("%s:%d:%s", file, line, name)
}

// Build projects snap plus diagnostics into nodes and edges. diagnostics
// is the most recently saved set for the repo (possibly nil); a node's
// hasErrors flag is true when any diagnostic's basename and, for symbol
// nodes, line number, match — basename rather than full path because
// diagnostics may arrive with an absolute path while the graph's file
// buckets are keyed however the scan recorded them.
func Build(snap *reposcan.Snapshot, diagnostics []types.Diagnostic) View {
	fileHasError := make(map[string]bool)
	lineHasError := make(map[string]bool) // basename\x00line
	for _, d := range diagnostics {
		base := filepath.Base(d.File)
		fileHasError[base] = true
		lineHasError[fmt.Sprintf("%s\x00%d", base, d.Line)] = true
	}

	if snap == nil {
		return View{Nodes: []Node{}, Edges: []Edge{}}
	}

	files := make([]string, 0, len(snap.ByFile))
	for f := range snap.ByFile {
		files = append(files, f)
	}
	sort.Strings(files)

	var nodes []Node
	var edges []Edge
	nameToIDs := make(map[string][]string)
	fileOfID := make(map[string]string)

	for _, file := range files {
		symbols := snap.ByFile[file]
		base := filepath.Base(file)
		nodes = append(nodes, Node{
			ID:          fileNodeID(file),
			Label:       base,
			Kind:        NodeFile,
			File:        file,
			HasErrors:   fileHasError[base],
			SymbolCount: len(symbols),
		})

		for _, sym := range symbols {
			kind, ok := symbolNodeKind(sym.Kind)
			if !ok {
				continue
			}
			id := symbolNodeID(file, sym.Line, sym.Name)
			hasErr := lineHasError[fmt.Sprintf("%s\x00%d", base, sym.Line)]
			nodes = append(nodes, Node{
				ID:        id,
				Label:     sym.Name,
				Kind:      kind,
				File:      file,
				Line:      sym.Line,
				HasErrors: hasErr,
			})
			edges = append(edges, Edge{
				Source:       id,
				Target:       fileNodeID(file),
				Relationship: RelBelongsTo,
			})
			nameToIDs[sym.Name] = append(nameToIDs[sym.Name], id)
			fileOfID[id] = file
		}
	}

	// REFERENCES edges: any two symbol nodes sharing a name across
	// different files get one edge per unordered pair, emitted once in
	// file-scan order so the result is deterministic.
	names := make([]string, 0, len(nameToIDs))
	for name := range nameToIDs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ids := nameToIDs[name]
		if len(ids) < 2 {
			continue
		}
		for i, src := range ids {
			for _, tgt := range ids[i+1:] {
				if fileOfID[src] == fileOfID[tgt] {
					continue
				}
				edges = append(edges, Edge{
					Source:       src,
					Target:       tgt,
					Relationship: RelReferences,
				})
			}
		}
	}

	if nodes == nil {
		nodes = []Node{}
	}
	if edges == nil {
		edges = []Edge{}
	}
	return View{Nodes: nodes, Edges: edges}
}
