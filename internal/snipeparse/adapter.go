// Package snipeparse implements Snipe's two language adapters (C and
// Python) and the symbol/reference extraction that walks their trees.
// Adapters never apply rules — they only expose a uniform, language-tagged
// view over a tree-sitter parse.
package snipeparse

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/snipe-lang/snipe/internal/types"
)

// ExtractResult is what a single file or buffer parse yields.
type ExtractResult struct {
	Symbols    []types.Symbol
	References []types.Reference
}

// Adapter parses source bytes for one language and extracts symbols and
// references from the resulting tree. It never touches the repo graph.
type Adapter interface {
	Language() types.Language
	// Extensions lists the file extensions this adapter claims, including
	// the leading dot (".c", ".h", ...).
	Extensions() []string
	// Extract parses content and walks the resulting tree. file is the
	// path recorded on every emitted Symbol/Reference; it need not exist
	// on disk (buffers are analyzed before they are saved).
	Extract(file string, content []byte) (ExtractResult, error)
}

// ForExtension returns the adapter registered for a file extension
// (case-sensitive, dot included), or nil if the extension is unsupported.
func ForExtension(ext string) Adapter {
	switch ext {
	case ".c", ".h":
		return cAdapter
	case ".py", ".pyw", ".pyi":
		return pyAdapter
	default:
		return nil
	}
}

// ForLanguage returns the adapter for a language tag.
func ForLanguage(lang types.Language) Adapter {
	switch lang {
	case types.LangC:
		return cAdapter
	case types.LangPython:
		return pyAdapter
	default:
		return nil
	}
}

var (
	cAdapter  = newCAdapter()
	pyAdapter = newPythonAdapter()
)

// newParser builds a tree-sitter parser bound to the given grammar. The
// teacher's own parser setup treats a nil error from SetLanguage as the
// only success signal worth checking; a grammar mismatch here is a build
// time constant, never a runtime condition, so any error is a programmer
// error and panics immediately at package init instead of being
// threaded through every Extract call.
func newParser(lang *sitter.Language) *sitter.Parser {
	p := sitter.NewParser()
	if err := p.SetLanguage(lang); err != nil {
		panic("snipeparse: failed to bind grammar: " + err.Error())
	}
	return p
}

func cppLanguage() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_cpp.Language())
}

func pythonLanguage() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_python.Language())
}

func nodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > uint(len(content)) || end > uint(len(content)) || start > end {
		return ""
	}
	return string(content[start:end])
}

func nodeLine(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	return int(node.StartPosition().Row) + 1
}

func findChildByKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		c := node.Child(i)
		if c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

func findChildrenByKind(node *sitter.Node, kind string) []*sitter.Node {
	if node == nil {
		return nil
	}
	var out []*sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		c := node.Child(i)
		if c != nil && c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

func children(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, node.ChildCount())
	for i := uint(0); i < node.ChildCount(); i++ {
		if c := node.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}
