// Package types defines the data model shared by every Snipe component:
// symbols, references and diagnostics. Nothing in this package parses,
// resolves or analyzes anything; it only describes shapes.
package types

import "strings"

// Language is one of the two source languages Snipe understands. There is
// no generic "unknown" language — every Symbol and Reference belongs to
// exactly one of these, and the rule engine never mixes them.
type Language string

const (
	LangC      Language = "c"
	LangPython Language = "python"
)

// SymbolKind enumerates what a Symbol declares.
type SymbolKind int

const (
	KindUnknown SymbolKind = iota
	KindVariable
	KindFunction
	KindArray
	KindStruct
	KindExtern
	KindImport
	KindParameter
)

var symbolKindNames = map[SymbolKind]string{
	KindUnknown:   "unknown",
	KindVariable:  "variable",
	KindFunction:  "function",
	KindArray:     "array",
	KindStruct:    "struct",
	KindExtern:    "extern",
	KindImport:    "import",
	KindParameter: "parameter",
}

func (k SymbolKind) String() string {
	if s, ok := symbolKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// SymbolScope is the lexical scope a Symbol was declared in.
type SymbolScope int

const (
	ScopeModule SymbolScope = iota
	ScopeFunction
	ScopeBlock
)

func (s SymbolScope) String() string {
	switch s {
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	default:
		return "module"
	}
}

// Param describes one entry of a function's parameter list. AnnotatedType
// and Default are empty strings when the source carries no annotation or
// default expression — Go's zero value stands in for Python's None here,
// there is no third "absent" state a caller needs to distinguish.
type Param struct {
	Name          string
	AnnotatedType string
	Default       string
	IsStarArgs    bool // Python *args
	IsKwargs      bool // Python **kwargs
}

// Symbol is a single declaration site. Its identity is the tuple
// (Language, File, Line, Name); two Symbols with that tuple equal are the
// same declaration re-extracted, never two distinct symbols.
type Symbol struct {
	Language Language
	File     string
	Line     int
	Name     string
	Kind     SymbolKind

	// DeclaredType is the language-native textual type, e.g. "int",
	// "float", "char[10]", "list[int]". Empty when the declaration has
	// no discoverable type (e.g. an untyped Python assignment).
	DeclaredType string

	// ArraySize is nil when the symbol is not an array/list/tuple or its
	// size could not be determined from a literal expression.
	ArraySize *int

	Scope SymbolScope

	// Params is non-nil only for Kind == KindFunction.
	Params       []Param
	VarargsFlag  bool
	KwargsFlag   bool
	ReturnType   string

	// StructMembers holds ordered member names mapped to their declared
	// type, populated only for Kind == KindStruct. MemberOrder preserves
	// declaration order since map iteration does not.
	StructMembers map[string]string
	MemberOrder   []string

	// StarImport is set on a Kind == KindImport symbol produced by
	// Python's "from X import *"; it suppresses R-UNDEFINED for every
	// reference in the same file.
	StarImport bool

	// ReferencesInFile is populated by the repo scan (not by the adapters)
	// by counting Reference occurrences of this Symbol's Name within the
	// same file it was declared in. R-DEAD-IMPORT and R-UNUSED-EXTERN do
	// not read it; they count the buffer's own references directly.
	ReferencesInFile int
}

// NormalizedType collapses whitespace and strips a trailing array-size
// suffix (e.g. "int[10]" -> "int") so R-TYPE-EXTERN can compare declared
// types while still reporting the original text at the call site.
func NormalizedType(declaredType string) string {
	t := strings.Join(strings.Fields(declaredType), " ")
	if idx := strings.IndexByte(t, '['); idx >= 0 {
		t = strings.TrimSpace(t[:idx])
	}
	return t
}
