package engine

import (
	"path/filepath"
	"strings"

	"github.com/snipe-lang/snipe/internal/reposcan"
	"github.com/snipe-lang/snipe/internal/types"
)

// langFromPath returns the language a file extension implies, or "" when
// the extension is neither a C nor a Python one Snipe understands.
func langFromPath(file string) types.Language {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".c", ".h":
		return types.LangC
	case ".py", ".pyw", ".pyi":
		return types.LangPython
	default:
		return ""
	}
}

// isSameFile compares a buffer's own path against a repo symbol's file,
// tolerating "/" vs "\" and a bare basename recorded for a relative repo
// entry — ported from the reference checkers' _is_same_file helper.
func isSameFile(currentFile, repoFile string) bool {
	if repoFile == "" {
		return false
	}
	cur := strings.ReplaceAll(currentFile, "\\", "/")
	repo := strings.ReplaceAll(repoFile, "\\", "/")
	return cur == repo || strings.HasSuffix(cur, "/"+repo)
}

// repoDefinition finds the best repo-graph symbol for name/lang to compare
// a buffer declaration or reference against, skipping the current file
// (the buffer already has the authoritative unsaved version of it) and
// preferring a real definition over an extern declaration when both
// exist.
func repoDefinition(snap *reposcan.Snapshot, lang types.Language, name, currentFile string) (types.Symbol, bool) {
	if snap == nil {
		return types.Symbol{}, false
	}
	var best types.Symbol
	found := false
	for _, s := range snap.SymbolsNamed(lang, name) {
		if isSameFile(currentFile, s.File) {
			continue
		}
		if !found {
			best, found = s, true
			continue
		}
		if best.Kind == types.KindExtern && s.Kind != types.KindExtern {
			best = s
		}
	}
	return best, found
}

// typeOrKind mirrors the reference checkers' `s.type or s.kind` fallback:
// an untyped declaration still contributes its symbol kind as a crude type
// label so a mismatch between e.g. a function and a variable still shows.
func typeOrKind(s types.Symbol) string {
	if s.DeclaredType != "" {
		return s.DeclaredType
	}
	return s.Kind.String()
}
