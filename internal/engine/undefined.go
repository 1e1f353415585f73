package engine

import (
	"strings"

	"github.com/snipe-lang/snipe/internal/reposcan"
	"github.com/snipe-lang/snipe/internal/types"
)

// checkUndefined implements R-UNDEFINED: a call or name reference whose
// name resolves to nothing in the buffer, the repo graph, the language's
// builtin allowlist, or (Python) the file's own imports. In Python both
// calls and plain name reads are checked; in C only call sites are
// checked, and plain identifier reads are never reported. A star import
// anywhere in the buffer suppresses the whole rule for that file, since
// Snipe cannot enumerate what a wildcard import actually brings in.
func checkUndefined(file string, bufferRefs []types.Reference, bufferSymbols []types.Symbol, snap *reposcan.Snapshot) []types.Diagnostic {
	lang := langFromPath(file)
	if lang == "" {
		return nil
	}

	known := make(map[string]struct{}, len(bufferSymbols))
	for _, s := range bufferSymbols {
		known[s.Name] = struct{}{}
		if s.StarImport {
			return nil
		}
	}
	if snap != nil {
		for key := range snap.ByName {
			if key.Lang == lang {
				known[key.Name] = struct{}{}
			}
		}
	}

	var out []types.Diagnostic
	switch lang {
	case types.LangPython:
		for n := range pythonBuiltins {
			known[n] = struct{}{}
		}
		for n := range pythonCommonGlobals {
			known[n] = struct{}{}
		}
		for _, ref := range bufferRefs {
			if ref.KindOfUse == types.RefRead && ref.Name != "return" {
				if _, ok := known[ref.Name]; !ok {
					out = append(out, types.Diagnostic{
						File: file, Line: ref.Line, Severity: types.SeverityWarning,
						Code:    types.CodeUndefinedSymbol,
						Message: "'" + ref.Name + "' is not defined in this file, the repository, or Python builtins.",
					})
				}
			}
			if ref.KindOfUse == types.RefCall && !strings.Contains(ref.Name, ".") {
				if _, ok := known[ref.Name]; !ok {
					out = append(out, types.Diagnostic{
						File: file, Line: ref.Line, Severity: types.SeverityWarning,
						Code:    types.CodeUndefinedSymbol,
						Message: "Function '" + ref.Name + "' is not defined in this file, the repository, or Python builtins.",
					})
				}
			}
		}
	case types.LangC:
		for n := range cStdlibFunctions {
			known[n] = struct{}{}
		}
		for _, ref := range bufferRefs {
			if ref.KindOfUse != types.RefCall && ref.KindOfUse != types.RefFormatCall {
				continue
			}
			if _, ok := known[ref.Name]; !ok {
				out = append(out, types.Diagnostic{
					File: file, Line: ref.Line, Severity: types.SeverityWarning,
					Code:    types.CodeUndefinedSymbol,
					Message: "Function '" + ref.Name + "' is not defined in this file, the repository, or the C standard library.",
				})
			}
		}
	}
	return out
}
