package engine

import "github.com/snipe-lang/snipe/internal/types"

// checkUnusedExtern implements R-UNUSED-EXTERN: a C extern declaration
// with no reference anywhere else in the same buffer.
func checkUnusedExtern(file string, bufferRefs []types.Reference, bufferSymbols []types.Symbol) []types.Diagnostic {
	if langFromPath(file) != types.LangC {
		return nil
	}
	refNames := referenceNameSet(bufferRefs)

	var out []types.Diagnostic
	for _, s := range bufferSymbols {
		if s.Kind != types.KindExtern {
			continue
		}
		if _, used := refNames[s.Name]; used {
			continue
		}
		out = append(out, types.Diagnostic{
			File: file, Line: s.Line, Severity: types.SeverityWarning,
			Code:    types.CodeUnusedExtern,
			Message: "Extern declaration '" + s.Name + "' is never used in this file.",
		})
	}
	return out
}

// checkDeadImport implements R-DEAD-IMPORT: a Python import with no
// reference anywhere else in the same buffer. "from X import *" is never
// flagged — Snipe cannot enumerate what it brought into scope.
func checkDeadImport(file string, bufferRefs []types.Reference, bufferSymbols []types.Symbol) []types.Diagnostic {
	if langFromPath(file) != types.LangPython {
		return nil
	}
	refNames := referenceNameSet(bufferRefs)

	var out []types.Diagnostic
	for _, s := range bufferSymbols {
		if s.Kind != types.KindImport || s.StarImport {
			continue
		}
		if _, used := refNames[s.Name]; used {
			continue
		}
		out = append(out, types.Diagnostic{
			File: file, Line: s.Line, Severity: types.SeverityWarning,
			Code:    types.CodeDeadImport,
			Message: "Imported name '" + s.Name + "' is never used in this file.",
		})
	}
	return out
}

func referenceNameSet(refs []types.Reference) map[string]struct{} {
	set := make(map[string]struct{}, len(refs))
	for _, r := range refs {
		set[r.Name] = struct{}{}
	}
	return set
}
