package engine

import (
	"github.com/snipe-lang/snipe/internal/reposcan"
	"github.com/snipe-lang/snipe/internal/types"
)

// checkShadow implements R-SHADOW: a function-scope variable assignment
// whose name collides with a module-level variable, either one declared
// in this same buffer (message cites the declaration line) or one known
// only from the repo graph (message is generic, since Snipe doesn't carry
// that declaration's line across files for this rule).
func checkShadow(file string, bufferSymbols []types.Symbol, snap *reposcan.Snapshot) []types.Diagnostic {
	if langFromPath(file) != types.LangPython {
		return nil
	}

	moduleLevel := make(map[string]*types.Symbol)
	for i, s := range bufferSymbols {
		if s.Scope == types.ScopeModule && s.Kind == types.KindVariable {
			moduleLevel[s.Name] = &bufferSymbols[i]
		}
	}
	if snap != nil {
		for key, syms := range snap.ByName {
			if key.Lang != types.LangPython {
				continue
			}
			if _, known := moduleLevel[key.Name]; known {
				continue
			}
			for _, s := range syms {
				if s.Scope == types.ScopeModule && s.Kind == types.KindVariable {
					moduleLevel[key.Name] = nil // known at module level, but not from this buffer
					break
				}
			}
		}
	}

	var out []types.Diagnostic
	for _, s := range bufferSymbols {
		if s.Scope == types.ScopeModule || s.Kind != types.KindVariable {
			continue
		}
		outer, known := moduleLevel[s.Name]
		if !known {
			continue
		}
		if outer != nil {
			out = append(out, types.Diagnostic{
				File: file, Line: s.Line, Severity: types.SeverityWarning,
				Code: types.CodeShadowedSymbol,
				Message: "Local variable '" + s.Name + "' in '" + s.Scope.String() +
					"' shadows module-level variable defined at line " + itoa(outer.Line) + ".",
			})
		} else {
			out = append(out, types.Diagnostic{
				File: file, Line: s.Line, Severity: types.SeverityWarning,
				Code: types.CodeShadowedSymbol,
				Message: "Local variable '" + s.Name + "' in '" + s.Scope.String() +
					"' shadows a module-level variable in the repository.",
			})
		}
	}
	return out
}
