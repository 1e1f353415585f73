package engine

import (
	"strings"

	"github.com/snipe-lang/snipe/internal/reposcan"
	"github.com/snipe-lang/snipe/internal/types"
)

// checkArgType implements R-ARG-TYPE: a positional call argument whose
// apparent type the matching parameter's annotation cannot absorb.
// Method calls (a dotted callee name) are skipped — Snipe never resolves
// receiver types well enough to know which class's method is being
// called.
func checkArgType(file string, bufferRefs []types.Reference, bufferSymbols []types.Symbol, snap *reposcan.Snapshot) []types.Diagnostic {
	if langFromPath(file) != types.LangPython {
		return nil
	}

	funcParams := make(map[string][]types.Param)
	for _, s := range bufferSymbols {
		if s.Kind == types.KindFunction && len(s.Params) > 0 {
			funcParams[s.Name] = s.Params
		}
	}
	if snap != nil {
		for key, sym := range snap.Functions {
			if key.Lang != types.LangPython || sym.Kind != types.KindFunction || len(sym.Params) == 0 {
				continue
			}
			if _, exists := funcParams[key.Name]; !exists {
				funcParams[key.Name] = sym.Params
			}
		}
	}

	var out []types.Diagnostic
	for _, ref := range bufferRefs {
		if ref.KindOfUse != types.RefCall || len(ref.ArgTypes) == 0 {
			continue
		}
		if strings.Contains(ref.Name, ".") {
			continue
		}
		params, ok := funcParams[ref.Name]
		if !ok {
			continue
		}
		regular := regularParams(params)
		for i, argType := range ref.ArgTypes {
			if i >= len(regular) {
				break
			}
			if argType == "" || regular[i].AnnotatedType == "" {
				continue
			}
			if !widenedAssignCompatible(regular[i].AnnotatedType, argType) {
				name := regular[i].Name
				if name == "" {
					name = "arg" + itoa(i)
				}
				out = append(out, types.Diagnostic{
					File: file, Line: ref.Line, Severity: types.SeverityError,
					Code: types.CodeArgTypeMismatch,
					Message: "Argument '" + name + "' of '" + ref.Name + "' expects type '" + regular[i].AnnotatedType +
						"' but got '" + argType + "'.",
				})
			}
		}
	}
	return out
}

func regularParams(params []types.Param) []types.Param {
	var out []types.Param
	for _, p := range params {
		if !p.IsStarArgs && !p.IsKwargs {
			out = append(out, p)
		}
	}
	return out
}
