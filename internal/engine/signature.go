package engine

import (
	"github.com/snipe-lang/snipe/internal/reposcan"
	"github.com/snipe-lang/snipe/internal/types"
)

// checkSignature implements R-SIGNATURE: a call whose argument count
// falls outside what the canonical function definition accepts, for both
// languages. Python's *args makes the upper bound unbounded; a C
// variadic_parameter does the same.
func checkSignature(file string, bufferRefs []types.Reference, bufferSymbols []types.Symbol, snap *reposcan.Snapshot) []types.Diagnostic {
	lang := langFromPath(file)
	if lang == "" {
		return nil
	}

	funcs := make(map[string]types.Symbol)
	for _, s := range bufferSymbols {
		if s.Kind == types.KindFunction {
			funcs[s.Name] = s
		}
	}
	if snap != nil {
		for key, sym := range snap.Functions {
			if key.Lang != lang || sym.Kind != types.KindFunction {
				continue
			}
			if _, exists := funcs[key.Name]; !exists {
				funcs[key.Name] = sym
			}
		}
	}

	out := checkDuplicateDefinitions(file, lang, bufferSymbols, snap)
	for _, ref := range bufferRefs {
		if ref.KindOfUse != types.RefCall && ref.KindOfUse != types.RefFormatCall {
			continue
		}
		def, ok := funcs[ref.Name]
		if !ok {
			continue
		}
		regular := 0
		minArgs := 0
		for _, p := range def.Params {
			if p.IsStarArgs || p.IsKwargs {
				continue
			}
			regular++
			if p.Default == "" {
				minArgs++
			}
		}
		variadic := def.VarargsFlag
		argCount := ref.ArgCount
		withinMax := variadic || argCount <= regular
		if argCount >= minArgs && withinMax {
			continue
		}

		var expected string
		switch {
		case variadic:
			expected = "at least " + itoa(minArgs)
		case minArgs == regular:
			expected = itoa(minArgs)
		default:
			expected = itoa(minArgs) + " to " + itoa(regular)
		}
		out = append(out, types.Diagnostic{
			File: file, Line: ref.Line, Severity: types.SeverityError,
			Code: types.CodeSignatureDrift,
			Message: "Function '" + ref.Name + "' expects " + expected + " argument(s) but " + itoa(argCount) +
				" provided (see " + def.File + ":" + itoa(def.Line) + ").",
		})
	}
	return out
}

// checkDuplicateDefinitions flags a C function that redefines a name
// whose canonical (first-seen) definition lives in a different file — a
// One Definition Rule violation. The canonical definition itself is
// never touched; only the later file gets an informational note, since
// Snipe doesn't treat this as blocking the way an argument-count
// mismatch is.
func checkDuplicateDefinitions(file string, lang types.Language, bufferSymbols []types.Symbol, snap *reposcan.Snapshot) []types.Diagnostic {
	if lang != types.LangC || snap == nil {
		return nil
	}
	var out []types.Diagnostic
	for _, s := range bufferSymbols {
		if s.Kind != types.KindFunction {
			continue
		}
		canonical, ok := snap.Canonical(lang, s.Name)
		if !ok || canonical.Kind != types.KindFunction || isSameFile(file, canonical.File) {
			continue
		}
		out = append(out, types.Diagnostic{
			File: file, Line: s.Line, Severity: types.SeverityInfo,
			Code: types.CodeSignatureDrift,
			Message: "Duplicate definition of '" + s.Name + "', first seen in " + canonical.File + ":" + itoa(canonical.Line) + ".",
		})
	}
	return out
}
