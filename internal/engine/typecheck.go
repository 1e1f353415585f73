package engine

import (
	"github.com/snipe-lang/snipe/internal/reposcan"
	"github.com/snipe-lang/snipe/internal/types"
)

// widenedAssignCompatible implements the shared compatibility table used
// by R-TYPE-ASSIGN, R-TYPE-RETURN and R-ARG-TYPE: an apparent type is
// compatible with an annotation when they match exactly, or when a
// literal int widens into a float-annotated target.
func widenedAssignCompatible(annotated, actual string) bool {
	if annotated == actual {
		return true
	}
	return annotated == "float" && actual == "int"
}

// arrayElemCompatible implements R-TYPE-ARRAY-WRITE's compatibility
// table: char accepts only char, int accepts int or char, float accepts
// float or int. Any element type outside that table only accepts an
// exact match.
func arrayElemCompatible(elemType, rhsType string) bool {
	switch elemType {
	case "char":
		return rhsType == "char"
	case "int":
		return rhsType == "int" || rhsType == "char"
	case "float":
		return rhsType == "float" || rhsType == "int"
	default:
		return elemType == rhsType
	}
}

// checkTypeExtern implements R-TYPE-EXTERN: a buffer's extern declaration
// whose type disagrees with the repo's canonical definition, or whose
// array size is larger than the definition's (a smaller size is not
// reported).
func checkTypeExtern(file string, bufferSymbols []types.Symbol, snap *reposcan.Snapshot) []types.Diagnostic {
	var out []types.Diagnostic
	if langFromPath(file) != types.LangC {
		return out
	}
	for _, sym := range bufferSymbols {
		if sym.Kind != types.KindExtern {
			continue
		}
		def, ok := repoDefinition(snap, types.LangC, sym.Name, file)
		if !ok {
			continue
		}
		repoType := types.NormalizedType(typeOrKind(def))
		bufType := types.NormalizedType(typeOrKind(sym))
		if repoType != "" && bufType != "" && repoType != bufType {
			out = append(out, types.Diagnostic{
				File: file, Line: sym.Line, Severity: types.SeverityError,
				Code: types.CodeTypeMismatch,
				Message: "'" + sym.Name + "' is declared as " + repoType + " in " + def.File + ":" + itoa(def.Line) +
					" but declared as " + bufType + " here.",
			})
		}
		if sym.ArraySize != nil && def.ArraySize != nil && *sym.ArraySize > *def.ArraySize {
			out = append(out, types.Diagnostic{
				File: file, Line: sym.Line, Severity: types.SeverityError,
				Code: types.CodeArrayBounds,
				Message: "'" + sym.Name + "' declares size " + itoa(*sym.ArraySize) + " but actual size is " +
					itoa(*def.ArraySize) + " (in " + def.File + ":" + itoa(def.Line) + ").",
			})
		}
	}
	return out
}

// checkTypeArrayWrite implements R-TYPE-ARRAY-WRITE: assigning a value
// into a typed C array element whose apparent type the element type
// cannot absorb.
func checkTypeArrayWrite(file string, bufferRefs []types.Reference, bufferSymbols []types.Symbol, snap *reposcan.Snapshot) []types.Diagnostic {
	var out []types.Diagnostic
	if langFromPath(file) != types.LangC {
		return out
	}
	byName := symbolsByName(bufferSymbols)
	for _, ref := range bufferRefs {
		if ref.KindOfUse != types.RefArrayAccess || !ref.IndexIsWrite {
			continue
		}
		if ref.RHSType == "" {
			continue
		}
		var elemType, elemFile string
		var elemLine int
		if sym, ok := byName[ref.Name]; ok && sym.DeclaredType != "" {
			elemType, elemFile, elemLine = types.NormalizedType(sym.DeclaredType), file, sym.Line
		} else if def, ok := repoDefinition(snap, types.LangC, ref.Name, file); ok {
			elemType, elemFile, elemLine = types.NormalizedType(typeOrKind(def)), def.File, def.Line
		} else {
			continue
		}
		if elemType == "" {
			continue
		}
		if !arrayElemCompatible(elemType, ref.RHSType) {
			out = append(out, types.Diagnostic{
				File: file, Line: ref.Line, Severity: types.SeverityError,
				Code: types.CodeTypeMismatch,
				Message: "Assigning " + ref.RHSType + " to '" + ref.Name + "' (element type " + elemType +
					" in " + elemFile + ":" + itoa(elemLine) + ").",
			})
		}
	}
	return out
}

// checkTypeAssign implements R-TYPE-ASSIGN: a Python annotated target
// assigned a literal whose apparent type the annotation cannot absorb.
func checkTypeAssign(file string, bufferRefs []types.Reference) []types.Diagnostic {
	var out []types.Diagnostic
	if langFromPath(file) != types.LangPython {
		return out
	}
	for _, ref := range bufferRefs {
		if ref.KindOfUse != types.RefWrite || ref.AnnotatedType == "" || ref.RHSType == "" {
			continue
		}
		if !widenedAssignCompatible(ref.AnnotatedType, ref.RHSType) {
			out = append(out, types.Diagnostic{
				File: file, Line: ref.Line, Severity: types.SeverityError,
				Code: types.CodeTypeMismatch,
				Message: "Variable '" + ref.Name + "' is annotated as '" + ref.AnnotatedType +
					"' but assigned a value of type '" + ref.RHSType + "'.",
			})
		}
	}
	return out
}

// checkTypeReturn implements R-TYPE-RETURN: a return statement whose
// apparent value type the function's declared return annotation cannot
// absorb. ReceiverType on the synthetic "return" reference carries the
// enclosing function's name (see snipeparse.extractReturn).
func checkTypeReturn(file string, bufferRefs []types.Reference) []types.Diagnostic {
	var out []types.Diagnostic
	if langFromPath(file) != types.LangPython {
		return out
	}
	for _, ref := range bufferRefs {
		if ref.KindOfUse != types.RefRead || ref.Name != "return" {
			continue
		}
		if ref.AnnotatedType == "" || ref.RHSType == "" {
			continue
		}
		if !widenedAssignCompatible(ref.AnnotatedType, ref.RHSType) {
			out = append(out, types.Diagnostic{
				File: file, Line: ref.Line, Severity: types.SeverityError,
				Code: types.CodeTypeMismatch,
				Message: "Return type '" + ref.RHSType + "' does not match declared return type '" +
					ref.AnnotatedType + "' for function '" + ref.ReceiverType + "'.",
			})
		}
	}
	return out
}

// checkTypeCrossFile implements R-TYPE-CROSS-FILE: a module-level
// annotated Python variable re-declared with a different annotation
// elsewhere in the repo.
func checkTypeCrossFile(file string, bufferSymbols []types.Symbol, snap *reposcan.Snapshot) []types.Diagnostic {
	var out []types.Diagnostic
	if langFromPath(file) != types.LangPython {
		return out
	}
	for _, sym := range bufferSymbols {
		if sym.Kind != types.KindVariable || sym.Scope != types.ScopeModule || sym.DeclaredType == "" {
			continue
		}
		def, ok := repoDefinition(snap, types.LangPython, sym.Name, file)
		if !ok || def.Kind != types.KindVariable || def.Scope != types.ScopeModule || def.DeclaredType == "" {
			continue
		}
		repoType := types.NormalizedType(def.DeclaredType)
		bufType := types.NormalizedType(sym.DeclaredType)
		if repoType != bufType {
			out = append(out, types.Diagnostic{
				File: file, Line: sym.Line, Severity: types.SeverityError,
				Code: types.CodeTypeMismatch,
				Message: "'" + sym.Name + "' is declared as " + repoType + " in " + def.File + ":" + itoa(def.Line) +
					" but declared as " + bufType + " here.",
			})
		}
	}
	return out
}

func symbolsByName(symbols []types.Symbol) map[string]types.Symbol {
	m := make(map[string]types.Symbol, len(symbols))
	for _, s := range symbols {
		if _, exists := m[s.Name]; !exists {
			m[s.Name] = s
		}
	}
	return m
}
