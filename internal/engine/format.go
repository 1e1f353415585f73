package engine

import "github.com/snipe-lang/snipe/internal/types"

// formatArgIndex mirrors snipeparse's printf-family callee -> 1-based
// format-string argument index (spec.md §6), needed here to turn a format
// call's total argument count into the count of arguments that follow
// the format string itself.
var formatArgIndex = map[string]int{
	"printf":   1,
	"scanf":    1,
	"fprintf":  2,
	"fscanf":   2,
	"sprintf":  2,
	"sscanf":   2,
	"snprintf": 3,
}

// checkFormat implements R-FORMAT: a printf-family call whose literal
// format string's conversion-specifier count disagrees with how many
// variadic arguments followed it.
func checkFormat(file string, bufferRefs []types.Reference) []types.Diagnostic {
	if langFromPath(file) != types.LangC {
		return nil
	}
	var out []types.Diagnostic
	for _, ref := range bufferRefs {
		if ref.KindOfUse != types.RefFormatCall {
			continue
		}
		idx, ok := formatArgIndex[ref.Name]
		if !ok {
			idx = 1
		}
		varargCount := ref.ArgCount - idx
		if varargCount < 0 {
			varargCount = 0
		}
		if ref.FormatSpecifierCnt != varargCount {
			out = append(out, types.Diagnostic{
				File: file, Line: ref.Line, Severity: types.SeverityError,
				Code: types.CodeFormatString,
				Message: "Format string in '" + ref.Name + "' has " + itoa(ref.FormatSpecifierCnt) +
					" specifier(s) but " + itoa(varargCount) + " argument(s) provided.",
			})
		}
	}
	return out
}
