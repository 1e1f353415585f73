package engine

import (
	"github.com/snipe-lang/snipe/internal/reposcan"
	"github.com/snipe-lang/snipe/internal/types"
)

// arraySizeSite is where R-BOUNDS found an array's declared size: the
// canonical repo definition when one exists outside the current file, the
// buffer's own declaration otherwise.
type arraySizeSite struct {
	size int
	file string
	line int
}

// checkBounds implements R-BOUNDS for both languages: a literal subscript
// against a declared array/list/tuple size. The canonical size always
// comes from a repo definition in another file when one exists — an
// extern declaration in the buffer itself may overstate its bounds, so
// the buffer's own size only applies as a fallback.
func checkBounds(file string, bufferRefs []types.Reference, bufferSymbols []types.Symbol, snap *reposcan.Snapshot) []types.Diagnostic {
	lang := langFromPath(file)
	if lang == "" {
		return nil
	}

	sites := make(map[string]arraySizeSite)
	if snap != nil {
		for key, syms := range snap.ByName {
			if key.Lang != lang {
				continue
			}
			for _, s := range syms {
				if s.ArraySize == nil || isSameFile(file, s.File) {
					continue
				}
				if _, exists := sites[key.Name]; !exists {
					sites[key.Name] = arraySizeSite{size: *s.ArraySize, file: s.File, line: s.Line}
				}
			}
		}
	}
	for _, s := range bufferSymbols {
		if s.ArraySize == nil {
			continue
		}
		if _, exists := sites[s.Name]; !exists {
			sites[s.Name] = arraySizeSite{size: *s.ArraySize, file: file, line: s.Line}
		}
	}

	var out []types.Diagnostic
	for _, ref := range bufferRefs {
		if ref.KindOfUse != types.RefArrayAccess || ref.IndexValue == nil {
			continue
		}
		site, ok := sites[ref.Name]
		if !ok {
			continue
		}
		idx := *ref.IndexValue
		if idx < 0 || idx >= site.size {
			out = append(out, types.Diagnostic{
				File: file, Line: ref.Line, Severity: types.SeverityError,
				Code: types.CodeArrayBounds,
				Message: "Index " + itoa(idx) + " exceeds declared size " + itoa(site.size) + " for '" + ref.Name +
					"' (declared in " + site.file + ":" + itoa(site.line) + ").",
			})
		}
	}
	return out
}
