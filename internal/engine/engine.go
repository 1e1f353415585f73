// Package engine is Snipe's closed 15-rule analysis engine. Every rule is
// a pure function of one buffer's extracted symbols/references plus a
// read-only repo-graph snapshot; none of them mutate the graph or each
// other's output, so the dispatch order in Analyze is arbitrary (spec.md
// §4.4's rule-independence invariant) and any rule failing in isolation
// simply contributes zero diagnostics rather than aborting the rest.
package engine

import (
	"github.com/snipe-lang/snipe/internal/reposcan"
	"github.com/snipe-lang/snipe/internal/snipelog"
	"github.com/snipe-lang/snipe/internal/types"
)

// Analyze runs every rule against one buffer and returns its deduplicated
// diagnostics. bufferSymbols/bufferRefs are the buffer's own freshly
// extracted state — always treated as overriding whatever the repo graph
// says about the same file, since the buffer may hold unsaved edits the
// graph hasn't observed yet. snap may be nil (e.g. before the first full
// scan completes), in which case every rule that needs repo context
// degrades to buffer-only checking.
func Analyze(file string, bufferRefs []types.Reference, bufferSymbols []types.Symbol, snap *reposcan.Snapshot) []types.Diagnostic {
	var all []types.Diagnostic

	run := func(name string, fn func() []types.Diagnostic) {
		defer func() {
			if r := recover(); r != nil {
				snipelog.Debugf("engine: rule %s panicked on %s: %v", name, file, r)
			}
		}()
		all = append(all, fn()...)
	}

	run("R-TYPE-EXTERN", func() []types.Diagnostic { return checkTypeExtern(file, bufferSymbols, snap) })
	run("R-TYPE-ARRAY-WRITE", func() []types.Diagnostic { return checkTypeArrayWrite(file, bufferRefs, bufferSymbols, snap) })
	run("R-TYPE-ASSIGN", func() []types.Diagnostic { return checkTypeAssign(file, bufferRefs) })
	run("R-TYPE-RETURN", func() []types.Diagnostic { return checkTypeReturn(file, bufferRefs) })
	run("R-TYPE-CROSS-FILE", func() []types.Diagnostic { return checkTypeCrossFile(file, bufferSymbols, snap) })
	run("R-BOUNDS", func() []types.Diagnostic { return checkBounds(file, bufferRefs, bufferSymbols, snap) })
	run("R-SIGNATURE", func() []types.Diagnostic { return checkSignature(file, bufferRefs, bufferSymbols, snap) })
	run("R-ARG-TYPE", func() []types.Diagnostic { return checkArgType(file, bufferRefs, bufferSymbols, snap) })
	run("R-UNDEFINED", func() []types.Diagnostic { return checkUndefined(file, bufferRefs, bufferSymbols, snap) })
	run("R-SHADOW", func() []types.Diagnostic { return checkShadow(file, bufferSymbols, snap) })
	run("R-DEAD-IMPORT", func() []types.Diagnostic { return checkDeadImport(file, bufferRefs, bufferSymbols) })
	run("R-UNUSED-EXTERN", func() []types.Diagnostic { return checkUnusedExtern(file, bufferRefs, bufferSymbols) })
	run("R-FORMAT", func() []types.Diagnostic { return checkFormat(file, bufferRefs) })
	run("R-STRUCT", func() []types.Diagnostic { return checkStructAccess(file, bufferRefs, bufferSymbols, snap) })
	run("R-UNSAFE", func() []types.Diagnostic { return checkUnsafe(bufferRefs, file) })

	return types.DedupDiagnostics(all)
}
