package engine

import (
	"sort"
	"strings"

	"github.com/snipe-lang/snipe/internal/reposcan"
	"github.com/snipe-lang/snipe/internal/types"
)

// checkStructAccess implements R-STRUCT: a `receiver.member`/`receiver->member`
// whose receiver's apparent type resolves to a known `struct Name` but the
// member isn't one of that struct's declared members.
func checkStructAccess(file string, bufferRefs []types.Reference, bufferSymbols []types.Symbol, snap *reposcan.Snapshot) []types.Diagnostic {
	if langFromPath(file) != types.LangC {
		return nil
	}

	varTypes := make(map[string]string)
	for _, s := range bufferSymbols {
		if s.DeclaredType != "" {
			varTypes[s.Name] = s.DeclaredType
		}
	}
	if snap != nil {
		for key, syms := range snap.ByName {
			if key.Lang != types.LangC {
				continue
			}
			if _, known := varTypes[key.Name]; known {
				continue
			}
			for _, s := range syms {
				if s.DeclaredType != "" {
					varTypes[key.Name] = s.DeclaredType
					break
				}
			}
		}
	}

	structMembers := make(map[string]map[string]struct{})
	for _, s := range bufferSymbols {
		if s.Kind == types.KindStruct && len(s.StructMembers) > 0 {
			structMembers[s.Name] = memberSet(s.StructMembers)
		}
	}
	if snap != nil {
		for key, syms := range snap.ByName {
			if key.Lang != types.LangC {
				continue
			}
			if _, known := structMembers[key.Name]; known {
				continue
			}
			for _, s := range syms {
				if s.Kind == types.KindStruct && len(s.StructMembers) > 0 {
					structMembers[key.Name] = memberSet(s.StructMembers)
					break
				}
			}
		}
	}

	var out []types.Diagnostic
	for _, ref := range bufferRefs {
		if ref.KindOfUse != types.RefMemberAccess || ref.MemberName == "" {
			continue
		}
		varType, ok := varTypes[ref.Name]
		if !ok {
			continue
		}
		if !strings.HasPrefix(varType, "struct ") {
			continue
		}
		// A pointer declaration records "struct Name *"; drop the '*' so
		// receiver->member resolves to Name like receiver.member does.
		fields := strings.Fields(strings.TrimRight(varType, "* "))
		structName := fields[len(fields)-1]
		members, ok := structMembers[structName]
		if !ok {
			continue
		}
		if _, has := members[ref.MemberName]; !has {
			names := make([]string, 0, len(members))
			for m := range members {
				names = append(names, m)
			}
			sort.Strings(names)
			out = append(out, types.Diagnostic{
				File: file, Line: ref.Line, Severity: types.SeverityError,
				Code: types.CodeStructAccess,
				Message: "Struct '" + structName + "' has no member '" + ref.MemberName + "'. Available members: " +
					strings.Join(names, ", ") + ".",
			})
		}
	}
	return out
}

func memberSet(members map[string]string) map[string]struct{} {
	set := make(map[string]struct{}, len(members))
	for name := range members {
		set[name] = struct{}{}
	}
	return set
}
