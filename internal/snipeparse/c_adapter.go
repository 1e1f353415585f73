package snipeparse

import (
	"regexp"
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/snipe-lang/snipe/internal/types"
)

// formatArgIndex is the fixed printf-family callee -> 1-based index of the
// format-string argument, from spec.md §6.
var formatArgIndex = map[string]int{
	"printf":   1,
	"scanf":    1,
	"fprintf":  2,
	"fscanf":   2,
	"sprintf":  2,
	"sscanf":   2,
	"snprintf": 3,
}

type cAdapterImpl struct {
	parser *sitter.Parser
	lang   *sitter.Language
}

func newCAdapter() *cAdapterImpl {
	lang := cppLanguage()
	return &cAdapterImpl{parser: newParser(lang), lang: lang}
}

func (a *cAdapterImpl) Language() types.Language { return types.LangC }

func (a *cAdapterImpl) Extensions() []string { return []string{".c", ".h"} }

func (a *cAdapterImpl) Extract(file string, content []byte) (ExtractResult, error) {
	tree := a.parser.Parse(content, nil)
	if tree == nil {
		return ExtractResult{}, nil
	}
	defer tree.Close()

	w := &cWalker{file: file, content: content}
	w.walkTopLevel(tree.RootNode())
	w.references = append(w.references, arrayAccessFallback(file, content, w.seenArrayAccess)...)
	return ExtractResult{Symbols: w.symbols, References: w.references}, nil
}

type cWalker struct {
	file            string
	content         []byte
	symbols         []types.Symbol
	references      []types.Reference
	seenArrayAccess map[arrayAccessKey]struct{}
}

type arrayAccessKey struct {
	name  string
	line  int
	index string
}

func (w *cWalker) walkTopLevel(root *sitter.Node) {
	if w.seenArrayAccess == nil {
		w.seenArrayAccess = make(map[arrayAccessKey]struct{})
	}
	for _, child := range children(root) {
		w.walkDecl(child, types.ScopeModule)
	}
}

// walkDecl dispatches on a declaration-level node. scope is the scope any
// symbol emitted here should be tagged with.
func (w *cWalker) walkDecl(node *sitter.Node, scope types.SymbolScope) {
	switch node.Kind() {
	case "declaration":
		w.extractDeclaration(node, scope)
	case "function_definition":
		w.extractFunction(node)
	case "struct_specifier":
		w.extractStruct(node, scope)
	default:
		// Not a declaration site; still walk it for call/array/member refs
		// (e.g. top-level initializer expressions, compound statements).
		w.walkExpr(node)
	}
}

func (w *cWalker) extractDeclaration(node *sitter.Node, scope types.SymbolScope) {
	isExtern := false
	var baseType string
	for _, c := range children(node) {
		switch c.Kind() {
		case "storage_class_specifier":
			if nodeText(c, w.content) == "extern" {
				isExtern = true
			}
		case "primitive_type", "sized_type_specifier", "type_identifier", "struct_specifier":
			if baseType == "" {
				baseType = nodeText(c, w.content)
			}
		}
	}

	declarators := children(node)
	for _, c := range declarators {
		switch c.Kind() {
		case "identifier":
			w.emitScalar(c, baseType, isExtern, scope)
		case "init_declarator":
			w.extractInitDeclarator(c, baseType, isExtern, scope)
		case "array_declarator":
			w.extractArrayDeclarator(c, baseType, isExtern, scope)
		case "pointer_declarator":
			w.extractPointerDeclarator(c, baseType, isExtern, scope)
		}
	}
}

func (w *cWalker) emitScalar(identNode *sitter.Node, baseType string, isExtern bool, scope types.SymbolScope) {
	name := nodeText(identNode, w.content)
	if name == "" {
		return
	}
	kind := types.KindVariable
	if isExtern {
		kind = types.KindExtern
	}
	w.symbols = append(w.symbols, types.Symbol{
		Language:     types.LangC,
		File:         w.file,
		Line:         nodeLine(identNode),
		Name:         name,
		Kind:         kind,
		DeclaredType: baseType,
		Scope:        scope,
	})
}

func (w *cWalker) extractInitDeclarator(node *sitter.Node, baseType string, isExtern bool, scope types.SymbolScope) {
	declarator := node.Child(0)
	var value *sitter.Node
	for _, c := range children(node) {
		if c != declarator && c.Kind() != "=" {
			value = c
		}
	}
	if declarator == nil {
		return
	}
	switch declarator.Kind() {
	case "array_declarator":
		w.extractArrayDeclarator(declarator, baseType, isExtern, scope)
		return
	case "pointer_declarator":
		w.extractPointerDeclarator(declarator, baseType, isExtern, scope)
		return
	}
	name := nodeText(declarator, w.content)
	if name == "" {
		return
	}
	kind := types.KindVariable
	if isExtern {
		kind = types.KindExtern
	}
	w.symbols = append(w.symbols, types.Symbol{
		Language:     types.LangC,
		File:         w.file,
		Line:         nodeLine(declarator),
		Name:         name,
		Kind:         kind,
		DeclaredType: baseType,
		Scope:        scope,
	})
	if value != nil {
		w.walkExpr(value)
	}
}

func (w *cWalker) extractPointerDeclarator(node *sitter.Node, baseType string, isExtern bool, scope types.SymbolScope) {
	inner := findChildByKind(node, "identifier")
	if inner == nil {
		return
	}
	w.emitScalar(inner, baseType+" *", isExtern, scope)
}

func (w *cWalker) extractArrayDeclarator(node *sitter.Node, baseType string, isExtern bool, scope types.SymbolScope) {
	ident := findChildByKind(node, "identifier")
	if ident == nil {
		return
	}
	name := nodeText(ident, w.content)
	if name == "" {
		return
	}

	var size *int
	for _, c := range children(node) {
		if c.Kind() == "number_literal" {
			if n, err := strconv.Atoi(strings.TrimSpace(nodeText(c, w.content))); err == nil {
				size = &n
			}
		}
	}

	kind := types.KindArray
	if isExtern {
		kind = types.KindExtern
	}
	w.symbols = append(w.symbols, types.Symbol{
		Language:     types.LangC,
		File:         w.file,
		Line:         nodeLine(ident),
		Name:         name,
		Kind:         kind,
		DeclaredType: baseType,
		ArraySize:    size,
		Scope:        scope,
	})
}

func (w *cWalker) extractStruct(node *sitter.Node, scope types.SymbolScope) {
	nameNode := findChildByKind(node, "type_identifier")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, w.content)
	members := map[string]string{}
	var order []string

	body := findChildByKind(node, "field_declaration_list")
	for _, field := range children(body) {
		if field.Kind() != "field_declaration" {
			continue
		}
		var ft string
		for _, c := range children(field) {
			switch c.Kind() {
			case "primitive_type", "sized_type_specifier", "type_identifier":
				if ft == "" {
					ft = nodeText(c, w.content)
				}
			case "field_identifier":
				fname := nodeText(c, w.content)
				if fname != "" {
					if _, exists := members[fname]; !exists {
						order = append(order, fname)
					}
					members[fname] = ft
				}
			case "array_declarator":
				fident := findChildByKind(c, "field_identifier")
				fname := nodeText(fident, w.content)
				if fname != "" {
					if _, exists := members[fname]; !exists {
						order = append(order, fname)
					}
					members[fname] = ft
				}
			}
		}
	}

	w.symbols = append(w.symbols, types.Symbol{
		Language:      types.LangC,
		File:          w.file,
		Line:          nodeLine(nameNode),
		Name:          name,
		Kind:          types.KindStruct,
		Scope:         scope,
		StructMembers: members,
		MemberOrder:   order,
	})
}

func (w *cWalker) extractFunction(node *sitter.Node) {
	declarator := findChildByKind(node, "function_declarator")
	if declarator == nil {
		return
	}
	nameNode := findChildByKind(declarator, "identifier")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, w.content)

	var returnType string
	for _, c := range children(node) {
		switch c.Kind() {
		case "primitive_type", "sized_type_specifier", "type_identifier":
			returnType = nodeText(c, w.content)
		}
	}

	var params []types.Param
	varargs := false
	paramList := findChildByKind(declarator, "parameter_list")
	for _, p := range children(paramList) {
		switch p.Kind() {
		case "parameter_declaration":
			var ptype, pname string
			for _, c := range children(p) {
				switch c.Kind() {
				case "primitive_type", "sized_type_specifier", "type_identifier":
					ptype = nodeText(c, w.content)
				case "identifier":
					pname = nodeText(c, w.content)
				case "pointer_declarator":
					ptype = ptype + " *"
					if id := findChildByKind(c, "identifier"); id != nil {
						pname = nodeText(id, w.content)
					}
				case "array_declarator":
					if id := findChildByKind(c, "identifier"); id != nil {
						pname = nodeText(id, w.content)
					}
				}
			}
			params = append(params, types.Param{Name: pname, AnnotatedType: ptype})
		case "variadic_parameter":
			varargs = true
		}
	}

	w.symbols = append(w.symbols, types.Symbol{
		Language:     types.LangC,
		File:         w.file,
		Line:         nodeLine(nameNode),
		Name:         name,
		Kind:         types.KindFunction,
		DeclaredType: returnType,
		ReturnType:   returnType,
		Params:       params,
		VarargsFlag:  varargs,
		Scope:        types.ScopeModule,
	})

	body := findChildByKind(node, "compound_statement")
	w.walkFunctionBody(body)
}

func (w *cWalker) walkFunctionBody(node *sitter.Node) {
	if node == nil {
		return
	}
	for _, c := range children(node) {
		switch c.Kind() {
		case "declaration":
			w.extractDeclaration(c, types.ScopeFunction)
		case "return_statement":
			w.walkExpr(c)
		default:
			w.walkExpr(c)
		}
	}
}

// walkExpr recursively visits an expression subtree (or a statement that
// contains one) looking for call/array/member/assignment/format references.
// It recurses into every child regardless of kind, so nested expressions
// inside conditions, loop bodies and initializers are always reached.
func (w *cWalker) walkExpr(node *sitter.Node) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "call_expression":
		w.extractCall(node)
	case "subscript_expression":
		w.extractSubscript(node)
	case "field_expression":
		w.extractFieldExpression(node)
	case "assignment_expression":
		w.extractAssignment(node)
	case "return_statement":
		if expr := firstNonKeywordChild(node); expr != nil {
			w.references = append(w.references, types.Reference{
				Name:      "return",
				KindOfUse: types.RefRead,
				File:      w.file,
				Line:      nodeLine(node),
				RHSType:   apparentType(expr, w.content),
			})
		}
	case "identifier":
		w.references = append(w.references, types.Reference{
			Name:      nodeText(node, w.content),
			KindOfUse: types.RefRead,
			File:      w.file,
			Line:      nodeLine(node),
		})
	}

	for _, c := range children(node) {
		w.walkExpr(c)
	}
}

func firstNonKeywordChild(node *sitter.Node) *sitter.Node {
	for _, c := range children(node) {
		if c.Kind() != "return" && c.Kind() != ";" {
			return c
		}
	}
	return nil
}

func (w *cWalker) extractCall(node *sitter.Node) {
	fn := node.Child(0)
	if fn == nil || fn.Kind() != "identifier" {
		return
	}
	name := nodeText(fn, w.content)
	argList := findChildByKind(node, "argument_list")
	args := children(argList)
	var argNodes []*sitter.Node
	for _, a := range args {
		if a.Kind() != "," && a.Kind() != "(" && a.Kind() != ")" {
			argNodes = append(argNodes, a)
		}
	}

	argTypes := make([]string, 0, len(argNodes))
	for _, a := range argNodes {
		argTypes = append(argTypes, apparentType(a, w.content))
	}

	if idx, ok := formatArgIndex[name]; ok && idx-1 < len(argNodes) && argNodes[idx-1].Kind() == "string_literal" {
		literal := nodeText(argNodes[idx-1], w.content)
		w.references = append(w.references, types.Reference{
			Name:               name,
			KindOfUse:          types.RefFormatCall,
			File:               w.file,
			Line:               nodeLine(node),
			ArgTypes:           argTypes,
			ArgCount:           len(argNodes),
			FormatLiteral:      literal,
			FormatSpecifierCnt: countFormatSpecifiers(literal),
		})
		return
	}

	w.references = append(w.references, types.Reference{
		Name:      name,
		KindOfUse: types.RefCall,
		File:      w.file,
		Line:      nodeLine(node),
		ArgTypes:  argTypes,
		ArgCount:  len(argNodes),
	})
}

func (w *cWalker) extractSubscript(node *sitter.Node) {
	target := node.Child(0)
	if target == nil || target.Kind() != "identifier" {
		return
	}
	name := nodeText(target, w.content)
	var idx *int
	idxNode := node.Child(2)
	if idxNode != nil && idxNode.Kind() == "number_literal" {
		if n, err := strconv.Atoi(strings.TrimSpace(nodeText(idxNode, w.content))); err == nil {
			idx = &n
		}
	}
	w.references = append(w.references, types.Reference{
		Name:       name,
		KindOfUse:  types.RefArrayAccess,
		File:       w.file,
		Line:       nodeLine(node),
		IndexValue: idx,
	})
	if idxNode != nil {
		w.seenArrayAccess[arrayAccessKey{name: name, line: nodeLine(node), index: nodeText(idxNode, w.content)}] = struct{}{}
	}
}

func (w *cWalker) extractFieldExpression(node *sitter.Node) {
	receiver := node.Child(0)
	fieldNode := findChildByKind(node, "field_identifier")
	if receiver == nil || fieldNode == nil {
		return
	}
	arrow := false
	for _, c := range children(node) {
		if c.Kind() == "->" {
			arrow = true
		}
	}
	w.references = append(w.references, types.Reference{
		Name:         nodeText(receiver, w.content),
		KindOfUse:    types.RefMemberAccess,
		File:         w.file,
		Line:         nodeLine(node),
		ReceiverType: apparentType(receiver, w.content),
		MemberName:   nodeText(fieldNode, w.content),
		IsArrow:      arrow,
	})
}

func (w *cWalker) extractAssignment(node *sitter.Node) {
	left := node.Child(0)
	right := node.Child(2)
	if left == nil || right == nil {
		return
	}
	switch left.Kind() {
	case "identifier":
		w.references = append(w.references, types.Reference{
			Name:      nodeText(left, w.content),
			KindOfUse: types.RefWrite,
			File:      w.file,
			Line:      nodeLine(node),
			RHSType:   apparentType(right, w.content),
		})
	case "subscript_expression":
		target := left.Child(0)
		if target == nil || target.Kind() != "identifier" {
			return
		}
		var idx *int
		idxNode := left.Child(2)
		if idxNode != nil && idxNode.Kind() == "number_literal" {
			if n, err := strconv.Atoi(strings.TrimSpace(nodeText(idxNode, w.content))); err == nil {
				idx = &n
			}
		}
		w.references = append(w.references, types.Reference{
			Name:         nodeText(target, w.content),
			KindOfUse:    types.RefArrayAccess,
			File:         w.file,
			Line:         nodeLine(node),
			IndexValue:   idx,
			IndexIsWrite: true,
			RHSType:      apparentType(right, w.content),
		})
	}
}

// apparentType ports _infer_c_expr_type from the original implementation:
// literals resolve directly, an identifier is unknown ("", and the rules
// that compare types skip such a site), anything else falls back to
// recursing into children, defaulting to "int".
func apparentType(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "number_literal":
		text := nodeText(node, content)
		if strings.ContainsAny(text, ".eEfF") {
			return "float"
		}
		return "int"
	case "char_literal":
		return "char"
	case "string_literal":
		return "char *"
	case "identifier":
		return "" // unknown: type checks are skipped for this site
	default:
		for _, c := range children(node) {
			if t := apparentType(c, content); t != "" {
				return t
			}
		}
		return "int"
	}
}

var formatSpecifierPattern = regexp.MustCompile(`%%|%[-+0 #]*[0-9]*(?:\.[0-9]+)?(?:hh|h|ll|l|L|z|j|t)?[diouxXeEfFgGaAcspn]`)

// countFormatSpecifiers counts printf conversion specifiers in a literal,
// excluding %% escapes, matching spec.md §4.4's R-FORMAT definition.
func countFormatSpecifiers(literal string) int {
	count := 0
	for _, m := range formatSpecifierPattern.FindAllString(literal, -1) {
		if m != "%%" {
			count++
		}
	}
	return count
}

// arrayAccessFallback ports the regex-based supplement from
// original_source/backend/parser/symbol_extractor.py: when the tree-sitter
// parse of a half-typed C buffer loses an array-access expression (a
// missing semicolon or brace during live typing), scan the raw source for
// `name[index]` occurrences outside of comments and string literals and
// emit any not already captured by the tree walk.
var arrayAccessRegexp = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*\[\s*(-?[0-9]+|[A-Za-z_][A-Za-z0-9_]*)\s*\]`)

func arrayAccessFallback(file string, content []byte, seen map[arrayAccessKey]struct{}) []types.Reference {
	ranges := commentAndStringRanges(content)
	var out []types.Reference
	lines := strings.Split(string(content), "\n")
	offset := 0
	for lineNo, line := range lines {
		lineStart := offset
		offset += len(line) + 1
		for _, m := range arrayAccessRegexp.FindAllStringSubmatchIndex(line, -1) {
			absStart := lineStart + m[0]
			if inRanges(absStart, ranges) {
				continue
			}
			name := line[m[2]:m[3]]
			idxText := line[m[4]:m[5]]
			key := arrayAccessKey{name: name, line: lineNo + 1, index: idxText}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			var idx *int
			if n, err := strconv.Atoi(idxText); err == nil {
				idx = &n
			}
			out = append(out, types.Reference{
				Name:       name,
				KindOfUse:  types.RefArrayAccess,
				File:       file,
				Line:       lineNo + 1,
				IndexValue: idx,
			})
		}
	}
	return out
}

type byteRange struct{ start, end int }

func inRanges(pos int, ranges []byteRange) bool {
	for _, r := range ranges {
		if pos >= r.start && pos < r.end {
			return true
		}
	}
	return false
}

// commentAndStringRanges scans raw bytes for //, /* */ comments and
// "..."/'...' literals so the regex fallback never fires inside them.
func commentAndStringRanges(content []byte) []byteRange {
	var ranges []byteRange
	i := 0
	n := len(content)
	for i < n {
		switch {
		case i+1 < n && content[i] == '/' && content[i+1] == '/':
			start := i
			for i < n && content[i] != '\n' {
				i++
			}
			ranges = append(ranges, byteRange{start, i})
		case i+1 < n && content[i] == '/' && content[i+1] == '*':
			start := i
			i += 2
			for i+1 < n && !(content[i] == '*' && content[i+1] == '/') {
				i++
			}
			i += 2
			if i > n {
				i = n
			}
			ranges = append(ranges, byteRange{start, i})
		case content[i] == '"' || content[i] == '\'':
			quote := content[i]
			start := i
			i++
			for i < n && content[i] != quote {
				if content[i] == '\\' {
					i++
				}
				i++
			}
			i++
			ranges = append(ranges, byteRange{start, i})
		default:
			i++
		}
	}
	return ranges
}
