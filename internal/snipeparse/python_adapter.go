package snipeparse

import (
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/snipe-lang/snipe/internal/types"
)

type pyAdapterImpl struct {
	parser *sitter.Parser
}

func newPythonAdapter() *pyAdapterImpl {
	return &pyAdapterImpl{parser: newParser(pythonLanguage())}
}

func (a *pyAdapterImpl) Language() types.Language { return types.LangPython }

func (a *pyAdapterImpl) Extensions() []string { return []string{".py", ".pyw", ".pyi"} }

func (a *pyAdapterImpl) Extract(file string, content []byte) (ExtractResult, error) {
	tree := a.parser.Parse(content, nil)
	if tree == nil {
		return ExtractResult{}, nil
	}
	defer tree.Close()

	w := &pyWalker{file: file, content: content}
	for _, c := range children(tree.RootNode()) {
		w.walkModuleLevel(c)
	}
	return ExtractResult{Symbols: w.symbols, References: w.references}, nil
}

type pyWalker struct {
	file          string
	content       []byte
	symbols       []types.Symbol
	references    []types.Reference
	sawStarImport bool
}

func (w *pyWalker) walkModuleLevel(node *sitter.Node) {
	switch node.Kind() {
	case "import_statement":
		w.extractImport(node)
	case "import_from_statement":
		w.extractImportFrom(node)
	case "function_definition":
		w.extractFunction(node, types.ScopeModule)
	case "class_definition":
		w.extractClass(node)
	case "expression_statement":
		w.walkExpressionStatement(node, types.ScopeModule)
	default:
		w.walkExpr(node)
	}
}

func (w *pyWalker) extractImport(node *sitter.Node) {
	for _, c := range children(node) {
		switch c.Kind() {
		case "dotted_name":
			name := nodeText(c, w.content)
			w.symbols = append(w.symbols, types.Symbol{
				Language: types.LangPython,
				File:     w.file,
				Line:     nodeLine(node),
				Name:     lastSegment(name),
				Kind:     types.KindImport,
				Scope:    types.ScopeModule,
			})
		case "aliased_import":
			dotted := findChildByKind(c, "dotted_name")
			alias := c.Child(c.ChildCount() - 1)
			name := lastSegment(nodeText(dotted, w.content))
			if alias != nil && alias.Kind() == "identifier" {
				name = nodeText(alias, w.content)
			}
			w.symbols = append(w.symbols, types.Symbol{
				Language: types.LangPython,
				File:     w.file,
				Line:     nodeLine(node),
				Name:     name,
				Kind:     types.KindImport,
				Scope:    types.ScopeModule,
			})
		}
	}
}

func (w *pyWalker) extractImportFrom(node *sitter.Node) {
	wildcard := false
	var names []*sitter.Node
	module := node.ChildByFieldName("module_name")
	for _, c := range children(node) {
		if c.Kind() == "wildcard_import" {
			wildcard = true
		}
		if c.Kind() == "dotted_name" {
			if module != nil && c.StartByte() == module.StartByte() {
				// module name itself, skip as a symbol
				continue
			}
			names = append(names, c)
			continue
		}
		if c.Kind() == "import_list" {
			names = append(names, children(c)...)
		}
		if c.Kind() == "aliased_import" || c.Kind() == "identifier" {
			// bare `from x import y` without a wrapping import_list in
			// some grammar versions
			names = append(names, c)
		}
	}

	if wildcard {
		w.sawStarImport = true
		w.symbols = append(w.symbols, types.Symbol{
			Language:   types.LangPython,
			File:       w.file,
			Line:       nodeLine(node),
			Name:       "*",
			Kind:       types.KindImport,
			Scope:      types.ScopeModule,
			StarImport: true,
		})
		return
	}

	for _, n := range names {
		switch n.Kind() {
		case "dotted_name", "identifier":
			name := lastSegment(nodeText(n, w.content))
			w.symbols = append(w.symbols, types.Symbol{
				Language: types.LangPython,
				File:     w.file,
				Line:     nodeLine(node),
				Name:     name,
				Kind:     types.KindImport,
				Scope:    types.ScopeModule,
			})
		case "aliased_import":
			dotted := findChildByKind(n, "dotted_name")
			alias := n.Child(n.ChildCount() - 1)
			name := lastSegment(nodeText(dotted, w.content))
			if alias != nil && alias.Kind() == "identifier" {
				name = nodeText(alias, w.content)
			}
			w.symbols = append(w.symbols, types.Symbol{
				Language: types.LangPython,
				File:     w.file,
				Line:     nodeLine(node),
				Name:     name,
				Kind:     types.KindImport,
				Scope:    types.ScopeModule,
			})
		}
	}
}

func lastSegment(dotted string) string {
	parts := strings.Split(dotted, ".")
	return parts[len(parts)-1]
}

func (w *pyWalker) extractFunction(node *sitter.Node, outerScope types.SymbolScope) {
	nameNode := findChildByKind(node, "identifier")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, w.content)

	var returnType string
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		returnType = nodeText(rt, w.content)
	}

	params, varargs, kwargs := w.extractParams(findChildByKind(node, "parameters"))

	w.symbols = append(w.symbols, types.Symbol{
		Language:     types.LangPython,
		File:         w.file,
		Line:         nodeLine(nameNode),
		Name:         name,
		Kind:         types.KindFunction,
		ReturnType:   returnType,
		DeclaredType: returnType,
		Params:       params,
		VarargsFlag:  varargs,
		KwargsFlag:   kwargs,
		Scope:        outerScope,
	})

	body := findChildByKind(node, "block")
	w.walkFunctionBody(body, name, returnType)
}

func (w *pyWalker) extractParams(paramList *sitter.Node) (params []types.Param, varargs, kwargs bool) {
	for _, p := range children(paramList) {
		switch p.Kind() {
		case "identifier":
			params = append(params, types.Param{Name: nodeText(p, w.content)})
		case "typed_parameter":
			name := ""
			annot := ""
			if id := findChildByKind(p, "identifier"); id != nil {
				name = nodeText(id, w.content)
			}
			if t := p.ChildByFieldName("type"); t != nil {
				annot = nodeText(t, w.content)
			}
			params = append(params, types.Param{Name: name, AnnotatedType: annot})
		case "default_parameter":
			name, def := "", ""
			if id := findChildByKind(p, "identifier"); id != nil {
				name = nodeText(id, w.content)
			}
			if v := p.ChildByFieldName("value"); v != nil {
				def = nodeText(v, w.content)
			}
			params = append(params, types.Param{Name: name, Default: def})
		case "typed_default_parameter":
			name, annot, def := "", "", ""
			if id := findChildByKind(p, "identifier"); id != nil {
				name = nodeText(id, w.content)
			}
			if t := p.ChildByFieldName("type"); t != nil {
				annot = nodeText(t, w.content)
			}
			if v := p.ChildByFieldName("value"); v != nil {
				def = nodeText(v, w.content)
			}
			params = append(params, types.Param{Name: name, AnnotatedType: annot, Default: def})
		case "list_splat_pattern":
			varargs = true
			if id := findChildByKind(p, "identifier"); id != nil {
				params = append(params, types.Param{Name: nodeText(id, w.content), IsStarArgs: true})
			}
		case "dictionary_splat_pattern":
			kwargs = true
			if id := findChildByKind(p, "identifier"); id != nil {
				params = append(params, types.Param{Name: nodeText(id, w.content), IsKwargs: true})
			}
		}
	}
	return params, varargs, kwargs
}

func (w *pyWalker) extractClass(node *sitter.Node) {
	nameNode := findChildByKind(node, "identifier")
	if nameNode == nil {
		return
	}
	w.symbols = append(w.symbols, types.Symbol{
		Language: types.LangPython,
		File:     w.file,
		Line:     nodeLine(nameNode),
		Name:     nodeText(nameNode, w.content),
		Kind:     types.KindStruct,
		Scope:    types.ScopeModule,
	})
	body := findChildByKind(node, "block")
	for _, c := range children(body) {
		if c.Kind() == "function_definition" {
			w.extractFunction(c, types.ScopeFunction)
		}
	}
}

func (w *pyWalker) walkFunctionBody(node *sitter.Node, funcName, declaredReturn string) {
	if node == nil {
		return
	}
	for _, c := range children(node) {
		switch c.Kind() {
		case "expression_statement":
			w.walkExpressionStatement(c, types.ScopeFunction)
		case "return_statement":
			w.extractReturn(c, funcName, declaredReturn)
		default:
			w.walkExpr(c)
		}
	}
}

func (w *pyWalker) walkExpressionStatement(node *sitter.Node, scope types.SymbolScope) {
	inner := firstNonKeywordChild(node)
	if inner == nil {
		return
	}
	if inner.Kind() == "assignment" {
		w.extractAssignment(inner, scope)
		return
	}
	w.walkExpr(inner)
}

func (w *pyWalker) extractAssignment(node *sitter.Node, scope types.SymbolScope) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	typeNode := node.ChildByFieldName("type")

	if left == nil {
		return
	}

	if left.Kind() != "identifier" {
		// subscript/attribute assignment target; treat as a reference walk.
		w.walkExpr(left)
		if right != nil {
			w.walkExpr(right)
		}
		return
	}

	name := nodeText(left, w.content)

	if typeNode != nil {
		annotation := nodeText(typeNode, w.content)
		rhsType := ""
		var arraySize *int
		if right != nil {
			rhsType = pyLiteralType(right, w.content)
			if n := pyElementCount(right); n >= 0 {
				arraySize = &n
			}
		}
		w.symbols = append(w.symbols, types.Symbol{
			Language:     types.LangPython,
			File:         w.file,
			Line:         nodeLine(left),
			Name:         name,
			Kind:         types.KindVariable,
			DeclaredType: annotation,
			ArraySize:    arraySize,
			Scope:        scope,
		})
		if rhsType != "" {
			w.references = append(w.references, types.Reference{
				Name:          name,
				KindOfUse:     types.RefWrite,
				File:          w.file,
				Line:          nodeLine(node),
				RHSType:       rhsType,
				AnnotatedType: annotation,
			})
		}
	} else {
		var inferredType string
		var arraySize *int
		if right != nil {
			inferredType = pyInferredRHSType(right, w.content)
			if n := pyElementCount(right); n >= 0 {
				arraySize = &n
			}
		}
		sym := types.Symbol{
			Language:     types.LangPython,
			File:         w.file,
			Line:         nodeLine(left),
			Name:         name,
			Kind:         types.KindVariable,
			DeclaredType: inferredType,
			ArraySize:    arraySize,
			Scope:        scope,
		}
		if right != nil && (right.Kind() == "list" || right.Kind() == "tuple") {
			sym.Kind = types.KindArray
		}
		w.symbols = append(w.symbols, sym)
	}

	if right != nil {
		w.walkExpr(right)
	}
}

// extractReturn emits one RefRead reference per return statement carrying
// an apparent value type, for R-TYPE-RETURN to compare against the
// function's declared return annotation. Name stays the "return" sentinel
// rather than the function's name so R-UNDEFINED's name-lookup never
// treats it as a symbol reference; ReceiverType carries the function name
// instead, since it is otherwise unused on a RefRead.
func (w *pyWalker) extractReturn(node *sitter.Node, funcName, declaredReturn string) {
	expr := firstNonKeywordChild(node)
	if expr == nil {
		return
	}
	w.references = append(w.references, types.Reference{
		Name:          "return",
		KindOfUse:     types.RefRead,
		File:          w.file,
		Line:          nodeLine(node),
		RHSType:       pyLiteralType(expr, w.content),
		AnnotatedType: declaredReturn,
		ReceiverType:  funcName,
	})
	w.walkExpr(expr)
}

// walkExpr recurses through an expression tree collecting call, subscript
// and attribute references. It descends into every child, so expressions
// nested in conditions and comprehensions are still found; the one
// exception is a call, where only the argument list is walked.
func (w *pyWalker) walkExpr(node *sitter.Node) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "call":
		// extractCall already records the callee as RefCall; walk only
		// the arguments so an undefined callee isn't also reported as an
		// undefined read of the same name.
		w.extractCall(node)
		if args := node.ChildByFieldName("arguments"); args != nil {
			for _, c := range children(args) {
				w.walkExpr(c)
			}
		}
		return
	case "subscript":
		w.extractSubscript(node)
	case "attribute":
		w.extractAttribute(node)
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

func (w *pyWalker) extractCall(node *sitter.Node) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}
	if fn.Kind() != "identifier" {
		// Method calls (obj.method(...)) are excluded from R-UNDEFINED /
		// R-SIGNATURE per spec.md's dot-skip rule; still record nothing.
		return
	}
	name := nodeText(fn, w.content)
	argsNode := node.ChildByFieldName("arguments")
	var argTypes []string
	count := 0
	for _, a := range children(argsNode) {
		if a.Kind() == "(" || a.Kind() == ")" || a.Kind() == "," {
			continue
		}
		count++
		argTypes = append(argTypes, pyLiteralType(a, w.content))
	}
	w.references = append(w.references, types.Reference{
		Name:      name,
		KindOfUse: types.RefCall,
		File:      w.file,
		Line:      nodeLine(node),
		ArgTypes:  argTypes,
		ArgCount:  count,
	})
}

func (w *pyWalker) extractSubscript(node *sitter.Node) {
	value := node.ChildByFieldName("value")
	sub := node.ChildByFieldName("subscript")
	if value == nil || value.Kind() != "identifier" || sub == nil {
		return
	}
	var idx *int
	if sub.Kind() == "integer" {
		if n, err := strconv.Atoi(nodeText(sub, w.content)); err == nil {
			idx = &n
		}
	}
	w.references = append(w.references, types.Reference{
		Name:       nodeText(value, w.content),
		KindOfUse:  types.RefArrayAccess,
		File:       w.file,
		Line:       nodeLine(node),
		IndexValue: idx,
	})
}

func (w *pyWalker) extractAttribute(node *sitter.Node) {
	obj := node.ChildByFieldName("object")
	attr := node.ChildByFieldName("attribute")
	if obj == nil || attr == nil {
		return
	}
	w.references = append(w.references, types.Reference{
		Name:         nodeText(obj, w.content),
		KindOfUse:    types.RefMemberAccess,
		File:         w.file,
		Line:         nodeLine(node),
		ReceiverType: pyLiteralType(obj, w.content),
		MemberName:   nodeText(attr, w.content),
	})
}

// pyLiteralType ports the literal half of the reference implementation's
// type inference: a direct literal resolves, anything else is unknown ("")
// and the rules that compare types skip that site.
func pyLiteralType(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "integer":
		return "int"
	case "float":
		return "float"
	case "string":
		return "str"
	case "true", "false":
		return "bool"
	case "list":
		return "list"
	case "tuple":
		return "tuple"
	case "dictionary":
		return "dict"
	case "set":
		return "set"
	default:
		return ""
	}
}

// pyInferredRHSType ports _infer_type_from_rhs for untyped assignments.
func pyInferredRHSType(node *sitter.Node, content []byte) string {
	return pyLiteralType(node, content)
}

// pyElementCount ports _count_elements: counts named elements of a list
// or tuple literal, skipping brackets/parens/commas. Returns -1 when the
// node is not a literal collection.
func pyElementCount(node *sitter.Node) int {
	if node == nil {
		return -1
	}
	if node.Kind() != "list" && node.Kind() != "tuple" {
		return -1
	}
	count := 0
	for _, c := range children(node) {
		switch c.Kind() {
		case "[", "]", "(", ")", ",":
			continue
		default:
			count++
		}
	}
	return count
}
