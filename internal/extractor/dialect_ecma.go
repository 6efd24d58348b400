package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Node types shared by the JavaScript, TypeScript and TSX grammars.
const (
	jsNodeCall          = "call_expression"
	jsNodeMember        = "member_expression"
	jsNodeSubscript     = "subscript_expression"
	jsNodeParenthesized = "parenthesized_expression"
	jsNodeSequence      = "sequence_expression"
	jsNodeIdentifier    = "identifier"
	jsNodeString        = "string"
	jsNodeTemplate      = "template_string"
	jsNodeSubstitution  = "template_substitution"
	jsNodeComment       = "comment"
	jsNodeDeclarator    = "variable_declarator"
	jsNodeObjectPattern = "object_pattern"
	jsNodeShorthandPat  = "shorthand_property_identifier_pattern"
	jsNodePairPattern   = "pair_pattern"
	jsNodeImportSpec    = "import_specifier"
	jsNodeAssignment    = "assignment_expression"
	jsNodeNonNull       = "non_null_expression"
	jsNodeAs            = "as_expression"
	jsNodeJSXExpression = "jsx_expression"
	jsNodeJSXText       = "jsx_text"
)

var ecmaBlocks = map[string]bool{
	"program":         true,
	"statement_block": true,
	"class_body":      true,
	"switch_body":     true,
	"switch_case":     true,
	"switch_default":  true,
}

var ecmaFunctions = map[string]bool{
	"function_declaration":           true,
	"function_expression":            true,
	"function":                       true,
	"generator_function_declaration": true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
}

// ecmaDialect covers the JS family; the grammars agree on every node the
// resolver looks at.
type ecmaDialect struct {
	lang    Language
	grammar func() *sitter.Language
}

var (
	javascriptDialect = ecmaDialect{lang: LangJavaScript, grammar: javascript.GetLanguage}
	typescriptDialect = ecmaDialect{lang: LangTypeScript, grammar: typescript.GetLanguage}
	tsxDialect        = ecmaDialect{lang: LangTSX, grammar: tsx.GetLanguage}
)

func (d ecmaDialect) GetLanguage() *sitter.Language {
	return d.grammar()
}

func (d ecmaDialect) Language() Language {
	return d.lang
}

func (d ecmaDialect) Kind(n *sitter.Node) NodeKind {
	switch n.Type() {
	case jsNodeCall:
		return KindCall
	case jsNodeIdentifier:
		return KindIdentifier
	case jsNodeMember:
		return KindMember
	case jsNodeSubscript:
		return KindSubscript
	case jsNodeParenthesized, jsNodeSequence, jsNodeNonNull, jsNodeAs:
		return KindGroup
	case jsNodeString, jsNodeTemplate:
		return KindString
	case jsNodeComment:
		return KindComment
	}
	return KindOther
}

func (d ecmaDialect) Callee(n *sitter.Node) *sitter.Node {
	return n.ChildByFieldName("function")
}

func (d ecmaDialect) Arguments(n *sitter.Node) []*sitter.Node {
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	// Tagged templates put a template_string in the arguments slot.
	if args.Type() != "arguments" {
		return nil
	}
	out := make([]*sitter.Node, 0, args.NamedChildCount())
	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		if child.Type() == jsNodeComment {
			continue
		}
		out = append(out, child)
	}
	return out
}

func (d ecmaDialect) Names(n *sitter.Node, src []byte) []string {
	var names []string
	switch n.Type() {
	case jsNodeIdentifier:
		return []string{n.Content(src)}
	case jsNodeMember:
		if name, ok := d.mangledName(n, src); ok {
			names = append(names, name)
		}
		if prop := n.ChildByFieldName("property"); prop != nil {
			names = append(names, prop.Content(src))
		}
	case jsNodeSubscript:
		if name, ok := d.mangledName(n, src); ok {
			names = append(names, name)
		}
		if idx := n.ChildByFieldName("index"); idx != nil {
			if v, ok := d.StringValue(idx, src); ok {
				names = append(names, v)
			}
		}
	}
	return names
}

// mangledName reads the export name webpack leaves next to a mangled
// property, as in obj/* .__ */.a or obj[/* __ */ "a"].
func (d ecmaDialect) mangledName(n *sitter.Node, src []byte) (string, bool) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != jsNodeComment {
			continue
		}
		text := child.Content(src)
		if !strings.HasPrefix(text, "/*") {
			continue
		}
		name := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/"))
		name = strings.Trim(strings.TrimPrefix(name, "."), `"'`)
		if name != "" && !strings.ContainsAny(name, " \t\n") {
			return name, true
		}
	}
	return "", false
}

func (d ecmaDialect) Inner(n *sitter.Node) *sitter.Node {
	switch n.Type() {
	case jsNodeNonNull, jsNodeAs:
		if n.NamedChildCount() == 0 {
			return nil
		}
		return n.NamedChild(0)
	}
	// (a, b) evaluates to b; sequences nest to the right.
	for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
		child := n.NamedChild(i)
		if child.Type() != jsNodeComment {
			return child
		}
	}
	return nil
}

func (d ecmaDialect) StringValue(n *sitter.Node, src []byte) (string, bool) {
	switch n.Type() {
	case jsNodeString:
	case jsNodeTemplate:
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if n.NamedChild(i).Type() == jsNodeSubstitution {
				return "", false
			}
		}
	default:
		return "", false
	}
	raw := n.Content(src)
	if len(raw) < 2 {
		return "", false
	}
	return unescapeJS(raw[1 : len(raw)-1]), true
}

func (d ecmaDialect) Declarations(n *sitter.Node, src []byte) []Declaration {
	switch n.Type() {
	case jsNodeDeclarator:
		name := n.ChildByFieldName("name")
		value := n.ChildByFieldName("value")
		if name == nil {
			return nil
		}
		switch name.Type() {
		case jsNodeIdentifier:
			return []Declaration{{Name: name.Content(src), Value: value}}
		case jsNodeObjectPattern:
			return d.patternDeclarations(name, src)
		}
	case jsNodeImportSpec:
		name := n.ChildByFieldName("name")
		if name == nil {
			return nil
		}
		local := name
		if alias := n.ChildByFieldName("alias"); alias != nil {
			local = alias
		}
		return []Declaration{{Name: local.Content(src), Property: name.Content(src)}}
	case jsNodeAssignment:
		left := n.ChildByFieldName("left")
		if left != nil && left.Type() == jsNodeIdentifier {
			return []Declaration{{Name: left.Content(src), Assign: true}}
		}
	default:
		if !ecmaFunctions[n.Type()] {
			return nil
		}
		params := n.ChildByFieldName("parameters")
		if params == nil {
			params = n.ChildByFieldName("parameter")
		}
		var decls []Declaration
		for _, name := range d.boundNames(params, src) {
			decls = append(decls, Declaration{Name: name, Scope: n})
		}
		return decls
	}
	return nil
}

// boundNames lists the identifiers a parameter list or pattern binds.
// Default values and type annotations bind nothing.
func (d ecmaDialect) boundNames(n *sitter.Node, src []byte) []string {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case jsNodeIdentifier, jsNodeShorthandPat:
		return []string{n.Content(src)}
	case "assignment_pattern", "object_assignment_pattern":
		return d.boundNames(n.ChildByFieldName("left"), src)
	case jsNodePairPattern:
		return d.boundNames(n.ChildByFieldName("value"), src)
	case "required_parameter", "optional_parameter":
		return d.boundNames(n.ChildByFieldName("pattern"), src)
	case "formal_parameters", jsNodeObjectPattern, "array_pattern", "rest_pattern":
		var names []string
		for i := 0; i < int(n.NamedChildCount()); i++ {
			names = append(names, d.boundNames(n.NamedChild(i), src)...)
		}
		return names
	}
	return nil
}

// patternDeclarations handles const { __, _x: tx } = ns.
func (d ecmaDialect) patternDeclarations(pattern *sitter.Node, src []byte) []Declaration {
	var decls []Declaration
	for i := 0; i < int(pattern.NamedChildCount()); i++ {
		child := pattern.NamedChild(i)
		switch child.Type() {
		case jsNodeShorthandPat:
			name := child.Content(src)
			decls = append(decls, Declaration{Name: name, Property: name})
		case jsNodePairPattern:
			key := child.ChildByFieldName("key")
			value := child.ChildByFieldName("value")
			if key == nil || value == nil || value.Type() != jsNodeIdentifier {
				continue
			}
			prop := key.Content(src)
			if v, ok := d.StringValue(key, src); ok {
				prop = v
			}
			decls = append(decls, Declaration{Name: value.Content(src), Property: prop})
		}
	}
	return decls
}

func (d ecmaDialect) IsBlock(n *sitter.Node) bool {
	return ecmaBlocks[n.Type()]
}

func (d ecmaDialect) EvalPrefix() string {
	return ""
}
