package extractor

import sitter "github.com/smacker/go-tree-sitter"

// NodeKind is the normalized shape of a syntax node as seen by the resolver.
type NodeKind int

const (
	KindOther NodeKind = iota
	KindCall
	KindIdentifier
	KindMember    // object.property
	KindSubscript // object["property"]
	KindGroup     // (expr) and (a, b)
	KindString
	KindComment
)

// Declaration is a local binding found in a lexical scope.
//
// Property is set for import specifiers and destructuring patterns, which
// bind Name to a named export of some namespace. Value is set for plain
// initializers. Assign marks a reassignment of an existing name. Scope, when
// set, is the node the name is bound in instead of the enclosing block;
// function parameters are bound in their function.
type Declaration struct {
	Name     string
	Property string
	Value    *sitter.Node
	Assign   bool
	Scope    *sitter.Node
}

// Dialect gives the resolver a language-independent view of a grammar.
// Implementations are stateless.
type Dialect interface {
	GetLanguage() *sitter.Language
	Language() Language

	Kind(n *sitter.Node) NodeKind
	// Callee and Arguments are only called on KindCall nodes.
	Callee(n *sitter.Node) *sitter.Node
	Arguments(n *sitter.Node) []*sitter.Node
	// Names returns the bare name of an identifier, or the property names a
	// member or subscript node may stand for, most specific first. Mangled
	// accessors are named by their inline comment.
	Names(n *sitter.Node, src []byte) []string
	// Inner unwraps a KindGroup node to the expression it evaluates to.
	Inner(n *sitter.Node) *sitter.Node
	// StringValue returns the unescaped value of a static string literal.
	StringValue(n *sitter.Node, src []byte) (string, bool)
	// Declarations lists the bindings introduced or changed by n.
	Declarations(n *sitter.Node, src []byte) []Declaration
	// IsBlock reports whether n holds a statement list. Blocks bound both
	// comment lookup and binding scopes.
	IsBlock(n *sitter.Node) bool
	// EvalPrefix is prepended to eval'd source before it is re-parsed.
	EvalPrefix() string
}

func dialectFor(lang Language) (Dialect, bool) {
	switch lang {
	case LangPHP:
		return phpDialect{}, true
	case LangJavaScript:
		return javascriptDialect, true
	case LangTypeScript:
		return typescriptDialect, true
	case LangTSX:
		return tsxDialect, true
	}
	return nil, false
}
