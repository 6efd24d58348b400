package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"
)

const (
	phpNodeCall          = "function_call_expression"
	phpNodeName          = "name"
	phpNodeQualifiedName = "qualified_name"
	phpNodeParenthesized = "parenthesized_expression"
	phpNodeString        = "string"
	phpNodeEncapsed      = "encapsed_string"
	phpNodeComment       = "comment"
	phpNodeArgument      = "argument"
)

var phpBlocks = map[string]bool{
	"program":               true,
	"compound_statement":    true,
	"declaration_list":      true,
	"enum_declaration_list": true,
	"switch_block":          true,
	"case_statement":        true,
	"default_statement":     true,
	"colon_block":           true,
}

// Children of a double-quoted string that keep it static.
var phpStaticStringParts = map[string]bool{
	"string":          true,
	"string_value":    true,
	"string_content":  true,
	"escape_sequence": true,
}

type phpDialect struct{}

func (phpDialect) GetLanguage() *sitter.Language {
	return php.GetLanguage()
}

func (phpDialect) Language() Language {
	return LangPHP
}

func (phpDialect) Kind(n *sitter.Node) NodeKind {
	switch n.Type() {
	case phpNodeCall:
		return KindCall
	case phpNodeName, phpNodeQualifiedName:
		return KindIdentifier
	case phpNodeParenthesized:
		return KindGroup
	case phpNodeString, phpNodeEncapsed:
		return KindString
	case phpNodeComment:
		return KindComment
	}
	return KindOther
}

func (phpDialect) Callee(n *sitter.Node) *sitter.Node {
	return n.ChildByFieldName("function")
}

func (phpDialect) Arguments(n *sitter.Node) []*sitter.Node {
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, args.NamedChildCount())
	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		switch child.Type() {
		case phpNodeComment:
			continue
		case phpNodeArgument:
			out = append(out, phpArgumentValue(child))
		default:
			out = append(out, child)
		}
	}
	return out
}

// phpArgumentValue unwraps an argument node. Named arguments stay wrapped
// so they never read as literals.
func phpArgumentValue(arg *sitter.Node) *sitter.Node {
	if arg.ChildByFieldName("name") != nil {
		return arg
	}
	for i := int(arg.NamedChildCount()) - 1; i >= 0; i-- {
		child := arg.NamedChild(i)
		if child.Type() != phpNodeComment {
			return child
		}
	}
	return arg
}

func (phpDialect) Names(n *sitter.Node, src []byte) []string {
	switch n.Type() {
	case phpNodeName:
		return []string{n.Content(src)}
	case phpNodeQualifiedName:
		name := n.Content(src)
		if i := strings.LastIndexByte(name, '\\'); i >= 0 {
			name = name[i+1:]
		}
		return []string{name}
	}
	return nil
}

func (phpDialect) Inner(n *sitter.Node) *sitter.Node {
	for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
		child := n.NamedChild(i)
		if child.Type() != phpNodeComment {
			return child
		}
	}
	return nil
}

func (phpDialect) StringValue(n *sitter.Node, src []byte) (string, bool) {
	raw := strings.TrimLeft(n.Content(src), "bB")
	if len(raw) < 2 {
		return "", false
	}
	switch n.Type() {
	case phpNodeString:
		if raw[0] == '"' {
			return unescapePHPDouble(raw[1 : len(raw)-1]), true
		}
		return unescapePHPSingle(raw[1 : len(raw)-1]), true
	case phpNodeEncapsed:
		if raw[0] != '"' {
			return "", false
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if !phpStaticStringParts[n.NamedChild(i).Type()] {
				return "", false
			}
		}
		return unescapePHPDouble(raw[1 : len(raw)-1]), true
	}
	return "", false
}

func (phpDialect) Declarations(*sitter.Node, []byte) []Declaration {
	return nil
}

func (phpDialect) IsBlock(n *sitter.Node) bool {
	return phpBlocks[n.Type()]
}

func (phpDialect) EvalPrefix() string {
	return "<?php "
}
