package extractor

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	sitter "github.com/smacker/go-tree-sitter"
)

const (
	// maxCalleeDepth bounds callee unwrapping, e.g. nested (0, (0, x)).
	maxCalleeDepth = 16
	// DefaultMaxEvalDepth bounds eval("eval(...)") re-parsing.
	DefaultMaxEvalDepth = 4
)

// CallMatch is a recognized translation call. It lives only while its
// source unit is being processed.
type CallMatch struct {
	Function  string
	Signature Signature
	Args      []*sitter.Node
	Node      *sitter.Node
	Line      int
	Column    int

	unit *sourceUnit
}

// sourceUnit is one parsed piece of source: a file, or an eval'd string
// inside it. lineOffset maps the unit's rows back to file lines.
type sourceUnit struct {
	d          Dialect
	src        []byte
	root       *sitter.Node
	binds      *bindings
	lineOffset int
	evalDepth  int
}

// resolver finds translation calls in a syntax tree.
type resolver struct {
	table        *Table
	maxEvalDepth int
	allowErrors  bool
}

func parseSource(ctx context.Context, d Dialect, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(d.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	return tree, nil
}

func (r *resolver) newUnit(d Dialect, src []byte, root *sitter.Node) *sourceUnit {
	u := &sourceUnit{d: d, src: src, root: root, binds: newBindings(d)}
	r.collectBindings(u)
	return u
}

// collectBindings fills the unit's alias table before any call is resolved,
// so later redeclarations still poison earlier names.
func (r *resolver) collectBindings(u *sourceUnit) {
	walk(u.root, func(n *sitter.Node) {
		for _, decl := range u.d.Declarations(n, u.src) {
			scope := decl.Scope
			if scope == nil {
				scope = u.binds.scopeOf(n)
			}
			switch {
			case decl.Assign:
				u.binds.reassign(scope, decl.Name)
			case decl.Property != "":
				canonical := ""
				if r.table.Has(decl.Property) {
					canonical = decl.Property
				}
				u.binds.declare(scope, decl.Name, canonical)
			default:
				canonical := ""
				if decl.Value != nil {
					if name, ok := r.calleeName(u, decl.Value, 0); ok {
						canonical = name
					}
				}
				u.binds.declare(scope, decl.Name, canonical)
			}
		}
	})
}

// resolve visits every call in the unit, descending into arguments and
// eval'd strings, and emits the ones that match a signature.
func (r *resolver) resolve(ctx context.Context, u *sourceUnit, emit func(CallMatch)) {
	d := u.d
	walk(u.root, func(n *sitter.Node) {
		if d.Kind(n) != KindCall {
			return
		}
		callee := d.Callee(n)
		if callee == nil {
			return
		}
		args := d.Arguments(n)

		if r.isEval(u, callee) {
			r.resolveEval(ctx, u, args, emit)
			return
		}

		name, ok := r.calleeName(u, callee, 0)
		if !ok {
			return
		}
		sig, _ := r.table.Lookup(name)
		if len(args) != sig.Arity() {
			log.Debug().
				Str("function", name).
				Int("args", len(args)).
				Int("want", sig.Arity()).
				Int("line", u.lineOffset+int(n.StartPoint().Row)+1).
				Msg("Skipping call with wrong argument count")
			return
		}
		emit(CallMatch{
			Function:  name,
			Signature: sig,
			Args:      args,
			Node:      n,
			Line:      u.lineOffset + int(n.StartPoint().Row) + 1,
			Column:    int(n.StartPoint().Column) + 1,
			unit:      u,
		})
	})
}

// calleeName resolves a callee expression to a function in the table.
func (r *resolver) calleeName(u *sourceUnit, n *sitter.Node, depth int) (string, bool) {
	if n == nil || depth > maxCalleeDepth {
		return "", false
	}
	d := u.d
	switch d.Kind(n) {
	case KindIdentifier:
		names := d.Names(n, u.src)
		if len(names) == 0 {
			return "", false
		}
		if r.table.Has(names[0]) {
			return names[0], true
		}
		return u.binds.lookup(n, names[0])
	case KindMember, KindSubscript:
		for _, name := range d.Names(n, u.src) {
			if r.table.Has(name) {
				return name, true
			}
		}
	case KindGroup:
		return r.calleeName(u, d.Inner(n), depth+1)
	case KindCall:
		// Object(ref) module accessor helper.
		callee := d.Callee(n)
		if callee == nil || d.Kind(callee) != KindIdentifier {
			return "", false
		}
		names := d.Names(callee, u.src)
		args := d.Arguments(n)
		if len(names) == 1 && names[0] == "Object" && len(args) == 1 {
			return r.calleeName(u, args[0], depth+1)
		}
	}
	return "", false
}

func (r *resolver) isEval(u *sourceUnit, callee *sitter.Node) bool {
	if u.d.Kind(callee) != KindIdentifier {
		return false
	}
	names := u.d.Names(callee, u.src)
	return len(names) == 1 && names[0] == "eval"
}

// resolveEval re-parses the literal given to eval as a unit of its own and
// attributes its calls to the literal's position in the file.
func (r *resolver) resolveEval(ctx context.Context, u *sourceUnit, args []*sitter.Node, emit func(CallMatch)) {
	if len(args) != 1 || u.evalDepth >= r.maxEvalDepth {
		return
	}
	code, ok := u.d.StringValue(args[0], u.src)
	if !ok || code == "" {
		return
	}
	src := []byte(u.d.EvalPrefix() + code)
	tree, err := parseSource(ctx, u.d, src)
	if err != nil {
		log.Debug().Err(err).Msg("Skipping unparsable eval source")
		return
	}
	// emit consumes matches synchronously, so the tree can go with this frame.
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() && !r.allowErrors {
		log.Debug().Int("line", u.lineOffset+int(args[0].StartPoint().Row)+1).Msg("Skipping eval source with syntax errors")
		return
	}
	inner := r.newUnit(u.d, src, root)
	inner.lineOffset = u.lineOffset + int(args[0].StartPoint().Row)
	inner.evalDepth = u.evalDepth + 1
	r.resolve(ctx, inner, emit)
}

// walk visits n and its descendants in document order.
func walk(n *sitter.Node, visit func(*sitter.Node)) {
	if n == nil {
		return
	}
	stack := []*sitter.Node{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(node)
		for i := int(node.ChildCount()) - 1; i >= 0; i-- {
			if child := node.Child(i); child != nil {
				stack = append(stack, child)
			}
		}
	}
}
