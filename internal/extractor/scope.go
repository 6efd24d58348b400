package extractor

import sitter "github.com/smacker/go-tree-sitter"

type scopeKey struct {
	start, end uint32
	typ        string
}

func keyOf(n *sitter.Node) scopeKey {
	return scopeKey{start: n.StartByte(), end: n.EndByte(), typ: n.Type()}
}

// binding is one local name. An empty canonical name binds something that
// is not a translation function (a namespace object, or anything else).
type binding struct {
	canonical string
	poisoned  bool
}

// bindings is the per-scope alias table of one source unit. Only
// single-assignment bindings resolve: a name declared twice in one scope,
// or reassigned anywhere below it, is poisoned.
type bindings struct {
	d      Dialect
	scopes map[scopeKey]map[string]*binding
}

func newBindings(d Dialect) *bindings {
	return &bindings{d: d, scopes: make(map[scopeKey]map[string]*binding)}
}

// scopeOf returns the nearest enclosing block or binding function of n, or
// the root.
func (b *bindings) scopeOf(n *sitter.Node) *sitter.Node {
	cur := n.Parent()
	last := n
	for cur != nil {
		if _, ok := b.scopes[keyOf(cur)]; ok || b.d.IsBlock(cur) {
			return cur
		}
		last = cur
		cur = cur.Parent()
	}
	return last
}

func (b *bindings) declare(scope *sitter.Node, name, canonical string) {
	k := keyOf(scope)
	names, ok := b.scopes[k]
	if !ok {
		names = make(map[string]*binding)
		b.scopes[k] = names
	}
	if existing, ok := names[name]; ok {
		existing.poisoned = true
		return
	}
	names[name] = &binding{canonical: canonical}
}

// reassign poisons the nearest binding of name visible from scope.
func (b *bindings) reassign(scope *sitter.Node, name string) {
	for s := scope; s != nil; s = b.parentScope(s) {
		if bind, ok := b.scopes[keyOf(s)][name]; ok {
			bind.poisoned = true
			return
		}
	}
}

func (b *bindings) parentScope(scope *sitter.Node) *sitter.Node {
	if scope.Parent() == nil {
		return nil
	}
	return b.scopeOf(scope)
}

// lookup resolves name as seen from node n.
func (b *bindings) lookup(n *sitter.Node, name string) (string, bool) {
	for s := b.scopeOf(n); s != nil; s = b.parentScope(s) {
		bind, ok := b.scopes[keyOf(s)][name]
		if !ok {
			continue
		}
		if bind.poisoned || bind.canonical == "" {
			return "", false
		}
		return bind.canonical, true
	}
	return "", false
}
