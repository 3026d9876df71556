package resolve

import "quillc/symbols"

// Nesting is the persistent, shareable lexical class/module stack at a
// constant-use site (spec §3, §9). Pushed on entering a ClassDef, popped on
// exit; many suspended resolution jobs can share the same tail because
// Nesting values are immutable once constructed.
type Nesting struct {
	parent *Nesting
	scope  symbols.Ref
}

// rootNesting starts a nesting chain at the given file-level scope (the
// enclosing package/module symbol every top-level statement nests under).
func rootNesting(scope symbols.Ref) *Nesting {
	return &Nesting{scope: scope}
}

// push returns a new nesting with scope pushed on top of n. n itself is
// untouched, so code that captured n before the push still sees the outer
// nesting -- this is what makes the chain cheaply shareable across workers.
func (n *Nesting) push(scope symbols.Ref) *Nesting {
	return &Nesting{parent: n, scope: scope}
}

// Scope returns the innermost scope of the chain.
func (n *Nesting) Scope() symbols.Ref {
	return n.scope
}

// Outermost walks to the file-level scope, used by resolve_lhs's
// transitive-search fallback (spec §4.1.1).
func (n *Nesting) Outermost() symbols.Ref {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur.scope
}

// Walk calls fn for each scope from innermost to outermost, stopping early
// if fn returns true.
func (n *Nesting) Walk(fn func(scope symbols.Ref) bool) {
	for cur := n; cur != nil; cur = cur.parent {
		if fn(cur.scope) {
			return
		}
	}
}
