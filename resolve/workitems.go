package resolve

import (
	"quillc/ast"
	"quillc/symbols"
)

// Work items carry everything needed to retry a stalled resolution (spec
// §3). Each holds a pointer directly into the AST node it will mutate.
// The design notes (§9) warn that raw-pointer back-references are unsafe
// once a tree moves between a worker and the main thread; that hazard is
// specific to languages without a moving-pointer-aware GC. Go's garbage
// collector never relocates heap objects out from under a live pointer, so
// a *ast.ConstantLit captured by a worker remains valid after the worker's
// partial result is handed to the main thread -- no path + node-id
// indirection is needed here.
type ResolutionItem struct {
	Scope *Nesting
	Out   *ast.ConstantLit
}

// AncestorResolutionItem resolves one ancestor expression (superclass or
// mixin) of Klass.
type AncestorResolutionItem struct {
	Ancestor     *ast.ConstantLit
	Klass        symbols.Ref
	IsSuperclass bool
}

// ClassAliasResolutionItem resolves `Lhs = Rhs` where Lhs is a static field
// and Rhs is itself a constant.
type ClassAliasResolutionItem struct {
	Lhs symbols.Ref
	Rhs *ast.ConstantLit
}

// TypeAliasResolutionItem resolves `Lhs = T.type_alias(Rhs)`.
type TypeAliasResolutionItem struct {
	Lhs symbols.Ref
	Rhs ast.Node
}

// todoLists bundles the four queues the fixed-point loop (§4.1.5) and each
// per-worker walker (§4.1.4) maintain.
type todoLists struct {
	constants      []ResolutionItem
	ancestors      []AncestorResolutionItem
	classAliases   []ClassAliasResolutionItem
	typeAliases    []TypeAliasResolutionItem
}

func (t *todoLists) empty() bool {
	return len(t.constants) == 0 && len(t.ancestors) == 0 && len(t.classAliases) == 0 && len(t.typeAliases) == 0
}
