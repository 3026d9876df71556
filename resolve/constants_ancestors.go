package resolve

import (
	"quillc/ast"
	"quillc/diagnostics"
	"quillc/symbols"
	"quillc/typesyntax"
	"quillc/types"
)

// resolveLHS implements spec §4.1.1: walk the nesting chain from innermost
// to outermost testing direct membership, then fall back to a transitive
// (inherited) search rooted at the outermost (file-level) scope.
func resolveLHS(ctx *Context, nesting *Nesting, name string) (symbols.Ref, bool) {
	var found symbols.Ref
	ok := false
	nesting.Walk(func(scope symbols.Ref) bool {
		if r, hit := ctx.Tbl.FindMember(scope, name); hit {
			found, ok = r, true
			return true
		}
		return false
	})
	if ok {
		return found, true
	}

	return ctx.Tbl.FindMemberTransitive(nesting.Outermost(), name)
}

// resolveStatus is the two-way outcome of one resolution attempt: resolved
// or pending. An error handled by substituting untyped counts as resolved.
type resolveStatus int

const (
	resolvedOK resolveStatus = iota
	pending
)

// resolveConstant attempts to resolve one UnresolvedConstantLit, following
// spec §4.1.2 exactly. On success or error-handled-as-untyped it returns
// (symbol, resolvedOK); on "not found yet" it returns (_, pending) and the
// caller must requeue.
func resolveConstant(ctx *Context, nesting *Nesting, uc *ast.UnresolvedConstantLit) (symbols.Ref, resolveStatus) {
	switch scope := uc.Scope.(type) {
	case nil, *ast.EmptyTree:
		if r, ok := resolveLHS(ctx, nesting, uc.Name.Name); ok {
			return r, resolvedOK
		}
		return ctx.Tbl.NoSymbol, pending

	case *ast.ConstantLit:
		if scope.Symbol == ctx.Tbl.NoSymbol {
			// scope itself hasn't resolved yet.
			return ctx.Tbl.NoSymbol, pending
		}

		if ctx.Tbl.IsTypeAlias(scope.Symbol) {
			if b := ctx.Diag.BeginError(uc.Loc, diagnostics.ConstantInTypeAlias); b != nil {
				b.SetHeader("Using `%s` to resolve constants is not supported since `%s` is a type alias", scope.Original.Name.Name, scope.Original.Name.Name).Emit()
			}
			return ctx.Tbl.Untyped, resolvedOK
		}

		dealiased := ctx.Tbl.Dealias(scope.Symbol)
		if dealiased == ctx.Tbl.StubModule || dealiased == ctx.Tbl.StubSuperClass || dealiased == ctx.Tbl.StubMixin {
			// The scope itself already failed to resolve; propagate the
			// stub rather than stalling forever.
			return ctx.Tbl.StubModule, resolvedOK
		}

		if r, ok := ctx.Tbl.FindMember(dealiased, uc.Name.Name); ok {
			return r, resolvedOK
		}
		return ctx.Tbl.NoSymbol, pending

	default:
		// Dynamic scope: e.g. a method call on the LHS.
		if b := ctx.Diag.BeginError(uc.Loc, diagnostics.DynamicConstant); b != nil {
			b.SetHeader("Dynamic constant references are not supported").Emit()
		}
		return ctx.Tbl.Untyped, resolvedOK
	}
}

// resolveAncestorJob implements spec §4.1.7.
func resolveAncestorJob(ctx *Context, job AncestorResolutionItem, lastRun bool) bool {
	sym := job.Ancestor.Symbol
	if sym == ctx.Tbl.NoSymbol {
		if !lastRun {
			return false
		}
		stubAncestor(ctx, job)
		return true
	}

	if ctx.Tbl.IsTypeAlias(sym) {
		if !lastRun {
			return false
		}
		if b := ctx.Diag.BeginError(job.Ancestor.Loc, diagnostics.DynamicSuperclass); b != nil {
			b.SetHeader("Superclasses and mixins may not be type aliases").Emit()
		}
		stubAncestor(ctx, job)
		return true
	}

	resolved := ctx.Tbl.Dealias(sym)
	if resolved == ctx.Tbl.StubModule || resolved == ctx.Tbl.StubSuperClass || resolved == ctx.Tbl.StubMixin {
		// The ancestor constant itself was stubbed (StubConstant already
		// reported); record the superclass/mixin stub for this slot.
		stubAncestor(ctx, job)
		return true
	}
	if !ctx.Tbl.IsClass(resolved) && !ctx.Tbl.IsModule(resolved) {
		if !lastRun {
			return false
		}
		if b := ctx.Diag.BeginError(job.Ancestor.Loc, diagnostics.DynamicSuperclass); b != nil {
			b.SetHeader("`%s` is not a class or module", job.Ancestor.Original.Name.Name).Emit()
		}
		stubAncestor(ctx, job)
		return true
	}

	if !job.IsSuperclass && ctx.Tbl.IsClass(resolved) {
		if b := ctx.Diag.BeginError(job.Ancestor.Loc, diagnostics.InvalidMixinDeclaration); b != nil {
			b.SetHeader("`%s` is a class and cannot be mixed in; only modules can be mixins", job.Ancestor.Original.Name.Name).Emit()
		}
		ctx.Tbl.PushMixin(job.Klass, ctx.Tbl.StubMixin)
		return true
	}

	if resolved == job.Klass {
		if b := ctx.Diag.BeginError(job.Ancestor.Loc, diagnostics.CircularDependency); b != nil {
			b.SetHeader("Circular dependency: `%s` cannot be its own ancestor", ctx.Tbl.Sym(job.Klass).Name).Emit()
		}
		stubAncestor(ctx, job)
		return true
	}

	if ctx.Tbl.DerivesFrom(resolved, job.Klass) {
		if b := ctx.Diag.BeginError(job.Ancestor.Loc, diagnostics.CircularDependency); b != nil {
			b.SetHeader("Circular dependency: `%s` and `%s` mutually derive from each other", ctx.Tbl.Sym(job.Klass).Name, ctx.Tbl.Sym(resolved).Name).Emit()
		}
		stubAncestor(ctx, job)
		return true
	}

	if job.IsSuperclass {
		if ctx.Tbl.SuperClassConflicts(job.Klass, resolved) {
			if b := ctx.Diag.BeginError(job.Ancestor.Loc, diagnostics.RedefinitionOfParents); b != nil {
				b.SetHeader("Redefinition of parent class of `%s`", ctx.Tbl.Sym(job.Klass).Name).Emit()
			}
		} else {
			ctx.Tbl.SetSuperClass(job.Klass, resolved)
		}
	} else {
		ctx.Tbl.PushMixin(job.Klass, resolved)
	}

	if ctx.Tbl.IsSealed(resolved) {
		ctx.Tbl.RecordSealedSubclass(resolved, job.Klass)
	}

	return true
}

func stubAncestor(ctx *Context, job AncestorResolutionItem) {
	if job.IsSuperclass {
		ctx.Tbl.SetSuperClass(job.Klass, ctx.Tbl.StubSuperClass)
	} else {
		ctx.Tbl.PushMixin(job.Klass, ctx.Tbl.StubMixin)
	}
}

// resolveClassAliasJob implements spec §4.1.9.
func resolveClassAliasJob(ctx *Context, job ClassAliasResolutionItem) bool {
	if job.Rhs.Symbol == ctx.Tbl.NoSymbol {
		return false
	}

	lhsSym := ctx.Tbl.Sym(job.Lhs)

	if ctx.Tbl.IsTypeAlias(job.Rhs.Symbol) {
		if b := ctx.Diag.BeginError(job.Rhs.Loc, diagnostics.ReassignsTypeAlias); b != nil {
			b.SetHeader("Reassigning type alias `%s` as a class alias", ctx.Tbl.Sym(job.Rhs.Symbol).Name).Emit()
		}
		lhsSym.ResultType = types.Untyped()
		lhsSym.ResultIsSet = true
		return true
	}

	if ctx.Tbl.Dealias(job.Rhs.Symbol) == job.Lhs {
		if b := ctx.Diag.BeginError(job.Rhs.Loc, diagnostics.RecursiveClassAlias); b != nil {
			b.SetHeader("Recursive class alias: `%s` aliases itself", lhsSym.Name).Emit()
		}
		lhsSym.ResultType = types.Untyped()
		lhsSym.ResultIsSet = true
		return true
	}

	lhsSym.ResultType = types.AliasType(job.Rhs.Symbol)
	lhsSym.ResultIsSet = true
	return true
}

// isFullyResolved reports whether every ConstantLit embedded in n has a
// non-stub symbol, and every embedded type-alias symbol has its
// ResultType set -- the precondition spec §4.1.8 requires before handing a
// type-alias RHS to the type-syntax sub-parser.
func isFullyResolved(ctx *Context, n ast.Node) bool {
	switch v := n.(type) {
	case nil, *ast.EmptyTree, *ast.Literal, *ast.Local, *ast.UnresolvedIdent:
		return true
	case *ast.ConstantLit:
		if v.Symbol == ctx.Tbl.NoSymbol {
			return false
		}
		if ctx.Tbl.IsTypeAlias(v.Symbol) && !ctx.Tbl.Sym(v.Symbol).ResultIsSet {
			return false
		}
		return true
	case *ast.UnresolvedConstantLit:
		return false
	case *ast.Send:
		if !isFullyResolved(ctx, v.Recv) {
			return false
		}
		for _, a := range v.Args {
			if !isFullyResolved(ctx, a) {
				return false
			}
		}
		return true
	case *ast.Cast:
		return isFullyResolved(ctx, v.Arg) && isFullyResolved(ctx, v.Type.Node)
	case *ast.Hash:
		for i := range v.Keys {
			if !isFullyResolved(ctx, v.Keys[i]) || !isFullyResolved(ctx, v.Values[i]) {
				return false
			}
		}
		return true
	case *ast.InsSeq:
		for _, s := range v.Stats {
			if !isFullyResolved(ctx, s) {
				return false
			}
		}
		return isFullyResolved(ctx, v.Expr)
	default:
		return true
	}
}

// typesyntaxOptsForAlias builds the flag set a type alias's RHS is parsed
// under: self_type is meaningful, rebind is not, and type members are
// allowed since an alias can live inside a generic-free class body.
func typesyntaxOptsForAlias(lhs symbols.Ref) typesyntax.ParseOpts {
	return typesyntax.ParseOpts{
		AllowSelfType:   true,
		AllowRebind:     false,
		AllowTypeMember: true,
		Context:         lhs,
	}
}

// collectPendingRefs walks n (an unresolved type-alias RHS) the same way
// isFullyResolved does, recording every embedded ConstantLit whose symbol
// is one of the still-pending type-alias Lhs refs in pending -- used to
// build the dependency graph a mutual cycle is detected from.
func collectPendingRefs(n ast.Node, pending map[symbols.Ref]bool, out map[symbols.Ref]bool) {
	switch v := n.(type) {
	case *ast.ConstantLit:
		if pending[v.Symbol] {
			out[v.Symbol] = true
		}
	case *ast.Send:
		collectPendingRefs(v.Recv, pending, out)
		for _, a := range v.Args {
			collectPendingRefs(a, pending, out)
		}
	case *ast.Cast:
		collectPendingRefs(v.Arg, pending, out)
		collectPendingRefs(v.Type.Node, pending, out)
	case *ast.Hash:
		for i := range v.Keys {
			collectPendingRefs(v.Keys[i], pending, out)
			collectPendingRefs(v.Values[i], pending, out)
		}
	case *ast.InsSeq:
		for _, s := range v.Stats {
			collectPendingRefs(s, pending, out)
		}
		collectPendingRefs(v.Expr, pending, out)
	}
}

// resolveTypeAliasJob implements spec §4.1.8.
func resolveTypeAliasJob(ctx *Context, job TypeAliasResolutionItem) bool {
	lhsSym := ctx.Tbl.Sym(job.Lhs)

	enclosing := ctx.Tbl.EnclosingClass(job.Lhs)
	for cur := enclosing; cur != ctx.Tbl.NoSymbol; cur = ctx.Tbl.Sym(cur).Owner {
		if len(ctx.Tbl.Sym(cur).TypeArgs) > 0 {
			if b := ctx.Diag.BeginError(lhsSym.Loc, diagnostics.TypeAliasInGenericClass); b != nil {
				b.SetHeader("Type alias `%s` declared inside generic class `%s`", lhsSym.Name, ctx.Tbl.Sym(cur).Name).Emit()
			}
			lhsSym.ResultType = types.Untyped()
			lhsSym.ResultIsSet = true
			return true
		}
		if cur == ctx.Tbl.Root {
			break
		}
	}

	if !isFullyResolved(ctx, job.Rhs) {
		return false
	}

	t, ok := ctx.Syntax.ParseType(ctx.Tbl, job.Rhs, typesyntaxOptsForAlias(job.Lhs))
	if !ok {
		t = types.Untyped()
	}
	lhsSym.ResultType = t
	lhsSym.ResultIsSet = true
	return true
}
