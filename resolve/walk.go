package resolve

import (
	"quillc/ast"
	"quillc/diagnostics"
	"quillc/symbols"
)

// walk is the generalized rewrite-and-reassign tree walker spec §4.1.4
// describes: it replaces every UnresolvedConstantLit reachable from n with
// a ConstantLit (queuing a ResolutionItem when eager resolution stalls),
// and recurses into every child slot, reassigning the walked result back
// into its parent so the tree is mutated in place as the walk proceeds.
func walk(ctx *Context, nesting *Nesting, n ast.Node, tdo *todoLists) ast.Node {
	switch v := n.(type) {
	case nil:
		return nil

	case *ast.EmptyTree, *ast.Literal, *ast.Local, *ast.UnresolvedIdent, *ast.ConstantLit:
		return v

	case *ast.UnresolvedConstantLit:
		return resolveConstantNode(ctx, nesting, v, tdo)

	case *ast.ClassDef:
		return walkClassDef(ctx, nesting, v, tdo)

	case *ast.MethodDef:
		return walkMethodDef(ctx, nesting, v, tdo)

	case *ast.OptionalArg:
		v.Default = walk(ctx, nesting, v.Default, tdo)
		return v

	case *ast.Assign:
		return walkAssign(ctx, nesting, v, tdo)

	case *ast.Send:
		return walkSend(ctx, nesting, v, tdo)

	case *ast.Block:
		v.Body = walk(ctx, nesting, v.Body, tdo)
		return v

	case *ast.Cast:
		v.Type.Node = walk(ctx, nesting, v.Type.Node, tdo)
		v.Arg = walk(ctx, nesting, v.Arg, tdo)
		return v

	case *ast.InsSeq:
		for i := range v.Stats {
			v.Stats[i] = walk(ctx, nesting, v.Stats[i], tdo)
		}
		v.Expr = walk(ctx, nesting, v.Expr, tdo)
		return v

	case *ast.Hash:
		for i := range v.Keys {
			v.Keys[i] = walk(ctx, nesting, v.Keys[i], tdo)
			v.Values[i] = walk(ctx, nesting, v.Values[i], tdo)
		}
		return v

	default:
		return n
	}
}

// resolveConstantNode replaces one UnresolvedConstantLit with its resolved
// form, walking its scope expression first so a chained reference like
// `A::B::C` resolves left-to-right (spec §4.1.3's ordering requirement).
func resolveConstantNode(ctx *Context, nesting *Nesting, uc *ast.UnresolvedConstantLit, tdo *todoLists) *ast.ConstantLit {
	if uc.Scope != nil {
		uc.Scope = walk(ctx, nesting, uc.Scope, tdo)
	}

	sym, status := resolveConstant(ctx, nesting, uc)
	cl := ast.NewConstantLit(uc, sym, nesting.Scope())
	if status == pending {
		tdo.constants = append(tdo.constants, ResolutionItem{Scope: nesting, Out: cl})
	}
	return cl
}

// walkClassDef pushes Symbol onto the nesting chain for its body and queues
// one AncestorResolutionItem per ancestor expression (spec §4.1.4, §4.1.7):
// the first instance-side ancestor of a non-module class is its superclass,
// everything else -- the rest of Ancestors, and all of SingletonAncestors
// -- is a mixin.
func walkClassDef(ctx *Context, nesting *Nesting, v *ast.ClassDef, tdo *todoLists) ast.Node {
	inner := nesting.push(v.Symbol)

	for i, anc := range v.Ancestors {
		isSuperclass := !v.IsModule && i == 0
		v.Ancestors[i] = walkAncestor(ctx, inner, anc, v.Symbol, isSuperclass, tdo)
	}
	for i, anc := range v.SingletonAncestors {
		v.SingletonAncestors[i] = walkAncestor(ctx, inner, anc, v.Symbol, false, tdo)
	}
	for i, stat := range v.RHS {
		v.RHS[i] = walk(ctx, inner, stat, tdo)
	}

	return v
}

// walkAncestor resolves one superclass/mixin expression. An ancestor that
// isn't even syntactically a constant reference is reported immediately --
// no amount of waiting for other symbols to resolve will make a Send a
// valid ancestor.
func walkAncestor(ctx *Context, nesting *Nesting, n ast.Node, klass symbols.Ref, isSuperclass bool, tdo *todoLists) ast.Node {
	switch v := n.(type) {
	case *ast.UnresolvedConstantLit:
		cl := resolveConstantNode(ctx, nesting, v, tdo)
		tdo.ancestors = append(tdo.ancestors, AncestorResolutionItem{Ancestor: cl, Klass: klass, IsSuperclass: isSuperclass})
		return cl

	case *ast.ConstantLit:
		tdo.ancestors = append(tdo.ancestors, AncestorResolutionItem{Ancestor: v, Klass: klass, IsSuperclass: isSuperclass})
		return v

	default:
		if b := ctx.Diag.BeginError(n.Location(), diagnostics.DynamicSuperclass); b != nil {
			b.SetHeader("Superclass and mixin expressions must be constants").Emit()
		}
		return n
	}
}

func walkMethodDef(ctx *Context, nesting *Nesting, v *ast.MethodDef, tdo *todoLists) ast.Node {
	for i, a := range v.Args {
		v.Args[i] = walk(ctx, nesting, a, tdo)
	}
	v.RHS = walk(ctx, nesting, v.RHS, tdo)
	return v
}

func walkSend(ctx *Context, nesting *Nesting, v *ast.Send, tdo *todoLists) ast.Node {
	v.Recv = walk(ctx, nesting, v.Recv, tdo)
	for i, a := range v.Args {
		v.Args[i] = walk(ctx, nesting, a, tdo)
	}
	if v.Blk != nil {
		v.Blk.Body = walk(ctx, nesting, v.Blk.Body, tdo)
	}
	return v
}

// walkAssign recognizes the two resolver-relevant assignment shapes (spec
// §4.1.8, §4.1.9) layered on top of ordinary assignment: a type alias
// (`Name = T.type_alias(Body)`) and a class alias (a static field assigned
// directly from another constant). Anything else is walked generically.
func walkAssign(ctx *Context, nesting *Nesting, v *ast.Assign, tdo *todoLists) ast.Node {
	lhs := walk(ctx, nesting, v.LHS, tdo)
	v.LHS = lhs
	lhsCL, lhsIsConstant := lhs.(*ast.ConstantLit)

	if send, isSend := v.RHS.(*ast.Send); isSend && send.Fun == "type_alias" && len(send.Args) == 1 {
		send.Args[0] = walk(ctx, nesting, send.Args[0], tdo)
		v.RHS = send
		if lhsIsConstant {
			tdo.typeAliases = append(tdo.typeAliases, TypeAliasResolutionItem{Lhs: lhsCL.Symbol, Rhs: send.Args[0]})
		}
		return v
	}

	if lhsIsConstant && ctx.Tbl.IsStaticField(lhsCL.Symbol) {
		rhs := walk(ctx, nesting, v.RHS, tdo)
		v.RHS = rhs
		if rhsCL, rhsIsConstant := rhs.(*ast.ConstantLit); rhsIsConstant {
			tdo.classAliases = append(tdo.classAliases, ClassAliasResolutionItem{Lhs: lhsCL.Symbol, Rhs: rhsCL})
		}
		return v
	}

	v.RHS = walk(ctx, nesting, v.RHS, tdo)
	return v
}
