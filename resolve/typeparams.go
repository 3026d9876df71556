package resolve

import (
	"quillc/ast"
	"quillc/diagnostics"
	"quillc/symbols"
	"quillc/typesyntax"
	"quillc/types"
)

// CheckTypeParamBounds is P4 (spec §4.2): for each `X = type_member(...)` /
// `X = type_template(...)` declaration, computes X's lower/upper bounds
// from its options hash, then validates every type member and type
// argument's own bound pair and checks that a class redeclaring an
// ancestor's type member only narrows its bounds, never widens them.
func CheckTypeParamBounds(ctx *Context, tbl *symbols.Table, trees []*ast.Root) {
	for _, root := range trees {
		assignTypeMemberBounds(ctx, tbl.Root, root.Stats)
	}

	for _, ref := range allClassesAndModules(tbl) {
		sym := tbl.Sym(ref)
		for _, argRef := range sym.TypeArgs {
			checkOwnBounds(ctx, tbl, argRef)
			checkAgainstParent(ctx, tbl, ref, argRef)
		}
	}
}

// assignTypeMemberBounds walks a statement list (recursing into nested
// class bodies) looking for the `Assign(ConstantLit, Send(self,
// :type_member|:type_template, ...))` shape and computes that member's
// bounds.
func assignTypeMemberBounds(ctx *Context, owner symbols.Ref, stats []ast.Node) {
	for _, stat := range stats {
		switch v := stat.(type) {
		case *ast.ClassDef:
			assignTypeMemberBounds(ctx, v.Symbol, v.RHS)
		case *ast.Assign:
			assignOneTypeMemberBound(ctx, owner, v)
		}
	}
}

func assignOneTypeMemberBound(ctx *Context, owner symbols.Ref, v *ast.Assign) {
	lhs, isConstant := v.LHS.(*ast.ConstantLit)
	if !isConstant || !ctx.Tbl.IsTypeMember(lhs.Symbol) {
		return
	}
	send, isSend := v.RHS.(*ast.Send)
	if !isSend || send.Recv != nil {
		return
	}
	if send.Fun != "type_member" && send.Fun != "type_template" {
		return
	}

	sym := ctx.Tbl.Sym(lhs.Symbol)
	sym.Lower = types.Bottom()
	sym.Upper = types.Top()

	if len(send.Args) != 1 {
		return
	}
	h, isHash := send.Args[0].(*ast.Hash)
	if !isHash {
		return
	}
	applyTypeMemberOptions(ctx, owner, sym, h)
}

// applyTypeMemberOptions parses `{fixed: T}` (both bounds set to T) or
// `{lower: T, upper: T}` off a type member's declaration.
func applyTypeMemberOptions(ctx *Context, owner symbols.Ref, sym *symbols.Symbol, h *ast.Hash) {
	opts := typesyntax.ParseOpts{AllowSelfType: true, AllowTypeMember: true, Context: owner}
	for i, key := range h.Keys {
		lit, isLit := key.(*ast.Literal)
		if !isLit || lit.Kind != "symbol" {
			continue
		}
		typ, parsed := ctx.Syntax.ParseType(ctx.Tbl, h.Values[i], opts)
		if !parsed {
			continue
		}
		switch lit.Value {
		case "fixed":
			sym.Lower = typ
			sym.Upper = typ
		case "lower":
			sym.Lower = typ
		case "upper":
			sym.Upper = typ
		}
	}
}

func checkOwnBounds(ctx *Context, tbl *symbols.Table, argRef symbols.Ref) {
	arg := tbl.Sym(argRef)
	if arg.Lower == nil || arg.Upper == nil {
		return
	}
	if types.IsSubtype(tbl, arg.Lower, arg.Upper) {
		return
	}
	if b := ctx.Diag.BeginError(arg.Loc, diagnostics.InvalidTypeMemberBounds); b != nil {
		b.SetHeader("Lower bound of `%s` is not a subtype of its upper bound", arg.Name).Emit()
	}
}

// checkAgainstParent finds an ancestor's type member of the same name (if
// any) and requires argRef's bounds to fall within it: the parent's lower
// bound must be a subtype of the child's lower bound, and the child's
// upper bound must be a subtype of the parent's upper bound.
func checkAgainstParent(ctx *Context, tbl *symbols.Table, klass, argRef symbols.Ref) {
	arg := tbl.Sym(argRef)
	super := tbl.Sym(klass).SuperClass
	if super == tbl.NoSymbol || super == tbl.Todo || super == klass {
		return
	}

	parentRef, ok := tbl.FindMemberTransitive(super, arg.Name)
	if !ok || !tbl.IsTypeMember(parentRef) {
		return
	}
	parent := tbl.Sym(parentRef)
	if parent.Lower == nil || parent.Upper == nil || arg.Lower == nil || arg.Upper == nil {
		return
	}

	if types.IsSubtype(tbl, parent.Lower, arg.Lower) && types.IsSubtype(tbl, arg.Upper, parent.Upper) {
		return
	}

	if b := ctx.Diag.BeginError(arg.Loc, diagnostics.ParentTypeBoundsMismatch); b != nil {
		b.SetHeader("Bounds of `%s` do not narrow the bounds declared by its ancestor", arg.Name).Emit()
	}
}
