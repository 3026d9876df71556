package types_test

import (
	"testing"

	"quillc/ast"
	"quillc/symbols"
	"quillc/types"
)

func TestUntypedAbsorbsEverything(t *testing.T) {
	tbl := symbols.NewTable()
	cls := &types.Class{Ref: tbl.EnterClassSymbol(tbl.Root, "Foo", ast.Loc{}, false), Name: "Foo"}

	if !types.IsSubtype(tbl, types.Untyped(), cls) {
		t.Errorf("untyped should be a subtype of anything")
	}
	if !types.IsSubtype(tbl, cls, types.Untyped()) {
		t.Errorf("anything should be a subtype of untyped")
	}
}

func TestTopAndBottom(t *testing.T) {
	tbl := symbols.NewTable()
	cls := &types.Class{Ref: tbl.EnterClassSymbol(tbl.Root, "Foo", ast.Loc{}, false), Name: "Foo"}

	if !types.IsSubtype(tbl, types.Bottom(), cls) {
		t.Errorf("bottom should be a subtype of anything")
	}
	if !types.IsSubtype(tbl, cls, types.Top()) {
		t.Errorf("anything should be a subtype of top")
	}
	if types.IsSubtype(tbl, types.Top(), cls) {
		t.Errorf("top should not be a subtype of an ordinary class")
	}
}

func TestClassSubtypingFollowsAncestry(t *testing.T) {
	tbl := symbols.NewTable()
	baseRef := tbl.EnterClassSymbol(tbl.Root, "Base", ast.Loc{}, false)
	childRef := tbl.EnterClassSymbol(tbl.Root, "Child", ast.Loc{}, false)
	tbl.SetSuperClass(childRef, baseRef)

	base := &types.Class{Ref: baseRef, Name: "Base"}
	child := &types.Class{Ref: childRef, Name: "Child"}

	if !types.IsSubtype(tbl, child, base) {
		t.Errorf("Child should be a subtype of Base")
	}
	if types.IsSubtype(tbl, base, child) {
		t.Errorf("Base should not be a subtype of Child")
	}
}

func TestUnionIsSupertypeOfAnyMember(t *testing.T) {
	tbl := symbols.NewTable()
	a := &types.Class{Ref: tbl.EnterClassSymbol(tbl.Root, "A", ast.Loc{}, false), Name: "A"}
	b := &types.Class{Ref: tbl.EnterClassSymbol(tbl.Root, "B", ast.Loc{}, false), Name: "B"}
	union := &types.Union{Members: []symbols.Type{a, b}}

	if !types.IsSubtype(tbl, a, union) {
		t.Errorf("A should be a subtype of T.any(A, B)")
	}
	if !types.IsSubtype(tbl, b, union) {
		t.Errorf("B should be a subtype of T.any(A, B)")
	}
}

func TestEquivDealiasesBothSides(t *testing.T) {
	tbl := symbols.NewTable()
	realRef := tbl.EnterClassSymbol(tbl.Root, "Real", ast.Loc{}, false)
	real := &types.Class{Ref: realRef, Name: "Real"}

	aliasSym := tbl.Enter(symbols.Symbol{Kind: symbols.KindTypeAlias, Name: "Synonym", Owner: tbl.Root})
	tbl.Sym(aliasSym).ResultIsSet = true
	tbl.Sym(aliasSym).ResultType = types.AliasType(realRef)
	alias := types.AliasType(aliasSym)

	if !types.Equiv(tbl, real, alias) {
		t.Errorf("a type alias should be equivalent to what it ultimately resolves to")
	}
}

func TestClassReprIncludesTypeArgs(t *testing.T) {
	elem := &types.Class{Name: "Integer"}
	arr := &types.Class{Name: "Array", TypeArgs: []symbols.Type{elem}}

	if got, want := arr.Repr(), "Array[Integer]"; got != want {
		t.Errorf("Repr() = %q, want %q", got, want)
	}
}
