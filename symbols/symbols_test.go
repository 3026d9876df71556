package symbols_test

import (
	"testing"

	"quillc/ast"
	"quillc/symbols"
)

func TestNewTableSentinels(t *testing.T) {
	tbl := symbols.NewTable()

	if tbl.NoSymbol == tbl.Root {
		t.Fatalf("NoSymbol and Root must be distinct")
	}
	if tbl.Sym(tbl.Root).SuperClass != tbl.Root {
		t.Errorf("Root should be its own ultimate ancestor")
	}
	for name, ref := range map[string]symbols.Ref{
		"Todo":           tbl.Todo,
		"StubModule":     tbl.StubModule,
		"StubSuperClass": tbl.StubSuperClass,
		"StubMixin":      tbl.StubMixin,
		"Untyped":        tbl.Untyped,
		"BadAliasClass":  tbl.BadAliasClass,
		"BadAliasMethod": tbl.BadAliasMethod,
		"BadAliasType":   tbl.BadAliasType,
	} {
		if ref == tbl.NoSymbol {
			t.Errorf("sentinel %s was not allocated", name)
		}
	}
}

func TestEnterClassAndMethodSymbol(t *testing.T) {
	tbl := symbols.NewTable()

	cls := tbl.EnterClassSymbol(tbl.Root, "Foo", ast.Loc{}, false)
	if tbl.Sym(cls).Kind != symbols.KindClass {
		t.Fatalf("expected KindClass, got %v", tbl.Sym(cls).Kind)
	}
	if got, ok := tbl.FindMember(tbl.Root, "Foo"); !ok || got != cls {
		t.Errorf("Foo not registered on Root's member table")
	}

	meth := tbl.EnterMethodSymbol(cls, "bar", ast.Loc{})
	if got, ok := tbl.FindMember(cls, "bar"); !ok || got != meth {
		t.Errorf("bar not registered on Foo's member table")
	}

	self := tbl.EnterSelfMethodSymbol(cls, "make", ast.Loc{})
	if tbl.Sym(cls).Singleton["make"] != self {
		t.Errorf("make not registered on Foo's singleton table")
	}
	if _, ok := tbl.FindMember(cls, "make"); ok {
		t.Errorf("self method must not appear in the instance member table")
	}
}

func TestFindMemberTransitive(t *testing.T) {
	tbl := symbols.NewTable()

	base := tbl.EnterClassSymbol(tbl.Root, "Base", ast.Loc{}, false)
	tbl.EnterMethodSymbol(base, "greet", ast.Loc{})

	child := tbl.EnterClassSymbol(tbl.Root, "Child", ast.Loc{}, false)
	tbl.SetSuperClass(child, base)

	if _, ok := tbl.FindMember(child, "greet"); ok {
		t.Fatalf("greet should not be a direct member of Child")
	}
	if _, ok := tbl.FindMemberTransitive(child, "greet"); !ok {
		t.Errorf("greet should be reachable through Child's superclass chain")
	}
}

func TestDerivesFrom(t *testing.T) {
	tbl := symbols.NewTable()

	a := tbl.EnterClassSymbol(tbl.Root, "A", ast.Loc{}, false)
	b := tbl.EnterClassSymbol(tbl.Root, "B", ast.Loc{}, false)
	tbl.SetSuperClass(b, a)

	if !tbl.DerivesFrom(b, a) {
		t.Errorf("B should derive from A")
	}
	if tbl.DerivesFrom(a, b) {
		t.Errorf("A should not derive from B")
	}
}

func TestFindMemberFuzzySuggestsClosestName(t *testing.T) {
	tbl := symbols.NewTable()
	cls := tbl.EnterClassSymbol(tbl.Root, "Widget", ast.Loc{}, false)
	tbl.EnterMethodSymbol(cls, "render", ast.Loc{})
	tbl.EnterMethodSymbol(cls, "renderer", ast.Loc{})
	tbl.EnterMethodSymbol(cls, "destroy", ast.Loc{})

	got := tbl.FindMemberFuzzy(cls, "rendr", 2)
	if len(got) == 0 || got[0] != "render" {
		t.Errorf("expected closest match `render` first, got %v", got)
	}
}

func TestMangleRenameSymbolFreesOriginalName(t *testing.T) {
	tbl := symbols.NewTable()
	cls := tbl.EnterClassSymbol(tbl.Root, "Foo", ast.Loc{}, false)
	meth := tbl.EnterMethodSymbol(cls, "bar", ast.Loc{})

	mangled := tbl.MangleRenameSymbol(cls, meth, "1")
	if mangled != "bar$1" {
		t.Errorf("expected mangled name `bar$1`, got %q", mangled)
	}
	if _, ok := tbl.FindMember(cls, "bar"); ok {
		t.Errorf("original name `bar` should no longer resolve")
	}
	if got, ok := tbl.FindMember(cls, mangled); !ok || got != meth {
		t.Errorf("mangled name should resolve to the same symbol")
	}
}
