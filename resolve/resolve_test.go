package resolve_test

import (
	"testing"

	"quillc/ast"
	"quillc/diagnostics"
	"quillc/resolve"
	"quillc/symbols"
	"quillc/typesyntax"
)

// buildTree mints Base and Child classes directly (bypassing
// project.Namer) so the pipeline can be driven from a
// hand-built tree the way a unit test for a parser-backed resolver would.
func buildTree(tbl *symbols.Table) *ast.Root {
	base := &ast.ClassDef{Name: "Base"}
	base.Symbol = tbl.EnterClassSymbol(tbl.Root, "Base", ast.Loc{}, false)

	child := &ast.ClassDef{
		Name: "Child",
		Ancestors: []ast.Node{
			&ast.UnresolvedConstantLit{
				Scope: &ast.EmptyTree{},
				Name:  ast.NameRef{Name: "Base"},
			},
		},
	}
	child.Symbol = tbl.EnterClassSymbol(tbl.Root, "Child", ast.Loc{}, false)

	return &ast.Root{Stats: []ast.Node{base, child}}
}

func TestRunResolvesSuperclassReference(t *testing.T) {
	tbl := symbols.NewTable()
	ctx := resolve.NewContext(tbl, diagnostics.NewQueue(), typesyntax.New())
	root := buildTree(tbl)

	resolve.RunTreePasses(ctx, []*ast.Root{root})

	child := root.Stats[1].(*ast.ClassDef)
	ancestor, ok := child.Ancestors[0].(*ast.ConstantLit)
	if !ok {
		t.Fatalf("expected Child's ancestor to have resolved to a ConstantLit, got %T", child.Ancestors[0])
	}

	base := root.Stats[0].(*ast.ClassDef)
	if ancestor.Symbol != base.Symbol {
		t.Errorf("Child's superclass should resolve to Base's symbol")
	}
	if tbl.Sym(child.Symbol).SuperClass != base.Symbol {
		t.Errorf("Child's SuperClass should be Base after the tree passes")
	}
}

func TestSanityCheckFindsNoViolationsAfterRun(t *testing.T) {
	tbl := symbols.NewTable()
	ctx := resolve.NewContext(tbl, diagnostics.NewQueue(), typesyntax.New())
	root := buildTree(tbl)

	resolve.RunTreePasses(ctx, []*ast.Root{root})

	if violations := resolve.SanityCheck([]*ast.Root{root}); len(violations) != 0 {
		t.Errorf("expected no unresolved constants after a full run, got %v", violations)
	}
}

func TestRunStubsUnresolvableSuperclass(t *testing.T) {
	tbl := symbols.NewTable()
	diag := diagnostics.NewQueue()
	ctx := resolve.NewContext(tbl, diag, typesyntax.New())

	child := &ast.ClassDef{
		Name: "Orphan",
		Ancestors: []ast.Node{
			&ast.UnresolvedConstantLit{
				Scope: &ast.EmptyTree{},
				Name:  ast.NameRef{Name: "DoesNotExist"},
			},
		},
	}
	child.Symbol = tbl.EnterClassSymbol(tbl.Root, "Orphan", ast.Loc{}, false)
	root := &ast.Root{Stats: []ast.Node{child}}

	resolve.RunTreePasses(ctx, []*ast.Root{root})

	if tbl.Sym(child.Symbol).SuperClass != tbl.StubSuperClass {
		t.Errorf("an unresolvable superclass should fall back to the stub sentinel, got %v", tbl.Sym(child.Symbol).SuperClass)
	}
}
