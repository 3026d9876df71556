package project

import (
	"quillc/ast"
	"quillc/symbols"
)

// Namer pre-declares class/module/method symbols ahead of the resolver
// proper (§1's contract assumes this already happened) and, through
// RewriteUnresolvedConstants, rewrites bare ast.UnresolvedIdent nodes of
// kind IdentClass into ast.UnresolvedConstantLit. It is intentionally thin: a real namer would also track
// lexical scoping, `require`/`include` effects, and source-to-symbol
// position tables; this one exists so a tree built by hand (or by a
// toy front end) can be fed straight into resolve.Run.
type Namer struct {
	Tbl *symbols.Table
}

// NewNamer builds a Namer sharing tbl with the resolver passes that will
// run afterward.
func NewNamer(tbl *symbols.Table) *Namer {
	return &Namer{Tbl: tbl}
}

// Name walks every root, pre-declaring a symbol for each ClassDef and
// MethodDef that doesn't already carry one (Symbol != symbols.NoSymbol
// is treated as "already named" so Name is idempotent).
func (n *Namer) Name(roots []*ast.Root) {
	for _, root := range roots {
		for _, stat := range root.Stats {
			n.nameStat(stat, n.Tbl.Root)
		}
	}
}

func (n *Namer) nameStat(node ast.Node, owner symbols.Ref) {
	switch v := node.(type) {
	case *ast.ClassDef:
		if v.Symbol == n.Tbl.NoSymbol || v.Symbol == 0 {
			v.Symbol = n.Tbl.EnterClassSymbol(owner, v.Name, v.Location(), v.IsModule)
		}
		for _, s := range v.RHS {
			n.nameStat(s, v.Symbol)
		}

	case *ast.MethodDef:
		if v.Symbol == n.Tbl.NoSymbol || v.Symbol == 0 {
			if v.Flags.SelfMethod {
				v.Symbol = n.Tbl.EnterSelfMethodSymbol(owner, v.Name, v.Location())
			} else {
				v.Symbol = n.Tbl.EnterMethodSymbol(owner, v.Name, v.Location())
			}
		}

	case *ast.Send:
		if v.Blk != nil {
			n.nameStat(v.Blk.Body, owner)
		}

	case *ast.Assign:
		if name, ok := typeMemberName(v); ok {
			if _, exists := n.Tbl.FindMember(owner, name); !exists {
				n.Tbl.EnterTypeMemberSymbol(owner, name, v.Location())
			}
		}
	}
}

// typeMemberName recognizes a class-level type-member declaration (`X =
// type_member(...)` / `X = type_template(...)`) ahead of P1, before
// RewriteUnresolvedConstants has turned the LHS into an UnresolvedConstantLit.
func typeMemberName(v *ast.Assign) (string, bool) {
	ident, isIdent := v.LHS.(*ast.UnresolvedIdent)
	if !isIdent || ident.Kind != ast.IdentClass {
		return "", false
	}
	send, isSend := v.RHS.(*ast.Send)
	if !isSend || send.Recv != nil {
		return "", false
	}
	if send.Fun != "type_member" && send.Fun != "type_template" {
		return "", false
	}
	return ident.Name, true
}

// RewriteUnresolvedConstants replaces any ast.UnresolvedIdent of kind
// IdentClass found directly in an expression position with an
// ast.UnresolvedConstantLit scoped to EmptyTree (bare reference), the
// form P1's walk expects to find. This mirrors the narrow slice of what a
// real namer's constant-literal desugaring does (spec's original resolver
// assumes the namer already emitted these nodes).
func RewriteUnresolvedConstants(roots []*ast.Root) {
	for _, root := range roots {
		for i, s := range root.Stats {
			root.Stats[i] = rewriteNode(s)
		}
	}
}

func rewriteNode(node ast.Node) ast.Node {
	switch v := node.(type) {
	case *ast.UnresolvedIdent:
		if v.Kind == ast.IdentClass {
			return &ast.UnresolvedConstantLit{
				Scope: &ast.EmptyTree{},
				Name:  ast.NameRef{Name: v.Name, Loc: v.Location()},
			}
		}
		return v

	case *ast.ClassDef:
		for i, a := range v.Ancestors {
			v.Ancestors[i] = rewriteNode(a)
		}
		for i, a := range v.SingletonAncestors {
			v.SingletonAncestors[i] = rewriteNode(a)
		}
		for i, s := range v.RHS {
			v.RHS[i] = rewriteNode(s)
		}
		return v

	case *ast.MethodDef:
		v.RHS = rewriteNode(v.RHS)
		return v

	case *ast.Assign:
		v.LHS = rewriteNode(v.LHS)
		v.RHS = rewriteNode(v.RHS)
		return v

	case *ast.Send:
		v.Recv = rewriteNode(v.Recv)
		for i, a := range v.Args {
			v.Args[i] = rewriteNode(a)
		}
		if v.Blk != nil {
			v.Blk.Body = rewriteNode(v.Blk.Body)
		}
		return v

	case *ast.InsSeq:
		for i, s := range v.Stats {
			v.Stats[i] = rewriteNode(s)
		}
		v.Expr = rewriteNode(v.Expr)
		return v

	default:
		return v
	}
}
