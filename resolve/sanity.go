package resolve

import "quillc/ast"

// SanityCheck is P6: a debug-only assertion that no UnresolvedConstantLit
// survived P1. It is never run in a normal build -- driver code gates it
// behind a debug flag -- since a violation indicates a bug in the resolver
// itself, not a user-facing condition.
func SanityCheck(trees []*ast.Root) []string {
	var violations []string
	for _, root := range trees {
		for _, stat := range root.Stats {
			sanityWalk(stat, &violations)
		}
	}
	return violations
}

func sanityWalk(n ast.Node, violations *[]string) {
	switch v := n.(type) {
	case nil, *ast.EmptyTree, *ast.Literal, *ast.Local, *ast.UnresolvedIdent, *ast.ConstantLit:
		return

	case *ast.UnresolvedConstantLit:
		*violations = append(*violations, "unresolved constant `"+v.Name.Name+"` survived resolution")

	case *ast.ClassDef:
		for _, a := range v.Ancestors {
			sanityWalk(a, violations)
		}
		for _, a := range v.SingletonAncestors {
			sanityWalk(a, violations)
		}
		for _, s := range v.RHS {
			sanityWalk(s, violations)
		}

	case *ast.MethodDef:
		for _, a := range v.Args {
			sanityWalk(a, violations)
		}
		sanityWalk(v.RHS, violations)

	case *ast.OptionalArg:
		sanityWalk(v.Default, violations)

	case *ast.Assign:
		sanityWalk(v.LHS, violations)
		sanityWalk(v.RHS, violations)

	case *ast.Send:
		sanityWalk(v.Recv, violations)
		for _, a := range v.Args {
			sanityWalk(a, violations)
		}
		if v.Blk != nil {
			sanityWalk(v.Blk.Body, violations)
		}

	case *ast.Cast:
		sanityWalk(v.Type.Node, violations)
		sanityWalk(v.Arg, violations)

	case *ast.InsSeq:
		for _, s := range v.Stats {
			sanityWalk(s, violations)
		}
		sanityWalk(v.Expr, violations)

	case *ast.Hash:
		for i := range v.Keys {
			sanityWalk(v.Keys[i], violations)
			sanityWalk(v.Values[i], violations)
		}
	}
}
