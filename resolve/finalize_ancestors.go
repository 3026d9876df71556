package resolve

import "quillc/symbols"

// FinalizeAncestors is P2: a single pass over every class and module
// symbol the namer minted, run once P1 has assigned every symbol a
// definite (possibly stubbed) ancestor. Two things fall out of waiting
// until here rather than doing them inline in resolveAncestorJob: a class
// that never wrote a superclass expression at all still needs one (it
// implicitly inherits the root object), and mixins.go (P3) and
// typeparams.go (P4) both need every class's ancestor list to be settled
// before they can walk it.
func FinalizeAncestors(ctx *Context, tbl *symbols.Table) {
	for _, ref := range allClassesAndModules(tbl) {
		sym := tbl.Sym(ref)
		if sym.Kind != symbols.KindClass || ref == tbl.Root {
			continue
		}
		if sym.SuperClass == tbl.NoSymbol || sym.SuperClass == tbl.Todo {
			sym.SuperClass = tbl.Root
		}
	}
}

// allClassesAndModules yields every KindClass/KindModule symbol ref in the
// table, sentinels included -- later passes decide for themselves whether
// a sentinel is relevant.
func allClassesAndModules(tbl *symbols.Table) []symbols.Ref {
	var out []symbols.Ref
	for i := 0; i < tbl.Len(); i++ {
		ref := symbols.Ref(i)
		k := tbl.Sym(ref).Kind
		if k == symbols.KindClass || k == symbols.KindModule {
			out = append(out, ref)
		}
	}
	return out
}
