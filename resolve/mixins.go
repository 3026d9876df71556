package resolve

import "quillc/symbols"

// MixesInClassMethods is P3: for every class or module, each mixin whose
// symbol has a ClassMethodsMod M contributes M's class-level (Singleton)
// methods to the includer's own Singleton table. This pass runs after
// FinalizeAncestors so every class's Mixins list is final, and copies
// those methods in mixin order so a later mixin can shadow an earlier one,
// matching ordinary instance method lookup precedence. Nothing in the
// resolver or the namer recognizes a `mixes_in_class_methods(M)` call or
// sets ClassMethodsMod, so the copy only happens for symbols whose
// ClassMethodsMod was set directly on the table.
func MixesInClassMethods(ctx *Context, tbl *symbols.Table) {
	for _, ref := range allClassesAndModules(tbl) {
		sym := tbl.Sym(ref)
		for _, mixin := range sym.Mixins {
			mixinSym := tbl.Sym(mixin)
			if mixinSym.ClassMethodsMod == tbl.NoSymbol {
				continue
			}
			copyClassMethods(tbl, ref, mixinSym.ClassMethodsMod)
		}
	}
}

func copyClassMethods(tbl *symbols.Table, into, from symbols.Ref) {
	src := tbl.Sym(from)
	if len(src.Singleton) == 0 {
		return
	}
	dst := tbl.Sym(into)
	if dst.Singleton == nil {
		dst.Singleton = map[string]symbols.Ref{}
	}
	for name, method := range src.Singleton {
		dst.Singleton[name] = method
	}
}
