package symbols

import (
	"sort"
	"strings"

	"quillc/ast"
)

// FindMember looks up name directly on sym's member table -- no ancestor
// walk. This is the primitive spec §4.1.1 calls "find_direct_member".
func (t *Table) FindMember(sym Ref, name string) (Ref, bool) {
	s := t.Sym(sym)
	if s.Members == nil {
		return t.NoSymbol, false
	}
	r, ok := s.Members[name]
	return r, ok
}

// FindMemberTransitive looks up name on sym, then on sym's superclass chain
// and mixin list (most-recently-mixed-in first), depth-first. Used for the
// "inherited members" half of the name-lookup rule (§4.1.1) and for P4's
// parent type-member lookup.
func (t *Table) FindMemberTransitive(sym Ref, name string) (Ref, bool) {
	return t.findTransitive(sym, name, map[Ref]bool{})
}

func (t *Table) findTransitive(sym Ref, name string, seen map[Ref]bool) (Ref, bool) {
	if sym == t.NoSymbol || seen[sym] {
		return t.NoSymbol, false
	}
	seen[sym] = true

	if r, ok := t.FindMember(sym, name); ok {
		return r, true
	}

	s := t.Sym(sym)
	for i := len(s.Mixins) - 1; i >= 0; i-- {
		if r, ok := t.findTransitive(s.Mixins[i], name, seen); ok {
			return r, true
		}
	}

	if s.SuperClass != t.NoSymbol && s.SuperClass != sym && s.SuperClass != t.Todo {
		if r, ok := t.findTransitive(s.SuperClass, name, seen); ok {
			return r, true
		}
	}

	return t.NoSymbol, false
}

// FindMemberFuzzy returns up to limit direct-member names of sym ranked by
// closeness to name, for "did you mean" diagnostics (§4.1.6). The distance
// metric is plain Levenshtein with case/underscore folding -- grounded on
// the same technique used for attribute-error suggestions in comparable
// dynamic-language tooling; no fuzzy-matching library is warranted for a
// single bounded string comparison like this.
func (t *Table) FindMemberFuzzy(sym Ref, name string, limit int) []string {
	s := t.Sym(sym)
	if len(s.Members) == 0 {
		return nil
	}

	type scored struct {
		name string
		dist int
	}
	fold := func(x string) string {
		return strings.Map(func(r rune) rune {
			if r == '_' {
				return -1
			}
			return r
		}, strings.ToLower(x))
	}
	target := fold(name)

	candidates := make([]scored, 0, len(s.Members))
	for candName := range s.Members {
		candidates = append(candidates, scored{candName, levenshtein(target, fold(candName))})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].name < candidates[j].name
	})

	out := make([]string, 0, limit)
	for _, c := range candidates {
		if len(out) >= limit {
			break
		}
		// allow up to half the target length (rounded up) plus one edits,
		// a heuristic similar to other "did you mean" spell checkers
		if c.dist > (len(target)+1)/2+1 {
			continue
		}
		out = append(out, c.name)
	}
	return out
}

// levenshtein computes the edit distance between two byte strings.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	row := make([]int, len(b)+1)
	for i := range row {
		row[i] = i
	}

	for i := 1; i <= len(a); i++ {
		prev := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cur := row[j]
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			row[j] = min3(row[j]+1, row[j-1]+1, prev+cost)
			prev = cur
		}
	}
	return row[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// Dealias follows a chain of type-alias/class-alias ResultType == Alias(ref)
// links to its ultimate non-alias target. Terminates even on a cyclic
// alias (detected and stubbed during P1) because resolve_class_alias_job
// and resolve_type_alias_job never let a symbol alias to itself once
// RecursiveClassAlias/RecursiveTypeAlias has fired.
func (t *Table) Dealias(sym Ref) Ref {
	seen := map[Ref]bool{}
	cur := sym
	for {
		if seen[cur] {
			return cur
		}
		seen[cur] = true

		s := t.Sym(cur)
		if (s.Kind != KindTypeAlias && s.Kind != KindStaticField) || !s.ResultIsSet {
			return cur
		}
		if at, ok := s.ResultType.(interface{ AliasTarget() (Ref, bool) }); ok {
			if target, isAlias := at.AliasTarget(); isAlias {
				cur = target
				continue
			}
		}
		return cur
	}
}

// EnclosingClass walks Owner links until it finds a class or module symbol
// (or Root).
func (t *Table) EnclosingClass(sym Ref) Ref {
	cur := sym
	for cur != t.NoSymbol {
		s := t.Sym(cur)
		if s.Kind == KindClass || s.Kind == KindModule {
			return cur
		}
		cur = s.Owner
	}
	return t.Root
}

func (t *Table) IsClass(sym Ref) bool {
	s := t.Sym(sym)
	return s.Kind == KindClass
}

func (t *Table) IsModule(sym Ref) bool {
	return t.Sym(sym).Kind == KindModule
}

func (t *Table) IsSealed(sym Ref) bool {
	return t.Sym(sym).Sealed
}

func (t *Table) IsTypeAlias(sym Ref) bool {
	return t.Sym(sym).Kind == KindTypeAlias
}

func (t *Table) IsTypeMember(sym Ref) bool {
	k := t.Sym(sym).Kind
	return k == KindTypeMember || k == KindTypeArgument
}

func (t *Table) IsStaticField(sym Ref) bool {
	return t.Sym(sym).Kind == KindStaticField
}

// DerivesFrom reports whether candidate appears anywhere in sym's
// superclass chain or mixin list -- used by the ancestor job's circularity
// check (§4.1.7, "CircularDependency (mutual)").
func (t *Table) DerivesFrom(sym, candidate Ref) bool {
	return t.derivesFrom(sym, candidate, map[Ref]bool{})
}

func (t *Table) derivesFrom(sym, candidate Ref, seen map[Ref]bool) bool {
	if sym == t.NoSymbol || sym == t.Todo || seen[sym] {
		return false
	}
	seen[sym] = true

	s := t.Sym(sym)
	if s.SuperClass == candidate {
		return true
	}
	for _, m := range s.Mixins {
		if m == candidate {
			return true
		}
	}
	if s.SuperClass != t.NoSymbol && s.SuperClass != sym && t.derivesFrom(s.SuperClass, candidate, seen) {
		return true
	}
	for _, m := range s.Mixins {
		if t.derivesFrom(m, candidate, seen) {
			return true
		}
	}
	return false
}

// SetSuperClass assigns klass's superclass, per the "superclass slot" rule
// in §4.1.7: set if currently NoSymbol/Todo/identical, otherwise the caller
// must treat it as a RedefinitionOfParents and not call SetSuperClass
// again.
func (t *Table) SetSuperClass(klass, super Ref) {
	t.Sym(klass).SuperClass = super
}

// SuperClassConflicts reports whether klass already has a different,
// concrete superclass assigned -- the precondition for RedefinitionOfParents.
func (t *Table) SuperClassConflicts(klass, newSuper Ref) bool {
	cur := t.Sym(klass).SuperClass
	return cur != t.NoSymbol && cur != t.Todo && cur != newSuper
}

func (t *Table) PushMixin(klass, mixin Ref) {
	t.Sym(klass).Mixins = append(t.Sym(klass).Mixins, mixin)
}

func (t *Table) RecordSealedSubclass(parent, child Ref) {
	p := t.Sym(parent)
	p.SealedSubclasses = append(p.SealedSubclasses, child)
}

// EnterClassSymbol registers a new class or module under owner -- the
// namer's job, never the resolver's own (see Table.Enter's doc comment).
func (t *Table) EnterClassSymbol(owner Ref, name string, loc ast.Loc, isModule bool) Ref {
	kind := KindClass
	if isModule {
		kind = KindModule
	}
	r := t.Enter(Symbol{Kind: kind, Name: name, Owner: owner, Loc: loc, SuperClass: t.Todo})
	t.defineMember(owner, name, r)
	return r
}

// EnterMethodSymbol registers a new method under owner, replacing any
// shadowing entry (the caller -- e.g. alias_method -- is responsible for
// deciding whether replacement is an error).
func (t *Table) EnterMethodSymbol(owner Ref, name string, loc ast.Loc) Ref {
	r := t.Enter(Symbol{Kind: KindMethod, Name: name, Owner: owner, Loc: loc})
	t.defineMember(owner, name, r)
	return r
}

// EnterSelfMethodSymbol registers a class-level ("self.") method, entered
// into owner's Singleton table rather than its instance Members table.
func (t *Table) EnterSelfMethodSymbol(owner Ref, name string, loc ast.Loc) Ref {
	r := t.Enter(Symbol{Kind: KindMethod, Name: name, Owner: owner, Loc: loc})
	o := t.Sym(owner)
	if o.Singleton == nil {
		o.Singleton = map[string]Ref{}
	}
	o.Singleton[name] = r
	return r
}

// EnterMethodOverload creates a KindMethodOverload symbol for one `sig`
// among several preceding a single MethodDef (§4.3.1). It is not entered
// into the owner's member table, and the primary method symbol (which
// keeps its own name) holds no reference to it; the overload is reachable
// only through the returned Ref.
func (t *Table) EnterMethodOverload(owner Ref, mangledName string, loc ast.Loc) Ref {
	return t.Enter(Symbol{Kind: KindMethodOverload, Name: mangledName, Owner: owner, Loc: loc})
}

// MangleRenameSymbol renames sym in owner's member table to a mangled name
// (freeing the original name for a fresh overload symbol) and returns the
// mangled name.
func (t *Table) MangleRenameSymbol(owner, sym Ref, suffix string) string {
	s := t.Sym(sym)
	mangled := s.Name + "$" + suffix
	delete(t.Sym(owner).Members, s.Name)
	s.Name = mangled
	t.defineMember(owner, mangled, sym)
	return mangled
}

func (t *Table) EnterStaticFieldSymbol(owner Ref, name string, loc ast.Loc, typ Type) Ref {
	r := t.Enter(Symbol{Kind: KindStaticField, Name: name, Owner: owner, Loc: loc, FieldType: typ})
	t.defineMember(owner, name, r)
	return r
}

func (t *Table) EnterFieldSymbol(owner Ref, name string, loc ast.Loc, typ Type) Ref {
	r := t.Enter(Symbol{Kind: KindInstanceField, Name: name, Owner: owner, Loc: loc, FieldType: typ})
	t.defineMember(owner, name, r)
	return r
}

func (t *Table) EnterTypeArgument(owner Ref, name string, loc ast.Loc) Ref {
	r := t.Enter(Symbol{Kind: KindTypeArgument, Name: name, Owner: owner, Loc: loc, Lower: nil, Upper: nil})
	t.Sym(owner).TypeArgs = append(t.Sym(owner).TypeArgs, r)
	return r
}

// EnterTypeMemberSymbol pre-declares a class-level type member (`X =
// type_member(...)`), analogous to EnterClassSymbol: it registers X as an
// ordinary member of owner (so the assignment's LHS resolves through the
// normal constant pipeline, and a subclass redeclaring the same name is
// reachable through FindMemberTransitive for the parent-bounds check), and
// records it on owner's TypeArgs list for CheckTypeParamBounds (P4) to
// walk. Bounds start unset; P4 computes them from the declaration's
// options hash once the declaration itself has resolved.
func (t *Table) EnterTypeMemberSymbol(owner Ref, name string, loc ast.Loc) Ref {
	r := t.Enter(Symbol{Kind: KindTypeMember, Name: name, Owner: owner, Loc: loc})
	t.defineMember(owner, name, r)
	t.Sym(owner).TypeArgs = append(t.Sym(owner).TypeArgs, r)
	return r
}

func (t *Table) defineMember(owner Ref, name string, sym Ref) {
	o := t.Sym(owner)
	if o.Members == nil {
		o.Members = map[string]Ref{}
	}
	o.Members[name] = sym
}

// overloadFiles records, by *ast.File, whether that file's project config
// permits multiple sigs before one method def (§4.3.1). It is populated by
// the driver before the resolver runs and is read-only thereafter,
// so concurrent P1 workers may query it freely.
type overloadFiles struct {
	permitted map[*ast.File]bool
}

// PermitOverloadDefinitions reports whether file is allowed to declare
// overloaded methods. Defaults to false (matching the common case: most
// files don't enable the feature) when the file was never registered.
func (t *Table) PermitOverloadDefinitions(file *ast.File) bool {
	if t.overloads == nil {
		return false
	}
	return t.overloads.permitted[file]
}

// SetPermitOverloadDefinitions is called by the driver once per file,
// before any resolver pass starts.
func (t *Table) SetPermitOverloadDefinitions(file *ast.File, permitted bool) {
	if t.overloads == nil {
		t.overloads = &overloadFiles{permitted: map[*ast.File]bool{}}
	}
	t.overloads.permitted[file] = permitted
}
