// Package types implements the small type algebra the resolver's P4 and P5
// passes need: nominal class types, the untyped bottom-of-knowledge type,
// Top/Bottom, alias indirection, and union/intersection composition
// (`T.any`/`T.all`). It is the concrete implementation of the
// symbols.Type interface and of the `Types::*` contract from spec §6.
package types

import (
	"sort"
	"strings"

	"quillc/symbols"
)

// Class is a nominal reference to a class or module symbol, optionally
// parameterized by type arguments (for a generic class/method instantiation).
type Class struct {
	Ref      symbols.Ref
	Name     string // symbol name, cached for Repr without a table handle
	TypeArgs []symbols.Type
}

func (c *Class) IsType() {}
func (c *Class) Repr() string {
	if len(c.TypeArgs) == 0 {
		return c.Name
	}
	parts := make([]string, len(c.TypeArgs))
	for i, a := range c.TypeArgs {
		parts[i] = a.Repr()
	}
	return c.Name + "[" + strings.Join(parts, ", ") + "]"
}

// untypedKind distinguishes ordinary untyped (which silently absorbs
// everything during checking) from "untyped, untracked" (used where the
// resolver deliberately gives up without even recording a static approximation).
type untypedKind int

const (
	untypedTracked untypedKind = iota
	untypedUntrackedKind
)

type untypedType struct{ kind untypedKind }

func (u *untypedType) IsType()        {}
func (u *untypedType) Repr() string   { return "untyped" }

var (
	untypedSingleton          = &untypedType{kind: untypedTracked}
	untypedUntrackedSingleton = &untypedType{kind: untypedUntrackedKind}
)

// Untyped returns the canonical `untyped` type used throughout error
// recovery (§4.1.2, §4.1.8, §4.1.9).
func Untyped() symbols.Type { return untypedSingleton }

// UntypedUntracked returns the variant of untyped used when the resolver
// deliberately declines to even approximate a type.
func UntypedUntracked() symbols.Type { return untypedUntrackedSingleton }

func IsUntyped(t symbols.Type) bool {
	u, ok := t.(*untypedType)
	return ok && u != nil && (u == untypedSingleton || u == untypedUntrackedSingleton)
}

type topType struct{}

func (topType) IsType()      {}
func (topType) Repr() string { return "top" }

type bottomType struct{}

func (bottomType) IsType()      {}
func (bottomType) Repr() string { return "bottom" }

var (
	topSingleton    = topType{}
	bottomSingleton = bottomType{}
)

func Top() symbols.Type    { return topSingleton }
func Bottom() symbols.Type { return bottomSingleton }

// Alias wraps the Ref an alias (class alias or type alias) ultimately
// points at before dealiasing; symbols.Table.Dealias recognizes it through
// the AliasTarget method.
type Alias struct {
	Target symbols.Ref
}

func (a *Alias) IsType()      {}
func (a *Alias) Repr() string { return "<alias>" }

// AliasTarget implements the interface symbols.Table.Dealias probes for.
func (a *Alias) AliasTarget() (symbols.Ref, bool) { return a.Target, true }

// AliasType constructs the type stored on a class-alias or type-alias
// symbol's ResultType, per §4.1.8/§4.1.9.
func AliasType(target symbols.Ref) symbols.Type {
	return &Alias{Target: target}
}

// Union is `T.any(A, B, ...)`.
type Union struct{ Members []symbols.Type }

func (u *Union) IsType() {}
func (u *Union) Repr() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.Repr()
	}
	return "T.any(" + strings.Join(parts, ", ") + ")"
}

// Intersection is `T.all(A, B, ...)`.
type Intersection struct{ Members []symbols.Type }

func (i *Intersection) IsType() {}
func (i *Intersection) Repr() string {
	parts := make([]string, len(i.Members))
	for j, m := range i.Members {
		parts[j] = m.Repr()
	}
	return "T.all(" + strings.Join(parts, ", ") + ")"
}

// Nilable is shorthand for T.any(NilClass, X), kept as its own node so
// Repr reads `T.nilable(X)` instead of expanding the union.
type Nilable struct{ Inner symbols.Type }

func (n *Nilable) IsType()      {}
func (n *Nilable) Repr() string { return "T.nilable(" + n.Inner.Repr() + ")" }

// Proc is a callable/block type; the resolver only needs its arity and
// element types to round-trip, not a full function-type lattice.
type Proc struct {
	Params  []symbols.Type
	Returns symbols.Type
}

func (p *Proc) IsType() {}
func (p *Proc) Repr() string {
	parts := make([]string, len(p.Params))
	for i, m := range p.Params {
		parts[i] = m.Repr()
	}
	return "T.proc.params(" + strings.Join(parts, ", ") + ").returns(" + p.Returns.Repr() + ")"
}

// TypeMember refers to a generic class/method's own type parameter (its
// upper/lower bound is tracked on the owning symbols.Symbol, not here).
type TypeMember struct {
	Ref  symbols.Ref
	Name string
}

func (t *TypeMember) IsType()      {}
func (t *TypeMember) Repr() string { return t.Name }

// -----------------------------------------------------------------------------
// Algebra: the `Types::*` contract of spec §6.

// Equiv reports structural equivalence after dealiasing both sides through
// tbl. Two class types are equivalent iff they name the same symbol and
// their type arguments are pairwise equivalent; untyped is equivalent only
// to untyped; Top/Bottom are each equivalent only to themselves.
func Equiv(tbl *symbols.Table, a, b symbols.Type) bool {
	a, b = resolveAlias(tbl, a), resolveAlias(tbl, b)

	switch av := a.(type) {
	case *untypedType:
		bv, ok := b.(*untypedType)
		return ok && av.kind == bv.kind
	case topType:
		_, ok := b.(topType)
		return ok
	case bottomType:
		_, ok := b.(bottomType)
		return ok
	case *Class:
		bv, ok := b.(*Class)
		if !ok || bv.Ref != av.Ref || len(av.TypeArgs) != len(bv.TypeArgs) {
			return false
		}
		for i := range av.TypeArgs {
			if !Equiv(tbl, av.TypeArgs[i], bv.TypeArgs[i]) {
				return false
			}
		}
		return true
	case *Nilable:
		bv, ok := b.(*Nilable)
		return ok && Equiv(tbl, av.Inner, bv.Inner)
	case *Union:
		bv, ok := b.(*Union)
		return ok && sameSet(tbl, av.Members, bv.Members)
	case *Intersection:
		bv, ok := b.(*Intersection)
		return ok && sameSet(tbl, av.Members, bv.Members)
	case *TypeMember:
		bv, ok := b.(*TypeMember)
		return ok && av.Ref == bv.Ref
	default:
		return false
	}
}

func sameSet(tbl *symbols.Table, a, b []symbols.Type) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, x := range a {
		found := false
		for j, y := range b {
			if !used[j] && Equiv(tbl, x, y) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func resolveAlias(tbl *symbols.Table, t symbols.Type) symbols.Type {
	if a, ok := t.(*Alias); ok {
		target := tbl.Dealias(a.Target)
		ts := tbl.Sym(target)
		if ts.ResultIsSet {
			return resolveAlias(tbl, ts.ResultType)
		}
		return &Class{Ref: target, Name: ts.Name}
	}
	return t
}

// IsSubtype reports whether sub can be used where sup is expected. untyped
// is subtype and supertype of everything (it absorbs type errors rather
// than reporting spurious ones -- the hallmark of a gradual type system).
// Bottom is a subtype of everything; Top is a supertype of everything.
// Class subtyping follows the symbol table's ancestry (sub's class equals
// sup's class or derives from it through superclass/mixin links).
func IsSubtype(tbl *symbols.Table, sub, sup symbols.Type) bool {
	sub, sup = resolveAlias(tbl, sub), resolveAlias(tbl, sup)

	if IsUntyped(sub) || IsUntyped(sup) {
		return true
	}
	if _, ok := sub.(bottomType); ok {
		return true
	}
	if _, ok := sup.(topType); ok {
		return true
	}

	switch supv := sup.(type) {
	case *Nilable:
		if _, ok := sub.(*Nilable); ok {
			subN := sub.(*Nilable)
			return IsSubtype(tbl, subN.Inner, supv.Inner)
		}
		return IsSubtype(tbl, sub, supv.Inner)
	case *Union:
		for _, m := range supv.Members {
			if IsSubtype(tbl, sub, m) {
				return true
			}
		}
		return false
	case *Intersection:
		for _, m := range supv.Members {
			if !IsSubtype(tbl, sub, m) {
				return false
			}
		}
		return true
	}

	if subUnion, ok := sub.(*Union); ok {
		for _, m := range subUnion.Members {
			if !IsSubtype(tbl, m, sup) {
				return false
			}
		}
		return true
	}

	subClass, ok1 := sub.(*Class)
	supClass, ok2 := sup.(*Class)
	if ok1 && ok2 {
		if subClass.Ref == supClass.Ref {
			return true
		}
		return tbl.DerivesFrom(subClass.Ref, supClass.Ref)
	}

	return Equiv(tbl, sub, sup)
}

// SortedUnion builds a Union type with members deduped (by Equiv) and
// ordered deterministically by Repr, so repeated parses of `T.any(...)`
// produce identical types regardless of source order -- needed for the
// resolver's determinism property (spec §8, invariant 6).
func SortedUnion(tbl *symbols.Table, members []symbols.Type) symbols.Type {
	var out []symbols.Type
	for _, m := range members {
		dup := false
		for _, o := range out {
			if Equiv(tbl, m, o) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, m)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Repr() < out[j].Repr() })
	return &Union{Members: out}
}
