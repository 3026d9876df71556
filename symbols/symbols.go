// Package symbols implements the process-wide symbol table the resolver
// reads and mutates: an append-only arena of Symbol values indexed by the
// opaque Ref handle, plus the sentinel symbols every resolver pass depends
// on (Root, Todo, the Stub* family, Untyped, NoSymbol).
//
// The table is a plain Go value threaded explicitly through every
// operation -- there is no package-level global, per the "forbid implicit
// globals" design note.
package symbols

import (
	"strconv"

	"quillc/ast"
	"quillc/common"
)

// Ref is an opaque, stable handle into a Table's symbol arena. It survives
// the parallel-to-single-threaded handoff because it never points at Go
// memory directly -- resolvers pass Refs around and re-index into the
// Table, never raw pointers.
type Ref = common.Ref

// Type is implemented by every member of the resolved type algebra
// (types.Class, types.Untyped, types.Top, types.Bottom, types.Alias,
// types.Union, types.Intersection, ...). It is an alias of common.Type,
// re-exported here so that Symbol can carry a ResultType/ArgType field
// without importing package types.
type Type = common.Type

// Kind enumerates the families of symbol this table can hold.
type Kind int

const (
	KindClass Kind = iota
	KindModule
	KindMethod
	KindMethodOverload
	KindStaticField
	KindInstanceField
	KindTypeAlias
	KindTypeMember
	KindTypeArgument
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindModule:
		return "module"
	case KindMethod:
		return "method"
	case KindMethodOverload:
		return "method-overload"
	case KindStaticField:
		return "static-field"
	case KindInstanceField:
		return "instance-field"
	case KindTypeAlias:
		return "type-alias"
	case KindTypeMember:
		return "type-member"
	case KindTypeArgument:
		return "type-argument"
	default:
		return "unknown"
	}
}

// Param describes one parameter of a method symbol, after P5 elaboration.
type Param struct {
	Name     string
	Type     Type
	Loc      ast.Loc
	Optional bool
	Keyword  bool
	Rebind   Ref // Ref of a class whose singleton this param's self-type rebinds to; NoSymbol if none
}

// TypeArg is a type-member or type-argument's bound pair.
type TypeArg struct {
	Name  string
	Lower Type
	Upper Type
}

// SigFlags mirrors the fixed set of booleans a parsed sig stamps onto a
// method symbol (spec §4.3.2).
type SigFlags struct {
	Abstract              bool
	Implementation         bool
	Overridable            bool
	Override               bool
	Final                  bool
	Bind                   bool
	Generated              bool
	IncompatibleOverride   bool
	Overloaded             bool // true for every overload except the last
}

// Symbol is one entry in the table. Only the fields relevant to Kind are
// meaningful; the rest are zero.
type Symbol struct {
	Kind Kind
	Name string
	// Owner is the lexically enclosing class/module (NoSymbol for Root).
	Owner Ref
	Loc   ast.Loc

	// --- class/module payload ---
	SuperClass       Ref // classes only; Root.ref for BasicObject's ultimate parent
	Mixins           []Ref
	Sealed           bool
	SealedSubclasses []Ref
	ClassMethodsMod  Ref // module whose class-level methods includers gain (resolve.MixesInClassMethods); NoSymbol if unset, and no resolver pass or the namer sets it
	Members          map[string]Ref
	Singleton        map[string]Ref // class-level ("self.") methods and static state

	// --- method payload ---
	Args       []Param
	ResultType Type
	TypeArgs   []Ref // KindTypeArgument symbols owned by this method (generics)
	Flags      SigFlags
	AliasOf    Ref // set for alias_method targets; NoSymbol otherwise

	// --- field payload ---
	FieldType Type

	// --- type-alias / type-member payload ---
	ResultIsSet bool // true once ResultType has actually been assigned (vs. zero value)
	Lower       Type // type-member lower bound
	Upper       Type // type-member upper bound
}

// HasMember reports whether name is already registered directly on sym
// (does not walk ancestors).
func (s *Symbol) HasMember(name string) (Ref, bool) {
	r, ok := s.Members[name]
	return r, ok
}

// Table is the arena. The zero value is not usable; call NewTable.
type Table struct {
	arena []Symbol

	// Sentinels, constructed once by NewTable.
	Root           Ref
	Todo           Ref
	StubModule     Ref
	StubSuperClass Ref
	StubMixin      Ref
	Untyped        Ref
	NoSymbol       Ref
	BadAliasClass  Ref
	BadAliasMethod Ref
	BadAliasType   Ref

	freshCounter int
	overloads    *overloadFiles
}

// NewTable allocates a Table with every sentinel symbol pre-populated, as
// required by spec §3 ("Distinguished sentinel symbols ... must be
// constructed up-front").
func NewTable() *Table {
	t := &Table{}

	// NoSymbol occupies index 0 so the zero value of Ref naturally means
	// "nothing" for any Ref left unset.
	t.NoSymbol = t.alloc(Symbol{Kind: KindClass, Name: "<none>"})
	t.Root = t.alloc(Symbol{Kind: KindClass, Name: "Root", Owner: t.NoSymbol, Members: map[string]Ref{}})
	t.Todo = t.alloc(Symbol{Kind: KindClass, Name: "<todo>"})
	t.StubModule = t.alloc(Symbol{Kind: KindModule, Name: "<stub-module>", Owner: t.Root, Members: map[string]Ref{}})
	t.StubSuperClass = t.alloc(Symbol{Kind: KindClass, Name: "<stub-superclass>", Owner: t.Root, Members: map[string]Ref{}})
	t.StubMixin = t.alloc(Symbol{Kind: KindModule, Name: "<stub-mixin>", Owner: t.Root, Members: map[string]Ref{}})
	t.Untyped = t.alloc(Symbol{Kind: KindClass, Name: "<untyped>", Owner: t.Root, Members: map[string]Ref{}})
	t.BadAliasClass = t.alloc(Symbol{Kind: KindClass, Name: "<bad-class-alias>", Owner: t.Root})
	t.BadAliasMethod = t.alloc(Symbol{Kind: KindMethod, Name: "<bad-method-alias>", Owner: t.Root})
	t.BadAliasType = t.alloc(Symbol{Kind: KindTypeAlias, Name: "<bad-type-alias>", Owner: t.Root})

	// Root is its own ultimate ancestor; BasicObject (entered by the namer
	// like any other class) gets SuperClass == Todo until P1 or the
	// terminal stub decides otherwise.
	t.Sym(t.Root).SuperClass = t.Root

	return t
}

func (t *Table) alloc(s Symbol) Ref {
	t.arena = append(t.arena, s)
	return Ref(len(t.arena) - 1)
}

// Len reports the number of symbols allocated so far, letting callers
// enumerate the whole arena by Ref without exposing it directly.
func (t *Table) Len() int {
	return len(t.arena)
}

// Sym dereferences a Ref. Panics on an out-of-range Ref, which would
// indicate a bug in the resolver (a stale handle from a prior run, say),
// not a user-facing condition.
func (t *Table) Sym(r Ref) *Symbol {
	return &t.arena[r]
}

// Enter allocates a brand-new symbol and returns its Ref. The resolver
// itself never creates class or module symbols (those come from the
// namer); Enter is used for methods, fields, type members/arguments, and
// method overloads, all of which the resolver is responsible for minting.
func (t *Table) Enter(s Symbol) Ref {
	if s.Members == nil && (s.Kind == KindClass || s.Kind == KindModule) {
		s.Members = map[string]Ref{}
	}
	return t.alloc(s)
}

// FreshNameUnique synthesizes a unique name by appending `$` and a
// table-wide counter to base, e.g. `foo$overload$3`.
func (t *Table) FreshNameUnique(base string) string {
	t.freshCounter++
	return base + "$" + strconv.Itoa(t.freshCounter)
}
