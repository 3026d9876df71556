// Package ast defines the forest of parsed trees the resolver consumes and
// produces. Nodes are represented as a tagged union: a narrow Node interface
// implemented by concrete struct types, inspected with ordinary Go type
// switches (the resolver never needs double-dispatch visitors).
package ast

import "quillc/common"

// Strictness is the sigil a source file declares, controlling which error
// classes the resolver is permitted to emit for constants and sends defined
// in that file.
type Strictness int

const (
	Ignore Strictness = iota
	False
	True
	Strict
	StrictStrong
)

func (s Strictness) String() string {
	switch s {
	case Ignore:
		return "ignore"
	case False:
		return "false"
	case True:
		return "true"
	case Strict:
		return "strict"
	case StrictStrong:
		return "strict-strong"
	default:
		return "unknown"
	}
}

// File is the source file a tree was parsed from. The resolver only reads
// Path (for diagnostics) and Strictness (to gate and order error reporting);
// it never loads file contents itself.
type File struct {
	Path       string
	Strictness Strictness
}

// Loc is a source span within a File. Zero-value Loc{} is used for
// synthesized nodes that have no real source position (e.g. the
// UnresolvedConstantLit nodes project.RewriteUnresolvedConstants builds).
type Loc struct {
	File           *File
	BeginLn, EndLn int
	BeginCol, EndCol int
}

// IsZero reports whether this location refers to synthesized code.
func (l Loc) IsZero() bool {
	return l.File == nil
}

// NameRef is an unresolved, bare name occurrence (the namer has not yet
// attached a symbol to it).
type NameRef struct {
	Name string
	Loc  Loc
}

// Node is implemented by every AST variant the resolver consumes or
// produces. It carries no behavior beyond identifying the concrete type;
// resolver code switches on the dynamic type rather than calling virtual
// methods, matching the "explicit match is equivalent" design note.
type Node interface {
	node()
	Location() Loc
}

type base struct {
	Loc Loc
}

func (base) node() {}

func (b base) Location() Loc { return b.Loc }

// EmptyTree stands in for an absent child (e.g. a class with no explicit
// superclass expression).
type EmptyTree struct{ base }

// Literal is a literal value (integer, string, bool, symbol, nil, ...). The
// resolver does not interpret the value beyond using Kind to recognize
// `T.let`-style casts.
type Literal struct {
	base
	Kind  string
	Value string
}

// Local is a reference to a local variable; opaque to the resolver except
// when it appears as the receiver of a dynamic constant scope. As a
// MethodDef argument, Keyword marks a required keyword parameter
// (`def foo(x:)`) rather than a required positional one.
type Local struct {
	base
	Name    string
	Keyword bool
}

// IdentKind distinguishes the four namespaces an UnresolvedIdent can name.
type IdentKind int

const (
	IdentInstance IdentKind = iota
	IdentClass
	IdentLocal
	IdentGlobal
)

// UnresolvedIdent is a bare identifier the namer could not classify beyond
// its syntactic namespace (`@foo`, `@@foo`, `foo`, `$foo`).
type UnresolvedIdent struct {
	base
	Kind IdentKind
	Name string
}

// UnresolvedConstantLit is a constant reference as produced by the namer:
// `scope::Name` where Scope may be EmptyTree for a bare reference. The
// resolver's P1 pass must eliminate every node of this type.
type UnresolvedConstantLit struct {
	base
	Scope Node
	Name  NameRef
}

// ConstantLit is the resolved replacement for an UnresolvedConstantLit. Symbol
// is symbols.NoSymbol until P1 assigns it (or a stub on failure).
// Original is kept for error messages and round-tripping.
type ConstantLit struct {
	base
	Original        *UnresolvedConstantLit
	Symbol          common.Ref
	ResolutionScope common.Ref // owner scope used for "did you mean" context; may be symbols.NoSymbol
}

// ClassDef introduces a class or module. Ancestors holds the instance-side
// ancestor expressions (first entry is the superclass for a class; all
// entries are mixins for a module). SingletonAncestors holds ancestors
// declared on the singleton (class-side) -- these are always mixins.
type ClassDef struct {
	base
	Symbol             common.Ref
	Name               string // bare name as parsed; only the namer reads this, the resolver uses Symbol
	IsModule           bool
	Ancestors          []Node
	SingletonAncestors []Node
	RHS                []Node
}

// MethodDefFlags bundles the small set of booleans a MethodDef carries that
// are syntactic (not sig-derived).
type MethodDefFlags struct {
	SelfMethod      bool // defined on the singleton class
	DSLSynthesized  bool // produced by a macro/DSL, not literal source
}

// MethodDef introduces a method. Args holds the raw (un-elaborated)
// parameter list; P5 fills in each parameter's type from a preceding sig.
type MethodDef struct {
	base
	Symbol common.Ref
	Name   string
	Args   []Node
	RHS    Node
	Flags  MethodDefFlags
}

// OptionalArg wraps a MethodDef argument that has a default value. Keyword
// marks an optional keyword parameter (`def foo(x: 1)`) rather than a
// positional one with a default.
type OptionalArg struct {
	base
	Name    string
	Default Node
	Keyword bool
}

// Assign is `lhs = rhs`; used for class aliases, type aliases, type member
// declarations, and field declarations, distinguished by the shape of LHS
// and RHS (see resolve/constants_ancestors.go and resolve/signatures.go).
type Assign struct {
	base
	LHS Node
	RHS Node
}

// Send is a method call `recv.fun(args)`; recv is nil for an implicit-self
// call. Used to recognize `type_alias`, `type_member`, `sig`, `T.let`, etc.
type Send struct {
	base
	Recv Node
	Fun  string
	Args []Node
	Blk  *Block
}

// Block is a trailing `{ ... }` or `do ... end` block attached to a Send.
type Block struct {
	base
	Params []string
	Body   Node
}

// Cast represents `T.let`, `T.cast`, `T.assertType`, or an injected
// default-argument check after P5 rewrites the corresponding Send.
type Cast struct {
	base
	Kind CastKind
	Type TypeExpr
	Arg  Node
}

// CastKind enumerates the recognized T.* call forms.
type CastKind int

const (
	CastLet CastKind = iota
	CastCast
	CastAssertType
)

// TypeExpr is the still-syntactic type expression embedded in a sig, cast,
// or alias RHS; it is handed to the type-syntax sub-parser, never
// interpreted directly by the resolver's constant/ancestor pass. A Cast P5
// injects itself (the default-argument check) has no syntax to quote, so
// its TypeExpr wraps a TypeLit instead.
type TypeExpr struct {
	Node Node
}

// TypeLit wraps a common.Type P5 already resolved -- used for a Cast's
// Type slot when the resolver itself computed the type, rather than
// quoting a syntactic expression for the sub-parser to interpret later.
type TypeLit struct {
	base
	Type common.Type
}

// InsSeq sequences statements before a final expression; used both for
// ordinary begin/end bodies and for the default-argument casts P5 prepends
// to a method body. P5 rewrites a `T.let`/`T.cast` call into a bare Cast
// (whose TypeExpr keeps the type expression), not into an InsSeq.
type InsSeq struct {
	base
	Stats []Node
	Expr  Node
}

// Hash is a literal hash/map expression, used for sig option hashes
// (`{fixed: T}`, `{lower: T, upper: T}`).
type Hash struct {
	base
	Keys   []Node
	Values []Node
}

// Root wraps every top-level definition in one source file.
type Root struct {
	base
	File  *File
	Stats []Node
}

func NewLoc(f *File, beginLn, beginCol, endLn, endCol int) Loc {
	return Loc{File: f, BeginLn: beginLn, BeginCol: beginCol, EndLn: endLn, EndCol: endCol}
}

// NewConstantLit builds the resolved replacement for original, at original's
// location. The resolver (package resolve) cannot construct a ConstantLit
// directly since the embedded base field is unexported; this is the one
// door in.
func NewConstantLit(original *UnresolvedConstantLit, symbol, resolutionScope common.Ref) *ConstantLit {
	return &ConstantLit{
		base:            base{Loc: original.Loc},
		Original:        original,
		Symbol:          symbol,
		ResolutionScope: resolutionScope,
	}
}

// NewCast builds an injected Cast node (used by P5 default-argument checks
// and T.let rewriting), at loc.
func NewCast(loc Loc, kind CastKind, typ TypeExpr, arg Node) *Cast {
	return &Cast{base: base{Loc: loc}, Kind: kind, Type: typ, Arg: arg}
}

// NewInsSeq builds an injected InsSeq node at loc.
func NewInsSeq(loc Loc, stats []Node, expr Node) *InsSeq {
	return &InsSeq{base: base{Loc: loc}, Stats: stats, Expr: expr}
}

// NewTypeLit builds an injected already-resolved type node (used by P5's
// default-argument casts), at loc.
func NewTypeLit(loc Loc, typ common.Type) *TypeLit {
	return &TypeLit{base: base{Loc: loc}, Type: typ}
}
