// Package typesyntax is the resolver's sub-parser for type expressions: it
// turns the still-syntactic AST fragments embedded in `sig { ... }` blocks,
// `T.let`/`T.cast` calls, type aliases, and type-member bound hashes into
// symbols.Type values and ParsedSig structures.
//
// Spec §1 treats this sub-parser as an external collaborator the resolver
// merely calls through an interface; because nothing upstream in this
// exercise actually provides one, this package gives that interface a
// real, deliberately small implementation -- just enough grammar for the
// constructs spec §4.3 names.
package typesyntax

import (
	"quillc/ast"
	"quillc/symbols"
	"quillc/types"
)

// ParseOpts mirrors the flag set the original resolver passes down into
// its type-syntax calls (spec §4.1.8, §4.3.1).
type ParseOpts struct {
	AllowSelfType   bool
	AllowRebind     bool
	AllowTypeMember bool
	Context         symbols.Ref // lhs symbol, for self-referential aliases
}

// SeenFlags records which sig-builder calls appeared in one `sig { ... }`
// chain (spec §4.3.2).
type SeenFlags struct {
	Returns              bool
	Void                 bool
	Abstract             bool
	Implementation       bool
	IncompatibleOverride bool
	Generated            bool
	Overridable          bool
	Override             bool
	Final                bool
	Bind                 bool
	Params               map[string]bool
}

// ArgType is one parameter's parsed type, matched back onto a MethodDef
// argument by name in resolve/signatures.go.
type ArgType struct {
	Name   string
	Type   symbols.Type
	Loc    ast.Loc
	Rebind symbols.Ref
}

// TypeArgDecl is one `type_parameters(:U)`-declared generic variable.
type TypeArgDecl struct {
	Name string
	Loc  ast.Loc
}

// ParsedSig is the result of parsing one `sig { ... }` block.
type ParsedSig struct {
	Returns  symbols.Type
	ArgTypes []ArgType
	TypeArgs []TypeArgDecl
	Seen     SeenFlags
	Bind     symbols.Type
}

// Parser is the interface the resolver consumes (spec §6).
type Parser interface {
	IsSig(send *ast.Send) bool
	ParseSig(tbl *symbols.Table, send *ast.Send) (*ParsedSig, bool)
	ParseType(tbl *symbols.Table, expr ast.Node, opts ParseOpts) (symbols.Type, bool)
}

// Default is the resolver's concrete sub-parser (DOMAIN-2 of SPEC_FULL.md).
type Default struct{}

func New() *Default { return &Default{} }

// IsSig recognizes the `sig { ... }` call shape: a receiverless Send named
// "sig" carrying a block (its argument list is not inspected).
func (Default) IsSig(send *ast.Send) bool {
	return send != nil && send.Fun == "sig" && send.Recv == nil && send.Blk != nil
}

// ParseSig walks the chained builder calls inside a sig block
// (`abstract.params(x: Integer).returns(NilClass)`) from innermost to
// outermost and accumulates the flags, parameter types, return type, and
// type-parameter declarations they describe.
func (d Default) ParseSig(tbl *symbols.Table, send *ast.Send) (*ParsedSig, bool) {
	if !d.IsSig(send) || send.Blk == nil {
		return nil, false
	}

	chain := flattenChain(bodyRootSend(send.Blk.Body))

	sig := &ParsedSig{Seen: SeenFlags{Params: map[string]bool{}}}
	ok := true
	for _, call := range chain {
		switch call.Fun {
		case "abstract":
			sig.Seen.Abstract = true
		case "implementation":
			sig.Seen.Implementation = true
		case "overridable":
			sig.Seen.Overridable = true
		case "override":
			sig.Seen.Override = true
			for _, a := range call.Args {
				if lit, isLit := a.(*ast.Literal); isLit && lit.Kind == "symbol" && lit.Value == "allow_incompatible" {
					sig.Seen.IncompatibleOverride = true
				}
			}
		case "final":
			sig.Seen.Final = true
		case "generated":
			sig.Seen.Generated = true
		case "bind":
			sig.Seen.Bind = true
			if len(call.Args) == 1 {
				if t, parsed := d.ParseType(tbl, call.Args[0], ParseOpts{AllowSelfType: true}); parsed {
					sig.Bind = t
				}
			}
		case "type_parameters":
			for _, a := range call.Args {
				if lit, isLit := a.(*ast.Literal); isLit && lit.Kind == "symbol" {
					sig.TypeArgs = append(sig.TypeArgs, TypeArgDecl{Name: lit.Value, Loc: a.Location()})
				}
			}
		case "params":
			if len(call.Args) == 1 {
				if h, isHash := call.Args[0].(*ast.Hash); isHash {
					for i, key := range h.Keys {
						name, isName := keyName(key)
						if !isName {
							ok = false
							continue
						}
						sig.Seen.Params[name] = true
						t, parsed := d.ParseType(tbl, h.Values[i], ParseOpts{AllowSelfType: true, AllowTypeMember: true})
						if !parsed {
							ok = false
							continue
						}
						rebind := tbl.NoSymbol
						sig.ArgTypes = append(sig.ArgTypes, ArgType{Name: name, Type: t, Loc: h.Values[i].Location(), Rebind: rebind})
					}
				}
			}
		case "returns":
			sig.Seen.Returns = true
			if len(call.Args) == 1 {
				if t, parsed := d.ParseType(tbl, call.Args[0], ParseOpts{AllowSelfType: true, AllowTypeMember: true}); parsed {
					sig.Returns = t
				} else {
					ok = false
				}
			}
		case "void":
			sig.Seen.Void = true
		}
	}

	return sig, ok
}

// ParseType parses a single type expression. It recognizes: a resolved
// class constant (nominal type), `T.nilable`, `T.any`, `T.all`,
// `T.untyped`, `T.noreturn`, `T.self_type`, `T.class_of`, `T.proc.params(
// ...).returns(...)`, and `Klass[T1, T2]` generic instantiation.
func (d Default) ParseType(tbl *symbols.Table, expr ast.Node, opts ParseOpts) (symbols.Type, bool) {
	switch n := expr.(type) {
	case *ast.ConstantLit:
		if n.Symbol == tbl.NoSymbol {
			return types.Untyped(), false
		}
		sym := tbl.Sym(n.Symbol)
		return &types.Class{Ref: n.Symbol, Name: sym.Name}, true

	case *ast.Send:
		return d.parseSendType(tbl, n, opts)

	case *ast.EmptyTree:
		return types.Untyped(), false

	default:
		return types.Untyped(), false
	}
}

func (d Default) parseSendType(tbl *symbols.Table, send *ast.Send, opts ParseOpts) (symbols.Type, bool) {
	switch send.Fun {
	case "nilable":
		if len(send.Args) != 1 {
			return types.Untyped(), false
		}
		inner, ok := d.ParseType(tbl, send.Args[0], opts)
		return &types.Nilable{Inner: inner}, ok

	case "any":
		members, ok := d.parseTypeList(tbl, send.Args, opts)
		return types.SortedUnion(tbl, members), ok

	case "all":
		members, ok := d.parseTypeList(tbl, send.Args, opts)
		return &types.Intersection{Members: members}, ok

	case "untyped":
		return types.Untyped(), true

	case "noreturn":
		return types.Bottom(), true

	case "self_type":
		if !opts.AllowSelfType {
			return types.Untyped(), false
		}
		return &types.Class{Ref: opts.Context, Name: tbl.Sym(opts.Context).Name}, true

	case "class_of":
		if len(send.Args) != 1 {
			return types.Untyped(), false
		}
		return d.ParseType(tbl, send.Args[0], opts)

	case "proc":
		return d.parseProcType(tbl, send, opts)

	case "[]":
		base, ok := d.ParseType(tbl, send.Recv, opts)
		cls, isClass := base.(*types.Class)
		if !isClass {
			return types.Untyped(), false
		}
		args, argsOK := d.parseTypeList(tbl, send.Args, opts)
		return &types.Class{Ref: cls.Ref, Name: cls.Name, TypeArgs: args}, ok && argsOK

	default:
		return types.Untyped(), false
	}
}

func (d Default) parseTypeList(tbl *symbols.Table, nodes []ast.Node, opts ParseOpts) ([]symbols.Type, bool) {
	out := make([]symbols.Type, 0, len(nodes))
	ok := true
	for _, n := range nodes {
		t, parsed := d.ParseType(tbl, n, opts)
		if !parsed {
			ok = false
		}
		out = append(out, t)
	}
	return out, ok
}

func (d Default) parseProcType(tbl *symbols.Table, send *ast.Send, opts ParseOpts) (symbols.Type, bool) {
	proc := &types.Proc{Returns: types.Untyped()}
	ok := true
	chain := flattenChain(send)
	for _, call := range chain {
		switch call.Fun {
		case "params":
			if len(call.Args) == 1 {
				if h, isHash := call.Args[0].(*ast.Hash); isHash {
					for _, v := range h.Values {
						t, parsed := d.ParseType(tbl, v, opts)
						if !parsed {
							ok = false
						}
						proc.Params = append(proc.Params, t)
					}
				}
			}
		case "returns":
			if len(call.Args) == 1 {
				t, parsed := d.ParseType(tbl, call.Args[0], opts)
				proc.Returns = t
				ok = ok && parsed
			}
		case "void":
			proc.Returns = types.Untyped()
		}
	}
	return proc, ok
}

// flattenChain walks a Send's Recv links (innermost/self call is at the
// deepest Recv) and returns the calls in the order they were chained:
// innermost (first-written) first, outermost last (i.e. syntactic
// left-to-right order).
func flattenChain(send *ast.Send) []*ast.Send {
	var rev []*ast.Send
	for s := send; s != nil; {
		rev = append(rev, s)
		inner, isSend := s.Recv.(*ast.Send)
		if !isSend {
			break
		}
		s = inner
	}
	out := make([]*ast.Send, len(rev))
	for i, s := range rev {
		out[len(rev)-1-i] = s
	}
	return out
}

// bodyRootSend extracts the outermost Send of a sig block's body, skipping
// a wrapping InsSeq if the block has multiple statements.
func bodyRootSend(body ast.Node) *ast.Send {
	switch n := body.(type) {
	case *ast.Send:
		return n
	case *ast.InsSeq:
		return bodyRootSend(n.Expr)
	default:
		return nil
	}
}

func keyName(n ast.Node) (string, bool) {
	if lit, ok := n.(*ast.Literal); ok && lit.Kind == "symbol" {
		return lit.Value, true
	}
	return "", false
}
