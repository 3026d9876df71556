package resolve

import (
	"quillc/ast"
	"quillc/diagnostics"
	"quillc/symbols"
	"quillc/types"
	"quillc/typesyntax"
)

// ElaborateSignatures is P5 (spec §4.3): walks every statement list,
// matching each run of consecutive `sig { ... }` sends onto the MethodDef
// that follows it, stamping the parsed signature onto the method's symbol,
// rewriting `T.let`/`T.cast`/`T.assertType` call sites into Cast nodes
// everywhere else in the tree, and flagging `T.reveal_type` calls.
func ElaborateSignatures(ctx *Context, trees []*ast.Root) {
	for _, root := range trees {
		elaborateStats(ctx, ctx.Tbl.Root, root.Stats, root.File)
	}
}

func elaborateStats(ctx *Context, owner symbols.Ref, stats []ast.Node, file *ast.File) {
	var pending []*typesyntax.ParsedSig
	var pendingLocs []ast.Loc

	// flushDangling reports a run of sig sends that never reached a
	// MethodDef (spec §4.3.1, §8 Scenario 5) before dropping it.
	flushDangling := func() {
		if len(pending) > 0 {
			if b := ctx.Diag.BeginError(pendingLocs[len(pendingLocs)-1], diagnostics.InvalidMethodSignature); b != nil {
				b.SetHeader("`sig` has no method def following it").Emit()
			}
		}
		pending = nil
		pendingLocs = nil
	}

	for _, stat := range stats {
		switch v := stat.(type) {
		case *ast.ClassDef:
			elaborateStats(ctx, v.Symbol, v.RHS, file)
			flushDangling()

		case *ast.Send:
			if ctx.Syntax.IsSig(v) {
				if ps, ok := ctx.Syntax.ParseSig(ctx.Tbl, v); ok {
					pending = append(pending, ps)
					pendingLocs = append(pendingLocs, v.Location())
				}
				continue
			}
			if v.Fun == "alias_method" {
				elaborateAliasMethod(ctx, owner, v)
			} else {
				elaborateExpr(ctx, v)
			}
			flushDangling()

		case *ast.MethodDef:
			elaborateMethod(ctx, owner, pending, v, file)
			v.RHS = elaborateExpr(ctx, v.RHS)
			pending = nil
			pendingLocs = nil

		case *ast.Assign:
			elaborateAssign(ctx, owner, v, file)
			flushDangling()

		default:
			flushDangling()
		}
	}
	flushDangling()
}

// elaborateMethod stamps pending (zero or more sigs immediately preceding
// def) onto def's symbol. With more than one pending sig, every sig but
// the last becomes a separate overload symbol (spec §4.3.1); the last is
// the method's primary signature.
func elaborateMethod(ctx *Context, owner symbols.Ref, pending []*typesyntax.ParsedSig, def *ast.MethodDef, file *ast.File) {
	if len(pending) > 0 && file != nil && file.Strictness == ast.Ignore {
		if b := ctx.Diag.BeginError(def.Location(), diagnostics.SigInFileWithoutSigil); b != nil {
			b.SetHeader("`sig` has no effect in a file without a strictness sigil").Emit()
		}
	}

	if len(pending) > 1 && !ctx.Tbl.PermitOverloadDefinitions(file) {
		if b := ctx.Diag.BeginError(def.Location(), diagnostics.OverloadNotAllowed); b != nil {
			b.SetHeader("Overloaded signatures for `%s` are not permitted in this project", def.Name).Emit()
		}
	}

	if len(pending) == 0 {
		checkParamOrdering(ctx, def)
		elaborateDefaultArgs(def, nil, false)
		return
	}

	primaryName := ctx.Tbl.Sym(def.Symbol).Name
	for _, ps := range pending[:len(pending)-1] {
		mangled := ctx.Tbl.FreshNameUnique(primaryName + "$overload")
		overloadRef := ctx.Tbl.EnterMethodOverload(owner, mangled, def.Location())
		stampSig(ctx, overloadRef, ps, def, true)
	}
	stampSig(ctx, def.Symbol, pending[len(pending)-1], def, false)

	checkParamOrdering(ctx, def)
	primarySym := ctx.Tbl.Sym(def.Symbol)
	elaborateDefaultArgs(def, primarySym.Args, primarySym.Flags.Abstract)
}

func stampSig(ctx *Context, sym symbols.Ref, ps *typesyntax.ParsedSig, def *ast.MethodDef, overloaded bool) {
	s := ctx.Tbl.Sym(sym)
	s.Flags = symbols.SigFlags{
		Abstract:             ps.Seen.Abstract,
		Implementation:       ps.Seen.Implementation,
		Overridable:          ps.Seen.Overridable,
		Override:             ps.Seen.Override,
		Final:                ps.Seen.Final,
		Bind:                 ps.Seen.Bind,
		Generated:            ps.Seen.Generated,
		IncompatibleOverride: ps.Seen.IncompatibleOverride,
		Overloaded:           overloaded,
	}

	switch {
	case ps.Seen.Void && ps.Seen.Returns:
		if b := ctx.Diag.BeginError(def.Location(), diagnostics.InvalidMethodSignature); b != nil {
			b.SetHeader("`sig` for `%s` declares both `void` and `returns`", def.Name).Emit()
		}
		s.ResultType = types.Untyped()
	case ps.Seen.Void:
		s.ResultType = types.Untyped()
	case ps.Seen.Returns:
		s.ResultType = ps.Returns
	default:
		if b := ctx.Diag.BeginError(def.Location(), diagnostics.InvalidMethodSignature); b != nil {
			b.SetHeader("`sig` for `%s` has no declared return type", def.Name).Emit()
		}
		s.ResultType = types.Untyped()
	}

	for _, ta := range ps.TypeArgs {
		ctx.Tbl.EnterTypeArgument(sym, ta.Name, ta.Loc)
	}
	// EnterTypeArgument may have grown the arena; re-index rather than
	// keep writing through the old pointer.
	s = ctx.Tbl.Sym(sym)

	s.Args = alignParams(ctx, def.Args, ps.ArgTypes, def.Name)

	if overloaded {
		for _, p := range s.Args {
			if p.Keyword {
				if b := ctx.Diag.BeginError(def.Location(), diagnostics.InvalidMethodSignature); b != nil {
					b.SetHeader("Overloaded method `%s` may not have keyword arguments", def.Name).Emit()
				}
				break
			}
		}
	}

	if ps.Seen.Abstract && !isEmptyBody(def.RHS) {
		if b := ctx.Diag.BeginError(def.Location(), diagnostics.AbstractMethodWithBody); b != nil {
			b.SetHeader("Abstract method `%s` may not have a body", def.Name).Emit()
		}
	}
}

// alignParams matches def's raw argument list against the sig's per-name
// parameter types, in declaration order -- a sig naming a parameter the
// def doesn't have, or omitting one the def does have, is
// InvalidMethodSignature (spec §4.3.1).
func alignParams(ctx *Context, defArgs []ast.Node, argTypes []typesyntax.ArgType, methodName string) []symbols.Param {
	byName := make(map[string]typesyntax.ArgType, len(argTypes))
	for _, at := range argTypes {
		byName[at.Name] = at
	}

	out := make([]symbols.Param, 0, len(defArgs))
	seen := make(map[string]bool, len(defArgs))
	for _, a := range defArgs {
		name, optional, keyword, loc := paramNameAndLoc(a)
		seen[name] = true

		at, found := byName[name]
		if !found {
			if b := ctx.Diag.BeginError(loc, diagnostics.InvalidMethodSignature); b != nil {
				b.SetHeader("`sig` for `%s` is missing parameter `%s`", methodName, name).Emit()
			}
			out = append(out, symbols.Param{Name: name, Type: types.Untyped(), Loc: loc, Optional: optional, Keyword: keyword})
			continue
		}
		out = append(out, symbols.Param{Name: name, Type: at.Type, Loc: at.Loc, Optional: optional, Keyword: keyword, Rebind: at.Rebind})
	}

	for name := range byName {
		if !seen[name] {
			if b := ctx.Diag.BeginError(defArgsLoc(defArgs), diagnostics.InvalidMethodSignature); b != nil {
				b.SetHeader("`sig` for `%s` names parameter `%s`, which the method does not declare", methodName, name).Emit()
			}
		}
	}

	return out
}

func defArgsLoc(defArgs []ast.Node) ast.Loc {
	if len(defArgs) == 0 {
		return ast.Loc{}
	}
	return defArgs[0].Location()
}

func paramNameAndLoc(n ast.Node) (name string, optional, keyword bool, loc ast.Loc) {
	switch v := n.(type) {
	case *ast.OptionalArg:
		return v.Name, true, v.Keyword, v.Location()
	case *ast.Local:
		return v.Name, false, v.Keyword, v.Location()
	default:
		return "", false, false, n.Location()
	}
}

// elaborateDefaultArgs implements spec §4.3.3: for each OptionalArg of a
// non-abstract method, synthesize `Cast(:let, argType, default_expr)` and
// prepend it to the method body, so the later type-inferencer checks the
// default against the declared type without the resolver itself
// type-checking anything.
func elaborateDefaultArgs(def *ast.MethodDef, args []symbols.Param, abstract bool) {
	if abstract {
		return
	}

	byName := make(map[string]symbols.Param, len(args))
	for _, p := range args {
		byName[p.Name] = p
	}

	var casts []ast.Node
	for _, a := range def.Args {
		opt, ok := a.(*ast.OptionalArg)
		if !ok || opt.Default == nil {
			continue
		}
		typ := types.Untyped()
		if p, found := byName[opt.Name]; found {
			typ = p.Type
		}
		casts = append(casts, ast.NewCast(opt.Location(), ast.CastLet, ast.TypeExpr{Node: ast.NewTypeLit(opt.Location(), typ)}, opt.Default))
	}
	if len(casts) == 0 {
		return
	}

	if seq, isSeq := def.RHS.(*ast.InsSeq); isSeq {
		seq.Stats = append(casts, seq.Stats...)
		return
	}
	def.RHS = ast.NewInsSeq(def.Location(), casts, def.RHS)
}

// checkParamOrdering requires every required parameter to precede every
// optional one (spec §4.3.1, BadParameterOrdering).
func checkParamOrdering(ctx *Context, def *ast.MethodDef) {
	seenOptional := false
	for _, a := range def.Args {
		if _, isOptional := a.(*ast.OptionalArg); isOptional {
			seenOptional = true
			continue
		}
		if seenOptional {
			if b := ctx.Diag.BeginError(a.Location(), diagnostics.BadParameterOrdering); b != nil {
				b.SetHeader("Required parameter follows an optional parameter in `%s`", def.Name).Emit()
			}
			return
		}
	}
}

func isEmptyBody(n ast.Node) bool {
	switch n.(type) {
	case nil, *ast.EmptyTree:
		return true
	default:
		return false
	}
}

// elaborateAssign recognizes `@foo = T.let(value, Type)` / `@@foo = T.let(
// value, Type)` as an instance or static field declaration (spec §4.3.3);
// everything else just gets its RHS rewritten for nested T.let/T.cast use.
func elaborateAssign(ctx *Context, owner symbols.Ref, v *ast.Assign, file *ast.File) {
	ident, isIdent := v.LHS.(*ast.UnresolvedIdent)
	send, isLet := v.RHS.(*ast.Send)

	if !isIdent || !isLet || send.Fun != "let" || len(send.Args) != 2 {
		v.RHS = elaborateExpr(ctx, v.RHS)
		return
	}

	typ, _ := ctx.Syntax.ParseType(ctx.Tbl, send.Args[1], typesyntax.ParseOpts{AllowSelfType: true, Context: owner})

	switch ident.Kind {
	case ast.IdentInstance:
		declareField(ctx, owner, ident, typ, ctx.Tbl.EnterFieldSymbol)
	case ast.IdentClass:
		declareField(ctx, owner, ident, typ, ctx.Tbl.EnterStaticFieldSymbol)
	}

	send.Args[0] = elaborateExpr(ctx, send.Args[0])
	v.RHS = ast.NewCast(send.Location(), ast.CastLet, ast.TypeExpr{Node: send.Args[1]}, send.Args[0])
}

func declareField(ctx *Context, owner symbols.Ref, ident *ast.UnresolvedIdent, typ symbols.Type, enter func(symbols.Ref, string, ast.Loc, symbols.Type) symbols.Ref) {
	if _, exists := ctx.Tbl.FindMember(owner, ident.Name); exists {
		if b := ctx.Diag.BeginError(ident.Location(), diagnostics.DuplicateVariableDeclaration); b != nil {
			b.SetHeader("`%s` is already declared", ident.Name).Emit()
		}
		return
	}
	enter(owner, ident.Name, ident.Location(), typ)
}

// elaborateAliasMethod implements `alias_method :new, :old`. Three distinct
// failure shapes all report BadAliasMethod: aliasing a name that isn't
// defined at all, aliasing a name that resolves to something other than a
// method (a field or constant sharing the name), and aliasing onto a name
// that already names a method of owner (the existing method is kept).
func elaborateAliasMethod(ctx *Context, owner symbols.Ref, send *ast.Send) {
	if len(send.Args) != 2 {
		return
	}
	newName, ok1 := literalSymbolName(send.Args[0])
	oldName, ok2 := literalSymbolName(send.Args[1])
	if !ok1 || !ok2 {
		return
	}

	oldRef, found := ctx.Tbl.FindMemberTransitive(owner, oldName)
	if !found {
		if b := ctx.Diag.BeginError(send.Location(), diagnostics.BadAliasMethod); b != nil {
			b.SetHeader("Cannot alias `%s`: `%s` is not defined", newName, oldName).Emit()
		}
		return
	}
	if ctx.Tbl.Sym(oldRef).Kind != symbols.KindMethod {
		if b := ctx.Diag.BeginError(send.Location(), diagnostics.BadAliasMethod); b != nil {
			b.SetHeader("Cannot alias `%s`: `%s` is not a method", newName, oldName).Emit()
		}
		return
	}

	if existing, exists := ctx.Tbl.FindMember(owner, newName); exists && ctx.Tbl.Sym(existing).Kind == symbols.KindMethod {
		if b := ctx.Diag.BeginError(send.Location(), diagnostics.BadAliasMethod); b != nil {
			b.SetHeader("Cannot alias `%s` as `%s`: a method named `%s` is already defined", oldName, newName, newName).Emit()
		}
		return
	}

	newRef := ctx.Tbl.EnterMethodSymbol(owner, newName, send.Location())
	ctx.Tbl.Sym(newRef).AliasOf = oldRef
}

func literalSymbolName(n ast.Node) (string, bool) {
	if lit, ok := n.(*ast.Literal); ok && lit.Kind == "symbol" {
		return lit.Value, true
	}
	return "", false
}

// elaborateExpr rewrites `T.let`/`T.cast`/`T.assertType` call sites into
// Cast nodes and flags `T.reveal_type` calls, recursing through every
// expression-bearing child. The resolver does not itself infer an
// expression's type -- RevealTypeInUntypedFile only confirms the call site
// was reached, it does not report a type, since full inference is out of
// scope here.
func elaborateExpr(ctx *Context, n ast.Node) ast.Node {
	switch v := n.(type) {
	case nil, *ast.EmptyTree, *ast.Literal, *ast.Local, *ast.UnresolvedIdent, *ast.ConstantLit:
		return n

	case *ast.Send:
		if kind, isCast := castKindFor(v.Fun); isCast && len(v.Args) == 2 {
			value := elaborateExpr(ctx, v.Args[0])
			return ast.NewCast(v.Location(), kind, ast.TypeExpr{Node: v.Args[1]}, value)
		}
		if v.Fun == "reveal_type" && len(v.Args) == 1 {
			if b := ctx.Diag.BeginError(v.Location(), diagnostics.RevealTypeInUntypedFile); b != nil {
				b.SetHeader("`reveal_type` called in a `# typed: false` file").Emit()
			}
			v.Args[0] = elaborateExpr(ctx, v.Args[0])
			return v
		}
		v.Recv = elaborateExpr(ctx, v.Recv)
		for i := range v.Args {
			v.Args[i] = elaborateExpr(ctx, v.Args[i])
		}
		if v.Blk != nil {
			v.Blk.Body = elaborateExpr(ctx, v.Blk.Body)
		}
		return v

	case *ast.Cast:
		v.Arg = elaborateExpr(ctx, v.Arg)
		return v

	case *ast.InsSeq:
		for i := range v.Stats {
			v.Stats[i] = elaborateExpr(ctx, v.Stats[i])
		}
		v.Expr = elaborateExpr(ctx, v.Expr)
		return v

	case *ast.Hash:
		for i := range v.Keys {
			v.Keys[i] = elaborateExpr(ctx, v.Keys[i])
			v.Values[i] = elaborateExpr(ctx, v.Values[i])
		}
		return v

	case *ast.Assign:
		v.RHS = elaborateExpr(ctx, v.RHS)
		return v

	default:
		return n
	}
}

func castKindFor(fun string) (ast.CastKind, bool) {
	switch fun {
	case "let":
		return ast.CastLet, true
	case "cast":
		return ast.CastCast, true
	case "assertType":
		return ast.CastAssertType, true
	default:
		return 0, false
	}
}
