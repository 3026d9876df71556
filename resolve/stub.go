package resolve

import (
	"sort"
	"strings"

	"quillc/ast"
	"quillc/diagnostics"
	"quillc/symbols"
	"quillc/types"
)

// runTerminalStubbing is P1's last phase (spec §4.1.6): every job still
// stuck after the fixed-point loop gets a diagnostic and a stub symbol so
// later passes never see an unresolved constant. Remaining jobs are
// reported strict-files-first (diagnostics.StrictLevelLess) rather than in
// arbitrary discovery order, so a run's error output is deterministic
// regardless of how P1's workers interleaved.
func runTerminalStubbing(ctx *Context, tdo todoLists) {
	sort.SliceStable(tdo.constants, func(i, j int) bool {
		return diagnostics.StrictLevelLess(tdo.constants[i].Out.Original.Loc, tdo.constants[j].Out.Original.Loc)
	})
	for _, job := range tdo.constants {
		stubConstant(ctx, job)
	}

	sort.SliceStable(tdo.ancestors, func(i, j int) bool {
		return diagnostics.StrictLevelLess(tdo.ancestors[i].Ancestor.Loc, tdo.ancestors[j].Ancestor.Loc)
	})
	for _, job := range tdo.ancestors {
		resolveAncestorJob(ctx, job, true)
	}

	// Every constant is now non-NoSymbol (real or stubbed), so class- and
	// type-alias jobs that were only pending on their RHS constant should
	// go through cleanly here.
	tdo.classAliases = retryClassAliases(ctx, tdo.classAliases)
	tdo.typeAliases = retryTypeAliases(ctx, tdo.typeAliases)

	for _, job := range tdo.classAliases {
		forceUntyped(ctx, job.Lhs)
	}
	reportRecursiveTypeAliases(ctx, tdo.typeAliases)
}

// reportRecursiveTypeAliases handles whatever is left in tdo.typeAliases
// after the fixed point and the last retryTypeAliases call above: since
// every constant and ancestor is already resolved (or stubbed) by this
// point, the only way a type-alias job can still be stuck is a cycle
// running entirely through other still-pending type aliases (spec §4.1.8,
// §8 Scenario 3). Each connected cycle gets exactly one RecursiveTypeAlias
// diagnostic, not one per participating alias.
func reportRecursiveTypeAliases(ctx *Context, jobs []TypeAliasResolutionItem) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return diagnostics.StrictLevelLess(ctx.Tbl.Sym(jobs[i].Lhs).Loc, ctx.Tbl.Sym(jobs[j].Lhs).Loc)
	})

	byLhs := make(map[symbols.Ref]TypeAliasResolutionItem, len(jobs))
	pending := make(map[symbols.Ref]bool, len(jobs))
	for _, j := range jobs {
		byLhs[j.Lhs] = j
		pending[j.Lhs] = true
	}

	adj := make(map[symbols.Ref][]symbols.Ref, len(jobs))
	for _, j := range jobs {
		refs := map[symbols.Ref]bool{}
		collectPendingRefs(j.Rhs, pending, refs)
		for ref := range refs {
			adj[j.Lhs] = append(adj[j.Lhs], ref)
			adj[ref] = append(adj[ref], j.Lhs)
		}
	}

	visited := make(map[symbols.Ref]bool, len(jobs))
	for _, j := range jobs {
		if visited[j.Lhs] {
			continue
		}

		var group []symbols.Ref
		stack := []symbols.Ref{j.Lhs}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[cur] {
				continue
			}
			visited[cur] = true
			group = append(group, cur)
			stack = append(stack, adj[cur]...)
		}

		sort.SliceStable(group, func(a, b int) bool {
			return diagnostics.StrictLevelLess(ctx.Tbl.Sym(group[a]).Loc, ctx.Tbl.Sym(group[b]).Loc)
		})

		head := byLhs[group[0]]
		if b := ctx.Diag.BeginError(head.Rhs.Location(), diagnostics.RecursiveTypeAlias); b != nil {
			names := make([]string, len(group))
			for i, ref := range group {
				names[i] = ctx.Tbl.Sym(ref).Name
			}
			b.SetHeader("Recursive type alias: %s", strings.Join(names, ", ")).Emit()
		}
		for _, ref := range group {
			forceUntyped(ctx, ref)
		}
	}
}

func forceUntyped(ctx *Context, sym symbols.Ref) {
	s := ctx.Tbl.Sym(sym)
	s.ResultType = types.Untyped()
	s.ResultIsSet = true
}

// stubConstant emits StubConstant and assigns the failed reference to
// StubModule. When the reference's scope is known to be a class, it
// suggests the closest direct member by name; "Subclasses" gets its own
// hint since it is commonly confused with the `subclasses` method rather
// than mistyped.
func stubConstant(ctx *Context, job ResolutionItem) {
	uc := job.Out.Original
	name := uc.Name.Name

	b := ctx.Diag.BeginError(uc.Loc, diagnostics.StubConstant)
	if b != nil {
		b.SetHeader("Unable to resolve constant `%s`", name)
		if name == "Subclasses" {
			b.AddErrorLine(uc.Loc, "`Subclasses` is not a constant; did you mean to call the `subclasses` method?")
		} else if scope, ok := fuzzyScope(ctx, job); ok {
			if suggestions := ctx.Tbl.FindMemberFuzzy(scope, name, 3); len(suggestions) > 0 {
				quoted := make([]string, len(suggestions))
				for i, s := range suggestions {
					quoted[i] = "`" + s + "`"
				}
				b.AddErrorLine(uc.Loc, "Did you mean %s?", strings.Join(quoted, ", "))
			}
		}
		b.Emit()
	}

	job.Out.Symbol = ctx.Tbl.StubModule
}

// fuzzyScope reports the class whose members should be searched for a
// "did you mean" suggestion: the explicit scope of a scoped reference
// (`Scope::Name`) if it resolved to a class, or the innermost lexical
// class for a bare reference. Modules are excluded since spec §4.1.6 only
// asks for the suggestion "if the enclosing scope is a class".
func fuzzyScope(ctx *Context, job ResolutionItem) (symbols.Ref, bool) {
	uc := job.Out.Original
	if scopeCL, ok := uc.Scope.(*ast.ConstantLit); ok {
		dealiased := ctx.Tbl.Dealias(scopeCL.Symbol)
		if ctx.Tbl.IsClass(dealiased) {
			return dealiased, true
		}
		return ctx.Tbl.NoSymbol, false
	}

	inner := job.Scope.Scope()
	if ctx.Tbl.IsClass(inner) {
		return inner, true
	}
	return ctx.Tbl.NoSymbol, false
}
