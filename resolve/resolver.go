package resolve

import "quillc/ast"

// Run drives the full six-pass pipeline (spec §4, §5) over every parsed
// file: P1's parallel first walk and fixed-point loop, terminal stubbing,
// then P2 through P5 in sequence. trees are mutated in place and also
// returned for convenience at call sites that prefer an expression.
func Run(ctx *Context, trees []*ast.Root, workers int) []*ast.Root {
	runConstantsAndAncestors(ctx, trees, workers)
	FinalizeAncestors(ctx, ctx.Tbl)
	MixesInClassMethods(ctx, ctx.Tbl)
	CheckTypeParamBounds(ctx, ctx.Tbl, trees)
	ElaborateSignatures(ctx, trees)
	return trees
}

// RunTreePasses runs the same pipeline with a single-worker (sequential)
// P1, for callers that don't want or need concurrency -- tests, small
// single-file tools, or a project config that disables worker threads.
func RunTreePasses(ctx *Context, trees []*ast.Root) []*ast.Root {
	return Run(ctx, trees, 1)
}

// RunConstantResolution runs only P1 (plus its governing fixed point and
// terminal stub phase) -- the subset an editor/IDE integration needs to
// resolve constant and ancestor references without paying for signature
// elaboration.
func RunConstantResolution(ctx *Context, trees []*ast.Root, workers int) []*ast.Root {
	runConstantsAndAncestors(ctx, trees, workers)
	return trees
}

func runConstantsAndAncestors(ctx *Context, trees []*ast.Root, workers int) {
	tdo := runFirstWalk(ctx, trees, workers)
	tdo = runFixedPoint(ctx, tdo)
	runTerminalStubbing(ctx, tdo)
}
