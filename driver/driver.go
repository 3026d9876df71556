// Package driver wires a loaded project, the namer stub, and the resolver
// pipeline together -- the role build.Compiler played in the teacher repo,
// stripped down to what a resolver-only tool needs (no parsing table, no
// core-module bootstrap, no codegen).
package driver

import (
	"quillc/ast"
	"quillc/common"
	"quillc/diagnostics"
	"quillc/project"
	"quillc/resolve"
	"quillc/symbols"
	"quillc/typesyntax"
)

// Driver holds the state a single resolution run shares across its phases.
type Driver struct {
	Project *project.Project
	Tbl     *symbols.Table
	Diag    *diagnostics.Queue
	ctx     *resolve.Context
}

// New builds a Driver for proj, allocating a fresh symbol table and
// diagnostic queue.
func New(proj *project.Project) *Driver {
	tbl := symbols.NewTable()
	diag := diagnostics.NewQueue()
	ctx := resolve.NewContext(tbl, diag, typesyntax.New())
	return &Driver{Project: proj, Tbl: tbl, Diag: diag, ctx: ctx}
}

// Resolve names and resolves every root, in place, returning whether the
// run completed without hard errors (ShouldProceed on the diagnostic
// queue) -- matching Compiler.Analyze's boolean success contract.
func (d *Driver) Resolve(roots []*ast.Root) bool {
	roots = d.dedupeByPath(roots)

	for _, root := range roots {
		d.registerOverloadPermission(root)
	}

	namer := project.NewNamer(d.Tbl)
	namer.Name(roots)
	project.RewriteUnresolvedConstants(roots)

	resolve.Run(d.ctx, roots, d.Project.Workers)

	return d.Diag.ShouldProceed()
}

// dedupeByPath drops a root whose file was already seen under a different
// *ast.Root (e.g. a source root glob matching the same file twice), keyed by
// common.GenerateIDFromPath the way the teacher's module loader deduped
// packages reached via more than one import path. A root with no File (a
// hand-built tree in a test) is never deduped.
func (d *Driver) dedupeByPath(roots []*ast.Root) []*ast.Root {
	seen := make(map[uint]bool, len(roots))
	out := make([]*ast.Root, 0, len(roots))
	for _, root := range roots {
		if root.File == nil {
			out = append(out, root)
			continue
		}
		id := common.GenerateIDFromPath(root.File.Path)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, root)
	}
	return out
}

// registerOverloadPermission bridges the project config's glob-based
// permit-overloads list into the per-file flag the resolver's P5 pass
// actually reads (symbols.Table.PermitOverloadDefinitions).
func (d *Driver) registerOverloadPermission(root *ast.Root) {
	if root.File == nil {
		return
	}
	d.Tbl.SetPermitOverloadDefinitions(root.File, d.Project.PermitsOverloads(root.File.Path))
}

// SanityCheck runs P6 (debug-only) over roots and reports any violation
// strings found -- wired up by cmd/quillc behind a --sanity flag.
func (d *Driver) SanityCheck(roots []*ast.Root) []string {
	return resolve.SanityCheck(roots)
}
