package resolve

import (
	"sort"
	"sync"

	"quillc/ast"
	"quillc/diagnostics"
)

// runFirstWalk is P1's parallel phase (spec §4.1.4, §5): each file is
// handed to one of a bounded pool of workers, walked independently against
// a fresh per-file todoLists, and the per-worker results are merged once
// every file has been walked, each merged queue then stable-sorted by
// source location so its order does not depend on worker timing. This is the channel-and-WaitGroup adaptation
// of the module-batch concurrency the teacher's compiler used for
// resolving independent modules in parallel.
func runFirstWalk(ctx *Context, roots []*ast.Root, workers int) todoLists {
	if workers < 1 {
		workers = 1
	}
	if workers > len(roots) {
		workers = len(roots)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan *ast.Root)
	results := make(chan todoLists)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for root := range jobs {
				results <- walkOneFile(ctx, root)
			}
		}()
	}

	go func() {
		for _, r := range roots {
			jobs <- r
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var merged todoLists
	for tdo := range results {
		merged.constants = append(merged.constants, tdo.constants...)
		merged.ancestors = append(merged.ancestors, tdo.ancestors...)
		merged.classAliases = append(merged.classAliases, tdo.classAliases...)
		merged.typeAliases = append(merged.typeAliases, tdo.typeAliases...)
	}

	sort.SliceStable(merged.constants, func(i, j int) bool {
		return diagnostics.PlainLess(merged.constants[i].Out.Original.Loc, merged.constants[j].Out.Original.Loc)
	})
	sort.SliceStable(merged.ancestors, func(i, j int) bool {
		return diagnostics.PlainLess(merged.ancestors[i].Ancestor.Loc, merged.ancestors[j].Ancestor.Loc)
	})
	sort.SliceStable(merged.classAliases, func(i, j int) bool {
		return diagnostics.PlainLess(merged.classAliases[i].Rhs.Loc, merged.classAliases[j].Rhs.Loc)
	})
	sort.SliceStable(merged.typeAliases, func(i, j int) bool {
		return diagnostics.PlainLess(merged.typeAliases[i].Rhs.Location(), merged.typeAliases[j].Rhs.Location())
	})
	return merged
}

// walkOneFile runs the rewrite walk over a single file's top-level
// statements, rooted at the global scope (spec §4.1.1's "outermost" is the
// file's top level, which nests directly under Root).
func walkOneFile(ctx *Context, root *ast.Root) todoLists {
	var tdo todoLists
	nesting := rootNesting(ctx.Tbl.Root)
	for i, stat := range root.Stats {
		root.Stats[i] = walk(ctx, nesting, stat, &tdo)
	}
	return tdo
}
