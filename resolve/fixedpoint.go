package resolve

// runFixedPoint repeatedly retries every pending job across the four
// queues -- ancestors, then constants, then class aliases, then type
// aliases (spec §4.1.5's fixed ordering) -- dropping each job that
// succeeds, until a full pass makes no progress at all. At least one pass
// always runs, even against an already-empty todoLists.
func runFixedPoint(ctx *Context, tdo todoLists) todoLists {
	for {
		before := tdo.size()

		tdo.ancestors = retryAncestors(ctx, tdo.ancestors, false)
		tdo.constants = retryConstants(ctx, tdo.constants)
		tdo.classAliases = retryClassAliases(ctx, tdo.classAliases)
		tdo.typeAliases = retryTypeAliases(ctx, tdo.typeAliases)

		if tdo.size() == before {
			return tdo
		}
	}
}

func (t todoLists) size() int {
	return len(t.constants) + len(t.ancestors) + len(t.classAliases) + len(t.typeAliases)
}

func retryAncestors(ctx *Context, jobs []AncestorResolutionItem, lastRun bool) []AncestorResolutionItem {
	kept := jobs[:0]
	for _, job := range jobs {
		if !resolveAncestorJob(ctx, job, lastRun) {
			kept = append(kept, job)
		}
	}
	return kept
}

func retryConstants(ctx *Context, jobs []ResolutionItem) []ResolutionItem {
	kept := jobs[:0]
	for _, job := range jobs {
		sym, status := resolveConstant(ctx, job.Scope, job.Out.Original)
		if status == pending {
			kept = append(kept, job)
			continue
		}
		job.Out.Symbol = sym
	}
	return kept
}

func retryClassAliases(ctx *Context, jobs []ClassAliasResolutionItem) []ClassAliasResolutionItem {
	kept := jobs[:0]
	for _, job := range jobs {
		if !resolveClassAliasJob(ctx, job) {
			kept = append(kept, job)
		}
	}
	return kept
}

func retryTypeAliases(ctx *Context, jobs []TypeAliasResolutionItem) []TypeAliasResolutionItem {
	kept := jobs[:0]
	for _, job := range jobs {
		if !resolveTypeAliasJob(ctx, job) {
			kept = append(kept, job)
		}
	}
	return kept
}
