package diagnostics

import "quillc/ast"

// PlainLess orders two locations by (file path, begin line, begin col, end
// line, end col) with no regard for strictness. Used to stable-sort P1's
// queues once the per-worker results are merged (spec §4.1.4) so that
// diagnostics within one file read top-to-bottom.
func PlainLess(a, b ast.Loc) bool {
	ap, bp := filePath(a), filePath(b)
	if ap != bp {
		return ap < bp
	}
	if a.BeginLn != b.BeginLn {
		return a.BeginLn < b.BeginLn
	}
	if a.BeginCol != b.BeginCol {
		return a.BeginCol < b.BeginCol
	}
	if a.EndLn != b.EndLn {
		return a.EndLn < b.EndLn
	}
	return a.EndCol < b.EndCol
}

// StrictLevelLess orders two locations for the terminal stubbing phase
// (§4.1.6): stricter files are reported first, so that an error in a lax
// file never gets to "hide" one in a stricter file that depends on it.
// This deliberately inverts the strictness comparison relative to a naive
// ascending sort -- see spec §9's open question on compareLocs.
func StrictLevelLess(a, b ast.Loc) bool {
	as, bs := fileStrictness(a), fileStrictness(b)
	if as != bs {
		return as > bs
	}
	return PlainLess(a, b)
}

func filePath(l ast.Loc) string {
	if l.File == nil {
		return ""
	}
	return l.File.Path
}

func fileStrictness(l ast.Loc) ast.Strictness {
	if l.File == nil {
		return ast.True
	}
	return l.File.Strictness
}
