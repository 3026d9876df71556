// Package resolve is the constant-and-ancestor resolution engine: a
// parallel first pass (P1's tree walk) plus a single-threaded fixed-point
// loop, followed by ancestry finalization (P2), mixes_in_class_methods
// (P3), type-parameter bound checking (P4), signature elaboration (P5),
// and a debug-only sanity check (P6).
package resolve

import (
	"quillc/diagnostics"
	"quillc/symbols"
	"quillc/typesyntax"
)

// Context bundles the collaborators every resolver pass needs: the mutable
// symbol table, the diagnostic sink, and the type-syntax sub-parser. It is
// the explicit, threaded replacement for the "global mutable state" the
// design notes (§9) warn against.
type Context struct {
	Tbl    *symbols.Table
	Diag   *diagnostics.Queue
	Syntax typesyntax.Parser
}

func NewContext(tbl *symbols.Table, diag *diagnostics.Queue, syn typesyntax.Parser) *Context {
	return &Context{Tbl: tbl, Diag: diag, Syntax: syn}
}
