// Package common holds constants and small utilities shared across quillc.
package common

// Enumeration of file and project constants.
const (
	SrcFileExtension = ".ql"
	ProjectFileName  = "quill-mod.toml"
	QuillVersion     = "0.1.0"
)

// QuillPath is the path to the Quill installation directory (stdlib, type
// syntax grammar, etc). Nothing in this repository assigns it.
var QuillPath = ""

// Ref is an opaque, stable handle into a symbols.Table's symbol arena. It
// lives here, not in package symbols, so that package ast can carry a
// Symbol/ResolutionScope field without ast and symbols importing each other.
type Ref int

// Type is implemented by every member of the resolved type algebra
// (types.Class, types.Untyped, types.Top, types.Bottom, types.Alias,
// types.Union, types.Intersection, ...). It lives here, not in package
// symbols or package types, so that none of ast, symbols, and types need to
// import each other.
type Type interface {
	Repr() string
	IsType()
}
