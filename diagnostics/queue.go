// Package diagnostics is the resolver's error queue and display layer --
// the role played by chai's logging package in the teacher repo, expanded
// to the strictness-gated ErrorBuilder contract of spec §6/§7.
package diagnostics

import (
	"sort"
	"sync"

	"quillc/ast"
)

// Class enumerates the closed set of error classes the resolver may emit
// (spec §6).
type Class int

const (
	StubConstant Class = iota
	DynamicConstant
	ConstantInTypeAlias
	RecursiveTypeAlias
	RecursiveClassAlias
	ReassignsTypeAlias
	TypeAliasInGenericClass
	DynamicSuperclass
	CircularDependency
	RedefinitionOfParents
	InvalidMethodSignature
	BadParameterOrdering
	OverloadNotAllowed
	SigInFileWithoutSigil
	AbstractMethodWithBody
	AbstractMethodOutsideAbstract
	ConcreteMethodInInterface
	ConstantAssertType
	ConstantMissingTypeAnnotation
	InvalidDeclareVariables
	DuplicateVariableDeclaration
	ParentTypeBoundsMismatch
	InvalidTypeMemberBounds
	InvalidMixinDeclaration
	BadAliasMethod
	RevealTypeInUntypedFile
	InvalidTypeAlias
)

var classNames = [...]string{
	"StubConstant", "DynamicConstant", "ConstantInTypeAlias", "RecursiveTypeAlias",
	"RecursiveClassAlias", "ReassignsTypeAlias", "TypeAliasInGenericClass",
	"DynamicSuperclass", "CircularDependency", "RedefinitionOfParents",
	"InvalidMethodSignature", "BadParameterOrdering", "OverloadNotAllowed",
	"SigInFileWithoutSigil", "AbstractMethodWithBody", "AbstractMethodOutsideAbstract",
	"ConcreteMethodInInterface", "ConstantAssertType", "ConstantMissingTypeAnnotation",
	"InvalidDeclareVariables", "DuplicateVariableDeclaration", "ParentTypeBoundsMismatch",
	"InvalidTypeMemberBounds", "InvalidMixinDeclaration", "BadAliasMethod",
	"RevealTypeInUntypedFile", "InvalidTypeAlias",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "UnknownError"
}

// isWarning is true for classes that are warnings rather than hard errors.
func (c Class) isWarning() bool {
	return c == RevealTypeInUntypedFile
}

// minStrictness is the lowest sigil at which this error class is allowed to
// fire. A file below the threshold silently suppresses it -- matching the
// "resolver must not do work only observable through the builder when it's
// absent" rule in spec §6.
func (c Class) minStrictness() ast.Strictness {
	switch c {
	case InvalidMethodSignature, BadParameterOrdering, OverloadNotAllowed,
		AbstractMethodWithBody, AbstractMethodOutsideAbstract,
		ConcreteMethodInInterface, ConstantAssertType, ConstantMissingTypeAnnotation:
		return ast.True
	case SigInFileWithoutSigil:
		return ast.Ignore // only ever raised for files at the Ignore sigil
	case RevealTypeInUntypedFile:
		return ast.Ignore // gated the opposite way -- see Queue.BeginError
	default:
		return ast.False
	}
}

// Diagnostic is one emitted error or warning, retained for deterministic
// ordering and for tests to assert against.
type Diagnostic struct {
	Class   Class
	Loc     ast.Loc
	Header  string
	Lines   []string
	Warning bool
}

// Queue accumulates diagnostics across a run. Safe for concurrent use
// during P1's parallel first walk (guarded by a mutex, exactly like the
// teacher's Logger).
type Queue struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
	errorCount  int
}

func NewQueue() *Queue {
	return &Queue{}
}

// ErrorCount reports how many (non-warning) diagnostics have been emitted
// so far; ShouldProceed (which the driver calls) is built on it, and
// cmd/quillc prints it in the closing summary.
func (q *Queue) ErrorCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.errorCount
}

func (q *Queue) ShouldProceed() bool {
	return q.ErrorCount() == 0
}

// WarningCount reports how many warning-class diagnostics have been
// emitted so far, for the closing summary line.
func (q *Queue) WarningCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, d := range q.diagnostics {
		if d.Warning {
			n++
		}
	}
	return n
}

// All returns every accumulated diagnostic, stably sorted by location.
func (q *Queue) All() []Diagnostic {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Diagnostic, len(q.diagnostics))
	copy(out, q.diagnostics)
	sort.SliceStable(out, func(i, j int) bool { return PlainLess(out[i].Loc, out[j].Loc) })
	return out
}

// Builder accumulates the pieces of one diagnostic before it is committed
// to the queue on Emit.
type Builder struct {
	q    *Queue
	d    Diagnostic
}

// BeginError returns a Builder for constructing a diagnostic of the given
// class at loc, or nil if the enclosing file's strictness suppresses that
// class. Callers MUST check for nil and skip all work that would only be
// observable through the builder (spec §6).
func (q *Queue) BeginError(loc ast.Loc, class Class) *Builder {
	strictness := ast.True
	if loc.File != nil {
		strictness = loc.File.Strictness
	}

	if class == RevealTypeInUntypedFile {
		if strictness != ast.False {
			return nil
		}
	} else if strictness < class.minStrictness() {
		return nil
	}

	return &Builder{q: q, d: Diagnostic{Class: class, Loc: loc, Warning: class.isWarning()}}
}

func (b *Builder) SetHeader(format string, args ...interface{}) *Builder {
	b.d.Header = sprintf(format, args...)
	return b
}

func (b *Builder) AddErrorLine(loc ast.Loc, format string, args ...interface{}) *Builder {
	b.d.Lines = append(b.d.Lines, sprintf(format, args...))
	return b
}

func (b *Builder) AddErrorSection(text string) *Builder {
	b.d.Lines = append(b.d.Lines, text)
	return b
}

func (b *Builder) ReplaceWith(label string, loc ast.Loc, text string) *Builder {
	b.d.Lines = append(b.d.Lines, label+": "+text)
	return b
}

// Emit commits the diagnostic being built. Every BeginError call that
// returns non-nil must eventually call Emit exactly once.
func (b *Builder) Emit() {
	b.q.mu.Lock()
	defer b.q.mu.Unlock()
	b.q.diagnostics = append(b.q.diagnostics, b.d)
	if !b.d.Warning {
		b.q.errorCount++
	}
	display(b.d)
}
