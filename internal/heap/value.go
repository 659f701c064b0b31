// Package heap implements the GC'd data model: Value, the heap-backed
// variants it can hold (Cons, strings, activations, procedures), the
// arenas that back them, and the mark-and-sweep collector that keeps
// them alive. The three are specified together because none of them
// makes sense in isolation: a Value is only meaningful relative to the
// heap that owns its handles, and the heap exists to keep those
// handles valid.
package heap

import (
	"github.com/oxischeme/oxischeme/internal/arena"
)

// Value is the tagged union of every first-class Scheme datum. Each
// variant is a distinct Go type implementing the marker method, the
// same shape used for Meaning in the analyzer and evaluator.
type Value interface {
	isValue()
}

// EmptyList is the unique value denoted by ().
type EmptyList struct{}

func (EmptyList) isValue() {}

// Empty is the singleton empty-list value.
var Empty Value = EmptyList{}

// Pair is a heap-allocated cons cell, addressed by handle.
type Pair struct {
	Cons ConsHandle
}

func (Pair) isValue() {}

// Str is a mutable heap-allocated string.
type Str struct {
	Handle StringHandle
}

func (Str) isValue() {}

// Sym is an interned symbol. Two symbols with the same name always
// share the same StringHandle, so symbol equality is handle equality.
type Sym struct {
	Handle StringHandle
}

func (Sym) isValue() {}

// Integer is an exact fixnum.
type Integer int64

func (Integer) isValue() {}

// Boolean is #t or #f.
type Boolean bool

func (Boolean) isValue() {}

// Character is a single Scheme character.
type Character rune

func (Character) isValue() {}

// ProcedureValue is a user-defined closure, addressed by handle.
type ProcedureValue struct {
	Handle ProcedureHandle
}

func (ProcedureValue) isValue() {}

// PrimitiveFunc is the Go implementation of a built-in procedure. It
// receives the heap (to allocate results) and already-evaluated
// arguments, and returns the primitive's result or an error.
type PrimitiveFunc func(h *Heap, args []Value) (Value, error)

// PrimitiveValue wraps a built-in procedure. Primitives are not
// heap-allocated: they live for the process lifetime and are installed
// directly into the global activation.
type PrimitiveValue struct {
	Name string
	Fn   PrimitiveFunc
}

func (PrimitiveValue) isValue() {}

// unbound is the sentinel occupying a declared-but-not-yet-initialized
// activation slot. It is distinct from the "unspecified" value that
// define and set! themselves evaluate to.
type unbound struct{}

func (unbound) isValue() {}

// Unbound is the sentinel value of a slot that has been allocated
// (e.g. a fresh call frame's parameter slot before BindParam fills it,
// or a slot a define grew the frame past) but not yet assigned.
var Unbound Value = unbound{}

// unspecified is a placeholder result, distinct from the interned
// symbol `unspecified` (WellKnown.Unspecified) that define, set! and
// the mutating primitives return. The printer renders it as
// #<unspecified>.
type unspecified struct{}

func (unspecified) isValue() {}

// Unspecified is the result reported when no form was evaluated at all.
var Unspecified Value = unspecified{}

// Eq reports whether a and b are identical per eq?: pointer identity
// (handle equality) for heap-backed variants, structural equality for
// immediates. Every Value variant here is a comparable Go type, so a
// plain == already implements exactly that rule — handles compare by
// (arena, index) and immediates compare by their wrapped scalar.
func Eq(a, b Value) bool {
	return a == b
}

// ConsHandle, StringHandle, ActivationHandle, and ProcedureHandle are
// the per-kind handles into the heap's four arenas.
type (
	ConsHandle       = arena.Handle[Cons]
	StringHandle     = arena.Handle[StringObj]
	ActivationHandle = arena.Handle[ActivationFrame]
	ProcedureHandle  = arena.Handle[Procedure]
)

// Cons is a heap-allocated pair.
type Cons struct {
	Car Value
	Cdr Value
}

// StringObj is a heap-allocated, mutable character buffer. Symbols
// reuse this representation: an interned Sym's Handle points at a
// StringObj holding its name.
type StringObj struct {
	Chars []rune
}

func (s *StringObj) String() string {
	return string(s.Chars)
}

// ActivationFrame is a runtime scope: an optional parent link and a
// sequence of value slots, addressed by de Bruijn (frame, slot)
// coordinates computed statically by the analyzer.
type ActivationFrame struct {
	Parent *ActivationHandle
	Slots  []Value
}

// Procedure is a user-defined closure: the Meaning of its body, the
// activation it closed over, and its declared arity.
//
// Body is typed as the minimal Meaning interface (rather than a
// concrete type from the meaning package) so that heap does not import
// meaning: meaning imports heap for Value and ActivationHandle, and a
// Procedure's body must be traceable by the heap's collector, so the
// dependency could not run the other way without a cycle.
type Procedure struct {
	Body    Meaning
	Act     ActivationHandle
	Name    string
	NumArgs int
}

// Meaning is the trace-relevant surface of an analyzed procedure body:
// enough for the collector to find every Value literal folded into it
// by quote, without the heap package needing to know the shape of the
// analyzer's IR.
type Meaning interface {
	EmbeddedValues() []Value
}
