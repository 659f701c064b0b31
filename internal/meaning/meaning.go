// Package meaning defines the analyzed, executable intermediate
// representation of a Scheme form — the output of the analyzer and
// the input to the trampolined evaluator — along with the evaluator
// itself.
package meaning

import (
	"github.com/oxischeme/oxischeme/internal/heap"
	"github.com/oxischeme/oxischeme/internal/senv"
)

// Meaning is the closed, executable form produced by analysis. Every
// variant also implements heap.Meaning (EmbeddedValues), so a
// Procedure's body can be traced by the collector without the heap
// package needing to know this package's concrete types.
type Meaning interface {
	heap.Meaning
	isMeaning()
}

// Quotation yields a fixed value, unchanged by evaluation.
type Quotation struct {
	Value heap.Value
}

func (Quotation) isMeaning() {}

// EmbeddedValues returns the quoted value itself: this is the one
// place a heap.Value gets folded into a Meaning tree, and therefore
// the one place the collector needs telling about it explicitly.
func (q Quotation) EmbeddedValues() []heap.Value { return []heap.Value{q.Value} }

// Reference looks up a variable by its statically resolved coordinate.
// Name is carried only for diagnostics; dispatch uses Coord.
type Reference struct {
	Name  string
	Coord senv.Coordinate
}

func (Reference) isMeaning()                    {}
func (Reference) EmbeddedValues() []heap.Value { return nil }

// Definition evaluates Value and binds it at Coord in the current
// frame (Coord.FrameHops is always 0: define binds into whichever
// lexical block is innermost at the point of the define).
type Definition struct {
	Coord senv.Coordinate
	Value Meaning
}

func (Definition) isMeaning() {}
func (d Definition) EmbeddedValues() []heap.Value { return d.Value.EmbeddedValues() }

// SetVariable evaluates Value and assigns it at Coord, which may be in
// any enclosing frame.
type SetVariable struct {
	Name  string
	Coord senv.Coordinate
	Value Meaning
}

func (SetVariable) isMeaning() {}
func (s SetVariable) EmbeddedValues() []heap.Value { return s.Value.EmbeddedValues() }

// Conditional evaluates Cond; only #f is falsy, so anything else
// selects Conseq.
type Conditional struct {
	Cond, Conseq, Alt Meaning
}

func (Conditional) isMeaning() {}

func (c Conditional) EmbeddedValues() []heap.Value {
	var vs []heap.Value
	vs = append(vs, c.Cond.EmbeddedValues()...)
	vs = append(vs, c.Conseq.EmbeddedValues()...)
	vs = append(vs, c.Alt.EmbeddedValues()...)

	return vs
}

// Sequence evaluates First for effect, then (in tail position) Second.
type Sequence struct {
	First, Second Meaning
}

func (Sequence) isMeaning() {}

func (s Sequence) EmbeddedValues() []heap.Value {
	return append(s.First.EmbeddedValues(), s.Second.EmbeddedValues()...)
}

// Lambda builds a Procedure value, capturing the activation in effect
// when it is evaluated.
type Lambda struct {
	Name  string
	Arity int
	Body  Meaning
}

func (Lambda) isMeaning() {}

// EmbeddedValues descends into the lambda body even though it has not
// yet become a Procedure: until evaluated, this Lambda node is still
// just a subtree of whatever outer Procedure owns it, and any
// quotation nested inside must be traced through that owner.
func (l Lambda) EmbeddedValues() []heap.Value { return l.Body.EmbeddedValues() }

// Invocation applies Proc to the values of Args, in source order.
type Invocation struct {
	Proc Meaning
	Args []Meaning
}

func (Invocation) isMeaning() {}

func (i Invocation) EmbeddedValues() []heap.Value {
	vs := append([]heap.Value{}, i.Proc.EmbeddedValues()...)
	for _, a := range i.Args {
		vs = append(vs, a.EmbeddedValues()...)
	}

	return vs
}
