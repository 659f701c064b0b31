package main

import (
	"github.com/oxischeme/oxischeme/internal/analyzer"
	"github.com/oxischeme/oxischeme/internal/heap"
	"github.com/oxischeme/oxischeme/internal/meaning"
	"github.com/oxischeme/oxischeme/internal/position"
	"github.com/oxischeme/oxischeme/internal/primitives"
	"github.com/oxischeme/oxischeme/internal/reader"
	"github.com/oxischeme/oxischeme/internal/senv"
)

// Interpreter bundles one heap, its static environment, and an
// analyzer bound to both — everything needed to read, analyze, and
// run a stream of top-level forms against a single set of global
// bindings.
type Interpreter struct {
	Heap     *heap.Heap
	Env      *senv.Environment
	Analyzer *analyzer.Analyzer
}

// NewInterpreter builds a fresh heap, installs the core primitives
// into its global activation, and returns an Interpreter ready to
// read and evaluate forms.
func NewInterpreter() *Interpreter {
	h := heap.NewDefault()
	env := senv.New()

	primitives.Install(h, env)

	return &Interpreter{
		Heap:     h,
		Env:      env,
		Analyzer: analyzer.New(h),
	}
}

// EvalSource reads, analyzes, and evaluates source (attributed to
// filename for diagnostics) one top-level form at a time against the
// interpreter's shared global activation, returning the value of the
// last form evaluated. Forms are streamed rather than read up front so
// that a later form never sits unrooted in a Go slice across a
// collection triggered by an earlier form's evaluation — each form is
// fully evaluated (and dropped) before the next is even read.
func (in *Interpreter) EvalSource(filename, source string) (heap.Value, error) {
	file := position.NewSourceFile(filename, source)
	rd := reader.New(in.Heap, file)

	var last heap.Value = heap.Unspecified

	for {
		form, ok, err := rd.ReadForm()
		if err != nil {
			return nil, err
		}

		if !ok {
			return last, nil
		}

		m, err := in.Analyzer.Analyze(in.Env, form.Value)
		if err != nil {
			return nil, err
		}

		v, err := meaning.Run(in.Heap, in.Heap.Global(), m)
		if err != nil {
			return nil, err
		}

		last = v
	}
}
