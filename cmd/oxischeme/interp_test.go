package main

import (
	"testing"

	"github.com/oxischeme/oxischeme/internal/heap"
	"github.com/oxischeme/oxischeme/internal/printer"
	"github.com/stretchr/testify/require"
)

func TestEvalSourceScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"literal", "42", "42"},
		{"if-false", "(if #f 1 2)", "2"},
		{"if-true", "(if #t 1 2)", "1"},
		{"define-set-sequence", "(begin (define x 2) (set! x 1) x)", "1"},
		{"closure", "(((lambda (a) (lambda (b) (+ a b))) 2) 3)", "5"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := NewInterpreter()

			v, err := in.EvalSource("<test>", c.src)
			require.NoError(t, err)
			require.Equal(t, c.want, printer.Print(v))
		})
	}
}

func TestEvalSourceTailCallLoopDoesNotExhaustStack(t *testing.T) {
	in := NewInterpreter()

	v, err := in.EvalSource("<test>", `
		(define (loop n) (if (= n 0) 'done (loop (- n 1))))
		(loop 100000)
	`)
	require.NoError(t, err)
	require.Equal(t, "done", printer.Print(v))
}

func TestEvalSourceCyclicStructurePrintsWithoutLooping(t *testing.T) {
	in := NewInterpreter()

	v, err := in.EvalSource("<test>", "(define p (cons 1 2)) (set-cdr! p p) p")
	require.NoError(t, err)
	require.Contains(t, printer.Print(v), "<cyclic value>")
}

func TestEvalSourceAcrossMultipleCallsSharesGlobalState(t *testing.T) {
	in := NewInterpreter()

	_, err := in.EvalSource("<a>", "(define counter 0)")
	require.NoError(t, err)

	_, err = in.EvalSource("<b>", "(set! counter (+ counter 1))")
	require.NoError(t, err)

	v, err := in.EvalSource("<c>", "counter")
	require.NoError(t, err)
	require.Equal(t, heap.Integer(1), v)
}

func TestEvalSourcePropagatesReadErrors(t *testing.T) {
	in := NewInterpreter()

	_, err := in.EvalSource("<test>", "(1 2")
	require.Error(t, err)
}

func TestEvalSourcePropagatesRuntimeErrors(t *testing.T) {
	in := NewInterpreter()

	_, err := in.EvalSource("<test>", "(car 5)")
	require.Error(t, err)
}
