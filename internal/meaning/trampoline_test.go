package meaning_test

import (
	"testing"

	"github.com/oxischeme/oxischeme/internal/analyzer"
	"github.com/oxischeme/oxischeme/internal/heap"
	"github.com/oxischeme/oxischeme/internal/meaning"
	"github.com/oxischeme/oxischeme/internal/position"
	"github.com/oxischeme/oxischeme/internal/primitives"
	"github.com/oxischeme/oxischeme/internal/reader"
	"github.com/oxischeme/oxischeme/internal/senv"
	"github.com/stretchr/testify/require"
)

// evalAll reads and evaluates every top-level form of src against one
// shared heap, env, and global activation, returning the value of the
// last form.
func evalAll(t *testing.T, src string) heap.Value {
	t.Helper()

	h := heap.NewDefault()
	env := senv.New()
	primitives.Install(h, env)
	a := analyzer.New(h)

	file := position.NewSourceFile("<test>", src)
	forms, err := reader.New(h, file).ReadAll()
	require.NoError(t, err)

	var last heap.Value = heap.Unspecified

	for _, form := range forms {
		m, err := a.Analyze(env, form.Value)
		require.NoError(t, err)

		v, err := meaning.Run(h, h.Global(), m)
		require.NoError(t, err)

		last = v
	}

	return last
}

func TestScenarioIntegerLiteral(t *testing.T) {
	require.Equal(t, heap.Integer(42), evalAll(t, "42"))
}

func TestScenarioIfBranches(t *testing.T) {
	require.Equal(t, heap.Integer(2), evalAll(t, "(if #f 1 2)"))
	require.Equal(t, heap.Integer(1), evalAll(t, "(if #t 1 2)"))
}

func TestScenarioDefineSetSequencing(t *testing.T) {
	require.Equal(t, heap.Integer(1), evalAll(t, "(begin (define x 2) (set! x 1) x)"))
}

func TestScenarioClosureCapturesEnclosingFrame(t *testing.T) {
	v := evalAll(t, "(((lambda (a) (lambda (b) (+ a b))) 2) 3)")
	require.Equal(t, heap.Integer(5), v)
}

func TestScenarioSelfTailCallLoopDoesNotExhaustStack(t *testing.T) {
	v := evalAll(t, `
		(define (loop n) (if (= n 0) 'done (loop (- n 1))))
		(loop 100000)
	`)

	sym, ok := v.(heap.Sym)
	require.True(t, ok)
	require.Equal(t, "done", sym.Handle.Get().String())
}

func TestOnlyFalseIsFalsy(t *testing.T) {
	require.Equal(t, heap.Integer(1), evalAll(t, "(if 0 1 2)"))
	require.Equal(t, heap.Integer(1), evalAll(t, "(if '() 1 2)"))
}

func TestReferenceToNeverDefinedGlobalErrors(t *testing.T) {
	h := heap.NewDefault()
	env := senv.New()
	primitives.Install(h, env)
	a := analyzer.New(h)

	file := position.NewSourceFile("<test>", "totally-undefined-name")
	forms, err := reader.New(h, file).ReadAll()
	require.NoError(t, err)

	m, err := a.Analyze(env, forms[0].Value)
	require.NoError(t, err)

	_, err = meaning.Run(h, h.Global(), m)
	require.Error(t, err)
}

func TestSetOnUnboundVariableErrorsAtRuntime(t *testing.T) {
	h := heap.NewDefault()
	env := senv.New()
	primitives.Install(h, env)
	a := analyzer.New(h)

	file := position.NewSourceFile("<test>", "(set! never-bound 1)")
	forms, err := reader.New(h, file).ReadAll()
	require.NoError(t, err)

	m, err := a.Analyze(env, forms[0].Value)
	require.NoError(t, err)

	_, err = meaning.Run(h, h.Global(), m)
	require.Error(t, err)
}

func TestArityMismatchOnCallErrors(t *testing.T) {
	h := heap.NewDefault()
	env := senv.New()
	primitives.Install(h, env)
	a := analyzer.New(h)

	file := position.NewSourceFile("<test>", "(define (f a b) (+ a b)) (f 1)")
	forms, err := reader.New(h, file).ReadAll()
	require.NoError(t, err)

	m, err := a.Analyze(env, forms[0].Value)
	require.NoError(t, err)
	_, err = meaning.Run(h, h.Global(), m)
	require.NoError(t, err)

	m, err = a.Analyze(env, forms[1].Value)
	require.NoError(t, err)
	_, err = meaning.Run(h, h.Global(), m)
	require.Error(t, err)
}

func TestQuoteRoundTripsEqToLiteral(t *testing.T) {
	v := evalAll(t, "(define p (quote (1 2))) p")

	pair, ok := v.(heap.Pair)
	require.True(t, ok)
	require.Equal(t, heap.Integer(1), pair.Cons.Get().Car)

	h := heap.NewDefault()
	forms, err := reader.New(h, position.NewSourceFile("<test>", "(quote (1 2))")).ReadAll()
	require.NoError(t, err)

	literal := forms[0].Value.(heap.Pair).Cons.Get().Cdr.(heap.Pair).Cons.Get().Car

	m, err := analyzer.New(h).Analyze(senv.New(), forms[0].Value)
	require.NoError(t, err)

	got, err := meaning.Run(h, h.Global(), m)
	require.NoError(t, err)
	require.True(t, heap.Eq(literal, got), "(quote x) must evaluate to the very x that was read")
}
