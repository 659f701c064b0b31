package primitives

import (
	"testing"

	"github.com/oxischeme/oxischeme/internal/heap"
	"github.com/stretchr/testify/require"
)

func TestConsCarCdr(t *testing.T) {
	h := heap.NewDefault()

	v, err := primCons(h, []heap.Value{heap.Integer(1), heap.Integer(2)})
	require.NoError(t, err)

	car, err := primCar(h, []heap.Value{v})
	require.NoError(t, err)
	require.Equal(t, heap.Integer(1), car)

	cdr, err := primCdr(h, []heap.Value{v})
	require.NoError(t, err)
	require.Equal(t, heap.Integer(2), cdr)
}

func TestCarOfNonConsErrors(t *testing.T) {
	h := heap.NewDefault()

	_, err := primCar(h, []heap.Value{heap.Integer(5)})
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot take car of non-cons")
}

func TestSetCarAndSetCdr(t *testing.T) {
	h := heap.NewDefault()

	v, err := primCons(h, []heap.Value{heap.Integer(1), heap.Integer(2)})
	require.NoError(t, err)

	_, err = primSetCar(h, []heap.Value{v, heap.Integer(9)})
	require.NoError(t, err)

	car, err := primCar(h, []heap.Value{v})
	require.NoError(t, err)
	require.Equal(t, heap.Integer(9), car)

	_, err = primSetCdr(h, []heap.Value{v, v})
	require.NoError(t, err)

	cdr, err := primCdr(h, []heap.Value{v})
	require.NoError(t, err)
	require.Equal(t, v, cdr, "set-cdr! onto itself builds a cycle")
}

func TestListAndLength(t *testing.T) {
	h := heap.NewDefault()

	lst, err := primList(h, []heap.Value{heap.Integer(1), heap.Integer(2), heap.Integer(3)})
	require.NoError(t, err)

	n, err := primLength(h, []heap.Value{lst})
	require.NoError(t, err)
	require.Equal(t, heap.Integer(3), n)
}

func TestLengthOfImproperListErrors(t *testing.T) {
	h := heap.NewDefault()

	v, err := primCons(h, []heap.Value{heap.Integer(1), heap.Integer(2)})
	require.NoError(t, err)

	_, err = primLength(h, []heap.Value{v})
	require.Error(t, err)
}

func TestArithmetic(t *testing.T) {
	h := heap.NewDefault()

	sum, err := primAdd(h, []heap.Value{heap.Integer(2), heap.Integer(3)})
	require.NoError(t, err)
	require.Equal(t, heap.Integer(5), sum)

	diff, err := primSub(h, []heap.Value{heap.Integer(5), heap.Integer(3)})
	require.NoError(t, err)
	require.Equal(t, heap.Integer(2), diff)

	prod, err := primMul(h, []heap.Value{heap.Integer(4), heap.Integer(3)})
	require.NoError(t, err)
	require.Equal(t, heap.Integer(12), prod)

	quot, err := primDiv(h, []heap.Value{heap.Integer(9), heap.Integer(3)})
	require.NoError(t, err)
	require.Equal(t, heap.Integer(3), quot)
}

func TestDivideByZeroErrors(t *testing.T) {
	h := heap.NewDefault()

	_, err := primDiv(h, []heap.Value{heap.Integer(1), heap.Integer(0)})
	require.Error(t, err)
	require.Contains(t, err.Error(), "division by zero")
}

func TestArithmeticOnNonNumberErrors(t *testing.T) {
	h := heap.NewDefault()

	_, err := primAdd(h, []heap.Value{heap.Boolean(true), heap.Integer(1)})
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot use + with non-numbers")
}

func TestComparisons(t *testing.T) {
	h := heap.NewDefault()

	gt, err := primGt(h, []heap.Value{heap.Integer(5), heap.Integer(3)})
	require.NoError(t, err)
	require.Equal(t, heap.Boolean(true), gt)

	lt, err := primLt(h, []heap.Value{heap.Integer(5), heap.Integer(3)})
	require.NoError(t, err)
	require.Equal(t, heap.Boolean(false), lt)

	eq, err := primNumEq(h, []heap.Value{heap.Integer(3), heap.Integer(3)})
	require.NoError(t, err)
	require.Equal(t, heap.Boolean(true), eq)
}

func TestPredicates(t *testing.T) {
	h := heap.NewDefault()

	nilv, err := primNullP(h, []heap.Value{heap.Empty})
	require.NoError(t, err)
	require.Equal(t, heap.Boolean(true), nilv)

	pairv, err := primCons(h, []heap.Value{heap.Integer(1), heap.Empty})
	require.NoError(t, err)

	isPair, err := primPairP(h, []heap.Value{pairv})
	require.NoError(t, err)
	require.Equal(t, heap.Boolean(true), isPair)

	isAtom, err := primAtomP(h, []heap.Value{heap.Integer(1)})
	require.NoError(t, err)
	require.Equal(t, heap.Boolean(true), isAtom)
}

func TestEqPIsIdentity(t *testing.T) {
	h := heap.NewDefault()

	a, err := primCons(h, []heap.Value{heap.Integer(1), heap.Empty})
	require.NoError(t, err)

	b, err := primCons(h, []heap.Value{heap.Integer(1), heap.Empty})
	require.NoError(t, err)

	same, err := primEqP(h, []heap.Value{a, a})
	require.NoError(t, err)
	require.Equal(t, heap.Boolean(true), same)

	diff, err := primEqP(h, []heap.Value{a, b})
	require.NoError(t, err)
	require.Equal(t, heap.Boolean(false), diff)
}

func TestApplyUsesTrailingListAsArguments(t *testing.T) {
	h := heap.NewDefault()

	lst, err := primList(h, []heap.Value{heap.Integer(2), heap.Integer(3)})
	require.NoError(t, err)

	plus := heap.PrimitiveValue{Name: "+", Fn: primAdd}

	v, err := primApply(h, []heap.Value{plus, lst})
	require.NoError(t, err)
	require.Equal(t, heap.Integer(5), v)
}

func TestArityErrorsOnWrongArgumentCount(t *testing.T) {
	h := heap.NewDefault()

	_, err := primCar(h, []heap.Value{})
	require.Error(t, err)

	_, err = primCons(h, []heap.Value{heap.Integer(1)})
	require.Error(t, err)
}
