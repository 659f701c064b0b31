package reader

import (
	"testing"

	"github.com/oxischeme/oxischeme/internal/heap"
	"github.com/oxischeme/oxischeme/internal/position"
	"github.com/stretchr/testify/require"
)

func readOne(t *testing.T, h *heap.Heap, src string) heap.Value {
	t.Helper()

	file := position.NewSourceFile("<test>", src)
	forms, err := New(h, file).ReadAll()
	require.NoError(t, err)
	require.Len(t, forms, 1)

	return forms[0].Value
}

func TestReadInteger(t *testing.T) {
	h := heap.NewDefault()
	v := readOne(t, h, "42")
	require.Equal(t, heap.Integer(42), v)
}

func TestReadNegativeInteger(t *testing.T) {
	h := heap.NewDefault()
	v := readOne(t, h, "-7")
	require.Equal(t, heap.Integer(-7), v)
}

func TestReadSymbol(t *testing.T) {
	h := heap.NewDefault()
	v := readOne(t, h, "foo-bar?")

	sym, ok := v.(heap.Sym)
	require.True(t, ok)
	require.Equal(t, "foo-bar?", sym.Handle.Get().String())
}

func TestReadBooleans(t *testing.T) {
	h := heap.NewDefault()
	require.Equal(t, heap.Boolean(true), readOne(t, h, "#t"))
	require.Equal(t, heap.Boolean(false), readOne(t, h, "#f"))
}

func TestReadNamedCharacter(t *testing.T) {
	h := heap.NewDefault()
	require.Equal(t, heap.Character('\n'), readOne(t, h, `#\newline`))
	require.Equal(t, heap.Character(' '), readOne(t, h, `#\space`))
	require.Equal(t, heap.Character('a'), readOne(t, h, `#\a`))
}

func TestReadString(t *testing.T) {
	h := heap.NewDefault()
	v := readOne(t, h, `"hello\nworld"`)

	s, ok := v.(heap.Str)
	require.True(t, ok)
	require.Equal(t, "hello\nworld", s.Handle.Get().String())
}

func TestReadProperList(t *testing.T) {
	h := heap.NewDefault()
	v := readOne(t, h, "(1 2 3)")

	p, ok := v.(heap.Pair)
	require.True(t, ok)
	require.Equal(t, heap.Integer(1), p.Cons.Get().Car)

	rest, ok := p.Cons.Get().Cdr.(heap.Pair)
	require.True(t, ok)
	require.Equal(t, heap.Integer(2), rest.Cons.Get().Car)
}

func TestReadDottedPair(t *testing.T) {
	h := heap.NewDefault()
	v := readOne(t, h, "(1 . 2)")

	p, ok := v.(heap.Pair)
	require.True(t, ok)
	require.Equal(t, heap.Integer(1), p.Cons.Get().Car)
	require.Equal(t, heap.Integer(2), p.Cons.Get().Cdr)
}

func TestReadQuoteSugar(t *testing.T) {
	h := heap.NewDefault()
	v := readOne(t, h, "'x")

	p, ok := v.(heap.Pair)
	require.True(t, ok)

	head, ok := p.Cons.Get().Car.(heap.Sym)
	require.True(t, ok)
	require.Equal(t, "quote", head.Handle.Get().String())
}

func TestReadSkipsComments(t *testing.T) {
	h := heap.NewDefault()
	v := readOne(t, h, "; a comment\n42 ; trailing")
	require.Equal(t, heap.Integer(42), v)
}

func TestReadAllMultipleForms(t *testing.T) {
	h := heap.NewDefault()
	file := position.NewSourceFile("<test>", "1 2 3")

	forms, err := New(h, file).ReadAll()
	require.NoError(t, err)
	require.Len(t, forms, 3)
	require.Equal(t, heap.Integer(3), forms[2].Value)
}

func TestUnterminatedListIsAnError(t *testing.T) {
	h := heap.NewDefault()
	file := position.NewSourceFile("<test>", "(1 2")

	_, err := New(h, file).ReadAll()
	require.Error(t, err)
}

func TestUnterminatedStringIsAnError(t *testing.T) {
	h := heap.NewDefault()
	file := position.NewSourceFile("<test>", `"abc`)

	_, err := New(h, file).ReadAll()
	require.Error(t, err)
}
