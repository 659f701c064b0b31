package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefineThenFetch(t *testing.T) {
	h := New(smallConfig())

	act, err := h.AllocateActivation(nil, 0)
	require.NoError(t, err)

	h.Define(act, 2, Integer(99))

	v, err := h.Fetch(act, 0, 2)
	require.NoError(t, err)
	require.Equal(t, Integer(99), v)
}

func TestFetchUnboundSlotErrors(t *testing.T) {
	h := New(smallConfig())

	act, err := h.AllocateActivation(nil, 3)
	require.NoError(t, err)

	_, err = h.Fetch(act, 0, 1)
	require.Error(t, err)
}

func TestFetchOutOfBoundsErrors(t *testing.T) {
	h := New(smallConfig())

	act, err := h.AllocateActivation(nil, 1)
	require.NoError(t, err)

	_, err = h.Fetch(act, 0, 5)
	require.Error(t, err)
}

func TestUpdateOnUnboundSlotErrors(t *testing.T) {
	h := New(smallConfig())

	act, err := h.AllocateActivation(nil, 2)
	require.NoError(t, err)

	err = h.Update(act, 0, 0, Integer(1))
	require.Error(t, err, "set! on a never-defined slot must fail")
}

func TestUpdateOnBoundSlotSucceeds(t *testing.T) {
	h := New(smallConfig())

	act, err := h.AllocateActivation(nil, 1)
	require.NoError(t, err)

	require.NoError(t, h.BindParam(act, 0, Integer(1)))
	require.NoError(t, h.Update(act, 0, 0, Integer(2)))

	v, err := h.Fetch(act, 0, 0)
	require.NoError(t, err)
	require.Equal(t, Integer(2), v)
}

func TestFetchWalksParentChain(t *testing.T) {
	h := New(smallConfig())

	outer, err := h.AllocateActivation(nil, 1)
	require.NoError(t, err)
	h.Define(outer, 0, Integer(10))

	inner, err := h.AllocateActivation(&outer, 1)
	require.NoError(t, err)
	require.NoError(t, h.BindParam(inner, 0, Integer(20)))

	v, err := h.Fetch(inner, 1, 0)
	require.NoError(t, err)
	require.Equal(t, Integer(10), v)

	v, err = h.Fetch(inner, 0, 0)
	require.NoError(t, err)
	require.Equal(t, Integer(20), v)
}

func TestBindParamOnOutOfBoundsSlotErrors(t *testing.T) {
	h := New(smallConfig())

	act, err := h.AllocateActivation(nil, 1)
	require.NoError(t, err)

	err = h.BindParam(act, 5, Integer(1))
	require.Error(t, err)
}
