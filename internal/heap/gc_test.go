package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCyclicConsIsCollectedWhenUnrooted covers the scenario-f
// requirement: set-cdr! can build a self-referential cons, and once
// nothing roots it, collection must reclaim it rather than looping or
// leaking forever on a reference cycle the collector can't see as
// unreachable.
func TestCyclicConsIsCollectedWhenUnrooted(t *testing.T) {
	cfg := smallConfig()
	cfg.ConsCapacity = 1
	h := New(cfg)

	rooted, err := h.AllocateCons(Integer(1), Empty)
	require.NoError(t, err)

	pair := rooted.Value().(Pair)
	pair.Cons.Get().Cdr = rooted.Value() // p's cdr now points back at itself

	rooted.Close() // drop the only root
	require.True(t, h.arenaCons.IsFull())

	h.CollectGarbage()

	require.False(t, h.arenaCons.IsFull())
}

func TestTraceWalksActivationParentChain(t *testing.T) {
	h := New(smallConfig())

	outer, err := h.AllocateActivation(nil, 1)
	require.NoError(t, err)
	h.Define(outer, 0, Integer(5))

	outerRoot := h.NewRootedActivation(outer)
	defer outerRoot.Close()

	inner, err := h.AllocateActivation(&outer, 0)
	require.NoError(t, err)
	innerRoot := h.NewRootedActivation(inner)
	defer innerRoot.Close()

	h.CollectGarbage()

	v, err := h.Fetch(inner, 1, 0)
	require.NoError(t, err)
	require.Equal(t, Integer(5), v)
}
