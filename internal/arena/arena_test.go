package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocateAndGet(t *testing.T) {
	a := New[int]("int", 4)

	h, err := a.Allocate()
	require.NoError(t, err)

	*h.Get() = 42
	require.Equal(t, 42, *h.Get())
}

func TestAllocateExhaustion(t *testing.T) {
	a := New[int]("int", 2)

	_, err := a.Allocate()
	require.NoError(t, err)

	_, err = a.Allocate()
	require.NoError(t, err)

	_, err = a.Allocate()
	require.Error(t, err)
	require.True(t, a.IsFull())
}

func TestSweepReclaimsDeadSlots(t *testing.T) {
	a := New[int]("int", 3)

	h0, _ := a.Allocate()
	h1, _ := a.Allocate()
	_, _ = a.Allocate()

	require.True(t, a.IsFull())

	a.Sweep(map[uint32]bool{h0.Index: true, h1.Index: true})

	require.False(t, a.IsFull())

	h3, err := a.Allocate()
	require.NoError(t, err)
	require.NotEqual(t, h0.Index, h3.Index)
	require.NotEqual(t, h1.Index, h3.Index)
}

func TestHandleEqualityAndZero(t *testing.T) {
	a := New[int]("int", 2)

	var zero Handle[int]
	require.True(t, zero.IsZero())

	h, _ := a.Allocate()
	require.False(t, h.IsZero())

	same := a.HandleAt(h.Index)
	require.Equal(t, h, same)
}

func TestCapacity(t *testing.T) {
	a := New[int]("int", 7)
	require.Equal(t, 7, a.Capacity())
}
