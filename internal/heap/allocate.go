package heap

import (
	goerrors "errors"

	"github.com/oxischeme/oxischeme/internal/errors"
)

// allocateCons allocates a cons cell, retrying once after a collection
// pass if the arena is momentarily exhausted. OutOfMemory only
// propagates to the caller if a full mark-and-sweep still can't free a
// slot, matching the arena's contract that capacity never grows.
func (h *Heap) allocateCons() (ConsHandle, error) {
	h.maybeCollect()

	handle, err := h.arenaCons.Allocate()
	if err != nil {
		h.CollectGarbage()

		handle, err = h.arenaCons.Allocate()
		if err != nil {
			return ConsHandle{}, err
		}
	}

	h.stats.Allocations++

	return handle, nil
}

func (h *Heap) allocateString() (StringHandle, error) {
	h.maybeCollect()

	handle, err := h.arenaString.Allocate()
	if err != nil {
		h.CollectGarbage()

		handle, err = h.arenaString.Allocate()
		if err != nil {
			return StringHandle{}, err
		}
	}

	h.stats.Allocations++

	return handle, nil
}

func (h *Heap) allocateActivation() (ActivationHandle, error) {
	h.maybeCollect()

	handle, err := h.arenaActivation.Allocate()
	if err != nil {
		h.CollectGarbage()

		handle, err = h.arenaActivation.Allocate()
		if err != nil {
			return ActivationHandle{}, err
		}
	}

	h.stats.Allocations++

	return handle, nil
}

func (h *Heap) allocateProcedure() (ProcedureHandle, error) {
	h.maybeCollect()

	handle, err := h.arenaProcedure.Allocate()
	if err != nil {
		h.CollectGarbage()

		handle, err = h.arenaProcedure.Allocate()
		if err != nil {
			return ProcedureHandle{}, err
		}
	}

	h.stats.Allocations++

	return handle, nil
}

// AllocateCons allocates a new pair and returns it already rooted, so
// the caller is safe across any allocation performed while filling in
// Car/Cdr.
func (h *Heap) AllocateCons(car, cdr Value) (Rooted, error) {
	handle, err := h.allocateCons()
	if err != nil {
		return Rooted{}, err
	}

	handle.Get().Car = car
	handle.Get().Cdr = cdr

	return h.NewRooted(Pair{Cons: handle}), nil
}

// AllocateString allocates a new mutable string holding s.
func (h *Heap) AllocateString(s string) (Rooted, error) {
	handle, err := h.allocateString()
	if err != nil {
		return Rooted{}, err
	}

	handle.Get().Chars = []rune(s)

	return h.NewRooted(Str{Handle: handle}), nil
}

// AllocateActivation allocates a new runtime scope frame with the
// given parent (nil for a frame with no lexical parent) and slotCount
// slots, all initialized to Unbound.
func (h *Heap) AllocateActivation(parent *ActivationHandle, slotCount int) (ActivationHandle, error) {
	handle, err := h.allocateActivation()
	if err != nil {
		return ActivationHandle{}, err
	}

	frame := handle.Get()
	frame.Parent = parent
	frame.Slots = make([]Value, slotCount)

	for i := range frame.Slots {
		frame.Slots[i] = Unbound
	}

	return handle, nil
}

// AllocateProcedure allocates a new closure over the given activation.
func (h *Heap) AllocateProcedure(name string, numArgs int, act ActivationHandle, body Meaning) (Rooted, error) {
	handle, err := h.allocateProcedure()
	if err != nil {
		return Rooted{}, err
	}

	p := handle.Get()
	p.Name = name
	p.NumArgs = numArgs
	p.Act = act
	p.Body = body

	return h.NewRooted(ProcedureValue{Handle: handle}), nil
}

// Intern returns the symbol value for name, allocating and caching its
// backing string the first time name is seen. Symbol strings are
// always rooted via the symbol table itself (see CollectGarbage), so
// Intern does not need to hand back a Rooted.
func (h *Heap) Intern(name string) (Value, error) {
	if handle, ok := h.symbols[name]; ok {
		return Sym{Handle: handle}, nil
	}

	rooted, err := h.AllocateString(name)
	if err != nil {
		return nil, err
	}
	defer rooted.Close()

	handle := rooted.Value().(Str).Handle
	h.symbols[name] = handle

	return Sym{Handle: handle}, nil
}

// MustIntern is Intern without an error return, for call sites
// installing well-known symbols at startup where OutOfMemory would
// mean the interpreter can't even boot.
func (h *Heap) MustIntern(name string) Value {
	v, err := h.Intern(name)
	if err != nil {
		panic(goerrors.New(errors.OutOfMemory("symbol").Error()))
	}

	return v
}
