package heap

// Rooted is a scope-bound smart handle over a Value. Constructing one
// (via Heap.NewRooted, or any Heap.Allocate* method) registers the
// value's heap object — if it has one — in the root multiset, keeping
// it alive across any collection that runs while it's in scope. Go has
// no destructors, so callers are expected to defer Close, the same way
// the rest of this codebase defers Unlock after taking a lock.
type Rooted struct {
	heap    *Heap
	value   Value
	ref     Ref
	hasRoot bool
}

// NewRooted wraps v, rooting its heap object for the lifetime of the
// returned Rooted. Values with no heap identity (integers, booleans,
// characters, the empty list, primitives) are wrapped with no-op
// rooting.
func (h *Heap) NewRooted(v Value) Rooted {
	ref, ok := refOf(v)
	if ok {
		h.addRoot(ref)
	}

	return Rooted{heap: h, value: v, ref: ref, hasRoot: ok}
}

// Value returns the wrapped value.
func (r Rooted) Value() Value {
	return r.value
}

// Close deregisters the root. Safe to call on a zero Rooted or to call
// twice only if the caller tracks that themselves — like Close on a
// file, calling it twice under-counts the root multiset.
func (r Rooted) Close() {
	if r.hasRoot {
		r.heap.dropRoot(r.ref)
	}
}

// Clone registers a second, independent root over the same value. The
// original and the clone must each be Closed exactly once.
func (r Rooted) Clone() Rooted {
	if r.hasRoot {
		r.heap.addRoot(r.ref)
	}

	return Rooted{heap: r.heap, value: r.value, ref: r.ref, hasRoot: r.hasRoot}
}

// Set replaces the wrapped value in place, deregistering the old root
// (if any) and registering the new one (if any) — the "emplace"
// operation: a single Rooted slot that gets reused for a sequence of
// intermediate results without a root leaking between them.
func (r *Rooted) Set(v Value) {
	if r.hasRoot {
		r.heap.dropRoot(r.ref)
	}

	ref, ok := refOf(v)
	if ok {
		r.heap.addRoot(ref)
	}

	r.value, r.ref, r.hasRoot = v, ref, ok
}

// RootedActivation roots an ActivationHandle directly. Activations
// never surface as a Scheme Value, but the evaluator must still pin
// the activation it is currently executing against — and any
// activation it has just built for a tail call — across every
// allocation in between, the same way Rooted pins Values.
type RootedActivation struct {
	heap *Heap
	act  ActivationHandle
	ref  Ref
}

// NewRootedActivation roots act for the lifetime of the returned
// handle.
func (h *Heap) NewRootedActivation(act ActivationHandle) RootedActivation {
	ref := Ref{Kind: KindActivation, Index: act.Index}
	h.addRoot(ref)

	return RootedActivation{heap: h, act: act, ref: ref}
}

// Handle returns the wrapped activation.
func (r RootedActivation) Handle() ActivationHandle {
	return r.act
}

// Close deregisters the root.
func (r RootedActivation) Close() {
	r.heap.dropRoot(r.ref)
}

// Reset re-points this RootedActivation at a new activation,
// deregistering the old root and registering the new one.
func (r *RootedActivation) Reset(act ActivationHandle) {
	r.heap.dropRoot(r.ref)
	r.act = act
	r.ref = Ref{Kind: KindActivation, Index: act.Index}
	r.heap.addRoot(r.ref)
}
