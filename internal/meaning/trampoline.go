package meaning

import (
	"github.com/oxischeme/oxischeme/internal/errors"
	"github.com/oxischeme/oxischeme/internal/heap"
)

// Trampoline is the result of one evaluation step: either a final
// Value, or a Thunk — a deferred (activation, meaning) pair that Run
// resumes without growing the host call stack. This is what makes a
// self-tail-call loop execute in O(1) Go stack depth regardless of
// iteration count.
type Trampoline struct {
	value   heap.Value
	act     heap.ActivationHandle
	next    Meaning
	isThunk bool
}

// Val wraps a final value.
func Val(v heap.Value) Trampoline {
	return Trampoline{value: v}
}

// Thunk defers to another evaluation step against the given
// activation and meaning.
func Thunk(act heap.ActivationHandle, m Meaning) Trampoline {
	return Trampoline{act: act, next: m, isThunk: true}
}

// Run drives a meaning to completion: it repeatedly calls
// evaluateToThunk, rooting the activation currently in play across
// every allocation, until a final Value is produced.
func Run(h *heap.Heap, act heap.ActivationHandle, m Meaning) (heap.Value, error) {
	return drive(h, Thunk(act, m))
}

// ApplyFull applies proc to args and drives the result to completion.
// Used by the apply primitive, which is not itself in the trampoline's
// tail position the way an ordinary Invocation is: a Go primitive
// call must return a plain Value, so a chain of applies costs one Go
// stack frame per link in the chain rather than the O(1) the
// trampoline gives a direct self-tail-call. That tradeoff is confined
// to apply; every other call path, including loops written with
// ordinary tail calls, still runs in bounded host-stack depth.
func ApplyFull(h *heap.Heap, proc heap.Value, args []heap.Value) (heap.Value, error) {
	t, err := Apply(h, proc, args)
	if err != nil {
		return nil, err
	}

	return drive(h, t)
}

// drive repeatedly resolves a Trampoline's thunk until a final Value
// is produced, rooting whichever activation is currently in play.
func drive(h *heap.Heap, t Trampoline) (heap.Value, error) {
	if !t.isThunk {
		return t.value, nil
	}

	actRoot := h.NewRootedActivation(t.act)
	defer actRoot.Close()

	m := t.next

	for {
		next, err := evaluateToThunk(h, actRoot.Handle(), m)
		if err != nil {
			return nil, err
		}

		if !next.isThunk {
			return next.value, nil
		}

		actRoot.Reset(next.act)
		m = next.next
	}
}

// evaluateToThunk dispatches on the meaning variant, performing
// exactly one step of evaluation. A step that ends in another
// evaluation to be performed in tail position returns a Thunk instead
// of recursing.
func evaluateToThunk(h *heap.Heap, act heap.ActivationHandle, m Meaning) (Trampoline, error) {
	switch node := m.(type) {
	case Quotation:
		return Val(node.Value), nil

	case Reference:
		v, err := h.Fetch(act, node.Coord.FrameHops, node.Coord.Slot)
		if err != nil {
			if errors.Is(err, errors.CategoryBinding) {
				return Trampoline{}, errors.UnboundReference(node.Name)
			}

			return Trampoline{}, err
		}

		return Val(v), nil

	case Definition:
		v, err := Run(h, act, node.Value)
		if err != nil {
			return Trampoline{}, err
		}

		h.Define(act, node.Coord.Slot, v)

		return Val(h.Wellknown().Unspecified), nil

	case SetVariable:
		v, err := Run(h, act, node.Value)
		if err != nil {
			return Trampoline{}, err
		}

		if err := h.Update(act, node.Coord.FrameHops, node.Coord.Slot, v); err != nil {
			if errors.Is(err, errors.CategoryBinding) {
				return Trampoline{}, errors.UnboundSet(node.Name)
			}

			return Trampoline{}, err
		}

		return Val(h.Wellknown().Unspecified), nil

	case Conditional:
		c, err := Run(h, act, node.Cond)
		if err != nil {
			return Trampoline{}, err
		}

		if heap.Eq(c, heap.Boolean(false)) {
			return Thunk(act, node.Alt), nil
		}

		return Thunk(act, node.Conseq), nil

	case Sequence:
		if _, err := Run(h, act, node.First); err != nil {
			return Trampoline{}, err
		}

		return Thunk(act, node.Second), nil

	case Lambda:
		rooted, err := h.AllocateProcedure(node.Name, node.Arity, act, node.Body)
		if err != nil {
			return Trampoline{}, err
		}
		defer rooted.Close()

		return Val(rooted.Value()), nil

	case Invocation:
		return evaluateInvocation(h, act, node)

	default:
		return Trampoline{}, errors.New(errors.CategorySyntax, "unrecognized meaning node", nil)
	}
}

// evaluateInvocation evaluates the operator and operands (neither in
// tail position — each is run to completion), then applies. The
// application itself, for a user-defined Procedure, returns a Thunk:
// that's the one step in this whole evaluator that is in tail
// position, and it's exactly the step that must not recurse.
func evaluateInvocation(h *heap.Heap, act heap.ActivationHandle, inv Invocation) (Trampoline, error) {
	procVal, err := Run(h, act, inv.Proc)
	if err != nil {
		return Trampoline{}, err
	}

	procRoot := h.NewRooted(procVal)
	defer procRoot.Close()

	args := make([]heap.Value, 0, len(inv.Args))
	argRoots := make([]heap.Rooted, 0, len(inv.Args))

	defer func() {
		for _, r := range argRoots {
			r.Close()
		}
	}()

	for _, argMeaning := range inv.Args {
		v, err := Run(h, act, argMeaning)
		if err != nil {
			return Trampoline{}, err
		}

		r := h.NewRooted(v)
		argRoots = append(argRoots, r)
		args = append(args, v)
	}

	return Apply(h, procRoot.Value(), args)
}

// Apply dispatches a call to either a built-in PrimitiveValue or a
// user-defined ProcedureValue. For a PrimitiveValue, the Go function
// runs directly and its result is returned as a final Value; a
// primitive never yields a Thunk (the apply primitive drives its
// callee to completion through ApplyFull). For a ProcedureValue, arity
// is checked, a fresh activation is built with args as its slots and
// the closed-over activation as parent, and a Thunk defers the body
// to the trampoline's next iteration.
func Apply(h *heap.Heap, proc heap.Value, args []heap.Value) (Trampoline, error) {
	switch p := proc.(type) {
	case heap.PrimitiveValue:
		v, err := p.Fn(h, args)
		if err != nil {
			return Trampoline{}, err
		}

		return Val(v), nil

	case heap.ProcedureValue:
		procedure := p.Handle.Get()

		if len(args) != procedure.NumArgs {
			name := procedure.Name
			if name == "" {
				name = "#<procedure>"
			}

			return Trampoline{}, errors.ArityMismatch(name, procedure.NumArgs, len(args))
		}

		parent := procedure.Act
		newAct, err := h.AllocateActivation(&parent, len(args))
		if err != nil {
			return Trampoline{}, err
		}

		for i, a := range args {
			if err := h.BindParam(newAct, i, a); err != nil {
				return Trampoline{}, err
			}
		}

		return Thunk(newAct, procedure.Body.(Meaning)), nil

	default:
		return Trampoline{}, errors.New(errors.CategoryType,
			"cannot apply a non-procedure value", nil)
	}
}
