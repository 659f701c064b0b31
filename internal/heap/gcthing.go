package heap

// Kind identifies which of the heap's four arenas a Ref points into.
type Kind uint8

const (
	KindCons Kind = iota
	KindString
	KindActivation
	KindProcedure
)

func (k Kind) String() string {
	switch k {
	case KindCons:
		return "cons"
	case KindString:
		return "string"
	case KindActivation:
		return "activation"
	case KindProcedure:
		return "procedure"
	default:
		return "unknown"
	}
}

// Ref is a polymorphic GC identity: a (Kind, Index) pair that
// uniquely names a heap object regardless of which arena holds it.
// Because a Heap owns exactly one arena per Kind, Index alone
// disambiguates within that Kind — no arena pointer is needed here,
// unlike arena.Handle which must work across many arenas of the same
// element type.
type Ref struct {
	Kind  Kind
	Index uint32
}

// refOf returns the polymorphic Ref identifying v's heap object, if v
// is heap-backed. Immediates (Integer, Boolean, Character, EmptyList,
// Unbound, Unspecified) and primitives have no heap identity.
func refOf(v Value) (Ref, bool) {
	switch x := v.(type) {
	case Pair:
		return Ref{Kind: KindCons, Index: x.Cons.Index}, true
	case Str:
		return Ref{Kind: KindString, Index: x.Handle.Index}, true
	case Sym:
		return Ref{Kind: KindString, Index: x.Handle.Index}, true
	case ProcedureValue:
		return Ref{Kind: KindProcedure, Index: x.Handle.Index}, true
	default:
		return Ref{}, false
	}
}

// traceValue appends the Ref of v, if any, to refs.
func traceValue(refs []Ref, v Value) []Ref {
	if ref, ok := refOf(v); ok {
		refs = append(refs, ref)
	}

	return refs
}

// trace returns the Refs directly reachable from the heap object
// identified by ref. The mark phase uses this to walk the graph
// without knowing the concrete shape of Cons/ActivationFrame/
// Procedure; sweep then keeps anything that was ever pushed from this.
func (h *Heap) trace(ref Ref) []Ref {
	switch ref.Kind {
	case KindCons:
		c := h.arenaCons.HandleAt(ref.Index).Get()
		var refs []Ref
		refs = traceValue(refs, c.Car)
		refs = traceValue(refs, c.Cdr)

		return refs

	case KindString:
		return nil

	case KindActivation:
		a := h.arenaActivation.HandleAt(ref.Index).Get()
		var refs []Ref

		if a.Parent != nil {
			refs = append(refs, Ref{Kind: KindActivation, Index: a.Parent.Index})
		}

		for _, slot := range a.Slots {
			refs = traceValue(refs, slot)
		}

		return refs

	case KindProcedure:
		p := h.arenaProcedure.HandleAt(ref.Index).Get()
		refs := []Ref{{Kind: KindActivation, Index: p.Act.Index}}

		if p.Body != nil {
			for _, v := range p.Body.EmbeddedValues() {
				refs = traceValue(refs, v)
			}
		}

		return refs

	default:
		return nil
	}
}
