package heap

// CollectGarbage runs a full mark-and-sweep pass: seed the pending set
// from the root multiset, the symbol table, and the global activation,
// depth-first walk the reference graph, then sweep every arena's
// free list down to the complement of what was marked.
func (h *Heap) CollectGarbage() {
	marked := make(map[Ref]bool)
	pending := h.seedRoots()

	for len(pending) > 0 {
		ref := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if marked[ref] {
			continue
		}

		marked[ref] = true
		pending = append(pending, h.trace(ref)...)
	}

	live := splitByKind(marked)

	h.arenaCons.Sweep(live[KindCons])
	h.arenaString.Sweep(live[KindString])
	h.arenaActivation.Sweep(live[KindActivation])
	h.arenaProcedure.Sweep(live[KindProcedure])

	h.stats.Collections++
	h.sinceGC = 0
}

// seedRoots gathers every Ref that must survive regardless of
// reachability through another heap object: the root multiset (live
// Rooted handles), every interned symbol string, and the global
// activation.
func (h *Heap) seedRoots() []Ref {
	pending := make([]Ref, 0, len(h.roots)+len(h.symbols)+1)

	for ref := range h.roots {
		pending = append(pending, ref)
	}

	for _, handle := range h.symbols {
		pending = append(pending, Ref{Kind: KindString, Index: handle.Index})
	}

	pending = append(pending, Ref{Kind: KindActivation, Index: h.global.Index})

	return pending
}

// splitByKind partitions a marked set into the per-arena liveness maps
// that Arena.Sweep expects.
func splitByKind(marked map[Ref]bool) map[Kind]map[uint32]bool {
	out := map[Kind]map[uint32]bool{
		KindCons:       {},
		KindString:     {},
		KindActivation: {},
		KindProcedure:  {},
	}

	for ref := range marked {
		out[ref.Kind][ref.Index] = true
	}

	return out
}
