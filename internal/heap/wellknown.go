package heap

// WellKnown holds the interned symbols the analyzer and evaluator
// compare against by identity rather than by string, so dispatch on a
// pair's head is a handle comparison, not a string comparison.
type WellKnown struct {
	Quote       Value
	If          Value
	Begin       Value
	Define      Value
	Set         Value
	Lambda      Value
	Unspecified Value
	EOF         Value
}

// Wellknown returns the heap's well-known symbol table, interning each
// symbol on first use. Each accessor is idempotent: repeated calls
// return the same Sym handle.
func (h *Heap) Wellknown() WellKnown {
	return WellKnown{
		Quote:       h.MustIntern("quote"),
		If:          h.MustIntern("if"),
		Begin:       h.MustIntern("begin"),
		Define:      h.MustIntern("define"),
		Set:         h.MustIntern("set!"),
		Lambda:      h.MustIntern("lambda"),
		Unspecified: h.MustIntern("unspecified"),
		EOF:         h.MustIntern("eof"),
	}
}
