// Package printer formats heap values for display: the REPL's result
// echo and the print primitive both route through it. It is a pure
// reader of the heap — it never allocates — and only external
// interface the core specifies without constraining its internals.
package printer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oxischeme/oxischeme/internal/heap"
)

// namedChars are the escapes used for characters with no printable
// single-glyph form.
var namedChars = map[rune]string{
	' ':  "space",
	'\n': "newline",
	'\t': "tab",
	'\r': "return",
	0:    "null",
	0x7f: "delete",
	0x1b: "escape",
}

// Print formats v as a string, detecting cycles via a seen-set so that
// shared or circular structure (e.g. a pair whose cdr points back to
// itself) renders as "<cyclic value>" instead of looping forever.
func Print(v heap.Value) string {
	var b strings.Builder
	print(&b, v, make(map[heap.Ref]bool))

	return b.String()
}

func refOfPair(p heap.Pair) heap.Ref {
	return heap.Ref{Kind: heap.KindCons, Index: p.Cons.Index}
}

func print(b *strings.Builder, v heap.Value, seen map[heap.Ref]bool) {
	switch x := v.(type) {
	case heap.EmptyList:
		b.WriteString("()")

	case heap.Pair:
		ref := refOfPair(x)
		if seen[ref] {
			b.WriteString("<cyclic value>")
			return
		}

		seen[ref] = true
		b.WriteByte('(')
		printPairBody(b, x, seen)
		b.WriteByte(')')

	case heap.Str:
		b.WriteByte('"')
		b.WriteString(escapeString(x.Handle.Get().String()))
		b.WriteByte('"')

	case heap.Sym:
		b.WriteString(x.Handle.Get().String())

	case heap.Integer:
		b.WriteString(strconv.FormatInt(int64(x), 10))

	case heap.Boolean:
		if x {
			b.WriteString("#t")
		} else {
			b.WriteString("#f")
		}

	case heap.Character:
		b.WriteString(printChar(rune(x)))

	case heap.ProcedureValue:
		name := x.Handle.Get().Name
		if name == "" {
			fmt.Fprintf(b, "#<procedure>")
		} else {
			fmt.Fprintf(b, "#<procedure %s>", name)
		}

	case heap.PrimitiveValue:
		fmt.Fprintf(b, "#<primitive %s>", x.Name)

	default:
		b.WriteString("#<unspecified>")
	}
}

func printPairBody(b *strings.Builder, p heap.Pair, seen map[heap.Ref]bool) {
	print(b, p.Cons.Get().Car, seen)

	switch cdr := p.Cons.Get().Cdr.(type) {
	case heap.EmptyList:
		return
	case heap.Pair:
		ref := refOfPair(cdr)
		if seen[ref] {
			b.WriteString(" . <cyclic value>")
			return
		}

		seen[ref] = true
		b.WriteByte(' ')
		printPairBody(b, cdr, seen)
	default:
		b.WriteString(" . ")
		print(b, cdr, seen)
	}
}

func printChar(r rune) string {
	if name, ok := namedChars[r]; ok {
		return "#\\" + name
	}

	return "#\\" + string(r)
}

func escapeString(s string) string {
	var b strings.Builder

	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}
