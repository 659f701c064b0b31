// Package reader implements the S-expression reader: the external
// collaborator that turns source text into a stream of heap values
// the core can analyze. It produces (source span, value) pairs or a
// read error; a returned value is not rooted.
package reader

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/oxischeme/oxischeme/internal/diagnostic"
	"github.com/oxischeme/oxischeme/internal/heap"
	"github.com/oxischeme/oxischeme/internal/position"
)

// Form pairs a read value with the span of source text it came from.
type Form struct {
	Value heap.Value
	Span  position.Span
}

// Reader tokenizes and parses one source file's worth of text into a
// sequence of top-level forms.
type Reader struct {
	heap   *heap.Heap
	file   *position.SourceFile
	src    []rune
	pos    int
	offset int
}

// New creates a Reader over file's content, allocating values via h.
func New(h *heap.Heap, file *position.SourceFile) *Reader {
	return &Reader{heap: h, file: file, src: []rune(file.Content)}
}

func (r *Reader) here() position.Position {
	return r.file.PositionFromOffset(r.offset)
}

func (r *Reader) peek() (rune, bool) {
	if r.pos >= len(r.src) {
		return 0, false
	}

	return r.src[r.pos], true
}

func (r *Reader) advance() (rune, bool) {
	c, ok := r.peek()
	if !ok {
		return 0, false
	}

	r.pos++
	r.offset += len(string(c))

	return c, true
}

func isDelimiter(c rune) bool {
	return unicode.IsSpace(c) || c == '(' || c == ')' || c == '"' || c == ';' || c == '\''
}

func (r *Reader) skipAtmosphere() {
	for {
		c, ok := r.peek()
		if !ok {
			return
		}

		if unicode.IsSpace(c) {
			r.advance()
			continue
		}

		if c == ';' {
			for {
				c, ok := r.advance()
				if !ok || c == '\n' {
					break
				}
			}

			continue
		}

		return
	}
}

// ReadAll reads every top-level form in the source file. Callers that
// analyze/evaluate forms one at a time with GC-triggering allocations
// in between should use ReadForm instead: the forms returned here are
// plain Go values, unrooted the moment ReadAll returns, so a
// collection triggered while working through the slice can reclaim
// the heap structure of forms not yet consumed.
func (r *Reader) ReadAll() ([]Form, error) {
	var forms []Form

	for {
		form, ok, err := r.ReadForm()
		if err != nil {
			return nil, err
		}

		if !ok {
			return forms, nil
		}

		forms = append(forms, form)
	}
}

// ReadForm reads the next top-level form, returning ok == false at
// end of input. Evaluating a form fully before reading the next is
// what keeps every not-yet-evaluated form reachable only as source
// text — never as an unrooted heap value sitting out a GC safepoint.
func (r *Reader) ReadForm() (Form, bool, error) {
	r.skipAtmosphere()
	if _, ok := r.peek(); !ok {
		return Form{}, false, nil
	}

	start := r.here()

	v, err := r.readForm()
	if err != nil {
		return Form{}, false, err
	}

	end := r.here()

	return Form{Value: v, Span: position.Span{Start: start, End: end}}, true, nil
}

func (r *Reader) readError(format string, args ...interface{}) error {
	span := position.Span{Start: r.here(), End: r.here()}
	d := diagnostic.ReadError(span, format, args...)

	return fmt.Errorf("%s", d.PlainString())
}

func (r *Reader) readForm() (heap.Value, error) {
	r.skipAtmosphere()

	c, ok := r.peek()
	if !ok {
		return nil, r.readError("unexpected end of input")
	}

	switch {
	case c == '(':
		r.advance()
		return r.readList()

	case c == ')':
		return nil, r.readError("unexpected )")

	case c == '\'':
		r.advance()
		return r.readQuote()

	case c == '"':
		r.advance()
		return r.readString()

	case c == '#':
		return r.readHash()

	default:
		return r.readAtom()
	}
}

// readList reads a (possibly dotted) list's elements. Each element is
// rooted the instant it's read and held rooted until buildList has
// consed it in: readForm itself hands back an already-unrooted Value
// (any Rooted it allocated internally is Closed before it returns), so
// without this, an element sitting in a plain Go slice while a later
// sibling element's own allocation trips a collection would be
// reachable from nowhere the collector knows about and could be swept
// out from under the list being built.
func (r *Reader) readList() (heap.Value, error) {
	var elems []heap.Rooted
	defer func() { closeAll(elems) }()

	for {
		r.skipAtmosphere()

		c, ok := r.peek()
		if !ok {
			return nil, r.readError("unterminated list")
		}

		if c == ')' {
			r.advance()
			return r.buildList(elems, heap.Empty)
		}

		if c == '.' && r.pos+1 < len(r.src) && isDelimiter(r.src[r.pos+1]) {
			r.advance()

			tail, err := r.readForm()
			if err != nil {
				return nil, err
			}

			tailRoot := r.heap.NewRooted(tail)
			defer tailRoot.Close()

			r.skipAtmosphere()

			closeParen, ok := r.advance()
			if !ok || closeParen != ')' {
				return nil, r.readError("malformed dotted list")
			}

			return r.buildList(elems, tailRoot.Value())
		}

		v, err := r.readForm()
		if err != nil {
			return nil, err
		}

		elems = append(elems, r.heap.NewRooted(v))
	}
}

func closeAll(roots []heap.Rooted) {
	for _, ro := range roots {
		ro.Close()
	}
}

func (r *Reader) buildList(elems []heap.Rooted, tail heap.Value) (heap.Value, error) {
	result := r.heap.NewRooted(tail)
	defer result.Close()

	for i := len(elems) - 1; i >= 0; i-- {
		cell, err := r.heap.AllocateCons(elems[i].Value(), result.Value())
		if err != nil {
			return nil, err
		}

		result.Set(cell.Value())
		cell.Close()
	}

	return result.Value(), nil
}

func (r *Reader) readQuote() (heap.Value, error) {
	v, err := r.readForm()
	if err != nil {
		return nil, err
	}

	vRoot := r.heap.NewRooted(v)
	defer vRoot.Close()

	quote, err := r.heap.Intern("quote")
	if err != nil {
		return nil, err
	}

	return r.buildList([]heap.Rooted{r.heap.NewRooted(quote), vRoot}, heap.Empty)
}

func (r *Reader) readString() (heap.Value, error) {
	var b strings.Builder

	for {
		c, ok := r.advance()
		if !ok {
			return nil, r.readError("unterminated string")
		}

		if c == '"' {
			break
		}

		if c == '\\' {
			esc, ok := r.advance()
			if !ok {
				return nil, r.readError("unterminated string escape")
			}

			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteRune(esc)
			}

			continue
		}

		b.WriteRune(c)
	}

	rooted, err := r.heap.AllocateString(b.String())
	if err != nil {
		return nil, err
	}
	defer rooted.Close()

	return rooted.Value(), nil
}

func (r *Reader) readHash() (heap.Value, error) {
	r.advance() // consume '#'

	c, ok := r.peek()
	if !ok {
		return nil, r.readError("unexpected end of input after #")
	}

	switch c {
	case 't':
		r.advance()
		return heap.Boolean(true), nil

	case 'f':
		r.advance()
		return heap.Boolean(false), nil

	case '\\':
		r.advance()
		return r.readCharacter()

	default:
		return nil, r.readError("unrecognized # syntax")
	}
}

var namedChars = map[string]rune{
	"space":   ' ',
	"newline": '\n',
	"tab":     '\t',
	"return":  '\r',
	"null":    0,
	"delete":  0x7f,
	"escape":  0x1b,
}

func (r *Reader) readCharacter() (heap.Value, error) {
	var b strings.Builder

	first, ok := r.advance()
	if !ok {
		return nil, r.readError("unterminated character literal")
	}

	b.WriteRune(first)

	for {
		c, ok := r.peek()
		if !ok || isDelimiter(c) {
			break
		}

		b.WriteRune(c)
		r.advance()
	}

	name := b.String()
	if len(name) == 1 {
		return heap.Character([]rune(name)[0]), nil
	}

	if ch, ok := namedChars[strings.ToLower(name)]; ok {
		return heap.Character(ch), nil
	}

	return nil, r.readError("unrecognized character literal #\\%s", name)
}

func (r *Reader) readAtom() (heap.Value, error) {
	var b strings.Builder

	for {
		c, ok := r.peek()
		if !ok || isDelimiter(c) {
			break
		}

		b.WriteRune(c)
		r.advance()
	}

	text := b.String()
	if text == "" {
		return nil, r.readError("empty atom")
	}

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return heap.Integer(n), nil
	}

	return r.heap.Intern(text)
}
