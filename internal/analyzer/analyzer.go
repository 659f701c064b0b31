// Package analyzer implements the static analysis pass: it turns a
// source Value (as produced by the reader) into a closed, executable
// meaning.Meaning, resolving every variable reference to a
// (frame-hops, slot-index) coordinate and validating syntactic shape
// once, so the evaluator never has to re-parse or re-classify a form.
package analyzer

import (
	"github.com/oxischeme/oxischeme/internal/errors"
	"github.com/oxischeme/oxischeme/internal/heap"
	"github.com/oxischeme/oxischeme/internal/meaning"
	"github.com/oxischeme/oxischeme/internal/senv"
)

// Analyzer holds the heap handle and the well-known symbols it
// resolved from it. Forward declarations for set!/reference reserve
// static slots by name and intern nothing.
type Analyzer struct {
	heap *heap.Heap
	wk   heap.WellKnown
}

// New creates an Analyzer bound to h.
func New(h *heap.Heap) *Analyzer {
	return &Analyzer{heap: h, wk: h.Wellknown()}
}

// Analyze transforms v into a Meaning, resolving references against
// env. env is mutated in place: lambda analysis pushes and pops
// frames, and define/set!/reference analysis may add slots to the
// innermost or global frame.
func (a *Analyzer) Analyze(env *senv.Environment, v heap.Value) (meaning.Meaning, error) {
	switch x := v.(type) {
	case heap.Pair:
		return a.analyzeForm(env, x)

	case heap.EmptyList:
		return nil, errors.New(errors.CategorySyntax, "cannot evaluate the empty list", nil)

	case heap.Sym:
		return a.analyzeReference(env, x)

	default:
		// Self-evaluating atoms: strings, integers, booleans,
		// characters.
		return meaning.Quotation{Value: v}, nil
	}
}

func (a *Analyzer) analyzeReference(env *senv.Environment, sym heap.Sym) (meaning.Meaning, error) {
	name := sym.Handle.Get().String()

	coord, ok := env.Lookup(name)
	if !ok {
		// Runtime lookup may still fail with "undefined" if no
		// definition ever executes; analysis merely reserves the slot.
		coord = env.DefineGlobal(name)
	}

	return meaning.Reference{Name: name, Coord: coord}, nil
}

// toSlice walks a value expected to be a proper list, returning its
// elements in order. ok is false if v is not EmptyList-terminated.
func toSlice(v heap.Value) (elems []heap.Value, ok bool) {
	for {
		switch x := v.(type) {
		case heap.EmptyList:
			return elems, true
		case heap.Pair:
			elems = append(elems, x.Cons.Get().Car)
			v = x.Cons.Get().Cdr
		default:
			return elems, false
		}
	}
}

func symbolName(v heap.Value) (string, bool) {
	sym, ok := v.(heap.Sym)
	if !ok {
		return "", false
	}

	return sym.Handle.Get().String(), true
}

func (a *Analyzer) analyzeForm(env *senv.Environment, form heap.Pair) (meaning.Meaning, error) {
	elems, proper := toSlice(form)
	if !proper || len(elems) == 0 {
		return nil, errors.New(errors.CategorySyntax, "improperly formed combination", nil)
	}

	head := elems[0]

	if heap.Eq(head, a.wk.Quote) {
		return a.analyzeQuote(elems)
	}

	if heap.Eq(head, a.wk.If) {
		return a.analyzeIf(env, elems)
	}

	if heap.Eq(head, a.wk.Begin) {
		return a.analyzeBegin(env, elems)
	}

	if heap.Eq(head, a.wk.Define) {
		return a.analyzeDefine(env, elems)
	}

	if heap.Eq(head, a.wk.Set) {
		return a.analyzeSet(env, elems)
	}

	if heap.Eq(head, a.wk.Lambda) {
		return a.analyzeLambda(env, elems)
	}

	return a.analyzeInvocation(env, elems)
}

func (a *Analyzer) analyzeQuote(elems []heap.Value) (meaning.Meaning, error) {
	if len(elems) != 2 {
		return nil, errors.New(errors.CategorySyntax, "quote expects exactly 1 argument", nil)
	}

	return meaning.Quotation{Value: elems[1]}, nil
}

func (a *Analyzer) analyzeIf(env *senv.Environment, elems []heap.Value) (meaning.Meaning, error) {
	if len(elems) != 4 {
		return nil, errors.New(errors.CategorySyntax, "if expects exactly 3 arguments", nil)
	}

	cond, err := a.Analyze(env, elems[1])
	if err != nil {
		return nil, err
	}

	conseq, err := a.Analyze(env, elems[2])
	if err != nil {
		return nil, err
	}

	alt, err := a.Analyze(env, elems[3])
	if err != nil {
		return nil, err
	}

	return meaning.Conditional{Cond: cond, Conseq: conseq, Alt: alt}, nil
}

func (a *Analyzer) analyzeBegin(env *senv.Environment, elems []heap.Value) (meaning.Meaning, error) {
	body := elems[1:]
	if len(body) == 0 {
		return nil, errors.New(errors.CategorySyntax, "begin expects at least 1 expression", nil)
	}

	return a.analyzeSequence(env, body)
}

// analyzeSequence left-folds a list of forms into a chain of
// Sequence(first, Sequence(second, ...)); a single-element body
// reduces to analyzing that one form directly.
func (a *Analyzer) analyzeSequence(env *senv.Environment, forms []heap.Value) (meaning.Meaning, error) {
	if len(forms) == 1 {
		return a.Analyze(env, forms[0])
	}

	first, err := a.Analyze(env, forms[0])
	if err != nil {
		return nil, err
	}

	rest, err := a.analyzeSequence(env, forms[1:])
	if err != nil {
		return nil, err
	}

	return meaning.Sequence{First: first, Second: rest}, nil
}

func (a *Analyzer) analyzeDefine(env *senv.Environment, elems []heap.Value) (meaning.Meaning, error) {
	if len(elems) < 3 {
		return nil, errors.New(errors.CategorySyntax, "define expects a name and a value", nil)
	}

	// Procedure-definition sugar: (define (name p1 ... pk) body ...)
	// is equivalent to (define name (lambda (p1 ... pk) body ...)).
	if headForm, ok := elems[1].(heap.Pair); ok {
		nameAndParams, proper := toSlice(headForm)
		if !proper || len(nameAndParams) == 0 {
			return nil, errors.New(errors.CategorySyntax, "malformed procedure definition header", nil)
		}

		name, ok := symbolName(nameAndParams[0])
		if !ok {
			return nil, errors.New(errors.CategorySyntax, "define's first argument must be a symbol", nil)
		}

		params, err := symbolNames(nameAndParams[1:])
		if err != nil {
			return nil, err
		}

		valueMeaning, err := a.analyzeLambdaBody(env, params, elems[2:])
		if err != nil {
			return nil, err
		}

		if lambda, ok := valueMeaning.(meaning.Lambda); ok {
			lambda.Name = name
			valueMeaning = lambda
		}

		coord := env.Define(name)

		return meaning.Definition{Coord: coord, Value: valueMeaning}, nil
	}

	if len(elems) != 3 {
		return nil, errors.New(errors.CategorySyntax, "define expects exactly 2 arguments", nil)
	}

	name, ok := symbolName(elems[1])
	if !ok {
		return nil, errors.New(errors.CategorySyntax, "define's first argument must be a symbol", nil)
	}

	valueMeaning, err := a.Analyze(env, elems[2])
	if err != nil {
		return nil, err
	}

	// Attach the defined name to a directly-defined lambda so arity
	// errors and the printer can refer to it by name instead of
	// "#<procedure>".
	if lambda, ok := valueMeaning.(meaning.Lambda); ok {
		lambda.Name = name
		valueMeaning = lambda
	}

	coord := env.Define(name)

	return meaning.Definition{Coord: coord, Value: valueMeaning}, nil
}

func (a *Analyzer) analyzeSet(env *senv.Environment, elems []heap.Value) (meaning.Meaning, error) {
	if len(elems) != 3 {
		return nil, errors.New(errors.CategorySyntax, "set! expects exactly 2 arguments", nil)
	}

	name, ok := symbolName(elems[1])
	if !ok {
		return nil, errors.New(errors.CategorySyntax, "set!'s first argument must be a symbol", nil)
	}

	valueMeaning, err := a.Analyze(env, elems[2])
	if err != nil {
		return nil, err
	}

	coord, found := env.Lookup(name)
	if !found {
		// Defer the error to runtime: the historical source reserves
		// a global slot here rather than rejecting a set! that
		// textually precedes its define.
		coord = env.DefineGlobal(name)
	}

	return meaning.SetVariable{Name: name, Coord: coord, Value: valueMeaning}, nil
}

func symbolNames(elems []heap.Value) ([]string, error) {
	names := make([]string, len(elems))

	for i, p := range elems {
		name, ok := symbolName(p)
		if !ok {
			return nil, errors.New(errors.CategorySyntax, "expected a symbol", nil)
		}

		names[i] = name
	}

	return names, nil
}

func (a *Analyzer) analyzeLambda(env *senv.Environment, elems []heap.Value) (meaning.Meaning, error) {
	if len(elems) < 3 {
		return nil, errors.New(errors.CategorySyntax, "lambda expects a parameter list and at least 1 body expression", nil)
	}

	paramElems, proper := toSlice(elems[1])
	if !proper {
		return nil, errors.New(errors.CategorySyntax, "lambda's parameter list must be a proper list", nil)
	}

	params, err := symbolNames(paramElems)
	if err != nil {
		return nil, errors.New(errors.CategorySyntax, "lambda parameters must be symbols", nil)
	}

	return a.analyzeLambdaBody(env, params, elems[2:])
}

// analyzeLambdaBody extends env with params, analyzes bodyForms as a
// single Sequence, pops env, and wraps the result as a Lambda. Shared
// by the literal (lambda (params) body...) form and the
// (define (name params) body...) procedure-definition sugar.
func (a *Analyzer) analyzeLambdaBody(env *senv.Environment, params []string, bodyForms []heap.Value) (meaning.Meaning, error) {
	if len(bodyForms) == 0 {
		return nil, errors.New(errors.CategorySyntax, "lambda expects at least 1 body expression", nil)
	}

	env.Extend(params)
	body, err := a.analyzeSequence(env, bodyForms)
	env.Pop()

	if err != nil {
		return nil, err
	}

	return meaning.Lambda{Arity: len(params), Body: body}, nil
}

func (a *Analyzer) analyzeInvocation(env *senv.Environment, elems []heap.Value) (meaning.Meaning, error) {
	proc, err := a.Analyze(env, elems[0])
	if err != nil {
		return nil, err
	}

	args := make([]meaning.Meaning, len(elems)-1)

	for i, argForm := range elems[1:] {
		argMeaning, err := a.Analyze(env, argForm)
		if err != nil {
			return nil, err
		}

		args[i] = argMeaning
	}

	return meaning.Invocation{Proc: proc, Args: args}, nil
}
