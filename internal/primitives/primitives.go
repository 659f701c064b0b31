// Package primitives implements the core's built-in procedures and
// installs them into a heap's global activation and static
// environment, so analyzed invocations of their names resolve exactly
// like any user-defined global.
package primitives

import (
	"fmt"
	"strings"

	"github.com/oxischeme/oxischeme/internal/errors"
	"github.com/oxischeme/oxischeme/internal/heap"
	"github.com/oxischeme/oxischeme/internal/meaning"
	"github.com/oxischeme/oxischeme/internal/printer"
	"github.com/oxischeme/oxischeme/internal/senv"
)

// Install defines every core primitive as a name in env's global frame
// and writes the corresponding PrimitiveValue into h's global
// activation, so (cons 1 2) etc. resolve and apply exactly like any
// other global reference.
func Install(h *heap.Heap, env *senv.Environment) {
	for _, p := range all(h) {
		coord := env.DefineGlobal(p.Name)
		h.Define(h.Global(), coord.Slot, heap.PrimitiveValue{Name: p.Name, Fn: p.Fn})
	}
}

type binding struct {
	Name string
	Fn   heap.PrimitiveFunc
}

func all(h *heap.Heap) []binding {
	return []binding{
		{"cons", primCons},
		{"car", primCar},
		{"cdr", primCdr},
		{"set-car!", primSetCar},
		{"set-cdr!", primSetCdr},
		{"list", primList},
		{"length", primLength},
		{"apply", primApply},
		{"error", primError},
		{"print", primPrint},
		{"read", primRead},
		{"not", primNot},
		{"null?", primNullP},
		{"pair?", primPairP},
		{"atom?", primAtomP},
		{"eq?", primEqP},
		{"symbol?", primSymbolP},
		{"number?", primNumberP},
		{"string?", primStringP},
		{"=", primNumEq},
		{">", primGt},
		{"<", primLt},
		{"+", primAdd},
		{"-", primSub},
		{"*", primMul},
		{"/", primDiv},
	}
}

func arityError(name string, want, got int) error {
	return errors.ArityMismatch(name, want, got)
}

// typeError reports "cannot <what>" where what is a short phrase like
// "take car of non-cons" — matching §7's literal example messages
// rather than a generic "cannot use X with Y" template that wouldn't
// read naturally for every primitive.
func typeError(what string, v heap.Value) error {
	return errors.New(errors.CategoryType, "cannot "+what,
		map[string]interface{}{"value": describeType(v)})
}

func describeType(v heap.Value) string {
	switch v.(type) {
	case heap.EmptyList:
		return "()"
	case heap.Pair:
		return "a pair"
	case heap.Str:
		return "a string"
	case heap.Sym:
		return "a symbol"
	case heap.Integer:
		return "a number"
	case heap.Boolean:
		return "a boolean"
	case heap.Character:
		return "a character"
	case heap.ProcedureValue, heap.PrimitiveValue:
		return "a procedure"
	default:
		return "a non-number"
	}
}

func primCons(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 2 {
		return nil, arityError("cons", 2, len(args))
	}

	rooted, err := h.AllocateCons(args[0], args[1])
	if err != nil {
		return nil, err
	}
	defer rooted.Close()

	return rooted.Value(), nil
}

func asPair(op string, v heap.Value) (heap.Pair, error) {
	p, ok := v.(heap.Pair)
	if !ok {
		return heap.Pair{}, typeError(op, v)
	}

	return p, nil
}

func primCar(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 1 {
		return nil, arityError("car", 1, len(args))
	}

	p, err := asPair("take car of non-cons", args[0])
	if err != nil {
		return nil, err
	}

	return p.Cons.Get().Car, nil
}

func primCdr(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 1 {
		return nil, arityError("cdr", 1, len(args))
	}

	p, err := asPair("take cdr of non-cons", args[0])
	if err != nil {
		return nil, err
	}

	return p.Cons.Get().Cdr, nil
}

func primSetCar(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 2 {
		return nil, arityError("set-car!", 2, len(args))
	}

	p, err := asPair("set-car! of non-cons", args[0])
	if err != nil {
		return nil, err
	}

	p.Cons.Get().Car = args[1]

	return h.Wellknown().Unspecified, nil
}

func primSetCdr(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 2 {
		return nil, arityError("set-cdr!", 2, len(args))
	}

	p, err := asPair("set-cdr! of non-cons", args[0])
	if err != nil {
		return nil, err
	}

	p.Cons.Get().Cdr = args[1]

	return h.Wellknown().Unspecified, nil
}

func primList(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	result := h.NewRooted(heap.Empty)
	defer result.Close()

	for i := len(args) - 1; i >= 0; i-- {
		cell, err := h.AllocateCons(args[i], result.Value())
		if err != nil {
			return nil, err
		}

		result.Set(cell.Value())
		cell.Close()
	}

	return result.Value(), nil
}

func primLength(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 1 {
		return nil, arityError("length", 1, len(args))
	}

	n := 0
	v := args[0]

	for {
		switch x := v.(type) {
		case heap.EmptyList:
			return heap.Integer(n), nil
		case heap.Pair:
			n++
			v = x.Cons.Get().Cdr
		default:
			return nil, typeError("take length of improper list", args[0])
		}
	}
}

// listToSlice converts a proper list Value to a Go slice of its
// elements, used by apply to build its argument vector.
func listToSlice(v heap.Value) ([]heap.Value, error) {
	var out []heap.Value

	for {
		switch x := v.(type) {
		case heap.EmptyList:
			return out, nil
		case heap.Pair:
			out = append(out, x.Cons.Get().Car)
			v = x.Cons.Get().Cdr
		default:
			return nil, typeError("apply to a non-list", v)
		}
	}
}

// primApply traverses its final argument as a proper list and applies
// its first argument to (leading args ++ that list) through
// meaning.ApplyFull, which uses the same dispatch as an ordinary
// invocation but runs the call to completion inside this primitive.
// The called procedure is therefore not in tail position: each nested
// apply adds a Go stack frame.
func primApply(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) < 2 {
		return nil, arityError("apply", 2, len(args))
	}

	proc := args[0]
	leading := args[1 : len(args)-1]

	trailing, err := listToSlice(args[len(args)-1])
	if err != nil {
		return nil, err
	}

	callArgs := make([]heap.Value, 0, len(leading)+len(trailing))
	callArgs = append(callArgs, leading...)
	callArgs = append(callArgs, trailing...)

	return meaning.ApplyFull(h, proc, callArgs)
}

// primError raises a user-visible "ERROR!"-prefixed runtime error
// listing its arguments one per line.
func primError(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	msg := "ERROR!"

	for _, a := range args {
		msg += "\n" + printer.Print(a)
	}

	return nil, errors.New(errors.CategoryArgument, msg, nil)
}

func primPrint(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = printer.Print(a)
	}

	fmt.Println(strings.Join(parts, " "))

	return h.Wellknown().Unspecified, nil
}

// primRead is a stub: it reads nothing and always returns the eof
// symbol. Nothing replaces it with a primitive bound to standard input.
func primRead(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	return h.Wellknown().EOF, nil
}

func primNot(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 1 {
		return nil, arityError("not", 1, len(args))
	}

	if heap.Eq(args[0], heap.Boolean(false)) {
		return heap.Boolean(true), nil
	}

	return heap.Boolean(false), nil
}

func primNullP(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 1 {
		return nil, arityError("null?", 1, len(args))
	}

	_, ok := args[0].(heap.EmptyList)

	return heap.Boolean(ok), nil
}

func primPairP(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 1 {
		return nil, arityError("pair?", 1, len(args))
	}

	_, ok := args[0].(heap.Pair)

	return heap.Boolean(ok), nil
}

// primAtomP reports whether its argument is anything other than a
// pair — every self-evaluating datum, the empty list, symbols, and
// procedures are all atoms.
func primAtomP(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 1 {
		return nil, arityError("atom?", 1, len(args))
	}

	_, isPair := args[0].(heap.Pair)

	return heap.Boolean(!isPair), nil
}

func primEqP(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 2 {
		return nil, arityError("eq?", 2, len(args))
	}

	return heap.Boolean(heap.Eq(args[0], args[1])), nil
}

func primSymbolP(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 1 {
		return nil, arityError("symbol?", 1, len(args))
	}

	_, ok := args[0].(heap.Sym)

	return heap.Boolean(ok), nil
}

func primNumberP(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 1 {
		return nil, arityError("number?", 1, len(args))
	}

	_, ok := args[0].(heap.Integer)

	return heap.Boolean(ok), nil
}

func primStringP(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 1 {
		return nil, arityError("string?", 1, len(args))
	}

	_, ok := args[0].(heap.Str)

	return heap.Boolean(ok), nil
}

func asInteger(op string, v heap.Value) (int64, error) {
	n, ok := v.(heap.Integer)
	if !ok {
		return 0, errors.New(errors.CategoryType,
			fmt.Sprintf("cannot use %s with non-numbers", op),
			map[string]interface{}{"operation": op, "value": describeType(v)})
	}

	return int64(n), nil
}

func primNumEq(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 2 {
		return nil, arityError("=", 2, len(args))
	}

	a, err := asInteger("=", args[0])
	if err != nil {
		return nil, err
	}

	b, err := asInteger("=", args[1])
	if err != nil {
		return nil, err
	}

	return heap.Boolean(a == b), nil
}

func primGt(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 2 {
		return nil, arityError(">", 2, len(args))
	}

	a, err := asInteger(">", args[0])
	if err != nil {
		return nil, err
	}

	b, err := asInteger(">", args[1])
	if err != nil {
		return nil, err
	}

	return heap.Boolean(a > b), nil
}

func primLt(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 2 {
		return nil, arityError("<", 2, len(args))
	}

	a, err := asInteger("<", args[0])
	if err != nil {
		return nil, err
	}

	b, err := asInteger("<", args[1])
	if err != nil {
		return nil, err
	}

	return heap.Boolean(a < b), nil
}

func primAdd(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 2 {
		return nil, arityError("+", 2, len(args))
	}

	a, err := asInteger("+", args[0])
	if err != nil {
		return nil, err
	}

	b, err := asInteger("+", args[1])
	if err != nil {
		return nil, err
	}

	return heap.Integer(a + b), nil
}

func primSub(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 2 {
		return nil, arityError("-", 2, len(args))
	}

	a, err := asInteger("-", args[0])
	if err != nil {
		return nil, err
	}

	b, err := asInteger("-", args[1])
	if err != nil {
		return nil, err
	}

	return heap.Integer(a - b), nil
}

func primMul(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 2 {
		return nil, arityError("*", 2, len(args))
	}

	a, err := asInteger("*", args[0])
	if err != nil {
		return nil, err
	}

	b, err := asInteger("*", args[1])
	if err != nil {
		return nil, err
	}

	return heap.Integer(a * b), nil
}

// primDiv implements integer division. Divide-by-zero is a runtime
// error rather than a wraparound or a panic: §7 lists it explicitly
// alongside arity and type mismatches as a RuntimeError case, and a
// garbage quotient would be far more surprising than a clean error.
func primDiv(h *heap.Heap, args []heap.Value) (heap.Value, error) {
	if len(args) != 2 {
		return nil, arityError("/", 2, len(args))
	}

	a, err := asInteger("/", args[0])
	if err != nil {
		return nil, err
	}

	b, err := asInteger("/", args[1])
	if err != nil {
		return nil, err
	}

	if b == 0 {
		return nil, errors.New(errors.CategoryArgument, "division by zero", nil)
	}

	return heap.Integer(a / b), nil
}
