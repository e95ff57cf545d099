package interpreter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/NipunSachintha/RPAL-interpreter/pkg/runtime"
)

type builtinImpl func(args []runtime.Value) (runtime.Value, error)

// builtinBindings returns the primitive frame's bindings. Print writes to out.
func builtinBindings(out io.Writer) map[string]runtime.Value {
	defs := []struct {
		name  string
		arity int
		impl  builtinImpl
	}{
		{"Print", 1, printBuiltin(out)},
		{"print", 1, printBuiltin(out)},
		{"Stem", 1, stem},
		{"Stern", 1, stern},
		{"Conc", 2, conc},
		{"ItoS", 1, itos},
		{"Order", 1, order},
		{"Null", 1, null},
		{"Isinteger", 1, kindTest(runtime.KindInteger)},
		{"Isstring", 1, kindTest(runtime.KindString)},
		{"Istruthvalue", 1, kindTest(runtime.KindBool)},
		{"Isdummy", 1, kindTest(runtime.KindDummy)},
		{"Istuple", 1, func(args []runtime.Value) (runtime.Value, error) {
			_, ok := runtime.TupleElements(args[0])
			return runtime.BoolValue{Val: ok}, nil
		}},
		{"Isfunction", 1, func(args []runtime.Value) (runtime.Value, error) {
			return runtime.BoolValue{Val: runtime.IsFunction(args[0])}, nil
		}},
	}
	bindings := make(map[string]runtime.Value, len(defs))
	for _, def := range defs {
		bindings[def.name] = &runtime.BuiltinValue{Name: def.name, Arity: def.arity, Impl: def.impl}
	}
	return bindings
}

func builtinTypeError(name string, want string, got runtime.Value) error {
	return runtimeErrorf(ErrBuiltinType, name, "%s expects %s, got %s", name, want, got.Kind())
}

func printBuiltin(out io.Writer) builtinImpl {
	return func(args []runtime.Value) (runtime.Value, error) {
		if _, err := fmt.Fprint(out, runtime.FormatValue(args[0])); err != nil {
			return nil, fmt.Errorf("print: %w", err)
		}
		return runtime.DummyValue{}, nil
	}
}

func stem(args []runtime.Value) (runtime.Value, error) {
	s, ok := args[0].(runtime.StringValue)
	if !ok {
		return nil, builtinTypeError("Stem", "a string", args[0])
	}
	if s.Val == "" {
		return runtime.StringValue{}, nil
	}
	return runtime.StringValue{Val: s.Val[:1]}, nil
}

func stern(args []runtime.Value) (runtime.Value, error) {
	s, ok := args[0].(runtime.StringValue)
	if !ok {
		return nil, builtinTypeError("Stern", "a string", args[0])
	}
	if s.Val == "" {
		return runtime.StringValue{}, nil
	}
	return runtime.StringValue{Val: s.Val[1:]}, nil
}

func conc(args []runtime.Value) (runtime.Value, error) {
	l, ok := args[0].(runtime.StringValue)
	if !ok {
		return nil, builtinTypeError("Conc", "strings", args[0])
	}
	r, ok := args[1].(runtime.StringValue)
	if !ok {
		return nil, builtinTypeError("Conc", "strings", args[1])
	}
	return runtime.StringValue{Val: l.Val + r.Val}, nil
}

func itos(args []runtime.Value) (runtime.Value, error) {
	n, ok := args[0].(runtime.IntegerValue)
	if !ok {
		return nil, builtinTypeError("ItoS", "an integer", args[0])
	}
	return runtime.StringValue{Val: strconv.FormatInt(n.Val, 10)}, nil
}

func order(args []runtime.Value) (runtime.Value, error) {
	elems, ok := runtime.TupleElements(args[0])
	if !ok {
		return nil, builtinTypeError("Order", "a tuple", args[0])
	}
	return runtime.IntegerValue{Val: int64(len(elems))}, nil
}

func null(args []runtime.Value) (runtime.Value, error) {
	elems, ok := runtime.TupleElements(args[0])
	if !ok {
		return nil, builtinTypeError("Null", "a tuple", args[0])
	}
	return runtime.BoolValue{Val: len(elems) == 0}, nil
}

func kindTest(kind runtime.Kind) builtinImpl {
	return func(args []runtime.Value) (runtime.Value, error) {
		return runtime.BoolValue{Val: args[0].Kind() == kind}, nil
	}
}
