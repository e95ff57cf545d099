package runtime

import (
	"testing"

	"github.com/NipunSachintha/RPAL-interpreter/pkg/ast"
)

func TestEnvironmentLookupWalksOutward(t *testing.T) {
	root := NewEnvironment(0, nil, map[string]Value{"x": IntegerValue{Val: 1}, "y": StringValue{Val: "outer"}})
	child := NewEnvironment(1, root, map[string]Value{"x": IntegerValue{Val: 2}})

	v, ok := child.Lookup("x")
	if !ok || v.(IntegerValue).Val != 2 {
		t.Fatalf("expected shadowed x=2, got %#v", v)
	}
	v, ok = child.Lookup("y")
	if !ok || v.(StringValue).Val != "outer" {
		t.Fatalf("expected y from parent, got %#v", v)
	}
	if _, ok := child.Lookup("z"); ok {
		t.Fatalf("expected z to be unbound")
	}
	if child.Parent() != root || child.ID() != 1 {
		t.Fatalf("unexpected frame links")
	}
}

func TestEnvironmentCopiesBindings(t *testing.T) {
	bindings := map[string]Value{"b": DummyValue{}, "a": NilValue{}}
	env := NewEnvironment(3, nil, bindings)
	bindings["c"] = IntegerValue{Val: 9}
	if _, ok := env.Lookup("c"); ok {
		t.Fatalf("frame must not observe later map writes")
	}
	keys := env.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestFormatValue(t *testing.T) {
	closure := &Closure{Binder: ast.ID("x"), Body: 3}
	cases := []struct {
		value Value
		want  string
	}{
		{IntegerValue{Val: -12}, "-12"},
		{StringValue{Val: "hello world"}, "hello world"},
		{BoolValue{Val: true}, "true"},
		{BoolValue{Val: false}, "false"},
		{NilValue{}, "nil"},
		{DummyValue{}, "dummy"},
		{&TupleValue{Elements: []Value{IntegerValue{Val: 1}, StringValue{Val: "a"}, &TupleValue{Elements: []Value{BoolValue{Val: true}, NilValue{}}}}}, "(1, a, (true, nil))"},
		{closure, "[lambda closure: x: 3]"},
		{&Closure{Binder: ast.Names("a", "b"), Body: 1}, "[lambda closure: a, b: 1]"},
		{&RecursiveClosure{Fn: closure}, "[eta closure: x: 3]"},
		{&BuiltinValue{Name: "Conc", Arity: 2}, "[builtin: Conc]"},
	}
	for _, tc := range cases {
		if got := FormatValue(tc.value); got != tc.want {
			t.Fatalf("FormatValue(%#v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestBuiltinWithArgDoesNotShareArgs(t *testing.T) {
	base := &BuiltinValue{Name: "Conc", Arity: 2}
	left := base.WithArg(StringValue{Val: "a"})
	right := base.WithArg(StringValue{Val: "b"})
	if len(base.Args) != 0 || left.Args[0].(StringValue).Val != "a" || right.Args[0].(StringValue).Val != "b" {
		t.Fatalf("partial applications share argument storage")
	}
	if left.Saturated() {
		t.Fatalf("one argument must not saturate Conc")
	}
	if !left.WithArg(StringValue{Val: "c"}).Saturated() {
		t.Fatalf("two arguments must saturate Conc")
	}
}

func TestTupleElementsTreatsNilAsEmpty(t *testing.T) {
	elems, ok := TupleElements(NilValue{})
	if !ok || len(elems) != 0 {
		t.Fatalf("expected nil to be the empty tuple")
	}
	if _, ok := TupleElements(IntegerValue{Val: 1}); ok {
		t.Fatalf("integers are not tuples")
	}
}
