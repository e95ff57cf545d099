package interpreter

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/NipunSachintha/RPAL-interpreter/pkg/ast"
	"github.com/NipunSachintha/RPAL-interpreter/pkg/runtime"
)

func evalSource(t *testing.T, src string) runtime.Value {
	t.Helper()
	val, err := EvaluateSource(src, Options{})
	if err != nil {
		t.Fatalf("evaluate %q: %v", src, err)
	}
	return val
}

func TestEvaluateAnswers(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"let x = 5 in x + 2", "7"},
		{"(10, 20, 30) 2", "20"},
		{"let rec f n = n eq 0 -> 1 | n * f (n - 1) in f 5", "120"},
		{"let a, b = 1, 2 in a + b", "3"},
		{"let a = 1 and b = 2 in a * 10 + b", "12"},
		{"let x = 3 within y = x + 1 in y", "4"},
		{"x * x where x = -4", "16"},
		{"let f x y = x - y in f 10 3", "7"},
		{"let add x y = x + y in 3 @ add 4", "7"},
		{"2 ** 10", "1024"},
		{"(-2) ** 63", "-9223372036854775808"},
		{"9223372036854775806 + 1", "9223372036854775807"},
		{"17 / 5", "3"},
		{"Conc 'ab' 'cd'", "abcd"},
		{"Stem 'hello', Stern 'hello', Stem '', Stern ''", "(h, ello, , )"},
		{"ItoS 42", "42"},
		{"Order (nil aug 1 aug 2)", "2"},
		{"nil aug 1 aug (2, 3)", "(1, (2, 3))"},
		{"Null nil, Null (1, 2)", "(true, false)"},
		{"Isinteger 1, Isstring 'a', Istuple nil, Isfunction Print, Isdummy dummy, Istruthvalue false", "(true, true, true, true, true, true)"},
		{"Isinteger 'a', Istuple 3, Isfunction 4", "(false, false, false)"},
		{"1 ls 2 & not (3 gr 4) or false", "true"},
		{"'a' eq 'a', 1 ne 2, 3 >= 3, 4 <= 3", "(true, true, true, false)"},
		{"fn x . x", "[lambda closure: x: 1]"},
		{"let rec len s = s eq '' -> 0 | 1 + len (Stern s) in len 'abcd'", "4"},
		{"let f () = 9 in f dummy", "9"},
		{"let g (a, b) = a & b in g (true, false)", "false"},
	}
	for _, tc := range cases {
		val := evalSource(t, tc.src)
		if got := runtime.FormatValue(val); got != tc.want {
			t.Fatalf("%q evaluated to %q, want %q", tc.src, got, tc.want)
		}
	}
}

func TestPrintWritesInExecutionOrder(t *testing.T) {
	var out bytes.Buffer
	val, err := EvaluateSource("let x = Print 'a' in Print (x, 1, 'b')", Options{Output: &out})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if _, ok := val.(runtime.DummyValue); !ok {
		t.Fatalf("expected dummy answer, got %#v", val)
	}
	if got := out.String(); got != "a(dummy, 1, b)" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestUntakenBranchDoesNotRun(t *testing.T) {
	var out bytes.Buffer
	val, err := EvaluateSource("true -> 1 | Print 'never'", Options{Output: &out})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if runtime.FormatValue(val) != "1" {
		t.Fatalf("expected 1, got %s", runtime.FormatValue(val))
	}
	if out.Len() != 0 {
		t.Fatalf("untaken branch printed %q", out.String())
	}
}

func TestDivergenceStopsAtStepLimit(t *testing.T) {
	src := "let rec f n = n eq 0 -> 1 | n * f (n - 1) in f (-1)"
	_, err := EvaluateSource(src, Options{MaxSteps: 20000})
	if !errors.Is(err, ErrStepLimit) {
		t.Fatalf("expected ErrStepLimit, got %v", err)
	}
}

func TestStepLimitAllowsFinishingPrograms(t *testing.T) {
	comp, err := Compile("let x = 5 in x + 2")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	m := NewMachine(comp.Program, Options{MaxSteps: 100})
	if _, err := m.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if m.Steps() == 0 || m.Steps() > 100 {
		t.Fatalf("unexpected step count %d", m.Steps())
	}
}

func TestRuntimeErrors(t *testing.T) {
	cases := []struct {
		src     string
		kind    error
		subject string
	}{
		{"y + 1", ErrUnboundIdentifier, "y"},
		{"(10, 20, 30) 4", ErrTupleIndex, "4"},
		{"(10, 20) 0", ErrTupleIndex, "0"},
		{"nil 1", ErrTupleIndex, "1"},
		{"(1, 2) 'a'", ErrTypeMismatch, "tuple"},
		{"3 4", ErrNotApplicable, "3"},
		{"1 + 'a'", ErrTypeMismatch, "+"},
		{"not 1", ErrTypeMismatch, "not"},
		{"1 -> 2 | 3", ErrTypeMismatch, "->"},
		{"1 / 0", ErrArithmetic, "/"},
		{"2 ** (-1)", ErrArithmetic, "**"},
		{"9223372036854775807 + 1", ErrArithmetic, "+"},
		{"(-9223372036854775807) - 2", ErrArithmetic, "-"},
		{"4611686018427387904 * 2", ErrArithmetic, "*"},
		{"2 ** 63", ErrArithmetic, "**"},
		{"((-9223372036854775807) - 1) / (-1)", ErrArithmetic, "/"},
		{"-((-9223372036854775807) - 1)", ErrArithmetic, "neg"},
		{"Stem 5", ErrBuiltinType, "Stem"},
		{"Conc 'a' 1", ErrBuiltinType, "Conc"},
		{"ItoS 'a'", ErrBuiltinType, "ItoS"},
		{"Order 3", ErrBuiltinType, "Order"},
		{"let a, b = 1 in a", ErrTypeMismatch, "a, b"},
		{"3 aug 4", ErrTypeMismatch, "aug"},
	}
	for _, tc := range cases {
		_, err := EvaluateSource(tc.src, Options{})
		if !errors.Is(err, tc.kind) {
			t.Fatalf("%q: expected %v, got %v", tc.src, tc.kind, err)
		}
		var rtErr *RuntimeError
		if !errors.As(err, &rtErr) || rtErr.Subject != tc.subject {
			t.Fatalf("%q: expected subject %q, got %#v", tc.src, tc.subject, err)
		}
	}
}

func TestUnboundIdentifierMessageNamesIdentifier(t *testing.T) {
	_, err := EvaluateSource("let x = 1 in undefinedName", Options{})
	if err == nil || !strings.Contains(err.Error(), "undefinedName") {
		t.Fatalf("expected error naming undefinedName, got %v", err)
	}
}

func TestEvaluateCurriedOperatorLeaf(t *testing.T) {
	// (fn g. g 3 4) <+>
	tree := ast.Apply(
		ast.Fn(ast.Apply(ast.Apply(ast.ID("g"), ast.Int(3)), ast.Int(4)), ast.ID("g")),
		ast.OpLeaf(ast.OpPlus),
	)
	val, err := Evaluate(tree, Options{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if runtime.FormatValue(val) != "7" {
		t.Fatalf("expected 7, got %s", runtime.FormatValue(val))
	}
}

func TestTraceLogsFrames(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if _, err := EvaluateSource("let x = 5 in x", Options{Logger: logger}); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	for _, want := range []string{"push frame", "pop frame", "apply"} {
		if !strings.Contains(logs.String(), want) {
			t.Fatalf("expected %q in trace:\n%s", want, logs.String())
		}
	}
}
