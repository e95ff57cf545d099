package ast

import (
	"bytes"
	"errors"
	"testing"
)

func TestFprintPreOrderWithMarkers(t *testing.T) {
	tree := NewLet(
		Eq(ID("x"), Int(5)),
		Bin(OpPlus, ID("x"), Int(2)),
	)
	var buf bytes.Buffer
	if err := Fprint(&buf, tree, "."); err != nil {
		t.Fatalf("Fprint: %v", err)
	}
	want := "let\n" +
		".=\n" +
		"..<ID:x>\n" +
		"..<INT:5>\n" +
		".+\n" +
		"..<ID:x>\n" +
		"..<INT:2>\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected tree output:\n%s\nwant:\n%s", got, want)
	}
}

func TestLabelForLeaves(t *testing.T) {
	cases := []struct {
		node Node
		want string
	}{
		{ID("abc"), "<ID:abc>"},
		{Int(42), "<INT:42>"},
		{Str("hi"), "<STR:'hi'>"},
		{True(), "<true>"},
		{False(), "<false>"},
		{Nil(), "<nil>"},
		{Dummy(), "<dummy>"},
		{Y(), "<Y*>"},
		{Empty(), "()"},
		{OpLeaf(OpAug), "aug"},
		{Un(OpNeg, Int(1)), "neg"},
		{Apply(ID("f"), ID("x")), "gamma"},
		{Cond(True(), Int(1), Int(2)), "->"},
		{Names("a", "b"), ","},
		{Fcn("f", ID("x"), ID("x")), "fcn_form"},
	}
	for _, tc := range cases {
		if got := Label(tc.node); got != tc.want {
			t.Fatalf("Label(%T) = %q, want %q", tc.node, got, tc.want)
		}
	}
}

func TestFprintCustomMarker(t *testing.T) {
	tree := Apply(ID("f"), ID("x"))
	var buf bytes.Buffer
	if err := Fprint(&buf, tree, "*"); err != nil {
		t.Fatalf("Fprint: %v", err)
	}
	if got := buf.String(); got != "gamma\n*<ID:f>\n*<ID:x>\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if got := Sprint(tree); got != "gamma\n.<ID:f>\n.<ID:x>\n" {
		t.Fatalf("unexpected Sprint output %q", got)
	}
}

func TestSameTreeComparesShapeAndPayload(t *testing.T) {
	a := Fn(Bin(OpPlus, ID("x"), ID("y")), ID("x"), ID("y"))
	b := Fn(Bin(OpPlus, ID("x"), ID("y")), ID("x"), ID("y"))
	if !SameTree(a, b) {
		t.Fatalf("expected identical lambdas to be equal")
	}
	c := Fn(Bin(OpMinus, ID("x"), ID("y")), ID("x"), ID("y"))
	if SameTree(a, c) {
		t.Fatalf("expected differing operators to compare unequal")
	}
	if SameTree(Int(1), Str("1")) {
		t.Fatalf("expected integer and string leaves to differ")
	}
	if !SameTree(nil, nil) || SameTree(Int(1), nil) {
		t.Fatalf("unexpected nil handling")
	}
}

func TestMalformedNodeErrorMatchesSentinel(t *testing.T) {
	err := Malformed(NewTau(nil), "needs at least one element")
	if !errors.Is(err, ErrMalformedNode) {
		t.Fatalf("expected ErrMalformedNode, got %v", err)
	}
	var mal *MalformedNodeError
	if !errors.As(err, &mal) || mal.Label != "tau" {
		t.Fatalf("expected tau label, got %#v", err)
	}
	if err.Error() != "malformed 'tau': needs at least one element" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
