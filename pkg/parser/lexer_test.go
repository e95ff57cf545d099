package parser

import (
	"errors"
	"testing"
)

func TestTokenizeKinds(t *testing.T) {
	tokens, err := Tokenize("let x_1 = 42 in x_1 >= 'ok' -> ( neg ) ; , // gone")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	want := []struct {
		kind  TokenKind
		value string
	}{
		{TokenIdentifier, "let"},
		{TokenIdentifier, "x_1"},
		{TokenOperator, "="},
		{TokenInteger, "42"},
		{TokenIdentifier, "in"},
		{TokenIdentifier, "x_1"},
		{TokenOperator, ">="},
		{TokenString, "ok"},
		{TokenOperator, "->"},
		{TokenPunct, "("},
		{TokenIdentifier, "neg"},
		{TokenPunct, ")"},
		{TokenPunct, ";"},
		{TokenPunct, ","},
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i, w := range want {
		if tokens[i].Kind != w.kind || tokens[i].Value != w.value {
			t.Fatalf("token %d = %v, want <%s:%s>", i, tokens[i], w.kind, w.value)
		}
	}
}

func TestTokenizeTracksLocations(t *testing.T) {
	tokens, err := Tokenize("a\n  bc")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if tokens[1].Line != 2 || tokens[1].Column != 3 {
		t.Fatalf("unexpected location %s", tokens[1].SourceLocation)
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	tokens, err := Tokenize(`'tab\there \'q\' back\\slash'`)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if got := tokens[0].Value; got != "tab\there 'q' back\\slash" {
		t.Fatalf("unexpected string value %q", got)
	}
}

func TestTokenizeErrors(t *testing.T) {
	cases := []struct {
		src        string
		incomplete bool
	}{
		{"'open", true},
		{`'bad \q'`, false},
		{"x \x01", false},
	}
	for _, tc := range cases {
		_, err := Tokenize(tc.src)
		var lexErr *LexError
		if !errors.As(err, &lexErr) {
			t.Fatalf("expected *LexError for %q, got %v", tc.src, err)
		}
		if IsIncomplete(err) != tc.incomplete {
			t.Fatalf("IsIncomplete(%q) mismatch: %v", tc.src, err)
		}
	}
}
