package parser

import (
	"errors"
	"fmt"
)

// SourceLocation is a 1-based line/column position.
type SourceLocation struct {
	Line   int
	Column int
}

func (l SourceLocation) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// LexError reports input the tokenizer cannot split.
type LexError struct {
	Message string
	SourceLocation
	Incomplete bool
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer: %s at %s", e.Message, e.SourceLocation)
}

// ParseError includes a message plus the location of the offending token.
type ParseError struct {
	Message string
	SourceLocation
	// Incomplete is set when the input ended before the program did.
	Incomplete bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parser: %s at %s", e.Message, e.SourceLocation)
}

// IsIncomplete reports whether err was caused by input ending early, so
// that more lines could complete the program.
func IsIncomplete(err error) bool {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Incomplete
	}
	var lexErr *LexError
	if errors.As(err, &lexErr) {
		return lexErr.Incomplete
	}
	return false
}
