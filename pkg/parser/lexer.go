package parser

import (
	"fmt"
	"strings"
)

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdentifier
	TokenInteger
	TokenString
	TokenOperator
	TokenPunct
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of input"
	case TokenIdentifier:
		return "identifier"
	case TokenInteger:
		return "integer"
	case TokenString:
		return "string"
	case TokenOperator:
		return "operator"
	case TokenPunct:
		return "punctuation"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is one lexeme. String tokens carry the decoded contents without quotes.
type Token struct {
	Kind  TokenKind
	Value string
	SourceLocation
}

func (t Token) String() string {
	if t.Kind == TokenEOF {
		return "<EOF>"
	}
	return fmt.Sprintf("<%s:%s>", t.Kind, t.Value)
}

const operatorSymbols = "+-*<>&.@/:=~|$!#%^_[]{}\"`?"

const punctuation = "();,"

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isSpace(c byte) bool  { return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v' }

func isOperatorSymbol(c byte) bool { return strings.IndexByte(operatorSymbols, c) >= 0 }

type lexer struct {
	src    string
	pos    int
	line   int
	column int
}

// Tokenize splits src into tokens, dropping whitespace and `//` comments.
// The returned slice does not include the end-of-input token.
func Tokenize(src string) ([]Token, error) {
	lx := &lexer{src: src, line: 1, column: 1}
	var tokens []Token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == TokenEOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

func (lx *lexer) peekAt(offset int) (byte, bool) {
	if lx.pos+offset >= len(lx.src) {
		return 0, false
	}
	return lx.src[lx.pos+offset], true
}

func (lx *lexer) advance() byte {
	c := lx.src[lx.pos]
	lx.pos++
	if c == '\n' {
		lx.line++
		lx.column = 1
	} else {
		lx.column++
	}
	return c
}

func (lx *lexer) location() SourceLocation {
	return SourceLocation{Line: lx.line, Column: lx.column}
}

func (lx *lexer) next() (Token, error) {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if isSpace(c) {
			lx.advance()
			continue
		}
		if c == '/' {
			if n, ok := lx.peekAt(1); ok && n == '/' {
				lx.skipComment()
				continue
			}
		}
		start := lx.location()
		switch {
		case isLetter(c):
			return lx.scanWhile(TokenIdentifier, start, func(b byte) bool {
				return isLetter(b) || isDigit(b) || b == '_'
			}), nil
		case isDigit(c):
			return lx.scanWhile(TokenInteger, start, isDigit), nil
		case c == '\'':
			return lx.scanString(start)
		case isOperatorSymbol(c):
			return lx.scanWhile(TokenOperator, start, isOperatorSymbol), nil
		case strings.IndexByte(punctuation, c) >= 0:
			lx.advance()
			return Token{Kind: TokenPunct, Value: string(c), SourceLocation: start}, nil
		default:
			return Token{}, &LexError{Message: fmt.Sprintf("invalid character %q", c), SourceLocation: start}
		}
	}
	return Token{Kind: TokenEOF, SourceLocation: lx.location()}, nil
}

func (lx *lexer) skipComment() {
	for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
		lx.advance()
	}
}

func (lx *lexer) scanWhile(kind TokenKind, start SourceLocation, keep func(byte) bool) Token {
	begin := lx.pos
	for lx.pos < len(lx.src) && keep(lx.src[lx.pos]) {
		lx.advance()
	}
	return Token{Kind: kind, Value: lx.src[begin:lx.pos], SourceLocation: start}
}

func (lx *lexer) scanString(start SourceLocation) (Token, error) {
	lx.advance()
	var b strings.Builder
	for lx.pos < len(lx.src) {
		c := lx.advance()
		switch c {
		case '\'':
			return Token{Kind: TokenString, Value: b.String(), SourceLocation: start}, nil
		case '\\':
			if lx.pos >= len(lx.src) {
				return Token{}, &LexError{Message: "unterminated string literal", SourceLocation: start, Incomplete: true}
			}
			esc := lx.advance()
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\':
				b.WriteByte('\\')
			case '\'':
				b.WriteByte('\'')
			default:
				return Token{}, &LexError{Message: fmt.Sprintf("unknown escape sequence \\%c", esc), SourceLocation: start}
			}
		case '\n':
			// strings do not span lines
			return Token{}, &LexError{Message: "newline in string literal", SourceLocation: start}
		default:
			b.WriteByte(c)
		}
	}
	return Token{}, &LexError{Message: "unterminated string literal", SourceLocation: start, Incomplete: true}
}
