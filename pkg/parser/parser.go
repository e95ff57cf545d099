package parser

import (
	"fmt"
	"strconv"

	"github.com/NipunSachintha/RPAL-interpreter/pkg/ast"
)

var keywords = map[string]bool{
	"let": true, "in": true, "fn": true, "where": true, "rec": true,
	"and": true, "within": true, "aug": true, "or": true, "not": true,
	"gr": true, "ge": true, "ls": true, "le": true, "eq": true, "ne": true,
	"true": true, "false": true, "nil": true, "dummy": true,
}

var comparisons = map[string]ast.Op{
	"gr": ast.OpGr, ">": ast.OpGr,
	"ge": ast.OpGe, ">=": ast.OpGe,
	"ls": ast.OpLs, "<": ast.OpLs,
	"le": ast.OpLe, "<=": ast.OpLe,
	"eq": ast.OpEq, "=": ast.OpEq,
	"ne": ast.OpNe, "!=": ast.OpNe,
}

// Parser is a recursive-descent parser over a token slice. Subtrees are
// assembled on a node stack: each rule pushes its result and composite
// rules pop their children back off.
type Parser struct {
	tokens []Token
	pos    int
	stack  []ast.Node
}

// ParseProgram tokenizes and parses a complete RPAL program.
func ParseProgram(src string) (ast.Node, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses the whole token stream as one expression.
func (p *Parser) Parse() (ast.Node, error) {
	if p.peek().Kind == TokenEOF {
		return nil, p.errorf("empty program")
	}
	if err := p.parseE(); err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != TokenEOF {
		return nil, &ParseError{Message: fmt.Sprintf("unexpected %s, expected end of input", describe(tok)), SourceLocation: tok.SourceLocation}
	}
	if len(p.stack) != 1 {
		return nil, p.errorf("internal: %d nodes left on the stack", len(p.stack))
	}
	return p.stack[0], nil
}

// Token helpers.

func (p *Parser) peek() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	var loc SourceLocation
	if n := len(p.tokens); n > 0 {
		loc = p.tokens[n-1].SourceLocation
	}
	return Token{Kind: TokenEOF, SourceLocation: loc}
}

func (p *Parser) pop() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// at reports whether the next token is the keyword, operator or
// punctuation spelled value. String literals never match.
func (p *Parser) at(value string) bool {
	tok := p.peek()
	return tok.Kind != TokenString && tok.Kind != TokenEOF && tok.Value == value
}

func (p *Parser) accept(value string) bool {
	if p.at(value) {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) expect(value string) error {
	if p.accept(value) {
		return nil
	}
	return p.errorf("expected '%s', found %s", value, describe(p.peek()))
}

func (p *Parser) atIdentifier() bool {
	tok := p.peek()
	return tok.Kind == TokenIdentifier && !keywords[tok.Value]
}

func (p *Parser) atRnStart() bool {
	tok := p.peek()
	switch tok.Kind {
	case TokenIdentifier:
		switch tok.Value {
		case "true", "false", "nil", "dummy":
			return true
		}
		return !keywords[tok.Value]
	case TokenInteger, TokenString:
		return true
	case TokenPunct:
		return tok.Value == "("
	}
	return false
}

func (p *Parser) errorf(format string, args ...any) *ParseError {
	tok := p.peek()
	return &ParseError{
		Message:        fmt.Sprintf(format, args...),
		SourceLocation: tok.SourceLocation,
		Incomplete:     tok.Kind == TokenEOF,
	}
}

func describe(tok Token) string {
	if tok.Kind == TokenEOF {
		return "end of input"
	}
	return fmt.Sprintf("'%s'", tok.Value)
}

// Node stack helpers.

func (p *Parser) push(node ast.Node) {
	p.stack = append(p.stack, node)
}

// popN removes the top n nodes and returns them in source order.
func (p *Parser) popN(n int) []ast.Node {
	start := len(p.stack) - n
	out := make([]ast.Node, n)
	copy(out, p.stack[start:])
	p.stack = p.stack[:start]
	return out
}

func (p *Parser) buildBinary(op ast.Op) {
	kids := p.popN(2)
	p.push(ast.NewBinaryOp(op, kids[0], kids[1]))
}

func (p *Parser) buildUnary(op ast.Op) {
	kids := p.popN(1)
	p.push(ast.NewUnaryOp(op, kids[0]))
}

func (p *Parser) pushIdentifier() {
	p.push(ast.NewIdentifier(p.pop().Value))
}

// Expressions

// E -> 'let' D 'in' E | 'fn' Vb+ '.' E | Ew
func (p *Parser) parseE() error {
	switch {
	case p.accept("let"):
		if err := p.parseD(); err != nil {
			return err
		}
		if err := p.expect("in"); err != nil {
			return err
		}
		if err := p.parseE(); err != nil {
			return err
		}
		kids := p.popN(2)
		p.push(ast.NewLet(kids[0], kids[1]))
		return nil
	case p.accept("fn"):
		n := 0
		for p.atIdentifier() || p.at("(") {
			if err := p.parseVb(); err != nil {
				return err
			}
			n++
		}
		if n == 0 {
			return p.errorf("expected a parameter after 'fn', found %s", describe(p.peek()))
		}
		if err := p.expect("."); err != nil {
			return err
		}
		if err := p.parseE(); err != nil {
			return err
		}
		kids := p.popN(n + 1)
		p.push(ast.NewLambda(kids[:n], kids[n]))
		return nil
	}
	return p.parseEw()
}

// Ew -> T [ 'where' Dr ]
func (p *Parser) parseEw() error {
	if err := p.parseT(); err != nil {
		return err
	}
	if !p.accept("where") {
		return nil
	}
	if err := p.parseDr(); err != nil {
		return err
	}
	kids := p.popN(2)
	p.push(ast.NewWhere(kids[0], kids[1]))
	return nil
}

// T -> Ta { ',' Ta }
func (p *Parser) parseT() error {
	if err := p.parseTa(); err != nil {
		return err
	}
	n := 1
	for p.accept(",") {
		if err := p.parseTa(); err != nil {
			return err
		}
		n++
	}
	if n > 1 {
		p.push(ast.NewTau(p.popN(n)))
	}
	return nil
}

// Ta -> Tc { 'aug' Tc }
func (p *Parser) parseTa() error {
	if err := p.parseTc(); err != nil {
		return err
	}
	for p.accept("aug") {
		if err := p.parseTc(); err != nil {
			return err
		}
		p.buildBinary(ast.OpAug)
	}
	return nil
}

// Tc -> B [ '->' Tc '|' Tc ]
func (p *Parser) parseTc() error {
	if err := p.parseB(); err != nil {
		return err
	}
	if !p.accept("->") {
		return nil
	}
	if err := p.parseTc(); err != nil {
		return err
	}
	if err := p.expect("|"); err != nil {
		return err
	}
	if err := p.parseTc(); err != nil {
		return err
	}
	kids := p.popN(3)
	p.push(ast.NewConditional(kids[0], kids[1], kids[2]))
	return nil
}

// B -> Bt { 'or' Bt }
func (p *Parser) parseB() error {
	if err := p.parseBt(); err != nil {
		return err
	}
	for p.accept("or") {
		if err := p.parseBt(); err != nil {
			return err
		}
		p.buildBinary(ast.OpOr)
	}
	return nil
}

// Bt -> Bs { '&' Bs }
func (p *Parser) parseBt() error {
	if err := p.parseBs(); err != nil {
		return err
	}
	for p.accept("&") {
		if err := p.parseBs(); err != nil {
			return err
		}
		p.buildBinary(ast.OpAmp)
	}
	return nil
}

// Bs -> 'not' Bp | Bp
func (p *Parser) parseBs() error {
	if p.accept("not") {
		if err := p.parseBp(); err != nil {
			return err
		}
		p.buildUnary(ast.OpNot)
		return nil
	}
	return p.parseBp()
}

// Bp -> A [ comparison A ]
func (p *Parser) parseBp() error {
	if err := p.parseA(); err != nil {
		return err
	}
	tok := p.peek()
	if tok.Kind != TokenIdentifier && tok.Kind != TokenOperator {
		return nil
	}
	op, ok := comparisons[tok.Value]
	if !ok {
		return nil
	}
	p.pos++
	if err := p.parseA(); err != nil {
		return err
	}
	p.buildBinary(op)
	return nil
}

// A -> '+' At | '-' At | At { ('+' | '-') At }
func (p *Parser) parseA() error {
	switch {
	case p.accept("+"):
		if err := p.parseAt(); err != nil {
			return err
		}
	case p.accept("-"):
		if err := p.parseAt(); err != nil {
			return err
		}
		p.buildUnary(ast.OpNeg)
	default:
		if err := p.parseAt(); err != nil {
			return err
		}
	}
	for {
		var op ast.Op
		switch {
		case p.accept("+"):
			op = ast.OpPlus
		case p.accept("-"):
			op = ast.OpMinus
		default:
			return nil
		}
		if err := p.parseAt(); err != nil {
			return err
		}
		p.buildBinary(op)
	}
}

// At -> Af { ('*' | '/') Af }
func (p *Parser) parseAt() error {
	if err := p.parseAf(); err != nil {
		return err
	}
	for {
		var op ast.Op
		switch {
		case p.accept("*"):
			op = ast.OpTimes
		case p.accept("/"):
			op = ast.OpDivide
		default:
			return nil
		}
		if err := p.parseAf(); err != nil {
			return err
		}
		p.buildBinary(op)
	}
}

// Af -> Ap [ '**' Af ]
func (p *Parser) parseAf() error {
	if err := p.parseAp(); err != nil {
		return err
	}
	if !p.accept("**") {
		return nil
	}
	if err := p.parseAf(); err != nil {
		return err
	}
	p.buildBinary(ast.OpPower)
	return nil
}

// Ap -> R { '@' identifier R }
func (p *Parser) parseAp() error {
	if err := p.parseR(); err != nil {
		return err
	}
	for p.accept("@") {
		if !p.atIdentifier() {
			return p.errorf("expected identifier after '@', found %s", describe(p.peek()))
		}
		name := ast.NewIdentifier(p.pop().Value)
		if err := p.parseR(); err != nil {
			return err
		}
		kids := p.popN(2)
		p.push(ast.NewAt(kids[0], name, kids[1]))
	}
	return nil
}

// R -> Rn { Rn }
func (p *Parser) parseR() error {
	if err := p.parseRn(); err != nil {
		return err
	}
	for p.atRnStart() {
		if err := p.parseRn(); err != nil {
			return err
		}
		kids := p.popN(2)
		p.push(ast.NewGamma(kids[0], kids[1]))
	}
	return nil
}

// Rn -> identifier | integer | string | 'true' | 'false' | 'nil' | 'dummy' | '(' E ')'
func (p *Parser) parseRn() error {
	tok := p.peek()
	switch tok.Kind {
	case TokenInteger:
		p.pop()
		value, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return &ParseError{Message: fmt.Sprintf("integer literal %s out of range", tok.Value), SourceLocation: tok.SourceLocation}
		}
		p.push(ast.NewIntegerLiteral(value))
		return nil
	case TokenString:
		p.pop()
		p.push(ast.NewStringLiteral(tok.Value))
		return nil
	case TokenIdentifier:
		switch tok.Value {
		case "true":
			p.pop()
			p.push(ast.NewLiteral(ast.LiteralTrue))
			return nil
		case "false":
			p.pop()
			p.push(ast.NewLiteral(ast.LiteralFalse))
			return nil
		case "nil":
			p.pop()
			p.push(ast.NewLiteral(ast.LiteralNil))
			return nil
		case "dummy":
			p.pop()
			p.push(ast.NewLiteral(ast.LiteralDummy))
			return nil
		}
		if !keywords[tok.Value] {
			p.pushIdentifier()
			return nil
		}
	case TokenPunct:
		if tok.Value == "(" {
			p.pop()
			if err := p.parseE(); err != nil {
				return err
			}
			return p.expect(")")
		}
	}
	return p.errorf("expected an operand, found %s", describe(tok))
}

// Definitions

// D -> Da [ 'within' D ]
func (p *Parser) parseD() error {
	if err := p.parseDa(); err != nil {
		return err
	}
	if !p.accept("within") {
		return nil
	}
	if err := p.parseD(); err != nil {
		return err
	}
	kids := p.popN(2)
	p.push(ast.NewWithin(kids[0], kids[1]))
	return nil
}

// Da -> Dr { 'and' Dr }
func (p *Parser) parseDa() error {
	if err := p.parseDr(); err != nil {
		return err
	}
	n := 1
	for p.accept("and") {
		if err := p.parseDr(); err != nil {
			return err
		}
		n++
	}
	if n > 1 {
		p.push(ast.NewAnd(p.popN(n)))
	}
	return nil
}

// Dr -> 'rec' Db | Db
func (p *Parser) parseDr() error {
	if p.accept("rec") {
		if err := p.parseDb(); err != nil {
			return err
		}
		kids := p.popN(1)
		p.push(ast.NewRec(kids[0]))
		return nil
	}
	return p.parseDb()
}

// Db -> '(' D ')' | Vl '=' E | identifier Vb+ '=' E
func (p *Parser) parseDb() error {
	if p.accept("(") {
		if err := p.parseD(); err != nil {
			return err
		}
		return p.expect(")")
	}
	if !p.atIdentifier() {
		return p.errorf("expected a definition, found %s", describe(p.peek()))
	}
	name := ast.NewIdentifier(p.pop().Value)

	if p.at(",") {
		p.push(name)
		if err := p.parseVlTail(1); err != nil {
			return err
		}
		return p.finishEqual()
	}
	if p.at("=") {
		p.push(name)
		return p.finishEqual()
	}

	n := 0
	for p.atIdentifier() || p.at("(") {
		if err := p.parseVb(); err != nil {
			return err
		}
		n++
	}
	if n == 0 {
		return p.errorf("expected '=' or a parameter, found %s", describe(p.peek()))
	}
	if err := p.expect("="); err != nil {
		return err
	}
	if err := p.parseE(); err != nil {
		return err
	}
	kids := p.popN(n + 1)
	p.push(ast.NewFcnForm(name, kids[:n], kids[n]))
	return nil
}

func (p *Parser) finishEqual() error {
	if err := p.expect("="); err != nil {
		return err
	}
	if err := p.parseE(); err != nil {
		return err
	}
	kids := p.popN(2)
	p.push(ast.NewEqual(kids[0], kids[1]))
	return nil
}

// Vb -> identifier | '(' ')' | '(' Vl ')'
func (p *Parser) parseVb() error {
	if p.atIdentifier() {
		p.pushIdentifier()
		return nil
	}
	if err := p.expect("("); err != nil {
		return err
	}
	if p.accept(")") {
		p.push(ast.NewEmptyParams())
		return nil
	}
	if !p.atIdentifier() {
		return p.errorf("expected identifier or ')', found %s", describe(p.peek()))
	}
	p.pushIdentifier()
	if p.at(",") {
		if err := p.parseVlTail(1); err != nil {
			return err
		}
	}
	return p.expect(")")
}

// parseVlTail continues a Vl whose first `have` identifiers are already
// on the stack and folds them into one comma node.
func (p *Parser) parseVlTail(have int) error {
	n := have
	for p.accept(",") {
		if !p.atIdentifier() {
			return p.errorf("expected identifier after ',', found %s", describe(p.peek()))
		}
		p.pushIdentifier()
		n++
	}
	p.push(ast.NewComma(p.popN(n)))
	return nil
}
