package ast

type NodeType string

const (
	NodeIdentifier  NodeType = "identifier"
	NodeInteger     NodeType = "integer"
	NodeString      NodeType = "string"
	NodeLiteral     NodeType = "literal"
	NodeYStar       NodeType = "Y*"
	NodeEmptyParams NodeType = "()"
	NodeOperator    NodeType = "operator"
	NodeLet         NodeType = "let"
	NodeWhere       NodeType = "where"
	NodeFcnForm     NodeType = "fcn_form"
	NodeLambda      NodeType = "lambda"
	NodeWithin      NodeType = "within"
	NodeAnd         NodeType = "and"
	NodeRec         NodeType = "rec"
	NodeAt          NodeType = "@"
	NodeGamma       NodeType = "gamma"
	NodeTau         NodeType = "tau"
	NodeComma       NodeType = ","
	NodeEqual       NodeType = "="
	NodeConditional NodeType = "->"
	NodeBinaryOp    NodeType = "binary"
	NodeUnaryOp     NodeType = "unary"
)

// Node is implemented only by the concrete tree types of this package.
type Node interface {
	NodeType() NodeType
	Children() []Node
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

type leaf struct{}

func (leaf) Children() []Node { return nil }

// Operators

type Op string

const (
	OpPlus   Op = "+"
	OpMinus  Op = "-"
	OpTimes  Op = "*"
	OpDivide Op = "/"
	OpPower  Op = "**"
	OpGr     Op = "gr"
	OpGe     Op = "ge"
	OpLs     Op = "ls"
	OpLe     Op = "le"
	OpEq     Op = "eq"
	OpNe     Op = "ne"
	OpOr     Op = "or"
	OpAmp    Op = "&"
	OpAug    Op = "aug"
	OpNot    Op = "not"
	OpNeg    Op = "neg"
)

var unaryOps = map[Op]bool{OpNot: true, OpNeg: true}

var binaryOps = map[Op]bool{
	OpPlus: true, OpMinus: true, OpTimes: true, OpDivide: true, OpPower: true,
	OpGr: true, OpGe: true, OpLs: true, OpLe: true, OpEq: true, OpNe: true,
	OpOr: true, OpAmp: true, OpAug: true,
}

// IsUnary reports whether op takes a single operand.
func (op Op) IsUnary() bool { return unaryOps[op] }

// IsBinary reports whether op takes two operands.
func (op Op) IsBinary() bool { return binaryOps[op] }

// Leaves

type Identifier struct {
	nodeImpl
	leaf

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

type IntegerLiteral struct {
	nodeImpl
	leaf

	Value int64 `json:"value"`
}

func NewIntegerLiteral(value int64) *IntegerLiteral {
	return &IntegerLiteral{nodeImpl: newNodeImpl(NodeInteger), Value: value}
}

type StringLiteral struct {
	nodeImpl
	leaf

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeString), Value: value}
}

// LiteralKind enumerates the singleton literals.
type LiteralKind string

const (
	LiteralTrue  LiteralKind = "true"
	LiteralFalse LiteralKind = "false"
	LiteralNil   LiteralKind = "nil"
	LiteralDummy LiteralKind = "dummy"
)

type Literal struct {
	nodeImpl
	leaf

	Kind LiteralKind `json:"kind"`
}

func NewLiteral(kind LiteralKind) *Literal {
	return &Literal{nodeImpl: newNodeImpl(NodeLiteral), Kind: kind}
}

// YStar is the fixed-point combinator introduced by rec.
type YStar struct {
	nodeImpl
	leaf
}

func NewYStar() *YStar {
	return &YStar{nodeImpl: newNodeImpl(NodeYStar)}
}

// EmptyParams is the `()` binder, which discards its argument.
type EmptyParams struct {
	nodeImpl
	leaf
}

func NewEmptyParams() *EmptyParams {
	return &EmptyParams{nodeImpl: newNodeImpl(NodeEmptyParams)}
}

// Operator names a built-in operator inside a standardized application.
type Operator struct {
	nodeImpl
	leaf

	Op Op `json:"op"`
}

func NewOperator(op Op) *Operator {
	return &Operator{nodeImpl: newNodeImpl(NodeOperator), Op: op}
}

// Definitions

type Let struct {
	nodeImpl

	Def  Node `json:"def"`
	Body Node `json:"body"`
}

func NewLet(def, body Node) *Let {
	return &Let{nodeImpl: newNodeImpl(NodeLet), Def: def, Body: body}
}

func (n *Let) Children() []Node { return []Node{n.Def, n.Body} }

type Where struct {
	nodeImpl

	Body Node `json:"body"`
	Def  Node `json:"def"`
}

func NewWhere(body, def Node) *Where {
	return &Where{nodeImpl: newNodeImpl(NodeWhere), Body: body, Def: def}
}

func (n *Where) Children() []Node { return []Node{n.Body, n.Def} }

// FcnForm is `Name P1 ... Pn = Body`.
type FcnForm struct {
	nodeImpl

	Name   *Identifier `json:"name"`
	Params []Node      `json:"params"`
	Body   Node        `json:"body"`
}

func NewFcnForm(name *Identifier, params []Node, body Node) *FcnForm {
	return &FcnForm{nodeImpl: newNodeImpl(NodeFcnForm), Name: name, Params: params, Body: body}
}

func (n *FcnForm) Children() []Node {
	out := make([]Node, 0, len(n.Params)+2)
	out = append(out, n.Name)
	out = append(out, n.Params...)
	return append(out, n.Body)
}

type Within struct {
	nodeImpl

	Outer Node `json:"outer"`
	Inner Node `json:"inner"`
}

func NewWithin(outer, inner Node) *Within {
	return &Within{nodeImpl: newNodeImpl(NodeWithin), Outer: outer, Inner: inner}
}

func (n *Within) Children() []Node { return []Node{n.Outer, n.Inner} }

// And groups simultaneous definitions.
type And struct {
	nodeImpl

	Defs []Node `json:"defs"`
}

func NewAnd(defs []Node) *And {
	return &And{nodeImpl: newNodeImpl(NodeAnd), Defs: defs}
}

func (n *And) Children() []Node { return n.Defs }

type Rec struct {
	nodeImpl

	Def Node `json:"def"`
}

func NewRec(def Node) *Rec {
	return &Rec{nodeImpl: newNodeImpl(NodeRec), Def: def}
}

func (n *Rec) Children() []Node { return []Node{n.Def} }

// Equal binds Name (an identifier or a comma list) to Value.
type Equal struct {
	nodeImpl

	Name  Node `json:"name"`
	Value Node `json:"value"`
}

func NewEqual(name, value Node) *Equal {
	return &Equal{nodeImpl: newNodeImpl(NodeEqual), Name: name, Value: value}
}

func (n *Equal) Children() []Node { return []Node{n.Name, n.Value} }

// Comma is a list of binders.
type Comma struct {
	nodeImpl

	Names []Node `json:"names"`
}

func NewComma(names []Node) *Comma {
	return &Comma{nodeImpl: newNodeImpl(NodeComma), Names: names}
}

func (n *Comma) Children() []Node { return n.Names }

// Expressions

type Lambda struct {
	nodeImpl

	Params []Node `json:"params"`
	Body   Node   `json:"body"`
}

func NewLambda(params []Node, body Node) *Lambda {
	return &Lambda{nodeImpl: newNodeImpl(NodeLambda), Params: params, Body: body}
}

func (n *Lambda) Children() []Node {
	out := make([]Node, 0, len(n.Params)+1)
	out = append(out, n.Params...)
	return append(out, n.Body)
}

// At is the infix application `Left @ Name Right`.
type At struct {
	nodeImpl

	Left  Node        `json:"left"`
	Name  *Identifier `json:"name"`
	Right Node        `json:"right"`
}

func NewAt(left Node, name *Identifier, right Node) *At {
	return &At{nodeImpl: newNodeImpl(NodeAt), Left: left, Name: name, Right: right}
}

func (n *At) Children() []Node { return []Node{n.Left, n.Name, n.Right} }

// Gamma applies Fn to Args left to right.
type Gamma struct {
	nodeImpl

	Fn   Node   `json:"fn"`
	Args []Node `json:"args"`
}

func NewGamma(fn Node, args ...Node) *Gamma {
	return &Gamma{nodeImpl: newNodeImpl(NodeGamma), Fn: fn, Args: args}
}

func (n *Gamma) Children() []Node {
	out := make([]Node, 0, len(n.Args)+1)
	out = append(out, n.Fn)
	return append(out, n.Args...)
}

type Tau struct {
	nodeImpl

	Elems []Node `json:"elems"`
}

func NewTau(elems []Node) *Tau {
	return &Tau{nodeImpl: newNodeImpl(NodeTau), Elems: elems}
}

func (n *Tau) Children() []Node { return n.Elems }

// Conditional is `Cond -> Then | Else`.
type Conditional struct {
	nodeImpl

	Cond Node `json:"cond"`
	Then Node `json:"then"`
	Else Node `json:"else"`
}

func NewConditional(cond, then, els Node) *Conditional {
	return &Conditional{nodeImpl: newNodeImpl(NodeConditional), Cond: cond, Then: then, Else: els}
}

func (n *Conditional) Children() []Node { return []Node{n.Cond, n.Then, n.Else} }

type BinaryOp struct {
	nodeImpl

	Op    Op   `json:"op"`
	Left  Node `json:"left"`
	Right Node `json:"right"`
}

func NewBinaryOp(op Op, left, right Node) *BinaryOp {
	return &BinaryOp{nodeImpl: newNodeImpl(NodeBinaryOp), Op: op, Left: left, Right: right}
}

func (n *BinaryOp) Children() []Node { return []Node{n.Left, n.Right} }

type UnaryOp struct {
	nodeImpl

	Op      Op   `json:"op"`
	Operand Node `json:"operand"`
}

func NewUnaryOp(op Op, operand Node) *UnaryOp {
	return &UnaryOp{nodeImpl: newNodeImpl(NodeUnaryOp), Op: op, Operand: operand}
}

func (n *UnaryOp) Children() []Node { return []Node{n.Operand} }
