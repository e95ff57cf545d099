package ast

// Leaf helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Int(value int64) *IntegerLiteral {
	return NewIntegerLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func True() *Literal  { return NewLiteral(LiteralTrue) }
func False() *Literal { return NewLiteral(LiteralFalse) }
func Nil() *Literal   { return NewLiteral(LiteralNil) }
func Dummy() *Literal { return NewLiteral(LiteralDummy) }

func Y() *YStar { return NewYStar() }

func Empty() *EmptyParams { return NewEmptyParams() }

func OpLeaf(op Op) *Operator {
	return NewOperator(op)
}

// Definition helpers.

func Eq(name, value Node) *Equal {
	return NewEqual(name, value)
}

func Names(names ...string) *Comma {
	out := make([]Node, len(names))
	for i, name := range names {
		out[i] = ID(name)
	}
	return NewComma(out)
}

func Fcn(name string, body Node, params ...Node) *FcnForm {
	return NewFcnForm(ID(name), params, body)
}

func AndDefs(defs ...Node) *And {
	return NewAnd(defs)
}

// Expression helpers.

func Fn(body Node, params ...Node) *Lambda {
	return NewLambda(params, body)
}

func Apply(fn Node, args ...Node) *Gamma {
	return NewGamma(fn, args...)
}

func Tuple(elems ...Node) *Tau {
	return NewTau(elems)
}

func Cond(cond, then, els Node) *Conditional {
	return NewConditional(cond, then, els)
}

func Bin(op Op, left, right Node) *BinaryOp {
	return NewBinaryOp(op, left, right)
}

func Un(op Op, operand Node) *UnaryOp {
	return NewUnaryOp(op, operand)
}
