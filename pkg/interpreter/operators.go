package interpreter

import (
	"math"

	"github.com/NipunSachintha/RPAL-interpreter/pkg/ast"
	"github.com/NipunSachintha/RPAL-interpreter/pkg/runtime"
)

func applyBinary(op ast.Op, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case ast.OpPlus, ast.OpMinus, ast.OpTimes, ast.OpDivide, ast.OpPower:
		l, r, err := integerOperands(op, left, right)
		if err != nil {
			return nil, err
		}
		return arithmetic(op, l, r)
	case ast.OpGr, ast.OpGe, ast.OpLs, ast.OpLe:
		l, r, err := integerOperands(op, left, right)
		if err != nil {
			return nil, err
		}
		var result bool
		switch op {
		case ast.OpGr:
			result = l > r
		case ast.OpGe:
			result = l >= r
		case ast.OpLs:
			result = l < r
		default:
			result = l <= r
		}
		return runtime.BoolValue{Val: result}, nil
	case ast.OpEq, ast.OpNe:
		same, err := valuesEqual(op, left, right)
		if err != nil {
			return nil, err
		}
		if op == ast.OpNe {
			same = !same
		}
		return runtime.BoolValue{Val: same}, nil
	case ast.OpOr, ast.OpAmp:
		l, lok := left.(runtime.BoolValue)
		r, rok := right.(runtime.BoolValue)
		if !lok || !rok {
			return nil, mismatch(op, left, right)
		}
		if op == ast.OpOr {
			return runtime.BoolValue{Val: l.Val || r.Val}, nil
		}
		return runtime.BoolValue{Val: l.Val && r.Val}, nil
	case ast.OpAug:
		elems, ok := runtime.TupleElements(left)
		if !ok {
			return nil, runtimeErrorf(ErrTypeMismatch, string(op), "'aug' expects a tuple or nil on the left, got %s", left.Kind())
		}
		out := make([]runtime.Value, len(elems), len(elems)+1)
		copy(out, elems)
		return &runtime.TupleValue{Elements: append(out, right)}, nil
	}
	return nil, runtimeErrorf(ErrNotApplicable, string(op), "unknown binary operator '%s'", op)
}

func applyUnary(op ast.Op, operand runtime.Value) (runtime.Value, error) {
	switch op {
	case ast.OpNeg:
		if v, ok := operand.(runtime.IntegerValue); ok {
			if v.Val == math.MinInt64 {
				return nil, runtimeErrorf(ErrArithmetic, string(op), "integer overflow in neg %d", v.Val)
			}
			return runtime.IntegerValue{Val: -v.Val}, nil
		}
	case ast.OpNot:
		if v, ok := operand.(runtime.BoolValue); ok {
			return runtime.BoolValue{Val: !v.Val}, nil
		}
	default:
		return nil, runtimeErrorf(ErrNotApplicable, string(op), "unknown unary operator '%s'", op)
	}
	return nil, runtimeErrorf(ErrTypeMismatch, string(op), "'%s' cannot be applied to %s", op, operand.Kind())
}

func integerOperands(op ast.Op, left, right runtime.Value) (int64, int64, error) {
	l, lok := left.(runtime.IntegerValue)
	r, rok := right.(runtime.IntegerValue)
	if !lok || !rok {
		return 0, 0, mismatch(op, left, right)
	}
	return l.Val, r.Val, nil
}

func arithmetic(op ast.Op, l, r int64) (runtime.Value, error) {
	var result int64
	ok := true
	switch op {
	case ast.OpPlus:
		result, ok = addInt(l, r)
	case ast.OpMinus:
		result, ok = subInt(l, r)
	case ast.OpTimes:
		result, ok = mulInt(l, r)
	case ast.OpDivide:
		if r == 0 {
			return nil, runtimeErrorf(ErrArithmetic, string(op), "division by zero")
		}
		if l == math.MinInt64 && r == -1 {
			ok = false
		} else {
			result = l / r
		}
	default:
		if r < 0 {
			return nil, runtimeErrorf(ErrArithmetic, string(op), "negative exponent %d", r)
		}
		result, ok = powInt(l, r)
	}
	if !ok {
		return nil, runtimeErrorf(ErrArithmetic, string(op), "integer overflow in %d %s %d", l, op, r)
	}
	return runtime.IntegerValue{Val: result}, nil
}

func addInt(l, r int64) (int64, bool) {
	if (r > 0 && l > math.MaxInt64-r) || (r < 0 && l < math.MinInt64-r) {
		return 0, false
	}
	return l + r, true
}

func subInt(l, r int64) (int64, bool) {
	if (r < 0 && l > math.MaxInt64+r) || (r > 0 && l < math.MinInt64+r) {
		return 0, false
	}
	return l - r, true
}

func mulInt(l, r int64) (int64, bool) {
	if l == 0 || r == 0 {
		return 0, true
	}
	if (l == -1 && r == math.MinInt64) || (r == -1 && l == math.MinInt64) {
		return 0, false
	}
	p := l * r
	if p/r != l {
		return 0, false
	}
	return p, true
}

// powInt computes base**r by squaring; r must not be negative.
func powInt(base, r int64) (int64, bool) {
	result := int64(1)
	ok := true
	for r > 0 {
		if r&1 == 1 {
			if result, ok = mulInt(result, base); !ok {
				return 0, false
			}
		}
		r >>= 1
		if r > 0 {
			if base, ok = mulInt(base, base); !ok {
				return 0, false
			}
		}
	}
	return result, true
}

func valuesEqual(op ast.Op, left, right runtime.Value) (bool, error) {
	switch l := left.(type) {
	case runtime.IntegerValue:
		if r, ok := right.(runtime.IntegerValue); ok {
			return l.Val == r.Val, nil
		}
	case runtime.StringValue:
		if r, ok := right.(runtime.StringValue); ok {
			return l.Val == r.Val, nil
		}
	case runtime.BoolValue:
		if r, ok := right.(runtime.BoolValue); ok {
			return l.Val == r.Val, nil
		}
	case runtime.NilValue:
		if _, ok := right.(runtime.NilValue); ok {
			return true, nil
		}
	case runtime.DummyValue:
		if _, ok := right.(runtime.DummyValue); ok {
			return true, nil
		}
	}
	return false, mismatch(op, left, right)
}

func mismatch(op ast.Op, left, right runtime.Value) error {
	return runtimeErrorf(ErrTypeMismatch, string(op), "'%s' cannot be applied to %s and %s", op, left.Kind(), right.Kind())
}

// operatorBuiltin wraps op as a curried function value for operator leaves
// that are not applied to all of their operands.
func operatorBuiltin(op ast.Op) *runtime.BuiltinValue {
	if op.IsUnary() {
		return &runtime.BuiltinValue{Name: string(op), Arity: 1, Impl: func(args []runtime.Value) (runtime.Value, error) {
			return applyUnary(op, args[0])
		}}
	}
	return &runtime.BuiltinValue{Name: string(op), Arity: 2, Impl: func(args []runtime.Value) (runtime.Value, error) {
		return applyBinary(op, args[0], args[1])
	}}
}
