package interpreter

import (
	"github.com/NipunSachintha/RPAL-interpreter/pkg/ast"
	"github.com/NipunSachintha/RPAL-interpreter/pkg/runtime"
)

type linearizer struct {
	structures []*ControlStructure
}

// Linearize flattens a standardized tree into a table of control
// structures. Structure 0 is the program body; lambda bodies, tuple
// elements and conditional branches get their own entries, numbered in
// the order they are met in a pre-order walk.
func Linearize(tree ast.Node) (*Program, error) {
	l := &linearizer{}
	if _, err := l.structure(nil, tree); err != nil {
		return nil, err
	}
	prog := &Program{Entry: 0, Structures: l.structures}
	if err := prog.Validate(); err != nil {
		return nil, err
	}
	return prog, nil
}

func (l *linearizer) structure(binder, body ast.Node) (int, error) {
	idx := len(l.structures)
	cs := &ControlStructure{Index: idx, Binder: binder}
	l.structures = append(l.structures, cs)
	items, err := l.emit(body)
	if err != nil {
		return 0, err
	}
	cs.Items = items
	return idx, nil
}

// emit returns node's items in control order: the last item runs first.
func (l *linearizer) emit(node ast.Node) ([]Item, error) {
	switch n := node.(type) {
	case *ast.Identifier:
		return []Item{NameItem{Name: n.Name}}, nil
	case *ast.IntegerLiteral:
		return []Item{ConstItem{Value: runtime.IntegerValue{Val: n.Value}}}, nil
	case *ast.StringLiteral:
		return []Item{ConstItem{Value: runtime.StringValue{Val: n.Value}}}, nil
	case *ast.Literal:
		return []Item{ConstItem{Value: literalValue(n.Kind)}}, nil
	case *ast.YStar:
		return []Item{ConstItem{Value: runtime.FixedPointValue{}}}, nil
	case *ast.Operator:
		return []Item{ConstItem{Value: operatorBuiltin(n.Op)}}, nil
	case *ast.Lambda:
		if len(n.Params) != 1 {
			return nil, ast.Malformed(n, "expected one parameter, found %d", len(n.Params))
		}
		if err := checkBinder(n.Params[0]); err != nil {
			return nil, err
		}
		idx, err := l.structure(n.Params[0], n.Body)
		if err != nil {
			return nil, err
		}
		return []Item{LambdaItem{Delta: idx}}, nil
	case *ast.Gamma:
		return l.emitGamma(n)
	case *ast.Tau:
		if len(n.Elems) < 2 {
			return nil, ast.Malformed(n, "expected at least two elements, found %d", len(n.Elems))
		}
		items := []Item{TauItem{Arity: len(n.Elems)}}
		for _, elem := range n.Elems {
			idx, err := l.structure(nil, elem)
			if err != nil {
				return nil, err
			}
			items = append(items, DeltaItem{Delta: idx})
		}
		return items, nil
	case *ast.Conditional:
		cond, err := l.emit(n.Cond)
		if err != nil {
			return nil, err
		}
		thenIdx, err := l.structure(nil, n.Then)
		if err != nil {
			return nil, err
		}
		elseIdx, err := l.structure(nil, n.Else)
		if err != nil {
			return nil, err
		}
		return append([]Item{BetaItem{Then: thenIdx, Else: elseIdx}}, cond...), nil
	case *ast.Equal:
		return nil, ast.Malformed(n, "definition outside of a binding")
	case nil:
		return nil, ast.Malformed(nil, "missing subtree")
	default:
		return nil, ast.Malformed(node, "not a standardized node")
	}
}

func (l *linearizer) emitGamma(n *ast.Gamma) ([]Item, error) {
	if len(n.Args) != 1 {
		return nil, ast.Malformed(n, "expected one argument, found %d", len(n.Args))
	}
	arg := n.Args[0]

	// gamma <unop> E
	if op, ok := n.Fn.(*ast.Operator); ok && op.Op.IsUnary() {
		operand, err := l.emit(arg)
		if err != nil {
			return nil, err
		}
		return append([]Item{UnaryItem{Op: op.Op}}, operand...), nil
	}
	// gamma (gamma <binop> E1) E2
	if inner, ok := n.Fn.(*ast.Gamma); ok && len(inner.Args) == 1 {
		if op, ok := inner.Fn.(*ast.Operator); ok && op.Op.IsBinary() {
			left, err := l.emit(inner.Args[0])
			if err != nil {
				return nil, err
			}
			right, err := l.emit(arg)
			if err != nil {
				return nil, err
			}
			items := append([]Item{BinaryItem{Op: op.Op}}, left...)
			return append(items, right...), nil
		}
	}

	fn, err := l.emit(n.Fn)
	if err != nil {
		return nil, err
	}
	rand, err := l.emit(arg)
	if err != nil {
		return nil, err
	}
	items := append([]Item{ApplyItem{}}, fn...)
	return append(items, rand...), nil
}

func literalValue(kind ast.LiteralKind) runtime.Value {
	switch kind {
	case ast.LiteralTrue:
		return runtime.BoolValue{Val: true}
	case ast.LiteralFalse:
		return runtime.BoolValue{Val: false}
	case ast.LiteralNil:
		return runtime.NilValue{}
	default:
		return runtime.DummyValue{}
	}
}

func checkBinder(binder ast.Node) error {
	switch b := binder.(type) {
	case *ast.Identifier, *ast.EmptyParams:
		return nil
	case *ast.Comma:
		if len(b.Names) == 0 {
			return ast.Malformed(b, "empty binder list")
		}
		for _, name := range b.Names {
			if _, ok := name.(*ast.Identifier); !ok {
				return ast.Malformed(b, "binder list element '%s' is not an identifier", ast.Label(name))
			}
		}
		return nil
	}
	return ast.Malformed(binder, "'%s' cannot be a lambda binder", ast.Label(binder))
}
