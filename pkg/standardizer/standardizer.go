// Package standardizer rewrites RPAL syntax trees into the standardized
// form executed by the CSE machine: lambda and gamma nodes of arity one,
// tau, comma, equal, Y*, conditionals and operator leaves.
package standardizer

import (
	"github.com/NipunSachintha/RPAL-interpreter/pkg/ast"
)

// Standardize returns the standardized form of node. Children are
// rewritten before their parent and node itself is never modified, so
// leaves may be shared between the input and the result.
func Standardize(node ast.Node) (ast.Node, error) {
	switch n := node.(type) {
	case nil:
		return nil, ast.Malformed(nil, "missing subtree")
	case *ast.Identifier, *ast.IntegerLiteral, *ast.StringLiteral, *ast.Literal,
		*ast.YStar, *ast.EmptyParams, *ast.Operator:
		return node, nil
	case *ast.Let:
		return standardizeBinding(n, n.Def, n.Body)
	case *ast.Where:
		return standardizeBinding(n, n.Def, n.Body)
	case *ast.FcnForm:
		return standardizeFcnForm(n)
	case *ast.Lambda:
		if len(n.Params) == 0 {
			return nil, ast.Malformed(n, "lambda without parameters")
		}
		params, err := standardizeAll(n.Params)
		if err != nil {
			return nil, err
		}
		body, err := Standardize(n.Body)
		if err != nil {
			return nil, err
		}
		return curry(params, body), nil
	case *ast.Within:
		return standardizeWithin(n)
	case *ast.And:
		return standardizeAnd(n)
	case *ast.Rec:
		def, err := Standardize(n.Def)
		if err != nil {
			return nil, err
		}
		eq, ok := def.(*ast.Equal)
		if !ok {
			return nil, ast.Malformed(n, "expected a definition, found '%s'", ast.Label(def))
		}
		fixed := ast.NewGamma(ast.NewYStar(), ast.NewLambda([]ast.Node{eq.Name}, eq.Value))
		return ast.NewEqual(eq.Name, fixed), nil
	case *ast.At:
		kids, err := standardizeAll([]ast.Node{n.Left, n.Name, n.Right})
		if err != nil {
			return nil, err
		}
		return ast.NewGamma(ast.NewGamma(kids[1], kids[0]), kids[2]), nil
	case *ast.BinaryOp:
		kids, err := standardizeAll([]ast.Node{n.Left, n.Right})
		if err != nil {
			return nil, err
		}
		return ast.NewGamma(ast.NewGamma(ast.NewOperator(n.Op), kids[0]), kids[1]), nil
	case *ast.UnaryOp:
		operand, err := Standardize(n.Operand)
		if err != nil {
			return nil, err
		}
		return ast.NewGamma(ast.NewOperator(n.Op), operand), nil
	case *ast.Gamma:
		if len(n.Args) == 0 {
			return nil, ast.Malformed(n, "application without an argument")
		}
		kids, err := standardizeAll(n.Children())
		if err != nil {
			return nil, err
		}
		out := kids[0]
		for _, arg := range kids[1:] {
			out = ast.NewGamma(out, arg)
		}
		return out, nil
	case *ast.Tau:
		if len(n.Elems) == 0 {
			return nil, ast.Malformed(n, "tuple without elements")
		}
		elems, err := standardizeAll(n.Elems)
		if err != nil {
			return nil, err
		}
		if len(elems) == 1 {
			return elems[0], nil
		}
		return ast.NewTau(elems), nil
	case *ast.Comma:
		names, err := standardizeAll(n.Names)
		if err != nil {
			return nil, err
		}
		return ast.NewComma(names), nil
	case *ast.Equal:
		kids, err := standardizeAll([]ast.Node{n.Name, n.Value})
		if err != nil {
			return nil, err
		}
		return ast.NewEqual(kids[0], kids[1]), nil
	case *ast.Conditional:
		kids, err := standardizeAll([]ast.Node{n.Cond, n.Then, n.Else})
		if err != nil {
			return nil, err
		}
		return ast.NewConditional(kids[0], kids[1], kids[2]), nil
	default:
		return nil, ast.Malformed(node, "unknown node")
	}
}

func standardizeAll(nodes []ast.Node) ([]ast.Node, error) {
	out := make([]ast.Node, len(nodes))
	for i, node := range nodes {
		std, err := Standardize(node)
		if err != nil {
			return nil, err
		}
		out[i] = std
	}
	return out, nil
}

// curry nests one single-parameter lambda per binder around body.
func curry(params []ast.Node, body ast.Node) ast.Node {
	out := body
	for i := len(params) - 1; i >= 0; i-- {
		out = ast.NewLambda([]ast.Node{params[i]}, out)
	}
	return out
}

// let (X = E) P and P where (X = E) both become gamma (lambda X P) E.
func standardizeBinding(owner, def, body ast.Node) (ast.Node, error) {
	stdDef, err := Standardize(def)
	if err != nil {
		return nil, err
	}
	eq, ok := stdDef.(*ast.Equal)
	if !ok {
		return nil, ast.Malformed(owner, "expected a definition, found '%s'", ast.Label(stdDef))
	}
	stdBody, err := Standardize(body)
	if err != nil {
		return nil, err
	}
	return ast.NewGamma(ast.NewLambda([]ast.Node{eq.Name}, stdBody), eq.Value), nil
}

func standardizeFcnForm(n *ast.FcnForm) (ast.Node, error) {
	if len(n.Params) == 0 {
		return nil, ast.Malformed(n, "function form without parameters")
	}
	params, err := standardizeAll(n.Params)
	if err != nil {
		return nil, err
	}
	body, err := Standardize(n.Body)
	if err != nil {
		return nil, err
	}
	return ast.NewEqual(n.Name, curry(params, body)), nil
}

func standardizeWithin(n *ast.Within) (ast.Node, error) {
	kids, err := standardizeAll([]ast.Node{n.Outer, n.Inner})
	if err != nil {
		return nil, err
	}
	outer, ok := kids[0].(*ast.Equal)
	if !ok {
		return nil, ast.Malformed(n, "expected a definition, found '%s'", ast.Label(kids[0]))
	}
	inner, ok := kids[1].(*ast.Equal)
	if !ok {
		return nil, ast.Malformed(n, "expected a definition, found '%s'", ast.Label(kids[1]))
	}
	scoped := ast.NewGamma(ast.NewLambda([]ast.Node{outer.Name}, inner.Value), outer.Value)
	return ast.NewEqual(inner.Name, scoped), nil
}

// and (X1 = E1) ... (Xn = En) becomes = (, X1 ... Xn) (tau E1 ... En).
func standardizeAnd(n *ast.And) (ast.Node, error) {
	if len(n.Defs) == 0 {
		return nil, ast.Malformed(n, "no definitions")
	}
	defs, err := standardizeAll(n.Defs)
	if err != nil {
		return nil, err
	}
	names := make([]ast.Node, len(defs))
	values := make([]ast.Node, len(defs))
	for i, def := range defs {
		eq, ok := def.(*ast.Equal)
		if !ok {
			return nil, ast.Malformed(n, "element %d is '%s', expected a definition", i+1, ast.Label(def))
		}
		names[i] = eq.Name
		values[i] = eq.Value
	}
	if len(defs) == 1 {
		return defs[0], nil
	}
	return ast.NewEqual(ast.NewComma(names), ast.NewTau(values)), nil
}
