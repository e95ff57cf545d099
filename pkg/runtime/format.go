package runtime

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/NipunSachintha/RPAL-interpreter/pkg/ast"
)

// FormatValue renders v the way RPAL prints answers.
func FormatValue(v Value) string {
	switch val := v.(type) {
	case IntegerValue:
		return strconv.FormatInt(val.Val, 10)
	case StringValue:
		return val.Val
	case BoolValue:
		if val.Val {
			return "true"
		}
		return "false"
	case NilValue:
		return "nil"
	case DummyValue:
		return "dummy"
	case *TupleValue:
		parts := lo.Map(val.Elements, func(elem Value, _ int) string { return FormatValue(elem) })
		return "(" + strings.Join(parts, ", ") + ")"
	case *Closure:
		return "[lambda closure: " + BinderText(val.Binder) + ": " + strconv.Itoa(val.Body) + "]"
	case *RecursiveClosure:
		return "[eta closure: " + BinderText(val.Fn.Binder) + ": " + strconv.Itoa(val.Fn.Body) + "]"
	case FixedPointValue:
		return "Y*"
	case *BuiltinValue:
		return "[builtin: " + val.Name + "]"
	case nil:
		return "<no value>"
	default:
		return "<" + v.Kind().String() + ">"
	}
}

// BinderText renders a lambda binder: a name, a comma list or ().
func BinderText(binder ast.Node) string {
	switch b := binder.(type) {
	case *ast.Identifier:
		return b.Name
	case *ast.Comma:
		return strings.Join(lo.Map(b.Names, func(n ast.Node, _ int) string { return BinderText(n) }), ", ")
	case *ast.EmptyParams:
		return "()"
	case nil:
		return ""
	default:
		return ast.Label(binder)
	}
}
