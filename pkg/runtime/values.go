package runtime

import (
	"fmt"

	"github.com/NipunSachintha/RPAL-interpreter/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindInteger Kind = iota
	KindString
	KindBool
	KindNil
	KindDummy
	KindTuple
	KindClosure
	KindFixedPoint
	KindRecursiveClosure
	KindBuiltin
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindString:
		return "string"
	case KindBool:
		return "truthvalue"
	case KindNil:
		return "nil"
	case KindDummy:
		return "dummy"
	case KindTuple:
		return "tuple"
	case KindClosure:
		return "closure"
	case KindFixedPoint:
		return "Y*"
	case KindRecursiveClosure:
		return "eta closure"
	case KindBuiltin:
		return "builtin"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is the common interface for runtime values.
type Value interface {
	Kind() Kind
}

//----------------------------------------------------------------------------
// Scalars
//----------------------------------------------------------------------------

type IntegerValue struct {
	Val int64
}

func (IntegerValue) Kind() Kind { return KindInteger }

type StringValue struct {
	Val string
}

func (StringValue) Kind() Kind { return KindString }

type BoolValue struct {
	Val bool
}

func (BoolValue) Kind() Kind { return KindBool }

// NilValue is the empty tuple.
type NilValue struct{}

func (NilValue) Kind() Kind { return KindNil }

type DummyValue struct{}

func (DummyValue) Kind() Kind { return KindDummy }

//----------------------------------------------------------------------------
// Tuples
//----------------------------------------------------------------------------

type TupleValue struct {
	Elements []Value
}

func (*TupleValue) Kind() Kind { return KindTuple }

// TupleElements returns the elements of a tuple or nil, and false for any
// other value.
func TupleElements(v Value) ([]Value, bool) {
	switch t := v.(type) {
	case *TupleValue:
		return t.Elements, true
	case NilValue:
		return nil, true
	}
	return nil, false
}

//----------------------------------------------------------------------------
// Functions
//----------------------------------------------------------------------------

// Closure pairs a lambda's binder and body structure with the frame that
// was current when the lambda was evaluated.
type Closure struct {
	Binder ast.Node
	Body   int
	Env    *Environment
}

func (*Closure) Kind() Kind { return KindClosure }

// FixedPointValue is Y*. Applying it to a closure yields a RecursiveClosure.
type FixedPointValue struct{}

func (FixedPointValue) Kind() Kind { return KindFixedPoint }

// RecursiveClosure stands for Y* applied to Fn. Applying it to an argument
// first applies Fn to the RecursiveClosure itself.
type RecursiveClosure struct {
	Fn *Closure
}

func (*RecursiveClosure) Kind() Kind { return KindRecursiveClosure }

// BuiltinValue is a named primitive, partially applied until len(Args)
// reaches Arity.
type BuiltinValue struct {
	Name  string
	Arity int
	Args  []Value
	Impl  func(args []Value) (Value, error)
}

func (*BuiltinValue) Kind() Kind { return KindBuiltin }

// WithArg returns a copy of b with arg appended.
func (b *BuiltinValue) WithArg(arg Value) *BuiltinValue {
	args := make([]Value, len(b.Args), len(b.Args)+1)
	copy(args, b.Args)
	return &BuiltinValue{Name: b.Name, Arity: b.Arity, Args: append(args, arg), Impl: b.Impl}
}

// Saturated reports whether b has all of its arguments.
func (b *BuiltinValue) Saturated() bool {
	return len(b.Args) >= b.Arity
}

// IsFunction reports whether v can be applied as a function.
func IsFunction(v Value) bool {
	switch v.Kind() {
	case KindClosure, KindFixedPoint, KindRecursiveClosure, KindBuiltin:
		return true
	}
	return false
}
