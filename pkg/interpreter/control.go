package interpreter

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"

	"github.com/NipunSachintha/RPAL-interpreter/pkg/ast"
	"github.com/NipunSachintha/RPAL-interpreter/pkg/runtime"
)

// Item is one element of a control structure.
type Item interface {
	fmt.Stringer
	isItem()
}

type itemImpl struct{}

func (itemImpl) isItem() {}

// NameItem looks up an identifier in the current frame chain.
type NameItem struct {
	itemImpl
	Name string
}

func (i NameItem) String() string { return "<ID:" + i.Name + ">" }

// ConstItem pushes a literal, Y* or a curried operator.
type ConstItem struct {
	itemImpl
	Value runtime.Value
}

func (i ConstItem) String() string {
	switch v := i.Value.(type) {
	case runtime.IntegerValue:
		return fmt.Sprintf("<INT:%d>", v.Val)
	case runtime.StringValue:
		return "<STR:'" + v.Val + "'>"
	case *runtime.BuiltinValue:
		return v.Name
	}
	return "<" + runtime.FormatValue(i.Value) + ">"
}

// LambdaItem builds a closure over structure Delta.
type LambdaItem struct {
	itemImpl
	Delta int
}

func (i LambdaItem) String() string { return fmt.Sprintf("lambda_%d", i.Delta) }

type ApplyItem struct {
	itemImpl
}

func (ApplyItem) String() string { return "gamma" }

type BinaryItem struct {
	itemImpl
	Op ast.Op
}

func (i BinaryItem) String() string { return string(i.Op) }

type UnaryItem struct {
	itemImpl
	Op ast.Op
}

func (i UnaryItem) String() string { return string(i.Op) }

// BetaItem pops a truth value and continues with Then or Else.
type BetaItem struct {
	itemImpl
	Then int
	Else int
}

func (i BetaItem) String() string { return fmt.Sprintf("beta(%d,%d)", i.Then, i.Else) }

// TauItem pops Arity values into a tuple.
type TauItem struct {
	itemImpl
	Arity int
}

func (i TauItem) String() string { return fmt.Sprintf("tau_%d", i.Arity) }

// DeltaItem splices structure Delta into the control in the current frame.
type DeltaItem struct {
	itemImpl
	Delta int
}

func (i DeltaItem) String() string { return fmt.Sprintf("delta_%d", i.Delta) }

// envMarker closes the frame pushed by a closure application.
type envMarker struct {
	itemImpl
	env *runtime.Environment
}

func (i envMarker) String() string { return fmt.Sprintf("e_%d", i.env.ID()) }

// ControlStructure is the linearized body of a lambda, a tuple element or
// a conditional branch. Binder is nil for the latter two.
type ControlStructure struct {
	Index  int
	Binder ast.Node
	Items  []Item
}

// Program is the table of control structures for one standardized tree.
type Program struct {
	Entry      int
	Structures []*ControlStructure
}

// Validate checks that every delta reference names another structure
// in the table.
func (p *Program) Validate() error {
	if p.Entry < 0 || p.Entry >= len(p.Structures) {
		return fmt.Errorf("interpreter: entry structure %d out of range", p.Entry)
	}
	for i, cs := range p.Structures {
		if cs == nil || cs.Index != i {
			return fmt.Errorf("interpreter: structure %d is missing or misnumbered", i)
		}
		for _, item := range cs.Items {
			for _, ref := range deltaRefs(item) {
				if ref < 0 || ref >= len(p.Structures) {
					return fmt.Errorf("interpreter: structure %d references undefined structure %d", i, ref)
				}
				if ref == i {
					return fmt.Errorf("interpreter: structure %d references itself", i)
				}
			}
		}
	}
	return nil
}

func deltaRefs(item Item) []int {
	switch it := item.(type) {
	case LambdaItem:
		return []int{it.Delta}
	case DeltaItem:
		return []int{it.Delta}
	case BetaItem:
		return []int{it.Then, it.Else}
	}
	return nil
}

// Fprint writes one line per structure: its index, binder and items.
func (p *Program) Fprint(w io.Writer) error {
	var b strings.Builder
	for _, cs := range p.Structures {
		fmt.Fprintf(&b, "delta_%d", cs.Index)
		if cs.Binder != nil {
			fmt.Fprintf(&b, " [%s]", runtime.BinderText(cs.Binder))
		}
		b.WriteString(":")
		if len(cs.Items) > 0 {
			b.WriteString(" ")
			b.WriteString(strings.Join(lo.Map(cs.Items, func(it Item, _ int) string { return it.String() }), " "))
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
