package interpreter

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/NipunSachintha/RPAL-interpreter/pkg/ast"
	"github.com/NipunSachintha/RPAL-interpreter/pkg/runtime"
)

// Options configures a Machine.
type Options struct {
	// Output receives everything written by Print. Defaults to io.Discard.
	Output io.Writer
	// MaxSteps bounds the number of control items executed; 0 means no limit.
	MaxSteps int
	// Logger receives debug records for frame pushes, pops and applications.
	Logger *slog.Logger
}

// Machine is a control/stack/environment evaluator for one Program.
type Machine struct {
	program *Program
	out     io.Writer
	logger  *slog.Logger
	limit   int

	control []Item
	values  []runtime.Value
	envs    []*runtime.Environment
	nextEnv int
	steps   int
}

// NewMachine prepares a machine for program; Run evaluates it.
func NewMachine(program *Program, opts Options) *Machine {
	out := opts.Output
	if out == nil {
		out = io.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Machine{program: program, out: out, logger: logger, limit: opts.MaxSteps}
}

// Steps reports how many control items the last Run executed.
func (m *Machine) Steps() int {
	return m.steps
}

// Run evaluates the program and returns its answer.
func (m *Machine) Run() (runtime.Value, error) {
	if err := m.program.Validate(); err != nil {
		return nil, err
	}
	primitive := runtime.NewEnvironment(0, nil, builtinBindings(m.out))
	m.control = m.control[:0]
	m.values = m.values[:0]
	m.envs = []*runtime.Environment{primitive}
	m.nextEnv = 1
	m.steps = 0

	m.control = append(m.control, envMarker{env: primitive})
	m.pushStructure(m.program.Entry)

	for len(m.control) > 0 {
		if m.limit > 0 && m.steps >= m.limit {
			return nil, runtimeErrorf(ErrStepLimit, "", "evaluation did not finish within %d steps", m.limit)
		}
		m.steps++
		item := m.control[len(m.control)-1]
		m.control = m.control[:len(m.control)-1]
		if err := m.step(item); err != nil {
			return nil, err
		}
	}
	if len(m.values) != 1 {
		return nil, fmt.Errorf("interpreter: machine stopped with %d values on the stack", len(m.values))
	}
	return m.values[0], nil
}

func (m *Machine) pushStructure(delta int) {
	m.control = append(m.control, m.program.Structures[delta].Items...)
}

func (m *Machine) push(v runtime.Value) {
	m.values = append(m.values, v)
}

func (m *Machine) pop() (runtime.Value, error) {
	if len(m.values) == 0 {
		return nil, fmt.Errorf("interpreter: value stack underflow")
	}
	v := m.values[len(m.values)-1]
	m.values = m.values[:len(m.values)-1]
	return v, nil
}

func (m *Machine) env() *runtime.Environment {
	return m.envs[len(m.envs)-1]
}

func (m *Machine) step(item Item) error {
	switch it := item.(type) {
	case NameItem:
		v, ok := m.env().Lookup(it.Name)
		if !ok {
			return runtimeErrorf(ErrUnboundIdentifier, it.Name, "unbound identifier '%s'", it.Name)
		}
		m.push(v)
	case ConstItem:
		m.push(it.Value)
	case LambdaItem:
		binder := m.program.Structures[it.Delta].Binder
		m.push(&runtime.Closure{Binder: binder, Body: it.Delta, Env: m.env()})
	case ApplyItem:
		rator, err := m.pop()
		if err != nil {
			return err
		}
		rand, err := m.pop()
		if err != nil {
			return err
		}
		return m.apply(rator, rand)
	case BinaryItem:
		left, err := m.pop()
		if err != nil {
			return err
		}
		right, err := m.pop()
		if err != nil {
			return err
		}
		result, err := applyBinary(it.Op, left, right)
		if err != nil {
			return err
		}
		m.push(result)
	case UnaryItem:
		operand, err := m.pop()
		if err != nil {
			return err
		}
		result, err := applyUnary(it.Op, operand)
		if err != nil {
			return err
		}
		m.push(result)
	case BetaItem:
		cond, err := m.pop()
		if err != nil {
			return err
		}
		b, ok := cond.(runtime.BoolValue)
		if !ok {
			return runtimeErrorf(ErrTypeMismatch, "->", "condition must be a truth value, got %s", cond.Kind())
		}
		if b.Val {
			m.pushStructure(it.Then)
		} else {
			m.pushStructure(it.Else)
		}
	case TauItem:
		if len(m.values) < it.Arity {
			return fmt.Errorf("interpreter: tau_%d with %d values on the stack", it.Arity, len(m.values))
		}
		elems := make([]runtime.Value, it.Arity)
		for i := range elems {
			elems[i], _ = m.pop()
		}
		m.push(&runtime.TupleValue{Elements: elems})
	case DeltaItem:
		m.pushStructure(it.Delta)
	case envMarker:
		top := m.env()
		if top != it.env {
			return fmt.Errorf("interpreter: frame e_%d closed out of order", it.env.ID())
		}
		m.envs = m.envs[:len(m.envs)-1]
		m.logger.Debug("pop frame", slog.Int("env", top.ID()), slog.Int("depth", len(m.envs)))
	default:
		return fmt.Errorf("interpreter: unknown control item %T", item)
	}
	return nil
}

func (m *Machine) apply(rator, rand runtime.Value) error {
	if m.logger.Enabled(context.Background(), slog.LevelDebug) {
		m.logger.Debug("apply", slog.String("rator", runtime.FormatValue(rator)), slog.String("rand", rand.Kind().String()))
	}
	switch fn := rator.(type) {
	case *runtime.Closure:
		bindings, err := bind(fn.Binder, rand)
		if err != nil {
			return err
		}
		env := runtime.NewEnvironment(m.nextEnv, fn.Env, bindings)
		m.nextEnv++
		m.envs = append(m.envs, env)
		m.logger.Debug("push frame", slog.Int("env", env.ID()), slog.Int("parent", fn.Env.ID()), slog.Int("depth", len(m.envs)))
		m.control = append(m.control, envMarker{env: env})
		m.pushStructure(fn.Body)
	case *runtime.BuiltinValue:
		next := fn.WithArg(rand)
		if !next.Saturated() {
			m.push(next)
			return nil
		}
		result, err := next.Impl(next.Args)
		if err != nil {
			return err
		}
		m.push(result)
	case runtime.FixedPointValue:
		closure, ok := rand.(*runtime.Closure)
		if !ok {
			return runtimeErrorf(ErrNotApplicable, "Y*", "Y* expects a function, got %s", rand.Kind())
		}
		m.push(&runtime.RecursiveClosure{Fn: closure})
	case *runtime.RecursiveClosure:
		// Apply Fn to the recursive closure, then apply that result to rand.
		m.control = append(m.control, ApplyItem{}, ApplyItem{})
		m.push(rand)
		m.push(fn)
		m.push(fn.Fn)
	case *runtime.TupleValue:
		return m.selectElement(fn.Elements, rand)
	case runtime.NilValue:
		return m.selectElement(nil, rand)
	default:
		return runtimeErrorf(ErrNotApplicable, runtime.FormatValue(rator), "%s '%s' cannot be applied", rator.Kind(), runtime.FormatValue(rator))
	}
	return nil
}

func bind(binder ast.Node, arg runtime.Value) (map[string]runtime.Value, error) {
	switch b := binder.(type) {
	case *ast.Identifier:
		return map[string]runtime.Value{b.Name: arg}, nil
	case *ast.EmptyParams:
		return nil, nil
	case *ast.Comma:
		elems, ok := runtime.TupleElements(arg)
		if !ok || len(elems) != len(b.Names) {
			return nil, runtimeErrorf(ErrTypeMismatch, runtime.BinderText(b),
				"cannot bind %s to (%s)", describeArity(arg), runtime.BinderText(b))
		}
		out := make(map[string]runtime.Value, len(elems))
		for i, name := range b.Names {
			out[name.(*ast.Identifier).Name] = elems[i]
		}
		return out, nil
	}
	return nil, fmt.Errorf("interpreter: unsupported binder %s", ast.Label(binder))
}

func describeArity(v runtime.Value) string {
	if elems, ok := runtime.TupleElements(v); ok {
		return fmt.Sprintf("a %d-tuple", len(elems))
	}
	return v.Kind().String()
}

// selectElement applies a tuple to an integer: 1-based selection.
func (m *Machine) selectElement(elems []runtime.Value, index runtime.Value) error {
	i, ok := index.(runtime.IntegerValue)
	if !ok {
		return runtimeErrorf(ErrTypeMismatch, "tuple", "tuple selection needs an integer, got %s", index.Kind())
	}
	if i.Val < 1 || i.Val > int64(len(elems)) {
		return runtimeErrorf(ErrTupleIndex, fmt.Sprint(i.Val), "index %d out of range for a tuple of %d", i.Val, len(elems))
	}
	m.push(elems[i.Val-1])
	return nil
}
