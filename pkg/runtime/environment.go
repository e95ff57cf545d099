package runtime

import (
	"sort"

	"github.com/samber/lo"
)

// Environment is one frame of the CSE machine. Its bindings are fixed when
// it is created; frames are shared by every closure that captured them.
type Environment struct {
	id       int
	bindings map[string]Value
	parent   *Environment
}

// NewEnvironment creates a frame nested under parent (nil for the
// primitive frame). The bindings map is copied.
func NewEnvironment(id int, parent *Environment, bindings map[string]Value) *Environment {
	values := make(map[string]Value, len(bindings))
	for k, v := range bindings {
		values[k] = v
	}
	return &Environment{id: id, bindings: values, parent: parent}
}

// ID is the frame number shown in traces and closure renderings.
func (e *Environment) ID() int {
	return e.id
}

// Parent exposes the enclosing frame (nil for the primitive frame).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Lookup retrieves a binding, searching outward through the frame chain.
func (e *Environment) Lookup(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.bindings[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Keys returns this frame's own bindings in sorted order.
func (e *Environment) Keys() []string {
	keys := lo.Keys(e.bindings)
	sort.Strings(keys)
	return keys
}
