package interp

import (
	"strconv"

	"github.com/samdecook/lox/internal/loxerr"
)

// Environment is a lexical scope frame: a name→value map plus an optional
// parent link. Closures, bound methods and classes retain a reference to
// the environment active at their declaration, which is how captured
// variables outlive their textual scope.
type Environment struct {
	parent *Environment
	values map[string]Value
}

// NewEnvironment creates a child scope of parent (nil for the global scope).
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{parent: parent, values: make(map[string]Value)}
}

// Define binds name to value in this environment, overwriting any existing
// binding — redeclaration is allowed (handy at the REPL, where re-running a
// `var` line shouldn't be an error).
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Get looks up name in this environment, failing over to parents.
func (e *Environment) Get(name string, line int) (Value, error) {
	if v, ok := e.values[name]; ok {
		return v, nil
	}
	if e.parent != nil {
		return e.parent.Get(name, line)
	}
	return nil, loxerr.New(loxerr.UndefinedVariable, line, "Undefined variable '"+name+"'.")
}

// GetAt walks exactly depth parent links and reads name from that
// environment, per the resolver's static depth. The name is guaranteed
// present there so long as resolution and evaluation agree on scoping — a
// miss indicates a bug in resolution, not a user-facing error.
func (e *Environment) GetAt(depth int, name string) Value {
	env := e.ancestor(depth)
	v, ok := env.values[name]
	if !ok {
		panic("lox: resolved variable '" + name + "' missing at depth " + strconv.Itoa(depth))
	}
	return v
}

// Assign writes to the nearest environment (including this one) that
// already defines name.
func (e *Environment) Assign(name string, value Value, line int) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			env.values[name] = value
			return nil
		}
	}
	return loxerr.New(loxerr.UndefinedVariable, line, "Undefined variable '"+name+"'.")
}

// AssignAt writes name at exactly depth parent links up.
func (e *Environment) AssignAt(depth int, name string, value Value) {
	e.ancestor(depth).values[name] = value
}

func (e *Environment) ancestor(depth int) *Environment {
	env := e
	for i := 0; i < depth; i++ {
		env = env.parent
	}
	return env
}
