package object

import (
	"log/slog"
	"lx/internal/diag"
	"sync/atomic"
)

var nextID atomic.Uint64

// Environment is one lexical scope. Constants and variables live in separate
// tables; a name may be bound in at most one of them per environment.
type Environment struct {
	ID        uint64
	Outer     *Environment
	Variables map[string]Object
	Constants map[string]Object
}

func nextEnvID() uint64 {
	return nextID.Add(1)
}

func NewEnvironment() *Environment {
	return &Environment{
		ID:        nextEnvID(),
		Variables: make(map[string]Object),
		Constants: make(map[string]Object),
	}
}

// NewEnclosedEnvironment creates a child scope of outer.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.Outer = outer
	slog.Debug("new env",
		slog.Uint64("id", env.ID),
		slog.Uint64("outer", outer.ID),
	)
	return env
}

// Root walks the parent chain up to the outermost environment.
func (e *Environment) Root() *Environment {
	env := e
	for env.Outer != nil {
		env = env.Outer
	}
	return env
}

// Lookup resolves name in this environment, then its ancestors. Within one
// environment constants are consulted before variables.
func (e *Environment) Lookup(name string) (Object, error) {
	for env := e; env != nil; env = env.Outer {
		if val, ok := env.Constants[name]; ok {
			return val, nil
		}
		if val, ok := env.Variables[name]; ok {
			return val, nil
		}
	}
	return nil, diag.Name("cannot find variable %s", name)
}

// Declare binds name in this environment only. Shadowing an ancestor's
// binding is allowed; rebinding a local name of either kind is not.
func (e *Environment) Declare(name string, value Object, constant bool) error {
	if _, ok := e.Constants[name]; ok {
		return diag.Name("cannot redeclare constant %s", name)
	}
	if _, ok := e.Variables[name]; ok {
		return diag.Name("cannot redeclare variable %s", name)
	}

	if constant {
		e.Constants[name] = value
	} else {
		e.Variables[name] = value
	}
	return nil
}

// Reassign updates a variable of this environment. A constant with the same
// name anywhere up the chain blocks the assignment.
func (e *Environment) Reassign(name string, value Object) error {
	for env := e; env != nil; env = env.Outer {
		if _, ok := env.Constants[name]; ok {
			return diag.Name("cannot reassign constant %s", name)
		}
	}
	if _, ok := e.Variables[name]; !ok {
		return diag.Name("cannot find variable %s", name)
	}
	e.Variables[name] = value
	return nil
}
