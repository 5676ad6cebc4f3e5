package interp

import (
	"strconv"

	"github.com/samdecook/lox/internal/ast"
)

// Value is any Lox runtime value: Number, Str, Bool, Nil, *Function,
// *NativeFunction, *Class, or *Instance. Primitives compare structurally;
// functions, classes and instances compare by identity (Go pointer
// equality).
type Value interface {
	String() string
}

// Number is a Lox number, backed by IEEE-754 float64 throughout — division
// by zero and comparisons follow IEEE semantics rather than erroring.
type Number float64

func (n Number) String() string { return formatNumber(float64(n)) }

// formatNumber prints the shortest decimal that round-trips, with no
// trailing decimal point for integral values.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Str is a Lox string.
type Str string

func (s Str) String() string { return string(s) }

// Bool is a Lox boolean.
type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// NilVal is the single Lox nil value.
type NilVal struct{}

func (NilVal) String() string { return "nil" }

// LoxNil is the canonical nil value instance.
var LoxNil = NilVal{}

// IsTruthy applies Lox's truthiness rule: only false and nil are falsy,
// everything else — including 0 and the empty string — is truthy.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case NilVal:
		return false
	case Bool:
		return bool(val)
	default:
		return true
	}
}

// valuesEqual is structural equality for primitives and identity equality
// for callables/instances. Mixed kinds are never equal.
func valuesEqual(a, b Value) bool {
	_, aNil := a.(NilVal)
	_, bNil := b.(NilVal)
	if aNil || bNil {
		return aNil && bNil
	}

	switch av := a.(type) {
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case Str:
		bv, ok := b.(Str)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	default:
		return a == b
	}
}

// Function is a user-defined Lox function or method: the parameter/body
// declaration plus the environment captured at declaration time.
type Function struct {
	Decl    *ast.Function
	Closure *Environment
	IsInit  bool
}

func (f *Function) String() string { return "<fn " + f.Decl.Name.Lexeme + ">" }

// Arity returns the number of declared parameters.
func (f *Function) Arity() int { return len(f.Decl.Params) }

// Bind produces a new Function with the same declaration and body whose
// closure is a child of f's closure with "this" defined, so that a later
// call sees the receiver without the caller passing it explicitly.
func (f *Function) Bind(instance *Instance) *Function {
	env := NewEnvironment(f.Closure)
	env.Define("this", instance)
	return &Function{Decl: f.Decl, Closure: env, IsInit: f.IsInit}
}

// NativeFunction is a Go-implemented global such as clock().
type NativeFunction struct {
	Name   string
	Arity_ int
	Call_  func(args []Value) (Value, error)
}

func (n *NativeFunction) String() string { return "<native fn " + n.Name + ">" }
func (n *NativeFunction) Arity() int     { return n.Arity_ }

// Class is a Lox class: its own methods plus an optional superclass chain
// shared by every subclass instance.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

func (c *Class) String() string { return c.Name }

// FindMethod walks the superclass chain looking for name.
func (c *Class) FindMethod(name string) *Function {
	if m, ok := c.Methods[name]; ok {
		return m
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil
}

// Arity is the arity of "init", or 0 if the class has none.
func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// Instance is a Lox object: a reference to its class plus mutable fields.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

func (i *Instance) String() string { return i.Class.Name + " instance" }

// NewInstance allocates an instance with an empty field map.
func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: make(map[string]Value)}
}
