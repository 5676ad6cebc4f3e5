// Package interp holds the runtime value model, environments, the static
// resolver, and the tree-walking evaluator. They share a package because the
// evaluator, resolver and value model are mutually referential by design
// (bound methods close over environments that hold values that reference
// classes that hold methods...), so splitting them apart would just mean
// passing each other around through exported accessors.
package interp

import (
	"fmt"
	"io"
	"time"

	"github.com/samdecook/lox/internal/ast"
	"github.com/samdecook/lox/internal/loxerr"
	"github.com/samdecook/lox/internal/token"
)

// returnSignal is a non-error control-flow value used to unwind a function
// call on `return`. It implements error so it can travel through the same
// (Value, error) channel as real failures, but the Evaluator only ever
// catches it at a call boundary — it never reaches a caller of Run.
type returnSignal struct{ value Value }

func (returnSignal) Error() string { return "return" }

// Interpreter walks a resolved AST, consulting the Resolver's depth map as
// it evaluates. One Interpreter is reused across REPL lines so that globals
// persist; a file run gets a fresh one so that top-level declarations don't
// leak between runs.
type Interpreter struct {
	globals     *Environment
	environment *Environment
	locals      map[ast.Expr]int
	output      io.Writer
}

// New builds an Interpreter that writes `print` output to out and installs
// the native globals (currently just clock()).
func New(out io.Writer) *Interpreter {
	globals := NewEnvironment(nil)
	it := &Interpreter{globals: globals, environment: globals, output: out}
	globals.Define("clock", &NativeFunction{
		Name:   "clock",
		Arity_: 0,
		Call_: func(args []Value) (Value, error) {
			return Number(float64(time.Now().UnixNano()) / 1e9), nil
		},
	})
	return it
}

// SetLocals adds the Resolver's depth table to the ones installed before;
// must be called before Run. Entries from earlier calls are kept, so code
// declared on an earlier REPL line still resolves when called later.
func (it *Interpreter) SetLocals(locals map[ast.Expr]int) {
	if it.locals == nil {
		it.locals = make(map[ast.Expr]int, len(locals))
	}
	for e, depth := range locals {
		it.locals[e] = depth
	}
}

// Run executes an already-resolved program, stopping at the first runtime
// error.
func (it *Interpreter) Run(prog *ast.Program) error {
	for _, s := range prog.Stmts {
		if _, err := it.execute(s); err != nil {
			return err
		}
	}
	return nil
}

// execute runs one statement. A non-nil returnSignal error means a `return`
// is unwinding through this statement; callers that don't own a call
// boundary must propagate it unchanged.
func (it *Interpreter) execute(s ast.Stmt) (Value, error) {
	switch st := s.(type) {
	case *ast.Block:
		return it.executeBlock(st.Stmts, NewEnvironment(it.environment))

	case *ast.Class:
		return it.executeClass(st)

	case *ast.Expression:
		_, err := it.evaluate(st.Expr)
		return nil, err

	case *ast.Function:
		fn := &Function{Decl: st, Closure: it.environment, IsInit: false}
		it.environment.Define(st.Name.Lexeme, fn)
		return nil, nil

	case *ast.If:
		cond, err := it.evaluate(st.Cond)
		if err != nil {
			return nil, err
		}
		if IsTruthy(cond) {
			return it.execute(st.Then)
		} else if st.Else != nil {
			return it.execute(st.Else)
		}
		return nil, nil

	case *ast.Print:
		val, err := it.evaluate(st.Expr)
		if err != nil {
			return nil, err
		}
		if _, err := fmt.Fprintln(it.output, val.String()); err != nil {
			return nil, loxerr.New(loxerr.OutputError, 0, err.Error())
		}
		if f, ok := it.output.(flusher); ok {
			_ = f.Flush()
		}
		return nil, nil

	case *ast.Return:
		var val Value = LoxNil
		if st.Value != nil {
			v, err := it.evaluate(st.Value)
			if err != nil {
				return nil, err
			}
			val = v
		}
		return nil, returnSignal{val}

	case *ast.Var:
		var val Value = LoxNil
		if st.Initializer != nil {
			v, err := it.evaluate(st.Initializer)
			if err != nil {
				return nil, err
			}
			val = v
		}
		it.environment.Define(st.Name.Lexeme, val)
		return nil, nil

	case *ast.While:
		for {
			cond, err := it.evaluate(st.Cond)
			if err != nil {
				return nil, err
			}
			if !IsTruthy(cond) {
				return nil, nil
			}
			if v, err := it.execute(st.Body); err != nil {
				return v, err
			}
		}

	default:
		return nil, nil
	}
}

// flusher lets Print flush line-buffered writers (e.g. bufio.Writer) without
// the interp package importing bufio directly.
type flusher interface{ Flush() error }

// executeBlock runs stmts in a fresh child environment, restoring the
// previous one on the way out even when a statement errors or a return is
// unwinding.
func (it *Interpreter) executeBlock(stmts []ast.Stmt, env *Environment) (Value, error) {
	previous := it.environment
	it.environment = env
	defer func() { it.environment = previous }()

	for _, s := range stmts {
		if v, err := it.execute(s); err != nil {
			return v, err
		}
	}
	return nil, nil
}

func (it *Interpreter) executeClass(st *ast.Class) (Value, error) {
	var superclass *Class
	if st.Superclass != nil {
		sv, err := it.evaluate(st.Superclass)
		if err != nil {
			return nil, err
		}
		sc, ok := sv.(*Class)
		if !ok {
			return nil, loxerr.New(loxerr.SuperclassInvalidType, st.Superclass.Name.Line, "Superclass must be a class.")
		}
		superclass = sc
	}

	it.environment.Define(st.Name.Lexeme, LoxNil)

	methodEnv := it.environment
	if superclass != nil {
		methodEnv = NewEnvironment(it.environment)
		methodEnv.Define("super", superclass)
	}

	methods := make(map[string]*Function, len(st.Methods))
	for _, m := range st.Methods {
		methods[m.Name.Lexeme] = &Function{Decl: m, Closure: methodEnv, IsInit: m.Name.Lexeme == "init"}
	}

	class := &Class{Name: st.Name.Lexeme, Superclass: superclass, Methods: methods}
	it.environment.Assign(st.Name.Lexeme, class, st.Name.Line)
	return nil, nil
}

// evaluate computes the value of an expression.
func (it *Interpreter) evaluate(e ast.Expr) (Value, error) {
	switch ex := e.(type) {
	case *ast.Assign:
		return it.evalAssign(ex)
	case *ast.Binary:
		return it.evalBinary(ex)
	case *ast.Call:
		return it.evalCall(ex)
	case *ast.Get:
		return it.evalGet(ex)
	case *ast.Grouping:
		return it.evaluate(ex.Inner)
	case *ast.Literal:
		return literalValue(ex.Value), nil
	case *ast.Logical:
		return it.evalLogical(ex)
	case *ast.Set:
		return it.evalSet(ex)
	case *ast.Super:
		return it.evalSuper(ex)
	case *ast.This:
		return it.lookUpVariable(ex, "this", ex.Keyword.Line)
	case *ast.Unary:
		return it.evalUnary(ex)
	case *ast.Variable:
		return it.lookUpVariable(ex, ex.Name.Lexeme, ex.Name.Line)
	default:
		return nil, loxerr.New(loxerr.InvalidValue, 0, "unknown expression node")
	}
}

func literalValue(v any) Value {
	switch val := v.(type) {
	case nil:
		return LoxNil
	case float64:
		return Number(val)
	case string:
		return Str(val)
	case bool:
		return Bool(val)
	default:
		return LoxNil
	}
}

// lookUpVariable reads a resolved local at exactly its recorded depth;
// anything the resolver didn't record falls back to a global lookup.
func (it *Interpreter) lookUpVariable(expr ast.Expr, name string, line int) (Value, error) {
	if depth, ok := it.locals[expr]; ok {
		return it.environment.GetAt(depth, name), nil
	}
	return it.globals.Get(name, line)
}

func (it *Interpreter) evalAssign(ex *ast.Assign) (Value, error) {
	val, err := it.evaluate(ex.Value)
	if err != nil {
		return nil, err
	}
	if depth, ok := it.locals[ex]; ok {
		it.environment.AssignAt(depth, ex.Name.Lexeme, val)
		return val, nil
	}
	if err := it.globals.Assign(ex.Name.Lexeme, val, ex.Name.Line); err != nil {
		return nil, err
	}
	return val, nil
}

func (it *Interpreter) evalLogical(ex *ast.Logical) (Value, error) {
	left, err := it.evaluate(ex.Left)
	if err != nil {
		return nil, err
	}
	if ex.Op.Kind == token.Or {
		if IsTruthy(left) {
			return left, nil
		}
	} else {
		if !IsTruthy(left) {
			return left, nil
		}
	}
	return it.evaluate(ex.Right)
}

func (it *Interpreter) evalUnary(ex *ast.Unary) (Value, error) {
	right, err := it.evaluate(ex.Right)
	if err != nil {
		return nil, err
	}
	switch ex.Op.Kind {
	case token.Bang:
		return Bool(!IsTruthy(right)), nil
	case token.Minus:
		n, ok := right.(Number)
		if !ok {
			return nil, loxerr.New(loxerr.NumberExpected, ex.Op.Line, "Operand must be a number.")
		}
		return -n, nil
	}
	return nil, loxerr.New(loxerr.InvalidValue, ex.Op.Line, "unreachable unary operator")
}

func (it *Interpreter) evalBinary(ex *ast.Binary) (Value, error) {
	left, err := it.evaluate(ex.Left)
	if err != nil {
		return nil, err
	}
	right, err := it.evaluate(ex.Right)
	if err != nil {
		return nil, err
	}

	switch ex.Op.Kind {
	case token.Plus:
		if ls, ok := left.(Str); ok {
			if rs, ok := right.(Str); ok {
				return ls + rs, nil
			}
		}
		if ln, ok := left.(Number); ok {
			if rn, ok := right.(Number); ok {
				return ln + rn, nil
			}
		}
		return nil, loxerr.New(loxerr.NumberExpected, ex.Op.Line, "Operands must be two numbers or two strings.")
	case token.Minus:
		a, b, err := numberOperands(left, right, ex.Op.Line)
		if err != nil {
			return nil, err
		}
		return a - b, nil
	case token.Star:
		a, b, err := numberOperands(left, right, ex.Op.Line)
		if err != nil {
			return nil, err
		}
		return a * b, nil
	case token.Slash:
		a, b, err := numberOperands(left, right, ex.Op.Line)
		if err != nil {
			return nil, err
		}
		return a / b, nil
	case token.Greater:
		a, b, err := numberOperands(left, right, ex.Op.Line)
		if err != nil {
			return nil, err
		}
		return Bool(a > b), nil
	case token.GreaterEqual:
		a, b, err := numberOperands(left, right, ex.Op.Line)
		if err != nil {
			return nil, err
		}
		return Bool(a >= b), nil
	case token.Less:
		a, b, err := numberOperands(left, right, ex.Op.Line)
		if err != nil {
			return nil, err
		}
		return Bool(a < b), nil
	case token.LessEqual:
		a, b, err := numberOperands(left, right, ex.Op.Line)
		if err != nil {
			return nil, err
		}
		return Bool(a <= b), nil
	case token.EqualEqual:
		return Bool(valuesEqual(left, right)), nil
	case token.BangEqual:
		return Bool(!valuesEqual(left, right)), nil
	}
	return nil, loxerr.New(loxerr.InvalidValue, ex.Op.Line, "unreachable binary operator")
}

func numberOperands(left, right Value, line int) (Number, Number, error) {
	a, aok := left.(Number)
	b, bok := right.(Number)
	if !aok || !bok {
		return 0, 0, loxerr.New(loxerr.NumberExpected, line, "Operands must be numbers.")
	}
	return a, b, nil
}

func (it *Interpreter) evalCall(ex *ast.Call) (Value, error) {
	callee, err := it.evaluate(ex.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Value, len(ex.Args))
	for i, a := range ex.Args {
		v, err := it.evaluate(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	switch fn := callee.(type) {
	case *Function:
		if len(args) != fn.Arity() {
			return nil, loxerr.New(loxerr.NonMatchingNumberOfArguments, ex.Paren.Line,
				fmt.Sprintf("Expected %d arguments but got %d.", fn.Arity(), len(args)))
		}
		return it.callFunction(fn, args)

	case *NativeFunction:
		if len(args) != fn.Arity() {
			return nil, loxerr.New(loxerr.NonMatchingNumberOfArguments, ex.Paren.Line,
				fmt.Sprintf("Expected %d arguments but got %d.", fn.Arity(), len(args)))
		}
		return fn.Call_(args)

	case *Class:
		if len(args) != fn.Arity() {
			return nil, loxerr.New(loxerr.NonMatchingNumberOfArguments, ex.Paren.Line,
				fmt.Sprintf("Expected %d arguments but got %d.", fn.Arity(), len(args)))
		}
		return it.instantiate(fn, args)

	default:
		return nil, loxerr.New(loxerr.UndefinedCallable, ex.Paren.Line, "Can only call functions and classes.")
	}
}

// callFunction invokes fn: a fresh environment child of the closure,
// parameters bound to arguments, the body run statement by statement, with
// `return` caught here. An initializer always yields the bound instance
// regardless of what its body computed.
func (it *Interpreter) callFunction(fn *Function, args []Value) (Value, error) {
	callEnv := NewEnvironment(fn.Closure)
	for i, param := range fn.Decl.Params {
		callEnv.Define(param.Lexeme, args[i])
	}

	previous := it.environment
	it.environment = callEnv
	defer func() { it.environment = previous }()

	for _, s := range fn.Decl.Body {
		v, err := it.execute(s)
		if err != nil {
			if rs, ok := err.(returnSignal); ok {
				if fn.IsInit {
					return fn.Closure.GetAt(0, "this"), nil
				}
				return rs.value, nil
			}
			return v, err
		}
	}

	if fn.IsInit {
		return fn.Closure.GetAt(0, "this"), nil
	}
	return LoxNil, nil
}

// instantiate allocates an instance of class, runs its "init" method if one
// exists, and returns the instance.
func (it *Interpreter) instantiate(class *Class, args []Value) (Value, error) {
	instance := NewInstance(class)
	if init := class.FindMethod("init"); init != nil {
		if _, err := it.callFunction(init.Bind(instance), args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

func (it *Interpreter) evalGet(ex *ast.Get) (Value, error) {
	obj, err := it.evaluate(ex.Object)
	if err != nil {
		return nil, err
	}
	instance, ok := obj.(*Instance)
	if !ok {
		return nil, loxerr.New(loxerr.InvalidPropertyAccess, ex.Name.Line, "Only instances have properties.")
	}
	if v, ok := instance.Fields[ex.Name.Lexeme]; ok {
		return v, nil
	}
	if method := instance.Class.FindMethod(ex.Name.Lexeme); method != nil {
		return method.Bind(instance), nil
	}
	return nil, loxerr.New(loxerr.UndefinedProperty, ex.Name.Line, "Undefined property '"+ex.Name.Lexeme+"'.")
}

func (it *Interpreter) evalSet(ex *ast.Set) (Value, error) {
	obj, err := it.evaluate(ex.Object)
	if err != nil {
		return nil, err
	}
	instance, ok := obj.(*Instance)
	if !ok {
		return nil, loxerr.New(loxerr.InvalidFieldAccess, ex.Name.Line, "Only instances have fields.")
	}
	val, err := it.evaluate(ex.Value)
	if err != nil {
		return nil, err
	}
	instance.Fields[ex.Name.Lexeme] = val
	return val, nil
}

// evalSuper reads the superclass at its resolved depth; "this" always sits
// exactly one scope shallower, because class construction opens the "super"
// scope before the "this" scope.
func (it *Interpreter) evalSuper(ex *ast.Super) (Value, error) {
	depth := it.locals[ex]
	superclass := it.environment.GetAt(depth, "super").(*Class)
	instance := it.environment.GetAt(depth-1, "this").(*Instance)

	method := superclass.FindMethod(ex.Method.Lexeme)
	if method == nil {
		return nil, loxerr.New(loxerr.UndefinedProperty, ex.Method.Line, "Undefined property '"+ex.Method.Lexeme+"'.")
	}
	return method.Bind(instance), nil
}
