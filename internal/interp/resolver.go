package interp

import (
	"github.com/samdecook/lox/internal/ast"
	"github.com/samdecook/lox/internal/loxerr"
)

type functionType int

const (
	funcNone functionType = iota
	funcFunction
	funcInitializer
	funcMethod
)

type classType int

const (
	classNone classType = iota
	classClass
	classSubclass
)

// Resolver is a static pass over the parsed tree: it binds every
// variable/this/super reference to a lexical depth, without evaluating
// anything. Its output (Locals) is consumed by the Evaluator.
type Resolver struct {
	locals    map[ast.Expr]int
	scopes    []map[string]bool
	funcType  functionType
	classType classType
}

func NewResolver() *Resolver {
	return &Resolver{locals: make(map[ast.Expr]int)}
}

// Locals returns the expr→depth table computed by Resolve.
func (r *Resolver) Locals() map[ast.Expr]int { return r.locals }

// Resolve walks an entire program, returning the first static error found.
func (r *Resolver) Resolve(prog *ast.Program) error {
	for _, s := range prog.Stmts {
		if err := r.resolveStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) beginScope() { r.scopes = append(r.scopes, map[string]bool{}) }
func (r *Resolver) endScope()   { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *Resolver) declare(name string, line int) error {
	if len(r.scopes) == 0 {
		return nil
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, ok := scope[name]; ok {
		return loxerr.New(loxerr.VariableAlreadyDefinedInScope, line,
			"Already a variable named '"+name+"' in this scope.")
	}
	scope[name] = false
	return nil
}

func (r *Resolver) define(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = true
}

func (r *Resolver) resolveLocal(expr ast.Expr, name string) {
	for depth := len(r.scopes) - 1; depth >= 0; depth-- {
		if _, ok := r.scopes[depth][name]; ok {
			r.locals[expr] = len(r.scopes) - 1 - depth
			return
		}
	}
	// Not found in any scope: treat as global, no record needed.
}

func (r *Resolver) resolveStmt(s ast.Stmt) error {
	switch st := s.(type) {
	case *ast.Block:
		r.beginScope()
		defer r.endScope()
		for _, d := range st.Stmts {
			if err := r.resolveStmt(d); err != nil {
				return err
			}
		}
		return nil

	case *ast.Class:
		return r.resolveClass(st)

	case *ast.Expression:
		return r.resolveExpr(st.Expr)

	case *ast.Function:
		if err := r.declare(st.Name.Lexeme, st.Name.Line); err != nil {
			return err
		}
		r.define(st.Name.Lexeme)
		return r.resolveFunction(st, funcFunction)

	case *ast.If:
		if err := r.resolveExpr(st.Cond); err != nil {
			return err
		}
		if err := r.resolveStmt(st.Then); err != nil {
			return err
		}
		if st.Else != nil {
			return r.resolveStmt(st.Else)
		}
		return nil

	case *ast.Print:
		return r.resolveExpr(st.Expr)

	case *ast.Return:
		if r.funcType == funcNone {
			return loxerr.New(loxerr.TopLevelReturn, st.Keyword.Line, "Can't return from top-level code.")
		}
		if st.Value != nil {
			if r.funcType == funcInitializer {
				return loxerr.New(loxerr.ReturnValueFromInitializer, st.Keyword.Line,
					"Can't return a value from an initializer.")
			}
			return r.resolveExpr(st.Value)
		}
		return nil

	case *ast.Var:
		if err := r.declare(st.Name.Lexeme, st.Name.Line); err != nil {
			return err
		}
		if st.Initializer != nil {
			if err := r.resolveExpr(st.Initializer); err != nil {
				return err
			}
		}
		r.define(st.Name.Lexeme)
		return nil

	case *ast.While:
		if err := r.resolveExpr(st.Cond); err != nil {
			return err
		}
		return r.resolveStmt(st.Body)

	default:
		return nil
	}
}

func (r *Resolver) resolveClass(st *ast.Class) error {
	enclosingClass := r.classType
	r.classType = classClass

	if err := r.declare(st.Name.Lexeme, st.Name.Line); err != nil {
		return err
	}
	r.define(st.Name.Lexeme)

	if st.Superclass != nil {
		if st.Superclass.Name.Lexeme == st.Name.Lexeme {
			return loxerr.New(loxerr.SuperclassSelfInheritance, st.Superclass.Name.Line,
				"A class can't inherit from itself.")
		}
		r.classType = classSubclass
		if err := r.resolveExpr(st.Superclass); err != nil {
			return err
		}

		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
		defer r.endScope()
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true

	for _, method := range st.Methods {
		fnType := funcMethod
		if method.Name.Lexeme == "init" {
			fnType = funcInitializer
		}
		if err := r.resolveFunction(method, fnType); err != nil {
			r.endScope()
			r.classType = enclosingClass
			return err
		}
	}

	r.endScope()
	r.classType = enclosingClass
	return nil
}

func (r *Resolver) resolveFunction(fn *ast.Function, fnType functionType) error {
	enclosing := r.funcType
	r.funcType = fnType
	defer func() { r.funcType = enclosing }()

	r.beginScope()
	defer r.endScope()

	for _, param := range fn.Params {
		if err := r.declare(param.Lexeme, param.Line); err != nil {
			return err
		}
		r.define(param.Lexeme)
	}
	for _, s := range fn.Body {
		if err := r.resolveStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) resolveExpr(e ast.Expr) error {
	switch ex := e.(type) {
	case *ast.Assign:
		if err := r.resolveExpr(ex.Value); err != nil {
			return err
		}
		r.resolveLocal(ex, ex.Name.Lexeme)
		return nil

	case *ast.Binary:
		if err := r.resolveExpr(ex.Left); err != nil {
			return err
		}
		return r.resolveExpr(ex.Right)

	case *ast.Call:
		if err := r.resolveExpr(ex.Callee); err != nil {
			return err
		}
		for _, a := range ex.Args {
			if err := r.resolveExpr(a); err != nil {
				return err
			}
		}
		return nil

	case *ast.Get:
		return r.resolveExpr(ex.Object)

	case *ast.Grouping:
		return r.resolveExpr(ex.Inner)

	case *ast.Literal:
		return nil

	case *ast.Logical:
		if err := r.resolveExpr(ex.Left); err != nil {
			return err
		}
		return r.resolveExpr(ex.Right)

	case *ast.Set:
		if err := r.resolveExpr(ex.Value); err != nil {
			return err
		}
		return r.resolveExpr(ex.Object)

	case *ast.Super:
		if r.classType == classNone {
			return loxerr.New(loxerr.SuperOutsideClass, ex.Keyword.Line, "Can't use 'super' outside of a class.")
		}
		if r.classType != classSubclass {
			return loxerr.New(loxerr.SuperWithoutSuperclass, ex.Keyword.Line,
				"Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(ex, "super")
		return nil

	case *ast.This:
		if r.classType == classNone {
			return loxerr.New(loxerr.ThisOutsideClass, ex.Keyword.Line, "Can't use 'this' outside of a class.")
		}
		r.resolveLocal(ex, "this")
		return nil

	case *ast.Unary:
		return r.resolveExpr(ex.Right)

	case *ast.Variable:
		if len(r.scopes) > 0 {
			if defined, declared := r.scopes[len(r.scopes)-1][ex.Name.Lexeme]; declared && !defined {
				return loxerr.New(loxerr.VariableNotDefined, ex.Name.Line,
					"Can't read local variable '"+ex.Name.Lexeme+"' in its own initializer.")
			}
		}
		r.resolveLocal(ex, ex.Name.Lexeme)
		return nil

	default:
		return nil
	}
}
