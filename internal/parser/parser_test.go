package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdecook/lox/internal/ast"
	"github.com/samdecook/lox/internal/lexer"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.New(src).Scan()
	require.NoError(t, err)
	prog, err := New(toks).Parse()
	require.NoError(t, err)
	return prog
}

func TestParsesArithmeticPrecedence(t *testing.T) {
	prog := parse(t, "1 + 2 * 3;")
	require.Len(t, prog.Stmts, 1)

	exprStmt := prog.Stmts[0].(*ast.Expression)
	bin := exprStmt.Expr.(*ast.Binary)
	assert.Equal(t, "+", bin.Op.Lexeme)

	right := bin.Right.(*ast.Binary)
	assert.Equal(t, "*", right.Op.Lexeme)
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	prog := parse(t, "a = b = 3;")
	assign := prog.Stmts[0].(*ast.Expression).Expr.(*ast.Assign)
	assert.Equal(t, "a", assign.Name.Lexeme)
	inner := assign.Value.(*ast.Assign)
	assert.Equal(t, "b", inner.Name.Lexeme)
}

func TestAssignmentToGetProducesSet(t *testing.T) {
	prog := parse(t, "a.b = 3;")
	set := prog.Stmts[0].(*ast.Expression).Expr.(*ast.Set)
	assert.Equal(t, "b", set.Name.Lexeme)
}

func TestInvalidAssignmentTargetIsAnError(t *testing.T) {
	toks, err := lexer.New("1 = 2;").Scan()
	require.NoError(t, err)
	_, err = New(toks).Parse()
	require.Error(t, err)
}

func TestForDesugarsToWhile(t *testing.T) {
	prog := parse(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	require.Len(t, prog.Stmts, 1)

	outer := prog.Stmts[0].(*ast.Block)
	require.Len(t, outer.Stmts, 2)
	_, isVar := outer.Stmts[0].(*ast.Var)
	assert.True(t, isVar)

	while := outer.Stmts[1].(*ast.While)
	body := while.Body.(*ast.Block)
	require.Len(t, body.Stmts, 2)
	_, isPrint := body.Stmts[0].(*ast.Print)
	assert.True(t, isPrint)
	_, isIncrExpr := body.Stmts[1].(*ast.Expression)
	assert.True(t, isIncrExpr)
}

func TestForWithoutConditionDefaultsToTrue(t *testing.T) {
	prog := parse(t, "for (;;) print 1;")
	while := prog.Stmts[0].(*ast.While)
	lit := while.Cond.(*ast.Literal)
	assert.Equal(t, true, lit.Value)
}

func TestClassDeclarationWithSuperclass(t *testing.T) {
	prog := parse(t, "class A < B { init() {} foo(x) { return x; } }")
	class := prog.Stmts[0].(*ast.Class)
	assert.Equal(t, "A", class.Name.Lexeme)
	require.NotNil(t, class.Superclass)
	assert.Equal(t, "B", class.Superclass.Name.Lexeme)
	require.Len(t, class.Methods, 2)
	assert.Equal(t, "init", class.Methods[0].Name.Lexeme)
	assert.Equal(t, "foo", class.Methods[1].Name.Lexeme)
}

func TestCallAndGetChaining(t *testing.T) {
	prog := parse(t, "a.b(1, 2).c;")
	get := prog.Stmts[0].(*ast.Expression).Expr.(*ast.Get)
	assert.Equal(t, "c", get.Name.Lexeme)
	call := get.Object.(*ast.Call)
	require.Len(t, call.Args, 2)
}

func TestSuperMethodReference(t *testing.T) {
	prog := parse(t, "class A < B { m() { return super.m(); } }")
	class := prog.Stmts[0].(*ast.Class)
	ret := class.Methods[0].Body[0].(*ast.Return)
	call := ret.Value.(*ast.Call)
	sup := call.Callee.(*ast.Super)
	assert.Equal(t, "m", sup.Method.Lexeme)
}

func TestMissingSemicolonIsAnError(t *testing.T) {
	toks, err := lexer.New("print 1").Scan()
	require.NoError(t, err)
	_, err = New(toks).Parse()
	require.Error(t, err)
}
