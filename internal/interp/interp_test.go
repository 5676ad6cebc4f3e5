package interp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSrc(t *testing.T, src string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	err := Run(src, &buf)
	return buf.String(), err
}

func TestScopingShadowsInnerBlocksOnly(t *testing.T) {
	out, err := runSrc(t, `
var a = "global a"; var b = "global b"; var c = "global c";
{ var a = "outer a"; var b = "outer b";
  { var a = "inner a"; print a; print b; print c; }
  print a; print b; print c; }
print a; print b; print c;
`)
	require.NoError(t, err)
	assert.Equal(t, "inner a\nouter b\nglobal c\nouter a\nouter b\nglobal c\nglobal a\nglobal b\nglobal c\n", out)
}

func TestRecursiveFibonacci(t *testing.T) {
	out, err := runSrc(t, `
fun fib(n) { if (n <= 1) return n; return fib(n - 2) + fib(n - 1); }
for (var i = 0; i < 5; i = i + 1) print fib(i);
`)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n1\n2\n3\n", out)
}

func TestClosureCapturesVariableByReference(t *testing.T) {
	out, err := runSrc(t, `
var a = "global";
{ fun showA() { print a; } showA(); var a = "block"; showA(); print a; }
`)
	require.NoError(t, err)
	assert.Equal(t, "global\nglobal\nblock\n", out)
}

func TestThisBindsToReceiverInstance(t *testing.T) {
	out, err := runSrc(t, `
class Cake { taste() { var adj = "delicious"; print "The " + this.flavor + " cake is " + adj + "!"; } }
var c = Cake(); c.flavor = "German chocolate"; c.taste();
`)
	require.NoError(t, err)
	assert.Equal(t, "The German chocolate cake is delicious!\n", out)
}

func TestInitAlwaysReturnsThis(t *testing.T) {
	out, err := runSrc(t, `
class Foo { init() { print this; } }
var foo = Foo();
print foo.init();
`)
	require.NoError(t, err)
	assert.Equal(t, "Foo instance\nFoo instance\nFoo instance\n", out)
}

func TestSuperCallsParentMethod(t *testing.T) {
	out, err := runSrc(t, `
class Doughnut { cook() { print "Fry until golden brown."; } }
class BostonCream < Doughnut {
  cook() { super.cook(); print "Pipe full of custard and coat with chocolate."; }
}
BostonCream().cook();
`)
	require.NoError(t, err)
	assert.Equal(t, "Fry until golden brown.\nPipe full of custard and coat with chocolate.\n", out)
}

func TestTopLevelReturnIsAStaticError(t *testing.T) {
	_, err := runSrc(t, "return 1;")
	require.Error(t, err)
}

// TestShortCircuitSkipsRightOperandSideEffects checks that an `or` whose
// left side is truthy never evaluates (and never prints) the right side,
// and likewise for a falsy `and` left side.
func TestShortCircuitSkipsRightOperandSideEffects(t *testing.T) {
	out, err := runSrc(t, `
fun sideEffect() { print "evaluated"; return true; }
if (true or sideEffect()) print "or short-circuited";
if (false and sideEffect()) print "unreachable"; else print "and short-circuited";
`)
	require.NoError(t, err)
	assert.Equal(t, "or short-circuited\nand short-circuited\n", out)
}

func TestDeterministicRerunProducesIdenticalOutput(t *testing.T) {
	src := `fun add(a, b) { return a + b; } print add(2, 3);`
	first, err := runSrc(t, src)
	require.NoError(t, err)
	second, err := runSrc(t, src)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestWrongArityIsNonMatchingNumberOfArguments(t *testing.T) {
	_, err := runSrc(t, `fun f(a, b) { return a + b; } f(1);`)
	require.Error(t, err)
	lerr, ok := err.(interface{ Error() string })
	require.True(t, ok)
	assert.Contains(t, lerr.Error(), "Expected 2 arguments but got 1")
}

func TestCallingClassWithWrongArityErrors(t *testing.T) {
	_, err := runSrc(t, `class C { init(a) {} } C();`)
	require.Error(t, err)
}

func TestCallingNonCallableErrors(t *testing.T) {
	_, err := runSrc(t, `var x = 1; x();`)
	require.Error(t, err)
}

func TestDivisionByZeroIsIEEESemantics(t *testing.T) {
	out, err := runSrc(t, `print 1 / 0; print -1 / 0; print 0 / 0;`)
	require.NoError(t, err)
	assert.Equal(t, "+Inf\n-Inf\nNaN\n", out)
}

func TestStringConcatenationAndMixedEquality(t *testing.T) {
	out, err := runSrc(t, `print "foo" + "bar"; print 1 == "1"; print nil == false;`)
	require.NoError(t, err)
	assert.Equal(t, "foobar\nfalse\nfalse\n", out)
}

func TestFieldsShadowMethodsOfSameName(t *testing.T) {
	out, err := runSrc(t, `
class Box { value() { return "method"; } }
var b = Box();
b.value = "field";
print b.value;
`)
	require.NoError(t, err)
	assert.Equal(t, "field\n", out)
}

func TestNumberPrintingDropsTrailingZero(t *testing.T) {
	out, err := runSrc(t, `print 3; print 3.0; print 3.5;`)
	require.NoError(t, err)
	assert.Equal(t, "3\n3\n3.5\n", out)
}

func TestClockIsRegisteredGlobalWithZeroArity(t *testing.T) {
	out, err := runSrc(t, `print clock() >= 0;`)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestReplLineEchoesBareExpression(t *testing.T) {
	var buf bytes.Buffer
	it := New(&buf)
	val, isExpr, err := RunReplLine(it, "1 + 2;")
	require.NoError(t, err)
	assert.True(t, isExpr)
	assert.Equal(t, "3", val.String())
}

func TestReplLineDoesNotEchoPrintStatement(t *testing.T) {
	var buf bytes.Buffer
	it := New(&buf)
	_, isExpr, err := RunReplLine(it, `print "hi";`)
	require.NoError(t, err)
	assert.False(t, isExpr)
	assert.Equal(t, "hi\n", buf.String())
}

func TestReplPersistsGlobalsAcrossLines(t *testing.T) {
	var buf bytes.Buffer
	it := New(&buf)
	_, _, err := RunReplLine(it, "var counter = 0;")
	require.NoError(t, err)
	_, _, err = RunReplLine(it, "counter = counter + 1;")
	require.NoError(t, err)
	_, isExpr, err := RunReplLine(it, "counter;")
	require.NoError(t, err)
	require.True(t, isExpr)
}
