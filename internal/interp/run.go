package interp

import (
	"io"

	"github.com/samdecook/lox/internal/ast"
	"github.com/samdecook/lox/internal/lexer"
	"github.com/samdecook/lox/internal/parser"
)

// Run lexes, parses, resolves, then evaluates src against a fresh
// Interpreter. Use it for one-shot file runs; a REPL instead keeps its own
// Interpreter across lines and calls RunReplLine so globals persist (see
// cmd/lox).
func Run(src string, out io.Writer) error {
	return RunIn(New(out), src)
}

// RunIn lexes, parses, resolves and evaluates src against an existing
// Interpreter, so callers can reuse globals across calls.
func RunIn(it *Interpreter, src string) error {
	toks, err := lexer.New(src).Scan()
	if err != nil {
		return err
	}

	prog, err := parser.New(toks).Parse()
	if err != nil {
		return err
	}

	resolver := NewResolver()
	if err := resolver.Resolve(prog); err != nil {
		return err
	}
	it.SetLocals(resolver.Locals())

	return it.Run(prog)
}

// RunReplLine runs one REPL line against it. If the line is a single bare
// expression statement, its value is evaluated and returned instead of
// being discarded, so the caller can echo it. ok is true when a value was
// produced this way; it is false for ordinary statements (including
// `print`, which already writes its own output).
func RunReplLine(it *Interpreter, src string) (value Value, ok bool, err error) {
	toks, err := lexer.New(src).Scan()
	if err != nil {
		return nil, false, err
	}

	prog, err := parser.New(toks).Parse()
	if err != nil {
		return nil, false, err
	}

	resolver := NewResolver()
	if err := resolver.Resolve(prog); err != nil {
		return nil, false, err
	}
	it.SetLocals(resolver.Locals())

	if len(prog.Stmts) == 1 {
		if exprStmt, isExpr := prog.Stmts[0].(*ast.Expression); isExpr {
			v, err := it.evaluate(exprStmt.Expr)
			if err != nil {
				return nil, false, err
			}
			return v, true, nil
		}
	}

	return nil, false, it.Run(prog)
}
