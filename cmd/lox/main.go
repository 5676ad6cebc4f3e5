// Command lox is the driver for the Lox interpreter: given a script path it
// runs the file once, and given none it opens an interactive REPL.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/samdecook/lox/internal/interp"
	"github.com/samdecook/lox/internal/lexer"
	"github.com/samdecook/lox/internal/parser"
)

var (
	tokenize = flag.Bool("tokenize", false, "print the token stream and exit")
	parseAST = flag.Bool("parse", false, "print the parsed syntax tree and exit")
)

func main() {
	flag.Parse()

	if flag.NArg() == 0 {
		runRepl()
		return
	}

	path := flag.Arg(0)
	contents, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	os.Exit(runFile(string(contents), os.Stdout, os.Stderr))
}

// runFile lexes, optionally prints debug output, then parses/resolves/
// evaluates once with a fresh Interpreter. It returns the process exit code:
// 0 on success, 65 on a lex/parse/resolve (static) error, 70 on a runtime
// error.
func runFile(src string, out, diag io.Writer) int {
	toks, lexErr := lexer.New(src).Scan()

	if *tokenize {
		for _, t := range toks {
			fmt.Fprintln(out, t.String())
		}
	}
	if lexErr != nil {
		reportDiagnostic(diag, lexErr)
		return 65
	}
	if *tokenize {
		return 0
	}

	prog, err := parser.New(toks).Parse()
	if err != nil {
		reportDiagnostic(diag, err)
		return 65
	}
	if *parseAST {
		fmt.Fprint(out, prog.String())
		return 0
	}

	resolver := interp.NewResolver()
	if err := resolver.Resolve(prog); err != nil {
		reportDiagnostic(diag, err)
		return 65
	}

	it := interp.New(out)
	it.SetLocals(resolver.Locals())
	if err := it.Run(prog); err != nil {
		reportDiagnostic(diag, err)
		return 70
	}

	return 0
}

func reportDiagnostic(w io.Writer, err error) {
	color.New(color.FgRed).Fprintln(w, err.Error())
}

const (
	banner = `Lox`
	prompt = "lox> "
)

// runRepl keeps a single Interpreter alive across lines so that globals
// persist — a file run gets a fresh Interpreter, the REPL does not.
func runRepl() {
	color.New(color.FgCyan).Fprintln(os.Stdout, banner+" — type an expression or statement, Ctrl+D to quit")

	rl, err := readline.New(prompt)
	if err != nil {
		// Fall back to a plain scanner if the terminal doesn't support
		// readline (e.g. input is piped), rather than failing the REPL.
		runPlainRepl(os.Stdin, os.Stdout)
		return
	}
	defer rl.Close()

	it := interp.New(os.Stdout)
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			fmt.Fprintln(os.Stdout, "")
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		replEval(it, line)
	}
}

// runPlainRepl is the non-interactive fallback for piped input: read lines
// with bufio and keep going after an error.
func runPlainRepl(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	it := interp.New(out)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		replEval(it, line)
	}
}

func replEval(it *interp.Interpreter, line string) {
	val, isExpr, err := interp.RunReplLine(it, line)
	if err != nil {
		reportDiagnostic(os.Stderr, err)
		return
	}
	if isExpr {
		color.New(color.FgGreen).Fprintln(os.Stdout, val.String())
	}
}
