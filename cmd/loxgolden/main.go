// Command loxgolden runs every *.lox file under a directory of golden test
// cases, compares its captured stdout against a sibling *.expected file, and
// prints a colorized pass/fail report.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/samdecook/lox/internal/interp"
)

var dir = flag.String("dir", "testdata/golden", "directory of *.lox / *.expected golden case pairs")

// Case is one golden test: a .lox program and the output it must produce.
type Case struct {
	Name     string
	Source   string
	Expected string
}

// Result is the outcome of running one Case.
type Result struct {
	Case   Case
	Actual string
	Err    error
}

func (r Result) Passed() bool {
	return r.Err == nil && r.Actual == r.Case.Expected
}

const width = 100

func main() {
	flag.Parse()

	cases, err := collect(*dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	results := run(cases)
	failed := report(results)

	if failed > 0 {
		os.Exit(1)
	}
}

// collect walks dir for *.lox files and pairs each with its *.expected
// sibling.
func collect(dir string) ([]Case, error) {
	var cases []Case

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".lox") {
			return nil
		}

		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		expectedPath := strings.TrimSuffix(path, ".lox") + ".expected"
		expected, err := os.ReadFile(expectedPath)
		if err != nil {
			return fmt.Errorf("missing golden file for %s: %w", path, err)
		}

		rel, _ := filepath.Rel(dir, path)
		cases = append(cases, Case{Name: rel, Source: string(src), Expected: string(expected)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(cases, func(i, j int) bool { return cases[i].Name < cases[j].Name })
	return cases, nil
}

func run(cases []Case) []Result {
	results := make([]Result, len(cases))
	for i, c := range cases {
		var buf bytes.Buffer
		err := interp.Run(c.Source, &buf)
		results[i] = Result{Case: c, Actual: buf.String(), Err: err}
	}
	return results
}

// report prints a pass/fail line per case (and, for failures, the error or
// the full expected and actual output) and returns the number of failures.
func report(results []Result) int {
	failed := 0
	divider := strings.Repeat("-", width)

	for _, r := range results {
		if r.Passed() {
			fmt.Printf("  [%s] %s\n", color.GreenString("passed"), r.Case.Name)
			continue
		}

		failed++
		fmt.Println(divider)
		fmt.Printf("  [%s] %s\n", color.RedString("failed"), r.Case.Name)
		if r.Err != nil {
			fmt.Printf("error: %s\n", r.Err)
		} else {
			fmt.Println("expected:")
			fmt.Println(r.Case.Expected)
			fmt.Println("actual:")
			fmt.Println(r.Actual)
		}
		fmt.Println(divider)
	}

	fmt.Println()
	fmt.Printf("%d/%d passed\n", len(results)-failed, len(results))
	return failed
}
