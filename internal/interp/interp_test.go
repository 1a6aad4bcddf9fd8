package interp

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"rill/internal/evaluator"
	"rill/internal/parser"
	"strings"
	"testing"
)

type output struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func (o *output) options() Options {
	return Options{Stdout: &o.stdout, Stderr: &o.stderr, Stdin: strings.NewReader("")}
}

func TestRunEndToEnd(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"int x = 2; int y = 3; print x ^ y;", "8\n"},
		{`var s = "a"; s = s + "b"; print s;`, "ab\n"},
		{"float f = 1; print f;", "1\n"},
		{`print "foo" + "bar";`, "foobar\n"},
		{"print 2 ^ 0.5;", "1.4142135623730951\n"},
		{"print getType(1 + 2); print getType(1 + 2.0); print getType(2 * 1.5);", "INT\nFLOAT\nFLOAT\n"},
		{"int x; { int x = 5; print x; } print x;", "5\n0\n"},
		{"fun int fact(int n) { if (n <= 1) return 1; return n * fact(n - 1); } print fact(10);", "3628800\n"},
	}

	for i, tt := range tests {
		var out output
		result := Run(tt.input, out.options())
		if result.ExitCode != ExitOK {
			t.Errorf("tests[%d] %q - exit code %d, stderr=%q", i, tt.input, result.ExitCode, out.stderr.String())
			continue
		}
		if out.stdout.String() != tt.expected {
			t.Errorf("tests[%d] %q - expected=%q, got=%q", i, tt.input, tt.expected, out.stdout.String())
		}
	}
}

func TestRunCheckErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`print "foo" + 1;`, "[line 1] Error at '+': Unexpected type 'STRING' and 'INT' for string concatenation '+'; both must be type 'STRING'."},
		{"int x; int x;", "[line 1] Error at 'x': Variable 'x' already defined in this scope."},
		{"y;", "[line 1] Error at 'y': Variable 'y' not defined."},
		{`var v; v = 5; v = "s";`, "[line 1] Error at '=': Cannot assign type 'STRING' to variable 'v' of type 'INT'."},
		{"fun f(int a) {} f(1, 2);", "[line 1] Error at 'f': Invalid number of arguments: expecting 1, received 2."},
		{`fun f(int a) {} f("x");`, "[line 1] Error at 'f': Argument 1 type mismatch: expecting 'INT', received 'STRING'."},
		{"fun int f() { print 1; }", "[line 1] Error at 'f': Invalid return: function 'f' must return a value of type 'INT'."},
		{`print "open;`, "[line 1] Error: Unterminated string."},
	}

	for i, tt := range tests {
		var out output
		result := Run(tt.input, out.options())
		if result.ExitCode != ExitCheck {
			t.Errorf("tests[%d] %q - expected exit %d, got %d", i, tt.input, ExitCheck, result.ExitCode)
			continue
		}
		if len(result.Errors) == 0 || result.Errors[0].Error() != tt.expected {
			t.Errorf("tests[%d] %q - expected first error %q, got %v", i, tt.input, tt.expected, result.Errors)
		}
		if !strings.HasPrefix(out.stderr.String(), tt.expected+"\n") {
			t.Errorf("tests[%d] - error not written to stderr: %q", i, out.stderr.String())
		}
		if out.stdout.Len() != 0 {
			t.Errorf("tests[%d] - a rejected program must not run, stdout=%q", i, out.stdout.String())
		}
	}
}

func TestRunRuntimeError(t *testing.T) {
	var out output
	result := Run("print 1;\nprint 1 / 0;\nprint 2;", out.options())
	if result.ExitCode != ExitRuntime {
		t.Fatalf("expected exit %d, got %d", ExitRuntime, result.ExitCode)
	}

	var runtimeErr *evaluator.RuntimeError
	if len(result.Errors) != 1 || !errors.As(result.Errors[0], &runtimeErr) {
		t.Fatalf("expected a single runtime error, got %v", result.Errors)
	}
	if out.stderr.String() != "[line 2] Error at '/': Division by zero.\n" {
		t.Errorf("unexpected stderr %q", out.stderr.String())
	}
	if out.stdout.String() != "1\n" {
		t.Errorf("unexpected stdout %q", out.stdout.String())
	}
}

func TestRunRecoveredErrorKeepsExitOK(t *testing.T) {
	var out output
	result := Run(`print stringToNumber("abc"); print "after";`, out.options())
	if result.ExitCode != ExitOK {
		t.Fatalf("expected exit %d, got %d", ExitOK, result.ExitCode)
	}
	if result.Recovered != 1 || len(result.Errors) != 0 {
		t.Errorf("expected one recovered error and no aborting ones, got %d and %v", result.Recovered, result.Errors)
	}
	if out.stdout.String() != "NIL\nafter\n" {
		t.Errorf("unexpected stdout %q", out.stdout.String())
	}
	if !strings.Contains(out.stderr.String(), "stringToNumber - Unexpected formatting") {
		t.Errorf("expected the recovered error on stderr, got %q", out.stderr.String())
	}
}

func TestRunDumpsAST(t *testing.T) {
	var out output
	var tree bytes.Buffer
	opts := out.options()
	opts.DumpAST = parser.DumpText
	opts.DumpWriter = &tree

	result := Run("print 1 + 2;", opts)
	if result.ExitCode != ExitOK {
		t.Fatalf("unexpected exit %d: %s", result.ExitCode, out.stderr.String())
	}
	if tree.String() != "print (1:INT + 2:INT):INT\n" {
		t.Errorf("unexpected dump %q", tree.String())
	}
	if out.stdout.String() != "3\n" {
		t.Errorf("program should still run after the dump, got %q", out.stdout.String())
	}
}

func TestRunWritesTreeFile(t *testing.T) {
	var out output
	opts := out.options()
	opts.DumpFile = filepath.Join(t.TempDir(), "tree.json")

	result := Run("int x = 2; print x * 3;", opts)
	if result.ExitCode != ExitOK {
		t.Fatalf("unexpected exit %d: %s", result.ExitCode, out.stderr.String())
	}
	if out.stdout.String() != "6\n" {
		t.Errorf("program should still run after the dump, got %q", out.stdout.String())
	}

	data, err := os.ReadFile(opts.DumpFile)
	if err != nil {
		t.Fatalf("tree file not written: %v", err)
	}
	var tree map[string]interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		t.Fatalf("tree file is not valid JSON: %v", err)
	}
	if tree["0.type"] != "Program" {
		t.Errorf("unexpected root %v", tree["0.type"])
	}
	if statements, ok := tree["1.statements"].([]interface{}); !ok || len(statements) != 2 {
		t.Errorf("expected two statements, got %v", tree["1.statements"])
	}
}

func TestRunTreeFileUnwritable(t *testing.T) {
	var out output
	opts := out.options()
	opts.DumpFile = filepath.Join(t.TempDir(), "missing", "tree.json")

	result := Run("print 1;", opts)
	if result.ExitCode != ExitUsage {
		t.Errorf("expected exit %d, got %d", ExitUsage, result.ExitCode)
	}
	if out.stdout.Len() != 0 {
		t.Errorf("program must not run when the dump fails, stdout=%q", out.stdout.String())
	}
}

func TestSessionCountsRecoveredPerChunk(t *testing.T) {
	var out output
	s := NewSession(out.options())

	if got := s.Execute(`stringToNumber("x"); stringToNumber("y");`).Recovered; got != 2 {
		t.Errorf("expected 2 recovered errors, got %d", got)
	}
	if got := s.Execute(`print stringToNumber("1");`).Recovered; got != 0 {
		t.Errorf("counts must not carry over between chunks, got %d", got)
	}
}

func TestSessionKeepsState(t *testing.T) {
	var out output
	s := NewSession(out.options())

	chunks := []struct {
		input string
		exit  int
	}{
		{"int x = 1;", ExitOK},
		{"fun int inc(int n) { return n + 1; }", ExitOK},
		{"x = inc(x);", ExitOK},
		{`x = "s";`, ExitCheck},
		{"print x;", ExitOK},
	}
	for i, c := range chunks {
		if got := s.Execute(c.input).ExitCode; got != c.exit {
			t.Errorf("chunk[%d] %q - expected exit %d, got %d", i, c.input, c.exit, got)
		}
	}
	if out.stdout.String() != "2\n" {
		t.Errorf("unexpected stdout %q", out.stdout.String())
	}
}

func TestSessionRejectedChunkLeavesNoTrace(t *testing.T) {
	var out output
	s := NewSession(out.options())

	if got := s.Execute(`var v; int y = "no";`).ExitCode; got != ExitCheck {
		t.Fatalf("expected the chunk to be rejected, got exit %d", got)
	}
	if got := s.Execute(`var v = "s"; int y = 2; print v;`).ExitCode; got != ExitOK {
		t.Fatalf("names from a rejected chunk must not stay declared: %s", out.stderr.String())
	}
	if !strings.HasSuffix(out.stdout.String(), "s\n") {
		t.Errorf("unexpected stdout %q", out.stdout.String())
	}
}

func TestSessionContinuesAfterRuntimeError(t *testing.T) {
	var out output
	s := NewSession(out.options())

	if got := s.Execute("int x = 4; print x / 0;").ExitCode; got != ExitRuntime {
		t.Fatalf("expected a runtime error, got exit %d", got)
	}
	if got := s.Execute("print x;").ExitCode; got != ExitOK {
		t.Fatalf("expected x to survive the failed evaluation: %s", out.stderr.String())
	}
	if out.stdout.String() != "4\n" {
		t.Errorf("unexpected stdout %q", out.stdout.String())
	}
}
