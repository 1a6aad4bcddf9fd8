package evaluator

import (
	"bytes"
	"errors"
	"rill/internal/lexer"
	"rill/internal/parser"
	"rill/internal/token"
	"strings"
	"testing"
	"time"
)

type run struct {
	stdout string
	stderr string
	err    error
}

func testRun(t *testing.T, input, stdin string) run {
	t.Helper()

	l := lexer.New(input)
	p := parser.New(l.ScanTokens())
	program := p.ParseProgram()
	for _, err := range l.Errors() {
		t.Fatalf("scan error in %q: %s", input, err)
	}
	for _, err := range p.Errors() {
		t.Fatalf("parse error in %q: %s", input, err)
	}

	var stdout, stderr bytes.Buffer
	e := New(
		WithStdout(&stdout),
		WithStderr(&stderr),
		WithStdin(strings.NewReader(stdin)),
		WithClock(func() time.Time { return time.Date(2024, 5, 1, 0, 0, 2, 0, time.Local) }),
	)
	err := e.Interpret(program)
	return run{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestPrintedValues(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"int x = 2; int y = 3; print x ^ y;", "8\n"},
		{`var s = "a"; s = s + "b"; print s;`, "ab\n"},
		{"float f = 1; print f;", "1\n"},
		{"print 2 ^ 0.5;", "1.4142135623730951\n"},
		{"print 7 / 2;", "3\n"},
		{"print 7 / 2.0;", "3.5\n"},
		{"print 1 + 2 * 3 - 4;", "3\n"},
		{"print -(1 + 2);", "-3\n"},
		{"print 0.1 + 0.2 == 0.3;", "false\n"},
		{"print 1 == 1.0;", "true\n"},
		{`print "a" == "a";`, "true\n"},
		{`print 1 != "1";`, "true\n"},
		{"print nil == nil;", "true\n"},
		{"print nil == false;", "false\n"},
		{"print !false;", "true\n"},
		{"print !(1 < 2);", "false\n"},
		{"print 3 >= 3 and 2 < 1.5;", "false\n"},
		{"var v; print v;", "NIL\n"},
		{"int i; float f; bool b; string s; print i; print f; print b; print s;", "0\n0\nfalse\n\n"},
		{"print clock;", "<native fn clock>\n"},
		{"fun f() {} print f;", "<fn f>\n"},
		{`print toString(1.5) + "!";`, "1.5!\n"},
		{"print getType(1); print getType(1.0); print getType(nil);", "INT\nFLOAT\nNIL\n"},
		{"var v = 5; print getType(v);", "INT\n"},
		{"print clock();", "2000\n"},
		{"int x = 1; { int x = 2; print x; } print x;", "2\n1\n"},
		{"int x = 1; { x = 2; } print x;", "2\n"},
		{"int x = 1; { int x = x + 1; print x; } print x;", "2\n1\n"},
		{"print 2 ^ -1;", "0\n"},
		{"print 2 ^ 62;", "4611686018427387904\n"},
		{"float f; f = 3; print getType(f);", "FLOAT\n"},
		{"var v; v = 2.5; v = 1; print v; print getType(v);", "1\nFLOAT\n"},
	}

	for i, tt := range tests {
		got := testRun(t, tt.input, "")
		if got.err != nil {
			t.Errorf("tests[%d] %q - unexpected error: %v", i, tt.input, got.err)
			continue
		}
		if got.stdout != tt.expected {
			t.Errorf("tests[%d] %q - expected=%q, got=%q", i, tt.input, tt.expected, got.stdout)
		}
	}
}

func TestLogicalShortCircuit(t *testing.T) {
	input := `
bool called = false;
bool mark() { called = true; return true; }
print false and mark();
print called;
print true or mark();
print called;
print false or mark();
print called;
`
	got := testRun(t, input, "")
	if got.err != nil {
		t.Fatalf("unexpected error: %v", got.err)
	}
	expected := "false\nfalse\ntrue\nfalse\ntrue\ntrue\n"
	if got.stdout != expected {
		t.Errorf("expected=%q, got=%q", expected, got.stdout)
	}
}

func TestControlFlow(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"if (1 < 2) print 1; else print 2;", "1\n"},
		{"if (nil) print 1; else print 2;", "2\n"},
		{"int i = 0; while (i < 3) { print i; i = i + 1; }", "0\n1\n2\n"},
		{"for (int i = 0; i < 3; i = i + 1) print i;", "0\n1\n2\n"},
		{"int i = 10; for (int i = 0; i < 1; i = i + 1) print i; print i;", "0\n10\n"},
		{"for (int i = 0; i < 2; i = i + 1) { int j = i * 10; print j; }", "0\n10\n"},
	}

	for i, tt := range tests {
		got := testRun(t, tt.input, "")
		if got.err != nil {
			t.Errorf("tests[%d] - unexpected error: %v", i, got.err)
			continue
		}
		if got.stdout != tt.expected {
			t.Errorf("tests[%d] - expected=%q, got=%q", i, tt.expected, got.stdout)
		}
	}
}

func TestFunctions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"fun int fib(int n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); } print fib(15);", "610\n"},
		{"fun int first() { int i = 0; while (true) { i = i + 1; if (i == 3) return i; } } print first();", "3\n"},
		{"fun float half(float x) { return x / 2; } print half(3);", "1.5\n"},
		{"fun float widen() { return 2; } print getType(widen());", "FLOAT\n"},
		{"fun f() { } print f();", "NIL\n"},
		{"void shout(string s) { printErr s; return; print \"unreached\"; } shout(\"x\");", ""},
		{"fun echo(var v) { return v; } print echo(1); print echo(\"s\");", "1\ns\n"},
		{"int counter = 0; void bump() { counter = counter + 1; } bump(); bump(); print counter;", "2\n"},
		{"fun int add(int a, int b) { return a + b; } print add(1, add(2, 3));", "6\n"},
	}

	for i, tt := range tests {
		got := testRun(t, tt.input, "")
		if got.err != nil {
			t.Errorf("tests[%d] - unexpected error: %v", i, got.err)
			continue
		}
		if got.stdout != tt.expected {
			t.Errorf("tests[%d] - expected=%q, got=%q", i, tt.expected, got.stdout)
		}
	}
}

func TestFunctionsBindToGlobals(t *testing.T) {
	input := `
int x = 1;
fun show() { print x; }
{
  int x = 2;
  show();
}
`
	got := testRun(t, input, "")
	if got.err != nil {
		t.Fatalf("unexpected error: %v", got.err)
	}
	if got.stdout != "1\n" {
		t.Errorf("a function must see the global x, not the caller's. got=%q", got.stdout)
	}
}

func TestPrintErr(t *testing.T) {
	got := testRun(t, `print "out"; printErr "err";`, "")
	if got.err != nil {
		t.Fatalf("unexpected error: %v", got.err)
	}
	if got.stdout != "out\n" || got.stderr != "err\n" {
		t.Errorf("streams wrong. stdout=%q stderr=%q", got.stdout, got.stderr)
	}
}

func TestInput(t *testing.T) {
	got := testRun(t, "string a = input(); string b = input(); string c = input(); print a + b; print c == \"\";", "one\ntwo")
	if got.err != nil {
		t.Fatalf("unexpected error: %v", got.err)
	}
	if got.stdout != "onetwo\ntrue\n" {
		t.Errorf("expected=%q, got=%q", "onetwo\ntrue\n", got.stdout)
	}
}

func TestStringToNumberRecovers(t *testing.T) {
	input := `
float f = stringToNumber("abc");
print f;
print stringToNumber(" 42 ") + 1;
`
	got := testRun(t, input, "")
	if got.err != nil {
		t.Fatalf("malformed input must not abort the run: %v", got.err)
	}
	if got.stdout != "NIL\n43\n" {
		t.Errorf("stdout wrong. got=%q", got.stdout)
	}
	expected := "[line 2] Error at 'stringToNumber': stringToNumber - Unexpected formatting\n"
	if got.stderr != expected {
		t.Errorf("stderr wrong. expected=%q, got=%q", expected, got.stderr)
	}
}

func TestStringToNumberInputs(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`" 42 "`, "42"},
		{`"-1.5e2"`, "-150"},
		{`".5"`, "0.5"},
		{`"+3."`, "3"},
		{`"abc"`, "NIL"},
		{`""`, "NIL"},
		{`"nan"`, "NIL"},
		{`"NaN"`, "NIL"},
		{`"Inf"`, "NIL"},
		{`"-infinity"`, "NIL"},
		{`"0x1p3"`, "NIL"},
		{`"1_000"`, "NIL"},
		{`"1e400"`, "NIL"},
	}

	for i, tt := range tests {
		got := testRun(t, "print stringToNumber("+tt.input+");", "")
		if got.err != nil {
			t.Errorf("tests[%d] %s - unexpected error: %v", i, tt.input, got.err)
			continue
		}
		if got.stdout != tt.expected+"\n" {
			t.Errorf("tests[%d] %s - expected=%q, got=%q", i, tt.input, tt.expected, got.stdout)
		}
		recovered := got.stderr != ""
		if recovered != (tt.expected == "NIL") {
			t.Errorf("tests[%d] %s - unexpected stderr %q", i, tt.input, got.stderr)
		}
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"int i = 1.5;", "[line 1] Error at 'i': Cannot assign type 'FLOAT' to a slot of type 'INT'."},
		{"var v = 1; v = 2.5;", "[line 1] Error at 'v': Cannot assign type 'FLOAT' to a slot of type 'INT'."},
		{"print 1 / 0;", "[line 1] Error at '/': Division by zero."},
		{"print 10 ^ 30;", "[line 1] Error at '^': Integer overflow."},
		{"print 2 ^ 63;", "[line 1] Error at '^': Integer overflow."},
		{"var v; print v + 1;", "[line 1] Error at '+': Operands must be numbers."},
		{"var v; print -v;", "[line 1] Error at '-': Operand must be a number."},
		{`fun a() { return "a"; } fun b() { return 1; } print a() + b();`, "[line 1] Error at '+': Operands must be two numbers or two strings."},
		{"fun int f(var v) { return v; } print f(2.5);", "[line 1] Error at 'return': Invalid return type: expecting 'INT', received 'FLOAT'."},
		{"fun g(int n) { } var v = 1.5; g(v);", "[line 1] Error at ')': Argument 1 type mismatch: expecting 'INT', received 'FLOAT'."},
	}

	for i, tt := range tests {
		got := testRun(t, tt.input, "")
		var runtimeErr *RuntimeError
		if !errors.As(got.err, &runtimeErr) {
			t.Errorf("tests[%d] %q - expected a runtime error, got %v", i, tt.input, got.err)
			continue
		}
		if runtimeErr.Error() != tt.expected {
			t.Errorf("tests[%d] - expected=%q, got=%q", i, tt.expected, runtimeErr.Error())
		}
	}
}

func TestRuntimeErrorStopsExecution(t *testing.T) {
	got := testRun(t, "print 1; print 1 / 0; print 2;", "")
	if got.err == nil {
		t.Fatalf("expected a runtime error")
	}
	if got.stdout != "1\n" {
		t.Errorf("statements after the error must not run. got=%q", got.stdout)
	}
}

func TestBlockFrameDiscardedOnReturn(t *testing.T) {
	e := New(WithStdout(&bytes.Buffer{}))
	l := lexer.New("fun int f() { { int inner = 1; return inner; } } f(); f();")
	p := parser.New(l.ScanTokens())
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}

	if err := e.Interpret(program); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(e.envStack) != 1 || e.CurrentEnv() != e.Globals() {
		t.Errorf("frames leaked: stack depth %d", len(e.envStack))
	}
}

func TestRuntimeErrorFormat(t *testing.T) {
	err := &RuntimeError{Token: token.Token{Type: token.EOF, Line: 3}, Message: "boom"}
	if err.Error() != "[line 3] Error at end: boom" {
		t.Errorf("unexpected format %q", err.Error())
	}
}
