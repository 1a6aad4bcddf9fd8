// Package interp wires the lexer, the checking parser and the evaluator
// into a single run and maps the outcome onto a process exit status.
package interp

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"rill/internal/ast"
	"rill/internal/evaluator"
	"rill/internal/lexer"
	"rill/internal/object"
	"rill/internal/parser"
)

// Exit statuses, following the sysexits convention.
const (
	ExitOK      = 0
	ExitUsage   = 64
	ExitCheck   = 65
	ExitNoInput = 66
	ExitRuntime = 70
)

type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// DumpAST, when set, is one of the parser dump modes; the checked tree is
	// written to DumpWriter (Stderr when nil) before evaluation.
	DumpAST    string
	DumpWriter io.Writer

	// DumpFile, when set, receives the checked tree as JSON.
	DumpFile string
}

func (o Options) withDefaults() Options {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.DumpWriter == nil {
		o.DumpWriter = o.Stderr
	}
	return o
}

// Result reports how a run ended. Errors holds every error that aborted
// the run. Recovered counts the errors reported without aborting it.
type Result struct {
	ExitCode  int
	Errors    []error
	Recovered int
}

func (o Options) newEvaluator() *evaluator.Evaluator {
	return evaluator.New(
		evaluator.WithStdout(o.Stdout),
		evaluator.WithStderr(o.Stderr),
		evaluator.WithStdin(o.Stdin),
	)
}

// Run checks and, when the check is clean, evaluates source.
func Run(source string, opts Options) Result {
	opts = opts.withDefaults()
	program, errs := check(source, parser.NewGlobals())
	if len(errs) > 0 {
		return reportCheck(opts.Stderr, errs)
	}
	if err := dump(program, opts); err != nil {
		return Result{ExitCode: ExitUsage, Errors: []error{err}}
	}
	return evaluate(opts.newEvaluator(), program, opts.Stderr)
}

// check scans and parses source against globals. Scan errors are listed
// before parse errors.
func check(source string, globals *object.Environment) (*ast.Program, []error) {
	l := lexer.New(source)
	tokens := l.ScanTokens()
	p := parser.NewWithGlobals(tokens, globals)
	program := p.ParseProgram()

	var errs []error
	for _, err := range l.Errors() {
		errs = append(errs, err)
	}
	for _, err := range p.Errors() {
		errs = append(errs, err)
	}

	slog.Debug("checked source",
		slog.Int("tokens", len(tokens)),
		slog.Int("statements", len(program.Statements)),
		slog.Int("errors", len(errs)))
	return program, errs
}

func reportCheck(stderr io.Writer, errs []error) Result {
	for _, err := range errs {
		fmt.Fprintln(stderr, err.Error())
	}
	return Result{ExitCode: ExitCheck, Errors: errs}
}

func dump(program *ast.Program, opts Options) error {
	if opts.DumpFile != "" {
		if err := parser.WriteASTToJSON(program, opts.DumpFile); err != nil {
			fmt.Fprintln(opts.Stderr, err.Error())
			return err
		}
		slog.Debug("tree written", slog.String("path", opts.DumpFile))
	}
	if opts.DumpAST == "" {
		return nil
	}
	if err := parser.DumpAST(opts.DumpWriter, program, opts.DumpAST); err != nil {
		fmt.Fprintln(opts.Stderr, err.Error())
		return err
	}
	return nil
}

func evaluate(e *evaluator.Evaluator, program *ast.Program, stderr io.Writer) Result {
	before := e.Recovered()
	err := e.Interpret(program)
	recovered := e.Recovered() - before
	if err == nil {
		return Result{ExitCode: ExitOK, Recovered: recovered}
	}

	var runtimeErr *evaluator.RuntimeError
	if !errors.As(err, &runtimeErr) {
		err = fmt.Errorf("unexpected evaluation failure: %w", err)
	}
	slog.Debug("run aborted", slog.Any("error", err))
	fmt.Fprintln(stderr, err.Error())
	return Result{ExitCode: ExitRuntime, Errors: []error{err}, Recovered: recovered}
}
