package interp

import (
	"log/slog"
	"rill/internal/evaluator"
	"rill/internal/object"
	"rill/internal/parser"
)

// Session runs source one chunk at a time against a single global scope,
// the way the REPL feeds it lines. A chunk that fails the check leaves both
// the checking and the runtime globals exactly as they were.
type Session struct {
	opts      Options
	globals   *object.Environment
	evaluator *evaluator.Evaluator
	chunks    int
}

func NewSession(opts Options) *Session {
	opts = opts.withDefaults()
	return &Session{
		opts:      opts,
		globals:   parser.NewGlobals(),
		evaluator: opts.newEvaluator(),
	}
}

// Execute checks and evaluates one chunk. Declarations of a chunk that
// passes the check stay visible to later chunks even when evaluation fails.
func (s *Session) Execute(source string) Result {
	s.chunks++
	candidate := s.globals.Copy()
	program, errs := check(source, candidate)
	if len(errs) > 0 {
		slog.Debug("session chunk rejected", slog.Int("chunk", s.chunks), slog.Int("errors", len(errs)))
		return reportCheck(s.opts.Stderr, errs)
	}
	s.globals = candidate

	if err := dump(program, s.opts); err != nil {
		return Result{ExitCode: ExitUsage, Errors: []error{err}}
	}
	return evaluate(s.evaluator, program, s.opts.Stderr)
}
