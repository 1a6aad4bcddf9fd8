package evaluator

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"rill/internal/ast"
	"rill/internal/object"
	"rill/internal/token"
	"time"
)

// RuntimeError aborts the run. It is reported in the same format as parse
// errors.
type RuntimeError struct {
	Token   token.Token
	Message string
}

func (e *RuntimeError) Error() string {
	if e.Token.Type == token.EOF {
		return fmt.Sprintf("[line %d] Error at end: %s", e.Token.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Token.Line, e.Token.Lexeme, e.Message)
}

func newError(tok token.Token, format string, a ...interface{}) *RuntimeError {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, a...)}
}

// ReturnSignal carries a function's result out of nested statements to
// the call boundary. It travels next to the error result, never inside it.
type ReturnSignal struct {
	Token token.Token
	Value object.Object
}

type Evaluator struct {
	envStack []*object.Environment
	globals  *object.Environment

	stdout io.Writer
	stderr io.Writer
	stdin  *bufio.Reader
	now    func() time.Time

	// callToken is the call currently entering a native, used to place
	// recovered errors.
	callToken token.Token
	recovered int
}

type Option func(*Evaluator)

func WithStdout(w io.Writer) Option {
	return func(e *Evaluator) { e.stdout = w }
}

func WithStderr(w io.Writer) Option {
	return func(e *Evaluator) { e.stderr = w }
}

func WithStdin(r io.Reader) Option {
	return func(e *Evaluator) { e.stdin = bufio.NewReader(r) }
}

// WithClock replaces the time source used by clock().
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

// New returns an evaluator with a fresh global frame enclosed by the
// native functions.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		stdout: os.Stdout,
		stderr: os.Stderr,
		stdin:  bufio.NewReader(os.Stdin),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.globals = object.NewEnclosedEnvironment(object.NewBuiltinEnvironment(true))
	e.PushEnv(e.globals)
	return e
}

func (e *Evaluator) PushEnv(env *object.Environment) {
	e.envStack = append(e.envStack, env)
}

func (e *Evaluator) CurrentEnv() *object.Environment {
	if len(e.envStack) == 0 {
		panic("Environment stack is empty in the current frame")
	}
	return e.envStack[len(e.envStack)-1]
}

func (e *Evaluator) PopEnv() {
	if len(e.envStack) == 0 {
		panic("Attempted to pop from an empty environment stack")
	}
	e.envStack = e.envStack[:len(e.envStack)-1]
}

func (e *Evaluator) Globals() *object.Environment {
	return e.globals
}

// Recovered is the number of errors reported without aborting the run.
func (e *Evaluator) Recovered() int {
	return e.recovered
}

// Interpret executes program statement by statement in the global frame.
// The first runtime error stops execution.
func (e *Evaluator) Interpret(program *ast.Program) error {
	for _, stmt := range program.Statements {
		if _, err := e.execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) execute(node ast.Statement) (*ReturnSignal, error) {
	switch node := node.(type) {

	case *ast.ExpressionStatement:
		_, err := e.eval(node.Expression)
		return nil, err

	case *ast.PrintStatement:
		val, err := e.eval(node.Value)
		if err != nil {
			return nil, err
		}
		out := e.stdout
		if node.ToStderr {
			out = e.stderr
		}
		_, err = fmt.Fprintln(out, object.Unwrap(val).Inspect())
		return nil, err

	case *ast.VarStatement:
		return nil, e.evalVarStatement(node)

	case *ast.FunctionStatement:
		fn := &object.UserFunction{Declaration: node, Globals: e.globals}
		binding := object.NewFunction(node.ParamTags(), node.ReturnType, fn)
		if err := e.CurrentEnv().DefineFunction(node.Name.Lexeme, binding); err != nil {
			return nil, newError(node.Name, "%s", err.Error())
		}
		return nil, nil

	case *ast.BlockStatement:
		return e.executeBlock(node.Statements, object.NewEnclosedEnvironment(e.CurrentEnv()))

	case *ast.IfStatement:
		condition, err := e.eval(node.Condition)
		if err != nil {
			return nil, err
		}
		if object.IsTruthy(condition) {
			return e.execute(node.ThenBranch)
		} else if node.ElseBranch != nil {
			return e.execute(node.ElseBranch)
		}
		return nil, nil

	case *ast.WhileStatement:
		for {
			condition, err := e.eval(node.Condition)
			if err != nil {
				return nil, err
			}
			if !object.IsTruthy(condition) {
				return nil, nil
			}
			signal, err := e.execute(node.Body)
			if err != nil || signal != nil {
				return signal, err
			}
		}

	case *ast.ReturnStatement:
		signal := &ReturnSignal{Token: node.Token, Value: object.NIL}
		if node.ReturnValue != nil {
			val, err := e.eval(node.ReturnValue)
			if err != nil {
				return nil, err
			}
			signal.Value = val
		}
		return signal, nil
	}

	return nil, fmt.Errorf("unknown statement %T", node)
}

// executeBlock runs statements in env. The frame is discarded on every
// exit path, including errors and returns.
func (e *Evaluator) executeBlock(statements []ast.Statement, env *object.Environment) (*ReturnSignal, error) {
	e.PushEnv(env)
	defer e.PopEnv()

	for _, stmt := range statements {
		signal, err := e.execute(stmt)
		if err != nil || signal != nil {
			return signal, err
		}
	}
	return nil, nil
}

// evalVarStatement evaluates the initializer before declaring the slot,
// so an initializer in a shadowing block still reads the outer variable.
func (e *Evaluator) evalVarStatement(node *ast.VarStatement) error {
	var val object.Object = object.Zero(node.Tag)
	if node.Value != nil {
		v, err := e.eval(node.Value)
		if err != nil {
			return err
		}
		val = v
	}

	binding := object.NewVariable(node.Tag)
	if err := binding.Set(val); err != nil {
		return newError(node.Name, "%s", err.Error())
	}
	if err := e.CurrentEnv().Define(node.Name.Lexeme, binding); err != nil {
		return newError(node.Name, "%s", err.Error())
	}
	return nil
}

func (e *Evaluator) eval(node ast.Expression) (object.Object, error) {
	switch node := node.(type) {

	case *ast.Literal:
		return literalObject(node), nil

	case *ast.Grouping:
		return e.eval(node.Expression)

	case *ast.Unary:
		right, err := e.eval(node.Right)
		if err != nil {
			return nil, err
		}
		return e.evalPrefixExpression(node.Token, object.Unwrap(right))

	case *ast.Logical:
		return e.evalLogicalExpression(node)

	case *ast.Binary:
		left, err := e.eval(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := e.eval(node.Right)
		if err != nil {
			return nil, err
		}
		return e.evalInfixExpression(node.Token, object.Unwrap(left), object.Unwrap(right))

	case *ast.Variable:
		return e.evalVariable(node)

	case *ast.Assign:
		val, err := e.eval(node.Value)
		if err != nil {
			return nil, err
		}
		stored, err := e.CurrentEnv().Assign(node.Name(), val)
		if err != nil {
			return nil, newError(node.Token, "%s", err.Error())
		}
		return stored, nil

	case *ast.Call:
		return e.evalCall(node)
	}

	return nil, fmt.Errorf("unknown expression %T", node)
}

func literalObject(node *ast.Literal) object.Object {
	switch v := node.Value.(type) {
	case int64:
		return &object.Integer{Value: v}
	case float64:
		return &object.Float{Value: v}
	case string:
		return &object.String{Value: v}
	case bool:
		return object.NativeBoolToBooleanObject(v)
	default:
		return object.NIL
	}
}

// evalVariable reads the value namespace first and falls back to the
// function namespace, so a bare function name evaluates to the function.
func (e *Evaluator) evalVariable(node *ast.Variable) (object.Object, error) {
	val, err := e.CurrentEnv().Get(node.Name())
	if err == nil {
		return val, nil
	}
	if fn, fnErr := e.CurrentEnv().GetFunction(node.Name()); fnErr == nil {
		return fn, nil
	}
	return nil, newError(node.Token, "%s", err.Error())
}

// evalLogicalExpression short-circuits and yields the deciding operand.
func (e *Evaluator) evalLogicalExpression(node *ast.Logical) (object.Object, error) {
	left, err := e.eval(node.Left)
	if err != nil {
		return nil, err
	}

	if node.Token.Type == token.OR {
		if object.IsTruthy(left) {
			return left, nil
		}
	} else if !object.IsTruthy(left) {
		return left, nil
	}

	return e.eval(node.Right)
}
