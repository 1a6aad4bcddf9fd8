package evaluator

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"rill/internal/ast"
	"rill/internal/object"
	"rill/internal/types"
	"time"
)

var _ object.EvaluatorContext = (*Evaluator)(nil)

// evalCall resolves the callee in the function namespace, then evaluates
// the arguments left to right and coerces each to its parameter tag.
func (e *Evaluator) evalCall(node *ast.Call) (object.Object, error) {
	callee, err := e.CurrentEnv().GetFunction(node.Name())
	if err != nil {
		return nil, newError(node.Token, "%s", err.Error())
	}
	fn, ok := callee.(object.Callable)
	if !ok {
		return nil, newError(node.Paren, "Can only call functions.")
	}

	args := make([]object.Object, 0, len(node.Arguments))
	for _, argument := range node.Arguments {
		val, err := e.eval(argument)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}

	params := fn.Params()
	if len(args) != len(params) {
		return nil, newError(node.Paren, "Expected %d arguments but got %d.", len(params), len(args))
	}
	for i, param := range params {
		coerced, err := object.Coerce(param, args[i])
		if err != nil {
			return nil, newError(node.Paren, "Argument %d type mismatch: expecting '%s', received '%s'.",
				i+1, param, object.Unwrap(args[i]).Tag())
		}
		args[i] = coerced
	}

	slog.Debug("calling function",
		slog.String("name", fn.Name()),
		slog.Int("line", node.Token.Line),
		slog.Int("args", len(args)))

	enclosingCall := e.callToken
	e.callToken = node.Token
	defer func() { e.callToken = enclosingCall }()

	result, err := fn.Call(e, args)
	if err != nil {
		var runtimeErr *RuntimeError
		if errors.As(err, &runtimeErr) {
			return nil, err
		}
		return nil, newError(node.Token, "%s", err.Error())
	}
	return result, nil
}

// CallFunction runs a user function in a new frame enclosed by the global
// frame, never by the caller's frame.
func (e *Evaluator) CallFunction(fn *object.UserFunction, args []object.Object) (object.Object, error) {
	env := object.NewEnclosedEnvironment(fn.Globals)
	for i, param := range fn.Declaration.Parameters {
		binding := object.NewVariable(param.Tag)
		if err := binding.Set(args[i]); err != nil {
			return nil, newError(param.Name, "%s", err.Error())
		}
		if err := env.Define(param.Name.Lexeme, binding); err != nil {
			return nil, newError(param.Name, "%s", err.Error())
		}
	}

	signal, err := e.executeBlock(fn.Declaration.Body.Statements, env)
	if err != nil {
		return nil, err
	}

	returns := fn.Returns()
	if signal == nil || returns == types.VOID {
		slog.Debug("function returned", slog.String("name", fn.Name()), slog.String("value", "NIL"))
		return object.NIL, nil
	}

	result := object.Unwrap(signal.Value)
	if returns != types.UNTYPED {
		coerced, err := object.Coerce(returns, result)
		if err != nil {
			return nil, newError(signal.Token, "Invalid return type: expecting '%s', received '%s'.",
				returns, result.Tag())
		}
		result = coerced
	}

	slog.Debug("function returned",
		slog.String("name", fn.Name()),
		slog.Any("tag", result.Tag()))
	return result, nil
}

// ReadLine returns the next line of input with its newline. At end of
// input it returns whatever was read and io.EOF.
func (e *Evaluator) ReadLine() (string, error) {
	line, err := e.stdin.ReadString('\n')
	if errors.Is(err, io.EOF) && line != "" {
		return line, nil
	}
	return line, err
}

// Recover reports message on the error stream against the current call
// and lets execution continue.
func (e *Evaluator) Recover(message string) {
	e.recovered++
	fmt.Fprintln(e.stderr, newError(e.callToken, "%s", message).Error())
}

func (e *Evaluator) Now() time.Time {
	return e.now()
}
