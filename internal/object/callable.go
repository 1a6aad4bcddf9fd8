package object

import (
	"rill/internal/ast"
	"rill/internal/types"
	"time"
)

// EvaluatorContext is the bridge between callables and the running
// interpreter. Natives reach host I/O only through it.
type EvaluatorContext interface {
	// CallFunction executes a user function body with args already bound
	// to its parameter tags.
	CallFunction(fn *UserFunction, args []Object) (Object, error)
	ReadLine() (string, error)
	// Recover reports an error that does not abort the run.
	Recover(message string)
	Now() time.Time
}

// Callable is the call protocol shared by user functions and natives. The
// signature is fixed: no overloading, no variadics.
type Callable interface {
	Object
	Name() string
	Params() []types.Tag
	Returns() types.Tag
	Call(ctx EvaluatorContext, args []Object) (Object, error)
}

// UserFunction binds a declaration to the global frame. It deliberately
// does not capture the frame it was declared in.
type UserFunction struct {
	Declaration *ast.FunctionStatement
	Globals     *Environment
}

func (f *UserFunction) Tag() types.Tag      { return types.FUNCTION }
func (f *UserFunction) Inspect() string     { return "<fn " + f.Name() + ">" }
func (f *UserFunction) Name() string        { return f.Declaration.Name.Lexeme }
func (f *UserFunction) Params() []types.Tag { return f.Declaration.ParamTags() }
func (f *UserFunction) Returns() types.Tag  { return f.Declaration.ReturnType }
func (f *UserFunction) Call(ctx EvaluatorContext, args []Object) (Object, error) {
	return ctx.CallFunction(f, args)
}

type BuiltinFunction func(ctx EvaluatorContext, args ...Object) (Object, error)

type Builtin struct {
	name    string
	params  []types.Tag
	returns types.Tag
	Fn      BuiltinFunction
}

func (b *Builtin) Tag() types.Tag      { return types.FUNCTION }
func (b *Builtin) Inspect() string     { return "<native fn " + b.name + ">" }
func (b *Builtin) Name() string        { return b.name }
func (b *Builtin) Params() []types.Tag { return b.params }
func (b *Builtin) Returns() types.Tag  { return b.returns }
func (b *Builtin) Call(ctx EvaluatorContext, args []Object) (Object, error) {
	return b.Fn(ctx, args...)
}
