package object

import (
	"fmt"
	"log/slog"
	"rill/internal/types"
	"sync/atomic"
)

var nextID atomic.Uint64

// Environment is one frame of the lexical scope chain. Variables and
// functions live in separate namespaces, so a function and a variable of
// the same name can coexist in one frame.
//
// The checking parser and the evaluator share this type: while checking,
// bindings carry only their declared tags; while running, they also hold
// live values.
type Environment struct {
	ID        uint64
	Values    map[string]*Binding
	Functions map[string]*Binding
	Outer     *Environment
}

type Kind int

const (
	VariableKind Kind = iota
	FunctionKind
)

func (k Kind) String() string {
	if k == FunctionKind {
		return "Function"
	}
	return "Variable"
}

type Binding struct {
	Tag   types.Tag // declared tag; the return tag for functions
	Value Object    // live value, nil while checking

	// Adopted is the concrete tag an UNTYPED variable locked onto during
	// checking; UNTYPED until its first concrete value.
	Adopted types.Tag

	// Params is the signature of a function binding.
	Params []types.Tag
}

// NewVariable returns an unset variable binding declared with tag.
func NewVariable(tag types.Tag) *Binding {
	return &Binding{Tag: tag, Adopted: types.UNTYPED}
}

// NewFunction returns a function binding for the given signature.
func NewFunction(params []types.Tag, returns types.Tag, fn Callable) *Binding {
	b := &Binding{Tag: returns, Params: params}
	if fn != nil {
		b.Value = fn
	}
	return b
}

// StaticTag is the tag a reference to this binding produces during checking.
func (b *Binding) StaticTag() types.Tag {
	if b.Tag == types.UNTYPED && b.Adopted != "" {
		return b.Adopted
	}
	return b.Tag
}

// Adopt locks an UNTYPED binding onto the first concrete tag it receives.
func (b *Binding) Adopt(t types.Tag) {
	if b.Tag != types.UNTYPED || b.StaticTag() != types.UNTYPED {
		return
	}
	switch t {
	case types.UNTYPED, types.NIL, types.VOID:
		return
	}
	b.Adopted = t
}

// Set stores v, applying the slot coercion rule. An UNTYPED slot holding a
// non-nil value accepts only values compatible with that value's tag.
func (b *Binding) Set(v Object) error {
	if b.Tag != types.UNTYPED {
		coerced, err := Coerce(b.Tag, v)
		if err != nil {
			return err
		}
		b.Value = coerced
		return nil
	}

	if cur, ok := b.Value.(*Untyped); ok && cur.Inner.Tag() != types.NIL {
		inner, err := Coerce(cur.Inner.Tag(), v)
		if err != nil {
			return err
		}
		b.Value = Box(inner)
		return nil
	}
	b.Value = Box(v)
	return nil
}

// BindingError reports a failed define, lookup or assignment.
type BindingError struct {
	Kind    Kind
	Name    string
	Defined bool // true when the name was already defined
}

func (e *BindingError) Error() string {
	if e.Defined {
		return fmt.Sprintf("%s '%s' already defined in this scope.", e.Kind, e.Name)
	}
	if e.Kind == FunctionKind {
		return fmt.Sprintf("Function '%s' not defined.", e.Name)
	}
	return fmt.Sprintf("Undefined variable '%s'.", e.Name)
}

func nextEnvID() uint64 {
	return nextID.Add(1)
}

func NewEnvironment() *Environment {
	return &Environment{
		ID:        nextEnvID(),
		Values:    make(map[string]*Binding),
		Functions: make(map[string]*Binding),
	}
}

// NewEnclosedEnvironment initializes an environment with a parent.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.Outer = outer
	return env
}

// Define adds a variable to this frame only.
func (e *Environment) Define(name string, binding *Binding) error {
	if _, exists := e.Values[name]; exists {
		return &BindingError{Kind: VariableKind, Name: name, Defined: true}
	}
	e.Values[name] = binding

	slog.Debug("binding value",
		slog.String("name", name),
		slog.Any("tag", binding.Tag),
		slog.Uint64("env", e.ID))
	return nil
}

// DefineFunction adds a function to this frame only.
func (e *Environment) DefineFunction(name string, binding *Binding) error {
	if _, exists := e.Functions[name]; exists {
		return &BindingError{Kind: FunctionKind, Name: name, Defined: true}
	}
	e.Functions[name] = binding

	slog.Debug("binding function",
		slog.String("name", name),
		slog.Any("returns", binding.Tag),
		slog.Int("arity", len(binding.Params)),
		slog.Uint64("env", e.ID))
	return nil
}

func (e *Environment) GetBinding(name string) (*Binding, bool) {
	for env := e; env != nil; env = env.Outer {
		if binding, ok := env.Values[name]; ok {
			return binding, true
		}
	}
	return nil, false
}

func (e *Environment) GetFunctionBinding(name string) (*Binding, bool) {
	for env := e; env != nil; env = env.Outer {
		if binding, ok := env.Functions[name]; ok {
			return binding, true
		}
	}
	return nil, false
}

// GetLocalBinding returns a variable from this environment only (it does not walk outers).
func (e *Environment) GetLocalBinding(name string) (*Binding, bool) {
	binding, ok := e.Values[name]
	return binding, ok
}

// DeclaredTag is the checking-mode lookup: it returns the static tag of
// the nearest variable named name, or NIL when there is none.
func (e *Environment) DeclaredTag(name string) types.Tag {
	binding, ok := e.GetBinding(name)
	if !ok {
		return types.NIL
	}
	return binding.StaticTag()
}

// Get returns the current value of a variable with its Untyped
// indirection removed.
func (e *Environment) Get(name string) (Object, error) {
	binding, ok := e.GetBinding(name)
	if !ok {
		return nil, &BindingError{Kind: VariableKind, Name: name}
	}
	if binding.Value == nil {
		return NIL, nil
	}
	return Unwrap(binding.Value), nil
}

// GetFunction returns the callable bound to name in the function namespace.
func (e *Environment) GetFunction(name string) (Object, error) {
	binding, ok := e.GetFunctionBinding(name)
	if !ok || binding.Value == nil {
		return nil, &BindingError{Kind: FunctionKind, Name: name}
	}
	return binding.Value, nil
}

// Assign mutates the nearest frame that declares name.
func (e *Environment) Assign(name string, val Object) (Object, error) {
	binding, ok := e.GetBinding(name)
	if !ok {
		return nil, &BindingError{Kind: VariableKind, Name: name}
	}
	if err := binding.Set(val); err != nil {
		return nil, err
	}

	slog.Debug("assigning bound value",
		slog.String("name", name),
		slog.Any("tag", binding.Value.Tag()))
	return Unwrap(binding.Value), nil
}

// Copy returns a frame with the same outer frame and its own copies of
// every binding, so checking against the copy leaves e untouched.
func (e *Environment) Copy() *Environment {
	env := NewEnclosedEnvironment(e.Outer)
	for name, binding := range e.Values {
		b := *binding
		env.Values[name] = &b
	}
	for name, binding := range e.Functions {
		b := *binding
		env.Functions[name] = &b
	}
	return env
}
