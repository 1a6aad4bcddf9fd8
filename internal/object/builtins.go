package object

import (
	"io"
	"regexp"
	"rill/internal/types"
	"strconv"
	"strings"
	"time"
)

// decimalNumber is the numeral syntax stringToNumber accepts. ParseFloat
// alone would also take NaN, Inf and hex floats.
var decimalNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Builtins are registered in the outermost frame before any user code is
// checked or run.
var Builtins = []*Builtin{
	funcClock(),
	funcInput(),
	funcStringToNumber(),
	funcToString(),
	funcGetType(),
}

// NewBuiltinEnvironment returns a frame holding the native functions. With
// withValues false the bindings carry signatures only, for checking.
func NewBuiltinEnvironment(withValues bool) *Environment {
	env := NewEnvironment()
	for _, b := range Builtins {
		var fn Callable
		if withValues {
			fn = b
		}
		_ = env.DefineFunction(b.name, NewFunction(b.params, b.returns, fn))
	}
	return env
}

// funcClock returns milliseconds since local midnight.
func funcClock() *Builtin {
	return &Builtin{
		name:    "clock",
		returns: types.FLOAT,
		Fn: func(ctx EvaluatorContext, args ...Object) (Object, error) {
			now := ctx.Now()
			midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			return &Float{Value: float64(now.Sub(midnight)) / float64(time.Millisecond)}, nil
		},
	}
}

func funcInput() *Builtin {
	return &Builtin{
		name:    "input",
		returns: types.STRING,
		Fn: func(ctx EvaluatorContext, args ...Object) (Object, error) {
			line, err := ctx.ReadLine()
			if err != nil && err != io.EOF {
				return nil, err
			}
			line = strings.TrimRight(line, "\r\n")
			return &String{Value: line}, nil
		},
	}
}

// funcStringToNumber parses a float. Malformed input is reported and yields
// nil instead of aborting, since it comes from outside the program.
func funcStringToNumber() *Builtin {
	return &Builtin{
		name:    "stringToNumber",
		params:  []types.Tag{types.STRING},
		returns: types.FLOAT,
		Fn: func(ctx EvaluatorContext, args ...Object) (Object, error) {
			str, ok := Unwrap(args[0]).(*String)
			if !ok {
				return nil, &TypeMismatchError{Want: types.STRING, Got: Unwrap(args[0]).Tag()}
			}
			numeral := strings.TrimSpace(str.Value)
			if !decimalNumber.MatchString(numeral) {
				ctx.Recover("stringToNumber - Unexpected formatting")
				return NIL, nil
			}
			value, err := strconv.ParseFloat(numeral, 64)
			if err != nil {
				ctx.Recover("stringToNumber - Unexpected formatting")
				return NIL, nil
			}
			return &Float{Value: value}, nil
		},
	}
}

func funcToString() *Builtin {
	return &Builtin{
		name:    "toString",
		params:  []types.Tag{types.UNTYPED},
		returns: types.STRING,
		Fn: func(ctx EvaluatorContext, args ...Object) (Object, error) {
			return &String{Value: Unwrap(args[0]).Inspect()}, nil
		},
	}
}

func funcGetType() *Builtin {
	return &Builtin{
		name:    "getType",
		params:  []types.Tag{types.UNTYPED},
		returns: types.STRING,
		Fn: func(ctx EvaluatorContext, args ...Object) (Object, error) {
			return &String{Value: Unwrap(args[0]).Tag().String()}, nil
		},
	}
}
