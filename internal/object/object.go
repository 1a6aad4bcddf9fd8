package object

import (
	"fmt"
	"math"
	"rill/internal/types"
	"strconv"
)

var (
	NIL   = &Nil{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

// Object is a typed value: every runtime value, literal, argument and
// result carries its tag with it.
type Object interface {
	Tag() types.Tag
	Inspect() string
}

type Integer struct {
	Value int64
}

func (i *Integer) Tag() types.Tag  { return types.INT }
func (i *Integer) Inspect() string { return strconv.FormatInt(i.Value, 10) }

type Float struct {
	Value float64
}

func (f *Float) Tag() types.Tag  { return types.FLOAT }
func (f *Float) Inspect() string { return FormatFloat(f.Value) }

type Boolean struct {
	Value bool
}

func (b *Boolean) Tag() types.Tag  { return types.BOOL }
func (b *Boolean) Inspect() string { return fmt.Sprintf("%t", b.Value) }

type String struct {
	Value string
}

func (s *String) Tag() types.Tag  { return types.STRING }
func (s *String) Inspect() string { return s.Value }

type Nil struct{}

func (n *Nil) Tag() types.Tag  { return types.NIL }
func (n *Nil) Inspect() string { return "NIL" }

// Untyped boxes the current value of a `var` slot. Boxes never nest: Box
// collapses an Untyped argument to its inner value.
type Untyped struct {
	Inner Object
}

func (u *Untyped) Tag() types.Tag  { return types.UNTYPED }
func (u *Untyped) Inspect() string { return u.Inner.Inspect() }

// Box wraps o in an Untyped indirection, one level deep.
func Box(o Object) *Untyped {
	if o == nil {
		return &Untyped{Inner: NIL}
	}
	if u, ok := o.(*Untyped); ok {
		return &Untyped{Inner: u.Inner}
	}
	return &Untyped{Inner: o}
}

// Unwrap removes a single Untyped indirection.
func Unwrap(o Object) Object {
	if u, ok := o.(*Untyped); ok {
		return u.Inner
	}
	return o
}

func NativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// IsTruthy treats only nil and false as falsy; numeric zero is truthy.
func IsTruthy(o Object) bool {
	switch o := Unwrap(o).(type) {
	case nil, *Nil:
		return false
	case *Boolean:
		return o.Value
	default:
		return true
	}
}

// Equal compares unwrapped payloads. Nil equals only Nil and numeric values
// compare by value across INT and FLOAT.
func Equal(a, b Object) bool {
	a, b = Unwrap(a), Unwrap(b)
	_, aNil := a.(*Nil)
	_, bNil := b.(*Nil)
	if aNil || bNil {
		return aNil && bNil
	}

	if af, ok := ToFloat(a); ok {
		if bf, ok := ToFloat(b); ok {
			return af == bf
		}
		return false
	}

	switch a := a.(type) {
	case *Boolean:
		b, ok := b.(*Boolean)
		return ok && a.Value == b.Value
	case *String:
		b, ok := b.(*String)
		return ok && a.Value == b.Value
	case Callable:
		return a == b
	}
	return false
}

// ToFloat returns the numeric payload of an INT or FLOAT value.
func ToFloat(o Object) (float64, bool) {
	switch o := Unwrap(o).(type) {
	case *Integer:
		return float64(o.Value), true
	case *Float:
		return o.Value, true
	}
	return 0, false
}

// Zero returns the default value of a declared slot.
func Zero(t types.Tag) Object {
	switch t {
	case types.INT:
		return &Integer{Value: 0}
	case types.FLOAT:
		return &Float{Value: 0}
	case types.BOOL:
		return FALSE
	case types.STRING:
		return &String{Value: ""}
	case types.UNTYPED:
		return Box(NIL)
	default:
		return NIL
	}
}

// FormatFloat renders a float in its shortest natural decimal form, so
// 1.0 prints as "1" and 0.1 as "0.1".
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}
	if math.Abs(f) >= 1e21 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// TypeMismatchError reports a value that cannot be stored under a tag.
type TypeMismatchError struct {
	Want types.Tag
	Got  types.Tag
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("Cannot assign type '%s' to a slot of type '%s'.", e.Got, e.Want)
}

// Coerce converts v for storage under tag. INT widens to FLOAT, never the
// reverse. Nil is storable everywhere. An UNTYPED tag boxes v.
func Coerce(tag types.Tag, v Object) (Object, error) {
	if v == nil {
		v = NIL
	}
	if tag == types.UNTYPED {
		return Box(v), nil
	}

	v = Unwrap(v)
	if v.Tag() == types.NIL || v.Tag() == tag {
		return v, nil
	}
	if tag == types.FLOAT {
		if i, ok := v.(*Integer); ok {
			return &Float{Value: float64(i.Value)}, nil
		}
	}
	return nil, &TypeMismatchError{Want: tag, Got: v.Tag()}
}
