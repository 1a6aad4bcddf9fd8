// Package types holds the closed set of type tags shared by the checking
// parser, the syntax tree and the evaluator, together with the
// compatibility relation between them.
package types

import "rill/internal/token"

type Tag string

const (
	INT      Tag = "INT"
	FLOAT    Tag = "FLOAT"
	BOOL     Tag = "BOOL"
	STRING   Tag = "STRING"
	FUNCTION Tag = "FUNCTION"
	UNTYPED  Tag = "UNTYPED"
	NIL      Tag = "NIL"
	VOID     Tag = "VOID"
)

func (t Tag) String() string { return string(t) }

// IsNumeric reports whether t is INT or FLOAT.
func (t Tag) IsNumeric() bool {
	return t == INT || t == FLOAT
}

// Compatible reports whether a value tagged actual may be used where
// required is expected. Numeric tags are mutually compatible; UNTYPED on
// either side is compatible with anything but VOID.
func Compatible(required, actual Tag) bool {
	if required == UNTYPED && actual != VOID {
		return true
	}
	if actual == UNTYPED && required != VOID {
		return true
	}
	if required.IsNumeric() && actual.IsNumeric() {
		return true
	}
	return required == actual
}

// Arithmetic returns the result tag of a numeric binary operator.
func Arithmetic(left, right Tag) Tag {
	switch {
	case left == UNTYPED || right == UNTYPED:
		return UNTYPED
	case left == INT && right == INT:
		return INT
	default:
		return FLOAT
	}
}

// FromToken maps a type keyword or literal token to its tag. Anything else
// maps to NIL.
func FromToken(t token.TokenType) Tag {
	switch t {
	case token.BOOL, token.TRUE, token.FALSE:
		return BOOL
	case token.FLOAT, token.FLOAT_L:
		return FLOAT
	case token.INT, token.INTEGER:
		return INT
	case token.STR, token.STRING:
		return STRING
	case token.VOID:
		return VOID
	case token.VAR, token.FUN:
		return UNTYPED
	default:
		return NIL
	}
}
