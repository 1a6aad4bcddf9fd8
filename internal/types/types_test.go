package types

import (
	"rill/internal/token"
	"testing"
)

func TestCompatible(t *testing.T) {
	tests := []struct {
		required Tag
		actual   Tag
		expected bool
	}{
		{INT, INT, true},
		{INT, FLOAT, true},
		{FLOAT, INT, true},
		{STRING, STRING, true},
		{STRING, INT, false},
		{INT, STRING, false},
		{BOOL, INT, false},
		{BOOL, BOOL, true},
		{UNTYPED, STRING, true},
		{UNTYPED, VOID, false},
		{STRING, UNTYPED, true},
		{VOID, UNTYPED, false},
		{VOID, VOID, true},
		{INT, VOID, false},
		{INT, NIL, false},
		{NIL, NIL, true},
	}

	for _, tt := range tests {
		if got := Compatible(tt.required, tt.actual); got != tt.expected {
			t.Errorf("Compatible(%s, %s) = %t, want %t", tt.required, tt.actual, got, tt.expected)
		}
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		left, right, expected Tag
	}{
		{INT, INT, INT},
		{INT, FLOAT, FLOAT},
		{FLOAT, INT, FLOAT},
		{FLOAT, FLOAT, FLOAT},
		{UNTYPED, INT, UNTYPED},
		{FLOAT, UNTYPED, UNTYPED},
	}

	for _, tt := range tests {
		if got := Arithmetic(tt.left, tt.right); got != tt.expected {
			t.Errorf("Arithmetic(%s, %s) = %s, want %s", tt.left, tt.right, got, tt.expected)
		}
	}
}

func TestFromToken(t *testing.T) {
	tests := map[token.TokenType]Tag{
		token.INT:        INT,
		token.INTEGER:    INT,
		token.FLOAT:      FLOAT,
		token.FLOAT_L:    FLOAT,
		token.STR:        STRING,
		token.STRING:     STRING,
		token.BOOL:       BOOL,
		token.TRUE:       BOOL,
		token.VAR:        UNTYPED,
		token.FUN:        UNTYPED,
		token.VOID:       VOID,
		token.IDENTIFIER: NIL,
	}
	for tt, expected := range tests {
		if got := FromToken(tt); got != expected {
			t.Errorf("FromToken(%s) = %s, want %s", tt, got, expected)
		}
	}
}
