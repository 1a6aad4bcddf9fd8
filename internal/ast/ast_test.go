package ast

import (
	"rill/internal/token"
	"rill/internal/types"
	"testing"
)

func ident(name string) token.Token {
	return token.Token{Type: token.IDENTIFIER, Lexeme: name, Line: 1}
}

func TestString(t *testing.T) {
	program := &Program{
		Statements: []Statement{
			&VarStatement{
				Token: token.Token{Type: token.INT, Lexeme: "int", Line: 1},
				Name:  ident("x"),
				Tag:   types.INT,
				Value: &Binary{
					Token: token.Token{Type: token.CARET, Lexeme: "^", Line: 1},
					Left:  &Literal{Token: token.Token{Type: token.INTEGER, Lexeme: "2"}, Value: int64(2), Tag: types.INT},
					Right: &Variable{Token: ident("y"), Tag: types.INT},
					Tag:   types.INT,
				},
			},
			&PrintStatement{
				Token: token.Token{Type: token.PRINT, Lexeme: "print", Line: 2},
				Value: &Call{
					Token: ident("toString"),
					Arguments: []Expression{
						&Literal{Token: token.Token{Type: token.STRING, Lexeme: `"a"`}, Value: "a", Tag: types.STRING},
					},
					Tag: types.STRING,
				},
			},
		},
	}

	expected := `int x = (2 ^ y);print toString("a");`
	if program.String() != expected {
		t.Errorf("program.String() wrong. got=%q", program.String())
	}
}

func TestExpressionTags(t *testing.T) {
	inner := &Literal{Token: token.Token{Type: token.FLOAT_L, Lexeme: "1.5"}, Value: 1.5, Tag: types.FLOAT}
	tests := []struct {
		expr     Expression
		expected types.Tag
	}{
		{inner, types.FLOAT},
		{&Grouping{Expression: inner}, types.FLOAT},
		{&Logical{Left: inner, Right: inner}, types.BOOL},
		{&Assign{Token: ident("v"), Value: inner, Tag: types.FLOAT}, types.FLOAT},
		{&Unary{Right: inner, Tag: types.FLOAT}, types.FLOAT},
	}

	for i, tt := range tests {
		if tt.expr.Type() != tt.expected {
			t.Errorf("tests[%d]: tag wrong. expected=%s, got=%s", i, tt.expected, tt.expr.Type())
		}
	}
}

func TestFunctionStatementSignature(t *testing.T) {
	fn := &FunctionStatement{
		Token: token.Token{Type: token.FUN, Lexeme: "fun"},
		Name:  ident("add"),
		Parameters: []*Parameter{
			{Tag: types.INT, Name: ident("a")},
			{Tag: types.FLOAT, Name: ident("b")},
		},
		Body:       &BlockStatement{},
		ReturnType: types.FLOAT,
	}

	tags := fn.ParamTags()
	if len(tags) != 2 || tags[0] != types.INT || tags[1] != types.FLOAT {
		t.Fatalf("ParamTags wrong. got=%v", tags)
	}
	if fn.String() != "float add(int a, float b) {}" {
		t.Errorf("fn.String() wrong. got=%q", fn.String())
	}
}
