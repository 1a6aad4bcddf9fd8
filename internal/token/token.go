package token

import "fmt"

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers + literals
	IDENTIFIER = "IDENTIFIER" // add, foobar, x, y, ...
	STRING     = "STRING"     // "foobar"
	INTEGER    = "INTEGER"    // 1343456
	FLOAT_L    = "FLOAT_L"    // 3.25

	// Operators
	EQUAL         = "="
	PLUS          = "+"
	MINUS         = "-"
	BANG          = "!"
	STAR          = "*"
	SLASH         = "/"
	CARET         = "^"
	LESS          = "<"
	LESS_EQUAL    = "<="
	GREATER       = ">"
	GREATER_EQUAL = ">="
	EQUAL_EQUAL   = "=="
	BANG_EQUAL    = "!="

	// Delimiters
	DOT         = "."
	COMMA       = ","
	SEMICOLON   = ";"
	LEFT_PAREN  = "("
	RIGHT_PAREN = ")"
	LEFT_BRACE  = "{"
	RIGHT_BRACE = "}"

	// Keywords
	AND       = "AND"
	OR        = "OR"
	BOOL      = "BOOL"
	ELSE      = "ELSE"
	FALSE     = "FALSE"
	FLOAT     = "FLOAT"
	FOR       = "FOR"
	FUN       = "FUN"
	IF        = "IF"
	INT       = "INT"
	NIL       = "NIL"
	PRINT     = "PRINT"
	PRINT_ERR = "PRINT_ERR"
	RETURN    = "RETURN"
	STR       = "STR"
	TRUE      = "TRUE"
	VAR       = "VAR"
	VOID      = "VOID"
	WHILE     = "WHILE"
)

// Token is one lexical unit. Literal carries the decoded payload of
// INTEGER (int64), FLOAT_L (float64) and STRING (string) tokens.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Line    int // 1-based source line
}

func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%s %s %v", t.Type, t.Lexeme, t.Literal)
	}
	return fmt.Sprintf("%s %s", t.Type, t.Lexeme)
}

var keywords = map[string]TokenType{
	// constants
	"nil":   NIL,
	"true":  TRUE,
	"false": FALSE,

	// declarations
	"bool":   BOOL,
	"float":  FLOAT,
	"fun":    FUN,
	"int":    INT,
	"string": STR,
	"var":    VAR,
	"void":   VOID,

	// flow control
	"if":     IF,
	"else":   ELSE,
	"for":    FOR,
	"while":  WHILE,
	"return": RETURN,

	// logical
	"and": AND,
	"or":  OR,

	// output
	"print":    PRINT,
	"printErr": PRINT_ERR,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENTIFIER
}

// IsTypeKeyword reports whether t names a declarable value type.
func IsTypeKeyword(t TokenType) bool {
	switch t {
	case INT, FLOAT, STR, BOOL, VAR:
		return true
	}
	return false
}
