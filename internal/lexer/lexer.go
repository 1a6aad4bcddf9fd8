package lexer

import (
	"fmt"
	"rill/internal/token"
	"strconv"
	"unicode/utf8"
)

// ScanError is a lexical error. It is reported in the same format as parse
// errors and, like them, prevents the program from running.
type ScanError struct {
	Line    int
	Message string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

type Lexer struct {
	input        string
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination; 0 means EOF
	line         int

	errors []*ScanError
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

func (l *Lexer) Errors() []*ScanError {
	return l.errors
}

// ScanTokens consumes the whole input. The returned slice always ends with
// an EOF token, even when errors were recorded.
func (l *Lexer) ScanTokens() []token.Token {
	var tokens []token.Token
	for {
		tok := l.NextToken()
		if tok.Type == token.ILLEGAL {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	switch l.ch {
	case '=':
		tok = l.handleCompoundToken(token.EQUAL, '=', token.EQUAL_EQUAL)
	case '!':
		tok = l.handleCompoundToken(token.BANG, '=', token.BANG_EQUAL)
	case '<':
		tok = l.handleCompoundToken(token.LESS, '=', token.LESS_EQUAL)
	case '>':
		tok = l.handleCompoundToken(token.GREATER, '=', token.GREATER_EQUAL)
	case '&':
		tok = l.handleDoubledToken('&', token.AND)
	case '|':
		tok = l.handleDoubledToken('|', token.OR)
	case '+':
		tok = l.newToken(token.PLUS)
	case '-':
		tok = l.newToken(token.MINUS)
	case '*':
		tok = l.newToken(token.STAR)
	case '/':
		tok = l.newToken(token.SLASH)
	case '^':
		tok = l.newToken(token.CARET)
	case ';':
		tok = l.newToken(token.SEMICOLON)
	case ',':
		tok = l.newToken(token.COMMA)
	case '.':
		tok = l.newToken(token.DOT)
	case '(':
		tok = l.newToken(token.LEFT_PAREN)
	case ')':
		tok = l.newToken(token.RIGHT_PAREN)
	case '{':
		tok = l.newToken(token.LEFT_BRACE)
	case '}':
		tok = l.newToken(token.RIGHT_BRACE)
	case '"':
		return l.readString()
	case 0:
		return token.Token{Type: token.EOF, Lexeme: "", Line: l.line}
	default:
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(ident), Lexeme: ident, Line: l.line}
		} else if isDigit(l.ch) {
			return l.readNumber()
		}
		l.addError("Unexpected character.")
		tok = l.newToken(token.ILLEGAL)
	}

	l.readChar()
	return tok
}

func (l *Lexer) addError(message string) {
	l.errors = append(l.errors, &ScanError{Line: l.line, Message: message})
}

func (l *Lexer) newToken(t token.TokenType) token.Token {
	return token.Token{Type: t, Lexeme: string(l.ch), Line: l.line}
}

func (l *Lexer) handleCompoundToken(t token.TokenType, ch1 rune, t1 token.TokenType) token.Token {
	if l.peekChar() == ch1 {
		first := l.ch
		l.readChar()
		return token.Token{Type: t1, Lexeme: string(first) + string(l.ch), Line: l.line}
	}
	return l.newToken(t)
}

// handleDoubledToken accepts only the doubled form of ch ("&&", "||").
func (l *Lexer) handleDoubledToken(ch rune, t token.TokenType) token.Token {
	if l.peekChar() == ch {
		l.readChar()
		return token.Token{Type: t, Lexeme: string(ch) + string(ch), Line: l.line}
	}
	l.addError(fmt.Sprintf("Unsupported operator. Did you mean '%c%c'?", ch, ch))
	return l.newToken(token.ILLEGAL)
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.ch {
		case ' ', '\t', '\r':
			l.readChar()
		case '\n':
			l.line++
			l.readChar()
		case '/':
			if l.peekChar() == '/' {
				l.skipToLineEnd()
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) skipToLineEnd() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// readChar advances by one UTF-8 rune, updating byte positions
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads an integer, or a float when a '.' is followed by a digit.
func (l *Lexer) readNumber() token.Token {
	start := l.position
	isFloat := false
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	lexeme := l.input[start:l.position]

	if isFloat {
		value, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			l.addError(fmt.Sprintf("Invalid number literal '%s'.", lexeme))
			return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Line: l.line}
		}
		return token.Token{Type: token.FLOAT_L, Lexeme: lexeme, Literal: value, Line: l.line}
	}
	value, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		l.addError(fmt.Sprintf("Invalid number literal '%s'.", lexeme))
		return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Line: l.line}
	}
	return token.Token{Type: token.INTEGER, Lexeme: lexeme, Literal: value, Line: l.line}
}

func isLetter(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
