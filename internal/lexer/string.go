package lexer

import (
	"rill/internal/token"
	"strings"
)

// readString reads a double-quoted literal starting at the opening quote.
// Strings may span lines; only \n, \" and \\ are valid escapes.
func (l *Lexer) readString() token.Token {
	start := l.position
	startLine := l.line
	var out strings.Builder

	l.readChar() // consume opening "
	for l.ch != '"' {
		switch l.ch {
		case 0:
			l.addError("Unterminated string.")
			return token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:l.position], Line: l.line}
		case '\n':
			l.line++
			out.WriteRune(l.ch)
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				out.WriteRune('\n')
			case '"':
				out.WriteRune('"')
			case '\\':
				out.WriteRune('\\')
			case 0:
				continue
			default:
				l.addError("Unrecognized escape sequence.")
			}
		default:
			out.WriteRune(l.ch)
		}
		l.readChar()
	}
	l.readChar() // consume closing "

	return token.Token{
		Type:    token.STRING,
		Lexeme:  l.input[start:l.position],
		Literal: out.String(),
		Line:    startLine,
	}
}
