package lexer

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/predicated/dispatch/internal/token"
)

// Lexer tokenizes one constraint annotation string. Annotations are single
// line expressions, so there is no newline or comment handling.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	column       int
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.EQ, Lexeme: "==", Literal: "==", Column: l.column}
		} else {
			tok = newToken(token.ILLEGAL, l.ch, l.column)
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.NOT_EQ, Lexeme: "!=", Literal: "!=", Column: l.column}
		} else {
			tok = newToken(token.BANG, l.ch, l.column)
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.LTE, Lexeme: "<=", Literal: "<=", Column: l.column}
		} else {
			tok = newToken(token.LT, l.ch, l.column)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.GTE, Lexeme: ">=", Literal: ">=", Column: l.column}
		} else {
			tok = newToken(token.GT, l.ch, l.column)
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok = token.Token{Type: token.AND, Lexeme: "&&", Literal: "&&", Column: l.column}
		} else {
			tok = newToken(token.AMPERSAND, l.ch, l.column)
		}
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
			tok = token.Token{Type: token.OR, Lexeme: "||", Literal: "||", Column: l.column}
		} else {
			tok = newToken(token.PIPE, l.ch, l.column)
		}
	case '*':
		if l.peekChar() == '*' {
			l.readChar()
			tok = token.Token{Type: token.POWER, Lexeme: "**", Literal: "**", Column: l.column}
		} else {
			tok = newToken(token.ASTERISK, l.ch, l.column)
		}
	case '+':
		tok = newToken(token.PLUS, l.ch, l.column)
	case '-':
		tok = newToken(token.MINUS, l.ch, l.column)
	case '/':
		tok = newToken(token.SLASH, l.ch, l.column)
	case '%':
		tok = newToken(token.PERCENT, l.ch, l.column)
	case '(':
		tok = newToken(token.LPAREN, l.ch, l.column)
	case ')':
		tok = newToken(token.RPAREN, l.ch, l.column)
	case ',':
		tok = newToken(token.COMMA, l.ch, l.column)
	case '"', '\'':
		quote := l.ch
		startCol := l.column
		content := l.readString(quote)
		tok = token.Token{Type: token.STRING, Lexeme: strconv.Quote(content), Literal: content, Column: startCol}
	case 0:
		tok = token.Token{Type: token.EOF, Lexeme: "", Column: l.column}
	default:
		if isLetter(l.ch) {
			startCol := l.column
			lexeme := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(lexeme), Lexeme: lexeme, Literal: lexeme, Column: startCol}
		}
		if isDigit(l.ch) {
			return l.readNumber()
		}
		tok = newToken(token.ILLEGAL, l.ch, l.column)
	}

	l.readChar()
	return tok
}

func (l *Lexer) readString(quote rune) string {
	position := l.position + 1
	for {
		l.readChar()
		if l.ch == quote || l.ch == 0 {
			break
		}
	}
	return l.input[position:l.position]
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() token.Token {
	startCol := l.column
	position := l.position
	isFloat := false

	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}

	lexeme := l.input[position:l.position]
	clean := stripUnderscores(lexeme)

	if isFloat {
		val, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: err.Error(), Column: startCol}
		}
		return token.Token{Type: token.FLOAT, Lexeme: lexeme, Literal: val, Column: startCol}
	}
	val, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: "integer overflow", Column: startCol}
	}
	return token.Token{Type: token.INT, Lexeme: lexeme, Literal: val, Column: startCol}
}

func stripUnderscores(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func newToken(tokenType token.TokenType, ch rune, col int) token.Token {
	literal := string(ch)
	return token.Token{Type: tokenType, Lexeme: literal, Literal: literal, Column: col}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}
