package lexer

import (
	"lx/internal/diag"
	"lx/internal/token"
	"unicode"
	"unicode/utf8"
)

type Lexer struct {
	input        string
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination; 0 at EOF, check atEOF

	tokens []token.Token
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// Tokenize scans the whole source. The returned slice always ends with a
// single EOF token, even when an error is reported.
func Tokenize(source string) ([]token.Token, error) {
	return New(source).Tokens()
}

func (l *Lexer) Tokens() ([]token.Token, error) {
	l.tokens = l.tokens[:0]
	for !l.atEOF() {
		if err := l.next(); err != nil {
			l.emit(token.EOF, "", len(l.input))
			return l.tokens, err
		}
	}
	l.emit(token.EOF, "", len(l.input))
	return l.tokens, nil
}

func (l *Lexer) next() error {
	startPosition := l.position

	switch l.ch {
	case ' ', '\n', '\r', '\t':
		l.readChar()
	case '(':
		l.single(token.LPAREN)
	case ')':
		l.single(token.RPAREN)
	case '{':
		l.single(token.LBRACE)
	case '}':
		l.single(token.RBRACE)
	case '[':
		l.single(token.LBRACKET)
	case ']':
		l.single(token.RBRACKET)
	case ':':
		l.single(token.COLON)
	case ',':
		l.single(token.COMMA)
	case '=':
		l.single(token.ASSIGN)
	case '+', '*', '/', '%':
		l.single(token.OPERATOR)
	case '.':
		if isDigit(l.peekChar()) {
			l.emit(token.NUMBER, l.readNumber(), startPosition)
		} else {
			l.single(token.PERIOD)
		}
	case '-':
		switch {
		case l.prevEndsOperand():
			l.single(token.OPERATOR)
		case isDigit(l.peekChar()):
			l.emit(token.NUMBER, l.readNumber(), startPosition)
		default:
			return diag.Lexical(startPosition, "unexpected '-'")
		}
	case '"':
		literal, err := l.readString()
		if err != nil {
			return err
		}
		l.emit(token.STRING, literal, startPosition)
	default:
		if isDigit(l.ch) {
			l.emit(token.NUMBER, l.readNumber(), startPosition)
			return nil
		}
		word := l.readIdentifier()
		l.emit(token.LookupIdent(word), word, startPosition)
	}
	return nil
}

func (l *Lexer) single(t token.TokenType) {
	l.emit(t, string(l.ch), l.position)
	l.readChar()
}

func (l *Lexer) emit(t token.TokenType, literal string, position int) {
	l.tokens = append(l.tokens, token.Token{Type: t, Literal: literal, Position: position})
}

func (l *Lexer) prevEndsOperand() bool {
	if len(l.tokens) == 0 {
		return false
	}
	return l.tokens[len(l.tokens)-1].Type.EndsOperand()
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

// atEOF reports whether the whole input has been consumed. A NUL rune in the
// source is ordinary input, so ch alone cannot tell.
func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// readNumber consumes an optional sign followed by digits and decimal points.
// The spelling is returned verbatim; the parser decides what it means.
func (l *Lexer) readNumber() string {
	start := l.position
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) || l.ch == '.' {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readIdentifier always consumes the current rune, so characters outside the
// language still make progress as one-rune identifiers.
func (l *Lexer) readIdentifier() string {
	start := l.position
	l.readChar()
	for isIdentChar(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readString consumes a double quoted literal, including the quotes, and
// returns its decoded text. A missing closing quote ends the literal at EOF.
func (l *Lexer) readString() (string, error) {
	l.readChar() // consume opening "
	start := l.position
	for !l.atEOF() && l.ch != '"' {
		if l.ch == '\\' && l.readPosition < len(l.input) {
			l.readChar()
		}
		l.readChar()
	}
	raw := l.input[start:l.position]
	if l.ch == '"' {
		l.readChar() // consume closing "
	}
	decoded, err := Unescape(raw)
	if err != nil {
		return "", diag.Lexical(start, "%s", err.Error())
	}
	return decoded, nil
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isIdentChar(ch rune) bool {
	return ch == '_' || ch == '$' || isDigit(ch) || unicode.IsLetter(ch)
}
