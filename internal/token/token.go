package token

type TokenType string

const (
	EOF = "EOF"

	// Identifiers + literals
	IDENT  = "IDENT"  // add, foobar, x, y, ...
	NUMBER = "NUMBER" // 1343456, -5, 3.14
	STRING = "STRING" // "foobar"

	// Operators
	OPERATOR = "OPERATOR" // + - * / %
	ASSIGN   = "="

	// Delimiters
	PERIOD = "."
	COMMA  = ","
	COLON  = ":"

	LPAREN   = "("
	RPAREN   = ")"
	LBRACE   = "{"
	RBRACE   = "}"
	LBRACKET = "["
	RBRACKET = "]"

	// Keywords
	FUNCTION = "FUNCTION"
	LET      = "LET"
	FINAL    = "FINAL"
	RETURN   = "RETURN"
)

type Token struct {
	Type     TokenType
	Literal  string
	Position int // the src index of the token
}

var keywords = map[string]TokenType{
	"fn":     FUNCTION,
	"let":    LET,
	"final":  FINAL,
	"return": RETURN,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// EndsOperand reports whether a token of this type can close the left operand
// of a binary expression.
func (t TokenType) EndsOperand() bool {
	switch t {
	case NUMBER, IDENT, STRING, RPAREN, RBRACKET:
		return true
	}
	return false
}
