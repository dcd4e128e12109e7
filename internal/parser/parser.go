package parser

import (
	"errors"
	"lx/internal/ast"
	"lx/internal/diag"
	"lx/internal/token"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Parser is a recursive descent parser over a token slice produced by the
// lexer. Precedence from lowest to highest: object literal, additive,
// multiplicative, call/member, primary.
type Parser struct {
	tokens []token.Token
	pos    int
}

func New(tokens []token.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		end := 0
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			end = last.Position + len(last.Literal)
		}
		tokens = append(tokens, token.Token{Type: token.EOF, Position: end})
	}
	return &Parser{tokens: tokens}
}

// GenerateProgram parses the whole token stream. The first syntax error ends
// parsing.
func GenerateProgram(tokens []token.Token) (*ast.Program, error) {
	return New(tokens).ParseProgram()
}

func (p *Parser) curToken() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken().Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	if p.pos+1 >= len(p.tokens) {
		return t == token.EOF
	}
	return p.tokens[p.pos+1].Type == t
}

// nextToken consumes and returns the current token. EOF is never consumed.
func (p *Parser) nextToken() token.Token {
	tok := p.tokens[p.pos]
	if tok.Type != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(t token.TokenType) (token.Token, error) {
	tok := p.nextToken()
	if tok.Type != t {
		return tok, diag.Syntax(tok.Position, "expected %s, but got %s", describe(t, ""), describe(tok.Type, tok.Literal))
	}
	return tok, nil
}

func (p *Parser) unexpected(tok token.Token) error {
	if tok.Type == token.EOF {
		return diag.Syntax(tok.Position, "unexpected end of file")
	}
	return diag.Syntax(tok.Position, "unexpected token %s", describe(tok.Type, tok.Literal))
}

func (p *Parser) isOperator(ops ...string) bool {
	tok := p.curToken()
	if tok.Type != token.OPERATOR {
		return false
	}
	for _, op := range ops {
		if tok.Literal == op {
			return true
		}
	}
	return false
}

func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Statements = append(program.Statements, stmt)
	}

	return program, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.curToken().Type {
	case token.FINAL:
		tok := p.nextToken()
		if _, err := p.expect(token.LET); err != nil {
			return nil, err
		}
		return p.parseDeclaration(tok, true)
	case token.LET:
		return p.parseDeclaration(p.nextToken(), false)
	case token.FUNCTION:
		return p.parseFunctionDeclaration()
	default:
		tok := p.curToken()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStatement{Token: tok, Expression: expr}, nil
	}
}

func (p *Parser) parseDeclaration(tok token.Token, constant bool) (*ast.AssignmentExpression, error) {
	ident, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.AssignmentExpression{
		Token:      tok,
		Identifier: ident.Literal,
		Value:      value,
		Constant:   constant,
	}, nil
}

func (p *Parser) parseFunctionDeclaration() (*ast.FunctionDeclaration, error) {
	fn := &ast.FunctionDeclaration{Token: p.nextToken()}

	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	fn.Name = name.Literal

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	fn.Parameters, err = p.parseParameters()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	fn.Body = []ast.Statement{}
	for !p.curTokenIs(token.EOF) && !p.curTokenIs(token.RBRACE) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		fn.Body = append(fn.Body, stmt)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}

	return fn, nil
}

// parseParameters reads the parameter list of a function declaration. Every
// entry must be a bare identifier, declared once.
func (p *Parser) parseParameters() ([]string, error) {
	params := []string{}
	if p.curTokenIs(token.RPAREN) {
		return params, nil
	}

	for {
		start := p.curToken()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		ident, ok := expr.(*ast.Identifier)
		if !ok {
			return nil, diag.Syntax(start.Position, "unexpected expression %s, expected identifier", expr.String())
		}
		if slices.Contains(params, ident.Value) {
			return nil, diag.Syntax(start.Position, "duplicate parameter %s", ident.Value)
		}
		params = append(params, ident.Value)

		if !p.curTokenIs(token.COMMA) {
			return params, nil
		}
		p.nextToken()
	}
}

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseObjectExpression()
}

func (p *Parser) parseObjectExpression() (ast.Expression, error) {
	if !p.curTokenIs(token.LBRACE) {
		return p.parseAdditiveExpression()
	}

	obj := &ast.ObjectLiteral{Token: p.nextToken()}
	obj.Properties = []*ast.PropertyLiteral{}

	for !p.curTokenIs(token.EOF) && !p.curTokenIs(token.RBRACE) {
		key, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		prop := &ast.PropertyLiteral{Token: key, Key: key.Literal}

		// { key, } and { key }
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			obj.Properties = append(obj.Properties, prop)
			continue
		} else if p.curTokenIs(token.RBRACE) {
			obj.Properties = append(obj.Properties, prop)
			continue
		}

		// { key: value }
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		prop.Value, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
		obj.Properties = append(obj.Properties, prop)

		if !p.curTokenIs(token.RBRACE) {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
		}
	}

	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return obj, nil
}

func (p *Parser) parseAdditiveExpression() (ast.Expression, error) {
	return p.parseBinary(p.parseMultiplicativeExpression, "+", "-")
}

func (p *Parser) parseMultiplicativeExpression() (ast.Expression, error) {
	return p.parseBinary(p.parseCallMemberExpression, "*", "/", "%")
}

// parseBinary folds a left-associative chain of the given operators whose
// operands are parsed by next.
func (p *Parser) parseBinary(next func() (ast.Expression, error), ops ...string) (ast.Expression, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for p.isOperator(ops...) {
		tok := p.nextToken()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{
			Token:    tok,
			Left:     left,
			Operator: tok.Literal,
			Right:    right,
		}
	}

	return left, nil
}

func (p *Parser) parseCallMemberExpression() (ast.Expression, error) {
	member, err := p.parseMemberExpression()
	if err != nil {
		return nil, err
	}

	var expr ast.Expression = member
	for p.curTokenIs(token.LPAREN) {
		expr, err = p.parseCallExpression(expr)
		if err != nil {
			return nil, err
		}
	}
	return expr, nil
}

func (p *Parser) parseCallExpression(callee ast.Expression) (*ast.CallExpression, error) {
	call := &ast.CallExpression{Token: p.nextToken(), Callee: callee}

	args, err := p.parseArgumentList()
	if err != nil {
		return nil, err
	}
	call.Arguments = args

	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return call, nil
}

// parseArgumentList parses comma separated expressions up to, but not
// including, the closing parenthesis.
func (p *Parser) parseArgumentList() ([]ast.Expression, error) {
	args := []ast.Expression{}
	if p.curTokenIs(token.RPAREN) {
		return args, nil
	}

	arg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	args = append(args, arg)

	for p.curTokenIs(token.COMMA) {
		p.nextToken()
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	return args, nil
}

func (p *Parser) parseMemberExpression() (ast.Expression, error) {
	object, err := p.parsePrimaryExpression()
	if err != nil {
		return nil, err
	}

	for p.curTokenIs(token.PERIOD) || p.curTokenIs(token.LBRACKET) {
		tok := p.nextToken()
		member := &ast.MemberExpression{Token: tok, Object: object}

		if tok.Type == token.PERIOD {
			ident, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			member.Property = &ast.Identifier{Token: ident, Value: ident.Literal}
		} else {
			member.Computed = true
			member.Property, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
		}

		object = member
	}

	return object, nil
}

func (p *Parser) parsePrimaryExpression() (ast.Expression, error) {
	tok := p.nextToken()

	switch tok.Type {
	case token.NUMBER:
		return &ast.NumberLiteral{Token: tok, Value: parseNumber(tok.Literal)}, nil

	case token.STRING:
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}, nil

	case token.IDENT:
		if p.curTokenIs(token.ASSIGN) {
			p.nextToken()
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			return &ast.AssignmentLiteral{Token: tok, Identifier: tok.Literal, Value: value}, nil
		}
		return &ast.Identifier{Token: tok, Value: tok.Literal}, nil

	case token.LPAREN:
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return value, nil

	default:
		return nil, p.unexpected(tok)
	}
}

// parseNumber reads a number literal the way the host converts numeric
// strings: malformed spellings such as "1.2.3" become NaN.
func parseNumber(literal string) float64 {
	v, err := strconv.ParseFloat(literal, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return v
}

func describe(t token.TokenType, literal string) string {
	switch t {
	case token.EOF:
		return "end of file"
	case token.IDENT, token.NUMBER, token.OPERATOR:
		if literal == "" {
			return strings.ToLower(string(t))
		}
		return strings.ToLower(string(t)) + " '" + literal + "'"
	case token.STRING:
		if literal == "" {
			return "string"
		}
		return strconv.Quote(literal)
	case token.FUNCTION:
		return "keyword 'fn'"
	case token.LET, token.FINAL, token.RETURN:
		return "keyword '" + strings.ToLower(string(t)) + "'"
	}
	return "'" + string(t) + "'"
}
