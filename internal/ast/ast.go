package ast

import (
	"bytes"
	"lx/internal/token"
	"strconv"
	"strings"
)

// The base Node interface
type Node interface {
	TokenLiteral() string
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	} else {
		return ""
	}
}

func (p *Program) String() string {
	var out bytes.Buffer

	for i, s := range p.Statements {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(s.String())
	}

	return out.String()
}

// AssignmentExpression is a `let` or `final let` declaration.
type AssignmentExpression struct {
	Token      token.Token // the token.LET or token.FINAL token
	Identifier string
	Value      Expression
	Constant   bool
}

func (ae *AssignmentExpression) statementNode()       {}
func (ae *AssignmentExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignmentExpression) String() string {
	var out bytes.Buffer

	if ae.Constant {
		out.WriteString("final ")
	}
	out.WriteString("let ")
	out.WriteString(ae.Identifier)
	out.WriteString(" = ")
	if ae.Value != nil {
		out.WriteString(ae.Value.String())
	}

	return out.String()
}

type FunctionDeclaration struct {
	Token      token.Token // the token.FUNCTION token
	Name       string
	Parameters []string
	Body       []Statement
}

func (fd *FunctionDeclaration) statementNode()       {}
func (fd *FunctionDeclaration) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDeclaration) String() string {
	var out bytes.Buffer

	out.WriteString("fn ")
	out.WriteString(fd.Name)
	out.WriteString("(")
	out.WriteString(strings.Join(fd.Parameters, ", "))
	out.WriteString(") {")
	for _, s := range fd.Body {
		out.WriteString(" ")
		out.WriteString(s.String())
	}
	if len(fd.Body) > 0 {
		out.WriteString(" ")
	}
	out.WriteString("}")

	return out.String()
}

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

type Identifier struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

type NumberLiteral struct {
	Token token.Token
	Value float64
}

func (n *NumberLiteral) expressionNode()      {}
func (n *NumberLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NumberLiteral) String() string       { return n.Token.Literal }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (s *StringLiteral) expressionNode()      {}
func (s *StringLiteral) TokenLiteral() string { return s.Token.Literal }
func (s *StringLiteral) String() string       { return strconv.Quote(s.Value) }

type BinaryExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (be *BinaryExpression) expressionNode()      {}
func (be *BinaryExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BinaryExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(be.Left.String())
	out.WriteString(" " + be.Operator + " ")
	out.WriteString(be.Right.String())
	out.WriteString(")")

	return out.String()
}

// AssignmentLiteral is a reassignment of an existing variable, `x = expr`.
type AssignmentLiteral struct {
	Token      token.Token // the token.IDENT token of the target
	Identifier string
	Value      Expression
}

func (al *AssignmentLiteral) expressionNode()      {}
func (al *AssignmentLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *AssignmentLiteral) String() string {
	return al.Identifier + " = " + al.Value.String()
}

type PropertyLiteral struct {
	Token token.Token // the key token
	Key   string
	Value Expression // nil for shorthand properties
}

func (pl *PropertyLiteral) String() string {
	if pl.Value == nil {
		return pl.Key
	}
	return pl.Key + ": " + pl.Value.String()
}

type ObjectLiteral struct {
	Token      token.Token // the '{' token
	Properties []*PropertyLiteral
}

func (ol *ObjectLiteral) expressionNode()      {}
func (ol *ObjectLiteral) TokenLiteral() string { return ol.Token.Literal }
func (ol *ObjectLiteral) String() string {
	if len(ol.Properties) == 0 {
		return "{}"
	}

	props := make([]string, 0, len(ol.Properties))
	for _, p := range ol.Properties {
		props = append(props, p.String())
	}

	return "{ " + strings.Join(props, ", ") + " }"
}

type MemberExpression struct {
	Token    token.Token // the '.' or '[' token
	Object   Expression
	Property Expression
	Computed bool
}

func (me *MemberExpression) expressionNode()      {}
func (me *MemberExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MemberExpression) String() string {
	if me.Computed {
		return me.Object.String() + "[" + me.Property.String() + "]"
	}
	return me.Object.String() + "." + me.Property.String()
}

type CallExpression struct {
	Token     token.Token // The '(' token
	Callee    Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	var out bytes.Buffer

	args := []string{}
	for _, a := range ce.Arguments {
		args = append(args, a.String())
	}

	out.WriteString(ce.Callee.String())
	out.WriteString("(")
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")

	return out.String()
}
