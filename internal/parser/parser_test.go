package parser

import (
	"lx/internal/ast"
	"lx/internal/diag"
	"lx/internal/lexer"
	"math"
	"strings"
	"testing"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	program, err := GenerateProgram(tokens)
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	return program
}

func parseError(t *testing.T, input string) error {
	t.Helper()
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	_, err = GenerateProgram(tokens)
	if err == nil {
		t.Fatalf("expected a syntax error for %q", input)
	}
	return err
}

func TestOperatorPrecedenceParsing(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"5 + 3 * 2", "(5 + (3 * 2))"},
		{"a + b - c", "((a + b) - c)"},
		{"a * b / c % d", "(((a * b) / c) % d)"},
		{"(5 + 3) * 2", "((5 + 3) * 2)"},
		{"a + b * c + d / e - f", "(((a + (b * c)) + (d / e)) - f)"},
		{"add(a, b) * c", "(add(a, b) * c)"},
		{"a.b.c + d[e]", "(a.b.c + d[e])"},
		{"f(a)(b)(c)", "f(a)(b)(c)"},
		{"obj.method(1, 2 * 3)", "obj.method(1, (2 * 3))"},
		{"x[1 + 2].y", "x[(1 + 2)].y"},
		{"5 - -3", "(5 - -3)"},
		{`"a" + 1`, `("a" + 1)`},
	}

	for i, tt := range tests {
		program := parse(t, tt.input)
		if actual := program.String(); actual != tt.expected {
			t.Fatalf("tests[%d] - expected=%q, got=%q", i, tt.expected, actual)
		}
	}
}

func TestPrecedenceRootIsAdditive(t *testing.T) {
	program := parse(t, "5 + 3 * 2")
	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Statements))
	}
	stmt, ok := program.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("statement is not *ast.ExpressionStatement. got=%T", program.Statements[0])
	}
	root, ok := stmt.Expression.(*ast.BinaryExpression)
	if !ok {
		t.Fatalf("expression is not *ast.BinaryExpression. got=%T", stmt.Expression)
	}
	if root.Operator != "+" {
		t.Fatalf("root operator wrong. expected=%q, got=%q", "+", root.Operator)
	}
	right, ok := root.Right.(*ast.BinaryExpression)
	if !ok || right.Operator != "*" {
		t.Fatalf("right side should be the * node, got=%s", root.Right.String())
	}
}

func TestDeclarations(t *testing.T) {
	tests := []struct {
		input      string
		identifier string
		constant   bool
		value      string
	}{
		{"let x = 5", "x", false, "5"},
		{"final let y = x + 1", "y", true, "(x + 1)"},
		{"let o = { a: 1 }", "o", false, "{ a: 1 }"},
	}

	for i, tt := range tests {
		program := parse(t, tt.input)
		decl, ok := program.Statements[0].(*ast.AssignmentExpression)
		if !ok {
			t.Fatalf("tests[%d] - not *ast.AssignmentExpression. got=%T", i, program.Statements[0])
		}
		if decl.Identifier != tt.identifier {
			t.Fatalf("tests[%d] - identifier wrong. expected=%q, got=%q", i, tt.identifier, decl.Identifier)
		}
		if decl.Constant != tt.constant {
			t.Fatalf("tests[%d] - constant wrong. expected=%t, got=%t", i, tt.constant, decl.Constant)
		}
		if decl.Value.String() != tt.value {
			t.Fatalf("tests[%d] - value wrong. expected=%q, got=%q", i, tt.value, decl.Value.String())
		}
	}
}

func TestReassignment(t *testing.T) {
	program := parse(t, "x = y = 3 + 1")
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	assign, ok := stmt.Expression.(*ast.AssignmentLiteral)
	if !ok {
		t.Fatalf("expression is not *ast.AssignmentLiteral. got=%T", stmt.Expression)
	}
	if assign.Identifier != "x" {
		t.Fatalf("identifier wrong. got=%q", assign.Identifier)
	}
	inner, ok := assign.Value.(*ast.AssignmentLiteral)
	if !ok || inner.Identifier != "y" {
		t.Fatalf("value should be a reassignment of y, got=%s", assign.Value.String())
	}
	if inner.Value.String() != "(3 + 1)" {
		t.Fatalf("inner value wrong. got=%q", inner.Value.String())
	}
}

func TestObjectLiteral(t *testing.T) {
	tests := []struct {
		input    string
		keys     []string
		expected string
	}{
		{"{}", nil, "{}"},
		{"{ a: 1, b: 2 }", []string{"a", "b"}, "{ a: 1, b: 2 }"},
		{"{ a, b }", []string{"a", "b"}, "{ a, b }"},
		{"{ a, b, }", []string{"a", "b"}, "{ a, b }"},
		{"{ a: 1, b, c: { d: 2 }, }", []string{"a", "b", "c"}, "{ a: 1, b, c: { d: 2 } }"},
	}

	for i, tt := range tests {
		program := parse(t, tt.input)
		stmt := program.Statements[0].(*ast.ExpressionStatement)
		obj, ok := stmt.Expression.(*ast.ObjectLiteral)
		if !ok {
			t.Fatalf("tests[%d] - not *ast.ObjectLiteral. got=%T", i, stmt.Expression)
		}
		if len(obj.Properties) != len(tt.keys) {
			t.Fatalf("tests[%d] - wrong number of properties. expected=%d, got=%d", i, len(tt.keys), len(obj.Properties))
		}
		for j, key := range tt.keys {
			if obj.Properties[j].Key != key {
				t.Fatalf("tests[%d] - key %d wrong. expected=%q, got=%q", i, j, key, obj.Properties[j].Key)
			}
		}
		if obj.String() != tt.expected {
			t.Fatalf("tests[%d] - expected=%q, got=%q", i, tt.expected, obj.String())
		}
	}
}

func TestShorthandPropertyHasNoValue(t *testing.T) {
	program := parse(t, "{ a, b: 2 }")
	obj := program.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.ObjectLiteral)
	if obj.Properties[0].Value != nil {
		t.Fatalf("shorthand property should have no value, got=%s", obj.Properties[0].Value.String())
	}
	if obj.Properties[1].Value == nil {
		t.Fatalf("explicit property lost its value")
	}
}

func TestMemberExpression(t *testing.T) {
	program := parse(t, `obj.a["b"]`)
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	outer, ok := stmt.Expression.(*ast.MemberExpression)
	if !ok {
		t.Fatalf("not *ast.MemberExpression. got=%T", stmt.Expression)
	}
	if !outer.Computed {
		t.Fatalf("outer member should be computed")
	}
	inner, ok := outer.Object.(*ast.MemberExpression)
	if !ok || inner.Computed {
		t.Fatalf("inner member should be a non computed member expression, got=%s", outer.Object.String())
	}
	if inner.Property.String() != "a" {
		t.Fatalf("inner property wrong. got=%q", inner.Property.String())
	}
}

func TestCurriedCall(t *testing.T) {
	program := parse(t, "f(1)(2, 3)")
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	outer, ok := stmt.Expression.(*ast.CallExpression)
	if !ok {
		t.Fatalf("not *ast.CallExpression. got=%T", stmt.Expression)
	}
	if len(outer.Arguments) != 2 {
		t.Fatalf("outer call should have 2 arguments, got=%d", len(outer.Arguments))
	}
	inner, ok := outer.Callee.(*ast.CallExpression)
	if !ok {
		t.Fatalf("callee is not *ast.CallExpression. got=%T", outer.Callee)
	}
	if len(inner.Arguments) != 1 || inner.Callee.String() != "f" {
		t.Fatalf("inner call wrong. got=%s", inner.String())
	}
}

func TestFunctionDeclaration(t *testing.T) {
	program := parse(t, `fn add(a, b) {
	let sum = a + b
	sum
}
add(1, 2)`)

	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
	fn, ok := program.Statements[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("not *ast.FunctionDeclaration. got=%T", program.Statements[0])
	}
	if fn.Name != "add" {
		t.Fatalf("name wrong. got=%q", fn.Name)
	}
	if strings.Join(fn.Parameters, ",") != "a,b" {
		t.Fatalf("parameters wrong. got=%v", fn.Parameters)
	}
	if len(fn.Body) != 2 {
		t.Fatalf("body should have 2 statements, got=%d", len(fn.Body))
	}
	if fn.String() != "fn add(a, b) { let sum = (a + b) sum }" {
		t.Fatalf("String() wrong. got=%q", fn.String())
	}
}

func TestEmptyFunction(t *testing.T) {
	program := parse(t, "fn nothing() {}")
	fn := program.Statements[0].(*ast.FunctionDeclaration)
	if len(fn.Parameters) != 0 || len(fn.Body) != 0 {
		t.Fatalf("expected no parameters and no body, got=%s", fn.String())
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"let = 5", "expected identifier"},
		{"let x 5", "expected '='"},
		{"final x = 1", "expected keyword 'let'"},
		{"5 +", "unexpected end of file"},
		{"return 5", "unexpected token keyword 'return'"},
		{"(1 + 2", "expected ')'"},
		{"{ a: 1 b: 2 }", "expected ','"},
		{"{ 1: 2 }", "expected identifier"},
		{"f(1, 2", "expected ')'"},
		{"x[1", "expected ']'"},
		{"obj.(1)", "expected identifier"},
		{"fn f(a, 1) { a }", "expected identifier"},
		{"fn f(a, a) { a }", "duplicate parameter a"},
		{"fn f(a) a", "expected '{'"},
		{"fn f(a) { a", "expected '}'"},
		{")", "unexpected token ')'"},
	}

	for i, tt := range tests {
		err := parseError(t, tt.input)
		if !diag.IsKind(err, diag.SyntaxError) {
			t.Fatalf("tests[%d] - expected SyntaxError, got %v", i, err)
		}
		if !strings.Contains(err.Error(), tt.message) {
			t.Fatalf("tests[%d] - message wrong. expected to contain %q, got=%q", i, tt.message, err.Error())
		}
	}
}

func TestMalformedNumberIsNaN(t *testing.T) {
	program := parse(t, "1.2.3")
	num := program.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.NumberLiteral)
	if !math.IsNaN(num.Value) {
		t.Fatalf("expected NaN, got %v", num.Value)
	}
}

func TestRenderAST(t *testing.T) {
	program := parse(t, "let x = { a: 1 }\nfn f(y) { y * 2 }")

	for _, format := range []string{FormatJSON, FormatYAML, FormatText} {
		out, err := RenderAST(program, format)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", format, err)
		}
		for _, want := range []string{"AssignmentExpression", "FunctionDeclaration"} {
			if format == FormatText {
				break
			}
			if !strings.Contains(out, want) {
				t.Fatalf("%s: output missing %q:\n%s", format, want, out)
			}
		}
	}

	text, _ := RenderAST(program, FormatText)
	expected := "let x = { a: 1 }\nfn f(y) {\n  (y * 2)\n}\n"
	if text != expected {
		t.Fatalf("text dump wrong. expected=%q, got=%q", expected, text)
	}

	if _, err := RenderAST(program, "xml"); err == nil {
		t.Fatalf("expected an error for an unknown format")
	}
}
