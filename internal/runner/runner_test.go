package runner

import (
	"bytes"
	"errors"
	"io/fs"
	"lx/internal/diag"
	"lx/internal/object"
	"lx/internal/util"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newRunner(t *testing.T, opts ...Option) (*Runner, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	r, err := New(util.DefaultConfiguration(), &out, opts...)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	return r, &out
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestExecutePrints(t *testing.T) {
	r, out := newRunner(t)

	if err := r.Execute(`print("hello", 1 + 2)`); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out.String() != "hello\n3\n" {
		t.Fatalf("output wrong. got=%q", out.String())
	}
}

func TestRootPersistsAcrossExecutions(t *testing.T) {
	r, out := newRunner(t)

	inputs := []string{
		"let x = 5",
		"fn double(n) { n * 2 }",
		"x = double(x)",
		"print(x)",
	}
	for _, input := range inputs {
		if err := r.Execute(input); err != nil {
			t.Fatalf("execute %q: %v", input, err)
		}
	}
	if out.String() != "10\n" {
		t.Fatalf("output wrong. got=%q", out.String())
	}

	err := r.Execute("let x = 1")
	if !diag.IsKind(err, diag.NameError) {
		t.Fatalf("expected redeclaration to fail, got=%v", err)
	}
}

func TestFailedInputKeepsEarlierBindings(t *testing.T) {
	r, _ := newRunner(t)

	r.Execute("let a = 1")
	if err := r.Execute("let b = 2 missing"); err == nil {
		t.Fatalf("expected an error")
	}

	// statements before the failure stay in effect
	result, err := r.Eval("a + b")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if n, ok := result.(*object.Number); !ok || n.Value != 3 {
		t.Fatalf("a + b wrong. got=%s", result.Inspect())
	}
}

func TestEvalReturnsLastValue(t *testing.T) {
	r, _ := newRunner(t)

	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 1", "2"},
		{`"a" + "b"`, "ab"},
		{"let y = 1", "null"},
		{"{ y }", "{ y: 1 }"},
		{"typeof(y)", "number"},
		{"", "null"},
	}

	for i, tt := range tests {
		result, err := r.Eval(tt.input)
		if err != nil {
			t.Fatalf("tests[%d] - eval %q: %v", i, tt.input, err)
		}
		if result.Inspect() != tt.expected {
			t.Fatalf("tests[%d] - result wrong. expected=%q, got=%q", i, tt.expected, result.Inspect())
		}
	}
}

func TestDateUsesClock(t *testing.T) {
	clock := func() time.Time { return time.UnixMilli(42) }
	r, _ := newRunner(t, WithClock(clock))

	result, err := r.Eval("date.time()")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if result.Inspect() != "42" {
		t.Fatalf("date.time() wrong. got=%s", result.Inspect())
	}
}

func TestExecuteFile(t *testing.T) {
	r, out := newRunner(t)
	path := writeFile(t, "main.lx", `
final let greeting = "hi"
fn greet(name) {
  greeting + " " + name
}
print(greet("lx"))
`)

	if err := r.ExecuteFile(path); err != nil {
		t.Fatalf("execute file: %v", err)
	}
	if out.String() != "hi lx\n" {
		t.Fatalf("output wrong. got=%q", out.String())
	}
}

func TestExecuteFileExtension(t *testing.T) {
	r, _ := newRunner(t)

	tests := []struct {
		name    string
		message string
	}{
		{"main.txt", ".txt wasn't recognized. Use '.lx' instead."},
		{"main.js", ".js wasn't recognized. Use '.lx' instead."},
		{"main", "main wasn't recognized. Use '.lx' instead."},
	}

	for i, tt := range tests {
		path := writeFile(t, tt.name, "print(1)")
		err := r.ExecuteFile(path)
		d, ok := err.(*diag.Error)
		if !ok || d.Kind != diag.ExtensionError || d.Message != tt.message {
			t.Fatalf("tests[%d] - expected extension error %q, got=%v", i, tt.message, err)
		}
	}
}

func TestExecuteFileMissing(t *testing.T) {
	r, _ := newRunner(t)
	err := r.ExecuteFile(filepath.Join(t.TempDir(), "missing.lx"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected a not-exist error, got=%v", err)
	}
}

func TestExecuteFileWritesAST(t *testing.T) {
	cfg := util.DefaultConfiguration()
	cfg.DebugAST = "json"
	r, err := New(cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	path := writeFile(t, "ast.lx", "let a = 1 + 2")
	if err := r.ExecuteFile(path); err != nil {
		t.Fatalf("execute file: %v", err)
	}

	dump, err := os.ReadFile(path + ".ast.json")
	if err != nil {
		t.Fatalf("read AST dump: %v", err)
	}
	if !strings.Contains(string(dump), `"AssignmentExpression"`) {
		t.Fatalf("AST dump missing declaration node:\n%s", dump)
	}
}

func TestEvalWritesASTToOutput(t *testing.T) {
	cfg := util.DefaultConfiguration()
	cfg.DebugAST = "text"
	var astOut bytes.Buffer
	r, err := New(cfg, &bytes.Buffer{}, WithASTOutput(&astOut))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	if err := r.Execute("let a = 1"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if astOut.Len() == 0 {
		t.Fatalf("expected an AST dump")
	}
}

func TestDiagnosticPositionsSpanSession(t *testing.T) {
	r, _ := newRunner(t)

	r.Execute("fn broken() { nope }")
	err := r.Execute("broken()")
	if !diag.IsKind(err, diag.NameError) {
		t.Fatalf("expected a name error, got=%v", err)
	}

	rendered := r.Render(err)
	if !strings.HasPrefix(rendered, "Uncaught Name Error: cannot find variable nope [1:15]") {
		t.Fatalf("rendered error wrong:\n%s", rendered)
	}
	if !strings.Contains(rendered, "fn broken() { nope }") {
		t.Fatalf("rendered error lacks the declaring line:\n%s", rendered)
	}

	err = r.Execute("let z = -")
	d, ok := err.(*diag.Error)
	if !ok || d.Kind != diag.LexicalError {
		t.Fatalf("expected a lexical error, got=%v", err)
	}
	if !strings.HasPrefix(r.Render(err), "Uncaught Lexical Error: unexpected '-' [3:9]") {
		t.Fatalf("rendered error wrong:\n%s", r.Render(err))
	}
}

func TestSyntaxErrorsStopBeforeEvaluation(t *testing.T) {
	r, out := newRunner(t)

	err := r.Execute(`print("never") let = 1`)
	if !diag.IsKind(err, diag.SyntaxError) {
		t.Fatalf("expected a syntax error, got=%v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("nothing should run when parsing fails. got=%q", out.String())
	}
}

func TestExecuteIsIdempotentForPureExpressions(t *testing.T) {
	r, out := newRunner(t)
	r.Execute("let n = 4")

	if err := r.Execute("print(n * 2 + 1)"); err != nil {
		t.Fatalf("first execute: %v", err)
	}
	first := out.String()
	out.Reset()

	if err := r.Execute("print(n * 2 + 1)"); err != nil {
		t.Fatalf("second execute: %v", err)
	}
	if out.String() != first || first != "9\n" {
		t.Fatalf("outputs differ. first=%q, second=%q", first, out.String())
	}
}

func TestNulBytesDoNotTruncateSource(t *testing.T) {
	r, out := newRunner(t)

	if err := r.Execute("print(\"a\x00b\") print(3)"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out.String() != "a\x00b\n3\n" {
		t.Fatalf("output wrong. got=%q", out.String())
	}

	out.Reset()
	err := r.Execute("print(1)\x00print(2)")
	if !diag.IsKind(err, diag.NameError) {
		t.Fatalf("a bare NUL should be an undeclared name, got=%v", err)
	}
	if out.String() != "1\n" {
		t.Fatalf("output wrong. got=%q", out.String())
	}
}
