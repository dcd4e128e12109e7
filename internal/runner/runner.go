// Package runner executes lx source against one persistent root
// environment. The REPL and the file driver are both built on it.
package runner

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"lx/internal/ast"
	"lx/internal/builtins"
	"lx/internal/diag"
	"lx/internal/evaluator"
	"lx/internal/lexer"
	"lx/internal/object"
	"lx/internal/parser"
	"lx/internal/util"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const Extension = ".lx"

type Runner struct {
	config    util.Configuration
	root      *object.Environment
	evaluator *evaluator.Evaluator
	clock     func() time.Time
	astOut    io.Writer

	// source accumulates every executed input so that diagnostics raised
	// inside functions declared by earlier inputs still point at real text
	source strings.Builder
}

type Option func(*Runner)

// WithClock replaces the clock behind date.time.
func WithClock(clock func() time.Time) Option {
	return func(r *Runner) {
		r.clock = clock
	}
}

// WithASTOutput is where Execute and Eval dump the AST when the
// configuration enables DebugAST. Files always dump next to the source.
func WithASTOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.astOut = w
	}
}

// New returns a runner whose root environment holds the builtins. Program
// output from print goes to out.
func New(config util.Configuration, out io.Writer, opts ...Option) (*Runner, error) {
	r := &Runner{config: config}
	for _, opt := range opts {
		opt(r)
	}

	r.root = object.NewEnvironment()
	if err := builtins.Install(r.root, out, r.clock); err != nil {
		return nil, fmt.Errorf("failed to install builtins: %w", err)
	}
	r.evaluator = evaluator.New(r.root, evaluator.WithMaxDepth(config.MaxCallDepth))

	return r, nil
}

func (r *Runner) Root() *object.Environment {
	return r.root
}

// Source is the text of every input executed so far. Diagnostic positions
// are offsets into it.
func (r *Runner) Source() string {
	return r.source.String()
}

// Render formats err with source context for the diagnostic stream.
func (r *Runner) Render(err error) string {
	return diag.Render(err, r.Source())
}

// Execute runs source against the root environment.
func (r *Runner) Execute(source string) error {
	_, err := r.Eval(source)
	return err
}

// Eval runs source against the root environment and returns the value of
// its last statement.
func (r *Runner) Eval(source string) (object.Object, error) {
	program, err := r.parse(source)
	if err != nil {
		return nil, err
	}
	if r.config.DebugAST != "" && r.astOut != nil {
		rendered, err := parser.RenderAST(program, r.config.DebugAST)
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(r.astOut, rendered); err != nil {
			return nil, fmt.Errorf("failed to write AST: %w", err)
		}
	}
	return r.evaluator.EvalProgram(program)
}

// ExecuteFile reads and runs an .lx file.
func (r *Runner) ExecuteFile(path string) error {
	ext := filepath.Ext(path)
	if ext != Extension {
		if ext == "" {
			ext = filepath.Base(path)
		}
		return diag.Extension(ext)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file '%s': %w", path, err)
	}
	slog.Debug("execute file", slog.String("path", path), slog.Int("bytes", len(src)))

	program, err := r.parse(string(src))
	if err != nil {
		return err
	}
	if r.config.DebugAST != "" {
		astFile := parser.ASTFileName(path, r.config.DebugAST)
		if err := parser.WriteAST(program, astFile, r.config.DebugAST); err != nil {
			return err
		}
		slog.Info("wrote AST", slog.String("file", astFile))
	}

	_, err = r.evaluator.EvalProgram(program)
	return err
}

// parse tokenizes and parses source with positions relative to the whole
// session, then records source in the session text.
func (r *Runner) parse(source string) (*ast.Program, error) {
	offset := r.source.Len()
	r.source.WriteString(source)
	r.source.WriteString("\n")

	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, shift(err, offset)
	}
	for i := range tokens {
		tokens[i].Position += offset
	}

	return parser.GenerateProgram(tokens)
}

func shift(err error, offset int) error {
	var d *diag.Error
	if errors.As(err, &d) && d.Position != diag.NoPosition {
		d.Position += offset
	}
	return err
}
