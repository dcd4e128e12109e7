// Package repl runs the interactive lx prompt.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"lx/internal/diag"
	"lx/internal/history"
	"lx/internal/lexer"
	"lx/internal/object"
	"lx/internal/parser"
	"lx/internal/runner"
	"lx/internal/util"
	"strings"

	"github.com/peterh/liner"
)

const ContinuationPrompt = "... "

const helpText = `REPL commands:
  :help    Show this help
  :quit    Exit the REPL
`

// LineReader is the part of *liner.State the loop needs.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

type Repl struct {
	config util.Configuration
	runner *runner.Runner
	out    io.Writer
	errOut io.Writer
	store  history.Store
}

// New returns a REPL executing through r. store may be nil.
func New(config util.Configuration, r *runner.Runner, out, errOut io.Writer, store history.Store) *Repl {
	return &Repl{config: config, runner: r, out: out, errOut: errOut, store: store}
}

// Start runs an interactive session on the terminal until :quit or Ctrl-D.
func Start(ctx context.Context, config util.Configuration, r *runner.Runner, out, errOut io.Writer) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	store, err := history.Open(ctx, config.History.DSN, config.History.Limit)
	if err != nil {
		slog.Warn("history disabled", slog.String("error", err.Error()))
		fmt.Fprintf(errOut, "history disabled: %v\n", err)
	} else {
		defer store.Close()
		lines, err := store.Load(ctx)
		if err != nil {
			slog.Warn("failed to load history", slog.String("error", err.Error()))
		}
		for _, line := range lines {
			ln.AppendHistory(line)
		}
	}

	return New(config, r, out, errOut, store).Run(ctx, ln)
}

// Run reads inputs from lines until end of input. Each input is executed
// against the same root environment. Errors are reported and the loop
// continues, unless the configuration asks to abort, in which case the
// error is returned.
func (r *Repl) Run(ctx context.Context, lines LineReader) error {
	if r.config.Repl.Banner != "" {
		fmt.Fprintln(r.out, r.config.Repl.Banner)
	}

	for {
		input, ok := r.read(lines)
		if !ok {
			fmt.Fprintln(r.out)
			return nil
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit", ":q":
				return nil
			case ":help":
				io.WriteString(r.out, helpText)
			default:
				fmt.Fprintf(r.out, "unknown command %s. Type :help for a list.\n", trimmed)
			}
			continue
		}

		r.remember(ctx, lines, input)

		result, err := r.runner.Eval(input)
		if err != nil {
			fmt.Fprintln(r.errOut, r.runner.Render(err))
			if r.config.Repl.AbortOnError {
				return err
			}
			continue
		}
		if r.config.Repl.Echo && result != nil && result != object.NULL {
			fmt.Fprintln(r.out, result.Inspect())
		}
	}
}

// read prompts until the collected lines parse or fail for a reason other
// than running out of input. The second result is false at end of input.
func (r *Repl) read(lines LineReader) (string, bool) {
	var b strings.Builder

	for {
		prompt := r.config.Repl.Prompt
		if b.Len() > 0 {
			prompt = ContinuationPrompt
		}

		line, err := lines.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Error("prompt failed", slog.String("error", err.Error()))
			}
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !incomplete(src) {
			return src, true
		}
	}
}

func (r *Repl) remember(ctx context.Context, lines LineReader, input string) {
	entry := strings.ReplaceAll(input, "\n", " ")
	lines.AppendHistory(entry)
	if r.store == nil {
		return
	}
	if err := r.store.Append(ctx, entry); err != nil {
		slog.Warn("failed to save history", slog.String("error", err.Error()))
	}
}

// incomplete reports whether src only fails to parse because it ends
// early, as in an unclosed function body.
func incomplete(src string) bool {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return false
	}
	_, err = parser.GenerateProgram(tokens)
	var d *diag.Error
	return errors.As(err, &d) && d.Kind == diag.SyntaxError && strings.HasSuffix(d.Message, "end of file")
}
