// Package diag defines the error values produced while lexing, parsing and
// evaluating lx source, and renders them for the terminal.
package diag

import (
	"errors"
	"fmt"
	"lx/internal/util"
	"strings"
)

type Kind int

const (
	LexicalError Kind = iota
	SyntaxError
	NameError
	TypeError
	KeyError
	RangeError
	ExtensionError
)

var kindNames = [...]string{
	"Lexical Error",
	"Syntax Error",
	"Name Error",
	"Type Error",
	"Key Error",
	"Range Error",
	"Extension Error",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// NoPosition marks errors that are not tied to a source offset.
const NoPosition = -1

type Error struct {
	Kind     Kind
	Message  string
	Position int
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

func newError(kind Kind, pos int, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...), Position: pos}
}

func Lexical(pos int, format string, a ...interface{}) *Error {
	return newError(LexicalError, pos, format, a...)
}

func Syntax(pos int, format string, a ...interface{}) *Error {
	return newError(SyntaxError, pos, format, a...)
}

func Name(format string, a ...interface{}) *Error {
	return newError(NameError, NoPosition, format, a...)
}

func Type(format string, a ...interface{}) *Error {
	return newError(TypeError, NoPosition, format, a...)
}

func Key(format string, a ...interface{}) *Error {
	return newError(KeyError, NoPosition, format, a...)
}

func Range(format string, a ...interface{}) *Error {
	return newError(RangeError, NoPosition, format, a...)
}

func Extension(ext string) *Error {
	return newError(ExtensionError, NoPosition, "%s wasn't recognized. Use '.lx' instead.", ext)
}

// IsKind reports whether err wraps a diagnostic of the given kind.
func IsKind(err error, kind Kind) bool {
	var d *Error
	return errors.As(err, &d) && d.Kind == kind
}

// Render formats err for the diagnostic stream. Errors carrying a source
// position get the offending line and a caret.
func Render(err error, src string) string {
	var d *Error
	if !errors.As(err, &d) {
		return "Uncaught Error: " + err.Error()
	}
	var out strings.Builder
	out.WriteString("Uncaught ")
	if d.Position == NoPosition || src == "" {
		out.WriteString(d.Error())
		return out.String()
	}
	line, col := util.GetLineAndColumn(src, d.Position)
	fmt.Fprintf(&out, "%s [%d:%d]\n", d.Error(), line, col)
	out.WriteString(util.GetContextLines(src, line, col))
	return out.String()
}
