// Package builtins populates a root environment with the constants and
// native functions every lx program can see.
package builtins

import (
	"fmt"
	"io"
	"lx/internal/diag"
	"lx/internal/object"
	"time"
)

// Install declares the builtin constants in env. print writes to out and
// date.time reads clock; a nil clock means time.Now.
func Install(env *object.Environment, out io.Writer, clock func() time.Time) error {
	if clock == nil {
		clock = time.Now
	}

	date := object.NewMap()
	date.Set("time", funcTime(clock))

	constants := []struct {
		name  string
		value object.Object
	}{
		{"null", object.NULL},
		{"true", object.TRUE},
		{"false", object.FALSE},
		{"print", funcPrint(out)},
		{"date", date},
		{"typeof", funcTypeof()},
		{"Number", funcNumber()},
	}

	for _, c := range constants {
		if err := env.Declare(c.name, c.value, true); err != nil {
			return err
		}
	}
	return nil
}

// funcPrint writes the display form of each argument on its own line.
func funcPrint(out io.Writer) *object.Native {
	return &object.Native{
		Name: "print",
		Fn: func(args []object.Object, env *object.Environment) (object.Object, error) {
			for _, arg := range args {
				if _, err := fmt.Fprintln(out, arg.Inspect()); err != nil {
					return nil, fmt.Errorf("print: %w", err)
				}
			}
			return object.NULL, nil
		},
	}
}

// funcTime returns the current time as epoch milliseconds.
func funcTime(clock func() time.Time) *object.Native {
	return &object.Native{
		Name: "time",
		Fn: func(args []object.Object, env *object.Environment) (object.Object, error) {
			return &object.Number{Value: float64(clock().UnixMilli())}, nil
		},
	}
}

func funcTypeof() *object.Native {
	return &object.Native{
		Name: "typeof",
		Fn: func(args []object.Object, env *object.Environment) (object.Object, error) {
			if len(args) != 1 {
				return nil, diag.Type("wrong number of arguments to typeof. got=%d, want=1", len(args))
			}
			return &object.String{Value: string(args[0].Type())}, nil
		},
	}
}

// funcNumber converts a number or string to a number.
func funcNumber() *object.Native {
	return &object.Native{
		Name: "Number",
		Fn: func(args []object.Object, env *object.Environment) (object.Object, error) {
			if len(args) != 1 {
				return nil, diag.Type("wrong number of arguments to Number. got=%d, want=1", len(args))
			}

			switch arg := args[0].(type) {
			case *object.Number:
				return arg, nil
			case *object.String:
				return &object.Number{Value: object.StringToNumber(arg.Value)}, nil
			default:
				return nil, diag.Type("%s cannot be converted to a number", arg.Type())
			}
		},
	}
}
