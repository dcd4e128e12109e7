package evaluator

import (
	"errors"
	"log/slog"
	"lx/internal/ast"
	"lx/internal/diag"
	"lx/internal/object"
	"lx/internal/token"
	"math"
)

// DefaultMaxDepth bounds nested user function calls. Programs have no
// conditionals, so unbounded recursion can only be a runaway.
const DefaultMaxDepth = 10000

type Evaluator struct {
	root     *object.Environment
	depth    int
	maxDepth int
}

type Option func(*Evaluator)

// WithMaxDepth overrides DefaultMaxDepth. Values below 1 disable the limit.
func WithMaxDepth(n int) Option {
	return func(e *Evaluator) {
		e.maxDepth = n
	}
}

// New returns an evaluator whose top-level statements run in root.
func New(root *object.Environment, opts ...Option) *Evaluator {
	if root == nil {
		root = object.NewEnvironment()
	}
	e := &Evaluator{root: root, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaluator) Root() *object.Environment {
	return e.root
}

// EvalProgram evaluates every statement in the root environment and returns
// the value of the last one. An empty program evaluates to null.
func (e *Evaluator) EvalProgram(program *ast.Program) (object.Object, error) {
	var result object.Object = object.NULL

	for _, statement := range program.Statements {
		val, err := e.Eval(statement, e.root)
		if err != nil {
			return nil, err
		}
		result = val
	}

	return result, nil
}

func (e *Evaluator) Eval(node ast.Node, env *object.Environment) (object.Object, error) {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return e.EvalProgram(node)

	case *ast.ExpressionStatement:
		return e.Eval(node.Expression, env)

	case *ast.AssignmentExpression:
		val, err := e.Eval(node.Value, env)
		if err != nil {
			return nil, err
		}
		if err := env.Declare(node.Identifier, val, node.Constant); err != nil {
			return nil, at(node.Token, err)
		}
		return object.NULL, nil

	case *ast.FunctionDeclaration:
		fn := &object.Function{
			Name:       node.Name,
			Parameters: node.Parameters,
			Body:       node.Body,
			Env:        env,
		}
		if err := env.Declare(node.Name, fn, false); err != nil {
			return nil, at(node.Token, err)
		}
		return object.NULL, nil

	// Expressions
	case *ast.NumberLiteral:
		return &object.Number{Value: node.Value}, nil

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}, nil

	case *ast.Identifier:
		val, err := env.Lookup(node.Value)
		if err != nil {
			return nil, at(node.Token, err)
		}
		return val, nil

	case *ast.AssignmentLiteral:
		val, err := e.Eval(node.Value, env)
		if err != nil {
			return nil, err
		}
		if err := env.Reassign(node.Identifier, val); err != nil {
			return nil, at(node.Token, err)
		}
		return object.NULL, nil

	case *ast.BinaryExpression:
		left, err := e.Eval(node.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := e.Eval(node.Right, env)
		if err != nil {
			return nil, err
		}
		return evalBinaryExpression(node.Operator, left, right), nil

	case *ast.ObjectLiteral:
		return e.evalObjectLiteral(node, env)

	case *ast.MemberExpression:
		return e.evalMemberExpression(node, env)

	case *ast.CallExpression:
		return e.evalCallExpression(node, env)
	}

	return nil, diag.Syntax(diag.NoPosition, "unsupported node %T", node)
}

// evalBinaryExpression applies an arithmetic operator. Only numbers and
// strings take part; every other operand pair yields null.
func evalBinaryExpression(operator string, left, right object.Object) object.Object {
	if !isArithmetic(left) || !isArithmetic(right) {
		return object.NULL
	}

	_, leftIsString := left.(*object.String)
	_, rightIsString := right.(*object.String)
	stringResult := leftIsString || rightIsString

	if operator == "+" && stringResult {
		return &object.String{Value: object.ToDisplayString(left) + object.ToDisplayString(right)}
	}

	l := object.ToNumber(left)
	r := object.ToNumber(right)

	var v float64
	switch operator {
	case "+":
		v = l + r
	case "-":
		v = l - r
	case "*":
		v = l * r
	case "/":
		v = l / r
	case "%":
		v = math.Mod(l, r)
	default:
		return object.NULL
	}

	if stringResult {
		return &object.String{Value: object.FormatNumber(v)}
	}
	return &object.Number{Value: v}
}

func isArithmetic(obj object.Object) bool {
	switch obj.(type) {
	case *object.Number, *object.String:
		return true
	}
	return false
}

// evalObjectLiteral builds a map in property order. Shorthand properties
// resolve against the root environment, not the enclosing scope.
func (e *Evaluator) evalObjectLiteral(node *ast.ObjectLiteral, env *object.Environment) (object.Object, error) {
	m := object.NewMap()

	for _, prop := range node.Properties {
		var (
			val object.Object
			err error
		)
		if prop.Value == nil {
			val, err = e.root.Lookup(prop.Key)
			err = at(prop.Token, err)
		} else {
			val, err = e.Eval(prop.Value, env)
		}
		if err != nil {
			return nil, err
		}
		m.Set(prop.Key, val)
	}

	return m, nil
}

func (e *Evaluator) evalMemberExpression(node *ast.MemberExpression, env *object.Environment) (object.Object, error) {
	obj, err := e.Eval(node.Object, env)
	if err != nil {
		return nil, err
	}

	var key string
	if node.Computed {
		prop, err := e.Eval(node.Property, env)
		if err != nil {
			return nil, err
		}
		switch prop.(type) {
		case *object.Number, *object.String, *object.Boolean, *object.Null:
			key = object.ToDisplayString(prop)
		default:
			return nil, at(node.Token, diag.Key("%s cannot be used as a property key", prop.Type()))
		}
	} else {
		ident, ok := node.Property.(*ast.Identifier)
		if !ok {
			return nil, at(node.Token, diag.Syntax(diag.NoPosition, "expected identifier after '.'"))
		}
		key = ident.Value
	}

	m, ok := obj.(*object.Map)
	if !ok {
		return nil, at(node.Token, diag.Type("cannot read property '%s' of %s", key, obj.Type()))
	}

	if val, ok := m.Get(key); ok {
		return val, nil
	}
	return object.NULL, nil
}

func (e *Evaluator) evalCallExpression(node *ast.CallExpression, env *object.Environment) (object.Object, error) {
	callee, err := e.Eval(node.Callee, env)
	if err != nil {
		return nil, err
	}

	args, err := e.evalExpressions(node.Arguments, env)
	if err != nil {
		return nil, err
	}

	result, err := e.applyFunction(callee, args, env)
	if err != nil {
		return nil, at(node.Token, err)
	}
	return result, nil
}

func (e *Evaluator) evalExpressions(exps []ast.Expression, env *object.Environment) ([]object.Object, error) {
	result := make([]object.Object, 0, len(exps))

	for _, exp := range exps {
		evaluated, err := e.Eval(exp, env)
		if err != nil {
			return nil, err
		}
		result = append(result, evaluated)
	}

	return result, nil
}

func (e *Evaluator) applyFunction(fnObj object.Object, args []object.Object, env *object.Environment) (object.Object, error) {
	switch fn := fnObj.(type) {
	case *object.Native:
		slog.Debug("call native", slog.String("name", fn.Name), slog.Int("args", len(args)))
		return fn.Fn(args, env)

	case *object.Function:
		if e.maxDepth > 0 && e.depth >= e.maxDepth {
			return nil, diag.Range("maximum call depth of %d exceeded in %s", e.maxDepth, fn.Name)
		}
		e.depth++
		defer func() { e.depth-- }()

		slog.Debug("call function",
			slog.String("name", fn.Name),
			slog.Int("args", len(args)),
			slog.Int("depth", e.depth),
		)

		callEnv, err := extendFunctionEnv(fn, args)
		if err != nil {
			return nil, err
		}

		var result object.Object = object.NULL
		for _, stmt := range fn.Body {
			result, err = e.Eval(stmt, callEnv)
			if err != nil {
				return nil, err
			}
		}
		return result, nil

	default:
		return nil, diag.Type("cannot call something that is not a function")
	}
}

// extendFunctionEnv opens the call scope under the captured environment.
// Parameters without a matching argument stay undeclared.
func extendFunctionEnv(fn *object.Function, args []object.Object) (*object.Environment, error) {
	env := object.NewEnclosedEnvironment(fn.Env)

	for i, param := range fn.Parameters {
		if i >= len(args) {
			break
		}
		if err := env.Declare(param, args[i], false); err != nil {
			return nil, err
		}
	}

	return env, nil
}

// at attaches the position of tok to a diagnostic that has none yet.
func at(tok token.Token, err error) error {
	var d *diag.Error
	if errors.As(err, &d) && d.Position == diag.NoPosition {
		d.Position = tok.Position
	}
	return err
}
