package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"lx/internal/ast"
	"math"
	"reflect"

	"gopkg.in/yaml.v3"
)

// WalkAST recursively traverses an AST and serializes it into a machine-centric map structure.
// This output is designed for stability, canonical representation, and tool-chain consumption.
func WalkAST(node ast.Node) interface{} {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return nil
	}

	switch n := node.(type) {
	case *ast.Program:
		return map[string]interface{}{
			"type":       "Program",
			"statements": walkStatements(n.Statements),
		}

	case *ast.AssignmentExpression:
		return map[string]interface{}{
			"type":       "AssignmentExpression",
			"position":   n.Token.Position,
			"identifier": n.Identifier,
			"constant":   n.Constant,
			"value":      WalkAST(n.Value),
		}

	case *ast.FunctionDeclaration:
		params := make([]interface{}, len(n.Parameters))
		for i, p := range n.Parameters {
			params[i] = p
		}
		return map[string]interface{}{
			"type":       "FunctionDeclaration",
			"position":   n.Token.Position,
			"name":       n.Name,
			"parameters": params,
			"body":       walkStatements(n.Body),
		}

	case *ast.ExpressionStatement:
		return map[string]interface{}{
			"type":       "ExpressionStatement",
			"position":   n.Token.Position,
			"expression": WalkAST(n.Expression),
		}

	case *ast.NumberLiteral:
		m := map[string]interface{}{
			"type":     "NumberLiteral",
			"position": n.Token.Position,
			"token":    n.TokenLiteral(),
		}
		// NaN and the infinities have no JSON spelling
		if !math.IsNaN(n.Value) && !math.IsInf(n.Value, 0) {
			m["value"] = n.Value
		}
		return m

	case *ast.StringLiteral:
		return map[string]interface{}{
			"type":     "StringLiteral",
			"position": n.Token.Position,
			"value":    n.Value,
		}

	case *ast.Identifier:
		return map[string]interface{}{
			"type":     "Identifier",
			"position": n.Token.Position,
			"value":    n.Value,
		}

	case *ast.BinaryExpression:
		return map[string]interface{}{
			"type":     "BinaryExpression",
			"position": n.Token.Position,
			"operator": n.Operator,
			"left":     WalkAST(n.Left),
			"right":    WalkAST(n.Right),
		}

	case *ast.AssignmentLiteral:
		return map[string]interface{}{
			"type":       "AssignmentLiteral",
			"position":   n.Token.Position,
			"identifier": n.Identifier,
			"value":      WalkAST(n.Value),
		}

	case *ast.ObjectLiteral:
		props := make([]interface{}, len(n.Properties))
		for i, p := range n.Properties {
			props[i] = map[string]interface{}{
				"type":  "PropertyLiteral",
				"key":   p.Key,
				"value": WalkAST(p.Value),
			}
		}
		return map[string]interface{}{
			"type":       "ObjectLiteral",
			"position":   n.Token.Position,
			"properties": props,
		}

	case *ast.MemberExpression:
		return map[string]interface{}{
			"type":     "MemberExpression",
			"position": n.Token.Position,
			"computed": n.Computed,
			"object":   WalkAST(n.Object),
			"property": WalkAST(n.Property),
		}

	case *ast.CallExpression:
		args := make([]interface{}, len(n.Arguments))
		for i, a := range n.Arguments {
			args[i] = WalkAST(a)
		}
		return map[string]interface{}{
			"type":      "CallExpression",
			"position":  n.Token.Position,
			"callee":    WalkAST(n.Callee),
			"arguments": args,
		}

	default:
		return map[string]interface{}{
			"type": fmt.Sprintf("%T", node),
		}
	}
}

func walkStatements(stmts []ast.Statement) []interface{} {
	out := make([]interface{}, len(stmts))
	for i, s := range stmts {
		out[i] = WalkAST(s)
	}
	return out
}

func RenderASTAsJSON(node ast.Node) (string, error) {
	astMap := WalkAST(node)
	buf := new(bytes.Buffer)
	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(astMap); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return buf.String(), nil
}

func RenderASTAsYAML(node ast.Node) (string, error) {
	astMap := WalkAST(node)
	buf := new(bytes.Buffer)
	encoder := yaml.NewEncoder(buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(astMap); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.String(), nil
}
