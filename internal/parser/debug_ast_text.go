package parser

import (
	"fmt"
	"lx/internal/ast"
	"reflect"
	"strings"
)

// RenderASTAsText produces a human-centric, indented representation of the AST.
// It is optimized for debugging precedence and binding.
func RenderASTAsText(node ast.Node, indent int) string {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return "nil"
	}

	sp := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *ast.Program:
		var sb strings.Builder
		for i, s := range n.Statements {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(RenderASTAsText(s, 0))
		}
		return sb.String()

	case *ast.AssignmentExpression:
		return sp + n.String()

	case *ast.FunctionDeclaration:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%sfn %s(%s) {\n", sp, n.Name, strings.Join(n.Parameters, ", ")))
		for _, s := range n.Body {
			sb.WriteString(RenderASTAsText(s, indent+1))
			sb.WriteString("\n")
		}
		sb.WriteString(sp + "}")
		return sb.String()

	case *ast.ExpressionStatement:
		return sp + n.String()

	default:
		return sp + node.String()
	}
}
