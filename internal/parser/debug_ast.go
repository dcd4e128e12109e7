package parser

import (
	"fmt"
	"lx/internal/ast"
	"os"
	"strings"
)

// Formats accepted by WriteAST.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

// RenderAST renders node in one of the debug formats.
func RenderAST(node ast.Node, format string) (string, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return RenderASTAsJSON(node)
	case FormatYAML:
		return RenderASTAsYAML(node)
	case FormatText:
		return RenderASTAsText(node, 0) + "\n", nil
	default:
		return "", fmt.Errorf("unknown AST format %q (use json, yaml or text)", format)
	}
}

// WriteAST renders node and writes it to filename.
func WriteAST(node ast.Node, filename string, format string) error {
	out, err := RenderAST(node, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write AST file: %w", err)
	}
	return nil
}

// ASTFileName derives the dump path for a source file, e.g. main.lx -> main.lx.ast.json.
func ASTFileName(sourcePath string, format string) string {
	return sourcePath + ".ast." + strings.ToLower(format)
}
