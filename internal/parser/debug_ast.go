package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"rill/internal/ast"

	"github.com/kr/pretty"
)

// Dump modes accepted by DumpAST.
const (
	DumpText   = "text"
	DumpJSON   = "json"
	DumpPretty = "pretty"
)

// DumpAST writes node to w in the given mode: an indented source-like
// rendering, the JSON tree, or the Go structure as printed by kr/pretty.
func DumpAST(w io.Writer, node ast.Node, mode string) error {
	switch mode {
	case DumpText:
		_, err := fmt.Fprintln(w, RenderASTAsText(node, 0))
		return err
	case DumpJSON:
		return encodeJSON(w, WalkAST(node))
	case DumpPretty:
		_, err := pretty.Fprintf(w, "%# v\n", node)
		return err
	default:
		return fmt.Errorf("unknown AST dump mode %q; use %s, %s or %s", mode, DumpText, DumpJSON, DumpPretty)
	}
}

// WalkAST recursively traverses an AST and serializes it into a map structure for JSON output.
func WalkAST(node ast.Node) interface{} {
	switch n := node.(type) {
	case nil:
		return nil

	case *ast.Program:
		statements := make([]interface{}, len(n.Statements))
		for i, s := range n.Statements {
			statements[i] = WalkAST(s)
		}
		return map[string]interface{}{
			"0.type":       "Program",
			"1.statements": statements,
		}

	case *ast.VarStatement:
		return map[string]interface{}{
			"0.type":  "VarStatement",
			"1.line":  n.Token.Line,
			"2.tag":   n.Tag,
			"3.name":  n.Name.Lexeme,
			"4.value": walkExpression(n.Value),
		}

	case *ast.FunctionStatement:
		params := make([]interface{}, len(n.Parameters))
		for i, p := range n.Parameters {
			params[i] = map[string]interface{}{
				"0.tag":  p.Tag,
				"1.name": p.Name.Lexeme,
			}
		}
		return map[string]interface{}{
			"0.type":       "FunctionStatement",
			"1.line":       n.Token.Line,
			"2.name":       n.Name.Lexeme,
			"3.returnType": n.ReturnType,
			"4.parameters": params,
			"5.body":       WalkAST(n.Body),
		}

	case *ast.ReturnStatement:
		return map[string]interface{}{
			"0.type":        "ReturnStatement",
			"1.line":        n.Token.Line,
			"2.returnValue": walkExpression(n.ReturnValue),
		}

	case *ast.ExpressionStatement:
		return map[string]interface{}{
			"0.type":       "ExpressionStatement",
			"1.line":       n.Token.Line,
			"2.expression": WalkAST(n.Expression),
		}

	case *ast.PrintStatement:
		return map[string]interface{}{
			"0.type":     "PrintStatement",
			"1.line":     n.Token.Line,
			"2.toStderr": n.ToStderr,
			"3.value":    WalkAST(n.Value),
		}

	case *ast.BlockStatement:
		statements := make([]interface{}, len(n.Statements))
		for i, s := range n.Statements {
			statements[i] = WalkAST(s)
		}
		return map[string]interface{}{
			"0.type":       "BlockStatement",
			"1.line":       n.Token.Line,
			"2.statements": statements,
		}

	case *ast.IfStatement:
		var elseBranch interface{}
		if n.ElseBranch != nil {
			elseBranch = WalkAST(n.ElseBranch)
		}
		return map[string]interface{}{
			"0.type":       "IfStatement",
			"1.line":       n.Token.Line,
			"2.condition":  WalkAST(n.Condition),
			"3.thenBranch": WalkAST(n.ThenBranch),
			"4.elseBranch": elseBranch,
		}

	case *ast.WhileStatement:
		return map[string]interface{}{
			"0.type":      "WhileStatement",
			"1.line":      n.Token.Line,
			"2.condition": WalkAST(n.Condition),
			"3.body":      WalkAST(n.Body),
		}

	case *ast.Literal:
		return map[string]interface{}{
			"0.type":  "Literal",
			"1.tag":   n.Tag,
			"2.value": n.Value,
		}

	case *ast.Grouping:
		return map[string]interface{}{
			"0.type":       "Grouping",
			"1.tag":        n.Type(),
			"2.expression": WalkAST(n.Expression),
		}

	case *ast.Unary:
		return map[string]interface{}{
			"0.type":     "Unary",
			"1.tag":      n.Tag,
			"2.operator": n.Token.Lexeme,
			"3.right":    WalkAST(n.Right),
		}

	case *ast.Binary:
		return map[string]interface{}{
			"0.type":     "Binary",
			"1.tag":      n.Tag,
			"2.operator": n.Token.Lexeme,
			"3.left":     WalkAST(n.Left),
			"4.right":    WalkAST(n.Right),
		}

	case *ast.Logical:
		return map[string]interface{}{
			"0.type":     "Logical",
			"1.tag":      n.Type(),
			"2.operator": n.Token.Lexeme,
			"3.left":     WalkAST(n.Left),
			"4.right":    WalkAST(n.Right),
		}

	case *ast.Variable:
		return map[string]interface{}{
			"0.type": "Variable",
			"1.tag":  n.Tag,
			"2.name": n.Name(),
		}

	case *ast.Assign:
		return map[string]interface{}{
			"0.type":  "Assign",
			"1.tag":   n.Tag,
			"2.name":  n.Name(),
			"3.value": WalkAST(n.Value),
		}

	case *ast.Call:
		args := make([]interface{}, len(n.Arguments))
		for i, a := range n.Arguments {
			args[i] = WalkAST(a)
		}
		return map[string]interface{}{
			"0.type":      "Call",
			"1.tag":       n.Tag,
			"2.callee":    n.Name(),
			"3.arguments": args,
		}

	default:
		return map[string]interface{}{
			"0.type": "Unknown: " + n.String(),
		}
	}
}

// walkExpression keeps an absent optional expression as JSON null.
func walkExpression(e ast.Expression) interface{} {
	if e == nil {
		return nil
	}
	return WalkAST(e)
}

// WriteASTToJSON takes a root AST node and writes it to a JSON file.
func WriteASTToJSON(node ast.Node, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	return encodeJSON(file, WalkAST(node))
}

func encodeJSON(w io.Writer, tree interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")  // Pretty-print the JSON
	encoder.SetEscapeHTML(false) // Disable escaping of characters like <, >, &

	if err := encoder.Encode(tree); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
