package parser

import (
	"fmt"
	"reflect"
	"rill/internal/ast"
	"strings"
)

// RenderASTAsText produces a human-centric, indented, source-like representation of the AST.
// Every expression is annotated with its static tag, which makes it handy for debugging
// precedence and type adoption.
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
			// Root level statements start at indent 0
			sb.WriteString(RenderASTAsText(s, 0))
		}
		return sb.String()

	case *ast.VarStatement:
		if n.Value == nil {
			return fmt.Sprintf("%s%s %s", sp, strings.ToLower(n.Tag.String()), n.Name.Lexeme)
		}
		return fmt.Sprintf("%s%s %s = %s", sp, strings.ToLower(n.Tag.String()), n.Name.Lexeme, RenderASTAsText(n.Value, 0))

	case *ast.FunctionStatement:
		params := []string{}
		for _, p := range n.Parameters {
			params = append(params, p.String())
		}
		// Body block aligns its closing brace with 'indent'
		return fmt.Sprintf("%sfun %s %s(%s) %s", sp, strings.ToLower(n.ReturnType.String()), n.Name.Lexeme,
			strings.Join(params, ", "), RenderASTAsText(n.Body, indent))

	case *ast.ReturnStatement:
		if n.ReturnValue == nil {
			return sp + "return"
		}
		return fmt.Sprintf("%sreturn %s", sp, RenderASTAsText(n.ReturnValue, 0))

	case *ast.PrintStatement:
		keyword := "print"
		if n.ToStderr {
			keyword = "printErr"
		}
		return fmt.Sprintf("%s%s %s", sp, keyword, RenderASTAsText(n.Value, 0))

	case *ast.ExpressionStatement:
		// The statement handles the line's starting indentation
		return sp + RenderASTAsText(n.Expression, 0)

	case *ast.BlockStatement:
		var sb strings.Builder
		sb.WriteString("{\n")
		for _, s := range n.Statements {
			// Statements inside the block are indented +1
			sb.WriteString(renderNested(s, indent+1))
			sb.WriteString("\n")
		}
		// The closing brace aligns with the parent's indent
		sb.WriteString(sp + "}")
		return sb.String()

	case *ast.IfStatement:
		res := fmt.Sprintf("%sif %s %s", sp, RenderASTAsText(n.Condition, 0), renderBranch(n.ThenBranch, indent))
		if n.ElseBranch != nil {
			res += " else " + renderBranch(n.ElseBranch, indent)
		}
		return res

	case *ast.WhileStatement:
		return fmt.Sprintf("%swhile %s %s", sp, RenderASTAsText(n.Condition, 0), renderBranch(n.Body, indent))

	case *ast.Literal:
		return fmt.Sprintf("%s:%s", n.String(), n.Tag)

	case *ast.Grouping:
		return fmt.Sprintf("(%s)", RenderASTAsText(n.Expression, 0))

	case *ast.Unary:
		return fmt.Sprintf("(%s%s):%s", n.Token.Lexeme, RenderASTAsText(n.Right, 0), n.Tag)

	case *ast.Binary:
		return fmt.Sprintf("(%s %s %s):%s", RenderASTAsText(n.Left, 0), n.Token.Lexeme, RenderASTAsText(n.Right, 0), n.Tag)

	case *ast.Logical:
		return fmt.Sprintf("(%s %s %s)", RenderASTAsText(n.Left, 0), n.Token.Lexeme, RenderASTAsText(n.Right, 0))

	case *ast.Variable:
		return fmt.Sprintf("%s:%s", n.Name(), n.Tag)

	case *ast.Assign:
		return fmt.Sprintf("%s = %s", n.Name(), RenderASTAsText(n.Value, 0))

	case *ast.Call:
		args := []string{}
		for _, a := range n.Arguments {
			args = append(args, RenderASTAsText(a, 0))
		}
		return fmt.Sprintf("%s(%s):%s", n.Name(), strings.Join(args, ", "), n.Tag)

	default:
		return fmt.Sprintf("%s/* unknown node %T */", sp, n)
	}
}

// renderNested applies the indentation for a statement that does not
// indent itself.
func renderNested(s ast.Statement, indent int) string {
	if _, ok := s.(*ast.BlockStatement); ok {
		return strings.Repeat("  ", indent) + RenderASTAsText(s, indent)
	}
	return RenderASTAsText(s, indent)
}

// renderBranch keeps a block branch on the keyword's line and pushes a
// single statement onto its own indented line.
func renderBranch(s ast.Statement, indent int) string {
	if _, ok := s.(*ast.BlockStatement); ok {
		return RenderASTAsText(s, indent)
	}
	return "\n" + RenderASTAsText(s, indent+1)
}
