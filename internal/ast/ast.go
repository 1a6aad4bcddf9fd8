package ast

import (
	"bytes"
	"fmt"
	"rill/internal/token"
	"rill/internal/types"
	"strconv"
	"strings"
)

// The base Node interface
type Node interface {
	TokenLiteral() string
	String() string
}

type Statement interface {
	Node
	statementNode()
}

// Expression nodes carry the tag they produce. The tag is fixed when the
// parser builds the node and is never recomputed.
type Expression interface {
	Node
	expressionNode()
	Type() types.Tag
}

type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	} else {
		return ""
	}
}

func (p *Program) String() string {
	var out bytes.Buffer

	for _, s := range p.Statements {
		out.WriteString(s.String())
	}

	return out.String()
}

// Expressions

// Literal holds the decoded payload of a literal token: int64, float64,
// string, bool or nil.
type Literal struct {
	Token token.Token
	Value any
	Tag   types.Tag
}

func (l *Literal) expressionNode()      {}
func (l *Literal) TokenLiteral() string { return l.Token.Lexeme }
func (l *Literal) Type() types.Tag      { return l.Tag }
func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprint(v)
	}
}

type Grouping struct {
	Token      token.Token // the '(' token
	Expression Expression
}

func (g *Grouping) expressionNode()      {}
func (g *Grouping) TokenLiteral() string { return g.Token.Lexeme }
func (g *Grouping) Type() types.Tag      { return g.Expression.Type() }
func (g *Grouping) String() string       { return "(group " + g.Expression.String() + ")" }

type Unary struct {
	Token token.Token // The prefix token, e.g. !
	Right Expression
	Tag   types.Tag
}

func (u *Unary) expressionNode()      {}
func (u *Unary) TokenLiteral() string { return u.Token.Lexeme }
func (u *Unary) Type() types.Tag      { return u.Tag }
func (u *Unary) String() string {
	return "(" + u.Token.Lexeme + u.Right.String() + ")"
}

type Binary struct {
	Token token.Token // The operator token, e.g. +
	Left  Expression
	Right Expression
	Tag   types.Tag
}

func (b *Binary) expressionNode()      {}
func (b *Binary) TokenLiteral() string { return b.Token.Lexeme }
func (b *Binary) Type() types.Tag      { return b.Tag }
func (b *Binary) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(b.Left.String())
	out.WriteString(" " + b.Token.Lexeme + " ")
	out.WriteString(b.Right.String())
	out.WriteString(")")

	return out.String()
}

// Logical is a short-circuiting && or ||; it always produces BOOL.
type Logical struct {
	Token token.Token
	Left  Expression
	Right Expression
}

func (l *Logical) expressionNode()      {}
func (l *Logical) TokenLiteral() string { return l.Token.Lexeme }
func (l *Logical) Type() types.Tag      { return types.BOOL }
func (l *Logical) String() string {
	return "(" + l.Left.String() + " " + l.Token.Lexeme + " " + l.Right.String() + ")"
}

type Variable struct {
	Token token.Token // the token.IDENTIFIER token
	Tag   types.Tag
}

func (v *Variable) expressionNode()      {}
func (v *Variable) TokenLiteral() string { return v.Token.Lexeme }
func (v *Variable) Type() types.Tag      { return v.Tag }
func (v *Variable) String() string       { return v.Token.Lexeme }
func (v *Variable) Name() string         { return v.Token.Lexeme }

type Assign struct {
	Token token.Token // the target identifier
	Value Expression
	Tag   types.Tag
}

func (a *Assign) expressionNode()      {}
func (a *Assign) TokenLiteral() string { return a.Token.Lexeme }
func (a *Assign) Type() types.Tag      { return a.Tag }
func (a *Assign) String() string       { return a.Token.Lexeme + " = " + a.Value.String() }
func (a *Assign) Name() string         { return a.Token.Lexeme }

// Call invokes a function by name; the callee is always resolved in the
// function namespace.
type Call struct {
	Token     token.Token // the callee identifier
	Paren     token.Token // the closing ')'
	Arguments []Expression
	Tag       types.Tag
}

func (c *Call) expressionNode()      {}
func (c *Call) TokenLiteral() string { return c.Token.Lexeme }
func (c *Call) Type() types.Tag      { return c.Tag }
func (c *Call) Name() string         { return c.Token.Lexeme }
func (c *Call) String() string {
	args := []string{}
	for _, a := range c.Arguments {
		args = append(args, a.String())
	}
	return c.Token.Lexeme + "(" + strings.Join(args, ", ") + ")"
}

// Statements

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String() + ";"
	}
	return ""
}

type BlockStatement struct {
	Token      token.Token // the { token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer

	out.WriteString("{")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
	}
	out.WriteString("}")

	return out.String()
}

// VarStatement declares one variable. Tag is the declared type: INT, FLOAT,
// BOOL, STRING or UNTYPED for `var`.
type VarStatement struct {
	Token token.Token // the type keyword
	Name  token.Token
	Tag   types.Tag
	Value Expression // optional initializer
}

func (vs *VarStatement) statementNode()       {}
func (vs *VarStatement) TokenLiteral() string { return vs.Token.Lexeme }
func (vs *VarStatement) String() string {
	var out bytes.Buffer

	out.WriteString(vs.TokenLiteral() + " ")
	out.WriteString(vs.Name.Lexeme)

	if vs.Value != nil {
		out.WriteString(" = ")
		out.WriteString(vs.Value.String())
	}

	out.WriteString(";")

	return out.String()
}

type Parameter struct {
	Tag  types.Tag
	Name token.Token
}

func (p *Parameter) String() string {
	return strings.ToLower(p.Tag.String()) + " " + p.Name.Lexeme
}

type FunctionStatement struct {
	Token      token.Token // the 'fun', 'void' or type keyword
	Name       token.Token
	Parameters []*Parameter
	Body       *BlockStatement
	ReturnType types.Tag
}

func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Token.Lexeme }
func (fs *FunctionStatement) String() string {
	var out bytes.Buffer

	params := []string{}
	for _, p := range fs.Parameters {
		params = append(params, p.String())
	}

	out.WriteString(strings.ToLower(fs.ReturnType.String()) + " ")
	out.WriteString(fs.Name.Lexeme)
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") ")
	out.WriteString(fs.Body.String())

	return out.String()
}

// ParamTags returns the declared parameter tags in order.
func (fs *FunctionStatement) ParamTags() []types.Tag {
	tags := make([]types.Tag, len(fs.Parameters))
	for i, p := range fs.Parameters {
		tags[i] = p.Tag
	}
	return tags
}

type IfStatement struct {
	Token      token.Token // The 'if' token
	Condition  Expression
	ThenBranch Statement
	ElseBranch Statement // optional
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Lexeme }
func (is *IfStatement) String() string {
	var out bytes.Buffer

	out.WriteString("if")
	out.WriteString(is.Condition.String())
	out.WriteString(" ")
	out.WriteString(is.ThenBranch.String())

	if is.ElseBranch != nil {
		out.WriteString(" else ")
		out.WriteString(is.ElseBranch.String())
	}

	return out.String()
}

type WhileStatement struct {
	Token     token.Token // The 'while' (or desugared 'for') token
	Condition Expression
	Body      Statement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Lexeme }
func (ws *WhileStatement) String() string {
	return "while" + ws.Condition.String() + " " + ws.Body.String()
}

type ReturnStatement struct {
	Token       token.Token // the 'return' token
	ReturnValue Expression  // nil for a bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Lexeme }
func (rs *ReturnStatement) String() string {
	var out bytes.Buffer

	out.WriteString(rs.TokenLiteral())

	if rs.ReturnValue != nil {
		out.WriteString(" " + rs.ReturnValue.String())
	}

	out.WriteString(";")

	return out.String()
}

// PrintStatement writes its value to stdout, or to stderr for printErr.
type PrintStatement struct {
	Token    token.Token
	Value    Expression
	ToStderr bool
}

func (ps *PrintStatement) statementNode()       {}
func (ps *PrintStatement) TokenLiteral() string { return ps.Token.Lexeme }
func (ps *PrintStatement) String() string {
	return ps.TokenLiteral() + " " + ps.Value.String() + ";"
}
