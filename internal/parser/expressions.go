package parser

import (
	"rill/internal/ast"
	"rill/internal/token"
	"rill/internal/types"
)

func (p *Parser) parseLiteral() ast.Expression {
	return &ast.Literal{
		Token: p.curToken,
		Value: literalValue(p.curToken),
		Tag:   types.FromToken(p.curToken.Type),
	}
}

func literalValue(tok token.Token) any {
	switch tok.Type {
	case token.TRUE:
		return true
	case token.FALSE:
		return false
	case token.NIL:
		return nil
	default:
		return tok.Literal
	}
}

// parseIdentifier resolves a variable reference, or a call when the name
// is followed by '('. A name that is only a function yields a FUNCTION
// value.
func (p *Parser) parseIdentifier() ast.Expression {
	name := p.curToken

	if p.peekTokenIs(token.LEFT_PAREN) {
		p.nextToken()
		return p.parseCallExpression(name)
	}

	if binding, ok := p.scope.GetBinding(name.Lexeme); ok {
		return &ast.Variable{Token: name, Tag: binding.StaticTag()}
	}
	if _, ok := p.scope.GetFunctionBinding(name.Lexeme); ok {
		return &ast.Variable{Token: name, Tag: types.FUNCTION}
	}

	p.errorAt(name, "Variable '%s' not defined.", name.Lexeme)
	return nil
}

// parseCallExpression checks the callee's signature before the arguments.
// curToken is the '(' and ends on the closing ')'.
func (p *Parser) parseCallExpression(name token.Token) ast.Expression {
	binding, ok := p.scope.GetFunctionBinding(name.Lexeme)
	if !ok {
		p.errorAt(name, "Function '%s' not defined.", name.Lexeme)
		return nil
	}

	call := &ast.Call{Token: name, Tag: binding.Tag}
	call.Arguments = p.parseCallArguments()
	if call.Arguments == nil {
		return nil
	}
	call.Paren = p.curToken

	if len(call.Arguments) != len(binding.Params) {
		p.errorAt(name, "Invalid number of arguments: expecting %d, received %d.",
			len(binding.Params), len(call.Arguments))
		return nil
	}

	for i, param := range binding.Params {
		if !types.Compatible(param, call.Arguments[i].Type()) {
			p.errorAt(name, "Argument %d type mismatch: expecting '%s', received '%s'.",
				i+1, param, call.Arguments[i].Type())
		}
	}

	return call
}

func (p *Parser) parseCallArguments() []ast.Expression {
	args := []ast.Expression{}

	if p.peekTokenIs(token.RIGHT_PAREN) {
		p.nextToken()
		return args
	}

	for {
		p.nextToken()
		if len(args) >= MaxArity {
			p.errorAt(p.curToken, "Cannot have more than %d arguments.", MaxArity)
		}

		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil
		}
		args = append(args, arg)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RIGHT_PAREN, "Expect ')' after arguments.") {
		return nil
	}

	return args
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	group := &ast.Grouping{Token: p.curToken}
	p.nextToken()

	group.Expression = p.parseExpression(LOWEST)
	if group.Expression == nil {
		return nil
	}

	if !p.expectPeek(token.RIGHT_PAREN, "Expect ')' after expression.") {
		return nil
	}

	return group
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.Unary{Token: p.curToken}

	p.nextToken()

	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	right := expression.Right.Type()

	if expression.Token.Type == token.BANG {
		if !types.Compatible(types.BOOL, right) {
			p.errorAt(expression.Token, "Unexpected type '%s' for unary operator '%s'; use 'BOOL'.",
				right, expression.Token.Lexeme)
		}
		expression.Tag = types.BOOL
		return expression
	}

	if !isNumeric(right) {
		p.errorAt(expression.Token, "Unexpected type '%s' for unary operator '%s'; use 'INT' or 'FLOAT'.",
			right, expression.Token.Lexeme)
	}
	expression.Tag = types.FLOAT
	if right == types.INT || right == types.UNTYPED {
		expression.Tag = right
	}

	return expression
}

// parseAssignExpression is right associative. Only a variable is a valid
// target.
func (p *Parser) parseAssignExpression(target ast.Expression) ast.Expression {
	equals := p.curToken
	p.nextToken()

	value := p.parseExpression(ASSIGN - 1)
	if value == nil {
		return nil
	}

	variable, ok := target.(*ast.Variable)
	if !ok {
		p.errorAt(equals, "Invalid assignment target.")
		return target
	}

	binding, ok := p.scope.GetBinding(variable.Name())
	if !ok {
		p.errorAt(variable.Token, "Variable '%s' not defined.", variable.Name())
		return nil
	}

	slot := binding.StaticTag()
	if !types.Compatible(slot, value.Type()) {
		p.errorAt(equals, "Cannot assign type '%s' to variable '%s' of type '%s'.",
			value.Type(), variable.Name(), slot)
	} else {
		binding.Adopt(value.Type())
	}

	tag := binding.StaticTag()
	if tag == types.UNTYPED {
		tag = value.Type()
	}

	return &ast.Assign{Token: variable.Token, Value: value, Tag: tag}
}

func (p *Parser) parseLogicalExpression(left ast.Expression) ast.Expression {
	expression := &ast.Logical{Token: p.curToken, Left: left}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	for _, side := range []types.Tag{left.Type(), expression.Right.Type()} {
		if !types.Compatible(types.BOOL, side) {
			p.errorAt(expression.Token, "Unexpected type '%s' for binary operator '%s'; use 'BOOL'.",
				side, expression.Token.Lexeme)
		}
	}

	return expression
}

func (p *Parser) parseEqualityExpression(left ast.Expression) ast.Expression {
	expression := p.parseBinaryOperands(left)
	if expression == nil {
		return nil
	}

	for _, side := range []types.Tag{left.Type(), expression.Right.Type()} {
		if side == types.VOID {
			p.errorAt(expression.Token, "Unexpected type '%s' for binary operator '%s'.",
				side, expression.Token.Lexeme)
		}
	}
	expression.Tag = types.BOOL

	return expression
}

func (p *Parser) parseComparisonExpression(left ast.Expression) ast.Expression {
	expression := p.parseBinaryOperands(left)
	if expression == nil {
		return nil
	}

	p.checkNumericOperands(expression)
	expression.Tag = types.BOOL

	return expression
}

// parseInfixExpression handles the arithmetic operators. '+' also joins two
// strings.
func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := p.parseBinaryOperands(left)
	if expression == nil {
		return nil
	}
	l, r := left.Type(), expression.Right.Type()

	if expression.Token.Type == token.PLUS {
		switch {
		case l == types.UNTYPED && r == types.UNTYPED:
			expression.Tag = types.UNTYPED
			return expression
		case l == types.STRING || r == types.STRING:
			if !types.Compatible(types.STRING, l) || !types.Compatible(types.STRING, r) {
				p.errorAt(expression.Token, "Unexpected type '%s' and '%s' for string concatenation '%s'; both must be type 'STRING'.",
					l, r, expression.Token.Lexeme)
			}
			expression.Tag = types.STRING
			return expression
		}
	}

	p.checkNumericOperands(expression)
	expression.Tag = types.Arithmetic(l, r)

	return expression
}

// parseBinaryOperands parses the right operand. '^' binds to the right,
// everything else to the left.
func (p *Parser) parseBinaryOperands(left ast.Expression) *ast.Binary {
	expression := &ast.Binary{Token: p.curToken, Left: left}

	precedence := p.curPrecedence()
	if expression.Token.Type == token.CARET {
		precedence--
	}
	p.nextToken()

	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) checkNumericOperands(expression *ast.Binary) {
	for _, side := range []types.Tag{expression.Left.Type(), expression.Right.Type()} {
		if !isNumeric(side) {
			p.errorAt(expression.Token, "Unexpected type '%s' for binary operator '%s'; use 'INT' or 'FLOAT'.",
				side, expression.Token.Lexeme)
		}
	}
}

// isNumeric reports whether t may be used where a number is expected.
func isNumeric(t types.Tag) bool {
	return types.Compatible(types.FLOAT, t)
}
