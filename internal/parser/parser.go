package parser

import (
	"fmt"
	"log/slog"
	"rill/internal/ast"
	"rill/internal/object"
	"rill/internal/token"
	"rill/internal/types"
)

const (
	_          int = iota
	LOWEST         // statement boundary
	ASSIGN         // =
	LOGICAL_OR     // or ||
	LOGICAL_AND    // and &&
	EQUALS         // == !=
	COMPARISON     // > or <
	SUM            // +
	PRODUCT        // *
	POWER          // ^
	PREFIX         // -X or !X
)

// MaxArity bounds both parameter lists and argument lists.
const MaxArity = 16

var precedences = map[token.TokenType]int{
	token.EQUAL:         ASSIGN,
	token.OR:            LOGICAL_OR,
	token.AND:           LOGICAL_AND,
	token.EQUAL_EQUAL:   EQUALS,
	token.BANG_EQUAL:    EQUALS,
	token.LESS:          COMPARISON,
	token.LESS_EQUAL:    COMPARISON,
	token.GREATER:       COMPARISON,
	token.GREATER_EQUAL: COMPARISON,
	token.PLUS:          SUM,
	token.MINUS:         SUM,
	token.SLASH:         PRODUCT,
	token.STAR:          PRODUCT,
	token.CARET:         POWER,
}

// statementStarts are the tokens synchronize stops in front of. A '{'
// resumes as a block, so a body after a broken header is still checked.
var statementStarts = map[token.TokenType]bool{
	token.FUN:        true,
	token.INT:        true,
	token.FLOAT:      true,
	token.STR:        true,
	token.BOOL:       true,
	token.VAR:        true,
	token.VOID:       true,
	token.FOR:        true,
	token.IF:         true,
	token.WHILE:      true,
	token.PRINT:      true,
	token.PRINT_ERR:  true,
	token.RETURN:     true,
	token.LEFT_BRACE: true,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// ParseError is a syntax or type error found while parsing.
type ParseError struct {
	Token   token.Token
	Message string
}

func (e *ParseError) Error() string {
	if e.Token.Type == token.EOF {
		return fmt.Sprintf("[line %d] Error at end: %s", e.Token.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Token.Line, e.Token.Lexeme, e.Message)
}

// Parser builds the syntax tree and type checks it in the same pass. Every
// parse function returns nil when the construct had to be abandoned; the
// caller then synchronizes to the next statement boundary.
type Parser struct {
	tokens   []token.Token
	position int
	errors   []*ParseError

	curToken  token.Token
	peekToken token.Token

	globals *object.Environment
	scope   *object.Environment

	// returnType is the declared return tag of the function being parsed,
	// empty at top level. returnSeen records whether its body contains a
	// return statement.
	returnType types.Tag
	returnSeen bool

	// depth counts the enclosing blocks; inside one, recovery also stops in
	// front of the closing brace.
	depth int

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

// New returns a parser whose global frame encloses the native functions.
func New(tokens []token.Token) *Parser {
	return NewWithGlobals(tokens, NewGlobals())
}

// NewGlobals returns a fresh checking frame for user globals, enclosed by
// the native function signatures.
func NewGlobals() *object.Environment {
	return object.NewEnclosedEnvironment(object.NewBuiltinEnvironment(false))
}

// NewWithGlobals parses against an existing global frame, so declarations
// from earlier input stay visible.
func NewWithGlobals(tokens []token.Token, globals *object.Environment) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens, token.Token{Type: token.EOF, Line: line})
	}

	p := &Parser{
		tokens:  tokens,
		errors:  []*ParseError{},
		globals: globals,
		scope:   globals,
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.NIL, p.parseLiteral)
	p.registerPrefix(token.TRUE, p.parseLiteral)
	p.registerPrefix(token.FALSE, p.parseLiteral)
	p.registerPrefix(token.INTEGER, p.parseLiteral)
	p.registerPrefix(token.FLOAT_L, p.parseLiteral)
	p.registerPrefix(token.STRING, p.parseLiteral)
	p.registerPrefix(token.IDENTIFIER, p.parseIdentifier)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.LEFT_PAREN, p.parseGroupedExpression)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.EQUAL, p.parseAssignExpression)
	p.registerInfix(token.OR, p.parseLogicalExpression)
	p.registerInfix(token.AND, p.parseLogicalExpression)
	p.registerInfix(token.EQUAL_EQUAL, p.parseEqualityExpression)
	p.registerInfix(token.BANG_EQUAL, p.parseEqualityExpression)
	p.registerInfix(token.LESS, p.parseComparisonExpression)
	p.registerInfix(token.LESS_EQUAL, p.parseComparisonExpression)
	p.registerInfix(token.GREATER, p.parseComparisonExpression)
	p.registerInfix(token.GREATER_EQUAL, p.parseComparisonExpression)
	p.registerInfix(token.PLUS, p.parseInfixExpression)
	p.registerInfix(token.MINUS, p.parseInfixExpression)
	p.registerInfix(token.STAR, p.parseInfixExpression)
	p.registerInfix(token.SLASH, p.parseInfixExpression)
	p.registerInfix(token.CARET, p.parseInfixExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// nextToken advances the cursor; once the input is exhausted peekToken
// stays on EOF.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.position < len(p.tokens) {
		p.peekToken = p.tokens[p.position]
		p.position++
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) Errors() []*ParseError {
	return p.errors
}

func (p *Parser) errorAt(tok token.Token, message string, args ...interface{}) {
	p.errors = append(p.errors, &ParseError{Token: tok, Message: fmt.Sprintf(message, args...)})
}

// expectPeek advances onto the peek token when it has type t and reports
// message at the peek token otherwise.
func (p *Parser) expectPeek(t token.TokenType, message string) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorAt(p.peekToken, "%s", message)
	return false
}

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(token.EOF) {
		stmt := p.parseDeclaration()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

// synchronize skips to the end of the current statement: it stops on a
// ';' or in front of a token that starts a statement.
func (p *Parser) synchronize() {
	from := p.curToken
	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.SEMICOLON) || statementStarts[p.peekToken.Type] {
			break
		}
		if p.depth > 0 && p.peekTokenIs(token.RIGHT_BRACE) {
			break
		}
		p.nextToken()
	}

	slog.Debug("parser recovered",
		slog.Int("from_line", from.Line),
		slog.Int("to_line", p.curToken.Line),
		slog.String("at", p.curToken.Lexeme))
}

func (p *Parser) parseDeclaration() ast.Statement {
	var stmt ast.Statement
	switch p.curToken.Type {
	case token.FUN, token.VOID:
		stmt = p.parseFunctionDeclaration()
	case token.INT, token.FLOAT, token.STR, token.BOOL, token.VAR:
		stmt = p.parseTypedDeclaration()
	default:
		stmt = p.parseStatement()
	}

	if stmt == nil {
		p.synchronize()
	}
	return stmt
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.FOR:
		return p.parseForStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.PRINT, token.PRINT_ERR:
		return p.parsePrintStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.LEFT_BRACE:
		if block := p.parseBlockStatement(object.NewEnclosedEnvironment(p.scope)); block != nil {
			return block
		}
		return nil
	default:
		return p.parseExpressionStatement()
	}
}

// parseTypedDeclaration handles statements led by a type keyword: a
// variable declaration, or a function when the name is followed by '('.
func (p *Parser) parseTypedDeclaration() ast.Statement {
	typeToken := p.curToken
	if !p.expectPeek(token.IDENTIFIER, fmt.Sprintf("Expect identifier name after '%s'.", typeToken.Lexeme)) {
		return nil
	}
	name := p.curToken

	if p.peekTokenIs(token.LEFT_PAREN) && typeToken.Type != token.VAR {
		p.nextToken()
		return p.parseFunctionRest(typeToken, name, types.FromToken(typeToken.Type))
	}
	return p.parseVarDeclaration(typeToken, name)
}

func (p *Parser) parseVarDeclaration(typeToken, name token.Token) ast.Statement {
	stmt := &ast.VarStatement{Token: typeToken, Name: name, Tag: types.FromToken(typeToken.Type)}

	binding := object.NewVariable(stmt.Tag)
	if err := p.scope.Define(name.Lexeme, binding); err != nil {
		p.errorAt(name, "%s", err.Error())
	}

	if p.peekTokenIs(token.EQUAL) {
		p.nextToken()
		p.nextToken()

		stmt.Value = p.parseExpression(LOWEST)
		if stmt.Value == nil {
			return nil
		}

		if !types.Compatible(stmt.Tag, stmt.Value.Type()) {
			p.errorAt(name, "Cannot assign type '%s' to variable '%s' of type '%s'.",
				stmt.Value.Type(), name.Lexeme, stmt.Tag)
		} else {
			binding.Adopt(stmt.Value.Type())
		}
	}

	if !p.expectPeek(token.SEMICOLON, "Expect ';' after variable declaration.") {
		return nil
	}

	return stmt
}

// parseFunctionDeclaration handles `fun [type|void] name(...)` and
// `void name(...)`.
func (p *Parser) parseFunctionDeclaration() ast.Statement {
	lead := p.curToken
	returns := types.FromToken(lead.Type)

	if lead.Type == token.FUN {
		switch p.peekToken.Type {
		case token.INT, token.FLOAT, token.STR, token.BOOL, token.VOID:
			p.nextToken()
			returns = types.FromToken(p.curToken.Type)
		}
	}

	if !p.expectPeek(token.IDENTIFIER, "Expect function name.") {
		return nil
	}
	name := p.curToken

	if !p.expectPeek(token.LEFT_PAREN, "Expect '(' after function name.") {
		return nil
	}

	return p.parseFunctionRest(lead, name, returns)
}

// parseFunctionRest parses the parameter list and body; curToken is the
// opening '('.
func (p *Parser) parseFunctionRest(lead, name token.Token, returns types.Tag) ast.Statement {
	fn := &ast.FunctionStatement{Token: lead, Name: name, ReturnType: returns}

	params := p.parseFunctionParameters()
	if params == nil {
		return nil
	}
	fn.Parameters = params

	if !p.expectPeek(token.LEFT_BRACE, "Expect '{' before function body.") {
		return nil
	}

	// The signature is visible to the body, so top level functions can
	// recurse.
	binding := object.NewFunction(fn.ParamTags(), returns, nil)
	if err := p.scope.DefineFunction(name.Lexeme, binding); err != nil {
		p.errorAt(name, "%s", err.Error())
	}

	// Bodies see the globals, never the frame they are declared in.
	bodyScope := object.NewEnclosedEnvironment(p.globals)
	for _, param := range fn.Parameters {
		if err := bodyScope.Define(param.Name.Lexeme, object.NewVariable(param.Tag)); err != nil {
			p.errorAt(param.Name, "%s", err.Error())
		}
	}

	enclosingReturn, enclosingSeen := p.returnType, p.returnSeen
	p.returnType, p.returnSeen = returns, false
	body := p.parseBlockStatement(bodyScope)
	seen := p.returnSeen
	p.returnType, p.returnSeen = enclosingReturn, enclosingSeen

	if body == nil {
		return nil
	}
	fn.Body = body

	if returns != types.VOID && returns != types.UNTYPED && !seen {
		p.errorAt(name, "Invalid return: function '%s' must return a value of type '%s'.", name.Lexeme, returns)
	}

	return fn
}

// parseFunctionParameters returns an empty, non-nil slice for `()` and
// nil on error. curToken ends on the closing ')'.
func (p *Parser) parseFunctionParameters() []*ast.Parameter {
	params := []*ast.Parameter{}

	if p.peekTokenIs(token.RIGHT_PAREN) {
		p.nextToken()
		return params
	}

	for {
		last := p.curToken
		if !token.IsTypeKeyword(p.peekToken.Type) {
			p.errorAt(last, "Expect parameter declaration after '%s'.", last.Lexeme)
			return nil
		}
		p.nextToken()
		typeToken := p.curToken

		if !p.expectPeek(token.IDENTIFIER, fmt.Sprintf("Expected parameter name after '%s'.", typeToken.Lexeme)) {
			return nil
		}
		if len(params) >= MaxArity {
			p.errorAt(p.curToken, "Cannot have more than %d parameters.", MaxArity)
		}
		params = append(params, &ast.Parameter{Tag: types.FromToken(typeToken.Type), Name: p.curToken})

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RIGHT_PAREN, "Expect ')' after parameters.") {
		return nil
	}

	return params
}

// parseBlockStatement parses `{ ... }` with scope as the block frame;
// curToken is the opening brace and ends on the closing one.
func (p *Parser) parseBlockStatement(scope *object.Environment) *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	block.Statements = []ast.Statement{}

	enclosing := p.scope
	p.scope = scope
	p.depth++
	defer func() {
		p.scope = enclosing
		p.depth--
	}()

	p.nextToken()

	for !p.curTokenIs(token.RIGHT_BRACE) && !p.curTokenIs(token.EOF) {
		stmt := p.parseDeclaration()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}

	if !p.curTokenIs(token.RIGHT_BRACE) {
		p.errorAt(p.curToken, "Expect '}' after block.")
		return nil
	}

	return block
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	if !p.expectPeek(token.LEFT_PAREN, "Expect '(' after 'if'.") {
		return nil
	}
	p.nextToken()

	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	if !p.expectPeek(token.RIGHT_PAREN, "Expect ')' after if condition.") {
		return nil
	}
	p.nextToken()

	stmt.ThenBranch = p.parseStatement()
	if stmt.ThenBranch == nil {
		return nil
	}

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		p.nextToken()

		stmt.ElseBranch = p.parseStatement()
		if stmt.ElseBranch == nil {
			return nil
		}
	}

	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	if !p.expectPeek(token.LEFT_PAREN, "Expect '(' after 'while'.") {
		return nil
	}
	p.nextToken()

	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	if !p.expectPeek(token.RIGHT_PAREN, "Expect ')' after while condition.") {
		return nil
	}
	p.nextToken()

	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		return nil
	}

	return stmt
}

// parseForStatement desugars `for (init; cond; incr) body` into
// `{ init; while (cond) { body; incr; } }`. The initializer gets its own
// frame.
func (p *Parser) parseForStatement() ast.Statement {
	forToken := p.curToken

	if !p.expectPeek(token.LEFT_PAREN, "Expect '(' after 'for'.") {
		return nil
	}

	enclosing := p.scope
	p.scope = object.NewEnclosedEnvironment(enclosing)
	defer func() { p.scope = enclosing }()

	p.nextToken()

	var initializer ast.Statement
	switch p.curToken.Type {
	case token.SEMICOLON:
	case token.INT, token.FLOAT, token.STR, token.BOOL, token.VAR:
		typeToken := p.curToken
		if !p.expectPeek(token.IDENTIFIER, fmt.Sprintf("Expect identifier name after '%s'.", typeToken.Lexeme)) {
			return nil
		}
		initializer = p.parseVarDeclaration(typeToken, p.curToken)
		if initializer == nil {
			return nil
		}
	default:
		initializer = p.parseExpressionStatement()
		if initializer == nil {
			return nil
		}
	}

	var condition ast.Expression = &ast.Literal{Token: forToken, Value: true, Tag: types.BOOL}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	} else {
		p.nextToken()
		condition = p.parseExpression(LOWEST)
		if condition == nil {
			return nil
		}
		if !p.expectPeek(token.SEMICOLON, "Expect ';' after loop condition.") {
			return nil
		}
	}

	var increment ast.Expression
	if p.peekTokenIs(token.RIGHT_PAREN) {
		p.nextToken()
	} else {
		p.nextToken()
		increment = p.parseExpression(LOWEST)
		if increment == nil {
			return nil
		}
		if !p.expectPeek(token.RIGHT_PAREN, "Expect ')' after for clauses.") {
			return nil
		}
	}
	p.nextToken()

	body := p.parseStatement()
	if body == nil {
		return nil
	}

	if increment != nil {
		body = &ast.BlockStatement{
			Token: forToken,
			Statements: []ast.Statement{
				body,
				&ast.ExpressionStatement{Token: forToken, Expression: increment},
			},
		}
	}

	var loop ast.Statement = &ast.WhileStatement{Token: forToken, Condition: condition, Body: body}
	if initializer != nil {
		loop = &ast.BlockStatement{Token: forToken, Statements: []ast.Statement{initializer, loop}}
	}

	return loop
}

func (p *Parser) parsePrintStatement() ast.Statement {
	stmt := &ast.PrintStatement{Token: p.curToken, ToStderr: p.curTokenIs(token.PRINT_ERR)}
	p.nextToken()

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	if stmt.Value.Type() == types.VOID {
		p.errorAt(stmt.Token, "Cannot print a value of type 'VOID'.")
	}

	if !p.expectPeek(token.SEMICOLON, "Expect ';' after value.") {
		return nil
	}

	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	inFunction := p.returnType != ""

	if !inFunction {
		p.errorAt(stmt.Token, "Cannot return from top-level code.")
	}

	if !p.peekTokenIs(token.SEMICOLON) {
		if p.returnType == types.VOID {
			p.errorAt(stmt.Token, "Invalid return: cannot return value with function type 'VOID'.")
			return nil
		}
		p.nextToken()

		stmt.ReturnValue = p.parseExpression(LOWEST)
		if stmt.ReturnValue == nil {
			return nil
		}
		if inFunction && !types.Compatible(p.returnType, stmt.ReturnValue.Type()) {
			p.errorAt(stmt.Token, "Invalid return type: expecting '%s', received '%s'.",
				p.returnType, stmt.ReturnValue.Type())
		}
	} else if inFunction && p.returnType != types.VOID && p.returnType != types.UNTYPED {
		p.errorAt(stmt.Token, "Invalid return: must return a value of type '%s'.", p.returnType)
	}
	p.returnSeen = true

	if !p.expectPeek(token.SEMICOLON, "Expect ';' after return value.") {
		return nil
	}

	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}

	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}

	if !p.expectPeek(token.SEMICOLON, "Expect ';' after value.") {
		return nil
	}

	return stmt
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errorAt(p.curToken, "Expect expression.")
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}

	return LOWEST
}
