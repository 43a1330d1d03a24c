// Package parser implements Mephisto's recursive-descent parser: a token
// stream becomes a typed ast.AST with per-node positions and an error list.
// There is no error recovery — the first production that fails halts parsing
// and the partial tree is returned alongside the collected error.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/mephisto/ast"
	"github.com/viant/mephisto/token"
)

// Parser holds the token cursor and the single diagnostic collected so far.
type Parser struct {
	tokens []token.Token
	pos    int
	errors []string
}

// New builds a Parser over an already-lexed token slice.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse is a convenience wrapper equivalent to New(tokens).Parse().
func Parse(tokens []token.Token) *ast.AST {
	return New(tokens).Parse()
}

// Parse drives the top-level grammar: Program = { TopLevel }.
func (p *Parser) Parse() *ast.AST {
	var children []ast.Node
	for p.cur().Type != token.EOF {
		node, ok := p.parseTopLevel()
		if !ok {
			return ast.New(&ast.ProgramNode{Children: children}, p.errors)
		}
		children = append(children, node)
	}
	return ast.New(&ast.ProgramNode{Children: children}, p.errors)
}

// ---- token cursor helpers ----

func (p *Parser) cur() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		idx = len(p.tokens) - 1
	}
	return p.tokens[idx]
}

func (p *Parser) advance() token.Token {
	tok := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) startPos() token.Position {
	return p.cur().Position
}

// setEnd sets n's end offset/column from the current (not-yet-consumed)
// token; every production calls it just before returning.
func (p *Parser) setEnd(n ast.Node) {
	cur := p.cur().Position
	ast.SetEnd(n, cur.Start, cur.Column)
}

func (p *Parser) fail(expected string) (ast.Node, bool) {
	p.errors = append(p.errors, fmt.Sprintf("Unexpected token: %s, expected %s", p.cur(), expected))
	return nil, false
}

func (p *Parser) expect(tt token.Type, desc string) (token.Token, bool) {
	if p.cur().Type != tt {
		p.errors = append(p.errors, fmt.Sprintf("Unexpected token: %s, expected %s", p.cur(), desc))
		return token.Token{}, false
	}
	return p.advance(), true
}

// ---- top level dispatch ----

func (p *Parser) parseTopLevel() (ast.Node, bool) {
	switch p.cur().Type {
	case token.IMPORT:
		return p.parseImportStatement()
	case token.PROCESS:
		return p.parseProcess()
	case token.BLOCK:
		return p.parseBlock()
	case token.CONNECT:
		return p.parseConnect()
	case token.PARAM:
		return p.parseParameterDeclarationStmt()
	case token.INPUT, token.OUTPUT, token.LET, token.CONST:
		return p.parseVariableDeclarationStmt()
	case token.BUFFER:
		return p.parseBufferDeclarationStmt()
	case token.EXPORT:
		return p.parseExportDeclarationStmt()
	case token.FN, token.ID:
		return p.parseStatement()
	default:
		return p.fail("top-level declaration")
	}
}

func (p *Parser) parseStatement() (ast.Node, bool) {
	switch p.cur().Type {
	case token.LET, token.CONST, token.INPUT, token.OUTPUT:
		return p.parseVariableDeclarationStmt()
	case token.BUFFER:
		return p.parseBufferDeclarationStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.EXPORT:
		return p.parseExportDeclarationStmt()
	case token.FN:
		p.advance()
		return p.parseFunctionDeclarationStmt()
	case token.ID:
		return p.parseIDStatement()
	default:
		return p.fail("statement")
	}
}

// ---- import ----

func (p *Parser) parseImportStatement() (ast.Node, bool) {
	start := p.startPos()
	p.advance() // import
	id, ok := p.parseIdentifier()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.FROM, "from"); !ok {
		return nil, false
	}
	pathTok, ok := p.expect(token.STRING, "import path string")
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.SEMI, ";"); !ok {
		return nil, false
	}
	node := &ast.ImportStatement{ID: id, Path: strings.Trim(pathTok.Literal, `"`)}
	node.SetPosition(start)
	p.setEnd(node)
	return node, true
}

// ---- primaries ----

func (p *Parser) parseIdentifier() (ast.Node, bool) {
	tok, ok := p.expect(token.ID, "identifier")
	if !ok {
		return nil, false
	}
	node := &ast.Identifier{Name: tok.Literal}
	node.SetPosition(tok.Position)
	p.setEnd(node)
	return node, true
}

func (p *Parser) parseNumber() (ast.Node, bool) {
	tok, ok := p.expect(token.NUMBER, "number")
	if !ok {
		return nil, false
	}
	val, _ := strconv.ParseFloat(tok.Literal, 64)
	node := &ast.Number{Value: val}
	node.SetPosition(tok.Position)
	p.setEnd(node)
	return node, true
}

// parseIdentifierExpr parses a bare identifier, any chain of `.prop` member
// accesses, and a trailing call `(...)`, producing Identifier, MemberExpr, or
// FnCallExpr as appropriate.
func (p *Parser) parseIdentifierExpr() (ast.Node, bool) {
	start := p.startPos()
	var node ast.Node
	id, ok := p.parseIdentifier()
	if !ok {
		return nil, false
	}
	node = id
	for p.cur().Type == token.DOT {
		p.advance()
		prop, ok := p.parseIdentifier()
		if !ok {
			return nil, false
		}
		member := &ast.MemberExpr{Object: node, Property: prop}
		member.SetPosition(start)
		p.setEnd(member)
		node = member
	}
	if p.cur().Type == token.LPAREN {
		args, ok := p.parseArguments()
		if !ok {
			return nil, false
		}
		call := &ast.FnCallExpr{Callee: node, Args: args}
		call.SetPosition(start)
		p.setEnd(call)
		node = call
	}
	return node, true
}

func (p *Parser) parseArguments() ([]ast.Node, bool) {
	if _, ok := p.expect(token.LPAREN, "("); !ok {
		return nil, false
	}
	var args []ast.Node
	for p.cur().Type != token.RPAREN {
		arg, ok := p.parseExpression()
		if !ok {
			return nil, false
		}
		args = append(args, arg)
		if p.cur().Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(token.RPAREN, ")"); !ok {
		return nil, false
	}
	return args, true
}

func (p *Parser) parsePrimary() (ast.Node, bool) {
	switch p.cur().Type {
	case token.PLUS, token.MINUS:
		return p.parseUnaryExpr()
	case token.LPAREN:
		p.advance()
		expr, ok := p.parseExpression()
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.RPAREN, ")"); !ok {
			return nil, false
		}
		return expr, true
	case token.NUMBER:
		return p.parseNumber()
	case token.ID:
		return p.parseIdentifierExpr()
	}
	return p.fail("expression")
}

// ---- operators & precedence ladder: comparison -> add_sub -> mul_div -> primary ----

func operatorFor(tt token.Type) (ast.Operator, bool) {
	switch tt {
	case token.PLUS:
		return ast.Plus, true
	case token.MINUS:
		return ast.Minus, true
	case token.MUL:
		return ast.Mul, true
	case token.DIV:
		return ast.Div, true
	case token.EQ:
		return ast.Eq, true
	case token.NE:
		return ast.Ne, true
	case token.GT:
		return ast.Gt, true
	case token.LT:
		return ast.Lt, true
	case token.GE:
		return ast.Ge, true
	case token.LE:
		return ast.Le, true
	}
	return 0, false
}

func isComparisonToken(tt token.Type) bool {
	switch tt {
	case token.EQ, token.NE, token.GT, token.LT, token.GE, token.LE:
		return true
	}
	return false
}

func (p *Parser) parseUnaryExpr() (ast.Node, bool) {
	start := p.startPos()
	op, _ := operatorFor(p.cur().Type)
	p.advance()
	child, ok := p.parseExpression()
	if !ok {
		return nil, false
	}
	node := &ast.UnaryExpr{Op: op, Child: child}
	node.SetPosition(start)
	p.setEnd(node)
	return node, true
}

func (p *Parser) parseMulDiv() (ast.Node, bool) {
	start := p.startPos()
	left, ok := p.parsePrimary()
	if !ok {
		return nil, false
	}
	for p.cur().Type == token.MUL || p.cur().Type == token.DIV {
		op, _ := operatorFor(p.cur().Type)
		p.advance()
		right, ok := p.parsePrimary()
		if !ok {
			return nil, false
		}
		node := &ast.BinaryExpr{Op: op, LHS: left, RHS: right}
		node.SetPosition(start)
		p.setEnd(node)
		left = node
	}
	return left, true
}

func (p *Parser) parseAddSub() (ast.Node, bool) {
	start := p.startPos()
	left, ok := p.parseMulDiv()
	if !ok {
		return nil, false
	}
	for p.cur().Type == token.PLUS || p.cur().Type == token.MINUS {
		op, _ := operatorFor(p.cur().Type)
		p.advance()
		right, ok := p.parseMulDiv()
		if !ok {
			return nil, false
		}
		node := &ast.BinaryExpr{Op: op, LHS: left, RHS: right}
		node.SetPosition(start)
		p.setEnd(node)
		left = node
	}
	return left, true
}

func (p *Parser) parseComparison() (ast.Node, bool) {
	start := p.startPos()
	left, ok := p.parseAddSub()
	if !ok {
		return nil, false
	}
	for isComparisonToken(p.cur().Type) {
		op, _ := operatorFor(p.cur().Type)
		p.advance()
		right, ok := p.parseAddSub()
		if !ok {
			return nil, false
		}
		node := &ast.BinaryExpr{Op: op, LHS: left, RHS: right}
		node.SetPosition(start)
		p.setEnd(node)
		left = node
	}
	return left, true
}

func (p *Parser) parseBinaryExpr() (ast.Node, bool) {
	return p.parseComparison()
}

func (p *Parser) parseExpression() (ast.Node, bool) {
	if p.cur().Type == token.PLUS || p.cur().Type == token.MINUS {
		return p.parseUnaryExpr()
	}
	return p.parseBinaryExpr()
}

// ---- statements ----

// parseIDStatement dispatches the two ID-led statement forms: a function
// declaration (`name(params) { ... }`) and an assignment to an identifier
// (`name = expr;`). Any other continuation is an error; member expressions
// and bare calls are only valid in expression position.
func (p *Parser) parseIDStatement() (ast.Node, bool) {
	start := p.startPos()

	switch p.peekAt(1).Type {
	case token.LPAREN:
		return p.parseFunctionDeclarationStmt()

	case token.DEF:
		id, ok := p.parseIdentifier()
		if !ok {
			return nil, false
		}
		p.advance() // =
		rhs, ok := p.parseExpression()
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.SEMI, ";"); !ok {
			return nil, false
		}
		node := &ast.AssignmentExpr{LHS: id, RHS: rhs}
		node.SetPosition(start)
		p.setEnd(node)
		return node, true

	default:
		p.errors = append(p.errors, fmt.Sprintf(
			"Unexpected token: %s, expected function declaration or assignment expression", p.peekAt(1)))
		return nil, false
	}
}

func (p *Parser) parseReturnStmt() (ast.Node, bool) {
	start := p.startPos()
	p.advance() // return
	child, ok := p.parseExpression()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.SEMI, ";"); !ok {
		return nil, false
	}
	node := &ast.ReturnStmt{Child: child}
	node.SetPosition(start)
	p.setEnd(node)
	return node, true
}

func (p *Parser) parseVariableSpecifier() (ast.Specifier, bool) {
	switch p.cur().Type {
	case token.LET:
		p.advance()
		return ast.SpecLet, true
	case token.CONST:
		p.advance()
		return ast.SpecConst, true
	case token.INPUT:
		p.advance()
		return ast.SpecInput, true
	case token.OUTPUT:
		p.advance()
		return ast.SpecOutput, true
	}
	p.fail("let, const, input or output")
	return 0, false
}

func (p *Parser) parseVariableDeclarationStmt() (ast.Node, bool) {
	start := p.startPos()
	spec, ok := p.parseVariableSpecifier()
	if !ok {
		return nil, false
	}
	id, ok := p.parseIdentifier()
	if !ok {
		return nil, false
	}
	var initializer ast.Node
	if p.cur().Type == token.DEF {
		p.advance()
		initializer, ok = p.parseExpression()
		if !ok {
			return nil, false
		}
	}
	if _, ok := p.expect(token.SEMI, ";"); !ok {
		return nil, false
	}
	node := &ast.VariableDeclarationStmt{ID: id, Initializer: initializer, Specifier: spec}
	node.SetPosition(start)
	p.setEnd(node)
	return node, true
}

func (p *Parser) parseBufferDeclarationStmt() (ast.Node, bool) {
	start := p.startPos()
	p.advance() // buffer
	id, ok := p.parseIdentifier()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.LSQUARE, "["); !ok {
		return nil, false
	}
	size, ok := p.parseNumber()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.RSQUARE, "]"); !ok {
		return nil, false
	}
	var initializer ast.Node
	if p.cur().Type == token.DEF {
		p.advance()
		initializer, ok = p.parseBufferInitializer()
		if !ok {
			return nil, false
		}
	}
	if _, ok := p.expect(token.SEMI, ";"); !ok {
		return nil, false
	}
	node := &ast.BufferDeclarationStmt{ID: id, Size: size, Initializer: initializer}
	node.SetPosition(start)
	p.setEnd(node)
	return node, true
}

func (p *Parser) parseBufferInitializer() (ast.Node, bool) {
	start := p.startPos()
	if _, ok := p.expect(token.BUFI, "|i|"); !ok {
		return nil, false
	}
	children, ok := p.parseBracedStatements()
	if !ok {
		return nil, false
	}
	node := &ast.BufferInitializer{Children: children}
	node.SetPosition(start)
	p.setEnd(node)
	return node, true
}

func (p *Parser) parseParameterDeclarationStmt() (ast.Node, bool) {
	start := p.startPos()
	p.advance() // param
	id, ok := p.parseIdentifier()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.LCURLY, "{"); !ok {
		return nil, false
	}
	var fields []ast.Node
	for p.cur().Type != token.RCURLY {
		if p.cur().Type == token.EOF {
			return p.fail("}")
		}
		field, ok := p.parseParameterDeclarationField()
		if !ok {
			return nil, false
		}
		fields = append(fields, field)
	}
	if _, ok := p.expect(token.RCURLY, "}"); !ok {
		return nil, false
	}
	if _, ok := p.expect(token.SEMI, ";"); !ok {
		return nil, false
	}
	node := &ast.ParameterDeclarationStmt{ID: id, Fields: fields}
	node.SetPosition(start)
	p.setEnd(node)
	return node, true
}

func (p *Parser) parseParameterDeclarationField() (ast.Node, bool) {
	start := p.startPos()
	id, ok := p.parseIdentifier()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.COLON, ":"); !ok {
		return nil, false
	}
	numTok, ok := p.expect(token.NUMBER, "number")
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.SEMI, ";"); !ok {
		return nil, false
	}
	val, _ := strconv.ParseFloat(numTok.Literal, 64)
	node := &ast.ParameterDeclarationField{ID: id, Value: val}
	node.SetPosition(start)
	p.setEnd(node)
	return node, true
}

func (p *Parser) parseExportDeclarationStmt() (ast.Node, bool) {
	start := p.startPos()
	p.advance() // export
	var decl ast.Node
	var ok bool
	switch p.cur().Type {
	case token.LET, token.CONST, token.INPUT, token.OUTPUT:
		decl, ok = p.parseVariableDeclarationStmt()
	case token.FN:
		p.advance()
		decl, ok = p.parseFunctionDeclarationStmt()
	case token.ID:
		decl, ok = p.parseFunctionDeclarationStmt()
	default:
		return p.fail("variable or function declaration")
	}
	if !ok {
		return nil, false
	}
	node := &ast.ExportDeclarationStmt{Declaration: decl}
	node.SetPosition(start)
	p.setEnd(node)
	return node, true
}

func (p *Parser) parseFunctionDeclarationStmt() (ast.Node, bool) {
	start := p.startPos()
	id, ok := p.parseIdentifier()
	if !ok {
		return nil, false
	}
	params, ok := p.parseParams()
	if !ok {
		return nil, false
	}
	body, ok := p.parseFunctionBody()
	if !ok {
		return nil, false
	}
	node := &ast.FunctionDeclarationStmt{ID: id, Params: params, Body: body}
	node.SetPosition(start)
	p.setEnd(node)
	return node, true
}

func (p *Parser) parseParams() ([]ast.Node, bool) {
	if _, ok := p.expect(token.LPAREN, "("); !ok {
		return nil, false
	}
	var params []ast.Node
	for p.cur().Type != token.RPAREN {
		param, ok := p.parseParam()
		if !ok {
			return nil, false
		}
		params = append(params, param)
		if p.cur().Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(token.RPAREN, ")"); !ok {
		return nil, false
	}
	return params, true
}

func (p *Parser) parseParam() (ast.Node, bool) {
	start := p.startPos()
	id, ok := p.parseIdentifier()
	if !ok {
		return nil, false
	}
	node := &ast.FunctionParameter{ID: id}
	node.SetPosition(start)
	p.setEnd(node)
	return node, true
}

func (p *Parser) parseFunctionBody() (ast.Node, bool) {
	start := p.startPos()
	children, ok := p.parseBracedStatements()
	if !ok {
		return nil, false
	}
	node := &ast.FunctionBody{Children: children}
	node.SetPosition(start)
	p.setEnd(node)
	return node, true
}

func (p *Parser) parseBracedStatements() ([]ast.Node, bool) {
	if _, ok := p.expect(token.LCURLY, "{"); !ok {
		return nil, false
	}
	var children []ast.Node
	for p.cur().Type != token.RCURLY {
		if p.cur().Type == token.EOF {
			_, _ = p.fail("}")
			return nil, false
		}
		stmt, ok := p.parseStatement()
		if !ok {
			return nil, false
		}
		children = append(children, stmt)
	}
	if _, ok := p.expect(token.RCURLY, "}"); !ok {
		return nil, false
	}
	return children, true
}

func (p *Parser) parseProcess() (ast.Node, bool) {
	start := p.startPos()
	p.advance() // process
	children, ok := p.parseBracedStatements()
	if !ok {
		return nil, false
	}
	node := &ast.ProcessNode{Children: children}
	node.SetPosition(start)
	p.setEnd(node)
	return node, true
}

func (p *Parser) parseBlock() (ast.Node, bool) {
	start := p.startPos()
	p.advance() // block
	children, ok := p.parseBracedStatements()
	if !ok {
		return nil, false
	}
	node := &ast.BlockNode{Children: children}
	node.SetPosition(start)
	p.setEnd(node)
	return node, true
}

// ---- connect ----

func (p *Parser) parseConnect() (ast.Node, bool) {
	start := p.startPos()
	p.advance() // connect
	if _, ok := p.expect(token.LCURLY, "{"); !ok {
		return nil, false
	}
	var children []ast.Node
	for p.cur().Type != token.RCURLY {
		if p.cur().Type == token.EOF {
			return p.fail("}")
		}
		stmt, ok := p.parseConnectStatement()
		if !ok {
			return nil, false
		}
		children = append(children, stmt)
	}
	if _, ok := p.expect(token.RCURLY, "}"); !ok {
		return nil, false
	}
	node := &ast.ConnectNode{Children: children}
	node.SetPosition(start)
	p.setEnd(node)
	return node, true
}

func (p *Parser) parseConnectStatement() (ast.Node, bool) {
	start := p.startPos()
	lhs, ok := p.parseConnectionMember()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.CABLE, "->"); !ok {
		return nil, false
	}
	rhs, ok := p.parseRightConnectionMember()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.SEMI, ";"); !ok {
		return nil, false
	}
	node := &ast.ConnectStmt{LHS: lhs, RHS: rhs}
	node.SetPosition(start)
	p.setEnd(node)
	return node, true
}

func (p *Parser) parseConnectionMember() (ast.Node, bool) {
	start := p.startPos()
	id, ok := p.parseIdentifier()
	if !ok {
		return nil, false
	}
	if p.cur().Type == token.DOT {
		p.advance()
		prop, ok := p.parseIdentifier()
		if !ok {
			return nil, false
		}
		node := &ast.MemberExpr{Object: id, Property: prop}
		node.SetPosition(start)
		p.setEnd(node)
		return node, true
	}
	return id, true
}

func (p *Parser) parseRightConnectionMember() (ast.Node, bool) {
	if p.cur().Type == token.OUTPUTS {
		return p.parseOutputsStmt()
	}
	return p.parseConnectionMember()
}

func (p *Parser) parseOutputsStmt() (ast.Node, bool) {
	start := p.startPos()
	p.advance() // OUTPUTS
	if p.cur().Type == token.LSQUARE {
		p.advance()
		numTok, ok := p.expect(token.NUMBER, "number")
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.RSQUARE, "]"); !ok {
			return nil, false
		}
		val, _ := strconv.Atoi(numTok.Literal)
		node := &ast.OutputsNumberedStmt{Value: val}
		node.SetPosition(start)
		p.setEnd(node)
		return node, true
	}
	node := &ast.OutputsStmt{}
	node.SetPosition(start)
	p.setEnd(node)
	return node, true
}
