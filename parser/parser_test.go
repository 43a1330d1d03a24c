package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/mephisto/ast"
	"github.com/viant/mephisto/lexer"
	"github.com/viant/mephisto/parser"
	"github.com/viant/mephisto/token"
)

func parse(src string) *ast.AST {
	return parser.Parse(lexer.Tokenize(src))
}

func program(t *testing.T, src string) *ast.ProgramNode {
	t.Helper()
	tree := parse(src)
	assert.Empty(t, tree.Errors, "unexpected parse errors: %v", tree.Errors)
	prog, ok := tree.Root.(*ast.ProgramNode)
	assert.True(t, ok)
	return prog
}

func TestParse_GenericErrorFormat(t *testing.T) {
	tree := parse("block 1")
	assert.NotEmpty(t, tree.Errors)
	assert.Contains(t, tree.Errors[0], "Unexpected token:")
	assert.Contains(t, tree.Errors[0], "expected {")
}

func TestParse_Import(t *testing.T) {
	prog := program(t, `import Mod from "./mod.meph";`)
	assert.Len(t, prog.Children, 1)
	imp, ok := prog.Children[0].(*ast.ImportStatement)
	assert.True(t, ok)
	assert.Equal(t, "./mod.meph", imp.Path)
	assert.Equal(t, "Mod", imp.ID.(*ast.Identifier).Name)
}

func TestParse_Process(t *testing.T) {
	prog := program(t, `process { let x = 1; }`)
	assert.Len(t, prog.Children, 1)
	proc, ok := prog.Children[0].(*ast.ProcessNode)
	assert.True(t, ok)
	assert.Len(t, proc.Children, 1)
}

func TestParse_Block(t *testing.T) {
	prog := program(t, `block { let x = 1; }`)
	_, ok := prog.Children[0].(*ast.BlockNode)
	assert.True(t, ok)
}

func TestParse_VariableDeclarationSpecifiers(t *testing.T) {
	prog := program(t, `let a = 1; const b = 2; input c; output d;`)
	assert.Len(t, prog.Children, 4)

	decl := prog.Children[0].(*ast.VariableDeclarationStmt)
	assert.Equal(t, ast.SpecLet, decl.Specifier)
	assert.Equal(t, float64(1), decl.Initializer.(*ast.Number).Value)

	decl = prog.Children[1].(*ast.VariableDeclarationStmt)
	assert.Equal(t, ast.SpecConst, decl.Specifier)

	decl = prog.Children[2].(*ast.VariableDeclarationStmt)
	assert.Equal(t, ast.SpecInput, decl.Specifier)
	assert.Nil(t, decl.Initializer)

	decl = prog.Children[3].(*ast.VariableDeclarationStmt)
	assert.Equal(t, ast.SpecOutput, decl.Specifier)
}

func TestParse_BufferDeclarationWithInitializer(t *testing.T) {
	prog := program(t, `buffer b[4] = |i| { return i * 2; };`)
	decl := prog.Children[0].(*ast.BufferDeclarationStmt)
	assert.Equal(t, "b", decl.ID.(*ast.Identifier).Name)
	assert.Equal(t, float64(4), decl.Size.(*ast.Number).Value)
	init, ok := decl.Initializer.(*ast.BufferInitializer)
	assert.True(t, ok)
	assert.Len(t, init.Children, 1)
}

func TestParse_BufferDeclarationWithoutInitializer(t *testing.T) {
	prog := program(t, `buffer b[4];`)
	decl := prog.Children[0].(*ast.BufferDeclarationStmt)
	assert.Nil(t, decl.Initializer)
}

func TestParse_ParameterDeclaration(t *testing.T) {
	prog := program(t, `param knob { freq: 440; gain: 1; };`)
	decl := prog.Children[0].(*ast.ParameterDeclarationStmt)
	assert.Equal(t, "knob", decl.ID.(*ast.Identifier).Name)
	assert.Len(t, decl.Fields, 2)
	assert.Equal(t, "freq", decl.Fields[0].(*ast.ParameterDeclarationField).ID.(*ast.Identifier).Name)
	assert.Equal(t, float64(440), decl.Fields[0].(*ast.ParameterDeclarationField).Value)
}

func TestParse_ExportVariable(t *testing.T) {
	prog := program(t, `export let a = 1;`)
	exp := prog.Children[0].(*ast.ExportDeclarationStmt)
	_, ok := exp.Declaration.(*ast.VariableDeclarationStmt)
	assert.True(t, ok)
}

func TestParse_FnKeywordFunction(t *testing.T) {
	// the fn prefix is optional; both forms declare the same node shape
	prog := program(t, `process { fn twice(x) { return x * 2; } }`)
	proc := prog.Children[0].(*ast.ProcessNode)
	fn, ok := proc.Children[0].(*ast.FunctionDeclarationStmt)
	assert.True(t, ok)
	assert.Equal(t, "twice", fn.ID.(*ast.Identifier).Name)
}

func TestParse_ExportFnKeywordFunction(t *testing.T) {
	prog := program(t, `export fn add(a, b) { return a + b; }`)
	exp := prog.Children[0].(*ast.ExportDeclarationStmt)
	fn, ok := exp.Declaration.(*ast.FunctionDeclarationStmt)
	assert.True(t, ok)
	assert.Len(t, fn.Params, 2)
}

func TestParse_ExportFunction(t *testing.T) {
	prog := program(t, `export add(a, b) { return a + b; }`)
	exp := prog.Children[0].(*ast.ExportDeclarationStmt)
	fn, ok := exp.Declaration.(*ast.FunctionDeclarationStmt)
	assert.True(t, ok)
	assert.Equal(t, "add", fn.ID.(*ast.Identifier).Name)
	assert.Len(t, fn.Params, 2)
}

func TestParse_FunctionDeclarationAndCall(t *testing.T) {
	prog := program(t, `baz(a, b) { return a + b; } let c = baz(1, 2);`)
	assert.Len(t, prog.Children, 2)

	fn := prog.Children[0].(*ast.FunctionDeclarationStmt)
	assert.Equal(t, "baz", fn.ID.(*ast.Identifier).Name)
	assert.Len(t, fn.Params, 2)
	body := fn.Body.(*ast.FunctionBody)
	assert.Len(t, body.Children, 1)
	ret := body.Children[0].(*ast.ReturnStmt)
	bin := ret.Child.(*ast.BinaryExpr)
	assert.Equal(t, ast.Plus, bin.Op)

	decl := prog.Children[1].(*ast.VariableDeclarationStmt)
	call := decl.Initializer.(*ast.FnCallExpr)
	assert.Equal(t, "baz", call.Callee.(*ast.Identifier).Name)
	assert.Len(t, call.Args, 2)
}

func TestParse_Assignment(t *testing.T) {
	prog := program(t, `let a = 1; a = 2;`)
	assign := prog.Children[1].(*ast.AssignmentExpr)
	assert.Equal(t, "a", assign.LHS.(*ast.Identifier).Name)
	assert.Equal(t, float64(2), assign.RHS.(*ast.Number).Value)
}

func TestParse_MemberAssignmentRejected(t *testing.T) {
	// assignment targets are identifiers; `Mod.x` is only valid in
	// expression position
	tree := parse(`Mod.x = 1;`)
	assert.NotEmpty(t, tree.Errors)
	assert.Contains(t, tree.Errors[0], "expected function declaration or assignment expression")
}

func TestParse_BareCallStatementRejected(t *testing.T) {
	tree := parse(`baz(3);`)
	assert.NotEmpty(t, tree.Errors)
}

func TestParse_MemberCall(t *testing.T) {
	prog := program(t, `let a = Mod.add(1, 2);`)
	decl := prog.Children[0].(*ast.VariableDeclarationStmt)
	call := decl.Initializer.(*ast.FnCallExpr)
	member := call.Callee.(*ast.MemberExpr)
	assert.Equal(t, "Mod", member.Object.(*ast.Identifier).Name)
	assert.Equal(t, "add", member.Property.(*ast.Identifier).Name)
}

func TestParse_PrecedenceLadder(t *testing.T) {
	// 1 < 2 + 3  =>  1 < (2 + 3)
	prog := program(t, `let a = 1 < 2 + 3;`)
	decl := prog.Children[0].(*ast.VariableDeclarationStmt)
	cmp := decl.Initializer.(*ast.BinaryExpr)
	assert.Equal(t, ast.Lt, cmp.Op)
	assert.Equal(t, float64(1), cmp.LHS.(*ast.Number).Value)
	add := cmp.RHS.(*ast.BinaryExpr)
	assert.Equal(t, ast.Plus, add.Op)
}

func TestParse_PrecedenceMulBeforeAdd(t *testing.T) {
	// 2 + 3 * 4 => 2 + (3 * 4)
	prog := program(t, `let a = 2 + 3 * 4;`)
	decl := prog.Children[0].(*ast.VariableDeclarationStmt)
	add := decl.Initializer.(*ast.BinaryExpr)
	assert.Equal(t, ast.Plus, add.Op)
	mul := add.RHS.(*ast.BinaryExpr)
	assert.Equal(t, ast.Mul, mul.Op)
}

func TestParse_ParenthesizedExpression(t *testing.T) {
	// (2 + 3) * 4
	prog := program(t, `let a = (2 + 3) * 4;`)
	decl := prog.Children[0].(*ast.VariableDeclarationStmt)
	mul := decl.Initializer.(*ast.BinaryExpr)
	assert.Equal(t, ast.Mul, mul.Op)
	add := mul.LHS.(*ast.BinaryExpr)
	assert.Equal(t, ast.Plus, add.Op)
}

func TestParse_UnaryExpression(t *testing.T) {
	prog := program(t, `let a = -x;`)
	decl := prog.Children[0].(*ast.VariableDeclarationStmt)
	unary := decl.Initializer.(*ast.UnaryExpr)
	assert.Equal(t, ast.Minus, unary.Op)
	assert.Equal(t, "x", unary.Child.(*ast.Identifier).Name)
}

func TestParse_ReturnStmt(t *testing.T) {
	prog := program(t, `foo() { return 1; }`)
	fn := prog.Children[0].(*ast.FunctionDeclarationStmt)
	body := fn.Body.(*ast.FunctionBody)
	ret := body.Children[0].(*ast.ReturnStmt)
	assert.Equal(t, float64(1), ret.Child.(*ast.Number).Value)
}

func TestParse_Connect(t *testing.T) {
	prog := program(t, `connect { src.x -> dst.y; y -> OUTPUTS; z -> OUTPUTS[2]; }`)
	conn := prog.Children[0].(*ast.ConnectNode)
	assert.Len(t, conn.Children, 3)

	first := conn.Children[0].(*ast.ConnectStmt)
	lhs := first.LHS.(*ast.MemberExpr)
	assert.Equal(t, "src", lhs.Object.(*ast.Identifier).Name)
	rhs := first.RHS.(*ast.MemberExpr)
	assert.Equal(t, "dst", rhs.Object.(*ast.Identifier).Name)

	second := conn.Children[1].(*ast.ConnectStmt)
	_, ok := second.RHS.(*ast.OutputsStmt)
	assert.True(t, ok)

	third := conn.Children[2].(*ast.ConnectStmt)
	numbered := third.RHS.(*ast.OutputsNumberedStmt)
	assert.Equal(t, 2, numbered.Value)
}

func TestParse_OutputsNumberedStmtHasRealPosition(t *testing.T) {
	prog := program(t, `connect { z -> OUTPUTS[2]; }`)
	conn := prog.Children[0].(*ast.ConnectNode)
	stmt := conn.Children[0].(*ast.ConnectStmt)
	numbered := stmt.RHS.(*ast.OutputsNumberedStmt)
	assert.NotZero(t, numbered.Position().Start)
}

func TestParse_MissingSemicolonProducesError(t *testing.T) {
	tree := parse(`let a = 1`)
	assert.NotEmpty(t, tree.Errors)
	assert.Contains(t, tree.Errors[0], "expected ;")
}

func TestParse_UnterminatedBlockProducesError(t *testing.T) {
	tree := parse(`process { let a = 1;`)
	assert.NotEmpty(t, tree.Errors)
}

func TestParse_FirstErrorHaltsParsingWithPartialTree(t *testing.T) {
	tree := parse(`let a = 1; @@@`)
	prog := tree.Root.(*ast.ProgramNode)
	// the first declaration still parsed before the unknown-token error halted
	assert.Len(t, prog.Children, 1)
	assert.NotEmpty(t, tree.Errors)
}

func TestParse_PositionsSpanWholeStatement(t *testing.T) {
	prog := program(t, `let a = 1;`)
	decl := prog.Children[0]
	pos := decl.Position()
	assert.Equal(t, 0, pos.Start)
	assert.Equal(t, len(`let a = 1;`), pos.End)
}

func TestParse_TokenTypeHelper(t *testing.T) {
	// sanity check that the lexer/parser share the same token vocabulary
	toks := lexer.Tokenize("process")
	assert.Equal(t, token.PROCESS, toks[0].Type)
}
