package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/mephisto/ast"
	"github.com/viant/mephisto/token"
)

func ident(name string) ast.Node {
	return &ast.Identifier{Name: name}
}

func TestWalk_EnterExitOrder(t *testing.T) {
	var order []string

	tree := ast.Node(&ast.ProgramNode{Children: []ast.Node{
		&ast.AssignmentExpr{LHS: ident("a"), RHS: ident("b")},
	}})

	ast.Walk(&tree, func(stage ast.Stage, n *ast.Node) bool {
		name := "?"
		switch v := (*n).(type) {
		case *ast.ProgramNode:
			name = "Program"
		case *ast.AssignmentExpr:
			name = "Assignment"
		case *ast.Identifier:
			name = v.Name
		}
		if stage == ast.Enter {
			order = append(order, "enter:"+name)
		} else {
			order = append(order, "exit:"+name)
		}
		return false
	})

	assert.Equal(t, []string{
		"enter:Program",
		"enter:Assignment",
		"enter:a", "exit:a",
		"enter:b", "exit:b",
		"exit:Assignment",
		"exit:Program",
	}, order)
}

func TestWalk_SkipDescentStillCallsExit(t *testing.T) {
	var order []string
	tree := ast.Node(&ast.ExpressionStmt{Child: ident("x")})

	ast.Walk(&tree, func(stage ast.Stage, n *ast.Node) bool {
		if _, ok := (*n).(*ast.ExpressionStmt); ok {
			if stage == ast.Enter {
				order = append(order, "enter:stmt")
				return true // skip descent into Child
			}
			order = append(order, "exit:stmt")
		}
		if _, ok := (*n).(*ast.Identifier); ok {
			order = append(order, "visited:identifier")
		}
		return false
	})

	assert.Equal(t, []string{"enter:stmt", "exit:stmt"}, order)
}

func TestWalk_MutatesInPlace(t *testing.T) {
	tree := ast.Node(&ast.ProgramNode{Children: []ast.Node{ident("old")}})

	ast.Walk(&tree, func(stage ast.Stage, n *ast.Node) bool {
		if stage != ast.Enter {
			return false
		}
		if id, ok := (*n).(*ast.Identifier); ok && id.Name == "old" {
			*n = &ast.Identifier{Name: "new"}
		}
		return false
	})

	prog := tree.(*ast.ProgramNode)
	assert.Equal(t, "new", prog.Children[0].(*ast.Identifier).Name)
}

func TestSetEnd_UpdatesEndAndColumnOnly(t *testing.T) {
	id := &ast.Identifier{Name: "x"}
	id.SetPosition(token.Position{Start: 5, End: 6, Line: 2, Column: 3})

	ast.SetEnd(id, 42, 9)

	pos := id.Position()
	assert.Equal(t, 5, pos.Start)
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 42, pos.End)
	assert.Equal(t, 9, pos.Column)
}

func TestAST_Imports(t *testing.T) {
	program := &ast.AST{Root: &ast.ProgramNode{Children: []ast.Node{
		&ast.ImportStatement{ID: ident("Mod"), Path: "./mod.meph"},
		&ast.ImportStatement{ID: ident("Mod2"), Path: "./other.meph"},
	}}}

	assert.Equal(t, []string{"./mod.meph", "./other.meph"}, program.Imports())
}

func TestAST_ToJSON(t *testing.T) {
	program := &ast.AST{Root: &ast.ProgramNode{Children: []ast.Node{
		&ast.Number{Value: 42},
	}}}

	data, err := program.ToJSON()
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"type": "Program"`)
	assert.Contains(t, string(data), `"value": 42`)
}
