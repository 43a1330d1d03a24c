// Package ast defines the Mephisto abstract syntax tree: a closed set of node
// types, the enter/exit traversal protocol every later pass is built on, and
// thin JSON/import-graph helpers.
package ast

import (
	"encoding/json"

	"github.com/viant/mephisto/token"
)

// Node is the closed tagged sum of every AST node variant. All variants embed
// base, which supplies Position/SetPosition/node().
type Node interface {
	Position() token.Position
	SetPosition(p token.Position)
	node()
}

type base struct {
	Pos token.Position
}

func (b *base) Position() token.Position     { return b.Pos }
func (b *base) SetPosition(p token.Position) { b.Pos = p }
func (*base) node()                          {}

// SetEnd sets a node's end offset and column, keeping start/line untouched.
// Every parser production calls this just before it returns.
func SetEnd(n Node, end, column int) {
	p := n.Position()
	p.End = end
	p.Column = column
	n.SetPosition(p)
}

// Operator is the closed set of unary/binary operators.
type Operator int

const (
	Plus Operator = iota
	Minus
	Mul
	Div
	Eq
	Gt
	Lt
	Ge
	Le
	Ne
)

var operatorNames = [...]string{"+", "-", "*", "/", "==", ">", "<", ">=", "<=", "!="}

func (o Operator) String() string {
	if int(o) < len(operatorNames) {
		return operatorNames[o]
	}
	return "?"
}

// Specifier distinguishes the five ways a VariableDeclarationStmt may be
// introduced.
type Specifier int

const (
	SpecLet Specifier = iota
	SpecConst
	SpecInput
	SpecOutput
	SpecBuffer
)

func (s Specifier) String() string {
	switch s {
	case SpecLet:
		return "let"
	case SpecConst:
		return "const"
	case SpecInput:
		return "input"
	case SpecOutput:
		return "output"
	case SpecBuffer:
		return "buffer"
	}
	return "?"
}

// ---- container nodes (ordered children) ----

type ProgramNode struct {
	base
	Children []Node
}

type ProcessNode struct {
	base
	Children []Node
}

type BlockNode struct {
	base
	Children []Node
}

type ConnectNode struct {
	base
	Children []Node
}

type FunctionBody struct {
	base
	Children []Node
}

type BufferInitializer struct {
	base
	Children []Node
}

// ---- leaves & composite nodes ----

type Identifier struct {
	base
	Name string
}

type Number struct {
	base
	Value float64
}

type ExpressionStmt struct {
	base
	Child Node
}

type AssignmentExpr struct {
	base
	LHS Node
	RHS Node
}

type ConnectStmt struct {
	base
	LHS Node
	RHS Node
}

type ReturnStmt struct {
	base
	Child Node
}

type VariableDeclarationStmt struct {
	base
	ID          Node
	Initializer Node // may be nil
	Specifier   Specifier
}

type FunctionDeclarationStmt struct {
	base
	ID     Node
	Params []Node
	Body   Node
}

type FunctionParameter struct {
	base
	ID Node
}

type MemberExpr struct {
	base
	Object   Node
	Property Node
}

type ExportDeclarationStmt struct {
	base
	Declaration Node
}

type ParameterDeclarationStmt struct {
	base
	ID     Node
	Fields []Node
}

type ParameterDeclarationField struct {
	base
	ID    Node
	Value float64
}

type FnCallExpr struct {
	base
	Callee Node
	Args   []Node
}

type UnaryExpr struct {
	base
	Op    Operator
	Child Node
}

type BinaryExpr struct {
	base
	Op  Operator
	LHS Node
	RHS Node
}

type OutputsStmt struct {
	base
}

type OutputsNumberedStmt struct {
	base
	Value int
}

type BufferDeclarationStmt struct {
	base
	ID          Node
	Size        Node
	Initializer Node // may be nil
}

type ImportStatement struct {
	base
	ID   Node
	Path string
}

// AST is the parser's output: a root node plus any diagnostics collected.
type AST struct {
	Root   Node
	Errors []string
}

// New builds an AST from a root node and diagnostic list.
func New(root Node, errors []string) *AST {
	return &AST{Root: root, Errors: errors}
}

// Imports walks the tree and returns every import path referenced, in
// traversal order.
func (a *AST) Imports() []string {
	var paths []string
	root := a.Root
	Walk(&root, func(stage Stage, n *Node) bool {
		if stage != Enter {
			return false
		}
		if imp, ok := (*n).(*ImportStatement); ok {
			paths = append(paths, imp.Path)
		}
		return false
	})
	return paths
}

// jsonNode is the serialization shape used by ToJSON: a type tag plus a
// free-form payload map rather than one Go type per variant.
type jsonNode struct {
	Type     string                 `json:"type"`
	Position token.Position         `json:"position"`
	Fields   map[string]interface{} `json:"fields,omitempty"`
}

// ToJSON renders the tree as an indented JSON document for debugging.
func (a *AST) ToJSON() ([]byte, error) {
	return json.MarshalIndent(toJSONNode(a.Root), "", "  ")
}

func toJSONNode(n Node) *jsonNode {
	if n == nil {
		return nil
	}
	out := &jsonNode{Position: n.Position(), Fields: map[string]interface{}{}}
	switch v := n.(type) {
	case *ProgramNode:
		out.Type = "Program"
		out.Fields["children"] = toJSONNodes(v.Children)
	case *ProcessNode:
		out.Type = "Process"
		out.Fields["children"] = toJSONNodes(v.Children)
	case *BlockNode:
		out.Type = "Block"
		out.Fields["children"] = toJSONNodes(v.Children)
	case *ConnectNode:
		out.Type = "Connect"
		out.Fields["children"] = toJSONNodes(v.Children)
	case *FunctionBody:
		out.Type = "FunctionBody"
		out.Fields["children"] = toJSONNodes(v.Children)
	case *BufferInitializer:
		out.Type = "BufferInitializer"
		out.Fields["children"] = toJSONNodes(v.Children)
	case *Identifier:
		out.Type = "Identifier"
		out.Fields["name"] = v.Name
	case *Number:
		out.Type = "Number"
		out.Fields["value"] = v.Value
	case *ExpressionStmt:
		out.Type = "ExpressionStmt"
		out.Fields["child"] = toJSONNode(v.Child)
	case *AssignmentExpr:
		out.Type = "AssignmentExpr"
		out.Fields["lhs"] = toJSONNode(v.LHS)
		out.Fields["rhs"] = toJSONNode(v.RHS)
	case *ConnectStmt:
		out.Type = "ConnectStmt"
		out.Fields["lhs"] = toJSONNode(v.LHS)
		out.Fields["rhs"] = toJSONNode(v.RHS)
	case *ReturnStmt:
		out.Type = "ReturnStmt"
		out.Fields["child"] = toJSONNode(v.Child)
	case *VariableDeclarationStmt:
		out.Type = "VariableDeclarationStmt"
		out.Fields["id"] = toJSONNode(v.ID)
		out.Fields["initializer"] = toJSONNode(v.Initializer)
		out.Fields["specifier"] = v.Specifier.String()
	case *FunctionDeclarationStmt:
		out.Type = "FunctionDeclarationStmt"
		out.Fields["id"] = toJSONNode(v.ID)
		out.Fields["params"] = toJSONNodes(v.Params)
		out.Fields["body"] = toJSONNode(v.Body)
	case *FunctionParameter:
		out.Type = "FunctionParameter"
		out.Fields["id"] = toJSONNode(v.ID)
	case *MemberExpr:
		out.Type = "MemberExpr"
		out.Fields["object"] = toJSONNode(v.Object)
		out.Fields["property"] = toJSONNode(v.Property)
	case *ExportDeclarationStmt:
		out.Type = "ExportDeclarationStmt"
		out.Fields["declaration"] = toJSONNode(v.Declaration)
	case *ParameterDeclarationStmt:
		out.Type = "ParameterDeclarationStmt"
		out.Fields["id"] = toJSONNode(v.ID)
		out.Fields["fields"] = toJSONNodes(v.Fields)
	case *ParameterDeclarationField:
		out.Type = "ParameterDeclarationField"
		out.Fields["id"] = toJSONNode(v.ID)
		out.Fields["value"] = v.Value
	case *FnCallExpr:
		out.Type = "FnCallExpr"
		out.Fields["callee"] = toJSONNode(v.Callee)
		out.Fields["args"] = toJSONNodes(v.Args)
	case *UnaryExpr:
		out.Type = "UnaryExpr"
		out.Fields["op"] = v.Op.String()
		out.Fields["child"] = toJSONNode(v.Child)
	case *BinaryExpr:
		out.Type = "BinaryExpr"
		out.Fields["op"] = v.Op.String()
		out.Fields["lhs"] = toJSONNode(v.LHS)
		out.Fields["rhs"] = toJSONNode(v.RHS)
	case *OutputsStmt:
		out.Type = "OutputsStmt"
	case *OutputsNumberedStmt:
		out.Type = "OutputsNumberedStmt"
		out.Fields["value"] = v.Value
	case *BufferDeclarationStmt:
		out.Type = "BufferDeclarationStmt"
		out.Fields["id"] = toJSONNode(v.ID)
		out.Fields["size"] = toJSONNode(v.Size)
		out.Fields["initializer"] = toJSONNode(v.Initializer)
	case *ImportStatement:
		out.Type = "ImportStatement"
		out.Fields["id"] = toJSONNode(v.ID)
		out.Fields["path"] = v.Path
	}
	return out
}

func toJSONNodes(nodes []Node) []*jsonNode {
	out := make([]*jsonNode, len(nodes))
	for i, n := range nodes {
		out[i] = toJSONNode(n)
	}
	return out
}
