package ast

// Clone deep-copies a node and its entire subtree. The IR pipeline's module
// merger relies on this: a module cached by path may be imported more than
// once under different local names, and each import needs an independent
// copy to namespace-rename without corrupting the cached original or a
// sibling import's copy.
func Clone(n Node) Node {
	if n == nil {
		return nil
	}
	switch v := n.(type) {
	case *ProgramNode:
		c := &ProgramNode{base: v.base, Children: cloneSlice(v.Children)}
		return c
	case *ProcessNode:
		return &ProcessNode{base: v.base, Children: cloneSlice(v.Children)}
	case *BlockNode:
		return &BlockNode{base: v.base, Children: cloneSlice(v.Children)}
	case *ConnectNode:
		return &ConnectNode{base: v.base, Children: cloneSlice(v.Children)}
	case *FunctionBody:
		return &FunctionBody{base: v.base, Children: cloneSlice(v.Children)}
	case *BufferInitializer:
		return &BufferInitializer{base: v.base, Children: cloneSlice(v.Children)}
	case *Identifier:
		return &Identifier{base: v.base, Name: v.Name}
	case *Number:
		return &Number{base: v.base, Value: v.Value}
	case *ExpressionStmt:
		return &ExpressionStmt{base: v.base, Child: Clone(v.Child)}
	case *AssignmentExpr:
		return &AssignmentExpr{base: v.base, LHS: Clone(v.LHS), RHS: Clone(v.RHS)}
	case *ConnectStmt:
		return &ConnectStmt{base: v.base, LHS: Clone(v.LHS), RHS: Clone(v.RHS)}
	case *ReturnStmt:
		return &ReturnStmt{base: v.base, Child: Clone(v.Child)}
	case *VariableDeclarationStmt:
		return &VariableDeclarationStmt{
			base:        v.base,
			ID:          Clone(v.ID),
			Initializer: Clone(v.Initializer),
			Specifier:   v.Specifier,
		}
	case *FunctionDeclarationStmt:
		return &FunctionDeclarationStmt{
			base:   v.base,
			ID:     Clone(v.ID),
			Params: cloneSlice(v.Params),
			Body:   Clone(v.Body),
		}
	case *FunctionParameter:
		return &FunctionParameter{base: v.base, ID: Clone(v.ID)}
	case *MemberExpr:
		return &MemberExpr{base: v.base, Object: Clone(v.Object), Property: Clone(v.Property)}
	case *ExportDeclarationStmt:
		return &ExportDeclarationStmt{base: v.base, Declaration: Clone(v.Declaration)}
	case *ParameterDeclarationStmt:
		return &ParameterDeclarationStmt{base: v.base, ID: Clone(v.ID), Fields: cloneSlice(v.Fields)}
	case *ParameterDeclarationField:
		return &ParameterDeclarationField{base: v.base, ID: Clone(v.ID), Value: v.Value}
	case *FnCallExpr:
		return &FnCallExpr{base: v.base, Callee: Clone(v.Callee), Args: cloneSlice(v.Args)}
	case *UnaryExpr:
		return &UnaryExpr{base: v.base, Op: v.Op, Child: Clone(v.Child)}
	case *BinaryExpr:
		return &BinaryExpr{base: v.base, Op: v.Op, LHS: Clone(v.LHS), RHS: Clone(v.RHS)}
	case *OutputsStmt:
		return &OutputsStmt{base: v.base}
	case *OutputsNumberedStmt:
		return &OutputsNumberedStmt{base: v.base, Value: v.Value}
	case *BufferDeclarationStmt:
		return &BufferDeclarationStmt{
			base:        v.base,
			ID:          Clone(v.ID),
			Size:        Clone(v.Size),
			Initializer: Clone(v.Initializer),
		}
	case *ImportStatement:
		return &ImportStatement{base: v.base, ID: Clone(v.ID), Path: v.Path}
	}
	return nil
}

func cloneSlice(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = Clone(n)
	}
	return out
}
