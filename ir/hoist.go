package ir

import (
	"github.com/viant/mephisto/ast"
	"github.com/viant/mephisto/module"
	"github.com/viant/mephisto/symboltable"
)

// pendingRename pairs a symbol with the name it is about to be bound to. The
// symbol's UUID is what rename passes match on; the current name is never
// trusted once a prior pass may have changed it.
type pendingRename struct {
	newName string
	info    symboltable.Info
}

// hoistAll lifts every variable declared inside a module's process section to
// module scope, for every module in the map. Modules without a
// process section are left untouched.
func hoistAll(modules *module.Map) {
	for _, key := range modules.Keys() {
		mod, _ := modules.Get(key)
		hoistModule(mod)
	}
}

func hoistModule(mod *module.Module) {
	table := mod.SymbolTable
	processScope, ok := findProcessScope(mod.AST.Root, table)
	if !ok {
		return
	}

	// Seed the name counter with every global name so a process-local
	// declaration colliding with a global (or a stdlib name, which also
	// lives in the global scope) gets a disambiguated `#<base>_<n>` name.
	counts := map[string]int{}
	for _, name := range table.GetGlobalSymbolNames() {
		counts[name] = 1
	}

	toHoist := collectHoistCandidates(mod.AST.Root, table, processScope, counts)

	renameHoistedReferences(mod.AST.Root, table, processScope, toHoist)

	if prog, ok := mod.AST.Root.(*ast.ProgramNode); ok {
		hoistProcessDeclarations(prog)
	}

	for _, r := range toHoist {
		table.RenameSymbol(r.info.ID(), r.newName)
	}
	table.MoveVariablesToGlobalScope(processScope)
}

// findProcessScope replays the scope traversal to locate the scope index the
// symbol builder created for the Process node.
func findProcessScope(root ast.Node, table *symboltable.Table) (int, bool) {
	table.ResetScopesIndexes()
	index, found := 0, false
	r := root
	ast.Walk(&r, func(stage ast.Stage, n *ast.Node) bool {
		switch (*n).(type) {
		case *ast.BlockNode, *ast.BufferInitializer, *ast.FunctionBody:
			if stage == ast.Enter {
				table.EnterNextScope()
			} else {
				table.ExitScope()
			}
		case *ast.ProcessNode:
			if stage == ast.Enter {
				table.EnterNextScope()
				index, found = table.CurrentScopeIndex, true
			} else {
				table.ExitScope()
			}
		}
		return false
	})
	return index, found
}

// collectHoistCandidates gathers every variable declared directly in the
// process body, in source order, paired with its unique hoisted name. Both
// the bare VariableDeclarationStmt shape and the ExpressionStmt-wrapped shape
// are matched so no declaration slips through regardless of which production
// emitted it.
func collectHoistCandidates(root ast.Node, table *symboltable.Table, processScope int, counts map[string]int) []pendingRename {
	prog, ok := root.(*ast.ProgramNode)
	if !ok {
		return nil
	}
	var out []pendingRename
	for _, child := range prog.Children {
		proc, ok := child.(*ast.ProcessNode)
		if !ok {
			continue
		}
		for _, stmt := range proc.Children {
			decl := asVariableDeclaration(stmt)
			if decl == nil {
				continue
			}
			id, ok := decl.ID.(*ast.Identifier)
			if !ok {
				continue
			}
			info, ok := table.LookupInScope(id.Name, processScope)
			if !ok {
				continue
			}
			out = append(out, pendingRename{newName: uniqueName(counts, id.Name), info: info})
		}
	}
	return out
}

func asVariableDeclaration(n ast.Node) *ast.VariableDeclarationStmt {
	switch v := n.(type) {
	case *ast.VariableDeclarationStmt:
		return v
	case *ast.ExpressionStmt:
		if decl, ok := v.Child.(*ast.VariableDeclarationStmt); ok {
			return decl
		}
	}
	return nil
}

// renameHoistedReferences rewrites identifier references to hoisted symbols,
// within the Process subtree only, matched by UUID through a non-walking
// lookup in the process scope.
func renameHoistedReferences(root ast.Node, table *symboltable.Table, processScope int, toHoist []pendingRename) {
	inProcess := false
	r := root
	ast.Walk(&r, func(stage ast.Stage, n *ast.Node) bool {
		switch node := (*n).(type) {
		case *ast.ProcessNode:
			inProcess = stage == ast.Enter
		case *ast.Identifier:
			if stage != ast.Enter || !inProcess {
				return false
			}
			info, ok := table.LookupInScope(node.Name, processScope)
			if !ok {
				return false
			}
			for _, cand := range toHoist {
				if cand.info.ID() == info.ID() {
					node.Name = cand.newName
				}
			}
		}
		return false
	})
}

// hoistProcessDeclarations rewrites the program in place: each declaration
// inside a process body becomes a zero-initialized declaration immediately
// before the process node, and the original statement becomes an assignment
// of the original initializer at the original position in the body.
func hoistProcessDeclarations(prog *ast.ProgramNode) {
	var children []ast.Node
	for _, child := range prog.Children {
		proc, ok := child.(*ast.ProcessNode)
		if !ok {
			children = append(children, child)
			continue
		}
		var hoisted []ast.Node
		var body []ast.Node
		for _, stmt := range proc.Children {
			decl := asVariableDeclaration(stmt)
			if decl == nil {
				body = append(body, stmt)
				continue
			}
			hoisted = append(hoisted, &ast.VariableDeclarationStmt{
				ID:          ast.Clone(decl.ID),
				Specifier:   decl.Specifier,
				Initializer: &ast.Number{},
			})
			if decl.Initializer != nil {
				body = append(body, &ast.AssignmentExpr{LHS: decl.ID, RHS: decl.Initializer})
			}
		}
		proc.Children = body
		children = append(children, hoisted...)
		children = append(children, proc)
	}
	prog.Children = children
}
