package ir

import (
	"fmt"

	"github.com/viant/mephisto/ast"
	"github.com/viant/mephisto/module"
	"github.com/viant/mephisto/symboltable"
)

// mergeModules flattens the import graph rooted at moduleName into a single
// module. Imports are visited depth-first in declaration order;
// each imported subtree has its member expressions collapsed and its
// declarations namespaced under the local import binding before being inlined
// into the host. The module is removed from the map while it is being merged,
// which is what makes circular imports safe: a cycle finds the module absent
// and the processed cache catches it on reinsertion.
func mergeModules(modules *module.Map, moduleName string, processed map[string]bool) *module.Module {
	if processed[moduleName] {
		mod, _ := modules.Get(moduleName)
		return mod
	}

	mod, ok := modules.Delete(moduleName)
	if !ok {
		panic(fmt.Sprintf("ir: module %q not found", moduleName))
	}

	program := &ast.ProgramNode{}
	var importedProcess []*ast.ProcessNode
	var importedBlocks []*ast.BlockNode
	var importedConnects []*ast.ConnectNode

	if prog, ok := mod.AST.Root.(*ast.ProgramNode); ok {
		for _, child := range prog.Children {
			imp, isImport := child.(*ast.ImportStatement)
			if !isImport {
				program.Children = append(program.Children, child)
				continue
			}

			imported := mergeModules(modules, imp.Path, processed)
			rewritten := rewriteModuleCalls(imported.AST)

			localName := ""
			if id, ok := imp.ID.(*ast.Identifier); ok {
				localName = id.Name
			}
			renamed := renameSymbols(rewritten.AST.Root, localName, rewritten.SymbolTable)

			renamedProg, ok := renamed.(*ast.ProgramNode)
			if !ok {
				continue
			}
			for _, rn := range renamedProg.Children {
				switch typed := rn.(type) {
				case *ast.ProcessNode:
					importedProcess = append(importedProcess, typed)
				case *ast.BlockNode:
					importedBlocks = append(importedBlocks, typed)
				case *ast.ConnectNode:
					importedConnects = append(importedConnects, typed)
				default:
					program.Children = append(program.Children, rn)
				}
			}
		}
	}

	for _, imported := range importedBlocks {
		if host := findBlockNode(program.Children); host != nil {
			host.Children = prependNodes(imported.Children, host.Children)
		} else {
			program.Children = append(program.Children, imported)
		}
	}
	for _, imported := range importedProcess {
		if host := findProcessNode(program.Children); host != nil {
			host.Children = prependNodes(imported.Children, host.Children)
		} else {
			program.Children = append(program.Children, imported)
		}
	}
	for _, imported := range importedConnects {
		if host := findConnectNode(program.Children); host != nil {
			host.Children = prependNodes(imported.Children, host.Children)
		} else {
			program.Children = append(program.Children, imported)
		}
	}

	result := &module.Module{AST: ast.New(program, nil)}
	processed[moduleName] = true
	modules.Set(moduleName, result)

	table, errs := symboltable.FromAST(result.AST)
	result.SymbolTable = table
	result.Errors = append(result.Errors, errs...)
	return result
}

func prependNodes(head, tail []ast.Node) []ast.Node {
	out := make([]ast.Node, 0, len(head)+len(tail))
	out = append(out, head...)
	return append(out, tail...)
}

func findProcessNode(children []ast.Node) *ast.ProcessNode {
	for _, c := range children {
		if p, ok := c.(*ast.ProcessNode); ok {
			return p
		}
	}
	return nil
}

func findBlockNode(children []ast.Node) *ast.BlockNode {
	for _, c := range children {
		if b, ok := c.(*ast.BlockNode); ok {
			return b
		}
	}
	return nil
}

func findConnectNode(children []ast.Node) *ast.ConnectNode {
	for _, c := range children {
		if cn, ok := c.(*ast.ConnectNode); ok {
			return cn
		}
	}
	return nil
}

// renameSymbols deep-copies the subtree and renames every declaration symbol
// in it (and every reference to one, matched by UUID) under the
// `<moduleID>#<name>` namespacing scheme. The copy matters: a module cached
// by path can be imported twice under different local names, and each import
// site must prefix an independent tree.
func renameSymbols(root ast.Node, moduleID string, table *symboltable.Table) ast.Node {
	renamed := ast.Clone(root)
	toRename := collectSymbolsForRename(renamed, table)

	scopeWalk(renamed, table, true, func(id *ast.Identifier) {
		info, ok := table.Lookup(id.Name)
		if !ok {
			return
		}
		for _, cand := range toRename {
			if cand.info.ID() == info.ID() {
				id.Name = moduleID + "#" + cand.newName
			}
		}
	})

	return renamed
}

// collectSymbolsForRename walks the subtree with full scope tracking and
// gathers every declaration symbol (variables, functions, buffers,
// parameters) paired with its collision-disambiguated name.
func collectSymbolsForRename(root ast.Node, table *symboltable.Table) []pendingRename {
	var out []pendingRename
	counts := map[string]int{}
	table.ResetScopesIndexes()

	appendDeclaration := func(idNode ast.Node) {
		id, ok := idNode.(*ast.Identifier)
		if !ok {
			return
		}
		info, ok := table.LookupInScope(id.Name, table.CurrentScopeIndex)
		if !ok {
			return
		}
		out = append(out, pendingRename{newName: uniqueName(counts, id.Name), info: info})
	}

	r := root
	ast.Walk(&r, func(stage ast.Stage, n *ast.Node) bool {
		switch node := (*n).(type) {
		case *ast.BlockNode, *ast.BufferInitializer, *ast.FunctionBody, *ast.ProcessNode:
			if stage == ast.Enter {
				table.EnterNextScope()
			} else {
				table.ExitScope()
			}
		case *ast.VariableDeclarationStmt:
			if stage == ast.Enter {
				appendDeclaration(node.ID)
			}
		case *ast.FunctionDeclarationStmt:
			if stage == ast.Enter {
				appendDeclaration(node.ID)
			}
		case *ast.BufferDeclarationStmt:
			if stage == ast.Enter {
				appendDeclaration(node.ID)
			}
		case *ast.ParameterDeclarationStmt:
			if stage == ast.Enter {
				appendDeclaration(node.ID)
			}
		}
		return false
	})

	return out
}
