package ir

import (
	"fmt"

	"github.com/viant/mephisto/ast"
	"github.com/viant/mephisto/module"
	"github.com/viant/mephisto/symboltable"
)

// rewriteModuleCalls collapses every `Obj.name` member expression into a flat
// `Obj#name` identifier, matching the naming scheme the merger
// applies to the imported declarations, then rebuilds the symbol table so the
// flattened references resolve.
func rewriteModuleCalls(tree *ast.AST) *module.Module {
	root := ast.Clone(tree.Root)

	ast.Walk(&root, func(stage ast.Stage, n *ast.Node) bool {
		if stage != ast.Enter {
			return false
		}
		member, ok := (*n).(*ast.MemberExpr)
		if !ok {
			return false
		}
		obj, okObj := member.Object.(*ast.Identifier)
		prop, okProp := member.Property.(*ast.Identifier)
		if !okObj || !okProp {
			return false
		}
		flat := &ast.Identifier{Name: obj.Name + "#" + prop.Name}
		flat.SetPosition(member.Position())
		*n = flat
		return false
	})

	rewritten := ast.New(root, nil)
	table, errs := symboltable.FromAST(rewritten)
	return module.New(rewritten, table, errs)
}

// rewriteStdlib renames every identifier that resolves to a standard-library
// symbol to its `##STD_<name>` sentinel form. Resolution runs
// with full scope tracking so a local shadowing a stdlib name is left alone.
func rewriteStdlib(tree *ast.AST, table *symboltable.Table) *module.Module {
	root := ast.Clone(tree.Root)
	stdlib := table.GetStdlibSymbols()

	scopeWalk(root, table, false, func(id *ast.Identifier) {
		info, ok := table.Lookup(id.Name)
		if !ok {
			return
		}
		for _, s := range stdlib {
			if s.Info.ID() == info.ID() {
				id.Name = "##STD_" + s.Name
			}
		}
	})

	rewritten := ast.New(root, nil)
	rebuilt, errs := symboltable.FromAST(rewritten)
	return module.New(rewritten, rebuilt, errs)
}

// rewriteConnects flattens input and output references to indexed sentinels
// (`##INPUT_[i]`, `##OUTPUT_[i]`) and returns the ordered input/output name
// lists the host ABI is built against. The bracket placement is
// load-bearing: emission slices the prefix and keeps `[i]` as an array access.
func rewriteConnects(tree *ast.AST, table *symboltable.Table) (*ast.AST, *symboltable.Table, []string, []string) {
	root := ast.Clone(tree.Root)

	inputSymbols := collectIOSymbols(root, table, ast.SpecInput)
	outputSymbols := collectIOSymbols(root, table, ast.SpecOutput)

	scopeWalk(root, table, false, func(id *ast.Identifier) {
		info, ok := table.Lookup(id.Name)
		if !ok {
			return
		}
		for i, s := range inputSymbols {
			if s.Info.ID() == info.ID() {
				id.Name = fmt.Sprintf("##INPUT_[%d]", i)
			}
		}
		for i, s := range outputSymbols {
			if s.Info.ID() == info.ID() {
				id.Name = fmt.Sprintf("##OUTPUT_[%d]", i)
			}
		}
	})

	rewritten := ast.New(root, nil)
	rebuilt, _ := symboltable.FromAST(rewritten)

	return rewritten, rebuilt, symbolNames(inputSymbols), symbolNames(outputSymbols)
}

// collectIOSymbols enumerates the module's input or output symbols in source
// order: declaration names are gathered by a depth-first AST walk, then
// resolved against the global scope. A name that resolves to something other
// than a matching-direction variable (a parameter shadowing an output, say)
// is dropped.
func collectIOSymbols(root ast.Node, table *symboltable.Table, spec ast.Specifier) []symboltable.NamedSymbol {
	var names []string
	r := root
	ast.Walk(&r, func(stage ast.Stage, n *ast.Node) bool {
		if stage != ast.Enter {
			return false
		}
		decl, ok := (*n).(*ast.VariableDeclarationStmt)
		if !ok || decl.Specifier != spec {
			return false
		}
		if id, ok := decl.ID.(*ast.Identifier); ok {
			names = append(names, id.Name)
		}
		return false
	})

	table.ResetScopesIndexes()
	var out []symboltable.NamedSymbol
	for _, name := range names {
		info, ok := table.Lookup(name)
		if !ok {
			continue
		}
		if (spec == ast.SpecInput && info.IsInput()) || (spec == ast.SpecOutput && info.IsOutput()) {
			out = append(out, symboltable.NamedSymbol{Name: name, Info: info})
		}
	}
	return out
}

func symbolNames(symbols []symboltable.NamedSymbol) []string {
	out := make([]string, len(symbols))
	for i, s := range symbols {
		out[i] = s.Name
	}
	return out
}
