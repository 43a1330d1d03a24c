package ir

import (
	"fmt"

	"github.com/viant/mephisto/ast"
	"github.com/viant/mephisto/symboltable"
)

// scopeWalk drives the Block/BufferInitializer/FunctionBody/Process
// scope-stack bookkeeping shared by the module-rename, stdlib-rewrite, and
// connect-rewrite passes: every pass that needs to resolve identifier
// references against the scope tree built at symbol-table time must enter
// and exit scopes, via table.EnterNextScope/ExitScope, at exactly the nodes
// that created them.
//
// onIdentifier is called on the Enter visit of every identifier that is not
// a parameter-field name (always suppressed) or, when skipFunctionParam is
// set, a function-parameter name.
func scopeWalk(root ast.Node, table *symboltable.Table, skipFunctionParam bool, onIdentifier func(id *ast.Identifier)) {
	table.ResetScopesIndexes()
	skipOnce := false
	r := root
	ast.Walk(&r, func(stage ast.Stage, n *ast.Node) bool {
		switch node := (*n).(type) {
		case *ast.BlockNode, *ast.BufferInitializer, *ast.FunctionBody, *ast.ProcessNode:
			if stage == ast.Enter {
				table.EnterNextScope()
			} else {
				table.ExitScope()
			}
		case *ast.ParameterDeclarationField:
			skipOnce = stage == ast.Enter
		case *ast.FunctionParameter:
			if skipFunctionParam {
				skipOnce = stage == ast.Enter
			}
		case *ast.Identifier:
			if skipOnce {
				skipOnce = false
				return false
			}
			if stage == ast.Enter {
				onIdentifier(node)
			}
		}
		return false
	})
}

// uniqueName assigns the first occurrence of base a bare name and every
// subsequent occurrence a `#<base>_<n>` disambiguated name. Both the hoister
// and the merger's namespacing rename share this scheme.
func uniqueName(counts map[string]int, base string) string {
	counts[base]++
	if counts[base] == 1 {
		return base
	}
	return fmt.Sprintf("#%s_%d", base, counts[base])
}
