// Package semantic validates a set of parsed, symbol-tabled modules against
// the language's cross-module rules: single process/connect blocks,
// identifier resolution, call arity, member-expression visibility, and
// assignment-target constness.
package semantic

import (
	"fmt"

	"github.com/viant/mephisto/ast"
	"github.com/viant/mephisto/module"
	"github.com/viant/mephisto/symboltable"
)

// Analyzer runs the cross-module rule set against a module.Map.
type Analyzer struct{}

// NewAnalyzer returns a ready-to-use Analyzer. It holds no state between
// calls to Validate.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Validate checks every module in modules and returns the diagnostics
// collected, each prefixed with the owning module's name.
func (a *Analyzer) Validate(modules *module.Map) []string {
	var errors []string
	for _, name := range modules.Keys() {
		mod, _ := modules.Get(name)
		for _, e := range a.validateModule(name, mod, modules) {
			errors = append(errors, fmt.Sprintf("[Module %q]: %s", name, e))
		}
	}
	return errors
}

type walker struct {
	table               *symboltable.Table
	modules             *module.Map
	processCount        int
	connectCount        int
	skipIdentifierCheck bool
	skipOnce            bool
	errors              []string
}

func (a *Analyzer) validateModule(name string, mod *module.Module, modules *module.Map) []string {
	w := &walker{table: mod.SymbolTable, modules: modules}
	w.table.ResetScopesIndexes()

	root := mod.AST.Root
	ast.Walk(&root, w.visit)

	return w.errors
}

func (w *walker) errf(pos fmt.Stringer, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	w.errors = append(w.errors, fmt.Sprintf("%s, %s", msg, pos.String()))
}

func (w *walker) visit(stage ast.Stage, n *ast.Node) bool {
	switch node := (*n).(type) {
	case *ast.ProcessNode:
		if stage == ast.Enter {
			w.processCount++
			if w.processCount > 1 {
				w.errf(node.Position(), "Cannot have more than one process block")
			}
			w.table.EnterNextScope()
		} else {
			w.table.ExitScope()
		}
		return false

	case *ast.ConnectNode:
		if stage == ast.Enter {
			w.connectCount++
			if w.connectCount > 1 {
				w.errf(node.Position(), "Cannot have more than one connect block")
			}
		}
		return false

	case *ast.BlockNode:
		if stage == ast.Enter {
			w.table.EnterNextScope()
		} else {
			w.table.ExitScope()
		}
		return false

	case *ast.BufferInitializer:
		if stage == ast.Enter {
			w.table.EnterNextScope()
		} else {
			w.table.ExitScope()
		}
		return false

	case *ast.FunctionDeclarationStmt:
		if stage == ast.Enter {
			w.skipOnce = true // the declared function name is not a reference
			ast.Walk(&node.ID, w.visit)
			w.table.EnterNextScope()
			for _, p := range node.Params {
				w.skipOnce = true
				ast.Walk(&p, w.visit)
			}
			ast.Walk(&node.Body, w.visit)
			w.table.ExitScope()
		}
		return true

	case *ast.VariableDeclarationStmt:
		if stage == ast.Enter {
			w.skipOnce = true
			ast.Walk(&node.ID, w.visit)
			if node.Initializer != nil {
				ast.Walk(&node.Initializer, w.visit)
			}
		}
		return true

	case *ast.BufferDeclarationStmt:
		if stage == ast.Enter {
			w.skipOnce = true
			ast.Walk(&node.ID, w.visit)
			ast.Walk(&node.Size, w.visit)
			if node.Initializer != nil {
				ast.Walk(&node.Initializer, w.visit)
			}
		}
		return true

	case *ast.ParameterDeclarationStmt:
		if stage == ast.Enter {
			w.skipOnce = true
			ast.Walk(&node.ID, w.visit)
			for _, f := range node.Fields {
				field, ok := f.(*ast.ParameterDeclarationField)
				if !ok {
					continue
				}
				w.skipOnce = true
				ast.Walk(&field.ID, w.visit)
			}
		}
		return true

	case *ast.ImportStatement:
		if stage == ast.Enter {
			w.skipOnce = true
			ast.Walk(&node.ID, w.visit)
		}
		return true

	case *ast.AssignmentExpr:
		if stage == ast.Enter {
			w.checkAssignmentTarget(node.LHS)
			ast.Walk(&node.LHS, w.visit)
			ast.Walk(&node.RHS, w.visit)
		}
		return true

	case *ast.FnCallExpr:
		if stage == ast.Enter {
			w.checkCall(node)
			for _, arg := range node.Args {
				ast.Walk(&arg, w.visit)
			}
		}
		return true

	case *ast.MemberExpr:
		if stage == ast.Enter {
			w.checkMemberExpr(node)
		}
		return true

	case *ast.Identifier:
		if stage == ast.Enter {
			if w.skipOnce {
				w.skipOnce = false
				return false
			}
			if w.skipIdentifierCheck {
				return false
			}
			if _, ok := w.table.Lookup(node.Name); !ok {
				w.errf(node.Position(), "Cannot find name %q", node.Name)
			}
		}
		return false
	}
	return false
}

func (w *walker) checkAssignmentTarget(lhs ast.Node) {
	// the grammar only produces identifier assignment targets; anything else
	// never reaches this walker
	id, ok := lhs.(*ast.Identifier)
	if !ok {
		return
	}
	info, ok := w.table.Lookup(id.Name)
	if !ok {
		return
	}
	if forbidsAssignment(info) {
		w.errf(id.Position(), "Cannot assign to constant %q", id.Name)
	}
}

func forbidsAssignment(info symboltable.Info) bool {
	switch info.(type) {
	case symboltable.Function, symboltable.ImportedModule:
		return true
	}
	return info.IsConstant()
}

func (w *walker) checkCall(call *ast.FnCallExpr) {
	w.skipOnce = true
	switch callee := call.Callee.(type) {
	case *ast.Identifier:
		info, ok := w.table.Lookup(callee.Name)
		if !ok {
			w.skipOnce = false
			w.errf(callee.Position(), "Function %q does not exist", callee.Name)
			return
		}
		fn, ok := info.(symboltable.Function)
		if !ok {
			w.skipOnce = false
			w.errf(callee.Position(), "%q is not a function", callee.Name)
			return
		}
		if len(fn.Parameters) != len(call.Args) {
			w.errf(callee.Position(), "Function %q expects %d arguments, but %d were provided",
				callee.Name, len(fn.Parameters), len(call.Args))
		}
		ast.Walk(&call.Callee, w.visit)

	case *ast.MemberExpr:
		fn, err := w.resolveMemberFunction(callee)
		ast.Walk(&call.Callee, w.visit)
		if err != "" {
			w.errf(callee.Position(), "%s", err)
			return
		}
		if fn == nil {
			return
		}
		if len(fn.Parameters) != len(call.Args) {
			name := memberName(callee)
			w.errf(callee.Position(), "Function %q expects %d arguments, but %d were provided",
				name, len(fn.Parameters), len(call.Args))
		}

	default:
		ast.Walk(&call.Callee, w.visit)
	}
}

func (w *walker) checkMemberExpr(expr *ast.MemberExpr) {
	if _, ok := expr.Object.(*ast.Identifier); !ok {
		return
	}
	if _, ok := expr.Property.(*ast.Identifier); !ok {
		return
	}
	w.skipOnce = true
	if _, err := w.resolveMember(expr); err != "" {
		w.errf(expr.Position(), "%s", err)
	}
	ast.Walk(&expr.Object, w.visit)
}

// resolveMember returns the resolved symbol for A.B, or an error string when
// A is not an imported module binding or B is missing or private.
func (w *walker) resolveMember(expr *ast.MemberExpr) (symboltable.Info, string) {
	objID, _ := expr.Object.(*ast.Identifier)
	propID, _ := expr.Property.(*ast.Identifier)

	objInfo, ok := w.table.Lookup(objID.Name)
	if !ok {
		return nil, fmt.Sprintf("Cannot find name %q", objID.Name)
	}
	imported, ok := objInfo.(symboltable.ImportedModule)
	if !ok {
		return nil, fmt.Sprintf("%q is not an imported module", objID.Name)
	}
	mod, ok := w.modules.Get(imported.Path)
	if !ok {
		return nil, fmt.Sprintf("Cannot find module %q", imported.Path)
	}
	info, ok := mod.SymbolTable.LookupInScope(propID.Name, 0)
	if !ok {
		return nil, fmt.Sprintf("Cannot find name %q in module %q", propID.Name, imported.Path)
	}
	if info.IsPrivate() {
		return nil, fmt.Sprintf("Cannot access private symbol %q in module %q", propID.Name, imported.Path)
	}
	return info, ""
}

func (w *walker) resolveMemberFunction(expr *ast.MemberExpr) (*symboltable.Function, string) {
	info, errMsg := w.resolveMember(expr)
	if errMsg != "" {
		return nil, errMsg
	}
	if info == nil {
		return nil, ""
	}
	fn, ok := info.(symboltable.Function)
	if !ok {
		return nil, fmt.Sprintf("%q is not a function", memberName(expr))
	}
	return &fn, ""
}

func memberName(expr *ast.MemberExpr) string {
	obj, _ := expr.Object.(*ast.Identifier)
	prop, _ := expr.Property.(*ast.Identifier)
	if obj == nil || prop == nil {
		return ""
	}
	return obj.Name + "." + prop.Name
}
