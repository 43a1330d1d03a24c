// Package symboltable builds and queries the compiler's scoped symbol table:
// a flat array of scope records populated by walking the AST with ast.Walk,
// pre-seeded with the Mephisto standard library, carrying UUID identity that
// survives the renames the IR pipeline performs later.
package symboltable

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/viant/mephisto/ast"
	"github.com/viant/mephisto/token"
)

// Visibility distinguishes symbols reachable from other modules from
// module-private ones.
type Visibility int

const (
	Private Visibility = iota
	Public
)

// Origin records where a symbol came from, so later passes can tell local
// declarations apart from imported or standard-library ones.
type Origin int

const (
	OriginLocal Origin = iota
	OriginImportedModule
	OriginStdlib
)

// Info is the closed sum of symbol record kinds keyed by name within a scope.
type Info interface {
	ID() uuid.UUID
	Position() token.Position
	IsConstant() bool
	IsPrivate() bool
	IsInput() bool
	IsOutput() bool
	symbol()
}

type base struct {
	UUID uuid.UUID
	Pos  token.Position
}

func (b base) ID() uuid.UUID            { return b.UUID }
func (b base) Position() token.Position { return b.Pos }
func (base) symbol()                    {}

// Variable is a let/const/input/output/buffer-initializer-index declaration.
type Variable struct {
	base
	Visibility Visibility
	Origin     Origin
	Specifier  ast.Specifier
	Constant   bool
}

func (v Variable) IsConstant() bool { return v.Constant }
func (v Variable) IsPrivate() bool  { return v.Visibility == Private }
func (v Variable) IsInput() bool    { return v.Specifier == ast.SpecInput }
func (v Variable) IsOutput() bool   { return v.Specifier == ast.SpecOutput }

// Buffer is a ring-buffer declaration.
type Buffer struct {
	base
	Visibility Visibility
	Origin     Origin
}

func (Buffer) IsConstant() bool  { return false }
func (b Buffer) IsPrivate() bool { return b.Visibility == Private }
func (Buffer) IsInput() bool     { return false }
func (Buffer) IsOutput() bool    { return false }

// Parameter is a `param` block declaration.
type Parameter struct {
	base
	Origin Origin
}

func (Parameter) IsConstant() bool { return true }
func (Parameter) IsPrivate() bool  { return true }
func (Parameter) IsInput() bool    { return false }
func (Parameter) IsOutput() bool   { return false }

// Function is a declared (or stdlib) function, carrying its parameter-name
// list.
type Function struct {
	base
	Parameters []string
	Visibility Visibility
	Origin     Origin
}

func (Function) IsConstant() bool  { return true }
func (f Function) IsPrivate() bool { return f.Visibility == Private }
func (Function) IsInput() bool     { return false }
func (Function) IsOutput() bool    { return false }

// FunctionArgument is a function parameter bound within its body scope.
type FunctionArgument struct {
	base
	Origin Origin
}

func (FunctionArgument) IsConstant() bool { return false }
func (FunctionArgument) IsPrivate() bool  { return true }
func (FunctionArgument) IsInput() bool    { return false }
func (FunctionArgument) IsOutput() bool   { return false }

// ImportedModule binds a local import name to a module path.
type ImportedModule struct {
	base
	Path string
}

func (ImportedModule) IsConstant() bool { return true }
func (ImportedModule) IsPrivate() bool  { return true }
func (ImportedModule) IsInput() bool    { return false }
func (ImportedModule) IsOutput() bool   { return false }

// Scope is one node of the acyclic scope tree: a name->symbol map plus
// children indices and an optional parent index (nil only for scope 0).
type Scope struct {
	Symbols  map[string]Info
	Children []int
	Parent   *int
}

// NamedSymbol pairs a symbol with the name it is currently bound to.
type NamedSymbol struct {
	Name string
	Info Info
}

// Table is the scope tree plus two navigation cursors: CurrentScopeIndex for
// build-time create-and-descend, and a traversal counter for read-time
// replay via EnterNextScope/ExitScope.
type Table struct {
	Scopes            []*Scope
	CurrentScopeIndex int
	traversedScopes   int
}

// New builds a Table with only the global scope, pre-populated with the
// Mephisto standard library.
func New() *Table {
	t := &Table{
		Scopes:            []*Scope{{Symbols: map[string]Info{}}},
		CurrentScopeIndex: 0,
	}
	t.defineStdlibFn("abs", "x")
	t.defineStdlibFn("sqrt", "x")
	t.defineStdlibFn("pow", "x", "y")
	t.defineStdlibFn("exp", "x")
	t.defineStdlibFn("min", "x", "y")
	t.defineStdlibFn("max", "x", "y")
	t.defineStdlibFn("mod", "x", "y")
	t.defineStdlibFn("rand")
	t.defineStdlibFn("sin", "x")
	t.defineStdlibFn("cos", "x")
	t.defineStdlibFn("tan", "x")
	t.defineStdlibFn("asin", "x")
	t.defineStdlibFn("acos", "x")
	t.defineStdlibFn("atan", "x")
	t.defineStdlibFn("atan2", "x", "y")
	t.defineStdlibFn("log", "x")
	t.defineStdlibFn("log10", "x")
	t.defineStdlibFn("floor", "x")
	t.defineStdlibFn("ceil", "x")
	t.defineStdlibFn("round", "x")

	t.defineStdlibConst("PI")
	t.defineStdlibConst("E")
	t.defineStdlibConst("SR")
	t.defineStdlibConst("OUTPUTS")
	t.defineStdlibConst("C_TRIGGER")
	t.defineStdlibConst("C_SLIDER")

	return t
}

func (t *Table) defineStdlibFn(name string, params ...string) {
	if err := t.Insert(name, Function{
		base:       base{UUID: uuid.New()},
		Parameters: params,
		Visibility: Private,
		Origin:     OriginStdlib,
	}); err != nil {
		panic(fmt.Sprintf("failed to insert stdlib function %q: %v", name, err))
	}
}

func (t *Table) defineStdlibConst(name string) {
	if err := t.Insert(name, Variable{
		base:       base{UUID: uuid.New()},
		Visibility: Private,
		Origin:     OriginStdlib,
		Specifier:  ast.SpecConst,
		Constant:   true,
	}); err != nil {
		panic(fmt.Sprintf("failed to insert stdlib constant %q: %v", name, err))
	}
}

// GetStdlibSymbols returns every symbol, across every scope, whose origin is
// the standard library.
func (t *Table) GetStdlibSymbols() []NamedSymbol {
	var out []NamedSymbol
	for _, scope := range t.Scopes {
		for name, info := range scope.Symbols {
			var origin Origin
			switch v := info.(type) {
			case Function:
				origin = v.Origin
			case Variable:
				origin = v.Origin
			default:
				continue
			}
			if origin == OriginStdlib {
				out = append(out, NamedSymbol{Name: name, Info: info})
			}
		}
	}
	return out
}

// CreateAndEnterScope appends a new child scope under the current scope and
// descends into it. This is the build-time navigation mode.
func (t *Table) CreateAndEnterScope() {
	parent := t.CurrentScopeIndex
	t.Scopes = append(t.Scopes, &Scope{Symbols: map[string]Info{}, Parent: &parent})
	idx := len(t.Scopes) - 1
	t.Scopes[parent].Children = append(t.Scopes[parent].Children, idx)
	t.CurrentScopeIndex = idx
}

// ResetScopesIndexes rewinds the read-time cursor to the global scope, the Go
// equivalent of reset_scopes_indexes.
func (t *Table) ResetScopesIndexes() {
	t.traversedScopes = 0
	t.CurrentScopeIndex = 0
}

// EnterNextScope descends into the next child scope in depth-first creation
// order. It panics if there is no further scope to enter: that means the AST
// shape changed since the table was built without a matching rebuild.
func (t *Table) EnterNextScope() {
	if t.traversedScopes >= len(t.Scopes)-1 {
		panic(fmt.Sprintf("attempted to enter a scope that doesn't exist! %d", t.traversedScopes+1))
	}
	t.traversedScopes++
	t.CurrentScopeIndex = t.traversedScopes
}

// ExitScope ascends to the current scope's parent. It panics when called at
// the global scope.
func (t *Table) ExitScope() {
	parent := t.Scopes[t.CurrentScopeIndex].Parent
	if parent == nil {
		panic("attempted to exit the global scope!")
	}
	t.CurrentScopeIndex = *parent
}

// Insert adds a symbol to the current scope. It fails if the name is already
// declared there.
func (t *Table) Insert(name string, info Info) error {
	scope := t.Scopes[t.CurrentScopeIndex]
	if _, exists := scope.Symbols[name]; exists {
		return fmt.Errorf("'%s' is already declared in the current scope, %s", name, info.Position())
	}
	scope.Symbols[name] = info
	return nil
}

// InsertIntoGlobalScope adds a symbol directly to scope 0.
func (t *Table) InsertIntoGlobalScope(name string, info Info) error {
	global := t.Scopes[0]
	if _, exists := global.Symbols[name]; exists {
		return fmt.Errorf("'%s' is already declared in the global scope, %s", name, info.Position())
	}
	global.Symbols[name] = info
	return nil
}

// RenameSymbol finds the symbol with the given UUID anywhere in the table and
// rebinds it under newName within the same scope. Renaming is always keyed by
// UUID, never by current name, since a prior pass may already have renamed it.
func (t *Table) RenameSymbol(id uuid.UUID, newName string) {
	for _, scope := range t.Scopes {
		for name, info := range scope.Symbols {
			if info.ID() == id {
				delete(scope.Symbols, name)
				scope.Symbols[newName] = info
				return
			}
		}
	}
}

// MoveVariablesToGlobalScope relocates every Variable symbol out of
// sourceScope and into the global scope, used by hoisting.
func (t *Table) MoveVariablesToGlobalScope(sourceScope int) {
	src := t.Scopes[sourceScope]
	for name, info := range src.Symbols {
		if _, ok := info.(Variable); ok {
			delete(src.Symbols, name)
			t.Scopes[0].Symbols[name] = info
		}
	}
}

// MoveVariableToGlobalScope relocates a single named symbol into the global
// scope regardless of its kind.
func (t *Table) MoveVariableToGlobalScope(name string, sourceScope int) {
	src := t.Scopes[sourceScope]
	if info, ok := src.Symbols[name]; ok {
		delete(src.Symbols, name)
		t.Scopes[0].Symbols[name] = info
	}
}

// GetScopeSymbolNames lists the names declared directly in scopeIndex.
func (t *Table) GetScopeSymbolNames(scopeIndex int) []string {
	scope := t.Scopes[scopeIndex]
	names := make([]string, 0, len(scope.Symbols))
	for name := range scope.Symbols {
		names = append(names, name)
	}
	return names
}

// GetGlobalSymbolNames lists every name declared in the global scope.
func (t *Table) GetGlobalSymbolNames() []string {
	return t.GetScopeSymbolNames(0)
}

// Lookup walks from CurrentScopeIndex up through parent links and returns the
// first symbol bound to name.
func (t *Table) Lookup(name string) (Info, bool) {
	idx := t.CurrentScopeIndex
	for {
		scope := t.Scopes[idx]
		if info, ok := scope.Symbols[name]; ok {
			return info, true
		}
		if scope.Parent == nil {
			return nil, false
		}
		idx = *scope.Parent
	}
}

// LookupInScope is a non-walking variant: it only checks scopeIndex itself.
func (t *Table) LookupInScope(name string, scopeIndex int) (Info, bool) {
	info, ok := t.Scopes[scopeIndex].Symbols[name]
	return info, ok
}

// FromAST walks the tree and builds a fresh Table. It returns the table and
// any "already declared" diagnostics collected along the way (symbol building
// continues past an error).
func FromAST(tree *ast.AST) (*Table, []string) {
	table := New()
	var errors []string
	publicDepth := 0

	insert := func(name string, info Info) {
		if err := table.Insert(name, info); err != nil {
			errors = append(errors, err.Error())
		}
	}

	root := tree.Root
	ast.Walk(&root, func(stage ast.Stage, n *ast.Node) bool {
		switch node := (*n).(type) {
		case *ast.ProcessNode, *ast.BlockNode:
			if stage == ast.Enter {
				table.CreateAndEnterScope()
			} else {
				table.ExitScope()
			}

		case *ast.ExportDeclarationStmt:
			if stage == ast.Enter {
				publicDepth++
			} else {
				publicDepth--
			}

		case *ast.VariableDeclarationStmt:
			if stage != ast.Enter {
				break
			}
			id, ok := node.ID.(*ast.Identifier)
			if !ok {
				break
			}
			visibility := Private
			if node.Specifier == ast.SpecInput || node.Specifier == ast.SpecOutput || publicDepth > 0 {
				visibility = Public
			}
			constant := node.Specifier == ast.SpecConst || node.Specifier == ast.SpecInput
			insert(id.Name, Variable{
				base:       base{UUID: uuid.New(), Pos: id.Position()},
				Visibility: visibility,
				Origin:     OriginLocal,
				Specifier:  node.Specifier,
				Constant:   constant,
			})

		case *ast.BufferDeclarationStmt:
			if stage != ast.Enter {
				break
			}
			id, ok := node.ID.(*ast.Identifier)
			if !ok {
				break
			}
			visibility := Private
			if publicDepth > 0 {
				visibility = Public
			}
			insert(id.Name, Buffer{
				base:       base{UUID: uuid.New(), Pos: id.Position()},
				Visibility: visibility,
				Origin:     OriginLocal,
			})

		case *ast.BufferInitializer:
			if stage == ast.Enter {
				table.CreateAndEnterScope()
				insert("i", Variable{
					base:       base{UUID: uuid.New()},
					Visibility: Private,
					Origin:     OriginLocal,
					Specifier:  ast.SpecBuffer,
					Constant:   true,
				})
			} else {
				table.ExitScope()
			}

		case *ast.FunctionDeclarationStmt:
			if stage == ast.Enter {
				if id, ok := node.ID.(*ast.Identifier); ok {
					visibility := Private
					if publicDepth > 0 {
						visibility = Public
					}
					params := make([]string, 0, len(node.Params))
					for _, p := range node.Params {
						if fp, ok := p.(*ast.FunctionParameter); ok {
							if pid, ok := fp.ID.(*ast.Identifier); ok {
								params = append(params, pid.Name)
							}
						}
					}
					insert(id.Name, Function{
						base:       base{UUID: uuid.New(), Pos: id.Position()},
						Parameters: params,
						Visibility: visibility,
						Origin:     OriginLocal,
					})
				}

				table.CreateAndEnterScope()
				for _, p := range node.Params {
					if fp, ok := p.(*ast.FunctionParameter); ok {
						if pid, ok := fp.ID.(*ast.Identifier); ok {
							insert(pid.Name, FunctionArgument{
								base:   base{UUID: uuid.New(), Pos: pid.Position()},
								Origin: OriginLocal,
							})
						}
					}
				}
			} else {
				table.ExitScope()
			}

		case *ast.ParameterDeclarationStmt:
			if stage != ast.Enter {
				break
			}
			if id, ok := node.ID.(*ast.Identifier); ok {
				insert(id.Name, Parameter{
					base:   base{UUID: uuid.New(), Pos: id.Position()},
					Origin: OriginLocal,
				})
			}

		case *ast.ImportStatement:
			if stage != ast.Enter {
				break
			}
			if id, ok := node.ID.(*ast.Identifier); ok {
				insert(id.Name, ImportedModule{
					base: base{UUID: uuid.New(), Pos: id.Position()},
					Path: node.Path,
				})
			}
		}
		return false
	})

	return table, errors
}
