// Package module holds the per-file compilation unit (parsed AST plus its
// symbol table and diagnostics) and an ordered collection of them keyed by
// import path.
package module

import (
	"github.com/viant/mephisto/ast"
	"github.com/viant/mephisto/symboltable"
)

// Module is everything the pipeline knows about one source file: its parsed
// tree, the symbol table built from that tree, and any diagnostics collected
// while building either.
type Module struct {
	AST         *ast.AST
	SymbolTable *symboltable.Table
	Errors      []string
}

// New bundles a parsed tree and its symbol table into a Module, folding in
// parse errors, symbol-table-build errors, and any caller-supplied errors.
func New(tree *ast.AST, table *symboltable.Table, tableErrors []string) *Module {
	m := &Module{AST: tree, SymbolTable: table}
	m.Errors = append(m.Errors, tree.Errors...)
	m.Errors = append(m.Errors, tableErrors...)
	return m
}

// Map is an insertion-order-preserving name-to-Module map: module merging
// (ir package) depends on imports being iterated in the order they were
// first seen.
type Map struct {
	order []string
	byKey map[string]*Module
}

// NewMap returns an empty ordered module map.
func NewMap() *Map {
	return &Map{byKey: map[string]*Module{}}
}

// Set inserts or replaces the module bound to key. Insertion order is only
// recorded the first time a key is seen.
func (m *Map) Set(key string, mod *Module) {
	if _, exists := m.byKey[key]; !exists {
		m.order = append(m.order, key)
	}
	m.byKey[key] = mod
}

// Get looks up the module bound to key.
func (m *Map) Get(key string) (*Module, bool) {
	mod, ok := m.byKey[key]
	return mod, ok
}

// Contains reports whether key has already been inserted.
func (m *Map) Contains(key string) bool {
	_, ok := m.byKey[key]
	return ok
}

// Delete removes and returns the module bound to key, preserving the
// relative order of the remaining keys. The IR module merger uses this to
// pull a module out of the map while it is being processed, so a module
// cannot observe itself mid-merge through a circular import; the merged
// result is reinserted under the same key once merging completes.
func (m *Map) Delete(key string) (*Module, bool) {
	mod, ok := m.byKey[key]
	if !ok {
		return nil, false
	}
	delete(m.byKey, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return mod, true
}

// Keys returns every key in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of modules stored.
func (m *Map) Len() int {
	return len(m.order)
}
