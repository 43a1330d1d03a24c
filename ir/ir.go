// Package ir implements the five-stage intermediate-representation pipeline:
// hoisting, module merging, module-call rewriting, standard-library call
// rewriting, and connect (input/output) rewriting. Each pass both inspects
// the scope tree built by symboltable and rewrites the AST, and every rename
// is keyed by symbol UUID rather than by name so that one pass's rewrite
// never invalidates the next pass's identity tracking.
package ir

import (
	"fmt"

	"github.com/viant/mephisto/ast"
	"github.com/viant/mephisto/module"
	"github.com/viant/mephisto/symboltable"
)

// Result is the IR pipeline's output: the merged, fully-rewritten AST, the
// symbol table rebuilt against it, and the ordered input/output name lists
// the host ABI needs.
type Result struct {
	AST         *ast.AST
	SymbolTable *symboltable.Table
	InputNames  []string
	OutputNames []string
	Errors      []string
}

// Create runs the full pipeline over modules, rooted at mainModule. modules
// is consumed: hoisting mutates every module in place, and module merging
// removes and reinserts entries as it walks the import graph.
func Create(modules *module.Map, mainModule string) (*Result, error) {
	if !modules.Contains(mainModule) {
		return nil, fmt.Errorf("ir: main module %q not found", mainModule)
	}

	hoistAll(modules)

	processed := map[string]bool{}
	merged := mergeModules(modules, mainModule, processed)

	afterModuleCalls := rewriteModuleCalls(merged.AST)
	afterStdlib := rewriteStdlib(afterModuleCalls.AST, afterModuleCalls.SymbolTable)
	finalAST, finalTable, inputNames, outputNames := rewriteConnects(afterStdlib.AST, afterStdlib.SymbolTable)

	return &Result{
		AST:         finalAST,
		SymbolTable: finalTable,
		InputNames:  inputNames,
		OutputNames: outputNames,
		Errors:      append([]string{}, merged.Errors...),
	}, nil
}
