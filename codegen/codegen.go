// Package codegen defines the backend contract consumed after the IR
// pipeline. The real audio-worklet text template is a separate backend; the
// Stub here renders a deterministic YAML summary of the IR so the contract is
// exercised end to end by the CLI and by tests.
package codegen

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/viant/mephisto/ast"
	"github.com/viant/mephisto/ir"
)

// Generator turns a finished IR into emitted text. A non-empty error list
// means generation failed and the text must be discarded.
type Generator interface {
	Generate(result *ir.Result) (string, []string)
}

// Stub is a placeholder backend: it summarizes the IR as YAML instead of
// emitting runtime code. The summary is stable for identical inputs (global
// names are sorted) so it is safe to assert against in tests.
type Stub struct{}

type irSummary struct {
	Inputs  []string `yaml:"inputs"`
	Outputs []string `yaml:"outputs"`
	Globals []string `yaml:"globals"`
	Nodes   int      `yaml:"nodes"`
	Errors  []string `yaml:"errors,omitempty"`
}

// Generate renders the IR summary. It never fails unless YAML marshaling
// does.
func (Stub) Generate(result *ir.Result) (string, []string) {
	globals := result.SymbolTable.GetGlobalSymbolNames()
	sort.Strings(globals)

	nodes := 0
	root := result.AST.Root
	ast.Walk(&root, func(stage ast.Stage, n *ast.Node) bool {
		if stage == ast.Enter {
			nodes++
		}
		return false
	})

	out, err := yaml.Marshal(irSummary{
		Inputs:  result.InputNames,
		Outputs: result.OutputNames,
		Globals: globals,
		Nodes:   nodes,
		Errors:  result.Errors,
	})
	if err != nil {
		return "", []string{err.Error()}
	}
	return string(out), nil
}
