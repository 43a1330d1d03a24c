// Package mephisto is the compiler driver: it loads a root source file and
// its import closure through a pluggable loader, runs the front-end stages
// (lex, parse, symbol build), validates the module set, lowers it through the
// IR pipeline, and hands the result to a code generator.
package mephisto

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/viant/mephisto/codegen"
	"github.com/viant/mephisto/ir"
	"github.com/viant/mephisto/lexer"
	"github.com/viant/mephisto/loader"
	"github.com/viant/mephisto/module"
	"github.com/viant/mephisto/parser"
	"github.com/viant/mephisto/semantic"
	"github.com/viant/mephisto/symboltable"
)

// Compiler wires the pipeline stages together around a FileLoader.
type Compiler struct {
	loader    loader.FileLoader
	generator codegen.Generator
	progress  io.Writer
}

// Option customizes a Compiler.
type Option func(*Compiler)

// WithGenerator replaces the default stub backend.
func WithGenerator(g codegen.Generator) Option {
	return func(c *Compiler) {
		c.generator = g
	}
}

// WithProgress directs one-line progress messages to w (discarded by default).
func WithProgress(w io.Writer) Option {
	return func(c *Compiler) {
		c.progress = w
	}
}

// New builds a Compiler over the given loader.
func New(l loader.FileLoader, options ...Option) *Compiler {
	c := &Compiler{
		loader:    l,
		generator: codegen.Stub{},
		progress:  io.Discard,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Compiler) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.progress, format+"\n", args...)
}

// Compile runs the whole pipeline on the module rooted at inputPath and
// returns the generated text. A non-empty error list means compilation
// stopped at the first failing stage; the diagnostics collected so far are
// returned and the text is empty.
func (c *Compiler) Compile(ctx context.Context, inputPath string) (string, []string) {
	modules := module.NewMap()

	c.printf("loading %s", inputPath)
	if err := c.loadModule(ctx, modules, inputPath, ""); err != nil {
		return "", []string{err.Error()}
	}

	var errs []string
	for _, name := range modules.Keys() {
		mod, _ := modules.Get(name)
		for _, e := range mod.Errors {
			errs = append(errs, fmt.Sprintf("[Module %q]: %s", name, e))
		}
	}
	if len(errs) > 0 {
		return "", errs
	}

	c.printf("analyzing %d module(s)", modules.Len())
	if diagnostics := semantic.NewAnalyzer().Validate(modules); len(diagnostics) > 0 {
		return "", diagnostics
	}

	c.printf("lowering to IR")
	result, err := ir.Create(modules, inputPath)
	if err != nil {
		return "", []string{err.Error()}
	}
	if len(result.Errors) > 0 {
		return "", result.Errors
	}

	c.printf("generating code")
	text, genErrs := c.generator.Generate(result)
	if len(genErrs) > 0 {
		return "", genErrs
	}
	return text, nil
}

// loadModule lexes, parses, and symbol-builds one source file, then recurses
// into its imports. Import paths are opaque strings: each is both the module
// map key and the path handed to the loader, resolved against the root
// file's directory.
func (c *Compiler) loadModule(ctx context.Context, modules *module.Map, key, basePath string) error {
	if modules.Contains(key) {
		return nil
	}

	source, err := c.loader.Load(ctx, key, basePath)
	if err != nil {
		return fmt.Errorf("failed to load module %q: %w", key, err)
	}

	tree := parser.Parse(lexer.Tokenize(source))
	table, tableErrs := symboltable.FromAST(tree)
	modules.Set(key, module.New(tree, table, tableErrs))

	importBase := basePath
	if importBase == "" {
		importBase = path.Dir(key)
	}
	for _, imported := range tree.Imports() {
		c.printf("loading %s", imported)
		if err := c.loadModule(ctx, modules, imported, importBase); err != nil {
			return err
		}
	}
	return nil
}
