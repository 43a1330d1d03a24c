// Command mephc compiles a Mephisto source file and writes the generated
// artifact to a file or stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/viant/mephisto"
	"github.com/viant/mephisto/loader"
)

func main() {
	input := flag.String("input", "", "input source file (required)")
	output := flag.String("output", "", "output file; stdout if not present")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "missing required flag: --input")
		flag.Usage()
		os.Exit(2)
	}

	compiler := mephisto.New(loader.NewNative(), mephisto.WithProgress(os.Stderr))
	text, errs := compiler.Compile(context.Background(), *input)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		os.Exit(1)
	}

	if *output == "" {
		fmt.Print(text)
		return
	}
	if err := os.WriteFile(*output, []byte(text), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", *output, err)
		os.Exit(1)
	}
}
