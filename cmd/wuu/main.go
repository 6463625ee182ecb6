// Command wuu is the CLI front end for the Wuu toolchain: formatting,
// lexing, parsing, type/effect checking, tree-interpreter execution,
// and workflow replay.
package main

import (
	"fmt"
	"os"

	"github.com/wuu-lang/wuu/cmd/wuu/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
