// Command dummy-cc compiles a C-like source file to RV32IM assembly
// (spec.md §1). It wires internal/cliapp's cobra command to os.Args, the
// same way the teacher's src/main.go wires util.ParseArgs to its run
// function.
package main

import (
	"fmt"
	"os"

	"github.com/pcineverdies/dummy-cc/internal/cliapp"
)

func main() {
	if err := cliapp.NewCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
