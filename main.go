// The main package for the magcorpus executable.
package main

import (
	"github.com/JakeFAU/magazine-corpus/cmd"
)

// main defers all execution to the Cobra command tree.
func main() {
	cmd.Execute()
}
