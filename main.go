// The main package for the newsverdict executable.
package main

import (
	"github.com/JakeFAU/newsverdict/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
