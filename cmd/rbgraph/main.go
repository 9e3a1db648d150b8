// Command rbgraph extracts the class and module dependency graph of a Ruby
// code base.
package main

import (
	"os"

	"rbgraph/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
