// Command hxgrid generates grid schemas for tagged structs and queries,
// exports and serves tabular datasets from files or SQL databases.
package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
