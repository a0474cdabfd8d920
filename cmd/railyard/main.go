// Command railyard checks layout files from the command line: it reports
// connectivity, rail networks and validation findings, and answers snap
// queries against a layout.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
