// Command qcctl inspects master-part specification texts and trial
// assignments against the foundry API.
package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if err := newRootCommand(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
