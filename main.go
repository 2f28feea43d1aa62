// ABOUTME: commitmux CLI entry point
// ABOUTME: Initializes the cobra root command and routes subcommands
package main

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/commitmux/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
