// Package main is the entry point for the diarizer CLI.
//
// Usage:
//
//	diarizer [flags] <command> [subcommand] [args]
//
// Commands:
//
//	analyze    - Analyze recordings and print speaker segments
//	speakers   - Inspect and maintain the global speaker registry
//	cache      - Show feature cache settings
//	config     - Configuration management
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/lawrencel1ng/recordio-diarizer/cmd/diarizer/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
