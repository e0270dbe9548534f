// Package main is the entry point for the htmlprep CLI.
package main

import (
	"os"

	"github.com/jmylchreest/htmlprep/cmd/htmlprep/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
