// Package main provides the entry point for the ngdefc CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"ngdefc/cmd/ngdefc/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		if !errors.Is(err, commands.ErrReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
