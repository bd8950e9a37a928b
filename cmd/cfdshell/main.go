// Package main is the entry point for the cfdshell desktop shell.
package main

import (
	"os"

	"github.com/cfdshell/cfdshell/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
