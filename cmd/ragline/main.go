// Package main is the entry point for the ragline CLI.
package main

import (
	"os"

	"github.com/custodia-labs/ragline-cli/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
