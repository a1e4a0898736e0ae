// Package main is the entry point for the spotql CLI.
package main

import (
	"os"

	"github.com/aidanlsb/spotql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
