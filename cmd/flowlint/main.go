// Package main provides the flowlint command.
package main

import (
	"os"

	"github.com/leapstack-labs/flowlint/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
