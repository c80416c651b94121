// Package main provides the dbdiff command-line tool.
package main

import (
	"os"

	"github.com/leapstack-labs/dbdiff/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
