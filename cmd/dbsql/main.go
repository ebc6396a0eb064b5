// Package main is the entry point for the dbsql CLI.
package main

import (
	"fmt"
	"os"

	"github.com/mrjgreen/database/cmd/dbsql/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
