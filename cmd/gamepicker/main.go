// Package main provides the gamepicker CLI, a long-lived client of a
// gamepicker server that lists, watches and edits the game list.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
