package main

import (
	"os"

	"github.com/vericlock-systems/vericlock/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
