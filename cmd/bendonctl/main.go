package main

import (
	"os"

	"github.com/pathakanu/bendonHelper/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
