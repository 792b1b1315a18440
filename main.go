package main

import (
	"os"

	"github.com/guilhermegouw/bioexplorer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
