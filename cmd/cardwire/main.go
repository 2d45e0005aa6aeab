package main

import (
	"os"

	"github.com/mverdon/cardwire/cmd/cardwire/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
