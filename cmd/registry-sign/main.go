package main

import (
	"os"

	"github.com/feral-file/ff-registry/internal/adapter"
	"github.com/feral-file/ff-registry/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(os.Stdout, adapter.NewClock()).Execute(); err != nil {
		os.Exit(1)
	}
}
