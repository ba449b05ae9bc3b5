package main

import (
	"fmt"
	"os"

	"github.com/runnerr0/apmq/internal/cli"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		fmt.Fprintf(os.Stderr, "apmq: %v\n", err)
		os.Exit(1)
	}
}
