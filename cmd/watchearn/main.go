package main

import (
	"os"

	"github.com/watchearn-network/watchearn/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
