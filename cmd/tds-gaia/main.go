package main

import (
	"os"

	"github.com/brodao2/tds-gaia/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
