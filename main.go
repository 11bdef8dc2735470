package main

import (
	"os"

	"github.com/username/tradeledger/src/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
