package main

import (
	"os"

	"github.com/buemura/scamscan/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
