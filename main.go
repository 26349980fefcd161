package main

import (
	"os"

	"github.com/v2xlab/obu/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
