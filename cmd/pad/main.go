package main

import (
	"os"

	"github.com/localpad/localpad/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
