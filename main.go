package main

import (
	"os"

	"github.com/sesbouncy/sesbouncy/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
