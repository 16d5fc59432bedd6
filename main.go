package main

import (
	"os"

	"github.com/termai/termai/cmd"
	"github.com/termai/termai/internal/build"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var version = "0.0.0"

func init() {
	build.Version = version
}
