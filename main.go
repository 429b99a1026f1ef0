package main

import (
	"os"

	"github.com/Rouzax/WireGuard-Monitor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
