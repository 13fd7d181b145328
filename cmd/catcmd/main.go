package main

import (
	"os"

	"catcmd/cmd/catcmd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
