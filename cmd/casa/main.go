package main

import (
	"os"

	"github.com/moolen/casa/cmd/casa/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
