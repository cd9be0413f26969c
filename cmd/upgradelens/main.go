package main

import (
	"os"

	"github.com/moolen/upgradelens/cmd/upgradelens/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
